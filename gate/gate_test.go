package gate_test

import (
	"context"
	"testing"

	"github.com/clinicdesk/crm/gate"
)

// mockPolicy allows or denies everything.
type mockPolicy struct {
	allowAll bool
}

func (p *mockPolicy) Can(_ context.Context, _ uint, _ gate.Action, _ any) bool {
	return p.allowAll
}

func TestGate_Authorize_NoUser(t *testing.T) {
	g := gate.NewGate[uint]()
	g.Register("patient", &mockPolicy{allowAll: true})

	err := g.Authorize(context.Background(), 0, gate.ActionView, "patient", nil)
	if err != gate.ErrUnauthorized {
		t.Errorf("expected ErrUnauthorized, got %v", err)
	}
}

func TestGate_Authorize_NoPolicy(t *testing.T) {
	g := gate.NewGate[uint]()

	err := g.Authorize(context.Background(), 1, gate.ActionView, "unknown", nil)
	if err != gate.ErrNoPolicyDefined {
		t.Errorf("expected ErrNoPolicyDefined, got %v", err)
	}
}

func TestGate_Authorize_AllowedAndDenied(t *testing.T) {
	g := gate.NewGate[uint]()
	g.Register("patient", &mockPolicy{allowAll: true})
	g.Register("task", &mockPolicy{allowAll: false})

	if err := g.Authorize(context.Background(), 1, gate.ActionView, "patient", nil); err != nil {
		t.Errorf("expected nil error, got %v", err)
	}
	if g.Can(context.Background(), 1, gate.ActionUpdate, "task", nil) {
		t.Error("denying policy must deny")
	}
}

func TestPermission_Matches(t *testing.T) {
	cases := []struct {
		have, want gate.Permission
		matches    bool
	}{
		{"*:*", "invoice:pay", true},
		{"invoice:*", "invoice:pay", true},
		{"invoice:pay", "invoice:pay", true},
		{"invoice:view", "invoice:pay", false},
		{"patient:*", "invoice:view", false},
	}
	for _, tc := range cases {
		if got := tc.have.Matches(tc.want); got != tc.matches {
			t.Errorf("%s matches %s: expected %v, got %v", tc.have, tc.want, tc.matches, got)
		}
	}
}
