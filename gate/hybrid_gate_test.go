package gate_test

import (
	"context"
	"testing"

	"github.com/clinicdesk/crm/gate"
)

// assigneePolicy allows access when the resource is assigned to the user.
type assigneePolicy struct{}

type mockTask struct {
	AssigneeID uint
}

func (p *assigneePolicy) Can(_ context.Context, userID uint, _ gate.Action, resource any) bool {
	if r, ok := resource.(*mockTask); ok {
		return r.AssigneeID == userID
	}
	return false
}

func TestHybridGate_ProfileOnly(t *testing.T) {
	resolver := gate.NewStaticResolver[uint]()
	resolver.Set(1, gate.NewStaticProfile(1, "assistant",
		gate.NewPermission("patient", gate.ActionCreate),
		gate.NewPermission("patient", gate.ActionView),
	))

	g := gate.NewHybridGate[uint](resolver)

	if !g.Can(context.Background(), 1, gate.ActionCreate, "patient", nil) {
		t.Error("user with permission should be allowed")
	}
	if g.Can(context.Background(), 1, gate.ActionDelete, "patient", nil) {
		t.Error("user without permission should be denied")
	}
	if g.Can(context.Background(), 2, gate.ActionView, "patient", nil) {
		t.Error("user without profile should be denied")
	}
	if g.Can(context.Background(), 0, gate.ActionView, "patient", nil) {
		t.Error("zero user should be denied")
	}
}

func TestHybridGate_ResourcePolicy(t *testing.T) {
	resolver := gate.NewStaticResolver[uint]()
	resolver.Set(1, gate.NewStaticProfile(1, "practitioner",
		gate.NewPermission("task", gate.ActionUpdate),
	))
	resolver.Set(2, gate.NewStaticProfile(2, "practitioner",
		gate.NewPermission("task", gate.ActionUpdate),
	))

	g := gate.NewHybridGate[uint](resolver)
	g.Register("task", &assigneePolicy{})

	task := &mockTask{AssigneeID: 1}
	if !g.Can(context.Background(), 1, gate.ActionUpdate, "task", task) {
		t.Error("assignee should be allowed")
	}
	if g.Can(context.Background(), 2, gate.ActionUpdate, "task", task) {
		t.Error("non-assignee should be denied despite permission")
	}
}

func TestHybridGate_SuperAdminWildcard(t *testing.T) {
	resolver := gate.NewStaticResolver[uint]()
	resolver.Set(9, gate.NewStaticProfile(9, "admin", gate.PermissionSuperAdmin))

	g := gate.NewHybridGate[uint](resolver)

	if !g.CanProfile(context.Background(), 9, gate.ActionDelete, "anything") {
		t.Error("superadmin wildcard should cover every permission")
	}
}
