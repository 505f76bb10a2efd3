package invoicing

import (
	"errors"
	"testing"
)

func TestSubmittedStateStartsUnpaid(t *testing.T) {
	s := NewSubmittedState(false)
	if s.Status != StatusUnpaid || s.Archived || s.Complimentary {
		t.Fatalf("unexpected initial state: %+v", s)
	}
}

func TestMarkPaid(t *testing.T) {
	s := NewSubmittedState(false)
	if err := s.MarkPaid(); err != nil {
		t.Fatalf("unpaid -> paid must succeed, got %v", err)
	}
	if s.Status != StatusPaid {
		t.Fatalf("expected paid, got %s", s.Status)
	}
	if err := s.MarkPaid(); !errors.Is(err, ErrAlreadyPaid) {
		t.Fatalf("expected ErrAlreadyPaid, got %v", err)
	}
}

func TestComplimentaryNeverPaid(t *testing.T) {
	s := NewSubmittedState(true)
	if err := s.MarkPaid(); !errors.Is(err, ErrComplimentaryPaid) {
		t.Fatalf("expected ErrComplimentaryPaid, got %v", err)
	}
	if s.Status != StatusUnpaid {
		t.Fatalf("state must be unchanged after rejected transition")
	}
}

func TestArchiveIsOrthogonalAndTerminal(t *testing.T) {
	// archivable from unpaid
	s := NewSubmittedState(false)
	s.Archive()
	if !s.Archived || s.Status != StatusUnpaid {
		t.Fatalf("archiving must not change payment status: %+v", s)
	}
	if err := s.MarkPaid(); !errors.Is(err, ErrArchivedReadOnly) {
		t.Fatalf("archived records are read-only, got %v", err)
	}

	// archivable from paid, keeping paid status
	p := NewSubmittedState(false)
	_ = p.MarkPaid()
	p.Archive()
	if !p.Archived || p.Status != StatusPaid {
		t.Fatalf("paid-and-archived must be a valid combination: %+v", p)
	}

	// archiving twice is a no-op, deletion is always allowed
	p.Archive()
	if !p.Archived || !p.CanDelete() {
		t.Fatalf("unexpected state after double archive: %+v", p)
	}
}
