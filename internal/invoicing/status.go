package invoicing

import "errors"

// Status is the payment state of a submitted invoice. Drafts never carry a
// status; submission always produces an unpaid record.
type Status string

const (
	StatusUnpaid Status = "unpaid"
	StatusPaid   Status = "paid"
)

// State machine errors. Archived is terminal except for deletion, and
// complimentary invoices live outside paid/unpaid accounting entirely.
var (
	ErrAlreadyPaid       = errors.New("invoice_already_paid")
	ErrArchivedReadOnly  = errors.New("invoice_archived")
	ErrComplimentaryPaid = errors.New("complimentary_not_payable")
)

// State models the consultation invoice lifecycle: unpaid → paid, with an
// orthogonal archived flag settable from either state. Guarded transition
// methods replace the loose boolean pair the record is stored as, so
// invalid combinations cannot be produced.
type State struct {
	Status        Status
	Archived      bool
	Complimentary bool
}

// NewSubmittedState is the only state the invoice builder ever produces.
func NewSubmittedState(complimentary bool) State {
	return State{Status: StatusUnpaid, Complimentary: complimentary}
}

// MarkPaid transitions unpaid → paid. Archived records are read-only and
// complimentary invoices can never become paid.
func (s *State) MarkPaid() error {
	if s.Archived {
		return ErrArchivedReadOnly
	}
	if s.Complimentary {
		return ErrComplimentaryPaid
	}
	if s.Status == StatusPaid {
		return ErrAlreadyPaid
	}
	s.Status = StatusPaid
	return nil
}

// Archive removes the record from active views without touching its
// paid/unpaid status. Archiving an archived record is a no-op.
func (s *State) Archive() {
	s.Archived = true
}

// Unarchive is deliberately absent: there is no transition out of
// archived, only permanent deletion.

// CanDelete reports whether permanent deletion is allowed. Any record may
// be deleted; archived records have no other way back.
func (s State) CanDelete() bool {
	return true
}
