package gate

// Action describes the kind of operation a user wants to perform.
type Action string

const (
	ActionView   Action = "view"
	ActionCreate Action = "create"
	ActionUpdate Action = "update"
	ActionDelete Action = "delete"
	ActionList   Action = "list"

	// Domain-specific actions used by the clinic routes.
	ActionSubmit  Action = "submit"  // finalize an invoice draft
	ActionPay     Action = "pay"     // mark an invoice paid
	ActionArchive Action = "archive" // hide a record from active views
	ActionSend    Action = "send"    // send an outbound message
)
