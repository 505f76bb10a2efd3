package gate

import "context"

// Policy decides whether a subject may perform an action on a resource.
// For list/create checks resource is nil and only the context matters.
type Policy[U any] interface {
	Can(ctx context.Context, user U, action Action, resource any) bool
}
