// Package delivery defines the contract every transport entrypoint fulfils.
package delivery

import "context"

// Delivery is a serving surface started at process launch and stopped
// through its lifecycle hook.
type Delivery interface {
	Serve(ctx context.Context) error
}
