// Package host defines the boundary to the drafting host. Implementations
// (sdfxhost, dxfhost) materialize construction operations into drawing
// entities behind this interface; the sequencer never assumes more than
// success/failure and an opaque handle.
package host

import (
	"context"

	"vesselcad/pkg/profile"
)

// Handle is an opaque reference to a host-side drawing entity.
type Handle string

// IsZero reports whether the handle references nothing.
func (h Handle) IsZero() bool { return h == "" }

// Host is the drafting-host adapter contract. Calls are synchronous and may
// be slow; bounding a hung call is the adapter's responsibility, not the
// sequencer's. Implementations must be reentrant if independent sessions are
// to run concurrently.
type Host interface {
	// CreateSweptSolid materializes a shell, cone, head or flange profile.
	CreateSweptSolid(ctx context.Context, p profile.Profile) (Handle, error)

	// CreateOffsetEntity materializes a ring band at its axial offset from
	// the referenced entity. ref may be zero for a standalone ring.
	CreateOffsetEntity(ctx context.Context, p profile.Profile, ref Handle) (Handle, error)

	// CreateIntersection materializes a nozzle against the referenced parent
	// entity, including the intersection cut.
	CreateIntersection(ctx context.Context, p profile.Profile, ref Handle) (Handle, error)

	// DeleteEntity removes a previously created entity.
	DeleteEntity(ctx context.Context, h Handle) error
}
