// Package hosttest provides a deterministic in-memory Host for sequencer and
// assembly tests: it records every call and can be told to fail specific
// parts or deletions.
package hosttest

import (
	"context"
	"fmt"
	"sync"

	"vesselcad/pkg/host"
	"vesselcad/pkg/profile"
)

// Call records one host invocation.
type Call struct {
	Op     string
	Part   string
	Ref    host.Handle
	Handle host.Handle
}

// Fake implements host.Host. The zero value is not usable; use New.
type Fake struct {
	mu       sync.Mutex
	calls    []Call
	entities map[host.Handle]string // live entities -> part name
	next     int

	// FailCreate fails any create call for the named part.
	FailCreate map[string]error
	// FailDelete fails deletion of the named part's entity.
	FailDelete map[string]error
}

var _ host.Host = (*Fake)(nil)

// New returns an empty Fake.
func New() *Fake {
	return &Fake{
		entities:   make(map[host.Handle]string),
		FailCreate: make(map[string]error),
		FailDelete: make(map[string]error),
	}
}

func (f *Fake) create(op string, p profile.Profile, ref host.Handle) (host.Handle, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if err, ok := f.FailCreate[p.PartName()]; ok {
		return "", err
	}
	f.next++
	h := host.Handle(fmt.Sprintf("ent-%d", f.next))
	f.entities[h] = p.PartName()
	f.calls = append(f.calls, Call{Op: op, Part: p.PartName(), Ref: ref, Handle: h})
	return h, nil
}

// CreateSweptSolid implements host.Host.
func (f *Fake) CreateSweptSolid(ctx context.Context, p profile.Profile) (host.Handle, error) {
	return f.create("sweep", p, "")
}

// CreateOffsetEntity implements host.Host.
func (f *Fake) CreateOffsetEntity(ctx context.Context, p profile.Profile, ref host.Handle) (host.Handle, error) {
	return f.create("offset", p, ref)
}

// CreateIntersection implements host.Host.
func (f *Fake) CreateIntersection(ctx context.Context, p profile.Profile, ref host.Handle) (host.Handle, error) {
	return f.create("intersect", p, ref)
}

// DeleteEntity implements host.Host.
func (f *Fake) DeleteEntity(ctx context.Context, h host.Handle) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	part, ok := f.entities[h]
	if !ok {
		return fmt.Errorf("hosttest: unknown entity %s", h)
	}
	if err, fail := f.FailDelete[part]; fail {
		return err
	}
	delete(f.entities, h)
	f.calls = append(f.calls, Call{Op: "delete", Part: part, Handle: h})
	return nil
}

// Calls returns a copy of the recorded calls in order.
func (f *Fake) Calls() []Call {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]Call, len(f.calls))
	copy(out, f.calls)
	return out
}

// Live returns the part names of entities that still exist.
func (f *Fake) Live() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []string
	for _, part := range f.entities {
		out = append(out, part)
	}
	return out
}
