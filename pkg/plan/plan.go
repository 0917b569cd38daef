// Package plan orders derived geometric profiles into a dependency-
// respecting construction sequence. The dependency graph combines a fixed
// role-precedence rule with the explicit references recorded in nozzle, ring
// and flange profiles; the output order is deterministic for identical
// input.
package plan

import (
	"fmt"
	"sort"

	"github.com/google/uuid"

	"vesselcad/pkg/profile"
)

// OpKind is the host operation a construction step performs.
type OpKind int

const (
	OpSweep     OpKind = iota // swept solid (shell, cone, head, flange)
	OpOffset                  // offset entity (stiffening ring)
	OpIntersect               // intersection against a parent (nozzle)
)

func (k OpKind) String() string {
	switch k {
	case OpSweep:
		return "sweep"
	case OpOffset:
		return "offset"
	case OpIntersect:
		return "intersect"
	default:
		return fmt.Sprintf("OpKind(%d)", int(k))
	}
}

// Step is one construction operation. Steps form a DAG through DependsOn;
// Plan emits them in a topologically valid linear order.
type Step struct {
	ID             string // part name, unique within a plan
	Op             OpKind
	Profile        profile.Profile
	DependsOn      []string
	IdempotencyKey string
}

// CyclicDependencyError indicates that role precedence plus explicit
// references formed a cycle. This cannot happen with the current role rules;
// the check guards future role additions.
type CyclicDependencyError struct {
	Remaining []string
}

func (e CyclicDependencyError) Error() string {
	sort.Strings(e.Remaining)
	return fmt.Sprintf("plan: dependency cycle among %v", e.Remaining)
}

// Plan builds construction steps for the given profiles and returns them in
// build order. Profiles referencing a part that is not in the input, or
// duplicate part names, fail the plan outright.
func Plan(profiles []profile.Profile) ([]Step, error) {
	steps := make([]Step, 0, len(profiles))
	index := make(map[string]int, len(profiles))

	for _, p := range profiles {
		name := p.PartName()
		if name == "" {
			return nil, fmt.Errorf("plan: profile with empty part name (%s)", p.Role())
		}
		if _, dup := index[name]; dup {
			return nil, fmt.Errorf("plan: duplicate part name %q", name)
		}

		step := Step{
			ID:             name,
			Profile:        p,
			IdempotencyKey: uuid.NewString(),
		}
		switch v := p.(type) {
		case profile.ShellProfile, profile.ConeProfile, profile.HeadProfile:
			step.Op = OpSweep
		case profile.FlangeProfile:
			step.Op = OpSweep
			if v.Mount != "" {
				step.DependsOn = append(step.DependsOn, v.Mount)
			}
		case profile.RingProfile:
			step.Op = OpOffset
			if v.ReferencePart != "" {
				step.DependsOn = append(step.DependsOn, v.ReferencePart)
			}
		case profile.NozzleProfile:
			step.Op = OpIntersect
			step.DependsOn = append(step.DependsOn, v.ParentPart)
		default:
			return nil, fmt.Errorf("plan: unhandled profile role %s", p.Role())
		}

		index[name] = len(steps)
		steps = append(steps, step)
	}

	for _, s := range steps {
		for _, dep := range s.DependsOn {
			if _, ok := index[dep]; !ok {
				return nil, fmt.Errorf("plan: step %q references unknown part %q", s.ID, dep)
			}
		}
	}

	return sortSteps(steps, index)
}

// sortSteps is a Kahn-style topological sort. Ties break by declaration
// order: each pass scans the unplaced steps in input order and emits every
// step whose dependencies are already placed.
func sortSteps(steps []Step, index map[string]int) ([]Step, error) {
	placed := make(map[string]bool, len(steps))
	out := make([]Step, 0, len(steps))

	for len(out) < len(steps) {
		progress := false
		for _, s := range steps {
			if placed[s.ID] {
				continue
			}
			ready := true
			for _, dep := range s.DependsOn {
				if !placed[dep] {
					ready = false
					break
				}
			}
			if ready {
				placed[s.ID] = true
				out = append(out, s)
				progress = true
			}
		}
		if !progress {
			var remaining []string
			for _, s := range steps {
				if !placed[s.ID] {
					remaining = append(remaining, s.ID)
				}
			}
			return nil, CyclicDependencyError{Remaining: remaining}
		}
	}
	return out, nil
}
