package standards

import "context"

// Source is the injected standards data dependency. Any component exposing
// exact-match and bracketing queries satisfies the contract; implementations
// include the SQLite store and the in-memory source below.
type Source interface {
	// Exact returns every row matching all components of spec. A correct
	// table yields zero or one rows; more than one is a data defect the
	// resolver reports as AmbiguousMatchError.
	Exact(ctx context.Context, spec StandardPartSpec) ([]DimensionRecord, error)

	// Bracket returns the nearest tabulated rows strictly below and strictly
	// above spec.NominalSize for the same family, pressure class, and face
	// type. A nil entry means no tabulated size exists on that side.
	Bracket(ctx context.Context, spec StandardPartSpec) (below, above *DimensionRecord, err error)
}

// MemSource is an in-memory Source. It backs tests and small built-in tables;
// each MemSource owns its rows, so sources against different table versions
// can coexist.
type MemSource struct {
	rows []DimensionRecord
}

var _ Source = (*MemSource)(nil)

// NewMemSource creates a MemSource holding the given rows.
func NewMemSource(rows ...DimensionRecord) *MemSource {
	s := &MemSource{}
	for _, r := range rows {
		s.Add(r)
	}
	return s
}

// Add appends a row.
func (s *MemSource) Add(rec DimensionRecord) {
	if rec.Units == "" {
		rec.Units = CanonicalUnit
	}
	s.rows = append(s.rows, rec)
}

// Exact implements Source.
func (s *MemSource) Exact(ctx context.Context, spec StandardPartSpec) ([]DimensionRecord, error) {
	var out []DimensionRecord
	for _, r := range s.rows {
		if r.Spec == spec {
			out = append(out, r)
		}
	}
	return out, nil
}

// Bracket implements Source.
func (s *MemSource) Bracket(ctx context.Context, spec StandardPartSpec) (*DimensionRecord, *DimensionRecord, error) {
	var below, above *DimensionRecord
	for i := range s.rows {
		r := s.rows[i]
		if r.Spec.Family != spec.Family ||
			r.Spec.PressureClass != spec.PressureClass ||
			r.Spec.FaceType != spec.FaceType {
			continue
		}
		switch {
		case r.Spec.NominalSize < spec.NominalSize:
			if below == nil || r.Spec.NominalSize > below.Spec.NominalSize {
				below = &s.rows[i]
			}
		case r.Spec.NominalSize > spec.NominalSize:
			if above == nil || r.Spec.NominalSize < above.Spec.NominalSize {
				above = &s.rows[i]
			}
		}
	}
	return below, above, nil
}
