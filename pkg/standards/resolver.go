package standards

import (
	"context"
	"fmt"
	"sort"
)

// Resolver answers part-spec lookups against an injected Source. It has no
// side effects and no cache of its own; two resolvers over different table
// versions can coexist.
type Resolver struct {
	src Source
}

// NewResolver creates a Resolver over the given data source.
func NewResolver(src Source) *Resolver {
	return &Resolver{src: src}
}

// Resolve looks up spec. An exact table row is returned verbatim with
// provenance "exact". When the requested size is absent but bracketed by two
// tabulated sizes of the same family/class/face, a record is synthesized by
// linear interpolation of the interpolable fields and tagged "interpolated".
//
// Failure modes: NotFoundError when nothing matches and no bracket exists,
// AmbiguousMatchError when the table's uniqueness invariant is violated, and
// NonInterpolableFieldError when bridging the gap would require a synthetic
// value for a discrete field.
func (r *Resolver) Resolve(ctx context.Context, spec StandardPartSpec) (DimensionRecord, error) {
	rows, err := r.src.Exact(ctx, spec)
	if err != nil {
		return DimensionRecord{}, fmt.Errorf("standards: exact lookup for %s: %w", spec, err)
	}
	switch len(rows) {
	case 0:
		// Fall through to interpolation.
	case 1:
		rec := rows[0]
		rec.Provenance = ProvenanceExact
		return rec, nil
	default:
		return DimensionRecord{}, AmbiguousMatchError{Spec: spec, Count: len(rows)}
	}

	below, above, err := r.src.Bracket(ctx, spec)
	if err != nil {
		return DimensionRecord{}, fmt.Errorf("standards: bracket lookup for %s: %w", spec, err)
	}
	if below == nil || above == nil {
		return DimensionRecord{}, NotFoundError{Spec: spec}
	}
	return interpolate(spec, *below, *above)
}

// interpolate blends two bracketing rows at the requested nominal size.
func interpolate(spec StandardPartSpec, below, above DimensionRecord) (DimensionRecord, error) {
	span := above.Spec.NominalSize - below.Spec.NominalSize
	if span <= 0 {
		return DimensionRecord{}, NotFoundError{Spec: spec}
	}
	t := (spec.NominalSize - below.Spec.NominalSize) / span

	rec := DimensionRecord{
		Spec:       spec,
		Fields:     make(map[string]Value),
		Units:      below.Units,
		Provenance: ProvenanceInterpolated,
	}
	if below.Image == above.Image {
		rec.Image = below.Image
	}

	var discrete []string
	interpolated := 0
	for _, name := range fieldNames(below, above) {
		lo, lok := below.Fields[name]
		hi, hok := above.Fields[name]
		if !lok || !hok || lo.IsNull() || hi.IsNull() {
			// Present on one side only, or null: explicitly null in the
			// result. Never a guessed value.
			rec.Fields[name] = Value{}
			continue
		}

		fs := fieldSpec(name)
		if fs.Kind == FieldText || !fs.Interpolable {
			if valueEqual(lo, hi) {
				// Both rows tabulate the same value; carrying it through is
				// not synthesis.
				rec.Fields[name] = lo
				continue
			}
			return DimensionRecord{}, NonInterpolableFieldError{Spec: spec, Fields: []string{name}}
		}

		if !lo.IsNumeric() || !hi.IsNumeric() {
			rec.Fields[name] = Value{}
			continue
		}
		rec.Fields[name] = Num(*lo.Num + t*(*hi.Num-*lo.Num))
		interpolated++
	}

	if interpolated == 0 {
		// Only discrete fields bound the gap; a synthetic record would carry
		// no interpolated content at all.
		for _, name := range fieldNames(below, above) {
			if fs := fieldSpec(name); !fs.Interpolable {
				discrete = append(discrete, name)
			}
		}
		return DimensionRecord{}, NonInterpolableFieldError{Spec: spec, Fields: discrete}
	}
	return rec, nil
}

// fieldNames returns the sorted union of field names in both records.
func fieldNames(a, b DimensionRecord) []string {
	seen := make(map[string]struct{}, len(a.Fields)+len(b.Fields))
	for name := range a.Fields {
		seen[name] = struct{}{}
	}
	for name := range b.Fields {
		seen[name] = struct{}{}
	}
	names := make([]string, 0, len(seen))
	for name := range seen {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

func valueEqual(a, b Value) bool {
	if a.IsNumeric() != b.IsNumeric() {
		return false
	}
	if a.IsNumeric() {
		return *a.Num == *b.Num
	}
	return a.Text == b.Text
}
