package standards

import (
	"fmt"
	"strings"
)

// NotFoundError indicates that no table row matches the spec and no
// interpolation rule applies.
type NotFoundError struct {
	Spec StandardPartSpec
}

func (e NotFoundError) Error() string {
	return fmt.Sprintf("standards: no entry for %s", e.Spec)
}

// AmbiguousMatchError indicates a violated uniqueness invariant in the data
// source: more than one row matched an exact spec. This means the table is
// corrupt, not that the request was wrong.
type AmbiguousMatchError struct {
	Spec  StandardPartSpec
	Count int
}

func (e AmbiguousMatchError) Error() string {
	return fmt.Sprintf("standards: %d rows match %s, expected at most one", e.Count, e.Spec)
}

// NonInterpolableFieldError indicates that resolving the spec would require
// synthesizing a value for a discrete field (fastener count, bolt size).
type NonInterpolableFieldError struct {
	Spec   StandardPartSpec
	Fields []string
}

func (e NonInterpolableFieldError) Error() string {
	return fmt.Sprintf("standards: %s requires interpolating discrete field(s) %s",
		e.Spec, strings.Join(e.Fields, ", "))
}
