package profile

import (
	"fmt"
	"strings"
)

// IncompleteProfileError names the required dimension fields that were null
// or absent. Derivation never guesses a missing numeric field.
type IncompleteProfileError struct {
	Role    Role
	Part    string
	Missing []string
}

func (e IncompleteProfileError) Error() string {
	return fmt.Sprintf("profile: %s %q missing required field(s) %s",
		e.Role, e.Part, strings.Join(e.Missing, ", "))
}

// UnitMismatchError indicates a record whose unit is not the canonical one.
type UnitMismatchError struct {
	Part  string
	Units string
}

func (e UnitMismatchError) Error() string {
	return fmt.Sprintf("profile: %q carries unit %q, want mm", e.Part, e.Units)
}

// UnsupportedFaceTypeError indicates a flange face code with no known
// face-geometry variant.
type UnsupportedFaceTypeError struct {
	Part     string
	FaceType string
}

func (e UnsupportedFaceTypeError) Error() string {
	return fmt.Sprintf("profile: %q has unsupported face type %q", e.Part, e.FaceType)
}

// InvalidGeometryError indicates fields that are present but geometrically
// impossible, such as a nozzle wider than its parent shell.
type InvalidGeometryError struct {
	Part   string
	Reason string
}

func (e InvalidGeometryError) Error() string {
	return fmt.Sprintf("profile: %q has invalid geometry: %s", e.Part, e.Reason)
}
