// Package standards resolves nominal part requests against tabulated
// standards data (flange tables, shell/head dimension tables) and returns
// dimension records with exact or interpolated provenance.
package standards

import "fmt"

// CanonicalUnit is the single length unit used throughout the system.
// Records carrying any other unit are rejected at derivation time.
const CanonicalUnit = "mm"

// StandardPartSpec identifies one row of a standards table. It is an
// immutable request value; together with the part role it uniquely
// identifies the dimensions of a standardized part.
type StandardPartSpec struct {
	Family        string  // standard/type code, e.g. "EN1092-1/11"
	PressureClass string  // pressure rating bucket, e.g. "PN16", "150"
	FaceType      string  // sealing-face code for flanges, empty otherwise
	NominalSize   float64 // numeric size designator (DN 100 -> 100)
}

func (s StandardPartSpec) String() string {
	if s.FaceType != "" {
		return fmt.Sprintf("%s %s %s DN%g", s.Family, s.PressureClass, s.FaceType, s.NominalSize)
	}
	return fmt.Sprintf("%s %s DN%g", s.Family, s.PressureClass, s.NominalSize)
}

// Provenance records how a dimension record was produced.
type Provenance int

const (
	ProvenanceExact        Provenance = iota // row present verbatim in the table
	ProvenanceInterpolated                   // linearly interpolated between two rows
)

func (p Provenance) String() string {
	switch p {
	case ProvenanceExact:
		return "exact"
	case ProvenanceInterpolated:
		return "interpolated"
	default:
		return fmt.Sprintf("Provenance(%d)", int(p))
	}
}

// Value is a single dimension field value: numeric, textual, or explicitly
// null. A null value is never silently substituted with a default.
type Value struct {
	Num  *float64
	Text string
}

// Num returns a numeric Value.
func Num(v float64) Value {
	return Value{Num: &v}
}

// Text returns a textual Value.
func Text(s string) Value {
	return Value{Text: s}
}

// IsNull reports whether the value carries neither a number nor text.
func (v Value) IsNull() bool {
	return v.Num == nil && v.Text == ""
}

// IsNumeric reports whether the value carries a number.
func (v Value) IsNumeric() bool {
	return v.Num != nil
}

func (v Value) String() string {
	switch {
	case v.Num != nil:
		return fmt.Sprintf("%g", *v.Num)
	case v.Text != "":
		return v.Text
	default:
		return "null"
	}
}

// DimensionRecord is the result of resolving a StandardPartSpec: named
// dimension fields plus provenance and an optional reference image path.
type DimensionRecord struct {
	Spec       StandardPartSpec
	Fields     map[string]Value
	Units      string // length unit of all numeric fields
	Provenance Provenance
	Image      string // optional reference drawing, relative path
}

// Field returns the named field. The second result is false when the field
// is absent from the record entirely (as opposed to present but null).
func (r DimensionRecord) Field(name string) (Value, bool) {
	v, ok := r.Fields[name]
	return v, ok
}

// Numeric returns the named field as a number. The second result is false
// when the field is absent, null, or textual.
func (r DimensionRecord) Numeric(name string) (float64, bool) {
	v, ok := r.Fields[name]
	if !ok || v.Num == nil {
		return 0, false
	}
	return *v.Num, true
}

// ---------------------------------------------------------------------------
// Field schema
// ---------------------------------------------------------------------------

// FieldKind distinguishes numeric from textual fields.
type FieldKind int

const (
	FieldNumeric FieldKind = iota
	FieldText
)

// FieldSpec describes one named dimension field across all tables.
// Interpolable marks fields that vary continuously with nominal size;
// discrete fields (fastener counts, bolt sizes) are never interpolated.
type FieldSpec struct {
	Name         string
	Kind         FieldKind
	Interpolable bool
}

// Schema is the authoritative per-field interpolability list. Fields not
// listed here are treated as non-interpolable.
var Schema = map[string]FieldSpec{
	// Flange table columns (EN 1092-1 / ASME B16.5 style short codes).
	"D":           {Name: "D", Kind: FieldNumeric, Interpolable: true},  // outer diameter
	"K":           {Name: "K", Kind: FieldNumeric, Interpolable: true},  // bolt-circle diameter
	"T":           {Name: "T", Kind: FieldNumeric, Interpolable: true},  // flange thickness
	"C":           {Name: "C", Kind: FieldNumeric, Interpolable: true},  // hub thickness
	"Y":           {Name: "Y", Kind: FieldNumeric, Interpolable: true},  // raised-face diameter
	"f":           {Name: "f", Kind: FieldNumeric, Interpolable: true},  // raised-face height
	"groove_dia":  {Name: "groove_dia", Kind: FieldNumeric, Interpolable: true},
	"groove_depth": {Name: "groove_depth", Kind: FieldNumeric, Interpolable: true},
	"holes":       {Name: "holes", Kind: FieldNumeric, Interpolable: false}, // fastener count
	"hole_dia":    {Name: "hole_dia", Kind: FieldNumeric, Interpolable: false}, // tracks bolt size series
	"fastener_size": {Name: "fastener_size", Kind: FieldText, Interpolable: false},

	// Generic part dimension columns (shells, cones, heads, nozzles, rings).
	"diameter":       {Name: "diameter", Kind: FieldNumeric, Interpolable: true},
	"diameter_top":   {Name: "diameter_top", Kind: FieldNumeric, Interpolable: true},
	"diameter_base":  {Name: "diameter_base", Kind: FieldNumeric, Interpolable: true},
	"height":         {Name: "height", Kind: FieldNumeric, Interpolable: true},
	"length":         {Name: "length", Kind: FieldNumeric, Interpolable: true},
	"width":          {Name: "width", Kind: FieldNumeric, Interpolable: true},
	"thickness":      {Name: "thickness", Kind: FieldNumeric, Interpolable: true},
	"crown_radius":   {Name: "crown_radius", Kind: FieldNumeric, Interpolable: true},
	"knuckle_radius": {Name: "knuckle_radius", Kind: FieldNumeric, Interpolable: true},
	"straight_flange": {Name: "straight_flange", Kind: FieldNumeric, Interpolable: true},
	"offset":         {Name: "offset", Kind: FieldNumeric, Interpolable: true},

	"notes": {Name: "notes", Kind: FieldText, Interpolable: false},
}

// fieldSpec returns the schema entry for name, defaulting to a
// non-interpolable numeric field for unknown names.
func fieldSpec(name string) FieldSpec {
	if fs, ok := Schema[name]; ok {
		return fs
	}
	return FieldSpec{Name: name, Kind: FieldNumeric, Interpolable: false}
}
