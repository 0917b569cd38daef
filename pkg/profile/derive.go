package profile

import (
	"fmt"
	"math"

	"vesselcad/pkg/standards"
)

// Derive converts a resolved dimension record into the profile for the given
// role. Nozzles have a hard dependency on their parent profile and are
// derived with DeriveNozzle instead.
func Derive(role Role, part string, rec standards.DimensionRecord) (Profile, error) {
	if err := checkUnits(part, rec); err != nil {
		return nil, err
	}
	switch role {
	case RoleShell:
		return deriveShell(part, rec)
	case RoleCone:
		return deriveCone(part, rec)
	case RoleHead:
		return deriveHead(part, rec)
	case RoleRing:
		return deriveRing(part, rec)
	case RoleFlange:
		return deriveFlange(part, rec)
	case RoleNozzle:
		return nil, fmt.Errorf("profile: nozzle %q requires a parent profile, use DeriveNozzle", part)
	default:
		return nil, fmt.Errorf("profile: unhandled role %s", role)
	}
}

// DeriveNozzle derives a nozzle profile, including its intersection curve
// against the parent shell or cone.
func DeriveNozzle(part string, rec standards.DimensionRecord, parent Profile) (NozzleProfile, error) {
	if err := checkUnits(part, rec); err != nil {
		return NozzleProfile{}, err
	}

	f := newFields(rec)
	dia := f.num("diameter")
	length := f.num("length")
	thickness := f.num("thickness")
	position := f.num("position")
	offset := f.opt("offset") // absent means an on-axis branch
	angle := f.opt("angle")   // absent means a radial branch
	if err := f.incomplete(RoleNozzle, part); err != nil {
		return NozzleProfile{}, err
	}
	if dia <= 0 || length <= 0 || thickness < 0 {
		return NozzleProfile{}, InvalidGeometryError{Part: part, Reason: "non-positive branch dimensions"}
	}

	var parentDia float64
	var parentName string
	switch p := parent.(type) {
	case ShellProfile:
		parentDia = p.MeanDiameter
		parentName = p.Part
	case ConeProfile:
		parentDia = diameterAt(p.DiameterBase, p.DiameterTop, p.Height, position) - p.Thickness
		parentName = p.Part
	default:
		return NozzleProfile{}, fmt.Errorf("profile: nozzle %q parent must be a shell or cone, got %s", part, parent.Role())
	}

	r := meanDiameter(dia, thickness) / 2
	cut, ok := generatrixCurve(parentDia, r, offset, length)
	if !ok {
		return NozzleProfile{}, InvalidGeometryError{
			Part:   part,
			Reason: fmt.Sprintf("branch of radius %.4g at offset %.4g does not fit parent %q (diameter %.4g)", r, offset, parentName, parentDia),
		}
	}

	return NozzleProfile{
		Part:           part,
		ParentPart:     parentName,
		Diameter:       dia,
		Length:         length,
		Thickness:      thickness,
		Position:       position,
		Offset:         offset,
		Angle:          angle,
		MeanRadius:     r,
		UnwrappedWidth: 2 * math.Pi * r,
		Cutout:         cut,
	}, nil
}

func deriveShell(part string, rec standards.DimensionRecord) (Profile, error) {
	f := newFields(rec)
	dia := f.num("diameter")
	length := f.num("length")
	thickness := f.num("thickness")
	if err := f.incomplete(RoleShell, part); err != nil {
		return nil, err
	}
	if dia <= 0 || length <= 0 || thickness < 0 || thickness >= dia {
		return nil, InvalidGeometryError{Part: part, Reason: "non-positive shell dimensions"}
	}
	return ShellProfile{
		Part:           part,
		Diameter:       dia,
		Length:         length,
		Thickness:      thickness,
		MeanDiameter:   meanDiameter(dia, thickness),
		UnwrappedWidth: unwrappedWidth(dia, thickness),
	}, nil
}

func deriveCone(part string, rec standards.DimensionRecord) (Profile, error) {
	f := newFields(rec)
	diaTop := f.num("diameter_top")
	diaBase := f.num("diameter_base")
	height := f.num("height")
	thickness := f.num("thickness")
	if err := f.incomplete(RoleCone, part); err != nil {
		return nil, err
	}
	if diaBase <= 0 || diaTop < 0 || height <= 0 {
		return nil, InvalidGeometryError{Part: part, Reason: "non-positive cone dimensions"}
	}

	halfDelta := (diaBase - diaTop) / 2
	return ConeProfile{
		Part:         part,
		DiameterTop:  diaTop,
		DiameterBase: diaBase,
		Height:       height,
		Thickness:    thickness,
		HalfAngle:    coneHalfAngle(diaBase, diaTop, height),
		SlantHeight:  math.Hypot(height, halfDelta),
		ApexHeight:   coneApexHeight(diaBase, diaTop, height),
	}, nil
}

// deriveHead treats a record with no crown_radius field as a flat head; a
// record that carries the field (even null) describes a dished head, and a
// null crown radius then fails the derivation.
func deriveHead(part string, rec standards.DimensionRecord) (Profile, error) {
	f := newFields(rec)
	dia := f.num("diameter")
	thickness := f.num("thickness")

	if _, dished := rec.Field("crown_radius"); !dished {
		if err := f.incomplete(RoleHead, part); err != nil {
			return nil, err
		}
		if dia <= 0 || thickness <= 0 {
			return nil, InvalidGeometryError{Part: part, Reason: "non-positive head dimensions"}
		}
		return HeadProfile{Part: part, Kind: HeadFlat, Diameter: dia, Thickness: thickness}, nil
	}

	crown := f.num("crown_radius")
	knuckle := f.opt("knuckle_radius") // absent means a spherical cap
	straight := f.opt("straight_flange")
	if err := f.incomplete(RoleHead, part); err != nil {
		return nil, err
	}
	if dia <= 0 || thickness <= 0 || crown <= 0 || knuckle < 0 {
		return nil, InvalidGeometryError{Part: part, Reason: "non-positive head dimensions"}
	}

	rise, ok := dishRise(crown, knuckle, dia/2-thickness)
	if !ok {
		return nil, InvalidGeometryError{
			Part:   part,
			Reason: fmt.Sprintf("crown %.4g / knuckle %.4g cannot close diameter %.4g", crown, knuckle, dia),
		}
	}
	return HeadProfile{
		Part:           part,
		Kind:           HeadDished,
		Diameter:       dia,
		Thickness:      thickness,
		CrownRadius:    crown,
		KnuckleRadius:  knuckle,
		StraightFlange: straight,
		DishRise:       rise,
	}, nil
}

func deriveRing(part string, rec standards.DimensionRecord) (Profile, error) {
	f := newFields(rec)
	dia := f.num("diameter")
	width := f.num("width")
	thickness := f.num("thickness")
	offset := f.num("offset") // signed; the record states direction and magnitude
	if err := f.incomplete(RoleRing, part); err != nil {
		return nil, err
	}
	if dia <= 0 || width <= 0 || thickness <= 0 {
		return nil, InvalidGeometryError{Part: part, Reason: "non-positive ring dimensions"}
	}
	return RingProfile{
		Part:        part,
		Diameter:    dia,
		Width:       width,
		Thickness:   thickness,
		AxialOffset: offset,
	}, nil
}

func deriveFlange(part string, rec standards.DimensionRecord) (Profile, error) {
	face, err := faceVariant(part, rec.Spec.FaceType)
	if err != nil {
		return nil, err
	}

	f := newFields(rec)
	outer := f.num("D")
	thickness := f.num("T")
	boltCircle := f.num("K")
	holes := f.num("holes")
	holeDia := f.num("hole_dia")

	fp := FlangeProfile{
		Part:               part,
		Face:               face,
		OuterDiameter:      outer,
		Thickness:          thickness,
		BoltCircleDiameter: boltCircle,
		HoleDiameter:       holeDia,
	}
	switch face {
	case FaceRaised:
		fp.RaisedFaceDiameter = f.num("Y")
		fp.RaisedFaceHeight = f.num("f")
	case FaceRingJoint:
		fp.GrooveDiameter = f.num("groove_dia")
		fp.GrooveDepth = f.num("groove_depth")
	}
	if err := f.incomplete(RoleFlange, part); err != nil {
		return nil, err
	}

	if holes < 1 || holes != math.Trunc(holes) {
		return nil, InvalidGeometryError{Part: part, Reason: fmt.Sprintf("hole count %.4g is not a positive integer", holes)}
	}
	if outer <= 0 || thickness <= 0 || boltCircle <= 0 || boltCircle >= outer || holeDia <= 0 {
		return nil, InvalidGeometryError{Part: part, Reason: "inconsistent flange dimensions"}
	}
	fp.HoleCount = int(holes)
	return fp, nil
}

// faceVariant maps a standard's face code onto a face-geometry variant.
// EN 1092-1 type A is a flat face, B1/B2 are raised faces; ring-joint covers
// the ASME RTJ codes. An empty code means flat.
func faceVariant(part, code string) (FaceType, error) {
	switch code {
	case "", "A", "flat":
		return FaceFlat, nil
	case "B", "B1", "B2", "raised":
		return FaceRaised, nil
	case "J", "RTJ", "ring-joint":
		return FaceRingJoint, nil
	default:
		return 0, UnsupportedFaceTypeError{Part: part, FaceType: code}
	}
}

// ---------------------------------------------------------------------------
// Field access
// ---------------------------------------------------------------------------

// fields accumulates missing required field names while reading a record, so
// one IncompleteProfileError can name all of them at once.
type fields struct {
	rec     standards.DimensionRecord
	missing []string
}

func newFields(rec standards.DimensionRecord) *fields {
	return &fields{rec: rec}
}

// num reads a required numeric field, recording it as missing when absent or
// null.
func (f *fields) num(name string) float64 {
	v, ok := f.rec.Numeric(name)
	if !ok {
		f.missing = append(f.missing, name)
		return 0
	}
	return v
}

// opt reads an optional numeric field; absent or null yields zero without
// failing the derivation.
func (f *fields) opt(name string) float64 {
	v, _ := f.rec.Numeric(name)
	return v
}

// incomplete returns the accumulated IncompleteProfileError, or nil.
func (f *fields) incomplete(role Role, part string) error {
	if len(f.missing) == 0 {
		return nil
	}
	return IncompleteProfileError{Role: role, Part: part, Missing: f.missing}
}

func checkUnits(part string, rec standards.DimensionRecord) error {
	if rec.Units != standards.CanonicalUnit {
		return UnitMismatchError{Part: part, Units: rec.Units}
	}
	return nil
}
