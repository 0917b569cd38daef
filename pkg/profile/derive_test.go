package profile

import (
	"errors"
	"math"
	"testing"

	"vesselcad/pkg/standards"
)

func record(fields map[string]standards.Value) standards.DimensionRecord {
	return standards.DimensionRecord{
		Spec:   standards.StandardPartSpec{Family: "TEST", PressureClass: "PN16", NominalSize: 100},
		Units:  standards.CanonicalUnit,
		Fields: fields,
	}
}

func TestDeriveShell(t *testing.T) {
	rec := record(map[string]standards.Value{
		"diameter":  standards.Num(1000),
		"length":    standards.Num(2400),
		"thickness": standards.Num(10),
	})
	p, err := Derive(RoleShell, "shell", rec)
	if err != nil {
		t.Fatalf("Derive: %v", err)
	}
	shell, ok := p.(ShellProfile)
	if !ok {
		t.Fatalf("profile type = %T, want ShellProfile", p)
	}
	if shell.MeanDiameter != 990 {
		t.Errorf("mean diameter = %v, want 990", shell.MeanDiameter)
	}
	want := math.Pi * 990
	if math.Abs(shell.UnwrappedWidth-want) > 1e-9 {
		t.Errorf("unwrapped width = %v, want %v", shell.UnwrappedWidth, want)
	}
}

func TestDeriveShellMissingFields(t *testing.T) {
	rec := record(map[string]standards.Value{
		"diameter": standards.Num(1000),
		"length":   {}, // explicitly null
	})
	_, err := Derive(RoleShell, "shell", rec)
	var inc IncompleteProfileError
	if !errors.As(err, &inc) {
		t.Fatalf("err = %v, want IncompleteProfileError", err)
	}
	if len(inc.Missing) != 2 {
		t.Errorf("missing = %v, want length and thickness", inc.Missing)
	}
}

func TestDeriveUnitMismatch(t *testing.T) {
	rec := record(map[string]standards.Value{"diameter": standards.Num(40)})
	rec.Units = "in"
	_, err := Derive(RoleShell, "shell", rec)
	var um UnitMismatchError
	if !errors.As(err, &um) {
		t.Fatalf("err = %v, want UnitMismatchError", err)
	}
	if um.Units != "in" {
		t.Errorf("Units = %q, want in", um.Units)
	}
}

func TestDeriveConeDegeneratesToCylinder(t *testing.T) {
	rec := record(map[string]standards.Value{
		"diameter_top":  standards.Num(800),
		"diameter_base": standards.Num(800),
		"height":        standards.Num(1200),
		"thickness":     standards.Num(8),
	})
	p, err := Derive(RoleCone, "cone", rec)
	if err != nil {
		t.Fatalf("Derive: %v", err)
	}
	cone := p.(ConeProfile)
	if cone.HalfAngle != 0 {
		t.Errorf("half angle = %v, want exactly 0", cone.HalfAngle)
	}
	if cone.ApexHeight != 0 {
		t.Errorf("apex height = %v, want 0 for degenerate cone", cone.ApexHeight)
	}
	if cone.SlantHeight != 1200 {
		t.Errorf("slant height = %v, want 1200", cone.SlantHeight)
	}
}

func TestDeriveConeHalfAngle(t *testing.T) {
	rec := record(map[string]standards.Value{
		"diameter_top":  standards.Num(400),
		"diameter_base": standards.Num(1000),
		"height":        standards.Num(900),
		"thickness":     standards.Num(8),
	})
	p, err := Derive(RoleCone, "cone", rec)
	if err != nil {
		t.Fatalf("Derive: %v", err)
	}
	cone := p.(ConeProfile)
	want := math.Atan2(300, 900)
	if math.Abs(cone.HalfAngle-want) > 1e-12 {
		t.Errorf("half angle = %v, want %v", cone.HalfAngle, want)
	}
	// h_full = h * Db / (Db - Dt)
	if math.Abs(cone.ApexHeight-1500) > 1e-9 {
		t.Errorf("apex height = %v, want 1500", cone.ApexHeight)
	}
}

func TestDeriveDishedHead(t *testing.T) {
	// Kloepper-style proportions: R = D, r = 0.1 D.
	rec := record(map[string]standards.Value{
		"diameter":        standards.Num(1000),
		"thickness":       standards.Num(10),
		"crown_radius":    standards.Num(1000),
		"knuckle_radius":  standards.Num(100),
		"straight_flange": standards.Num(40),
	})
	p, err := Derive(RoleHead, "head", rec)
	if err != nil {
		t.Fatalf("Derive: %v", err)
	}
	head := p.(HeadProfile)
	if head.Kind != HeadDished {
		t.Fatalf("kind = %s, want dished", head.Kind)
	}
	// rise = R1 - sqrt(R1^2 - (b-r)^2), R1 = 900, b = 490, b-r = 390.
	want := 900 - math.Sqrt(900*900-390*390)
	if math.Abs(head.DishRise-want) > 1e-9 {
		t.Errorf("dish rise = %v, want %v", head.DishRise, want)
	}
}

func TestDeriveDishedHeadNullCrownFails(t *testing.T) {
	rec := record(map[string]standards.Value{
		"diameter":     standards.Num(1000),
		"thickness":    standards.Num(10),
		"crown_radius": {}, // dished type, radius null
	})
	_, err := Derive(RoleHead, "head", rec)
	var inc IncompleteProfileError
	if !errors.As(err, &inc) {
		t.Fatalf("err = %v, want IncompleteProfileError", err)
	}
}

func TestDeriveFlatHead(t *testing.T) {
	rec := record(map[string]standards.Value{
		"diameter":  standards.Num(600),
		"thickness": standards.Num(20),
	})
	p, err := Derive(RoleHead, "head", rec)
	if err != nil {
		t.Fatalf("Derive: %v", err)
	}
	if head := p.(HeadProfile); head.Kind != HeadFlat {
		t.Errorf("kind = %s, want flat", head.Kind)
	}
}

func TestDeriveFlangeFaces(t *testing.T) {
	base := map[string]standards.Value{
		"D":        standards.Num(220),
		"T":        standards.Num(20),
		"K":        standards.Num(180),
		"holes":    standards.Num(8),
		"hole_dia": standards.Num(18),
	}

	t.Run("flat", func(t *testing.T) {
		rec := record(base)
		rec.Spec.FaceType = "A"
		p, err := Derive(RoleFlange, "flange", rec)
		if err != nil {
			t.Fatalf("Derive: %v", err)
		}
		fl := p.(FlangeProfile)
		if fl.Face != FaceFlat || fl.HoleCount != 8 {
			t.Errorf("face = %s holes = %d, want flat/8", fl.Face, fl.HoleCount)
		}
	})

	t.Run("raised requires Y and f", func(t *testing.T) {
		rec := record(base)
		rec.Spec.FaceType = "B1"
		_, err := Derive(RoleFlange, "flange", rec)
		var inc IncompleteProfileError
		if !errors.As(err, &inc) {
			t.Fatalf("err = %v, want IncompleteProfileError", err)
		}
	})

	t.Run("raised complete", func(t *testing.T) {
		withFace := map[string]standards.Value{"Y": standards.Num(158), "f": standards.Num(2)}
		for k, v := range base {
			withFace[k] = v
		}
		rec := record(withFace)
		rec.Spec.FaceType = "B1"
		p, err := Derive(RoleFlange, "flange", rec)
		if err != nil {
			t.Fatalf("Derive: %v", err)
		}
		fl := p.(FlangeProfile)
		if fl.RaisedFaceDiameter != 158 || fl.RaisedFaceHeight != 2 {
			t.Errorf("raised face = %v/%v, want 158/2", fl.RaisedFaceDiameter, fl.RaisedFaceHeight)
		}
	})

	t.Run("unsupported face", func(t *testing.T) {
		rec := record(base)
		rec.Spec.FaceType = "Z9"
		_, err := Derive(RoleFlange, "flange", rec)
		var uf UnsupportedFaceTypeError
		if !errors.As(err, &uf) {
			t.Fatalf("err = %v, want UnsupportedFaceTypeError", err)
		}
		if uf.FaceType != "Z9" {
			t.Errorf("FaceType = %q, want Z9", uf.FaceType)
		}
	})
}

func TestDeriveRing(t *testing.T) {
	rec := record(map[string]standards.Value{
		"diameter":  standards.Num(1020),
		"width":     standards.Num(80),
		"thickness": standards.Num(12),
		"offset":    standards.Num(-350), // toward the reference edge
	})
	p, err := Derive(RoleRing, "ring", rec)
	if err != nil {
		t.Fatalf("Derive: %v", err)
	}
	ring := p.(RingProfile)
	if ring.AxialOffset != -350 {
		t.Errorf("axial offset = %v, want -350 (sign preserved)", ring.AxialOffset)
	}
}

func parentShell(t *testing.T) ShellProfile {
	t.Helper()
	rec := record(map[string]standards.Value{
		"diameter":  standards.Num(1000),
		"length":    standards.Num(2400),
		"thickness": standards.Num(10),
	})
	p, err := Derive(RoleShell, "shell", rec)
	if err != nil {
		t.Fatalf("parent shell: %v", err)
	}
	return p.(ShellProfile)
}

func TestDeriveNozzle(t *testing.T) {
	rec := record(map[string]standards.Value{
		"diameter":  standards.Num(200),
		"length":    standards.Num(800), // from the parent axis
		"thickness": standards.Num(6),
		"position":  standards.Num(600),
	})
	noz, err := DeriveNozzle("n1", rec, parentShell(t))
	if err != nil {
		t.Fatalf("DeriveNozzle: %v", err)
	}
	if noz.ParentPart != "shell" {
		t.Errorf("parent = %q, want shell", noz.ParentPart)
	}
	if len(noz.Cutout) == 0 {
		t.Fatal("cutout curve must not be empty")
	}
	// The cutout curve is periodic: first and last generatrix lengths agree.
	first, last := noz.Cutout[0], noz.Cutout[len(noz.Cutout)-1]
	if math.Abs(first.Y-last.Y) > 1e-9 {
		t.Errorf("generatrix endpoints differ: %v vs %v", first.Y, last.Y)
	}
	// Every generatrix is shorter than the full branch length.
	for _, pt := range noz.Cutout {
		if pt.Y >= noz.Length {
			t.Fatalf("generatrix %v >= branch length %v", pt.Y, noz.Length)
		}
	}
}

func TestDeriveNozzleTooWide(t *testing.T) {
	rec := record(map[string]standards.Value{
		"diameter":  standards.Num(1200), // wider than the parent
		"length":    standards.Num(800),
		"thickness": standards.Num(6),
		"position":  standards.Num(600),
	})
	_, err := DeriveNozzle("n1", rec, parentShell(t))
	var ig InvalidGeometryError
	if !errors.As(err, &ig) {
		t.Fatalf("err = %v, want InvalidGeometryError", err)
	}
}

func TestDeriveNozzleOnCone(t *testing.T) {
	coneRec := record(map[string]standards.Value{
		"diameter_top":  standards.Num(400),
		"diameter_base": standards.Num(1000),
		"height":        standards.Num(900),
		"thickness":     standards.Num(8),
	})
	cp, err := Derive(RoleCone, "cone", coneRec)
	if err != nil {
		t.Fatalf("Derive cone: %v", err)
	}

	rec := record(map[string]standards.Value{
		"diameter":  standards.Num(100),
		"length":    standards.Num(600),
		"thickness": standards.Num(5),
		"position":  standards.Num(300), // local diameter 800 there
	})
	noz, err := DeriveNozzle("n2", rec, cp)
	if err != nil {
		t.Fatalf("DeriveNozzle: %v", err)
	}
	if noz.ParentPart != "cone" {
		t.Errorf("parent = %q, want cone", noz.ParentPart)
	}
}

func TestDeriveNozzleRejectsBadParent(t *testing.T) {
	rec := record(map[string]standards.Value{
		"diameter":  standards.Num(100),
		"length":    standards.Num(600),
		"thickness": standards.Num(5),
		"position":  standards.Num(100),
	})
	ring := RingProfile{Part: "ring", Diameter: 500, Width: 50, Thickness: 10}
	if _, err := DeriveNozzle("n1", rec, ring); err == nil {
		t.Fatal("expected error for ring parent")
	}
}
