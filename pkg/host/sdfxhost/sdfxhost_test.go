package sdfxhost

import (
	"context"
	"math"
	"testing"

	"vesselcad/pkg/profile"
)

func TestShellSolidBounds(t *testing.T) {
	h := New()
	hd, err := h.CreateSweptSolid(context.Background(), profile.ShellProfile{
		Part:      "shell-1",
		Diameter:  1000,
		Length:    2000,
		Thickness: 10,
	})
	if err != nil {
		t.Fatalf("CreateSweptSolid failed: %v", err)
	}
	if hd.IsZero() {
		t.Fatal("expected a non-zero handle")
	}
	s, ok := h.get(hd)
	if !ok {
		t.Fatal("handle not registered")
	}
	bb := s.BoundingBox()
	const tol = 0.5
	if math.Abs(bb.Min.Z-0) > tol || math.Abs(bb.Max.Z-2000) > tol {
		t.Errorf("shell Z extent [%f, %f], expected [0, 2000]", bb.Min.Z, bb.Max.Z)
	}
	if math.Abs(bb.Max.X-500) > tol || math.Abs(bb.Min.X+500) > tol {
		t.Errorf("shell X extent [%f, %f], expected [-500, 500]", bb.Min.X, bb.Max.X)
	}
}

func TestConeSolidBounds(t *testing.T) {
	h := New()
	hd, err := h.CreateSweptSolid(context.Background(), profile.ConeProfile{
		Part:         "cone-1",
		DiameterTop:  600,
		DiameterBase: 1200,
		Height:       900,
		Thickness:    8,
		HalfAngle:    math.Atan2(300, 900),
		SlantHeight:  math.Hypot(300, 900),
		ApexHeight:   1800,
	})
	if err != nil {
		t.Fatalf("CreateSweptSolid failed: %v", err)
	}
	s, _ := h.get(hd)
	bb := s.BoundingBox()
	const tol = 0.5
	if math.Abs(bb.Min.Z-0) > tol || math.Abs(bb.Max.Z-900) > tol {
		t.Errorf("cone Z extent [%f, %f], expected [0, 900]", bb.Min.Z, bb.Max.Z)
	}
	if math.Abs(bb.Max.X-600) > tol {
		t.Errorf("cone max X = %f, expected ~600 (base radius)", bb.Max.X)
	}
}

func TestDegenerateConeIsTube(t *testing.T) {
	h := New()
	hd, err := h.CreateSweptSolid(context.Background(), profile.ConeProfile{
		Part:         "course-2",
		DiameterTop:  1000,
		DiameterBase: 1000,
		Height:       1200,
		Thickness:    10,
		HalfAngle:    0,
		SlantHeight:  1200,
	})
	if err != nil {
		t.Fatalf("CreateSweptSolid failed: %v", err)
	}
	s, _ := h.get(hd)
	bb := s.BoundingBox()
	const tol = 0.5
	if math.Abs(bb.Max.X-500) > tol {
		t.Errorf("degenerate cone max X = %f, expected 500", bb.Max.X)
	}
}

func TestDishedHeadApexHeight(t *testing.T) {
	h := New()
	p := profile.HeadProfile{
		Part:           "head-1",
		Kind:           profile.HeadDished,
		Diameter:       1000,
		Thickness:      10,
		CrownRadius:    1000,
		KnuckleRadius:  100,
		StraightFlange: 40,
		DishRise:       900 - math.Sqrt(900*900-390*390),
	}
	hd, err := h.CreateSweptSolid(context.Background(), p)
	if err != nil {
		t.Fatalf("CreateSweptSolid failed: %v", err)
	}
	s, _ := h.get(hd)
	bb := s.BoundingBox()
	apex := p.StraightFlange + p.DishRise + p.Thickness
	const tol = 1.0
	if math.Abs(bb.Min.Z-0) > tol {
		t.Errorf("head base Z = %f, expected 0", bb.Min.Z)
	}
	if bb.Max.Z < apex-tol {
		t.Errorf("head top Z = %f, expected >= %f", bb.Max.Z, apex)
	}
}

func TestFlatHeadIsDisc(t *testing.T) {
	h := New()
	hd, err := h.CreateSweptSolid(context.Background(), profile.HeadProfile{
		Part:      "blind-1",
		Kind:      profile.HeadFlat,
		Diameter:  600,
		Thickness: 30,
	})
	if err != nil {
		t.Fatalf("CreateSweptSolid failed: %v", err)
	}
	s, _ := h.get(hd)
	bb := s.BoundingBox()
	const tol = 0.5
	if math.Abs(bb.Max.Z-30) > tol || math.Abs(bb.Min.Z-0) > tol {
		t.Errorf("flat head Z extent [%f, %f], expected [0, 30]", bb.Min.Z, bb.Max.Z)
	}
}

func TestNozzleBranchSeatsOnParent(t *testing.T) {
	h := New()
	ctx := context.Background()
	parent, err := h.CreateSweptSolid(ctx, profile.ShellProfile{
		Part:      "shell-1",
		Diameter:  1000,
		Length:    2000,
		Thickness: 10,
	})
	if err != nil {
		t.Fatalf("parent solid failed: %v", err)
	}
	hd, err := h.CreateIntersection(ctx, profile.NozzleProfile{
		Part:       "n1",
		ParentPart: "shell-1",
		Diameter:   200,
		Length:     800,
		Thickness:  8,
		Position:   600,
	}, parent)
	if err != nil {
		t.Fatalf("CreateIntersection failed: %v", err)
	}
	s, _ := h.get(hd)
	bb := s.BoundingBox()
	const tol = 1.0
	// Branch axis runs radially along +X from the parent axis.
	if math.Abs(bb.Max.X-800) > tol {
		t.Errorf("branch max X = %f, expected 800", bb.Max.X)
	}
	if math.Abs(bb.Min.Z-500) > tol || math.Abs(bb.Max.Z-700) > tol {
		t.Errorf("branch Z extent [%f, %f], expected [500, 700]", bb.Min.Z, bb.Max.Z)
	}
}

func TestNozzleUnknownParentFails(t *testing.T) {
	h := New()
	_, err := h.CreateIntersection(context.Background(), profile.NozzleProfile{
		Part: "n1", Diameter: 200, Length: 800, Thickness: 8,
	}, "solid-99")
	if err == nil {
		t.Fatal("expected an error for an unknown parent handle")
	}
}

func TestRingOffsetFromReference(t *testing.T) {
	h := New()
	ctx := context.Background()
	ref, err := h.CreateSweptSolid(ctx, profile.ShellProfile{
		Part: "shell-1", Diameter: 1000, Length: 2000, Thickness: 10,
	})
	if err != nil {
		t.Fatalf("reference solid failed: %v", err)
	}
	hd, err := h.CreateOffsetEntity(ctx, profile.RingProfile{
		Part:          "ring-1",
		ReferencePart: "shell-1",
		Diameter:      1040,
		Width:         80,
		Thickness:     12,
		AxialOffset:   350,
	}, ref)
	if err != nil {
		t.Fatalf("CreateOffsetEntity failed: %v", err)
	}
	s, _ := h.get(hd)
	bb := s.BoundingBox()
	const tol = 0.5
	if math.Abs(bb.Min.Z-350) > tol || math.Abs(bb.Max.Z-430) > tol {
		t.Errorf("ring Z extent [%f, %f], expected [350, 430]", bb.Min.Z, bb.Max.Z)
	}
}

func TestDeleteEntity(t *testing.T) {
	h := New()
	ctx := context.Background()
	hd, err := h.CreateSweptSolid(ctx, profile.ShellProfile{
		Part: "shell-1", Diameter: 1000, Length: 2000, Thickness: 10,
	})
	if err != nil {
		t.Fatalf("CreateSweptSolid failed: %v", err)
	}
	if err := h.DeleteEntity(ctx, hd); err != nil {
		t.Fatalf("DeleteEntity failed: %v", err)
	}
	if h.Live() != 0 {
		t.Fatalf("expected no live solids, got %d", h.Live())
	}
	if err := h.DeleteEntity(ctx, hd); err == nil {
		t.Fatal("expected an error deleting an unknown handle")
	}
}

func TestWrongProfileKindRejected(t *testing.T) {
	h := New()
	ctx := context.Background()
	if _, err := h.CreateSweptSolid(ctx, profile.NozzleProfile{Part: "n1"}); err == nil {
		t.Error("CreateSweptSolid accepted a nozzle")
	}
	if _, err := h.CreateOffsetEntity(ctx, profile.ShellProfile{Part: "s1"}, ""); err == nil {
		t.Error("CreateOffsetEntity accepted a shell")
	}
	if _, err := h.CreateIntersection(ctx, profile.RingProfile{Part: "r1"}, ""); err == nil {
		t.Error("CreateIntersection accepted a ring")
	}
}

func TestCancelledContext(t *testing.T) {
	h := New()
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := h.CreateSweptSolid(ctx, profile.ShellProfile{Part: "s1", Diameter: 100, Length: 100, Thickness: 5}); err == nil {
		t.Fatal("expected a context error")
	}
	if h.Live() != 0 {
		t.Fatalf("expected no live solids, got %d", h.Live())
	}
}

func TestFlangeMesh(t *testing.T) {
	h := New()
	hd, err := h.CreateSweptSolid(context.Background(), profile.FlangeProfile{
		Part:               "fl-1",
		Face:               profile.FaceRaised,
		OuterDiameter:      200,
		Thickness:          24,
		BoltCircleDiameter: 160,
		HoleCount:          8,
		HoleDiameter:       18,
		RaisedFaceDiameter: 138,
		RaisedFaceHeight:   3,
	})
	if err != nil {
		t.Fatalf("CreateSweptSolid failed: %v", err)
	}
	m, err := h.Mesh(hd)
	if err != nil {
		t.Fatalf("Mesh failed: %v", err)
	}
	if m.TriangleCount() == 0 {
		t.Fatal("expected a non-empty mesh")
	}
	if m.PartName != "fl-1" {
		t.Errorf("mesh part name = %q, expected fl-1", m.PartName)
	}
	if len(m.Vertices) != len(m.Normals) {
		t.Fatalf("vertices length %d != normals length %d", len(m.Vertices), len(m.Normals))
	}
	t.Logf("flange triangle count: %d", m.TriangleCount())
}
