// Package sdfxhost implements the host.Host adapter on top of the
// github.com/deadsy/sdfx SDF-based CAD library. Each construction step
// materializes a solid; handles index the live solids so a session rollback
// can remove them again before anything is meshed.
package sdfxhost

import (
	"context"
	"fmt"
	"math"
	"sync"

	"github.com/deadsy/sdfx/render"
	"github.com/deadsy/sdfx/sdf"
	v3 "github.com/deadsy/sdfx/vec/v3"

	"vesselcad/pkg/host"
	"vesselcad/pkg/profile"
)

// Compile-time interface check.
var _ host.Host = (*Host)(nil)

// meshCells controls marching cubes tessellation resolution.
const meshCells = 200

// Host materializes construction steps as SDF solids.
type Host struct {
	mu     sync.Mutex
	next   int
	solids map[host.Handle]sdf.SDF3
	parts  map[host.Handle]string
}

// New returns an empty solid host.
func New() *Host {
	return &Host{
		solids: make(map[host.Handle]sdf.SDF3),
		parts:  make(map[host.Handle]string),
	}
}

func (h *Host) put(part string, s sdf.SDF3) host.Handle {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.next++
	hd := host.Handle(fmt.Sprintf("solid-%d", h.next))
	h.solids[hd] = s
	h.parts[hd] = part
	return hd
}

func (h *Host) get(ref host.Handle) (sdf.SDF3, bool) {
	h.mu.Lock()
	defer h.mu.Unlock()
	s, ok := h.solids[ref]
	return s, ok
}

// CreateSweptSolid materializes a shell, cone, head or flange.
func (h *Host) CreateSweptSolid(ctx context.Context, p profile.Profile) (host.Handle, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	var (
		s   sdf.SDF3
		err error
	)
	switch p := p.(type) {
	case profile.ShellProfile:
		s, err = tube(p.Diameter/2, p.Diameter/2-p.Thickness, p.Length)
	case profile.ConeProfile:
		s, err = coneShell(p)
	case profile.HeadProfile:
		s, err = headSolid(p)
	case profile.FlangeProfile:
		s, err = flangeSolid(p)
	default:
		return "", fmt.Errorf("sdfxhost: %s %q is not a swept solid", p.Role(), p.PartName())
	}
	if err != nil {
		return "", fmt.Errorf("sdfxhost: %s %q: %w", p.Role(), p.PartName(), err)
	}
	return h.put(p.PartName(), s), nil
}

// CreateOffsetEntity materializes a ring band. With a reference entity the
// axial offset is measured from the base of the reference's bounding box,
// otherwise it is absolute.
func (h *Host) CreateOffsetEntity(ctx context.Context, p profile.Profile, ref host.Handle) (host.Handle, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	ring, ok := p.(profile.RingProfile)
	if !ok {
		return "", fmt.Errorf("sdfxhost: %s %q is not an offset entity", p.Role(), p.PartName())
	}
	base := 0.0
	if !ref.IsZero() {
		rs, ok := h.get(ref)
		if !ok {
			return "", fmt.Errorf("sdfxhost: ring %q: unknown reference handle %q", ring.Part, ref)
		}
		base = rs.BoundingBox().Min.Z
	}
	s, err := tube(ring.Diameter/2, ring.Diameter/2-ring.Thickness, ring.Width)
	if err != nil {
		return "", fmt.Errorf("sdfxhost: ring %q: %w", ring.Part, err)
	}
	s = sdf.Transform3D(s, sdf.Translate3d(v3.Vec{Z: base + ring.AxialOffset}))
	return h.put(ring.Part, s), nil
}

// CreateIntersection materializes a nozzle branch seated against its parent.
// The branch is a radial tube trimmed by the parent solid so the overlap
// inside the parent wall is cut away.
func (h *Host) CreateIntersection(ctx context.Context, p profile.Profile, ref host.Handle) (host.Handle, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	noz, ok := p.(profile.NozzleProfile)
	if !ok {
		return "", fmt.Errorf("sdfxhost: %s %q is not an intersection entity", p.Role(), p.PartName())
	}
	branch, err := tube(noz.Diameter/2, noz.Diameter/2-noz.Thickness, noz.Length)
	if err != nil {
		return "", fmt.Errorf("sdfxhost: nozzle %q: %w", noz.Part, err)
	}
	// Stand the branch radially: axis along +X, base at the parent axis, then
	// lift to the axial position and swing by the projection angle.
	m := sdf.RotateZ(noz.Angle).
		Mul(sdf.Translate3d(v3.Vec{X: noz.Length / 2, Y: noz.Offset, Z: noz.Position})).
		Mul(sdf.RotateY(math.Pi / 2)).
		Mul(sdf.Translate3d(v3.Vec{Z: -noz.Length / 2}))
	branch = sdf.Transform3D(branch, m)
	if !ref.IsZero() {
		parent, ok := h.get(ref)
		if !ok {
			return "", fmt.Errorf("sdfxhost: nozzle %q: unknown parent handle %q", noz.Part, ref)
		}
		branch = sdf.Difference3D(branch, parent)
	}
	return h.put(noz.Part, branch), nil
}

// DeleteEntity removes a previously created solid.
func (h *Host) DeleteEntity(ctx context.Context, hd host.Handle) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	h.mu.Lock()
	defer h.mu.Unlock()
	if _, ok := h.solids[hd]; !ok {
		return fmt.Errorf("sdfxhost: unknown handle %q", hd)
	}
	delete(h.solids, hd)
	delete(h.parts, hd)
	return nil
}

// Live returns the number of solids currently held.
func (h *Host) Live() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.solids)
}

// ---------------------------------------------------------------------------
// Solid construction
// ---------------------------------------------------------------------------

// tube builds a hollow cylinder with its base at z=0. A non-positive inner
// radius yields a solid bar.
func tube(outerR, innerR, length float64) (sdf.SDF3, error) {
	outer, err := sdf.Cylinder3D(length, outerR, 0)
	if err != nil {
		return nil, err
	}
	s := outer
	if innerR > 0 {
		inner, err := sdf.Cylinder3D(length, innerR, 0)
		if err != nil {
			return nil, err
		}
		s = sdf.Difference3D(outer, inner)
	}
	return sdf.Transform3D(s, sdf.Translate3d(v3.Vec{Z: length / 2})), nil
}

// coneShell builds a hollow truncated cone with its base at z=0. The
// degenerate equal-diameter case is still valid and renders as a tube.
func coneShell(p profile.ConeProfile) (sdf.SDF3, error) {
	if p.HalfAngle == 0 {
		return tube(p.DiameterBase/2, p.DiameterBase/2-p.Thickness, p.Height)
	}
	outer, err := sdf.Cone3D(p.Height, p.DiameterBase/2, p.DiameterTop/2, 0)
	if err != nil {
		return nil, err
	}
	inner, err := sdf.Cone3D(p.Height, p.DiameterBase/2-p.Thickness, p.DiameterTop/2-p.Thickness, 0)
	if err != nil {
		return nil, err
	}
	s := sdf.Difference3D(outer, inner)
	return sdf.Transform3D(s, sdf.Translate3d(v3.Vec{Z: p.Height / 2})), nil
}

// headSolid builds a vessel end with its open edge at z=0. Dished heads are a
// spherical crown shell clipped above the knuckle tangency plane, sitting on
// the straight-flange skirt; flat heads are a plain disc.
func headSolid(p profile.HeadProfile) (sdf.SDF3, error) {
	if p.Kind == profile.HeadFlat {
		disc, err := sdf.Cylinder3D(p.Thickness, p.Diameter/2, 0)
		if err != nil {
			return nil, err
		}
		return sdf.Transform3D(disc, sdf.Translate3d(v3.Vec{Z: p.Thickness / 2})), nil
	}
	s, err := tube(p.Diameter/2, p.Diameter/2-p.Thickness, p.StraightFlange)
	if err != nil {
		return nil, err
	}
	outer, err := sdf.Sphere3D(p.CrownRadius)
	if err != nil {
		return nil, err
	}
	inner, err := sdf.Sphere3D(p.CrownRadius - p.Thickness)
	if err != nil {
		return nil, err
	}
	crown := sdf.Difference3D(outer, inner)
	// Sphere center below the apex by the crown radius.
	apex := p.StraightFlange + p.DishRise + p.Thickness
	crown = sdf.Transform3D(crown, sdf.Translate3d(v3.Vec{Z: apex - p.CrownRadius}))
	// Clip to the crown band above the skirt.
	clip, err := sdf.Box3D(v3.Vec{X: p.Diameter, Y: p.Diameter, Z: p.DishRise + p.Thickness}, 0)
	if err != nil {
		return nil, err
	}
	clip = sdf.Transform3D(clip, sdf.Translate3d(v3.Vec{Z: p.StraightFlange + (p.DishRise+p.Thickness)/2}))
	return sdf.Union3D(s, sdf.Intersect3D(crown, clip)), nil
}

// flangeSolid builds a flange disc with its bolt holes, plus the raised face
// or ring-joint groove for the corresponding face variants.
func flangeSolid(p profile.FlangeProfile) (sdf.SDF3, error) {
	disc, err := sdf.Cylinder3D(p.Thickness, p.OuterDiameter/2, 0)
	if err != nil {
		return nil, err
	}
	s := sdf.Transform3D(disc, sdf.Translate3d(v3.Vec{Z: p.Thickness / 2}))
	for i := 0; i < p.HoleCount; i++ {
		hole, err := sdf.Cylinder3D(2*p.Thickness, p.HoleDiameter/2, 0)
		if err != nil {
			return nil, err
		}
		a := 2 * math.Pi * float64(i) / float64(p.HoleCount)
		m := sdf.Translate3d(v3.Vec{
			X: p.BoltCircleDiameter / 2 * math.Cos(a),
			Y: p.BoltCircleDiameter / 2 * math.Sin(a),
			Z: p.Thickness / 2,
		})
		s = sdf.Difference3D(s, sdf.Transform3D(hole, m))
	}
	switch p.Face {
	case profile.FaceRaised:
		face, err := sdf.Cylinder3D(p.RaisedFaceHeight, p.RaisedFaceDiameter/2, 0)
		if err != nil {
			return nil, err
		}
		face = sdf.Transform3D(face, sdf.Translate3d(v3.Vec{Z: p.Thickness + p.RaisedFaceHeight/2}))
		s = sdf.Union3D(s, face)
	case profile.FaceRingJoint:
		// Square-section slot sunk into the top face.
		slot, err := tube(p.GrooveDiameter/2+p.GrooveDepth/2, p.GrooveDiameter/2-p.GrooveDepth/2, 2*p.GrooveDepth)
		if err != nil {
			return nil, err
		}
		slot = sdf.Transform3D(slot, sdf.Translate3d(v3.Vec{Z: p.Thickness - p.GrooveDepth}))
		s = sdf.Difference3D(s, slot)
	}
	return s, nil
}

// ---------------------------------------------------------------------------
// Mesh export
// ---------------------------------------------------------------------------

// Mesh is a triangle mesh suitable for rendering or STL export.
// All arrays are flat: vertices has 3 floats per vertex (x,y,z),
// normals has 3 floats per vertex, indices has 3 uint32s per triangle.
type Mesh struct {
	Vertices []float32
	Normals  []float32
	Indices  []uint32
	PartName string
}

// TriangleCount returns the number of triangles.
func (m *Mesh) TriangleCount() int {
	return len(m.Indices) / 3
}

// Mesh tessellates a live solid with uniform marching cubes.
func (h *Host) Mesh(hd host.Handle) (*Mesh, error) {
	h.mu.Lock()
	s, ok := h.solids[hd]
	part := h.parts[hd]
	h.mu.Unlock()
	if !ok {
		return nil, fmt.Errorf("sdfxhost: unknown handle %q", hd)
	}

	renderer := render.NewMarchingCubesUniform(meshCells)
	triangles := render.ToTriangles(s, renderer)

	m := &Mesh{
		Vertices: make([]float32, 0, len(triangles)*9),
		Normals:  make([]float32, 0, len(triangles)*9),
		Indices:  make([]uint32, 0, len(triangles)*3),
		PartName: part,
	}
	for i, tri := range triangles {
		n := tri.Normal()
		nx, ny, nz := float32(n.X), float32(n.Y), float32(n.Z)
		for j := 0; j < 3; j++ {
			v := tri[j]
			m.Vertices = append(m.Vertices, float32(v.X), float32(v.Y), float32(v.Z))
			m.Normals = append(m.Normals, nx, ny, nz)
			m.Indices = append(m.Indices, uint32(i*3+j))
		}
	}
	return m, nil
}
