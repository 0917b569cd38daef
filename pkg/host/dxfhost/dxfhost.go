// Package dxfhost implements the host.Host adapter as a 2D drafting backend
// using github.com/yofu/dxf. Each construction step contributes a flat
// pattern (shell unwrap, cone development, head cross-section, nozzle cutout
// plate) or a face view (flange). Patterns are buffered per handle and only
// replayed into a drawing on Save, so a session rollback removes an entity
// before anything reaches the sheet.
package dxfhost

import (
	"context"
	"fmt"
	"math"
	"sync"

	"github.com/yofu/dxf"
	"github.com/yofu/dxf/color"
	"github.com/yofu/dxf/drawing"
	"github.com/yofu/dxf/table"

	"vesselcad/pkg/host"
	"vesselcad/pkg/profile"
)

// Compile-time interface check.
var _ host.Host = (*Host)(nil)

const (
	curveSegments = 36
	partGap       = 120.0
	labelHeight   = 30.0
	labelOffset   = 60.0
)

// layerColor assigns one drawing layer per part role.
var layerColor = map[string]color.ColorNumber{
	"SHELL":  color.Red,
	"CONE":   color.Yellow,
	"HEAD":   color.Green,
	"NOZZLE": color.Cyan,
	"RING":   color.Magenta,
	"FLANGE": color.Blue,
}

// pattern is one buffered flat pattern, drawable at any sheet origin.
type pattern struct {
	part  string
	layer string
	width float64
	draw  func(d *drawing.Drawing, ox float64) error
}

// Host buffers flat patterns per construction handle.
type Host struct {
	mu       sync.Mutex
	next     int
	order    []host.Handle
	patterns map[host.Handle]*pattern
}

// New returns an empty drafting host.
func New() *Host {
	return &Host{patterns: make(map[host.Handle]*pattern)}
}

func (h *Host) put(p *pattern) host.Handle {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.next++
	hd := host.Handle(fmt.Sprintf("dxf-%d", h.next))
	h.patterns[hd] = p
	h.order = append(h.order, hd)
	return hd
}

// CreateSweptSolid buffers the flat pattern of a shell, cone, head or flange.
func (h *Host) CreateSweptSolid(ctx context.Context, p profile.Profile) (host.Handle, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	switch p := p.(type) {
	case profile.ShellProfile:
		return h.put(rectPattern(p.Part, "SHELL", p.UnwrappedWidth, p.Length)), nil
	case profile.ConeProfile:
		return h.put(conePattern(p)), nil
	case profile.HeadProfile:
		return h.put(headPattern(p)), nil
	case profile.FlangeProfile:
		return h.put(flangePattern(p)), nil
	default:
		return "", fmt.Errorf("dxfhost: %s %q is not a swept solid", p.Role(), p.PartName())
	}
}

// CreateOffsetEntity buffers a ring band unwrap. The reference handle, when
// present, must still be live; the flat pattern itself is position-free.
func (h *Host) CreateOffsetEntity(ctx context.Context, p profile.Profile, ref host.Handle) (host.Handle, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	ring, ok := p.(profile.RingProfile)
	if !ok {
		return "", fmt.Errorf("dxfhost: %s %q is not an offset entity", p.Role(), p.PartName())
	}
	if !ref.IsZero() {
		h.mu.Lock()
		_, live := h.patterns[ref]
		h.mu.Unlock()
		if !live {
			return "", fmt.Errorf("dxfhost: ring %q: unknown reference handle %q", ring.Part, ref)
		}
	}
	return h.put(rectPattern(ring.Part, "RING", math.Pi*(ring.Diameter-ring.Thickness), ring.Width)), nil
}

// CreateIntersection buffers the developed nozzle plate: the intersection
// curve against the parent forms the seam edge of the unwrap.
func (h *Host) CreateIntersection(ctx context.Context, p profile.Profile, ref host.Handle) (host.Handle, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	noz, ok := p.(profile.NozzleProfile)
	if !ok {
		return "", fmt.Errorf("dxfhost: %s %q is not an intersection entity", p.Role(), p.PartName())
	}
	if !ref.IsZero() {
		h.mu.Lock()
		_, live := h.patterns[ref]
		h.mu.Unlock()
		if !live {
			return "", fmt.Errorf("dxfhost: nozzle %q: unknown parent handle %q", noz.Part, ref)
		}
	}
	if len(noz.Cutout) < 2 {
		return "", fmt.Errorf("dxfhost: nozzle %q: empty cutout curve", noz.Part)
	}
	return h.put(nozzlePattern(noz)), nil
}

// DeleteEntity drops a buffered pattern so it never reaches the sheet.
func (h *Host) DeleteEntity(ctx context.Context, hd host.Handle) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	h.mu.Lock()
	defer h.mu.Unlock()
	if _, ok := h.patterns[hd]; !ok {
		return fmt.Errorf("dxfhost: unknown handle %q", hd)
	}
	delete(h.patterns, hd)
	return nil
}

// Live returns the number of buffered patterns.
func (h *Host) Live() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.patterns)
}

// Save replays the live patterns, in creation order, into a fresh drawing and
// writes it to path.
func (h *Host) Save(path string) error {
	h.mu.Lock()
	defer h.mu.Unlock()

	d := dxf.NewDrawing()
	added := make(map[string]bool)
	for _, hd := range h.order {
		p, ok := h.patterns[hd]
		if !ok {
			continue
		}
		if !added[p.layer] {
			if _, err := d.AddLayer(p.layer, layerColor[p.layer], table.LT_CONTINUOUS, false); err != nil {
				return fmt.Errorf("dxfhost: add layer %s: %w", p.layer, err)
			}
			added[p.layer] = true
		}
	}

	ox := 0.0
	for _, hd := range h.order {
		p, ok := h.patterns[hd]
		if !ok {
			continue
		}
		if err := d.ChangeLayer(p.layer); err != nil {
			return fmt.Errorf("dxfhost: layer %s: %w", p.layer, err)
		}
		if err := p.draw(d, ox); err != nil {
			return fmt.Errorf("dxfhost: draw %q: %w", p.part, err)
		}
		if _, err := d.Text(p.part, ox, -labelOffset, 0, labelHeight); err != nil {
			return fmt.Errorf("dxfhost: label %q: %w", p.part, err)
		}
		ox += p.width + partGap
	}
	if err := d.SaveAs(path); err != nil {
		return fmt.Errorf("dxfhost: save %s: %w", path, err)
	}
	return nil
}

// ---------------------------------------------------------------------------
// Flat patterns
// ---------------------------------------------------------------------------

func rectPattern(part, layer string, w, hgt float64) *pattern {
	return &pattern{
		part:  part,
		layer: layer,
		width: w,
		draw: func(d *drawing.Drawing, ox float64) error {
			_, err := d.LwPolyline(true,
				[]float64{ox, 0},
				[]float64{ox + w, 0},
				[]float64{ox + w, hgt},
				[]float64{ox, hgt},
			)
			return err
		},
	}
}

// conePattern develops a truncated cone into an annular sector. The arc
// length at the base equals the mid-wall base circumference; the degenerate
// zero-half-angle case unwraps as a plain rectangle.
func conePattern(p profile.ConeProfile) *pattern {
	if p.HalfAngle == 0 {
		return rectPattern(p.Part, "CONE", math.Pi*(p.DiameterBase-p.Thickness), p.Height)
	}
	outerR := math.Hypot(p.ApexHeight, p.DiameterBase/2)
	innerR := outerR * p.DiameterTop / p.DiameterBase
	sector := math.Pi * (p.DiameterBase - p.Thickness) / outerR
	w := 2 * outerR
	return &pattern{
		part:  p.Part,
		layer: "CONE",
		width: w,
		draw: func(d *drawing.Drawing, ox float64) error {
			// Apex at the sector center, development opening upward.
			ax, ay := ox+outerR, 0.0
			var pts [][]float64
			for i := 0; i <= curveSegments; i++ {
				a := math.Pi/2 - sector/2 + sector*float64(i)/curveSegments
				pts = append(pts, []float64{ax + outerR*math.Cos(a), ay + outerR*math.Sin(a)})
			}
			for i := curveSegments; i >= 0; i-- {
				a := math.Pi/2 - sector/2 + sector*float64(i)/curveSegments
				pts = append(pts, []float64{ax + innerR*math.Cos(a), ay + innerR*math.Sin(a)})
			}
			_, err := d.LwPolyline(true, pts...)
			return err
		},
	}
}

// headPattern draws the meridian cross-section of a vessel end: straight
// flange sides joined by the sampled crown arc. Flat heads are a rectangle.
func headPattern(p profile.HeadProfile) *pattern {
	if p.Kind == profile.HeadFlat {
		return rectPattern(p.Part, "HEAD", p.Diameter, p.Thickness)
	}
	half := p.Diameter / 2
	return &pattern{
		part:  p.Part,
		layer: "HEAD",
		width: p.Diameter,
		draw: func(d *drawing.Drawing, ox float64) error {
			pts := [][]float64{
				{ox, 0},
				{ox + p.Diameter, 0},
			}
			for i := 0; i <= curveSegments; i++ {
				x := half - p.Diameter*float64(i)/curveSegments
				rise := p.DishRise - p.CrownRadius + math.Sqrt(math.Max(0, p.CrownRadius*p.CrownRadius-x*x))
				pts = append(pts, []float64{ox + half + x, p.StraightFlange + math.Max(0, rise)})
			}
			_, err := d.LwPolyline(true, pts...)
			return err
		},
	}
}

// nozzlePattern draws the developed branch plate. The buffered cutout curve
// gives the material length at each unwrap position, so the seam edge sits at
// Length minus that value and the free end closes the plate at Length.
func nozzlePattern(p profile.NozzleProfile) *pattern {
	return &pattern{
		part:  p.Part,
		layer: "NOZZLE",
		width: p.UnwrappedWidth,
		draw: func(d *drawing.Drawing, ox float64) error {
			pts := make([][]float64, 0, len(p.Cutout)+2)
			for _, c := range p.Cutout {
				pts = append(pts, []float64{ox + c.X, p.Length - c.Y})
			}
			pts = append(pts,
				[]float64{ox + p.UnwrappedWidth, p.Length},
				[]float64{ox, p.Length},
			)
			_, err := d.LwPolyline(true, pts...)
			return err
		},
	}
}

// flangePattern draws the flange face view: outer circle, bolt circle, bolt
// holes and the raised-face or groove circle when the face variant has one.
func flangePattern(p profile.FlangeProfile) *pattern {
	return &pattern{
		part:  p.Part,
		layer: "FLANGE",
		width: p.OuterDiameter,
		draw: func(d *drawing.Drawing, ox float64) error {
			cx, cy := ox+p.OuterDiameter/2, p.OuterDiameter/2
			if _, err := d.Circle(cx, cy, 0, p.OuterDiameter/2); err != nil {
				return err
			}
			if _, err := d.Circle(cx, cy, 0, p.BoltCircleDiameter/2); err != nil {
				return err
			}
			for i := 0; i < p.HoleCount; i++ {
				a := 2 * math.Pi * float64(i) / float64(p.HoleCount)
				hx := cx + p.BoltCircleDiameter/2*math.Cos(a)
				hy := cy + p.BoltCircleDiameter/2*math.Sin(a)
				if _, err := d.Circle(hx, hy, 0, p.HoleDiameter/2); err != nil {
					return err
				}
			}
			switch p.Face {
			case profile.FaceRaised:
				if _, err := d.Circle(cx, cy, 0, p.RaisedFaceDiameter/2); err != nil {
					return err
				}
			case profile.FaceRingJoint:
				if _, err := d.Circle(cx, cy, 0, p.GrooveDiameter/2); err != nil {
					return err
				}
			}
			return nil
		},
	}
}
