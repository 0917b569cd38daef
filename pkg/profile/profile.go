// Package profile converts resolved dimension records into fully-specified
// geometric profiles, one variant per part role. Profiles are produced once
// by derivation and consumed read-only by the planner and sequencer.
package profile

import "fmt"

// Role enumerates the part roles the derivation supports.
type Role int

const (
	RoleShell Role = iota
	RoleCone
	RoleHead
	RoleNozzle
	RoleRing
	RoleFlange
)

func (r Role) String() string {
	switch r {
	case RoleShell:
		return "shell"
	case RoleCone:
		return "cone"
	case RoleHead:
		return "head"
	case RoleNozzle:
		return "nozzle"
	case RoleRing:
		return "ring"
	case RoleFlange:
		return "flange"
	default:
		return fmt.Sprintf("Role(%d)", int(r))
	}
}

// ParseRole converts a role name to a Role.
func ParseRole(s string) (Role, error) {
	switch s {
	case "shell":
		return RoleShell, nil
	case "cone":
		return RoleCone, nil
	case "head":
		return RoleHead, nil
	case "nozzle":
		return RoleNozzle, nil
	case "ring":
		return RoleRing, nil
	case "flange":
		return RoleFlange, nil
	default:
		return 0, fmt.Errorf("profile: unknown role %q", s)
	}
}

// FaceType enumerates the supported flange sealing-face variants.
type FaceType int

const (
	FaceFlat FaceType = iota
	FaceRaised
	FaceRingJoint
)

func (f FaceType) String() string {
	switch f {
	case FaceFlat:
		return "flat"
	case FaceRaised:
		return "raised"
	case FaceRingJoint:
		return "ring-joint"
	default:
		return fmt.Sprintf("FaceType(%d)", int(f))
	}
}

// Profile is the closed sum over the six part roles. The marker method
// restricts implementations to this package so the planner and sequencer can
// match exhaustively.
type Profile interface {
	Role() Role
	PartName() string
	profile()
}

// ShellProfile is a cylindrical shell sweep: constant diameter, zero
// half-angle.
type ShellProfile struct {
	Part           string
	Diameter       float64 // outer diameter
	Length         float64
	Thickness      float64
	MeanDiameter   float64 // mid-wall diameter, D - s
	UnwrappedWidth float64 // flat-pattern width, pi * mid-wall diameter
}

func (ShellProfile) Role() Role         { return RoleShell }
func (p ShellProfile) PartName() string { return p.Part }
func (ShellProfile) profile()           {}

// ConeProfile is a conical (or, degenerately, cylindrical) sweep.
type ConeProfile struct {
	Part         string
	DiameterTop  float64
	DiameterBase float64
	Height       float64
	Thickness    float64
	HalfAngle    float64 // radians; zero when the diameters are equal
	SlantHeight  float64
	ApexHeight   float64 // full cone height h*Db/(Db-Dt); zero when degenerate
}

func (ConeProfile) Role() Role         { return RoleCone }
func (p ConeProfile) PartName() string { return p.Part }
func (ConeProfile) profile()           {}

// HeadKind distinguishes dished from flat heads.
type HeadKind int

const (
	HeadDished HeadKind = iota
	HeadFlat
)

func (k HeadKind) String() string {
	if k == HeadFlat {
		return "flat"
	}
	return "dished"
}

// HeadProfile is a vessel end: a dished (torispherical) or flat closure.
type HeadProfile struct {
	Part           string
	Kind           HeadKind
	Diameter       float64 // outer diameter
	Thickness      float64
	CrownRadius    float64 // dished only
	KnuckleRadius  float64 // dished only; zero means no knuckle (spherical cap)
	StraightFlange float64 // cylindrical skirt height
	DishRise       float64 // crown rise above the knuckle tangency plane
}

func (HeadProfile) Role() Role         { return RoleHead }
func (p HeadProfile) PartName() string { return p.Part }
func (HeadProfile) profile()           {}

// CutPoint is one vertex of an unwrapped cutout contour.
type CutPoint struct {
	X, Y float64
}

// NozzleProfile is a branch placed on a parent shell or cone. It carries its
// own sweep dimensions plus the intersection (cutout) curve against the
// parent, which is the only cross-profile dependency in the model.
type NozzleProfile struct {
	Part           string
	ParentPart     string
	Diameter       float64 // outer diameter of the branch
	Length         float64
	Thickness      float64
	Position       float64 // along the parent axis, from the reference edge
	Offset         float64 // off-axis offset; zero for an on-axis branch
	Angle          float64 // projection angle in radians; zero is radial
	MeanRadius     float64 // mid-wall radius of the branch
	UnwrappedWidth float64
	Cutout         []CutPoint // unwrapped intersection curve with the parent
}

func (NozzleProfile) Role() Role         { return RoleNozzle }
func (p NozzleProfile) PartName() string { return p.Part }
func (NozzleProfile) profile()           {}

// RingProfile is a stiffening band positioned at a signed axial offset from
// a reference edge.
type RingProfile struct {
	Part          string
	ReferencePart string // edge the offset is measured from; empty if absolute
	Diameter      float64
	Width         float64
	Thickness     float64
	AxialOffset   float64 // signed: direction and magnitude from the record
}

func (RingProfile) Role() Role         { return RoleRing }
func (p RingProfile) PartName() string { return p.Part }
func (RingProfile) profile()           {}

// FlangeProfile is bolt-circle plus face geometry for one flange. A flange
// may mount on a shell or cone end, or stand alone.
type FlangeProfile struct {
	Part               string
	Mount              string // shell/cone it mounts on; empty if standalone
	Face               FaceType
	OuterDiameter      float64
	Thickness          float64
	BoltCircleDiameter float64
	HoleCount          int
	HoleDiameter       float64
	RaisedFaceDiameter float64 // raised face only
	RaisedFaceHeight   float64 // raised face only
	GrooveDiameter     float64 // ring-joint only
	GrooveDepth        float64 // ring-joint only
}

func (FlangeProfile) Role() Role         { return RoleFlange }
func (p FlangeProfile) PartName() string { return p.Part }
func (FlangeProfile) profile()           {}
