// Package assembly runs a whole build request end to end: resolve each part
// against the standards tables, merge the caller's job dimensions, derive
// geometric profiles, plan the construction order and execute the plan as a
// single session against the host.
package assembly

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"vesselcad/pkg/host"
	"vesselcad/pkg/plan"
	"vesselcad/pkg/profile"
	"vesselcad/pkg/sequence"
	"vesselcad/pkg/standards"
)

// PartRequest describes one part of the assembly. Standard/PressureClass/
// Face/Size select a table row; Dimensions carries the job inputs the tables
// cannot know (shell length, nozzle position) and overrides resolved fields
// of the same name. A part with no Standard is fully job-defined.
type PartRequest struct {
	Name          string  `yaml:"name"`
	Role          string  `yaml:"role"`
	Standard      string  `yaml:"standard,omitempty"`
	PressureClass string  `yaml:"pressure_class,omitempty"`
	Face          string  `yaml:"face,omitempty"`
	Size          float64 `yaml:"size,omitempty"`

	Parent    string `yaml:"parent,omitempty"`    // nozzle: shell/cone it penetrates
	Reference string `yaml:"reference,omitempty"` // ring: edge its offset is measured from
	Mount     string `yaml:"mount,omitempty"`     // flange: part it mounts on

	Dimensions map[string]float64 `yaml:"dimensions,omitempty"`
}

// BuildRequest is one vessel assembly.
type BuildRequest struct {
	Vessel string        `yaml:"vessel"`
	Parts  []PartRequest `yaml:"parts"`
}

// Result is the outcome of a build. Construction failures are values here,
// not errors: the session report carries the failed step and the rollback
// outcome.
type Result struct {
	Vessel  string
	Report  sequence.Report
	Profile map[string]profile.Profile
}

// Builder wires a standards resolver and a host into a request runner.
type Builder struct {
	resolver *standards.Resolver
	host     host.Host
	log      *zap.Logger
}

// Option configures a Builder.
type Option func(*Builder)

// WithLogger sets the builder logger. The default discards everything.
func WithLogger(log *zap.Logger) Option {
	return func(b *Builder) { b.log = log }
}

// NewBuilder creates a Builder.
func NewBuilder(r *standards.Resolver, h host.Host, opts ...Option) *Builder {
	b := &Builder{resolver: r, host: h, log: zap.NewNop()}
	for _, opt := range opts {
		opt(b)
	}
	return b
}

// Build resolves, derives, plans and constructs the requested assembly.
// Request, lookup, derivation and planning problems return an error before
// any host call is made; once construction starts, the outcome lives in the
// Result's session report.
func (b *Builder) Build(ctx context.Context, req BuildRequest) (Result, error) {
	if len(req.Parts) == 0 {
		return Result{}, fmt.Errorf("assembly: request %q has no parts", req.Vessel)
	}

	roles := make(map[string]profile.Role, len(req.Parts))
	for _, p := range req.Parts {
		if p.Name == "" {
			return Result{}, fmt.Errorf("assembly: request %q has a part with no name", req.Vessel)
		}
		role, err := profile.ParseRole(p.Role)
		if err != nil {
			return Result{}, fmt.Errorf("assembly: part %q: %w", p.Name, err)
		}
		if role == profile.RoleNozzle && p.Parent == "" {
			return Result{}, fmt.Errorf("assembly: nozzle %q names no parent", p.Name)
		}
		roles[p.Name] = role
	}

	// Nozzles derive against their parent's finished profile, so everything
	// else goes first; request order is otherwise preserved.
	derived := make(map[string]profile.Profile, len(req.Parts))
	for _, p := range req.Parts {
		if roles[p.Name] == profile.RoleNozzle {
			continue
		}
		rec, err := b.resolve(ctx, p)
		if err != nil {
			return Result{}, err
		}
		prof, err := profile.Derive(roles[p.Name], p.Name, rec)
		if err != nil {
			return Result{}, fmt.Errorf("assembly: part %q: %w", p.Name, err)
		}
		derived[p.Name] = withReferences(prof, p)
	}
	for _, p := range req.Parts {
		if roles[p.Name] != profile.RoleNozzle {
			continue
		}
		parent, ok := derived[p.Parent]
		if !ok {
			return Result{}, fmt.Errorf("assembly: nozzle %q: unknown parent %q", p.Name, p.Parent)
		}
		rec, err := b.resolve(ctx, p)
		if err != nil {
			return Result{}, err
		}
		prof, err := profile.DeriveNozzle(p.Name, rec, parent)
		if err != nil {
			return Result{}, fmt.Errorf("assembly: part %q: %w", p.Name, err)
		}
		derived[p.Name] = prof
	}

	profiles := make([]profile.Profile, 0, len(req.Parts))
	for _, p := range req.Parts {
		profiles = append(profiles, derived[p.Name])
	}

	steps, err := plan.Plan(profiles)
	if err != nil {
		return Result{}, fmt.Errorf("assembly: request %q: %w", req.Vessel, err)
	}

	session := sequence.New(b.host, steps, sequence.WithLogger(b.log))
	b.log.Info("construction session starting",
		zap.String("vessel", req.Vessel),
		zap.String("session", session.ID()),
		zap.Int("steps", len(steps)))
	report := session.Run(ctx)

	return Result{Vessel: req.Vessel, Report: report, Profile: derived}, nil
}

// resolve produces the dimension record for one part: a table lookup when the
// part names a standard, an empty record otherwise, with the job dimensions
// merged on top either way.
func (b *Builder) resolve(ctx context.Context, p PartRequest) (standards.DimensionRecord, error) {
	spec := standards.StandardPartSpec{
		Family:        p.Standard,
		PressureClass: p.PressureClass,
		FaceType:      p.Face,
		NominalSize:   p.Size,
	}

	var rec standards.DimensionRecord
	if p.Standard == "" {
		rec = standards.DimensionRecord{
			Spec:       spec,
			Fields:     make(map[string]standards.Value),
			Units:      standards.CanonicalUnit,
			Provenance: standards.ProvenanceExact,
		}
	} else {
		var err error
		rec, err = b.resolver.Resolve(ctx, spec)
		if err != nil {
			return standards.DimensionRecord{}, fmt.Errorf("assembly: part %q: %w", p.Name, err)
		}
		if rec.Provenance == standards.ProvenanceInterpolated {
			b.log.Warn("using interpolated dimensions",
				zap.String("part", p.Name),
				zap.String("standard", p.Standard),
				zap.Float64("size", p.Size))
		}
	}

	if len(p.Dimensions) > 0 {
		merged := make(map[string]standards.Value, len(rec.Fields)+len(p.Dimensions))
		for k, v := range rec.Fields {
			merged[k] = v
		}
		for k, v := range p.Dimensions {
			merged[k] = standards.Num(v)
		}
		rec.Fields = merged
	}
	return rec, nil
}

// withReferences stamps the request's cross-part references onto the derived
// profile. Nozzle parents come through derivation; ring and flange
// references only exist in the request.
func withReferences(p profile.Profile, req PartRequest) profile.Profile {
	switch v := p.(type) {
	case profile.RingProfile:
		v.ReferencePart = req.Reference
		return v
	case profile.FlangeProfile:
		v.Mount = req.Mount
		return v
	default:
		return p
	}
}
