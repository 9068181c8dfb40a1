package harness

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	"github.com/roach88/volley/internal/ir"
)

// Scenario is one harness run: a configuration, a list of host steps and
// assertions over the result.
type Scenario struct {
	Name        string `yaml:"name"`
	Description string `yaml:"description"`

	// Config is the configuration directory loaded before the first step.
	// Relative paths resolve against the scenario file.
	Config string `yaml:"config"`

	// Plugins is the load order used to resolve plugin|id form references.
	Plugins []string `yaml:"plugins,omitempty"`

	Steps      []Step      `yaml:"steps"`
	Assertions []Assertion `yaml:"assertions"`

	dir string
}

// Step is one host action. Exactly one field is set.
type Step struct {
	Dispatch *DispatchStep `yaml:"dispatch,omitempty"`
	Launch   *LaunchStep   `yaml:"launch,omitempty"`
	Tick     *TickStep     `yaml:"tick,omitempty"`
	Impact   string        `yaml:"impact,omitempty"`
	Release  string        `yaml:"release,omitempty"`
	Apply    *ApplyStep    `yaml:"apply,omitempty"`
	Disable  string        `yaml:"disable,omitempty"`
	Reload   *ReloadStep   `yaml:"reload,omitempty"`
	Restart  bool          `yaml:"restart,omitempty"`
}

// DispatchStep runs the triggers of Event. Projectile, when set, names a
// spawned projectile passed to the actions.
type DispatchStep struct {
	Event      string      `yaml:"event"`
	Projectile string      `yaml:"projectile,omitempty"`
	Victim     *ActorSpec  `yaml:"victim,omitempty"`
	Context    ContextSpec `yaml:"context"`
}

// LaunchStep spawns a projectile unless a trigger suppresses it. The
// projectile context defaults to origin Spell, or Arrow when Arrow is set.
type LaunchStep struct {
	Projectile string      `yaml:"projectile"`
	Arrow      bool        `yaml:"arrow,omitempty"`
	Speed      float64     `yaml:"speed"`
	MaxSpeed   float64     `yaml:"max_speed"`
	NoEmitter  bool        `yaml:"no_emitter,omitempty"`
	Context    ContextSpec `yaml:"context"`
}

// TickStep advances every live projectile by DT, Frames times.
type TickStep struct {
	DT     float64 `yaml:"dt"`
	Frames int     `yaml:"frames,omitempty"`
}

// ApplyStep assigns the emitter named Emitter to Projectile.
type ApplyStep struct {
	Projectile string `yaml:"projectile"`
	Emitter    string `yaml:"emitter"`
}

// ReloadStep loads Config. ExpectError marks a reload that must be
// rejected.
type ReloadStep struct {
	Config      string `yaml:"config"`
	ExpectError bool   `yaml:"expect_error,omitempty"`
}

// FormSpec describes a fake form.
type FormSpec struct {
	ID       ir.FormID   `yaml:"id"`
	Keywords []ir.FormID `yaml:"keywords,omitempty"`
}

// ActorSpec describes a fake actor.
type ActorSpec struct {
	ID             ir.FormID   `yaml:"id"`
	Keywords       []ir.FormID `yaml:"keywords,omitempty"`
	Base           *FormSpec   `yaml:"base,omitempty"`
	EffectKeywords []ir.FormID `yaml:"effect_keywords,omitempty"`
}

// SpellSpec describes a fake spell and its effects.
type SpellSpec struct {
	ID       ir.FormID   `yaml:"id"`
	Keywords []ir.FormID `yaml:"keywords,omitempty"`
	Effects  []FormSpec  `yaml:"effects,omitempty"`
}

// ContextSpec describes an event context. Casting defaults to Other.
type ContextSpec struct {
	Weapon   *FormSpec  `yaml:"weapon,omitempty"`
	Shooter  *ActorSpec `yaml:"shooter,omitempty"`
	ProjBase *FormSpec  `yaml:"proj_base,omitempty"`
	Spell    *SpellSpec `yaml:"spell,omitempty"`
	Effect   *FormSpec  `yaml:"effect,omitempty"`
	Ammo     *FormSpec  `yaml:"ammo,omitempty"`
	Casting  string     `yaml:"casting,omitempty"`
	Origin   string     `yaml:"origin,omitempty"`
}

// Assertion checks the result of a run.
type Assertion struct {
	Type string `yaml:"type"`

	// Line is the firing line for trace_contains, or the prefix counted by
	// trace_count.
	Line  string   `yaml:"line,omitempty"`
	Lines []string `yaml:"lines,omitempty"`
	Count *int     `yaml:"count,omitempty"`

	Projectile string   `yaml:"projectile,omitempty"`
	Emitter    string   `yaml:"emitter,omitempty"`
	Remaining  *uint32  `yaml:"remaining,omitempty"`
	Speed      *float64 `yaml:"speed,omitempty"`
	Deleted    *bool    `yaml:"deleted,omitempty"`

	Emitters *int `yaml:"emitters,omitempty"`
	Triggers *int `yaml:"triggers,omitempty"`
}

// Assertion type constants.
const (
	AssertTraceContains = "trace_contains"
	AssertTraceOrder    = "trace_order"
	AssertTraceCount    = "trace_count"
	AssertEmitterState  = "emitter_state"
	AssertProjectile    = "projectile"
	AssertGeneration    = "generation"
)

// NoEmitter is the emitter_state value for a Disabled projectile.
const NoEmitter = "none"

// LoadScenario reads and validates a scenario file. Unknown fields are
// rejected.
func LoadScenario(path string) (*Scenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read scenario file: %w", err)
	}

	var s Scenario
	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true)
	if err := decoder.Decode(&s); err != nil {
		return nil, fmt.Errorf("failed to parse YAML: %w", err)
	}

	s.dir = filepath.Dir(path)
	s.Config = s.resolve(s.Config)
	for i := range s.Steps {
		if r := s.Steps[i].Reload; r != nil {
			r.Config = s.resolve(r.Config)
		}
	}

	if err := validateScenario(&s); err != nil {
		return nil, fmt.Errorf("invalid scenario: %w", err)
	}
	return &s, nil
}

func (s *Scenario) resolve(p string) string {
	if p == "" || filepath.IsAbs(p) || s.dir == "" {
		return p
	}
	return filepath.Join(s.dir, p)
}

func validateScenario(s *Scenario) error {
	if s.Name == "" {
		return fmt.Errorf("name is required")
	}
	if s.Description == "" {
		return fmt.Errorf("description is required")
	}
	if s.Config == "" {
		return fmt.Errorf("config is required")
	}
	if info, err := os.Stat(s.Config); err != nil || !info.IsDir() {
		return fmt.Errorf("config directory not found: %s", s.Config)
	}
	if len(s.Steps) == 0 {
		return fmt.Errorf("steps list is required and must be non-empty")
	}
	if len(s.Assertions) == 0 {
		return fmt.Errorf("assertions list is required and must be non-empty")
	}

	for i := range s.Steps {
		if err := validateStep(&s.Steps[i]); err != nil {
			return fmt.Errorf("steps[%d]: %w", i, err)
		}
	}
	for i := range s.Assertions {
		if err := validateAssertion(&s.Assertions[i]); err != nil {
			return fmt.Errorf("assertions[%d]: %w", i, err)
		}
	}
	return nil
}

func validateStep(st *Step) error {
	set := 0
	for _, ok := range []bool{
		st.Dispatch != nil, st.Launch != nil, st.Tick != nil,
		st.Impact != "", st.Release != "", st.Apply != nil,
		st.Disable != "", st.Reload != nil, st.Restart,
	} {
		if ok {
			set++
		}
	}
	if set != 1 {
		return fmt.Errorf("exactly one step kind must be set, got %d", set)
	}

	switch {
	case st.Dispatch != nil:
		if _, ok := ir.ParseEvent(st.Dispatch.Event); !ok {
			return fmt.Errorf("unknown event %q", st.Dispatch.Event)
		}
		return validateContext(&st.Dispatch.Context)
	case st.Launch != nil:
		if st.Launch.Projectile == "" {
			return fmt.Errorf("launch: projectile is required")
		}
		return validateContext(&st.Launch.Context)
	case st.Tick != nil:
		if st.Tick.DT < 0 {
			return fmt.Errorf("tick: dt must be non-negative")
		}
		if st.Tick.Frames < 0 {
			return fmt.Errorf("tick: frames must be non-negative")
		}
	case st.Apply != nil:
		if st.Apply.Projectile == "" || st.Apply.Emitter == "" {
			return fmt.Errorf("apply: projectile and emitter are required")
		}
	case st.Reload != nil:
		if st.Reload.Config == "" {
			return fmt.Errorf("reload: config is required")
		}
	}
	return nil
}

func validateContext(c *ContextSpec) error {
	if c.Casting != "" {
		if _, ok := ir.ParseCastingSource(c.Casting); !ok {
			return fmt.Errorf("unknown casting source %q", c.Casting)
		}
	}
	if c.Origin != "" {
		if _, ok := ir.ParseOriginKind(c.Origin); !ok {
			return fmt.Errorf("unknown origin %q", c.Origin)
		}
	}
	return nil
}

func validateAssertion(a *Assertion) error {
	switch a.Type {
	case "":
		return fmt.Errorf("type is required")
	case AssertTraceContains:
		if a.Line == "" {
			return fmt.Errorf("line is required for trace_contains")
		}
	case AssertTraceOrder:
		if len(a.Lines) == 0 {
			return fmt.Errorf("lines list is required for trace_order")
		}
	case AssertTraceCount:
		if a.Line == "" {
			return fmt.Errorf("line is required for trace_count")
		}
		if a.Count == nil || *a.Count < 0 {
			return fmt.Errorf("count must be set and non-negative for trace_count")
		}
	case AssertEmitterState:
		if a.Projectile == "" || a.Emitter == "" {
			return fmt.Errorf("projectile and emitter are required for emitter_state")
		}
	case AssertProjectile:
		if a.Projectile == "" {
			return fmt.Errorf("projectile is required for projectile")
		}
		if a.Speed == nil && a.Deleted == nil {
			return fmt.Errorf("projectile needs speed or deleted")
		}
	case AssertGeneration:
		if a.Emitters == nil && a.Triggers == nil {
			return fmt.Errorf("generation needs emitters or triggers")
		}
	default:
		return fmt.Errorf("unknown assertion type %q", a.Type)
	}
	return nil
}
