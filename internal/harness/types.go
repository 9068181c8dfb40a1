package harness

import (
	"fmt"

	"github.com/roach88/volley/internal/engine"
	"github.com/roach88/volley/internal/ir"
	"github.com/roach88/volley/internal/testutil"
)

// TraceLine is one line of a scenario trace. Step headers have Seq 0.
type TraceLine struct {
	Seq  int64  `json:"seq"`
	Text string `json:"text"`
}

// String renders the line the way golden files store it.
func (l TraceLine) String() string {
	if l.Seq == 0 {
		return "# " + l.Text
	}
	return fmt.Sprintf("%04d %s", l.Seq, l.Text)
}

// Result is the outcome of a scenario run.
type Result struct {
	// Pass is true when every assertion held.
	Pass bool `json:"pass"`

	Trace  []TraceLine `json:"trace"`
	Errors []string    `json:"errors,omitempty"`

	// Actions is the number of host action executions.
	Actions int `json:"actions"`

	Generation  *ir.Generation                     `json:"-"`
	Projectiles map[string]*testutil.Projectile    `json:"-"`
	States      map[ir.InstanceID]ir.InstanceState `json:"-"`
}

// NewResult creates a passing result.
func NewResult() *Result {
	return &Result{
		Pass:        true,
		Trace:       []TraceLine{},
		Errors:      []string{},
		Projectiles: make(map[string]*testutil.Projectile),
	}
}

// AddError records a failure.
func (r *Result) AddError(err string) {
	r.Errors = append(r.Errors, err)
	r.Pass = false
}

func (r *Result) header(format string, args ...any) {
	r.Trace = append(r.Trace, TraceLine{Text: fmt.Sprintf(format, args...)})
}

func (r *Result) firing(f engine.Firing) {
	r.Trace = append(r.Trace, TraceLine{Seq: f.Seq, Text: FormatFiring(f)})
}

// Firings returns the text of every non-header line.
func (r *Result) Firings() []string {
	var out []string
	for _, l := range r.Trace {
		if l.Seq != 0 {
			out = append(out, l.Text)
		}
	}
	return out
}

// FormatFiring renders a firing without its sequence number.
func FormatFiring(f engine.Firing) string {
	switch f.Kind {
	case engine.FiringTrigger:
		s := fmt.Sprintf("trigger %s %s", f.Event, f.Trigger)
		if f.Instance != "" {
			s += " on " + string(f.Instance)
		}
		if f.Emitter != "" {
			s += " -> " + f.Emitter
		}
		return s
	case engine.FiringApply, engine.FiringEmit:
		return fmt.Sprintf("%s %s %s remaining=%d", f.Kind, f.Emitter, f.Instance, f.Remaining)
	default:
		return fmt.Sprintf("%s %s %s", f.Kind, f.Emitter, f.Instance)
	}
}
