package engine

import (
	"log/slog"

	"github.com/roach88/volley/internal/ir"
)

// Scheduler drives per-instance emitter state against a Runtime.
//
// States per instance: Disabled (no entry, or a stale one) and
// Active(index, remaining). Transitions happen only in Apply, Disable and
// OnUpdate.
type Scheduler struct {
	states StateTable
	record func(Firing)
}

// NewScheduler returns a scheduler over states. record may be nil.
func NewScheduler(states StateTable, record func(Firing)) *Scheduler {
	if record == nil {
		record = func(Firing) {}
	}
	return &Scheduler{states: states, record: record}
}

// Apply assigns emitter idx to p. A limited emitter starts with its full
// count.
func (s *Scheduler) Apply(rt *Runtime, p Projectile, idx ir.Index) error {
	if !p.SupportsEmitter() {
		return &RuntimeError{
			Code:     ErrCodeUnsupportedInstance,
			Message:  "instance cannot carry an emitter",
			Instance: p.ID(),
			Index:    idx,
		}
	}
	def, err := rt.Emitters.Get(idx)
	if err != nil {
		return err
	}

	st := ir.InstanceState{Index: idx, Generation: rt.Gen.ID}
	if def.Limited {
		st.Remaining = def.Count
	}
	s.states.Set(p.ID(), st)

	s.record(Firing{Kind: FiringApply, Emitter: def.Name, Index: idx, Instance: p.ID(), Remaining: st.Remaining})
	slog.Debug("emitter applied", "instance", p.ID(), "emitter", def.Name, "index", idx)
	return nil
}

// Disable returns p to Disabled.
func (s *Scheduler) Disable(rt *Runtime, p Projectile) {
	st, ok := s.active(rt, p.ID())
	s.states.Delete(p.ID())
	if ok {
		s.record(Firing{Kind: FiringDisable, Emitter: s.name(rt, st.Index), Index: st.Index, Instance: p.ID()})
	}
}

// IsEmitter reports whether p carries an emitter of the current generation.
func (s *Scheduler) IsEmitter(rt *Runtime, p Projectile) bool {
	_, ok := s.active(rt, p.ID())
	return ok
}

// OnUpdate advances p by dt and fires its emitter when the interval has
// elapsed.
//
// p must be Active. A Disabled instance returns NOT_EMITTER; state left by
// an older generation is dropped and returns STALE_GENERATION.
func (s *Scheduler) OnUpdate(rt *Runtime, p Projectile, dt float64) error {
	id := p.ID()
	st, ok := s.states.Get(id)
	if !ok || !st.Active() {
		return newNotEmitterError(id)
	}
	if st.Generation != rt.Gen.ID {
		s.states.Delete(id)
		err := newStaleError(id, st, rt.Gen.ID)
		slog.Warn("stale emitter state dropped", "instance", id, "error", err)
		return err
	}

	def, err := rt.Emitters.Get(st.Index)
	if err != nil {
		return err
	}

	lt := p.LivingTime() + dt
	p.SetLivingTime(lt)
	if lt < def.Interval {
		return nil
	}
	if def.Limited && st.Remaining == 0 {
		return nil
	}
	p.SetLivingTime(LivingTimeReset)

	s.record(Firing{Kind: FiringEmit, Emitter: def.Name, Index: st.Index, Instance: id, Remaining: st.Remaining})

	for j, fn := range def.Functions {
		switch fn.Kind {
		case ir.FunctionAction:
			rt.Emitters.action(st.Index, j).Execute(p.EventContext(), Call{Projectile: p})
		case ir.FunctionAccelerate:
			accelerate(p, fn, dt)
		}
	}

	if !def.Limited {
		return nil
	}

	// An action above may have replaced or removed the emitter.
	cur, ok := s.states.Get(id)
	if !ok || cur != st {
		return nil
	}

	rest := st.Remaining
	st.Remaining = rest - 1
	s.states.Set(id, st)
	if rest == 1 {
		if def.DestroyAfter {
			s.states.Delete(id)
			p.MarkForDeletion()
			s.record(Firing{Kind: FiringDestroy, Emitter: def.Name, Index: st.Index, Instance: id})
			slog.Debug("emitter finished, instance destroyed", "instance", id, "emitter", def.Name)
		} else {
			s.Disable(rt, p)
		}
	}
	return nil
}

// active returns p's state when it belongs to rt's generation.
func (s *Scheduler) active(rt *Runtime, id ir.InstanceID) (ir.InstanceState, bool) {
	st, ok := s.states.Get(id)
	if !ok || !st.Active() || st.Generation != rt.Gen.ID {
		return ir.InstanceState{}, false
	}
	return st, true
}

func (s *Scheduler) name(rt *Runtime, idx ir.Index) string {
	def, err := rt.Emitters.Get(idx)
	if err != nil {
		return ""
	}
	return def.Name
}
