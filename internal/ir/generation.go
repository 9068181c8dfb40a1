package ir

// Generation is one complete, immutable configuration load.
//
// Emitters are ordered by index (Emitters[i].Index == i+1). Triggers are in
// registration order: sources in load order, then each source's Triggers
// list in declaration order.
type Generation struct {
	ID       string       `json:"id"`
	Hash     string       `json:"hash"`
	Sources  []string     `json:"sources"`
	Emitters []EmitterDef `json:"emitters"`
	Triggers []TriggerDef `json:"triggers"`
}

// Emitter returns the definition for index, or false when index is 0 or
// beyond the table.
func (g *Generation) Emitter(index Index) (*EmitterDef, bool) {
	if g == nil || index == 0 || int(index) > len(g.Emitters) {
		return nil, false
	}
	return &g.Emitters[index-1], true
}

// TriggerCount returns the number of triggers registered for e.
func (g *Generation) TriggerCount(e Event) int {
	if g == nil {
		return 0
	}
	n := 0
	for i := range g.Triggers {
		if g.Triggers[i].Event == e {
			n++
		}
	}
	return n
}
