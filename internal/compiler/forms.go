package compiler

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/roach88/volley/internal/ir"
)

// FormResolver turns a textual form or keyword reference into a FormID.
type FormResolver interface {
	ResolveForm(ref string) (ir.FormID, error)
}

// maxAliasDepth bounds alias chains so a cyclic FormIDs mapping fails
// instead of looping.
const maxAliasDepth = 8

// FormTable is the default FormResolver.
//
// Accepted references:
//   - numeric literals: "0x0001E711", "124689"
//   - plugin-relative: "Skyrim.esm|0x1E711" (load-order index in the top byte)
//   - aliases declared under a source's FormIDs mapping
type FormTable struct {
	plugins map[string]uint32
	aliases map[string]string
}

// NewFormTable creates a table whose plugin indices follow load order.
func NewFormTable(plugins []string) *FormTable {
	t := &FormTable{
		plugins: make(map[string]uint32, len(plugins)),
		aliases: make(map[string]string),
	}
	for i, p := range plugins {
		t.plugins[strings.ToLower(strings.TrimSpace(p))] = uint32(i)
	}
	return t
}

// AddAlias registers name as shorthand for ref. Later definitions win.
func (t *FormTable) AddAlias(name, ref string) {
	t.aliases[name] = ref
}

// Aliases returns the number of registered aliases.
func (t *FormTable) Aliases() int {
	return len(t.aliases)
}

// ResetAliases drops every alias; plugin order is kept.
func (t *FormTable) ResetAliases() {
	clear(t.aliases)
}

// ResolveForm implements FormResolver.
func (t *FormTable) ResolveForm(ref string) (ir.FormID, error) {
	return t.resolve(strings.TrimSpace(ref), 0)
}

func (t *FormTable) resolve(ref string, depth int) (ir.FormID, error) {
	if ref == "" {
		return 0, fmt.Errorf("empty form reference")
	}

	if plugin, local, ok := strings.Cut(ref, "|"); ok {
		idx, known := t.plugins[strings.ToLower(strings.TrimSpace(plugin))]
		if !known {
			return 0, fmt.Errorf("unknown plugin %q in %q", plugin, ref)
		}
		id, err := parseLocalID(strings.TrimSpace(local))
		if err != nil {
			return 0, fmt.Errorf("form reference %q: %w", ref, err)
		}
		return ir.FormID(idx<<24 | id&0x00FFFFFF), nil
	}

	if ref[0] >= '0' && ref[0] <= '9' {
		n, err := strconv.ParseUint(ref, 0, 32)
		if err != nil {
			return 0, fmt.Errorf("invalid form id %q", ref)
		}
		return ir.FormID(n), nil
	}

	target, ok := t.aliases[ref]
	if !ok {
		return 0, fmt.Errorf("unknown form alias %q", ref)
	}
	if depth >= maxAliasDepth {
		return 0, fmt.Errorf("form alias %q: chain too deep", ref)
	}
	return t.resolve(strings.TrimSpace(target), depth+1)
}

// parseLocalID parses the plugin-local part of a reference. Hex is assumed
// when no prefix is given.
func parseLocalID(s string) (uint32, error) {
	if strings.HasPrefix(s, "0x") || strings.HasPrefix(s, "0X") {
		s = s[2:]
	}
	n, err := strconv.ParseUint(s, 16, 32)
	if err != nil {
		return 0, fmt.Errorf("invalid local id %q", s)
	}
	return uint32(n), nil
}
