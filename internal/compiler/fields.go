package compiler

import (
	"fmt"

	"cuelang.org/go/cue"
)

// lookup returns the named field of v. Labels are taken literally so
// names containing dots or spaces need no quoting.
func lookup(v cue.Value, field string) cue.Value {
	return v.LookupPath(cue.MakePath(cue.Str(field)))
}

func requireString(v cue.Value, field string) (string, cue.Value, error) {
	fv := lookup(v, field)
	if !fv.Exists() {
		return "", fv, &CompileError{Field: field, Message: field + " is required", Pos: v.Pos()}
	}
	s, err := fv.String()
	if err != nil {
		return "", fv, &CompileError{Field: field, Message: "must be a string", Pos: fv.Pos()}
	}
	return s, fv, nil
}

func requireFloat(v cue.Value, field string) (float64, error) {
	fv := lookup(v, field)
	if !fv.Exists() {
		return 0, &CompileError{Field: field, Message: field + " is required", Pos: v.Pos()}
	}
	f, err := fv.Float64()
	if err != nil {
		return 0, &CompileError{Field: field, Message: "must be a number", Pos: fv.Pos()}
	}
	return f, nil
}

func optionalBool(v cue.Value, field string, def bool) (bool, error) {
	fv := lookup(v, field)
	if !fv.Exists() {
		return def, nil
	}
	b, err := fv.Bool()
	if err != nil {
		return def, &CompileError{Field: field, Message: "must be a boolean", Pos: fv.Pos()}
	}
	return b, nil
}

func optionalUint(v cue.Value, field string, def uint64) (uint64, error) {
	fv := lookup(v, field)
	if !fv.Exists() {
		return def, nil
	}
	n, err := fv.Uint64()
	if err != nil {
		return def, &CompileError{Field: field, Message: "must be a non-negative integer", Pos: fv.Pos()}
	}
	return n, nil
}

// withSource stamps the source name onto a CompileError and prefixes its
// field with the enclosing path.
func withSource(err error, source, prefix string) error {
	ce, ok := err.(*CompileError)
	if !ok {
		return err
	}
	if ce.Source == "" {
		ce.Source = source
	}
	if prefix != "" && ce.Field != "cue" {
		ce.Field = fmt.Sprintf("%s.%s", prefix, ce.Field)
	}
	return ce
}
