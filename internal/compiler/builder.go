package compiler

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"cuelang.org/go/cue"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/roach88/volley/internal/ir"
	"github.com/roach88/volley/internal/keys"
)

// Top-level fields of a configuration document.
const (
	fieldFormIDs      = "FormIDs"
	fieldEmittersData = "EmittersData"
	fieldTriggers     = "Triggers"
)

var tracer = otel.Tracer("github.com/roach88/volley/internal/compiler")

// Document is one configuration source.
type Document struct {
	Source string    // base file name, used as the key namespace
	Value  cue.Value // compiled document
	Bytes  []byte    // raw bytes, hashed into the generation
}

// AliasAdder is implemented by form resolvers that accept FormIDs aliases.
type AliasAdder interface {
	AddAlias(name, ref string)
}

// Option configures a Builder.
type Option func(*Builder)

// WithPlugins sets the plugin load order used by the default FormTable.
func WithPlugins(plugins []string) Option {
	return func(b *Builder) {
		b.forms = NewFormTable(plugins)
	}
}

// WithFormResolver replaces the default FormTable.
func WithFormResolver(r FormResolver) Option {
	return func(b *Builder) {
		b.forms = r
	}
}

// Builder accumulates one generation through the two-phase load.
//
// Every source must go through InitKeys before any source goes through Init,
// because bodies reference emitters and aliases declared later in file order
// or in other sources. Builder is not safe for concurrent use.
type Builder struct {
	forms    FormResolver
	emitters *keys.Registry

	keyed    map[string]bool
	sources  []string
	hashes   map[string]string
	defs     []ir.EmitterDef
	triggers []ir.TriggerDef
}

// NewBuilder returns an empty builder.
func NewBuilder(opts ...Option) *Builder {
	b := &Builder{
		forms:    NewFormTable(nil),
		emitters: keys.New(),
		keyed:    make(map[string]bool),
		hashes:   make(map[string]string),
	}
	for _, opt := range opts {
		opt(b)
	}
	return b
}

// Emitters returns the emitter identifier registry.
func (b *Builder) Emitters() *keys.Registry {
	return b.emitters
}

// InitKeys runs the key pass for one source: FormIDs aliases and
// EmittersData names are registered, nothing is compiled.
func (b *Builder) InitKeys(doc Document) error {
	if err := doc.Value.Err(); err != nil {
		return withSource(formatCUEError(err), doc.Source, "")
	}

	if fv := lookup(doc.Value, fieldFormIDs); fv.Exists() {
		iter, err := fv.Fields()
		if err != nil {
			return &CompileError{Source: doc.Source, Field: fieldFormIDs, Message: "must be a mapping", Pos: fv.Pos()}
		}
		adder, ok := b.forms.(AliasAdder)
		for iter.Next() {
			ref, err := iter.Value().String()
			if err != nil {
				return &CompileError{
					Source:  doc.Source,
					Field:   fieldFormIDs + "." + iter.Label(),
					Message: "must be a form reference string",
					Pos:     iter.Value().Pos(),
				}
			}
			if !ok {
				slog.Warn("form resolver does not accept aliases, ignoring",
					"source", doc.Source, "alias", iter.Label())
				continue
			}
			adder.AddAlias(iter.Label(), ref)
		}
	}

	if ev := lookup(doc.Value, fieldEmittersData); ev.Exists() {
		iter, err := ev.Fields()
		if err != nil {
			return &CompileError{Source: doc.Source, Field: fieldEmittersData, Message: "must be a mapping", Pos: ev.Pos()}
		}
		for iter.Next() {
			b.emitters.Add(doc.Source, iter.Label())
		}
	}

	b.keyed[doc.Source] = true
	return nil
}

// Init runs the body pass for one source. The source's emitters are
// appended to the table and its triggers to the registration list.
func (b *Builder) Init(doc Document) error {
	if !b.keyed[doc.Source] {
		return &CompileError{Source: doc.Source, Field: "source", Message: "body pass before key pass"}
	}

	if ev := lookup(doc.Value, fieldEmittersData); ev.Exists() {
		iter, err := ev.Fields()
		if err != nil {
			return &CompileError{Source: doc.Source, Field: fieldEmittersData, Message: "must be a mapping", Pos: ev.Pos()}
		}
		for iter.Next() {
			name := iter.Label()
			idx, err := b.emitters.Get(doc.Source, name)
			if err != nil {
				return &CompileError{Source: doc.Source, Field: fieldEmittersData + "." + name, Message: err.Error(), Pos: iter.Value().Pos()}
			}
			if want := ir.Index(len(b.defs) + 1); idx != want {
				return &CompileError{
					Source:  doc.Source,
					Field:   fieldEmittersData + "." + name,
					Message: fmt.Sprintf("registry index %d out of step with table size %d", idx, len(b.defs)),
					Pos:     iter.Value().Pos(),
				}
			}
			def, err := CompileEmitter(doc.Source, name, idx, iter.Value(), b.emitters)
			if err != nil {
				return withSource(err, doc.Source, fieldEmittersData+"."+name)
			}
			b.defs = append(b.defs, *def)
		}
	}

	if tv := lookup(doc.Value, fieldTriggers); tv.Exists() {
		defs, err := compileTriggers(doc.Source, tv, b.forms, b.emitters)
		if err != nil {
			return err
		}
		b.triggers = append(b.triggers, defs...)
	}

	b.sources = append(b.sources, doc.Source)
	b.hashes[doc.Source] = ir.SourceHash(doc.Source, doc.Bytes)
	return nil
}

// Clear resets the builder. Index numbering restarts at 1 and FormIDs
// aliases are dropped.
func (b *Builder) Clear() {
	b.emitters.Clear()
	if t, ok := b.forms.(*FormTable); ok {
		t.ResetAliases()
	}
	clear(b.keyed)
	clear(b.hashes)
	b.sources = nil
	b.defs = nil
	b.triggers = nil
}

// Build validates the accumulated tables and returns the generation.
// The generation ID is left empty; the engine assigns it on install.
func (b *Builder) Build() (*ir.Generation, error) {
	gen := &ir.Generation{
		Hash:     ir.GenerationHash(b.hashes),
		Sources:  append([]string(nil), b.sources...),
		Emitters: append([]ir.EmitterDef(nil), b.defs...),
		Triggers: append([]ir.TriggerDef(nil), b.triggers...),
	}

	if verrs := Validate(gen); len(verrs) > 0 {
		errs := make([]error, len(verrs))
		for i, v := range verrs {
			errs[i] = v
		}
		return nil, errors.Join(errs...)
	}
	return gen, nil
}

// Compile runs the full two-phase load over docs in order and returns the
// resulting generation. Any error rejects the whole load.
func Compile(ctx context.Context, docs []Document, opts ...Option) (*ir.Generation, error) {
	_, span := tracer.Start(ctx, "compiler.Compile",
		trace.WithAttributes(attribute.Int("volley.sources", len(docs))))
	defer span.End()

	gen, err := compile(docs, opts...)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "compile failed")
		return nil, err
	}

	span.SetAttributes(
		attribute.String("volley.generation.hash", gen.Hash),
		attribute.Int("volley.emitters", len(gen.Emitters)),
		attribute.Int("volley.triggers", len(gen.Triggers)),
	)
	return gen, nil
}

func compile(docs []Document, opts ...Option) (*ir.Generation, error) {
	b := NewBuilder(opts...)
	for _, doc := range docs {
		if err := b.InitKeys(doc); err != nil {
			return nil, err
		}
	}
	for _, doc := range docs {
		if err := b.Init(doc); err != nil {
			return nil, err
		}
	}
	return b.Build()
}
