package ir

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSourceHash_Deterministic(t *testing.T) {
	a := SourceHash("spells.json", []byte(`{"Triggers":[]}`))
	b := SourceHash("spells.json", []byte(`{"Triggers":[]}`))
	assert.Equal(t, a, b)
	assert.Len(t, a, 64, "hex-encoded SHA-256")
}

func TestSourceHash_NameMatters(t *testing.T) {
	data := []byte(`{}`)
	assert.NotEqual(t, SourceHash("a.json", data), SourceHash("b.json", data))
}

func TestSourceHash_NoBoundaryAmbiguity(t *testing.T) {
	// "ab" + "c" must not collide with "a" + "bc"
	assert.NotEqual(t, SourceHash("ab", []byte("c")), SourceHash("a", []byte("bc")))
}

func TestGenerationHash_OrderIndependent(t *testing.T) {
	m1 := map[string]string{"a.json": "h1", "b.json": "h2", "c.cue": "h3"}
	m2 := map[string]string{"c.cue": "h3", "a.json": "h1", "b.json": "h2"}
	assert.Equal(t, GenerationHash(m1), GenerationHash(m2))
}

func TestGenerationHash_ContentSensitive(t *testing.T) {
	m1 := map[string]string{"a.json": "h1"}
	m2 := map[string]string{"a.json": "h2"}
	assert.NotEqual(t, GenerationHash(m1), GenerationHash(m2))
}

func TestGenerationHash_DomainSeparated(t *testing.T) {
	// Same bytes under different domains never collide
	assert.NotEqual(t, hashWithDomain(DomainSource, []byte("x")), hashWithDomain(DomainGeneration, []byte("x")))
}
