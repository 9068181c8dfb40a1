// Package ir provides the compiled representation of volley configuration.
//
// This package contains type definitions only. The compiler produces these
// values from CUE/JSON sources; the engine binds them to runtime capabilities.
// ir imports nothing internal, so every other package may depend on it
// without cycles.
//
// Key design constraints:
//   - Index 0 always means "unset"; real indices are dense and 1-based
//   - Enumerations are closed; unknown names are rejected at compile time
//   - Condition and FunctionSpec are tagged variants keyed by their Kind
//   - Definitions are immutable once a Generation is built
package ir
