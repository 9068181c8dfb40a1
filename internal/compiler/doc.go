// Package compiler turns CUE/JSON configuration documents into ir values.
//
// Loading is two-phase. The key pass (Builder.InitKeys) walks every source
// and registers emitter names and FormIDs aliases. The body pass
// (Builder.Init) compiles emitter and trigger bodies, which may reference
// emitters and aliases declared later in the same file or in other sources.
// Every source must finish the key pass before any body is compiled.
//
// All failures are returned as *CompileError carrying the CUE position of
// the offending field. Unknown enumeration names (event, condition kind,
// hand, function type, speed type) are always fatal.
package compiler
