// Package loader discovers configuration sources in a directory and
// compiles each one into a compiler.Document.
//
// Every *.cue and *.json file is a source named by its path relative to
// the directory (the base name for top-level files). Both are compiled with
// the CUE SDK, since JSON is a subset of CUE. Sources are returned in
// lexical path order, which is the load order of the two-phase compile.
package loader

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"cuelang.org/go/cue"
	"cuelang.org/go/cue/cuecontext"
	cueerrors "cuelang.org/go/cue/errors"
	"cuelang.org/go/cue/token"

	"github.com/roach88/volley/internal/compiler"
)

// Error codes shared with the CLI.
const (
	ErrCodeGeneric     = "E001" // Generic/unknown error
	ErrCodeScanError   = "E002" // Directory scan error
	ErrCodeNoFiles     = "E003" // No configuration files found
	ErrCodeLoadFailed  = "E004" // File read failed
	ErrCodeNotFound    = "E005" // Path not found
	ErrCodeBuildFailed = "E006" // CUE build failed
	ErrCodeWriteFailed = "E007" // File write error
)

// LoadError is an error discovering or compiling a source.
type LoadError struct {
	Code    string
	Message string
	Pos     token.Pos // CUE position if available
}

func (e *LoadError) Error() string {
	if e.Pos.IsValid() {
		return fmt.Sprintf("%s:%d:%d: %s: %s", e.Pos.Filename(), e.Pos.Line(), e.Pos.Column(), e.Code, e.Message)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// Extensions lists the file extensions treated as sources.
var Extensions = []string{".cue", ".json"}

// IsSource reports whether path has a source extension.
func IsSource(path string) bool {
	ext := strings.ToLower(filepath.Ext(path))
	for _, e := range Extensions {
		if ext == e {
			return true
		}
	}
	return false
}

// Load compiles every source under dir.
func Load(dir string) ([]compiler.Document, error) {
	info, err := os.Stat(dir)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, &LoadError{Code: ErrCodeNotFound, Message: fmt.Sprintf("config directory not found: %s", dir)}
	}
	if err != nil {
		return nil, &LoadError{Code: ErrCodeNotFound, Message: fmt.Sprintf("error accessing config directory: %v", err)}
	}
	if !info.IsDir() {
		return nil, &LoadError{Code: ErrCodeNotFound, Message: fmt.Sprintf("not a directory: %s", dir)}
	}

	files, err := FindSources(dir)
	if err != nil {
		return nil, &LoadError{Code: ErrCodeScanError, Message: fmt.Sprintf("error scanning directory: %v", err)}
	}
	if len(files) == 0 {
		return nil, &LoadError{Code: ErrCodeNoFiles, Message: fmt.Sprintf("no .cue or .json files found in %s", dir)}
	}

	ctx := cuecontext.New()
	docs := make([]compiler.Document, 0, len(files))
	for _, path := range files {
		rel, err := filepath.Rel(dir, path)
		if err != nil {
			rel = filepath.Base(path)
		}
		doc, err := compileFile(ctx, path, filepath.ToSlash(rel))
		if err != nil {
			return nil, err
		}
		docs = append(docs, doc)
	}
	return docs, nil
}

// LoadFile compiles a single source named by its base name.
func LoadFile(path string) (compiler.Document, error) {
	return compileFile(cuecontext.New(), path, filepath.Base(path))
}

// FindSources walks dir and returns source paths in lexical order.
// Hidden files and directories are skipped.
func FindSources(dir string) ([]string, error) {
	var files []string
	err := filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if path != dir && strings.HasPrefix(d.Name(), ".") {
			if d.IsDir() {
				return filepath.SkipDir
			}
			return nil
		}
		if !d.IsDir() && IsSource(path) {
			files = append(files, path)
		}
		return nil
	})
	return files, err
}

func compileFile(ctx *cue.Context, path, source string) (compiler.Document, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return compiler.Document{}, &LoadError{Code: ErrCodeLoadFailed, Message: fmt.Sprintf("reading %s: %v", path, err)}
	}

	v := ctx.CompileBytes(data, cue.Filename(path))
	if err := v.Validate(); err != nil {
		return compiler.Document{}, buildError(err)
	}
	return compiler.Document{Source: source, Value: v, Bytes: data}, nil
}

// buildError converts a CUE error to a LoadError at its first position.
func buildError(err error) *LoadError {
	le := &LoadError{Code: ErrCodeBuildFailed, Message: err.Error()}
	if errs := cueerrors.Errors(err); len(errs) > 0 {
		le.Message = errs[0].Error()
		if pos := cueerrors.Positions(errs[0]); len(pos) > 0 {
			le.Pos = pos[0]
		}
	}
	return le
}
