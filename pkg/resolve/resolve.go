// Package resolve locates the executables a debugging session needs.
//
// A Resolver walks an ordered list of candidate paths and returns the first
// one that exists. Candidate lists are built by the platform tables in
// platform.go, never inside the resolver itself.
package resolve

import (
	"errors"
	"fmt"
	"path/filepath"

	"github.com/spf13/afero"

	"github.com/nodebug/nodebug/pkg/logflags"
)

// ErrNotFound is returned, wrapped, when an executable could not be found.
var ErrNotFound = errors.New("executable not found")

// NotFoundError is returned by Resolve when none of the candidates exist.
// Name is the base name of the first candidate, used as a hint for the
// user even though every candidate was tried.
type NotFoundError struct {
	Name       string
	Candidates []string
}

func (e *NotFoundError) Error() string {
	if e.Name == "" {
		return "no candidate paths to search"
	}
	return fmt.Sprintf("%s not found", e.Name)
}

func (e *NotFoundError) Unwrap() error {
	return ErrNotFound
}

// Resolver finds the first existing path in a list of candidates.
type Resolver struct {
	// Fs is the filesystem existence checks are made against.
	Fs afero.Fs
}

// New returns a Resolver backed by the operating system's filesystem.
func New() *Resolver {
	return &Resolver{Fs: afero.NewOsFs()}
}

// Resolve returns the first candidate that exists. Candidates are checked
// in order, exactly once each, and nothing after the first match is
// checked. Results are not cached.
func (r *Resolver) Resolve(candidates []string) (string, error) {
	logger := logflags.ResolverLogger()
	for _, path := range candidates {
		if _, err := r.Fs.Stat(path); err != nil {
			if logflags.Resolver() {
				logger.Debugf("candidate %s: %v", path, err)
			}
			continue
		}
		if logflags.Resolver() {
			logger.Debugf("resolved %s", path)
		}
		return path, nil
	}
	nf := &NotFoundError{Candidates: candidates}
	if len(candidates) > 0 {
		nf.Name = filepath.Base(candidates[0])
	}
	return "", nf
}
