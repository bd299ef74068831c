// Package cos ("common" low-level types and utilities) mirrors the
// teacher's cmn/cos package: error taxonomy helpers and deterministic ID
// generation, scaled down to what a single-process simulation run needs.
package cos

import (
	"fmt"
	"sync"

	"github.com/pkg/errors"
)

// ErrConfig is a configuration error: the driver must fail fast on these
// rather than attempt the run (error taxonomy, "Configuration error").
type ErrConfig struct {
	what string
}

func NewErrConfig(format string, a ...any) *ErrConfig {
	return &ErrConfig{fmt.Sprintf(format, a...)}
}

func (e *ErrConfig) Error() string { return "configuration error: " + e.what }

func IsErrConfig(err error) bool {
	_, ok := err.(*ErrConfig)
	return ok
}

// Errorf wraps pkg/errors for stack-annotated error context, e.g. around
// position-oracle failures that must surface as configuration errors.
func Errorf(format string, a ...any) error {
	return errors.Errorf(format, a...)
}

func Wrap(err error, msg string) error {
	if err == nil {
		return nil
	}
	return errors.Wrap(err, msg)
}

const maxErrs = 8

// Errs is a bounded, deduplicating multi-error accumulator, ported from
// cmn/cos.Errs: used by config validation to surface every problem found
// in one pass instead of stopping at the first one.
type Errs struct {
	mu   sync.Mutex
	errs []error
}

func (e *Errs) Add(err error) {
	if err == nil {
		return
	}
	e.mu.Lock()
	defer e.mu.Unlock()
	for _, added := range e.errs {
		if added.Error() == err.Error() {
			return
		}
	}
	if len(e.errs) < maxErrs {
		e.errs = append(e.errs, err)
	}
}

func (e *Errs) Cnt() int {
	e.mu.Lock()
	defer e.mu.Unlock()
	return len(e.errs)
}

// JoinErr returns a single joined error for all accumulated errors, or
// nil if none were added.
func (e *Errs) JoinErr() error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if len(e.errs) == 0 {
		return nil
	}
	msgs := make([]string, len(e.errs))
	for i, err := range e.errs {
		msgs[i] = err.Error()
	}
	joined := msgs[0]
	for _, m := range msgs[1:] {
		joined += "; " + m
	}
	return errors.New(joined)
}

func (e *Errs) Error() string {
	if err := e.JoinErr(); err != nil {
		return err.Error()
	}
	return ""
}
