package kv

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/hashicorp/go-hclog"
)

// Policy decides what Run does when a command fails.
type Policy uint8

const (
	// FailFast stops at the first failing command and returns only the Failure.
	FailFast Policy = iota
	// ContinueOnError dispatches every command and records per-command errors.
	ContinueOnError
)

func (p Policy) String() string {
	if p == ContinueOnError {
		return "continue"
	}
	return "fail-fast"
}

// ParsePolicy accepts "fail-fast", "failfast" or "" for FailFast and
// "continue" or "continue-on-error" for ContinueOnError, in any case.
func ParsePolicy(s string) (Policy, error) {
	switch strings.ToLower(s) {
	case "", "fail-fast", "failfast":
		return FailFast, nil
	case "continue", "continue-on-error":
		return ContinueOnError, nil
	}
	return FailFast, fmt.Errorf("unknown fail policy %q", s)
}

// Result is the outcome of one command. Value and Found are only set for OpGet.
// Err is only set under ContinueOnError.
type Result[V any] struct {
	Op    Op
	Key   string
	Value V
	Found bool
	Err   error
}

// Observer is called with each command right before it is dispatched.
type Observer[V any] func(index int, cmd Command[V])

// Executor runs Programs against a Store, one command at a time, in order.
// The zero value is a fail-fast executor without logging.
type Executor[V any] struct {
	Policy   Policy
	Logger   hclog.Logger
	Observer Observer[V]
}

// Run is shorthand for a zero-value Executor.
func Run[V any](ctx context.Context, p Program[V], s Store[V]) ([]Result[V], error) {
	var e Executor[V]
	return e.Run(ctx, p, s)
}

// Run applies the commands of p to s in program order.
//
// Under FailFast the first error stops the run: Run returns a nil result
// slice and a *Failure carrying the index of the failing command. Commands
// before it stay applied; nothing after it is dispatched.
//
// Under ContinueOnError every command is dispatched; failed results carry
// their error and Run returns all results along with the joined Failures.
//
// ctx is checked before every command. Once it is done Run stops with a
// *Failure wrapping ErrCancelled, whatever the policy. Nothing is rolled back.
func (e *Executor[V]) Run(ctx context.Context, p Program[V], s Store[V]) ([]Result[V], error) {
	logger := e.Logger
	if logger == nil {
		logger = hclog.NewNullLogger()
	}
	logger = logger.With("run", uuid.NewString())
	logger.Debug("running program", "commands", p.Len(), "policy", e.Policy)

	results := make([]Result[V], 0, p.Len())
	var errs []error

	for i, cmd := range p.cmds {
		if ctx.Err() != nil {
			f := &Failure{Index: i, Err: fmt.Errorf("%w: %w", ErrCancelled, context.Cause(ctx))}
			logger.Warn("program cancelled", "index", i, "error", ctx.Err())
			if e.Policy == ContinueOnError {
				return results, errors.Join(append(errs, f)...)
			}
			return nil, f
		}

		res, err := e.dispatch(ctx, i, cmd, s)
		if err != nil {
			f := &Failure{Index: i, Err: err}
			if e.Policy == FailFast {
				logger.Warn("program failed", "index", i, "command", cmd.String(), "error", err)
				return nil, f
			}
			logger.Debug("command failed", "index", i, "command", cmd.String(), "error", err)
			res.Err = f
			errs = append(errs, f)
		}
		results = append(results, res)
	}

	logger.Debug("program finished", "commands", p.Len(), "failed", len(errs))
	return results, errors.Join(errs...)
}

func (e *Executor[V]) dispatch(ctx context.Context, i int, cmd Command[V], s Store[V]) (Result[V], error) {
	res := Result[V]{Op: cmd.Op, Key: cmd.Key}
	if err := cmd.validate(); err != nil {
		return res, err
	}
	if e.Observer != nil {
		e.Observer(i, cmd)
	}

	var err error
	switch cmd.Op {
	case OpPut:
		err = s.Put(ctx, cmd.Key, cmd.Value)
	case OpGet:
		res.Value, res.Found, err = s.Get(ctx, cmd.Key)
	case OpDelete:
		err = s.Delete(ctx, cmd.Key)
	}
	return res, err
}
