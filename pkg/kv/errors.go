package kv

import (
	"errors"
	"fmt"
)

// Sentinel errors for program execution.
var (
	ErrKeyEmpty  = errors.New("key is empty")
	ErrCancelled = errors.New("execution cancelled")
	ErrTimeout   = errors.New("store operation timed out")
)

// StoreError is a failure reported by a Store backend, e.g. a timeout or a
// lost connection. The in-memory store never returns one.
type StoreError struct {
	Op  Op
	Key string
	Err error
}

func (e *StoreError) Error() string {
	return fmt.Sprintf("store %s %q: %v", e.Op, e.Key, e.Err)
}

func (e *StoreError) Unwrap() error {
	return e.Err
}

// NewStoreError wraps err unless it already is a *StoreError.
func NewStoreError(op Op, key string, err error) error {
	if err == nil {
		return nil
	}
	var se *StoreError
	if errors.As(err, &se) {
		return err
	}
	return &StoreError{Op: op, Key: key, Err: err}
}

// Failure terminates a program run at the command with the given 0-based index.
//
//	results, err := exec.Run(ctx, program, store)
//	var f *kv.Failure
//	if errors.As(err, &f) {
//	    retry := program.From(f.Index)
//	}
type Failure struct {
	Index int
	Err   error
}

func (f *Failure) Error() string {
	return fmt.Sprintf("command %d failed: %v", f.Index, f.Err)
}

func (f *Failure) Unwrap() error {
	return f.Err
}
