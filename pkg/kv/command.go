package kv

import (
	"fmt"
	"strings"
)

// Op identifies the kind of a Command.
type Op uint8

const (
	OpPut Op = iota + 1
	OpGet
	OpDelete
)

func (o Op) String() string {
	switch o {
	case OpPut:
		return "put"
	case OpGet:
		return "get"
	case OpDelete:
		return "delete"
	default:
		return fmt.Sprintf("op(%d)", uint8(o))
	}
}

// ParseOp maps "put", "get" or "delete" (case-insensitive) to an Op.
func ParseOp(s string) (Op, error) {
	switch strings.ToLower(s) {
	case "put", "set":
		return OpPut, nil
	case "get":
		return OpGet, nil
	case "delete", "del":
		return OpDelete, nil
	}
	return 0, fmt.Errorf("unknown operation %q", s)
}

// Command is one requested store operation. Value is only used by OpPut.
type Command[V any] struct {
	Op    Op
	Key   string
	Value V
}

// Put returns a command storing value under key.
func Put[V any](key string, value V) Command[V] {
	return Command[V]{Op: OpPut, Key: key, Value: value}
}

// Get returns a command reading key.
func Get[V any](key string) Command[V] {
	return Command[V]{Op: OpGet, Key: key}
}

// Delete returns a command removing key.
func Delete[V any](key string) Command[V] {
	return Command[V]{Op: OpDelete, Key: key}
}

// String renders the command as op(key) or op(key, value).
func (c Command[V]) String() string {
	if c.Op == OpPut {
		return fmt.Sprintf("%s(%s, %v)", c.Op, c.Key, c.Value)
	}
	return fmt.Sprintf("%s(%s)", c.Op, c.Key)
}

// validate reports ErrKeyEmpty for commands without a key.
func (c Command[V]) validate() error {
	if c.Key == "" {
		return ErrKeyEmpty
	}
	switch c.Op {
	case OpPut, OpGet, OpDelete:
		return nil
	}
	return fmt.Errorf("unknown operation %s", c.Op)
}
