package kv

// Program is an ordered, immutable sequence of Commands.
// Insertion order is execution order. Appending never mutates the receiver,
// so a Program handed to an Executor cannot change underneath it.
type Program[V any] struct {
	cmds []Command[V]
}

// NewProgram returns a Program built from cmds, in order.
func NewProgram[V any](cmds ...Command[V]) Program[V] {
	p := Program[V]{}
	if len(cmds) > 0 {
		p.cmds = append([]Command[V](nil), cmds...)
	}
	return p
}

// Append returns a new Program with cmd added at the end.
func (p Program[V]) Append(cmd Command[V]) Program[V] {
	next := make([]Command[V], len(p.cmds), len(p.cmds)+1)
	copy(next, p.cmds)
	return Program[V]{cmds: append(next, cmd)}
}

// Put returns a new Program ending with a Put of value under key.
func (p Program[V]) Put(key string, value V) Program[V] { return p.Append(Put(key, value)) }

// Get returns a new Program ending with a Get of key.
func (p Program[V]) Get(key string) Program[V] { return p.Append(Get[V](key)) }

// Delete returns a new Program ending with a Delete of key.
func (p Program[V]) Delete(key string) Program[V] { return p.Append(Delete[V](key)) }

// Len returns the number of commands.
func (p Program[V]) Len() int {
	return len(p.cmds)
}

// Commands returns a copy of the commands in execution order.
func (p Program[V]) Commands() []Command[V] {
	return append([]Command[V](nil), p.cmds...)
}

// From returns the sub-program starting at index i, e.g. the index reported
// by a Failure when the caller wants to retry the remainder.
func (p Program[V]) From(i int) Program[V] {
	if i <= 0 {
		return p
	}
	if i >= len(p.cmds) {
		return Program[V]{}
	}
	return NewProgram(p.cmds[i:]...)
}
