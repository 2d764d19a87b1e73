package cgroup

import "fmt"

// AttrError wraps a failure to read or write one cgroup controller
// attribute file, carrying the attribute name and path so callers (and
// logs) can tell "memory.max write failed" apart from "pids.current
// read failed" without parsing a string.
type AttrError struct {
	Attr string // e.g. "memory.max"
	Path string
	Op   string // "read" or "write"
	Err  error
}

func (e *AttrError) Error() string {
	return fmt.Sprintf("cgroup %s %s (%s): %v", e.Op, e.Attr, e.Path, e.Err)
}

func (e *AttrError) Unwrap() error { return e.Err }

func attrErr(op, path, attr string, err error) error {
	if err == nil {
		return nil
	}
	return &AttrError{Attr: attr, Path: path, Op: op, Err: err}
}
