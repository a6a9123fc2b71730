// Package flatten converts nested JSON records into single-level key paths.
//
// Object members join with a dot ("location.city"), array elements use a
// zero-based index suffix ("tags[0].label"). The root path is empty, so
// top-level keys have no leading separator.
package flatten

import (
	"strconv"

	"github.com/dtnitsch/har2csv/pkg/jsonvalue"
)

// Record is a flattened record: key paths to scalar values, in traversal order.
type Record struct {
	keys   []string
	values map[string]jsonvalue.Value
}

// NewRecord returns an empty record.
func NewRecord() *Record {
	return &Record{values: make(map[string]jsonvalue.Value)}
}

// Set stores a value. An existing key keeps its position and takes the new value.
func (r *Record) Set(key string, v jsonvalue.Value) {
	if _, ok := r.values[key]; !ok {
		r.keys = append(r.keys, key)
	}
	r.values[key] = v
}

// Get returns the value stored under key.
func (r *Record) Get(key string) (jsonvalue.Value, bool) {
	v, ok := r.values[key]
	return v, ok
}

// Keys returns the key paths in insertion order.
func (r *Record) Keys() []string {
	return append([]string(nil), r.keys...)
}

func (r *Record) Len() int { return len(r.keys) }

type frame struct {
	path  string
	value jsonvalue.Value
}

// Flatten walks v depth-first with an explicit stack, so input depth is not
// bounded by the goroutine stack. Empty objects and arrays contribute no keys.
func Flatten(v jsonvalue.Value) *Record {
	rec := NewRecord()
	stack := []frame{{path: "", value: v}}

	for len(stack) > 0 {
		top := stack[len(stack)-1]
		stack = stack[:len(stack)-1]

		switch top.value.Kind() {
		case jsonvalue.Object:
			members := top.value.Members()
			// Push in reverse so members pop in document order.
			for i := len(members) - 1; i >= 0; i-- {
				stack = append(stack, frame{path: childKey(top.path, members[i].Key), value: members[i].Value})
			}
		case jsonvalue.Array:
			elems := top.value.Elems()
			for i := len(elems) - 1; i >= 0; i-- {
				stack = append(stack, frame{path: top.path + "[" + strconv.Itoa(i) + "]", value: elems[i]})
			}
		default:
			rec.Set(top.path, top.value)
		}
	}
	return rec
}

func childKey(parent, key string) string {
	if parent == "" {
		return key
	}
	return parent + "." + key
}
