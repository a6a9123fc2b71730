// Package jsonvalue is a JSON tree that keeps object members in document order.
package jsonvalue

import (
	"math"
	"strconv"
	"strings"
)

// Kind identifies which variant of Value is populated.
type Kind uint8

const (
	Null Kind = iota
	Bool
	Number
	String
	Object
	Array
)

func (k Kind) String() string {
	switch k {
	case Null:
		return "null"
	case Bool:
		return "bool"
	case Number:
		return "number"
	case String:
		return "string"
	case Object:
		return "object"
	case Array:
		return "array"
	}
	return "unknown"
}

// Member is one key/value pair of an object.
type Member struct {
	Key   string
	Value Value
}

// Value is a tagged union over the JSON value kinds.
// Scalars keep their text: the decoded string, the number literal, or "true"/"false".
type Value struct {
	kind    Kind
	text    string
	members []Member
	elems   []Value
}

func NewNull() Value             { return Value{kind: Null} }
func NewString(s string) Value   { return Value{kind: String, text: s} }
func NewNumber(lit string) Value { return Value{kind: Number, text: lit} }

func NewBool(b bool) Value {
	return Value{kind: Bool, text: strconv.FormatBool(b)}
}

// NewFloat builds a number whose literal always shows a decimal part, e.g. 240.0.
func NewFloat(f float64) Value {
	return Value{kind: Number, text: formatFloat(f)}
}

func NewObject(members ...Member) Value { return Value{kind: Object, members: members} }
func NewArray(elems ...Value) Value     { return Value{kind: Array, elems: elems} }

func (v Value) Kind() Kind       { return v.kind }
func (v Value) IsScalar() bool   { return v.kind != Object && v.kind != Array }
func (v Value) Members() []Member { return v.members }
func (v Value) Elems() []Value   { return v.elems }

// Get returns the member value for key. With duplicate keys the last one wins.
func (v Value) Get(key string) (Value, bool) {
	if v.kind != Object {
		return Value{}, false
	}
	for i := len(v.members) - 1; i >= 0; i-- {
		if v.members[i].Key == key {
			return v.members[i].Value, true
		}
	}
	return Value{}, false
}

// Text renders a scalar for a CSV cell. Null renders empty.
func (v Value) Text() string {
	if v.kind == Null {
		return ""
	}
	return v.text
}

// Str returns the decoded string of a String value.
func (v Value) Str() (string, bool) {
	if v.kind != String {
		return "", false
	}
	return v.text, true
}

// Float returns the numeric value of a Number.
func (v Value) Float() (float64, bool) {
	if v.kind != Number {
		return 0, false
	}
	f, err := strconv.ParseFloat(v.text, 64)
	if err != nil {
		return 0, false
	}
	return f, true
}

func formatFloat(f float64) string {
	if math.IsInf(f, 0) || math.IsNaN(f) {
		return strconv.FormatFloat(f, 'f', -1, 64)
	}
	s := strconv.FormatFloat(f, 'f', -1, 64)
	if !strings.ContainsRune(s, '.') {
		s += ".0"
	}
	return s
}
