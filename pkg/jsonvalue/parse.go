package jsonvalue

import (
	"errors"
	"fmt"

	"github.com/buger/jsonparser"
	json "github.com/goccy/go-json"
)

// ErrMalformed is returned when the input is not a single valid JSON document.
var ErrMalformed = errors.New("malformed json")

// Parse builds a Value from a JSON document, keeping object members in document order.
func Parse(data []byte) (Value, error) {
	// jsonparser is lenient with truncated input, so validate the whole document first.
	if !json.Valid(data) {
		return Value{}, ErrMalformed
	}

	raw, typ, _, err := jsonparser.Get(data)
	if err != nil {
		return Value{}, fmt.Errorf("%w: %v", ErrMalformed, err)
	}
	return build(raw, typ)
}

func build(raw []byte, typ jsonparser.ValueType) (Value, error) {
	switch typ {
	case jsonparser.Object:
		return buildObject(raw)
	case jsonparser.Array:
		return buildArray(raw)
	case jsonparser.String:
		s, err := jsonparser.ParseString(raw)
		if err != nil {
			return Value{}, fmt.Errorf("%w: %v", ErrMalformed, err)
		}
		return NewString(s), nil
	case jsonparser.Number:
		return NewNumber(string(raw)), nil
	case jsonparser.Boolean:
		b, err := jsonparser.ParseBoolean(raw)
		if err != nil {
			return Value{}, fmt.Errorf("%w: %v", ErrMalformed, err)
		}
		return NewBool(b), nil
	case jsonparser.Null:
		return NewNull(), nil
	}
	return Value{}, fmt.Errorf("%w: unexpected value type %s", ErrMalformed, typ)
}

func buildObject(raw []byte) (Value, error) {
	obj := Value{kind: Object}
	// ObjectEach hands over keys already unescaped, in a reused buffer.
	err := jsonparser.ObjectEach(raw, func(key, val []byte, typ jsonparser.ValueType, _ int) error {
		child, err := build(val, typ)
		if err != nil {
			return err
		}
		obj.members = append(obj.members, Member{Key: string(key), Value: child})
		return nil
	})
	if err != nil {
		return Value{}, fmt.Errorf("%w: %v", ErrMalformed, err)
	}
	return obj, nil
}

func buildArray(raw []byte) (Value, error) {
	arr := Value{kind: Array}
	var inner error
	_, err := jsonparser.ArrayEach(raw, func(val []byte, typ jsonparser.ValueType, _ int, err error) {
		if inner != nil {
			return
		}
		if err != nil {
			inner = err
			return
		}
		child, err := build(val, typ)
		if err != nil {
			inner = err
			return
		}
		arr.elems = append(arr.elems, child)
	})
	if err == nil {
		err = inner
	}
	if err != nil {
		return Value{}, fmt.Errorf("%w: %v", ErrMalformed, err)
	}
	return arr, nil
}
