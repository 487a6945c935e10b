package schema

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"reflect"
	"strings"
)

// FieldError reports a document that does not match the shape of a record.
type FieldError struct {
	Type   string // record being decoded, e.g. "Level"
	Field  string // JSON key, empty when the problem is the whole value
	Reason string
	Err    error
}

func (e *FieldError) Error() string {
	if e.Field == "" {
		return fmt.Sprintf("schema: %s: %s", e.Type, e.Reason)
	}
	return fmt.Sprintf("schema: %s.%s: %s", e.Type, e.Field, e.Reason)
}

func (e *FieldError) Unwrap() error { return e.Err }

// shape lists the keys a record must carry.
type shape struct {
	name string
	// required keys must be present and not null.
	required []string
	// lists must be present; null is accepted and decodes as a nil slice.
	lists []string
	// fixed maps required array keys to their exact element count.
	fixed map[string]int
}

// shapeOf derives a shape from the json tags of T. Pointer, interface and
// map fields are nullable and may be absent. Slices are lists. Arrays are
// required with a fixed length. Every other field is required.
func shapeOf[T any](name string) shape {
	s := shape{name: name}
	t := reflect.TypeOf((*T)(nil)).Elem()
	for i := 0; i < t.NumField(); i++ {
		f := t.Field(i)
		key, _, _ := strings.Cut(f.Tag.Get("json"), ",")
		if key == "" || key == "-" {
			continue
		}
		switch f.Type.Kind() {
		case reflect.Pointer, reflect.Interface, reflect.Map:
		case reflect.Slice:
			s.lists = append(s.lists, key)
		case reflect.Array:
			s.required = append(s.required, key)
			if s.fixed == nil {
				s.fixed = make(map[string]int)
			}
			s.fixed[key] = f.Type.Len()
		default:
			s.required = append(s.required, key)
		}
	}
	return s
}

var null = []byte("null")

// decodeObject checks data against s and then decodes it into dst, which
// must point at a type without its own UnmarshalJSON method.
func decodeObject(data []byte, s shape, dst any) error {
	var keys map[string]json.RawMessage
	if err := json.Unmarshal(data, &keys); err != nil {
		return &FieldError{Type: s.name, Reason: "expected a JSON object", Err: err}
	}
	if keys == nil {
		return &FieldError{Type: s.name, Reason: "expected a JSON object, got null"}
	}
	for _, k := range s.required {
		raw, ok := keys[k]
		if !ok {
			return &FieldError{Type: s.name, Field: k, Reason: "missing required field"}
		}
		if bytes.Equal(bytes.TrimSpace(raw), null) {
			return &FieldError{Type: s.name, Field: k, Reason: "must not be null"}
		}
	}
	for _, k := range s.lists {
		if _, ok := keys[k]; !ok {
			return &FieldError{Type: s.name, Field: k, Reason: "missing required field"}
		}
	}
	for _, k := range s.required {
		n, ok := s.fixed[k]
		if !ok {
			continue
		}
		var items []json.RawMessage
		if err := json.Unmarshal(keys[k], &items); err != nil {
			// not an array; the full decode below names the mismatch
			continue
		}
		if len(items) != n {
			return &FieldError{Type: s.name, Field: k, Reason: fmt.Sprintf("expected %d elements, got %d", n, len(items))}
		}
	}
	if err := json.Unmarshal(data, dst); err != nil {
		return typeError(s.name, err)
	}
	return nil
}

// typeError keeps the innermost FieldError and turns encoding/json type
// mismatches into FieldErrors naming the offending key.
func typeError(name string, err error) error {
	var fe *FieldError
	if errors.As(err, &fe) {
		return err
	}
	var te *json.UnmarshalTypeError
	if errors.As(err, &te) {
		return &FieldError{
			Type:   name,
			Field:  te.Field,
			Reason: fmt.Sprintf("cannot use JSON %s as %s", te.Value, te.Type),
			Err:    err,
		}
	}
	return &FieldError{Type: name, Reason: err.Error(), Err: err}
}

// decodeDocument decodes exactly one JSON value from r into v.
func decodeDocument(r io.Reader, v any) error {
	dec := json.NewDecoder(r)
	if err := dec.Decode(v); err != nil {
		return err
	}
	if _, err := dec.Token(); err != io.EOF {
		return errors.New("schema: unexpected data after top-level value")
	}
	return nil
}

// DecodeProject reads a project document from r.
func DecodeProject(r io.Reader) (*Project, error) {
	var p Project
	if err := decodeDocument(r, &p); err != nil {
		return nil, err
	}
	return &p, nil
}

// DecodeLevel reads a standalone level document from r. A level file
// always carries its layers, so a null layerInstances is rejected here even
// though a stub inside a project may have one.
func DecodeLevel(r io.Reader) (*Level, error) {
	var l Level
	if err := decodeDocument(r, &l); err != nil {
		return nil, err
	}
	if l.LayerInstances == nil {
		return nil, &FieldError{Type: levelShape.name, Field: "layerInstances", Reason: "must not be null in a level file"}
	}
	return &l, nil
}
