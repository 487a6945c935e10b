package schema

import (
	"bytes"
	"encoding/json"
	"fmt"
	"image/color"
	"strconv"
	"strings"
)

// FieldKind is the base type named by a field instance's __type tag.
type FieldKind int

const (
	KindInt FieldKind = iota + 1
	KindFloat
	KindBool
	KindString
	KindMultilines
	KindFilePath
	KindColor
	KindPoint
	KindEnum
	KindEntityRef
	KindTile
)

var kindNames = map[string]FieldKind{
	"Int":        KindInt,
	"Float":      KindFloat,
	"Bool":       KindBool,
	"String":     KindString,
	"Multilines": KindMultilines,
	"FilePath":   KindFilePath,
	"Color":      KindColor,
	"Point":      KindPoint,
	"EntityRef":  KindEntityRef,
	"Tile":       KindTile,
}

func (k FieldKind) String() string {
	for name, kind := range kindNames {
		if kind == k {
			return name
		}
	}
	if k == KindEnum {
		return "Enum"
	}
	return "FieldKind(" + strconv.Itoa(int(k)) + ")"
}

// FieldType is a parsed __type tag such as "Int", "LocalEnum.Item" or
// "Array<Point>".
type FieldType struct {
	Kind  FieldKind
	Array bool
	// Enum is the enum identifier when Kind is KindEnum.
	Enum string
	// External is set for enums imported from an external file.
	External bool
}

// ParseFieldType parses an LDtk __type tag. Unknown tags are an error.
func ParseFieldType(tag string) (FieldType, error) {
	var t FieldType
	base := tag
	if inner, ok := strings.CutPrefix(tag, "Array<"); ok {
		inner, ok = strings.CutSuffix(inner, ">")
		if !ok {
			return FieldType{}, fmt.Errorf("schema: malformed field type %q", tag)
		}
		t.Array = true
		base = inner
	}

	switch {
	case strings.HasPrefix(base, "LocalEnum."):
		t.Kind, t.Enum = KindEnum, strings.TrimPrefix(base, "LocalEnum.")
	case strings.HasPrefix(base, "ExternEnum."):
		t.Kind, t.Enum, t.External = KindEnum, strings.TrimPrefix(base, "ExternEnum."), true
	case strings.HasPrefix(base, "Enum(") && strings.HasSuffix(base, ")"):
		t.Kind, t.Enum = KindEnum, base[len("Enum("):len(base)-1]
	default:
		kind, ok := kindNames[base]
		if !ok {
			return FieldType{}, fmt.Errorf("schema: unknown field type %q", tag)
		}
		t.Kind = kind
	}
	if t.Kind == KindEnum && t.Enum == "" {
		return FieldType{}, fmt.Errorf("schema: enum field type %q has no enum name", tag)
	}
	return t, nil
}

func (t FieldType) String() string {
	base := t.Kind.String()
	if t.Kind == KindEnum {
		if t.External {
			base = "ExternEnum." + t.Enum
		} else {
			base = "LocalEnum." + t.Enum
		}
	}
	if t.Array {
		return "Array<" + base + ">"
	}
	return base
}

// FieldValue is the value of a field instance. The concrete type is one of
// IntValue, FloatValue, BoolValue, StringValue, ColorValue, PointValue,
// EnumValue, EntityRefValue, TileValue, ArrayValue or NullValue.
type FieldValue interface {
	fieldValue()
}

type (
	IntValue    int
	FloatValue  float64
	BoolValue   bool
	StringValue string
	// ColorValue is an opaque RGB color, written by LDtk as "#RRGGBB".
	ColorValue struct{ R, G, B uint8 }
	PointValue GridPoint
	EnumValue  struct {
		Enum  string
		Value string
	}
	EntityRefValue EntityRef
	TileValue      TilesetRect
	ArrayValue     []FieldValue
	NullValue      struct{}
)

func (IntValue) fieldValue()       {}
func (FloatValue) fieldValue()     {}
func (BoolValue) fieldValue()      {}
func (StringValue) fieldValue()    {}
func (ColorValue) fieldValue()     {}
func (PointValue) fieldValue()     {}
func (EnumValue) fieldValue()      {}
func (EntityRefValue) fieldValue() {}
func (TileValue) fieldValue()      {}
func (ArrayValue) fieldValue()     {}
func (NullValue) fieldValue()      {}

// RGBA implements color.Color.
func (c ColorValue) RGBA() (r, g, b, a uint32) {
	return color.RGBA{R: c.R, G: c.G, B: c.B, A: 0xff}.RGBA()
}

func (c ColorValue) Hex() string {
	return fmt.Sprintf("#%02X%02X%02X", c.R, c.G, c.B)
}

// ParseColor parses "#RRGGBB", in either case.
func ParseColor(s string) (ColorValue, error) {
	hex, ok := strings.CutPrefix(s, "#")
	if !ok || len(hex) != 6 {
		return ColorValue{}, fmt.Errorf("schema: invalid color %q", s)
	}
	n, err := strconv.ParseUint(hex, 16, 32)
	if err != nil {
		return ColorValue{}, fmt.Errorf("schema: invalid color %q: %w", s, err)
	}
	return ColorValue{R: uint8(n >> 16), G: uint8(n >> 8), B: uint8(n)}, nil
}

// FieldInstance is a typed, named value attached to a level or an entity.
type FieldInstance struct {
	Identifier string
	// Type is the raw __type tag; FieldType parses it.
	Type  string
	Value FieldValue
	// Tile is the optional tile shown for this value in the editor.
	Tile             *TilesetRect
	DefUID           int
	RealEditorValues []any
}

type fieldInstanceJSON struct {
	Identifier       string          `json:"__identifier"`
	Type             string          `json:"__type"`
	Value            json.RawMessage `json:"__value"`
	Tile             *TilesetRect    `json:"__tile"`
	DefUID           int             `json:"defUid"`
	RealEditorValues []any           `json:"realEditorValues"`
}

var fieldInstanceShape = shapeOf[fieldInstanceJSON]("FieldInstance")

// FieldType parses the instance's __type tag.
func (f *FieldInstance) FieldType() (FieldType, error) {
	return ParseFieldType(f.Type)
}

// IsNull reports whether the field holds no value.
func (f *FieldInstance) IsNull() bool {
	_, ok := f.Value.(NullValue)
	return f.Value == nil || ok
}

func (f *FieldInstance) UnmarshalJSON(data []byte) error {
	var raw fieldInstanceJSON
	if err := decodeObject(data, fieldInstanceShape, &raw); err != nil {
		return err
	}
	ft, err := ParseFieldType(raw.Type)
	if err != nil {
		return &FieldError{Type: fieldInstanceShape.name, Field: "__type", Reason: err.Error(), Err: err}
	}
	value, err := decodeFieldValue(ft, raw.Value)
	if err != nil {
		return &FieldError{
			Type:   fieldInstanceShape.name,
			Field:  "__value",
			Reason: fmt.Sprintf("%s (field %q, type %s)", err, raw.Identifier, raw.Type),
			Err:    err,
		}
	}
	*f = FieldInstance{
		Identifier:       raw.Identifier,
		Type:             raw.Type,
		Value:            value,
		Tile:             raw.Tile,
		DefUID:           raw.DefUID,
		RealEditorValues: raw.RealEditorValues,
	}
	return nil
}

func (f FieldInstance) MarshalJSON() ([]byte, error) {
	value, err := encodeFieldValue(f.Value)
	if err != nil {
		return nil, fmt.Errorf("schema: field %q: %w", f.Identifier, err)
	}
	return json.Marshal(fieldInstanceJSON{
		Identifier:       f.Identifier,
		Type:             f.Type,
		Value:            value,
		Tile:             f.Tile,
		DefUID:           f.DefUID,
		RealEditorValues: f.RealEditorValues,
	})
}

func isNull(raw json.RawMessage) bool {
	trimmed := bytes.TrimSpace(raw)
	return len(trimmed) == 0 || bytes.Equal(trimmed, null)
}

func decodeFieldValue(t FieldType, raw json.RawMessage) (FieldValue, error) {
	if isNull(raw) {
		return NullValue{}, nil
	}
	if t.Array {
		var items []json.RawMessage
		if err := json.Unmarshal(raw, &items); err != nil {
			return nil, fmt.Errorf("expected an array: %w", err)
		}
		elem := t
		elem.Array = false
		out := make(ArrayValue, 0, len(items))
		for i, item := range items {
			v, err := decodeFieldValue(elem, item)
			if err != nil {
				return nil, fmt.Errorf("item %d: %w", i, err)
			}
			out = append(out, v)
		}
		return out, nil
	}

	switch t.Kind {
	case KindInt:
		var n json.Number
		if err := strictNumber(raw, &n); err != nil {
			return nil, err
		}
		i, err := strconv.ParseInt(n.String(), 10, 64)
		if err != nil {
			return nil, fmt.Errorf("expected an integer, got %s", n)
		}
		return IntValue(i), nil
	case KindFloat:
		var n json.Number
		if err := strictNumber(raw, &n); err != nil {
			return nil, err
		}
		f, err := n.Float64()
		if err != nil {
			return nil, fmt.Errorf("expected a number, got %s", n)
		}
		return FloatValue(f), nil
	case KindBool:
		var b bool
		if err := json.Unmarshal(raw, &b); err != nil {
			return nil, fmt.Errorf("expected a boolean: %w", err)
		}
		return BoolValue(b), nil
	case KindString, KindMultilines, KindFilePath:
		var s string
		if err := json.Unmarshal(raw, &s); err != nil {
			return nil, fmt.Errorf("expected a string: %w", err)
		}
		return StringValue(s), nil
	case KindColor:
		var s string
		if err := json.Unmarshal(raw, &s); err != nil {
			return nil, fmt.Errorf("expected a color string: %w", err)
		}
		return ParseColor(s)
	case KindEnum:
		var s string
		if err := json.Unmarshal(raw, &s); err != nil {
			return nil, fmt.Errorf("expected an enum value: %w", err)
		}
		return EnumValue{Enum: t.Enum, Value: s}, nil
	case KindPoint:
		var p GridPoint
		if err := json.Unmarshal(raw, &p); err != nil {
			return nil, err
		}
		return PointValue(p), nil
	case KindEntityRef:
		var r EntityRef
		if err := json.Unmarshal(raw, &r); err != nil {
			return nil, err
		}
		return EntityRefValue(r), nil
	case KindTile:
		var r TilesetRect
		if err := json.Unmarshal(raw, &r); err != nil {
			return nil, err
		}
		return TileValue(r), nil
	}
	return nil, fmt.Errorf("unsupported field kind %s", t.Kind)
}

// strictNumber decodes a JSON number without accepting numeric strings.
func strictNumber(raw json.RawMessage, n *json.Number) error {
	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) == 0 || trimmed[0] == '"' {
		return fmt.Errorf("expected a number, got %s", trimmed)
	}
	if err := json.Unmarshal(trimmed, n); err != nil {
		return fmt.Errorf("expected a number: %w", err)
	}
	return nil
}

// MarshalFieldValue encodes v the way LDtk writes __value.
func MarshalFieldValue(v FieldValue) ([]byte, error) {
	return encodeFieldValue(v)
}

func encodeFieldValue(v FieldValue) (json.RawMessage, error) {
	switch v := v.(type) {
	case nil, NullValue:
		return null, nil
	case ColorValue:
		return json.Marshal(v.Hex())
	case EnumValue:
		return json.Marshal(v.Value)
	case PointValue:
		return json.Marshal(GridPoint(v))
	case EntityRefValue:
		return json.Marshal(EntityRef(v))
	case TileValue:
		return json.Marshal(TilesetRect(v))
	case ArrayValue:
		items := make([]json.RawMessage, 0, len(v))
		for _, item := range v {
			b, err := encodeFieldValue(item)
			if err != nil {
				return nil, err
			}
			items = append(items, b)
		}
		return json.Marshal(items)
	case IntValue, FloatValue, BoolValue, StringValue:
		return json.Marshal(v)
	}
	return nil, fmt.Errorf("unsupported field value %T", v)
}
