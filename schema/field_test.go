package schema

import (
	"encoding/json"
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestParseFieldType(t *testing.T) {
	cases := []struct {
		tag     string
		want    FieldType
		wantErr bool
	}{
		{tag: "Int", want: FieldType{Kind: KindInt}},
		{tag: "Float", want: FieldType{Kind: KindFloat}},
		{tag: "Multilines", want: FieldType{Kind: KindMultilines}},
		{tag: "Array<Point>", want: FieldType{Kind: KindPoint, Array: true}},
		{tag: "LocalEnum.Item", want: FieldType{Kind: KindEnum, Enum: "Item"}},
		{tag: "ExternEnum.Biome", want: FieldType{Kind: KindEnum, Enum: "Biome", External: true}},
		{tag: "Enum(Item)", want: FieldType{Kind: KindEnum, Enum: "Item"}},
		{tag: "Array<LocalEnum.Item>", want: FieldType{Kind: KindEnum, Enum: "Item", Array: true}},
		{tag: "Vector3", wantErr: true},
		{tag: "Array<Int", wantErr: true},
		{tag: "LocalEnum.", wantErr: true},
		{tag: "", wantErr: true},
	}

	for _, c := range cases {
		t.Run(c.tag, func(t *testing.T) {
			got, err := ParseFieldType(c.tag)
			if c.wantErr {
				if err == nil {
					t.Fatalf("expected error for %q, got %+v", c.tag, got)
				}
				return
			}
			if err != nil {
				t.Fatalf("ParseFieldType(%q): %v", c.tag, err)
			}
			if got != c.want {
				t.Fatalf("expected %+v, got %+v", c.want, got)
			}
		})
	}
}

func TestFieldTypeString(t *testing.T) {
	for _, tag := range []string{"Int", "Array<Color>", "LocalEnum.Item", "Array<ExternEnum.Biome>", "EntityRef"} {
		ft, err := ParseFieldType(tag)
		if err != nil {
			t.Fatalf("ParseFieldType(%q): %v", tag, err)
		}
		if ft.String() != tag {
			t.Fatalf("expected %q, got %q", tag, ft.String())
		}
	}
}

func fieldDoc(typ, value string) string {
	return `{"__identifier":"f","__type":"` + typ + `","__value":` + value + `,"__tile":null,"defUid":1,"realEditorValues":[]}`
}

func TestFieldInstanceValues(t *testing.T) {
	cases := []struct {
		name  string
		typ   string
		value string
		want  FieldValue
	}{
		{"int", "Int", `42`, IntValue(42)},
		{"negative_int", "Int", `-3`, IntValue(-3)},
		{"float", "Float", `0.25`, FloatValue(0.25)},
		{"float_from_integer", "Float", `2`, FloatValue(2)},
		{"bool", "Bool", `true`, BoolValue(true)},
		{"string", "String", `"hello"`, StringValue("hello")},
		{"file_path", "FilePath", `"a/b.png"`, StringValue("a/b.png")},
		{"color", "Color", `"#0A0B0C"`, ColorValue{R: 10, G: 11, B: 12}},
		{"point", "Point", `{"cx":3,"cy":4}`, PointValue{Cx: 3, Cy: 4}},
		{"enum", "LocalEnum.Item", `"Sword"`, EnumValue{Enum: "Item", Value: "Sword"}},
		{"entity_ref", "EntityRef", `{"entityIid":"e","layerIid":"l","levelIid":"v","worldIid":"w"}`,
			EntityRefValue{EntityIid: "e", LayerIid: "l", LevelIid: "v", WorldIid: "w"}},
		{"tile", "Tile", `{"tilesetUid":1,"x":2,"y":3,"w":4,"h":5}`, TileValue{TilesetUID: 1, X: 2, Y: 3, W: 4, H: 5}},
		{"null", "Int", `null`, NullValue{}},
		{"int_array", "Array<Int>", `[1, null, 3]`, ArrayValue{IntValue(1), NullValue{}, IntValue(3)}},
		{"empty_array", "Array<Point>", `[]`, ArrayValue{}},
	}

	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			var f FieldInstance
			if err := json.Unmarshal([]byte(fieldDoc(c.typ, c.value)), &f); err != nil {
				t.Fatalf("Unmarshal: %v", err)
			}
			if diff := cmp.Diff(c.want, f.Value); diff != "" {
				t.Fatalf("unexpected value (-want +got):\n%s", diff)
			}

			data, err := json.Marshal(f)
			if err != nil {
				t.Fatalf("Marshal: %v", err)
			}
			var again FieldInstance
			if err := json.Unmarshal(data, &again); err != nil {
				t.Fatalf("re-decode %s: %v", data, err)
			}
			if diff := cmp.Diff(f, again); diff != "" {
				t.Fatalf("round trip mismatch (-first +second):\n%s", diff)
			}
		})
	}
}

func TestFieldInstanceRejectsMismatchedValues(t *testing.T) {
	cases := []struct {
		name  string
		typ   string
		value string
	}{
		{"fractional_int", "Int", `1.5`},
		{"exponent_int", "Int", `1e3`},
		{"string_int", "Int", `"4"`},
		{"string_float", "Float", `"0.5"`},
		{"number_bool", "Bool", `1`},
		{"number_string", "String", `7`},
		{"bad_color", "Color", `"orange"`},
		{"short_color", "Color", `"#fff"`},
		{"point_missing_cy", "Point", `{"cx":1}`},
		{"array_not_array", "Array<Int>", `5`},
		{"array_bad_item", "Array<Int>", `[1, "two"]`},
		{"unknown_type", "Quaternion", `1`},
		{"enum_number", "LocalEnum.Item", `3`},
	}

	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			var f FieldInstance
			err := json.Unmarshal([]byte(fieldDoc(c.typ, c.value)), &f)
			if err == nil {
				t.Fatalf("expected error, decoded %+v", f)
			}
			var fe *FieldError
			if !errors.As(err, &fe) {
				t.Fatalf("expected *FieldError, got %T: %v", err, err)
			}
		})
	}
}

func TestFieldInstanceMissingValueKey(t *testing.T) {
	var f FieldInstance
	err := json.Unmarshal([]byte(`{"__identifier":"f","__type":"Int","defUid":1}`), &f)
	var fe *FieldError
	if !errors.As(err, &fe) || fe.Field != "__value" {
		t.Fatalf("expected missing __value error, got %v", err)
	}
}

func TestColorValue(t *testing.T) {
	c, err := ParseColor("#FF8800")
	if err != nil {
		t.Fatalf("ParseColor: %v", err)
	}
	if c.Hex() != "#FF8800" {
		t.Fatalf("expected #FF8800, got %s", c.Hex())
	}
	r, g, b, a := c.RGBA()
	if r>>8 != 0xff || g>>8 != 0x88 || b != 0 || a>>8 != 0xff {
		t.Fatalf("unexpected RGBA %d %d %d %d", r, g, b, a)
	}
}

func TestEntityFieldLookup(t *testing.T) {
	p := loadInline(t)
	player := p.Levels[0].Entities()[0]

	hp, ok := player.Field("hp")
	if !ok || hp.Value != IntValue(7) {
		t.Fatalf("expected hp=7, got %+v", hp)
	}
	loot, ok := player.Field("loot")
	if !ok {
		t.Fatalf("loot field missing")
	}
	want := ArrayValue{EnumValue{Enum: "Item", Value: "Sword"}, NullValue{}}
	if diff := cmp.Diff(want, loot.Value); diff != "" {
		t.Fatalf("unexpected loot (-want +got):\n%s", diff)
	}
	note, _ := player.Field("note")
	if !note.IsNull() {
		t.Fatalf("expected note to be null, got %+v", note.Value)
	}
	if _, ok := player.Field("missing"); ok {
		t.Fatalf("expected missing field lookup to fail")
	}
	if !player.HasTag("actor") {
		t.Fatalf("expected actor tag")
	}
}
