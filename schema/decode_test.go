package schema

import (
	"bytes"
	"encoding/json"
	"errors"
	"maps"
	"os"
	"slices"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func loadInline(t *testing.T) *Project {
	t.Helper()
	f, err := os.Open("testdata/inline.ldtk")
	if err != nil {
		t.Fatalf("open fixture: %v", err)
	}
	defer f.Close()
	p, err := DecodeProject(f)
	if err != nil {
		t.Fatalf("DecodeProject: %v", err)
	}
	return p
}

func TestDecodeProjectInline(t *testing.T) {
	p := loadInline(t)

	if p.JSONVersion != "1.1.3" {
		t.Fatalf("expected jsonVersion 1.1.3, got %q", p.JSONVersion)
	}
	if p.ExternalLevels {
		t.Fatalf("expected inline levels")
	}
	if len(p.Levels) != 2 {
		t.Fatalf("expected 2 levels, got %d", len(p.Levels))
	}
	if got := p.LevelState(); got != StateInline {
		t.Fatalf("expected state inline, got %s", got)
	}

	lvl := p.Levels[0]
	if lvl.Identifier != "Level_0" || lvl.PxWid != 32 || lvl.IsStub() {
		t.Fatalf("unexpected first level: %+v", lvl)
	}
	if len(lvl.LayerInstances) != 3 {
		t.Fatalf("expected 3 layers, got %d", len(lvl.LayerInstances))
	}
	if len(lvl.Neighbours) != 1 || lvl.Neighbours[0].Dir != "e" {
		t.Fatalf("unexpected neighbours: %+v", lvl.Neighbours)
	}

	tileset, ok := p.Defs.Tileset(5)
	if !ok || tileset.RelPath == nil || *tileset.RelPath != "tiles/cavernas.png" {
		t.Fatalf("tileset 5 not decoded: %+v", tileset)
	}
	if len(p.Defs.Layers[1].IntGridValues) != 2 || p.Defs.Layers[1].IntGridValues[1].Identifier != nil {
		t.Fatalf("unexpected intGrid values: %+v", p.Defs.Layers[1].IntGridValues)
	}
}

func TestDecodeProjectRoundTrip(t *testing.T) {
	first := loadInline(t)

	data, err := json.Marshal(first)
	if err != nil {
		t.Fatalf("Marshal: %v", err)
	}
	second, err := DecodeProject(bytes.NewReader(data))
	if err != nil {
		t.Fatalf("re-decode: %v", err)
	}
	if diff := cmp.Diff(first, second); diff != "" {
		t.Fatalf("round trip mismatch (-first +second):\n%s", diff)
	}

	again, err := json.Marshal(second)
	if err != nil {
		t.Fatalf("Marshal: %v", err)
	}
	if !bytes.Equal(data, again) {
		t.Fatalf("encoding is not stable across round trips")
	}
}

func TestDecodeLevelRoundTrip(t *testing.T) {
	p := loadInline(t)
	data, err := json.Marshal(p.Levels[0])
	if err != nil {
		t.Fatalf("Marshal: %v", err)
	}
	lvl, err := DecodeLevel(bytes.NewReader(data))
	if err != nil {
		t.Fatalf("DecodeLevel: %v", err)
	}
	if diff := cmp.Diff(&p.Levels[0], lvl); diff != "" {
		t.Fatalf("level round trip mismatch (-want +got):\n%s", diff)
	}
}

// levelDoc is a standalone level carrying every key a level file has.
const levelDoc = `{
	"uid": 1, "iid": "x", "identifier": "L", "worldX": 0, "worldY": 0, "worldDepth": 0,
	"pxWid": 1, "pxHei": 1, "__bgColor": "#000000", "bgColor": null, "bgRelPath": null,
	"bgPos": null, "bgPivotX": 0.5, "bgPivotY": 0.5, "__bgPos": null, "__smartColor": "#FFFFFF",
	"useAutoIdentifier": false, "externalRelPath": null, "fieldInstances": [],
	"layerInstances": [], "__neighbours": []
}`

const layerDoc = `{
	"__identifier": "A", "__type": "IntGrid", "__cWid": 1, "__cHei": 1, "__gridSize": 8,
	"__opacity": 1, "__pxTotalOffsetX": 0, "__pxTotalOffsetY": 0, "__tilesetDefUid": null,
	"__tilesetRelPath": null, "iid": "y", "levelId": 1, "layerDefUid": 2, "pxOffsetX": 0,
	"pxOffsetY": 0, "visible": true, "seed": 3, "optionalRules": [], "overrideTilesetUid": null,
	"intGridCsv": [0], "autoLayerTiles": [], "gridTiles": [], "entityInstances": []
}`

// withKeys returns doc with each key set to a raw JSON value. An empty
// value deletes the key.
func withKeys(t *testing.T, doc string, kv map[string]string) string {
	t.Helper()
	var m map[string]json.RawMessage
	if err := json.Unmarshal([]byte(doc), &m); err != nil {
		t.Fatalf("bad test document: %v", err)
	}
	for k, v := range kv {
		if v == "" {
			delete(m, k)
			continue
		}
		m[k] = json.RawMessage(v)
	}
	out, err := json.Marshal(m)
	if err != nil {
		t.Fatalf("marshal test document: %v", err)
	}
	return string(out)
}

func TestDecodeLevelFailures(t *testing.T) {
	cases := []struct {
		name      string
		doc       string
		wantField string
	}{
		{"not_a_level", `{"not": "a level"}`, "uid"},
		{"null_document", `null`, ""},
		{"array_document", `[]`, ""},
		{"uid_wrong_type", withKeys(t, levelDoc, map[string]string{"uid": `"zero"`}), "uid"},
		{"uid_null", withKeys(t, levelDoc, map[string]string{"uid": `null`}), "uid"},
		{"missing_field_instances", withKeys(t, levelDoc, map[string]string{"fieldInstances": ""}), "fieldInstances"},
		{"missing_bg_color", withKeys(t, levelDoc, map[string]string{"__bgColor": ""}), "__bgColor"},
		{"missing_neighbours", withKeys(t, levelDoc, map[string]string{"__neighbours": ""}), "__neighbours"},
		{"missing_layer_instances", withKeys(t, levelDoc, map[string]string{"layerInstances": ""}), "layerInstances"},
		{"null_layer_instances", withKeys(t, levelDoc, map[string]string{"layerInstances": `null`}), "layerInstances"},
		{"unknown_layer_type", withKeys(t, levelDoc, map[string]string{
			"layerInstances": "[" + withKeys(t, layerDoc, map[string]string{"__type": `"Voxels"`}) + "]",
		}), ""},
		{"layer_missing_seed", withKeys(t, levelDoc, map[string]string{
			"layerInstances": "[" + withKeys(t, layerDoc, map[string]string{"seed": ""}) + "]",
		}), "seed"},
		{"field_value_mismatch", withKeys(t, levelDoc, map[string]string{
			"fieldInstances": `[{"__identifier":"hp","__type":"Int","__value":"seven","__tile":null,"defUid":3,"realEditorValues":[]}]`,
		}), "__value"},
	}

	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			lvl, err := DecodeLevel(strings.NewReader(c.doc))
			if err == nil {
				t.Fatalf("expected decode error, got level %+v", lvl)
			}
			if lvl != nil {
				t.Fatalf("expected no level on error, got %+v", lvl)
			}
			var fe *FieldError
			if !errors.As(err, &fe) {
				t.Fatalf("expected *FieldError, got %T: %v", err, err)
			}
			if c.wantField != "" && fe.Field != c.wantField {
				t.Fatalf("expected error on %q, got %q (%v)", c.wantField, fe.Field, err)
			}
		})
	}
}

func TestDecodeLevelComplete(t *testing.T) {
	lvl, err := DecodeLevel(strings.NewReader(levelDoc))
	if err != nil {
		t.Fatalf("DecodeLevel: %v", err)
	}
	if lvl.IsStub() || lvl.ResolvedBgColor != "#000000" || lvl.Neighbours == nil {
		t.Fatalf("unexpected level %+v", lvl)
	}
}

// dig walks decoded JSON by object key and array index.
func dig(t *testing.T, v any, path ...any) map[string]any {
	t.Helper()
	for _, p := range path {
		switch k := p.(type) {
		case string:
			m, ok := v.(map[string]any)
			if !ok {
				t.Fatalf("%v: not an object at %q", path, k)
			}
			v = m[k]
		case int:
			a, ok := v.([]any)
			if !ok || k >= len(a) {
				t.Fatalf("%v: no element %d", path, k)
			}
			v = a[k]
		}
	}
	m, ok := v.(map[string]any)
	if !ok {
		t.Fatalf("%v: not an object", path)
	}
	return m
}

func into[T any]() func([]byte) error {
	return func(data []byte) error {
		var v T
		return json.Unmarshal(data, &v)
	}
}

func TestDecodeRequiresEveryKey(t *testing.T) {
	data, err := os.ReadFile("testdata/inline.ldtk")
	if err != nil {
		t.Fatalf("read fixture: %v", err)
	}
	var root map[string]any
	if err := json.Unmarshal(data, &root); err != nil {
		t.Fatalf("unmarshal fixture: %v", err)
	}
	level := dig(t, root, "levels", 0)
	entity := dig(t, level, "layerInstances", 0, "entityInstances", 0)
	world := map[string]any{
		"iid": "w", "identifier": "W", "worldLayout": nil, "worldGridWidth": 0, "worldGridHeight": 0,
		"defaultLevelWidth": 16, "defaultLevelHeight": 16, "levels": []any{},
	}
	bgPos := map[string]any{"cropRect": []any{0, 0, 1, 1}, "scale": []any{1, 1}, "topLeftPx": []any{0, 0}}

	cases := []struct {
		shape  shape
		doc    map[string]any
		decode func([]byte) error
	}{
		{projectShape, root, into[Project]()},
		{definitionsShape, dig(t, root, "defs"), into[Definitions]()},
		{layerDefinitionShape, dig(t, root, "defs", "layers", 1), into[LayerDefinition]()},
		{intGridValueShape, dig(t, root, "defs", "layers", 1, "intGridValues", 0), into[IntGridValueDefinition]()},
		{entityDefinitionShape, dig(t, root, "defs", "entities", 0), into[EntityDefinition]()},
		{fieldDefinitionShape, dig(t, root, "defs", "entities", 0, "fieldDefs", 0), into[FieldDefinition]()},
		{tilesetDefinitionShape, dig(t, root, "defs", "tilesets", 0), into[TilesetDefinition]()},
		{enumTagShape, dig(t, root, "defs", "tilesets", 0, "enumTags", 0), into[EnumTagValue]()},
		{tileCustomDataShape, dig(t, root, "defs", "tilesets", 0, "customData", 0), into[TileCustomData]()},
		{enumDefinitionShape, dig(t, root, "defs", "enums", 0), into[EnumDefinition]()},
		{enumValueShape, dig(t, root, "defs", "enums", 0, "values", 0), into[EnumValueDefinition]()},
		{worldShape, world, into[World]()},
		{levelShape, level, into[Level]()},
		{levelBgPosShape, bgPos, into[LevelBgPosInfos]()},
		{neighbourLevelShape, dig(t, level, "__neighbours", 0), into[NeighbourLevel]()},
		{layerInstanceShape, dig(t, level, "layerInstances", 1), into[LayerInstance]()},
		{tileInstanceShape, dig(t, level, "layerInstances", 1, "autoLayerTiles", 0), into[TileInstance]()},
		{entityInstanceShape, entity, into[EntityInstance]()},
		{fieldInstanceShape, dig(t, entity, "fieldInstances", 0), into[FieldInstance]()},
		{tilesetRectShape, dig(t, entity, "__tile"), into[TilesetRect]()},
		{gridPointShape, dig(t, entity, "fieldInstances", 4, "__value"), into[GridPoint]()},
		{entityRefShape, dig(t, entity, "fieldInstances", 7, "__value"), into[EntityRef]()},
	}

	for _, c := range cases {
		full, err := json.Marshal(c.doc)
		if err != nil {
			t.Fatalf("%s: marshal: %v", c.shape.name, err)
		}
		if err := c.decode(full); err != nil {
			t.Fatalf("%s: complete document failed to decode: %v", c.shape.name, err)
		}

		for _, key := range append(append([]string{}, c.shape.required...), c.shape.lists...) {
			t.Run(c.shape.name+"/"+key, func(t *testing.T) {
				doc := maps.Clone(c.doc)
				delete(doc, key)
				data, err := json.Marshal(doc)
				if err != nil {
					t.Fatalf("marshal: %v", err)
				}
				var fe *FieldError
				if err := c.decode(data); !errors.As(err, &fe) || fe.Type != c.shape.name || fe.Field != key {
					t.Fatalf("expected missing %s.%s, got %v", c.shape.name, key, err)
				}
			})
		}
	}
}

func TestShapeOf(t *testing.T) {
	cases := []struct {
		shape    shape
		required []string
		lists    []string
		nullable []string
	}{
		{
			shape:    levelShape,
			required: []string{"__bgColor", "__smartColor", "worldDepth", "bgPivotX", "bgPivotY", "useAutoIdentifier"},
			lists:    []string{"fieldInstances", "layerInstances", "__neighbours"},
			nullable: []string{"bgColor", "bgRelPath", "bgPos", "__bgPos", "externalRelPath"},
		},
		{
			shape:    layerInstanceShape,
			required: []string{"seed", "pxOffsetX", "pxOffsetY", "__pxTotalOffsetX", "__pxTotalOffsetY"},
			lists:    []string{"optionalRules", "intGridCsv", "autoLayerTiles", "gridTiles", "entityInstances"},
			nullable: []string{"__tilesetDefUid", "__tilesetRelPath", "overrideTilesetUid"},
		},
		{
			shape:    projectShape,
			required: []string{"iid", "bgColor", "jsonVersion", "externalLevels", "defs"},
			lists:    []string{"flags", "levels", "worlds"},
			nullable: []string{"worldLayout", "defaultLevelWidth", "pngFilePattern", "tutorialDesc"},
		},
		{
			shape:    entityInstanceShape,
			required: []string{"__smartColor", "__grid", "__pivot", "px"},
			lists:    []string{"__tags", "fieldInstances"},
			nullable: []string{"__tile"},
		},
	}

	for _, c := range cases {
		t.Run(c.shape.name, func(t *testing.T) {
			for _, k := range c.required {
				if !slices.Contains(c.shape.required, k) {
					t.Fatalf("%s should be required", k)
				}
			}
			for _, k := range c.lists {
				if !slices.Contains(c.shape.lists, k) {
					t.Fatalf("%s should be a list", k)
				}
			}
			for _, k := range c.nullable {
				if slices.Contains(c.shape.required, k) || slices.Contains(c.shape.lists, k) {
					t.Fatalf("%s should be nullable", k)
				}
			}
		})
	}

	want := map[string]int{"__grid": 2, "__pivot": 2, "px": 2}
	if diff := cmp.Diff(want, entityInstanceShape.fixed); diff != "" {
		t.Fatalf("unexpected fixed lengths (-want +got):\n%s", diff)
	}
}

func TestDecodeFixedLengthArrays(t *testing.T) {
	p := loadInline(t)
	entity, err := json.Marshal(p.Levels[0].Entities()[0])
	if err != nil {
		t.Fatalf("Marshal: %v", err)
	}
	tile  := `{"px": [0, 0], "src": [0, 0], "f": 0, "t": 0, "d": []}`
	bgPos := `{"cropRect": [0, 0, 1, 1], "scale": [1, 1], "topLeftPx": [0, 0]}`

	cases := []struct {
		name   string
		doc    string
		key    string
		decode func([]byte) error
	}{
		{"grid_too_long", withKeys(t, string(entity), map[string]string{"__grid": `[1, 2, 3]`}), "__grid", into[EntityInstance]()},
		{"pivot_too_short", withKeys(t, string(entity), map[string]string{"__pivot": `[0.5]`}), "__pivot", into[EntityInstance]()},
		{"px_too_short", withKeys(t, string(entity), map[string]string{"px": `[4]`}), "px", into[EntityInstance]()},
		{"src_empty", withKeys(t, tile, map[string]string{"src": `[]`}), "src", into[TileInstance]()},
		{"crop_rect_short", withKeys(t, bgPos, map[string]string{"cropRect": `[0, 0, 1]`}), "cropRect", into[LevelBgPosInfos]()},
		{"scale_long", withKeys(t, bgPos, map[string]string{"scale": `[1, 1, 1]`}), "scale", into[LevelBgPosInfos]()},
		{"top_left_not_array", withKeys(t, bgPos, map[string]string{"topLeftPx": `"0,0"`}), "topLeftPx", into[LevelBgPosInfos]()},
	}

	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			var fe *FieldError
			if err := c.decode([]byte(c.doc)); !errors.As(err, &fe) || fe.Field != c.key {
				t.Fatalf("expected error on %s, got %v", c.key, err)
			}
		})
	}

	if err := into[TileInstance]()([]byte(tile)); err != nil {
		t.Fatalf("TileInstance: %v", err)
	}
	if err := into[LevelBgPosInfos]()([]byte(bgPos)); err != nil {
		t.Fatalf("LevelBgPosInfos: %v", err)
	}
}

func TestDecodeDocumentRejectsTrailingData(t *testing.T) {
	doc := levelDoc + ` {}`
	if _, err := DecodeLevel(strings.NewReader(doc)); err == nil {
		t.Fatalf("expected error for trailing data")
	}
}

func TestDecodeSyntaxError(t *testing.T) {
	_, err := DecodeProject(strings.NewReader(`{"jsonVersion": `))
	if err == nil {
		t.Fatalf("expected error for truncated document")
	}
}

func TestDecodeIgnoresUnknownKeys(t *testing.T) {
	doc := withKeys(t, levelDoc, map[string]string{"uid": `4`, "fromTheFuture": `{"a":1}`})
	lvl, err := DecodeLevel(strings.NewReader(doc))
	if err != nil {
		t.Fatalf("DecodeLevel: %v", err)
	}
	if lvl.UID != 4 || lvl.IsStub() {
		t.Fatalf("unexpected level %+v", lvl)
	}
}
