// Package script runs Tengo scripts against a loaded project. Scripts see
// the project as an immutable `project` value and call `report(msg)` to
// emit findings; a script may also leave a value in a global named
// `result`.
package script

import (
	"context"
	"fmt"
	"strings"

	"github.com/d5/tengo/v2"
	"github.com/d5/tengo/v2/stdlib"
	"github.com/milk9111/ldtk/schema"
)

// Result is what a script produced.
type Result struct {
	// Reports holds the arguments of every report call, in call order.
	Reports []string
	// Value is the script's `result` global converted to Go, nil when the
	// script does not define one.
	Value any
}

// Run compiles src with the Tengo standard library available to import
// and runs it once against p.
func Run(ctx context.Context, src []byte, p *schema.Project) (*Result, error) {
	res := &Result{}

	s := tengo.NewScript(src)
	s.SetImports(stdlib.GetModuleMap(stdlib.AllModuleNames()...))
	if err := s.Add("project", projectObject(p)); err != nil {
		return nil, fmt.Errorf("script: add project: %w", err)
	}
	report := &tengo.UserFunction{Name: "report", Value: func(args ...tengo.Object) (tengo.Object, error) {
		if len(args) == 0 {
			return nil, tengo.ErrWrongNumArguments
		}
		parts := make([]string, 0, len(args))
		for _, a := range args {
			parts = append(parts, objectAsString(a))
		}
		res.Reports = append(res.Reports, strings.Join(parts, " "))
		return tengo.UndefinedValue, nil
	}}
	if err := s.Add("report", report); err != nil {
		return nil, fmt.Errorf("script: add report: %w", err)
	}

	compiled, err := s.Compile()
	if err != nil {
		return nil, fmt.Errorf("script: compile: %w", err)
	}
	if err := compiled.RunContext(ctx); err != nil {
		return res, fmt.Errorf("script: run: %w", err)
	}
	if compiled.IsDefined("result") {
		res.Value = compiled.Get("result").Value()
	}
	return res, nil
}

func objectAsString(obj tengo.Object) string {
	switch v := obj.(type) {
	case *tengo.String:
		return v.Value
	case nil:
		return ""
	default:
		return v.String()
	}
}

func projectObject(p *schema.Project) tengo.Object {
	if p == nil {
		return tengo.UndefinedValue
	}
	worlds := make([]tengo.Object, 0, len(p.Worlds))
	for i := range p.Worlds {
		w := &p.Worlds[i]
		worlds = append(worlds, immutableMap(map[string]tengo.Object{
			"iid":        str(w.Iid),
			"identifier": str(w.Identifier),
			"levels":     levelsObject(w.Levels),
		}))
	}
	overlaps := make([]tengo.Object, 0)
	for _, pair := range p.OverlappingLevels() {
		overlaps = append(overlaps, &tengo.ImmutableArray{Value: []tengo.Object{
			str(pair[0].Identifier), str(pair[1].Identifier),
		}})
	}
	return immutableMap(map[string]tengo.Object{
		"iid":             str(p.Iid),
		"jsonVersion":     str(p.JSONVersion),
		"externalLevels":  boolean(p.ExternalLevels),
		"defaultGridSize": integer(p.DefaultGridSize),
		"levelState":      str(p.LevelState().String()),
		"levels":          levelsObject(p.Levels),
		"worlds":          &tengo.ImmutableArray{Value: worlds},
		"overlaps":        &tengo.ImmutableArray{Value: overlaps},
	})
}

func levelsObject(levels []schema.Level) tengo.Object {
	out := make([]tengo.Object, 0, len(levels))
	for i := range levels {
		out = append(out, levelObject(&levels[i]))
	}
	return &tengo.ImmutableArray{Value: out}
}

func levelObject(l *schema.Level) tengo.Object {
	layers := make([]tengo.Object, 0, len(l.LayerInstances))
	for i := range l.LayerInstances {
		layers = append(layers, layerObject(&l.LayerInstances[i]))
	}
	external := tengo.UndefinedValue
	if l.ExternalRelPath != nil {
		external = str(*l.ExternalRelPath)
	}
	return immutableMap(map[string]tengo.Object{
		"uid":             integer(l.UID),
		"iid":             str(l.Iid),
		"identifier":      str(l.Identifier),
		"worldX":          integer(l.WorldX),
		"worldY":          integer(l.WorldY),
		"pxWid":           integer(l.PxWid),
		"pxHei":           integer(l.PxHei),
		"stub":            boolean(l.IsStub()),
		"externalRelPath": external,
		"fields":          fieldsObject(l.FieldInstances),
		"layers":          &tengo.ImmutableArray{Value: layers},
	})
}

func layerObject(l *schema.LayerInstance) tengo.Object {
	entities := make([]tengo.Object, 0, len(l.EntityInstances))
	for i := range l.EntityInstances {
		e := &l.EntityInstances[i]
		box := e.Rect()
		tags := make([]tengo.Object, 0, len(e.Tags))
		for _, t := range e.Tags {
			tags = append(tags, str(t))
		}
		entities = append(entities, immutableMap(map[string]tengo.Object{
			"iid":        str(e.Iid),
			"identifier": str(e.Identifier),
			"x":          integer(e.Px[0]),
			"y":          integer(e.Px[1]),
			"cx":         integer(e.Grid[0]),
			"cy":         integer(e.Grid[1]),
			"width":      integer(e.Width),
			"height":     integer(e.Height),
			"left":       integer(box.X),
			"top":        integer(box.Y),
			"tags":       &tengo.ImmutableArray{Value: tags},
			"fields":     fieldsObject(e.FieldInstances),
		}))
	}
	grid := make([]tengo.Object, 0, len(l.IntGridCSV))
	for _, v := range l.IntGridCSV {
		grid = append(grid, integer(v))
	}
	return immutableMap(map[string]tengo.Object{
		"iid":        str(l.Iid),
		"identifier": str(l.Identifier),
		"type":       str(string(l.Type)),
		"cWid":       integer(l.CWid),
		"cHei":       integer(l.CHei),
		"gridSize":   integer(l.GridSize),
		"visible":    boolean(l.Visible),
		"intGrid":    &tengo.ImmutableArray{Value: grid},
		"tileCount":  integer(len(l.Tiles())),
		"entities":   &tengo.ImmutableArray{Value: entities},
	})
}

// fieldsObject maps field identifiers to their values. Null values are
// undefined in the script.
func fieldsObject(fields []schema.FieldInstance) tengo.Object {
	m := make(map[string]tengo.Object, len(fields))
	for _, f := range fields {
		if _, ok := m[f.Identifier]; ok {
			continue
		}
		m[f.Identifier] = fieldValueObject(f.Value)
	}
	return immutableMap(m)
}

func fieldValueObject(v schema.FieldValue) tengo.Object {
	switch v := v.(type) {
	case schema.IntValue:
		return integer(int(v))
	case schema.FloatValue:
		return &tengo.Float{Value: float64(v)}
	case schema.BoolValue:
		return boolean(bool(v))
	case schema.StringValue:
		return str(string(v))
	case schema.ColorValue:
		return str(v.Hex())
	case schema.EnumValue:
		return str(v.Value)
	case schema.PointValue:
		return immutableMap(map[string]tengo.Object{"cx": integer(v.Cx), "cy": integer(v.Cy)})
	case schema.EntityRefValue:
		return immutableMap(map[string]tengo.Object{
			"entityIid": str(v.EntityIid),
			"layerIid":  str(v.LayerIid),
			"levelIid":  str(v.LevelIid),
			"worldIid":  str(v.WorldIid),
		})
	case schema.TileValue:
		return immutableMap(map[string]tengo.Object{
			"tilesetUid": integer(v.TilesetUID),
			"x":          integer(v.X),
			"y":          integer(v.Y),
			"w":          integer(v.W),
			"h":          integer(v.H),
		})
	case schema.ArrayValue:
		items := make([]tengo.Object, 0, len(v))
		for _, item := range v {
			items = append(items, fieldValueObject(item))
		}
		return &tengo.ImmutableArray{Value: items}
	}
	return tengo.UndefinedValue
}

func immutableMap(m map[string]tengo.Object) *tengo.ImmutableMap {
	return &tengo.ImmutableMap{Value: m}
}

func str(s string) tengo.Object {
	return &tengo.String{Value: s}
}

func integer(n int) tengo.Object {
	return &tengo.Int{Value: int64(n)}
}

func boolean(b bool) tengo.Object {
	if b {
		return tengo.TrueValue
	}
	return tengo.FalseValue
}
