package main

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/milk9111/ldtk/schema"
	"gopkg.in/yaml.v3"
)

type projectSummary struct {
	Path           string `json:"path" yaml:"path"`
	JSONVersion    string `json:"jsonVersion" yaml:"json_version"`
	ExternalLevels bool   `json:"externalLevels" yaml:"external_levels"`
	LevelState     string `json:"levelState" yaml:"level_state"`
	Levels         int    `json:"levels" yaml:"levels"`
	Worlds         int    `json:"worlds" yaml:"worlds"`
	LayerDefs      int    `json:"layerDefs" yaml:"layer_defs"`
	EntityDefs     int    `json:"entityDefs" yaml:"entity_defs"`
	Tilesets       int    `json:"tilesets" yaml:"tilesets"`
	Enums          int    `json:"enums" yaml:"enums"`
	Entities       int    `json:"entities" yaml:"entities"`
	Overlaps       int    `json:"overlaps" yaml:"overlaps"`
}

func summarize(path string, p *schema.Project) projectSummary {
	s := projectSummary{
		Path:           path,
		JSONVersion:    p.JSONVersion,
		ExternalLevels: p.ExternalLevels,
		LevelState:     p.LevelState().String(),
		Worlds:         len(p.Worlds),
		LayerDefs:      len(p.Defs.Layers),
		EntityDefs:     len(p.Defs.Entities),
		Tilesets:       len(p.Defs.Tilesets),
		Enums:          len(p.Defs.Enums) + len(p.Defs.ExternalEnums),
		Overlaps:       len(p.OverlappingLevels()),
	}
	for _, lvl := range p.AllLevels() {
		s.Levels++
		s.Entities += len(lvl.Entities())
	}
	return s
}

type levelSummary struct {
	UID             int    `json:"uid" yaml:"uid"`
	Identifier      string `json:"identifier" yaml:"identifier"`
	World           string `json:"world,omitempty" yaml:"world,omitempty"`
	WorldX          int    `json:"worldX" yaml:"world_x"`
	WorldY          int    `json:"worldY" yaml:"world_y"`
	PxWid           int    `json:"pxWid" yaml:"px_wid"`
	PxHei           int    `json:"pxHei" yaml:"px_hei"`
	Layers          int    `json:"layers" yaml:"layers"`
	Entities        int    `json:"entities" yaml:"entities"`
	ExternalRelPath string `json:"externalRelPath,omitempty" yaml:"external_rel_path,omitempty"`
}

func listLevels(p *schema.Project) []levelSummary {
	var out []levelSummary
	add := func(world string, levels []schema.Level) {
		for i := range levels {
			lvl := &levels[i]
			s := levelSummary{
				UID:        lvl.UID,
				Identifier: lvl.Identifier,
				World:      world,
				WorldX:     lvl.WorldX,
				WorldY:     lvl.WorldY,
				PxWid:      lvl.PxWid,
				PxHei:      lvl.PxHei,
				Layers:     len(lvl.LayerInstances),
				Entities:   len(lvl.Entities()),
			}
			if lvl.ExternalRelPath != nil {
				s.ExternalRelPath = *lvl.ExternalRelPath
			}
			out = append(out, s)
		}
	}
	add("", p.Levels)
	for _, w := range p.Worlds {
		add(w.Identifier, w.Levels)
	}
	return out
}

// write prints v in the selected format. text renders the text format.
func (a *app) write(v any, text func(w io.Writer) error) error {
	switch a.format {
	case "json":
		enc := json.NewEncoder(a.stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(v)
	case "yaml":
		enc := yaml.NewEncoder(a.stdout)
		enc.SetIndent(2)
		if err := enc.Encode(v); err != nil {
			return err
		}
		return enc.Close()
	case "text", "":
		return text(a.stdout)
	}
	return fmt.Errorf("ldtk: unknown format %q", a.format)
}
