package schema

import (
	"encoding/json"
	"fmt"
)

// LayerType discriminates the kinds of layers LDtk can place in a level.
type LayerType string

const (
	LayerIntGrid   LayerType = "IntGrid"
	LayerEntities  LayerType = "Entities"
	LayerTiles     LayerType = "Tiles"
	LayerAutoLayer LayerType = "AutoLayer"
)

func (t LayerType) Valid() bool {
	switch t {
	case LayerIntGrid, LayerEntities, LayerTiles, LayerAutoLayer:
		return true
	}
	return false
}

func (t *LayerType) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	if !LayerType(s).Valid() {
		return fmt.Errorf("schema: unknown layer type %q", s)
	}
	*t = LayerType(s)
	return nil
}

// LayerInstance is one layer of a level. Which payload slice is meaningful
// depends on Type; Variant returns a typed view of it.
type LayerInstance struct {
	Identifier      string           `json:"__identifier"`
	Type            LayerType        `json:"__type"`
	CWid            int              `json:"__cWid"`
	CHei            int              `json:"__cHei"`
	GridSize        int              `json:"__gridSize"`
	Opacity         float64          `json:"__opacity"`
	PxTotalOffsetX  int              `json:"__pxTotalOffsetX"`
	PxTotalOffsetY  int              `json:"__pxTotalOffsetY"`
	TilesetDefUID   *int             `json:"__tilesetDefUid"`
	TilesetRelPath  *string          `json:"__tilesetRelPath"`
	Iid             string           `json:"iid"`
	LevelID         int              `json:"levelId"`
	LayerDefUID     int              `json:"layerDefUid"`
	PxOffsetX       int              `json:"pxOffsetX"`
	PxOffsetY       int              `json:"pxOffsetY"`
	Visible         bool             `json:"visible"`
	Seed            int64            `json:"seed"`
	OptionalRules   []int            `json:"optionalRules"`
	OverrideTileset *int             `json:"overrideTilesetUid"`
	IntGridCSV      []int            `json:"intGridCsv"`
	AutoLayerTiles  []TileInstance   `json:"autoLayerTiles"`
	GridTiles       []TileInstance   `json:"gridTiles"`
	EntityInstances []EntityInstance `json:"entityInstances"`
}

var layerInstanceShape = shapeOf[LayerInstance]("LayerInstance")

func (l *LayerInstance) UnmarshalJSON(data []byte) error {
	type layerInstance LayerInstance
	var v layerInstance
	if err := decodeObject(data, layerInstanceShape, &v); err != nil {
		return err
	}
	*l = LayerInstance(v)
	return nil
}

// LayerVariant is a typed view of a layer instance: one of IntGridLayer,
// EntityLayer, TileLayer or AutoLayer.
type LayerVariant interface {
	Layer() *LayerInstance
}

// IntGridLayer stores one integer per cell, row-major, 0 meaning empty.
// IntGrid layers may also carry auto-layer tiles.
type IntGridLayer struct {
	*LayerInstance
}

// EntityLayer holds entity instances.
type EntityLayer struct {
	*LayerInstance
}

// TileLayer holds hand-placed tiles.
type TileLayer struct {
	*LayerInstance
}

// AutoLayer holds tiles generated from rules over an IntGrid source layer.
type AutoLayer struct {
	*LayerInstance
}

func (v IntGridLayer) Layer() *LayerInstance { return v.LayerInstance }
func (v EntityLayer) Layer() *LayerInstance  { return v.LayerInstance }
func (v TileLayer) Layer() *LayerInstance    { return v.LayerInstance }
func (v AutoLayer) Layer() *LayerInstance    { return v.LayerInstance }

// Variant returns the typed view matching l.Type, or nil for an unknown type.
func (l *LayerInstance) Variant() LayerVariant {
	switch l.Type {
	case LayerIntGrid:
		return IntGridLayer{l}
	case LayerEntities:
		return EntityLayer{l}
	case LayerTiles:
		return TileLayer{l}
	case LayerAutoLayer:
		return AutoLayer{l}
	}
	return nil
}

// Value returns the IntGrid value at cell (cx, cy), or 0 when out of range.
func (v IntGridLayer) Value(cx, cy int) int {
	if cx < 0 || cy < 0 || cx >= v.CWid || cy >= v.CHei {
		return 0
	}
	idx := cy*v.CWid + cx
	if idx >= len(v.IntGridCSV) {
		return 0
	}
	return v.IntGridCSV[idx]
}

func (v IntGridLayer) Tiles() []TileInstance { return v.AutoLayerTiles }

func (v EntityLayer) Entities() []EntityInstance { return v.EntityInstances }

func (v TileLayer) Tiles() []TileInstance { return v.GridTiles }

func (v AutoLayer) Tiles() []TileInstance { return v.AutoLayerTiles }

// Tiles returns the tiles to draw for this layer regardless of its type.
func (l *LayerInstance) Tiles() []TileInstance {
	if l.Type == LayerTiles {
		return l.GridTiles
	}
	return l.AutoLayerTiles
}
