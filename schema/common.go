package schema

// TilesetRect is a rectangle of pixels inside a tileset image.
type TilesetRect struct {
	TilesetUID int `json:"tilesetUid"`
	X          int `json:"x"`
	Y          int `json:"y"`
	W          int `json:"w"`
	H          int `json:"h"`
}

var tilesetRectShape = shapeOf[TilesetRect]("TilesetRect")

func (r *TilesetRect) UnmarshalJSON(data []byte) error {
	type tilesetRect TilesetRect
	var v tilesetRect
	if err := decodeObject(data, tilesetRectShape, &v); err != nil {
		return err
	}
	*r = TilesetRect(v)
	return nil
}

// GridPoint is a cell coordinate, the value of a Point field.
type GridPoint struct {
	Cx int `json:"cx"`
	Cy int `json:"cy"`
}

var gridPointShape = shapeOf[GridPoint]("GridPoint")

func (p *GridPoint) UnmarshalJSON(data []byte) error {
	type gridPoint GridPoint
	var v gridPoint
	if err := decodeObject(data, gridPointShape, &v); err != nil {
		return err
	}
	*p = GridPoint(v)
	return nil
}

// EntityRef points at an entity instance, possibly in another level or world.
type EntityRef struct {
	EntityIid string `json:"entityIid"`
	LayerIid  string `json:"layerIid"`
	LevelIid  string `json:"levelIid"`
	WorldIid  string `json:"worldIid"`
}

var entityRefShape = shapeOf[EntityRef]("EntityRef")

func (r *EntityRef) UnmarshalJSON(data []byte) error {
	type entityRef EntityRef
	var v entityRef
	if err := decodeObject(data, entityRefShape, &v); err != nil {
		return err
	}
	*r = EntityRef(v)
	return nil
}

// TileInstance is one tile placed in a Tiles layer or produced by auto-layer rules.
type TileInstance struct {
	Px  [2]int `json:"px"`
	Src [2]int `json:"src"`
	// F holds the flip bits: bit 0 is X flip, bit 1 is Y flip.
	F int   `json:"f"`
	T int   `json:"t"`
	D []int `json:"d"`
}

var tileInstanceShape = shapeOf[TileInstance]("TileInstance")

func (t *TileInstance) UnmarshalJSON(data []byte) error {
	type tileInstance TileInstance
	var v tileInstance
	if err := decodeObject(data, tileInstanceShape, &v); err != nil {
		return err
	}
	*t = TileInstance(v)
	return nil
}

func (t TileInstance) FlipX() bool { return t.F&1 != 0 }

func (t TileInstance) FlipY() bool { return t.F&2 != 0 }

// NeighbourLevel links a level to an adjacent one.
type NeighbourLevel struct {
	// Dir is one of "n", "s", "e", "w", "<", ">" (depth), or "o" (overlap).
	Dir      string `json:"dir"`
	LevelIid string `json:"levelIid"`
	LevelUID *int   `json:"levelUid"`
}

var neighbourLevelShape = shapeOf[NeighbourLevel]("NeighbourLevel")

func (n *NeighbourLevel) UnmarshalJSON(data []byte) error {
	type neighbourLevel NeighbourLevel
	var v neighbourLevel
	if err := decodeObject(data, neighbourLevelShape, &v); err != nil {
		return err
	}
	*n = NeighbourLevel(v)
	return nil
}

// LevelBgPosInfos describes where a level background image is drawn.
type LevelBgPosInfos struct {
	CropRect  [4]float64 `json:"cropRect"`
	Scale     [2]float64 `json:"scale"`
	TopLeftPx [2]int     `json:"topLeftPx"`
}

var levelBgPosShape = shapeOf[LevelBgPosInfos]("LevelBgPosInfos")

func (b *LevelBgPosInfos) UnmarshalJSON(data []byte) error {
	type levelBgPos LevelBgPosInfos
	var v levelBgPos
	if err := decodeObject(data, levelBgPosShape, &v); err != nil {
		return err
	}
	*b = LevelBgPosInfos(v)
	return nil
}
