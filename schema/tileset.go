package schema

// TilesetDefinition describes a tileset image and its grid.
type TilesetDefinition struct {
	UID               int              `json:"uid"`
	Identifier        string           `json:"identifier"`
	CWid              int              `json:"__cWid"`
	CHei              int              `json:"__cHei"`
	RelPath           *string          `json:"relPath"`
	EmbedAtlas        *string          `json:"embedAtlas"`
	PxWid             int              `json:"pxWid"`
	PxHei             int              `json:"pxHei"`
	TileGridSize      int              `json:"tileGridSize"`
	Spacing           int              `json:"spacing"`
	Padding           int              `json:"padding"`
	Tags              []string         `json:"tags"`
	TagsSourceEnumUID *int             `json:"tagsSourceEnumUid"`
	EnumTags          []EnumTagValue   `json:"enumTags"`
	CustomData        []TileCustomData `json:"customData"`
	CachedPixelData   map[string]any   `json:"cachedPixelData"`
	SavedSelections   []any            `json:"savedSelections"`
}

var tilesetDefinitionShape = shapeOf[TilesetDefinition]("TilesetDefinition")

func (t *TilesetDefinition) UnmarshalJSON(data []byte) error {
	type tilesetDefinition TilesetDefinition
	var v tilesetDefinition
	if err := decodeObject(data, tilesetDefinitionShape, &v); err != nil {
		return err
	}
	*t = TilesetDefinition(v)
	return nil
}

// TileRect returns the pixel rectangle of a tile id inside the tileset image.
func (t *TilesetDefinition) TileRect(tileID int) TilesetRect {
	r := TilesetRect{TilesetUID: t.UID, W: t.TileGridSize, H: t.TileGridSize}
	if t.CWid <= 0 {
		return r
	}
	cx, cy := tileID%t.CWid, tileID/t.CWid
	r.X = t.Padding + cx*(t.TileGridSize+t.Spacing)
	r.Y = t.Padding + cy*(t.TileGridSize+t.Spacing)
	return r
}

// CustomDataFor returns the custom data string attached to a tile id.
func (t *TilesetDefinition) CustomDataFor(tileID int) (string, bool) {
	for _, c := range t.CustomData {
		if c.TileID == tileID {
			return c.Data, true
		}
	}
	return "", false
}

// EnumTagValue lists the tiles tagged with one enum value.
type EnumTagValue struct {
	EnumValueID string `json:"enumValueId"`
	TileIDs     []int  `json:"tileIds"`
}

var enumTagShape = shapeOf[EnumTagValue]("EnumTagValue")

func (e *EnumTagValue) UnmarshalJSON(data []byte) error {
	type enumTag EnumTagValue
	var v enumTag
	if err := decodeObject(data, enumTagShape, &v); err != nil {
		return err
	}
	*e = EnumTagValue(v)
	return nil
}

// TileCustomData is free-form text attached to a tile in the editor.
type TileCustomData struct {
	TileID int    `json:"tileId"`
	Data   string `json:"data"`
}

var tileCustomDataShape = shapeOf[TileCustomData]("TileCustomData")

func (c *TileCustomData) UnmarshalJSON(data []byte) error {
	type tileCustomData TileCustomData
	var v tileCustomData
	if err := decodeObject(data, tileCustomDataShape, &v); err != nil {
		return err
	}
	*c = TileCustomData(v)
	return nil
}
