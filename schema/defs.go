package schema

// Definitions holds the project-wide definitions that instances refer to
// by uid.
type Definitions struct {
	Layers        []LayerDefinition   `json:"layers"`
	Entities      []EntityDefinition  `json:"entities"`
	Tilesets      []TilesetDefinition `json:"tilesets"`
	Enums         []EnumDefinition    `json:"enums"`
	ExternalEnums []EnumDefinition    `json:"externalEnums"`
	LevelFields   []FieldDefinition   `json:"levelFields"`
}

var definitionsShape = shapeOf[Definitions]("Definitions")

func (d *Definitions) UnmarshalJSON(data []byte) error {
	type definitions Definitions
	var v definitions
	if err := decodeObject(data, definitionsShape, &v); err != nil {
		return err
	}
	*d = Definitions(v)
	return nil
}

func (d *Definitions) Layer(uid int) (*LayerDefinition, bool) {
	for i := range d.Layers {
		if d.Layers[i].UID == uid {
			return &d.Layers[i], true
		}
	}
	return nil, false
}

func (d *Definitions) LayerByIdentifier(identifier string) (*LayerDefinition, bool) {
	for i := range d.Layers {
		if d.Layers[i].Identifier == identifier {
			return &d.Layers[i], true
		}
	}
	return nil, false
}

func (d *Definitions) Entity(uid int) (*EntityDefinition, bool) {
	for i := range d.Entities {
		if d.Entities[i].UID == uid {
			return &d.Entities[i], true
		}
	}
	return nil, false
}

func (d *Definitions) EntityByIdentifier(identifier string) (*EntityDefinition, bool) {
	for i := range d.Entities {
		if d.Entities[i].Identifier == identifier {
			return &d.Entities[i], true
		}
	}
	return nil, false
}

func (d *Definitions) Tileset(uid int) (*TilesetDefinition, bool) {
	for i := range d.Tilesets {
		if d.Tilesets[i].UID == uid {
			return &d.Tilesets[i], true
		}
	}
	return nil, false
}

func (d *Definitions) TilesetByIdentifier(identifier string) (*TilesetDefinition, bool) {
	for i := range d.Tilesets {
		if d.Tilesets[i].Identifier == identifier {
			return &d.Tilesets[i], true
		}
	}
	return nil, false
}

// Enum looks in both the project's own enums and the external ones.
func (d *Definitions) Enum(uid int) (*EnumDefinition, bool) {
	for _, enums := range [][]EnumDefinition{d.Enums, d.ExternalEnums} {
		for i := range enums {
			if enums[i].UID == uid {
				return &enums[i], true
			}
		}
	}
	return nil, false
}

func (d *Definitions) EnumByIdentifier(identifier string) (*EnumDefinition, bool) {
	for _, enums := range [][]EnumDefinition{d.Enums, d.ExternalEnums} {
		for i := range enums {
			if enums[i].Identifier == identifier {
				return &enums[i], true
			}
		}
	}
	return nil, false
}

// LayerDefinition describes a layer kind that level layer instances use.
type LayerDefinition struct {
	UID                   int                      `json:"uid"`
	Identifier            string                   `json:"identifier"`
	Type                  LayerType                `json:"__type"`
	GridSize              int                      `json:"gridSize"`
	DisplayOpacity        float64                  `json:"displayOpacity"`
	PxOffsetX             int                      `json:"pxOffsetX"`
	PxOffsetY             int                      `json:"pxOffsetY"`
	ParallaxFactorX       float64                  `json:"parallaxFactorX"`
	ParallaxFactorY       float64                  `json:"parallaxFactorY"`
	ParallaxScaling       bool                     `json:"parallaxScaling"`
	TilesetDefUID         *int                     `json:"tilesetDefUid"`
	AutoSourceLayerDefUID *int                     `json:"autoSourceLayerDefUid"`
	TilePivotX            float64                  `json:"tilePivotX"`
	TilePivotY            float64                  `json:"tilePivotY"`
	HideInList            bool                     `json:"hideInList"`
	RequiredTags          []string                 `json:"requiredTags"`
	ExcludedTags          []string                 `json:"excludedTags"`
	IntGridValues         []IntGridValueDefinition `json:"intGridValues"`
	AutoRuleGroups        []any                    `json:"autoRuleGroups"`
	Doc                   *string                  `json:"doc"`
}

var layerDefinitionShape = shapeOf[LayerDefinition]("LayerDefinition")

func (l *LayerDefinition) UnmarshalJSON(data []byte) error {
	type layerDefinition LayerDefinition
	var v layerDefinition
	if err := decodeObject(data, layerDefinitionShape, &v); err != nil {
		return err
	}
	*l = LayerDefinition(v)
	return nil
}

// IntGridValueDefinition names one value of an IntGrid layer.
type IntGridValueDefinition struct {
	Value      int     `json:"value"`
	Identifier *string `json:"identifier"`
	Color      string  `json:"color"`
}

var intGridValueShape = shapeOf[IntGridValueDefinition]("IntGridValueDefinition")

func (v *IntGridValueDefinition) UnmarshalJSON(data []byte) error {
	type intGridValue IntGridValueDefinition
	var out intGridValue
	if err := decodeObject(data, intGridValueShape, &out); err != nil {
		return err
	}
	*v = IntGridValueDefinition(out)
	return nil
}

// EntityDefinition describes an entity kind.
type EntityDefinition struct {
	UID             int               `json:"uid"`
	Identifier      string            `json:"identifier"`
	Color           string            `json:"color"`
	Width           int               `json:"width"`
	Height          int               `json:"height"`
	PivotX          float64           `json:"pivotX"`
	PivotY          float64           `json:"pivotY"`
	Tags            []string          `json:"tags"`
	TilesetID       *int              `json:"tilesetId"`
	TileRect        *TilesetRect      `json:"tileRect"`
	TileRenderMode  string            `json:"tileRenderMode"`
	RenderMode      string            `json:"renderMode"`
	Hollow          bool              `json:"hollow"`
	KeepAspectRatio bool              `json:"keepAspectRatio"`
	ResizableX      bool              `json:"resizableX"`
	ResizableY      bool              `json:"resizableY"`
	ShowName        bool              `json:"showName"`
	LimitBehavior   string            `json:"limitBehavior"`
	LimitScope      string            `json:"limitScope"`
	MaxCount        int               `json:"maxCount"`
	FillOpacity     float64           `json:"fillOpacity"`
	LineOpacity     float64           `json:"lineOpacity"`
	TileOpacity     float64           `json:"tileOpacity"`
	FieldDefs       []FieldDefinition `json:"fieldDefs"`
	Doc             *string           `json:"doc"`
}

var entityDefinitionShape = shapeOf[EntityDefinition]("EntityDefinition")

func (e *EntityDefinition) UnmarshalJSON(data []byte) error {
	type entityDefinition EntityDefinition
	var v entityDefinition
	if err := decodeObject(data, entityDefinitionShape, &v); err != nil {
		return err
	}
	*e = EntityDefinition(v)
	return nil
}

// FieldDefinition describes a custom field of an entity or of levels.
type FieldDefinition struct {
	UID               int      `json:"uid"`
	Identifier        string   `json:"identifier"`
	Type              string   `json:"__type"`
	IsArray           bool     `json:"isArray"`
	CanBeNull         bool     `json:"canBeNull"`
	DefaultOverride   any      `json:"defaultOverride"`
	Min               *float64 `json:"min"`
	Max               *float64 `json:"max"`
	Regex             *string  `json:"regex"`
	ArrayMinLength    *int     `json:"arrayMinLength"`
	ArrayMaxLength    *int     `json:"arrayMaxLength"`
	AcceptFileTypes   []string `json:"acceptFileTypes"`
	EditorDisplayMode string   `json:"editorDisplayMode"`
	EditorDisplayPos  string   `json:"editorDisplayPos"`
	TextLanguageMode  *string  `json:"textLanguageMode"`
	UseForSmartColor  bool     `json:"useForSmartColor"`
	TilesetUID        *int     `json:"tilesetUid"`
	Doc               *string  `json:"doc"`
}

var fieldDefinitionShape = shapeOf[FieldDefinition]("FieldDefinition")

func (f *FieldDefinition) UnmarshalJSON(data []byte) error {
	type fieldDefinition FieldDefinition
	var v fieldDefinition
	if err := decodeObject(data, fieldDefinitionShape, &v); err != nil {
		return err
	}
	if _, err := ParseFieldType(v.Type); err != nil {
		return &FieldError{Type: fieldDefinitionShape.name, Field: "__type", Reason: err.Error(), Err: err}
	}
	*f = FieldDefinition(v)
	return nil
}

// FieldType parses the definition's __type tag.
func (f *FieldDefinition) FieldType() (FieldType, error) {
	return ParseFieldType(f.Type)
}

// EnumDefinition is a project enum or one imported from an external file.
type EnumDefinition struct {
	UID                  int                   `json:"uid"`
	Identifier           string                `json:"identifier"`
	Values               []EnumValueDefinition `json:"values"`
	IconTilesetUID       *int                  `json:"iconTilesetUid"`
	ExternalRelPath      *string               `json:"externalRelPath"`
	ExternalFileChecksum *string               `json:"externalFileChecksum"`
	Tags                 []string              `json:"tags"`
}

var enumDefinitionShape = shapeOf[EnumDefinition]("EnumDefinition")

func (e *EnumDefinition) UnmarshalJSON(data []byte) error {
	type enumDefinition EnumDefinition
	var v enumDefinition
	if err := decodeObject(data, enumDefinitionShape, &v); err != nil {
		return err
	}
	*e = EnumDefinition(v)
	return nil
}

// Value returns the definition of the enum value with the given id.
func (e *EnumDefinition) Value(id string) (*EnumValueDefinition, bool) {
	for i := range e.Values {
		if e.Values[i].ID == id {
			return &e.Values[i], true
		}
	}
	return nil, false
}

// EnumValueDefinition is one value of an enum.
type EnumValueDefinition struct {
	ID       string       `json:"id"`
	Color    int          `json:"color"`
	TileID   *int         `json:"tileId"`
	TileRect *TilesetRect `json:"tileRect"`
}

var enumValueShape = shapeOf[EnumValueDefinition]("EnumValueDefinition")

func (e *EnumValueDefinition) UnmarshalJSON(data []byte) error {
	type enumValue EnumValueDefinition
	var v enumValue
	if err := decodeObject(data, enumValueShape, &v); err != nil {
		return err
	}
	*e = EnumValueDefinition(v)
	return nil
}
