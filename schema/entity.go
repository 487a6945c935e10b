package schema

// EntityInstance is an entity placed in an Entities layer.
type EntityInstance struct {
	Identifier     string          `json:"__identifier"`
	Grid           [2]int          `json:"__grid"`
	Pivot          [2]float64      `json:"__pivot"`
	SmartColor     string          `json:"__smartColor"`
	Tags           []string        `json:"__tags"`
	Tile           *TilesetRect    `json:"__tile"`
	DefUID         int             `json:"defUid"`
	Iid            string          `json:"iid"`
	Px             [2]int          `json:"px"`
	Width          int             `json:"width"`
	Height         int             `json:"height"`
	FieldInstances []FieldInstance `json:"fieldInstances"`
}

var entityInstanceShape = shapeOf[EntityInstance]("EntityInstance")

func (e *EntityInstance) UnmarshalJSON(data []byte) error {
	type entityInstance EntityInstance
	var v entityInstance
	if err := decodeObject(data, entityInstanceShape, &v); err != nil {
		return err
	}
	*e = EntityInstance(v)
	return nil
}

// Field returns the first field instance with the given identifier.
func (e *EntityInstance) Field(identifier string) (*FieldInstance, bool) {
	return findField(e.FieldInstances, identifier)
}

// HasTag reports whether the entity definition carried tag.
func (e *EntityInstance) HasTag(tag string) bool {
	for _, t := range e.Tags {
		if t == tag {
			return true
		}
	}
	return false
}

func findField(fields []FieldInstance, identifier string) (*FieldInstance, bool) {
	for i := range fields {
		if fields[i].Identifier == identifier {
			return &fields[i], true
		}
	}
	return nil, false
}
