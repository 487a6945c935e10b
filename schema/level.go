package schema

// Level is one map of a project. When the project stores levels
// externally, the copy embedded in the project file is a stub: it has
// ExternalRelPath set and LayerInstances nil until the level file is
// loaded in its place.
type Level struct {
	UID               int              `json:"uid"`
	Iid               string           `json:"iid"`
	Identifier        string           `json:"identifier"`
	WorldX            int              `json:"worldX"`
	WorldY            int              `json:"worldY"`
	WorldDepth        int              `json:"worldDepth"`
	PxWid             int              `json:"pxWid"`
	PxHei             int              `json:"pxHei"`
	ResolvedBgColor   string           `json:"__bgColor"`
	BgColor           *string          `json:"bgColor"`
	BgRelPath         *string          `json:"bgRelPath"`
	BgPos             *string          `json:"bgPos"`
	BgPivotX          float64          `json:"bgPivotX"`
	BgPivotY          float64          `json:"bgPivotY"`
	BgPosInfos        *LevelBgPosInfos `json:"__bgPos"`
	SmartColor        string           `json:"__smartColor"`
	UseAutoIdentifier bool             `json:"useAutoIdentifier"`
	ExternalRelPath   *string          `json:"externalRelPath"`
	FieldInstances    []FieldInstance  `json:"fieldInstances"`
	LayerInstances    []LayerInstance  `json:"layerInstances"`
	Neighbours        []NeighbourLevel `json:"__neighbours"`
}

var levelShape = shapeOf[Level]("Level")

func (l *Level) UnmarshalJSON(data []byte) error {
	type level Level
	var v level
	if err := decodeObject(data, levelShape, &v); err != nil {
		return err
	}
	*l = Level(v)
	return nil
}

// IsStub reports whether the level's layers still live in an external file.
func (l *Level) IsStub() bool {
	return l.LayerInstances == nil
}

// Layer returns the first layer instance with the given identifier.
func (l *Level) Layer(identifier string) (*LayerInstance, bool) {
	for i := range l.LayerInstances {
		if l.LayerInstances[i].Identifier == identifier {
			return &l.LayerInstances[i], true
		}
	}
	return nil, false
}

// Field returns the first level field instance with the given identifier.
func (l *Level) Field(identifier string) (*FieldInstance, bool) {
	return findField(l.FieldInstances, identifier)
}

// Entities returns every entity instance of every layer, top layer first.
func (l *Level) Entities() []*EntityInstance {
	var out []*EntityInstance
	for i := range l.LayerInstances {
		layer := &l.LayerInstances[i]
		for j := range layer.EntityInstances {
			out = append(out, &layer.EntityInstances[j])
		}
	}
	return out
}
