package schema

// Project is the root of an LDtk file.
type Project struct {
	Iid                 string      `json:"iid"`
	JSONVersion         string      `json:"jsonVersion"`
	AppBuildID          float64     `json:"appBuildId"`
	NextUID             int         `json:"nextUid"`
	IdentifierStyle     string      `json:"identifierStyle"`
	BgColor             string      `json:"bgColor"`
	DefaultGridSize     int         `json:"defaultGridSize"`
	DefaultLevelBgColor string      `json:"defaultLevelBgColor"`
	DefaultLevelWidth   *int        `json:"defaultLevelWidth"`
	DefaultLevelHeight  *int        `json:"defaultLevelHeight"`
	DefaultPivotX       float64     `json:"defaultPivotX"`
	DefaultPivotY       float64     `json:"defaultPivotY"`
	WorldLayout         *string     `json:"worldLayout"`
	WorldGridWidth      *int        `json:"worldGridWidth"`
	WorldGridHeight     *int        `json:"worldGridHeight"`
	ExternalLevels      bool        `json:"externalLevels"`
	ExportTiled         bool        `json:"exportTiled"`
	MinifyJSON          bool        `json:"minifyJson"`
	SimplifiedExport    bool        `json:"simplifiedExport"`
	ImageExportMode     string      `json:"imageExportMode"`
	LevelNamePattern    string      `json:"levelNamePattern"`
	PngFilePattern      *string     `json:"pngFilePattern"`
	BackupOnSave        bool        `json:"backupOnSave"`
	BackupLimit         int         `json:"backupLimit"`
	Flags               []string    `json:"flags"`
	TutorialDesc        *string     `json:"tutorialDesc"`
	Defs                Definitions `json:"defs"`
	Levels              []Level     `json:"levels"`
	Worlds              []World     `json:"worlds"`
}

var projectShape = shapeOf[Project]("Project")

func (p *Project) UnmarshalJSON(data []byte) error {
	type project Project
	var v project
	if err := decodeObject(data, projectShape, &v); err != nil {
		return err
	}
	*p = Project(v)
	return nil
}

// World groups levels in a multi-world project.
type World struct {
	Iid                string  `json:"iid"`
	Identifier         string  `json:"identifier"`
	WorldLayout        *string `json:"worldLayout"`
	WorldGridWidth     int     `json:"worldGridWidth"`
	WorldGridHeight    int     `json:"worldGridHeight"`
	DefaultLevelWidth  int     `json:"defaultLevelWidth"`
	DefaultLevelHeight int     `json:"defaultLevelHeight"`
	Levels             []Level `json:"levels"`
}

var worldShape = shapeOf[World]("World")

func (w *World) UnmarshalJSON(data []byte) error {
	type world World
	var v world
	if err := decodeObject(data, worldShape, &v); err != nil {
		return err
	}
	*w = World(v)
	return nil
}

// FindLevel returns the first level of the world with the given uid.
func (w *World) FindLevel(uid int) (*Level, bool) {
	return findLevel(w.Levels, uid)
}

// LevelState describes how populated a project's levels are.
type LevelState int

const (
	StateUnloaded LevelState = iota
	// StateInline: levels were fully stored in the project file.
	StateInline
	// StateStubOnly: levels are external and at least one is still a stub.
	StateStubOnly
	// StateResolved: levels are external and all have been loaded.
	StateResolved
)

func (s LevelState) String() string {
	switch s {
	case StateInline:
		return "inline"
	case StateStubOnly:
		return "stub-only"
	case StateResolved:
		return "resolved"
	}
	return "unloaded"
}

// LevelState reports whether the project's levels can be used as-is.
func (p *Project) LevelState() LevelState {
	if p == nil || p.JSONVersion == "" {
		return StateUnloaded
	}
	if !p.ExternalLevels {
		return StateInline
	}
	for _, l := range p.AllLevels() {
		if l.IsStub() {
			return StateStubOnly
		}
	}
	return StateResolved
}

// FindLevel returns the first level in p.Levels whose uid matches.
func (p *Project) FindLevel(uid int) (*Level, bool) {
	return findLevel(p.Levels, uid)
}

// FindLevelByIdentifier searches p.Levels and then every world.
func (p *Project) FindLevelByIdentifier(identifier string) (*Level, bool) {
	for _, l := range p.AllLevels() {
		if l.Identifier == identifier {
			return l, true
		}
	}
	return nil, false
}

// AllLevels returns the levels of the project followed by the levels of
// each world, in document order.
func (p *Project) AllLevels() []*Level {
	out := make([]*Level, 0, len(p.Levels))
	for i := range p.Levels {
		out = append(out, &p.Levels[i])
	}
	for w := range p.Worlds {
		for i := range p.Worlds[w].Levels {
			out = append(out, &p.Worlds[w].Levels[i])
		}
	}
	return out
}

// ClearLevels empties the level list, dropping any stubs.
func (p *Project) ClearLevels() {
	p.Levels = []Level{}
}

func findLevel(levels []Level, uid int) (*Level, bool) {
	for i := range levels {
		if levels[i].UID == uid {
			return &levels[i], true
		}
	}
	return nil, false
}
