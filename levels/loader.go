// Package levels loads LDtk projects and their external level files into
// the records of the schema package.
package levels

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path"
	"path/filepath"

	"github.com/milk9111/ldtk/schema"
	"github.com/sirupsen/logrus"
)

// Loader reads projects and levels from a filesystem. A Loader holds no
// state between calls and may be shared by goroutines.
type Loader struct {
	// Log receives one entry per external level file opened and warnings
	// about version mismatches.
	Log logrus.FieldLogger
	// StrictVersion makes loading fail with ErrIncompatibleVersion when a
	// project's jsonVersion does not match schema.JSONVersion.
	StrictVersion bool

	fsys fs.FS
	dir  func(string) string
	join func(dir, rel string) string
}

type osFS struct{}

func (osFS) Open(name string) (fs.File, error) {
	f, err := os.Open(name)
	if err != nil {
		return nil, err
	}
	return f, nil
}

// NewLoader returns a Loader that reads paths from the operating system.
func NewLoader() *Loader {
	return &Loader{
		Log:  logrus.StandardLogger(),
		fsys: osFS{},
		dir:  filepath.Dir,
		join: func(dir, rel string) string {
			return filepath.Join(dir, filepath.FromSlash(rel))
		},
	}
}

// NewFSLoader returns a Loader that reads slash-separated names from fsys,
// for example an embed.FS bundled with a game.
func NewFSLoader(fsys fs.FS) *Loader {
	return &Loader{
		Log:  logrus.StandardLogger(),
		fsys: fsys,
		dir:  path.Dir,
		join: func(dir, rel string) string {
			return path.Join(dir, rel)
		},
	}
}

// LoadProject reads the project file at name without touching external
// level files.
func (l *Loader) LoadProject(name string) (*schema.Project, error) {
	f, err := l.fsys.Open(name)
	if err != nil {
		return nil, notFound(name, err)
	}
	defer f.Close()

	p, err := schema.DecodeProject(f)
	if err != nil {
		return nil, &DecodeError{Path: name, Err: err}
	}
	if err := l.checkVersion(name, p.JSONVersion); err != nil {
		return nil, err
	}
	return p, nil
}

// LoadFullProject reads the project file at name and, when it stores its
// levels externally, replaces every level stub with the level file it names.
func (l *Loader) LoadFullProject(name string) (*schema.Project, error) {
	p, err := l.LoadProject(name)
	if err != nil {
		return nil, err
	}
	if p.ExternalLevels {
		if err := l.ResolveExternalLevels(p, name); err != nil {
			return nil, err
		}
	}
	return p, nil
}

// LoadLevel reads a single external level file.
func (l *Loader) LoadLevel(name string) (*schema.Level, error) {
	f, err := l.fsys.Open(name)
	if err != nil {
		return nil, notFound(name, err)
	}
	defer f.Close()

	lvl, err := schema.DecodeLevel(f)
	if err != nil {
		return nil, &DecodeError{Path: name, Err: err}
	}
	return lvl, nil
}

// levelList is one level slice of a project waiting to be resolved.
type levelList struct {
	world  string
	levels *[]schema.Level
	paths  []string
}

// ResolveExternalLevels replaces the level stubs of p, and of each of its
// worlds, with the level files they point to. projectName is the location p
// was loaded from; stub paths are relative to its directory.
//
// It does nothing when p does not use external levels or when its levels
// have already been resolved. Every stub path is checked before any file is
// opened, and p is only modified once every level file has loaded.
func (l *Loader) ResolveExternalLevels(p *schema.Project, projectName string) error {
	if !p.ExternalLevels || p.LevelState() != schema.StateStubOnly {
		return nil
	}

	dir := l.dir(projectName)
	lists := []*levelList{{levels: &p.Levels}}
	for i := range p.Worlds {
		lists = append(lists, &levelList{world: p.Worlds[i].Identifier, levels: &p.Worlds[i].Levels})
	}

	for _, list := range lists {
		for i, stub := range *list.levels {
			if stub.ExternalRelPath == nil || *stub.ExternalRelPath == "" {
				return &MissingExternalPathError{
					World:      list.world,
					Index:      i,
					UID:        stub.UID,
					Identifier: stub.Identifier,
				}
			}
			list.paths = append(list.paths, l.join(dir, *stub.ExternalRelPath))
		}
	}

	loaded := make([][]schema.Level, len(lists))
	for n, list := range lists {
		loaded[n] = make([]schema.Level, 0, len(list.paths))
		for i, full := range list.paths {
			stub := (*list.levels)[i]
			l.Log.WithFields(logrus.Fields{
				"path":       full,
				"uid":        stub.UID,
				"identifier": stub.Identifier,
			}).Info("opening external level")

			lvl, err := l.LoadLevel(full)
			if err != nil {
				return err
			}
			loaded[n] = append(loaded[n], *lvl)
		}
	}

	p.ClearLevels()
	p.Levels = append(p.Levels, loaded[0]...)
	for n, list := range lists[1:] {
		*list.levels = loaded[n+1]
	}
	return nil
}

func (l *Loader) checkVersion(name, version string) error {
	ok, err := schema.IsCompatible(version)
	if err == nil && ok {
		return nil
	}
	entry := l.Log.WithFields(logrus.Fields{
		"path":        name,
		"jsonVersion": version,
		"supported":   schema.JSONVersion,
	})
	if err != nil {
		entry = entry.WithError(err)
	}
	if l.StrictVersion {
		return fmt.Errorf("%w: %s has %q, want %s", ErrIncompatibleVersion, name, version, schema.JSONVersion)
	}
	entry.Warn("project saved by a different LDtk version")
	return nil
}

var defaultLoader = NewLoader()

// LoadProject reads a project file from the operating system without
// resolving external levels.
func LoadProject(name string) (*schema.Project, error) {
	return defaultLoader.LoadProject(name)
}

// LoadFullProject reads a project file from the operating system and loads
// all of its external levels. Most callers want this.
func LoadFullProject(name string) (*schema.Project, error) {
	return defaultLoader.LoadFullProject(name)
}

// LoadLevel reads a single external level file from the operating system.
func LoadLevel(name string) (*schema.Level, error) {
	return defaultLoader.LoadLevel(name)
}

// ResolveExternalLevels loads the external levels of p, which was read
// from projectPath on the operating system.
func ResolveExternalLevels(p *schema.Project, projectPath string) error {
	return defaultLoader.ResolveExternalLevels(p, projectPath)
}

// LoadLdtkJSON is the name earlier releases used for LoadFullProject.
//
// Deprecated: use LoadFullProject.
func LoadLdtkJSON(name string) (*schema.Project, error) {
	return LoadFullProject(name)
}

// IsNotFound reports whether err is a missing project or level file.
func IsNotFound(err error) bool {
	return errors.Is(err, ErrResourceNotFound)
}
