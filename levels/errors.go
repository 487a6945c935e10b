package levels

import (
	"errors"
	"fmt"
)

// ErrResourceNotFound is returned when a project or level file cannot be
// opened. The error returned by the filesystem is wrapped alongside it.
var ErrResourceNotFound = errors.New("levels: resource not found")

// ErrIncompatibleVersion is returned by a Loader with StrictVersion set when
// a project was saved by an LDtk version the schema package does not mirror.
var ErrIncompatibleVersion = errors.New("levels: incompatible jsonVersion")

func notFound(path string, err error) error {
	return fmt.Errorf("%w: %s: %w", ErrResourceNotFound, path, err)
}

// DecodeError is returned when a file was read but is not a valid document
// of the expected kind. Err is the error from the schema package or from
// encoding/json.
type DecodeError struct {
	Path string
	Err  error
}

func (e *DecodeError) Error() string {
	return fmt.Sprintf("levels: decode %s: %v", e.Path, e.Err)
}

func (e *DecodeError) Unwrap() error { return e.Err }

// MissingExternalPathError is returned when a project stores its levels
// externally but a level stub does not say where its file is.
type MissingExternalPathError struct {
	// World is the identifier of the world holding the stub, empty for the
	// project's own level list.
	World      string
	Index      int
	UID        int
	Identifier string
}

func (e *MissingExternalPathError) Error() string {
	if e.World != "" {
		return fmt.Sprintf("levels: level %q (uid %d, index %d in world %q) has no externalRelPath",
			e.Identifier, e.UID, e.Index, e.World)
	}
	return fmt.Sprintf("levels: level %q (uid %d, index %d) has no externalRelPath", e.Identifier, e.UID, e.Index)
}
