package schema

import (
	"fmt"

	"github.com/Masterminds/semver/v3"
)

// JSONVersion is the LDtk file format version these records mirror.
const JSONVersion = "1.1.3"

// IsCompatible reports whether a project saved with the given jsonVersion
// can be expected to match these records. Versions within the same minor
// release as JSONVersion are accepted.
func IsCompatible(version string) (bool, error) {
	pinned := semver.MustParse(JSONVersion)
	constraint, err := semver.NewConstraint(fmt.Sprintf("~%d.%d", pinned.Major(), pinned.Minor()))
	if err != nil {
		return false, fmt.Errorf("schema: invalid pinned version: %w", err)
	}

	v, err := semver.NewVersion(version)
	if err != nil {
		return false, fmt.Errorf("schema: invalid jsonVersion %q: %w", version, err)
	}

	return constraint.Check(v), nil
}
