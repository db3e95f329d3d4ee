// Package version exposes the build version of dircache.
package version

import (
	"fmt"

	"github.com/Masterminds/semver/v3"
)

// version is set at build time with
// -ldflags "-X github.com/rshade/dircache/pkg/version.version=v1.2.3".
//
//nolint:gochecknoglobals // set by the linker
var version = "0.1.0-dev"

// GetVersion returns the build version string.
func GetVersion() string {
	return version
}

// Parse parses v as a semantic version. A leading "v" is accepted.
func Parse(v string) (*semver.Version, error) {
	parsed, err := semver.NewVersion(v)
	if err != nil {
		return nil, fmt.Errorf("invalid version %q: %w", v, err)
	}
	return parsed, nil
}

// Satisfies reports whether v meets constraint, such as ">= 0.1.0".
func Satisfies(v, constraint string) (bool, error) {
	parsed, err := Parse(v)
	if err != nil {
		return false, err
	}
	c, err := semver.NewConstraint(constraint)
	if err != nil {
		return false, fmt.Errorf("invalid constraint %q: %w", constraint, err)
	}
	return c.Check(parsed), nil
}
