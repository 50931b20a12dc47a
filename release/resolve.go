// Package release provides deploy tag resolution.
// This file contains the mapping from version-control references to the
// tags under which images are published.
package release

import (
	"strings"

	"github.com/Masterminds/semver/v3"
)

// DefaultTag is the deploy tag assigned to builds of the default branch.
const DefaultTag DeployTag = "latest"

// versionMarker is the leading character distinguishing release tags from
// other tag names (e.g. "v4.1.0").
const versionMarker = "v"

// Resolve maps a version-control reference to its deploy tag.
//
// Rules, in priority order:
//  1. A tag shaped like a release identifier (the version marker followed by
//     a plain semantic-version triple) resolves to the identifier with the
//     marker stripped: "v4.1.0" -> "4.1.0".
//  2. A branch equal to defaultBranch resolves to DefaultTag.
//  3. Anything else resolves to the reference name verbatim.
//
// Resolution is total and deterministic: it never fails and depends only on
// its arguments. Rule 1 is decided on the marker-stripped shape alone, so a
// release tag that happens to share its name with the default branch still
// resolves as a release. Rule 3 performs no sanitization; names containing
// characters the registry rejects are surfaced as-is and fail at push time.
func Resolve(ref Reference, defaultBranch string) DeployTag {
	if ref.Kind == RefTag {
		if version, ok := releaseVersion(ref.Name); ok {
			return DeployTag(version)
		}
	}
	if ref.Kind == RefBranch && ref.Name == defaultBranch {
		return DefaultTag
	}
	return DeployTag(ref.Name)
}

// IsReleaseTag reports whether name has the release tag shape accepted by
// resolution rule 1.
func IsReleaseTag(name string) bool {
	_, ok := releaseVersion(name)
	return ok
}

// releaseVersion strips the version marker and validates that the remainder
// is a bare semver triple. Prerelease or build metadata suffixes
// ("v4.1.0-rc1") do not qualify; those tags resolve verbatim via rule 3.
func releaseVersion(name string) (string, bool) {
	rest, found := strings.CutPrefix(name, versionMarker)
	if !found || rest == "" {
		return "", false
	}

	version, err := semver.StrictNewVersion(rest)
	if err != nil {
		return "", false
	}
	if version.Prerelease() != "" || version.Metadata() != "" {
		return "", false
	}

	return rest, true
}
