// Package release provides the core domain types for container release
// orchestration: version-control references, deploy tag resolution, and the
// support policy that selects historical tags for rebuild sweeps.
package release

// RefKind represents the type of version-control reference.
// Only branches and tags participate in release decisions.
type RefKind int

const (
	// RefBranch indicates a branch reference (refs/heads/*).
	RefBranch RefKind = iota

	// RefTag indicates a tag reference (refs/tags/*).
	RefTag
)

// String returns a human-readable string representation of the RefKind.
func (k RefKind) String() string {
	switch k {
	case RefBranch:
		return "branch"
	case RefTag:
		return "tag"
	default:
		return "unknown"
	}
}

// Reference is a named pointer into version-control history.
// References are produced by the version-control system and consumed
// read-only; they are the source of truth for what to build.
type Reference struct {
	// Kind classifies the reference as a branch or a tag.
	Kind RefKind

	// Name is the short reference name (e.g. "master", "v4.1.0").
	Name string
}

// String returns the reference in "kind/name" form for logs and reports.
func (r Reference) String() string {
	return r.Kind.String() + "/" + r.Name
}

// NewBranch returns a branch Reference with the given name.
func NewBranch(name string) Reference {
	return Reference{Kind: RefBranch, Name: name}
}

// NewTag returns a tag Reference with the given name.
func NewTag(name string) Reference {
	return Reference{Kind: RefTag, Name: name}
}

// DeployTag is the string identifying a published artifact in the image
// registry. It is derived from a Reference by Resolve and is the unit of
// addressability for the Publisher.
type DeployTag string

// String returns the tag as a plain string.
func (t DeployTag) String() string {
	return string(t)
}
