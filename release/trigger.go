// Package release provides pipeline trigger modeling.
// This file contains the tagged union of trigger variants and the routing
// decision between the single-shot and sweep execution paths.
package release

import "fmt"

// Mode selects the execution path a trigger routes to.
type Mode int

const (
	// ModeSingle publishes exactly one deploy tag for the triggering reference.
	ModeSingle Mode = iota

	// ModeSweep rebuilds every historical reference matching the support policy.
	ModeSweep
)

// String returns a human-readable string representation of the Mode.
func (m Mode) String() string {
	switch m {
	case ModeSingle:
		return "single"
	case ModeSweep:
		return "sweep"
	default:
		return "unknown"
	}
}

// Trigger is the event that started a pipeline run. The concrete variants
// are TagPush, BranchPush, and Schedule; routing between the single-shot and
// sweep paths is a pure decision over this union.
type Trigger interface {
	// Mode returns the execution path this trigger routes to.
	Mode() Mode

	fmt.Stringer
}

// TagPush is a version-control tag-push event carrying the tag name.
type TagPush struct {
	// Tag is the pushed tag name (e.g. "v4.1.0").
	Tag string
}

// Mode routes tag pushes to the single-shot path.
func (t TagPush) Mode() Mode { return ModeSingle }

// Ref returns the tag Reference carried by the event.
func (t TagPush) Ref() Reference { return NewTag(t.Tag) }

// String returns the trigger in "tag-push(name)" form.
func (t TagPush) String() string { return "tag-push(" + t.Tag + ")" }

// BranchPush is a version-control branch-push event carrying the branch name
// and whether it is the repository's default branch.
type BranchPush struct {
	// Branch is the pushed branch name.
	Branch string

	// IsDefault indicates the branch is the repository's default branch.
	// When set, the branch resolves to the default deploy tag regardless of
	// the orchestrator's configured default branch name.
	IsDefault bool
}

// Mode routes branch pushes to the single-shot path.
func (b BranchPush) Mode() Mode { return ModeSingle }

// Ref returns the branch Reference carried by the event.
func (b BranchPush) Ref() Reference { return NewBranch(b.Branch) }

// String returns the trigger in "branch-push(name)" form.
func (b BranchPush) String() string { return "branch-push(" + b.Branch + ")" }

// Schedule is a time-based trigger carrying no reference. It routes to the
// sweep path.
type Schedule struct{}

// Mode routes schedule events to the sweep path.
func (Schedule) Mode() Mode { return ModeSweep }

// String returns the literal "schedule".
func (Schedule) String() string { return "schedule" }

// TriggerRef extracts the Reference from a push trigger.
// Schedule triggers carry no reference and return ErrUnsupportedTrigger.
func TriggerRef(trigger Trigger) (Reference, error) {
	switch t := trigger.(type) {
	case TagPush:
		return t.Ref(), nil
	case BranchPush:
		return t.Ref(), nil
	default:
		return Reference{}, WrapErrorf(ErrUnsupportedTrigger, "trigger %s carries no reference", trigger)
	}
}
