// Package git provides the version-control query capability consumed by the
// release orchestrator: tag enumeration and default-branch discovery over a
// local repository, wrapped around go-git.
package git

import (
	"context"
	"errors"
	"regexp"
	"sort"
	"strings"

	"github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing"

	"github.com/input-output-hk/catalyst-forge-release/release"
)

// Repo wraps a go-git repository with the read-only operations the
// orchestrator needs. It never mutates the repository.
type Repo struct {
	repo *git.Repository
}

// Open opens the repository at path, searching upward for the enclosing
// .git directory the way the git CLI does.
func Open(path string) (*Repo, error) {
	repo, err := git.PlainOpenWithOptions(path, &git.PlainOpenOptions{DetectDotGit: true})
	if err != nil {
		if errors.Is(err, git.ErrRepositoryNotExists) {
			return nil, WrapError(ErrRepoMissing, path)
		}
		return nil, WrapError(err, "failed to open repository")
	}
	return &Repo{repo: repo}, nil
}

// Wrap adapts an already-open go-git repository. Used by tests operating on
// in-memory repositories.
func Wrap(repo *git.Repository) *Repo {
	return &Repo{repo: repo}
}

// TagFilter is a predicate for filtering tags by name.
// Filters are applied progressively; a tag must pass ALL filters to be
// included.
type TagFilter func(name string) bool

// TagRegexpFilter returns a filter matching tag names against a compiled
// regular expression. This is the bridge to the release support policy.
func TagRegexpFilter(re *regexp.Regexp) TagFilter {
	return func(name string) bool {
		return re.MatchString(name)
	}
}

// TagPrefixFilter returns a filter matching tags with the given prefix.
// For example: "v" matches "v1.0.0", "v2.0.0", etc.
func TagPrefixFilter(prefix string) TagFilter {
	return func(name string) bool {
		return strings.HasPrefix(name, prefix)
	}
}

// Tags returns the repository's tag references that pass all the provided
// filters, sorted by name. If no filters are provided, all tags are returned.
//
// Context cancellation is honored between reference visits.
func (r *Repo) Tags(ctx context.Context, filters ...TagFilter) ([]release.Reference, error) {
	refs, err := r.repo.References()
	if err != nil {
		return nil, WrapError(err, "failed to get references")
	}

	var tags []release.Reference
	err = refs.ForEach(func(ref *plumbing.Reference) error {
		if err := ctx.Err(); err != nil {
			return err
		}
		if !ref.Name().IsTag() {
			return nil
		}
		name := ref.Name().Short()
		if passesAll(name, filters) {
			tags = append(tags, release.NewTag(name))
		}
		return nil
	})
	if err != nil {
		return nil, WrapError(err, "failed to iterate references")
	}

	sort.Slice(tags, func(i, j int) bool { return tags[i].Name < tags[j].Name })

	return tags, nil
}

// ListTags implements the orchestrator's Lister capability: all tags,
// unfiltered, sorted by name.
func (r *Repo) ListTags(ctx context.Context) ([]release.Reference, error) {
	return r.Tags(ctx)
}

// DefaultBranch returns the name of the branch HEAD points to.
// Returns ErrResolveFailed if HEAD is detached.
func (r *Repo) DefaultBranch(ctx context.Context) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", WrapError(err, "context cancelled")
	}

	head, err := r.repo.Head()
	if err != nil {
		return "", WrapError(ErrResolveFailed, "failed to get HEAD reference")
	}
	if !head.Name().IsBranch() {
		return "", WrapError(ErrResolveFailed, "HEAD is detached")
	}
	return head.Name().Short(), nil
}

// passesAll checks if a tag name passes all filters.
func passesAll(name string, filters []TagFilter) bool {
	for _, filter := range filters {
		if filter != nil && !filter(name) {
			return false
		}
	}
	return true
}
