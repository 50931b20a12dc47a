// Package release provides the rebuild support policy.
// This file contains the pattern matching that selects which historical tags
// remain eligible for scheduled rebuilds.
package release

import "regexp"

// SupportPolicy defines which historical tags are eligible for rebuild.
// The policy is a compiled regular expression over tag names; evaluation is
// a pure predicate, so any two evaluations against the same name agree.
type SupportPolicy struct {
	pattern *regexp.Regexp
}

// NewSupportPolicy compiles pattern into a SupportPolicy.
// A malformed pattern returns ErrInvalidPolicy; callers must treat that as a
// configuration error and abort before any publish is attempted.
func NewSupportPolicy(pattern string) (*SupportPolicy, error) {
	if pattern == "" {
		return nil, WrapError(ErrInvalidPolicy, "pattern cannot be empty")
	}

	re, err := regexp.Compile(pattern)
	if err != nil {
		return nil, WrapErrorf(ErrInvalidPolicy, "compiling pattern %q: %v", pattern, err)
	}

	return &SupportPolicy{pattern: re}, nil
}

// MustSupportPolicy is like NewSupportPolicy but panics on a malformed
// pattern. Intended for fixed patterns in tests and examples.
func MustSupportPolicy(pattern string) *SupportPolicy {
	policy, err := NewSupportPolicy(pattern)
	if err != nil {
		panic(err)
	}
	return policy
}

// Matches reports whether the tag name is covered by the policy.
func (p *SupportPolicy) Matches(name string) bool {
	return p.pattern.MatchString(name)
}

// String returns the policy's pattern source.
func (p *SupportPolicy) String() string {
	return p.pattern.String()
}
