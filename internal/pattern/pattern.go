// Package pattern implements branch-name matching against glob-like
// pattern sets. A pattern is either a literal branch name or contains "*",
// which matches any run of characters, including "/" and the empty string.
// Matches are anchored at both ends.
package pattern

import (
	"regexp"
	"strings"

	"github.com/dynacylabs/github-fork-syncer/internal/strutil"
)

// Set is an ordered list of branch patterns. The first matching pattern
// wins; an empty set matches nothing.
type Set struct {
	patterns []compiled
}

type compiled struct {
	raw string
	re  *regexp.Regexp // nil for literal patterns
}

// ParseSet builds a Set from a comma-separated pattern list.
func ParseSet(raw string) Set {
	return NewSet(strutil.SplitCSV(raw))
}

// NewSet builds a Set from individual patterns, trimming each entry and
// dropping empties.
func NewSet(patterns []string) Set {
	var set Set
	for _, p := range patterns {
		p = strings.TrimSpace(p)
		if p == "" {
			continue
		}
		set.patterns = append(set.patterns, compile(p))
	}
	return set
}

func compile(p string) compiled {
	if !strings.Contains(p, "*") {
		return compiled{raw: p}
	}
	parts := strings.Split(p, "*")
	for i, part := range parts {
		parts[i] = regexp.QuoteMeta(part)
	}
	// Anchored full-string match; "*" crosses "/" so "release/*" covers
	// nested branch names like "release/1.0/hotfix".
	re := regexp.MustCompile("^" + strings.Join(parts, ".*") + "$")
	return compiled{raw: p, re: re}
}

// Empty reports whether the set contains no patterns.
func (s Set) Empty() bool { return len(s.patterns) == 0 }

// Len returns the number of patterns in the set.
func (s Set) Len() int { return len(s.patterns) }

// Patterns returns the raw patterns in order.
func (s Set) Patterns() []string {
	out := make([]string, 0, len(s.patterns))
	for _, p := range s.patterns {
		out = append(out, p.raw)
	}
	return out
}

// Matches reports whether the branch name satisfies any pattern in the set.
func (s Set) Matches(branch string) bool {
	for _, p := range s.patterns {
		if p.re != nil {
			if p.re.MatchString(branch) {
				return true
			}
			continue
		}
		if p.raw == branch {
			return true
		}
	}
	return false
}
