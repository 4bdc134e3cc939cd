package gitx

import "strings"

// ParseBranchList parses newline-separated branch names as produced by
//
//	git for-each-ref --format="%(refname:strip=3)" refs/remotes/<remote>
//
// dropping blanks, the symbolic HEAD entry, and "HEAD -> ..." arrow lines
// from older listing forms.
func ParseBranchList(output string) []string {
	if strings.TrimSpace(output) == "" {
		return nil
	}
	var branches []string
	for _, line := range strings.Split(output, "\n") {
		line = strings.TrimSpace(line)
		if line == "" || line == "HEAD" || strings.Contains(line, "->") {
			continue
		}
		branches = append(branches, line)
	}
	return branches
}
