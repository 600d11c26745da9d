package normalize

import (
	"regexp"
	"strings"
)

// MaxHashtags matches Instagram's per-post limit, the highest of the platforms.
const MaxHashtags = 30

var hashtagRe = regexp.MustCompile(`#([\p{L}\p{N}_]{1,64})`)

// Hashtags returns the distinct hashtags in content, lowercased, in order of
// first appearance.
func Hashtags(content string) []string {
	matches := hashtagRe.FindAllStringSubmatch(content, -1)
	if len(matches) == 0 {
		return nil
	}

	seen := map[string]struct{}{}
	out := make([]string, 0, len(matches))
	for _, m := range matches {
		t := strings.ToLower(m[1])
		if _, ok := seen[t]; ok {
			continue
		}
		seen[t] = struct{}{}
		out = append(out, t)

		if len(out) >= MaxHashtags {
			break
		}
	}
	return out
}
