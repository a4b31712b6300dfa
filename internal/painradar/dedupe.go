package painradar

import (
	"strings"

	"github.com/karchauskas1/paseka-it-crm-sub001/internal/utils"
)

// Fingerprint is the first 100 runes of the lower-cased content with
// whitespace collapsed.
func Fingerprint(content string) string {
	return utils.TruncateRunes(strings.Join(strings.Fields(strings.ToLower(content)), " "), 100)
}

// Deduplicate keeps the first post of each fingerprint.
func Deduplicate(posts []Post) []Post {
	seen := make(map[string]struct{}, len(posts))
	out := make([]Post, 0, len(posts))
	for _, p := range posts {
		fp := Fingerprint(p.Content)
		if _, ok := seen[fp]; ok {
			continue
		}
		seen[fp] = struct{}{}
		out = append(out, p)
	}
	return out
}

// FilterByEngagement drops posts below minEngagement.
func FilterByEngagement(posts []Post, minEngagement int) []Post {
	out := make([]Post, 0, len(posts))
	for _, p := range posts {
		if p.Engagement >= minEngagement {
			out = append(out, p)
		}
	}
	return out
}
