package domain

import "strings"

// Tag limits.
const (
	MaxTagsPerEntity = 20
	MaxTagLength     = 50
)

// NormalizeTags trims each tag, drops empties and over-length tags, removes
// case-insensitive duplicates keeping the first spelling, and caps the set
// at MaxTagsPerEntity. Order of first appearance is preserved. The result
// is never nil.
func NormalizeTags(tags []string) []string {
	out := make([]string, 0, len(tags))
	seen := make(map[string]struct{}, len(tags))

	for _, t := range tags {
		t = strings.TrimSpace(t)
		if t == "" || len(t) > MaxTagLength {
			continue
		}

		key := strings.ToLower(t)
		if _, dup := seen[key]; dup {
			continue
		}
		seen[key] = struct{}{}

		out = append(out, t)
		if len(out) == MaxTagsPerEntity {
			break
		}
	}

	return out
}

// Slugify lowercases s and replaces runs of non-alphanumerics with single
// hyphens, for use as a tag or category name fragment.
func Slugify(s string) string {
	var b strings.Builder
	lastHyphen := true // suppress leading hyphen

	for _, r := range strings.ToLower(s) {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9':
			b.WriteRune(r)
			lastHyphen = false
		default:
			if !lastHyphen {
				b.WriteByte('-')
				lastHyphen = true
			}
		}
	}

	return strings.TrimSuffix(b.String(), "-")
}
