package markdown

import "strings"

// Markers delimiting the regenerated part of a meeting note. Text outside
// them belongs to the user and is preserved on rewrite.
const (
	ManagedStart = "<!-- meetnote:summary:start -->"
	ManagedEnd   = "<!-- meetnote:summary:end -->"
)

// ReplaceManagedBlock swaps the managed block of body for generated, or
// appends a new block when body has none.
func ReplaceManagedBlock(body, generated string) string {
	block := ManagedStart + "\n" + strings.TrimRight(generated, "\n") + "\n" + ManagedEnd

	start := strings.Index(body, ManagedStart)
	end := strings.Index(body, ManagedEnd)
	if start >= 0 && end > start {
		return body[:start] + block + body[end+len(ManagedEnd):]
	}
	switch {
	case strings.TrimSpace(body) == "":
		return block + "\n"
	case strings.HasSuffix(body, "\n"):
		return body + "\n" + block + "\n"
	default:
		return body + "\n\n" + block + "\n"
	}
}

// ManagedBlock returns the text between the markers, without them.
func ManagedBlock(body string) (string, bool) {
	start := strings.Index(body, ManagedStart)
	end := strings.Index(body, ManagedEnd)
	if start < 0 || end <= start {
		return "", false
	}
	return strings.Trim(body[start+len(ManagedStart):end], "\n"), true
}
