package domain

import (
	"fmt"
	"strings"

	"github.com/araddon/dateparse"
)

const (
	// Pinboard field limits, enforced before submission.
	maxDescriptionLen = 255
	maxExtendedLen    = 65536

	// Pinboard wants UTC with seconds precision and a literal Z suffix.
	pinboardTimeLayout = "2006-01-02T15:04:05Z"
)

// Submission is the derived payload for one Pinboard posts/add call.
// It is transient: built from a Document, sent, never persisted.
type Submission struct {
	URL         string
	Description string // document title, capped at 255 runes
	Extended    string // "{summary}\nby {author}, {site_name}", capped at 65536 runes
	Tags        string // space-joined, whitespace-free tags incl. the source tag
	CreatedAt   string // strict UTC ISO-8601, seconds precision
	NoReplace   bool   // never overwrite an existing bookmark at the same URL
}

// ShouldExport reports whether a document is eligible to become a bookmark.
// Highlights, feed entries and documents without a source URL are excluded.
// The returned reason names the triggering fields for the skip log.
func ShouldExport(d Document) (bool, string) {
	if d.Category == "highlight" || d.Location == "feed" || d.SourceURL == "" {
		reason := fmt.Sprintf("category: %s, location: %s, source_url: %s",
			d.Category, d.Location, d.SourceURL)
		return false, reason
	}
	return true, ""
}

// NewSubmission derives the Pinboard payload from a document. It fails only
// when the creation timestamp cannot be parsed; every other field degrades to
// an empty string.
func NewSubmission(d Document, sourceTag string) (Submission, error) {
	createdAt, err := FormatCreatedAt(d.CreatedAt)
	if err != nil {
		return Submission{}, fmt.Errorf("failed to parse created_at %q: %w", d.CreatedAt, err)
	}

	extended := fmt.Sprintf("%s\nby %s, %s", d.Summary, d.Author, d.SiteName)

	return Submission{
		URL:         d.SourceURL,
		Description: truncateRunes(d.Title, maxDescriptionLen),
		Extended:    truncateRunes(extended, maxExtendedLen),
		Tags:        TagString(sourceTag, d.Tags),
		CreatedAt:   createdAt,
		NoReplace:   true,
	}, nil
}

// FormatCreatedAt normalizes any common ISO-8601/RFC timestamp variant to the
// exact format Pinboard requires for the dt parameter.
func FormatCreatedAt(raw string) (string, error) {
	if raw == "" {
		return "", fmt.Errorf("timestamp is empty")
	}
	t, err := dateparse.ParseAny(raw)
	if err != nil {
		return "", err
	}
	return t.UTC().Format(pinboardTimeLayout), nil
}

// TagString joins the document tags into Pinboard's space-separated form.
// Pinboard tags cannot contain whitespace, so internal whitespace is stripped
// from each tag. The configured source tag is prepended as-is (it may itself
// carry several space-separated tags). Tag order is preserved.
func TagString(sourceTag string, tags []string) string {
	parts := make([]string, 0, len(tags)+1)
	if sourceTag != "" {
		parts = append(parts, sourceTag)
	}
	for _, tag := range tags {
		if cleaned := stripWhitespace(tag); cleaned != "" {
			parts = append(parts, cleaned)
		}
	}
	return strings.Join(parts, " ")
}

func stripWhitespace(s string) string {
	return strings.Join(strings.Fields(s), "")
}

// truncateRunes caps s at n runes. Byte-based slicing could split a UTF-8
// sequence at the boundary.
func truncateRunes(s string, n int) string {
	if len(s) <= n {
		return s
	}
	runes := []rune(s)
	if len(runes) <= n {
		return s
	}
	return string(runes[:n])
}
