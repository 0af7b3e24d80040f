package domain

import (
	"strings"
	"testing"
)

func TestShouldExport(t *testing.T) {
	tests := []struct {
		name string
		doc  Document
		want bool
	}{
		{
			name: "regular article is exportable",
			doc:  Document{Title: "An article", Category: "article", Location: "new", SourceURL: "https://example.com/a"},
			want: true,
		},
		{
			name: "highlight is excluded",
			doc:  Document{Title: "A highlight", Category: "highlight", Location: "new", SourceURL: "https://example.com/a"},
			want: false,
		},
		{
			name: "feed entry is excluded",
			doc:  Document{Title: "A feed item", Category: "article", Location: "feed", SourceURL: "https://example.com/a"},
			want: false,
		},
		{
			name: "empty source url is excluded",
			doc:  Document{Title: "An upload", Category: "pdf", Location: "new", SourceURL: ""},
			want: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, reason := ShouldExport(tt.doc)
			if got != tt.want {
				t.Errorf("ShouldExport() = %v, want %v", got, tt.want)
			}
			if !tt.want && reason == "" {
				t.Error("ShouldExport() excluded the document but gave no reason")
			}
			if tt.want && reason != "" {
				t.Errorf("ShouldExport() accepted the document but gave reason %q", reason)
			}
		})
	}
}

func TestNewSubmissionFields(t *testing.T) {
	doc := Document{
		ID:        "doc-1",
		Title:     "A very good article",
		SourceURL: "https://example.com/article",
		Category:  "article",
		Location:  "archive",
		Tags:      []string{"a", "b x"},
		Summary:   "Short summary",
		Author:    "Jane Doe",
		SiteName:  "Example Blog",
		CreatedAt: "2023-05-01T12:00:00+00:00",
	}

	sub, err := NewSubmission(doc, ".from:Reader")
	if err != nil {
		t.Fatalf("NewSubmission() error = %v", err)
	}

	if sub.URL != doc.SourceURL {
		t.Errorf("URL = %q, want %q", sub.URL, doc.SourceURL)
	}
	if sub.Description != "A very good article" {
		t.Errorf("Description = %q", sub.Description)
	}
	if want := "Short summary\nby Jane Doe, Example Blog"; sub.Extended != want {
		t.Errorf("Extended = %q, want %q", sub.Extended, want)
	}
	if want := ".from:Reader a bx"; sub.Tags != want {
		t.Errorf("Tags = %q, want %q", sub.Tags, want)
	}
	if want := "2023-05-01T12:00:00Z"; sub.CreatedAt != want {
		t.Errorf("CreatedAt = %q, want %q", sub.CreatedAt, want)
	}
	if !sub.NoReplace {
		t.Error("NoReplace = false, want true")
	}
}

func TestNewSubmissionTruncation(t *testing.T) {
	doc := Document{
		Title:     strings.Repeat("t", 300),
		SourceURL: "https://example.com",
		Summary:   strings.Repeat("s", 70000),
		CreatedAt: "2023-05-01T12:00:00Z",
	}

	sub, err := NewSubmission(doc, ".from:Reader")
	if err != nil {
		t.Fatalf("NewSubmission() error = %v", err)
	}

	if got := len([]rune(sub.Description)); got != 255 {
		t.Errorf("Description length = %d, want 255", got)
	}
	if got := len([]rune(sub.Extended)); got != 65536 {
		t.Errorf("Extended length = %d, want 65536", got)
	}
}

func TestNewSubmissionMultibyteTruncation(t *testing.T) {
	doc := Document{
		Title:     strings.Repeat("é", 300),
		SourceURL: "https://example.com",
		CreatedAt: "2023-05-01T12:00:00Z",
	}

	sub, err := NewSubmission(doc, "")
	if err != nil {
		t.Fatalf("NewSubmission() error = %v", err)
	}

	if got := len([]rune(sub.Description)); got != 255 {
		t.Errorf("Description rune length = %d, want 255", got)
	}
	if !strings.HasSuffix(sub.Description, "é") {
		t.Error("Description ends in a broken rune")
	}
}

func TestNewSubmissionBadCreatedAt(t *testing.T) {
	tests := []struct {
		name      string
		createdAt string
	}{
		{name: "empty", createdAt: ""},
		{name: "garbage", createdAt: "not-a-date"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			doc := Document{Title: "x", SourceURL: "https://example.com", CreatedAt: tt.createdAt}
			if _, err := NewSubmission(doc, ""); err == nil {
				t.Error("NewSubmission() = nil error, want error")
			}
		})
	}
}

func TestFormatCreatedAt(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{
			name:  "offset form is normalized to Z",
			input: "2023-05-01T12:00:00+00:00",
			want:  "2023-05-01T12:00:00Z",
		},
		{
			name:  "already strict form",
			input: "2023-05-01T12:00:00Z",
			want:  "2023-05-01T12:00:00Z",
		},
		{
			name:  "non-utc offset converted to utc",
			input: "2023-05-01T14:00:00+02:00",
			want:  "2023-05-01T12:00:00Z",
		},
		{
			name:  "fractional seconds dropped",
			input: "2023-05-01T12:00:00.123456Z",
			want:  "2023-05-01T12:00:00Z",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := FormatCreatedAt(tt.input)
			if err != nil {
				t.Fatalf("FormatCreatedAt(%q) error = %v", tt.input, err)
			}
			if got != tt.want {
				t.Errorf("FormatCreatedAt(%q) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}
}

func TestTagString(t *testing.T) {
	tests := []struct {
		name      string
		sourceTag string
		tags      []string
		want      string
	}{
		{
			name:      "internal whitespace is stripped",
			sourceTag: ".from:Reader",
			tags:      []string{"a", "b x"},
			want:      ".from:Reader a bx",
		},
		{
			name:      "no tags keeps just the source tag",
			sourceTag: ".from:Reader",
			tags:      nil,
			want:      ".from:Reader",
		},
		{
			name:      "empty source tag",
			sourceTag: "",
			tags:      []string{"go", "reading list"},
			want:      "go readinglist",
		},
		{
			name:      "whitespace-only tags are dropped",
			sourceTag: ".from:Reader",
			tags:      []string{"  ", "ok"},
			want:      ".from:Reader ok",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := TagString(tt.sourceTag, tt.tags); got != tt.want {
				t.Errorf("TagString() = %q, want %q", got, tt.want)
			}
		})
	}
}

// Joining and stripping tags that are already whitespace-free must be a
// no-op on a second pass.
func TestTagStringIdempotent(t *testing.T) {
	once := TagString("", []string{"go", "readinglist", "b-x"})
	twice := TagString("", strings.Fields(once))
	if once != twice {
		t.Errorf("tag transform not idempotent: %q != %q", once, twice)
	}
}
