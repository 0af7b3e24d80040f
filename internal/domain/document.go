package domain

// Document is one article or highlight record fetched from Readwise Reader.
// Documents are immutable once fetched; the run that fetched them is their
// only owner.
type Document struct {
	// ID is the Reader document identifier.
	ID string

	// Title of the saved article.
	Title string

	// SourceURL is the original URL the article was saved from.
	// Empty for uploads and some highlights.
	SourceURL string

	// Category is the Reader record kind. Ex: "article", "highlight", "pdf".
	Category string

	// Location is the Reader triage bucket. Ex: "new", "later", "archive", "feed".
	Location string

	// Tags holds the tag names in the order the API returned them.
	Tags []string

	// Summary, Author and SiteName feed the extended bookmark text.
	// Any of them may be empty.
	Summary  string
	Author   string
	SiteName string

	// CreatedAt is the raw creation timestamp string from the API.
	// Kept verbatim; parsing happens when the submission is built.
	CreatedAt string
}
