package entity

// PublishDateUnknown is the display sentinel used when the upstream record
// carries no publish date.
const PublishDateUnknown = "Unknown"

// Book is a catalog record rebuilt from each gateway response; it carries no
// behavior beyond construction-time normalization and no client-side identity.
type Book struct {
	ID            string  `json:"id"`
	Title         string  `json:"title"`
	Category      string  `json:"category"`
	Image         string  `json:"image"`
	Author        string  `json:"author"`
	Publisher     string  `json:"publisher"`
	PublishDate   *string `json:"publishDate"`
	Overview      string  `json:"overview"`
	NumberOfPages int     `json:"numberOfPages"`
}

// NormalizeImageRef qualifies an empty cover reference against the image base
// path. A missing reference still produces a URL with an empty trailing
// segment; that matches the upstream contract as observed and is kept as-is.
// Non-empty references are returned unchanged, so the rewrite is idempotent.
func NormalizeImageRef(imageBase, ref string) string {
	if ref != "" {
		return ref
	}
	return imageBase + "/images/book/" + ref
}

// NewBook builds a Book with its image reference normalized.
func NewBook(imageBase string, b Book) Book {
	b.Image = NormalizeImageRef(imageBase, b.Image)
	if b.NumberOfPages < 0 {
		b.NumberOfPages = 0
	}
	return b
}

// DisplayPublishDate resolves the nullable publish date to display text.
func (b Book) DisplayPublishDate() string {
	if b.PublishDate == nil || *b.PublishDate == "" {
		return PublishDateUnknown
	}
	return *b.PublishDate
}
