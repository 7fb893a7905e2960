package entity

// SearchCriteria is an ephemeral query object used to build related-book
// searches from fields of an already loaded record. It is never persisted.
type SearchCriteria struct {
	Category  []string `json:"category,omitempty"`
	Author    string   `json:"author,omitempty"`
	Publisher string   `json:"publisher,omitempty"`
}
