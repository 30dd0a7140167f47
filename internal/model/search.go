package model

// SearchHit is a single raw result from a search provider.
type SearchHit struct {
	Title string `json:"title"`
	Body  string `json:"body"`
	URL   string `json:"url"`
}

// SearchResult is the combined evidence for one query: the first hit's title
// and URL with the top result bodies merged into one evidence string. The
// zero value means no evidence was found, which is a valid outcome, not an
// error.
type SearchResult struct {
	Title string `json:"title"`
	Body  string `json:"body"`
	URL   string `json:"url"`
}

// Empty reports whether the search yielded no usable evidence.
func (r SearchResult) Empty() bool {
	return r.Body == ""
}
