package entities

// PageInfo holds the page state reported after navigation
type PageInfo struct {
	URL   string `json:"url"`
	Title string `json:"title"`
}
