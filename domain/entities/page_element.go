package entities

// ElementInfo describes one match reported by find_elements
type ElementInfo struct {
	Index     int    `json:"index"`
	Text      string `json:"text"`
	IsVisible bool   `json:"is_visible"`
}
