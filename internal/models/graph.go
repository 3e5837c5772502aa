package models

// PageQuery holds pagination parameters for a relationship listing.
// Zero Number or Size means "use the configured default".
type PageQuery struct {
	Number    int
	Size      int
	WithTotal bool
}

// RelationPage is one page window of a relationship collection.
type RelationPage struct {
	Origin     string `json:"origin"`
	Relation   string `json:"relation"`
	Direction  string `json:"direction"`
	Items      []Node `json:"items"`
	Page       int    `json:"page"`
	PerPage    int    `json:"per_page"`
	TotalCount *int   `json:"total_count,omitempty"`
}
