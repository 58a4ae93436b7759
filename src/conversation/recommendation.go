package conversation

// RecommendationItem is a structured place or event attached to an assistant turn
type RecommendationItem struct {
	Type           string             `json:"type"`
	Data           RecommendationData `json:"data"`
	RelevanceScore *float64           `json:"relevance_score,omitempty"`
}

// RecommendationData holds the display record of a recommendation
type RecommendationData struct {
	Name          string   `json:"name,omitempty"`
	Title         string   `json:"title,omitempty"`
	VenueName     string   `json:"venue_name,omitempty"`
	VenueCity     string   `json:"venue_city,omitempty"`
	StartDatetime string   `json:"start_datetime,omitempty"`
	Price         string   `json:"price,omitempty"`
	IsFree        bool     `json:"is_free,omitempty"`
	ImageURL      string   `json:"image_url,omitempty"`
	EventURL      string   `json:"event_url,omitempty"`
	Rating        *float64 `json:"rating,omitempty"`
	Description   string   `json:"description,omitempty"`
}

// DisplayName returns the name, falling back to the title
func (d RecommendationData) DisplayName() string {
	if d.Name != "" {
		return d.Name
	}
	return d.Title
}

// Key derives the like/dedup identity of the item from (type, name-or-title, venue).
// It is not a server id; it only has to be stable for the display session.
func (r RecommendationItem) Key() string {
	return r.Type + "_" + r.Data.DisplayName() + "_" + r.Data.VenueName
}
