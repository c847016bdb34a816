package siamv5

// searchResult is the envelope of every doFilter response.
type searchResult[T any] struct {
	Success struct {
		Total int `json:"total"`
		Items []T `json:"items"`
	} `json:"success"`
}

// plannerItem is one work order occurrence in a planner search result.
// An order spanning several days yields one item per occurrence, all
// sharing the same event id.
type plannerItem struct {
	ID           string `json:"id"`
	EventID      string `json:"id_evt"`
	OccurrenceID string `json:"id_occurrence"`
	From         string `json:"from"`
	To           string `json:"to"`
	Type         string `json:"type"`
	Status       int    `json:"status"`
	Label        string `json:"Label"`
}

// daybookItem is one technical event in a daybook search result. The
// row markup shown by the frontend ships inside the payload.
type daybookItem struct {
	ID           string `json:"id"`
	EventID      int    `json:"id_evt"`
	OccurrenceID int    `json:"id_occurrence"`
	From         int64  `json:"from"`
	To           int64  `json:"to"`
	Type         string `json:"type"`
	Status       int    `json:"status"`
	Label        string `json:"label"`
	Tooltip      string `json:"tooltip"`
	LastUpdate   string `json:"lastUpdate"`
	HTML         string `json:"html"`
}
