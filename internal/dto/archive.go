package dto

// ArchiveQuery captures GET /archive/workorders query parameters. Pole
// and Entity take the short labels used in reports, From and To are
// YYYY-MM-DD dates matched against the work period.
type ArchiveQuery struct {
	JobID     string `form:"jobId"`
	Reference string `form:"reference"`
	Pole      string `form:"pole"`
	Entity    string `form:"entity"`
	From      string `form:"from"`
	To        string `form:"to"`
	Page      int    `form:"page"`
	PageSize  int    `form:"pageSize"`
}
