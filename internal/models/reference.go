package models

type Category struct {
	ID   int64  `db:"id" json:"id"`
	Name string `db:"name" json:"name"`
}

type Status struct {
	ID   int64  `db:"id" json:"id"`
	Name string `db:"name" json:"name"`
}

// Stats is the aggregate shown on the public dashboard.
type Stats struct {
	TotalReports    int64 `db:"total_reports" json:"total_reports"`
	PendingReports  int64 `db:"pending_reports" json:"pending_reports"`
	ResolvedReports int64 `db:"resolved_reports" json:"resolved_reports"`
}
