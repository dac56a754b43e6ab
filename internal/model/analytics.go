package model

// UserScanCount is one row of the top scanners ranking.
type UserScanCount struct {
	UserID    uint   `json:"user_id"`
	Username  string `json:"username"`
	ScanCount int64  `json:"scan_count"`
}

// Analytics is the admin dashboard summary.
type Analytics struct {
	TotalUsers       int64           `json:"totalUsers"`
	ScansToday       int64           `json:"scansToday"`
	ActiveUsersToday int64           `json:"activeUsersToday"`
	AvgSimilarity    float64         `json:"avgSimilarity"`
	TopUsers         []UserScanCount `json:"topUsers"`
}
