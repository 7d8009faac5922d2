package models

// DailyStats holds one day's worth of a counter for dashboard charts
type DailyStats struct {
	Date  string `json:"date"`
	Count int    `json:"count"`
}
