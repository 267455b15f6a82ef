package models

import "time"

// DailyClose is one persisted row of the daily_closes table.
// Close is nil when the source file reported "null" for that day.
type DailyClose struct {
	Symbol    string
	TradeDate time.Time
	Close     *float64
}
