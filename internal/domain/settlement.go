package domain

import "time"

// Countdown describes the time left until the next hourly settlement.
type Countdown struct {
	Time    string // HH:MM of the next top of the hour
	Minutes int    // 60 minus the current minute, in [1, 60]
}

// NextSettlement derives the countdown from the wall clock alone.
func NextSettlement(now time.Time) Countdown {
	hourStart := time.Date(now.Year(), now.Month(), now.Day(), now.Hour(), 0, 0, 0, now.Location())
	return Countdown{
		Time:    hourStart.Add(time.Hour).Format("15:04"),
		Minutes: 60 - now.Minute(),
	}
}
