package Models

import "time"

// RateCounter holds one client's request count for the current window.
type RateCounter struct {
	ClientKey string    `gorm:"primaryKey;size:191"`
	Hits      int       `gorm:"not null"`
	WindowEnd time.Time `gorm:"index;not null"`
}

func (RateCounter) TableName() string {
	return "rate_counters"
}
