package domain

import (
	"context"
	"time"
)

const (
	StatusLoggedIn  = "logged_in"
	StatusLoggedOut = "logged_out"
)

// TimeLog is one shift: opened on login, closed by the next logout.
type TimeLog struct {
	ID        int64      `gorm:"primaryKey" json:"id"`
	UserID    int64      `gorm:"index" json:"user_id"`
	StartTime time.Time  `json:"start_time"`
	EndTime   *time.Time `json:"end_time"`
	Status    string     `gorm:"default:logged_in" json:"status"`
	CreatedAt time.Time  `json:"created_at"`
	UpdatedAt time.Time  `json:"updated_at"`
}

func (TimeLog) TableName() string {
	return "time_logs"
}

// Duration reports the shift length, using now for a still-open shift.
func (t TimeLog) Duration(now time.Time) time.Duration {
	if t.EndTime != nil {
		return t.EndTime.Sub(t.StartTime)
	}
	return now.Sub(t.StartTime)
}

type Service interface {
	List(ctx context.Context, req ListRequest) ([]TimeLog, int64, error)
}

type ListRequest struct {
	UserID  *int64
	Page    int
	PerPage int
}
