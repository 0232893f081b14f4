package project

import "time"

// Project is a monitored target group belonging to one client.
//
// Working and LastProbedAt are derived state: Working mirrors the result of
// the most recently recorded status change across the project's tests, and
// LastProbedAt is bumped on every probe of any of them. Both are written
// exclusively through Repo.UpdateHealth by the history recorder.
type Project struct {
	ID           int64      `json:"id"`
	ClientID     int64      `json:"client_id"`
	Name         string     `json:"name"`
	Active       bool       `json:"active"`
	Working      bool       `json:"working"`
	LastProbedAt *time.Time `json:"last_probed_at"`
	CreatedAt    time.Time  `json:"created_at"`
	UpdatedAt    time.Time  `json:"updated_at"`
}
