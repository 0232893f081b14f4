package client

import "time"

// Client groups projects under a single owner. Deactivating a client
// takes every test under its projects out of the probing rotation.
type Client struct {
	ID        int64     `json:"id"`
	Name      string    `json:"name"`
	Active    bool      `json:"active"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}
