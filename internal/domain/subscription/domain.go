package subscription

import "time"

// Subscription ties a notification address to a project. The subscriber
// notification handler mails every active subscription of the project
// whose test logged a transition. Subscriptions are kept per project, not
// per test.
type Subscription struct {
	ID        int64     `json:"id"`
	ProjectID int64     `json:"project_id"`
	Email     string    `json:"email"`
	Active    bool      `json:"active"`
	CreatedAt time.Time `json:"created_at"`
}
