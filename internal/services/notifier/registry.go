package notifier

import (
	"fmt"

	"go.uber.org/zap"

	kafkax "github.com/scout-hq/scout/internal/repository/kafka"
)

// Deps carries everything a handler constructor might need. Constructors
// fail when their transport is not configured, which surfaces as a
// startup error rather than a silent no-op handler.
type Deps struct {
	Log           *zap.Logger
	Mailer        EmailSender
	Producer      *kafkax.Producer
	Subscriptions SubscriptionSource
	SubjPrefix    string
	AdminEmails   []string
	ManagerEmails []string
}

type factory func(d Deps) (Handler, error)

var registry = map[string]factory{
	"logging": func(d Deps) (Handler, error) {
		return NewLoggingHandler(d.Log), nil
	},
	"admin_email": func(d Deps) (Handler, error) {
		if d.Mailer == nil {
			return nil, fmt.Errorf("admin_email: smtp is not configured")
		}
		if len(d.AdminEmails) == 0 {
			return nil, fmt.Errorf("admin_email: no admin addresses configured")
		}
		return NewAdminEmailHandler(d.Mailer, d.SubjPrefix, d.AdminEmails, d.Log), nil
	},
	"manager_email": func(d Deps) (Handler, error) {
		if d.Mailer == nil {
			return nil, fmt.Errorf("manager_email: smtp is not configured")
		}
		if len(d.ManagerEmails) == 0 {
			return nil, fmt.Errorf("manager_email: no manager addresses configured")
		}
		return NewManagerEmailHandler(d.Mailer, d.SubjPrefix, d.ManagerEmails, d.Log), nil
	},
	"subscribers": func(d Deps) (Handler, error) {
		if d.Mailer == nil {
			return nil, fmt.Errorf("subscribers: smtp is not configured")
		}
		if d.Subscriptions == nil {
			return nil, fmt.Errorf("subscribers: subscription store is not configured")
		}
		return NewSubscriberEmailHandler(d.Mailer, d.SubjPrefix, d.Subscriptions, d.Log), nil
	},
	"kafka": func(d Deps) (Handler, error) {
		if d.Producer == nil {
			return nil, fmt.Errorf("kafka: producer is not configured")
		}
		return NewKafkaHandler(d.Producer, d.Log), nil
	},
}

// Resolve maps configured handler identifiers to instances, preserving
// order. An unknown identifier is a configuration failure.
func Resolve(names []string, deps Deps) ([]Handler, error) {
	out := make([]Handler, 0, len(names))
	for _, name := range names {
		f, ok := registry[name]
		if !ok {
			return nil, fmt.Errorf("unknown notification handler %q", name)
		}
		h, err := f(deps)
		if err != nil {
			return nil, fmt.Errorf("notification handler %q: %w", name, err)
		}
		out = append(out, h)
	}
	return out, nil
}
