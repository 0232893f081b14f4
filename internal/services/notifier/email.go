package notifier

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"text/template"
	"time"

	"go.uber.org/zap"

	"github.com/scout-hq/scout/internal/domain/subscription"
	"github.com/scout-hq/scout/internal/obs/retry"
)

type EmailSender interface {
	Send(ctx context.Context, to, subject, body string) error
}

type SubscriptionSource interface {
	ListByProject(ctx context.Context, projectID int64) ([]*subscription.Subscription, error)
}

// emailHandler is the shared shape of the email-based handlers; the
// variants differ only in name and in how they resolve recipients.
type emailHandler struct {
	name       string
	out        EmailSender
	prefix     string
	log        *zap.Logger
	recipients func(ctx context.Context, ev Event) ([]string, error)
}

func (h *emailHandler) Name() string { return h.name }

func (h *emailHandler) Notify(ctx context.Context, ev Event) error {
	if !ev.Created {
		return nil
	}

	to, err := h.recipients(ctx, ev)
	if err != nil {
		return fmt.Errorf("resolve recipients: %w", err)
	}
	if len(to) == 0 {
		return nil
	}

	subject, body, err := renderEmail(h.prefix, ev)
	if err != nil {
		return fmt.Errorf("render email: %w", err)
	}

	var errs []error
	for _, addr := range to {
		addr := addr
		sendErr := retry.Do(ctx, func() error {
			return h.out.Send(ctx, addr, subject, body)
		}, retry.TransportPolicy("smtp", h.log))
		if sendErr != nil {
			errs = append(errs, fmt.Errorf("send to %s: %w", addr, sendErr))
		}
	}
	return errors.Join(errs...)
}

// NewAdminEmailHandler mails the configured operator addresses on every
// recorded transition.
func NewAdminEmailHandler(out EmailSender, prefix string, admins []string, log *zap.Logger) Handler {
	return &emailHandler{
		name:   "admin_email",
		out:    out,
		prefix: prefix,
		log:    log.With(zap.String("component", "notifier.admin_email")),
		recipients: func(context.Context, Event) ([]string, error) {
			return admins, nil
		},
	}
}

// NewManagerEmailHandler is the admin variant pointed at the manager list.
func NewManagerEmailHandler(out EmailSender, prefix string, managers []string, log *zap.Logger) Handler {
	return &emailHandler{
		name:   "manager_email",
		out:    out,
		prefix: prefix,
		log:    log.With(zap.String("component", "notifier.manager_email")),
		recipients: func(context.Context, Event) ([]string, error) {
			return managers, nil
		},
	}
}

// NewSubscriberEmailHandler mails every active subscription of the project
// that logged the transition. With no subscribers it is a clean no-op.
func NewSubscriberEmailHandler(out EmailSender, prefix string, subs SubscriptionSource, log *zap.Logger) Handler {
	return &emailHandler{
		name:   "subscribers",
		out:    out,
		prefix: prefix,
		log:    log.With(zap.String("component", "notifier.subscribers")),
		recipients: func(ctx context.Context, ev Event) ([]string, error) {
			list, err := subs.ListByProject(ctx, ev.Project.ID)
			if err != nil {
				return nil, err
			}
			out := make([]string, 0, len(list))
			for _, s := range list {
				out = append(out, s.Email)
			}
			return out, nil
		},
	}
}

var emailBody = template.Must(template.New("email").Parse(
	`{{if .IsError}}Test {{.URL}} returned an unexpected response.

Expected status: {{.Expected}}
{{if .Returned}}Returned status: {{.Returned}}{{else}}No response was received.{{end}}
{{else}}Test {{.URL}} recovered and returned the expected status {{.Expected}} again.
{{end}}
Client:  {{.Client}}
Project: {{.Project}}
Logged:  {{.LoggedAt}}

-- scout
`))

func renderEmail(prefix string, ev Event) (subject, body string, err error) {
	verdict := "RECOVERED"
	if ev.Change.IsError() {
		verdict = "ERROR"
	}
	subject = strings.TrimSpace(fmt.Sprintf("%s %s: %s %s", prefix, verdict, ev.Client.Name, ev.Project.Name))

	returned := ""
	if ev.Change.ReturnedStatus != nil {
		returned = fmt.Sprintf("%d", *ev.Change.ReturnedStatus)
	}

	var b strings.Builder
	if err := emailBody.Execute(&b, struct {
		IsError  bool
		URL      string
		Expected int
		Returned string
		Client   string
		Project  string
		LoggedAt string
	}{
		IsError:  ev.Change.IsError(),
		URL:      ev.Test.URL,
		Expected: ev.Change.ExpectedStatus,
		Returned: returned,
		Client:   ev.Client.Name,
		Project:  ev.Project.Name,
		LoggedAt: ev.Change.CreatedAt.UTC().Format(time.RFC3339),
	}); err != nil {
		return "", "", err
	}
	return subject, b.String(), nil
}
