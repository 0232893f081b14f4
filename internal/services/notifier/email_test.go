package notifier

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/scout-hq/scout/internal/domain/client"
	"github.com/scout-hq/scout/internal/domain/project"
	"github.com/scout-hq/scout/internal/domain/statuschange"
	"github.com/scout-hq/scout/internal/domain/statustest"
	"github.com/scout-hq/scout/internal/domain/subscription"
)

type sentMail struct {
	to, subject, body string
}

type fakeSender struct {
	mu      sync.Mutex
	sent    []sentMail
	failFor map[string]error
}

func (f *fakeSender) Send(_ context.Context, to, subject, body string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.failFor[to]; err != nil {
		return err
	}
	f.sent = append(f.sent, sentMail{to: to, subject: subject, body: body})
	return nil
}

type fakeSubs struct {
	subs []*subscription.Subscription
	err  error
}

func (f *fakeSubs) ListByProject(context.Context, int64) ([]*subscription.Subscription, error) {
	return f.subs, f.err
}

func errorEvent() Event {
	returned := 503
	return Event{
		Change: &statuschange.StatusChange{
			TestID:         1,
			ExpectedStatus: 200,
			ReturnedStatus: &returned,
			Result:         statuschange.ResultUnexpected,
			CreatedAt:      time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC),
		},
		Test:    &statustest.StatusTest{ID: 1, ProjectID: 2, URL: "https://a.example", ExpectedStatus: 200},
		Project: &project.Project{ID: 2, ClientID: 3, Name: "site"},
		Client:  &client.Client{ID: 3, Name: "acme"},
		Created: true,
	}
}

func recoveryEvent() Event {
	ev := errorEvent()
	returned := 200
	ev.Change.ReturnedStatus = &returned
	ev.Change.Result = statuschange.ResultExpected
	return ev
}

func TestRenderEmail_Error(t *testing.T) {
	subject, body, err := renderEmail("[scout]", errorEvent())
	require.NoError(t, err)

	assert.Equal(t, "[scout] ERROR: acme site", subject)
	assert.Contains(t, body, "https://a.example returned an unexpected response")
	assert.Contains(t, body, "Expected status: 200")
	assert.Contains(t, body, "Returned status: 503")
	assert.Contains(t, body, "Client:  acme")
	assert.Contains(t, body, "2025-03-01T12:00:00Z")
}

func TestRenderEmail_NoResponse(t *testing.T) {
	ev := errorEvent()
	ev.Change.ReturnedStatus = nil

	_, body, err := renderEmail("[scout]", ev)
	require.NoError(t, err)
	assert.Contains(t, body, "No response was received.")
	assert.NotContains(t, body, "Returned status:")
}

func TestRenderEmail_Recovery(t *testing.T) {
	subject, body, err := renderEmail("", recoveryEvent())
	require.NoError(t, err)

	assert.Equal(t, "RECOVERED: acme site", subject)
	assert.Contains(t, body, "recovered and returned the expected status 200")
}

func TestAdminEmailHandler_SendsToEveryAdmin(t *testing.T) {
	sender := &fakeSender{}
	h := NewAdminEmailHandler(sender, "[scout]", []string{"a@ops.example", "b@ops.example"}, zap.NewNop())

	require.NoError(t, h.Notify(context.Background(), errorEvent()))
	require.Len(t, sender.sent, 2)
	assert.Equal(t, "a@ops.example", sender.sent[0].to)
	assert.Equal(t, "b@ops.example", sender.sent[1].to)
	assert.Equal(t, sender.sent[0].subject, sender.sent[1].subject)
}

func TestEmailHandler_SkipsReplayedEvents(t *testing.T) {
	sender := &fakeSender{}
	h := NewAdminEmailHandler(sender, "", []string{"a@ops.example"}, zap.NewNop())

	ev := errorEvent()
	ev.Created = false
	require.NoError(t, h.Notify(context.Background(), ev))
	assert.Empty(t, sender.sent)
}

func TestEmailHandler_OneBadRecipientDoesNotBlockOthers(t *testing.T) {
	sender := &fakeSender{failFor: map[string]error{
		"bad@ops.example": context.Canceled,
	}}
	h := NewAdminEmailHandler(sender, "", []string{"bad@ops.example", "good@ops.example"}, zap.NewNop())

	err := h.Notify(context.Background(), errorEvent())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "bad@ops.example")
	require.Len(t, sender.sent, 1)
	assert.Equal(t, "good@ops.example", sender.sent[0].to)
}

func TestSubscriberEmailHandler_ResolvesPerProject(t *testing.T) {
	sender := &fakeSender{}
	subs := &fakeSubs{subs: []*subscription.Subscription{
		{ID: 1, ProjectID: 2, Email: "fan@example.com", Active: true},
	}}
	h := NewSubscriberEmailHandler(sender, "", subs, zap.NewNop())

	require.NoError(t, h.Notify(context.Background(), errorEvent()))
	require.Len(t, sender.sent, 1)
	assert.Equal(t, "fan@example.com", sender.sent[0].to)
}

func TestSubscriberEmailHandler_NoSubscribersIsNoop(t *testing.T) {
	sender := &fakeSender{}
	h := NewSubscriberEmailHandler(sender, "", &fakeSubs{}, zap.NewNop())

	require.NoError(t, h.Notify(context.Background(), errorEvent()))
	assert.Empty(t, sender.sent)
}

func TestSubscriberEmailHandler_StoreFailure(t *testing.T) {
	sender := &fakeSender{}
	h := NewSubscriberEmailHandler(sender, "", &fakeSubs{err: errors.New("db down")}, zap.NewNop())

	err := h.Notify(context.Background(), errorEvent())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "resolve recipients")
	assert.Empty(t, sender.sent)
}
