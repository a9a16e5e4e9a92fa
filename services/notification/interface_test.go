package notification

import (
	"context"
	"errors"
	"testing"

	userRepo "linguahub/database/repository/user"
	"linguahub/models"

	"firebase.google.com/go/v4/messaging"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeTokens struct {
	users        map[string]string
	interpreters map[string]string
}

func (f *fakeTokens) UserToken(_ context.Context, id string) (string, error) {
	if tok, ok := f.users[id]; ok {
		return tok, nil
	}
	return "", userRepo.ErrNoDeviceToken
}

func (f *fakeTokens) InterpreterToken(_ context.Context, id string) (string, error) {
	if tok, ok := f.interpreters[id]; ok {
		return tok, nil
	}
	return "", userRepo.ErrNoDeviceToken
}

type fakeMessenger struct {
	sent   []*messaging.Message
	failOn string
}

func (f *fakeMessenger) Send(_ context.Context, msg *messaging.Message) (string, error) {
	if msg.Token == f.failOn {
		return "", errors.New("fcm unavailable")
	}
	f.sent = append(f.sent, msg)
	return "msg-id", nil
}

func newService(t *testing.T, m *fakeMessenger) *DefaultNotificationService {
	t.Helper()
	tokens := &fakeTokens{
		users:        map[string]string{"admin-1": "tok-a1", "admin-2": "tok-a2", "client-1": "tok-c1"},
		interpreters: map[string]string{"int-1": "tok-i1"},
	}
	svc, err := NewDefaultNotificationService(tokens, m, nil)
	require.NoError(t, err)
	return svc
}

func TestNewDefaultNotificationServiceRequiresDeps(t *testing.T) {
	_, err := NewDefaultNotificationService(nil, &fakeMessenger{}, nil)
	assert.Error(t, err)
}

func TestSendToAdminsContinuesPastFailures(t *testing.T) {
	m := &fakeMessenger{failOn: "tok-a1"}
	svc := newService(t, m)

	err := svc.SendToAdmins(context.Background(), []string{"admin-1", "admin-2", "admin-3"}, "P-100", models.AdminAlert{OrderID: "order-1"})
	require.Error(t, err)
	assert.ErrorIs(t, err, userRepo.ErrNoDeviceToken)

	require.Len(t, m.sent, 1)
	assert.Equal(t, "tok-a2", m.sent[0].Token)
	assert.Equal(t, "order_red_flag", m.sent[0].Data["type"])
	assert.Equal(t, "order-1", m.sent[0].Data["orderId"])
}

func TestSendClientChangeNotification(t *testing.T) {
	m := &fakeMessenger{}
	svc := newService(t, m)

	notice := models.ClientChangeNotice{
		OrderID: "order-1",
		Reason:  models.ChangeReasonGenderAndTopic,
		Payload: map[string]string{"requestedTopic": "LEGAL", "appliedTopic": "GENERAL"},
	}
	require.NoError(t, svc.SendClientChangeNotification(context.Background(), "client-1", "P-100", notice))

	require.Len(t, m.sent, 1)
	data := m.sent[0].Data
	assert.Equal(t, "GENDER_AND_TOPIC", data["reason"])
	assert.Equal(t, "LEGAL", data["requestedTopic"])
	assert.Equal(t, "GENERAL", data["appliedTopic"])
	assert.Contains(t, m.sent[0].Notification.Body, "P-100")

	err := svc.SendClientChangeNotification(context.Background(), "client-9", "P-100", notice)
	assert.ErrorIs(t, err, userRepo.ErrNoDeviceToken)
}

func TestSendInterpreterInvitation(t *testing.T) {
	m := &fakeMessenger{}
	svc := newService(t, m)

	payload := models.OnDemandInvitation{OrderID: "order-1", AcceptLink: "https://x/accept", DurationMinutes: 45}
	require.NoError(t, svc.SendInterpreterInvitation(context.Background(), "int-1", "P-100", payload))

	require.Len(t, m.sent, 1)
	msg := m.sent[0]
	assert.Equal(t, "tok-i1", msg.Token)
	assert.Equal(t, "on_demand", msg.Data["type"])
	assert.Equal(t, "45", msg.Data["durationMinutes"])
	assert.Equal(t, "interpreter", msg.Data["role"])
	assert.Equal(t, "high", msg.Android.Priority)

	m.failOn = "tok-i1"
	assert.Error(t, svc.SendInterpreterInvitation(context.Background(), "int-1", "P-100", models.PreBookedInvitation{OrderGroupID: "g1"}))
}
