package notification

import (
	"context"
	"errors"
	"fmt"

	userRepo "linguahub/database/repository/user"
	"linguahub/models"

	"firebase.google.com/go/v4/messaging"
	"go.uber.org/zap"
)

// NotificationService sends the pushes the search engine needs.
type NotificationService interface {
	SendToAdmins(ctx context.Context, adminIDs []string, orderPlatformID string, alert models.AdminAlert) error
	SendClientChangeNotification(ctx context.Context, clientID, platformID string, notice models.ClientChangeNotice) error
	SendInterpreterInvitation(ctx context.Context, interpreterID, platformID string, payload models.InvitationPayload) error
}

// Messenger is the part of the FCM client we use.
type Messenger interface {
	Send(ctx context.Context, message *messaging.Message) (string, error)
}

// DefaultNotificationService is the production implementation over FCM.
type DefaultNotificationService struct {
	tokens    userRepo.DeviceTokenRepository
	messenger Messenger
	logger    *zap.Logger
}

func NewDefaultNotificationService(
	tokens userRepo.DeviceTokenRepository,
	messenger Messenger,
	logger *zap.Logger,
) (*DefaultNotificationService, error) {
	if tokens == nil || messenger == nil {
		return nil, fmt.Errorf("notification service initialization error: token repository or messenger is nil")
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &DefaultNotificationService{tokens: tokens, messenger: messenger, logger: logger}, nil
}

// SendToAdmins alerts every admin about an order needing attention. One
// failing admin does not stop the others; all failures are returned joined.
func (s *DefaultNotificationService) SendToAdmins(
	ctx context.Context,
	adminIDs []string,
	orderPlatformID string,
	alert models.AdminAlert,
) error {
	var errs []error
	for _, adminID := range adminIDs {
		token, err := s.tokens.UserToken(ctx, adminID)
		if err != nil {
			errs = append(errs, fmt.Errorf("SendToAdmins: admin %s: %w", adminID, err))
			continue
		}
		msg := &messaging.Message{
			Token: token,
			Notification: &messaging.Notification{
				Title: "Order needs attention",
				Body:  fmt.Sprintf("Order %s could not be matched automatically.", orderPlatformID),
			},
			Data: map[string]string{
				"type":            "order_red_flag",
				"role":            "admin",
				"orderId":         alert.OrderID,
				"orderPlatformId": orderPlatformID,
			},
		}
		if _, err := s.messenger.Send(ctx, msg); err != nil {
			errs = append(errs, fmt.Errorf("SendToAdmins: failed to send FCM message to %s: %w", adminID, err))
		}
	}
	return errors.Join(errs...)
}

func (s *DefaultNotificationService) SendClientChangeNotification(
	ctx context.Context,
	clientID, platformID string,
	notice models.ClientChangeNotice,
) error {
	token, err := s.tokens.UserToken(ctx, clientID)
	if err != nil {
		return fmt.Errorf("SendClientChangeNotification: client %s: %w", clientID, err)
	}

	data := map[string]string{
		"type":       "order_criteria_changed",
		"role":       "client",
		"orderId":    notice.OrderID,
		"platformId": platformID,
		"reason":     string(notice.Reason),
	}
	for k, v := range notice.Payload {
		data[k] = v
	}

	msg := &messaging.Message{
		Token: token,
		Notification: &messaging.Notification{
			Title: "We adjusted your interpreter search",
			Body:  changeBody(notice.Reason, platformID),
		},
		Data: data,
	}
	if _, err := s.messenger.Send(ctx, msg); err != nil {
		return fmt.Errorf("SendClientChangeNotification: failed to send FCM message: %w", err)
	}
	return nil
}

func (s *DefaultNotificationService) SendInterpreterInvitation(
	ctx context.Context,
	interpreterID, platformID string,
	payload models.InvitationPayload,
) error {
	token, err := s.tokens.InterpreterToken(ctx, interpreterID)
	if err != nil {
		return fmt.Errorf("SendInterpreterInvitation: interpreter %s: %w", interpreterID, err)
	}

	data := payload.Data()
	data["role"] = "interpreter"
	data["platformId"] = platformID

	msg := &messaging.Message{
		Token: token,
		Notification: &messaging.Notification{
			Title: "New interpreting request",
			Body:  fmt.Sprintf("You have been invited to order %s.", platformID),
		},
		Data: data,
		Android: &messaging.AndroidConfig{
			Priority: "high",
			Notification: &messaging.AndroidNotification{
				ChannelID: "high_priority",
				Sound:     "default",
			},
		},
		APNS: &messaging.APNSConfig{
			Headers: map[string]string{
				"apns-priority":  "10",
				"apns-push-type": "alert",
			},
			Payload: &messaging.APNSPayload{
				Aps: &messaging.Aps{
					Sound: "default",
				},
			},
		},
	}

	if _, err := s.messenger.Send(ctx, msg); err != nil {
		return fmt.Errorf("SendInterpreterInvitation: failed to send FCM message: %w", err)
	}
	s.logger.Debug("invitation sent",
		zap.String("interpreterId", interpreterID),
		zap.String("kind", payload.InvitationKind()))
	return nil
}

func changeBody(reason models.ChangeReason, platformID string) string {
	switch reason {
	case models.ChangeReasonTopic:
		return fmt.Sprintf("No specialist was free for order %s, so we invited general interpreters.", platformID)
	case models.ChangeReasonGender:
		return fmt.Sprintf("No interpreter of your preferred gender was free for order %s, so we invited others.", platformID)
	case models.ChangeReasonGenderAndTopic:
		return fmt.Sprintf("For order %s we invited general interpreters of another gender.", platformID)
	default:
		return fmt.Sprintf("Your order %s search criteria were adjusted.", platformID)
	}
}
