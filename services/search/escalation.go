package search

import (
	"context"
	"errors"

	adminRepo "linguahub/database/repository/admin"
	"linguahub/models"
	"linguahub/services/notification"

	"go.uber.org/zap"
)

// EscalationReporter raises a red flag on an order's admin record and alerts
// the platform administrators.
type EscalationReporter struct {
	AdminInfo adminRepo.AdminInfoRepository
	Admins    adminRepo.AdminDirectory
	Notifier  notification.NotificationService
	Logger    *zap.Logger
}

// SetRedFlag flags the order with message. A missing admin record is a data
// integrity warning: it is logged and nothing else happens. Write and
// notification failures are logged, never returned.
func (e *EscalationReporter) SetRedFlag(ctx context.Context, order *models.AppointmentOrder, message string) {
	logger := e.Logger.With(zap.String("orderId", order.ID), zap.String("appointmentId", order.AppointmentID))

	info, err := e.AdminInfo.GetByAppointmentID(ctx, order.AppointmentID)
	if err != nil {
		if errors.Is(err, adminRepo.ErrAdminInfoNotFound) {
			logger.Warn("admin info missing, red flag not set", zap.String("message", message))
			return
		}
		logger.Error("failed to read admin info", zap.Error(err))
		return
	}

	if err := e.AdminInfo.SetRedFlag(ctx, info.ID, message); err != nil {
		logger.Error("failed to set red flag", zap.Error(err))
		return
	}
	logger.Info("red flag set", zap.String("message", message))

	adminIDs, err := e.Admins.ListAdminIDs(ctx)
	if err != nil {
		logger.Error("failed to list admins for red flag alert", zap.Error(err))
		return
	}
	if len(adminIDs) == 0 {
		logger.Warn("no admins to alert")
		return
	}
	if err := e.Notifier.SendToAdmins(ctx, adminIDs, order.PlatformID, models.AdminAlert{OrderID: order.ID}); err != nil {
		logger.Error("failed to alert admins", zap.Error(err))
	}
}
