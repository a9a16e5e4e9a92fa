package adminRepo

import (
	"context"
	"errors"

	"linguahub/models"
)

var ErrAdminInfoNotFound = errors.New("appointment admin info not found")

// AdminInfoRepository reads and flags the operator record of an appointment.
type AdminInfoRepository interface {
	// GetByAppointmentID returns ErrAdminInfoNotFound when the record is missing.
	GetByAppointmentID(ctx context.Context, appointmentID string) (*models.AdminInfo, error)
	// SetRedFlag enables the red flag and stores the message.
	SetRedFlag(ctx context.Context, adminInfoID, message string) error
}

// AdminDirectory lists platform administrators.
type AdminDirectory interface {
	ListAdminIDs(ctx context.Context) ([]string, error)
}
