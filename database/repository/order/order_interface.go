package orderRepo

import (
	"context"
	"errors"
	"time"

	"linguahub/models"
)

var (
	ErrOrderNotFound = errors.New("appointment order not found")
	ErrGroupNotFound = errors.New("appointment order group not found")
)

// DueSearch names an order or an order group waiting for a search run.
// Exactly one of OrderID and OrderGroupID is set.
type DueSearch struct {
	OrderID      string
	OrderGroupID string
}

// OrderRepository defines the order data access used by the search engine.
type OrderRepository interface {
	// GetByID retrieves an order by id.
	GetByID(ctx context.Context, id string) (*models.AppointmentOrder, error)
	// GetGroupByID retrieves an order group by id.
	GetGroupByID(ctx context.Context, id string) (*models.AppointmentOrderGroup, error)
	// UpdateSearchExecution writes the search state of a single order.
	UpdateSearchExecution(ctx context.Context, orderID string, exec models.SearchExecution) error
	// UpdateGroupSearchExecution writes the search state of an order group.
	UpdateGroupSearchExecution(ctx context.Context, groupID string, exec models.SearchExecution) error
	// FindDueSearches lists orders and groups whose search is needed and whose
	// restart time has passed. Orders that belong to a group are reported through the group.
	FindDueSearches(ctx context.Context, now time.Time, limit int64) ([]DueSearch, error)
}
