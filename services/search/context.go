package search

import (
	"fmt"
	"time"

	"linguahub/models"
)

// Target is what a search run is for: a single order or an order group.
// The only implementations are SingleOrder and OrderGroup.
type Target interface {
	primaryOrder() *models.AppointmentOrder
	previousExecution() models.SearchExecution
}

// SingleOrder targets one appointment order.
type SingleOrder struct {
	Order *models.AppointmentOrder
}

func (t SingleOrder) primaryOrder() *models.AppointmentOrder { return t.Order }

func (t SingleOrder) previousExecution() models.SearchExecution { return t.Order.Search }

// OrderGroup targets a multi-day group. Order is the group's representative
// order and supplies the search criteria.
type OrderGroup struct {
	Order *models.AppointmentOrder
	Group *models.AppointmentOrderGroup
}

func (t OrderGroup) primaryOrder() *models.AppointmentOrder { return t.Order }

func (t OrderGroup) previousExecution() models.SearchExecution { return t.Group.Search }

// SearchContext is one search run's input.
type SearchContext struct {
	Target   Target
	CacheKey string

	// SetRedFlags escalates to operators when a step yields no candidates.
	SetRedFlags bool
	// SendNotifications tells the client when criteria were relaxed, and
	// enables the different-gender fallback.
	SendNotifications bool
	// IgnoreAvailability skips every free-slot check.
	IgnoreAvailability bool

	// Now is the run's clock; zero means time.Now().
	Now time.Time
}

// Order returns the order whose criteria drive the search.
func (c SearchContext) Order() *models.AppointmentOrder {
	return c.Target.primaryOrder()
}

// SchedulingType returns the scheduling mode of the run.
func (c SearchContext) SchedulingType() models.SchedulingType {
	return c.Order().SchedulingType
}

func (c SearchContext) now() time.Time {
	if c.Now.IsZero() {
		return time.Now()
	}
	return c.Now
}

// Validate checks that exactly one target shape is populated.
func (c SearchContext) Validate() error {
	switch t := c.Target.(type) {
	case SingleOrder:
		if t.Order == nil {
			return newSearchError(CodeInvalidContext, "single-order target has no order")
		}
	case OrderGroup:
		if t.Order == nil || t.Group == nil {
			return newSearchError(CodeInvalidContext, "order-group target needs both the group and its order")
		}
	case nil:
		return newSearchError(CodeInvalidContext, "search context has no target")
	default:
		return newSearchError(CodeInvalidContext, fmt.Sprintf("unknown target type %T", t))
	}
	return nil
}

// OrderCacheKey and GroupCacheKey build the dedup key of a run.
func OrderCacheKey(orderID string) string { return "search:order:" + orderID }

func GroupCacheKey(groupID string) string { return "search:group:" + groupID }

// Outcome is the terminal state of a run.
type Outcome string

const (
	OutcomeMatched   Outcome = "matched"
	OutcomeEscalated Outcome = "escalated"
	OutcomeDeferred  Outcome = "deferred"
)

// TierResult is the outcome of the two-phase certification search.
type TierResult int

const (
	TierUnknown TierResult = iota
	TierHigh
	TierLow
	TierNoMatch
)

func (t TierResult) String() string {
	switch t {
	case TierHigh:
		return "TIER_HIGH"
	case TierLow:
		return "TIER_LOW"
	case TierNoMatch:
		return "NO_MATCH"
	default:
		return "UNKNOWN"
	}
}
