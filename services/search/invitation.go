package search

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"linguahub/models"
	"linguahub/services/notification"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/sync/semaphore"
	"golang.org/x/time/rate"
)

// InvitationDispatcher sends invitations to matched interpreters. Sends are
// fire-and-forget: the caller never waits and failures are only logged.
type InvitationDispatcher struct {
	notifier      notification.NotificationService
	acceptLinkURL string
	logger        *zap.Logger
	sem           *semaphore.Weighted
	limiter       *rate.Limiter
	inFlight      sync.WaitGroup
}

// NewInvitationDispatcher bounds in-flight sends to concurrency and paces them
// at ratePerSec (0 disables pacing).
func NewInvitationDispatcher(
	notifier notification.NotificationService,
	acceptLinkBaseURL string,
	concurrency int64,
	ratePerSec float64,
	logger *zap.Logger,
) *InvitationDispatcher {
	if concurrency <= 0 {
		concurrency = 1
	}
	limit := rate.Inf
	if ratePerSec > 0 {
		limit = rate.Limit(ratePerSec)
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &InvitationDispatcher{
		notifier:      notifier,
		acceptLinkURL: strings.TrimRight(acceptLinkBaseURL, "/"),
		logger:        logger,
		sem:           semaphore.NewWeighted(concurrency),
		limiter:       rate.NewLimiter(limit, int(concurrency)),
	}
}

// BuildPayload returns the invitation shape for the run's target.
func (d *InvitationDispatcher) BuildPayload(sc SearchContext) models.InvitationPayload {
	switch t := sc.Target.(type) {
	case OrderGroup:
		return models.PreBookedInvitation{OrderGroupID: t.Group.ID}
	case SingleOrder:
		order := t.Order
		if order.SchedulingType != models.SchedulingOnDemand {
			return models.PreBookedInvitation{OrderID: order.ID}
		}
		if order.CommunicationType == models.CommunicationFaceToFace {
			return models.OnDemandFaceToFaceInvitation{OrderID: order.ID}
		}
		return models.OnDemandInvitation{
			OrderID:           order.ID,
			AcceptLink:        d.acceptLink(order.ID),
			ClientDisplayName: order.ClientDisplayName,
			ClientPlatformID:  order.ClientPlatformID,
			CompanyName:       order.CompanyName,
			DurationMinutes:   order.DurationMinutes(),
			CommunicationType: string(order.CommunicationType),
			Topic:             string(order.Topic),
			LanguageFrom:      order.LanguageFrom,
			LanguageTo:        order.LanguageTo,
		}
	}
	panic(fmt.Sprintf("search: unknown target type %T", sc.Target))
}

func (d *InvitationDispatcher) acceptLink(orderID string) string {
	return fmt.Sprintf("%s/interpreter/orders/%s/accept", d.acceptLinkURL, orderID)
}

// Dispatch spawns one send per interpreter and returns immediately.
func (d *InvitationDispatcher) Dispatch(ctx context.Context, sc SearchContext, interpreterIDs []string) {
	payload := d.BuildPayload(sc)
	platformID := sc.Order().PlatformID
	batchID := uuid.NewString()
	// Sends outlive the run.
	sendCtx := context.WithoutCancel(ctx)

	d.logger.Info("dispatching invitations",
		zap.String("batchId", batchID),
		zap.String("orderId", sc.Order().ID),
		zap.String("kind", payload.InvitationKind()),
		zap.Int("count", len(interpreterIDs)))

	for _, id := range interpreterIDs {
		d.inFlight.Add(1)
		go d.send(sendCtx, batchID, id, platformID, payload)
	}
}

func (d *InvitationDispatcher) send(ctx context.Context, batchID, interpreterID, platformID string, payload models.InvitationPayload) {
	defer d.inFlight.Done()
	logger := d.logger.With(zap.String("batchId", batchID), zap.String("interpreterId", interpreterID))

	if err := d.sem.Acquire(ctx, 1); err != nil {
		logger.Error("invitation not sent", zap.Error(err))
		return
	}
	defer d.sem.Release(1)

	if err := d.limiter.Wait(ctx); err != nil {
		logger.Error("invitation not sent", zap.Error(err))
		return
	}
	if err := d.notifier.SendInterpreterInvitation(ctx, interpreterID, platformID, payload); err != nil {
		logger.Error("failed to send invitation", zap.Error(err))
	}
}

// Wait blocks until every dispatched send has finished. Used on shutdown.
func (d *InvitationDispatcher) Wait() {
	d.inFlight.Wait()
}
