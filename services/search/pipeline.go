package search

import (
	"context"
	"fmt"
	"time"

	blockRepo "linguahub/database/repository/block"
	interpreterRepo "linguahub/database/repository/interpreter"
	"linguahub/models"
	"linguahub/services/notification"

	"go.uber.org/zap"
)

// SearchEngine runs the interpreter search for one order or order group.
type SearchEngine interface {
	RunSearch(ctx context.Context, sc SearchContext) (Outcome, error)
}

// DefaultSearchEngine narrows the candidate pool step by step, escalates or
// defers when a step runs dry, and invites whoever survives.
type DefaultSearchEngine struct {
	Store        interpreterRepo.CandidateStore
	Blocks       blockRepo.BlockRepository
	Notifier     notification.NotificationService
	Escalation   *EscalationReporter
	Invitations  *InvitationDispatcher
	Results      *ResultPersistence
	Logger       *zap.Logger
	RestartDelay time.Duration
}

type stepStatus int

const (
	stepPassed stepStatus = iota
	stepSkipped
	// No candidates left.
	stepEmpty
	// The order is missing data the step needs.
	stepFault
	// End the run without a red flag.
	stepAbort
)

type stepResult struct {
	status  stepStatus
	message string
}

func passed() stepResult { return stepResult{status: stepPassed} }
func skipped() stepResult { return stepResult{status: stepSkipped} }
func empty(message string) stepResult { return stepResult{status: stepEmpty, message: message} }
func fault(message string) stepResult { return stepResult{status: stepFault, message: message} }
func aborted(message string) stepResult { return stepResult{status: stepAbort, message: message} }

type step struct {
	name string
	fn   func(ctx context.Context, r *run) (stepResult, error)
}

// run is the mutable state of one pipeline execution.
type run struct {
	sc     SearchContext
	order  *models.AppointmentOrder
	pool   Pool
	now    time.Time
	logger *zap.Logger

	genderApplied   bool
	freeSlotApplied bool
	tier            TierResult
	topicBranch     int

	// Steps that ran, in order.
	trail      []string
	failedStep string
	message    string
	matched    []string
}

// try narrows from to preds and reports whether any candidate remains. from
// is never modified.
func try(ctx context.Context, from Pool, preds ...Predicate) (Pool, bool, error) {
	next := from.Where(preds...)
	n, err := next.Count(ctx)
	if err != nil {
		return from, false, err
	}
	return next, n > 0, nil
}

// narrow applies preds to the run's pool only if candidates remain.
func (r *run) narrow(ctx context.Context, preds ...Predicate) (bool, error) {
	next, ok, err := try(ctx, r.pool, preds...)
	if err != nil || !ok {
		return false, err
	}
	r.pool = next
	return true, nil
}

func (e *DefaultSearchEngine) steps() []step {
	return []step{
		{"working_hours", e.stepWorkingHours},
		{"service", e.stepService},
		{"face_to_face", e.stepFaceToFace},
		{"topic", e.stepTopic},
		{"gender", e.stepGender},
		{"certification_tier", e.stepCertificationTier},
		{"free_slot", e.stepFreeSlot},
		{"blacklist", e.stepBlacklist},
		{"timezone_rate", e.stepTimezoneRate},
	}
}

// RunSearch executes one search run and persists its result. A returned error
// before persistence means the context was invalid or the candidate store
// failed; nothing was written and the run's cache key was released. A failed
// write returns the run's outcome with an error wrapping ErrResultNotSaved.
func (e *DefaultSearchEngine) RunSearch(ctx context.Context, sc SearchContext) (Outcome, error) {
	if err := sc.Validate(); err != nil {
		e.Results.Release(ctx, sc.CacheKey)
		return "", err
	}

	r, outcome, err := e.execute(ctx, sc)
	if err != nil {
		e.Results.Release(ctx, sc.CacheKey)
		return "", err
	}

	// Invitations go out only once the result is stored, so a retried run
	// never invites twice.
	if err := e.Results.Persist(ctx, sc, e.execution(sc, outcome, r.matched)); err != nil {
		return outcome, err
	}
	if outcome == OutcomeMatched {
		e.Invitations.Dispatch(ctx, sc, r.matched)
	}

	r.logger.Info("search run finished",
		zap.String("outcome", string(outcome)),
		zap.Strings("steps", r.trail),
		zap.Strings("predicates", r.pool.Names()),
		zap.String("failedStep", r.failedStep),
		zap.String("tier", r.tier.String()),
		zap.Int("matched", len(r.matched)))
	return outcome, nil
}

func (e *DefaultSearchEngine) execute(ctx context.Context, sc SearchContext) (*run, Outcome, error) {
	order := sc.Order()
	r := &run{
		sc:     sc,
		order:  order,
		pool:   BasePool(e.Store),
		now:    sc.now(),
		logger: e.logger().With(zap.String("orderId", order.ID), zap.String("cacheKey", sc.CacheKey)),
	}

	for _, s := range e.steps() {
		res, err := s.fn(ctx, r)
		if err != nil {
			return r, "", fmt.Errorf("search step %s: %w", s.name, err)
		}
		if res.status == stepSkipped {
			continue
		}
		r.trail = append(r.trail, s.name)

		switch res.status {
		case stepEmpty:
			r.failedStep, r.message = s.name, res.message
			return r, e.fail(ctx, r), nil
		case stepFault:
			r.failedStep, r.message = s.name, res.message
			r.logger.Error("order precondition violated", zap.String("step", s.name), zap.String("message", res.message))
			return r, e.fail(ctx, r), nil
		case stepAbort:
			r.failedStep, r.message = s.name, res.message
			r.logger.Error("search run aborted", zap.String("step", s.name), zap.String("reason", res.message))
			return r, OutcomeDeferred, nil
		}
	}

	r.trail = append(r.trail, "final")
	ids, err := r.pool.MaterializeIDs(ctx)
	if err != nil {
		return r, "", fmt.Errorf("search step final: %w", err)
	}
	if len(ids) == 0 {
		r.failedStep, r.message = "final", msgFinal()
		return r, e.fail(ctx, r), nil
	}
	r.matched = ids
	return r, OutcomeMatched, nil
}

// fail ends a run that ran out of candidates.
func (e *DefaultSearchEngine) fail(ctx context.Context, r *run) Outcome {
	if !r.sc.SetRedFlags {
		r.logger.Info("no candidates, deferring", zap.String("step", r.failedStep), zap.String("message", r.message))
		return OutcomeDeferred
	}
	e.Escalation.SetRedFlag(ctx, r.order, r.message)
	return OutcomeEscalated
}

// execution builds the single write-back of a run.
func (e *DefaultSearchEngine) execution(sc SearchContext, outcome Outcome, matched []string) models.SearchExecution {
	prev := sc.Target.previousExecution()
	exec := models.SearchExecution{
		IsFirstSearchCompleted:  true,
		IsSecondSearchCompleted: prev.IsSecondSearchCompleted || prev.IsFirstSearchCompleted,
		MatchedInterpreterIDs:   matched,
	}
	if exec.MatchedInterpreterIDs == nil {
		exec.MatchedInterpreterIDs = []string{}
	}
	if outcome == OutcomeDeferred {
		restart := sc.now().Add(e.RestartDelay)
		exec.IsSearchNeeded = true
		exec.TimeToRestart = &restart
	}
	return exec
}

func (e *DefaultSearchEngine) notifyClient(ctx context.Context, r *run, reason models.ChangeReason, payload map[string]string) {
	if !r.sc.SendNotifications {
		return
	}
	if r.order.ClientID == "" {
		r.logger.Error("order has no client id, change notification not sent", zap.String("reason", string(reason)))
		return
	}
	notice := models.ClientChangeNotice{OrderID: r.order.ID, Reason: reason, Payload: payload}
	if err := e.Notifier.SendClientChangeNotification(ctx, r.order.ClientID, r.order.PlatformID, notice); err != nil {
		r.logger.Error("failed to send client change notification", zap.String("reason", string(reason)), zap.Error(err))
	}
}

func (e *DefaultSearchEngine) logger() *zap.Logger {
	if e.Logger == nil {
		return zap.NewNop()
	}
	return e.Logger
}

func (e *DefaultSearchEngine) stepWorkingHours(ctx context.Context, r *run) (stepResult, error) {
	scope := ScopeFor(r.order)
	ok, err := r.narrow(ctx, WorkingHours(r.order, scope, r.now))
	if err != nil {
		return stepResult{}, err
	}
	if !ok {
		return empty(msgWorkingHours(r.order, scope)), nil
	}
	return passed(), nil
}

func (e *DefaultSearchEngine) stepService(ctx context.Context, r *run) (stepResult, error) {
	ok, err := r.narrow(ctx, ServiceCapability(r.order))
	if err != nil {
		return stepResult{}, err
	}
	if !ok {
		return empty(msgService(r.order)), nil
	}
	return passed(), nil
}

func (e *DefaultSearchEngine) stepFaceToFace(ctx context.Context, r *run) (stepResult, error) {
	if r.order.CommunicationType != models.CommunicationFaceToFace {
		return skipped(), nil
	}
	addr := r.order.Address
	if addr == nil {
		return fault(msgFaceToFaceNoAddress()), nil
	}
	radius := RadiusFor(r.order.SchedulingType)
	ok, err := r.narrow(ctx, WithinRadius(addr.Latitude, addr.Longitude, radius))
	if err != nil {
		return stepResult{}, err
	}
	if !ok {
		return empty(msgFaceToFace(radius)), nil
	}
	return passed(), nil
}

func (e *DefaultSearchEngine) stepGender(ctx context.Context, r *run) (stepResult, error) {
	pref := r.order.PreferredGender
	if pref == nil || r.genderApplied {
		return skipped(), nil
	}

	ok, err := r.narrow(ctx, GenderIs(*pref))
	if err != nil {
		return stepResult{}, err
	}
	if ok {
		return passed(), nil
	}
	if !r.sc.SendNotifications {
		return empty(msgGender(*pref)), nil
	}

	ok, err = r.narrow(ctx, GenderIsNot(*pref))
	if err != nil {
		return stepResult{}, err
	}
	if !ok {
		return empty(msgGenderExhausted(*pref)), nil
	}
	e.notifyClient(ctx, r, models.ChangeReasonGender, map[string]string{"preferredGender": string(*pref)})
	return passed(), nil
}

func (e *DefaultSearchEngine) stepFreeSlot(ctx context.Context, r *run) (stepResult, error) {
	if r.sc.IgnoreAvailability || r.freeSlotApplied {
		return skipped(), nil
	}
	ok, err := r.narrow(ctx, FreeBetween(r.order.ScheduledStartTime, r.order.ScheduledEndTime))
	if err != nil {
		return stepResult{}, err
	}
	if !ok {
		return empty(msgFreeSlot()), nil
	}
	return passed(), nil
}

func (e *DefaultSearchEngine) stepBlacklist(ctx context.Context, r *run) (stepResult, error) {
	if r.order.ClientID == "" {
		return aborted("order has no client id"), nil
	}
	blocked, err := e.Blocks.ActiveCounterparts(ctx, r.order.ClientID)
	if err != nil {
		return aborted(fmt.Sprintf("blacklist lookup failed: %v", err)), nil
	}
	if len(blocked) == 0 {
		return passed(), nil
	}

	ok, err := r.narrow(ctx, ExcludeUsers(blocked))
	if err != nil {
		return stepResult{}, err
	}
	if !ok {
		return empty(msgBlacklist()), nil
	}
	return passed(), nil
}

func (e *DefaultSearchEngine) stepTimezoneRate(ctx context.Context, r *run) (stepResult, error) {
	ok, err := r.narrow(ctx, WithinBusinessHours(r.order.ScheduledStartTime, r.order.ScheduledEndTime))
	if err != nil {
		return stepResult{}, err
	}
	if !ok {
		return empty(msgTimezoneRate()), nil
	}
	return passed(), nil
}
