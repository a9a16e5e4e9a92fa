package search

import (
	"context"

	"go.uber.org/zap"
)

// searchTier runs the two-phase certification search from the run's pool.
// Phase A keeps the top levels. Phase B drops only the entry level and, for
// sensitive topics with withAvailability set, also requires a free slot. The
// returned pool is the run's pool unchanged on TierNoMatch.
func (r *run) searchTier(ctx context.Context, withAvailability bool) (TierResult, Pool, bool, error) {
	base := r.pool.Clone()

	pool, ok, err := try(ctx, base, CertifiedAt(highCertificationLevels))
	if err != nil {
		return TierUnknown, base, false, err
	}
	if ok {
		return TierHigh, pool, false, nil
	}

	phaseB := []Predicate{CertifiedAt(nonEntryCertificationLevels)}
	freeSlot := withAvailability && r.order.Topic.IsSensitive()
	if freeSlot {
		phaseB = append(phaseB, FreeBetween(r.order.ScheduledStartTime, r.order.ScheduledEndTime))
	}
	pool, ok, err = try(ctx, base, phaseB...)
	if err != nil {
		return TierUnknown, base, false, err
	}
	if ok {
		return TierLow, pool, freeSlot, nil
	}
	return TierNoMatch, base, false, nil
}

func (e *DefaultSearchEngine) stepCertificationTier(ctx context.Context, r *run) (stepResult, error) {
	tier, pool, freeSlot, err := r.searchTier(ctx, !r.sc.IgnoreAvailability)
	if err != nil {
		return stepResult{}, err
	}
	r.tier = tier

	if tier == TierNoMatch {
		if r.order.Topic.IsSensitive() {
			return empty(msgTierSensitive(r.order.Topic)), nil
		}
		r.logger.Debug("no certified interpreters, continuing uncertified")
		return passed(), nil
	}
	r.pool = pool
	r.freeSlotApplied = r.freeSlotApplied || freeSlot
	r.logger.Debug("certification tier resolved", zap.String("tier", tier.String()))
	return passed(), nil
}
