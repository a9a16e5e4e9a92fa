package search

import (
	"context"

	"linguahub/models"
)

// Topic cascade branches.
const (
	topicBranchSpecific = iota + 1
	topicBranchGeneral
	topicBranchGeneralPreferredGender
	topicBranchGeneralOtherGender
)

// stepTopic requires consecutive capability for the order's topic. For LEGAL
// and MEDICAL it falls back to general-topic interpreters, optionally split by
// the preferred gender. Every branch starts from the pool as it was before
// the step.
func (e *DefaultSearchEngine) stepTopic(ctx context.Context, r *run) (stepResult, error) {
	if r.order.InterpretingType != models.InterpretingConsecutive {
		return skipped(), nil
	}
	topic := r.order.Topic
	base := r.pool.Clone()

	pool, ok, err := try(ctx, base, TopicCapability(topic))
	if err != nil {
		return stepResult{}, err
	}
	if ok {
		r.pool, r.topicBranch = pool, topicBranchSpecific
		return passed(), nil
	}
	if !topic.IsSensitive() {
		return empty(msgTopic(topic)), nil
	}

	general := TopicCapability(models.TopicGeneral)
	relaxed := map[string]string{"requestedTopic": string(topic), "appliedTopic": string(models.TopicGeneral)}

	pref := r.order.PreferredGender
	if pref == nil {
		pool, ok, err = try(ctx, base, general)
		if err != nil {
			return stepResult{}, err
		}
		if !ok {
			return empty(msgTopicGeneral(topic)), nil
		}
		r.pool, r.topicBranch = pool, topicBranchGeneral
		e.notifyClient(ctx, r, models.ChangeReasonTopic, relaxed)
		return passed(), nil
	}

	// Matches the preference yet still notifies about the topic.
	pool, ok, err = try(ctx, base, general, GenderIs(*pref))
	if err != nil {
		return stepResult{}, err
	}
	if ok {
		r.pool, r.topicBranch, r.genderApplied = pool, topicBranchGeneralPreferredGender, true
		e.notifyClient(ctx, r, models.ChangeReasonTopic, relaxed)
		return passed(), nil
	}

	pool, ok, err = try(ctx, base, general, GenderIsNot(*pref))
	if err != nil {
		return stepResult{}, err
	}
	if !ok {
		return empty(msgTopicGenderExhausted(topic, *pref)), nil
	}
	r.pool, r.topicBranch, r.genderApplied = pool, topicBranchGeneralOtherGender, true
	relaxed["preferredGender"] = string(*pref)
	e.notifyClient(ctx, r, models.ChangeReasonGenderAndTopic, relaxed)
	return passed(), nil
}
