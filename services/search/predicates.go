package search

import (
	"fmt"
	"time"

	interpreterRepo "linguahub/database/repository/interpreter"
	"linguahub/models"

	"go.mongodb.org/mongo-driver/bson"
)

type Predicate = interpreterRepo.Predicate

var (
	// Certification levels accepted by the first tier phase.
	highCertificationLevels = []int{models.CertificationLevel3, models.CertificationLevel4}
	// Every level except the entry tier.
	nonEntryCertificationLevels = []int{models.CertificationLevel2, models.CertificationLevel3, models.CertificationLevel4}
)

const (
	businessDayStart = 9 * time.Hour
	businessDayEnd   = 18 * time.Hour
)

// ActiveInterpreters matches live, non-deleted interpreter profiles.
func ActiveInterpreters() Predicate {
	return Predicate{
		Name: "active",
		Filter: bson.D{
			{Key: "status", Value: models.StatusActive},
			{Key: "isActive", Value: true},
			{Key: "deletedAt", Value: nil},
		},
		Match: func(in *models.Interpreter) bool {
			return in.Status == models.StatusActive && in.IsActive && in.DeletedAt == nil
		},
	}
}

// ScopeKind selects the working-hours variant.
type ScopeKind int

const (
	ScopeMarketplace ScopeKind = iota
	ScopeMarketplaceOnDemand
	ScopeCompany
)

func (k ScopeKind) String() string {
	switch k {
	case ScopeMarketplaceOnDemand:
		return "marketplace_on_demand"
	case ScopeCompany:
		return "company"
	default:
		return "marketplace"
	}
}

// ScopeFor picks the working-hours variant for an order.
func ScopeFor(order *models.AppointmentOrder) ScopeKind {
	switch {
	case order.CompanyScope() != "":
		return ScopeCompany
	case order.SchedulingType == models.SchedulingOnDemand:
		return ScopeMarketplaceOnDemand
	default:
		return ScopeMarketplace
	}
}

// WorkingHours requires the exact language pair, an allowed role for the
// requested tier, no temporary block, and the company scope of the variant.
func WorkingHours(order *models.AppointmentOrder, scope ScopeKind, now time.Time) Predicate {
	roles := models.AllowedRoles(order.InterpreterTier)
	company := order.CompanyScope()

	filter := bson.D{
		{Key: "languagePairs", Value: bson.M{"$elemMatch": bson.M{
			"from": order.LanguageFrom,
			"to":   order.LanguageTo,
		}}},
		{Key: "roleName", Value: bson.M{"$in": roles}},
		{Key: "isTemporaryBlocked", Value: false},
	}
	switch scope {
	case ScopeCompany:
		filter = append(filter, bson.E{Key: "companyName", Value: company})
	case ScopeMarketplaceOnDemand:
		filter = append(filter,
			bson.E{Key: "companyName", Value: bson.M{"$in": bson.A{nil, ""}}},
			bson.E{Key: "onDemandWindow.from", Value: bson.M{"$lte": now}},
			bson.E{Key: "onDemandWindow.to", Value: bson.M{"$gte": now}},
		)
	default:
		filter = append(filter, bson.E{Key: "companyName", Value: bson.M{"$in": bson.A{nil, ""}}})
	}

	return Predicate{
		Name:   "working_hours:" + scope.String(),
		Filter: filter,
		Match: func(in *models.Interpreter) bool {
			if in.IsTemporaryBlocked || !contains(roles, in.RoleName) || !speaksPair(in, order.LanguageFrom, order.LanguageTo) {
				return false
			}
			switch scope {
			case ScopeCompany:
				return in.CompanyName == company
			case ScopeMarketplaceOnDemand:
				w := in.OnDemandWindow
				return in.CompanyName == "" && w != nil && !w.From.After(now) && !w.To.Before(now)
			default:
				return in.CompanyName == ""
			}
		},
	}
}

// ServiceCapability requires the channel flag matching the scheduling mode
// and sign-language capability when the pair involves a sign language.
func ServiceCapability(order *models.AppointmentOrder) Predicate {
	group := "preBookedSettings"
	if order.SchedulingType == models.SchedulingOnDemand {
		group = "onlineFor"
	}
	channel := order.CommunicationType
	sign := order.InvolvesSignLanguage()

	filter := bson.D{{Key: group + "." + models.ChannelField(channel), Value: true}}
	if sign {
		filter = append(filter, bson.E{Key: "signLanguage", Value: true})
	}
	return Predicate{
		Name:   "service:" + string(order.SchedulingType) + ":" + string(channel),
		Filter: filter,
		Match: func(in *models.Interpreter) bool {
			flags := in.PreBookedSettings
			if order.SchedulingType == models.SchedulingOnDemand {
				flags = in.OnlineFor
			}
			if !flags.For(channel) {
				return false
			}
			return !sign || in.SignLanguage
		},
	}
}

// WithinRadius keeps interpreters at most radiusKm from lat/lon.
func WithinRadius(lat, lon, radiusKm float64) Predicate {
	return Predicate{
		Name: fmt.Sprintf("geo_radius:%.0fkm", radiusKm),
		Filter: bson.D{{Key: "location", Value: bson.M{"$geoWithin": bson.M{
			"$centerSphere": bson.A{bson.A{lon, lat}, radiusKm / earthRadiusKm},
		}}}},
		Match: func(in *models.Interpreter) bool {
			iLat, iLon, ok := in.Location.LatLon()
			if !ok {
				return false
			}
			return haversine(lat, lon, iLat, iLon) <= radiusKm+geoToleranceKm
		},
	}
}

// TopicCapability requires consecutive interpreting capability for a topic.
func TopicCapability(topic models.Topic) Predicate {
	return Predicate{
		Name:   "topic:" + string(topic),
		Filter: bson.D{{Key: "consecutiveTopics." + string(topic), Value: true}},
		Match: func(in *models.Interpreter) bool {
			return in.ConsecutiveTopics[topic]
		},
	}
}

// GenderIs keeps interpreters of the given gender.
func GenderIs(g models.Gender) Predicate {
	return Predicate{
		Name:   "gender:" + string(g),
		Filter: bson.D{{Key: "gender", Value: g}},
		Match:  func(in *models.Interpreter) bool { return in.Gender == g },
	}
}

// GenderIsNot keeps interpreters of any gender other than g.
func GenderIsNot(g models.Gender) Predicate {
	return Predicate{
		Name:   "gender_not:" + string(g),
		Filter: bson.D{{Key: "gender", Value: bson.M{"$ne": g}}},
		Match:  func(in *models.Interpreter) bool { return in.Gender != g },
	}
}

// CertifiedAt keeps interpreters holding at least one of the levels.
func CertifiedAt(levels []int) Predicate {
	return Predicate{
		Name:   fmt.Sprintf("certification:%v", levels),
		Filter: bson.D{{Key: "certificationLevels", Value: bson.M{"$in": levels}}},
		Match: func(in *models.Interpreter) bool {
			for _, l := range in.CertificationLevels {
				for _, want := range levels {
					if l == want {
						return true
					}
				}
			}
			return false
		},
	}
}

// FreeBetween excludes interpreters with an engagement that blocks the
// window [start, end). An ACCEPTED engagement blocks when it overlaps. A LIVE
// engagement blocks when it overlaps, or when it started before end and its
// business end is still open or at/after start.
func FreeBetween(start, end time.Time) Predicate {
	busy := bson.M{"$or": bson.A{
		bson.M{
			"status": models.EngagementAccepted,
			"start":  bson.M{"$lt": end},
			"end":    bson.M{"$gt": start},
		},
		bson.M{
			"status": models.EngagementLive,
			"start":  bson.M{"$lt": end},
			"end":    bson.M{"$gt": start},
		},
		bson.M{
			"status":          models.EngagementLive,
			"start":           bson.M{"$lt": end},
			"businessEndTime": nil,
		},
		bson.M{
			"status":          models.EngagementLive,
			"start":           bson.M{"$lt": end},
			"businessEndTime": bson.M{"$gte": start},
		},
	}}
	return Predicate{
		Name:   "free_slot",
		Filter: bson.D{{Key: "engagements", Value: bson.M{"$not": bson.M{"$elemMatch": busy}}}},
		Match: func(in *models.Interpreter) bool {
			for _, e := range in.Engagements {
				if blocks(e, start, end) {
					return false
				}
			}
			return true
		},
	}
}

func blocks(e models.Engagement, start, end time.Time) bool {
	overlaps := e.Start.Before(end) && e.End.After(start)
	switch e.Status {
	case models.EngagementAccepted:
		return overlaps
	case models.EngagementLive:
		if overlaps {
			return true
		}
		if !e.Start.Before(end) {
			return false
		}
		return e.BusinessEndTime == nil || !e.BusinessEndTime.Before(start)
	}
	return false
}

// ExcludeUsers drops interpreters whose user id is listed.
func ExcludeUsers(userIDs []string) Predicate {
	return Predicate{
		Name:   "blacklist",
		Filter: bson.D{{Key: "userId", Value: bson.M{"$nin": userIDs}}},
		Match:  func(in *models.Interpreter) bool { return !contains(userIDs, in.UserID) },
	}
}

// WithinBusinessHours keeps interpreters for whom both start and end fall
// within 09:00–18:00 of their own timezone, boundaries included.
func WithinBusinessHours(start, end time.Time) Predicate {
	tz := bson.M{"$cond": bson.A{
		bson.M{"$in": bson.A{bson.M{"$ifNull": bson.A{"$timezone", ""}}, bson.A{""}}},
		"UTC",
		"$timezone",
	}}
	clock := func(t time.Time) bson.M {
		return bson.M{"$dateToString": bson.M{"format": "%H:%M:%S", "date": t, "timezone": tz}}
	}
	lo, hi := clockString(businessDayStart), clockString(businessDayEnd)

	return Predicate{
		Name: "timezone_rate",
		Filter: bson.D{{Key: "$expr", Value: bson.M{"$and": bson.A{
			bson.M{"$gte": bson.A{clock(start), lo}},
			bson.M{"$lte": bson.A{clock(start), hi}},
			bson.M{"$gte": bson.A{clock(end), lo}},
			bson.M{"$lte": bson.A{clock(end), hi}},
		}}}},
		Match: func(in *models.Interpreter) bool {
			loc, err := loadTimezone(in.Timezone)
			if err != nil {
				return false
			}
			return inBusinessHours(start.In(loc)) && inBusinessHours(end.In(loc))
		},
	}
}

func loadTimezone(name string) (*time.Location, error) {
	if name == "" {
		return time.UTC, nil
	}
	return time.LoadLocation(name)
}

func inBusinessHours(local time.Time) bool {
	h, m, s := local.Clock()
	sinceMidnight := time.Duration(h)*time.Hour + time.Duration(m)*time.Minute + time.Duration(s)*time.Second
	return sinceMidnight >= businessDayStart && sinceMidnight <= businessDayEnd
}

func clockString(d time.Duration) string {
	return fmt.Sprintf("%02d:%02d:00", int(d.Hours()), int(d.Minutes())%60)
}

func speaksPair(in *models.Interpreter, from, to string) bool {
	for _, p := range in.LanguagePairs {
		if p.From == from && p.To == to {
			return true
		}
	}
	return false
}

func contains(list []string, v string) bool {
	for _, s := range list {
		if s == v {
			return true
		}
	}
	return false
}
