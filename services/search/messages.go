package search

import (
	"fmt"

	"linguahub/models"
)

// Red flag messages. Each names the step and, where relevant, the branch that
// ran out of candidates.

func msgWorkingHours(o *models.AppointmentOrder, scope ScopeKind) string {
	switch scope {
	case ScopeCompany:
		return fmt.Sprintf("Working hours step: no interpreters of company %q for %s -> %s (%s).",
			o.CompanyScope(), o.LanguageFrom, o.LanguageTo, o.InterpreterTier)
	case ScopeMarketplaceOnDemand:
		return fmt.Sprintf("Working hours step: no marketplace interpreters for %s -> %s (%s) within on-demand working hours.",
			o.LanguageFrom, o.LanguageTo, o.InterpreterTier)
	default:
		return fmt.Sprintf("Working hours step: no marketplace interpreters for %s -> %s (%s).",
			o.LanguageFrom, o.LanguageTo, o.InterpreterTier)
	}
}

func msgService(o *models.AppointmentOrder) string {
	if o.InvolvesSignLanguage() {
		return fmt.Sprintf("Service step: no sign language interpreters available for %s %s.", o.SchedulingType, o.CommunicationType)
	}
	return fmt.Sprintf("Service step: no interpreters available for %s %s.", o.SchedulingType, o.CommunicationType)
}

func msgFaceToFaceNoAddress() string {
	return "Face to face step: the order has no address."
}

func msgFaceToFace(radiusKm float64) string {
	return fmt.Sprintf("Face to face step: no interpreters within %.0f km of the appointment address.", radiusKm)
}

func msgTopic(t models.Topic) string {
	return fmt.Sprintf("Topic step: no interpreters with consecutive %s capability.", t)
}

func msgTopicGeneral(t models.Topic) string {
	return fmt.Sprintf("Topic step: no interpreters with consecutive %s or %s capability.", t, models.TopicGeneral)
}

func msgTopicGenderExhausted(t models.Topic, g models.Gender) string {
	return fmt.Sprintf("Topic step: no interpreters with consecutive %s capability, nor %s capability of %s or any other gender.",
		t, models.TopicGeneral, g)
}

func msgGender(g models.Gender) string {
	return fmt.Sprintf("Gender step: no %s interpreters available.", g)
}

func msgGenderExhausted(g models.Gender) string {
	return fmt.Sprintf("Gender step: no %s interpreters and no interpreters of another gender available.", g)
}

func msgTierSensitive(t models.Topic) string {
	return fmt.Sprintf("Certification step: no certified interpreters free for the %s appointment.", t)
}

func msgFreeSlot() string {
	return "Free slot step: every remaining interpreter is busy at the requested time."
}

func msgBlacklist() string {
	return "Blacklist step: every remaining interpreter is blocked with the client."
}

func msgTimezoneRate() string {
	return "Timezone rate step: the appointment falls outside business hours for every remaining interpreter."
}

func msgFinal() string {
	return "Final step: no interpreters matched."
}
