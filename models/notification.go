package models

import "strconv"

// ChangeReason explains why a search relaxed the client's request.
type ChangeReason string

const (
	ChangeReasonTopic          ChangeReason = "TOPIC"
	ChangeReasonGender         ChangeReason = "GENDER"
	ChangeReasonGenderAndTopic ChangeReason = "GENDER_AND_TOPIC"
)

// ClientChangeNotice tells a client their order was matched on relaxed criteria.
type ClientChangeNotice struct {
	OrderID string            `json:"orderId"`
	Reason  ChangeReason      `json:"reason"`
	Payload map[string]string `json:"payload,omitempty"`
}

// AdminAlert references the order an operator must look at.
type AdminAlert struct {
	OrderID string `json:"orderId"`
}

// InvitationPayload is one of the three invitation shapes sent to a matched
// interpreter.
type InvitationPayload interface {
	InvitationKind() string
	Data() map[string]string
}

// OnDemandFaceToFaceInvitation is handled through an admin-mediated flow and
// carries no acceptance link.
type OnDemandFaceToFaceInvitation struct {
	OrderID string `json:"orderId"`
}

func (OnDemandFaceToFaceInvitation) InvitationKind() string { return "on_demand_face_to_face" }

func (p OnDemandFaceToFaceInvitation) Data() map[string]string {
	return map[string]string{"type": p.InvitationKind(), "orderId": p.OrderID}
}

type OnDemandInvitation struct {
	OrderID           string `json:"orderId"`
	AcceptLink        string `json:"acceptLink"`
	ClientDisplayName string `json:"clientDisplayName"`
	ClientPlatformID  string `json:"clientPlatformId"`
	CompanyName       string `json:"companyName"`
	DurationMinutes   int    `json:"durationMinutes"`
	CommunicationType string `json:"communicationType"`
	Topic             string `json:"topic"`
	LanguageFrom      string `json:"languageFrom"`
	LanguageTo        string `json:"languageTo"`
}

func (OnDemandInvitation) InvitationKind() string { return "on_demand" }

func (p OnDemandInvitation) Data() map[string]string {
	return map[string]string{
		"type":              p.InvitationKind(),
		"orderId":           p.OrderID,
		"acceptLink":        p.AcceptLink,
		"clientDisplayName": p.ClientDisplayName,
		"clientPlatformId":  p.ClientPlatformID,
		"companyName":       p.CompanyName,
		"durationMinutes":   strconv.Itoa(p.DurationMinutes),
		"communicationType": p.CommunicationType,
		"topic":             p.Topic,
		"languageFrom":      p.LanguageFrom,
		"languageTo":        p.LanguageTo,
	}
}

// PreBookedInvitation references exactly one of OrderID or OrderGroupID.
type PreBookedInvitation struct {
	OrderID      string `json:"orderId,omitempty"`
	OrderGroupID string `json:"orderGroupId,omitempty"`
}

func (PreBookedInvitation) InvitationKind() string { return "pre_booked" }

func (p PreBookedInvitation) Data() map[string]string {
	data := map[string]string{"type": p.InvitationKind()}
	if p.OrderGroupID != "" {
		data["orderGroupId"] = p.OrderGroupID
	} else {
		data["orderId"] = p.OrderID
	}
	return data
}
