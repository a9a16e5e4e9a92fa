package models

import (
	"strings"
	"time"
)

type SchedulingType string

const (
	SchedulingOnDemand  SchedulingType = "ON_DEMAND"
	SchedulingPreBooked SchedulingType = "PRE_BOOKED"
)

type CommunicationType string

const (
	CommunicationAudio      CommunicationType = "AUDIO"
	CommunicationVideo      CommunicationType = "VIDEO"
	CommunicationFaceToFace CommunicationType = "FACE_TO_FACE"
)

type InterpretingType string

const (
	InterpretingConsecutive  InterpretingType = "CONSECUTIVE"
	InterpretingSimultaneous InterpretingType = "SIMULTANEOUS"
	InterpretingSignLanguage InterpretingType = "SIGN_LANGUAGE"
	InterpretingEscort       InterpretingType = "ESCORT"
)

type Topic string

const (
	TopicGeneral     Topic = "GENERAL"
	TopicLegal       Topic = "LEGAL"
	TopicMedical     Topic = "MEDICAL"
	TopicBusiness    Topic = "BUSINESS"
	TopicEducation   Topic = "EDUCATION"
	TopicImmigration Topic = "IMMIGRATION"
)

// IsSensitive reports whether the topic gates assignment on certification and
// allows the general-topic fallback.
func (t Topic) IsSensitive() bool {
	return t == TopicLegal || t == TopicMedical
}

type Gender string

const (
	GenderMale   Gender = "MALE"
	GenderFemale Gender = "FEMALE"
	GenderOther  Gender = "OTHER"
)

// InterpreterTier is the kind of interpreter the client asked for.
type InterpreterTier string

const (
	TierProfessional  InterpreterTier = "PROFESSIONAL"
	TierInterpreter   InterpreterTier = "INTERPRETER"
	TierLanguageBuddy InterpreterTier = "LANGUAGE_BUDDY"
)

// Address is the face-to-face meeting point of an order.
type Address struct {
	Line      string  `bson:"line" json:"line,omitempty"`
	Latitude  float64 `bson:"latitude" json:"latitude"`
	Longitude float64 `bson:"longitude" json:"longitude"`
}

// AppointmentOrder is one request for an interpreter attached to an appointment.
type AppointmentOrder struct {
	ID                       string            `bson:"id" json:"id"`
	PlatformID               string            `bson:"platformId" json:"platformId"`
	AppointmentID            string            `bson:"appointmentId" json:"appointmentId"`
	OrderGroupID             string            `bson:"orderGroupId,omitempty" json:"orderGroupId,omitempty"`
	ClientID                 string            `bson:"clientId" json:"clientId"`
	ClientPlatformID         string            `bson:"clientPlatformId" json:"clientPlatformId"`
	ClientDisplayName        string            `bson:"clientDisplayName" json:"clientDisplayName"`
	CompanyName              string            `bson:"companyName,omitempty" json:"companyName,omitempty"`
	MainCorporateCompanyName string            `bson:"mainCorporateCompanyName,omitempty" json:"mainCorporateCompanyName,omitempty"`
	UseCompanyInterpreters   bool              `bson:"useCompanyInterpreters" json:"useCompanyInterpreters"`
	LanguageFrom             string            `bson:"languageFrom" json:"languageFrom"`
	LanguageTo               string            `bson:"languageTo" json:"languageTo"`
	SchedulingType           SchedulingType    `bson:"schedulingType" json:"schedulingType"`
	CommunicationType        CommunicationType `bson:"communicationType" json:"communicationType"`
	InterpretingType         InterpretingType  `bson:"interpretingType" json:"interpretingType"`
	Topic                    Topic             `bson:"topic" json:"topic"`
	InterpreterTier          InterpreterTier   `bson:"interpreterTier" json:"interpreterTier"`
	PreferredGender          *Gender           `bson:"preferredGender,omitempty" json:"preferredGender,omitempty"`
	ScheduledStartTime       time.Time         `bson:"scheduledStartTime" json:"scheduledStartTime"`
	ScheduledEndTime         time.Time         `bson:"scheduledEndTime" json:"scheduledEndTime"`
	Address                  *Address          `bson:"address,omitempty" json:"address,omitempty"`
	Search                   SearchExecution   `bson:"search" json:"search"`
	CreatedAt                time.Time         `bson:"createdAt" json:"createdAt"`
	UpdatedAt                time.Time         `bson:"updatedAt" json:"updatedAt"`
}

// AppointmentOrderGroup is a batch of orders booked as one multi-day appointment.
type AppointmentOrderGroup struct {
	ID         string          `bson:"id" json:"id"`
	PlatformID string          `bson:"platformId" json:"platformId"`
	OrderIDs   []string        `bson:"orderIds" json:"orderIds"`
	Search     SearchExecution `bson:"search" json:"search"`
	UpdatedAt  time.Time       `bson:"updatedAt" json:"updatedAt"`
}

// CompanyScope returns the company whose own interpreters serve the order, or
// "" for a marketplace-wide search.
func (o *AppointmentOrder) CompanyScope() string {
	if !o.UseCompanyInterpreters {
		return ""
	}
	if o.MainCorporateCompanyName != "" {
		return o.MainCorporateCompanyName
	}
	return o.CompanyName
}

// DurationMinutes is the length of the requested window.
func (o *AppointmentOrder) DurationMinutes() int {
	return int(o.ScheduledEndTime.Sub(o.ScheduledStartTime) / time.Minute)
}

// InvolvesSignLanguage reports whether either side of the pair is a sign language.
func (o *AppointmentOrder) InvolvesSignLanguage() bool {
	return IsSignLanguage(o.LanguageFrom) || IsSignLanguage(o.LanguageTo)
}

var signLanguages = map[string]bool{
	"AUSLAN": true,
	"ASL":    true,
	"BSL":    true,
	"ISL":    true,
	"NZSL":   true,
	"LSF":    true,
	"DGS":    true,
}

// IsSignLanguage reports whether the language code names a sign language.
func IsSignLanguage(code string) bool {
	return signLanguages[strings.ToUpper(code)]
}
