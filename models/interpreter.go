package models

import "time"

// Role names an interpreter can hold.
const (
	RoleProfessionalInterpreter = "ind-professional-interpreter"
	RoleInterpreter             = "ind-interpreter"
	RoleLanguageBuddy           = "ind-language-buddy"
	RoleCorporateInterpreter    = "corporate-interpreter"
)

// AllowedRoles returns the interpreter role names that may serve an order
// requesting the given tier. A higher tier can always serve a lower one.
func AllowedRoles(tier InterpreterTier) []string {
	switch tier {
	case TierProfessional:
		return []string{RoleProfessionalInterpreter, RoleCorporateInterpreter}
	case TierLanguageBuddy:
		return []string{RoleProfessionalInterpreter, RoleInterpreter, RoleLanguageBuddy, RoleCorporateInterpreter}
	default:
		return []string{RoleProfessionalInterpreter, RoleInterpreter, RoleCorporateInterpreter}
	}
}

// Certification levels (NAATI).
const (
	CertificationLevel1 = 1
	CertificationLevel2 = 2
	CertificationLevel3 = 3
	CertificationLevel4 = 4
)

// GeoPoint represents a GeoJSON Point.
type GeoPoint struct {
	Type        string    `bson:"type" json:"type"`               // Always "Point"
	Coordinates []float64 `bson:"coordinates" json:"coordinates"` // [longitude, latitude]
}

// NewGeoPoint builds a GeoJSON point from latitude and longitude.
func NewGeoPoint(lat, lon float64) GeoPoint {
	return GeoPoint{Type: "Point", Coordinates: []float64{lon, lat}}
}

// LatLon returns the point as latitude, longitude. ok is false when unset.
func (g GeoPoint) LatLon() (lat, lon float64, ok bool) {
	if len(g.Coordinates) < 2 {
		return 0, 0, false
	}
	return g.Coordinates[1], g.Coordinates[0], true
}

type LanguagePair struct {
	From string `bson:"from" json:"from"`
	To   string `bson:"to" json:"to"`
}

// ChannelFlags holds one boolean per communication channel.
type ChannelFlags struct {
	Audio      bool `bson:"audio" json:"audio"`
	Video      bool `bson:"video" json:"video"`
	FaceToFace bool `bson:"faceToFace" json:"faceToFace"`
}

// For returns the flag for a channel.
func (f ChannelFlags) For(c CommunicationType) bool {
	switch c {
	case CommunicationAudio:
		return f.Audio
	case CommunicationVideo:
		return f.Video
	case CommunicationFaceToFace:
		return f.FaceToFace
	}
	return false
}

// ChannelField returns the bson sub-field name for a channel.
func ChannelField(c CommunicationType) string {
	switch c {
	case CommunicationAudio:
		return "audio"
	case CommunicationVideo:
		return "video"
	default:
		return "faceToFace"
	}
}

type TimeWindow struct {
	From time.Time `bson:"from" json:"from"`
	To   time.Time `bson:"to" json:"to"`
}

type EngagementStatus string

const (
	EngagementAccepted  EngagementStatus = "ACCEPTED"
	EngagementLive      EngagementStatus = "LIVE"
	EngagementCompleted EngagementStatus = "COMPLETED"
	EngagementCancelled EngagementStatus = "CANCELLED"
)

// Engagement is an appointment held by an interpreter, denormalized onto the
// interpreter document so availability can be checked without a join.
type Engagement struct {
	AppointmentID   string           `bson:"appointmentId" json:"appointmentId"`
	Status          EngagementStatus `bson:"status" json:"status"`
	Start           time.Time        `bson:"start" json:"start"`
	End             time.Time        `bson:"end" json:"end"`
	BusinessEndTime *time.Time       `bson:"businessEndTime" json:"businessEndTime,omitempty"`
}

// Interpreter is an interpreter profile joined with its role.
type Interpreter struct {
	ID                  string         `bson:"id" json:"id"` // role id
	UserID              string         `bson:"userId" json:"userId"`
	PlatformID          string         `bson:"platformId" json:"platformId"`
	RoleName            string         `bson:"roleName" json:"roleName"`
	Status              string         `bson:"status" json:"status"`
	IsActive            bool           `bson:"isActive" json:"isActive"`
	DeletedAt           *time.Time     `bson:"deletedAt" json:"deletedAt,omitempty"`
	IsTemporaryBlocked  bool           `bson:"isTemporaryBlocked" json:"isTemporaryBlocked"`
	Gender              Gender         `bson:"gender" json:"gender"`
	LanguagePairs       []LanguagePair `bson:"languagePairs" json:"languagePairs"`
	CompanyName         string         `bson:"companyName,omitempty" json:"companyName,omitempty"`
	Timezone            string         `bson:"timezone" json:"timezone"`
	Location            GeoPoint       `bson:"location" json:"location"`
	OnlineFor           ChannelFlags   `bson:"onlineFor" json:"onlineFor"`
	PreBookedSettings   ChannelFlags   `bson:"preBookedSettings" json:"preBookedSettings"`
	ConsecutiveTopics   map[Topic]bool `bson:"consecutiveTopics" json:"consecutiveTopics"`
	SignLanguage        bool           `bson:"signLanguage" json:"signLanguage"`
	CertificationLevels []int          `bson:"certificationLevels" json:"certificationLevels"`
	OnDemandWindow      *TimeWindow    `bson:"onDemandWindow,omitempty" json:"onDemandWindow,omitempty"`
	Engagements         []Engagement   `bson:"engagements" json:"engagements"`
	FCMToken            string         `bson:"fcmToken" json:"-"`
	CreatedAt           time.Time      `bson:"createdAt" json:"createdAt"`
	UpdatedAt           time.Time      `bson:"updatedAt" json:"updatedAt"`
}

// StatusActive is the profile status searched by the engine.
const StatusActive = "active"
