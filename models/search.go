package models

import "time"

// SearchExecution is the search state persisted on an order or order group.
// These are the only fields the search engine writes.
type SearchExecution struct {
	IsFirstSearchCompleted  bool       `bson:"isFirstSearchCompleted" json:"isFirstSearchCompleted"`
	IsSecondSearchCompleted bool       `bson:"isSecondSearchCompleted" json:"isSecondSearchCompleted"`
	IsSearchNeeded          bool       `bson:"isSearchNeeded" json:"isSearchNeeded"`
	TimeToRestart           *time.Time `bson:"timeToRestart" json:"timeToRestart,omitempty"`
	MatchedInterpreterIDs   []string   `bson:"matchedInterpreterIds" json:"matchedInterpreterIds"`
}

// RoleSuperAdmin is the user role notified about red-flagged orders.
const RoleSuperAdmin = "super-admin"

// AdminInfo is the operator-facing record attached to an appointment.
type AdminInfo struct {
	ID               string    `bson:"id" json:"id"`
	AppointmentID    string    `bson:"appointmentId" json:"appointmentId"`
	IsRedFlagEnabled bool      `bson:"isRedFlagEnabled" json:"isRedFlagEnabled"`
	RedFlagMessage   string    `bson:"redFlagMessage" json:"redFlagMessage"`
	UpdatedAt        time.Time `bson:"updatedAt" json:"updatedAt"`
}

// UserBlock is a block relation between two users. Either side may be the
// client or the interpreter.
type UserBlock struct {
	ID        string    `bson:"id" json:"id"`
	BlockerID string    `bson:"blockerId" json:"blockerId"`
	BlockedID string    `bson:"blockedId" json:"blockedId"`
	IsActive  bool      `bson:"isActive" json:"isActive"`
	CreatedAt time.Time `bson:"createdAt" json:"createdAt"`
}
