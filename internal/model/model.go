// Package model defines domain entities used by services and repositories.
package model

import (
	"time"

	"github.com/gofrs/uuid/v5"
)

// Tokens collects an issued access token.
type Tokens struct {
	AccessToken string
	ExpiresAt   time.Time // access token expiry (for diagnostics)
}

// User represents an account stored on the server.
type User struct {
	ID               uuid.UUID // PK
	Email            string    // unique, lowercased
	Name             string
	PwdHash          string        // encoded argon2id hash
	PartnerID        uuid.NullUUID // mirrors the partner's PartnerID
	ReminderTime     string        // "15:04" or empty; stored only
	PushSubscription string        // JSON-encoded PushSubscription or empty
	CreatedAt        time.Time
}

// HasPartner reports whether the user is currently paired.
func (u *User) HasPartner() bool { return u.PartnerID.Valid }

// UserSummary is the public view of another account.
type UserSummary struct {
	ID    uuid.UUID
	Email string
	Name  string
}

// ProfileUpdate carries optional profile changes; nil fields are left untouched.
type ProfileUpdate struct {
	Name         *string
	ReminderTime *string
}

// PushSubscription is a browser push endpoint registered by a user.
type PushSubscription struct {
	Endpoint string `json:"endpoint"`
	Keys     struct {
		P256dh string `json:"p256dh"`
		Auth   string `json:"auth"`
	} `json:"keys"`
}

// RequestStatus is the lifecycle state of a partner request.
type RequestStatus string

const (
	RequestPending  RequestStatus = "pending"
	RequestAccepted RequestStatus = "accepted"
	RequestRejected RequestStatus = "rejected"
)

// PartnerRequest asks the recipient to become the requester's partner.
type PartnerRequest struct {
	ID          uuid.UUID
	RequesterID uuid.UUID
	RecipientID uuid.UUID
	Status      RequestStatus
	CreatedAt   time.Time
	Requester   UserSummary
	Recipient   UserSummary
}

// Entry is one diary entry. Day is the calendar day it counts for,
// which is not necessarily the day of CreatedAt.
type Entry struct {
	ID        uuid.UUID
	AuthorID  uuid.UUID
	Day       Day
	Title     string
	Body      string
	CreatedAt time.Time
	UpdatedAt time.Time
	Revealed  bool // set once the partner has been shown the entry
	Photos    []EntryPhoto
}

// EntryInput is the author-controlled content of an entry.
type EntryInput struct {
	Title string
	Body  string
}

// EntryPhoto is a picture attached to an entry, ordered by Position.
type EntryPhoto struct {
	ID               uuid.UUID
	EntryID          uuid.UUID
	Position         int
	URL              string
	StorageKey       string
	OriginalFilename string
	CreatedAt        time.Time
}

// PhotoUpload is an uploaded file before it reaches storage.
type PhotoUpload struct {
	Filename    string
	ContentType string
	Data        []byte
}

// Inbox is what a viewer sees for the current authoring day.
type Inbox struct {
	Day     Day
	Own     *Entry
	Partner *Entry // nil unless the mutual-reveal rule allows it
}

// DayDetail is the ungated view of one explicit day.
type DayDetail struct {
	Day         Day
	Own         *Entry
	Partner     *Entry
	OwnName     string
	PartnerName string
	CanWrite    bool
}

// DayStatus classifies a calendar day relative to today.
type DayStatus string

const (
	DayPast   DayStatus = "past"
	DayToday  DayStatus = "today"
	DayFuture DayStatus = "future"
)

// MonthDayStatus is the derived completion state of one day in a month.
type MonthDayStatus struct {
	Date            Day
	Status          DayStatus
	HasOwnEntry     bool
	HasPartnerEntry bool
	IsComplete      bool
}

// Anniversary is a named date shared by a couple.
type Anniversary struct {
	ID        uuid.UUID
	CoupleID  string
	UserID    uuid.UUID // who saved it
	PartnerID uuid.UUID
	Date      Day
	Name      string
}

// MonthlyPhoto is the single picture a couple keeps for a calendar month.
type MonthlyPhoto struct {
	ID         uuid.UUID
	CoupleID   string
	Year       int
	Month      time.Month
	URL        string
	StorageKey string
	CreatedBy  uuid.UUID
	CreatedAt  time.Time
}

// CoupleID returns a stable identifier for a pair of users, independent of order.
func CoupleID(a, b uuid.UUID) string {
	as, bs := a.String(), b.String()
	if bs < as {
		as, bs = bs, as
	}
	return as + "_" + bs
}
