// Package convert maps domain types to the JSON documents of the HTTP API and back.
package convert

import (
	"time"

	"github.com/and161185/lovary/internal/model"
	"github.com/and161185/lovary/internal/service"
	"github.com/gofrs/uuid/v5"
)

// --- helpers ---

func optUUID(id uuid.NullUUID) *string {
	if !id.Valid {
		return nil
	}
	s := id.UUID.String()
	return &s
}

func optString(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

// --- requests (client -> server) ---

// RegisterRequest is the body of POST /api/auth/register.
type RegisterRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
	Name     string `json:"name"`
}

// LoginRequest is the JSON body of POST /api/auth/login. Username is
// accepted as an alias of Email for form-style clients.
type LoginRequest struct {
	Email    string `json:"email"`
	Username string `json:"username"`
	Password string `json:"password"`
}

// Login returns the email the client meant.
func (r LoginRequest) Login() string {
	if r.Email != "" {
		return r.Email
	}
	return r.Username
}

// ProfileUpdateRequest is the body of PUT /api/users/me.
type ProfileUpdateRequest struct {
	Name         *string `json:"name"`
	ReminderTime *string `json:"reminder_time"`
}

// FromProfileUpdate converts the request to a domain update.
func FromProfileUpdate(r ProfileUpdateRequest) model.ProfileUpdate {
	return model.ProfileUpdate{Name: r.Name, ReminderTime: r.ReminderTime}
}

// PartnerRequestCreate is the body of POST /api/users/partner-request.
type PartnerRequestCreate struct {
	RecipientEmail string `json:"recipient_email"`
}

// EntryRequest carries entry content for create (form fields) and update (JSON).
type EntryRequest struct {
	Title   string `json:"title"`
	Content string `json:"content"`
}

// FromEntryRequest converts the request to domain input.
func FromEntryRequest(r EntryRequest) model.EntryInput {
	return model.EntryInput{Title: r.Title, Body: r.Content}
}

// AnniversaryRequest is the body of POST /api/anniversary.
type AnniversaryRequest struct {
	Date model.Day `json:"date"`
	Name string    `json:"name"`
}

// --- responses (server -> client) ---

// Token is the login response.
type Token struct {
	AccessToken string    `json:"access_token"`
	TokenType   string    `json:"token_type"`
	ExpiresAt   time.Time `json:"expires_at"`
}

// ToToken wraps issued tokens.
func ToToken(t model.Tokens) Token {
	return Token{AccessToken: t.AccessToken, TokenType: "bearer", ExpiresAt: t.ExpiresAt}
}

// UserSummary is the public view of an account.
type UserSummary struct {
	ID    string `json:"id"`
	Email string `json:"email"`
	Name  string `json:"name"`
}

// ToUserSummary converts a domain summary.
func ToUserSummary(u model.UserSummary) UserSummary {
	return UserSummary{ID: u.ID.String(), Email: u.Email, Name: u.Name}
}

// ToUserSummaries converts a list; nil becomes an empty array.
func ToUserSummaries(in []model.UserSummary) []UserSummary {
	out := make([]UserSummary, 0, len(in))
	for _, u := range in {
		out = append(out, ToUserSummary(u))
	}
	return out
}

// User is the caller's own profile. Secrets never leave the server.
type User struct {
	ID              string       `json:"id"`
	Email           string       `json:"email"`
	Name            string       `json:"name"`
	PartnerID       *string      `json:"partner_id"`
	ReminderTime    *string      `json:"reminder_time"`
	HasPushEndpoint bool         `json:"has_push_subscription"`
	CreatedAt       time.Time    `json:"created_at"`
	Partner         *UserSummary `json:"partner"`
}

// ToUser converts a profile.
func ToUser(p service.Profile) User {
	u := User{
		ID:              p.User.ID.String(),
		Email:           p.User.Email,
		Name:            p.User.Name,
		PartnerID:       optUUID(p.User.PartnerID),
		ReminderTime:    optString(p.User.ReminderTime),
		HasPushEndpoint: p.User.PushSubscription != "",
		CreatedAt:       p.User.CreatedAt,
	}
	if p.Partner != nil {
		s := ToUserSummary(*p.Partner)
		u.Partner = &s
	}
	return u
}

// PartnerRequest is a pending, accepted or rejected pairing request.
type PartnerRequest struct {
	ID          string      `json:"id"`
	RequesterID string      `json:"requester_id"`
	RecipientID string      `json:"recipient_id"`
	Status      string      `json:"status"`
	CreatedAt   time.Time   `json:"created_at"`
	Requester   UserSummary `json:"requester"`
	Recipient   UserSummary `json:"recipient"`
}

// ToPartnerRequest converts a domain request.
func ToPartnerRequest(r model.PartnerRequest) PartnerRequest {
	return PartnerRequest{
		ID:          r.ID.String(),
		RequesterID: r.RequesterID.String(),
		RecipientID: r.RecipientID.String(),
		Status:      string(r.Status),
		CreatedAt:   r.CreatedAt,
		Requester:   ToUserSummary(r.Requester),
		Recipient:   ToUserSummary(r.Recipient),
	}
}

// ToPartnerRequests converts a list; nil becomes an empty array.
func ToPartnerRequests(in []model.PartnerRequest) []PartnerRequest {
	out := make([]PartnerRequest, 0, len(in))
	for _, r := range in {
		out = append(out, ToPartnerRequest(r))
	}
	return out
}

// EntryPhoto is a picture attached to an entry.
type EntryPhoto struct {
	ID               string `json:"id"`
	URL              string `json:"photo_url"`
	OriginalFilename string `json:"original_filename"`
	Position         int    `json:"position"`
}

// Entry is a diary entry.
type Entry struct {
	ID         string       `json:"id"`
	AuthorID   string       `json:"author_id"`
	Date       model.Day    `json:"date"`
	Title      string       `json:"title"`
	Content    string       `json:"content"`
	CreatedAt  time.Time    `json:"created_at"`
	UpdatedAt  time.Time    `json:"updated_at"`
	ReadByPeer bool         `json:"is_read_by_partner"`
	Photos     []EntryPhoto `json:"photos"`
}

// ToEntry converts a domain entry.
func ToEntry(e model.Entry) Entry {
	photos := make([]EntryPhoto, 0, len(e.Photos))
	for _, p := range e.Photos {
		photos = append(photos, EntryPhoto{
			ID:               p.ID.String(),
			URL:              p.URL,
			OriginalFilename: p.OriginalFilename,
			Position:         p.Position,
		})
	}
	return Entry{
		ID:         e.ID.String(),
		AuthorID:   e.AuthorID.String(),
		Date:       e.Day,
		Title:      e.Title,
		Content:    e.Body,
		CreatedAt:  e.CreatedAt,
		UpdatedAt:  e.UpdatedAt,
		ReadByPeer: e.Revealed,
		Photos:     photos,
	}
}

func toEntryPtr(e *model.Entry) *Entry {
	if e == nil {
		return nil
	}
	v := ToEntry(*e)
	return &v
}

// ToEntries converts a list; nil becomes an empty array.
func ToEntries(in []model.Entry) []Entry {
	out := make([]Entry, 0, len(in))
	for _, e := range in {
		out = append(out, ToEntry(e))
	}
	return out
}

// Inbox is today's view: own entry and, once unlocked, the partner's.
type Inbox struct {
	Date         model.Day `json:"date"`
	MyDiary      *Entry    `json:"my_diary"`
	PartnerDiary *Entry    `json:"partner_diary"`
}

// ToInbox converts the gated inbox.
func ToInbox(in model.Inbox) Inbox {
	return Inbox{Date: in.Day, MyDiary: toEntryPtr(in.Own), PartnerDiary: toEntryPtr(in.Partner)}
}

// DayDetail is the archive view of one day.
type DayDetail struct {
	Date         model.Day `json:"date"`
	MyDiary      *Entry    `json:"my_diary"`
	PartnerDiary *Entry    `json:"partner_diary"`
	MyName       string    `json:"my_name"`
	PartnerName  string    `json:"partner_name"`
	CanWrite     bool      `json:"can_write"`
}

// ToDayDetail converts the ungated day view.
func ToDayDetail(d model.DayDetail) DayDetail {
	return DayDetail{
		Date:         d.Day,
		MyDiary:      toEntryPtr(d.Own),
		PartnerDiary: toEntryPtr(d.Partner),
		MyName:       d.OwnName,
		PartnerName:  d.PartnerName,
		CanWrite:     d.CanWrite,
	}
}

// MonthDay is the completion state of one calendar day.
type MonthDay struct {
	Date            model.Day `json:"date"`
	Status          string    `json:"status"`
	HasMyDiary      bool      `json:"has_my_diary"`
	HasPartnerDiary bool      `json:"has_partner_diary"`
	IsComplete      bool      `json:"is_complete"`
}

// ToMonth keys day statuses by day of month, the shape calendar clients expect.
func ToMonth(in []model.MonthDayStatus) map[int]MonthDay {
	out := make(map[int]MonthDay, len(in))
	for _, s := range in {
		out[s.Date.Day] = MonthDay{
			Date:            s.Date,
			Status:          string(s.Status),
			HasMyDiary:      s.HasOwnEntry,
			HasPartnerDiary: s.HasPartnerEntry,
			IsComplete:      s.IsComplete,
		}
	}
	return out
}

// Anniversary is a named date of a couple.
type Anniversary struct {
	ID        string    `json:"id"`
	Date      model.Day `json:"date"`
	Name      string    `json:"name"`
	UserID    string    `json:"user_id"`
	PartnerID string    `json:"partner_id"`
}

// ToAnniversary converts a domain anniversary.
func ToAnniversary(a model.Anniversary) Anniversary {
	return Anniversary{
		ID:        a.ID.String(),
		Date:      a.Date,
		Name:      a.Name,
		UserID:    a.UserID.String(),
		PartnerID: a.PartnerID.String(),
	}
}

// ToAnniversaries converts a list; nil becomes an empty array.
func ToAnniversaries(in []model.Anniversary) []Anniversary {
	out := make([]Anniversary, 0, len(in))
	for _, a := range in {
		out = append(out, ToAnniversary(a))
	}
	return out
}

// MonthlyPhoto is the couple's picture of a month.
type MonthlyPhoto struct {
	ID        string    `json:"id"`
	Year      int       `json:"year"`
	Month     int       `json:"month"`
	URL       string    `json:"photo_url"`
	CreatedBy string    `json:"created_by"`
	CreatedAt time.Time `json:"created_at"`
}

// ToMonthlyPhoto converts a photo; nil stays nil and encodes as JSON null.
func ToMonthlyPhoto(p *model.MonthlyPhoto) *MonthlyPhoto {
	if p == nil {
		return nil
	}
	return &MonthlyPhoto{
		ID:        p.ID.String(),
		Year:      p.Year,
		Month:     int(p.Month),
		URL:       p.URL,
		CreatedBy: p.CreatedBy.String(),
		CreatedAt: p.CreatedAt,
	}
}
