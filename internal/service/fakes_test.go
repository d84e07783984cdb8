package service

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/and161185/lovary/internal/errs"
	"github.com/and161185/lovary/internal/limiter"
	"github.com/and161185/lovary/internal/model"
	"github.com/and161185/lovary/internal/notify"
	"github.com/and161185/lovary/internal/repository"
	"github.com/and161185/lovary/internal/storage"
	"github.com/gofrs/uuid/v5"
)

/************ users ************/

type fakeUsers struct {
	byID map[uuid.UUID]*model.User

	createErr  error
	getErr     error
	partnerErr error
	deleted    []uuid.UUID
}

var _ repository.UserRepository = (*fakeUsers)(nil)

func newFakeUsers(us ...*model.User) *fakeUsers {
	f := &fakeUsers{byID: map[uuid.UUID]*model.User{}}
	for _, u := range us {
		f.byID[u.ID] = u
	}
	return f
}

func (f *fakeUsers) Create(_ context.Context, u *model.User) error {
	if f.createErr != nil {
		return f.createErr
	}
	for _, x := range f.byID {
		if x.Email == u.Email {
			return errs.ErrAlreadyExists
		}
	}
	c := *u
	f.byID[u.ID] = &c
	return nil
}

func (f *fakeUsers) GetByID(_ context.Context, id uuid.UUID) (*model.User, error) {
	if f.getErr != nil {
		return nil, f.getErr
	}
	u, ok := f.byID[id]
	if !ok {
		return nil, errs.ErrNotFound
	}
	c := *u
	return &c, nil
}

func (f *fakeUsers) GetByEmail(_ context.Context, email string) (*model.User, error) {
	if f.getErr != nil {
		return nil, f.getErr
	}
	for _, u := range f.byID {
		if u.Email == strings.ToLower(email) {
			c := *u
			return &c, nil
		}
	}
	return nil, errs.ErrNotFound
}

func (f *fakeUsers) GetPartnerID(_ context.Context, id uuid.UUID) (uuid.UUID, bool, error) {
	if f.partnerErr != nil {
		return uuid.Nil, false, f.partnerErr
	}
	u, ok := f.byID[id]
	if !ok {
		return uuid.Nil, false, errs.ErrNotFound
	}
	return u.PartnerID.UUID, u.PartnerID.Valid, nil
}

func (f *fakeUsers) UpdateProfile(_ context.Context, id uuid.UUID, upd model.ProfileUpdate) error {
	u, ok := f.byID[id]
	if !ok {
		return errs.ErrNotFound
	}
	if upd.Name != nil {
		u.Name = *upd.Name
	}
	if upd.ReminderTime != nil {
		u.ReminderTime = *upd.ReminderTime
	}
	return nil
}

func (f *fakeUsers) SearchByEmail(_ context.Context, fragment string, exclude uuid.UUID, limit int) ([]model.UserSummary, error) {
	var out []model.UserSummary
	for _, u := range f.byID {
		if u.ID != exclude && strings.Contains(u.Email, strings.ToLower(fragment)) {
			out = append(out, model.UserSummary{ID: u.ID, Email: u.Email, Name: u.Name})
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Email < out[j].Email })
	if len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (f *fakeUsers) SetPushSubscription(_ context.Context, id uuid.UUID, sub string) error {
	u, ok := f.byID[id]
	if !ok {
		return errs.ErrNotFound
	}
	u.PushSubscription = sub
	return nil
}

func (f *fakeUsers) Delete(_ context.Context, id uuid.UUID) error {
	if _, ok := f.byID[id]; !ok {
		return errs.ErrNotFound
	}
	for _, u := range f.byID {
		if u.PartnerID.Valid && u.PartnerID.UUID == id {
			u.PartnerID = uuid.NullUUID{}
		}
	}
	delete(f.byID, id)
	f.deleted = append(f.deleted, id)
	return nil
}

func pair(a, b *model.User) {
	a.PartnerID = uuid.NullUUID{UUID: b.ID, Valid: true}
	b.PartnerID = uuid.NullUUID{UUID: a.ID, Valid: true}
}

func newUser(email, name string) *model.User {
	return &model.User{ID: uuid.Must(uuid.NewV4()), Email: email, Name: name}
}

/************ limiter ************/

type fakeLimiter struct {
	allowOK  bool
	allowErr error

	failBlocked bool
	failErr     error

	successErr error

	allowCalls   int
	failureCalls int
	successCalls int
}

var _ limiter.Limiter = (*fakeLimiter)(nil)

func (l *fakeLimiter) Allow(context.Context, string, []byte) (bool, time.Duration, error) {
	l.allowCalls++
	return l.allowOK, 0, l.allowErr
}
func (l *fakeLimiter) Success(context.Context, string, []byte) error {
	l.successCalls++
	return l.successErr
}
func (l *fakeLimiter) Failure(context.Context, string, []byte) (bool, time.Duration, error) {
	l.failureCalls++
	return l.failBlocked, 0, l.failErr
}

/************ entries ************/

// fakeEntries mimics the unique (author, day) index of the real table.
type fakeEntries struct {
	mu   sync.Mutex
	rows map[uuid.UUID]*model.Entry

	insertErr   error
	addPhotoErr error
	revealCalls []uuid.UUID
	updates     int
}

var _ repository.EntryRepository = (*fakeEntries)(nil)

func newFakeEntries(es ...*model.Entry) *fakeEntries {
	f := &fakeEntries{rows: map[uuid.UUID]*model.Entry{}}
	for _, e := range es {
		f.rows[e.ID] = e
	}
	return f
}

func (f *fakeEntries) FindByAuthorAndDay(_ context.Context, authorID uuid.UUID, day model.Day) (*model.Entry, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, e := range f.rows {
		if e.AuthorID == authorID && e.Day == day {
			c := *e
			return &c, nil
		}
	}
	return nil, errs.ErrNotFound
}

func (f *fakeEntries) FindByAuthorAndRange(_ context.Context, authorID uuid.UUID, start, end model.Day) ([]model.Entry, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []model.Entry
	for _, e := range f.rows {
		if e.AuthorID == authorID && !e.Day.Before(start) && !e.Day.After(end) {
			out = append(out, *e)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Day.Before(out[j].Day) })
	return out, nil
}

func (f *fakeEntries) ListByAuthor(_ context.Context, authorID uuid.UUID) ([]model.Entry, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []model.Entry
	for _, e := range f.rows {
		if e.AuthorID == authorID {
			out = append(out, *e)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Day.After(out[j].Day) })
	return out, nil
}

func (f *fakeEntries) GetByID(_ context.Context, authorID, id uuid.UUID) (*model.Entry, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	e, ok := f.rows[id]
	if !ok || e.AuthorID != authorID {
		return nil, errs.ErrNotFound
	}
	c := *e
	return &c, nil
}

func (f *fakeEntries) InsertIfAbsent(_ context.Context, e *model.Entry) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.insertErr != nil {
		return f.insertErr
	}
	for _, x := range f.rows {
		if x.AuthorID == e.AuthorID && x.Day == e.Day {
			return errs.ErrDuplicateEntry
		}
	}
	c := *e
	f.rows[e.ID] = &c
	return nil
}

func (f *fakeEntries) Update(_ context.Context, e *model.Entry) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	x, ok := f.rows[e.ID]
	if !ok || x.AuthorID != e.AuthorID {
		return errs.ErrNotFound
	}
	x.Title, x.Body, x.UpdatedAt = e.Title, e.Body, e.UpdatedAt
	f.updates++
	return nil
}

func (f *fakeEntries) SetRevealed(_ context.Context, id uuid.UUID) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.revealCalls = append(f.revealCalls, id)
	if e, ok := f.rows[id]; ok {
		e.Revealed = true
	}
	return nil
}

func (f *fakeEntries) AddPhoto(_ context.Context, p *model.EntryPhoto) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.addPhotoErr != nil {
		return f.addPhotoErr
	}
	e, ok := f.rows[p.EntryID]
	if !ok {
		return errs.ErrNotFound
	}
	p.Position = len(e.Photos)
	e.Photos = append(e.Photos, *p)
	return nil
}

func (f *fakeEntries) get(id uuid.UUID) *model.Entry {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.rows[id]
}

/************ storage & notify ************/

type fakeStore struct {
	objects map[string][]byte
	putErr  error
	deleted []string
	// private mimics a bucket without public URLs: Put hands back a
	// reference and every Resolve signs a fresh URL.
	private bool
	signed  int
}

var _ storage.Store = (*fakeStore)(nil)

func newFakeStore() *fakeStore { return &fakeStore{objects: map[string][]byte{}} }

func (s *fakeStore) Put(_ context.Context, key, _ string, body []byte) (string, error) {
	if s.putErr != nil {
		return "", s.putErr
	}
	s.objects[key] = body
	if s.private {
		return "mem://" + key, nil
	}
	return "/uploads/" + key, nil
}

func (s *fakeStore) Resolve(_ context.Context, ref string) (string, error) {
	key, ok := strings.CutPrefix(ref, "mem://")
	if !ok {
		return ref, nil
	}
	s.signed++
	return fmt.Sprintf("https://signed/%s?n=%d", key, s.signed), nil
}

func (s *fakeStore) Delete(_ context.Context, key string) error {
	delete(s.objects, key)
	s.deleted = append(s.deleted, key)
	return nil
}

type fakeNotifier struct {
	sent []notify.Message
	subs []string
	err  error
}

var _ notify.Notifier = (*fakeNotifier)(nil)

func (n *fakeNotifier) Notify(_ context.Context, sub string, msg notify.Message) error {
	n.subs = append(n.subs, sub)
	n.sent = append(n.sent, msg)
	return n.err
}
