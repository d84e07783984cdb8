package service

import (
	"context"
	"errors"
	"fmt"
	"path"
	"strings"
	"time"

	"github.com/and161185/lovary/internal/diary"
	"github.com/and161185/lovary/internal/errs"
	"github.com/and161185/lovary/internal/model"
	"github.com/and161185/lovary/internal/notify"
	"github.com/and161185/lovary/internal/repository"
	"github.com/and161185/lovary/internal/storage"
	"github.com/gofrs/uuid/v5"
	"go.uber.org/zap"
)

// DiaryService applies the writing window and mutual-reveal rules to diary entries.
type DiaryService interface {
	// Create writes the author's entry for the current authoring day.
	Create(ctx context.Context, authorID uuid.UUID, in model.EntryInput, photos []model.PhotoUpload) (*model.Entry, error)
	// Update edits an owned entry while its own day is still writable.
	Update(ctx context.Context, authorID, entryID uuid.UUID, in model.EntryInput) (*model.Entry, error)
	// Mine lists the author's entries, newest day first.
	Mine(ctx context.Context, authorID uuid.UUID) ([]model.Entry, error)
	// TodayInbox returns today's own entry and, once the viewer has written, the partner's.
	TodayInbox(ctx context.Context, viewerID uuid.UUID) (model.Inbox, error)
	// DayDetail returns both entries of an explicit day without the reveal gate.
	DayDetail(ctx context.Context, viewerID uuid.UUID, day model.Day) (model.DayDetail, error)
	// Month returns the completion calendar of a month.
	Month(ctx context.Context, viewerID uuid.UUID, year int, month time.Month) ([]model.MonthDayStatus, error)
}

type DiaryServiceImpl struct {
	entries  repository.EntryRepository
	users    repository.UserRepository
	store    storage.Store
	notifier notify.Notifier
	clock    diary.Clock
	log      *zap.Logger
}

// NewDiaryService constructs DiaryService.
func NewDiaryService(entries repository.EntryRepository, users repository.UserRepository, store storage.Store,
	notifier notify.Notifier, clock diary.Clock, log *zap.Logger) *DiaryServiceImpl {
	return &DiaryServiceImpl{entries: entries, users: users, store: store, notifier: notifier, clock: clock, log: log}
}

func validateEntry(in model.EntryInput) (model.EntryInput, error) {
	in.Title = strings.TrimSpace(in.Title)
	if in.Title == "" || strings.TrimSpace(in.Body) == "" {
		return in, fmt.Errorf("%w: title and content are required", errs.ErrValidation)
	}
	return in, nil
}

// Create gates on the effective day's window, inserts atomically, then stores
// photos and pings the partner. Photo and push failures do not fail the call.
func (s *DiaryServiceImpl) Create(ctx context.Context, authorID uuid.UUID, in model.EntryInput, photos []model.PhotoUpload) (*model.Entry, error) {
	in, err := validateEntry(in)
	if err != nil {
		return nil, err
	}
	now := s.clock.Now().UTC()
	day, err := diary.CheckCreate(now)
	if err != nil {
		return nil, err
	}

	id, err := uuid.NewV4()
	if err != nil {
		return nil, err
	}
	e := &model.Entry{
		ID:        id,
		AuthorID:  authorID,
		Day:       day,
		Title:     in.Title,
		Body:      in.Body,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := s.entries.InsertIfAbsent(ctx, e); err != nil {
		if errors.Is(err, errs.ErrDuplicateEntry) {
			return nil, fmt.Errorf("%w: %s", err, day)
		}
		return nil, err
	}

	author, err := s.users.GetByID(ctx, authorID)
	if err != nil {
		s.log.Warn("load author after create", zap.Stringer("user", authorID), zap.Error(err))
		author = &model.User{ID: authorID}
	}
	s.attachPhotos(ctx, e, author, photos, now)
	s.notifyPartner(ctx, author)
	s.resolvePhotos(ctx, e)
	return e, nil
}

func (s *DiaryServiceImpl) attachPhotos(ctx context.Context, e *model.Entry, author *model.User, photos []model.PhotoUpload, now time.Time) {
	couple := author.ID.String()
	if author.HasPartner() {
		couple = model.CoupleID(author.ID, author.PartnerID.UUID)
	}
	prefix := path.Join("diaries", couple, e.Day.String())

	for _, p := range photos {
		if p.Filename == "" || len(p.Data) == 0 {
			continue
		}
		key := storage.NewKey(prefix, p.Filename)
		url, err := s.store.Put(ctx, key, p.ContentType, p.Data)
		if err != nil {
			s.log.Warn("store diary photo", zap.String("key", key), zap.Error(err))
			continue
		}
		pid, err := uuid.NewV4()
		if err != nil {
			s.log.Warn("photo id", zap.Error(err))
			continue
		}
		ph := model.EntryPhoto{
			ID:               pid,
			EntryID:          e.ID,
			URL:              url,
			StorageKey:       key,
			OriginalFilename: p.Filename,
			CreatedAt:        now,
		}
		if err := s.entries.AddPhoto(ctx, &ph); err != nil {
			s.log.Warn("record diary photo", zap.String("key", key), zap.Error(err))
			if derr := s.store.Delete(ctx, key); derr != nil {
				s.log.Warn("release orphan photo", zap.String("key", key), zap.Error(derr))
			}
			continue
		}
		e.Photos = append(e.Photos, ph)
	}
}

// resolvePhotos swaps persisted photo references for URLs a client can fetch now.
// A reference that cannot be resolved is left as stored.
func (s *DiaryServiceImpl) resolvePhotos(ctx context.Context, entries ...*model.Entry) {
	for _, e := range entries {
		if e == nil || len(e.Photos) == 0 {
			continue
		}
		ps := make([]model.EntryPhoto, len(e.Photos))
		copy(ps, e.Photos)
		for i := range ps {
			u, err := s.store.Resolve(ctx, ps[i].URL)
			if err != nil {
				s.log.Warn("resolve photo url", zap.String("key", ps[i].StorageKey), zap.Error(err))
				continue
			}
			ps[i].URL = u
		}
		e.Photos = ps
	}
}

func (s *DiaryServiceImpl) notifyPartner(ctx context.Context, author *model.User) {
	if !author.HasPartner() {
		return
	}
	partner, err := s.users.GetByID(ctx, author.PartnerID.UUID)
	if err != nil {
		s.log.Warn("load partner for push", zap.Error(err))
		return
	}
	if partner.PushSubscription == "" {
		return
	}
	name := author.Name
	if name == "" {
		name = author.Email
	}
	msg := notify.Message{
		Title: "A new diary entry has arrived!",
		Body:  name + " wrote today's diary.",
		URL:   "/",
	}
	err = s.notifier.Notify(ctx, partner.PushSubscription, msg)
	switch {
	case err == nil:
	case errors.Is(err, notify.ErrGone):
		if cerr := s.users.SetPushSubscription(ctx, partner.ID, ""); cerr != nil {
			s.log.Warn("drop expired push subscription", zap.Error(cerr))
		}
	default:
		s.log.Warn("push to partner", zap.Stringer("partner", partner.ID), zap.Error(err))
	}
}

// Update gates on the entry's own day, not on today.
func (s *DiaryServiceImpl) Update(ctx context.Context, authorID, entryID uuid.UUID, in model.EntryInput) (*model.Entry, error) {
	in, err := validateEntry(in)
	if err != nil {
		return nil, err
	}
	e, err := s.entries.GetByID(ctx, authorID, entryID)
	if err != nil {
		return nil, err
	}
	now := s.clock.Now().UTC()
	if err := diary.CheckUpdate(now, e); err != nil {
		return nil, err
	}
	diary.ApplyUpdate(e, in, now)
	if err := s.entries.Update(ctx, e); err != nil {
		return nil, err
	}
	s.resolvePhotos(ctx, e)
	return e, nil
}

// Mine lists all entries of the author.
func (s *DiaryServiceImpl) Mine(ctx context.Context, authorID uuid.UUID) ([]model.Entry, error) {
	list, err := s.entries.ListByAuthor(ctx, authorID)
	if err != nil {
		return nil, err
	}
	if list == nil {
		list = []model.Entry{}
	}
	for i := range list {
		s.resolvePhotos(ctx, &list[i])
	}
	return list, nil
}

// findDay returns nil, nil when the author has no entry for day.
func (s *DiaryServiceImpl) findDay(ctx context.Context, authorID uuid.UUID, day model.Day) (*model.Entry, error) {
	e, err := s.entries.FindByAuthorAndDay(ctx, authorID, day)
	if errors.Is(err, errs.ErrNotFound) {
		return nil, nil
	}
	return e, err
}

// TodayInbox resolves the current authoring day for the viewer. The partner's
// entry is exposed only if the viewer already wrote today, and is then marked revealed.
func (s *DiaryServiceImpl) TodayInbox(ctx context.Context, viewerID uuid.UUID) (model.Inbox, error) {
	day := diary.EffectiveDay(s.clock.Now())
	own, err := s.findDay(ctx, viewerID, day)
	if err != nil {
		return model.Inbox{}, err
	}
	inbox := model.Inbox{Day: day, Own: own}

	partnerID, ok, err := s.users.GetPartnerID(ctx, viewerID)
	if err != nil {
		return model.Inbox{}, err
	}
	if !ok || own == nil {
		s.resolvePhotos(ctx, own)
		return inbox, nil
	}

	partner, err := s.findDay(ctx, partnerID, day)
	if err != nil {
		return model.Inbox{}, err
	}
	inbox.Partner = diary.RevealToday(own, partner)
	if diary.NeedsRevealMark(inbox.Partner) {
		if err := s.entries.SetRevealed(ctx, inbox.Partner.ID); err != nil {
			return model.Inbox{}, err
		}
		inbox.Partner.Revealed = true
	}
	s.resolvePhotos(ctx, inbox.Own, inbox.Partner)
	return inbox, nil
}

// DayDetail is the historical view of one day: no reveal gate, no side effects.
func (s *DiaryServiceImpl) DayDetail(ctx context.Context, viewerID uuid.UUID, day model.Day) (model.DayDetail, error) {
	viewer, err := s.users.GetByID(ctx, viewerID)
	if err != nil {
		return model.DayDetail{}, err
	}
	own, err := s.findDay(ctx, viewerID, day)
	if err != nil {
		return model.DayDetail{}, err
	}
	d := model.DayDetail{
		Day:         day,
		Own:         own,
		OwnName:     orDefault(viewer.Name, "Me"),
		PartnerName: "Partner",
		CanWrite:    diary.IsWritable(s.clock.Now(), day),
	}
	if !viewer.HasPartner() {
		s.resolvePhotos(ctx, d.Own)
		return d, nil
	}

	partner, err := s.users.GetByID(ctx, viewer.PartnerID.UUID)
	if err != nil && !errors.Is(err, errs.ErrNotFound) {
		return model.DayDetail{}, err
	}
	if partner != nil {
		d.PartnerName = orDefault(partner.Name, d.PartnerName)
	}
	if d.Partner, err = s.findDay(ctx, viewer.PartnerID.UUID, day); err != nil {
		return model.DayDetail{}, err
	}
	s.resolvePhotos(ctx, d.Own, d.Partner)
	return d, nil
}

// Month aggregates both partners' entries of the month against today's UTC date.
func (s *DiaryServiceImpl) Month(ctx context.Context, viewerID uuid.UUID, year int, month time.Month) ([]model.MonthDayStatus, error) {
	if month < time.January || month > time.December || year < 1970 || year > 9999 {
		return nil, fmt.Errorf("%w: bad year/month", errs.ErrValidation)
	}
	start, end := diary.MonthRange(year, month)

	own, err := s.entries.FindByAuthorAndRange(ctx, viewerID, start, end)
	if err != nil {
		return nil, err
	}
	var partner []model.Entry
	partnerID, ok, err := s.users.GetPartnerID(ctx, viewerID)
	if err != nil {
		return nil, err
	}
	if ok {
		if partner, err = s.entries.FindByAuthorAndRange(ctx, partnerID, start, end); err != nil {
			return nil, err
		}
	}
	return diary.AggregateMonth(own, partner, year, month, model.DayOf(s.clock.Now())), nil
}

func orDefault(s, def string) string {
	if s == "" {
		return def
	}
	return s
}
