package httpserver

import (
	"context"
	"time"

	"github.com/and161185/lovary/internal/errs"
	"github.com/and161185/lovary/internal/model"
	"github.com/and161185/lovary/internal/service"
	"github.com/gofrs/uuid/v5"
)

var testUser = uuid.Must(uuid.FromString("6f1c1a0e-8a52-4f4e-9d2b-0c8f5b1f9a11"))

const goodToken = "good-token"

type stubAuth struct {
	registerErr error
	loginErr    error
	gotEmail    string
	gotIP       string
}

var _ service.AuthService = (*stubAuth)(nil)

func (a *stubAuth) Register(_ context.Context, email, _, _ string) (uuid.UUID, error) {
	a.gotEmail = email
	return testUser, a.registerErr
}

func (a *stubAuth) Login(_ context.Context, email, _, ip string) (model.Tokens, model.User, error) {
	a.gotEmail, a.gotIP = email, ip
	if a.loginErr != nil {
		return model.Tokens{}, model.User{}, a.loginErr
	}
	return model.Tokens{AccessToken: goodToken, ExpiresAt: time.Date(2024, 3, 17, 0, 0, 0, 0, time.UTC)}, model.User{ID: testUser}, nil
}

func (a *stubAuth) VerifyToken(token string) (uuid.UUID, error) {
	if token != goodToken {
		return uuid.Nil, errs.ErrUnauthorized
	}
	return testUser, nil
}

type stubUsers struct {
	service.UserService
	profile service.Profile
	upd     model.ProfileUpdate
	deleted bool
}

func (u *stubUsers) Me(context.Context, uuid.UUID) (service.Profile, error) { return u.profile, nil }

func (u *stubUsers) UpdateMe(_ context.Context, _ uuid.UUID, upd model.ProfileUpdate) (service.Profile, error) {
	u.upd = upd
	return u.profile, nil
}

func (u *stubUsers) DeleteAccount(context.Context, uuid.UUID) error {
	u.deleted = true
	return nil
}

type stubPairing struct {
	service.PairingService
	accepted []uuid.UUID
	err      error
}

func (p *stubPairing) Accept(_ context.Context, _, id uuid.UUID) error {
	p.accepted = append(p.accepted, id)
	return p.err
}

func (p *stubPairing) Disconnect(context.Context, uuid.UUID) error { return p.err }

type stubDiary struct {
	service.DiaryService
	createIn     model.EntryInput
	createPhotos []model.PhotoUpload
	createErr    error
	inbox        model.Inbox
	day          model.Day
	month        []model.MonthDayStatus
	panicOnMine  bool
}

func (d *stubDiary) Create(_ context.Context, author uuid.UUID, in model.EntryInput, photos []model.PhotoUpload) (*model.Entry, error) {
	d.createIn, d.createPhotos = in, photos
	if d.createErr != nil {
		return nil, d.createErr
	}
	return &model.Entry{ID: uuid.Must(uuid.NewV4()), AuthorID: author, Title: in.Title, Body: in.Body, Day: model.Date(2024, 3, 10)}, nil
}

func (d *stubDiary) Mine(context.Context, uuid.UUID) ([]model.Entry, error) {
	if d.panicOnMine {
		panic("boom")
	}
	return nil, nil
}

func (d *stubDiary) TodayInbox(context.Context, uuid.UUID) (model.Inbox, error) { return d.inbox, nil }

func (d *stubDiary) DayDetail(_ context.Context, _ uuid.UUID, day model.Day) (model.DayDetail, error) {
	d.day = day
	return model.DayDetail{Day: day, OwnName: "Me", PartnerName: "Partner"}, nil
}

func (d *stubDiary) Month(_ context.Context, _ uuid.UUID, _ int, m time.Month) ([]model.MonthDayStatus, error) {
	if m < 1 || m > 12 {
		return nil, errs.ErrValidation
	}
	return d.month, nil
}

type stubPhotos struct {
	service.PhotoService
	uploaded *model.PhotoUpload
	photo    *model.MonthlyPhoto
}

func (p *stubPhotos) Upload(_ context.Context, _ uuid.UUID, year int, month time.Month, f model.PhotoUpload) (*model.MonthlyPhoto, error) {
	p.uploaded = &f
	return &model.MonthlyPhoto{ID: uuid.Must(uuid.NewV4()), Year: year, Month: month, URL: "/uploads/x.jpg"}, nil
}

func (p *stubPhotos) Get(context.Context, uuid.UUID, int, time.Month) (*model.MonthlyPhoto, error) {
	return p.photo, nil
}

type stubAnniversaries struct {
	service.AnniversaryService
	saved model.Day
}

func (a *stubAnniversaries) Save(_ context.Context, user uuid.UUID, date model.Day, name string) (*model.Anniversary, error) {
	a.saved = date
	return &model.Anniversary{ID: uuid.Must(uuid.NewV4()), UserID: user, Date: date, Name: name}, nil
}
