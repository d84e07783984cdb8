package httpserver

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/and161185/lovary/internal/errs"
	"github.com/and161185/lovary/internal/model"
	"github.com/and161185/lovary/internal/service"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
)

type fixture struct {
	auth    *stubAuth
	users   *stubUsers
	pairing *stubPairing
	diary   *stubDiary
	photos  *stubPhotos
	annivs  *stubAnniversaries
	h       http.Handler
}

func newFixture(t *testing.T, opts Options) *fixture {
	t.Helper()
	f := &fixture{
		auth:    &stubAuth{},
		users:   &stubUsers{profile: service.Profile{User: model.User{ID: testUser, Email: "a@x.io", Name: "A"}}},
		pairing: &stubPairing{},
		diary:   &stubDiary{},
		photos:  &stubPhotos{},
		annivs:  &stubAnniversaries{},
	}
	srv := New(Services{
		Auth:          f.auth,
		Users:         f.users,
		Pairing:       f.pairing,
		Diary:         f.diary,
		Anniversaries: f.annivs,
		Photos:        f.photos,
	}, opts, zaptest.NewLogger(t))
	f.h = srv.Handler()
	return f
}

func (f *fixture) do(t *testing.T, method, path, contentType string, body io.Reader) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, path, body)
	req.Header.Set("Authorization", "Bearer "+goodToken)
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	rec := httptest.NewRecorder()
	f.h.ServeHTTP(rec, req)
	return rec
}

func decodeErr(t *testing.T, rec *httptest.ResponseRecorder) ErrorResponse {
	t.Helper()
	var e ErrorResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &e), rec.Body.String())
	return e
}

func multipartBody(t *testing.T, fields map[string]string, fileField string, files map[string][]byte) (string, *bytes.Buffer) {
	t.Helper()
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	for k, v := range fields {
		require.NoError(t, mw.WriteField(k, v))
	}
	for name, data := range files {
		fw, err := mw.CreateFormFile(fileField, name)
		require.NoError(t, err)
		_, err = fw.Write(data)
		require.NoError(t, err)
	}
	require.NoError(t, mw.Close())
	return mw.FormDataContentType(), &buf
}

func TestStatusOf(t *testing.T) {
	cases := []struct {
		err    error
		status int
		code   string
	}{
		{fmt.Errorf("%w: empty name", errs.ErrValidation), http.StatusBadRequest, "validation_error"},
		{errs.ErrUnauthorized, http.StatusUnauthorized, "unauthorized"},
		{errs.ErrRateLimited, http.StatusTooManyRequests, "rate_limited"},
		{errs.ErrNotFound, http.StatusNotFound, "not_found"},
		{errs.ErrAlreadyExists, http.StatusConflict, "already_exists"},
		{errs.ErrAlreadyExpired, http.StatusBadRequest, "already_expired"},
		{errs.ErrDuplicateEntry, http.StatusConflict, "duplicate_entry"},
		{errs.ErrWindowClosed, http.StatusForbidden, "window_closed"},
		{errs.ErrNoPartner, http.StatusBadRequest, "no_partner"},
		{errs.ErrAlreadyPaired, http.StatusConflict, "already_paired"},
		{errs.ErrSelfPairing, http.StatusBadRequest, "self_pairing"},
		{errs.ErrRequestExists, http.StatusConflict, "request_exists"},
		{errTooLarge, http.StatusRequestEntityTooLarge, "too_large"},
		{errors.New("db down"), http.StatusInternalServerError, "internal_error"},
	}
	for _, c := range cases {
		status, code := statusOf(c.err)
		assert.Equal(t, c.status, status, c.err.Error())
		assert.Equal(t, c.code, code, c.err.Error())
	}
}

func TestAuth_Required(t *testing.T) {
	f := newFixture(t, Options{})

	for _, h := range []string{"", "Basic abc", "Bearer ", "Bearer nope"} {
		req := httptest.NewRequest(http.MethodGet, "/api/users/me", nil)
		if h != "" {
			req.Header.Set("Authorization", h)
		}
		rec := httptest.NewRecorder()
		f.h.ServeHTTP(rec, req)
		assert.Equal(t, http.StatusUnauthorized, rec.Code, h)
		assert.NotEmpty(t, rec.Header().Get("WWW-Authenticate"))
	}

	rec := f.do(t, http.MethodGet, "/api/users/me", "", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"email":"a@x.io"`)
}

func TestRegisterAndLogin(t *testing.T) {
	f := newFixture(t, Options{})

	rec := f.do(t, http.MethodPost, "/api/auth/register", "application/json",
		strings.NewReader(`{"email":"a@x.io","password":"pw","name":"A"}`))
	require.Equal(t, http.StatusCreated, rec.Code)
	assert.Contains(t, rec.Body.String(), testUser.String())

	rec = f.do(t, http.MethodPost, "/api/auth/register", "application/json", strings.NewReader(`{`))
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	// form login, as OAuth2 password clients send it
	req := httptest.NewRequest(http.MethodPost, "/api/auth/login", strings.NewReader("username=a%40x.io&password=pw"))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.RemoteAddr = "10.0.0.7:5555"
	rec = httptest.NewRecorder()
	f.h.ServeHTTP(rec, req)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Equal(t, "a@x.io", f.auth.gotEmail)
	assert.Equal(t, "10.0.0.7", f.auth.gotIP)
	assert.Contains(t, rec.Body.String(), `"token_type":"bearer"`)

	f.auth.loginErr = errs.ErrRateLimited
	rec = f.do(t, http.MethodPost, "/api/auth/login", "application/json", strings.NewReader(`{"email":"a@x.io","password":"pw"}`))
	assert.Equal(t, http.StatusTooManyRequests, rec.Code)
	assert.Equal(t, "rate_limited", decodeErr(t, rec).Error)
}

func TestLogin_ForwardingHeadersNeedTrust(t *testing.T) {
	login := func(f *fixture) {
		req := httptest.NewRequest(http.MethodPost, "/api/auth/login", strings.NewReader(`{"email":"a@x.io","password":"pw"}`))
		req.Header.Set("Content-Type", "application/json")
		req.Header.Set("X-Forwarded-For", "203.0.113.99")
		req.Header.Set("X-Real-IP", "203.0.113.98")
		req.RemoteAddr = "10.0.0.7:5555"
		rec := httptest.NewRecorder()
		f.h.ServeHTTP(rec, req)
		require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	}

	f := newFixture(t, Options{})
	login(f)
	assert.Equal(t, "10.0.0.7", f.auth.gotIP, "a client cannot pick its own limiter key")

	f = newFixture(t, Options{TrustProxyHeaders: true})
	login(f)
	assert.Contains(t, []string{"203.0.113.98", "203.0.113.99"}, f.auth.gotIP)
}

func TestCreateEntry_MultipartWithPhotos(t *testing.T) {
	f := newFixture(t, Options{})
	ct, body := multipartBody(t, map[string]string{"title": "Day", "content": "We walked"},
		"photos", map[string][]byte{"a.jpg": []byte("jpeg-bytes")})

	rec := f.do(t, http.MethodPost, "/api/diary/", ct, body)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	assert.Equal(t, model.EntryInput{Title: "Day", Body: "We walked"}, f.diary.createIn)
	require.Len(t, f.diary.createPhotos, 1)
	assert.Equal(t, "a.jpg", f.diary.createPhotos[0].Filename)
	assert.Equal(t, []byte("jpeg-bytes"), f.diary.createPhotos[0].Data)
	assert.Contains(t, rec.Body.String(), `"date":"2024-03-10"`)
}

func TestCreateEntry_JSONAndGateErrors(t *testing.T) {
	f := newFixture(t, Options{})

	rec := f.do(t, http.MethodPost, "/api/diary", "application/json", strings.NewReader(`{"title":"t","content":"c"}`))
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	assert.Empty(t, f.diary.createPhotos)

	f.diary.createErr = errs.ErrDuplicateEntry
	rec = f.do(t, http.MethodPost, "/api/diary", "application/json", strings.NewReader(`{"title":"t","content":"c"}`))
	assert.Equal(t, http.StatusConflict, rec.Code)
	e := decodeErr(t, rec)
	assert.Equal(t, "duplicate_entry", e.Error)
	assert.Equal(t, errs.ErrDuplicateEntry.Error(), e.Message)
}

func TestCreateEntry_FileTooLarge(t *testing.T) {
	f := newFixture(t, Options{MaxFileBytes: 8})
	ct, body := multipartBody(t, map[string]string{"title": "t", "content": "c"},
		"photos", map[string][]byte{"big.jpg": []byte("0123456789")})

	rec := f.do(t, http.MethodPost, "/api/diary", ct, body)
	assert.Equal(t, http.StatusRequestEntityTooLarge, rec.Code)
	assert.Equal(t, model.EntryInput{}, f.diary.createIn, "service not called")
}

func TestCreateEntry_TooManyPhotos(t *testing.T) {
	f := newFixture(t, Options{})
	files := map[string][]byte{}
	for i := 0; i <= maxEntryPhotos; i++ {
		files[fmt.Sprintf("p%02d.jpg", i)] = []byte("x")
	}
	ct, body := multipartBody(t, map[string]string{"title": "t", "content": "c"}, "photos", files)

	rec := f.do(t, http.MethodPost, "/api/diary", ct, body)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "validation_error", decodeErr(t, rec).Error)
	assert.Equal(t, model.EntryInput{}, f.diary.createIn, "service not called")

	delete(files, "p00.jpg")
	ct, body = multipartBody(t, map[string]string{"title": "t", "content": "c"}, "photos", files)
	rec = f.do(t, http.MethodPost, "/api/diary", ct, body)
	assert.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
}

func TestToday_LockedPartnerIsNull(t *testing.T) {
	f := newFixture(t, Options{})
	f.diary.inbox = model.Inbox{Day: model.Date(2024, 3, 10)}

	rec := f.do(t, http.MethodGet, "/api/diary/today", "", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"date":"2024-03-10","my_diary":null,"partner_diary":null}`, rec.Body.String())

	rec = f.do(t, http.MethodGet, "/api/diary/partner", "", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `[]`, rec.Body.String())
}

func TestDayRoute_ValidatesDate(t *testing.T) {
	f := newFixture(t, Options{})

	rec := f.do(t, http.MethodGet, "/api/diary/date/2024/02/29", "", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, model.Date(2024, 2, 29), f.diary.day)
	assert.Contains(t, rec.Body.String(), `"partner_name":"Partner"`)

	for _, p := range []string{"/api/diary/date/2023/02/29", "/api/diary/date/2024/13/01", "/api/diary/date/x/1/1"} {
		rec = f.do(t, http.MethodGet, p, "", nil)
		assert.Equal(t, http.StatusBadRequest, rec.Code, p)
	}
}

func TestMonthRoute(t *testing.T) {
	f := newFixture(t, Options{})
	f.diary.month = []model.MonthDayStatus{{Date: model.Date(2024, 2, 1), Status: model.DayPast, HasOwnEntry: true}}

	rec := f.do(t, http.MethodGet, "/api/diary/month/2024/2", "", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var got map[string]map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &got))
	assert.Equal(t, true, got["1"]["has_my_diary"])

	rec = f.do(t, http.MethodGet, "/api/diary/month/2024/13", "", nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestPairingAndAccount(t *testing.T) {
	f := newFixture(t, Options{})

	rec := f.do(t, http.MethodPut, "/api/users/partner-request/not-a-uuid/accept", "", nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	id := "3b241101-e2bb-4255-8caf-4136c566a962"
	rec = f.do(t, http.MethodPut, "/api/users/partner-request/"+id+"/accept", "", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, id, f.pairing.accepted[0].String())
	assert.Contains(t, rec.Body.String(), `"status":"accepted"`)

	f.pairing.err = errs.ErrNoPartner
	rec = f.do(t, http.MethodDelete, "/api/users/partner/disconnect", "", nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "no_partner", decodeErr(t, rec).Error)

	rec = f.do(t, http.MethodPut, "/api/users/me", "application/json", strings.NewReader(`{"reminder_time":"21:00"}`))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Nil(t, f.users.upd.Name)
	require.NotNil(t, f.users.upd.ReminderTime)
	assert.Equal(t, "21:00", *f.users.upd.ReminderTime)

	rec = f.do(t, http.MethodDelete, "/api/users/account", "", nil)
	assert.Equal(t, http.StatusNoContent, rec.Code)
	assert.True(t, f.users.deleted)
}

func TestAnniversaryAndPhotos(t *testing.T) {
	f := newFixture(t, Options{})

	rec := f.do(t, http.MethodPost, "/api/anniversary", "application/json", strings.NewReader(`{"date":"2021-05-04","name":"First date"}`))
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Equal(t, model.Date(2021, 5, 4), f.annivs.saved)

	rec = f.do(t, http.MethodGet, "/api/photos/2024/3", "", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "null", strings.TrimSpace(rec.Body.String()))

	ct, body := multipartBody(t, nil, "file", map[string][]byte{"us.png": []byte("png")})
	rec = f.do(t, http.MethodPost, "/api/photos/upload/2024/3", ct, body)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	require.NotNil(t, f.photos.uploaded)
	assert.Equal(t, "us.png", f.photos.uploaded.Filename)
	assert.Contains(t, rec.Body.String(), `"month":3`)

	rec = f.do(t, http.MethodPost, "/api/photos/upload/2024/3", "application/json", strings.NewReader(`{}`))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestRecoverer_PanicBecomes500(t *testing.T) {
	f := newFixture(t, Options{})
	f.diary.panicOnMine = true

	rec := f.do(t, http.MethodGet, "/api/diary/my", "", nil)
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.Equal(t, "internal_error", decodeErr(t, rec).Error)
}

func TestCORSAndUploads(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(dir, "monthly"), 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "monthly", "x.jpg"), []byte("img"), 0o644))
	f := newFixture(t, Options{CORSOrigins: []string{"https://lovary.example"}, UploadDir: dir})

	req := httptest.NewRequest(http.MethodOptions, "/api/diary/today", nil)
	req.Header.Set("Origin", "https://lovary.example")
	req.Header.Set("Access-Control-Request-Method", http.MethodGet)
	req.Header.Set("Access-Control-Request-Headers", "Authorization")
	rec := httptest.NewRecorder()
	f.h.ServeHTTP(rec, req)
	assert.Equal(t, "https://lovary.example", rec.Header().Get("Access-Control-Allow-Origin"))

	req = httptest.NewRequest(http.MethodGet, "/uploads/monthly/x.jpg", nil)
	rec = httptest.NewRecorder()
	f.h.ServeHTTP(rec, req)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "img", rec.Body.String())
}
