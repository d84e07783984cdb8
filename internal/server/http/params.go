package httpserver

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime"
	"mime/multipart"
	"net/http"
	"strconv"
	"time"

	"github.com/and161185/lovary/internal/errs"
	"github.com/and161185/lovary/internal/model"
	"github.com/go-chi/chi/v5"
	"github.com/gofrs/uuid/v5"
)

const (
	maxJSONBytes   = 1 << 20
	maxEntryPhotos = 10
)

func decodeJSON(w http.ResponseWriter, r *http.Request, dst any) error {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxJSONBytes))
	if err := dec.Decode(dst); err != nil {
		var mbe *http.MaxBytesError
		if errors.As(err, &mbe) {
			return errTooLarge
		}
		return fmt.Errorf("%w: malformed JSON body", errs.ErrValidation)
	}
	return nil
}

func mediaType(r *http.Request) string {
	mt, _, err := mime.ParseMediaType(r.Header.Get("Content-Type"))
	if err != nil {
		return ""
	}
	return mt
}

func isMultipart(r *http.Request) bool { return mediaType(r) == "multipart/form-data" }

func pathUUID(r *http.Request, name string) (uuid.UUID, error) {
	id, err := uuid.FromString(chi.URLParam(r, name))
	if err != nil {
		return uuid.Nil, fmt.Errorf("%w: bad %s", errs.ErrValidation, name)
	}
	return id, nil
}

func pathInt(r *http.Request, name string) (int, error) {
	n, err := strconv.Atoi(chi.URLParam(r, name))
	if err != nil {
		return 0, fmt.Errorf("%w: bad %s", errs.ErrValidation, name)
	}
	return n, nil
}

func pathYearMonth(r *http.Request) (int, time.Month, error) {
	y, err := pathInt(r, "year")
	if err != nil {
		return 0, 0, err
	}
	m, err := pathInt(r, "month")
	if err != nil {
		return 0, 0, err
	}
	return y, time.Month(m), nil
}

// pathDay rejects dates time.Date would silently normalize, like Feb 30.
func pathDay(r *http.Request) (model.Day, error) {
	y, m, err := pathYearMonth(r)
	if err != nil {
		return model.Day{}, err
	}
	d, err := pathInt(r, "day")
	if err != nil {
		return model.Day{}, err
	}
	want := model.Day{Year: y, Month: m, Day: d}
	if model.Date(y, m, d) != want || y < 1970 || y > 9999 {
		return model.Day{}, fmt.Errorf("%w: no such date", errs.ErrValidation)
	}
	return want, nil
}

// parseMultipart reads a multipart body capped at the number of files it may carry.
func (s *Server) parseMultipart(w http.ResponseWriter, r *http.Request, files int) error {
	r.Body = http.MaxBytesReader(w, r.Body, int64(files)*s.opts.MaxFileBytes+maxJSONBytes)
	if err := r.ParseMultipartForm(32 << 20); err != nil {
		var mbe *http.MaxBytesError
		if errors.As(err, &mbe) {
			return errTooLarge
		}
		return fmt.Errorf("%w: malformed multipart body", errs.ErrValidation)
	}
	return nil
}

// formFiles loads every non-empty file of field, enforcing the file count and
// per-file limits.
func (s *Server) formFiles(r *http.Request, field string, maxFiles int) ([]model.PhotoUpload, error) {
	if r.MultipartForm == nil {
		return nil, nil
	}
	if n := len(r.MultipartForm.File[field]); n > maxFiles {
		return nil, fmt.Errorf("%w: %d files in %q, at most %d allowed", errs.ErrValidation, n, field, maxFiles)
	}
	var out []model.PhotoUpload
	for _, fh := range r.MultipartForm.File[field] {
		if fh.Filename == "" || fh.Size == 0 {
			continue
		}
		if fh.Size > s.opts.MaxFileBytes {
			return nil, fmt.Errorf("%w: %s exceeds %d MiB", errTooLarge, fh.Filename, s.opts.MaxFileBytes>>20)
		}
		data, err := readPart(fh)
		if err != nil {
			return nil, err
		}
		out = append(out, model.PhotoUpload{
			Filename:    fh.Filename,
			ContentType: fh.Header.Get("Content-Type"),
			Data:        data,
		})
	}
	return out, nil
}

func readPart(fh *multipart.FileHeader) ([]byte, error) {
	f, err := fh.Open()
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return io.ReadAll(f)
}
