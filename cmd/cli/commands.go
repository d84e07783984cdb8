package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"strings"
	"time"

	"github.com/spf13/pflag"

	"github.com/and161185/lovary/internal/convert"
)

type app struct {
	api    *apiClient
	out    io.Writer
	errOut io.Writer
}

func (a *app) flags(name string) *pflag.FlagSet {
	fs := pflag.NewFlagSet(name, pflag.ContinueOnError)
	fs.SetOutput(a.errOut)
	return fs
}

func (a *app) print(v any) error { return printJSON(a.out, v) }

// get fetches path and prints the raw answer.
func (a *app) get(ctx context.Context, path string) error {
	var raw json.RawMessage
	if err := a.api.do(ctx, http.MethodGet, path, nil, &raw); err != nil {
		return err
	}
	return a.print(raw)
}

func (a *app) password(given string) (string, error) {
	if given != "" {
		return given, nil
	}
	return promptPassword(a.errOut)
}

func (a *app) register(ctx context.Context, args []string) error {
	fs := a.flags("register")
	email := fs.String("email", "", "email")
	name := fs.String("name", "", "display name")
	pass := fs.StringP("password", "p", "", "password (prompted when empty)")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if *email == "" || *name == "" {
		return errors.New("need --email and --name")
	}
	pw, err := a.password(*pass)
	if err != nil {
		return err
	}
	var out map[string]string
	req := convert.RegisterRequest{Email: *email, Password: pw, Name: *name}
	if err := a.api.do(ctx, http.MethodPost, "/api/auth/register", req, &out); err != nil {
		return err
	}
	return a.print(out)
}

func (a *app) login(ctx context.Context, args []string) error {
	fs := a.flags("login")
	email := fs.String("email", "", "email")
	pass := fs.StringP("password", "p", "", "password (prompted when empty)")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if *email == "" {
		return errors.New("need --email")
	}
	pw, err := a.password(*pass)
	if err != nil {
		return err
	}
	var tok convert.Token
	req := convert.LoginRequest{Email: *email, Password: pw}
	if err := a.api.do(ctx, http.MethodPost, "/api/auth/login", req, &tok); err != nil {
		return err
	}
	exp := tokenExpiry(tok)
	if err := saveToken(tok.AccessToken, exp); err != nil {
		return err
	}
	fmt.Fprintf(a.out, "logged in, token valid until %s\n", exp.UTC().Format(time.RFC3339))
	return nil
}

// body resolves --content/--file; "-" reads stdin.
func body(content, file string) (string, error) {
	switch {
	case content != "" && file != "":
		return "", errors.New("use either --content or --file")
	case file == "-":
		b, err := io.ReadAll(os.Stdin)
		return string(b), err
	case file != "":
		b, err := os.ReadFile(file)
		return string(b), err
	case content == "":
		return "", errors.New("need --content or --file")
	}
	return content, nil
}

func (a *app) write(ctx context.Context, args []string) error {
	fs := a.flags("write")
	title := fs.String("title", "", "entry title")
	content := fs.String("content", "", "entry text")
	file := fs.String("file", "", "read entry text from file (- for stdin)")
	photos := fs.StringArray("photo", nil, "attach a photo (repeatable)")
	if err := fs.Parse(args); err != nil {
		return err
	}
	text, err := body(*content, *file)
	if err != nil {
		return err
	}

	var raw json.RawMessage
	if len(*photos) > 0 {
		fields := map[string]string{"title": *title, "content": text}
		err = a.api.upload(ctx, "/api/diary/", fields, "photos", *photos, &raw)
	} else {
		err = a.api.do(ctx, http.MethodPost, "/api/diary/", convert.EntryRequest{Title: *title, Content: text}, &raw)
	}
	if err != nil {
		return err
	}
	return a.print(raw)
}

func (a *app) edit(ctx context.Context, args []string) error {
	fs := a.flags("edit")
	id := fs.String("id", "", "entry id (uuid)")
	title := fs.String("title", "", "entry title")
	content := fs.String("content", "", "entry text")
	file := fs.String("file", "", "read entry text from file (- for stdin)")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if *id == "" {
		return errors.New("need --id")
	}
	text, err := body(*content, *file)
	if err != nil {
		return err
	}
	var raw json.RawMessage
	req := convert.EntryRequest{Title: *title, Content: text}
	if err := a.api.do(ctx, http.MethodPut, "/api/diary/"+url.PathEscape(*id), req, &raw); err != nil {
		return err
	}
	return a.print(raw)
}

func oneArg(args []string, what string) (string, error) {
	if len(args) != 1 {
		return "", fmt.Errorf("need exactly one argument: %s", what)
	}
	return args[0], nil
}

func (a *app) day(ctx context.Context, args []string) error {
	s, err := oneArg(args, "YYYY-MM-DD")
	if err != nil {
		return err
	}
	d, err := time.Parse(time.DateOnly, s)
	if err != nil {
		return fmt.Errorf("bad date %q: %w", s, err)
	}
	return a.get(ctx, fmt.Sprintf("/api/diary/date/%d/%d/%d", d.Year(), int(d.Month()), d.Day()))
}

func parseMonth(s string) (int, int, error) {
	t, err := time.Parse("2006-01", s)
	if err != nil {
		return 0, 0, fmt.Errorf("bad month %q: %w", s, err)
	}
	return t.Year(), int(t.Month()), nil
}

func (a *app) month(ctx context.Context, args []string) error {
	s, err := oneArg(args, "YYYY-MM")
	if err != nil {
		return err
	}
	y, m, err := parseMonth(s)
	if err != nil {
		return err
	}
	return a.get(ctx, fmt.Sprintf("/api/diary/month/%d/%d", y, m))
}

func (a *app) partner(ctx context.Context, args []string) error {
	if len(args) == 0 {
		return errors.New("need a partner subcommand: request, requests, accept, reject, disconnect")
	}
	sub, rest := args[0], args[1:]
	switch sub {
	case "request":
		email, err := oneArg(rest, "EMAIL")
		if err != nil {
			return err
		}
		var raw json.RawMessage
		req := convert.PartnerRequestCreate{RecipientEmail: email}
		if err := a.api.do(ctx, http.MethodPost, "/api/users/partner-request", req, &raw); err != nil {
			return err
		}
		return a.print(raw)
	case "requests":
		return a.get(ctx, "/api/users/partner-requests")
	case "accept", "reject":
		id, err := oneArg(rest, "REQUEST_ID")
		if err != nil {
			return err
		}
		path := fmt.Sprintf("/api/users/partner-request/%s/%s", url.PathEscape(id), sub)
		if err := a.api.do(ctx, http.MethodPut, path, nil, nil); err != nil {
			return err
		}
		fmt.Fprintf(a.out, "request %s: %sed\n", id, sub)
		return nil
	case "disconnect":
		if err := a.api.do(ctx, http.MethodDelete, "/api/users/partner/disconnect", nil, nil); err != nil {
			return err
		}
		fmt.Fprintln(a.out, "disconnected")
		return nil
	default:
		return fmt.Errorf("unknown partner subcommand %q", sub)
	}
}

func (a *app) anniv(ctx context.Context, args []string) error {
	if len(args) == 0 {
		return errors.New("need an anniv subcommand: add, list")
	}
	switch args[0] {
	case "add":
		fs := a.flags("anniv add")
		date := fs.String("date", "", "YYYY-MM-DD")
		name := fs.String("name", "", "what happened")
		if err := fs.Parse(args[1:]); err != nil {
			return err
		}
		if *date == "" || strings.TrimSpace(*name) == "" {
			return errors.New("need --date and --name")
		}
		// server side validates the date; keep the raw text
		req := map[string]string{"date": *date, "name": *name}
		var raw json.RawMessage
		if err := a.api.do(ctx, http.MethodPost, "/api/anniversary/", req, &raw); err != nil {
			return err
		}
		return a.print(raw)
	case "list":
		fs := a.flags("anniv list")
		month := fs.Int("month", 0, "only this month (1-12)")
		if err := fs.Parse(args[1:]); err != nil {
			return err
		}
		if *month == 0 {
			return a.get(ctx, "/api/anniversary/")
		}
		if *month < 1 || *month > 12 {
			return fmt.Errorf("bad --month %d", *month)
		}
		return a.get(ctx, fmt.Sprintf("/api/anniversary/month/%d/%d", time.Now().Year(), *month))
	default:
		return fmt.Errorf("unknown anniv subcommand %q", args[0])
	}
}

func (a *app) photo(ctx context.Context, args []string) error {
	if len(args) == 0 {
		return errors.New("need a photo subcommand: upload, get")
	}
	switch args[0] {
	case "upload":
		if len(args) != 3 {
			return errors.New("usage: photo upload YYYY-MM FILE")
		}
		y, m, err := parseMonth(args[1])
		if err != nil {
			return err
		}
		var raw json.RawMessage
		path := fmt.Sprintf("/api/photos/upload/%d/%d", y, m)
		if err := a.api.upload(ctx, path, nil, "file", []string{args[2]}, &raw); err != nil {
			return err
		}
		return a.print(raw)
	case "get":
		s, err := oneArg(args[1:], "YYYY-MM")
		if err != nil {
			return err
		}
		y, m, err := parseMonth(s)
		if err != nil {
			return err
		}
		return a.get(ctx, fmt.Sprintf("/api/photos/%d/%d", y, m))
	default:
		return fmt.Errorf("unknown photo subcommand %q", args[0])
	}
}
