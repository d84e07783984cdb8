// Command lv is a CLI client for the lovary diary service.
package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/spf13/pflag"
	"golang.org/x/term"

	"github.com/and161185/lovary/internal/convert"
)

// ---- config/token store ----

type tokenFile struct {
	AccessToken string    `json:"access_token"`
	ExpiresAt   time.Time `json:"expires_at"`
}

func cfgDir() string {
	if v := os.Getenv("XDG_CONFIG_HOME"); v != "" {
		return filepath.Join(v, "lovary")
	}
	home, _ := os.UserHomeDir()
	return filepath.Join(home, ".config", "lovary")
}

func tokenPath() string { return filepath.Join(cfgDir(), "token.json") }

func saveToken(tok string, exp time.Time) error {
	if err := os.MkdirAll(cfgDir(), 0o700); err != nil {
		return err
	}
	f, err := os.OpenFile(tokenPath(), os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0o600)
	if err != nil {
		return err
	}
	defer f.Close()
	enc := json.NewEncoder(f)
	enc.SetIndent("", "  ")
	return enc.Encode(tokenFile{AccessToken: tok, ExpiresAt: exp})
}

var errLoginRequired = errors.New("no valid token (login required)")

func loadToken() (string, error) {
	b, err := os.ReadFile(tokenPath())
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return "", errLoginRequired
		}
		return "", err
	}
	var tf tokenFile
	if err := json.Unmarshal(b, &tf); err != nil {
		return "", err
	}
	if tf.AccessToken == "" || time.Now().After(tf.ExpiresAt) {
		return "", errLoginRequired
	}
	return tf.AccessToken, nil
}

func dropToken() error {
	err := os.Remove(tokenPath())
	if errors.Is(err, os.ErrNotExist) {
		return nil
	}
	return err
}

// tokenExpiry prefers the server's expires_at and falls back to the JWT exp claim.
func tokenExpiry(t convert.Token) time.Time {
	if !t.ExpiresAt.IsZero() {
		return t.ExpiresAt
	}
	var claims jwt.RegisteredClaims
	_, _, err := jwt.NewParser().ParseUnverified(t.AccessToken, &claims)
	if err == nil && claims.ExpiresAt != nil {
		return claims.ExpiresAt.Time
	}
	return time.Now().Add(time.Hour)
}

var readPassword = term.ReadPassword

func promptPassword(errOut io.Writer) (string, error) {
	fmt.Fprint(errOut, "Password: ")
	b, err := readPassword(int(os.Stdin.Fd()))
	fmt.Fprintln(errOut)
	if err != nil {
		return "", err
	}
	return string(b), nil
}

func printJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func usage(w io.Writer) {
	fmt.Fprintln(w, `lv - lovary CLI

Usage:
  lv [--server URL] <command> [flags]

Commands:
  register --email E --name N [-p PASS]
  login --email E [-p PASS]
  logout
  me
  write [--title T] (--content C | --file F) [--photo P ...]
  edit --id ID [--title T] (--content C | --file F)
  today
  day YYYY-MM-DD
  month YYYY-MM
  mine
  partner request EMAIL | requests | accept ID | reject ID | disconnect
  anniv add --date YYYY-MM-DD --name N | list [--month M]
  photo upload YYYY-MM FILE | get YYYY-MM
  version`)
}

var (
	version   = "dev"
	buildDate = "unknown"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, os.Args[1:], os.Stdout, os.Stderr); err != nil {
		fail(err)
	}
}

func run(ctx context.Context, args []string, out, errOut io.Writer) error {
	fs := pflag.NewFlagSet("lv", pflag.ContinueOnError)
	fs.SetInterspersed(false)
	fs.SetOutput(errOut)
	server := fs.String("server", envOr("LOVARY_SERVER", "http://localhost:8000"), "API base URL")
	fs.Usage = func() { usage(errOut) }
	if err := fs.Parse(args); err != nil {
		if errors.Is(err, pflag.ErrHelp) {
			return nil
		}
		return err
	}
	if fs.NArg() == 0 {
		usage(errOut)
		return errors.New("no command")
	}

	a := &app{api: newClient(*server, ""), out: out, errOut: errOut}
	cmd, rest := fs.Arg(0), fs.Args()[1:]

	switch cmd {
	case "version":
		fmt.Fprintf(out, "lv %s (%s)\n", version, buildDate)
		return nil
	case "register":
		return a.register(ctx, rest)
	case "login":
		return a.login(ctx, rest)
	case "logout":
		return dropToken()
	case "help":
		usage(out)
		return nil
	}

	token, err := loadToken()
	if err != nil {
		return err
	}
	a.api.token = token

	switch cmd {
	case "me":
		return a.get(ctx, "/api/users/me")
	case "write":
		return a.write(ctx, rest)
	case "edit":
		return a.edit(ctx, rest)
	case "today":
		return a.get(ctx, "/api/diary/today")
	case "day":
		return a.day(ctx, rest)
	case "month":
		return a.month(ctx, rest)
	case "mine":
		return a.get(ctx, "/api/diary/my")
	case "partner":
		return a.partner(ctx, rest)
	case "anniv":
		return a.anniv(ctx, rest)
	case "photo":
		return a.photo(ctx, rest)
	default:
		usage(errOut)
		return fmt.Errorf("unknown command %q", cmd)
	}
}

func envOr(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

// ---- helpers ----

func fail(err error) {
	var ae *apiError
	if errors.As(err, &ae) {
		fmt.Fprintf(os.Stderr, "api error: code=%s status=%d msg=%s\n", ae.Code, ae.Status, ae.Message)
		os.Exit(1)
	}
	fmt.Fprintln(os.Stderr, err)
	os.Exit(1)
}
