// Package service contains the application services behind the HTTP API.
package service

import (
	"context"
	"errors"
	"fmt"
	"net/mail"
	"strings"
	"time"

	pkgcrypto "github.com/and161185/lovary/internal/crypto"
	"github.com/and161185/lovary/internal/errs"
	"github.com/and161185/lovary/internal/limiter"
	"github.com/and161185/lovary/internal/model"
	"github.com/and161185/lovary/internal/repository"
	"github.com/gofrs/uuid/v5"
	"github.com/golang-jwt/jwt/v5"
	"go.uber.org/zap"
)

// AuthService defines registration, login and token verification.
type AuthService interface {
	// Register creates a new account and returns its ID.
	Register(ctx context.Context, email, password, name string) (uuid.UUID, error)
	// Login applies rate-limiting and authenticates the user.
	Login(ctx context.Context, email, password, ip string) (model.Tokens, model.User, error)
	// VerifyToken validates an access token and returns its subject.
	VerifyToken(token string) (uuid.UUID, error)
}

type AuthServiceImpl struct {
	users     repository.UserRepository
	signKey   []byte
	accessTTL time.Duration
	lim       limiter.Limiter
	now       func() time.Time
	log       *zap.Logger
}

// NewAuthService constructs AuthService with required dependencies.
func NewAuthService(users repository.UserRepository, signKey []byte, accessTTL time.Duration, lim limiter.Limiter, log *zap.Logger) *AuthServiceImpl {
	return &AuthServiceImpl{users: users, signKey: signKey, accessTTL: accessTTL, lim: lim, now: time.Now, log: log}
}

func normalizeEmail(email string) string { return strings.ToLower(strings.TrimSpace(email)) }

// Register validates input, hashes the password and stores the user.
func (s *AuthServiceImpl) Register(ctx context.Context, email, password, name string) (uuid.UUID, error) {
	email = normalizeEmail(email)
	name = strings.TrimSpace(name)
	if _, err := mail.ParseAddress(email); err != nil {
		return uuid.Nil, fmt.Errorf("%w: invalid email", errs.ErrValidation)
	}
	if password == "" || name == "" {
		return uuid.Nil, fmt.Errorf("%w: empty password or name", errs.ErrValidation)
	}

	uid, err := uuid.NewV4()
	if err != nil {
		return uuid.Nil, err
	}
	hash, err := pkgcrypto.HashPassword(password)
	if err != nil {
		return uuid.Nil, err
	}
	u := &model.User{ID: uid, Email: email, Name: name, PwdHash: hash, CreatedAt: s.now().UTC()}
	if err := s.users.Create(ctx, u); err != nil {
		return uuid.Nil, err
	}
	return uid, nil
}

// Login authenticates with rate limiting by (email, ip).
func (s *AuthServiceImpl) Login(ctx context.Context, email, password, ip string) (model.Tokens, model.User, error) {
	email = normalizeEmail(email)
	ipHash := limiter.HashIP(ip)

	allowed, _, err := s.lim.Allow(ctx, email, ipHash)
	if err != nil {
		return model.Tokens{}, model.User{}, err
	}
	if !allowed {
		return model.Tokens{}, model.User{}, errs.ErrRateLimited
	}

	u, err := s.users.GetByEmail(ctx, email)
	ok := false
	if err == nil {
		ok, err = pkgcrypto.VerifyPassword(password, u.PwdHash)
	}
	if err != nil && !errors.Is(err, errs.ErrNotFound) && !errors.Is(err, pkgcrypto.ErrMalformedHash) {
		return model.Tokens{}, model.User{}, err
	}
	if !ok {
		blocked, _, ferr := s.lim.Failure(ctx, email, ipHash)
		if ferr != nil {
			s.log.Warn("record failed login", zap.Error(ferr))
		} else if blocked {
			return model.Tokens{}, model.User{}, errs.ErrRateLimited
		}
		// unknown email and wrong password look the same
		return model.Tokens{}, model.User{}, errs.ErrUnauthorized
	}

	if err := s.lim.Success(ctx, email, ipHash); err != nil {
		s.log.Warn("reset login failures", zap.Error(err))
	}

	access, exp, err := s.issueAccessToken(u.ID)
	if err != nil {
		return model.Tokens{}, model.User{}, err
	}
	return model.Tokens{AccessToken: access, ExpiresAt: exp}, *u, nil
}

// issueAccessToken creates a signed HS256 JWT for the given subject.
func (s *AuthServiceImpl) issueAccessToken(userID uuid.UUID) (string, time.Time, error) {
	now := s.now()
	exp := now.Add(s.accessTTL)
	claims := jwt.RegisteredClaims{
		Subject:   userID.String(),
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(exp),
	}
	tok := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := tok.SignedString(s.signKey)
	return signed, exp, err
}

// VerifyToken checks signature, algorithm and expiry of an access token.
func (s *AuthServiceImpl) VerifyToken(token string) (uuid.UUID, error) {
	var claims jwt.RegisteredClaims
	parsed, err := jwt.ParseWithClaims(token, &claims, func(t *jwt.Token) (any, error) {
		if t.Method != jwt.SigningMethodHS256 {
			return nil, errors.New("unexpected signing method")
		}
		return s.signKey, nil
	}, jwt.WithLeeway(30*time.Second), jwt.WithTimeFunc(s.now), jwt.WithExpirationRequired())
	if err != nil || !parsed.Valid {
		return uuid.Nil, fmt.Errorf("%w: invalid token", errs.ErrUnauthorized)
	}
	id, err := uuid.FromString(claims.Subject)
	if err != nil {
		return uuid.Nil, fmt.Errorf("%w: bad subject", errs.ErrUnauthorized)
	}
	return id, nil
}
