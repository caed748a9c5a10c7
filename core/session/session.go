// Package session keeps track of the admins signed in to the dashboard and
// of the upstream token each of them acts with.
package session

import (
	"context"
	"time"

	"github.com/dgrijalva/jwt-go"
	"github.com/google/uuid"
	"github.com/pkg/errors"

	"github.com/trezcool/campusdesk/core"
)

var (
	NowFunc = time.Now // mockable

	// errors
	ErrNotFound           = errors.New("session not found")
	ErrExpired            = errors.New("session expired")
	ErrInvalidCredentials = errors.New("invalid credentials")
)

type (
	// Session is an admin signed in through the upstream API.
	Session struct {
		ID        string    `db:"id" json:"id"`
		AdminID   string    `db:"admin_id" json:"admin_id"`
		Name      string    `db:"name" json:"name"`
		Email     string    `db:"email" json:"email"`
		Token     string    `db:"token" json:"-"` // upstream bearer token
		CreatedAt time.Time `db:"created_at" json:"created_at"`
		ExpiresAt time.Time `db:"expires_at" json:"expires_at"`
	}

	// Credentials is what the upstream returns on a successful admin login.
	Credentials struct {
		Token   string
		AdminID string
		Name    string
		Email   string
	}

	Authenticator interface {
		// Login returns ErrInvalidCredentials when the upstream rejects email & password.
		Login(ctx context.Context, email, password string) (Credentials, error)
	}

	Repository interface {
		CreateSession(ctx context.Context, sess Session) (Session, error)
		// GetSessionByID returns ErrNotFound when there is no such session.
		GetSessionByID(ctx context.Context, id string) (Session, error)
		DeleteSessionsByID(ctx context.Context, ids ...string) error
		// DeleteExpiredSessions deletes sessions expiring at or before now.
		DeleteExpiredSessions(ctx context.Context, now time.Time) (int64, error)
	}

	Service struct {
		repo   Repository
		auth   Authenticator
		ttl    time.Duration
		logger core.Logger
	}
)

func (s Session) IsExpired(now time.Time) bool {
	return !now.Before(s.ExpiresAt)
}

func NewService(repo Repository, auth Authenticator, conf *core.Config, logger core.Logger) *Service {
	return &Service{repo: repo, auth: auth, ttl: conf.Listing.SessionTTL, logger: logger}
}

// Login authenticates against the upstream and opens a session holding its token.
// The session expires with the upstream token, or after the configured TTL when the token has no expiry.
func (svc *Service) Login(ctx context.Context, email, password string) (Session, error) {
	email = core.CleanString(email, true /* lower */)
	if email == "" || password == "" {
		return Session{}, core.NewValidationError(ErrInvalidCredentials)
	}

	creds, err := svc.auth.Login(ctx, email, password)
	if err != nil {
		if errors.Cause(err) == ErrInvalidCredentials {
			return Session{}, core.NewValidationError(ErrInvalidCredentials)
		}
		return Session{}, errors.Wrap(err, "authenticating upstream")
	}

	now := NowFunc().UTC()
	expiresAt, ok := tokenExpiry(creds.Token)
	if !ok {
		expiresAt = now.Add(svc.ttl)
	}
	if !expiresAt.After(now) {
		return Session{}, errors.Wrap(ErrExpired, "upstream token")
	}

	sess := Session{
		ID:        uuid.New().String(),
		AdminID:   creds.AdminID,
		Name:      creds.Name,
		Email:     creds.Email,
		Token:     creds.Token,
		CreatedAt: now,
		ExpiresAt: expiresAt.UTC(),
	}
	if sess.Email == "" {
		sess.Email = email
	}
	sess, err = svc.repo.CreateSession(ctx, sess)
	if err != nil {
		return Session{}, errors.Wrap(err, "creating session")
	}
	svc.logger.Info("admin signed in", sess)
	return sess, nil
}

// Get returns a live session. Expired sessions are deleted and reported as ErrExpired.
func (svc *Service) Get(ctx context.Context, id string) (Session, error) {
	sess, err := svc.repo.GetSessionByID(ctx, id)
	if err != nil {
		return Session{}, err
	}
	if sess.IsExpired(NowFunc()) {
		if err := svc.repo.DeleteSessionsByID(ctx, sess.ID); err != nil {
			return Session{}, errors.Wrap(err, "deleting expired session")
		}
		return Session{}, ErrExpired
	}
	return sess, nil
}

// Logout deletes the session. Unknown sessions are ignored.
func (svc *Service) Logout(ctx context.Context, id string) error {
	return errors.Wrap(svc.repo.DeleteSessionsByID(ctx, id), "deleting session")
}

// PurgeExpired deletes every expired session and returns how many were deleted.
func (svc *Service) PurgeExpired(ctx context.Context) (int64, error) {
	n, err := svc.repo.DeleteExpiredSessions(ctx, NowFunc().UTC())
	if err != nil {
		return 0, errors.Wrap(err, "deleting expired sessions")
	}
	return n, nil
}

// tokenExpiry reads the exp claim of a JWT without verifying it; the upstream owns the key.
func tokenExpiry(token string) (time.Time, bool) {
	claims := new(jwt.StandardClaims)
	if _, _, err := new(jwt.Parser).ParseUnverified(token, claims); err != nil {
		return time.Time{}, false
	}
	if claims.ExpiresAt == 0 {
		return time.Time{}, false
	}
	return time.Unix(claims.ExpiresAt, 0), true
}
