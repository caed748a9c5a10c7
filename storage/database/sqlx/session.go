package sqlxrepos

import (
	"context"
	"database/sql"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/pkg/errors"

	"github.com/trezcool/campusdesk/core/session"
)

const sessionColumns = "id, admin_id, name, email, token, created_at, expires_at"

type sessionRepository struct {
	db *sqlx.DB
}

var _ session.Repository = (*sessionRepository)(nil) // interface compliance check

func NewSessionRepository(db *sqlx.DB) *sessionRepository {
	return &sessionRepository{db: db}
}

// normalize keeps stored times in UTC, whatever the driver hands back.
func normalize(sess session.Session) session.Session {
	sess.CreatedAt = sess.CreatedAt.UTC()
	sess.ExpiresAt = sess.ExpiresAt.UTC()
	return sess
}

func (repo sessionRepository) CreateSession(ctx context.Context, sess session.Session) (session.Session, error) {
	sess = normalize(sess)
	q := repo.db.Rebind("INSERT INTO sessions (" + sessionColumns + ") VALUES (?, ?, ?, ?, ?, ?, ?)")
	if _, err := repo.db.ExecContext(
		ctx, q,
		sess.ID, sess.AdminID, sess.Name, sess.Email, sess.Token, sess.CreatedAt, sess.ExpiresAt,
	); err != nil {
		return session.Session{}, errors.Wrap(err, "inserting session")
	}
	return sess, nil
}

func (repo sessionRepository) GetSessionByID(ctx context.Context, id string) (session.Session, error) {
	var sess session.Session
	q := repo.db.Rebind("SELECT " + sessionColumns + " FROM sessions WHERE id = ?")
	if err := repo.db.GetContext(ctx, &sess, q, id); err != nil {
		if err == sql.ErrNoRows {
			return session.Session{}, session.ErrNotFound
		}
		return session.Session{}, errors.Wrap(err, "selecting session")
	}
	return normalize(sess), nil
}

func (repo sessionRepository) DeleteSessionsByID(ctx context.Context, ids ...string) error {
	if len(ids) == 0 {
		return nil
	}
	q, args, err := sqlx.In("DELETE FROM sessions WHERE id IN (?)", ids)
	if err != nil {
		return errors.Wrap(err, "building delete query")
	}
	if _, err = repo.db.ExecContext(ctx, repo.db.Rebind(q), args...); err != nil {
		return errors.Wrap(err, "deleting sessions")
	}
	return nil
}

func (repo sessionRepository) DeleteExpiredSessions(ctx context.Context, now time.Time) (int64, error) {
	q := repo.db.Rebind("DELETE FROM sessions WHERE expires_at <= ?")
	res, err := repo.db.ExecContext(ctx, q, now.UTC())
	if err != nil {
		return 0, errors.Wrap(err, "deleting expired sessions")
	}
	n, err := res.RowsAffected()
	return n, errors.Wrap(err, "counting deleted sessions")
}
