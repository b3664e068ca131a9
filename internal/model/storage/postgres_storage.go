package storage

import (
	"context"
	"database/sql"
	"encoding/json"
	"time"

	sq "github.com/Masterminds/squirrel"

	// postgres driver
	_ "github.com/lib/pq"
	"github.com/pkg/errors"
	"max.ks1230/expense-tracker/internal/entity/user"
)

const sessionsSchema = `
CREATE TABLE IF NOT EXISTS sessions (
	id          BIGINT PRIMARY KEY,
	token       TEXT NOT NULL DEFAULT '',
	user_record JSONB,
	updated_at  TIMESTAMP NOT NULL
)`

var psql = sq.StatementBuilder.PlaceholderFormat(sq.Dollar)

type config interface {
	DSN() string
}

// PostgresStorage keeps credentials in the sessions table so chats stay
// logged in across bot restarts.
type PostgresStorage struct {
	db *sql.DB
}

func NewPostgresStorage(ctx context.Context, config config) (*PostgresStorage, error) {
	db, err := sql.Open("postgres", config.DSN())
	if err != nil {
		return nil, errors.Wrap(err, "cannot connect to database")
	}
	if err = db.PingContext(ctx); err != nil {
		return nil, errors.Wrap(err, "cannot connect to database")
	}
	if _, err = db.ExecContext(ctx, sessionsSchema); err != nil {
		return nil, errors.Wrap(err, "cannot create sessions table")
	}
	return &PostgresStorage{db}, nil
}

func (s *PostgresStorage) Close() error {
	return s.db.Close()
}

func (s *PostgresStorage) GetCredentials(ctx context.Context, sessionID int64) (user.Credentials, error) {
	query := credentialsQuery(sessionID)

	var res user.Credentials
	var rawUser []byte
	err := query.RunWith(s.db).QueryRowContext(ctx).Scan(&res.Token, &rawUser)
	if errors.Is(err, sql.ErrNoRows) {
		return user.Credentials{}, nil
	}
	if err != nil {
		return user.Credentials{}, errors.Wrap(err, "get credentials")
	}

	if len(rawUser) > 0 {
		var u user.User
		if err = json.Unmarshal(rawUser, &u); err != nil {
			return user.Credentials{}, errors.Wrap(err, "decode stored user")
		}
		res.User = &u
	}
	return res, nil
}

func (s *PostgresStorage) SaveToken(ctx context.Context, sessionID int64, token string) error {
	query := upsertQuery(sessionID, "token", token, time.Now())

	_, err := query.RunWith(s.db).ExecContext(ctx)
	return errors.Wrap(err, "save token")
}

func (s *PostgresStorage) SaveUser(ctx context.Context, sessionID int64, u user.User) error {
	rawUser, err := json.Marshal(u)
	if err != nil {
		return errors.Wrap(err, "encode user")
	}

	query := upsertQuery(sessionID, "user_record", rawUser, time.Now())

	_, err = query.RunWith(s.db).ExecContext(ctx)
	return errors.Wrap(err, "save user")
}

func (s *PostgresStorage) ClearCredentials(ctx context.Context, sessionID int64) error {
	query := clearQuery(sessionID)

	_, err := query.RunWith(s.db).ExecContext(ctx)
	return errors.Wrap(err, "clear credentials")
}

func credentialsQuery(sessionID int64) sq.SelectBuilder {
	return psql.Select("token", "user_record").
		From("sessions").
		Where(sq.Eq{"id": sessionID})
}

// upsertQuery writes one credential column, creating the row on first use.
func upsertQuery(sessionID int64, column string, value any, now time.Time) sq.InsertBuilder {
	return psql.Insert("sessions").
		Columns("id", column, "updated_at").
		Values(sessionID, value, now).
		Suffix("ON CONFLICT(id) DO UPDATE SET "+column+" = ?, updated_at = ?", value, now)
}

func clearQuery(sessionID int64) sq.DeleteBuilder {
	return psql.Delete("sessions").
		Where(sq.Eq{"id": sessionID})
}
