package session

import (
	"context"
	"database/sql"
	stderrors "errors"
	"time"

	"github.com/goliatone/go-errors"
	"github.com/uptrace/bun"
)

// SessionToken is the single-row model behind BunTokenStorage.
type SessionToken struct {
	bun.BaseModel `bun:"table:session_tokens,alias:stk"`
	Key           string     `bun:"key,pk" json:"key"`
	Token         string     `bun:"token,notnull" json:"token,omitempty"`
	UpdatedAt     *time.Time `bun:"updated_at,nullzero,default:current_timestamp" json:"updated_at,omitempty"`
}

// DefaultTokenKey namespaces the durable cell; override it to run multiple
// profiles against one database file.
const DefaultTokenKey = "default"

// BunTokenStorage persists the token in a bun-managed table, typically SQLite
// for desktop and CLI clients that must survive restarts.
type BunTokenStorage struct {
	db  bun.IDB
	key string
}

func NewBunTokenStorage(db bun.IDB) *BunTokenStorage {
	return &BunTokenStorage{db: db, key: DefaultTokenKey}
}

func (b *BunTokenStorage) WithKey(key string) *BunTokenStorage {
	if key != "" {
		b.key = key
	}
	return b
}

// CreateTable provisions the session_tokens table if missing.
func (b *BunTokenStorage) CreateTable(ctx context.Context) error {
	_, err := b.db.NewCreateTable().
		Model((*SessionToken)(nil)).
		IfNotExists().
		Exec(ctx)
	if err != nil {
		return errors.Wrap(err, errors.CategoryInternal, "failed to create session token table")
	}
	return nil
}

func (b *BunTokenStorage) Read(ctx context.Context) (string, error) {
	rec := new(SessionToken)
	err := b.db.NewSelect().
		Model(rec).
		Where("key = ?", b.key).
		Limit(1).
		Scan(ctx)
	if err != nil {
		if stderrors.Is(err, sql.ErrNoRows) {
			return "", nil
		}
		return "", errors.Wrap(err, errors.CategoryInternal, "failed to read persisted token")
	}
	return rec.Token, nil
}

func (b *BunTokenStorage) Write(ctx context.Context, token string) error {
	now := time.Now()
	rec := &SessionToken{
		Key:       b.key,
		Token:     token,
		UpdatedAt: &now,
	}

	_, err := b.db.NewInsert().
		Model(rec).
		On("CONFLICT (key) DO UPDATE").
		Set("token = EXCLUDED.token").
		Set("updated_at = EXCLUDED.updated_at").
		Exec(ctx)
	if err != nil {
		return errors.Wrap(err, errors.CategoryInternal, "failed to persist token")
	}
	return nil
}

func (b *BunTokenStorage) Clear(ctx context.Context) error {
	_, err := b.db.NewDelete().
		Model((*SessionToken)(nil)).
		Where("key = ?", b.key).
		Exec(ctx)
	if err != nil {
		return errors.Wrap(err, errors.CategoryInternal, "failed to clear persisted token")
	}
	return nil
}

var _ TokenStorage = (*BunTokenStorage)(nil)
