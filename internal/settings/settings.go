// Package settings is a workspace-scoped JSON document store. Each key holds
// one blob; writes replace the whole blob and the last write wins.
package settings

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"regexp"
	"time"
)

const (
	DefaultWorkspace = "default"
	KeyWorkspace     = "workspace"
)

var (
	ErrNotFound   = errors.New("setting not found")
	ErrInvalidKey = errors.New("invalid setting key")
	ErrNotJSON    = errors.New("setting value must be valid JSON")
)

var keyRe = regexp.MustCompile(`^[a-z0-9][a-z0-9_.-]{0,63}$`)

// Workspace is the document stored under KeyWorkspace.
type Workspace struct {
	CompanyName     string          `json:"company_name"`
	WhatsAppNumber  string          `json:"whatsapp_number"`
	WhatsAppMessage string          `json:"whatsapp_message"`
	NotifyEmail     string          `json:"notify_email"`
	DefaultDesign   json.RawMessage `json:"default_design,omitempty"`
}

type Store struct {
	db        *sql.DB
	workspace string
}

func NewStore(db *sql.DB, workspace string) *Store {
	if workspace == "" {
		workspace = DefaultWorkspace
	}
	return &Store{db: db, workspace: workspace}
}

func (s *Store) Get(ctx context.Context, key string) (json.RawMessage, error) {
	if !keyRe.MatchString(key) {
		return nil, ErrInvalidKey
	}
	var v string
	err := s.db.QueryRowContext(ctx, `SELECT value_json FROM settings WHERE workspace=$1 AND key=$2`, s.workspace, key).Scan(&v)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return json.RawMessage(v), nil
}

func (s *Store) Put(ctx context.Context, key string, value json.RawMessage) error {
	if !keyRe.MatchString(key) {
		return ErrInvalidKey
	}
	if !json.Valid(value) {
		return ErrNotJSON
	}
	_, err := s.db.ExecContext(ctx, `INSERT INTO settings (workspace,key,value_json,updated_at) VALUES ($1,$2,$3,$4)
		ON CONFLICT (workspace,key) DO UPDATE SET value_json=EXCLUDED.value_json, updated_at=EXCLUDED.updated_at`,
		s.workspace, key, string(value), time.Now().Unix())
	return err
}

// Workspace loads the workspace document; a missing document is the zero value.
func (s *Store) Workspace(ctx context.Context) (Workspace, error) {
	var w Workspace
	raw, err := s.Get(ctx, KeyWorkspace)
	if errors.Is(err, ErrNotFound) {
		return w, nil
	}
	if err != nil {
		return w, err
	}
	if err := json.Unmarshal(raw, &w); err != nil {
		return w, fmt.Errorf("decode workspace settings: %w", err)
	}
	return w, nil
}

func (s *Store) SaveWorkspace(ctx context.Context, w Workspace) error {
	buf, err := json.Marshal(w)
	if err != nil {
		return err
	}
	return s.Put(ctx, KeyWorkspace, buf)
}
