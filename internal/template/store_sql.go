package template

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
)

type SQLStore struct {
	db *sql.DB
}

func NewSQLStore(db *sql.DB) *SQLStore {
	return &SQLStore{db: db}
}

// List returns templates sorted builtin first, then by name. An empty
// category lists all.
func (s *SQLStore) List(ctx context.Context, category string) ([]Template, error) {
	q := `SELECT id,name,description,category,builtin,form_json,created_at FROM templates`
	var args []any
	if category != "" {
		q += ` WHERE category=$1`
		args = append(args, category)
	}
	q += ` ORDER BY builtin DESC, name, id`
	rows, err := s.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := []Template{}
	for rows.Next() {
		t, err := scan(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, t)
	}
	return out, rows.Err()
}

func (s *SQLStore) Get(ctx context.Context, id string) (Template, error) {
	row := s.db.QueryRowContext(ctx, `SELECT id,name,description,category,builtin,form_json,created_at
		FROM templates WHERE id=$1`, id)
	t, err := scan(row)
	if errors.Is(err, sql.ErrNoRows) {
		return Template{}, ErrNotFound
	}
	return t, err
}

// Save stores a user template. Builtin rows are only written by Sync.
func (s *SQLStore) Save(ctx context.Context, t Template) (Template, error) {
	if t.ID == "" {
		t.ID = uuid.NewString()
	} else if existing, err := s.Get(ctx, t.ID); err == nil && existing.Builtin {
		return Template{}, ErrReadOnly
	}
	t.Builtin = false
	if err := s.put(ctx, &t); err != nil {
		return Template{}, err
	}
	return t, nil
}

func (s *SQLStore) put(ctx context.Context, t *Template) error {
	if strings.TrimSpace(t.Name) == "" {
		return fmt.Errorf("%w: name required", ErrInvalid)
	}
	if t.CreatedAt == 0 {
		t.CreatedAt = time.Now().Unix()
	}
	t.Form.ID = ""
	fj, err := json.Marshal(t.Form)
	if err != nil {
		return err
	}
	_, err = s.db.ExecContext(ctx, `INSERT INTO templates (id,name,description,category,builtin,form_json,created_at)
		VALUES ($1,$2,$3,$4,$5,$6,$7)
		ON CONFLICT (id) DO UPDATE SET name=EXCLUDED.name, description=EXCLUDED.description,
			category=EXCLUDED.category, builtin=EXCLUDED.builtin, form_json=EXCLUDED.form_json`,
		t.ID, t.Name, t.Description, t.Category, t.Builtin, string(fj), t.CreatedAt)
	return err
}

func (s *SQLStore) Delete(ctx context.Context, id string) error {
	t, err := s.Get(ctx, id)
	if err != nil {
		return err
	}
	if t.Builtin {
		return ErrReadOnly
	}
	_, err = s.db.ExecContext(ctx, `DELETE FROM templates WHERE id=$1`, id)
	return err
}

// Sync makes the builtin rows match builtins: each is upserted and builtin
// rows missing from the set are removed. User templates are untouched.
func (s *SQLStore) Sync(ctx context.Context, builtins []Template) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	keep := map[string]struct{}{}
	for i := range builtins {
		t := builtins[i]
		t.Builtin = true
		if strings.TrimSpace(t.Name) == "" {
			return fmt.Errorf("%w: template %q has no name", ErrInvalid, t.ID)
		}
		if t.CreatedAt == 0 {
			t.CreatedAt = time.Now().Unix()
		}
		t.Form.ID = ""
		fj, err := json.Marshal(t.Form)
		if err != nil {
			return err
		}
		if _, err := tx.ExecContext(ctx, `INSERT INTO templates (id,name,description,category,builtin,form_json,created_at)
			VALUES ($1,$2,$3,$4,$5,$6,$7)
			ON CONFLICT (id) DO UPDATE SET name=EXCLUDED.name, description=EXCLUDED.description,
				category=EXCLUDED.category, builtin=EXCLUDED.builtin, form_json=EXCLUDED.form_json`,
			t.ID, t.Name, t.Description, t.Category, true, string(fj), t.CreatedAt); err != nil {
			return fmt.Errorf("sync template %s: %w", t.ID, err)
		}
		keep[t.ID] = struct{}{}
	}

	rows, err := tx.QueryContext(ctx, `SELECT id FROM templates WHERE builtin=$1`, true)
	if err != nil {
		return err
	}
	var stale []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			rows.Close()
			return err
		}
		if _, ok := keep[id]; !ok {
			stale = append(stale, id)
		}
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return err
	}
	for _, id := range stale {
		if _, err := tx.ExecContext(ctx, `DELETE FROM templates WHERE id=$1`, id); err != nil {
			return err
		}
	}
	return tx.Commit()
}

type scanner interface {
	Scan(dest ...any) error
}

func scan(r scanner) (Template, error) {
	var (
		t  Template
		fj string
	)
	if err := r.Scan(&t.ID, &t.Name, &t.Description, &t.Category, &t.Builtin, &fj, &t.CreatedAt); err != nil {
		return Template{}, err
	}
	if err := json.Unmarshal([]byte(fj), &t.Form); err != nil {
		return Template{}, fmt.Errorf("template %s: %w", t.ID, err)
	}
	return t, nil
}
