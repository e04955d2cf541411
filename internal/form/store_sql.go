package form

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
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

// Validate checks what the store needs to persist a form. Scoring rules are
// not checked here; see CheckTiers.
func Validate(f Form) error {
	if strings.TrimSpace(f.Title) == "" {
		return fmt.Errorf("%w: title required", ErrInvalidForm)
	}
	if f.Status != StatusDraft && f.Status != StatusPublished {
		return fmt.Errorf("%w: unknown status %q", ErrInvalidForm, f.Status)
	}
	seen := map[string]struct{}{}
	for i, e := range f.Elements {
		if !isElementTag(e.Type) {
			return fmt.Errorf("%w: element %d has unknown type %q", ErrInvalidForm, i, e.Type)
		}
		if _, dup := seen[e.ID]; dup {
			return fmt.Errorf("%w: duplicate element id %q", ErrInvalidForm, e.ID)
		}
		seen[e.ID] = struct{}{}
	}
	return nil
}

// assignIDs gives every element and option without an id a fresh one.
func assignIDs(f *Form) {
	for i := range f.Elements {
		e := &f.Elements[i]
		if e.ID == "" {
			e.ID = uuid.NewString()
		}
		for j := range e.Options {
			if e.Options[j].ID == "" {
				e.Options[j].ID = uuid.NewString()
			}
		}
	}
	for i := range f.Tiers {
		if f.Tiers[i].ID == "" {
			f.Tiers[i].ID = uuid.NewString()
		}
	}
}

func (s *SQLStore) Create(ctx context.Context, f Form) (Form, error) {
	if f.ID == "" {
		f.ID = uuid.NewString()
	}
	now := time.Now().Unix()
	f.CreatedAt, f.UpdatedAt = now, now
	if err := s.save(ctx, &f); err != nil {
		return Form{}, err
	}
	return f, nil
}

// Put inserts or replaces f as given. Last write wins.
func (s *SQLStore) Put(ctx context.Context, f Form) error {
	if f.ID == "" {
		return fmt.Errorf("%w: id required", ErrInvalidForm)
	}
	now := time.Now().Unix()
	if f.CreatedAt == 0 {
		f.CreatedAt = now
	}
	f.UpdatedAt = now
	return s.save(ctx, &f)
}

func (s *SQLStore) save(ctx context.Context, f *Form) error {
	f.Normalize()
	assignIDs(f)
	if err := Validate(*f); err != nil {
		return err
	}
	cj, err := json.Marshal(f)
	if err != nil {
		return err
	}
	_, err = s.db.ExecContext(ctx, `INSERT INTO forms (id,title,description,status,config_json,created_at,updated_at)
		VALUES ($1,$2,$3,$4,$5,$6,$7)
		ON CONFLICT (id) DO UPDATE SET title=EXCLUDED.title, description=EXCLUDED.description, status=EXCLUDED.status,
			config_json=EXCLUDED.config_json, updated_at=EXCLUDED.updated_at`,
		f.ID, f.Title, f.Description, string(f.Status), string(cj), f.CreatedAt, f.UpdatedAt)
	return err
}

func (s *SQLStore) Get(ctx context.Context, id string) (Form, error) {
	row := s.db.QueryRowContext(ctx, `SELECT config_json,created_at,updated_at FROM forms WHERE id=$1`, id)
	var (
		cj      string
		created int64
		updated int64
	)
	if err := row.Scan(&cj, &created, &updated); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return Form{}, ErrNotFound
		}
		return Form{}, err
	}
	var f Form
	if err := json.Unmarshal([]byte(cj), &f); err != nil {
		return Form{}, fmt.Errorf("decode form %s: %w", id, err)
	}
	f.ID, f.CreatedAt, f.UpdatedAt = id, created, updated
	f.Normalize()
	return f, nil
}

func (s *SQLStore) GetPublished(ctx context.Context, id string) (Form, error) {
	f, err := s.Get(ctx, id)
	if err != nil {
		return Form{}, err
	}
	if f.Status != StatusPublished {
		return Form{}, ErrNotPublished
	}
	return f, nil
}

func (s *SQLStore) Update(ctx context.Context, id string, p Patch) (Form, error) {
	f, err := s.Get(ctx, id)
	if err != nil {
		return Form{}, err
	}
	p.Apply(&f)
	f.UpdatedAt = time.Now().Unix()
	if err := s.save(ctx, &f); err != nil {
		return Form{}, err
	}
	return f, nil
}

func (s *SQLStore) Delete(ctx context.Context, id string) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM forms WHERE id=$1`, id)
	if err != nil {
		return err
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *SQLStore) List(ctx context.Context, opts ListOpts) ([]Summary, error) {
	if opts.Limit <= 0 || opts.Limit > 200 {
		opts.Limit = 50
	}
	if opts.Offset < 0 {
		opts.Offset = 0
	}
	sqlStr := `SELECT id,title,status,config_json,updated_at FROM forms WHERE 1=1`
	var args []any
	if q := strings.TrimSpace(opts.Q); q != "" {
		args = append(args, "%"+strings.ToLower(q)+"%")
		sqlStr += ` AND LOWER(title) LIKE $` + strconv.Itoa(len(args))
	}
	if opts.Status != "" {
		args = append(args, string(opts.Status))
		sqlStr += ` AND status=$` + strconv.Itoa(len(args))
	}
	args = append(args, opts.Limit, opts.Offset)
	sqlStr += ` ORDER BY updated_at DESC, id LIMIT $` + strconv.Itoa(len(args)-1) + ` OFFSET $` + strconv.Itoa(len(args))

	rows, err := s.db.QueryContext(ctx, sqlStr, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []Summary{}
	for rows.Next() {
		var (
			sum Summary
			st  string
			cj  string
		)
		if err := rows.Scan(&sum.ID, &sum.Title, &st, &cj, &sum.UpdatedAt); err != nil {
			return nil, err
		}
		sum.Status = Status(st)
		var f Form
		if err := json.Unmarshal([]byte(cj), &f); err == nil {
			f.Normalize()
			for _, e := range f.Elements {
				if e.IsQuestion() {
					sum.QuestionCount++
				}
			}
		}
		out = append(out, sum)
	}
	return out, rows.Err()
}
