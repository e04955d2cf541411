// Package completion stores the pages shown after a respondent submits,
// optionally one per score tier.
package completion

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
)

var (
	ErrNotFound = errors.New("completion page not found")
	ErrInvalid  = errors.New("invalid completion page")
)

// Page is shown after submit. An empty TierID marks the form default.
type Page struct {
	ID           string `json:"id"`
	FormID       string `json:"form_id"`
	TierID       string `json:"tier_id"`
	Title        string `json:"title"`
	Message      string `json:"message"`
	ButtonText   string `json:"button_text,omitempty"`
	ButtonURL    string `json:"button_url,omitempty"`
	ShowWhatsApp bool   `json:"show_whatsapp"`
	UpdatedAt    int64  `json:"updated_at"`
}

type Store struct{ db *sql.DB }

func NewStore(db *sql.DB) *Store { return &Store{db: db} }

func (s *Store) Save(ctx context.Context, p Page) (Page, error) {
	if strings.TrimSpace(p.FormID) == "" {
		return Page{}, fmt.Errorf("%w: form_id required", ErrInvalid)
	}
	if p.ID == "" {
		p.ID = uuid.NewString()
	}
	p.UpdatedAt = time.Now().Unix()
	_, err := s.db.ExecContext(ctx, `INSERT INTO completion_pages
		(id,form_id,tier_id,title,message,button_text,button_url,show_whatsapp,updated_at)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9)
		ON CONFLICT (id) DO UPDATE SET form_id=EXCLUDED.form_id, tier_id=EXCLUDED.tier_id, title=EXCLUDED.title,
			message=EXCLUDED.message, button_text=EXCLUDED.button_text, button_url=EXCLUDED.button_url,
			show_whatsapp=EXCLUDED.show_whatsapp, updated_at=EXCLUDED.updated_at`,
		p.ID, p.FormID, p.TierID, p.Title, p.Message, p.ButtonText, p.ButtonURL, p.ShowWhatsApp, p.UpdatedAt)
	if err != nil {
		return Page{}, err
	}
	return p, nil
}

func (s *Store) Get(ctx context.Context, id string) (Page, error) {
	row := s.db.QueryRowContext(ctx, `SELECT id,form_id,tier_id,title,message,button_text,button_url,show_whatsapp,updated_at
		FROM completion_pages WHERE id=$1`, id)
	p, err := scan(row)
	if errors.Is(err, sql.ErrNoRows) {
		return Page{}, ErrNotFound
	}
	return p, err
}

func (s *Store) ListByForm(ctx context.Context, formID string) ([]Page, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT id,form_id,tier_id,title,message,button_text,button_url,show_whatsapp,updated_at
		FROM completion_pages WHERE form_id=$1 ORDER BY tier_id, id`, formID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := []Page{}
	for rows.Next() {
		p, err := scan(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	return out, rows.Err()
}

func (s *Store) Delete(ctx context.Context, id string) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM completion_pages WHERE id=$1`, id)
	if err != nil {
		return err
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return ErrNotFound
	}
	return nil
}

// Resolve picks the page for a tier, falling back to the form default.
// It returns nil when the form has neither.
func (s *Store) Resolve(ctx context.Context, formID, tierID string) (*Page, error) {
	pages, err := s.ListByForm(ctx, formID)
	if err != nil {
		return nil, err
	}
	var def *Page
	for i := range pages {
		switch pages[i].TierID {
		case "":
			if def == nil {
				def = &pages[i]
			}
		case tierID:
			if tierID != "" {
				return &pages[i], nil
			}
		}
	}
	return def, nil
}

type scanner interface {
	Scan(dest ...any) error
}

func scan(r scanner) (Page, error) {
	var p Page
	err := r.Scan(&p.ID, &p.FormID, &p.TierID, &p.Title, &p.Message, &p.ButtonText, &p.ButtonURL, &p.ShowWhatsApp, &p.UpdatedAt)
	return p, err
}
