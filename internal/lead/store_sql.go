package lead

import (
	"context"
	"database/sql"
	"errors"
	"strconv"
	"time"

	"github.com/google/uuid"
)

type SQLStore struct {
	db *sql.DB
}

func NewSQLStore(db *sql.DB) *SQLStore {
	return &SQLStore{db: db}
}

const columns = `id,form_id,submission_id,tier_id,name,phone,status,notes,whatsapp_url,created_at,updated_at`

func (s *SQLStore) Create(ctx context.Context, l Lead) (Lead, error) {
	if l.ID == "" {
		l.ID = uuid.NewString()
	}
	if l.Status == "" {
		l.Status = StatusNew
	}
	if !l.Status.Valid() {
		return Lead{}, ErrInvalidStatus
	}
	now := time.Now().Unix()
	l.CreatedAt, l.UpdatedAt = now, now
	_, err := s.db.ExecContext(ctx, `INSERT INTO leads (`+columns+`)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11)`,
		l.ID, l.FormID, l.SubmissionID, l.TierID, l.Name, l.Phone, string(l.Status), l.Notes, l.WhatsAppURL,
		l.CreatedAt, l.UpdatedAt)
	if err != nil {
		return Lead{}, err
	}
	return l, nil
}

func (s *SQLStore) Get(ctx context.Context, id string) (Lead, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+columns+` FROM leads WHERE id=$1`, id)
	l, err := scan(row)
	if errors.Is(err, sql.ErrNoRows) {
		return Lead{}, ErrNotFound
	}
	return l, err
}

func (s *SQLStore) List(ctx context.Context, opts ListOpts) ([]Lead, error) {
	if opts.Limit <= 0 || opts.Limit > 500 {
		opts.Limit = 100
	}
	if opts.Offset < 0 {
		opts.Offset = 0
	}
	q := `SELECT ` + columns + ` FROM leads WHERE 1=1`
	var args []any
	if opts.FormID != "" {
		args = append(args, opts.FormID)
		q += ` AND form_id=$` + strconv.Itoa(len(args))
	}
	if opts.Status != "" {
		args = append(args, string(opts.Status))
		q += ` AND status=$` + strconv.Itoa(len(args))
	}
	args = append(args, opts.Limit, opts.Offset)
	q += ` ORDER BY created_at DESC, id LIMIT $` + strconv.Itoa(len(args)-1) + ` OFFSET $` + strconv.Itoa(len(args))

	rows, err := s.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := []Lead{}
	for rows.Next() {
		l, err := scan(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, l)
	}
	return out, rows.Err()
}

// Update applies p to the lead. An unknown status is rejected before
// anything is written.
func (s *SQLStore) Update(ctx context.Context, id string, p Patch) (Lead, error) {
	l, err := s.Get(ctx, id)
	if err != nil {
		return Lead{}, err
	}
	if p.Status != nil {
		st, err := ParseStatus(*p.Status)
		if err != nil {
			return Lead{}, err
		}
		l.Status = st
	}
	if p.Notes != nil {
		l.Notes = *p.Notes
	}
	l.UpdatedAt = time.Now().Unix()
	_, err = s.db.ExecContext(ctx, `UPDATE leads SET status=$1, notes=$2, updated_at=$3 WHERE id=$4`,
		string(l.Status), l.Notes, l.UpdatedAt, l.ID)
	if err != nil {
		return Lead{}, err
	}
	return l, nil
}

func (s *SQLStore) Stats(ctx context.Context, formID string) (Stats, error) {
	q := `SELECT status, tier_id, COUNT(*) FROM leads`
	var args []any
	if formID != "" {
		q += ` WHERE form_id=$1`
		args = append(args, formID)
	}
	q += ` GROUP BY status, tier_id`
	rows, err := s.db.QueryContext(ctx, q, args...)
	if err != nil {
		return Stats{}, err
	}
	defer rows.Close()

	st := Stats{ByStatus: map[Status]int{}, ByTier: map[string]int{}}
	for rows.Next() {
		var (
			status, tier string
			n            int
		)
		if err := rows.Scan(&status, &tier, &n); err != nil {
			return Stats{}, err
		}
		st.Total += n
		st.ByStatus[Status(status)] += n
		if tier != "" {
			st.ByTier[tier] += n
		}
	}
	return st, rows.Err()
}

type scanner interface {
	Scan(dest ...any) error
}

func scan(r scanner) (Lead, error) {
	var (
		l      Lead
		status string
	)
	err := r.Scan(&l.ID, &l.FormID, &l.SubmissionID, &l.TierID, &l.Name, &l.Phone, &status, &l.Notes,
		&l.WhatsAppURL, &l.CreatedAt, &l.UpdatedAt)
	l.Status = Status(status)
	return l, err
}
