package submission

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"strconv"

	"github.com/mind-engage/formbuilder/internal/scoring"
)

type Store interface {
	Create(ctx context.Context, s Submission) error
	Get(ctx context.Context, id string) (Submission, error)
	List(ctx context.Context, opts ListOpts) ([]Submission, error)
	Delete(ctx context.Context, id string) error
}

type SQLStore struct {
	db *sql.DB
}

func NewSQLStore(db *sql.DB) *SQLStore {
	return &SQLStore{db: db}
}

const columns = `id,form_id,answers_json,total_score,passed,tier_id,tier_label,contact_name,contact_email,contact_phone,created_at`

func (s *SQLStore) Create(ctx context.Context, sub Submission) error {
	aj, err := json.Marshal(sub.Answers)
	if err != nil {
		return err
	}
	_, err = s.db.ExecContext(ctx, `INSERT INTO submissions (`+columns+`)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11)`,
		sub.ID, sub.FormID, string(aj), sub.TotalScore, sub.Passed, sub.TierID, sub.TierLabel,
		sub.Contact.Name, sub.Contact.Email, sub.Contact.Phone, sub.CreatedAt)
	return err
}

func (s *SQLStore) Get(ctx context.Context, id string) (Submission, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+columns+` FROM submissions WHERE id=$1`, id)
	sub, err := scan(row)
	if errors.Is(err, sql.ErrNoRows) {
		return Submission{}, ErrNotFound
	}
	return sub, err
}

func (s *SQLStore) List(ctx context.Context, opts ListOpts) ([]Submission, error) {
	if opts.Limit <= 0 || opts.Limit > 500 {
		opts.Limit = 100
	}
	if opts.Offset < 0 {
		opts.Offset = 0
	}
	sqlStr := `SELECT ` + columns + ` FROM submissions WHERE 1=1`
	var args []any
	if opts.FormID != "" {
		args = append(args, opts.FormID)
		sqlStr += ` AND form_id=$` + strconv.Itoa(len(args))
	}
	if opts.Passed != nil {
		args = append(args, *opts.Passed)
		sqlStr += ` AND passed=$` + strconv.Itoa(len(args))
	}
	args = append(args, opts.Limit, opts.Offset)
	sqlStr += ` ORDER BY created_at DESC, id LIMIT $` + strconv.Itoa(len(args)-1) + ` OFFSET $` + strconv.Itoa(len(args))

	rows, err := s.db.QueryContext(ctx, sqlStr, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := []Submission{}
	for rows.Next() {
		sub, err := scan(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, sub)
	}
	return out, rows.Err()
}

func (s *SQLStore) Delete(ctx context.Context, id string) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM submissions WHERE id=$1`, id)
	if err != nil {
		return err
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return ErrNotFound
	}
	return nil
}

type scanner interface {
	Scan(dest ...any) error
}

func scan(r scanner) (Submission, error) {
	var (
		sub Submission
		aj  string
	)
	if err := r.Scan(&sub.ID, &sub.FormID, &aj, &sub.TotalScore, &sub.Passed, &sub.TierID, &sub.TierLabel,
		&sub.Contact.Name, &sub.Contact.Email, &sub.Contact.Phone, &sub.CreatedAt); err != nil {
		return Submission{}, err
	}
	if err := json.Unmarshal([]byte(aj), &sub.Answers); err != nil || sub.Answers == nil {
		sub.Answers = map[string]scoring.Answer{}
	}
	return sub, nil
}
