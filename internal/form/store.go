package form

import (
	"context"
	"errors"
)

var (
	ErrNotFound     = errors.New("form not found")
	ErrInvalidForm  = errors.New("invalid form")
	ErrNotPublished = errors.New("form not published")
)

type ListOpts struct {
	Q      string
	Status Status
	Limit  int
	Offset int
}

type Store interface {
	Create(ctx context.Context, f Form) (Form, error)
	Put(ctx context.Context, f Form) error
	Get(ctx context.Context, id string) (Form, error)
	GetPublished(ctx context.Context, id string) (Form, error)
	Update(ctx context.Context, id string, p Patch) (Form, error)
	Delete(ctx context.Context, id string) error
	List(ctx context.Context, opts ListOpts) ([]Summary, error)
}
