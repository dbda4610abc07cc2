package ramik

import (
	"context"
	"net/http"
)

// Category groups products on the storefront.
type Category struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
}

type categoryInput struct {
	Name string `json:"name" validate:"required"`
}

// CategoryService talks to /api/categories.
type CategoryService struct {
	c *Client
}

func (s *CategoryService) List(ctx context.Context) ([]Category, error) {
	return call[[]Category](ctx, s.c, Request{Path: "/api/categories"}, "categories")
}

func (s *CategoryService) Create(ctx context.Context, name string) (*Category, error) {
	in := categoryInput{Name: name}
	if err := s.c.check(in); err != nil {
		return nil, err
	}
	return call[*Category](ctx, s.c, Request{
		Method: http.MethodPost,
		Path:   "/api/categories",
		Body:   in,
	}, "category")
}

func (s *CategoryService) Update(ctx context.Context, id int64, name string) (*Category, error) {
	in := categoryInput{Name: name}
	if err := s.c.check(in); err != nil {
		return nil, err
	}
	return call[*Category](ctx, s.c, Request{
		Method: http.MethodPatch,
		Path:   idPath("/api/categories", id),
		Body:   in,
	}, "category")
}

func (s *CategoryService) Delete(ctx context.Context, id int64) error {
	_, err := s.c.Do(ctx, Request{Method: http.MethodDelete, Path: idPath("/api/categories", id)})
	return err
}
