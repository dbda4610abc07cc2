package ramik

import (
	"context"
	"net/http"
)

// Region is a shipping region with a price adjustment.
type Region struct {
	ID              int64  `json:"id"`
	Name            string `json:"name"`
	PricePercentage Amount `json:"pricePercentage"`
	Active          bool   `json:"active"`
}

// RegionInput creates or updates a region.
type RegionInput struct {
	Name            string `json:"name" validate:"required"`
	PricePercentage Amount `json:"pricePercentage"`
}

// RegionService talks to /api/regions.
type RegionService struct {
	c *Client
}

// List returns every region including inactive ones.
func (s *RegionService) List(ctx context.Context) ([]Region, error) {
	return call[[]Region](ctx, s.c, Request{Path: "/api/regions/admin"}, "regions")
}

func (s *RegionService) Get(ctx context.Context, id int64) (*Region, error) {
	return call[*Region](ctx, s.c, Request{Path: idPath("/api/regions", id)}, "region")
}

func (s *RegionService) Create(ctx context.Context, in RegionInput) (*Region, error) {
	if err := s.c.check(in); err != nil {
		return nil, err
	}
	return call[*Region](ctx, s.c, Request{
		Method: http.MethodPost,
		Path:   "/api/regions",
		Body:   in,
	}, "region")
}

func (s *RegionService) Update(ctx context.Context, id int64, in RegionInput) (*Region, error) {
	if err := s.c.check(in); err != nil {
		return nil, err
	}
	return call[*Region](ctx, s.c, Request{
		Method: http.MethodPatch,
		Path:   idPath("/api/regions", id),
		Body:   in,
	}, "region")
}

func (s *RegionService) Delete(ctx context.Context, id int64) error {
	_, err := s.c.Do(ctx, Request{Method: http.MethodDelete, Path: idPath("/api/regions", id)})
	return err
}
