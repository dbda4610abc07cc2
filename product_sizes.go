package ramik

import (
	"context"
	"net/http"
	"net/url"
	"strconv"
)

// ProductSize is one purchasable size of a product.
type ProductSize struct {
	ID        int64  `json:"id"`
	ProductID int64  `json:"productId,omitempty"`
	Size      string `json:"size"`
	Stock     int    `json:"stock"`
	Price     Amount `json:"price"`
}

// ProductSizeInput adds a size to an existing product.
type ProductSizeInput struct {
	ProductID int64  `json:"productId" validate:"required"`
	Size      string `json:"size" validate:"required"`
	Stock     int    `json:"stock"`
	Price     Amount `json:"price"`
}

// ProductSizeUpdate patches a size. Nil fields are left untouched.
type ProductSizeUpdate struct {
	Size  *string `json:"size,omitempty"`
	Stock *int    `json:"stock,omitempty"`
	Price *Amount `json:"price,omitempty"`
}

// ProductSizeService talks to /api/product-sizes.
type ProductSizeService struct {
	c *Client
}

// List returns the sizes of one product.
func (s *ProductSizeService) List(ctx context.Context, productID int64) ([]ProductSize, error) {
	return call[[]ProductSize](ctx, s.c, Request{
		Path:  "/api/product-sizes",
		Query: url.Values{"productId": {strconv.FormatInt(productID, 10)}},
	}, "productSizes")
}

func (s *ProductSizeService) Create(ctx context.Context, in ProductSizeInput) (*ProductSize, error) {
	if err := s.c.check(in); err != nil {
		return nil, err
	}
	return call[*ProductSize](ctx, s.c, Request{
		Method: http.MethodPost,
		Path:   "/api/product-sizes",
		Body:   in,
	}, "productSize")
}

func (s *ProductSizeService) Update(ctx context.Context, id int64, in ProductSizeUpdate) (*ProductSize, error) {
	return call[*ProductSize](ctx, s.c, Request{
		Method: http.MethodPatch,
		Path:   idPath("/api/product-sizes", id),
		Body:   in,
	}, "productSize")
}

func (s *ProductSizeService) Delete(ctx context.Context, id int64) error {
	_, err := s.c.Do(ctx, Request{Method: http.MethodDelete, Path: idPath("/api/product-sizes", id)})
	return err
}
