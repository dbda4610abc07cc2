package ramik

import (
	"context"
	"net/http"
)

// ProductTranslation is the localized text of a product in one language.
type ProductTranslation struct {
	ID          int64  `json:"id"`
	ProductID   int64  `json:"productId"`
	LanguageID  int64  `json:"languageId"`
	CategoryID  int64  `json:"categoryId"`
	Title       string `json:"title"`
	Description string `json:"description"`
}

// ProductTranslationInput adds a translation to an existing product.
type ProductTranslationInput struct {
	ProductID   int64  `json:"productId" validate:"required"`
	LanguageID  int64  `json:"languageId" validate:"required"`
	CategoryID  int64  `json:"categoryId" validate:"required"`
	Title       string `json:"title" validate:"required"`
	Description string `json:"description"`
}

// ProductTranslationUpdate patches a translation. The language is fixed.
type ProductTranslationUpdate struct {
	CategoryID  *int64  `json:"categoryId,omitempty"`
	Title       *string `json:"title,omitempty"`
	Description *string `json:"description,omitempty"`
}

// ProductTranslationService talks to /api/product-translations.
type ProductTranslationService struct {
	c *Client
}

func (s *ProductTranslationService) Create(ctx context.Context, in ProductTranslationInput) (*ProductTranslation, error) {
	if err := s.c.check(in); err != nil {
		return nil, err
	}
	return call[*ProductTranslation](ctx, s.c, Request{
		Method: http.MethodPost,
		Path:   "/api/product-translations",
		Body:   in,
	}, "productTranslation")
}

func (s *ProductTranslationService) Update(ctx context.Context, id int64, in ProductTranslationUpdate) (*ProductTranslation, error) {
	return call[*ProductTranslation](ctx, s.c, Request{
		Method: http.MethodPatch,
		Path:   idPath("/api/product-translations", id),
		Body:   in,
	}, "productTranslation")
}

func (s *ProductTranslationService) Delete(ctx context.Context, id int64) error {
	_, err := s.c.Do(ctx, Request{Method: http.MethodDelete, Path: idPath("/api/product-translations", id)})
	return err
}
