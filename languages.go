package ramik

import (
	"context"
	"net/http"
)

// Language is a translation target, e.g. {code: "en", name: "English"}.
type Language struct {
	ID   int64  `json:"id"`
	Code string `json:"code"`
	Name string `json:"name"`
}

// LanguageInput creates a language.
type LanguageInput struct {
	Code string `json:"code" validate:"required"`
	Name string `json:"name" validate:"required"`
}

type languageRename struct {
	Name string `json:"name" validate:"required"`
}

// LanguageService talks to /api/languages.
// Listing is public; every mutation needs a session.
type LanguageService struct {
	c *Client
}

func (s *LanguageService) List(ctx context.Context) ([]Language, error) {
	return call[[]Language](ctx, s.c, Request{Path: "/api/languages", Public: true}, "languages")
}

func (s *LanguageService) Create(ctx context.Context, in LanguageInput) (*Language, error) {
	if err := s.c.check(in); err != nil {
		return nil, err
	}
	return call[*Language](ctx, s.c, Request{
		Method: http.MethodPost,
		Path:   "/api/languages",
		Body:   in,
	}, "language")
}

// Update renames a language. The backend does not allow changing the code.
func (s *LanguageService) Update(ctx context.Context, id int64, name string) (*Language, error) {
	in := languageRename{Name: name}
	if err := s.c.check(in); err != nil {
		return nil, err
	}
	return call[*Language](ctx, s.c, Request{
		Method: http.MethodPatch,
		Path:   idPath("/api/languages", id),
		Body:   in,
	}, "language")
}

func (s *LanguageService) Delete(ctx context.Context, id int64) error {
	_, err := s.c.Do(ctx, Request{Method: http.MethodDelete, Path: idPath("/api/languages", id)})
	return err
}
