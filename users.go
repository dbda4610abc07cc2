package ramik

import (
	"context"
	"net/http"
)

// UserUpdate toggles activation or changes the role. Nil fields are left
// untouched.
type UserUpdate struct {
	Active *bool `json:"active,omitempty"`
	Role   *Role `json:"role,omitempty" validate:"omitempty,oneof=admin user"`
}

// Apply returns u with the update's fields written over it.
func (in UserUpdate) Apply(u User) User {
	if in.Active != nil {
		u.Active = *in.Active
	}
	if in.Role != nil {
		u.Role = *in.Role
	}
	return u
}

// UserService talks to /api/users.
type UserService struct {
	c *Client
}

func (s *UserService) List(ctx context.Context) ([]User, error) {
	return call[[]User](ctx, s.c, Request{Path: "/api/users"}, "users")
}

func (s *UserService) Update(ctx context.Context, id int64, in UserUpdate) (*User, error) {
	if err := s.c.check(in); err != nil {
		return nil, err
	}
	return call[*User](ctx, s.c, Request{
		Method: http.MethodPatch,
		Path:   idPath("/api/users", id),
		Body:   in,
	}, "user")
}

func (s *UserService) Delete(ctx context.Context, id int64) error {
	_, err := s.c.Do(ctx, Request{Method: http.MethodDelete, Path: idPath("/api/users", id)})
	return err
}
