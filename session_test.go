package ramik

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/muhammadarsalan100/ramik/store"
)

func TestSessionsExpired(t *testing.T) {
	clock := newFakeClock()
	now := clock.Now()

	tests := []struct {
		name    string
		expires *time.Time
		want    bool
	}{
		{"no session", nil, true},
		{"expiry in the future", ptr(now.Add(time.Second)), false},
		{"expiry exactly now", ptr(now), true},
		{"expiry in the past", ptr(now.Add(-time.Second)), true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := NewSessions(store.NewMemoryStore(), clock.Now)
			ctx := context.Background()
			if tt.expires != nil {
				err := s.Save(ctx, Session{Token: "t", ExpiresAt: *tt.expires, User: User{ID: 1}})
				if err != nil {
					t.Fatalf("Save failed: %v", err)
				}
			}

			got, err := s.Expired(ctx)
			if err != nil {
				t.Fatalf("Expired failed: %v", err)
			}
			if got != tt.want {
				t.Errorf("Expired() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestSessionsReadAfterClear(t *testing.T) {
	clock := newFakeClock()
	s := NewSessions(store.NewMemoryStore(), clock.Now)
	ctx := context.Background()

	want := Session{
		Token:     "tok",
		ExpiresAt: clock.Now().Add(time.Hour),
		User:      User{ID: 5, Name: "Sara", Email: "sara@ramik.test", Role: RoleUser, Active: true},
	}
	if err := s.Save(ctx, want); err != nil {
		t.Fatalf("Save failed: %v", err)
	}

	got, err := s.Read(ctx)
	if err != nil {
		t.Fatalf("Read failed: %v", err)
	}
	if got == nil || got.Token != want.Token || got.User.Email != want.User.Email || !got.ExpiresAt.Equal(want.ExpiresAt) {
		t.Fatalf("Read() = %+v, want %+v", got, want)
	}

	if err := s.Clear(ctx); err != nil {
		t.Fatalf("Clear failed: %v", err)
	}
	got, err = s.Read(ctx)
	if err != nil {
		t.Fatalf("Read failed: %v", err)
	}
	if got != nil {
		t.Errorf("Read after Clear = %+v, want nil", got)
	}
}

func TestSessionsDropIncompleteRecord(t *testing.T) {
	clock := newFakeClock()
	backing := store.NewMemoryStore()
	s := NewSessions(backing, clock.Now)
	ctx := context.Background()

	records := []*store.Session{
		{Token: "tok", ExpiresAt: clock.Now().Add(time.Hour)},
		{Token: "tok", ExpiresAt: clock.Now().Add(time.Hour), User: []byte("{broken")},
	}

	for _, rec := range records {
		if err := backing.Save(ctx, rec); err != nil {
			t.Fatalf("Save failed: %v", err)
		}
		got, err := s.Read(ctx)
		if err != nil {
			t.Fatalf("Read failed: %v", err)
		}
		if got != nil {
			t.Errorf("Expected partial record to read as absent, got %+v", got)
		}
		if left, _ := backing.Load(ctx); left != nil {
			t.Error("Partial record should have been cleared")
		}
	}
}

func TestSessionsSaveRejectsPartialSession(t *testing.T) {
	clock := newFakeClock()
	s := NewSessions(store.NewMemoryStore(), clock.Now)

	partial := []Session{
		{ExpiresAt: clock.Now().Add(time.Hour)},
		{Token: "tok"},
	}
	for _, sess := range partial {
		if err := s.Save(context.Background(), sess); !errors.Is(err, ErrInvalidInput) {
			t.Errorf("Save(%+v) = %v, want ErrInvalidInput", sess, err)
		}
	}
}

func TestUserRegionForms(t *testing.T) {
	tests := []struct {
		name string
		json string
		want *UserRegion
	}{
		{"object", `{"region":{"id":3,"name":"Qatar"}}`, &UserRegion{ID: 3, Name: "Qatar"}},
		{"string", `{"region":"Qatar"}`, &UserRegion{Name: "Qatar"}},
		{"null", `{"region":null}`, nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var u User
			if err := json.Unmarshal([]byte(tt.json), &u); err != nil {
				t.Fatalf("Unmarshal failed: %v", err)
			}
			switch {
			case tt.want == nil && u.Region != nil:
				t.Errorf("Expected nil region, got %+v", u.Region)
			case tt.want != nil && (u.Region == nil || *u.Region != *tt.want):
				t.Errorf("Region = %+v, want %+v", u.Region, tt.want)
			}
		})
	}
}

func ptr[T any](v T) *T {
	return &v
}
