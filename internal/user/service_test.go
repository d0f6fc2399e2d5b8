package user

import (
	"context"
	"errors"
	"testing"

	"github.com/hitoshi/todoapi/internal/model"
	"github.com/hitoshi/todoapi/internal/repository"
)

// --- モック ---

type mockUserRepo struct {
	findByIDFn   func(ctx context.Context, id int64) (*model.User, error)
	updateNameFn func(ctx context.Context, id int64, name string) (*model.User, error)
	deleteByIDFn func(ctx context.Context, id int64) error
}

func (m *mockUserRepo) FindByID(ctx context.Context, id int64) (*model.User, error) {
	if m.findByIDFn != nil {
		return m.findByIDFn(ctx, id)
	}
	return nil, nil
}
func (m *mockUserRepo) FindByEmail(ctx context.Context, email string) (*model.User, error) {
	return nil, nil
}
func (m *mockUserRepo) Create(ctx context.Context, user *model.User) error {
	return nil
}
func (m *mockUserRepo) UpdateName(ctx context.Context, id int64, name string) (*model.User, error) {
	return m.updateNameFn(ctx, id, name)
}
func (m *mockUserRepo) DeleteByID(ctx context.Context, id int64) error {
	return m.deleteByIDFn(ctx, id)
}

type mockTerminator struct {
	tokens []string
	err    error
}

func (m *mockTerminator) Logout(_ context.Context, token string) error {
	m.tokens = append(m.tokens, token)
	return m.err
}

func assertKind(t *testing.T, err error, kind model.ErrorKind) {
	t.Helper()
	var apiErr *model.APIError
	if !errors.As(err, &apiErr) {
		t.Fatalf("expected *model.APIError, got %T (%v)", err, err)
	}
	if apiErr.Kind != kind {
		t.Errorf("Kind = %q, want %q", apiErr.Kind, kind)
	}
}

// --- GetProfile ---

func TestGetProfile_Found(t *testing.T) {
	repo := &mockUserRepo{
		findByIDFn: func(_ context.Context, id int64) (*model.User, error) {
			return &model.User{ID: id, Email: "tester@example.com", Name: "Tester"}, nil
		},
	}
	svc := NewService(repo, nil)

	user, err := svc.GetProfile(context.Background(), 3)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if user.ID != 3 || user.Name != "Tester" {
		t.Errorf("user = %+v, want ID=3 Name=Tester", user)
	}
}

func TestGetProfile_NotFound(t *testing.T) {
	svc := NewService(&mockUserRepo{}, nil)

	_, err := svc.GetProfile(context.Background(), 3)
	assertKind(t, err, model.KindNotFound)
}

// --- UpdateProfile ---

func TestUpdateProfile_Success(t *testing.T) {
	repo := &mockUserRepo{
		updateNameFn: func(_ context.Context, id int64, name string) (*model.User, error) {
			return &model.User{ID: id, Name: name}, nil
		},
	}
	svc := NewService(repo, nil)

	user, err := svc.UpdateProfile(context.Background(), 3, model.ProfileInput{Name: "Renamed"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if user.Name != "Renamed" {
		t.Errorf("Name = %q, want %q", user.Name, "Renamed")
	}
}

func TestUpdateProfile_EmptyName(t *testing.T) {
	called := false
	repo := &mockUserRepo{
		updateNameFn: func(_ context.Context, _ int64, _ string) (*model.User, error) {
			called = true
			return nil, nil
		},
	}
	svc := NewService(repo, nil)

	_, err := svc.UpdateProfile(context.Background(), 3, model.ProfileInput{Name: "  "})
	assertKind(t, err, model.KindValidation)
	if called {
		t.Error("UpdateName must not be called for invalid input")
	}
}

func TestUpdateProfile_UserGone(t *testing.T) {
	repo := &mockUserRepo{
		updateNameFn: func(_ context.Context, _ int64, _ string) (*model.User, error) {
			return nil, repository.ErrNotFound
		},
	}
	svc := NewService(repo, nil)

	_, err := svc.UpdateProfile(context.Background(), 3, model.ProfileInput{Name: "Renamed"})
	assertKind(t, err, model.KindNotFound)
}

// --- DeleteAccount ---

func TestDeleteAccount_DeletesAndRevokes(t *testing.T) {
	var deletedID int64
	repo := &mockUserRepo{
		deleteByIDFn: func(_ context.Context, id int64) error {
			deletedID = id
			return nil
		},
	}
	term := &mockTerminator{}
	svc := NewService(repo, term)

	if err := svc.DeleteAccount(context.Background(), 3, "tok-abc"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if deletedID != 3 {
		t.Errorf("deleted ID = %d, want 3", deletedID)
	}
	if len(term.tokens) != 1 || term.tokens[0] != "tok-abc" {
		t.Errorf("revoked tokens = %v, want [tok-abc]", term.tokens)
	}
}

func TestDeleteAccount_NotFound_DoesNotRevoke(t *testing.T) {
	repo := &mockUserRepo{
		deleteByIDFn: func(_ context.Context, _ int64) error {
			return repository.ErrNotFound
		},
	}
	term := &mockTerminator{}
	svc := NewService(repo, term)

	err := svc.DeleteAccount(context.Background(), 3, "tok-abc")
	assertKind(t, err, model.KindNotFound)
	if len(term.tokens) != 0 {
		t.Errorf("revoked tokens = %v, want none", term.tokens)
	}
}

func TestDeleteAccount_RevokeFailureIsNotFatal(t *testing.T) {
	repo := &mockUserRepo{
		deleteByIDFn: func(_ context.Context, _ int64) error { return nil },
	}
	svc := NewService(repo, &mockTerminator{err: errors.New("boom")})

	if err := svc.DeleteAccount(context.Background(), 3, "tok-abc"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestDeleteAccount_StoreFailure(t *testing.T) {
	repo := &mockUserRepo{
		deleteByIDFn: func(_ context.Context, _ int64) error {
			return errors.New("db down")
		},
	}
	svc := NewService(repo, &mockTerminator{})

	err := svc.DeleteAccount(context.Background(), 3, "tok-abc")
	if err == nil {
		t.Fatal("expected error, got nil")
	}
	var apiErr *model.APIError
	if errors.As(err, &apiErr) {
		t.Errorf("store failure must not be an APIError, got %v", apiErr)
	}
}
