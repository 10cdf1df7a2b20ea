package services

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/arthomesoni/arthome/app/models"
)

func TestRegister(t *testing.T) {
	svc := NewAuthService(newFakeUserStore())

	user, token, err := svc.Register(context.Background(), "Анна", " Anna@Example.COM ", "secret123")
	require.NoError(t, err)

	assert.NotEmpty(t, token)
	assert.Equal(t, "anna@example.com", user.Email)
	assert.Equal(t, models.RoleUser, user.Role)
	assert.NotEqual(t, "secret123", user.Password) // stored as a bcrypt hash
}

func TestRegister_DuplicateEmail(t *testing.T) {
	svc := NewAuthService(newFakeUserStore())

	_, _, err := svc.Register(context.Background(), "Анна", "anna@example.com", "secret123")
	require.NoError(t, err)

	_, _, err = svc.Register(context.Background(), "Другая Анна", "anna@example.com", "other456")
	assert.ErrorIs(t, err, ErrEmailTaken)
}

func TestLogin(t *testing.T) {
	svc := NewAuthService(newFakeUserStore())

	_, _, err := svc.Register(context.Background(), "Анна", "anna@example.com", "secret123")
	require.NoError(t, err)

	user, token, err := svc.Login(context.Background(), "ANNA@example.com", "secret123")
	require.NoError(t, err)
	assert.NotEmpty(t, token)
	assert.Equal(t, "anna@example.com", user.Email)
}

func TestLogin_BadCredentialsIndistinguishable(t *testing.T) {
	svc := NewAuthService(newFakeUserStore())

	_, _, err := svc.Register(context.Background(), "Анна", "anna@example.com", "secret123")
	require.NoError(t, err)

	_, _, wrongPassword := svc.Login(context.Background(), "anna@example.com", "wrong")
	_, _, unknownEmail := svc.Login(context.Background(), "ghost@example.com", "secret123")

	assert.ErrorIs(t, wrongPassword, ErrInvalidCredentials)
	assert.ErrorIs(t, unknownEmail, ErrInvalidCredentials)
}

func TestUpdateProfile_OnlyNonEmptyFields(t *testing.T) {
	store := newFakeUserStore()
	svc := NewAuthService(store)

	user, _, err := svc.Register(context.Background(), "Анна", "anna@example.com", "secret123")
	require.NoError(t, err)

	updated, err := svc.UpdateProfile(context.Background(), user.ID, ProfileUpdate{
		Phone: "+7 900 000-00-00",
	})
	require.NoError(t, err)

	assert.Equal(t, "Анна", updated.Name) // untouched
	assert.Equal(t, "+7 900 000-00-00", updated.Phone)
}

func TestUpdateProfile_NoFieldsIsNoOp(t *testing.T) {
	store := newFakeUserStore()
	svc := NewAuthService(store)

	user, _, err := svc.Register(context.Background(), "Анна", "anna@example.com", "secret123")
	require.NoError(t, err)

	// An empty body (or all-whitespace values) must not reach the store as an
	// empty update; the user comes back unchanged.
	updated, err := svc.UpdateProfile(context.Background(), user.ID, ProfileUpdate{
		Name:  "   ",
		Email: "",
	})
	require.NoError(t, err)
	assert.Equal(t, "Анна", updated.Name)
	assert.Equal(t, "anna@example.com", updated.Email)
}

func TestSetRole(t *testing.T) {
	store := newFakeUserStore()
	svc := NewAuthService(store)

	user, _, err := svc.Register(context.Background(), "Анна", "anna@example.com", "secret123")
	require.NoError(t, err)

	promoted, err := svc.SetRole(context.Background(), user.ID, models.RoleArtist)
	require.NoError(t, err)
	assert.Equal(t, models.RoleArtist, promoted.Role)

	_, err = svc.SetRole(context.Background(), user.ID, "superuser")
	assert.ErrorIs(t, err, ErrBadRole)
}
