package services

import (
	"context"
	"errors"
	"strings"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/arthomesoni/arthome/app/models"
	"github.com/arthomesoni/arthome/app/repositories"
	"github.com/arthomesoni/arthome/pkg/auth"
)

// UserStore is the slice of the user repository the auth service consumes.
type UserStore interface {
	FindByEmail(ctx context.Context, email string) (models.User, error)
	FindByID(ctx context.Context, id primitive.ObjectID) (models.User, error)
	Create(ctx context.Context, user *models.User) error
	UpdateProfile(ctx context.Context, id primitive.ObjectID, fields bson.M) (models.User, error)
	All(ctx context.Context) ([]models.User, error)
	SetRole(ctx context.Context, id primitive.ObjectID, role string) (models.User, error)
}

// AuthService implements registration, login, and profile management.
type AuthService struct {
	users UserStore
}

func NewAuthService(users UserStore) *AuthService {
	return &AuthService{users: users}
}

// Register creates a user with a bcrypt-hashed password and returns the user
// plus a signed token.
func (s *AuthService) Register(ctx context.Context, name, email, password string) (models.User, string, error) {
	email = strings.ToLower(strings.TrimSpace(email))

	hash, err := auth.HashPassword(password)
	if err != nil {
		return models.User{}, "", err
	}

	user := models.User{
		Name:     strings.TrimSpace(name),
		Email:    email,
		Password: hash,
		Role:     models.RoleUser,
	}
	if err := s.users.Create(ctx, &user); err != nil {
		if errors.Is(err, repositories.ErrDuplicate) {
			return models.User{}, "", ErrEmailTaken
		}
		return models.User{}, "", err
	}

	token, err := auth.GenerateToken(user.ID.Hex(), user.Role)
	if err != nil {
		return models.User{}, "", err
	}
	return user, token, nil
}

// Login checks credentials and returns the user plus a signed token.
// Unknown email and wrong password are indistinguishable to the caller.
func (s *AuthService) Login(ctx context.Context, email, password string) (models.User, string, error) {
	email = strings.ToLower(strings.TrimSpace(email))

	user, err := s.users.FindByEmail(ctx, email)
	if errors.Is(err, repositories.ErrNotFound) {
		return models.User{}, "", ErrInvalidCredentials
	}
	if err != nil {
		return models.User{}, "", err
	}

	if !auth.CheckPassword(user.Password, password) {
		return models.User{}, "", ErrInvalidCredentials
	}

	token, err := auth.GenerateToken(user.ID.Hex(), user.Role)
	if err != nil {
		return models.User{}, "", err
	}
	return user, token, nil
}

// Me returns the current user by ID.
func (s *AuthService) Me(ctx context.Context, userID primitive.ObjectID) (models.User, error) {
	return s.users.FindByID(ctx, userID)
}

// ProfileUpdate is the set of fields a user can change on themselves.
type ProfileUpdate struct {
	Name    string
	Email   string
	Phone   string
	Address string
}

// UpdateProfile applies non-empty fields of upd to the user.
func (s *AuthService) UpdateProfile(ctx context.Context, userID primitive.ObjectID, upd ProfileUpdate) (models.User, error) {
	fields := bson.M{}
	if v := strings.TrimSpace(upd.Name); v != "" {
		fields["name"] = v
	}
	if v := strings.ToLower(strings.TrimSpace(upd.Email)); v != "" {
		fields["email"] = v
	}
	if v := strings.TrimSpace(upd.Phone); v != "" {
		fields["phone"] = v
	}
	if v := strings.TrimSpace(upd.Address); v != "" {
		fields["address"] = v
	}
	if len(fields) == 0 {
		// Nothing to set; Mongo rejects an empty $set, and the contract for a
		// no-op body is to hand back the user unchanged.
		return s.users.FindByID(ctx, userID)
	}

	user, err := s.users.UpdateProfile(ctx, userID, fields)
	if errors.Is(err, repositories.ErrDuplicate) {
		return models.User{}, ErrEmailTaken
	}
	return user, err
}

// Users returns all users (admin screen).
func (s *AuthService) Users(ctx context.Context) ([]models.User, error) {
	return s.users.All(ctx)
}

// SetRole changes a user's role after validating it.
func (s *AuthService) SetRole(ctx context.Context, userID primitive.ObjectID, role string) (models.User, error) {
	if !models.ValidRole(role) {
		return models.User{}, ErrBadRole
	}
	return s.users.SetRole(ctx, userID, role)
}
