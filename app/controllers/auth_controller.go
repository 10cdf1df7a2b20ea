package controllers

import (
	"errors"
	"net/http"

	"github.com/arthomesoni/arthome/app/models"
	"github.com/arthomesoni/arthome/app/repositories"
	"github.com/arthomesoni/arthome/app/services"
	"github.com/arthomesoni/arthome/pkg/bind"
	"github.com/arthomesoni/arthome/pkg/response"
)

// AuthController serves registration, login, and profile endpoints.
type AuthController struct {
	service *services.AuthService
}

func NewAuthController(service *services.AuthService) *AuthController {
	return &AuthController{service: service}
}

type registerRequest struct {
	Name     string `json:"name" validate:"required"`
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=6"`
}

type authResponse struct {
	Token string      `json:"token"`
	User  models.User `json:"user"`
}

func (c *AuthController) Register(w http.ResponseWriter, r *http.Request) {
	var body registerRequest
	if errs, err := bind.JSON(r, &body); err != nil {
		response.Message(w, http.StatusBadRequest, err.Error())
		return
	} else if errs != nil {
		response.ValidationError(w, errs)
		return
	}

	user, token, err := c.service.Register(r.Context(), body.Name, body.Email, body.Password)
	switch {
	case errors.Is(err, services.ErrEmailTaken):
		response.Message(w, http.StatusBadRequest, "Пользователь с таким email уже существует")
	case err != nil:
		serverError(w, r, err)
	default:
		response.JSON(w, http.StatusCreated, authResponse{Token: token, User: user})
	}
}

type loginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

func (c *AuthController) Login(w http.ResponseWriter, r *http.Request) {
	var body loginRequest
	if errs, err := bind.JSON(r, &body); err != nil {
		response.Message(w, http.StatusBadRequest, err.Error())
		return
	} else if errs != nil {
		response.ValidationError(w, errs)
		return
	}

	user, token, err := c.service.Login(r.Context(), body.Email, body.Password)
	switch {
	case errors.Is(err, services.ErrInvalidCredentials):
		response.Message(w, http.StatusBadRequest, "Неверный email или пароль")
	case err != nil:
		serverError(w, r, err)
	default:
		response.JSON(w, http.StatusOK, authResponse{Token: token, User: user})
	}
}

func (c *AuthController) Me(w http.ResponseWriter, r *http.Request) {
	userID, ok := callerID(r)
	if !ok {
		response.Unauthorized(w, "Нет авторизации")
		return
	}

	user, err := c.service.Me(r.Context(), userID)
	switch {
	case errors.Is(err, repositories.ErrNotFound):
		response.NotFound(w, "Пользователь не найден")
	case err != nil:
		serverError(w, r, err)
	default:
		response.JSON(w, http.StatusOK, user)
	}
}

type profileRequest struct {
	Name    string `json:"name"`
	Email   string `json:"email" validate:"omitempty,email"`
	Phone   string `json:"phone"`
	Address string `json:"address"`
}

func (c *AuthController) UpdateProfile(w http.ResponseWriter, r *http.Request) {
	userID, ok := callerID(r)
	if !ok {
		response.Unauthorized(w, "Нет авторизации")
		return
	}

	var body profileRequest
	if errs, err := bind.JSON(r, &body); err != nil {
		response.Message(w, http.StatusBadRequest, err.Error())
		return
	} else if errs != nil {
		response.ValidationError(w, errs)
		return
	}

	user, err := c.service.UpdateProfile(r.Context(), userID, services.ProfileUpdate{
		Name:    body.Name,
		Email:   body.Email,
		Phone:   body.Phone,
		Address: body.Address,
	})
	switch {
	case errors.Is(err, services.ErrEmailTaken):
		response.Message(w, http.StatusBadRequest, "Пользователь с таким email уже существует")
	case errors.Is(err, repositories.ErrNotFound):
		response.NotFound(w, "Пользователь не найден")
	case err != nil:
		serverError(w, r, err)
	default:
		response.JSON(w, http.StatusOK, user)
	}
}

// Users lists every account. Admin only.
func (c *AuthController) Users(w http.ResponseWriter, r *http.Request) {
	users, err := c.service.Users(r.Context())
	if err != nil {
		serverError(w, r, err)
		return
	}
	response.JSON(w, http.StatusOK, users)
}

type roleRequest struct {
	Role string `json:"role" validate:"required"`
}

// SetRole changes a user's role. Admin only.
func (c *AuthController) SetRole(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r, "id")
	if !ok {
		response.NotFound(w, "Пользователь не найден")
		return
	}

	var body roleRequest
	if errs, err := bind.JSON(r, &body); err != nil {
		response.Message(w, http.StatusBadRequest, err.Error())
		return
	} else if errs != nil {
		response.ValidationError(w, errs)
		return
	}

	user, err := c.service.SetRole(r.Context(), id, body.Role)
	switch {
	case errors.Is(err, services.ErrBadRole):
		response.Message(w, http.StatusBadRequest, "Недопустимая роль")
	case errors.Is(err, repositories.ErrNotFound):
		response.NotFound(w, "Пользователь не найден")
	case err != nil:
		serverError(w, r, err)
	default:
		response.JSON(w, http.StatusOK, user)
	}
}
