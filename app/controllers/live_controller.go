package controllers

import (
	"net/http"
	"strings"

	"github.com/arthomesoni/arthome/app/models"
	"github.com/arthomesoni/arthome/pkg/auth"
	"github.com/arthomesoni/arthome/pkg/response"
	"github.com/arthomesoni/arthome/pkg/ws"
)

// LiveController upgrades admin connections to the live event feed. Browsers
// cannot set headers on WebSocket handshakes, so the token is also accepted
// as a query parameter.
type LiveController struct {
	hub *ws.Hub
}

func NewLiveController(hub *ws.Hub) *LiveController {
	return &LiveController{hub: hub}
}

func (c *LiveController) Connect(w http.ResponseWriter, r *http.Request) {
	token := r.URL.Query().Get("token")
	if token == "" {
		token = strings.TrimPrefix(r.Header.Get("Authorization"), "Bearer ")
	}
	if token == "" {
		response.Unauthorized(w, "Нет авторизации")
		return
	}

	claims, err := auth.ValidateToken(token)
	if err != nil {
		response.Unauthorized(w, "Недействительный токен")
		return
	}
	if claims.Role != models.RoleAdmin {
		response.Forbidden(w, "Доступ запрещен")
		return
	}

	ws.Upgrade(w, r, c.hub)
}
