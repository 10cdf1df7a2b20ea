// Package controllers holds the HTTP handlers. Controllers bind and validate
// request bodies, call into services, and translate service errors to the
// status codes and messages the storefront expects.
package controllers

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/arthomesoni/arthome/pkg/logger"
	"github.com/arthomesoni/arthome/pkg/middleware"
	"github.com/arthomesoni/arthome/pkg/response"
)

const msgServerError = "Ошибка сервера"

// pathID parses the named URL parameter as an ObjectID.
func pathID(r *http.Request, name string) (primitive.ObjectID, bool) {
	id, err := primitive.ObjectIDFromHex(chi.URLParam(r, name))
	return id, err == nil
}

// callerID returns the authenticated user's ObjectID. Routes behind the Auth
// middleware always have one; a miss means the route table is wrong.
func callerID(r *http.Request) (primitive.ObjectID, bool) {
	id, err := primitive.ObjectIDFromHex(middleware.UserIDFromCtx(r.Context()))
	return id, err == nil
}

// serverError logs err and answers with the generic 500 body.
func serverError(w http.ResponseWriter, r *http.Request, err error) {
	logger.WithCtx(r.Context()).Error("request failed",
		"method", r.Method,
		"path", r.URL.Path,
		"error", err,
	)
	response.ServerError(w, msgServerError)
}
