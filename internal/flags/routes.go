// internal/flags/routes.go

package flags

import (
	"github.com/gorilla/mux"

	"github.com/zawajlabs/zawaj-backend/internal/auth"
)

func RegisterRoutes(router *mux.Router, handler *Handler, authMiddleware *auth.Middleware) {
	api := router.PathPrefix("/api/v1").Subrouter()
	api.Use(authMiddleware.Authenticate)

	api.HandleFunc("/interests/{id}/flags", handler.GetFlagAnalysis).Methods("GET")
	api.HandleFunc("/interests/{id}/flags", handler.InvalidateFlagAnalysis).Methods("DELETE")
}
