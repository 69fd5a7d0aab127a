// internal/profile/routes.go

package profile

import (
	"github.com/gorilla/mux"

	"github.com/zawajlabs/zawaj-backend/internal/auth"
)

func RegisterRoutes(router *mux.Router, handler *Handler, authMiddleware *auth.Middleware) {
	api := router.PathPrefix("/api/v1/profile").Subrouter()
	api.Use(authMiddleware.Authenticate)

	api.HandleFunc("", handler.GetMyProfile).Methods("GET")
	api.HandleFunc("", handler.UpdateMyProfile).Methods("PUT")
	api.HandleFunc("/questions", handler.UpdateMyQuestions).Methods("PUT")
	api.HandleFunc("/wali", handler.UpdateMyWali).Methods("PUT")
}
