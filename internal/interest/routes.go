// internal/interest/routes.go

package interest

import (
	"github.com/gorilla/mux"

	"github.com/zawajlabs/zawaj-backend/internal/auth"
)

func RegisterRoutes(router *mux.Router, handler *Handler, authMiddleware *auth.Middleware) {
	api := router.PathPrefix("/api/v1").Subrouter()
	api.Use(authMiddleware.Authenticate)

	api.HandleFunc("/interests", handler.ExpressInterest).Methods("POST")
	api.HandleFunc("/interests/sent", handler.ListSent).Methods("GET")
	api.HandleFunc("/interests/received", handler.ListReceived).Methods("GET")
	api.HandleFunc("/interests/{id}", handler.GetInterest).Methods("GET")
	api.HandleFunc("/interests/{id}/answers", handler.SubmitAnswer).Methods("POST")
	api.HandleFunc("/interests/{id}/answers", handler.GetAnswers).Methods("GET")
	api.HandleFunc("/interests/{id}/withdraw", handler.Withdraw).Methods("POST")
	api.HandleFunc("/interests/{id}/accept", handler.Accept).Methods("POST")
	api.HandleFunc("/interests/{id}/reject", handler.Reject).Methods("POST")

	api.HandleFunc("/profiles/{id}/view", handler.ViewProfile).Methods("GET")
	api.HandleFunc("/profiles/{id}/wali", handler.GetWaliContact).Methods("GET")
}
