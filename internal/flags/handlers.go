// internal/flags/handlers.go

package flags

import (
	"errors"
	"net/http"

	"github.com/google/uuid"
	"github.com/gorilla/mux"

	"github.com/zawajlabs/zawaj-backend/internal/auth"
	"github.com/zawajlabs/zawaj-backend/internal/common/utils"
	"github.com/zawajlabs/zawaj-backend/internal/interest"
)

type Handler struct {
	service Service
}

func NewHandler(service Service) *Handler {
	return &Handler{service: service}
}

func respondWithFlagError(w http.ResponseWriter, err error, fallback string) {
	var pe *interest.PreconditionFailedError

	switch {
	case errors.As(err, &pe):
		utils.RespondWithError(w, http.StatusConflict, pe.Error())
	case errors.Is(err, interest.ErrInterestNotFound):
		utils.RespondWithError(w, http.StatusNotFound, err.Error())
	case errors.Is(err, interest.ErrNotRecipient), errors.Is(err, interest.ErrNotRequester):
		utils.RespondWithError(w, http.StatusForbidden, err.Error())
	default:
		utils.RespondWithError(w, http.StatusInternalServerError, fallback)
	}
}

func (h *Handler) GetFlagAnalysis(w http.ResponseWriter, r *http.Request) {
	accountID, ok := auth.GetAccountIDFromContext(r.Context())
	if !ok {
		utils.RespondWithError(w, http.StatusUnauthorized, "Unauthorized")
		return
	}

	interestID, err := uuid.Parse(mux.Vars(r)["id"])
	if err != nil {
		utils.RespondWithError(w, http.StatusBadRequest, "Invalid interest ID")
		return
	}

	analysis, err := h.service.GetFlagAnalysis(r.Context(), accountID, interestID)
	if err != nil {
		respondWithFlagError(w, err, "Failed to get flag analysis")
		return
	}

	utils.RespondWithJSON(w, http.StatusOK, analysis)
}

func (h *Handler) InvalidateFlagAnalysis(w http.ResponseWriter, r *http.Request) {
	accountID, ok := auth.GetAccountIDFromContext(r.Context())
	if !ok {
		utils.RespondWithError(w, http.StatusUnauthorized, "Unauthorized")
		return
	}

	interestID, err := uuid.Parse(mux.Vars(r)["id"])
	if err != nil {
		utils.RespondWithError(w, http.StatusBadRequest, "Invalid interest ID")
		return
	}

	if err := h.service.Invalidate(r.Context(), accountID, interestID); err != nil {
		respondWithFlagError(w, err, "Failed to invalidate flag analysis")
		return
	}

	utils.RespondWithMessage(w, http.StatusOK, "Flag analysis invalidated")
}
