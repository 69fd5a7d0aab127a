// internal/interest/handlers.go

package interest

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/google/uuid"
	"github.com/gorilla/mux"

	"github.com/zawajlabs/zawaj-backend/internal/auth"
	"github.com/zawajlabs/zawaj-backend/internal/common/utils"
)

type Handler struct {
	service Service
}

func NewHandler(service Service) *Handler {
	return &Handler{service: service}
}

// respondWithServiceError maps the service error taxonomy onto HTTP status
// codes. Falls through to a generic 500 for anything unrecognized.
func respondWithServiceError(w http.ResponseWriter, err error, fallback string) {
	var ve *ValidationError
	var pe *PreconditionFailedError

	switch {
	case errors.As(err, &ve):
		utils.RespondWithError(w, http.StatusBadRequest, ve.Error())
	case errors.As(err, &pe):
		utils.RespondWithError(w, http.StatusConflict, pe.Error())
	case errors.Is(err, ErrInterestNotFound), errors.Is(err, ErrProfileNotFound):
		utils.RespondWithError(w, http.StatusNotFound, err.Error())
	case errors.Is(err, ErrNotRequester), errors.Is(err, ErrNotRecipient):
		utils.RespondWithError(w, http.StatusForbidden, err.Error())
	default:
		utils.RespondWithError(w, http.StatusInternalServerError, fallback)
	}
}

func (h *Handler) ExpressInterest(w http.ResponseWriter, r *http.Request) {
	accountID, ok := auth.GetAccountIDFromContext(r.Context())
	if !ok {
		utils.RespondWithError(w, http.StatusUnauthorized, "Unauthorized")
		return
	}

	var req ExpressInterestRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.RespondWithError(w, http.StatusBadRequest, "Invalid request payload")
		return
	}
	if err := utils.ValidateStruct(&req); err != nil {
		utils.RespondWithError(w, http.StatusBadRequest, err.Error())
		return
	}

	recipientID, err := uuid.Parse(req.RecipientProfileID)
	if err != nil {
		utils.RespondWithError(w, http.StatusBadRequest, "Invalid recipient profile ID")
		return
	}

	in, err := h.service.ExpressInterest(r.Context(), accountID, recipientID)
	if err != nil {
		respondWithServiceError(w, err, "Failed to express interest")
		return
	}

	utils.RespondWithJSON(w, http.StatusCreated, in)
}

func (h *Handler) GetInterest(w http.ResponseWriter, r *http.Request) {
	if _, ok := auth.GetAccountIDFromContext(r.Context()); !ok {
		utils.RespondWithError(w, http.StatusUnauthorized, "Unauthorized")
		return
	}

	interestID, err := uuid.Parse(mux.Vars(r)["id"])
	if err != nil {
		utils.RespondWithError(w, http.StatusBadRequest, "Invalid interest ID")
		return
	}

	in, err := h.service.GetInterestByID(r.Context(), interestID)
	if err != nil {
		respondWithServiceError(w, err, "Failed to get interest")
		return
	}

	utils.RespondWithJSON(w, http.StatusOK, in)
}

func (h *Handler) SubmitAnswer(w http.ResponseWriter, r *http.Request) {
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

	var req SubmitAnswerRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.RespondWithError(w, http.StatusBadRequest, "Invalid request payload")
		return
	}
	if err := utils.ValidateStruct(&req); err != nil {
		utils.RespondWithError(w, http.StatusBadRequest, err.Error())
		return
	}

	in, err := h.service.SubmitAnswer(r.Context(), accountID, interestID, &req)
	if err != nil {
		respondWithServiceError(w, err, "Failed to submit answer")
		return
	}

	utils.RespondWithJSON(w, http.StatusOK, in)
}

func (h *Handler) GetAnswers(w http.ResponseWriter, r *http.Request) {
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

	answers, err := h.service.GetAnswers(r.Context(), accountID, interestID)
	if err != nil {
		respondWithServiceError(w, err, "Failed to get answers")
		return
	}

	utils.RespondWithJSON(w, http.StatusOK, answers)
}

func (h *Handler) Withdraw(w http.ResponseWriter, r *http.Request) {
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

	if err := h.service.Withdraw(r.Context(), accountID, interestID); err != nil {
		respondWithServiceError(w, err, "Failed to withdraw interest")
		return
	}

	utils.RespondWithMessage(w, http.StatusOK, "Interest withdrawn")
}

func (h *Handler) Accept(w http.ResponseWriter, r *http.Request) {
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

	if err := h.service.Accept(r.Context(), accountID, interestID); err != nil {
		respondWithServiceError(w, err, "Failed to accept interest")
		return
	}

	utils.RespondWithMessage(w, http.StatusOK, "Interest accepted")
}

func (h *Handler) Reject(w http.ResponseWriter, r *http.Request) {
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

	if err := h.service.Reject(r.Context(), accountID, interestID); err != nil {
		respondWithServiceError(w, err, "Failed to reject interest")
		return
	}

	utils.RespondWithMessage(w, http.StatusOK, "Interest rejected")
}

func (h *Handler) ListSent(w http.ResponseWriter, r *http.Request) {
	accountID, ok := auth.GetAccountIDFromContext(r.Context())
	if !ok {
		utils.RespondWithError(w, http.StatusUnauthorized, "Unauthorized")
		return
	}

	interests, err := h.service.ListSent(r.Context(), accountID)
	if err != nil {
		respondWithServiceError(w, err, "Failed to list sent interests")
		return
	}

	utils.RespondWithJSON(w, http.StatusOK, interests)
}

func (h *Handler) ListReceived(w http.ResponseWriter, r *http.Request) {
	accountID, ok := auth.GetAccountIDFromContext(r.Context())
	if !ok {
		utils.RespondWithError(w, http.StatusUnauthorized, "Unauthorized")
		return
	}

	interests, err := h.service.ListReceived(r.Context(), accountID)
	if err != nil {
		respondWithServiceError(w, err, "Failed to list received interests")
		return
	}

	utils.RespondWithJSON(w, http.StatusOK, interests)
}

// ViewProfile renders another member's profile filtered by the caller's
// current access grant.
func (h *Handler) ViewProfile(w http.ResponseWriter, r *http.Request) {
	accountID, ok := auth.GetAccountIDFromContext(r.Context())
	if !ok {
		utils.RespondWithError(w, http.StatusUnauthorized, "Unauthorized")
		return
	}

	profileID, err := uuid.Parse(mux.Vars(r)["id"])
	if err != nil {
		utils.RespondWithError(w, http.StatusBadRequest, "Invalid profile ID")
		return
	}

	view, err := h.service.ViewProfile(r.Context(), accountID, profileID)
	if err != nil {
		respondWithServiceError(w, err, "Failed to view profile")
		return
	}

	utils.RespondWithJSON(w, http.StatusOK, view)
}

func (h *Handler) GetWaliContact(w http.ResponseWriter, r *http.Request) {
	accountID, ok := auth.GetAccountIDFromContext(r.Context())
	if !ok {
		utils.RespondWithError(w, http.StatusUnauthorized, "Unauthorized")
		return
	}

	profileID, err := uuid.Parse(mux.Vars(r)["id"])
	if err != nil {
		utils.RespondWithError(w, http.StatusBadRequest, "Invalid profile ID")
		return
	}

	wali, err := h.service.GetWaliContact(r.Context(), accountID, profileID)
	if err != nil {
		respondWithServiceError(w, err, "Failed to get wali contact")
		return
	}
	if wali == nil {
		utils.RespondWithError(w, http.StatusForbidden, "Wali contact is not unlocked")
		return
	}

	utils.RespondWithJSON(w, http.StatusOK, wali)
}
