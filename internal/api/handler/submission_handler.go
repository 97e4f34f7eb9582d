package handler

import (
	"encoding/json"
	"net/http"

	"finkiranked/internal/api/middleware"
	"finkiranked/internal/app/service"
	"finkiranked/internal/common"

	"github.com/go-chi/chi/v5"
)

type SubmissionHandler struct {
	evaluationService *service.EvaluationService
}

func NewSubmissionHandler(es *service.EvaluationService) *SubmissionHandler {
	return &SubmissionHandler{evaluationService: es}
}

func (h *SubmissionHandler) RegisterRoutes(r chi.Router) {
	r.Use(middleware.Authenticator) // All submission routes require auth
	r.Post("/", h.createSubmission)
}

// createSubmission evaluates one answer synchronously: the verdict and any
// awarded score come back in the response body.
func (h *SubmissionHandler) createSubmission(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.GetUserIDFromContext(r.Context())
	if !ok {
		common.RespondWithError(w, http.StatusUnauthorized, "Missing user context")
		return
	}

	var req service.EvaluateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		common.RespondWithError(w, http.StatusBadRequest, "Invalid request payload: "+err.Error())
		return
	}

	result, err := h.evaluationService.Evaluate(r.Context(), userID, req)
	if err != nil {
		common.RespondWithError(w, common.HTTPStatusFromError(err), err.Error())
		return
	}
	common.RespondWithJSON(w, http.StatusOK, result)
}
