package handler

import (
	"encoding/json"
	"net/http"

	"finkiranked/internal/api/middleware"
	"finkiranked/internal/app/service"
	"finkiranked/internal/common"
	"finkiranked/internal/domain/model"

	"github.com/go-chi/chi/v5"
)

type ChallengeHandler struct {
	challengeService *service.ChallengeService
}

func NewChallengeHandler(cs *service.ChallengeService) *ChallengeHandler {
	return &ChallengeHandler{challengeService: cs}
}

func (h *ChallengeHandler) RegisterRoutes(r chi.Router) {
	r.Get("/", h.listChallenges)               // GET /api/v1/challenges
	r.Get("/today", h.getTodaysChallenge)      // GET /api/v1/challenges/today
	r.Get("/{challengeSlug}", h.getChallenge)  // GET /api/v1/challenges/fizz-buzz

	r.Group(func(modRouter chi.Router) {
		modRouter.Use(middleware.Authenticator)
		modRouter.Use(middleware.ModeratorOnly)
		modRouter.Post("/", h.createChallenge) // POST /api/v1/challenges
	})
}

func (h *ChallengeHandler) createChallenge(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.GetUserIDFromContext(r.Context())
	if !ok {
		common.RespondWithError(w, http.StatusUnauthorized, "Missing user context")
		return
	}

	var req service.CreateChallengeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		common.RespondWithError(w, http.StatusBadRequest, "Invalid request: "+err.Error())
		return
	}

	challenge, err := h.challengeService.CreateChallenge(r.Context(), userID, req)
	if err != nil {
		common.RespondWithError(w, common.HTTPStatusFromError(err), err.Error())
		return
	}
	common.RespondWithJSON(w, http.StatusCreated, challenge)
}

func (h *ChallengeHandler) getTodaysChallenge(w http.ResponseWriter, r *http.Request) {
	userRole, _ := middleware.GetUserRoleFromContext(r.Context())

	challenge, err := h.challengeService.GetTodaysChallenge(r.Context(), userRole)
	if err != nil {
		common.RespondWithError(w, common.HTTPStatusFromError(err), err.Error())
		return
	}
	common.RespondWithJSON(w, http.StatusOK, challenge)
}

func (h *ChallengeHandler) getChallenge(w http.ResponseWriter, r *http.Request) {
	challengeSlug := chi.URLParam(r, "challengeSlug")
	userRole, _ := middleware.GetUserRoleFromContext(r.Context())

	challenge, err := h.challengeService.GetChallengeBySlug(r.Context(), challengeSlug, userRole)
	if err != nil {
		common.RespondWithError(w, common.HTTPStatusFromError(err), err.Error())
		return
	}
	common.RespondWithJSON(w, http.StatusOK, challenge)
}

func (h *ChallengeHandler) listChallenges(w http.ResponseWriter, r *http.Request) {
	page, pageSize := paginationParams(r)
	userRole, _ := middleware.GetUserRoleFromContext(r.Context())

	challenges, total, err := h.challengeService.ListChallenges(r.Context(), page, pageSize, userRole)
	if err != nil {
		common.RespondWithError(w, common.HTTPStatusFromError(err), err.Error())
		return
	}

	type PaginatedChallengesResponse struct {
		Challenges []model.Challenge `json:"challenges"`
		Total      int               `json:"total"`
		Page       int               `json:"page"`
		PageSize   int               `json:"page_size"`
	}
	common.RespondWithJSON(w, http.StatusOK, PaginatedChallengesResponse{
		Challenges: challenges,
		Total:      total,
		Page:       page,
		PageSize:   pageSize,
	})
}
