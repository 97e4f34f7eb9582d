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

type ForumHandler struct {
	forumService *service.ForumService
}

func NewForumHandler(fs *service.ForumService) *ForumHandler {
	return &ForumHandler{forumService: fs}
}

func (h *ForumHandler) RegisterRoutes(r chi.Router) {
	r.Get("/", h.listPosts)
	r.Get("/{postID}", h.getPost)

	r.Group(func(authed chi.Router) {
		authed.Use(middleware.Authenticator)
		authed.Post("/", h.createPost)
		authed.Post("/{postID}/comments", h.createComment)
		authed.Post("/{postID}/report", h.reportPost)
	})

	r.Group(func(modRouter chi.Router) {
		modRouter.Use(middleware.Authenticator)
		modRouter.Use(middleware.ModeratorOnly)
		modRouter.Post("/{postID}/approve", h.approvePost)
		modRouter.Delete("/{postID}", h.deletePost)
	})
}

func (h *ForumHandler) listPosts(w http.ResponseWriter, r *http.Request) {
	page, pageSize := paginationParams(r)
	userRole, _ := middleware.GetUserRoleFromContext(r.Context())

	posts, total, err := h.forumService.ListPosts(r.Context(), page, pageSize, userRole)
	if err != nil {
		common.RespondWithError(w, common.HTTPStatusFromError(err), err.Error())
		return
	}

	type PaginatedPostsResponse struct {
		Posts    []model.ForumPost `json:"posts"`
		Total    int               `json:"total"`
		Page     int               `json:"page"`
		PageSize int               `json:"page_size"`
	}
	common.RespondWithJSON(w, http.StatusOK, PaginatedPostsResponse{
		Posts:    posts,
		Total:    total,
		Page:     page,
		PageSize: pageSize,
	})
}

func (h *ForumHandler) getPost(w http.ResponseWriter, r *http.Request) {
	postID := chi.URLParam(r, "postID")
	userRole, _ := middleware.GetUserRoleFromContext(r.Context())

	post, err := h.forumService.GetPost(r.Context(), postID, userRole)
	if err != nil {
		common.RespondWithError(w, common.HTTPStatusFromError(err), err.Error())
		return
	}
	common.RespondWithJSON(w, http.StatusOK, post)
}

func (h *ForumHandler) createPost(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.GetUserIDFromContext(r.Context())
	if !ok {
		common.RespondWithError(w, http.StatusUnauthorized, "Missing user context")
		return
	}

	var req service.CreatePostRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		common.RespondWithError(w, http.StatusBadRequest, "Invalid request payload: "+err.Error())
		return
	}

	post, err := h.forumService.CreatePost(r.Context(), userID, req)
	if err != nil {
		common.RespondWithError(w, common.HTTPStatusFromError(err), err.Error())
		return
	}
	common.RespondWithJSON(w, http.StatusCreated, post)
}

func (h *ForumHandler) createComment(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.GetUserIDFromContext(r.Context())
	if !ok {
		common.RespondWithError(w, http.StatusUnauthorized, "Missing user context")
		return
	}
	postID := chi.URLParam(r, "postID")

	var req service.CreateCommentRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		common.RespondWithError(w, http.StatusBadRequest, "Invalid request payload: "+err.Error())
		return
	}

	comment, err := h.forumService.CreateComment(r.Context(), userID, postID, req)
	if err != nil {
		common.RespondWithError(w, common.HTTPStatusFromError(err), err.Error())
		return
	}
	common.RespondWithJSON(w, http.StatusCreated, comment)
}

func (h *ForumHandler) reportPost(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.GetUserIDFromContext(r.Context())
	if !ok {
		common.RespondWithError(w, http.StatusUnauthorized, "Missing user context")
		return
	}
	postID := chi.URLParam(r, "postID")

	hidden, err := h.forumService.ReportPost(r.Context(), userID, postID)
	if err != nil {
		common.RespondWithError(w, common.HTTPStatusFromError(err), err.Error())
		return
	}
	common.RespondWithJSON(w, http.StatusOK, map[string]bool{"hidden": hidden})
}

func (h *ForumHandler) approvePost(w http.ResponseWriter, r *http.Request) {
	postID := chi.URLParam(r, "postID")
	if err := h.forumService.ApprovePost(r.Context(), postID); err != nil {
		common.RespondWithError(w, common.HTTPStatusFromError(err), err.Error())
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *ForumHandler) deletePost(w http.ResponseWriter, r *http.Request) {
	postID := chi.URLParam(r, "postID")
	if err := h.forumService.DeletePost(r.Context(), postID); err != nil {
		common.RespondWithError(w, common.HTTPStatusFromError(err), err.Error())
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
