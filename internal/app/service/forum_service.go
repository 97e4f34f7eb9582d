package service

import (
	"context"
	"database/sql"
	"fmt"

	"finkiranked/internal/common"
	"finkiranked/internal/common/render"
	"finkiranked/internal/domain/model"
	"finkiranked/internal/domain/repository"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
)

type ForumService struct {
	forumRepo       repository.ForumRepository
	markdown        *render.Markdown
	reportThreshold int
	db              *sql.DB // For transactions
}

func NewForumService(forumRepo repository.ForumRepository, markdown *render.Markdown, reportThreshold int, db *sql.DB) *ForumService {
	return &ForumService{
		forumRepo:       forumRepo,
		markdown:        markdown,
		reportThreshold: reportThreshold,
		db:              db,
	}
}

type CreatePostRequest struct {
	Title   string `json:"title" validate:"required,max=200"`
	Content string `json:"content" validate:"required,max=20000"`
}

type CreateCommentRequest struct {
	Content string `json:"content" validate:"required,max=5000"`
}

func (s *ForumService) CreatePost(ctx context.Context, userID string, req CreatePostRequest) (*model.ForumPost, error) {
	if err := validate.Struct(req); err != nil {
		return nil, fmt.Errorf("%v: %w", err, common.ErrValidation)
	}

	post := &model.ForumPost{
		ID:       uuid.NewString(),
		AuthorID: userID,
		Title:    req.Title,
		Content:  req.Content,
	}
	if err := s.forumRepo.CreatePost(ctx, post); err != nil {
		return nil, common.Errorf("failed to create post: %w", err)
	}
	return post, nil
}

func (s *ForumService) GetPost(ctx context.Context, postID, userRole string) (*model.ForumPost, error) {
	post, err := s.forumRepo.FindPostByID(ctx, postID)
	if err != nil {
		return nil, err
	}
	if post.Hidden && !isModerator(userRole) {
		return nil, common.ErrNotFound
	}

	s.renderPost(post)

	comments, err := s.forumRepo.ListCommentsByPostID(ctx, postID)
	if err != nil {
		log.Warn().Err(err).Str("post_id", postID).Msg("failed to fetch comments")
	} else {
		for i := range comments {
			if html, err := s.markdown.Render(comments[i].Content); err == nil {
				comments[i].ContentHTML = html
			}
		}
		post.Comments = comments
	}
	return post, nil
}

func (s *ForumService) ListPosts(ctx context.Context, page, pageSize int, userRole string) ([]model.ForumPost, int, error) {
	limit := pageSize
	offset := (page - 1) * pageSize
	if offset < 0 {
		offset = 0
	}
	posts, total, err := s.forumRepo.ListPosts(ctx, limit, offset, isModerator(userRole))
	if err != nil {
		return nil, 0, err
	}
	for i := range posts {
		s.renderPost(&posts[i])
	}
	return posts, total, nil
}

func (s *ForumService) CreateComment(ctx context.Context, userID, postID string, req CreateCommentRequest) (*model.ForumComment, error) {
	if err := validate.Struct(req); err != nil {
		return nil, fmt.Errorf("%v: %w", err, common.ErrValidation)
	}

	post, err := s.forumRepo.FindPostByID(ctx, postID)
	if err != nil {
		return nil, err
	}
	if post.Hidden {
		return nil, common.Errorf("post is hidden pending review: %w", common.ErrForbidden)
	}

	comment := &model.ForumComment{
		ID:       uuid.NewString(),
		PostID:   post.ID,
		AuthorID: userID,
		Content:  req.Content,
	}
	if err := s.forumRepo.CreateComment(ctx, comment); err != nil {
		return nil, common.Errorf("failed to create comment: %w", err)
	}
	return comment, nil
}

// ReportPost records one report per user per post. Reaching the configured
// threshold auto-hides the post until a moderator reviews it.
func (s *ForumService) ReportPost(ctx context.Context, reporterID, postID string) (hidden bool, err error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return false, common.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	count, err := s.forumRepo.AddReport(ctx, tx, postID, reporterID)
	if err != nil {
		return false, err
	}

	if count >= s.reportThreshold {
		if err := s.forumRepo.SetPostHidden(ctx, tx, postID, true); err != nil {
			return false, common.Errorf("failed to hide post: %w", err)
		}
		hidden = true
	}

	if err := tx.Commit(); err != nil {
		return false, common.Errorf("failed to commit transaction: %w", err)
	}

	if hidden {
		log.Info().Str("post_id", postID).Int("reports", count).Msg("post auto-hidden pending review")
	}
	return hidden, nil
}

// ApprovePost clears a post's reports and unhides it.
func (s *ForumService) ApprovePost(ctx context.Context, postID string) error {
	if _, err := s.forumRepo.FindPostByID(ctx, postID); err != nil {
		return err
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return common.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	if err := s.forumRepo.ClearReports(ctx, tx, postID); err != nil {
		return common.Errorf("failed to clear reports: %w", err)
	}
	if err := s.forumRepo.SetPostHidden(ctx, tx, postID, false); err != nil {
		return common.Errorf("failed to unhide post: %w", err)
	}
	return tx.Commit()
}

func (s *ForumService) DeletePost(ctx context.Context, postID string) error {
	return s.forumRepo.DeletePost(ctx, postID)
}

func (s *ForumService) renderPost(post *model.ForumPost) {
	html, err := s.markdown.Render(post.Content)
	if err != nil {
		log.Warn().Err(err).Str("post_id", post.ID).Msg("failed to render post content")
		return
	}
	post.ContentHTML = html
}
