package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"finkiranked/internal/common"
	"finkiranked/internal/domain/model"

	"github.com/jackc/pgx/v5/pgconn"
)

type ForumRepository interface {
	CreatePost(ctx context.Context, post *model.ForumPost) error
	FindPostByID(ctx context.Context, id string) (*model.ForumPost, error)
	ListPosts(ctx context.Context, limit, offset int, includeHidden bool) ([]model.ForumPost, int, error)
	DeletePost(ctx context.Context, id string) error
	SetPostHidden(ctx context.Context, tx *sql.Tx, id string, hidden bool) error

	CreateComment(ctx context.Context, comment *model.ForumComment) error
	ListCommentsByPostID(ctx context.Context, postID string) ([]model.ForumComment, error)

	// AddReport records one distinct report per user per post and returns the
	// post's new report count. A repeat report from the same user yields
	// ErrConflict.
	AddReport(ctx context.Context, tx *sql.Tx, postID, reporterID string) (int, error)
	ClearReports(ctx context.Context, tx *sql.Tx, postID string) error
}

type pgForumRepository struct {
	db *sql.DB
}

func NewPgForumRepository(db *sql.DB) ForumRepository {
	return &pgForumRepository{db: db}
}

func (r *pgForumRepository) CreatePost(ctx context.Context, post *model.ForumPost) error {
	query := `INSERT INTO forum_posts (id, author_id, title, content) VALUES ($1, $2, $3, $4)`
	if _, err := r.db.ExecContext(ctx, query, post.ID, post.AuthorID, post.Title, post.Content); err != nil {
		return fmt.Errorf("pgForumRepository.CreatePost: %w", err)
	}
	return nil
}

func (r *pgForumRepository) FindPostByID(ctx context.Context, id string) (*model.ForumPost, error) {
	query := `SELECT p.id, p.author_id, u.username, p.title, p.content, p.hidden, p.report_count,
	                 p.created_at, p.updated_at,
	                 (SELECT COUNT(*) FROM forum_comments fc WHERE fc.post_id = p.id)
	          FROM forum_posts p LEFT JOIN users u ON p.author_id = u.id
	          WHERE p.id = $1`
	post := &model.ForumPost{}
	err := r.db.QueryRowContext(ctx, query, id).Scan(
		&post.ID, &post.AuthorID, &post.AuthorUsername, &post.Title, &post.Content,
		&post.Hidden, &post.ReportCount, &post.CreatedAt, &post.UpdatedAt, &post.CommentCount,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrNotFound
		}
		return nil, fmt.Errorf("pgForumRepository.FindPostByID: %w", err)
	}
	return post, nil
}

func (r *pgForumRepository) ListPosts(ctx context.Context, limit, offset int, includeHidden bool) ([]model.ForumPost, int, error) {
	where := ""
	if !includeHidden {
		where = ` WHERE p.hidden = FALSE`
	}

	var total int
	if err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM forum_posts p`+where).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("pgForumRepository.ListPosts count: %w", err)
	}

	query := `SELECT p.id, p.author_id, u.username, p.title, p.content, p.hidden, p.report_count,
	                 p.created_at, p.updated_at,
	                 (SELECT COUNT(*) FROM forum_comments fc WHERE fc.post_id = p.id)
	          FROM forum_posts p LEFT JOIN users u ON p.author_id = u.id` + where +
		` ORDER BY p.created_at DESC LIMIT $1 OFFSET $2`
	rows, err := r.db.QueryContext(ctx, query, limit, offset)
	if err != nil {
		return nil, 0, fmt.Errorf("pgForumRepository.ListPosts query: %w", err)
	}
	defer rows.Close()

	posts := []model.ForumPost{}
	for rows.Next() {
		var p model.ForumPost
		if err := rows.Scan(&p.ID, &p.AuthorID, &p.AuthorUsername, &p.Title, &p.Content,
			&p.Hidden, &p.ReportCount, &p.CreatedAt, &p.UpdatedAt, &p.CommentCount); err != nil {
			return nil, 0, fmt.Errorf("pgForumRepository.ListPosts scan: %w", err)
		}
		posts = append(posts, p)
	}
	if err = rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("pgForumRepository.ListPosts rows.Err: %w", err)
	}
	return posts, total, nil
}

func (r *pgForumRepository) DeletePost(ctx context.Context, id string) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM forum_posts WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("pgForumRepository.DeletePost: %w", err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return common.ErrNotFound
	}
	return nil
}

func (r *pgForumRepository) SetPostHidden(ctx context.Context, tx *sql.Tx, id string, hidden bool) error {
	query := `UPDATE forum_posts SET hidden = $1, updated_at = CURRENT_TIMESTAMP WHERE id = $2`
	var err error
	if tx != nil {
		_, err = tx.ExecContext(ctx, query, hidden, id)
	} else {
		_, err = r.db.ExecContext(ctx, query, hidden, id)
	}
	if err != nil {
		return fmt.Errorf("pgForumRepository.SetPostHidden: %w", err)
	}
	return nil
}

func (r *pgForumRepository) CreateComment(ctx context.Context, comment *model.ForumComment) error {
	query := `INSERT INTO forum_comments (id, post_id, author_id, content) VALUES ($1, $2, $3, $4)`
	if _, err := r.db.ExecContext(ctx, query, comment.ID, comment.PostID, comment.AuthorID, comment.Content); err != nil {
		return fmt.Errorf("pgForumRepository.CreateComment: %w", err)
	}
	return nil
}

func (r *pgForumRepository) ListCommentsByPostID(ctx context.Context, postID string) ([]model.ForumComment, error) {
	query := `SELECT c.id, c.post_id, c.author_id, u.username, c.content, c.created_at
	          FROM forum_comments c LEFT JOIN users u ON c.author_id = u.id
	          WHERE c.post_id = $1 ORDER BY c.created_at ASC`
	rows, err := r.db.QueryContext(ctx, query, postID)
	if err != nil {
		return nil, fmt.Errorf("pgForumRepository.ListCommentsByPostID query: %w", err)
	}
	defer rows.Close()

	var comments []model.ForumComment
	for rows.Next() {
		var c model.ForumComment
		if err := rows.Scan(&c.ID, &c.PostID, &c.AuthorID, &c.AuthorUsername, &c.Content, &c.CreatedAt); err != nil {
			return nil, fmt.Errorf("pgForumRepository.ListCommentsByPostID scan: %w", err)
		}
		comments = append(comments, c)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("pgForumRepository.ListCommentsByPostID rows.Err: %w", err)
	}
	return comments, nil
}

func (r *pgForumRepository) AddReport(ctx context.Context, tx *sql.Tx, postID, reporterID string) (int, error) {
	insert := `INSERT INTO forum_post_reports (post_id, reporter_id) VALUES ($1, $2)`
	if _, err := tx.ExecContext(ctx, insert, postID, reporterID); err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) {
			switch pgErr.Code {
			case "23505": // already reported by this user
				return 0, fmt.Errorf("post already reported by this user: %w", common.ErrConflict)
			case "23503": // post no longer exists
				return 0, common.ErrNotFound
			}
		}
		return 0, fmt.Errorf("pgForumRepository.AddReport insert: %w", err)
	}

	update := `UPDATE forum_posts SET report_count = report_count + 1, updated_at = CURRENT_TIMESTAMP
	           WHERE id = $1 RETURNING report_count`
	var count int
	if err := tx.QueryRowContext(ctx, update, postID).Scan(&count); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return 0, common.ErrNotFound
		}
		return 0, fmt.Errorf("pgForumRepository.AddReport update: %w", err)
	}
	return count, nil
}

func (r *pgForumRepository) ClearReports(ctx context.Context, tx *sql.Tx, postID string) error {
	if _, err := tx.ExecContext(ctx, `DELETE FROM forum_post_reports WHERE post_id = $1`, postID); err != nil {
		return fmt.Errorf("pgForumRepository.ClearReports delete: %w", err)
	}
	query := `UPDATE forum_posts SET report_count = 0, updated_at = CURRENT_TIMESTAMP WHERE id = $1`
	if _, err := tx.ExecContext(ctx, query, postID); err != nil {
		return fmt.Errorf("pgForumRepository.ClearReports update: %w", err)
	}
	return nil
}
