package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	"github.com/lucho20091/firebase-next/internal/commenttree"
	"github.com/lucho20091/firebase-next/internal/model"
)

// postRow is the posts table row. The comment tree is kept as one JSONB value
// so a rewrite replaces it in a single statement. It travels as text because
// lib/pq sends []byte parameters as bytea.
type postRow struct {
	ID          string         `db:"id"`
	AuthorID    string         `db:"user_id"`
	AuthorName  sql.NullString `db:"user_name"`
	AuthorImage sql.NullString `db:"user_image"`
	Caption     string         `db:"body"`
	Media       sql.NullString `db:"media"`
	MediaType   sql.NullString `db:"media_type"`
	Likes       pq.StringArray `db:"likes"`
	Comments    string         `db:"comments"`
	CreatedAt   time.Time      `db:"created_at"`
}

type postgresPostRepository struct {
	db *sqlx.DB
}

// NewPostgresPostRepository stores posts in PostgreSQL.
func NewPostgresPostRepository(db *sqlx.DB) PostRepository {
	return &postgresPostRepository{db: db}
}

const selectPostColumns = `
	SELECT id, user_id, user_name, user_image, body, media, media_type, likes, comments, created_at
	FROM posts
`

func (r *postgresPostRepository) Create(ctx context.Context, post *model.Post) error {
	if post.ID == "" {
		post.ID = uuid.NewString()
	}
	row, err := toPostRow(post)
	if err != nil {
		return err
	}

	query := `
		INSERT INTO posts (id, user_id, user_name, user_image, body, media, media_type, likes, comments, created_at)
		VALUES (:id, :user_id, :user_name, :user_image, :body, :media, :media_type, :likes, CAST(:comments AS jsonb), :created_at)
	`
	if _, err := r.db.NamedExecContext(ctx, query, row); err != nil {
		return fmt.Errorf("insert post: %w", err)
	}
	return nil
}

func (r *postgresPostRepository) GetByID(ctx context.Context, postID string) (*model.Post, error) {
	var row postRow
	err := r.db.GetContext(ctx, &row, selectPostColumns+` WHERE id = $1`, postID)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, model.ErrPostNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get post: %w", err)
	}
	return fromPostRow(row)
}

func (r *postgresPostRepository) ListByUser(ctx context.Context, userID string) ([]model.Post, error) {
	var rows []postRow
	err := r.db.SelectContext(ctx, &rows, selectPostColumns+` WHERE user_id = $1 ORDER BY created_at DESC, id DESC`, userID)
	if err != nil {
		return nil, fmt.Errorf("list posts: %w", err)
	}

	posts := make([]model.Post, 0, len(rows))
	for _, row := range rows {
		p, err := fromPostRow(row)
		if err != nil {
			return nil, err
		}
		posts = append(posts, *p)
	}
	return posts, nil
}

// ReplaceComments overwrites the JSONB tree without a version check.
func (r *postgresPostRepository) ReplaceComments(ctx context.Context, postID string, comments []model.CommentNode) error {
	data, err := json.Marshal(commenttree.Normalize(comments))
	if err != nil {
		return fmt.Errorf("encode comments: %w", err)
	}

	res, err := r.db.ExecContext(ctx, `UPDATE posts SET comments = $2::jsonb WHERE id = $1`, postID, string(data))
	if err != nil {
		return fmt.Errorf("update comments: %w", err)
	}
	return requireRow(res)
}

// AddLike appends userID unless it is already present, in one statement.
func (r *postgresPostRepository) AddLike(ctx context.Context, postID, userID string) error {
	res, err := r.db.ExecContext(ctx, `
		UPDATE posts
		SET likes = CASE WHEN $2 = ANY(likes) THEN likes ELSE array_append(likes, $2) END
		WHERE id = $1
	`, postID, userID)
	if err != nil {
		return fmt.Errorf("add like: %w", err)
	}
	return requireRow(res)
}

func (r *postgresPostRepository) RemoveLike(ctx context.Context, postID, userID string) error {
	res, err := r.db.ExecContext(ctx, `UPDATE posts SET likes = array_remove(likes, $2) WHERE id = $1`, postID, userID)
	if err != nil {
		return fmt.Errorf("remove like: %w", err)
	}
	return requireRow(res)
}

func requireRow(res sql.Result) error {
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected: %w", err)
	}
	if n == 0 {
		return model.ErrPostNotFound
	}
	return nil
}

func toPostRow(p *model.Post) (postRow, error) {
	comments, err := json.Marshal(commenttree.Normalize(p.Comments))
	if err != nil {
		return postRow{}, fmt.Errorf("encode comments: %w", err)
	}
	return postRow{
		ID:          p.ID,
		AuthorID:    p.AuthorID,
		AuthorName:  nullString(p.AuthorName),
		AuthorImage: nullString(p.AuthorImage),
		Caption:     p.Caption,
		Media:       nullString(p.Media),
		MediaType:   nullString(p.MediaType),
		Likes:       pq.StringArray(nonNil(p.Likes)),
		Comments:    string(comments),
		CreatedAt:   p.CreatedAt,
	}, nil
}

func fromPostRow(row postRow) (*model.Post, error) {
	var comments []model.CommentNode
	if len(row.Comments) > 0 {
		if err := json.Unmarshal([]byte(row.Comments), &comments); err != nil {
			return nil, fmt.Errorf("decode comments of post %s: %w", row.ID, err)
		}
	}
	return &model.Post{
		ID:          row.ID,
		AuthorID:    row.AuthorID,
		AuthorName:  row.AuthorName.String,
		AuthorImage: row.AuthorImage.String,
		Caption:     row.Caption,
		Media:       row.Media.String,
		MediaType:   row.MediaType.String,
		Likes:       nonNil([]string(row.Likes)),
		Comments:    commenttree.Normalize(comments),
		CreatedAt:   row.CreatedAt,
	}, nil
}

func nullString(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}
