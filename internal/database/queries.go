package database

import (
	"context"
	"database/sql"
	"fmt"

	"facebook-post-scraper/internal/database/models"
	"facebook-post-scraper/pkg/types"
)

// UpsertPost overwrites the stored document with the same postId, or
// inserts it. fb_normal_posts has no unique constraint on post_id because
// the page scraper appends, so the upsert is an update-then-insert inside
// one transaction.
func (db *PostgresStore) UpsertPost(ctx context.Context, post *types.Post) error {
	tx, err := db.conn.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	res, err := tx.ExecContext(ctx, `
        UPDATE fb_normal_posts
        SET document = $2, scraped_at = $3, updated_at = NOW()
        WHERE post_id = $1`,
		post.PostID, models.PostDocument(*post), post.ScrapedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to update post %s: %w", post.PostID, err)
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to read affected rows: %w", err)
	}

	if affected == 0 {
		_, err = tx.ExecContext(ctx, `
            INSERT INTO fb_normal_posts (post_id, document, scraped_at)
            VALUES ($1, $2, $3)`,
			post.PostID, models.PostDocument(*post), post.ScrapedAt,
		)
		if err != nil {
			return fmt.Errorf("failed to insert post %s: %w", post.PostID, err)
		}
	}

	return tx.Commit()
}

func (db *PostgresStore) InsertPosts(ctx context.Context, posts []types.Post) (int, error) {
	if len(posts) == 0 {
		return 0, nil
	}

	tx, err := db.conn.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	stmt, err := tx.PrepareContext(ctx, `
        INSERT INTO fb_normal_posts (post_id, document, scraped_at)
        VALUES ($1, $2, $3)`)
	if err != nil {
		return 0, fmt.Errorf("failed to prepare insert: %w", err)
	}
	defer stmt.Close()

	for _, post := range posts {
		if _, err := stmt.ExecContext(ctx, post.PostID, models.PostDocument(post), post.ScrapedAt); err != nil {
			return 0, fmt.Errorf("failed to insert post %s: %w", post.PostID, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("failed to commit posts: %w", err)
	}
	return len(posts), nil
}

func (db *PostgresStore) InsertSinglePost(ctx context.Context, post *types.SinglePost) error {
	_, err := db.conn.ExecContext(ctx, `
        INSERT INTO fb_single_posts (post_id, document, scraped_at)
        VALUES ($1, $2, $3)`,
		post.PostID, models.SinglePostDocument(*post), post.ScrapedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to insert single post %s: %w", post.PostID, err)
	}
	return nil
}

func (db *PostgresStore) InsertImageRecord(ctx context.Context, record *types.ImageRecord) error {
	_, err := db.conn.ExecContext(ctx, `
        INSERT INTO fb_image_records (post_id, image_file_path, downloaded_at)
        VALUES ($1, $2, $3)`,
		record.PostID, record.ImageFilePath, record.DownloadedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to insert image record for %s: %w", record.PostID, err)
	}
	return nil
}

// MarkImageDownloaded flips the downloaded flag of the matching imgContent
// entry in every stored detail document of the post.
func (db *PostgresStore) MarkImageDownloaded(ctx context.Context, postID, imageURL string) error {
	_, err := db.conn.ExecContext(ctx, `
        UPDATE fb_single_posts
        SET document = jsonb_set(document, '{imgContent}', (
            SELECT jsonb_agg(
                CASE WHEN elem->>'url' = $2
                     THEN jsonb_set(elem, '{downloaded}', 'true'::jsonb)
                     ELSE elem END)
            FROM jsonb_array_elements(document->'imgContent') AS elem
        ))
        WHERE post_id = $1
            AND jsonb_typeof(document->'imgContent') = 'array'
            AND jsonb_array_length(document->'imgContent') > 0`,
		postID, imageURL,
	)
	if err != nil {
		return fmt.Errorf("failed to mark image downloaded for %s: %w", postID, err)
	}
	return nil
}

func (db *PostgresStore) FindPosts(ctx context.Context, postID string) ([]types.Post, error) {
	rows, err := db.conn.QueryContext(ctx, `
        SELECT id, post_id, document, scraped_at, created_at, updated_at
        FROM fb_normal_posts
        WHERE post_id = $1
        ORDER BY id`, postID)
	if err != nil {
		return nil, fmt.Errorf("failed to query posts: %w", err)
	}
	defer rows.Close()

	var posts []types.Post
	for rows.Next() {
		row := models.PostRow{}
		err := rows.Scan(&row.ID, &row.PostID, &row.Document, &row.ScrapedAt, &row.CreatedAt, &row.UpdatedAt)
		if err != nil {
			return nil, fmt.Errorf("failed to scan post: %w", err)
		}
		posts = append(posts, types.Post(row.Document))
	}

	return posts, rows.Err()
}

func (db *PostgresStore) CountPosts(ctx context.Context) (int64, error) {
	var count sql.NullInt64
	if err := db.conn.QueryRowContext(ctx, "SELECT COUNT(*) FROM fb_normal_posts").Scan(&count); err != nil {
		return 0, fmt.Errorf("failed to get posts count: %w", err)
	}
	return count.Int64, nil
}
