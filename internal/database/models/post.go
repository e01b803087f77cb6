package models

import (
	"database/sql/driver"
	"encoding/json"
	"errors"
	"time"

	"facebook-post-scraper/pkg/types"
)

// PostRow is one row of fb_normal_posts. The post itself is kept as a
// JSONB document so the stored shape matches the document-store backend.
type PostRow struct {
	ID        int64        `db:"id"`
	PostID    string       `db:"post_id"`
	Document  PostDocument `db:"document"`
	ScrapedAt time.Time    `db:"scraped_at"`
	CreatedAt time.Time    `db:"created_at"`
	UpdatedAt time.Time    `db:"updated_at"`
}

// PostDocument stores a types.Post in a JSONB column.
type PostDocument types.Post

func (d PostDocument) Value() (driver.Value, error) {
	return marshalJSON(types.Post(d))
}

func (d *PostDocument) Scan(value interface{}) error {
	return scanJSON(value, (*types.Post)(d))
}

// SinglePostDocument stores a types.SinglePost in a JSONB column.
type SinglePostDocument types.SinglePost

func (d SinglePostDocument) Value() (driver.Value, error) {
	return marshalJSON(types.SinglePost(d))
}

func (d *SinglePostDocument) Scan(value interface{}) error {
	return scanJSON(value, (*types.SinglePost)(d))
}

// marshalJSON returns text: lib/pq would send a []byte parameter as bytea.
func marshalJSON(v interface{}) (driver.Value, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return nil, err
	}
	return string(data), nil
}

func scanJSON(value interface{}, dst interface{}) error {
	switch v := value.(type) {
	case nil:
		return nil
	case []byte:
		return json.Unmarshal(v, dst)
	case string:
		return json.Unmarshal([]byte(v), dst)
	default:
		return errors.New("type assertion to []byte failed")
	}
}
