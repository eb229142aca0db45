// Package pagination implements opaque cursor paging over timestamp-ordered
// result sets.
package pagination

import (
	"encoding/base64"
	"encoding/json"
	"time"
)

type Pagination struct {
	PageToken string `form:"page_token"`
	PageSize  int    `form:"page_size,default=100" validate:"gte=1,lte=1000"`
}

// Cursor marks the last reading of the previous page.
type Cursor struct {
	RecordedAt time.Time `json:"recorded_at"`
}

type PageInfo struct {
	NextPageToken string `json:"next_page_token,omitempty"`
	HasMore       bool   `json:"has_more"`
}

func EncodeCursor(data Cursor) (string, error) {
	b, err := json.Marshal(data)
	if err != nil {
		return "", err
	}
	return base64.StdEncoding.EncodeToString(b), nil
}

func DecodeCursor(data string) (*Cursor, error) {
	b, err := base64.StdEncoding.DecodeString(data)
	if err != nil {
		return nil, err
	}

	var cursor Cursor
	if err := json.Unmarshal(b, &cursor); err != nil {
		return nil, err
	}
	return &cursor, nil
}

// Trim caps data at limit and reports whether a further page exists. Callers
// query limit+1 rows to make the check cheap.
func Trim[T any](data []T, limit int) ([]T, bool) {
	if limit > 0 && len(data) > limit {
		return data[:limit], true
	}
	return data, false
}
