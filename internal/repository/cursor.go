package repository

import (
	"encoding/base64"
	"encoding/json"
	"fmt"

	"github.com/fathima-sithara/chat-backend/internal/apperr"
)

// cursor marks the last row handed out by a descending time-ordered scan.
// Rows strictly after it in scan order are (t, id) pairs smaller than the
// cursor under (time desc, id desc) ordering.
type cursor struct {
	T  int64  `json:"t"`
	ID string `json:"id"`
}

// encodeCursor issues the opaque continuation token for a page.
func encodeCursor(t int64, id string) string {
	b, _ := json.Marshal(cursor{T: t, ID: id})
	return base64.RawURLEncoding.EncodeToString(b)
}

// decodeCursor parses a token previously issued by encodeCursor. An empty
// token means "start of scan". Tampered or foreign tokens are rejected as
// invalid input rather than surfacing a decode error from deeper layers.
func decodeCursor(token string) (*cursor, error) {
	if token == "" {
		return nil, nil
	}
	raw, err := base64.RawURLEncoding.DecodeString(token)
	if err != nil {
		return nil, fmt.Errorf("%w: malformed continuation token", apperr.ErrInvalidArgument)
	}
	var c cursor
	if err := json.Unmarshal(raw, &c); err != nil {
		return nil, fmt.Errorf("%w: malformed continuation token", apperr.ErrInvalidArgument)
	}
	if c.ID == "" {
		return nil, fmt.Errorf("%w: malformed continuation token", apperr.ErrInvalidArgument)
	}
	return &c, nil
}
