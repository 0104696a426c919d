package handler

import (
	"fmt"
	"strings"
	"time"

	"github.com/rl1809/shareit/internal/core/domain"
)

// TimeLayout is the wire format of booking timestamps. Values without a zone
// are read as UTC.
const TimeLayout = "2006-01-02T15:04:05"

// Timestamp is a time.Time that marshals as TimeLayout and also accepts RFC 3339.
type Timestamp struct {
	time.Time
}

func (t Timestamp) MarshalJSON() ([]byte, error) {
	return []byte(`"` + t.UTC().Format(TimeLayout) + `"`), nil
}

func (t *Timestamp) UnmarshalJSON(data []byte) error {
	s := strings.Trim(string(data), `"`)
	parsed, err := ParseTimestamp(s)
	if err != nil {
		return err
	}
	t.Time = parsed
	return nil
}

func ParseTimestamp(s string) (time.Time, error) {
	if t, err := time.ParseInLocation(TimeLayout, s, time.UTC); err == nil {
		return t, nil
	}
	t, err := time.Parse(time.RFC3339, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid timestamp %q", s)
	}
	return t.UTC(), nil
}

type CreateBookingRequest struct {
	Start  *Timestamp `json:"start" binding:"required"`
	End    *Timestamp `json:"end" binding:"required"`
	ItemID *int64     `json:"itemId" binding:"required"`
}

type ItemResponse struct {
	ID          int64  `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description"`
	Available   bool   `json:"available"`
}

type UserResponse struct {
	ID    int64  `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email"`
}

type BookingResponse struct {
	ID     int64        `json:"id"`
	Start  Timestamp    `json:"start"`
	End    Timestamp    `json:"end"`
	Status string       `json:"status"`
	Item   ItemResponse `json:"item"`
	Booker UserResponse `json:"booker"`
}

type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message,omitempty"`
}

func toBookingResponse(v domain.BookingView) BookingResponse {
	return BookingResponse{
		ID:     v.ID,
		Start:  Timestamp{v.Start},
		End:    Timestamp{v.End},
		Status: string(v.Status),
		Item: ItemResponse{
			ID:          v.Item.ID,
			Name:        v.Item.Name,
			Description: v.Item.Description,
			Available:   v.Item.Available,
		},
		Booker: UserResponse{
			ID:    v.Booker.ID,
			Name:  v.Booker.Name,
			Email: v.Booker.Email,
		},
	}
}

func toBookingResponses(views []domain.BookingView) []BookingResponse {
	out := make([]BookingResponse, 0, len(views))
	for _, v := range views {
		out = append(out, toBookingResponse(v))
	}
	return out
}
