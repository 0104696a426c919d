package domain

import "time"

// BookingView is a booking with its item and booker resolved, as returned to callers.
type BookingView struct {
	ID     int64
	Start  time.Time
	End    time.Time
	Status BookingStatus
	Item   Item
	Booker User
}

func NewBookingView(b Booking, item Item, booker User) BookingView {
	return BookingView{
		ID:     b.ID,
		Start:  b.Start,
		End:    b.End,
		Status: b.Status,
		Item:   item,
		Booker: booker,
	}
}
