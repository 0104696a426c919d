package domain

import "time"

type BookingStatus string

const (
	BookingStatusWaiting  BookingStatus = "WAITING"
	BookingStatusApproved BookingStatus = "APPROVED"
	BookingStatusRejected BookingStatus = "REJECTED"
)

var bookingTransitions = map[BookingStatus][]BookingStatus{
	BookingStatusWaiting:  {BookingStatusApproved, BookingStatusRejected},
	BookingStatusApproved: {},
	BookingStatusRejected: {},
}

func (s BookingStatus) IsValid() bool {
	_, ok := bookingTransitions[s]
	return ok
}

// CanTransitionTo reports whether a booking in status s may move to target.
func (s BookingStatus) CanTransitionTo(target BookingStatus) bool {
	for _, t := range bookingTransitions[s] {
		if t == target {
			return true
		}
	}
	return false
}

func (s BookingStatus) IsTerminal() bool {
	return len(bookingTransitions[s]) == 0
}

// Decision returns the status an owner's approve/reject answer resolves to.
func Decision(approve bool) BookingStatus {
	if approve {
		return BookingStatusApproved
	}
	return BookingStatusRejected
}

type Booking struct {
	ID        int64
	Start     time.Time
	End       time.Time
	ItemID    int64
	BookerID  int64
	Status    BookingStatus
	Version   int64 // optimistic locking
	CreatedAt time.Time
}

// Overlaps is the half-open interval intersection test: [aStart, aEnd) and
// [bStart, bEnd) share at least one instant. Touching endpoints do not overlap.
func Overlaps(aStart, aEnd, bStart, bEnd time.Time) bool {
	return aStart.Before(bEnd) && aEnd.After(bStart)
}

func (b Booking) Overlaps(start, end time.Time) bool {
	return Overlaps(b.Start, b.End, start, end)
}

// Completed reports whether the booking was approved and has already ended.
func (b Booking) Completed(now time.Time) bool {
	return b.Status == BookingStatusApproved && b.End.Before(now)
}
