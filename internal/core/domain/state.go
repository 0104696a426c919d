package domain

import (
	"fmt"
	"strings"
	"time"
)

// BookingState is a query-time classification of a booking derived from its
// status and the current time. It is never persisted.
type BookingState string

const (
	BookingStateAll      BookingState = "ALL"
	BookingStateCurrent  BookingState = "CURRENT"
	BookingStatePast     BookingState = "PAST"
	BookingStateFuture   BookingState = "FUTURE"
	BookingStateWaiting  BookingState = "WAITING"
	BookingStateRejected BookingState = "REJECTED"
)

// BookingStates lists every state in a stable order.
var BookingStates = []BookingState{
	BookingStateAll,
	BookingStateCurrent,
	BookingStatePast,
	BookingStateFuture,
	BookingStateWaiting,
	BookingStateRejected,
}

var statePredicates = map[BookingState]func(b Booking, now time.Time) bool{
	BookingStateAll: func(Booking, time.Time) bool { return true },
	BookingStateCurrent: func(b Booking, now time.Time) bool {
		return b.Status == BookingStatusApproved && !b.Start.After(now) && now.Before(b.End)
	},
	BookingStatePast: func(b Booking, now time.Time) bool {
		return b.Status == BookingStatusApproved && b.End.Before(now)
	},
	BookingStateFuture: func(b Booking, now time.Time) bool {
		return b.Start.After(now)
	},
	BookingStateWaiting: func(b Booking, _ time.Time) bool {
		return b.Status == BookingStatusWaiting
	},
	BookingStateRejected: func(b Booking, _ time.Time) bool {
		return b.Status == BookingStatusRejected
	},
}

// ParseBookingState accepts a state name in any case. An empty string means ALL.
func ParseBookingState(s string) (BookingState, error) {
	if s == "" {
		return BookingStateAll, nil
	}
	state := BookingState(strings.ToUpper(strings.TrimSpace(s)))
	if !state.IsValid() {
		return "", fmt.Errorf("%w: Unknown state: %s", ErrValidation, s)
	}
	return state, nil
}

func (s BookingState) IsValid() bool {
	_, ok := statePredicates[s]
	return ok
}

// Matches reports whether b falls into state s at instant now. Unknown states match nothing.
func (s BookingState) Matches(b Booking, now time.Time) bool {
	pred, ok := statePredicates[s]
	if !ok {
		return false
	}
	return pred(b, now)
}

// Classify returns every state b belongs to at instant now, in BookingStates order.
func Classify(b Booking, now time.Time) []BookingState {
	states := make([]BookingState, 0, 3)
	for _, s := range BookingStates {
		if s.Matches(b, now) {
			states = append(states, s)
		}
	}
	return states
}

// FilterByState keeps the bookings matching s, preserving order.
func FilterByState(bookings []Booking, s BookingState, now time.Time) []Booking {
	out := make([]Booking, 0, len(bookings))
	for _, b := range bookings {
		if s.Matches(b, now) {
			out = append(out, b)
		}
	}
	return out
}
