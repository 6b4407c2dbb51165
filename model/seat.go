package model

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
)

// Status is the client-side reading of a server seat label.
type Status int

const (
	StatusUnknown Status = iota
	StatusAvailable
	StatusBooked
	StatusHeld
)

// ParseStatus maps a raw server label to a Status. Matching is exact: no
// case folding and no trimming, so "Available" is StatusUnknown.
func ParseStatus(raw string) Status {
	switch raw {
	case "available":
		return StatusAvailable
	case "booked":
		return StatusBooked
	case "held":
		return StatusHeld
	default:
		return StatusUnknown
	}
}

func (s Status) String() string {
	switch s {
	case StatusAvailable:
		return "available"
	case StatusBooked:
		return "booked"
	case StatusHeld:
		return "held"
	default:
		return "unknown"
	}
}

type Seat struct {
	Id            string
	Status        Status
	Label         string
	HeldBy        string
	HoldExpiresIn int
}

func NewSeat(id string, label string) Seat {
	return Seat{Id: id, Status: ParseStatus(label), Label: label}
}

// Bookable reports whether a booking request may be issued for the seat.
func (s Seat) Bookable() bool {
	return s.Status == StatusAvailable
}

type seatDetail struct {
	Status        *string `json:"status"`
	HeldBy        string  `json:"held_by"`
	HoldExpiresIn int     `json:"hold_expires_in"`
}

// Seats is the seat collection returned by GET /seats, kept in the order
// the keys appear in the response object.
type Seats []Seat

func (s *Seats) UnmarshalJSON(data []byte) error {
	dec := json.NewDecoder(bytes.NewReader(data))
	tok, err := dec.Token()
	if err != nil {
		return err
	}
	if delim, ok := tok.(json.Delim); !ok || delim != '{' {
		return errors.New("seats: expected a JSON object")
	}

	seats := Seats{}
	index := make(map[string]int)
	for dec.More() {
		tok, err := dec.Token()
		if err != nil {
			return err
		}
		id, ok := tok.(string)
		if !ok {
			return fmt.Errorf("seats: unexpected key %v", tok)
		}

		var raw json.RawMessage
		if err := dec.Decode(&raw); err != nil {
			return err
		}
		seat, err := decodeSeat(id, raw)
		if err != nil {
			return err
		}

		// A repeated key keeps its first position and takes the last value.
		if i, seen := index[id]; seen {
			seats[i] = seat
			continue
		}
		index[id] = len(seats)
		seats = append(seats, seat)
	}
	if _, err := dec.Token(); err != nil {
		return err
	}

	*s = seats
	return nil
}

func decodeSeat(id string, raw json.RawMessage) (Seat, error) {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 {
		return Seat{}, fmt.Errorf("seats: seat %q has no value", id)
	}

	switch raw[0] {
	case '"':
		var label string
		if err := json.Unmarshal(raw, &label); err != nil {
			return Seat{}, fmt.Errorf("seats: seat %q: %w", id, err)
		}
		return NewSeat(id, label), nil
	case '{':
		var detail seatDetail
		if err := json.Unmarshal(raw, &detail); err != nil {
			return Seat{}, fmt.Errorf("seats: seat %q: %w", id, err)
		}
		if detail.Status == nil {
			return Seat{}, fmt.Errorf("seats: seat %q has no status", id)
		}
		seat := NewSeat(id, *detail.Status)
		seat.HeldBy = detail.HeldBy
		seat.HoldExpiresIn = detail.HoldExpiresIn
		return seat, nil
	default:
		return Seat{}, fmt.Errorf("seats: seat %q: status must be a string, got %s", id, raw)
	}
}

func (s Seats) Find(id string) (Seat, bool) {
	for _, seat := range s {
		if seat.Id == id {
			return seat, true
		}
	}
	return Seat{}, false
}

func (s Seats) Bookable() Seats {
	var out Seats
	for _, seat := range s {
		if seat.Bookable() {
			out = append(out, seat)
		}
	}
	return out
}

func (s Seats) Count(status Status) int {
	n := 0
	for _, seat := range s {
		if seat.Status == status {
			n++
		}
	}
	return n
}
