package model

import (
	"encoding/json"
	"testing"
)

func TestSeatsUnmarshal_PreservesKeyOrder(t *testing.T) {
	var seats Seats
	if err := json.Unmarshal([]byte(`{"C3":"available","A1":"booked","B2":"held"}`), &seats); err != nil {
		t.Fatalf("expected nil error, got %v", err)
	}

	want := []string{"C3", "A1", "B2"}
	if len(seats) != len(want) {
		t.Fatalf("expected %d seats, got %d", len(want), len(seats))
	}
	for i, id := range want {
		if seats[i].Id != id {
			t.Fatalf("seat %d: expected %q, got %q", i, id, seats[i].Id)
		}
	}
}

func TestSeatsUnmarshal_Empty(t *testing.T) {
	var seats Seats
	if err := json.Unmarshal([]byte(`{}`), &seats); err != nil {
		t.Fatalf("expected nil error, got %v", err)
	}
	if len(seats) != 0 {
		t.Fatalf("expected no seats, got %+v", seats)
	}
}

func TestSeatsUnmarshal_DuplicateKeyKeepsFirstPosition(t *testing.T) {
	var seats Seats
	if err := json.Unmarshal([]byte(`{"A1":"available","A2":"booked","A1":"booked"}`), &seats); err != nil {
		t.Fatalf("expected nil error, got %v", err)
	}
	if len(seats) != 2 {
		t.Fatalf("expected 2 seats, got %+v", seats)
	}
	if seats[0].Id != "A1" || seats[0].Status != StatusBooked {
		t.Fatalf("unexpected first seat: %+v", seats[0])
	}
}

func TestSeatsUnmarshal_DetailObject(t *testing.T) {
	var seats Seats
	body := `{"A1":{"status":"held","held_by":"ana","hold_expires_in":12},"A2":{"status":"available"}}`
	if err := json.Unmarshal([]byte(body), &seats); err != nil {
		t.Fatalf("expected nil error, got %v", err)
	}
	if seats[0].Status != StatusHeld || seats[0].HeldBy != "ana" || seats[0].HoldExpiresIn != 12 {
		t.Fatalf("unexpected held seat: %+v", seats[0])
	}
	if !seats[1].Bookable() {
		t.Fatalf("expected A2 to be bookable: %+v", seats[1])
	}
}

func TestSeatsUnmarshal_RejectsBadShapes(t *testing.T) {
	cases := map[string]string{
		"array body":        `["A1"]`,
		"null body":         `null`,
		"number status":     `{"A1": 1}`,
		"null status":       `{"A1": null}`,
		"object without it": `{"A1": {"held_by": "ana"}}`,
		"list status":       `{"A1": ["available"]}`,
	}
	for name, body := range cases {
		t.Run(name, func(t *testing.T) {
			var seats Seats
			if err := json.Unmarshal([]byte(body), &seats); err == nil {
				t.Fatalf("expected error for %s, got seats %+v", body, seats)
			}
		})
	}
}

func TestParseStatus_ExactMatchOnly(t *testing.T) {
	cases := []struct {
		raw  string
		want Status
	}{
		{"available", StatusAvailable},
		{"booked", StatusBooked},
		{"held", StatusHeld},
		{"Available", StatusUnknown},
		{" available", StatusUnknown},
		{"available ", StatusUnknown},
		{"reserved", StatusUnknown},
		{"", StatusUnknown},
	}
	for _, tc := range cases {
		if got := ParseStatus(tc.raw); got != tc.want {
			t.Fatalf("ParseStatus(%q): expected %v, got %v", tc.raw, tc.want, got)
		}
		if got := NewSeat("A1", tc.raw).Bookable(); got != (tc.want == StatusAvailable) {
			t.Fatalf("Bookable for %q: got %v", tc.raw, got)
		}
	}
}

func TestSeats_CountAndBookable(t *testing.T) {
	seats := Seats{
		NewSeat("A1", "available"),
		NewSeat("A2", "booked"),
		NewSeat("A3", "available"),
		NewSeat("A4", "maintenance"),
	}
	if got := seats.Count(StatusAvailable); got != 2 {
		t.Fatalf("expected 2 available, got %d", got)
	}
	if got := seats.Count(StatusUnknown); got != 1 {
		t.Fatalf("expected 1 unknown, got %d", got)
	}
	bookable := seats.Bookable()
	if len(bookable) != 2 || bookable[0].Id != "A1" || bookable[1].Id != "A3" {
		t.Fatalf("unexpected bookable seats: %+v", bookable)
	}
	if seat, ok := seats.Find("A4"); !ok || seat.Label != "maintenance" {
		t.Fatalf("expected to find A4 with raw label, got %+v %v", seat, ok)
	}
}
