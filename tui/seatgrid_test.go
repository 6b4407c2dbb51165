package tui

import (
	"strings"
	"testing"

	"seatview/model"
)

func TestRenderSeats_IdempotentUnderRepeatedResponses(t *testing.T) {
	response := seats("A1", "available", "A2", "booked", "A3", "held")

	view := seatView{}
	for i := 0; i < 3; i++ {
		view = renderSeats(view, response)
	}
	if len(view.cells) != 3 {
		t.Fatalf("expected 3 cells, got %d", len(view.cells))
	}
	for i, id := range []string{"A1", "A2", "A3"} {
		if view.cells[i].id != id {
			t.Fatalf("cell %d: expected %q, got %q", i, id, view.cells[i].id)
		}
	}
}

func TestRenderSeats_CursorFollowsSeatID(t *testing.T) {
	view := renderSeats(seatView{}, seats("A1", "available", "A2", "available", "A3", "available"))
	view = view.move(2)

	view = renderSeats(view, seats("A0", "booked", "A1", "available", "A2", "available", "A3", "available"))
	if cell, _ := view.selected(); cell.id != "A3" {
		t.Fatalf("expected cursor on A3, got %q", cell.id)
	}

	view = renderSeats(view, seats("A1", "available"))
	if cell, _ := view.selected(); cell.id != "A1" {
		t.Fatalf("expected cursor clamped onto A1, got %q", cell.id)
	}

	view = renderSeats(view, seats())
	if _, ok := view.selected(); ok {
		t.Fatal("expected no selection for an empty view")
	}
}

func TestRenderSeats_BookableOnlyForExactAvailable(t *testing.T) {
	view := renderSeats(seatView{}, seats("A1", "available", "A2", "AVAILABLE", "A3", "available ", "A4", "booked"))
	want := []bool{true, false, false, false}
	for i, cell := range view.cells {
		if cell.bookable != want[i] {
			t.Fatalf("cell %s: expected bookable=%v", cell.id, want[i])
		}
	}
	if view.count(model.StatusUnknown) != 2 {
		t.Fatalf("expected 2 unknown statuses, got %d", view.count(model.StatusUnknown))
	}
}

func TestDrawGrid_WrapsByWidth(t *testing.T) {
	view := renderSeats(seatView{}, seats("A1", "available", "A2", "available", "A3", "available"))

	oneRow := drawGrid(view, 200)
	twoRows := drawGrid(view, 20)
	if strings.Count(oneRow, "\n") >= strings.Count(twoRows, "\n") {
		t.Fatalf("expected narrow width to wrap into more lines:\n%s\n---\n%s", oneRow, twoRows)
	}
}

func TestDescribeCell(t *testing.T) {
	cases := []struct {
		cell seatCell
		want string
	}{
		{seatCell{id: "A1", label: "available", status: model.StatusAvailable, bookable: true}, "press enter to book"},
		{seatCell{id: "A2", label: "held", status: model.StatusHeld, heldBy: "ana", expires: 9}, "held by ana (9s left)"},
		{seatCell{id: "A3", label: "maintenance"}, "is maintenance"},
	}
	for _, tc := range cases {
		if got := strings.ToLower(describeCell(tc.cell)); !strings.Contains(got, tc.want) {
			t.Fatalf("describeCell(%s): expected %q in %q", tc.cell.id, tc.want, got)
		}
	}
}

func TestPadCell(t *testing.T) {
	if got := padCell("A1", 6); got != "  A1  " {
		t.Fatalf("unexpected padding: %q", got)
	}
	if got := padCell("LONGSEAT", 4); got != "LONG" {
		t.Fatalf("unexpected truncation: %q", got)
	}
}
