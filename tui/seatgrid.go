package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"seatview/model"
)

const (
	cellWidth      = 6
	cellGap        = 1
	defaultColumns = 8
)

type seatCell struct {
	id       string
	label    string
	status   model.Status
	bookable bool
	heldBy   string
	expires  int
}

// seatView is everything needed to draw the seat grid. It is rebuilt from
// scratch on every poll; only the cursor carries over.
type seatView struct {
	cells  []seatCell
	cursor int
}

// renderSeats builds the next view from the previous one and a fresh seat
// collection. The cursor follows its seat id when that seat still exists.
func renderSeats(prev seatView, seats model.Seats) seatView {
	next := seatView{cells: make([]seatCell, 0, len(seats))}
	for _, seat := range seats {
		next.cells = append(next.cells, seatCell{
			id:       seat.Id,
			label:    seat.Label,
			status:   seat.Status,
			bookable: seat.Bookable(),
			heldBy:   seat.HeldBy,
			expires:  seat.HoldExpiresIn,
		})
	}

	if selected, ok := prev.selected(); ok {
		for i, cell := range next.cells {
			if cell.id == selected.id {
				next.cursor = i
				return next
			}
		}
	}
	next.cursor = clamp(prev.cursor, 0, len(next.cells)-1)
	return next
}

func (v seatView) selected() (seatCell, bool) {
	if v.cursor < 0 || v.cursor >= len(v.cells) {
		return seatCell{}, false
	}
	return v.cells[v.cursor], true
}

func (v seatView) move(delta int) seatView {
	if len(v.cells) == 0 {
		return v
	}
	v.cursor = clamp(v.cursor+delta, 0, len(v.cells)-1)
	return v
}

func (v seatView) count(status model.Status) int {
	n := 0
	for _, cell := range v.cells {
		if cell.status == status {
			n++
		}
	}
	return n
}

func gridColumns(width int) int {
	if width <= 0 {
		return defaultColumns
	}
	cols := (width + cellGap) / (cellWidth + 2 + cellGap)
	if cols < 1 {
		return 1
	}
	return cols
}

var (
	cellBase = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			Width(cellWidth).
			Align(lipgloss.Center)
	cellAvailable = cellBase.BorderForeground(lipgloss.Color("2")).Foreground(lipgloss.Color("2"))
	cellBooked    = cellBase.BorderForeground(lipgloss.Color("1")).Foreground(lipgloss.Color("1"))
	cellHeld      = cellBase.BorderForeground(lipgloss.Color("3")).Foreground(lipgloss.Color("3"))
	cellUnknown   = cellBase.BorderForeground(lipgloss.Color("8")).Foreground(lipgloss.Color("8"))
)

func cellStyle(cell seatCell, selected bool) lipgloss.Style {
	var style lipgloss.Style
	switch cell.status {
	case model.StatusAvailable:
		style = cellAvailable
	case model.StatusBooked:
		style = cellBooked
	case model.StatusHeld:
		style = cellHeld
	default:
		style = cellUnknown
	}
	if selected {
		style = style.Bold(true).Reverse(true).BorderStyle(lipgloss.ThickBorder())
	}
	return style
}

// drawGrid renders the view as rows of bordered cells.
func drawGrid(v seatView, width int) string {
	if len(v.cells) == 0 {
		return hint("No seats.")
	}

	cols := gridColumns(width)
	gap := strings.Repeat(" ", cellGap)
	var rows []string
	for start := 0; start < len(v.cells); start += cols {
		end := min(start+cols, len(v.cells))
		blocks := make([]string, 0, (end-start)*2)
		for i := start; i < end; i++ {
			if i > start {
				blocks = append(blocks, gap)
			}
			cell := v.cells[i]
			blocks = append(blocks, cellStyle(cell, i == v.cursor).Render(padCell(cell.id, cellWidth)))
		}
		rows = append(rows, lipgloss.JoinHorizontal(lipgloss.Top, blocks...))
	}
	return lipgloss.JoinVertical(lipgloss.Left, rows...)
}

func describeCell(cell seatCell) string {
	switch {
	case cell.bookable:
		return fmt.Sprintf("Seat %s is available. Press enter to book.", cell.id)
	case cell.status == model.StatusHeld && cell.heldBy != "":
		if cell.expires > 0 {
			return fmt.Sprintf("Seat %s is held by %s (%ds left).", cell.id, cell.heldBy, cell.expires)
		}
		return fmt.Sprintf("Seat %s is held by %s.", cell.id, cell.heldBy)
	case cell.label == "":
		return fmt.Sprintf("Seat %s has no status.", cell.id)
	default:
		return fmt.Sprintf("Seat %s is %s.", cell.id, cell.label)
	}
}

func padCell(text string, width int) string {
	if width <= 0 {
		return ""
	}
	if text == "" {
		return strings.Repeat(" ", width)
	}
	if lipgloss.Width(text) >= width {
		runes := []rune(text)
		if len(runes) > width {
			return string(runes[:width])
		}
		return text
	}
	padding := width - lipgloss.Width(text)
	left := padding / 2
	right := padding - left
	return strings.Repeat(" ", left) + text + strings.Repeat(" ", right)
}

func clamp(v, lo, hi int) int {
	if hi < lo {
		return lo
	}
	return max(lo, min(v, hi))
}
