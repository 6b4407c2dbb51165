package tui

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/list"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"seatview/model"
	"seatview/service"
	"seatview/store"
)

type appState int

const (
	stateLoadingSeats appState = iota
	stateShowSeats
	stateBooking
	stateNotice
	stateSelectServer
)

// Options configures the seat view. Servers[0] is used at startup.
type Options struct {
	Servers  []string
	Interval time.Duration
	Timeout  time.Duration
}

type seatClient interface {
	service.SeatFetcher
	BookSeat(ctx context.Context, seatID string) (model.BookingResult, error)
	BaseURL() string
}

type seatPoller interface {
	Start(ctx context.Context) <-chan service.PollResult
	Results() <-chan service.PollResult
	Refresh()
	Stop()
}

type appModel struct {
	opts       Options
	httpClient *http.Client
	newPoller  func(service.SeatFetcher, time.Duration) seatPoller

	client     seatClient
	poller     seatPoller
	generation int

	state     appState
	lastState appState

	width  int
	height int

	view        seatView
	appliedSeq  uint64
	lastUpdated time.Time
	pollErr     error

	pendingSeat  string
	notice       string
	noticeFailed bool

	serverList list.Model
	spinner    spinner.Model
	keys       keyMap
	help       help.Model
}

type pollMsg struct {
	generation int
	result     service.PollResult
	closed     bool
}

type bookingMsg struct {
	generation int
	seatID     string
	result     model.BookingResult
	err        error
}

func New(opts Options) tea.Model {
	if opts.Interval <= 0 {
		opts.Interval = service.DefaultPollInterval
	}
	var httpClient *http.Client
	if opts.Timeout > 0 {
		httpClient = &http.Client{Timeout: opts.Timeout}
	}

	m := appModel{
		opts:       opts,
		httpClient: httpClient,
		newPoller:  defaultPoller,
		keys:       newKeyMap(),
		help:       help.New(),
	}
	m.serverList = newList("Select Server")

	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = lipgloss.NewStyle().Foreground(lipgloss.Color("5"))
	m.spinner = sp

	server := ""
	if len(opts.Servers) > 0 {
		server = opts.Servers[0]
	}
	m.connect(server)
	return m
}

func defaultPoller(fetcher service.SeatFetcher, interval time.Duration) seatPoller {
	return service.NewPoller(fetcher, interval)
}

// Shutdown stops background polling for a model returned by tea.Program.Run.
func Shutdown(m tea.Model) {
	if app, ok := m.(appModel); ok && app.poller != nil {
		app.poller.Stop()
	}
}

func (m appModel) Init() tea.Cmd {
	return tea.Batch(m.startPolling(), m.spinner.Tick)
}

func (m appModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.help.Width = msg.Width
		m.resizeLists()
		return m, nil

	case tea.KeyMsg:
		next, cmd, handled := m.handleKey(msg)
		if handled {
			return next, cmd
		}
		// fallthrough to component update

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		if m.isLoadingState() {
			return m, cmd
		}
		return m, nil

	case pollMsg:
		if msg.generation != m.generation || msg.closed {
			return m, nil
		}
		m.applyPoll(msg.result)
		return m, waitForPoll(m.poller, m.generation)

	case bookingMsg:
		if msg.generation != m.generation {
			return m, nil
		}
		if msg.err != nil {
			log.Printf("book seat %s on %s: %v", msg.seatID, m.client.BaseURL(), msg.err)
		}
		m.notice = service.BookingMessage(msg.result, msg.err)
		m.noticeFailed = msg.err != nil
		m.state = stateNotice
		return m, nil
	}

	var cmd tea.Cmd
	if m.state == stateSelectServer {
		m.serverList, cmd = m.serverList.Update(msg)
	}
	return m, cmd
}

func (m appModel) handleKey(msg tea.KeyMsg) (appModel, tea.Cmd, bool) {
	if msg.String() == "ctrl+c" {
		return m, tea.Quit, true
	}

	switch m.state {
	case stateNotice:
		// The notice blocks every other key until it is dismissed.
		if key.Matches(msg, m.keys.Dismiss) {
			m.notice = ""
			m.noticeFailed = false
			m.state = stateShowSeats
			m.poller.Refresh()
		}
		return m, nil, true

	case stateBooking:
		return m, nil, true

	case stateSelectServer:
		if m.serverList.SettingFilter() {
			return m, nil, false
		}
		switch {
		case key.Matches(msg, m.keys.Back):
			if m.serverList.IsFiltered() {
				m.serverList.ResetFilter()
				return m, nil, true
			}
			m.state = m.lastState
			return m, nil, true
		case msg.String() == "enter":
			item, ok := m.serverList.SelectedItem().(serverItem)
			if !ok {
				return m, nil, true
			}
			if item.url == m.client.BaseURL() {
				m.state = m.lastState
				return m, nil, true
			}
			cmd := m.switchServer(item.url)
			return m, cmd, true
		case msg.String() == "q":
			return m, tea.Quit, true
		}
		return m, nil, false
	}

	switch {
	case key.Matches(msg, m.keys.Quit):
		return m, tea.Quit, true
	case key.Matches(msg, m.keys.Servers):
		m.openServerPicker()
		return m, nil, true
	case key.Matches(msg, m.keys.Refresh):
		m.poller.Refresh()
		return m, nil, true
	}
	if m.state != stateShowSeats {
		return m, nil, true
	}

	cols := gridColumns(m.width)
	switch {
	case key.Matches(msg, m.keys.Left):
		m.view = m.view.move(-1)
	case key.Matches(msg, m.keys.Right):
		m.view = m.view.move(1)
	case key.Matches(msg, m.keys.Up):
		m.view = m.view.move(-cols)
	case key.Matches(msg, m.keys.Down):
		m.view = m.view.move(cols)
	case key.Matches(msg, m.keys.Book):
		return m.bookSelected()
	}
	return m, nil, true
}

// applyPoll replaces the view with a poll result unless a newer one was
// already applied. Failures keep the last view on screen.
func (m *appModel) applyPoll(res service.PollResult) {
	if res.Seq <= m.appliedSeq {
		return
	}
	m.appliedSeq = res.Seq
	if m.state == stateLoadingSeats {
		m.state = stateShowSeats
	}
	if m.lastState == stateLoadingSeats {
		m.lastState = stateShowSeats
	}

	if res.Err != nil {
		log.Printf("poll %s: %v", m.client.BaseURL(), res.Err)
		m.pollErr = res.Err
		return
	}
	m.pollErr = nil
	m.lastUpdated = res.At
	m.view = renderSeats(m.view, res.Seats)
}

func (m appModel) bookSelected() (appModel, tea.Cmd, bool) {
	cell, ok := m.view.selected()
	if !ok || !cell.bookable {
		return m, nil, true
	}
	m.pendingSeat = cell.id
	m.state = stateBooking
	return m, tea.Batch(m.bookSeatCmd(cell.id), m.spinner.Tick), true
}

func (m appModel) bookSeatCmd(seatID string) tea.Cmd {
	client := m.client
	generation := m.generation
	return func() tea.Msg {
		ctx := context.Background()
		result, err := client.BookSeat(ctx, seatID)
		return bookingMsg{generation: generation, seatID: seatID, result: result, err: err}
	}
}

func (m appModel) startPolling() tea.Cmd {
	m.poller.Start(context.Background())
	return waitForPoll(m.poller, m.generation)
}

func waitForPoll(p seatPoller, generation int) tea.Cmd {
	return func() tea.Msg {
		res, ok := <-p.Results()
		if !ok {
			return pollMsg{generation: generation, closed: true}
		}
		return pollMsg{generation: generation, result: res}
	}
}

// connect points the model at a new server with a fresh, unstarted poller.
func (m *appModel) connect(baseURL string) {
	m.client = service.NewClient(baseURL, m.httpClient)
	m.poller = m.newPoller(m.client, m.opts.Interval)
	m.generation++
	m.appliedSeq = 0
	m.view = seatView{}
	m.pollErr = nil
	m.lastUpdated = time.Time{}
	m.state = stateLoadingSeats
}

func (m *appModel) switchServer(baseURL string) tea.Cmd {
	m.poller.Stop()
	m.connect(baseURL)
	if err := store.RememberServer(baseURL); err != nil {
		log.Printf("remember server %s: %v", baseURL, err)
	}
	return tea.Batch(m.startPolling(), m.spinner.Tick)
}

func (m *appModel) openServerPicker() {
	recent, err := store.LoadRecentServers()
	if err != nil {
		log.Printf("load recent servers: %v", err)
	}
	current := m.client.BaseURL()
	items := buildServerItems(m.opts.Servers, recent, current)
	m.serverList.ResetFilter()
	m.serverList.SetItems(items)
	m.serverList.Select(indexOfServer(items, current))
	m.lastState = m.state
	m.state = stateSelectServer
}

func (m appModel) View() string {
	header := m.headerView()
	switch m.state {
	case stateLoadingSeats:
		return header + "\n\n" + m.loadingView()
	case stateSelectServer:
		return header + "\n\n" + m.serverList.View()
	case stateBooking:
		return header + "\n\n" + m.seatsView() + "\n\n" + fmt.Sprintf("%s Booking seat %s...", m.spinner.View(), m.pendingSeat)
	case stateNotice:
		return header + "\n\n" + m.seatsView() + "\n\n" + m.noticeView()
	default:
		return header + "\n\n" + m.seatsView() + "\n\n" + m.help.View(seatsHelp{keys: m.keys})
	}
}

func (m appModel) headerView() string {
	title := lipgloss.NewStyle().Bold(true).Render("Seat Booking")
	sub := []string{}
	if url := m.client.BaseURL(); url != "" {
		sub = append(sub, fmt.Sprintf("Server: %s", url))
	}
	if !m.lastUpdated.IsZero() {
		sub = append(sub, fmt.Sprintf("Updated: %s", m.lastUpdated.Format(time.TimeOnly)))
	}
	if len(m.view.cells) > 0 {
		sub = append(sub, fmt.Sprintf("Available: %d • Booked: %d • Held: %d • Other: %d",
			m.view.count(model.StatusAvailable),
			m.view.count(model.StatusBooked),
			m.view.count(model.StatusHeld),
			m.view.count(model.StatusUnknown),
		))
	}
	meta := strings.Join(sub, " • ")
	if meta != "" {
		meta = "\n" + lipgloss.NewStyle().Faint(true).Render(meta)
	}
	if m.pollErr != nil {
		meta += "\n" + lipgloss.NewStyle().Foreground(lipgloss.Color("1")).Faint(true).Render("Last refresh failed, retrying...")
	}

	hints := ""
	switch m.state {
	case stateSelectServer:
		hints = "ctrl+c quit • esc back • / filter • enter connect"
	case stateNotice:
		hints = "enter dismiss"
	case stateLoadingSeats:
		hints = "ctrl+c quit • s server"
	}
	if hints == "" {
		return title + meta
	}
	return title + meta + "\n" + hint(hints)
}

func (m appModel) seatsView() string {
	grid := drawGrid(m.view, m.width)
	if cell, ok := m.view.selected(); ok {
		return grid + "\n\n" + describeCell(cell)
	}
	return grid
}

func (m appModel) noticeView() string {
	border := lipgloss.Color("2")
	if m.noticeFailed {
		border = lipgloss.Color("1")
	}
	box := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(border).
		Padding(0, 2)
	return box.Render(m.notice + "\n\n" + hint("Press enter to continue."))
}

func (m appModel) isLoadingState() bool {
	return m.state == stateLoadingSeats || m.state == stateBooking
}

func (m appModel) loadingView() string {
	return fmt.Sprintf("%s Loading seats\n\n%s", m.spinner.View(), hint("Fetching "+m.client.BaseURL()+"/seats..."))
}

func (m *appModel) resizeLists() {
	if m.width == 0 || m.height == 0 {
		return
	}
	h := m.height - 6
	if h < 6 {
		h = 6
	}
	m.serverList.SetSize(m.width, h)
}

func newList(title string) list.Model {
	delegate := list.NewDefaultDelegate()
	delegate.ShowDescription = true
	l := list.New([]list.Item{}, delegate, 0, 0)
	l.Title = title
	l.Filter = caseInsensitiveFilter
	l.SetFilteringEnabled(true)
	l.SetShowFilter(true)
	l.SetShowStatusBar(false)
	l.SetShowHelp(false)
	return l
}

func hint(text string) string {
	return lipgloss.NewStyle().Faint(true).Render(text)
}

func caseInsensitiveFilter(term string, targets []string) []list.Rank {
	term = strings.ToLower(term)
	lower := make([]string, len(targets))
	for i, t := range targets {
		lower[i] = strings.ToLower(t)
	}
	return list.DefaultFilter(term, lower)
}
