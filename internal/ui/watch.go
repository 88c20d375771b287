package ui

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/muurk/daikin-humid/internal/coordinator"
	"github.com/muurk/daikin-humid/internal/deviceclient"
)

// WatchSource is the part of the coordinator the watch view uses.
type WatchSource interface {
	RequestRefresh(ctx context.Context) (coordinator.Update, error)
	CurrentSnapshot() *coordinator.Snapshot
	Status() coordinator.Status
	Subscribe(o coordinator.Observer) coordinator.SubscriptionID
	Unsubscribe(id coordinator.SubscriptionID)
}

// updateMsg carries a completed refresh cycle into the model.
type updateMsg coordinator.Update

// refreshDoneMsg marks the end of a manual refresh. The result itself
// arrives as an updateMsg through the subscription.
type refreshDoneMsg struct{}

// WatchModel is a Bubble Tea model that shows the live device state.
// Press r to refresh and q to quit.
type WatchModel struct {
	ctx     context.Context
	source  WatchSource
	title   string
	updates chan coordinator.Update
	subID   coordinator.SubscriptionID

	spinner    spinner.Model
	refreshing bool
	snapshot   *coordinator.Snapshot
	state      coordinator.State
	lastErr    error
	width      int
	now        func() time.Time
}

// NewWatchModel subscribes to source and returns the model. Call Close once
// the program exits.
func NewWatchModel(ctx context.Context, source WatchSource, title string) *WatchModel {
	s := spinner.New()
	s.Spinner = spinner.Dot
	s.Style = lipgloss.NewStyle().Foreground(PrimaryColor)

	status := source.Status()
	m := &WatchModel{
		ctx:      ctx,
		source:   source,
		title:    title,
		updates:  make(chan coordinator.Update, 4),
		spinner:  s,
		snapshot: source.CurrentSnapshot(),
		state:    status.State,
		lastErr:  status.LastError,
		width:    GetTerminalWidth(),
		now:      time.Now,
	}
	m.subID = source.Subscribe(func(u coordinator.Update) {
		select {
		case m.updates <- u:
		default:
			// The view only needs the latest cycle; the next one will catch up.
		}
	})
	return m
}

// Close removes the model's subscription.
func (m *WatchModel) Close() {
	m.source.Unsubscribe(m.subID)
}

func (m *WatchModel) waitForUpdate() tea.Msg {
	select {
	case u := <-m.updates:
		return updateMsg(u)
	case <-m.ctx.Done():
		return tea.Quit()
	}
}

func (m *WatchModel) refresh() tea.Msg {
	_, _ = m.source.RequestRefresh(m.ctx)
	return refreshDoneMsg{}
}

// Init implements tea.Model
func (m *WatchModel) Init() tea.Cmd {
	return tea.Batch(m.spinner.Tick, m.waitForUpdate)
}

// Update implements tea.Model
func (m *WatchModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "esc", "ctrl+c":
			return m, tea.Quit
		case "r":
			if m.refreshing {
				return m, nil
			}
			m.refreshing = true
			return m, m.refresh
		}

	case tea.WindowSizeMsg:
		m.width = ClampWidth(msg.Width)

	case updateMsg:
		m.state = msg.State
		m.snapshot = msg.Snapshot
		m.lastErr = msg.Err
		return m, m.waitForUpdate

	case refreshDoneMsg:
		m.refreshing = false

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd
	}
	return m, nil
}

// View implements tea.Model
func (m *WatchModel) View() string {
	var b strings.Builder

	b.WriteString(RenderSnapshot(m.title, m.snapshot, m.width, m.now()))
	b.WriteString("\n")

	switch {
	case m.refreshing:
		b.WriteString(fmt.Sprintf("  %s Refreshing...", m.spinner.View()))
	case m.state == coordinator.StateFailed && m.lastErr != nil:
		b.WriteString(ErrorMessageStyle.Render(fmt.Sprintf("  %s %s", FailureMarker, deviceclient.ShortMessage(m.lastErr))))
	default:
		b.WriteString(FooterStyle.Render("State: " + m.state.String()))
	}
	b.WriteString("\n")
	b.WriteString(FooterStyle.Render("r refresh • q quit"))
	b.WriteString("\n")

	return b.String()
}

// RunWatch runs the watch view until the user quits or ctx is done.
func RunWatch(ctx context.Context, source WatchSource, title string) error {
	m := NewWatchModel(ctx, source, title)
	defer m.Close()

	_, err := tea.NewProgram(m, tea.WithContext(ctx)).Run()
	if err != nil && ctx.Err() != nil {
		return nil
	}
	return err
}
