// Package tui provides the interactive Bubble Tea dashboard for runway.
package tui

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/shopspring/decimal"

	"github.com/runwaydev/runway/internal/forecast"
	"github.com/runwaydev/runway/internal/invoicing"
	"github.com/runwaydev/runway/internal/model"
	"github.com/runwaydev/runway/internal/store"
	"github.com/runwaydev/runway/internal/tui/components"
	"github.com/runwaydev/runway/internal/tui/theme"
)

// Params carries everything the dashboard needs to build a forecast.
type Params struct {
	DBPath          string
	WeekStart       time.Weekday
	Assumptions     forecast.CollectionAssumptions
	Invoicing       *invoicing.Client // nil when receivables are disabled
	BalanceOverride *decimal.Decimal
}

// DataLoadedMsg is sent when a forecast rebuild finishes.
type DataLoadedMsg struct {
	Result       forecast.Result
	Transactions []model.Transaction
	Estimates    []model.Estimate
	Err          error
	LoadTime     time.Duration
}

// App is the root Bubble Tea model.
type App struct {
	params Params

	// Data
	result       forecast.Result
	transactions []model.Transaction
	estimates    []model.Estimate
	loaded       bool
	loadErr      error
	loadTime     time.Duration
	refreshing   bool

	// UI state
	width     int
	height    int
	activeTab int
	showHelp  bool

	// Per-tab cursors
	txnCursor int
	estCursor int
	arCursor  int

	spinner spinner.Model
}

const (
	minTerminalWidth = 70
	maxContentWidth  = 160
	minContentHeight = 5
)

// NewApp creates a new dashboard model.
func NewApp(params Params) App {
	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = lipgloss.NewStyle().Foreground(theme.Active.Accent)

	return App{
		params:  params,
		spinner: sp,
	}
}

// Init implements tea.Model.
func (a App) Init() tea.Cmd {
	return tea.Batch(
		loadDataCmd(a.params),
		a.spinner.Tick,
	)
}

// Update implements tea.Model.
func (a App) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {

	case tea.WindowSizeMsg:
		a.width = msg.Width
		a.height = msg.Height
		return a, nil

	case tea.KeyMsg:
		key := msg.String()

		if key == "ctrl+c" || key == "q" {
			return a, tea.Quit
		}

		if !a.loaded {
			return a, nil
		}

		if key == "?" {
			a.showHelp = !a.showHelp
			return a, nil
		}
		if a.showHelp {
			a.showHelp = false
			return a, nil
		}

		switch key {
		case "r":
			if !a.refreshing {
				a.refreshing = true
				return a, loadDataCmd(a.params)
			}
			return a, nil
		case "j", "down":
			a.moveCursor(1)
			return a, nil
		case "k", "up":
			a.moveCursor(-1)
			return a, nil
		case "g":
			a.setCursor(0)
			return a, nil
		case "G":
			a.setCursor(1 << 30)
			return a, nil
		case "left":
			a.activeTab = (a.activeTab - 1 + len(components.Tabs)) % len(components.Tabs)
			return a, nil
		case "right", "tab":
			a.activeTab = (a.activeTab + 1) % len(components.Tabs)
			return a, nil
		}

		if len(key) == 1 {
			if idx := components.TabIdxByKey(rune(key[0])); idx >= 0 {
				a.activeTab = idx
			}
		}
		return a, nil

	case DataLoadedMsg:
		a.loaded = true
		a.refreshing = false
		a.loadErr = msg.Err
		a.loadTime = msg.LoadTime
		if msg.Err == nil {
			a.result = msg.Result
			a.transactions = msg.Transactions
			a.estimates = msg.Estimates
			a.clampCursors()
		}
		return a, nil

	case spinner.TickMsg:
		if !a.loaded || a.refreshing {
			var cmd tea.Cmd
			a.spinner, cmd = a.spinner.Update(msg)
			return a, cmd
		}
		return a, nil
	}

	return a, nil
}

// moveCursor advances the active tab's list cursor.
func (a *App) moveCursor(delta int) {
	switch a.activeTab {
	case 1:
		a.txnCursor = clamp(a.txnCursor+delta, 0, len(a.transactions)-1)
	case 2:
		a.estCursor = clamp(a.estCursor+delta, 0, len(a.estimates)-1)
	case 3:
		a.arCursor = clamp(a.arCursor+delta, 0, len(a.result.AR)-1)
	}
}

func (a *App) setCursor(pos int) {
	switch a.activeTab {
	case 1:
		a.txnCursor = clamp(pos, 0, len(a.transactions)-1)
	case 2:
		a.estCursor = clamp(pos, 0, len(a.estimates)-1)
	case 3:
		a.arCursor = clamp(pos, 0, len(a.result.AR)-1)
	}
}

func (a *App) clampCursors() {
	a.txnCursor = clamp(a.txnCursor, 0, len(a.transactions)-1)
	a.estCursor = clamp(a.estCursor, 0, len(a.estimates)-1)
	a.arCursor = clamp(a.arCursor, 0, len(a.result.AR)-1)
}

func clamp(v, lo, hi int) int {
	if hi < lo {
		hi = lo
	}
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

func (a App) contentWidth() int {
	cw := a.width
	if cw > maxContentWidth {
		cw = maxContentWidth
	}
	return cw
}

// View implements tea.Model.
func (a App) View() string {
	if a.width == 0 {
		return ""
	}

	if a.width < minTerminalWidth {
		return a.viewTooNarrow()
	}

	if !a.loaded {
		return a.viewLoading()
	}

	if a.showHelp {
		return a.viewHelp()
	}

	return a.viewMain()
}

func (a App) viewTooNarrow() string {
	h := a.height
	if h < 5 {
		h = 5
	}

	msg := fmt.Sprintf(
		"\n  Terminal too narrow (%d cols)\n\n  runway needs at least %d columns.\n",
		a.width,
		minTerminalWidth,
	)

	return padHeight(truncateHeight(msg, h), h)
}

func (a App) viewLoading() string {
	t := theme.Active

	cardStyle := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(t.BorderAccent).
		Padding(1, 4)

	logoStyle := lipgloss.NewStyle().
		Foreground(t.AccentBright).
		Bold(true)

	subtitleStyle := lipgloss.NewStyle().
		Foreground(t.TextMuted)

	var b strings.Builder
	b.WriteString(logoStyle.Render("◈ runway"))
	b.WriteString(subtitleStyle.Render(" · 13-Week Cash Forecast"))
	b.WriteString("\n\n")
	b.WriteString(a.spinner.View())
	b.WriteString(subtitleStyle.Render(" Building forecast..."))

	return lipgloss.Place(a.width, a.height, lipgloss.Center, lipgloss.Center,
		cardStyle.Render(b.String()))
}

func (a App) viewHelp() string {
	t := theme.Active

	cardStyle := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(t.BorderAccent).
		Padding(1, 3)

	titleStyle := lipgloss.NewStyle().
		Foreground(t.AccentBright).
		Bold(true)

	keyStyle := lipgloss.NewStyle().
		Foreground(t.Cyan).
		Bold(true)

	descStyle := lipgloss.NewStyle().
		Foreground(t.TextMuted)

	var b strings.Builder
	b.WriteString(titleStyle.Render("◈ Keyboard Shortcuts"))
	b.WriteString("\n\n")

	bindings := []struct{ key, desc string }{
		{"f t e v", "Jump to tab"},
		{"← → tab", "Previous / Next tab"},
		{"j k", "Navigate lists"},
		{"g G", "First / Last entry"},
		{"r", "Rebuild forecast"},
		{"?", "Toggle help"},
		{"q", "Quit"},
	}
	for _, bind := range bindings {
		fmt.Fprintf(&b, "  %s  %s\n",
			keyStyle.Render(fmt.Sprintf("%-9s", bind.key)),
			descStyle.Render(bind.desc))
	}

	b.WriteString("\n")
	b.WriteString(lipgloss.NewStyle().Foreground(t.TextDim).Render("Press any key to close"))

	return lipgloss.Place(a.width, a.height, lipgloss.Center, lipgloss.Center,
		cardStyle.Render(b.String()))
}

func (a App) viewMain() string {
	w := a.width
	cw := a.contentWidth()
	h := a.height

	header := components.RenderTabBar(a.activeTab, w)

	summary := fmt.Sprintf("%d txns · %d estimates · %d invoices",
		len(a.transactions), len(a.estimates), len(a.result.AR))
	statusBar := components.RenderStatusBar(w, summary, a.refreshing)

	headerH := lipgloss.Height(header)
	statusH := lipgloss.Height(statusBar)
	contentH := h - headerH - statusH
	if contentH < minContentHeight {
		contentH = minContentHeight
	}

	var content string
	if a.loadErr != nil {
		content = lipgloss.NewStyle().Foreground(theme.Active.Red).
			Render(fmt.Sprintf("\n  forecast rebuild failed: %v\n\n  press r to retry", a.loadErr))
	} else {
		switch a.activeTab {
		case 0:
			content = a.renderForecastTab(cw)
		case 1:
			content = a.renderTransactionsTab(cw, contentH)
		case 2:
			content = a.renderEstimatesTab(cw, contentH)
		case 3:
			content = a.renderReceivablesTab(cw, contentH)
		}
	}

	content = padHeight(truncateHeight(content, contentH), contentH)

	return lipgloss.JoinVertical(lipgloss.Left, header, content, statusBar)
}

// loadDataCmd rebuilds the forecast in a background goroutine.
func loadDataCmd(p Params) tea.Cmd {
	return func() tea.Msg {
		start := time.Now()

		db, err := store.Open(p.DBPath)
		if err != nil {
			return DataLoadedMsg{Err: err, LoadTime: time.Since(start)}
		}
		defer func() { _ = db.Close() }()

		txns, err := db.LoadTransactions()
		if err != nil {
			return DataLoadedMsg{Err: err, LoadTime: time.Since(start)}
		}
		estimates, err := db.LoadEstimates()
		if err != nil {
			return DataLoadedMsg{Err: err, LoadTime: time.Since(start)}
		}

		balance := decimal.Zero
		if p.BalanceOverride != nil {
			balance = *p.BalanceOverride
		} else if reported, ok, err := db.LatestReportedBalance(); err == nil && ok {
			balance = reported
		}

		// Invoice fetch is best-effort: the forecast still renders
		// without the AR overlay when the service is unreachable.
		var invoices []model.ReceivableInvoice
		if p.Invoicing != nil && p.Assumptions.Enabled {
			ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
			invoices, _ = p.Invoicing.ListOutstanding(ctx)
			cancel()
		}

		result := forecast.Build(forecast.Inputs{
			Transactions:    txns,
			Estimates:       estimates,
			Invoices:        invoices,
			Assumptions:     p.Assumptions,
			StartingBalance: balance,
			Now:             time.Now(),
			WeekStart:       p.WeekStart,
		})

		return DataLoadedMsg{
			Result:       result,
			Transactions: txns,
			Estimates:    estimates,
			LoadTime:     time.Since(start),
		}
	}
}

func truncateHeight(s string, limit int) string {
	lines := strings.Split(s, "\n")
	if len(lines) <= limit {
		return s
	}
	return strings.Join(lines[:limit], "\n")
}

func padHeight(s string, h int) string {
	lines := strings.Split(s, "\n")
	if len(lines) >= h {
		return s
	}
	return s + strings.Repeat("\n", h-len(lines))
}
