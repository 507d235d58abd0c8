package page

import (
	"context"
	"fmt"
	"rebalance/internal/calculator"
	"rebalance/internal/domain"
	"rebalance/internal/logger"
	"rebalance/internal/ui/grid"
	"rebalance/pkg/backend"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

type State int

const (
	Viewing State = iota
	Editing
)

func (s State) String() string {
	if s == Editing {
		return "editing"
	}
	return "viewing"
}

var (
	holdingColumns = []grid.Column{
		{Header: "Ticker", Key: "ticker"},
		{Header: "Shares", Key: "qty"},
		{Header: "Target %", Key: "pct"},
	}
	viewColumns = append(append([]grid.Column{}, holdingColumns...),
		grid.Column{Header: "Price", Key: "price"},
		grid.Column{Header: "Value", Key: "value"},
		grid.Column{Header: "Buy", Key: "buy"},
	)
)

type portfolioLoadedMsg struct {
	holdings []domain.Holding
}

type priceMsg struct {
	// the pass this price belongs to; cancelled once a newer pass starts
	ctx   context.Context
	index int
	price float64
}

// SaveResultMsg reports the outcome of a save. The page does not act on
// it; whoever runs the page decides what to do with a failure.
type SaveResultMsg struct {
	Err error
}

// Model is the portfolio screen: a grid of holdings with live prices and
// buy/sell amounts, plus an edit mode.
type Model struct {
	ctx     context.Context
	cancel  context.CancelFunc
	gateway backend.Gateway

	state            State
	portfolio        domain.Portfolio
	preEditPortfolio domain.Portfolio
	prices           map[int]float64
	cancelPrices     context.CancelFunc

	grid *grid.Grid
}

// New builds the page. ctx bounds the page's lifetime; results of calls
// that finish after Close are dropped.
func New(ctx context.Context, gateway backend.Gateway) *Model {
	ctx, cancel := context.WithCancel(ctx)
	m := &Model{
		ctx:     ctx,
		cancel:  cancel,
		gateway: gateway,
		state:   Viewing,
		prices:  map[int]float64{},
	}
	m.grid = grid.New(nil, viewColumns, false, m.HandleGridUpdate)
	return m
}

func (m *Model) State() State {
	return m.state
}

// Portfolio is nil until the first load succeeds.
func (m *Model) Portfolio() domain.Portfolio {
	return m.portfolio.Copy()
}

func (m *Model) PreEditPortfolio() domain.Portfolio {
	return m.preEditPortfolio.Copy()
}

func (m *Model) Grid() *grid.Grid {
	return m.grid
}

func (m *Model) Close() {
	m.cancel()
}

func (m *Model) Init() tea.Cmd {
	ctx := m.ctx
	gateway := m.gateway
	return func() tea.Msg {
		holdings, err := gateway.GetPortfolio(ctx)
		if err != nil {
			logger.FromContext(ctx).Errorw("failed to load portfolio", "error", err)
			return nil
		}
		return portfolioLoadedMsg{holdings: holdings}
	}
}

func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case portfolioLoadedMsg:
		if m.ctx.Err() != nil {
			return m, nil
		}
		m.portfolio = domain.Portfolio(msg.holdings).Copy()
		if m.portfolio == nil {
			m.portfolio = domain.Portfolio{}
		}
		m.preEditPortfolio = m.portfolio.Copy()
		m.syncGrid()
		return m, m.loadPrices()

	case priceMsg:
		if msg.ctx.Err() != nil {
			return m, nil
		}
		m.prices[msg.index] = msg.price
		m.syncGrid()
		return m, nil

	case tea.KeyMsg:
		return m, m.handleKey(msg)
	}
	return m, nil
}

func (m *Model) handleKey(msg tea.KeyMsg) tea.Cmd {
	key := msg.String()
	if key == "ctrl+c" {
		m.Close()
		return tea.Quit
	}

	if m.state == Editing {
		switch key {
		case "esc":
			return m.CancelEdit()
		case "ctrl+s":
			return m.Save()
		}
		return m.grid.Update(msg)
	}

	switch key {
	case "q":
		m.Close()
		return tea.Quit
	case "e":
		m.Edit()
	case "r":
		return m.loadPrices()
	}
	return nil
}

// Edit switches to Editing. Price columns are hidden while editing.
func (m *Model) Edit() {
	if m.state == Editing || m.portfolio == nil {
		return
	}
	m.stopPrices()
	m.state = Editing
	m.grid.SetColumns(holdingColumns)
	m.grid.SetEdit(true)
	m.syncGrid()
}

// CancelEdit drops the edit session and returns to the last saved
// portfolio.
func (m *Model) CancelEdit() tea.Cmd {
	if m.state != Editing {
		return nil
	}
	m.grid.SetEdit(false)
	m.portfolio = m.preEditPortfolio.Copy()
	m.toViewing()
	return m.loadPrices()
}

// Save persists the edited portfolio and returns to Viewing. The save
// result is handed back as a SaveResultMsg.
func (m *Model) Save() tea.Cmd {
	if m.state != Editing {
		return nil
	}
	m.grid.Blur()
	m.grid.SetEdit(false)
	m.preEditPortfolio = m.portfolio.Copy()
	m.toViewing()

	ctx := m.ctx
	gateway := m.gateway
	holdings := m.portfolio.Copy()
	if holdings == nil {
		holdings = domain.Portfolio{}
	}
	save := func() tea.Msg {
		return SaveResultMsg{Err: gateway.SetPortfolio(ctx, holdings)}
	}
	return tea.Batch(save, m.loadPrices())
}

func (m *Model) toViewing() {
	m.state = Viewing
	m.grid.SetColumns(viewColumns)
	m.syncGrid()
}

func (m *Model) stopPrices() {
	if m.cancelPrices != nil {
		m.cancelPrices()
		m.cancelPrices = nil
	}
}

// loadPrices starts a price pass: one lookup per row, run concurrently.
// A pass replaces the one before it.
func (m *Model) loadPrices() tea.Cmd {
	if m.state != Viewing || m.portfolio == nil || m.ctx.Err() != nil {
		return nil
	}
	m.stopPrices()
	ctx, cancel := context.WithCancel(m.ctx)
	m.cancelPrices = cancel
	m.prices = map[int]float64{}
	m.syncGrid()

	gateway := m.gateway
	cmds := make([]tea.Cmd, 0, len(m.portfolio))
	for i, h := range m.portfolio {
		index, ticker := i, h.Ticker
		cmds = append(cmds, func() tea.Msg {
			quote, err := gateway.GetPrice(ctx, ticker)
			if err != nil {
				if ctx.Err() == nil {
					logger.FromContext(ctx).Warnw("price lookup failed", "ticker", ticker, "error", err)
				}
				return nil
			}
			return priceMsg{ctx: ctx, index: index, price: quote.Price}
		})
	}
	return tea.Batch(cmds...)
}

// HandleGridUpdate takes the grid's rows as the new portfolio, keeping
// only ticker, qty and pct. A number that does not parse keeps the
// previous value.
func (m *Model) HandleGridUpdate(rows []grid.Row) {
	log := logger.FromContext(m.ctx)

	next := make(domain.Portfolio, 0, len(rows))
	for i, row := range rows {
		var prev domain.Holding
		if i < len(m.portfolio) {
			prev = m.portfolio[i]
		}

		h := domain.Holding{Ticker: tickerOf(row["ticker"])}
		qty, err := domain.CoerceNumber(row["qty"])
		if err != nil {
			log.Warnw("invalid shares, keeping previous value", "row", i, "error", err)
			qty = prev.Qty
		}
		pct, err := domain.CoerceNumber(row["pct"])
		if err != nil {
			log.Warnw("invalid target, keeping previous value", "row", i, "error", err)
			pct = prev.Pct
		}
		h.Qty, h.Pct = qty, pct
		next = append(next, h)
	}

	m.portfolio = next
	m.syncGrid()
}

func tickerOf(v any) string {
	switch t := v.(type) {
	case nil:
		return ""
	case string:
		return t
	}
	return fmt.Sprint(v)
}

// Rows returns what the page currently shows for each holding.
func (m *Model) Rows() []domain.DisplayRow {
	quotes := make([]domain.PriceQuote, 0, len(m.prices))
	for i, h := range m.portfolio {
		if price, ok := m.prices[i]; ok {
			quotes = append(quotes, domain.PriceQuote{Ticker: h.Ticker, Price: price})
		}
	}
	return calculator.Rebalance(m.portfolio, quotes)
}

func (m *Model) syncGrid() {
	if m.state == Editing {
		rows := make([]grid.Row, len(m.portfolio))
		for i, h := range m.portfolio {
			rows[i] = grid.Row{"ticker": h.Ticker, "qty": h.Qty, "pct": h.Pct}
		}
		m.grid.SetData(rows)
		return
	}

	display := m.Rows()
	rows := make([]grid.Row, len(display))
	for i, d := range display {
		rows[i] = grid.Row{
			"ticker": d.Ticker,
			"qty":    d.Qty,
			"pct":    d.Pct,
			"price":  d.Price,
			"value":  d.Value,
			"buy":    d.Buy,
		}
	}
	m.grid.SetData(rows)
}

var (
	titleStyle = lipgloss.NewStyle().Bold(true).MarginBottom(1)
	helpStyle  = lipgloss.NewStyle().Faint(true).MarginTop(1)
)

func (m *Model) View() string {
	if m.portfolio == nil {
		return "Loading..."
	}

	var b strings.Builder
	title := "Portfolio"
	if m.state == Editing {
		title += " (editing)"
	}
	b.WriteString(titleStyle.Render(title))
	b.WriteString("\n")
	b.WriteString(m.grid.View())
	b.WriteString("\n")
	if m.state == Editing {
		b.WriteString(helpStyle.Render("ctrl+s save • esc cancel"))
	} else {
		b.WriteString(helpStyle.Render("e edit • r reload prices • q quit"))
	}
	return b.String()
}
