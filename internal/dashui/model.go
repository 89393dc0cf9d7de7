// Package dashui provides the Bubble Tea sales dashboard.
package dashui

import (
	"context"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/cursor"
	"github.com/charmbracelet/bubbles/table"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/verte-zerg/salesdash/internal/analytics"
	"github.com/verte-zerg/salesdash/internal/model"
	"github.com/verte-zerg/salesdash/internal/report"
	"github.com/verte-zerg/salesdash/internal/store"
)

const plotHeight = 8

var (
	activeNavStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#F0F0F0")).
			Bold(true).
			Padding(0, 1).
			Border(lipgloss.RoundedBorder(), true).
			BorderForeground(lipgloss.Color("#C89A3A"))
	inactiveNavStyle = lipgloss.NewStyle().
				Foreground(lipgloss.Color("#B0B0B0")).
				Padding(0, 1).
				Border(lipgloss.RoundedBorder(), true).
				BorderForeground(lipgloss.Color("#4A4A4A"))
	headerStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#6E6E6E"))
	errorStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("#FF4D4F"))
	noticeStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#52C41A"))
	cardStyle   = lipgloss.NewStyle().
			Padding(0, 1).
			Border(lipgloss.RoundedBorder(), true).
			BorderForeground(lipgloss.Color("#4A4A4A"))
	cardTitleStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("#8C8C8C"))
	cardValueStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("#F0F0F0")).Bold(true)
	chartTitleStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#C89A3A")).Bold(true)
	tableMutedStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#B8B8B8"))
	modalStyle      = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder(), true).
			BorderForeground(lipgloss.Color("#C89A3A")).
			Padding(1, 2)
)

// ViewSaver persists named filter presets.
type ViewSaver interface {
	SaveView(ctx context.Context, name string, c analytics.Criteria) (store.View, error)
}

// Options configures a new dashboard.
type Options struct {
	Page     analytics.Page
	Criteria analytics.Criteria
	// Views enables saving the current filters with "v"; nil disables it.
	Views ViewSaver
}

// Model implements the Bubble Tea dashboard.
type Model struct {
	records  []model.Record
	criteria analytics.Criteria
	views    ViewSaver

	resp   analytics.Response
	errMsg string
	notice string

	tabs        []string
	activeTab   int
	viewports   []viewport.Model
	ordersTable table.Model

	width  int
	height int

	filterMode   bool
	filterInputs []textinput.Model
	filterIndex  int
	filterError  string

	saveMode  bool
	saveInput textinput.Model
	saveError string
}

// NewModel constructs a dashboard over records. The records are never modified.
func NewModel(records []model.Record, opts Options) *Model {
	m := &Model{
		records:  records,
		criteria: opts.Criteria.Clone(),
		views:    opts.Views,
	}
	for _, p := range analytics.Pages {
		m.tabs = append(m.tabs, p.Title())
		if p == opts.Page {
			m.activeTab = len(m.tabs) - 1
		}
	}
	m.tabs = append(m.tabs, "Orders")
	m.initInputs()
	m.initSaveInput()
	m.ordersTable = newOrdersTable()
	m.initViewports()
	m.refresh()
	return m
}

// Criteria returns the filters currently applied.
func (m *Model) Criteria() analytics.Criteria {
	return m.criteria.Clone()
}

// Init implements tea.Model.
func (m *Model) Init() tea.Cmd {
	return nil
}

// Update implements tea.Model.
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.updateLayout()
		m.renderTabContents()
		return m, nil
	case tea.KeyMsg:
		if msg.Type == tea.KeyCtrlC {
			return m, tea.Quit
		}
		if m.filterMode {
			return m.updateFilter(msg)
		}
		if m.saveMode {
			return m.updateSave(msg)
		}
		switch msg.String() {
		case "q":
			return m, tea.Quit
		case "left", "h":
			m.moveTab(-1)
			return m, tea.ClearScreen
		case "right", "l":
			m.moveTab(1)
			return m, tea.ClearScreen
		case "/":
			return m.startFilter()
		case "c":
			m.criteria = analytics.Criteria{}
			m.notice = "Filters cleared."
			m.refresh()
			return m, nil
		case "v":
			return m.startSave()
		case "g", "home":
			if m.onOrdersTab() {
				m.ordersTable.GotoTop()
			} else {
				m.viewports[m.activeTab].GotoTop()
			}
			return m, nil
		case "G", "end":
			if m.onOrdersTab() {
				m.ordersTable.GotoBottom()
			} else {
				m.viewports[m.activeTab].GotoBottom()
			}
			return m, nil
		default:
			var cmd tea.Cmd
			if m.onOrdersTab() {
				m.ordersTable, cmd = m.ordersTable.Update(msg)
				return m, cmd
			}
			m.viewports[m.activeTab], cmd = m.viewports[m.activeTab].Update(msg)
			return m, cmd
		}
	}
	return m, nil
}

// View implements tea.Model.
func (m *Model) View() string {
	if m.width == 0 || m.height == 0 {
		return ""
	}
	if m.saveMode {
		return fitLines(m.renderSaveModal(), m.width, m.height)
	}
	headerHeight, bodyHeight, footerHeight := m.layoutHeights()
	header := fitLines(m.renderHeader(), m.width, headerHeight)
	body := fitLines(m.renderBody(bodyHeight), m.width, bodyHeight)
	footer := fitLines(m.renderFooter(), m.width, footerHeight)
	return strings.Join([]string{header, body, footer}, "\n")
}

func (m *Model) onOrdersTab() bool {
	return m.activeTab == len(analytics.Pages)
}

func (m *Model) initViewports() {
	m.viewports = make([]viewport.Model, len(analytics.Pages))
	for i := range m.viewports {
		m.viewports[i] = viewport.New(0, 0)
	}
}

func (m *Model) initInputs() {
	m.filterInputs = make([]textinput.Model, 0, len(analytics.Controls))
	for _, ctl := range analytics.Controls {
		input := newInput(fmt.Sprintf("%-10s", ctl.Label+":"))
		if ctl.Multi {
			input.Placeholder = "any (comma-separated)"
		} else {
			input.Placeholder = "any"
		}
		m.filterInputs = append(m.filterInputs, input)
	}
}

func (m *Model) initSaveInput() {
	m.saveInput = newInput("Name: ")
	m.saveInput.Placeholder = "spring-kurtas"
}

func newInput(prompt string) textinput.Model {
	input := textinput.New()
	input.Prompt = prompt
	input.CharLimit = 0
	input.Cursor.SetMode(cursor.CursorBlink)
	return input
}

func (m *Model) setInputsFromCriteria() {
	for i, ctl := range analytics.Controls {
		con, ok := m.criteria.Constraint(ctl.Dimension)
		if !ok {
			m.filterInputs[i].SetValue("")
			continue
		}
		labels := make([]string, 0, len(con.Values()))
		for _, v := range con.Values() {
			labels = append(labels, model.FormatDimensionValue(ctl.Dimension, v))
		}
		m.filterInputs[i].SetValue(strings.Join(labels, ", "))
	}
}

func (m *Model) layoutHeights() (headerHeight, bodyHeight, footerHeight int) {
	tabsHeight := max(lipgloss.Height(activeNavStyle.Render("X")), 1)
	headerHeight = tabsHeight + 1
	footerHeight = 1
	if !m.filterMode && (m.errMsg != "" || m.notice != "") {
		footerHeight++
	}
	bodyHeight = max(m.height-headerHeight-footerHeight, 1)
	return headerHeight, bodyHeight, footerHeight
}

func (m *Model) updateLayout() {
	if m.width <= 0 || m.height <= 0 {
		return
	}
	_, bodyHeight, _ := m.layoutHeights()
	for i := range m.viewports {
		m.viewports[i].Width = m.width
		m.viewports[i].Height = bodyHeight
	}
	m.ordersTable.SetWidth(m.width)
	m.ordersTable.SetHeight(max(bodyHeight-1, 1))
	for i := range m.filterInputs {
		promptWidth := lipgloss.Width(m.filterInputs[i].Prompt)
		m.filterInputs[i].Width = max(10, m.width-promptWidth-2)
	}
	m.saveInput.Width = max(10, modalInnerWidth(m.width)-lipgloss.Width(m.saveInput.Prompt))
}

func (m *Model) moveTab(delta int) {
	count := len(m.tabs)
	m.activeTab = (m.activeTab + delta + count) % count
	if m.onOrdersTab() {
		m.ordersTable.Focus()
	} else {
		m.ordersTable.Blur()
	}
}

func (m *Model) renderTabs() string {
	parts := make([]string, 0, len(m.tabs))
	for i, tab := range m.tabs {
		if i == m.activeTab {
			parts = append(parts, activeNavStyle.Render(tab))
		} else {
			parts = append(parts, inactiveNavStyle.Render(tab))
		}
	}
	return lipgloss.JoinHorizontal(lipgloss.Top, parts...)
}

func (m *Model) renderHeader() string {
	tabs := padLines(m.renderTabs(), m.width)
	summary := fmt.Sprintf("Filters: %s  Orders: %s of %s",
		m.criteria, report.FormatCount(int64(len(m.resp.Records))), report.FormatCount(int64(len(m.records))))
	return tabs + "\n" + headerStyle.Render(truncateLine(summary, m.width))
}

func (m *Model) renderHelp() string {
	help := "Nav: left/right  Scroll: up/down/pgup/pgdn  Filters: /  Clear: c  Quit: q"
	if m.views != nil {
		help = "Nav: left/right  Scroll: up/down/pgup/pgdn  Filters: /  Clear: c  Save view: v  Quit: q"
	}
	return headerStyle.Render(truncateLine(help, m.width))
}

func (m *Model) renderFooter() string {
	if m.filterMode {
		return headerStyle.Render("tab/shift+tab: next field  enter: apply  esc: cancel")
	}
	switch {
	case m.errMsg != "":
		return m.renderHelp() + "\n" + errorStyle.Render(m.errMsg)
	case m.notice != "":
		return m.renderHelp() + "\n" + noticeStyle.Render(m.notice)
	}
	return m.renderHelp()
}

func (m *Model) renderFilterForm() string {
	lines := []string{"Filters (enter to apply, esc to cancel, empty means any)"}
	for _, input := range m.filterInputs {
		lines = append(lines, input.View())
	}
	if m.filterError != "" {
		lines = append(lines, errorStyle.Render(m.filterError))
	}
	return strings.Join(lines, "\n")
}

func (m *Model) renderBody(height int) string {
	if m.filterMode {
		return fitLines(m.renderFilterForm(), m.width, height)
	}
	if m.onOrdersTab() {
		if len(m.resp.Records) == 0 {
			return fitLines("No orders match the current filters.", m.width, height)
		}
		return fitLines(tableMutedStyle.Render(m.ordersTable.View()), m.width, height)
	}
	return fitLines(m.viewports[m.activeTab].View(), m.width, height)
}

// refresh recomputes every page from the full record set and the current filters.
func (m *Model) refresh() {
	m.resp = analytics.Compute(m.records, analytics.Request{Criteria: m.criteria})
	m.ordersTable.SetRows(orderRows(m.resp.Records))
	m.ordersTable.GotoTop()
	m.renderTabContents()
}

func (m *Model) renderTabContents() {
	width := m.width
	if width <= 0 {
		width = 80
	}
	for i, page := range analytics.Pages {
		resp := analytics.Compute(m.records, analytics.Request{Criteria: m.criteria, Page: page})
		m.viewports[i].SetContent(renderPage(resp, width))
	}
}

func renderPage(resp analytics.Response, width int) string {
	opts := report.Options{Width: width, PlotHeight: plotHeight, Color: true}
	sections := []string{renderSummaryCards(resp.Summary, width)}
	for _, chart := range resp.Charts {
		lines := append([]string{chartTitleStyle.Render(chart.Title)}, report.ChartLines(chart, opts)...)
		sections = append(sections, strings.Join(lines, "\n"))
	}
	if resp.Page == analytics.PageMetrics {
		lines := append([]string{chartTitleStyle.Render("Quantity vs Amount by Year, Month and Day")},
			report.BreakdownLines(resp.Breakdown, opts)...)
		sections = append(sections, strings.Join(lines, "\n"))
	}
	return strings.TrimRight(strings.Join(sections, "\n\n"), "\n")
}

func renderSummaryCards(sum model.Summary, width int) string {
	cards := []string{
		metricCard("Total Profit", report.FormatAmount(sum.Amount)),
		metricCard("Total Quantity", report.FormatCount(sum.Quantity)),
		metricCard("Total Orders", report.FormatCount(int64(sum.Orders))),
	}
	if width < 60 {
		return strings.Join(cards, "\n")
	}
	return lipgloss.JoinHorizontal(lipgloss.Top, cards...)
}

func metricCard(label, value string) string {
	content := fmt.Sprintf("%s\n%s", cardTitleStyle.Render(label), cardValueStyle.Render(value))
	return cardStyle.Render(content)
}

func (m *Model) startFilter() (tea.Model, tea.Cmd) {
	m.filterMode = true
	m.filterError = ""
	m.notice = ""
	m.setInputsFromCriteria()
	return m, m.setFilterIndex(0)
}

func (m *Model) updateFilter(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.Type {
	case tea.KeyEsc:
		m.filterMode = false
		m.filterError = ""
		return m, nil
	case tea.KeyEnter:
		if err := m.applyFilter(); err != nil {
			m.filterError = err.Error()
			return m, nil
		}
		m.filterMode = false
		m.filterError = ""
		m.refresh()
		m.updateLayout()
		return m, nil
	case tea.KeyTab, tea.KeyDown:
		return m, m.setFilterIndex(m.filterIndex + 1)
	case tea.KeyShiftTab, tea.KeyUp:
		return m, m.setFilterIndex(m.filterIndex - 1)
	}
	var cmd tea.Cmd
	m.filterInputs[m.filterIndex], cmd = m.filterInputs[m.filterIndex].Update(msg)
	return m, cmd
}

func (m *Model) setFilterIndex(idx int) tea.Cmd {
	count := len(m.filterInputs)
	if count == 0 {
		return nil
	}
	m.filterIndex = (idx + count) % count
	var cmd tea.Cmd
	for i := range m.filterInputs {
		if i == m.filterIndex {
			cmd = m.filterInputs[i].Focus()
		} else {
			m.filterInputs[i].Blur()
		}
	}
	return cmd
}

// applyFilter replaces the control-bound constraints with the form values. Constraints on
// other dimensions, such as those loaded from a saved view, are kept.
func (m *Model) applyFilter() error {
	raw := make(map[model.Dimension][]string, len(analytics.Controls))
	base := m.criteria.Clone()
	for i, ctl := range analytics.Controls {
		raw[ctl.Dimension] = analytics.SplitValues(m.filterInputs[i].Value())
		base.Clear(ctl.Dimension)
	}
	built, err := analytics.BuildCriteria(raw)
	if err != nil {
		return err
	}
	m.criteria = analytics.Merge(base, built)
	return nil
}

func (m *Model) startSave() (tea.Model, tea.Cmd) {
	if m.views == nil {
		m.errMsg = "Saved views need a database; run with --db."
		return m, nil
	}
	m.errMsg = ""
	m.saveMode = true
	m.saveError = ""
	m.saveInput.SetValue("")
	return m, m.saveInput.Focus()
}

func (m *Model) updateSave(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.Type {
	case tea.KeyEsc:
		m.saveMode = false
		m.saveError = ""
		return m, nil
	case tea.KeyEnter:
		view, err := m.views.SaveView(context.Background(), m.saveInput.Value(), m.criteria)
		if err != nil {
			m.saveError = err.Error()
			return m, nil
		}
		m.saveMode = false
		m.notice = fmt.Sprintf("Saved view %q.", view.Name)
		return m, nil
	}
	var cmd tea.Cmd
	m.saveInput, cmd = m.saveInput.Update(msg)
	return m, cmd
}

func (m *Model) renderSaveModal() string {
	body := []string{
		cardValueStyle.Render("Save Filters As View"),
		m.saveInput.View(),
		headerStyle.Render(truncateLine("Filters: "+m.criteria.String(), modalInnerWidth(m.width))),
		headerStyle.Render("Enter to save / Esc to cancel"),
	}
	if m.saveError != "" {
		body = append(body, errorStyle.Render(m.saveError))
	}
	box := modalStyle.Width(modalWidth(m.width)).Render(strings.Join(body, "\n"))
	return lipgloss.Place(m.width, m.height, lipgloss.Center, lipgloss.Center, box)
}

func modalWidth(width int) int {
	return max(40, min(width-4, 80))
}

func modalInnerWidth(width int) int {
	// 2 border + 4 padding
	return max(modalWidth(width)-6, 10)
}
