// Package browseui provides the Bubble Tea catalog browser.
package browseui

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/charmbracelet/bubbles/cursor"
	"github.com/charmbracelet/bubbles/table"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-runewidth"

	"github.com/verte-zerg/suuji/internal/catalog"
	"github.com/verte-zerg/suuji/internal/logger"
	"github.com/verte-zerg/suuji/internal/model"
	"github.com/verte-zerg/suuji/internal/numeral"
	"github.com/verte-zerg/suuji/internal/playback"
)

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
	headerStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("#6E6E6E"))
	errorStyle      = lipgloss.NewStyle().Foreground(lipgloss.Color("#FF4D4F"))
	cardValueStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("#F0F0F0")).Bold(true)
	tableMutedStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#B8B8B8"))
	modalStyle      = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder(), true).
			BorderForeground(lipgloss.Color("#C89A3A")).
			Padding(1, 2)
)

type statusMsg playback.Status

// Model implements the Bubble Tea catalog browser.
type Model struct {
	pager    *catalog.Pager
	sched    *playback.Scheduler
	log      *logger.Logger
	statuses chan playback.Status
	unsub    func()

	alphabets []model.Alphabet
	active    int
	table     table.Model

	width  int
	height int

	playing    bool
	playOffset int
	errMsg     string

	jumpMode  bool
	jumpInput textinput.Model
	jumpError string
}

// NewModel constructs a browser over pager that speaks through sched.
func NewModel(pager *catalog.Pager, sched *playback.Scheduler, log *logger.Logger) *Model {
	m := &Model{
		pager:     pager,
		sched:     sched,
		log:       log.With("component", "browse_ui"),
		statuses:  make(chan playback.Status, 16),
		alphabets: []model.Alphabet{model.Kana, model.Romaji},
	}
	m.unsub = sched.Subscribe(playback.Relay(m.statuses))
	m.initJumpInput()
	m.table = buildTable(pager.Page(), 0, 1)
	m.table.Focus()
	return m
}

// Close detaches the model from the scheduler.
func (m *Model) Close() {
	if m.unsub != nil {
		m.unsub()
		m.unsub = nil
	}
}

// Init implements tea.Model.
func (m *Model) Init() tea.Cmd {
	return waitForStatus(m.statuses)
}

func waitForStatus(ch <-chan playback.Status) tea.Cmd {
	return func() tea.Msg {
		return statusMsg(<-ch)
	}
}

// Update implements tea.Model.
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.updateLayout()
		return m, nil
	case statusMsg:
		m.applyStatus(playback.Status(msg))
		return m, waitForStatus(m.statuses)
	case tea.KeyMsg:
		if msg.Type == tea.KeyCtrlC {
			m.sched.Stop()
			return m, tea.Quit
		}
		if m.jumpMode {
			return m.updateJump(msg)
		}
		switch msg.String() {
		case "q":
			m.sched.Stop()
			return m, tea.Quit
		case "left", "h":
			m.movePage(-1)
			return m, nil
		case "right", "l":
			m.movePage(1)
			return m, nil
		case "tab":
			m.active = (m.active + 1) % len(m.alphabets)
			return m, nil
		case "p", "enter":
			m.play()
			return m, nil
		case "s":
			m.sched.Stop()
			return m, nil
		case "g":
			return m.startJump()
		default:
			var cmd tea.Cmd
			m.table, cmd = m.table.Update(msg)
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
	if m.jumpMode {
		return fitLines(m.renderJumpModal(), m.width, m.height)
	}
	headerHeight, bodyHeight, footerHeight := m.layoutHeights()
	header := fitLines(m.renderHeader(), m.width, headerHeight)
	body := fitLines(tableMutedStyle.Render(m.table.View()), m.width, bodyHeight)
	footer := fitLines(m.renderFooter(), m.width, footerHeight)
	return strings.Join([]string{header, body, footer}, "\n")
}

func (m *Model) applyStatus(st playback.Status) {
	m.playing = st.State == playback.Playing
	if st.Notice != nil {
		m.errMsg = st.Notice.Error()
	}
	if m.playing {
		row := m.playOffset + st.Index
		if row < len(m.pager.Page()) {
			m.table.SetCursor(row)
		}
	}
}

func (m *Model) play() {
	page := m.pager.Page()
	from := m.table.Cursor()
	if from < 0 || from >= len(page) {
		from = 0
	}
	m.sched.Stop()
	m.playOffset = from
	alphabet := m.alphabets[m.active]
	opts := m.sched.Options()
	opts.Alphabet = alphabet
	m.sched.SetOptions(opts)
	texts := catalog.Texts(page[from:], alphabet)
	if err := m.sched.Play(texts); err != nil {
		m.errMsg = err.Error()
		m.log.Warn("play failed", "error", err)
		return
	}
	m.errMsg = ""
}

func (m *Model) movePage(delta int) {
	m.sched.Stop()
	var (
		moved bool
		err   error
	)
	if delta < 0 {
		moved, err = m.pager.Prev()
	} else {
		moved, err = m.pager.Next()
	}
	if err != nil {
		m.errMsg = err.Error()
		return
	}
	if !moved {
		return
	}
	m.errMsg = ""
	m.refreshTable()
}

func (m *Model) refreshTable() {
	width := m.width
	if width <= 0 {
		width = 80
	}
	_, bodyHeight, _ := m.layoutHeights()
	cols, rows := buildTableData(m.pager.Page())
	m.table.SetColumns(cols)
	m.table.SetRows(rows)
	m.table.SetWidth(width)
	m.table.SetHeight(maxInt(1, bodyHeight))
	m.table.SetCursor(0)
}

func (m *Model) updateLayout() {
	if m.width <= 0 || m.height <= 0 {
		return
	}
	_, bodyHeight, _ := m.layoutHeights()
	m.table.SetWidth(m.width)
	m.table.SetHeight(maxInt(1, bodyHeight))
	promptWidth := lipgloss.Width(m.jumpInput.Prompt)
	m.jumpInput.Width = maxInt(10, modalInnerWidth(m.width)-promptWidth)
}

func (m *Model) layoutHeights() (headerHeight, bodyHeight, footerHeight int) {
	tabsHeight := lipgloss.Height(activeNavStyle.Render("X"))
	if tabsHeight < 1 {
		tabsHeight = 1
	}
	headerHeight = tabsHeight + 1
	footerHeight = 1
	if m.errMsg != "" {
		footerHeight++
	}
	bodyHeight = m.height - headerHeight - footerHeight
	if bodyHeight < 1 {
		bodyHeight = 1
	}
	return headerHeight, bodyHeight, footerHeight
}

func (m *Model) renderTabs() string {
	parts := make([]string, 0, len(m.alphabets))
	for i, a := range m.alphabets {
		label := strings.ToUpper(a.String()[:1]) + a.String()[1:]
		if i == m.active {
			parts = append(parts, activeNavStyle.Render(label))
		} else {
			parts = append(parts, inactiveNavStyle.Render(label))
		}
	}
	return lipgloss.JoinHorizontal(lipgloss.Top, parts...)
}

func (m *Model) renderHeader() string {
	tabs := padLines(m.renderTabs(), m.width)
	page := m.pager.Page()
	last := m.pager.Start()
	if len(page) > 0 {
		last = page[len(page)-1].Value
	}
	summary := fmt.Sprintf("Page %d/%d  %s-%s",
		m.pager.PageIndex()+1, m.pager.PageCount(), groupDigits(m.pager.Start()), groupDigits(last))
	if m.playing {
		summary += "  ♪ playing"
	}
	summary = truncateLine(summary, m.width)
	return tabs + "\n" + padLine(headerStyle.Render(summary), m.width)
}

func (m *Model) renderFooter() string {
	help := headerStyle.Render("Page: left/right  Play: p  Stop: s  Voice: tab  Jump: g  Quit: q")
	if m.errMsg != "" {
		return help + "\n" + errorStyle.Render(m.errMsg)
	}
	return help
}

func (m *Model) initJumpInput() {
	input := textinput.New()
	input.Prompt = "Value: "
	input.Placeholder = "12000"
	input.CharLimit = 16
	input.Cursor.SetMode(cursor.CursorBlink)
	m.jumpInput = input
}

func (m *Model) startJump() (tea.Model, tea.Cmd) {
	m.jumpMode = true
	m.jumpError = ""
	m.jumpInput.SetValue("")
	return m, m.jumpInput.Focus()
}

func (m *Model) updateJump(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.Type {
	case tea.KeyEsc:
		m.jumpMode = false
		m.jumpError = ""
		m.jumpInput.Blur()
		return m, nil
	case tea.KeyEnter:
		if err := m.applyJump(); err != nil {
			m.jumpError = err.Error()
			return m, nil
		}
		m.jumpMode = false
		m.jumpError = ""
		m.jumpInput.Blur()
		return m, nil
	}
	var cmd tea.Cmd
	m.jumpInput, cmd = m.jumpInput.Update(msg)
	return m, cmd
}

func (m *Model) applyJump() error {
	value, err := numeral.ParseDigits(m.jumpInput.Value())
	if err != nil {
		return err
	}
	m.sched.Stop()
	if err := m.pager.Jump(value); err != nil {
		if errors.Is(err, catalog.ErrStartOutOfRange) {
			return fmt.Errorf("%s is outside this catalog", groupDigits(value))
		}
		return err
	}
	m.refreshTable()
	m.table.SetCursor(value - m.pager.Start())
	return nil
}

func (m *Model) renderJumpModal() string {
	title := cardValueStyle.Render("Jump to value")
	body := []string{
		title,
		m.jumpInput.View(),
		headerStyle.Render("Full-width digits and commas are accepted."),
		headerStyle.Render("Enter to jump / Esc to cancel"),
	}
	if m.jumpError != "" {
		body = append(body, errorStyle.Render(m.jumpError))
	}
	box := modalStyle.Width(modalWidth(m.width)).Render(strings.Join(body, "\n"))
	return lipgloss.Place(m.width, m.height, lipgloss.Center, lipgloss.Center, box)
}

func buildTable(page []model.Entry, width, height int) table.Model {
	cols, rows := buildTableData(page)
	t := table.New(
		table.WithColumns(cols),
		table.WithRows(rows),
		table.WithHeight(maxInt(1, height-1)),
	)
	t.SetWidth(width)
	t.SetStyles(tableStyles())
	return t
}

func buildTableData(page []model.Entry) ([]table.Column, []table.Row) {
	valueWidth, kanaWidth, romajiWidth := len("Value"), len("Kana"), len("Romaji")
	rows := make([]table.Row, 0, len(page))
	for _, e := range page {
		value := groupDigits(e.Value)
		valueWidth = maxInt(valueWidth, len(value))
		kanaWidth = maxInt(kanaWidth, runewidth.StringWidth(e.Kana))
		romajiWidth = maxInt(romajiWidth, runewidth.StringWidth(e.Romaji))
		rows = append(rows, table.Row{value, e.Kana, e.Romaji})
	}
	cols := []table.Column{
		{Title: "Value", Width: valueWidth + 1},
		{Title: "Kana", Width: kanaWidth + 1},
		{Title: "Romaji", Width: romajiWidth + 1},
	}
	return cols, rows
}

func tableStyles() table.Styles {
	styles := table.DefaultStyles()
	styles.Header = styles.Header.
		Border(lipgloss.NormalBorder(), false, false, true, false).
		BorderForeground(lipgloss.Color("#4A4A4A")).
		Foreground(lipgloss.Color("#C0C0C0")).
		Bold(true).
		Padding(0, 1).
		PaddingLeft(0)
	styles.Cell = styles.Cell.
		Padding(0, 1).
		PaddingLeft(0)
	styles.Selected = styles.Cell.
		Foreground(lipgloss.Color("#C89A3A")).
		Bold(true)
	return styles
}

// groupDigits formats n with comma thousands separators.
func groupDigits(n int) string {
	s := strconv.Itoa(n)
	if n < 0 {
		return "-" + groupDigits(-n)
	}
	if len(s) <= 3 {
		return s
	}
	var b strings.Builder
	head := len(s) % 3
	if head > 0 {
		b.WriteString(s[:head])
	}
	for i := head; i < len(s); i += 3 {
		if b.Len() > 0 {
			b.WriteByte(',')
		}
		b.WriteString(s[i : i+3])
	}
	return b.String()
}

func maxInt(a, b int) int {
	if a > b {
		return a
	}
	return b
}

func minInt(a, b int) int {
	if a < b {
		return a
	}
	return b
}

func modalWidth(width int) int {
	return maxInt(40, minInt(width-4, 80))
}

func modalInnerWidth(width int) int {
	w := modalWidth(width)
	w -= 6 // 2 border + 4 padding
	if w < 10 {
		return 10
	}
	return w
}

func padLines(s string, width int) string {
	if width <= 0 || s == "" {
		return s
	}
	lines := strings.Split(s, "\n")
	for i, line := range lines {
		lines[i] = padLine(line, width)
	}
	return strings.Join(lines, "\n")
}

func padLine(line string, width int) string {
	lineWidth := lipgloss.Width(line)
	if lineWidth < width {
		return line + strings.Repeat(" ", width-lineWidth)
	}
	return line
}

func fitLines(s string, width, height int) string {
	if width <= 0 || height <= 0 {
		return s
	}
	lines := strings.Split(s, "\n")
	for i, line := range lines {
		lines[i] = padLine(line, width)
	}
	if len(lines) > height {
		lines = lines[:height]
	}
	for len(lines) < height {
		lines = append(lines, strings.Repeat(" ", width))
	}
	return strings.Join(lines, "\n")
}

func truncateLine(s string, width int) string {
	if width <= 0 {
		return s
	}
	if runewidth.StringWidth(s) <= width {
		return s
	}
	if width <= 3 {
		return runewidth.Truncate(s, width, "")
	}
	return runewidth.Truncate(s, width, "...")
}
