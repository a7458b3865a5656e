// Package tui provides the Bubble Tea price quiz screen.
package tui

import (
	"errors"
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/verte-zerg/suuji/internal/logger"
	"github.com/verte-zerg/suuji/internal/model"
	"github.com/verte-zerg/suuji/internal/numeral"
	"github.com/verte-zerg/suuji/internal/playback"
	"github.com/verte-zerg/suuji/internal/quiz"
)

type statusMsg playback.Status

type speakTargetMsg struct{}

// Model implements the Bubble Tea quiz UI.
type Model struct {
	engine    *quiz.Engine
	poolName  string
	log       *logger.Logger
	statuses  chan playback.Status
	unsub     func()
	autoSpeak bool

	width  int
	height int

	rounds  int
	correct int

	reveal   []styledRune
	revealRo []styledRune
	flash    string
	notice   string
	speaking bool
}

var (
	titleStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("#C89A3A")).Bold(true)
	digitStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("#F0F0F0"))
	correctStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("#52C41A"))
	pendingStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("#8C8C8C"))
	cursorStyle    = pendingStyle.Copy().Underline(true)
	readingStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("#F0F0F0"))
	irregularStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#FF4D4F"))
	flashStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("#52C41A")).Bold(true)
	footerStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("#6E6E6E"))
)

// NewModel constructs the quiz screen. The engine must already have a round.
func NewModel(engine *quiz.Engine, poolName string, autoSpeak bool, log *logger.Logger) *Model {
	m := &Model{
		engine:    engine,
		poolName:  poolName,
		log:       log.With("component", "quiz_ui"),
		statuses:  make(chan playback.Status, 16),
		autoSpeak: autoSpeak,
		rounds:    1,
	}
	m.unsub = engine.Playback().Subscribe(playback.Relay(m.statuses))
	return m
}

// Close detaches the model from the engine's scheduler.
func (m *Model) Close() {
	if m.unsub != nil {
		m.unsub()
		m.unsub = nil
	}
}

// Init implements tea.Model.
func (m *Model) Init() tea.Cmd {
	cmds := []tea.Cmd{waitForStatus(m.statuses)}
	if m.autoSpeak {
		cmds = append(cmds, func() tea.Msg { return speakTargetMsg{} })
	}
	return tea.Batch(cmds...)
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
		return m, nil
	case statusMsg:
		m.speaking = msg.State == playback.Playing
		if msg.Notice != nil {
			m.notice = msg.Notice.Error()
		}
		return m, waitForStatus(m.statuses)
	case speakTargetMsg:
		m.pronounce(quiz.Target)
		return m, nil
	case tea.KeyMsg:
		switch msg.Type {
		case tea.KeyCtrlC, tea.KeyEsc:
			m.engine.Playback().Stop()
			return m, tea.Quit
		case tea.KeyBackspace, tea.KeyDelete:
			m.engine.Backspace()
			return m, nil
		case tea.KeyEnter:
			return m, m.submit()
		case tea.KeySpace:
			m.pronounce(quiz.Target)
			return m, nil
		case tea.KeyRunes:
			return m, m.handleRunes(msg.Runes)
		default:
			return m, nil
		}
	default:
		return m, nil
	}
}

func (m *Model) handleRunes(runes []rune) tea.Cmd {
	var cmd tea.Cmd
	for _, r := range runes {
		switch {
		case r >= '0' && r <= '9':
			m.flash = ""
			if !m.engine.AppendDigit(int(r - '0')) {
				m.notice = fmt.Sprintf("at most %d digits", m.engine.MaxDigits())
			}
		case r == 'p':
			m.pronounce(quiz.Target)
		case r == 'c':
			m.pronounce(quiz.Candidate)
		case r == 'r':
			m.showReveal()
		case r == 'n':
			cmd = m.newRound()
		}
	}
	return cmd
}

func (m *Model) submit() tea.Cmd {
	if _, ok := m.engine.Candidate(); !ok {
		return nil
	}
	solved := m.engine.Target()
	if !m.engine.Submit() {
		m.flash = ""
		m.notice = "not quite, listen again"
		return nil
	}
	m.correct++
	m.rounds++
	m.flash = fmt.Sprintf("正解! %d", solved)
	m.notice = ""
	m.clearReveal()
	return m.speakNext()
}

func (m *Model) newRound() tea.Cmd {
	if _, err := m.engine.NewRound(m.engine.Pool()); err != nil {
		m.notice = err.Error()
		return nil
	}
	m.rounds++
	m.flash = ""
	m.notice = ""
	m.clearReveal()
	return m.speakNext()
}

func (m *Model) speakNext() tea.Cmd {
	if !m.autoSpeak {
		return nil
	}
	return func() tea.Msg { return speakTargetMsg{} }
}

func (m *Model) pronounce(which quiz.Which) {
	err := m.engine.Pronounce(which)
	switch {
	case err == nil:
		m.notice = ""
	case errors.Is(err, quiz.ErrNothingToSay):
		m.notice = "type a price first"
	default:
		m.log.Warn("pronounce failed", "which", which.String(), "error", err)
		m.notice = err.Error()
	}
}

func (m *Model) showReveal() {
	entry, err := m.engine.Reveal()
	if err != nil {
		m.notice = err.Error()
		return
	}
	kana, err := numeral.Fragments(entry.Value, model.Kana)
	if err != nil {
		m.notice = err.Error()
		return
	}
	romaji, err := numeral.Fragments(entry.Value, model.Romaji)
	if err != nil {
		m.notice = err.Error()
		return
	}
	m.reveal = buildReading(kana, false)
	m.revealRo = buildReading(romaji, true)
}

func (m *Model) clearReveal() {
	m.reveal = nil
	m.revealRo = nil
}

// View implements tea.Model.
func (m *Model) View() string {
	lines := []string{
		titleStyle.Render("いくら？"),
		"",
		renderStyledRunes(buildSlots(m.engine.Buffer(), m.engine.MaxDigits(), m.engine.IsCorrect())),
	}
	contentWidth := int(float64(m.width) * 0.70)
	if contentWidth < 1 {
		contentWidth = 1
	}
	if len(m.reveal) > 0 {
		lines = append(lines, "",
			wrapStyledRunes(m.reveal, contentWidth),
			wrapStyledRunes(m.revealRo, contentWidth),
			pendingStyle.Render(fmt.Sprintf("%d", m.engine.Target())),
		)
	}
	if m.flash != "" {
		lines = append(lines, "", flashStyle.Render(m.flash))
	}
	content := lipgloss.JoinVertical(lipgloss.Center, lines...)
	if m.width == 0 || m.height == 0 {
		return content
	}
	footer := m.renderFooter()
	if footer == "" || m.height < 3 {
		return lipgloss.Place(m.width, m.height, lipgloss.Center, lipgloss.Center, content)
	}
	bodyHeight := m.height - 1
	body := lipgloss.Place(m.width, bodyHeight, lipgloss.Center, lipgloss.Center, content)
	footerLine := lipgloss.Place(m.width, 1, lipgloss.Center, lipgloss.Center, footer)
	return body + "\n" + footerLine
}

func (m *Model) renderFooter() string {
	segments := []string{fmt.Sprintf("Round %d", m.rounds), fmt.Sprintf("Correct %d", m.correct)}
	if m.poolName != "" {
		segments = append(segments, "Pool "+m.poolName)
	}
	if m.speaking {
		segments = append(segments, "♪")
	}
	if m.notice != "" {
		segments = append(segments, m.notice)
	}
	segments = append(segments, "space listen · c check · r reveal · n next · esc quit")
	return footerStyle.Render(strings.Join(segments, "  "))
}
