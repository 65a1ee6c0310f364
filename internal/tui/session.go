package tui

import (
	"context"
	"errors"
	"fmt"
	"io"
	"sort"
	"strconv"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/list"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/samber/lo"

	"github.com/trknhr/semantle/internal/guess"
	"github.com/trknhr/semantle/internal/scoring"
	"github.com/trknhr/semantle/internal/store"
)

var (
	titleStyle  = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("205"))
	outputStyle = lipgloss.NewStyle().Bold(true)
	statusStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("241"))
	errorStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("196"))
	helpStyle   = lipgloss.NewStyle().Faint(true)
)

type keyMap struct {
	Submit key.Binding
	Quit   key.Binding
	Up     key.Binding
	Down   key.Binding
}

var keys = keyMap{
	Submit: key.NewBinding(key.WithKeys("enter"), key.WithHelp("enter", "submit")),
	Quit:   key.NewBinding(key.WithKeys("ctrl+c", "esc"), key.WithHelp("esc", "quit")),
	Up:     key.NewBinding(key.WithKeys("up")),
	Down:   key.NewBinding(key.WithKeys("down")),
}

type Recorder interface {
	Enqueue(e store.Entry) bool
}

type Options struct {
	StartGame bool
	SessionID string
	Recorder  Recorder

	// GuessLimit ends the game after that many submissions; 0 means unlimited.
	GuessLimit int

	// WinScore is the score of the secret word; defaults to 1.
	WinScore float64
}

type tuiModel struct {
	ctx       context.Context
	submitter *guess.Submitter
	opts      Options

	input    textinput.Model
	list     list.Model
	scored   []scoredItem
	status   string
	failed   bool
	inFlight int
	guesses  int
	won      bool
	winner   string
	width    int
	height   int
}

type scoredItem struct {
	text  string
	score float64
}

func (i scoredItem) Title() string       { return i.text }
func (i scoredItem) Description() string { return "" }
func (i scoredItem) FilterValue() string { return i.text }

// compactDelegate renders items in a single-line compact form.
type compactDelegate struct{}

func (d compactDelegate) Height() int                               { return 1 }
func (d compactDelegate) Spacing() int                              { return 0 }
func (d compactDelegate) Update(msg tea.Msg, m *list.Model) tea.Cmd { return nil }
func (d compactDelegate) Render(w io.Writer, m list.Model, index int, item list.Item) {
	i, ok := item.(scoredItem)
	if !ok {
		return
	}
	str := fmt.Sprintf("%8s  %s", strconv.FormatFloat(i.score, 'f', 4, 64), i.text)
	if index == m.Index() {
		str = titleStyle.Render("> " + str)
	} else {
		str = "  " + str
	}
	fmt.Fprint(w, str)
}

func NewTuiModel(ctx context.Context, submitter *guess.Submitter, opts Options) *tuiModel {
	input := textinput.New()
	input.Placeholder = "Type a word and press enter..."
	input.Focus()

	l := list.New([]list.Item{}, &compactDelegate{}, 40, 10)
	l.SetShowPagination(false)
	l.SetShowHelp(false)
	l.SetShowTitle(false)
	l.SetShowStatusBar(false)
	l.SetFilteringEnabled(false)

	if opts.WinScore <= 0 {
		opts.WinScore = 1
	}

	return &tuiModel{
		ctx:       ctx,
		submitter: submitter,
		opts:      opts,
		input:     input,
		list:      l,
	}
}

type scoredMsg struct {
	guess.Result
}

type startedMsg struct {
	err error
}

func submitCmd(ctx context.Context, s *guess.Submitter, t guess.Ticket) tea.Cmd {
	return func() tea.Msg {
		return scoredMsg{s.Send(ctx, t)}
	}
}

func startGameCmd(ctx context.Context, s *guess.Submitter) tea.Cmd {
	return func() tea.Msg {
		return startedMsg{err: s.StartGame(ctx)}
	}
}

func (m *tuiModel) Init() tea.Cmd {
	if m.opts.StartGame {
		return tea.Batch(textinput.Blink, startGameCmd(m.ctx, m.submitter))
	}
	return textinput.Blink
}

func (m *tuiModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.list.SetSize(msg.Width, max(msg.Height-9, 3))
		return m, nil

	case tea.KeyMsg:
		switch {
		case key.Matches(msg, keys.Quit):
			return m, tea.Quit
		case key.Matches(msg, keys.Submit):
			return m, m.submit()
		case key.Matches(msg, keys.Up), key.Matches(msg, keys.Down):
			var cmd tea.Cmd
			m.list, cmd = m.list.Update(msg)
			return m, cmd
		default:
			var cmd tea.Cmd
			m.input, cmd = m.input.Update(msg)
			return m, cmd
		}

	case scoredMsg:
		m.handleResult(msg.Result)
		return m, nil

	case startedMsg:
		if msg.err != nil {
			m.setError("could not start game: " + describe(msg.err))
		} else {
			m.setStatus("Game started successfully!")
		}
		return m, nil
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

// submit turns the current input into a ticket and returns the command that
// scores it. The input is cleared so the next word can be typed while the
// request is in flight.
func (m *tuiModel) submit() tea.Cmd {
	if m.won || m.outOfGuesses() {
		m.showEnd()
		return nil
	}
	t, err := m.submitter.Begin(m.input.Value())
	if err != nil {
		m.setError("type a word first")
		return nil
	}
	m.input.SetValue("")
	m.inFlight++
	m.guesses++
	m.setStatus(fmt.Sprintf("scoring %q...", t.Guess))
	return submitCmd(m.ctx, m.submitter, t)
}

func (m *tuiModel) handleResult(res guess.Result) {
	m.inFlight--
	outcome := m.submitter.Apply(res)
	if m.opts.Recorder != nil {
		m.opts.Recorder.Enqueue(res.Entry(m.opts.SessionID, outcome))
	}

	switch outcome {
	case guess.Failed:
		m.setError(fmt.Sprintf("%q: request failed: %s", res.Guess, describe(res.Err)))
	case guess.Stale, guess.Applied:
		m.addScored(res)
		if !m.won && guess.IsWin(res.Score, m.opts.WinScore) {
			m.won = true
			m.winner = res.Guess
		}
		if outcome == guess.Applied && m.inFlight == 0 {
			m.setStatus("")
		}
	}

	if m.won || (m.outOfGuesses() && m.inFlight == 0) {
		m.showEnd()
	}
}

func (m *tuiModel) outOfGuesses() bool {
	return m.opts.GuessLimit > 0 && m.guesses >= m.opts.GuessLimit
}

// showEnd puts the end-of-game message in the status line.
func (m *tuiModel) showEnd() {
	if m.won {
		m.setStatus(fmt.Sprintf("You won! The word was %q. Press esc to quit.", m.winner))
		return
	}
	m.setError(fmt.Sprintf("Sorry, your %d guesses are up. Press esc to quit.", m.opts.GuessLimit))
}

// addScored keeps one row per distinct guess, best score first.
func (m *tuiModel) addScored(res guess.Result) {
	if _, idx, ok := lo.FindIndexOf(m.scored, func(it scoredItem) bool { return it.text == res.Guess }); ok {
		m.scored[idx].score = res.Score
	} else {
		m.scored = append(m.scored, scoredItem{text: res.Guess, score: res.Score})
	}
	sort.SliceStable(m.scored, func(i, j int) bool { return m.scored[i].score > m.scored[j].score })

	m.list.SetItems(lo.Map(m.scored, func(it scoredItem, _ int) list.Item { return it }))
}

func (m *tuiModel) setStatus(s string) {
	m.status = s
	m.failed = false
}

func (m *tuiModel) setError(s string) {
	m.status = s
	m.failed = true
}

func describe(err error) string {
	var statusErr *scoring.StatusError
	switch {
	case errors.As(err, &statusErr):
		return fmt.Sprintf("server responded %d", statusErr.Code)
	case errors.Is(err, scoring.ErrMalformed):
		return "unreadable response"
	case errors.Is(err, scoring.ErrTransport):
		return "server unreachable"
	default:
		return err.Error()
	}
}

func (m *tuiModel) View() string {
	s := titleStyle.Render("Semantle") + "\n\n"
	s += m.input.View() + "\n\n"
	s += outputStyle.Render(m.submitter.Output()) + "\n"
	if m.failed {
		s += errorStyle.Render(m.status) + "\n\n"
	} else {
		s += statusStyle.Render(m.status) + "\n\n"
	}
	s += m.list.View() + "\n"
	count := strconv.Itoa(m.guesses)
	if m.opts.GuessLimit > 0 {
		count += "/" + strconv.Itoa(m.opts.GuessLimit)
	}
	s += helpStyle.Render("guesses: " + count + " · enter = submit · esc = quit")
	return s
}

func (m *tuiModel) Output() string {
	return m.submitter.Output()
}
