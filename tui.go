package main

import (
	"fmt"
	"time"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"seltable/internal/dblib"
	"seltable/internal/grid"
)

const (
	headerLines = 2 // column names and the rule under them
	statusLines = 1

	wheelStep          = 3
	autoScrollInterval = 50 * time.Millisecond
)

type Model struct {
	table *grid.Table[dblib.Record, field]
	conf  GridConfig
	title string

	// byKey maps lookup keys to row ids so re-reads update rows in place.
	byKey map[string]int64
	// changed holds the cells that differed in the last refresh.
	changed map[int64][]field

	width     int
	height    int
	scrollRow int
	firstCol  int

	// Pointer state of the drag in progress.
	pointerX     int
	pointerY     int
	mods         grid.Modifiers
	moved        bool
	wasSelected  bool
	autoScrollOn bool

	searchInput textinput.Model
	inputActive bool
	query       string

	loading   bool
	loadCount int
	reload    func()

	status    string
	statusErr bool
}

// newModel builds the table for rel. reload asks the loader to read the
// relation again from scratch.
func newModel(rel *dblib.Relation, conf GridConfig, title string, reload func()) Model {
	opts := append(conf.options(), grid.WithConfig(rel))

	input := textinput.New()
	input.Prompt = "/ "
	input.Placeholder = "fuzzy search"

	return Model{
		table:       grid.New[dblib.Record](fieldsOf(rel), opts...),
		conf:        conf,
		title:       title,
		byKey:       make(map[string]int64),
		searchInput: input,
		loading:     true,
		reload:      reload,
	}
}

func (m Model) relation() *dblib.Relation {
	return m.table.Config().(*dblib.Relation)
}

func (m Model) Init() tea.Cmd {
	return nil
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.searchInput.Width = max(msg.Width-4, 1)
		m.scrollTo(m.scrollRow)
		return m, nil

	case tea.KeyMsg:
		if breadcrumbs != nil {
			breadcrumbs.RecordKeyboard(msg.String())
		}
		if m.inputActive {
			return m.handleSearchInput(msg)
		}
		return m.handleKeys(msg)

	case tea.MouseMsg:
		cmd := m.handleMouse(msg)
		return m, cmd

	case autoScrollMsg:
		cmd := m.stepAutoScroll()
		return m, cmd

	case loadStartMsg:
		m.startLoad(msg)
		return m, nil

	case recordsMsg:
		m.addRecords(msg)
		return m, nil

	case loadDoneMsg:
		m.finishLoad(msg)
		return m, nil
	}
	return m, nil
}

// setStatus shows message in the status bar until the next one.
func (m *Model) setStatus(format string, args ...any) {
	m.status = fmt.Sprintf(format, args...)
	m.statusErr = false
}

func (m *Model) setError(err error) {
	m.status = err.Error()
	m.statusErr = true
}

func (m Model) bodyHeight() int {
	return max(m.height-headerLines-statusLines, 1)
}

func (m Model) maxScroll() int {
	return max(m.table.TotalDisplayedRows()-m.bodyHeight(), 0)
}

// scrollTo moves the first visible row, keeping it in range, and reports the
// new offset to the autoscroller.
func (m *Model) scrollTo(row int) {
	m.scrollRow = min(max(row, 0), m.maxScroll())
	m.table.SetScrollOffset(float64(m.scrollRow))
}

func (m *Model) scrollBy(rows int) {
	m.scrollTo(m.scrollRow + rows)
}
