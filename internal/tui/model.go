// Package tui is the terminal review screen: a grid of extracted records
// that can be corrected, saved to the worksheet and exported to Postmoa.
package tui

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"go.uber.org/zap"

	"github.com/a3tai/notice-postmoa/internal/converter"
	"github.com/a3tai/notice-postmoa/internal/records"
)

// Actions is what the screen needs from the converter.
type Actions interface {
	ExtractFiles(paths []string) (*records.Table, error)
	ExtractDirectory(req converter.ExtractDirectoryRequest) (*converter.ExtractDirectoryResult, error)
	SaveWorksheet(path string, table *records.Table) error
	Export(req converter.ExportRequest) (*converter.ExportResult, error)
}

// Options configures the screen.
type Options struct {
	Worksheet       string
	OutputDirectory string
	Logger          *zap.Logger
}

type mode int

const (
	modeBrowse mode = iota
	modeEdit
	modeOpen
	modeConfirmQuit
)

type extractedMsg struct {
	source   string
	table    *records.Table
	failures int
	err      error
}

type savedMsg struct {
	path string
	rows int
	err  error
}

type exportedMsg struct {
	result *converter.ExportResult
	err    error
}

// Model is the bubbletea model of the review screen.
type Model struct {
	actions   Actions
	table     *records.Table
	worksheet string
	outputDir string
	log       *zap.Logger

	row, col int
	mode     mode

	// cell being edited, fixed when the edit starts
	editRow, editCol int

	input  textinput.Model
	status string
	dirty  bool
	busy   bool

	// terminal rows, zero until the first WindowSizeMsg
	height int
}

// New creates the screen over table. A nil table starts empty.
func New(actions Actions, table *records.Table, opts Options) Model {
	if table == nil {
		table = records.NewTable()
	}
	log := opts.Logger
	if log == nil {
		log = zap.NewNop()
	}

	input := textinput.New()
	input.CharLimit = 512

	return Model{
		actions:   actions,
		table:     table,
		worksheet: opts.Worksheet,
		outputDir: opts.OutputDirectory,
		log:       log,
		input:     input,
		status:    fmt.Sprintf("%d record(s) loaded", table.Len()),
	}
}

// Table returns the table being edited.
func (m Model) Table() *records.Table {
	return m.table
}

// Status returns the status line text.
func (m Model) Status() string {
	return m.status
}

// Cursor returns the selected row and column.
func (m Model) Cursor() (row, col int) {
	return m.row, m.col
}

func (m Model) Init() tea.Cmd {
	return nil
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.height = msg.Height
		return m, nil

	case extractedMsg:
		m.busy = false
		if msg.err != nil {
			m.log.Warn("extract failed", zap.String("source", msg.source), zap.Error(msg.err))
			m.status = fmt.Sprintf("Extract failed: %v", msg.err)
			return m, nil
		}
		for _, r := range msg.table.Rows() {
			last := m.table.Append(r)
			if m.mode == modeBrowse {
				m.row = last
			}
		}
		m.dirty = m.dirty || msg.table.Len() > 0
		m.status = fmt.Sprintf("Added %d record(s) from %s", msg.table.Len(), msg.source)
		if msg.failures > 0 {
			m.status += fmt.Sprintf(", %d file(s) skipped", msg.failures)
		}
		return m, nil

	case savedMsg:
		m.busy = false
		if msg.err != nil {
			m.status = fmt.Sprintf("Save failed: %v", msg.err)
			return m, nil
		}
		m.dirty = false
		m.status = fmt.Sprintf("Saved %d record(s) to %s", msg.rows, msg.path)
		return m, nil

	case exportedMsg:
		m.busy = false
		if msg.err != nil {
			m.status = fmt.Sprintf("Export failed: %v", msg.err)
			return m, nil
		}
		m.status = fmt.Sprintf("Exported %d record(s) to %s as %s_*",
			msg.result.Records, msg.result.OutputDirectory, msg.result.Timestamp)
		if n := len(msg.result.Incomplete); n > 0 {
			m.status += fmt.Sprintf(" (%d row(s) with empty fields)", n)
		}
		return m, nil

	case tea.KeyMsg:
		switch m.mode {
		case modeEdit, modeOpen:
			return m.updateInput(msg)
		case modeConfirmQuit:
			return m.updateConfirmQuit(msg)
		}
		return m.updateBrowse(msg)
	}
	return m, nil
}

func (m Model) updateBrowse(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	columns := records.Columns()

	switch msg.String() {
	case "ctrl+c", "q":
		m.mode = modeConfirmQuit
		if m.dirty {
			m.status = "Unsaved changes. Quit anyway? (y/n)"
		} else {
			m.status = "Quit? (y/n)"
		}
	case "up", "k":
		if m.row > 0 {
			m.row--
		}
	case "down", "j":
		if m.row < m.table.Len()-1 {
			m.row++
		}
	case "left", "h":
		if m.col > 0 {
			m.col--
		}
	case "right", "l":
		if m.col < len(columns)-1 {
			m.col++
		}
	case "enter":
		value, err := m.table.Cell(m.row, columns[m.col])
		if err != nil {
			m.status = "No record to edit"
			return m, nil
		}
		m.mode = modeEdit
		m.editRow, m.editCol = m.row, m.col
		m.input.Prompt = columns[m.col] + ": "
		m.input.SetValue(value)
		m.input.CursorEnd()
		return m, m.input.Focus()
	case "o":
		if m.busy {
			return m, nil
		}
		m.mode = modeOpen
		m.input.Prompt = "PDF file or directory: "
		m.input.SetValue("")
		return m, m.input.Focus()
	case "d":
		if err := m.table.Delete(m.row); err != nil {
			m.status = "No record to delete"
			return m, nil
		}
		m.dirty = true
		m.status = fmt.Sprintf("Deleted row %d", m.row+1)
		if m.row >= m.table.Len() && m.row > 0 {
			m.row--
		}
	case "ctrl+s":
		if m.busy {
			return m, nil
		}
		m.busy = true
		m.status = "Saving..."
		return m, m.save()
	case "ctrl+p":
		if m.busy {
			return m, nil
		}
		m.busy = true
		m.status = "Exporting..."
		return m, m.export()
	}
	return m, nil
}

func (m Model) updateInput(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "esc":
		m.mode = modeBrowse
		m.input.Blur()
		m.status = "Cancelled"
		return m, nil
	case "enter":
		value := m.input.Value()
		editing := m.mode == modeEdit
		m.mode = modeBrowse
		m.input.Blur()

		if editing {
			column := records.Columns()[m.editCol]
			if err := m.table.Set(m.editRow, column, strings.TrimSpace(value)); err != nil {
				m.status = fmt.Sprintf("Edit failed: %v", err)
				return m, nil
			}
			m.dirty = true
			m.status = fmt.Sprintf("Row %d %s updated", m.editRow+1, column)
			return m, nil
		}

		path := strings.TrimSpace(value)
		if path == "" {
			m.status = "Cancelled"
			return m, nil
		}
		m.busy = true
		m.status = "Extracting " + path + "..."
		return m, m.extract(path)
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

func (m Model) updateConfirmQuit(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "y", "Y", "ctrl+c":
		return m, tea.Quit
	}
	m.mode = modeBrowse
	m.status = "Quit cancelled"
	return m, nil
}

// snapshot copies the table so commands never share rows with the screen.
func (m Model) snapshot() *records.Table {
	return records.NewTable(m.table.Rows()...)
}

func (m Model) extract(path string) tea.Cmd {
	actions := m.actions
	return func() tea.Msg {
		if info, err := os.Stat(path); err == nil && info.IsDir() {
			result, err := actions.ExtractDirectory(converter.ExtractDirectoryRequest{Directory: path})
			if err != nil {
				return extractedMsg{source: path, err: err}
			}
			return extractedMsg{source: path, table: result.Table(), failures: len(result.Failures)}
		}
		table, err := actions.ExtractFiles([]string{path})
		return extractedMsg{source: path, table: table, err: err}
	}
}

func (m Model) save() tea.Cmd {
	actions, path, table := m.actions, m.worksheet, m.snapshot()
	return func() tea.Msg {
		err := actions.SaveWorksheet(path, table)
		return savedMsg{path: path, rows: table.Len(), err: err}
	}
}

func (m Model) export() tea.Cmd {
	actions, dir, table := m.actions, m.outputDir, m.snapshot()
	return func() tea.Msg {
		result, err := actions.Export(converter.ExportRequest{Table: table, OutputDirectory: dir})
		return exportedMsg{result: result, err: err}
	}
}

// Run shows the screen until the user quits and returns the final table.
func Run(ctx context.Context, m Model) (*records.Table, error) {
	p := tea.NewProgram(m, tea.WithAltScreen(), tea.WithContext(ctx))
	final, err := p.Run()
	if err != nil {
		return nil, fmt.Errorf("review screen: %w", err)
	}
	return final.(Model).Table(), nil
}
