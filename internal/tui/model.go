package tui

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"golang.org/x/text/language"

	"github.com/gigurra/subs-analyzer/internal"
)

const whatIfStep = 5

// Export file names, written to the export directory.
const (
	jsonExportName = "subscriptions.json"
	csvExportName  = "subscriptions.csv"
)

type mode int

const (
	modeGrid mode = iota
	modeEditCell
	modeWhatIf
	modeCurrency
	modeImportPath
	modeConfirmReset
)

// Messages
type (
	statusResetMsg struct{ seq int }

	importReadMsg struct {
		path   string
		format string
		data   []byte
		err    error
	}

	exportDoneMsg struct {
		path string
		err  error
	}
)

// Model is the bubbletea model of the interactive grid. All state changes go
// through App.Dispatch from Update, one message at a time.
type Model struct {
	ctx       context.Context
	app       *internal.App
	locale    language.Tag
	exportDir string

	keys      keyMap
	inputKeys inputKeyMap
	input     textinput.Model

	mode   mode
	row    int
	col    int
	status string
	isErr  bool
	seq    int

	width  int
	height int
}

// Option configures a Model.
type Option func(*Model)

// WithExportDir sets where exports are written. Defaults to the working directory.
func WithExportDir(dir string) Option {
	return func(m *Model) { m.exportDir = dir }
}

func New(ctx context.Context, app *internal.App, locale language.Tag, opts ...Option) Model {
	in := textinput.New()
	in.CharLimit = 256

	m := Model{
		ctx:       ctx,
		app:       app,
		locale:    locale,
		exportDir: ".",
		keys:      newKeyMap(),
		inputKeys: newInputKeyMap(),
		input:     in,
		status:    string(internal.StatusIdle),
	}
	for _, opt := range opts {
		opt(&m)
	}
	return m
}

func (m Model) Init() tea.Cmd {
	return textinput.Blink
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width, m.height = msg.Width, msg.Height
		return m, nil

	case statusResetMsg:
		if msg.seq == m.seq && m.status == string(internal.StatusSaved) {
			m.status = string(internal.StatusIdle)
		}
		return m, nil

	case importReadMsg:
		if msg.err != nil {
			return m.fail(fmt.Errorf("reading %s: %w", msg.path, msg.err))
		}
		res, err := m.app.Dispatch(m.ctx, internal.ImportPayload{Format: msg.format, Data: msg.data})
		if err != nil {
			return m.fail(err)
		}
		m.clampCursor()
		return m.afterDispatch(res)

	case exportDoneMsg:
		if msg.err != nil {
			return m.fail(msg.err)
		}
		m.setStatus("Exported to "+msg.path, false)
		return m, nil

	case tea.KeyMsg:
		switch m.mode {
		case modeGrid:
			return m.updateGrid(msg)
		case modeConfirmReset:
			return m.updateConfirm(msg)
		default:
			return m.updateInput(msg)
		}
	}
	return m, nil
}

func (m Model) updateGrid(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	records := m.app.Records()

	switch {
	case key.Matches(msg, m.keys.Quit):
		return m, tea.Quit

	case key.Matches(msg, m.keys.Up):
		if m.row > 0 {
			m.row--
		}
	case key.Matches(msg, m.keys.Down):
		if m.row < len(records)-1 {
			m.row++
		}
	case key.Matches(msg, m.keys.Left):
		if m.col > 0 {
			m.col--
		}
	case key.Matches(msg, m.keys.Right):
		if m.col < len(internal.Fields)-1 {
			m.col++
		}

	case key.Matches(msg, m.keys.Add):
		res, err := m.app.Dispatch(m.ctx, internal.AddRecord{Record: internal.NewRecord()})
		if err != nil {
			return m.fail(err)
		}
		m.row = len(m.app.Records()) - 1
		m.col = 0
		return m.afterDispatch(res)

	case key.Matches(msg, m.keys.Duplicate):
		if r, ok := m.current(); ok {
			res, err := m.app.Dispatch(m.ctx, internal.DuplicateRecord{ID: r.ID})
			if err != nil {
				return m.fail(err)
			}
			if res.Changed {
				m.row++
			}
			return m.afterDispatch(res)
		}

	case key.Matches(msg, m.keys.Delete):
		if r, ok := m.current(); ok {
			res, err := m.app.Dispatch(m.ctx, internal.DeleteRecord{ID: r.ID})
			if err != nil {
				return m.fail(err)
			}
			m.clampCursor()
			return m.afterDispatch(res)
		}

	case key.Matches(msg, m.keys.Cycle):
		if r, ok := m.current(); ok {
			f := internal.Fields[m.col]
			next, ok := nextValue(r, f)
			if !ok {
				return m, nil
			}
			res, err := m.app.Dispatch(m.ctx, internal.UpdateField{ID: r.ID, Field: f, Value: next})
			if err != nil {
				return m.fail(err)
			}
			return m.afterDispatch(res)
		}

	case key.Matches(msg, m.keys.Edit):
		if r, ok := m.current(); ok {
			f := internal.Fields[m.col]
			return m.openInput(modeEditCell, string(f)+": ", r.Get(f))
		}

	case key.Matches(msg, m.keys.WhatIfUp):
		return m.setWhatIf(m.app.WhatIf() + whatIfStep)
	case key.Matches(msg, m.keys.WhatIfDn):
		return m.setWhatIf(m.app.WhatIf() - whatIfStep)
	case key.Matches(msg, m.keys.WhatIf):
		return m.openInput(modeWhatIf, "What-if %: ", strconv.FormatFloat(m.app.WhatIf(), 'f', -1, 64))

	case key.Matches(msg, m.keys.Currency):
		return m.openInput(modeCurrency, "Currency: ", m.app.Currency())

	case key.Matches(msg, m.keys.ExportJS):
		return m.export("json", jsonExportName)
	case key.Matches(msg, m.keys.ExportCSV):
		return m.export("csv", csvExportName)

	case key.Matches(msg, m.keys.Import):
		return m.openInput(modeImportPath, "Import file: ", "")

	case key.Matches(msg, m.keys.Reset):
		m.mode = modeConfirmReset
		m.setStatus("Clear all data? (y/n)", false)

	case key.Matches(msg, m.keys.Save):
		res, err := m.app.Dispatch(m.ctx, internal.Save{})
		if err != nil {
			return m.fail(err)
		}
		return m.afterDispatch(res)
	}
	return m, nil
}

func (m Model) updateConfirm(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	m.mode = modeGrid
	if msg.String() != "y" && msg.String() != "Y" {
		m.setStatus(string(internal.StatusIdle), false)
		return m, nil
	}
	res, err := m.app.Dispatch(m.ctx, internal.Reset{})
	if err != nil {
		return m.fail(err)
	}
	m.row, m.col = 0, 0
	return m.afterDispatch(res)
}

func (m Model) updateInput(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.inputKeys.Cancel):
		m.closeInput()
		return m, nil
	case key.Matches(msg, m.inputKeys.Submit):
		value := m.input.Value()
		submitted := m.mode
		m.closeInput()
		return m.submit(submitted, value)
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

func (m Model) submit(md mode, value string) (tea.Model, tea.Cmd) {
	switch md {
	case modeEditCell:
		r, ok := m.current()
		if !ok {
			return m, nil
		}
		res, err := m.app.Dispatch(m.ctx, internal.UpdateField{ID: r.ID, Field: internal.Fields[m.col], Value: value})
		if err != nil {
			return m.fail(err)
		}
		return m.afterDispatch(res)

	case modeWhatIf:
		p, err := strconv.ParseFloat(strings.TrimSpace(value), 64)
		if err != nil {
			p = 0
		}
		return m.setWhatIf(p)

	case modeCurrency:
		res, err := m.app.Dispatch(m.ctx, internal.SetCurrency{Symbol: internal.ResolveSymbol(value)})
		if err != nil {
			return m.fail(err)
		}
		return m.afterDispatch(res)

	case modeImportPath:
		value = strings.TrimSpace(value)
		if value == "" {
			return m, nil
		}
		format, path := internal.ParseFileArg(value)
		if format == "" {
			format = internal.FormatForPath(path)
		}
		m.setStatus("Importing "+path+"...", false)
		return m, readImportCmd(path, format)
	}
	return m, nil
}

func (m Model) setWhatIf(p float64) (tea.Model, tea.Cmd) {
	if _, err := m.app.Dispatch(m.ctx, internal.SetWhatIf{Percent: p}); err != nil {
		return m.fail(err)
	}
	return m, nil
}

func (m Model) export(format, name string) (tea.Model, tea.Cmd) {
	res, err := m.app.Dispatch(m.ctx, internal.ExportRequest{Format: format})
	if err != nil {
		return m.fail(err)
	}
	return m, writeExportCmd(filepath.Join(m.exportDir, name), res.Export)
}

// afterDispatch updates the status line and schedules the revert to Idle
// after a save.
func (m Model) afterDispatch(res internal.Result) (tea.Model, tea.Cmd) {
	if !res.Saved {
		return m, nil
	}
	m.setStatus(string(internal.StatusSaved), false)
	m.seq++
	seq := m.seq
	return m, tea.Tick(internal.SavedStatusDuration, func(time.Time) tea.Msg {
		return statusResetMsg{seq: seq}
	})
}

func (m Model) fail(err error) (tea.Model, tea.Cmd) {
	if errors.Is(err, internal.ErrInvalidImport) {
		detail := strings.TrimPrefix(err.Error(), internal.ErrInvalidImport.Error())
		m.setStatus("Invalid import file"+detail, true)
	} else {
		m.setStatus("Error: "+err.Error(), true)
	}
	return m, nil
}

func (m *Model) setStatus(s string, isErr bool) {
	m.status = s
	m.isErr = isErr
}

func (m *Model) openInput(md mode, prompt, value string) (tea.Model, tea.Cmd) {
	m.mode = md
	m.input.Prompt = prompt
	m.input.SetValue(value)
	m.input.CursorEnd()
	return *m, m.input.Focus()
}

func (m *Model) closeInput() {
	m.mode = modeGrid
	m.input.Blur()
	m.input.SetValue("")
}

func (m Model) current() (internal.Record, bool) {
	records := m.app.Records()
	if m.row < 0 || m.row >= len(records) {
		return internal.Record{}, false
	}
	return records[m.row], true
}

func (m *Model) clampCursor() {
	n := len(m.app.Records())
	if m.row >= n {
		m.row = n - 1
	}
	if m.row < 0 {
		m.row = 0
	}
}

// nextValue returns the enumeration value after the record's current one
// for cycle and category cells. Unknown values restart at the first entry.
func nextValue(r internal.Record, f internal.Field) (string, bool) {
	switch f {
	case internal.FieldCycle:
		return string(next(internal.Cycles, r.Cycle)), true
	case internal.FieldCategory:
		return string(next(internal.Categories, r.Category)), true
	}
	return "", false
}

func next[T comparable](values []T, current T) T {
	for i, v := range values {
		if v == current {
			return values[(i+1)%len(values)]
		}
	}
	return values[0]
}

func readImportCmd(path, format string) tea.Cmd {
	return func() tea.Msg {
		data, err := os.ReadFile(path)
		return importReadMsg{path: path, format: format, data: data, err: err}
	}
}

func writeExportCmd(path string, data []byte) tea.Cmd {
	return func() tea.Msg {
		if err := os.WriteFile(path, data, 0644); err != nil {
			return exportDoneMsg{path: path, err: fmt.Errorf("writing %s: %w", path, err)}
		}
		return exportDoneMsg{path: path}
	}
}
