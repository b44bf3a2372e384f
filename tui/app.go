// Package tui implements the full-screen terminal UI: result lines
// (newest at the bottom), a filler row, a separator, a query input
// line, and a status line showing the last query that produced output.
package tui

import (
	"strings"
	"sync/atomic"

	"github.com/gdamore/tcell/v2"
	"github.com/rivo/tview"

	"github.com/llqtool/llq/bus"
	"github.com/llqtool/llq/query"
	"github.com/llqtool/llq/service"
)

// App is the llq terminal UI.
type App struct {
	app         *tview.Application
	resultsView *tview.TextView
	separator   *tview.TextView
	inputField  *tview.InputField
	statusBar   *tview.TextView

	bus  *bus.Bus
	cell *service.ResultCell
	seq  atomic.Int64
}

// New builds the UI, wired to b for submitting queries and cell for
// reading the Query Service's latest Result.
func New(b *bus.Bus, cell *service.ResultCell) *App {
	a := &App{
		app:  tview.NewApplication(),
		bus:  b,
		cell: cell,
	}
	a.setupUI()
	return a
}

func (a *App) setupUI() {
	a.resultsView = tview.NewTextView().
		SetDynamicColors(false).
		SetScrollable(true).
		SetWrap(false)

	a.separator = tview.NewTextView().
		SetText(strings.Repeat("-", 80))

	a.inputField = tview.NewInputField().
		SetLabel("Query   :> ").
		SetFieldWidth(0)
	a.inputField.SetChangedFunc(func(text string) {
		a.submit(text)
	})
	a.inputField.SetDoneFunc(func(key tcell.Key) {
		if key == tcell.KeyEnter {
			a.submit(a.inputField.GetText())
		}
	})

	a.statusBar = tview.NewTextView().
		SetDynamicColors(false).
		SetText("Displaying :> ")

	root := tview.NewFlex().SetDirection(tview.FlexRow).
		AddItem(a.resultsView, 0, 1, false).
		AddItem(tview.NewTextView(), 1, 0, false). // filler row
		AddItem(a.separator, 1, 0, false).
		AddItem(a.inputField, 1, 0, true).
		AddItem(a.statusBar, 1, 0, false)

	a.app.SetInputCapture(func(event *tcell.EventKey) *tcell.EventKey {
		if event.Key() == tcell.KeyCtrlC {
			a.app.Stop()
			return nil
		}
		return event
	})

	a.app.SetRoot(root, true).SetFocus(a.inputField)
}

// submit parses text into a Query and, if it parses, publishes it onto
// the bus. A parse failure is silently ignored: the last-valid query
// stays active and nothing changes on screen.
func (a *App) submit(text string) {
	q, ok := query.ParseQuery(text, a.seq.Add(1), maxMatches)
	if !ok {
		return
	}
	a.bus.SendQuery(q)
}

// maxMatches bounds how many lines a single query returns.
const maxMatches = 1000

// Redraw re-renders the results view and status bar from the current
// Result. It is the callback the query service calls after every
// update.
func (a *App) Redraw() {
	a.app.QueueUpdateDraw(func() {
		a.render()
	})
}

// maxLineCols bounds a displayed result line's terminal-column width
// (not byte length) so a wide JSON value can't desync resultsView's
// grid; tview itself wraps/clips but only after layout has already
// measured the untruncated line.
const maxLineCols = 4096

func (a *App) render() {
	result := a.cell.Load()

	// Result.Lines is newest-first; the display wants newest at the
	// bottom, so reverse it for display.
	lines := make([]string, len(result.Lines))
	for i, l := range result.Lines {
		lines[len(lines)-1-i] = truncateToWidth(l, maxLineCols)
	}
	a.resultsView.SetText(strings.Join(lines, "\n"))
	a.resultsView.ScrollToEnd()

	a.statusBar.SetText("Displaying :> " + result.Query.Str)
}

// Run blocks running the UI event loop until the user quits.
func (a *App) Run() error {
	return a.app.Run()
}

// Stop terminates the UI event loop (called from the CLI's SIGINT/SIGTERM
// handler so Run returns and the process can exit cleanly).
func (a *App) Stop() {
	a.app.Stop()
}
