package tui

import (
	tea "github.com/charmbracelet/bubbletea"

	"github.com/jmylchreest/popfeed/internal/listsync"
)

// NewProgramDispatcher returns a dispatcher that runs functions inside the
// program's Update loop, in the order they were sent. Sends after the
// program has exited are dropped.
func NewProgramDispatcher(p *tea.Program) listsync.Dispatcher {
	return listsync.DispatcherFunc(func(fn func()) {
		p.Send(dispatchMsg{fn: fn})
	})
}
