// Package cli is the interactive terminal front end of the session
// controller.
package cli

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/peterh/liner"
	"github.com/pkg/errors"

	"github.com/zhouzirui/contrario/internal/model/persona"
	"github.com/zhouzirui/contrario/internal/session"
)

// Prompter reads one line of input. *liner.State satisfies it.
type Prompter interface {
	Prompt(prompt string) (string, error)
	AppendHistory(item string)
}

var _ Prompter = (*liner.State)(nil)

// REPL drives a session.Controller from line input.
type REPL struct {
	ctrl     *session.Controller
	personas persona.Store
	in       Prompter
	out      io.Writer
}

// NewREPL creates the loop. out receives rendered turns.
func NewREPL(ctrl *session.Controller, personas persona.Store, in Prompter, out io.Writer) *REPL {
	return &REPL{ctrl: ctrl, personas: personas, in: in, out: out}
}

// Run reads until EOF, Ctrl+C or /quit.
func (r *REPL) Run(ctx context.Context) error {
	r.printHeader()
	fmt.Fprintln(r.out, dimStyle.Render("/help for commands"))

	for {
		line, err := r.in.Prompt(promptStyle.Render("> "))
		if err != nil {
			if errors.Is(err, liner.ErrPromptAborted) || errors.Is(err, io.EOF) {
				fmt.Fprintln(r.out)
				return nil
			}
			return errors.Wrap(err, "read input")
		}

		trimmed := strings.TrimSpace(line)
		if trimmed == "" {
			continue
		}
		r.in.AppendHistory(line)

		if strings.HasPrefix(trimmed, "/") {
			if quit := r.handleCommand(trimmed); quit {
				return nil
			}
			continue
		}

		r.send(ctx, line)

		if ctx.Err() != nil {
			return nil
		}
	}
}

func (r *REPL) send(ctx context.Context, text string) {
	before := len(r.ctrl.Turns())
	fmt.Fprintln(r.out, dimStyle.Render("..."))

	if !r.ctrl.Submit(ctx, text) {
		fmt.Fprintln(r.out, dimStyle.Render("(still waiting for the previous reply)"))
		return
	}

	// The user turn is already on screen as typed input.
	turns := r.ctrl.Turns()
	if before+1 > len(turns) {
		return
	}
	name := r.personas.Resolve(r.ctrl.Persona()).Name
	for _, turn := range turns[before+1:] {
		fmt.Fprintln(r.out, renderTurn(turn, name))
	}
}

func (r *REPL) handleCommand(line string) (quit bool) {
	fields := strings.Fields(line)
	switch fields[0] {
	case "/quit", "/exit":
		return true
	case "/help":
		fmt.Fprintln(r.out, helpText)
	case "/persona", "/personas":
		if len(fields) == 1 {
			r.ctrl.OpenSelector()
			fmt.Fprint(r.out, renderPersonaList(r.personas.List(), r.ctrl.Persona()))
			return false
		}
		id, err := persona.ParseID(fields[1])
		if err != nil {
			fmt.Fprintln(r.out, errorStyle.Render(err.Error()))
			return false
		}
		r.ctrl.SelectPersona(id)
		r.printHeader()
	case "/new":
		r.ctrl.SelectPersona(r.ctrl.Persona())
		r.printHeader()
	case "/history":
		name := r.personas.Resolve(r.ctrl.Persona()).Name
		for _, turn := range r.ctrl.Turns() {
			fmt.Fprintln(r.out, renderTurn(turn, name))
		}
	default:
		fmt.Fprintln(r.out, errorStyle.Render("unknown command "+fields[0]))
	}
	return false
}

func (r *REPL) printHeader() {
	snap := r.ctrl.Snapshot()
	fmt.Fprintln(r.out, renderHeader(r.personas.Resolve(snap.Persona), snap.ID))
}
