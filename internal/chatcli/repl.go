// Package chatcli provides a terminal chat loop over a conversation session.
package chatcli

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/fatih/color"

	"github.com/myrsple/azv-bot/internal/conversation"
	"github.com/myrsple/azv-bot/internal/domain"
)

// Commands understood by the REPL.
const (
	CommandQuit = "/quit"
	CommandCopy = "/copy"
	CommandHelp = "/help"
)

// REPL reads user turns from in and prints replies to out.
type REPL struct {
	session        *conversation.Session
	in             io.Reader
	out            io.Writer
	userLabel      string
	assistantLabel string
}

// New creates a REPL over an unstarted or started session.
func New(session *conversation.Session, in io.Reader, out io.Writer, userLabel, assistantLabel string) *REPL {
	return &REPL{
		session:        session,
		in:             in,
		out:            out,
		userLabel:      userLabel,
		assistantLabel: assistantLabel,
	}
}

// Run starts the session and reads lines until EOF, /quit or ctx is done.
func (r *REPL) Run(ctx context.Context) error {
	cyan := color.New(color.FgCyan)
	green := color.New(color.FgGreen)
	yellow := color.New(color.FgYellow)
	red := color.New(color.FgRed)

	threadID, err := r.session.Start(ctx)
	if err != nil {
		red.Fprintf(r.out, "Error: %v\n", err)
		return err
	}
	yellow.Fprintf(r.out, "Thread %s\n", threadID)
	fmt.Fprintln(r.out, "Type a message and press Enter to send.")
	fmt.Fprintf(r.out, "Commands: %s, %s, %s\n\n", CommandCopy, CommandHelp, CommandQuit)

	scanner := bufio.NewScanner(r.in)
	for {
		if ctx.Err() != nil {
			return nil
		}
		cyan.Fprintf(r.out, "%s: ", r.userLabel)
		if !scanner.Scan() {
			fmt.Fprintln(r.out)
			return scanner.Err()
		}

		input := strings.TrimSpace(scanner.Text())
		switch input {
		case "":
			continue
		case CommandQuit:
			fmt.Fprintln(r.out, "Bye!")
			return nil
		case CommandHelp:
			fmt.Fprintf(r.out, "%s  print the conversation\n%s  exit\n", CommandCopy, CommandQuit)
			continue
		case CommandCopy:
			fmt.Fprintln(r.out, r.session.Transcript(r.userLabel, r.assistantLabel))
			continue
		}

		yellow.Fprintln(r.out, "...")
		reply, found, err := r.session.Send(ctx, input)
		switch {
		case errors.Is(err, context.Canceled):
			return nil
		case err != nil:
			red.Fprintf(r.out, "Error: %s\n", describe(err))
		case !found:
			yellow.Fprintln(r.out, "(no reply)")
		default:
			green.Fprintf(r.out, "%s: ", r.assistantLabel)
			fmt.Fprintln(r.out, reply.Content)
		}
	}
}

// describe renders an error for the user.
func describe(err error) string {
	var runErr *domain.RunFailedError
	if errors.As(err, &runErr) {
		if runErr.Message != "" {
			return fmt.Sprintf("run %s: %s", runErr.Status, runErr.Message)
		}
		return fmt.Sprintf("run %s", runErr.Status)
	}
	if errors.Is(err, domain.ErrPollDeadline) {
		return "no reply in time, try again"
	}
	return err.Error()
}
