package service

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/zeksm/telegram-to-sql/internal/biz/usecase"
)

const consoleHelp = `
- COMMANDS -

all - list joined chats/channels/groups
listening - list chats/channels/groups monitored for updates
add - add to the monitored list, comma-separated ids or @handles
remove - remove from the monitored list, comma-separated ids or @handles

start - start listening for updates
`

// Console is the interactive operator loop. It runs in the foreground
// until the start command opens the listening gate; command errors are
// reported and the loop re-prompts, never exiting the process.
type Console struct {
	registry   *usecase.Registry
	classifier *usecase.Classifier
	in         io.Reader
	out        io.Writer
}

// NewConsole creates the console over the given streams.
func NewConsole(registry *usecase.Registry, classifier *usecase.Classifier, in io.Reader, out io.Writer) *Console {
	return &Console{registry: registry, classifier: classifier, in: in, out: out}
}

// Run reads and evaluates commands until start, input end, or ctx
// cancellation. Lines are read on a separate goroutine so that a
// cancelled ctx interrupts the loop even while the read blocks; the
// reader itself may stay parked in Scan on a quiet stream until the
// process exits.
func (c *Console) Run(ctx context.Context) {
	fmt.Fprintf(c.out, "%s\n", consoleHelp)

	lines := make(chan string)
	go func() {
		defer close(lines)
		scanner := bufio.NewScanner(c.in)
		for scanner.Scan() {
			select {
			case lines <- scanner.Text():
			case <-ctx.Done():
				return
			}
		}
	}()

	for {
		fmt.Fprint(c.out, "\nPlease enter command: ")
		var raw string
		select {
		case <-ctx.Done():
			return
		case l, ok := <-lines:
			if !ok {
				fmt.Fprintln(c.out, "\nConsole input closed")
				return
			}
			raw = l
		}

		line := strings.TrimSpace(raw)
		if line == "" {
			continue
		}
		command, args, _ := strings.Cut(line, " ")

		switch command {
		case "start":
			fmt.Fprintln(c.out, "\nStarted listening for updates")
			c.classifier.Enable()
			return

		case "all":
			fmt.Fprintln(c.out, "\nTITLE - USERNAME - ID")
			for id, chat := range c.registry.Joined() {
				fmt.Fprintf(c.out, "%s - %s - %d\n", chat.Title, chat.Handle, id)
			}

		case "listening":
			monitored := c.registry.Monitored()
			if len(monitored) == 0 {
				fmt.Fprintln(c.out, "Not listening to any chats/channels/groups yet")
				continue
			}
			fmt.Fprintln(c.out, "TITLE - USERNAME - ID")
			for id, chat := range monitored {
				fmt.Fprintf(c.out, "%s - %s - %d\n", chat.Title, chat.Handle, id)
			}

		case "add":
			tokens := splitTokens(args)
			if len(tokens) == 0 {
				fmt.Fprintln(c.out, "No arguments provided")
				continue
			}
			for _, msg := range c.registry.Add(ctx, tokens) {
				fmt.Fprintln(c.out, msg)
			}

		case "remove":
			tokens := splitTokens(args)
			if len(tokens) == 0 {
				fmt.Fprintln(c.out, "No arguments provided")
				continue
			}
			for _, msg := range c.registry.Remove(ctx, tokens) {
				fmt.Fprintln(c.out, msg)
			}

		default:
			fmt.Fprintln(c.out, "Sorry, the command was not recognized")
		}
	}
}

func splitTokens(args string) []string {
	var tokens []string
	for _, t := range strings.Split(args, ",") {
		if t = strings.TrimSpace(t); t != "" {
			tokens = append(tokens, t)
		}
	}
	return tokens
}
