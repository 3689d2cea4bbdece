package main

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"unicode"

	mdnarrate "github.com/alnah/go-mdnarrate"
)

// Console-only actions, handled without the controller.
const (
	actionNone   = ""
	actionStatus = "status"
	actionVoices = "voices"
	actionHelp   = "help"
	actionQuit   = "quit"
)

// console reads commands line by line and dispatches them to the controller.
type console struct {
	ctrl   *mdnarrate.Controller
	out    io.Writer
	logger *slog.Logger

	// keepAlive keeps serving after end of input (web remote still usable).
	keepAlive bool
}

// parseLine splits a console line into a controller command or a console
// action. For single-argument commands (open, voice, ...) the rest of the
// line is the argument, spaces included. drop takes several paths; quote
// one that contains spaces.
func parseLine(line string) (mdnarrate.Command, string) {
	line = strings.TrimSpace(line)
	if line == "" || strings.HasPrefix(line, "#") {
		return mdnarrate.Command{}, actionNone
	}

	word, rest, _ := strings.Cut(line, " ")
	word = strings.ToLower(word)
	rest = strings.TrimSpace(rest)

	switch word {
	case "status", "voices", "help":
		return mdnarrate.Command{}, word
	case "quit", "exit", "q":
		return mdnarrate.Command{}, actionQuit
	case "drop":
		return mdnarrate.Command{Name: mdnarrate.CmdDrop, Args: splitArgs(rest)}, actionNone
	case "language":
		word = string(mdnarrate.CmdLang)
	}
	return mdnarrate.Command{Name: mdnarrate.CommandName(word), Value: rest}, actionNone
}

// splitArgs splits on whitespace, keeping double-quoted runs together.
// An unterminated quote runs to the end of the line.
func splitArgs(s string) []string {
	var (
		args   []string
		cur    strings.Builder
		quoted bool
		inArg  bool
	)
	for _, r := range s {
		switch {
		case r == '"':
			quoted = !quoted
			inArg = true
		case unicode.IsSpace(r) && !quoted:
			if inArg {
				args = append(args, cur.String())
				cur.Reset()
				inArg = false
			}
		default:
			cur.WriteRune(r)
			inArg = true
		}
	}
	if inArg {
		args = append(args, cur.String())
	}
	return args
}

// run processes input until quit, end of input, or ctx is done.
func (c *console) run(ctx context.Context, in io.Reader) error {
	lines := make(chan string)
	go func() {
		defer close(lines)
		sc := bufio.NewScanner(in)
		for sc.Scan() {
			select {
			case lines <- sc.Text():
			case <-ctx.Done():
				return
			}
		}
	}()

	for {
		select {
		case <-ctx.Done():
			return nil
		case line, ok := <-lines:
			if !ok {
				if c.keepAlive {
					c.logger.Info("console closed, serving until interrupted")
					<-ctx.Done()
				}
				return nil
			}
			if quit := c.handle(ctx, line); quit {
				return nil
			}
		}
	}
}

// handle runs one line and reports whether the console should stop.
func (c *console) handle(ctx context.Context, line string) bool {
	cmd, action := parseLine(line)
	switch action {
	case actionQuit:
		return true
	case actionHelp:
		printConsoleHelp(c.out)
		return false
	case actionVoices:
		c.printVoices()
		return false
	case actionStatus:
		c.printStatus()
		return false
	}
	if cmd.Name == "" {
		return false
	}

	if err := c.ctrl.Dispatch(ctx, cmd); err != nil {
		if errors.Is(err, mdnarrate.ErrControllerClosed) {
			return true
		}
		fmt.Fprintf(c.out, "error: %v\n", err)
	}
	c.printFlags()
	return false
}

func (c *console) printFlags() {
	snap, err := c.ctrl.Snapshot()
	if err != nil {
		return
	}
	fmt.Fprintln(c.out, formatFlags(snap))
}

func (c *console) printStatus() {
	snap, err := c.ctrl.Snapshot()
	if err != nil {
		return
	}
	name := snap.FileName
	if name == "" {
		name = "(welcome)"
	}
	fmt.Fprintf(c.out, "document: %s\n", name)
	if snap.Error != "" {
		fmt.Fprintf(c.out, "error:    %s\n", snap.Error)
	}
	fmt.Fprintf(c.out, "state:    %s\n", narrationState(snap))
	fmt.Fprintf(c.out, "progress: %d%%\n", snap.Progress)
	fmt.Fprintf(c.out, "voice:    %s [%s]\n", snap.Voice, snap.Language)
	fmt.Fprintf(c.out, "rate:     %d  volume: %d  zoom: %.1f\n", snap.Rate, snap.Volume, snap.Zoom)
	fmt.Fprintln(c.out, formatFlags(snap))
}

func (c *console) printVoices() {
	voices, err := c.ctrl.Voices()
	if err != nil {
		return
	}
	snap, _ := c.ctrl.Snapshot()
	for _, v := range voices {
		marker := " "
		if v.Name == snap.Voice {
			marker = "*"
		}
		fmt.Fprintf(c.out, "%s %s\n", marker, v.DisplayName())
	}
}

// narrationState names the narration state shown by the console.
func narrationState(snap mdnarrate.Snapshot) string {
	switch {
	case snap.Loading:
		return "loading"
	case snap.Paused:
		return mdnarrate.StatusPaused.String()
	case snap.Reading:
		return mdnarrate.StatusSpeaking.String()
	}
	return mdnarrate.StatusIdle.String()
}

// formatFlags renders the allowed commands, e.g. "[speaking 42%] can: pause stop".
func formatFlags(snap mdnarrate.Snapshot) string {
	var can []string
	if snap.Flags.CanStart {
		can = append(can, "start")
	}
	if snap.Flags.CanPause {
		can = append(can, "pause")
	}
	if snap.Flags.CanResume {
		can = append(can, "resume")
	}
	if snap.Flags.CanStop {
		can = append(can, "stop")
	}
	return fmt.Sprintf("[%s %d%%] can: %s", narrationState(snap), snap.Progress, strings.Join(can, " "))
}
