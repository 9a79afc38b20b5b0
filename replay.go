package main

import (
	"bufio"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"sync"
	"time"

	"github.com/spf13/cobra"

	"github.com/phobologic/varhint/internal/editor"
	"github.com/phobologic/varhint/internal/publish"
	"github.com/phobologic/varhint/internal/schedule"
)

// replayEvent is one line of a replay script.
type replayEvent struct {
	Event  string `json:"event"` // open, close, caret, edit, sleep
	File   string `json:"file,omitempty"`
	Text   string `json:"text,omitempty"`
	Line   uint32 `json:"line,omitempty"`
	Column uint32 `json:"column,omitempty"`
	Ms     int    `json:"ms,omitempty"`
}

func newReplayCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "replay [FILE]",
		Short: "Drive the live update pipeline from a stream of editor events",
		Long: `Read editor events as JSON lines from stdin and print the status label each
time it changes, exactly as an editor status bar would show it.

Events:
  {"event":"open","file":"app.py"}          open and select a file
  {"event":"close"}                          close the active editor
  {"event":"caret","line":3,"column":5}      move the caret (debounced)
  {"event":"edit","text":"x = 1\n"}          replace the active document
  {"event":"sleep","ms":150}                 wait, e.g. to outlast the debounce

FILE, if given, is opened before the first event.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.replay(cmd, args, cmd.InOrStdin())
		},
	}
}

func (a *app) replay(cmd *cobra.Command, args []string, in io.Reader) error {
	ctx := cmd.Context()
	ws := &editor.Workspace{}

	var pub *publish.Publisher
	pub = publish.New(newLabelPrinter(a.stdout, func() string { return pub.CurrentLabel() }))

	sched := schedule.New(ws, a.analyzer, pub,
		schedule.WithDebounce(a.cfg.Debounce),
		schedule.WithWorkers(a.cfg.Workers),
		schedule.WithLogger(a.logger),
	)
	defer sched.Close()

	if len(args) > 0 {
		doc, err := a.store.Load(ctx, args[0])
		if err != nil {
			return err
		}
		ws.Select(editor.NewBuffer(doc))
	}
	sched.Start()

	scanner := bufio.NewScanner(in)
	lineNo := 0
	for scanner.Scan() {
		lineNo++
		raw := scanner.Bytes()
		if len(raw) == 0 {
			continue
		}
		var ev replayEvent
		if err := json.Unmarshal(raw, &ev); err != nil {
			return fmt.Errorf("event %d: %w", lineNo, err)
		}

		switch ev.Event {
		case "open":
			source, err := os.ReadFile(ev.File)
			if err != nil {
				return fmt.Errorf("event %d: %w", lineNo, err)
			}
			doc, err := a.store.Open(ctx, ev.File, source)
			if err != nil {
				return fmt.Errorf("event %d: %w", lineNo, err)
			}
			ws.Select(editor.NewBuffer(doc))
			sched.SelectionChanged()
		case "close":
			ws.Select(nil)
			sched.SelectionChanged()
		case "caret":
			buf := ws.Active()
			if buf == nil {
				a.logger.Printf("event %d: caret moved with no editor open", lineNo)
				continue
			}
			if !buf.MoveTo(ev.Line, ev.Column) {
				a.logger.Printf("event %d: %d:%d is outside the document", lineNo, ev.Line, ev.Column)
			}
		case "edit":
			buf := ws.Active()
			if buf == nil {
				return fmt.Errorf("event %d: edit with no editor open", lineNo)
			}
			doc, err := a.store.Open(ctx, buf.Document().Path, []byte(ev.Text))
			if err != nil {
				return fmt.Errorf("event %d: %w", lineNo, err)
			}
			buf.Replace(doc)
		case "sleep":
			// Let pending updates land before the next event.
			sched.Wait()
			time.Sleep(time.Duration(ev.Ms) * time.Millisecond)
		default:
			return fmt.Errorf("event %d: unknown event %q", lineNo, ev.Event)
		}
	}
	if err := scanner.Err(); err != nil {
		return fmt.Errorf("reading events: %w", err)
	}
	sched.Wait()
	return nil
}

// newLabelPrinter returns a publisher hook that prints the current label.
// Hooks of concurrent publishes may run after a newer label is stored, so a
// label equal to the last printed one is skipped.
func newLabelPrinter(w io.Writer, current func() string) func() {
	var mu sync.Mutex
	last := ""
	return func() {
		mu.Lock()
		defer mu.Unlock()
		label := current()
		if label == last {
			return
		}
		last = label
		_, _ = fmt.Fprintln(w, label)
	}
}
