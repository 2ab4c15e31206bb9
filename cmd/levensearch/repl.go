package main

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"LevenSearch/internal/host"
	"LevenSearch/internal/protocol"
)

var replCmd = &cobra.Command{
	Use:   "repl FILE",
	Short: "Search FILE interactively; repeat a query to step through matches",
	Long: `Each line is "WORD [K]". Submitting the same query again moves to the
next match; an empty line repeats the last query. ":reset" clears the
search and ":quit" exits. FILE is re-read when it changes on disk.`,
	Args: cobra.ExactArgs(1),
	RunE: runREPL,
}

func runREPL(cmd *cobra.Command, args []string) error {
	doc, err := host.OpenFileDocument(args[0], logger)
	if err != nil {
		return err
	}
	defer doc.Close()

	mgr, err := newManager()
	if err != nil {
		return err
	}
	sess, err := mgr.Create("repl", doc)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	hl := host.NewTerminalHighlighter(out, doc, useColor(os.Stdout))
	h := protocol.NewHandler(sess, hl, cfg.Search.DefaultMaxDistance, logger)

	ctx, cancel := context.WithCancel(cmd.Context())
	defer cancel()
	go func() {
		for {
			select {
			case <-ctx.Done():
				return
			case <-doc.Changes():
				logger.Info("document changed on disk; next query rescans", "path", doc.Path())
			}
		}
	}()

	r := &repl{
		handler: h,
		out:     out,
		prompt:  term.IsTerminal(int(os.Stdin.Fd())),
	}
	return r.run(ctx, cmd.InOrStdin())
}

type repl struct {
	handler *protocol.Handler
	out     io.Writer
	prompt  bool
	last    *protocol.Request
}

var errQuit = errors.New("quit")

func (r *repl) run(ctx context.Context, in io.Reader) error {
	sc := bufio.NewScanner(in)
	for {
		if r.prompt {
			fmt.Fprint(r.out, "> ")
		}
		if !sc.Scan() {
			return sc.Err()
		}
		if err := r.line(ctx, sc.Text()); err != nil {
			if errors.Is(err, errQuit) {
				return nil
			}
			fmt.Fprintf(r.out, "error: %v\n", err)
		}
	}
}

func (r *repl) line(ctx context.Context, line string) error {
	line = strings.TrimSpace(line)
	switch line {
	case ":quit", ":q":
		return errQuit
	case ":reset":
		r.last = nil
		return r.send(ctx, protocol.Reset())
	case "":
		if r.last == nil {
			return nil
		}
		return r.send(ctx, *r.last)
	}

	req, err := parseQuery(line)
	if err != nil {
		return err
	}
	r.last = &req
	return r.send(ctx, req)
}

func (r *repl) send(ctx context.Context, req protocol.Request) error {
	resp, err := r.handler.Handle(ctx, req)
	if err != nil {
		return err
	}
	fmt.Fprintln(r.out, resp.Status)
	return nil
}

// parseQuery parses "WORD [K]". Without K the configured default applies.
func parseQuery(line string) (protocol.Request, error) {
	fields := strings.Fields(line)
	req := protocol.Request{Command: protocol.CommandSearch, Query: fields[0]}
	switch len(fields) {
	case 1:
	case 2:
		k, err := strconv.Atoi(fields[1])
		if err != nil {
			return protocol.Request{}, fmt.Errorf("max distance %q is not a number", fields[1])
		}
		req.MaxDistance = &k
	default:
		return protocol.Request{}, fmt.Errorf("expected WORD [K], got %d fields", len(fields))
	}
	return req, nil
}
