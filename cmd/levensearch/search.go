package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"LevenSearch/internal/host"
	"LevenSearch/internal/protocol"
)

var searchMaxDistance int

var searchCmd = &cobra.Command{
	Use:   "search FILE WORD",
	Short: "Print every fuzzy match of WORD in FILE",
	Args:  cobra.ExactArgs(2),
	RunE:  runSearch,
}

func init() {
	searchCmd.Flags().IntVarP(&searchMaxDistance, "max-distance", "k", -1, "maximum edit distance (default from config)")
}

func runSearch(cmd *cobra.Command, args []string) error {
	path, word := args[0], args[1]

	doc, err := host.OpenFileDocument(path, logger)
	if err != nil {
		return err
	}
	defer doc.Close()

	mgr, err := newManager()
	if err != nil {
		return err
	}
	sess, err := mgr.Create("cli", doc)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	hl := host.NewTerminalHighlighter(out, doc, useColor(os.Stdout))
	h := protocol.NewHandler(sess, nil, cfg.Search.DefaultMaxDistance, logger)

	req := protocol.Request{Command: protocol.CommandSearch, Query: word}
	if cmd.Flags().Changed("max-distance") {
		req.MaxDistance = &searchMaxDistance
	}
	resp, err := h.Handle(cmd.Context(), req)
	if err != nil {
		return err
	}

	// The current match is flagged with "> ", the rest are indented to line up.
	for _, m := range resp.Matches {
		marker := "  "
		if resp.Current != nil && m.Offset == resp.Current.Offset {
			marker = "> "
		}
		if _, err := fmt.Fprint(out, marker); err != nil {
			return err
		}
		if err := hl.Highlight(m); err != nil {
			return err
		}
	}
	fmt.Fprintln(cmd.ErrOrStderr(), resp.Status)
	if resp.Total == 0 {
		return errNoMatches
	}
	return nil
}
