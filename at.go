package main

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/phobologic/varhint/internal/model"
)

func newAtCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "at FILE LINE:COL",
		Short: "Print the type of the variable at a caret position",
		Long: `Print "<name>: <type>" for the variable at LINE:COL in FILE, or a placeholder
such as "No variable at caret". LINE and COL are 1-based; COL counts characters.`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			line, col, err := parsePosition(args[1])
			if err != nil {
				return err
			}
			doc, err := a.store.Load(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			text := model.NoElement
			if off, ok := doc.Offset(line, col); ok {
				text = a.analyzer.Describe(doc, off)
			}
			_, _ = fmt.Fprintln(a.stdout, text)
			return nil
		},
	}
}

// parsePosition parses "LINE:COL".
func parsePosition(s string) (line, col uint32, err error) {
	l, c, ok := strings.Cut(s, ":")
	if !ok {
		return 0, 0, fmt.Errorf("position %q: want LINE:COL", s)
	}
	ln, err := strconv.ParseUint(l, 10, 32)
	if err != nil || ln == 0 {
		return 0, 0, fmt.Errorf("position %q: invalid line", s)
	}
	cn, err := strconv.ParseUint(c, 10, 32)
	if err != nil || cn == 0 {
		return 0, 0, fmt.Errorf("position %q: invalid column", s)
	}
	return uint32(ln), uint32(cn), nil
}
