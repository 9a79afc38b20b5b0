package main

import (
	"bytes"
	"fmt"
	"path/filepath"
	"strconv"

	"github.com/olekukonko/tablewriter"
	"github.com/spf13/cobra"

	"github.com/phobologic/varhint/internal/model"
	"github.com/phobologic/varhint/internal/scan"
	"github.com/phobologic/varhint/internal/toon"
)

func newScanCmd(a *app) *cobra.Command {
	var (
		format      string
		maxFiles    int
		maxFileSize int
	)

	cmd := &cobra.Command{
		Use:   "scan [DIR]",
		Short: "List every variable binding under a directory with its type",
		Long: `Parse every Python file under DIR (default: current directory) and print
each binding with its position, scope and inferred type. Files ignored by git
or by a top-level .gitignore are skipped.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if format != "toon" && format != "table" {
				return fmt.Errorf("unsupported format %q (want toon or table)", format)
			}
			root := "."
			if len(args) > 0 {
				root = args[0]
			}
			root, err := filepath.Abs(root)
			if err != nil {
				return fmt.Errorf("resolving root: %w", err)
			}

			size := a.cfg.MaxFileSize
			if cmd.Flags().Changed("max-file-size") {
				size = maxFileSize
			}
			rep, err := scan.New(a.store, a.analyzer).Dir(cmd.Context(), root, scan.Options{
				MaxFiles:    maxFiles,
				MaxFileSize: int64(size),
				Workers:     a.cfg.Workers,
				Warnings:    a.stderr,
			})
			if err != nil {
				return err
			}

			if format == "table" {
				_, _ = fmt.Fprint(a.stdout, renderTable(rep))
				return nil
			}
			_, _ = fmt.Fprintln(a.stdout, toon.Encode(rep))
			return nil
		},
	}

	cmd.Flags().StringVarP(&format, "format", "f", "toon", "output format: toon or table")
	cmd.Flags().IntVarP(&maxFiles, "max-files", "n", 0, "maximum number of files to include")
	cmd.Flags().IntVar(&maxFileSize, "max-file-size", 0, "skip files larger than this many bytes (default from config)")
	return cmd
}

func renderTable(rep *model.Report) string {
	var buf bytes.Buffer

	table := tablewriter.NewWriter(&buf)
	table.SetHeader([]string{"File", "Line", "Name", "Scope", "Type"})
	table.SetBorder(false)
	table.SetCenterSeparator("")
	table.SetAutoWrapText(false)
	table.SetColumnAlignment([]int{
		tablewriter.ALIGN_LEFT,
		tablewriter.ALIGN_RIGHT,
		tablewriter.ALIGN_LEFT,
		tablewriter.ALIGN_LEFT,
		tablewriter.ALIGN_LEFT,
	})

	total := 0
	for _, fb := range rep.Files {
		for _, b := range fb.Bindings {
			table.Append([]string{b.File, strconv.Itoa(b.Line), b.Name, b.Scope, b.Label})
			total++
		}
	}
	table.SetFooter([]string{
		fmt.Sprintf("Total Files %d", len(rep.Files)),
		"",
		fmt.Sprintf("%d", total),
		"",
		"",
	})

	table.Render()
	return buf.String()
}
