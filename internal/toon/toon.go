// Package toon implements TOON (Token-Oriented Object Notation) encoding.
package toon

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/phobologic/varhint/internal/model"
)

var (
	needsQuoting = regexp.MustCompile(`[,:"\\{}\[\]]`)
	looksNumeric = regexp.MustCompile(`^-?(?:0|[1-9]\d*)(?:\.\d+)?$`)
	keywords     = map[string]struct{}{
		"true":  {},
		"false": {},
		"null":  {},
	}
)

// Encode converts a scan Report into TOON format.
func Encode(rep *model.Report) string {
	var parts []string

	parts = append(parts, fmt.Sprintf("repo: %s", encodeValue(rep.RepoName)))
	parts = append(parts, fmt.Sprintf("root: %s", encodeValue(rep.Root)))

	var fileRows [][]string
	for i := range rep.Files {
		fb := &rep.Files[i]
		fileRows = append(fileRows, []string{
			fb.Path,
			fb.Language,
			strconv.Itoa(len(fb.Bindings)),
		})
	}
	parts = append(parts, formatTabular("files", []string{"path", "language", "bindings"}, fileRows))

	parts = append(parts, EncodeBindings(rep.Files))
	return strings.Join(parts, "\n")
}

// EncodeBindings renders the bindings of the given files as a single TOON
// table.
func EncodeBindings(files []model.FileBindings) string {
	var rows [][]string
	for i := range files {
		for _, b := range files[i].Bindings {
			rows = append(rows, []string{
				b.File,
				b.Name,
				strconv.Itoa(b.Line),
				strconv.Itoa(b.Column),
				b.Scope,
				b.Label,
			})
		}
	}
	return formatTabular("bindings", []string{"file", "name", "line", "column", "scope", "type"}, rows)
}

func formatTabular(name string, columns []string, rows [][]string) string {
	var b strings.Builder
	fmt.Fprintf(&b, "%s[%d]{%s}:", name, len(rows), strings.Join(columns, ","))
	for _, row := range rows {
		encoded := make([]string, len(row))
		for i, cell := range row {
			encoded[i] = encodeValue(cell)
		}
		fmt.Fprintf(&b, "\n  %s", strings.Join(encoded, ","))
	}
	return b.String()
}

func encodeValue(value string) string {
	if value == "" {
		return `""`
	}

	if value != strings.TrimSpace(value) {
		return quote(value)
	}

	if strings.ContainsAny(value, "\n\r\t") {
		return quote(value)
	}

	if _, ok := keywords[strings.ToLower(value)]; ok {
		return quote(value)
	}

	if looksNumeric.MatchString(value) {
		return value
	}

	if needsQuoting.MatchString(value) {
		return quote(value)
	}

	if strings.HasPrefix(value, "-") {
		return quote(value)
	}

	return value
}

func quote(value string) string {
	escaped := strings.ReplaceAll(value, `\`, `\\`)
	escaped = strings.ReplaceAll(escaped, `"`, `\"`)
	escaped = strings.ReplaceAll(escaped, "\n", `\n`)
	escaped = strings.ReplaceAll(escaped, "\r", `\r`)
	escaped = strings.ReplaceAll(escaped, "\t", `\t`)
	return `"` + escaped + `"`
}
