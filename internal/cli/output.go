package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/fatih/color"

	"github.com/goliatone/go-openc2/pkg/validation"
)

// Printer writes status lines, JSON and tables to a pair of writers.
type Printer struct {
	out io.Writer
	err io.Writer

	success *color.Color
	failure *color.Color
	info    *color.Color
	warn    *color.Color
	header  *color.Color
}

// NewPrinter returns a printer writing regular output to out and errors to
// errOut. Colour is disabled when noColor is set.
func NewPrinter(out, errOut io.Writer, noColor bool) *Printer {
	p := &Printer{
		out:     out,
		err:     errOut,
		success: color.New(color.FgGreen, color.Bold),
		failure: color.New(color.FgRed, color.Bold),
		info:    color.New(color.FgCyan),
		warn:    color.New(color.FgYellow),
		header:  color.New(color.FgWhite, color.Bold),
	}
	if noColor {
		for _, c := range []*color.Color{p.success, p.failure, p.info, p.warn, p.header} {
			c.DisableColor()
		}
	}
	return p
}

func (p *Printer) Success(format string, a ...any) {
	p.success.Fprintf(p.out, "✓ "+format+"\n", a...)
}

func (p *Printer) Error(format string, a ...any) {
	p.failure.Fprintf(p.err, "✗ "+format+"\n", a...)
}

func (p *Printer) Info(format string, a ...any) {
	p.info.Fprintf(p.out, format+"\n", a...)
}

func (p *Printer) Warn(format string, a ...any) {
	p.warn.Fprintf(p.err, "⚠ "+format+"\n", a...)
}

// Raw writes text followed by a newline.
func (p *Printer) Raw(text string) {
	fmt.Fprintln(p.out, text)
}

// JSON writes v with two-space indentation.
func (p *Printer) JSON(v any) error {
	enc := json.NewEncoder(p.out)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// Report prints a validation result: a success line, or one error line per
// issue.
func (p *Printer) Report(label string, result validation.Result) {
	if result.Valid {
		if result.Type != "" {
			p.Success("%s: valid %s", label, result.Type)
		} else {
			p.Success("%s: valid", label)
		}
		return
	}
	for _, issue := range result.Issues {
		where := issue.Field
		if where == "" {
			where = issue.Path
		}
		msg := issue.Message
		if where != "" {
			msg = where + ": " + msg
		}
		if issue.Kind != "" {
			msg = "[" + issue.Kind + "] " + msg
		}
		p.Error("%s: %s (%s)", label, msg, issue.Source)
	}
}

// Table collects rows and renders them as aligned columns.
type Table struct {
	headers []string
	rows    [][]string
}

func NewTable(headers ...string) *Table {
	return &Table{headers: headers}
}

func (t *Table) AddRow(row ...string) {
	t.rows = append(t.rows, row)
}

// Render writes the table through p.
func (t *Table) Render(p *Printer) {
	widths := make([]int, len(t.headers))
	for i, header := range t.headers {
		widths[i] = len(header)
	}
	for _, row := range t.rows {
		for i, cell := range row {
			if i < len(widths) && len(cell) > widths[i] {
				widths[i] = len(cell)
			}
		}
	}

	for i, header := range t.headers {
		p.header.Fprintf(p.out, "%-*s  ", widths[i], header)
	}
	fmt.Fprintln(p.out)
	for i := range t.headers {
		fmt.Fprint(p.out, strings.Repeat("-", widths[i])+"  ")
	}
	fmt.Fprintln(p.out)
	for _, row := range t.rows {
		for i, cell := range row {
			if i < len(widths) {
				fmt.Fprintf(p.out, "%-*s  ", widths[i], cell)
			}
		}
		fmt.Fprintln(p.out)
	}
}
