package presenter

import (
	"fmt"
	"io"
	"strings"
	"text/tabwriter"
)

// WriteText renders p as plain text for terminals.
func WriteText(w io.Writer, p Page) error {
	var b strings.Builder
	b.WriteString(p.Title)
	b.WriteByte('\n')
	b.WriteString(strings.Repeat("=", len([]rune(p.Title))))
	b.WriteByte('\n')

	if p.Form != nil {
		fmt.Fprintf(&b, "%s: %s\n", p.Form.Label, p.Form.Value)
	}

	switch {
	case p.Placeholder != "":
		b.WriteString(p.Placeholder)
		b.WriteByte('\n')
	case p.Error != "":
		b.WriteString(p.Error)
		b.WriteByte('\n')
	}

	writeCards(&b, p.Cards)
	for _, s := range p.Sections {
		b.WriteByte('\n')
		if s.Heading != "" {
			b.WriteString(s.Heading)
			b.WriteByte('\n')
		}
		if s.Caption != "" {
			b.WriteString(s.Caption)
			b.WriteByte('\n')
		}
		writeCards(&b, s.Cards)
		if len(s.Chips) > 0 {
			b.WriteString(strings.Join(s.Chips, "  "))
			b.WriteByte('\n')
		}
		if s.Table != nil {
			if err := writeTable(&b, s.Table); err != nil {
				return err
			}
		}
	}

	_, err := io.WriteString(w, b.String())
	return err
}

func writeCards(b *strings.Builder, cards []Card) {
	for _, c := range cards {
		fmt.Fprintf(b, "%s: %s\n", c.Label, c.Value)
	}
}

func writeTable(w io.Writer, t *Table) error {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	titles := make([]string, len(t.Columns))
	for i, c := range t.Columns {
		titles[i] = c.Title
	}
	fmt.Fprintln(tw, strings.Join(titles, "\t"))
	for _, row := range t.Rows {
		fmt.Fprintln(tw, strings.Join(row, "\t"))
	}
	return tw.Flush()
}
