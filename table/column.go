// Package table renders collections as tables with explicit loading, error
// and empty states.
package table

import (
	"fmt"
	"html/template"
)

// Kind tells which variant a Column is.
type Kind int

const (
	// KindField columns print a value read from the row.
	KindField Kind = iota + 1
	// KindRender columns produce their own cell markup.
	KindRender
)

// Column describes one table column. Build it with Field or Render.
type Column[T any] struct {
	Header string
	kind   Kind
	field  func(T) any
	render func(T) Cell
}

// Cell is the output of a Render column: plain text for text output and
// trusted markup for HTML output.
type Cell struct {
	Text string
	HTML template.HTML
}

// Text returns a Cell whose HTML is the escaped text.
func Text(s string) Cell {
	return Cell{Text: s, HTML: template.HTML(template.HTMLEscapeString(s))}
}

// Field is a column that prints the accessor's value.
func Field[T any](header string, accessor func(T) any) Column[T] {
	return Column[T]{Header: header, kind: KindField, field: accessor}
}

// Render is a column that builds its own cell.
func Render[T any](header string, fn func(T) Cell) Column[T] {
	return Column[T]{Header: header, kind: KindRender, render: fn}
}

// Kind returns the column variant.
func (c Column[T]) Kind() Kind {
	return c.kind
}

// cell evaluates the column for one row.
func (c Column[T]) cell(row T) Cell {
	switch c.kind {
	case KindField:
		return Text(format(c.field(row)))
	case KindRender:
		return c.render(row)
	default:
		panic(fmt.Sprintf("table: column %q was not built with Field or Render", c.Header))
	}
}

func format(v any) string {
	switch x := v.(type) {
	case nil:
		return ""
	case *string:
		if x == nil {
			return ""
		}
		return *x
	case fmt.Stringer:
		return x.String()
	default:
		return fmt.Sprint(x)
	}
}
