package table

import (
	"fmt"
	"html/template"
	"io"
	"strings"
	"text/tabwriter"
)

// WriteText writes the view as aligned plain-text columns.
func WriteText[T any](w io.Writer, v View[T]) error {
	if v.State() != StateRows {
		_, err := fmt.Fprintln(w, v.Message())
		return err
	}

	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, strings.Join(v.Headers(), "\t"))
	for _, row := range v.Cells() {
		texts := make([]string, len(row))
		for i, c := range row {
			texts[i] = sanitize(c.Text)
		}
		fmt.Fprintln(tw, strings.Join(texts, "\t"))
	}
	return tw.Flush()
}

// sanitize keeps a cell on one line and out of the tab grid.
func sanitize(s string) string {
	return strings.NewReplacer("\t", " ", "\n", " ", "\r", " ").Replace(s)
}

var htmlTable = template.Must(template.New("table").Parse(`<table class="data-table">
<thead><tr>{{range .Headers}}<th>{{.}}</th>{{end}}</tr></thead>
<tbody>
{{- if .Message}}
<tr><td class="state state-{{.State}}" colspan="{{.Span}}">{{.Message}}</td></tr>
{{- else}}
{{- range .Rows}}
<tr>{{range .}}<td>{{.HTML}}</td>{{end}}</tr>
{{- end}}
{{- end}}
</tbody>
</table>
`))

type htmlData struct {
	Headers []string
	Rows    [][]Cell
	State   string
	Message string
	Span    int
}

// WriteHTML writes the view as an HTML table. Non-row states render as a
// single full-width row holding the state message.
func WriteHTML[T any](w io.Writer, v View[T]) error {
	span := len(v.Columns)
	if span == 0 {
		span = 1
	}
	return htmlTable.Execute(w, htmlData{
		Headers: v.Headers(),
		Rows:    v.Cells(),
		State:   v.State().String(),
		Message: v.Message(),
		Span:    span,
	})
}
