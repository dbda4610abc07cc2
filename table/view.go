package table

// State is the single thing a View displays.
type State int

const (
	StateLoading State = iota + 1
	StateError
	StateEmpty
	StateRows
)

func (s State) String() string {
	switch s {
	case StateLoading:
		return "loading"
	case StateError:
		return "error"
	case StateEmpty:
		return "empty"
	case StateRows:
		return "rows"
	default:
		return "unknown"
	}
}

const (
	DefaultEmptyMessage   = "No data found"
	DefaultErrorMessage   = "Failed to load data"
	DefaultLoadingMessage = "Loading..."
)

// View is a collection bound to its columns and fetch status.
// Rows may be nil while loading.
type View[T any] struct {
	Rows    []T
	Columns []Column[T]
	Loading bool
	Failed  bool

	// Messages shown for the non-row states. Empty means the default.
	EmptyMessage   string
	ErrorMessage   string
	LoadingMessage string
}

// State resolves the display state: loading wins over error, error over
// empty, and empty over rows.
func (v View[T]) State() State {
	switch {
	case v.Loading:
		return StateLoading
	case v.Failed:
		return StateError
	case len(v.Rows) == 0:
		return StateEmpty
	default:
		return StateRows
	}
}

// Message returns the text for a non-row state, or "" for StateRows.
func (v View[T]) Message() string {
	switch v.State() {
	case StateLoading:
		return or(v.LoadingMessage, DefaultLoadingMessage)
	case StateError:
		return or(v.ErrorMessage, DefaultErrorMessage)
	case StateEmpty:
		return or(v.EmptyMessage, DefaultEmptyMessage)
	default:
		return ""
	}
}

// Headers returns the column headers in order.
func (v View[T]) Headers() []string {
	out := make([]string, len(v.Columns))
	for i, c := range v.Columns {
		out[i] = c.Header
	}
	return out
}

// Cells evaluates every column for every row. It is nil unless the state is
// StateRows.
func (v View[T]) Cells() [][]Cell {
	if v.State() != StateRows {
		return nil
	}
	out := make([][]Cell, len(v.Rows))
	for i, row := range v.Rows {
		cells := make([]Cell, len(v.Columns))
		for j, col := range v.Columns {
			cells[j] = col.cell(row)
		}
		out[i] = cells
	}
	return out
}

func or(s, fallback string) string {
	if s == "" {
		return fallback
	}
	return s
}
