package postgres

import (
	"fmt"
	"strings"
)

// where accumulates AND-ed predicates with positional args.
type where struct {
	clauses []string
	args    []any
}

func (w *where) add(clause string, arg any) {
	w.args = append(w.args, arg)
	w.clauses = append(w.clauses, fmt.Sprintf(clause, len(w.args)))
}

func (w *where) sql() string {
	return strings.Join(w.clauses, " AND ")
}

// next returns the placeholder index for the following arg.
func (w *where) next() int { return len(w.args) + 1 }

func toStrings[S ~string](in []S) []string {
	out := make([]string, len(in))
	for i, s := range in {
		out[i] = string(s)
	}
	return out
}
