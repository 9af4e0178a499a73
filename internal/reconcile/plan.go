package reconcile

import (
	"fmt"
	"io"

	"mdblog/pkg/models"
)

type ActionKind string

const (
	ActionDelete ActionKind = "delete"
	ActionInsert ActionKind = "insert"
	ActionUpdate ActionKind = "update"
	ActionKeep   ActionKind = "keep"
)

// Action is one step of a Plan. Article holds the state the store should
// end up with (for deletes, the row being removed).
type Action struct {
	Kind           ActionKind
	Article        models.Article
	ContentChanged bool
	TitleChanged   bool
}

// Plan is the ordered list of actions for one run: deletes first, then one
// action per file in directory order.
type Plan struct {
	Actions []Action
}

// Count returns how many actions of kind the plan holds.
func (p *Plan) Count(kind ActionKind) int {
	n := 0
	for _, a := range p.Actions {
		if a.Kind == kind {
			n++
		}
	}
	return n
}

// Print writes a human readable listing, one action per line.
func (p *Plan) Print(w io.Writer) error {
	for _, a := range p.Actions {
		if _, err := fmt.Fprintf(w, "%-6s  %-36s  %-24s  %s\n", a.Kind, a.Article.ID, a.Article.Filename, a.Article.Title); err != nil {
			return err
		}
	}
	_, err := fmt.Fprintf(w, "%d to delete, %d to insert, %d to update, %d unchanged\n",
		p.Count(ActionDelete), p.Count(ActionInsert), p.Count(ActionUpdate), p.Count(ActionKeep))
	return err
}
