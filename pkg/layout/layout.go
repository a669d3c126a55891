// Package layout computes the split plan for a two-column pane grid.
//
// Panes are numbered from 1 in creation order; pane 1 is the session that
// already exists before any split. Odd panes form the left column top to
// bottom and each even pane sits to the right of the odd pane before it:
//
//	1 2
//	3 4
//	5
package layout

import (
	"errors"
	"fmt"
)

// ErrNoPanes is returned when a plan is requested for fewer than one pane.
var ErrNoPanes = errors.New("layout needs at least one pane")

// Orientation is the axis of a split. A horizontal split puts the new pane
// below its parent; a vertical split puts it to the right.
type Orientation int

const (
	Horizontal Orientation = iota
	Vertical
)

func (o Orientation) String() string {
	switch o {
	case Horizontal:
		return "horizontal"
	case Vertical:
		return "vertical"
	default:
		return fmt.Sprintf("Orientation(%d)", int(o))
	}
}

// SplitOp divides pane Parent and names the new pane Child.
type SplitOp struct {
	Parent      int
	Child       int
	Orientation Orientation
}

func (op SplitOp) String() string {
	return fmt.Sprintf("%d->%d %s", op.Parent, op.Child, op.Orientation)
}

// Plan is an ordered list of splits. Applying it to a single pane yields
// the full grid.
type Plan []SplitOp

// Panes returns the number of panes the plan produces.
func (p Plan) Panes() int { return len(p) + 1 }

// NewPlan builds the plan for n panes. The left column is built first, then
// every column head is split to the right.
func NewPlan(n int) (Plan, error) {
	if n < 1 {
		return nil, ErrNoPanes
	}
	verticalSplits := (n+1)/2 - 1
	secondColumnSplits := n / 2

	plan := make(Plan, 0, n-1)
	for p := 0; p < verticalSplits; p++ {
		plan = append(plan, SplitOp{Parent: 2*p + 1, Child: 2*p + 3, Orientation: Horizontal})
	}
	for p := 0; p < secondColumnSplits; p++ {
		plan = append(plan, SplitOp{Parent: 2*p + 1, Child: 2*p + 2, Orientation: Vertical})
	}
	return plan, nil
}

// Validate checks that every parent exists before it is split and that the
// plan creates exactly panes 1..n.
func Validate(plan Plan, n int) error {
	if n < 1 {
		return ErrNoPanes
	}
	if plan.Panes() != n {
		return fmt.Errorf("plan creates %d panes, want %d", plan.Panes(), n)
	}
	exists := map[int]bool{1: true}
	for i, op := range plan {
		if !exists[op.Parent] {
			return fmt.Errorf("split %d (%s): parent pane %d does not exist yet", i, op, op.Parent)
		}
		if exists[op.Child] {
			return fmt.Errorf("split %d (%s): pane %d already exists", i, op, op.Child)
		}
		if op.Child < 1 || op.Child > n {
			return fmt.Errorf("split %d (%s): pane %d out of range 1..%d", i, op, op.Child, n)
		}
		exists[op.Child] = true
	}
	return nil
}

// Grid is the physical size of the layout.
type Grid struct {
	Rows int
	Cols int
}

// GridFor returns the grid n panes occupy.
func GridFor(n int) Grid {
	if n < 1 {
		return Grid{}
	}
	cols := 2
	if n == 1 {
		cols = 1
	}
	return Grid{Rows: (n + 1) / 2, Cols: cols}
}

// Cell places a pane in the grid. Row and Col are 0-based.
type Cell struct {
	Pane int
	Row  int
	Col  int
}

// Cells returns the position of panes 1..n, in pane order.
func Cells(n int) []Cell {
	out := make([]Cell, 0, max(n, 0))
	for pane := 1; pane <= n; pane++ {
		out = append(out, Cell{Pane: pane, Row: (pane - 1) / 2, Col: (pane - 1) % 2})
	}
	return out
}
