package gateway

import (
	"fmt"
	"sync"

	"github.com/expr-lang/expr"
	"github.com/expr-lang/expr/vm"
)

// RowFilter evaluates a boolean filter expression against one row, used by
// list requests. Compiled programs are cached by expression string; the
// cache is shared across concurrent requests.
type RowFilter struct {
	mu    sync.Mutex
	cache map[string]*vm.Program
}

func NewRowFilter() *RowFilter {
	return &RowFilter{cache: make(map[string]*vm.Program)}
}

// Matches returns true if the row satisfies the expression. The row's
// fields are the expression environment.
func (f *RowFilter) Matches(expression string, row map[string]any) (bool, error) {
	f.mu.Lock()
	prog, ok := f.cache[expression]
	if !ok {
		var err error
		prog, err = expr.Compile(expression, expr.AsBool(), expr.AllowUndefinedVariables())
		if err != nil {
			f.mu.Unlock()
			return false, fmt.Errorf("compile filter: %w", err)
		}
		f.cache[expression] = prog
	}
	f.mu.Unlock()

	result, err := expr.Run(prog, row)
	if err != nil {
		return false, fmt.Errorf("evaluate filter: %w", err)
	}

	matched, ok := result.(bool)
	if !ok {
		return false, fmt.Errorf("filter did not return bool")
	}
	return matched, nil
}
