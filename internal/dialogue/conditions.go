package dialogue

import (
	"fmt"
	"strings"

	"github.com/expr-lang/expr"
	"github.com/expr-lang/expr/vm"
)

// Env is the external state a line or response condition can test.
//
//	score >= 30 && !authorized
//	visible.name && checkout.SodaCan == 2
//	chosen > 0
type Env struct {
	Score      int
	Scanned    bool
	Authorized bool
	Visible    map[string]bool // access field name -> visible
	Checkout   map[string]int  // item category -> count in checkout
	Requested  int             // number of requested items
	Chosen     int             // responses already chosen on the current line
}

func (e Env) vars() map[string]any {
	visible := e.Visible
	if visible == nil {
		visible = map[string]bool{}
	}
	checkout := e.Checkout
	if checkout == nil {
		checkout = map[string]int{}
	}
	return map[string]any{
		"score":      e.Score,
		"scanned":    e.Scanned,
		"authorized": e.Authorized,
		"visible":    visible,
		"checkout":   checkout,
		"requested":  e.Requested,
		"chosen":     e.Chosen,
	}
}

// Conditions compiles and caches condition expressions.
type Conditions struct {
	programs map[string]*vm.Program
}

// NewConditions returns an empty cache.
func NewConditions() *Conditions {
	return &Conditions{programs: make(map[string]*vm.Program)}
}

// Compile checks that src is a valid boolean expression over Env.
func (c *Conditions) Compile(src string) error {
	_, err := c.program(strings.TrimSpace(src))
	return err
}

// Eval evaluates src against env. An empty condition is true.
func (c *Conditions) Eval(src string, env Env) (bool, error) {
	src = strings.TrimSpace(src)
	if src == "" {
		return true, nil
	}
	program, err := c.program(src)
	if err != nil {
		return false, err
	}
	output, err := expr.Run(program, env.vars())
	if err != nil {
		return false, fmt.Errorf("eval condition %q: %w", src, err)
	}
	result, ok := output.(bool)
	if !ok {
		return false, fmt.Errorf("condition %q did not return bool (got %T)", src, output)
	}
	return result, nil
}

func (c *Conditions) program(src string) (*vm.Program, error) {
	if src == "" {
		return nil, nil
	}
	if p, ok := c.programs[src]; ok {
		return p, nil
	}
	p, err := expr.Compile(src, expr.Env(Env{}.vars()), expr.AsBool())
	if err != nil {
		return nil, fmt.Errorf("compile condition %q: %w", src, err)
	}
	c.programs[src] = p
	return p, nil
}
