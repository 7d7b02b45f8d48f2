package transform

import (
	"fmt"

	"github.com/expr-lang/expr"
	"github.com/expr-lang/expr/vm"
)

// exprSelector evaluates a compiled expression against each record. The
// program is compiled once at construction and run per record.
type exprSelector struct {
	src     string
	program *vm.Program
}

// Expr compiles an expression into a Selector. The record is the
// evaluation environment, so map-shaped records expose their fields as
// variables, e.g. Expr("price * quantity"). Undefined variables are
// allowed and make the whole expression evaluate to absent rather than
// failing the record.
func Expr(src string) (Selector, error) {
	program, err := expr.Compile(src, expr.AllowUndefinedVariables())
	if err != nil {
		return nil, fmt.Errorf("transform: compile %q: %w", src, err)
	}
	return &exprSelector{src: src, program: program}, nil
}

// MustExpr is Expr for expressions known good at build time; it panics
// on compile errors.
func MustExpr(src string) Selector {
	sel, err := Expr(src)
	if err != nil {
		panic(err)
	}
	return sel
}

func (s *exprSelector) Select(record any) (any, error) {
	out, err := expr.Run(s.program, record)
	if err != nil {
		// Missing fields surface as runtime errors for some record
		// shapes; treat the value as absent instead of failing the
		// record.
		return nil, nil
	}
	return out, nil
}
