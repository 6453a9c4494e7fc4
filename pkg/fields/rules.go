package fields

import (
	"errors"
	"fmt"
	"strings"

	"github.com/expr-lang/expr"
	"github.com/expr-lang/expr/vm"

	"github.com/goliatone/go-schemafields/pkg/node"
)

// Rule is a boolean expression evaluated against the deserialized value,
// exposed to the expression as `value`. Message is reported when it yields
// false.
type Rule struct {
	Expr    string `json:"expr" yaml:"expr"`
	Message string `json:"message,omitempty" yaml:"message,omitempty"`
}

// Compile builds a node.Validator for the rule.
func (r Rule) Compile() (node.Validator, error) {
	expression := strings.TrimSpace(r.Expr)
	if expression == "" {
		return nil, errors.New("rule expression is empty")
	}
	program, err := expr.Compile(expression, expr.Env(ruleEnv{}), expr.AsBool())
	if err != nil {
		return nil, fmt.Errorf("compile rule %q: %w", expression, err)
	}
	message := r.Message
	if message == "" {
		message = fmt.Sprintf("Failed rule %q", expression)
	}
	return ruleValidator{program: program, message: message}, nil
}

type ruleEnv struct {
	Value any `expr:"value"`
}

type ruleValidator struct {
	program *vm.Program
	message string
}

func (v ruleValidator) Validate(n *node.Node, value any) error {
	out, err := expr.Run(v.program, ruleEnv{Value: value})
	if err != nil {
		return node.NewInvalid(n, fmt.Sprintf("%s (%v)", v.message, err))
	}
	if ok, _ := out.(bool); !ok {
		return node.NewInvalid(n, v.message)
	}
	return nil
}
