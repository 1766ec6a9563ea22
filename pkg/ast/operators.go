package ast

import (
	"math"

	"github.com/sandrolain/gobinding/pkg/observation"
	"github.com/sandrolain/gobinding/pkg/scope"
	"github.com/sandrolain/gobinding/pkg/types"
)

// Unary applies a prefix operator: void, typeof, !, - or +.
type Unary struct {
	base
	Operation  string
	Expression Node
}

// Kind implements Node.
func (n *Unary) Kind() Kind { return KindUnary }

// Evaluate implements Node.
func (n *Unary) Evaluate(f types.Flags, s *scope.Scope, l ServiceLocator, c observation.Connectable) (interface{}, error) {
	v, err := n.Expression.Evaluate(f, s, l, c)
	if err != nil {
		return nil, err
	}
	switch n.Operation {
	case "void":
		return nil, nil
	case "typeof":
		return TypeOf(v), nil
	case "!":
		return !Truthy(v), nil
	case "-":
		return -ToNumber(v), nil
	case "+":
		return ToNumber(v), nil
	}
	return nil, types.Errorf(types.ErrUnknownOperator, "unknown unary operator %q", n.Operation)
}

// Binary applies an infix operator. &&, || and ?? short-circuit.
type Binary struct {
	base
	Operation string
	Left      Node
	Right     Node
}

// Kind implements Node.
func (n *Binary) Kind() Kind { return KindBinary }

// Evaluate implements Node.
func (n *Binary) Evaluate(f types.Flags, s *scope.Scope, l ServiceLocator, c observation.Connectable) (interface{}, error) {
	left, err := n.Left.Evaluate(f, s, l, c)
	if err != nil {
		return nil, err
	}
	switch n.Operation {
	case "&&":
		if !Truthy(left) {
			return left, nil
		}
		return n.Right.Evaluate(f, s, l, c)
	case "||":
		if Truthy(left) {
			return left, nil
		}
		return n.Right.Evaluate(f, s, l, c)
	case "??":
		if !types.IsNullish(left) {
			return left, nil
		}
		return n.Right.Evaluate(f, s, l, c)
	}
	right, err := n.Right.Evaluate(f, s, l, c)
	if err != nil {
		return nil, err
	}
	return binaryOp(f, n.Operation, left, right)
}

func binaryOp(f types.Flags, op string, left, right interface{}) (interface{}, error) {
	switch op {
	case "==":
		return LooseEqual(left, right), nil
	case "!=":
		return !LooseEqual(left, right), nil
	case "===":
		return StrictEqual(left, right), nil
	case "!==":
		return !StrictEqual(left, right), nil
	case "<":
		c, ok := compare(left, right)
		return ok && c < 0, nil
	case ">":
		c, ok := compare(left, right)
		return ok && c > 0, nil
	case "<=":
		c, ok := compare(left, right)
		return ok && c <= 0, nil
	case ">=":
		c, ok := compare(left, right)
		return ok && c >= 0, nil
	case "+":
		if f.Has(types.FlagStrict) {
			return add(left, right), nil
		}
		return looseAdd(left, right), nil
	case "-":
		return ToNumber(left) - ToNumber(right), nil
	case "*":
		return ToNumber(left) * ToNumber(right), nil
	case "/":
		return ToNumber(left) / ToNumber(right), nil
	case "%":
		return math.Mod(ToNumber(left), ToNumber(right)), nil
	case "**":
		return math.Pow(ToNumber(left), ToNumber(right)), nil
	case "in":
		if !observation.IsObjectLike(right) {
			return false, nil
		}
		key := keyOf(left)
		switch col := observation.Unwrap(right).(type) {
		case *observation.Map:
			return col.Has(left), nil
		case *observation.Set:
			return col.Has(left), nil
		}
		return observation.HasProperty(observation.Unwrap(right), key), nil
	case "instanceof":
		return instanceOf(left, right), nil
	}
	return nil, types.Errorf(types.ErrUnknownOperator, "unknown binary operator %q", op)
}

// instanceOf reports whether the prototype chain of left contains right.
func instanceOf(left, right interface{}) bool {
	proto, ok := observation.Unwrap(right).(*observation.Object)
	if !ok {
		return false
	}
	obj, ok := observation.Unwrap(left).(*observation.Object)
	if !ok {
		return false
	}
	for p := obj.Proto(); p != nil; p = p.Proto() {
		if p == proto {
			return true
		}
	}
	return false
}

// Conditional is Condition ? Yes : No.
type Conditional struct {
	base
	Condition Node
	Yes       Node
	No        Node
}

// Kind implements Node.
func (n *Conditional) Kind() Kind { return KindConditional }

// Evaluate implements Node.
func (n *Conditional) Evaluate(f types.Flags, s *scope.Scope, l ServiceLocator, c observation.Connectable) (interface{}, error) {
	cond, err := n.Condition.Evaluate(f, s, l, c)
	if err != nil {
		return nil, err
	}
	if Truthy(cond) {
		return n.Yes.Evaluate(f, s, l, c)
	}
	return n.No.Evaluate(f, s, l, c)
}

// Assign writes Value through Target. Operation is one of = += -= *= /=.
type Assign struct {
	base
	Target    Node
	Value     Node
	Operation string
}

// Kind implements Node.
func (n *Assign) Kind() Kind { return KindAssign }

// Evaluate implements Node.
func (n *Assign) Evaluate(f types.Flags, s *scope.Scope, l ServiceLocator, c observation.Connectable) (interface{}, error) {
	value, err := n.Value.Evaluate(f, s, l, c)
	if err != nil {
		return nil, err
	}
	if n.Operation != "" && n.Operation != "=" {
		current, err := n.Target.Evaluate(f, s, l, c)
		if err != nil {
			return nil, err
		}
		if value, err = binaryOp(f, n.Operation[:len(n.Operation)-1], current, value); err != nil {
			return nil, err
		}
	}
	return n.Target.Assign(f, s, l, value)
}

// Assign implements Node. The value is written through both sides, which
// makes chained assignments such as a = b = c work in two-way bindings.
func (n *Assign) Assign(f types.Flags, s *scope.Scope, l ServiceLocator, value interface{}) (interface{}, error) {
	if _, err := n.Value.Assign(f, s, l, value); err != nil {
		return nil, err
	}
	return n.Target.Assign(f, s, l, value)
}

// ArrowFunction evaluates to a function. Each call evaluates Body in a child
// scope binding Params to the call arguments; with Rest set, the last
// parameter collects the remaining arguments into an array.
type ArrowFunction struct {
	base
	Params []*BindingIdentifier
	Body   Node
	Rest   bool
}

// Kind implements Node.
func (n *ArrowFunction) Kind() Kind { return KindArrowFunction }

// Evaluate implements Node.
func (n *ArrowFunction) Evaluate(f types.Flags, s *scope.Scope, l ServiceLocator, c observation.Connectable) (interface{}, error) {
	return observation.Func(func(_ interface{}, args ...interface{}) (interface{}, error) {
		kv := make([]interface{}, 0, 2*len(n.Params))
		for i, p := range n.Params {
			if n.Rest && i == len(n.Params)-1 {
				var rest []interface{}
				if i < len(args) {
					rest = append(rest, args[i:]...)
				}
				kv = append(kv, p.Name, observation.NewArray(rest...))
				break
			}
			kv = append(kv, p.Name, arg(args, i))
		}
		return n.Body.Evaluate(f, scope.FromParent(s, observation.ObjectOf(kv...)), l, c)
	}), nil
}
