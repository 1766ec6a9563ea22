package ast

import (
	"testing"

	"github.com/sandrolain/gobinding/pkg/types"
)

func TestUnparse(t *testing.T) {
	x := &BindingIdentifier{Name: "x"}
	tests := []struct {
		name string
		node Node
		want string
	}{
		{"this", This, "$this"},
		{"parent", Parent, "$parent"},
		{"grandparent", &AccessThis{Ancestor: 2}, "$parent.$parent"},
		{"scope", &AccessScope{Name: "a", Ancestor: 1}, "$parent.a"},
		{"member", &AccessMember{Object: id("a"), Name: "b"}, "a.b"},
		{"keyed", &AccessKeyed{Object: id("a"), Key: num(0)}, "a[0]"},
		{"call scope", &CallScope{Name: "f", Args: []Node{num(1), str("x")}}, "f(1,'x')"},
		{"call member", &CallMember{Object: id("a"), Name: "m"}, "a.m()"},
		{"call function", &CallFunction{Func: id("f"), Args: []Node{True}}, "f(true)"},
		{"string escapes", str("it's\n"), `'it\'s\n'`},
		{"null", Null, "null"},
		{"undefined", Undefined, "undefined"},
		{"number", num(1.5), "1.5"},
		{"array", &ArrayLiteral{Elements: []Node{num(1), num(2)}}, "[1,2]"},
		{"object", &ObjectLiteral{Keys: []string{"a", "b-c"}, Values: []Node{num(1), num(2)}}, "{a:1,'b-c':2}"},
		{"template", &Template{Cooked: []string{"a`", "${"}, Expressions: []Node{id("b")}}, "`a\\`${b}\\${`"},
		{"tagged", &TaggedTemplate{Cooked: []string{"x"}, Func: id("tag")}, "tag`x`"},
		{"unary", &Unary{Operation: "!", Expression: id("a")}, "(!a)"},
		{"typeof", &Unary{Operation: "typeof", Expression: id("a")}, "(typeof a)"},
		{"binary", &Binary{Operation: "+", Left: id("a"), Right: &Binary{Operation: "*", Left: num(2), Right: id("b")}}, "(a + (2 * b))"},
		{"conditional", &Conditional{Condition: id("c"), Yes: num(1), No: num(2)}, "(c ? 1 : 2)"},
		{"assign", &Assign{Target: id("a"), Value: num(1)}, "(a = 1)"},
		{"compound assign", &Assign{Target: id("a"), Value: num(1), Operation: "+="}, "(a += 1)"},
		{"arrow", &ArrowFunction{Params: []*BindingIdentifier{x}, Body: id("x")}, "((x) => x)"},
		{"called arrow", &CallFunction{Func: &ArrowFunction{Params: []*BindingIdentifier{x}, Body: id("x")}, Args: []Node{num(2)}}, "((x) => x)(2)"},
		{"arrow member", &AccessMember{Object: &ArrowFunction{Body: num(1)}, Name: "length"}, "(() => 1).length"},
		{"number member", &CallMember{Object: num(1), Name: "toFixed", Args: []Node{num(2)}}, "(1).toFixed(2)"},
		{"arrow rest", &ArrowFunction{Params: []*BindingIdentifier{x}, Body: id("x"), Rest: true}, "((...x) => x)"},
		{"converter", &ValueConverter{Expression: id("a"), Name: "upper", Args: []Node{num(1)}}, "a | upper:1"},
		{"behavior", &BindingBehavior{Expression: &ValueConverter{Expression: id("a"), Name: "upper"}, Name: "oneTime"}, "a | upper & oneTime"},
		{"interpolation", &Interpolation{Parts: []string{"Hi ", "!"}, Expressions: []Node{id("name")}}, "Hi ${name}!"},
		{"interpolation escapes", &Interpolation{Parts: []string{`a\b ${`, ""}, Expressions: []Node{id("x")}}, `a\\b \${${x}`},
		{"for of", &ForOfStatement{Declaration: x, Iterable: id("items")}, "x of items"},
		{"array pattern", &ArrayBindingPattern{Elements: []Node{x, &BindingIdentifier{Name: "y"}}}, "[x,y]"},
		{"array pattern holes", &ArrayBindingPattern{Elements: []Node{Undefined, x, Undefined}}, "[,x,]"},
		{"object pattern", &ObjectBindingPattern{Keys: []string{"x", "k"}, Values: []Node{x, &BindingIdentifier{Name: "v"}}}, "{x,k:v}"},
		{"custom", &Custom{Value: "anything goes"}, "anything goes"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Unparse(tt.node); got != tt.want {
				t.Errorf("Unparse = %q, want %q", got, tt.want)
			}
		})
	}
}

type kindCounter struct{ counts map[Kind]int }

func (k *kindCounter) count(n Node) int {
	k.counts[n.Kind()]++
	return k.counts[n.Kind()]
}

func (k *kindCounter) VisitAccessThis(n *AccessThis) int                     { return k.count(n) }
func (k *kindCounter) VisitAccessScope(n *AccessScope) int                   { return k.count(n) }
func (k *kindCounter) VisitAccessMember(n *AccessMember) int                 { return k.count(n) }
func (k *kindCounter) VisitAccessKeyed(n *AccessKeyed) int                   { return k.count(n) }
func (k *kindCounter) VisitCallScope(n *CallScope) int                       { return k.count(n) }
func (k *kindCounter) VisitCallMember(n *CallMember) int                     { return k.count(n) }
func (k *kindCounter) VisitCallFunction(n *CallFunction) int                 { return k.count(n) }
func (k *kindCounter) VisitArrayLiteral(n *ArrayLiteral) int                 { return k.count(n) }
func (k *kindCounter) VisitObjectLiteral(n *ObjectLiteral) int               { return k.count(n) }
func (k *kindCounter) VisitPrimitiveLiteral(n *PrimitiveLiteral) int         { return k.count(n) }
func (k *kindCounter) VisitTemplate(n *Template) int                         { return k.count(n) }
func (k *kindCounter) VisitTaggedTemplate(n *TaggedTemplate) int             { return k.count(n) }
func (k *kindCounter) VisitUnary(n *Unary) int                               { return k.count(n) }
func (k *kindCounter) VisitBinary(n *Binary) int                             { return k.count(n) }
func (k *kindCounter) VisitConditional(n *Conditional) int                   { return k.count(n) }
func (k *kindCounter) VisitAssign(n *Assign) int                             { return k.count(n) }
func (k *kindCounter) VisitArrowFunction(n *ArrowFunction) int               { return k.count(n) }
func (k *kindCounter) VisitValueConverter(n *ValueConverter) int             { return k.count(n) }
func (k *kindCounter) VisitBindingBehavior(n *BindingBehavior) int           { return k.count(n) }
func (k *kindCounter) VisitInterpolation(n *Interpolation) int               { return k.count(n) }
func (k *kindCounter) VisitForOfStatement(n *ForOfStatement) int             { return k.count(n) }
func (k *kindCounter) VisitBindingIdentifier(n *BindingIdentifier) int       { return k.count(n) }
func (k *kindCounter) VisitArrayBindingPattern(n *ArrayBindingPattern) int   { return k.count(n) }
func (k *kindCounter) VisitObjectBindingPattern(n *ObjectBindingPattern) int { return k.count(n) }
func (k *kindCounter) VisitCustom(n *Custom) int                             { return k.count(n) }

func TestAcceptEveryKind(t *testing.T) {
	nodes := []Node{
		This, id("a"), &AccessMember{Object: id("a")}, &AccessKeyed{Object: id("a"), Key: num(0)},
		&CallScope{}, &CallMember{Object: id("a")}, &CallFunction{Func: id("f")},
		EmptyArray, EmptyObject, True, &Template{Cooked: []string{""}}, &TaggedTemplate{Cooked: []string{""}, Func: id("f")},
		&Unary{Operation: "!", Expression: True}, &Binary{Operation: "+", Left: True, Right: True},
		&Conditional{Condition: True, Yes: True, No: True}, &Assign{Target: id("a"), Value: True},
		&ArrowFunction{Body: True}, &ValueConverter{Expression: True}, &BindingBehavior{Expression: True},
		&Interpolation{Parts: []string{"", ""}, Expressions: []Node{True}},
		&ForOfStatement{Declaration: &BindingIdentifier{}, Iterable: id("a")}, &BindingIdentifier{},
		&ArrayBindingPattern{}, &ObjectBindingPattern{}, &Custom{},
	}
	v := &kindCounter{counts: map[Kind]int{}}
	for _, n := range nodes {
		if Accept[int](n, v) != 1 {
			t.Errorf("kind %s visited more than once", n.Kind())
		}
	}
	if len(v.counts) != int(KindCustom)+1 {
		t.Errorf("visited %d kinds, want %d", len(v.counts), int(KindCustom)+1)
	}
	for k := KindAccessThis; k <= KindCustom; k++ {
		if k.String() == "Unknown" {
			t.Errorf("kind %d has no name", k)
		}
	}
}

func TestWalk(t *testing.T) {
	// a.b(c, d => d + 1) | conv:e
	node := &ValueConverter{
		Expression: &CallMember{Object: id("a"), Name: "b", Args: []Node{
			id("c"),
			&ArrowFunction{Params: []*BindingIdentifier{{Name: "d"}}, Body: &Binary{Operation: "+", Left: id("d"), Right: num(1)}},
		}},
		Name: "conv",
		Args: []Node{id("e")},
	}
	var names []string
	Walk(node, func(n Node) bool {
		if s, ok := n.(*AccessScope); ok {
			names = append(names, s.Name)
		}
		return true
	})
	want := []string{"a", "c", "d", "e"}
	if len(names) != len(want) {
		t.Fatalf("walked names %v, want %v", names, want)
	}
	for i := range want {
		if names[i] != want[i] {
			t.Fatalf("walked names %v, want %v", names, want)
		}
	}

	visited := 0
	Walk(node, func(Node) bool {
		visited++
		return false
	})
	if visited != 1 {
		t.Errorf("pruned walk visited %d nodes, want 1", visited)
	}
}

func TestSingletonsEvaluate(t *testing.T) {
	s := scopeOf()
	for _, tt := range []struct {
		node Node
		want interface{}
	}{
		{True, true}, {False, false}, {Null, types.NullValue}, {Undefined, nil}, {EmptyString, ""},
	} {
		if got := eval(t, tt.node, s, types.FlagNone); got != tt.want {
			t.Errorf("%s = %#v, want %#v", Unparse(tt.node), got, tt.want)
		}
	}
}
