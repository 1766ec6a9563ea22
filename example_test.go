package gobinding_test

import (
	"fmt"

	"github.com/sandrolain/gobinding"
	"github.com/sandrolain/gobinding/pkg/ast"
	"github.com/sandrolain/gobinding/pkg/binding"
	"github.com/sandrolain/gobinding/pkg/observation"
	"github.com/sandrolain/gobinding/pkg/scope"
)

func ExampleEvaluate() {
	data := map[string]interface{}{
		"price": 12.5,
		"qty":   4,
	}
	v, err := gobinding.Evaluate("price * qty", data)
	if err != nil {
		panic(err)
	}
	fmt.Println(v)
	// Output: 50
}

func ExampleCompile() {
	expr := gobinding.MustCompile("user.name | upper & oneTime")
	fmt.Println(expr.Kind())
	fmt.Println(ast.Unparse(expr))
	// Output:
	// BindingBehavior
	// user.name | upper & oneTime
}

func ExampleRuntime_Bind() {
	rt := gobinding.New()
	vm := observation.ObjectOf("first", "Ada", "last", "Lovelace")
	view := observation.ObjectOf("text", "")

	_, err := rt.Bind(scope.Create(vm, nil, false), "first + ' ' + last", view, "text", binding.ToView)
	if err != nil {
		panic(err)
	}
	fmt.Println(view.Get("text"))

	_ = vm.Set("first", "Augusta")
	fmt.Println(view.Get("text"))
	// Output:
	// Ada Lovelace
	// Augusta Lovelace
}

func ExampleRuntime_Bind_twoWay() {
	rt := gobinding.New()
	vm := observation.ObjectOf("name", "ada")
	input := observation.ObjectOf("value", "")

	_, err := rt.Bind(scope.Create(vm, nil, false), "name", input, "value", binding.TwoWay)
	if err != nil {
		panic(err)
	}
	_ = input.Set("value", "grace")
	fmt.Println(vm.Get("name"))
	// Output: grace
}
