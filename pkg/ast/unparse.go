package ast

import (
	"strings"

	"github.com/sandrolain/gobinding/pkg/types"
)

// Unparse renders node back to expression source. Parsing the result yields
// an equivalent tree; operators and arrow functions are fully parenthesized.
func Unparse(node Node) string {
	if node == nil {
		return ""
	}
	return Accept[string](node, unparser{})
}

type unparser struct{}

func (u unparser) list(nodes []Node) string {
	parts := make([]string, len(nodes))
	for i, n := range nodes {
		parts[i] = Accept[string](n, u)
	}
	return strings.Join(parts, ",")
}

func parents(n int) string {
	return strings.Repeat("$parent.", n)
}

func (u unparser) VisitAccessThis(n *AccessThis) string {
	if n.Ancestor == 0 {
		return "$this"
	}
	return strings.TrimSuffix(parents(n.Ancestor), ".")
}

func (u unparser) VisitAccessScope(n *AccessScope) string {
	return parents(n.Ancestor) + n.Name
}

func (u unparser) VisitAccessMember(n *AccessMember) string {
	return u.memberObject(n.Object) + "." + n.Name
}

// memberObject renders the object of a dotted access. A number needs
// parentheses so its dot is not read as a decimal point.
func (u unparser) memberObject(obj Node) string {
	s := Accept[string](obj, u)
	if lit, ok := obj.(*PrimitiveLiteral); ok {
		if _, isNum := lit.Value.(float64); isNum {
			return "(" + s + ")"
		}
	}
	return s
}

func (u unparser) VisitAccessKeyed(n *AccessKeyed) string {
	return Accept[string](n.Object, u) + "[" + Accept[string](n.Key, u) + "]"
}

func (u unparser) VisitCallScope(n *CallScope) string {
	return parents(n.Ancestor) + n.Name + "(" + u.list(n.Args) + ")"
}

func (u unparser) VisitCallMember(n *CallMember) string {
	return u.memberObject(n.Object) + "." + n.Name + "(" + u.list(n.Args) + ")"
}

func (u unparser) VisitCallFunction(n *CallFunction) string {
	return Accept[string](n.Func, u) + "(" + u.list(n.Args) + ")"
}

func (u unparser) VisitArrayLiteral(n *ArrayLiteral) string {
	return "[" + u.list(n.Elements) + "]"
}

func (u unparser) VisitObjectLiteral(n *ObjectLiteral) string {
	parts := make([]string, len(n.Keys))
	for i, k := range n.Keys {
		parts[i] = propertyName(k) + ":" + Accept[string](n.Values[i], u)
	}
	return "{" + strings.Join(parts, ",") + "}"
}

func (u unparser) VisitPrimitiveLiteral(n *PrimitiveLiteral) string {
	switch v := n.Value.(type) {
	case nil:
		return "undefined"
	case types.Null:
		return "null"
	case string:
		return quote(v)
	}
	return ToString(n.Value)
}

func (u unparser) VisitTemplate(n *Template) string {
	return "`" + u.templateBody(n.Cooked, n.Expressions) + "`"
}

func (u unparser) VisitTaggedTemplate(n *TaggedTemplate) string {
	return Accept[string](n.Func, u) + "`" + u.templateBody(n.Cooked, n.Expressions) + "`"
}

func (u unparser) templateBody(cooked []string, exprs []Node) string {
	var sb strings.Builder
	sb.WriteString(escapeTemplate(cooked[0]))
	for i, e := range exprs {
		sb.WriteString("${")
		sb.WriteString(Accept[string](e, u))
		sb.WriteString("}")
		sb.WriteString(escapeTemplate(cooked[i+1]))
	}
	return sb.String()
}

func (u unparser) VisitUnary(n *Unary) string {
	op := n.Operation
	if op == "void" || op == "typeof" {
		op += " "
	}
	return "(" + op + Accept[string](n.Expression, u) + ")"
}

func (u unparser) VisitBinary(n *Binary) string {
	return "(" + Accept[string](n.Left, u) + " " + n.Operation + " " + Accept[string](n.Right, u) + ")"
}

func (u unparser) VisitConditional(n *Conditional) string {
	return "(" + Accept[string](n.Condition, u) + " ? " + Accept[string](n.Yes, u) + " : " + Accept[string](n.No, u) + ")"
}

func (u unparser) VisitAssign(n *Assign) string {
	op := n.Operation
	if op == "" {
		op = "="
	}
	return "(" + Accept[string](n.Target, u) + " " + op + " " + Accept[string](n.Value, u) + ")"
}

func (u unparser) VisitArrowFunction(n *ArrowFunction) string {
	params := make([]string, len(n.Params))
	for i, p := range n.Params {
		params[i] = p.Name
		if n.Rest && i == len(n.Params)-1 {
			params[i] = "..." + p.Name
		}
	}
	return "((" + strings.Join(params, ",") + ") => " + Accept[string](n.Body, u) + ")"
}

func (u unparser) VisitValueConverter(n *ValueConverter) string {
	return Accept[string](n.Expression, u) + " | " + n.Name + u.resourceArgs(n.Args)
}

func (u unparser) VisitBindingBehavior(n *BindingBehavior) string {
	return Accept[string](n.Expression, u) + " & " + n.Name + u.resourceArgs(n.Args)
}

func (u unparser) resourceArgs(args []Node) string {
	var sb strings.Builder
	for _, a := range args {
		sb.WriteString(":")
		sb.WriteString(Accept[string](a, u))
	}
	return sb.String()
}

func (u unparser) VisitInterpolation(n *Interpolation) string {
	var sb strings.Builder
	sb.WriteString(escapeInterpolation(n.Parts[0]))
	for i, e := range n.Expressions {
		sb.WriteString("${")
		sb.WriteString(Accept[string](e, u))
		sb.WriteString("}")
		sb.WriteString(escapeInterpolation(n.Parts[i+1]))
	}
	return sb.String()
}

func (u unparser) VisitForOfStatement(n *ForOfStatement) string {
	return Accept[string](n.Declaration, u) + " of " + Accept[string](n.Iterable, u)
}

func (u unparser) VisitBindingIdentifier(n *BindingIdentifier) string {
	return n.Name
}

// VisitArrayBindingPattern renders holes as empty slots. A trailing hole
// needs its own comma.
func (u unparser) VisitArrayBindingPattern(n *ArrayBindingPattern) string {
	parts := make([]string, len(n.Elements))
	hole := false
	for i, e := range n.Elements {
		hole = e == Undefined
		if !hole {
			parts[i] = Accept[string](e, u)
		}
	}
	if hole {
		parts = append(parts, "")
	}
	return "[" + strings.Join(parts, ",") + "]"
}

func (u unparser) VisitObjectBindingPattern(n *ObjectBindingPattern) string {
	parts := make([]string, len(n.Keys))
	for i, k := range n.Keys {
		if id, ok := n.Values[i].(*BindingIdentifier); ok && id.Name == k {
			parts[i] = k
			continue
		}
		parts[i] = propertyName(k) + ":" + Accept[string](n.Values[i], u)
	}
	return "{" + strings.Join(parts, ",") + "}"
}

func (u unparser) VisitCustom(n *Custom) string {
	return n.Value
}

var quoteReplacer = strings.NewReplacer(`\`, `\\`, `'`, `\'`, "\n", `\n`, "\r", `\r`, "\t", `\t`)

func quote(s string) string {
	return "'" + quoteReplacer.Replace(s) + "'"
}

var templateReplacer = strings.NewReplacer(`\`, `\\`, "`", "\\`", "${", `\${`)

func escapeTemplate(s string) string {
	return templateReplacer.Replace(s)
}

var interpolationReplacer = strings.NewReplacer(`\`, `\\`, "${", `\${`)

func escapeInterpolation(s string) string {
	return interpolationReplacer.Replace(s)
}

// propertyName renders an object key, quoting it unless it is an identifier.
func propertyName(k string) string {
	if isIdentifier(k) {
		return k
	}
	return quote(k)
}

func isIdentifier(s string) bool {
	if s == "" {
		return false
	}
	for i, r := range s {
		switch {
		case r == '_' || r == '$' || (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z'):
		case i > 0 && r >= '0' && r <= '9':
		default:
			return false
		}
	}
	return true
}
