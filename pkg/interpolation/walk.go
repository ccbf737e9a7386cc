package interpolation

import (
	"sort"
	"strings"

	sitter "github.com/alexaandru/go-tree-sitter-bare"
	"gitlab.com/tozd/go/errors"

	"github.com/walteh/sfcmap/pkg/position"
	"github.com/walteh/sfcmap/pkg/scope"
	"github.com/walteh/sfcmap/pkg/tsparse"
)

// FreeIdentifier is an identifier that no enclosing binding, global or
// reserved name accounts for.
type FreeIdentifier struct {
	position.RawPosition
	// IsShorthand marks `{ name }`, where the name is both key and value.
	IsShorthand bool
}

// typeNodes are the tree-sitter kinds of type positions. Only `typeof x`
// inside them refers to a runtime value.
var typeNodes = map[string]bool{
	"type_annotation":           true,
	"opting_type_annotation":    true,
	"omitting_type_annotation":  true,
	"asserts_annotation":        true,
	"type_arguments":            true,
	"type_parameters":           true,
	"type_predicate_annotation": true,
	"generic_type":              true,
	"type_identifier":           true,
	"nested_type_identifier":    true,
	"predefined_type":           true,
	"object_type":               true,
	"array_type":                true,
	"tuple_type":                true,
	"union_type":                true,
	"intersection_type":         true,
	"function_type":             true,
	"constructor_type":          true,
	"conditional_type":          true,
	"parenthesized_type":        true,
	"lookup_type":               true,
	"index_type_query":          true,
	"literal_type":              true,
	"readonly_type":             true,
	"template_literal_type":     true,
	"infer_type":                true,
	"type_query":                true,
	"this_type":                 true,
}

var functionNodes = map[string]bool{
	"arrow_function":      true,
	"function_expression": true,
	"function":            true,
	"generator_function":  true,
	"method_definition":   true,
}

type walker struct {
	frag    *tsparse.Fragment
	table   *scope.Table
	globals map[string]bool
	prefix  string
	found   []FreeIdentifier
}

// Collect walks frag and returns its free identifiers in source order.
//
// table holds names already bound by the caller. Every name the walk binds
// is released again before Collect returns, so table can be reused for the
// next fragment. A release without a matching bind aborts the walk with an
// error and table is put back the way it was before the call.
func Collect(frag *tsparse.Fragment, table *scope.Table, opts Options) ([]FreeIdentifier, error) {
	w := &walker{
		frag:    frag,
		table:   table,
		globals: opts.globalSet(),
		prefix:  opts.ReservedPrefix,
	}

	err := w.guarded(func(root *scope.Region) {
		w.walkChildren(frag.Root, root)
	})
	if err != nil {
		return nil, err
	}

	sort.SliceStable(w.found, func(i, j int) bool {
		return w.found[i].Offset < w.found[j].Offset
	})

	return w.found, nil
}

// guarded runs body inside a root region. An unbalanced release turns into
// an error and the table is restored.
func (w *walker) guarded(body func(root *scope.Region)) (err error) {
	before := w.table.Snapshot()

	defer func() {
		if r := recover(); r != nil {
			underflow, ok := r.(*scope.UnderflowError)
			if !ok {
				panic(r)
			}
			w.table.Restore(before)
			w.found = nil
			err = errors.Errorf("walking %q: %w", w.frag.Code, underflow)
		}
	}()

	root := w.table.Open()
	body(root)
	root.Close()

	return nil
}

func (w *walker) isBound(name string) bool {
	return w.table.IsBound(name) ||
		w.globals[name] ||
		name == moduleLoader ||
		(w.prefix != "" && strings.HasPrefix(name, w.prefix))
}

func (w *walker) report(n sitter.Node, shorthand bool) {
	name := w.frag.Text(n)
	if w.isBound(name) {
		return
	}
	w.found = append(w.found, FreeIdentifier{
		RawPosition: position.NewBasicPosition(name, w.frag.Offset(n)),
		IsShorthand: shorthand,
	})
}

func (w *walker) walk(n sitter.Node, region *scope.Region) {
	if n.IsNull() {
		return
	}

	kind := n.Type()
	switch {
	case kind == "identifier":
		w.report(n, false)

	case kind == "shorthand_property_identifier", kind == "shorthand_property_identifier_pattern":
		w.report(n, true)

	case kind == "member_expression":
		w.walk(n.ChildByFieldName("object"), region)

	case kind == "variable_declarator":
		region.Bind(w.bindingNames(n.ChildByFieldName("name"))...)
		w.walkType(n.ChildByFieldName("type"))
		w.walk(n.ChildByFieldName("value"), region)

	case kind == "function_declaration", kind == "generator_function_declaration":
		region.Bind(w.bindingNames(n.ChildByFieldName("name"))...)
		w.walkFunction(n, region)

	case kind == "class_declaration":
		name := n.ChildByFieldName("name")
		region.Bind(w.bindingNames(name)...)
		w.walkChildrenExcept(n, name, region)

	case kind == "class":
		inner := w.table.Open()
		name := n.ChildByFieldName("name")
		inner.Bind(w.bindingNames(name)...)
		w.walkChildrenExcept(n, name, inner)
		inner.Close()

	case functionNodes[kind]:
		w.walkFunction(n, region)

	case kind == "object":
		w.walkObject(n, region)

	case kind == "statement_block", kind == "for_statement", kind == "class_body":
		inner := w.table.Open()
		w.walkChildren(n, inner)
		inner.Close()

	case kind == "for_in_statement":
		w.walkForIn(n)

	case kind == "catch_clause":
		inner := w.table.Open()
		param := n.ChildByFieldName("parameter")
		inner.Bind(w.bindingNames(param)...)
		w.walkType(n.ChildByFieldName("type"))
		w.walk(n.ChildByFieldName("body"), inner)
		inner.Close()

	case typeNodes[kind]:
		w.walkType(n)

	case kind == "comment":

	default:
		w.walkChildren(n, region)
	}
}

func (w *walker) walkChildren(n sitter.Node, region *scope.Region) {
	for i := range n.NamedChildCount() {
		w.walk(n.NamedChild(i), region)
	}
}

func (w *walker) walkChildrenExcept(n, skip sitter.Node, region *scope.Region) {
	for i := range n.NamedChildCount() {
		child := n.NamedChild(i)
		if !skip.IsNull() && sameNode(child, skip) {
			continue
		}
		w.walk(child, region)
	}
}

// walkFunction binds the parameters (and the name of a named function
// expression) for the duration of the body. Parameter types are walked
// before the parameters are bound.
func (w *walker) walkFunction(n sitter.Node, region *scope.Region) {
	var names []string

	if n.Type() == "function_expression" || n.Type() == "function" || n.Type() == "generator_function" {
		names = append(names, w.bindingNames(n.ChildByFieldName("name"))...)
	}
	if n.Type() == "method_definition" {
		if name := n.ChildByFieldName("name"); !name.IsNull() && name.Type() == "computed_property_name" {
			w.walkChildren(name, region)
		}
	}

	if single := n.ChildByFieldName("parameter"); !single.IsNull() {
		names = append(names, w.bindingNames(single)...)
	}

	if params := n.ChildByFieldName("parameters"); !params.IsNull() {
		for i := range params.NamedChildCount() {
			param := params.NamedChild(i)
			switch param.Type() {
			case "required_parameter", "optional_parameter":
				w.walkType(param.ChildByFieldName("type"))
				names = append(names, w.bindingNames(param.ChildByFieldName("pattern"))...)
			case "comment":
			default:
				names = append(names, w.bindingNames(param)...)
			}
		}
	}

	inner := w.table.Open()
	inner.Bind(names...)
	w.walk(n.ChildByFieldName("body"), inner)
	inner.Close()
}

func (w *walker) walkObject(n sitter.Node, region *scope.Region) {
	for i := range n.NamedChildCount() {
		prop := n.NamedChild(i)
		switch prop.Type() {
		case "pair":
			if key := prop.ChildByFieldName("key"); key.Type() == "computed_property_name" {
				w.walkChildren(key, region)
			}
			w.walk(prop.ChildByFieldName("value"), region)
		case "shorthand_property_identifier":
			w.report(prop, true)
		case "comment":
		default:
			w.walk(prop, region)
		}
	}
}

// walkForIn handles `for (const x of xs)`, where x is bound for the loop
// only. Without a declaration keyword the left side is an assignment target.
func (w *walker) walkForIn(n sitter.Node) {
	inner := w.table.Open()
	left := n.ChildByFieldName("left")
	if declaresLoopVariable(n) {
		inner.Bind(w.bindingNames(left)...)
	} else {
		w.walk(left, inner)
	}
	w.walk(n.ChildByFieldName("right"), inner)
	w.walk(n.ChildByFieldName("body"), inner)
	inner.Close()
}

func declaresLoopVariable(n sitter.Node) bool {
	if !n.ChildByFieldName("kind").IsNull() {
		return true
	}
	for i := range n.ChildCount() {
		switch n.Child(i).Type() {
		case "const", "let", "var":
			return true
		}
	}
	return false
}

// walkType only reports the operand of `typeof` queries.
func (w *walker) walkType(n sitter.Node) {
	if n.IsNull() {
		return
	}
	if n.Type() == "type_query" {
		for i := range n.NamedChildCount() {
			if base, ok := leftmostIdentifier(n.NamedChild(i)); ok {
				w.report(base, false)
			}
		}
		return
	}
	for i := range n.NamedChildCount() {
		w.walkType(n.NamedChild(i))
	}
}

func leftmostIdentifier(n sitter.Node) (sitter.Node, bool) {
	for !n.IsNull() {
		switch n.Type() {
		case "identifier":
			return n, true
		case "member_expression":
			n = n.ChildByFieldName("object")
		case "nested_identifier":
			if n.NamedChildCount() == 0 {
				return sitter.Node{}, false
			}
			n = n.NamedChild(0)
		default:
			return sitter.Node{}, false
		}
	}
	return sitter.Node{}, false
}

// bindingNames lists the names a binding pattern introduces.
func (w *walker) bindingNames(n sitter.Node) []string {
	if n.IsNull() {
		return nil
	}

	switch n.Type() {
	case "identifier", "type_identifier", "shorthand_property_identifier_pattern":
		return []string{w.frag.Text(n)}
	case "pair_pattern":
		return w.bindingNames(n.ChildByFieldName("value"))
	case "assignment_pattern", "object_assignment_pattern":
		return w.bindingNames(n.ChildByFieldName("left"))
	case "required_parameter", "optional_parameter":
		return w.bindingNames(n.ChildByFieldName("pattern"))
	case "object_pattern", "array_pattern", "rest_pattern":
		var names []string
		for i := range n.NamedChildCount() {
			names = append(names, w.bindingNames(n.NamedChild(i))...)
		}
		return names
	}
	return nil
}

func sameNode(a, b sitter.Node) bool {
	return a.StartByte() == b.StartByte() && a.EndByte() == b.EndByte() && a.Type() == b.Type()
}
