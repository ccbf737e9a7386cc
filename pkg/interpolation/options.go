package interpolation

import (
	"strings"

	"gitlab.com/tozd/go/errors"
)

// Style selects how a free identifier is routed through the context object.
type Style int

const (
	// Dotted rewrites `name` to `ctx.name`.
	Dotted Style = iota
	// Bracketed rewrites `name` to `ctx['name']`.
	Bracketed
)

func (s Style) String() string {
	switch s {
	case Dotted:
		return "dotted"
	case Bracketed:
		return "bracketed"
	}
	return "unknown"
}

func ParseStyle(s string) (Style, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "dotted":
		return Dotted, nil
	case "bracketed":
		return Bracketed, nil
	}
	return Dotted, errors.Errorf("unknown indirection style %q", s)
}

// DefaultGlobals are names an interpolation may use without them being
// looked up on the context.
var DefaultGlobals = []string{
	"Infinity", "undefined", "NaN", "isFinite", "isNaN", "parseFloat", "parseInt",
	"decodeURI", "decodeURIComponent", "encodeURI", "encodeURIComponent",
	"Math", "Number", "Date", "Array", "Object", "Boolean", "String", "RegExp",
	"Map", "Set", "JSON", "Intl", "BigInt", "console",
}

const (
	DefaultContextName    = "__VLS_ctx"
	DefaultReservedPrefix = "__VLS_"

	// moduleLoader is never routed through the context.
	moduleLoader = "require"
)

type Options struct {
	Style Style
	// ContextName is the object free identifiers are read from.
	ContextName string
	// ReservedPrefix marks names owned by the code generator.
	ReservedPrefix string
	// Globals are implicitly available names.
	Globals []string
}

func DefaultOptions() Options {
	return Options{
		Style:          Dotted,
		ContextName:    DefaultContextName,
		ReservedPrefix: DefaultReservedPrefix,
		Globals:        DefaultGlobals,
	}
}

func (o Options) contextName() string {
	if o.ContextName == "" {
		return DefaultContextName
	}
	return o.ContextName
}

func (o Options) globalSet() map[string]bool {
	globals := o.Globals
	if globals == nil {
		globals = DefaultGlobals
	}
	set := make(map[string]bool, len(globals))
	for _, g := range globals {
		set[g] = true
	}
	return set
}
