package types

import (
	"fmt"
	"strconv"
	"strings"
)

// Namespace partitions the reference index key space. Function, macro, and
// record keys never collide even when the names match.
type Namespace string

const (
	NSFunction Namespace = "function"
	NSMacro    Namespace = "macro"
	NSRecord   Namespace = "record"
)

// SymbolKey is the lookup key for reference entries. Module and Arity are
// meaningful only in the function namespace.
type SymbolKey struct {
	Namespace Namespace `json:"namespace"`
	Module    string    `json:"module,omitempty"`
	Name      string    `json:"name"`
	Arity     int       `json:"arity,omitempty"`
}

// FunctionKey builds a fully qualified function key.
func FunctionKey(module, name string, arity int) SymbolKey {
	return SymbolKey{Namespace: NSFunction, Module: module, Name: name, Arity: arity}
}

// MacroKey builds a macro key.
func MacroKey(name string) SymbolKey {
	return SymbolKey{Namespace: NSMacro, Name: name}
}

// RecordKey builds a record key.
func RecordKey(name string) SymbolKey {
	return SymbolKey{Namespace: NSRecord, Name: name}
}

// String renders the key in source notation: m:f/2, ?MACRO, #record.
func (k SymbolKey) String() string {
	switch k.Namespace {
	case NSMacro:
		return "?" + k.Name
	case NSRecord:
		return "#" + k.Name
	default:
		return fmt.Sprintf("%s:%s/%d", k.Module, k.Name, k.Arity)
	}
}

// ParseSymbolKey parses the source notation accepted by String. Used by the
// CLI query surface.
func ParseSymbolKey(s string) (SymbolKey, error) {
	switch {
	case strings.HasPrefix(s, "?"):
		name := strings.TrimPrefix(s, "?")
		if name == "" {
			return SymbolKey{}, fmt.Errorf("parse symbol key %q: empty macro name", s)
		}
		return MacroKey(name), nil
	case strings.HasPrefix(s, "#"):
		name := strings.TrimPrefix(s, "#")
		if name == "" {
			return SymbolKey{}, fmt.Errorf("parse symbol key %q: empty record name", s)
		}
		return RecordKey(name), nil
	default:
		colon := strings.Index(s, ":")
		slash := strings.LastIndex(s, "/")
		if colon <= 0 || slash <= colon+1 {
			return SymbolKey{}, fmt.Errorf("parse symbol key %q: want module:function/arity", s)
		}
		arity, err := strconv.Atoi(s[slash+1:])
		if err != nil || arity < 0 {
			return SymbolKey{}, fmt.Errorf("parse symbol key %q: bad arity", s)
		}
		return FunctionKey(s[:colon], s[colon+1:slash], arity), nil
	}
}
