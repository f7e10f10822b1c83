package types

import (
	"path/filepath"
	"strings"
)

// URI is the canonical location identifier for one source unit. It is the
// primary indexing key: two paths that resolve to the same file must yield the
// same URI.
type URI string

// URIFromPath converts an absolute or relative file path to a URI.
func URIFromPath(path string) URI {
	abs, err := filepath.Abs(path)
	if err != nil {
		abs = path
	}
	return URI("file://" + filepath.ToSlash(abs))
}

// Path returns the file-system path for a file URI.
func (u URI) Path() string {
	return filepath.FromSlash(strings.TrimPrefix(string(u), "file://"))
}

// DocumentKind distinguishes module units from header (include) units.
type DocumentKind string

const (
	KindModule DocumentKind = "module"
	KindHeader DocumentKind = "header"
)

// Position represents a location in source code. Lines and columns are
// 1-based.
type Position struct {
	Line   int `json:"line"`
	Column int `json:"column"`
}

// Range represents a span of source code.
type Range struct {
	Start Position `json:"start"`
	End   Position `json:"end"`
}

// POIKind is the closed set of point-of-interest tags the front-end emits.
type POIKind string

const (
	// POIFunctionSpec is a type-signature declaration for a function.
	// Payload: Name, Arity, Spec.
	POIFunctionSpec POIKind = "function_spec"

	// POIApplication is a call site. Payload: Name, Arity, and Module when
	// the call is remote; a local call leaves Module empty and is qualified
	// with the enclosing unit's identity at commit time.
	POIApplication POIKind = "application"

	// POIImplicitFun is a fun reference such as fun m:f/2 or fun f/2.
	// Payload shape matches POIApplication.
	POIImplicitFun POIKind = "implicit_fun"

	// POIMacroUse is a macro expansion site. Payload: Name.
	POIMacroUse POIKind = "macro_use"

	// POIRecordAccess is a record field access. Payload: Name.
	POIRecordAccess POIKind = "record_access"

	// POIRecordConstruction is a record construction or update.
	// Payload: Name.
	POIRecordConstruction POIKind = "record_construction"
)

// POI is one extracted fact from parsed source. Kind decides which payload
// fields are meaningful.
type POI struct {
	Kind   POIKind    `json:"kind"`
	Module string     `json:"module,omitempty"`
	Name   string     `json:"name"`
	Arity  int        `json:"arity,omitempty"`
	Spec   *Signature `json:"spec,omitempty"`
	Range  Range      `json:"range"`
}

// Signature is the parsed type-signature tree for one function.
type Signature struct {
	Name   string   `json:"name"`
	Arity  int      `json:"arity"`
	Args   []string `json:"args,omitempty"`
	Return string   `json:"return,omitempty"`
	Raw    string   `json:"raw"`
}

// Document is one parsed source unit. A Document is immutable once built; a
// re-index fully supersedes the previous Document for the same URI.
type Document struct {
	URI    URI          `json:"uri"`
	Module string       `json:"module"`
	Kind   DocumentKind `json:"kind"`
	Hash   [32]byte     `json:"-"`
	POIs   []POI        `json:"pois,omitempty"`
}

// SpecPOIs returns the function-spec POIs of the document.
func (d *Document) SpecPOIs() []POI {
	var out []POI
	for _, p := range d.POIs {
		if p.Kind == POIFunctionSpec {
			out = append(out, p)
		}
	}
	return out
}

// ReferencePOIs returns the POIs that contribute reference entries.
func (d *Document) ReferencePOIs() []POI {
	var out []POI
	for _, p := range d.POIs {
		switch p.Kind {
		case POIApplication, POIImplicitFun, POIMacroUse, POIRecordAccess, POIRecordConstruction:
			out = append(out, p)
		}
	}
	return out
}
