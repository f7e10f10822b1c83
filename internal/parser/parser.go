package parser

import (
	"crypto/sha256"
	"path/filepath"
	"regexp"
	"strconv"
	"strings"

	"github.com/langtools/symdex/pkg/types"
)

// Parser extracts points of interest from Erlang source.
type Parser struct{}

// New creates a new Parser instance
func New() *Parser {
	return &Parser{}
}

var (
	moduleRe      = regexp.MustCompile(`^-module\(\s*([a-z][a-zA-Z0-9_@]*)\s*\)`)
	specRe        = regexp.MustCompile(`^-spec\s+([a-z][a-zA-Z0-9_@]*)\((.*?)\)\s*->\s*(.+?)\s*\.\s*$`)
	remoteCallRe  = regexp.MustCompile(`([a-z][a-zA-Z0-9_@]*):([a-z][a-zA-Z0-9_@]*)\(`)
	localCallRe   = regexp.MustCompile(`(^|[^:a-zA-Z0-9_@#?])([a-z][a-zA-Z0-9_@]*)\(`)
	implicitFunRe = regexp.MustCompile(`\bfun\s+(?:([a-z][a-zA-Z0-9_@]*):)?([a-z][a-zA-Z0-9_@]*)/([0-9]+)`)
	macroRe       = regexp.MustCompile(`\?([A-Za-z_][a-zA-Z0-9_]*)`)
	recordConsRe  = regexp.MustCompile(`#([a-z][a-zA-Z0-9_]*)\s*\{`)
	recordAccRe   = regexp.MustCompile(`#([a-z][a-zA-Z0-9_]*)\.([a-z][a-zA-Z0-9_]*)`)
)

// erlangKeywords are atoms that look like local calls but never are.
var erlangKeywords = map[string]bool{
	"after": true, "begin": true, "case": true, "catch": true, "end": true,
	"fun": true, "if": true, "of": true, "receive": true, "try": true,
	"when": true, "andalso": true, "orelse": true, "band": true, "bor": true,
	"bxor": true, "bnot": true, "bsl": true, "bsr": true, "div": true,
	"rem": true, "not": true, "and": true, "or": true, "xor": true,
}

// Parse builds a Document from raw source bytes. The document kind and
// fallback identity derive from the URI's extension: .hrl units are headers
// named after the file, anything else is a module.
func (p *Parser) Parse(uri types.URI, raw []byte) (*types.Document, error) {
	doc := &types.Document{
		URI:  uri,
		Kind: types.KindModule,
		Hash: sha256.Sum256(raw),
	}

	path := uri.Path()
	base := strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	if strings.EqualFold(filepath.Ext(path), ".hrl") {
		doc.Kind = types.KindHeader
	}
	doc.Module = base

	lines := strings.Split(string(raw), "\n")
	for i, line := range lines {
		lineNo := i + 1
		clean := stripCommentsAndStrings(line)

		if m := moduleRe.FindStringSubmatchIndex(clean); m != nil {
			doc.Module = clean[m[2]:m[3]]
			continue
		}

		if m := specRe.FindStringSubmatch(clean); m != nil {
			name, args, ret := m[1], m[2], m[3]
			argList := splitTopLevel(args)
			sig := &types.Signature{
				Name:   name,
				Arity:  len(argList),
				Args:   argList,
				Return: strings.TrimSpace(ret),
				Raw:    strings.TrimSpace(line),
			}
			doc.POIs = append(doc.POIs, types.POI{
				Kind:  types.POIFunctionSpec,
				Name:  name,
				Arity: sig.Arity,
				Spec:  sig,
				Range: lineRange(lineNo, 1, len(line)),
			})
			continue
		}

		// Attribute lines other than -module/-spec carry no call sites.
		if strings.HasPrefix(strings.TrimSpace(clean), "-") {
			continue
		}

		p.scanCalls(doc, clean, lineNo)
		p.scanImplicitFuns(doc, clean, lineNo)
		p.scanMacros(doc, clean, lineNo)
		p.scanRecords(doc, clean, lineNo)
	}

	return doc, nil
}

// scanCalls extracts remote and local application POIs from one line.
func (p *Parser) scanCalls(doc *types.Document, line string, lineNo int) {
	for _, m := range remoteCallRe.FindAllStringSubmatchIndex(line, -1) {
		module := line[m[2]:m[3]]
		name := line[m[4]:m[5]]
		open := m[1] - 1
		arity, ok := arityAt(line, open)
		if !ok {
			continue
		}
		doc.POIs = append(doc.POIs, types.POI{
			Kind:   types.POIApplication,
			Module: module,
			Name:   name,
			Arity:  arity,
			Range:  lineRange(lineNo, m[0]+1, m[1]-1),
		})
	}

	for _, m := range localCallRe.FindAllStringSubmatchIndex(line, -1) {
		name := line[m[4]:m[5]]
		if erlangKeywords[name] {
			continue
		}
		// A head at column 1 is a definition, not a call.
		if m[4] == 0 {
			continue
		}
		open := m[1] - 1
		arity, ok := arityAt(line, open)
		if !ok {
			continue
		}
		doc.POIs = append(doc.POIs, types.POI{
			Kind:  types.POIApplication,
			Name:  name,
			Arity: arity,
			Range: lineRange(lineNo, m[4]+1, m[5]),
		})
	}
}

func (p *Parser) scanImplicitFuns(doc *types.Document, line string, lineNo int) {
	for _, m := range implicitFunRe.FindAllStringSubmatchIndex(line, -1) {
		var module string
		if m[2] >= 0 {
			module = line[m[2]:m[3]]
		}
		name := line[m[4]:m[5]]
		arity, err := strconv.Atoi(line[m[6]:m[7]])
		if err != nil {
			continue
		}
		doc.POIs = append(doc.POIs, types.POI{
			Kind:   types.POIImplicitFun,
			Module: module,
			Name:   name,
			Arity:  arity,
			Range:  lineRange(lineNo, m[0]+1, m[1]),
		})
	}
}

func (p *Parser) scanMacros(doc *types.Document, line string, lineNo int) {
	for _, m := range macroRe.FindAllStringSubmatchIndex(line, -1) {
		doc.POIs = append(doc.POIs, types.POI{
			Kind:  types.POIMacroUse,
			Name:  line[m[2]:m[3]],
			Range: lineRange(lineNo, m[0]+1, m[1]),
		})
	}
}

func (p *Parser) scanRecords(doc *types.Document, line string, lineNo int) {
	for _, m := range recordConsRe.FindAllStringSubmatchIndex(line, -1) {
		doc.POIs = append(doc.POIs, types.POI{
			Kind:  types.POIRecordConstruction,
			Name:  line[m[2]:m[3]],
			Range: lineRange(lineNo, m[0]+1, m[3]),
		})
	}
	for _, m := range recordAccRe.FindAllStringSubmatchIndex(line, -1) {
		doc.POIs = append(doc.POIs, types.POI{
			Kind:  types.POIRecordAccess,
			Name:  line[m[2]:m[3]],
			Range: lineRange(lineNo, m[0]+1, m[3]),
		})
	}
}

// arityAt counts the top-level commas of the argument list opened at
// line[open] == '('. Reports false when the call spans multiple lines.
func arityAt(line string, open int) (int, bool) {
	if open < 0 || open >= len(line) || line[open] != '(' {
		return 0, false
	}
	depth := 0
	commas := 0
	empty := true
	for i := open; i < len(line); i++ {
		switch line[i] {
		case '(', '[', '{':
			depth++
		case ')', ']', '}':
			depth--
			if depth == 0 {
				if empty {
					return 0, true
				}
				return commas + 1, true
			}
		case ',':
			if depth == 1 {
				commas++
			}
		default:
			if depth >= 1 && !isSpace(line[i]) {
				empty = false
			}
		}
	}
	return 0, false
}

// splitTopLevel splits a spec argument list on top-level commas.
func splitTopLevel(s string) []string {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}
	var (
		parts []string
		depth int
		start int
	)
	for i := 0; i < len(s); i++ {
		switch s[i] {
		case '(', '[', '{':
			depth++
		case ')', ']', '}':
			depth--
		case ',':
			if depth == 0 {
				parts = append(parts, strings.TrimSpace(s[start:i]))
				start = i + 1
			}
		}
	}
	parts = append(parts, strings.TrimSpace(s[start:]))
	return parts
}

// stripCommentsAndStrings blanks out string literals and trailing % comments,
// preserving byte offsets so columns stay accurate.
func stripCommentsAndStrings(line string) string {
	out := []byte(line)
	inString := false
	for i := 0; i < len(out); i++ {
		c := out[i]
		if inString {
			if c == '\\' && i+1 < len(out) {
				out[i] = ' '
				out[i+1] = ' '
				i++
				continue
			}
			if c == '"' {
				inString = false
			}
			out[i] = ' '
			continue
		}
		switch c {
		case '"':
			inString = true
			out[i] = ' '
		case '$':
			// Character literal, e.g. $a or $\n.
			if i+1 < len(out) {
				escaped := out[i+1] == '\\'
				out[i] = ' '
				out[i+1] = ' '
				i++
				if escaped && i+1 < len(out) {
					out[i+1] = ' '
					i++
				}
			}
		case '%':
			return string(out[:i])
		}
	}
	return string(out)
}

func isSpace(c byte) bool {
	return c == ' ' || c == '\t'
}

func lineRange(line, startCol, endCol int) types.Range {
	return types.Range{
		Start: types.Position{Line: line, Column: startCol},
		End:   types.Position{Line: line, Column: endCol},
	}
}
