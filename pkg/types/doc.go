// Package types provides shared type definitions for the symdex indexing core.
//
// This package defines the domain types exchanged between the front-end parser,
// the indexer, and the content store: documents, points of interest, symbol
// keys, and source ranges.
//
// # Core Types
//
// Document represents one fully parsed source unit, keyed by its URI:
//
//	doc := &types.Document{
//	    URI:    types.URIFromPath("/src/app/src/calc.erl"),
//	    Module: "calc",
//	    Kind:   types.KindModule,
//	    Hash:   sha256.Sum256(raw),
//	    POIs:   pois,
//	}
//
// A POI (point of interest) is one extracted fact with a closed kind tag and a
// payload whose shape is fixed per kind:
//
//	poi := types.POI{
//	    Kind:  types.POIApplication,
//	    Name:  "encode",
//	    Arity: 2,
//	    Range: types.Range{Start: types.Position{Line: 14, Column: 5}},
//	}
//
// # Symbol Keys
//
// SymbolKey is the lookup key for the reference index. Function, macro, and
// record keys live in disjoint namespaces so a macro named like a function
// never collides with it:
//
//	types.FunctionKey("calc", "encode", 2) // calc:encode/2
//	types.MacroKey("TIMEOUT")              // ?TIMEOUT
//	types.RecordKey("state")               // #state
package types
