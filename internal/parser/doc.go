// Package parser is the default front-end for the indexing core. It turns raw
// Erlang source bytes into a Document with extracted points of interest.
//
// The scanner is deliberately line-oriented and approximate: it recognizes the
// module attribute, single-line -spec attributes, remote and local call sites,
// implicit fun references, macro uses, and record construction/access. The
// indexer treats any front-end as an opaque trusted transformation behind the
// indexer.Parser interface, so a full-fidelity front-end can be swapped in
// without touching the pipeline.
package parser
