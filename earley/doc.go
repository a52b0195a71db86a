// Package earley implements a general context-free parser for
// interactive editors.
//
// A Parser builds an Earley chart over a token sequence and returns
// every derivation of an ambiguous grammar. Calling Parse again with an
// edited token sequence reuses the chart columns the two sequences
// share. A Completer combines a Parser over a grammar with one over its
// reverse to list what may be inserted at a cursor with tokens on both
// sides.
package earley
