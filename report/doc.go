// Package report prints the nearest neighbors of a list of query terms.
//
// For each query the output is a blank line, a header and one line per
// neighbor:
//
//	Most Similar Words to gato:
//	gatos: 0.85
//	perro: 0.76
//
// Scores always carry two decimals. The first failing query aborts the
// report; nothing is printed for it.
package report
