// Copyright 2026 The QParser Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package main

import "github.com/rlindeque/qparser/grammar"

// buildDemoGrammar builds the flagship left-recursive grammar used
// throughout this module's tests:
//
//	A -> x            B -> x            C -> y
//	D -> A C          D -> D A C
//	E -> B C          E -> E B C
//	S -> D z          S -> E w
//
// It is bundled with the demo so running qparserdemo with no grammar
// file requires no setup: typing "x y x y x y z" at the prompt
// exercises the delay-resolution path end to end.
func buildDemoGrammar() *grammar.Grammar {
	g := grammar.New("demo")

	g.BeginProduction("A")
	g.ProductionTerminal("x")
	g.EndProduction()

	g.BeginProduction("B")
	g.ProductionTerminal("x")
	g.EndProduction()

	g.BeginProduction("C")
	g.ProductionTerminal("y")
	g.EndProduction()

	g.BeginProduction("D")
	g.ProductionName("A")
	g.ProductionName("C")
	g.EndProduction()

	g.BeginProduction("D")
	g.ProductionName("D")
	g.ProductionName("A")
	g.ProductionName("C")
	g.EndProduction()

	g.BeginProduction("E")
	g.ProductionName("B")
	g.ProductionName("C")
	g.EndProduction()

	g.BeginProduction("E")
	g.ProductionName("E")
	g.ProductionName("B")
	g.ProductionName("C")
	g.EndProduction()

	g.BeginProduction("S")
	g.ProductionName("D")
	g.ProductionTerminal("z")
	g.EndProduction()

	g.BeginProduction("S")
	g.ProductionName("E")
	g.ProductionTerminal("w")
	g.EndProduction()

	return g
}
