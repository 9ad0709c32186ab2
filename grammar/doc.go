// Copyright 2026 The QParser Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

/*
Package grammar implements the QParser grammar model: a TokenRegistry
that allocates and resolves terminal, nonterminal, and temporary
(forward-declared) token identifiers, and a Grammar builder that
accumulates productions, precedence directives, and the start symbol.

Construction follows a well-nested builder protocol modeled on a
fluent grammar-builder style (compare lr.GrammarBuilder in the parser
lineage this package descends from):

	g := grammar.New("G")
	g.BeginProduction("A")
	g.ProductionTerminal("x")
	g.EndProduction()
	g.BeginProduction("D")
	g.ProductionName("A")
	g.ProductionName("C")
	g.EndProduction()
	g.StartSymbol(g.Registry.Get("S"))
	if !g.CheckForwardDeclarations() {
	    // fatal: some declared nonterminal has no alternative
	}

Rule-ids are assigned in BeginProduction call order and are stable for
the lifetime of the Grammar; the LD constructor in package ld depends
on this stability to label Items and DelayedReductionFrames.
*/
package grammar
