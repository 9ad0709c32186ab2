// Copyright 2026 The QParser Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package ld

import (
	"testing"

	"github.com/npillmayer/schuko/gtrace"
	"github.com/npillmayer/schuko/tracing"
	"github.com/npillmayer/schuko/tracing/gotestingadapter"

	"github.com/rlindeque/qparser"
	"github.com/rlindeque/qparser/grammar"
)

func setupTest(t *testing.T) func() {
	gtrace.SyntaxTracer = gotestingadapter.New()
	gtrace.SyntaxTracer.SetTraceLevel(tracing.LevelDebug)
	return gotestingadapter.RedirectTracing(t)
}

// buildFlagshipGrammar mirrors grammar.buildFlagshipGrammar: the same
// left-recursive grammar (found in the oracle this package's
// construction algorithm is grounded on) duplicated here since the
// grammar package's helper is unexported.
//
//	A -> x            B -> x            C -> y
//	D -> A C          D -> D A C
//	E -> B C          E -> E B C
//	S -> D z          S -> E w
func buildFlagshipGrammar(t *testing.T) *grammar.Grammar {
	t.Helper()
	g := grammar.New("flagship")

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

func TestBuildEmptyGrammarFails(t *testing.T) {
	teardown := setupTest(t)
	defer teardown()

	g := grammar.New("empty")
	if _, err := New(g).Build(); err == nil {
		t.Fatalf("expected an error building an empty grammar")
	}
}

func TestBuildUnresolvedForwardDeclarationFails(t *testing.T) {
	teardown := setupTest(t)
	defer teardown()

	g := grammar.New("broken")
	g.BeginProduction("S")
	g.ProductionName("Missing")
	g.EndProduction()

	if _, err := New(g).Build(); err == nil {
		t.Fatalf("expected an error building a grammar with a dangling forward declaration")
	}
}

func TestBuildFlagshipGrammarSucceeds(t *testing.T) {
	teardown := setupTest(t)
	defer teardown()

	g := buildFlagshipGrammar(t)
	table, err := New(g).Build()
	if err != nil {
		t.Fatalf("Build() error = %v", err)
	}
	if len(table) == 0 {
		t.Fatalf("expected a non-empty action table")
	}
}

// TestFlagshipRootRowStructure checks the opening of the state-0 row
// forced by the grammar's two root alternatives (S -> Dz and S -> Ew):
// it must shift the token both A and B start with (x) and then emit an
// IGNORE delay placeholder, since A and B complete together. It also
// checks that the table as a whole holds at least one PIVOT and at
// least one ACCEPT.
func TestFlagshipRootRowStructure(t *testing.T) {
	teardown := setupTest(t)
	defer teardown()

	g := buildFlagshipGrammar(t)
	c := New(g)
	table, err := c.Build()
	if err != nil {
		t.Fatalf("Build() error = %v", err)
	}

	x := g.Registry.Get("x")
	if x == qparser.NoToken {
		t.Fatalf("terminal x not registered")
	}

	if table[0] != x {
		t.Fatalf("row 0 action 0 = %v, want SHIFT(x) (%v)", table[0], x)
	}
	if table[1] != qparser.SpecialIgnore {
		t.Fatalf("row 0 action 1 = %v, want IGNORE", table[1])
	}

	var sawPivot, sawAccept bool
	for _, tok := range table {
		if tok == qparser.ActionPivot {
			sawPivot = true
		}
		if tok == qparser.ActionAccept {
			sawAccept = true
		}
	}
	if !sawPivot {
		t.Fatalf("expected at least one PIVOT action in the flagship table")
	}
	if !sawAccept {
		t.Fatalf("expected at least one ACCEPT action in the flagship table")
	}
}

// TestNoUnresolvedIgnoreSurvivesInFinalTable checks a counting proxy
// for the invariant every delayed reduction must satisfy once
// construction finishes: the flagship table must hold at least one
// SPECIAL_IGNORE placeholder, and at least as many REDUCE_PREV actions
// as IGNORE placeholders. It does not trace which REDUCE_PREV patches
// which IGNORE, nor re-derive the oracle's exact row numbering
// (construction order is an implementation detail).
func TestNoUnresolvedIgnoreSurvivesInFinalTable(t *testing.T) {
	teardown := setupTest(t)
	defer teardown()

	g := buildFlagshipGrammar(t)
	table, err := New(g).Build()
	if err != nil {
		t.Fatalf("Build() error = %v", err)
	}

	var ignores, reducePrevs int
	for _, tok := range table {
		switch {
		case tok == qparser.SpecialIgnore:
			ignores++
		case tok.IsReducePrev():
			reducePrevs++
		}
	}
	if ignores == 0 {
		t.Fatalf("expected the flagship grammar's left recursion to produce at least one delayed reduction")
	}
	if reducePrevs < ignores {
		t.Fatalf("got %d REDUCE_PREV actions resolving %d IGNORE placeholders; every branch through a delay must resolve it at least once", reducePrevs, ignores)
	}
}

// TestRuleActionRoundTrips pins down the encoding fix this package
// depends on: a REDUCE's rule-id must never collide with one of the
// low reserved opcodes/specials, and RuleID must invert RuleAction
// exactly.
func TestRuleActionRoundTrips(t *testing.T) {
	for ruleIndex := 0; ruleIndex < 9; ruleIndex++ {
		tok := qparser.RuleAction(ruleIndex)
		if tok < qparser.ReservedThreshold {
			t.Fatalf("RuleAction(%d) = %v, falls below ReservedThreshold", ruleIndex, tok)
		}
		if got := tok.RuleID(); got != ruleIndex {
			t.Fatalf("RuleAction(%d).RuleID() = %d, want %d", ruleIndex, got, ruleIndex)
		}
	}
}
