package grammar

import (
	"testing"
)

// buildFlagshipGrammar constructs the test grammar shared by every
// package in this module:
//
//	A -> x            B -> x            C -> y
//	D -> A C          D -> D A C
//	E -> B C          E -> E B C
//	S -> D z          S -> E w
//
// with rule-ids A=0, B=1, C=2, D(AC)=3, D(DAC)=4, E(BC)=5, E(EBC)=6,
// S(Dz)=7, S(Ew)=8.
func buildFlagshipGrammar(t *testing.T) *Grammar {
	t.Helper()
	g := New("flagship")

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

func TestFlagshipGrammarRuleIDs(t *testing.T) {
	teardown := setupTest(t)
	defer teardown()

	g := buildFlagshipGrammar(t)
	if g.RuleCount() != 9 {
		t.Fatalf("RuleCount() = %d, want 9", g.RuleCount())
	}
	wantHeads := []string{"A", "B", "C", "D", "D", "E", "E", "S", "S"}
	for i, name := range wantHeads {
		rule := g.Rule(i)
		if rule.Head != g.Registry.Get(name) {
			t.Errorf("rule %d head = %v, want %s (%v)", i, rule.Head, name, g.Registry.Get(name))
		}
	}
}

func TestFlagshipGrammarForwardDeclarationsClean(t *testing.T) {
	teardown := setupTest(t)
	defer teardown()

	g := buildFlagshipGrammar(t)
	if !g.CheckForwardDeclarations() {
		t.Fatalf("expected no dangling forward declarations in the flagship grammar")
	}
}

func TestUnresolvedForwardDeclarationFails(t *testing.T) {
	teardown := setupTest(t)
	defer teardown()

	g := New("broken")
	g.BeginProduction("S")
	g.ProductionName("Missing")
	g.EndProduction()

	if g.CheckForwardDeclarations() {
		t.Fatalf("expected CheckForwardDeclarations to fail on an undeclared nonterminal")
	}
}

func TestSilentRuleDetection(t *testing.T) {
	teardown := setupTest(t)
	defer teardown()

	g := New("silent")
	g.BeginProduction("A")
	g.ProductionTerminal("x")
	g.EndProduction()
	g.BeginProduction("B")
	g.ProductionName("A")
	g.EndProduction()

	if g.IsSilentRule(0) {
		t.Fatalf("rule 0 (A -> x) is not a unit production and should not be silent")
	}
	if !g.IsSilentRule(1) {
		t.Fatalf("rule 1 (B -> A) is a unit production and should be silent")
	}
}

func TestRootNonterminalDefaultsToLastDeclared(t *testing.T) {
	teardown := setupTest(t)
	defer teardown()

	g := buildFlagshipGrammar(t)
	if g.RootNonterminal() != g.Registry.Get("S") {
		t.Fatalf("RootNonterminal() should default to the last-declared nonterminal S")
	}
}

func TestStartSymbolOverride(t *testing.T) {
	teardown := setupTest(t)
	defer teardown()

	g := buildFlagshipGrammar(t)
	g.StartSymbol(g.Registry.Get("D"))
	if g.RootNonterminal() != g.Registry.Get("D") {
		t.Fatalf("explicit StartSymbol must override the default")
	}
}

func TestNonContiguousAlternativesPanic(t *testing.T) {
	teardown := setupTest(t)
	defer teardown()

	g := New("interleaved")
	g.BeginProduction("A")
	g.ProductionTerminal("x")
	g.EndProduction()
	g.BeginProduction("B")
	g.ProductionTerminal("y")
	g.EndProduction()

	defer func() {
		if recover() == nil {
			t.Fatalf("expected panic when resuming alternatives for A after B was registered in between")
		}
	}()
	g.BeginProduction("A")
}
