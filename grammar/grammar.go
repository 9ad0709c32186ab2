package grammar

import (
	"fmt"

	"github.com/rlindeque/qparser"
)

// ProductionRule is one alternative: an ordered right-hand side of
// ParseTokens plus the nonterminal it produces. Its index in
// Grammar.rules is its rule-id, stable for the Grammar's lifetime.
type ProductionRule struct {
	Head   qparser.ParseToken
	Tokens []qparser.ParseToken
}

// ProductionSet is the contiguous run of rule-ids that produce the
// same nonterminal, plus nullability bookkeeping. Alternatives for a
// nonterminal must be registered consecutively (all of a
// BeginProduction/EndProduction run for "A" before starting "B" and
// later returning to "A") so Offset/Length stay a single contiguous
// slice, matching the source layout this type is grounded on.
type ProductionSet struct {
	Offset       int
	Length       int
	Nullable     bool
	VisitedCount int
}

// Option configures a Grammar at construction time.
type Option func(g *Grammar)

// WithSink installs the diagnostic sink construction errors and
// warnings are reported through.
func WithSink(sink qparser.Sink) Option {
	return func(g *Grammar) { g.sink = sink }
}

// Grammar accumulates productions, rules, precedence directives and
// the start symbol for one grammar under construction. Builder calls
// must be well-nested: BeginProduction opens an active rule,
// ProductionToken/ProductionName/ProductionTerminal append to it, and
// EndProduction closes it before the next BeginProduction.
type Grammar struct {
	Name     string
	Registry *TokenRegistry

	rules          []ProductionRule
	productionSets map[qparser.ParseToken]*ProductionSet

	activeHead   qparser.ParseToken
	activeTokens []qparser.ParseToken
	active       bool

	precedence      map[qparser.ParseToken]map[qparser.ParseToken]bool
	silentTerminals map[qparser.ParseToken]bool
	rootNonterminal qparser.ParseToken

	sink qparser.Sink
}

// New returns an empty Grammar named name, with its own fresh
// TokenRegistry.
func New(name string, opts ...Option) *Grammar {
	g := &Grammar{
		Name:            name,
		Registry:        NewTokenRegistry(),
		productionSets:  make(map[qparser.ParseToken]*ProductionSet),
		precedence:      make(map[qparser.ParseToken]map[qparser.ParseToken]bool),
		silentTerminals: make(map[qparser.ParseToken]bool),
		rootNonterminal: qparser.NoToken,
		sink:            qparser.DiscardSink,
	}
	for _, opt := range opts {
		opt(g)
	}
	return g
}

func (g *Grammar) diag(format string, args ...interface{}) {
	g.sink.Diagnostic(format, args...)
	tracer().Errorf(format, args...)
}

// constructNonterminal resolves name to a nonterminal token, creating
// one (or resolving a pending temporary, rewriting every prior use)
// if it has not been seen.
func (g *Grammar) constructNonterminal(name string) qparser.ParseToken {
	tok := g.Registry.Get(name)
	if tok == qparser.NoToken {
		return g.Registry.GenerateNonterminal(name)
	}
	if tok.IsTemporary() {
		permanent := g.Registry.ResolveTemporary(name)
		g.replaceAllTokens(tok, permanent)
		return permanent
	}
	return tok
}

// replaceAllTokens rewrites every rule's right-hand side, substituting
// oldToken with newToken. Used when a forward-declared temporary
// nonterminal is resolved to its permanent id.
func (g *Grammar) replaceAllTokens(oldToken, newToken qparser.ParseToken) {
	for i := range g.rules {
		for j, t := range g.rules[i].Tokens {
			if t == oldToken {
				g.rules[i].Tokens[j] = newToken
			}
		}
	}
	if oldToken == g.rootNonterminal {
		g.rootNonterminal = newToken
	}
}

// BeginProduction opens a new rule alternative producing the
// nonterminal named name, allocating the nonterminal if this is its
// first mention. It returns the head token. EndProduction must be
// called before the next BeginProduction.
func (g *Grammar) BeginProduction(name string) qparser.ParseToken {
	if g.active {
		panic("grammar: BeginProduction called while a production is already open")
	}
	head := g.constructNonterminal(name)
	set, ok := g.productionSets[head]
	if !ok {
		set = &ProductionSet{Offset: len(g.rules)}
		g.productionSets[head] = set
	} else if set.Offset+set.Length != len(g.rules) {
		panic(fmt.Sprintf("grammar: alternatives for %q must be registered consecutively", name))
	}
	g.activeHead = head
	g.activeTokens = g.activeTokens[:0]
	g.active = true
	return head
}

// EndProduction freezes the active rule's right-hand side and closes
// the builder scope opened by BeginProduction.
func (g *Grammar) EndProduction() error {
	if !g.active {
		return fmt.Errorf("grammar: EndProduction called with no open production")
	}
	tokens := make([]qparser.ParseToken, len(g.activeTokens))
	copy(tokens, g.activeTokens)
	g.rules = append(g.rules, ProductionRule{Head: g.activeHead, Tokens: tokens})
	g.productionSets[g.activeHead].Length++
	g.active = false
	tracer().Debugf("rule %d: %v -> %v", len(g.rules)-1, g.activeHead, tokens)
	return nil
}

// ProductionToken appends an already-resolved token to the active
// rule's right-hand side.
func (g *Grammar) ProductionToken(tok qparser.ParseToken) {
	if !g.active {
		panic("grammar: ProductionToken called with no open production")
	}
	g.activeTokens = append(g.activeTokens, tok)
}

// ProductionName appends the token bound to name, forward-declaring a
// temporary nonterminal if name is unknown.
func (g *Grammar) ProductionName(name string) qparser.ParseToken {
	tok := g.Registry.Get(name)
	if tok == qparser.NoToken {
		tok = g.DeclareProduction(name)
	}
	g.ProductionToken(tok)
	return tok
}

// ProductionTerminal is sugar for a named terminal symbol: it
// generates the terminal on first use (or reuses it) and appends it
// to the active rule. Generalizes the original source's hard-coded
// identifier-declaration/reference special case into a named terminal
// of the caller's choosing.
func (g *Grammar) ProductionTerminal(name string) qparser.ParseToken {
	tok := g.Registry.Get(name)
	if tok == qparser.NoToken {
		tok = g.Registry.GenerateTerminal(name)
	}
	g.ProductionToken(tok)
	return tok
}

// DeclareProduction explicitly forward-declares name as a temporary
// nonterminal, returning its temporary id.
func (g *Grammar) DeclareProduction(name string) qparser.ParseToken {
	return g.Registry.FindOrGenerateTemporaryNonterminal(name)
}

// Precedence records that token2 has precedence over token1 for
// shift/reduce and reduce/reduce tiebreaks.
func (g *Grammar) Precedence(token1, token2 qparser.ParseToken) {
	if g.precedence[token1] == nil {
		g.precedence[token1] = make(map[qparser.ParseToken]bool)
	}
	g.precedence[token1][token2] = true
}

// PrecedenceName is the by-name overload of Precedence.
func (g *Grammar) PrecedenceName(name1, name2 string) error {
	t1, t2 := g.Registry.Get(name1), g.Registry.Get(name2)
	if t1 == qparser.NoToken || t2 == qparser.NoToken {
		return fmt.Errorf("grammar: precedence directive on unknown token(s) %q, %q", name1, name2)
	}
	g.Precedence(t1, t2)
	return nil
}

// HasPrecedence reports whether token2 has been recorded as taking
// precedence over token1.
func (g *Grammar) HasPrecedence(token1, token2 qparser.ParseToken) bool {
	return g.precedence[token1][token2]
}

// SilenceTerminal marks tok as suppressed from the recognizer's
// output; the rule that shifts it is still recognized, but AST
// builders are expected to elide it.
func (g *Grammar) SilenceTerminal(tok qparser.ParseToken) {
	g.silentTerminals[tok] = true
}

// IsSilentTerminal reports whether tok has been silenced.
func (g *Grammar) IsSilentTerminal(tok qparser.ParseToken) bool {
	return g.silentTerminals[tok]
}

// IsSilentRule reports whether ruleIndex is a unit production (exactly
// one symbol, a nonterminal): these are typically elided by the AST
// builder even though the recognizer still emits their reduction.
func (g *Grammar) IsSilentRule(ruleIndex int) bool {
	rule := g.rules[ruleIndex]
	return len(rule.Tokens) == 1 && !rule.Tokens[0].IsShift()
}

// StartSymbol sets the root nonterminal explicitly.
func (g *Grammar) StartSymbol(nonterminal qparser.ParseToken) {
	g.rootNonterminal = nonterminal
}

// RootNonterminal returns the configured start symbol, defaulting to
// the last-declared nonterminal (by rule registration order) if none
// was set explicitly.
func (g *Grammar) RootNonterminal() qparser.ParseToken {
	if g.rootNonterminal != qparser.NoToken {
		return g.rootNonterminal
	}
	if len(g.rules) == 0 {
		return qparser.NoToken
	}
	return g.rules[len(g.rules)-1].Head
}

// CheckForwardDeclarations reports (via the sink) every nonterminal
// that was referenced but never produced an alternative, and every
// temporary id that was never resolved. It returns true iff there is
// nothing to report.
func (g *Grammar) CheckForwardDeclarations() bool {
	ok := true
	for name, tok := range g.Registry.byName {
		if tok.IsTemporary() {
			g.diag("token %v %q was forward-declared but never produced", tok, name)
			ok = false
		}
	}
	for _, tok := range g.Registry.Nonterminals() {
		set, has := g.productionSets[tok]
		if !has || set.Length == 0 {
			g.diag("token %v %q was not declared", tok, g.Registry.Name(tok))
			ok = false
		}
	}
	return ok
}

// RuleCount returns the number of registered rules (== the exclusive
// upper bound on rule-ids).
func (g *Grammar) RuleCount() int { return len(g.rules) }

// Rule returns the rule identified by ruleIndex.
func (g *Grammar) Rule(ruleIndex int) ProductionRule { return g.rules[ruleIndex] }

// RuleToken returns the token at tokenIndex within ruleIndex's
// right-hand side.
func (g *Grammar) RuleToken(ruleIndex, tokenIndex int) qparser.ParseToken {
	return g.rules[ruleIndex].Tokens[tokenIndex]
}

// ProductionSetFor returns the ProductionSet for nonterminal, and
// whether one has been registered.
func (g *Grammar) ProductionSetFor(nonterminal qparser.ParseToken) (*ProductionSet, bool) {
	set, ok := g.productionSets[nonterminal]
	return set, ok
}

// Alternatives returns the rule-ids producing nonterminal, in
// registration order.
func (g *Grammar) Alternatives(nonterminal qparser.ParseToken) []int {
	set, ok := g.productionSets[nonterminal]
	if !ok {
		return nil
	}
	out := make([]int, set.Length)
	for i := range out {
		out[i] = set.Offset + i
	}
	return out
}

// ComputeNullable runs the nullability fix-point over every
// ProductionSet: a nonterminal is nullable if some alternative's
// right-hand side is empty, or consists entirely of nullable
// nonterminals. Mirrors the classic worklist algorithm; VisitedCount
// is scratch state reset on every call.
func (g *Grammar) ComputeNullable() {
	for _, set := range g.productionSets {
		set.Nullable = false
		set.VisitedCount = 0
	}
	changed := true
	for changed {
		changed = false
		for head, set := range g.productionSets {
			if set.Nullable {
				continue
			}
			for i := 0; i < set.Length; i++ {
				rule := g.rules[set.Offset+i]
				if g.ruleNullable(rule) {
					set.Nullable = true
					changed = true
					break
				}
			}
			_ = head
		}
	}
}

func (g *Grammar) ruleNullable(rule ProductionRule) bool {
	for _, tok := range rule.Tokens {
		if tok.IsShift() {
			return false
		}
		set, ok := g.productionSets[tok]
		if !ok || !set.Nullable {
			return false
		}
	}
	return true
}
