package grammar

import (
	"github.com/npillmayer/schuko/tracing"

	"github.com/rlindeque/qparser"
)

func tracer() tracing.Trace {
	return tracing.Select("qparser.grammar")
}

// TokenRegistry allocates and resolves terminal, nonterminal, and
// temporary token identifiers. Name→id is a partial function; id→name
// is total over every id it has allocated. It is the sole authority
// over the terminal/nonterminal space partition described in
// qparser.ParseToken.
type TokenRegistry struct {
	byName              map[string]qparser.ParseToken
	byID                map[qparser.ParseToken]string
	nextTerminal         qparser.ParseToken
	nextNonterminal      qparser.ParseToken
	nextTemporary        qparser.ParseToken
	temporaryToPermanent map[qparser.ParseToken]qparser.ParseToken
}

// NewTokenRegistry returns an empty registry. Terminal and nonterminal
// ids both start at qparser.ReservedThreshold and advance
// monotonically, two apart, preserving the legacy odd/even parity
// (terminals begin on an odd base id, nonterminals on an even one)
// even though the parity itself carries no runtime meaning beyond the
// FlagShift bit that is ORed onto terminals.
func NewTokenRegistry() *TokenRegistry {
	base := qparser.ReservedThreshold
	terminalBase := base
	if terminalBase%2 == 0 {
		terminalBase++
	}
	nonterminalBase := base
	if nonterminalBase%2 != 0 {
		nonterminalBase++
	}
	return &TokenRegistry{
		byName:               make(map[string]qparser.ParseToken),
		byID:                 make(map[qparser.ParseToken]string),
		nextTerminal:         terminalBase,
		nextNonterminal:      nonterminalBase,
		nextTemporary:        qparser.TemporaryBase,
		temporaryToPermanent: make(map[qparser.ParseToken]qparser.ParseToken),
	}
}

// Get returns the token bound to name, or qparser.NoToken if name has
// never been seen.
func (r *TokenRegistry) Get(name string) qparser.ParseToken {
	if tok, ok := r.byName[name]; ok {
		return tok
	}
	return qparser.NoToken
}

// Name returns the name bound to tok, or "" if tok was never
// allocated by this registry.
func (r *TokenRegistry) Name(tok qparser.ParseToken) string {
	return r.byID[tok.Base()]
}

// GenerateTerminal allocates a fresh terminal id for name. It is a
// contract violation (and panics) to generate a name that is already
// bound; double-generation is a programmer error, not a recoverable
// condition.
func (r *TokenRegistry) GenerateTerminal(name string) qparser.ParseToken {
	if _, ok := r.byName[name]; ok {
		panic("grammar: token " + name + " already generated")
	}
	base := r.nextTerminal
	r.nextTerminal += 2
	tok := base | qparser.FlagShift
	r.byName[name] = tok
	r.byID[base] = name
	tracer().Debugf("generated terminal %q = %v", name, tok)
	return tok
}

// GenerateNonterminal allocates a fresh nonterminal id for name. Like
// GenerateTerminal, double-generation panics.
func (r *TokenRegistry) GenerateNonterminal(name string) qparser.ParseToken {
	if _, ok := r.byName[name]; ok {
		panic("grammar: token " + name + " already generated")
	}
	tok := r.nextNonterminal
	r.nextNonterminal += 2
	r.byName[name] = tok
	r.byID[tok] = name
	tracer().Debugf("generated nonterminal %q = %v", name, tok)
	return tok
}

// FindOrGenerateTemporaryNonterminal is idempotent: if name is
// already bound (temporary or permanent), its existing token is
// returned; otherwise a fresh id is drawn from the temporary range
// and bound to name.
func (r *TokenRegistry) FindOrGenerateTemporaryNonterminal(name string) qparser.ParseToken {
	if tok, ok := r.byName[name]; ok {
		return tok
	}
	tok := r.nextTemporary
	r.nextTemporary++
	if tok >= qparser.TemporaryLimit {
		panic("grammar: temporary nonterminal range exhausted")
	}
	r.byName[name] = tok
	r.byID[tok] = name
	tracer().Debugf("forward-declared %q = %v (temporary)", name, tok)
	return tok
}

// ResolveTemporary allocates a permanent nonterminal id for name,
// which must currently hold a temporary id, and records the
// substitution. The caller (Grammar) is responsible for rewriting
// every prior use of the temporary id via replaceAllTokens; the
// registry only remembers the mapping so later lookups of the old id
// still resolve correctly.
func (r *TokenRegistry) ResolveTemporary(name string) qparser.ParseToken {
	old, ok := r.byName[name]
	if !ok || !old.IsTemporary() {
		panic("grammar: " + name + " is not a pending temporary")
	}
	permanent := r.nextNonterminal
	r.nextNonterminal += 2
	r.byName[name] = permanent
	delete(r.byID, old)
	r.byID[permanent] = name
	r.temporaryToPermanent[old] = permanent
	tracer().Debugf("resolved temporary %q: %v -> %v", name, old, permanent)
	return permanent
}

// PermanentFor returns the permanent id a resolved temporary id was
// substituted with, and whether a substitution is on record.
func (r *TokenRegistry) PermanentFor(temporary qparser.ParseToken) (qparser.ParseToken, bool) {
	p, ok := r.temporaryToPermanent[temporary]
	return p, ok
}

// IsTerminal reports whether tok was allocated as a terminal.
func (r *TokenRegistry) IsTerminal(tok qparser.ParseToken) bool {
	return tok.IsShift()
}

// IsTemporary reports whether tok currently lies in the
// forward-declaration range (i.e. has not yet been resolved).
func (r *TokenRegistry) IsTemporary(tok qparser.ParseToken) bool {
	return tok.IsTemporary()
}

// IsValid reports whether tok was allocated by this registry (as
// terminal, nonterminal, or still-pending temporary).
func (r *TokenRegistry) IsValid(tok qparser.ParseToken) bool {
	_, ok := r.byID[tok.Base()]
	return ok
}

// NextAvailableNonterminal returns the id that GenerateNonterminal
// would hand out next. CheckForwardDeclarations enumerates allocated
// nonterminals through Nonterminals, not through this bound.
func (r *TokenRegistry) NextAvailableNonterminal() qparser.ParseToken {
	return r.nextNonterminal
}

// Nonterminals returns every permanent nonterminal id currently
// registered, in allocation order.
func (r *TokenRegistry) Nonterminals() []qparser.ParseToken {
	var out []qparser.ParseToken
	for tok, name := range r.byID {
		if !r.byName[name].IsShift() && !tok.IsTemporary() {
			out = append(out, tok)
		}
	}
	return sortTokens(out)
}

func sortTokens(toks []qparser.ParseToken) []qparser.ParseToken {
	for i := 1; i < len(toks); i++ {
		for j := i; j > 0 && toks[j-1] > toks[j]; j-- {
			toks[j-1], toks[j] = toks[j], toks[j-1]
		}
	}
	return toks
}
