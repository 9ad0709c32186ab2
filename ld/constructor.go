// Copyright 2026 The QParser Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package ld

import (
	"fmt"

	"github.com/cnf/structhash"
	"github.com/emirpasic/gods/lists/arraylist"
	"github.com/emirpasic/gods/sets/treeset"
	"github.com/emirpasic/gods/utils"
	"github.com/npillmayer/schuko/tracing"

	"github.com/rlindeque/qparser"
	"github.com/rlindeque/qparser/grammar"
)

func tracer() tracing.Trace {
	return tracing.Select("qparser.ld")
}

// Option configures a Constructor at construction time.
type Option func(c *Constructor)

// WithSink installs the diagnostic sink construction ambiguities and
// errors are reported through.
func WithSink(sink qparser.Sink) Option {
	return func(c *Constructor) { c.sink = sink }
}

// Constructor builds an action table for a grammar.Grammar by walking
// its item sets state by state, as described in this package's doc
// comment. A Constructor is single-use: call Build once.
type Constructor struct {
	g       *grammar.Grammar
	builder *ActionTableBuilder

	states *treeset.Set    // *state, ordered by serial id; mirrors a CFSM's state set
	edges  *arraylist.List // pivotEdge, the flat edge log; mirrors a CFSM's edge list
	byHash map[string]*state

	nextID    int
	ambiguous bool
	sink      qparser.Sink
}

// New returns a Constructor for g.
func New(g *grammar.Grammar, opts ...Option) *Constructor {
	c := &Constructor{
		g:       g,
		builder: NewActionTableBuilder(),
		states:  treeset.NewWith(stateComparator),
		edges:   arraylist.New(),
		byHash:  make(map[string]*state),
		sink:    qparser.DiscardSink,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

func stateComparator(a, b interface{}) int {
	return utils.IntComparator(a.(*state).id, b.(*state).id)
}

func (c *Constructor) diag(format string, args ...interface{}) {
	c.sink.Diagnostic(format, args...)
	tracer().Errorf(format, args...)
}

// Build runs construction to completion and returns the finished
// action table, or an error for one of its fatal conditions
// (unresolved forward declarations, an empty grammar, a root
// nonterminal with no alternatives).
func (c *Constructor) Build() (ActionTable, error) {
	if !c.g.CheckForwardDeclarations() {
		return nil, fmt.Errorf("ld: grammar %q has unresolved forward declarations", c.g.Name)
	}
	if c.g.RuleCount() == 0 {
		return nil, fmt.Errorf("ld: grammar %q is empty", c.g.Name)
	}
	root := c.g.RootNonterminal()
	alts := c.g.Alternatives(root)
	if len(alts) == 0 {
		return nil, fmt.Errorf("ld: root nonterminal %v has no alternatives", root)
	}

	items := make([]Item, 0, len(alts))
	for _, alt := range alts {
		items = append(items, newItem(root, alt))
	}
	s0 := &state{id: 0, items: items}
	s0.row = c.builder.AddRow()
	c.nextID = 1
	c.states.Add(s0)
	c.byHash[hashItems(items)] = s0
	tracer().Debugf("state 0 row %d: root %v, %d alternatives", s0.row.Index(), root, len(alts))

	if !c.completeItemsSweep(s0) {
		c.expandState(s0)
	}
	if c.ambiguous {
		tracer().Errorf("grammar %q: construction completed with unresolved ambiguities", c.g.Name)
	}
	return c.builder.Table(), nil
}

func hashItems(items []Item) string {
	h, err := structhash.Hash(items, 1)
	if err != nil {
		panic(err)
	}
	return h
}

// newState returns the state for items, creating (and registering) a
// fresh one if no existing state carries an identical item set.
// Reports whether the returned state is newly created: a reused state
// is already fully expanded (or is in the process of being expanded by
// an enclosing call on the current stack, for a directly
// self-referential pivot), so the caller must not expand it again.
func (c *Constructor) newState(items []Item) (*state, bool) {
	key := hashItems(items)
	if existing, ok := c.byHash[key]; ok {
		return existing, false
	}
	s := &state{id: c.nextID, items: items}
	s.row = c.builder.AddRow()
	c.nextID++
	c.byHash[key] = s
	c.states.Add(s)
	tracer().Debugf("state %d row %d: %d items", s.id, s.row.Index(), len(items))
	return s, true
}

// itemExpansionClosure expands s.items to closure under item
// expansion (§4.3.1): every item whose dot sits before an unresolved
// nonterminal is replaced by one resolved copy per alternative of that
// nonterminal, and the alternative's own start item is added if not
// already present. Driven by an explicit worklist rather than
// recursion, per this package's doc comment.
func (c *Constructor) itemExpansionClosure(s *state) {
	set := newOrderedSet[Item]()
	for _, it := range s.items {
		set.Add(it)
	}
	queue := append([]Item(nil), s.items...)
	for len(queue) > 0 {
		it := queue[0]
		queue = queue[1:]
		if !set.Contains(it) {
			continue // superseded by its resolved duplicates since being queued
		}
		tokens := c.g.Rule(it.RuleIndex).Tokens
		if it.InputPosition >= len(tokens) || it.InputPositionRule != unresolved {
			continue
		}
		dot := tokens[it.InputPosition]
		if dot.IsShift() {
			continue
		}
		alts := c.g.Alternatives(dot)
		if len(alts) == 0 {
			continue
		}
		set.Remove(it)
		for _, alt := range alts {
			resolved := Item{Head: it.Head, RuleIndex: it.RuleIndex, InputPosition: it.InputPosition, InputPositionRule: alt}
			if set.Add(resolved) {
				queue = append(queue, resolved)
			}
			if !hasItemAt(set.Items(), dot, alt) {
				start := newItem(dot, alt)
				if set.Add(start) {
					queue = append(queue, start)
				}
			}
		}
	}
	s.items = set.Items()
}

// stepOverTerminals collects the distinct terminals sitting at the dot
// of every incomplete item, then advances every such item's dot past
// its terminal (resetting InputPositionRule to unresolved), regardless
// of which terminal it was. copySubsetUsingPivot is what later routes
// by which terminal was actually consumed.
func (c *Constructor) stepOverTerminals(s *state) []qparser.ParseToken {
	terms := newOrderedSet[qparser.ParseToken]()
	for _, it := range s.items {
		tokens := c.g.Rule(it.RuleIndex).Tokens
		if it.InputPosition >= len(tokens) {
			continue
		}
		if tok := tokens[it.InputPosition]; tok.IsShift() {
			terms.Add(tok)
		}
	}
	if terms.Len() == 0 {
		return nil
	}
	for i := range s.items {
		tokens := c.g.Rule(s.items[i].RuleIndex).Tokens
		if s.items[i].InputPosition >= len(tokens) {
			continue
		}
		if tok := tokens[s.items[i].InputPosition]; terms.Contains(tok) {
			s.items[i].InputPosition++
			s.items[i].InputPositionRule = unresolved
		}
	}
	return terms.Items()
}

// completeItemsSweep implements §4.3.1's complete-items sweep,
// repeating as long as a round reduces the item set further. It
// reports whether s became a leaf (its row was terminated by a REDUCE
// and a RETURN/ACCEPT); false means the complete set was empty this
// round and the caller should re-enter closure expansion.
//
// The decision between a plain REDUCE and a delayed REDUCE(IGNORE) is
// keyed on how many DISTINCT rule-ids complete in a round, not on
// whether every item in the state completes at once: a rule reduces
// immediately whenever it is the only one completing, even while
// unrelated items are still pending (e.g. a nonterminal like C
// finishing while the surrounding D/E alternatives it feeds are still
// open) — that reduction then feeds those pending items, which may
// themselves complete on the very next round, cascading through
// several plain reduces before the first genuine ambiguity (two or
// more rule-ids completing in the same round) forces a delay.
func (c *Constructor) completeItemsSweep(s *state) bool {
	for {
		ruleIDs := newOrderedSet[int]()
		for _, it := range s.items {
			tokens := c.g.Rule(it.RuleIndex).Tokens
			if it.InputPosition >= len(tokens) {
				ruleIDs.Add(it.RuleIndex)
			}
		}
		if ruleIDs.Len() == 0 {
			return false
		}

		if ruleIDs.Len() == 1 {
			chosen := ruleIDs.Items()[0]
			kept := s.items[:0]
			for _, it := range s.items {
				tokens := c.g.Rule(it.RuleIndex).Tokens
				if it.InputPosition >= len(tokens) {
					continue
				}
				if it.InputPositionRule == chosen {
					it.InputPosition++
					it.InputPositionRule = unresolved
				}
				kept = append(kept, it)
			}
			s.items = kept
			c.builder.Reduce(s.row, qparser.RuleAction(chosen))
			if len(kept) == 0 {
				if s.id == 0 {
					c.builder.Accept(s.row)
				} else {
					c.builder.Return(s.row)
				}
				c.resolveDelays(s, chosen)
				return true
			}
			continue
		}

		// Two or more distinct rule-ids complete in the same round:
		// genuinely ambiguous at this state. Emit the delay
		// placeholder, record which still-incomplete items were
		// tracking one of this round's completed rule-ids, advance
		// each past it, and drop the completed items before
		// recursing on the reduced set.
		c.diagAmbiguous(s, ruleIDs.Items())
		c.builder.Reduce(s.row, qparser.SpecialIgnore)
		frame := make(delayedReductionFrame)
		kept := s.items[:0]
		for _, it := range s.items {
			tokens := c.g.Rule(it.RuleIndex).Tokens
			if it.InputPosition >= len(tokens) {
				continue
			}
			if ruleIDs.Contains(it.InputPositionRule) {
				frame.insert(it.RuleIndex, it.InputPositionRule)
				it.InputPosition++
				it.InputPositionRule = unresolved
			}
			kept = append(kept, it)
		}
		s.items = kept
		s.delayed = append(s.delayed, frame)
	}
}

func (c *Constructor) diagAmbiguous(s *state, ruleIDs []int) {
	c.ambiguous = true
	c.diag("state %d: ambiguous completion, rule-ids %v complete simultaneously", s.id, ruleIDs)
}

// copySubsetUsingPivot implements §4.3.3: seed with every item of s
// that just stepped over terminal t, then close over the
// input_position_rule linkage to fix-point.
func (c *Constructor) copySubsetUsingPivot(s *state, t qparser.ParseToken) []Item {
	subset := newOrderedSet[Item]()
	for _, it := range s.items {
		if it.InputPosition == 0 {
			continue
		}
		tokens := c.g.Rule(it.RuleIndex).Tokens
		if it.InputPosition-1 < len(tokens) && tokens[it.InputPosition-1] == t {
			subset.Add(it)
		}
	}
	changed := true
	for changed {
		changed = false
		for _, it := range s.items {
			if subset.Contains(it) {
				continue
			}
			for _, member := range subset.Items() {
				if it.InputPositionRule == member.RuleIndex {
					if subset.Add(it) {
						changed = true
					}
					break
				}
			}
		}
	}
	return subset.Items()
}

// expandState runs the state loop (§4.3.2) to completion for s:
// closure, step-over-terminals, then either a same-row shift, a
// branching pivot, or (no terminals left) the leaf/ambiguous/empty
// outcome of the complete-items sweep.
func (c *Constructor) expandState(s *state) {
	c.itemExpansionClosure(s)
	terms := c.stepOverTerminals(s)
	switch len(terms) {
	case 0:
		c.completeItemsSweep(s)
	case 1:
		c.builder.Shift(s.row, terms[0])
		if !c.completeItemsSweep(s) {
			c.expandState(s)
		}
	default:
		c.emitPivot(s, terms)
	}
}

// emitPivot implements state-loop step 4. Every branch's row is
// reserved and written into the parent's PIVOT before any child is
// filled in, so that the parent row is a contiguous, complete run at
// the moment construction starts filling in the first child (rows may
// be appended to out of order, but each row's own bytes are still
// written left to right).
func (c *Constructor) emitPivot(s *state, terms []qparser.ParseToken) {
	c.builder.OpenPivot(s.row, len(terms))

	type branch struct {
		child *state
		fresh bool
		t     qparser.ParseToken
	}
	branches := make([]branch, 0, len(terms))
	for _, t := range terms {
		items := c.copySubsetUsingPivot(s, t)
		child, fresh := c.newState(items)
		s.outgoing = append(s.outgoing, pivotEdge{state: child, terminal: t})
		child.incoming = append(child.incoming, pivotEdge{state: s, terminal: t})
		c.edges.Add(pivotEdge{state: child, terminal: t})
		c.builder.AddPivotBranch(s.row, t, child.row)
		branches = append(branches, branch{child: child, fresh: fresh, t: t})
	}

	for _, b := range branches {
		if !b.fresh {
			continue
		}
		if c.completeItemsSweep(b.child) {
			continue
		}
		c.expandState(b.child)
	}
}

// resolveDelays implements §4.3.4 step 1-3: from the leaf state that
// just reduced ruleID, walk every incoming-pivot predecessor and
// resolve the delayed reductions recorded along the way back to it.
func (c *Constructor) resolveDelays(leaf *state, ruleID int) {
	for _, edge := range leaf.incoming {
		c.resolveFrom(edge.state, leaf.row, []int{ruleID})
	}
}

// resolveFrom implements resolve_from. stack is consumed by value: a
// predecessor with several incoming edges of its own recurses into
// each with an independent copy, since siblings must not see each
// other's pops.
func (c *Constructor) resolveFrom(p *state, leafRow Row, stack []int) {
	g := c.builder.AddRow()
	c.builder.Goto(p.row, leafRow, g)

frameLoop:
	for i := len(p.delayed) - 1; i >= 0; i-- {
		frame := p.delayed[i]
		for {
			if len(stack) == 0 {
				return // abort resolution on this branch
			}
			top := stack[len(stack)-1]
			if child, ok := frame[top]; ok {
				c.builder.ReducePrev(g, qparser.RuleAction(child))
				continue frameLoop
			}
			stack = stack[:len(stack)-1]
		}
	}

	if p.id == 0 {
		// No caller ever pushed a return address for the root:
		// reaching here is the parse's successful completion.
		c.builder.Accept(g)
		return
	}
	c.builder.Return(g)
	for _, edge := range p.incoming {
		branchStack := append([]int(nil), stack...)
		c.resolveFrom(edge.state, leafRow, branchStack)
	}
}
