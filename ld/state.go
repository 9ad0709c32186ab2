// Copyright 2026 The QParser Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package ld

import "github.com/rlindeque/qparser"

// pivotEdge is a directed edge between two states, labelled by the
// terminal whose shift causes the transition. Edges are recorded on
// both ends (an outgoing edge on the source, an incoming edge on the
// target) so delay resolution can walk the graph backwards from a
// leaf to every state that can reach it.
type pivotEdge struct {
	state    *state
	terminal qparser.ParseToken
}

// delayedReductionFrame records, for a single REDUCE(IGNORE) emitted
// into a state's row, a mapping from an incomplete enclosing rule-id
// to the rule-id of the child alternative whose completion it is
// waiting on. Insertion is first-wins: once a rule-id has a recorded
// resolution, a later candidate for the same key is dropped, mirroring
// std::map::insert in the source this type is grounded on.
type delayedReductionFrame map[int]int

func (f delayedReductionFrame) insert(incompleteRule, childRule int) {
	if _, ok := f[incompleteRule]; !ok {
		f[incompleteRule] = childRule
	}
}

// state is one construction-time state in the LD state graph: a bag
// of items, the action-table row it owns, its pivot edges, and the
// stack of delayed-reduction frames accumulated by the complete-items
// sweep while the state was still being reduced.
type state struct {
	id    int
	items []Item
	row   Row

	outgoing []pivotEdge
	incoming []pivotEdge

	delayed []delayedReductionFrame
}

// hasStartItem reports whether the state already carries the closure
// entry for (head, ruleIndex) at the dot's start position, regardless
// of whether some other item has since claimed it as its own
// InputPositionRule. Closure membership is tracked this way (rather
// than by full four-field equality) so that a directly left-recursive
// nonterminal's own start item is recognized as already present even
// after an originating item resolves its InputPositionRule to that
// same rule-id — without this, expansion of a self-recursive rule
// regenerates an "unresolved" copy of its own start item forever.
func (s *state) hasStartItem(head qparser.ParseToken, ruleIndex int) bool {
	for _, it := range s.items {
		if it.Head == head && it.RuleIndex == ruleIndex && it.InputPosition == 0 {
			return true
		}
	}
	return false
}
