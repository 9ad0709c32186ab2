// Copyright 2026 The QParser Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package ld

import "github.com/rlindeque/qparser"

// unresolved marks an Item's InputPositionRule as not yet pointing at
// a specific child alternative (the source's UINT_MAX sentinel).
const unresolved = -1

// Item is a single LD construction-time item: a production rule with
// a marked position (the dot) plus, once itemExpansionClosure has resolved
// it, the specific child rule the dot currently expects. Two items
// are equal iff all four fields match.
type Item struct {
	Head              qparser.ParseToken
	RuleIndex         int
	InputPosition     int
	InputPositionRule int
}

// newItem returns the start item for rule ruleIndex of nonterminal
// head: dot at position zero, no child alternative resolved yet.
func newItem(head qparser.ParseToken, ruleIndex int) Item {
	return Item{Head: head, RuleIndex: ruleIndex, InputPosition: 0, InputPositionRule: unresolved}
}

// resolved reports whether the item's dot has been pinned to a
// specific child alternative.
func (it Item) resolved() bool { return it.InputPositionRule != unresolved }
