// Copyright 2026 The QParser Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package ld

import "github.com/rlindeque/qparser"

// orderedSet is a small destructive, insertion-ordered set, modeled on
// the documented semantics of the iteratable.Set container this
// package's construction algorithm is otherwise grounded on: set
// operations mutate the receiver in place rather than allocating a
// fresh set. Generalized here over a type parameter (items, terminals,
// rule-ids) rather than interface{}, since every call site in this
// package already knows its element type at compile time.
type orderedSet[T comparable] struct {
	order []T
	has   map[T]bool
}

func newOrderedSet[T comparable]() *orderedSet[T] {
	return &orderedSet[T]{has: make(map[T]bool)}
}

// Add inserts v if absent. Reports whether v was newly added.
func (s *orderedSet[T]) Add(v T) bool {
	if s.has[v] {
		return false
	}
	s.has[v] = true
	s.order = append(s.order, v)
	return true
}

// Remove deletes v if present.
func (s *orderedSet[T]) Remove(v T) {
	if !s.has[v] {
		return
	}
	delete(s.has, v)
	for i, o := range s.order {
		if o == v {
			s.order = append(s.order[:i], s.order[i+1:]...)
			break
		}
	}
}

// Contains reports whether v is a member.
func (s *orderedSet[T]) Contains(v T) bool { return s.has[v] }

// Len returns the number of members.
func (s *orderedSet[T]) Len() int { return len(s.order) }

// Items returns the members in insertion order. The caller must not
// mutate the returned slice.
func (s *orderedSet[T]) Items() []T { return s.order }

// hasItemAt reports whether items contains a member whose Head,
// RuleIndex and InputPosition==0 match, i.e. the closure's start item
// for (head, ruleIndex) is already present. Mirrors state.hasStartItem
// for item slices that are not yet (or no longer) owned by a *state.
func hasItemAt(items []Item, head qparser.ParseToken, ruleIndex int) bool {
	for _, it := range items {
		if it.Head == head && it.RuleIndex == ruleIndex && it.InputPosition == 0 {
			return true
		}
	}
	return false
}
