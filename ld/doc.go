// Copyright 2026 The QParser Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

/*
Package ld implements the LD (left-recursive, delayed-reduction) parse
table constructor. Given a grammar.Grammar it builds a qparser action
table by expanding item sets state by state, shifting over a single
determined terminal where possible and pivoting into sibling states
when more than one terminal is live, provisionally reducing
(IGNORE-marked) items whose completion cannot yet be distinguished from
a still-open enclosing rule, and resolving those delayed reductions
retroactively once a leaf state is reached, by walking back through the
pivot edges that led to it and emitting REDUCE_PREV/GOTO/RETURN rows.

This package is the hardest part of the system: it is a direct,
state-by-state port of the construction strategy in the grammar
construction routines it is grounded on, adapted to an explicit worklist
for item-set closure, to per-branch copies of the delay-resolution
stack instead of a shared mutable one, and to Go's slice-based item
sets instead of STL vectors of pointers. State expansion and delay
resolution still recurse over the pivot graph.
*/
package ld
