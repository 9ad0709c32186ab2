// Copyright 2026 The QParser Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

/*
Package recognize implements the LD recognizer: a single dispatch loop
over an ld.ActionTable, consuming a pre-materialised qparser.LexStream
and producing a qparser.ParseResult.

The recognizer carries no suspension points. It is a synchronous state
machine: parse_state (program counter into the action table), lex_state
(cursor into the lex stream), a return_stack of resume addresses
pushed by PIVOT and popped by RETURN, a lookahead_state recording the
row entered by the most recent successful pivot (read by GOTO), and a
delayed_stack of positions in the output rules vector still awaiting a
REDUCE_PREV patch.

This package never builds an action table itself (see package ld) and
never assembles a parse tree (see qparser.ASTBuilder); it is the thin
middle tier between the two.
*/
package recognize
