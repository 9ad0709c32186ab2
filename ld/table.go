// Copyright 2026 The QParser Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package ld

import "github.com/rlindeque/qparser"

// Row is a handle to one action-table row. Rows are not necessarily
// filled in the order they are opened: a GOTO row created while
// resolving delayed reductions for a leaf state is appended to a
// predecessor row that may have been opened long before construction
// reached the leaf, and a PIVOT row's branch targets must be known
// before any of its children are filled in. Row therefore addresses a
// row by logical index into the builder's row table, not a byte
// offset; byte offsets are only assigned once Table() flattens every
// row into the final ActionTable.
type Row struct {
	index int
}

// Index returns the row's logical index, stable for the life of the
// builder. It is only meaningful as a map/equality key during
// construction; recognizers never see it; they see the byte offset
// Table() resolves it to.
func (r Row) Index() int { return r.index }

// ActionTable is the flat, tagged sequence of ParseTokens the LD
// recognizer interprets.
type ActionTable []qparser.ParseToken

// PivotBranch is one (terminal, target row) pair of a PIVOT action.
type PivotBranch struct {
	Terminal qparser.ParseToken
	Target   Row
}

// rowPatch records a position within a row's token buffer that holds a
// placeholder row index rather than a final byte offset; Table()
// rewrites it once every row's length is known.
type rowPatch struct {
	pos int
	ref Row
}

type rowBuf struct {
	tokens  []qparser.ParseToken
	patches []rowPatch
}

// ActionTableBuilder assembles an ActionTable out of independently
// growable rows, each addressed by a Row handle returned from AddRow.
// Rows may be appended to in any order relative to one another;
// construction is strictly single-threaded and the builder does no
// locking.
type ActionTableBuilder struct {
	rows []rowBuf
}

// NewActionTableBuilder returns an empty builder.
func NewActionTableBuilder() *ActionTableBuilder {
	return &ActionTableBuilder{}
}

// AddRow opens a new, empty row and returns its handle.
func (b *ActionTableBuilder) AddRow() Row {
	idx := len(b.rows)
	b.rows = append(b.rows, rowBuf{})
	return Row{index: idx}
}

func (b *ActionTableBuilder) append(r Row, toks ...qparser.ParseToken) {
	b.rows[r.index].tokens = append(b.rows[r.index].tokens, toks...)
}

// Shift appends a SHIFT(tok) action to row r.
func (b *ActionTableBuilder) Shift(r Row, tok qparser.ParseToken) { b.append(r, tok) }

// Reduce appends a REDUCE(ruleID) action to row r. ruleID may be
// qparser.SpecialIgnore to emit a delay placeholder awaiting a later
// ReducePrev.
func (b *ActionTableBuilder) Reduce(r Row, ruleID qparser.ParseToken) { b.append(r, ruleID) }

// ReducePrev appends a REDUCE_PREV(ruleID) action to row r, patching
// the most recently emitted, still-unpatched delay placeholder at
// recognition time.
func (b *ActionTableBuilder) ReducePrev(r Row, ruleID qparser.ParseToken) {
	b.append(r, ruleID|qparser.FlagReducePrev)
}

// OpenPivot appends a PIVOT opcode and its branch count to row r.
// Branches are added one at a time via AddPivotBranch as each child's
// row becomes known.
func (b *ActionTableBuilder) OpenPivot(r Row, branchCount int) {
	b.append(r, qparser.ActionPivot, qparser.ParseToken(branchCount))
}

// AddPivotBranch appends one (terminal, target) pair to row r. target
// is recorded as a placeholder and patched to its final byte offset by
// Table().
func (b *ActionTableBuilder) AddPivotBranch(r Row, terminal qparser.ParseToken, target Row) {
	row := &b.rows[r.index]
	pos := len(row.tokens)
	row.tokens = append(row.tokens, terminal, qparser.ParseToken(target.index))
	row.patches = append(row.patches, rowPatch{pos: pos + 1, ref: target})
}

// Goto appends a GOTO(lookaheadRow, targetRow) action to row r: at
// recognition time, taken only when the current lookahead state
// equals lookahead's resolved offset.
func (b *ActionTableBuilder) Goto(r Row, lookahead, target Row) {
	row := &b.rows[r.index]
	pos := len(row.tokens)
	row.tokens = append(row.tokens, qparser.ActionGoto, qparser.ParseToken(lookahead.index), qparser.ParseToken(target.index))
	row.patches = append(row.patches, rowPatch{pos: pos + 1, ref: lookahead}, rowPatch{pos: pos + 2, ref: target})
}

// Return appends a RETURN action to row r.
func (b *ActionTableBuilder) Return(r Row) { b.append(r, qparser.ActionReturn) }

// Accept appends an ACCEPT action to row r.
func (b *ActionTableBuilder) Accept(r Row) { b.append(r, qparser.ActionAccept) }

// Len reports the row's current length.
func (b *ActionTableBuilder) Len(r Row) int { return len(b.rows[r.index].tokens) }

// Table flattens every row, in the order rows were opened, into one
// ActionTable and resolves every row-index placeholder (PIVOT branch
// targets, GOTO lookahead/target operands) to the row's final byte
// offset.
func (b *ActionTableBuilder) Table() ActionTable {
	offsets := make([]int, len(b.rows))
	total := 0
	for i, row := range b.rows {
		offsets[i] = total
		total += len(row.tokens)
	}
	out := make(ActionTable, 0, total)
	for _, row := range b.rows {
		toks := append([]qparser.ParseToken(nil), row.tokens...)
		for _, p := range row.patches {
			toks[p.pos] = qparser.ParseToken(offsets[p.ref.index])
		}
		out = append(out, toks...)
	}
	return out
}

// RowOffset returns the final byte offset row r resolves to, valid
// only after a Table() call has fixed every row's length. Exposed for
// tests that want to assert on absolute action-table positions.
func (b *ActionTableBuilder) RowOffset(r Row) int {
	offset := 0
	for i := 0; i < r.index; i++ {
		offset += len(b.rows[i].tokens)
	}
	return offset
}
