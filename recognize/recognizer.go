// Copyright 2026 The QParser Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package recognize

import (
	"fmt"

	"github.com/npillmayer/schuko/tracing"

	"github.com/rlindeque/qparser"
	"github.com/rlindeque/qparser/ld"
)

func tracer() tracing.Trace {
	return tracing.Select("qparser.recognize")
}

// Option configures a Recognizer at construction time.
type Option func(r *Recognizer)

// WithSink installs the diagnostic sink recognition errors are
// reported through.
func WithSink(sink qparser.Sink) Option {
	return func(r *Recognizer) { r.sink = sink }
}

// Recognizer runs the LD table-driven recognition loop described in
// this package's doc comment against one ld.ActionTable. A Recognizer
// is reusable across calls to Run, each call starting fresh at row 0.
type Recognizer struct {
	table ld.ActionTable
	sink  qparser.Sink
}

// New returns a Recognizer bound to table.
func New(table ld.ActionTable, opts ...Option) *Recognizer {
	r := &Recognizer{table: table, sink: qparser.DiscardSink}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// recognitionError is returned by Run on the three recognition-error
// conditions: unexpected token at shift, no pivot branch matches, and
// unexpected trailing input at ACCEPT.
type recognitionError struct {
	msg string
}

func (e *recognitionError) Error() string { return e.msg }

// Run recognizes stream against the bound table, starting at row 0.
// It returns the ParseResult (stream unchanged, rule-ids in reduction
// order after delay patching) on success, or a recognitionError
// describing the first failure.
func (r *Recognizer) Run(stream qparser.LexStream) (qparser.ParseResult, error) {
	var (
		parseState     = 0
		lexState       = 0
		returnStack    []int
		lookaheadState = -1
		delayedStack   []int
		rules          []int
		skipRead       bool
		currentToken   qparser.ParseToken
	)

	for {
		if !skipRead {
			currentToken = stream.At(lexState)
		}
		skipRead = false

		action := r.table[parseState]

		switch {
		case action == currentToken:
			tracer().Debugf("shift(%v)", currentToken.Base())
			parseState++
			lexState++

		case action.IsReducePrev():
			if len(delayedStack) == 0 {
				return qparser.ParseResult{}, &recognitionError{msg: "reduce_prev with no delayed reduction pending"}
			}
			pos := delayedStack[len(delayedStack)-1]
			delayedStack = delayedStack[:len(delayedStack)-1]
			ruleID := action.RuleID()
			tracer().Debugf("reduce_prev(%d) at rules[%d]", ruleID, pos)
			rules[pos] = ruleID
			parseState++

		case action == qparser.SpecialIgnore:
			tracer().Debugf("reduce(delay)")
			delayedStack = append(delayedStack, len(rules))
			rules = append(rules, -1)
			parseState++

		case action.IsReservedAction():
			var err error
			parseState, lexState, lookaheadState, returnStack, skipRead, err = r.dispatchAction(action, parseState, lexState, lookaheadState, returnStack, currentToken, stream)
			if err != nil {
				return qparser.ParseResult{}, err
			}
			if action == qparser.ActionAccept {
				if len(delayedStack) != 0 {
					return qparser.ParseResult{}, &recognitionError{msg: "accept with unresolved delayed reductions"}
				}
				if len(returnStack) != 0 {
					return qparser.ParseResult{}, &recognitionError{msg: "accept with non-empty return stack"}
				}
				if currentToken != qparser.SpecialEOF {
					return qparser.ParseResult{}, &recognitionError{msg: "unexpected trailing input at accept"}
				}
				return qparser.ParseResult{Stream: stream, Rules: rules}, nil
			}

		case action.IsShift():
			return qparser.ParseResult{}, &recognitionError{msg: fmt.Sprintf("unexpected token %v, expected %v", currentToken.Base(), action.Base())}

		default:
			ruleID := action.RuleID()
			tracer().Debugf("reduce(%d)", ruleID)
			rules = append(rules, ruleID)
			parseState++
		}
	}
}

// dispatchAction executes one of the four branching opcodes (PIVOT,
// RETURN, GOTO, ACCEPT) and returns the updated parse_state, lex_state,
// lookahead_state, return_stack and skip_read. ACCEPT leaves
// parse_state unspecified; the caller inspects action == ActionAccept
// separately to finish recognition.
func (r *Recognizer) dispatchAction(action qparser.ParseToken, parseState, lexState, lookaheadState int, returnStack []int, currentToken qparser.ParseToken, stream qparser.LexStream) (int, int, int, []int, bool, error) {
	switch action {
	case qparser.ActionPivot:
		count := int(r.table[parseState+1])
		base := parseState + 2
		for i := 0; i < count; i++ {
			terminal := r.table[base+2*i]
			target := int(r.table[base+2*i+1])
			if terminal == currentToken {
				resume := base + 2*count
				returnStack = append(returnStack, resume)
				tracer().Debugf("pivot(%v) -> row %d", currentToken.Base(), target)
				return target, lexState + 1, target, returnStack, false, nil
			}
		}
		expected := make([]qparser.ParseToken, count)
		for i := 0; i < count; i++ {
			expected[i] = r.table[base+2*i].Base()
		}
		r.sink.Diagnostic("unexpected token %v, expected one of %v", currentToken.Base(), expected)
		return 0, 0, 0, nil, false, &recognitionError{msg: fmt.Sprintf("unexpected token %v, expected one of %v", currentToken.Base(), expected)}

	case qparser.ActionReturn:
		if len(returnStack) == 0 {
			return 0, 0, 0, nil, false, &recognitionError{msg: "return with empty return stack"}
		}
		target := returnStack[len(returnStack)-1]
		returnStack = returnStack[:len(returnStack)-1]
		return target, lexState, lookaheadState, returnStack, true, nil

	case qparser.ActionGoto:
		lookahead := int(r.table[parseState+1])
		target := int(r.table[parseState+2])
		if lookaheadState == lookahead {
			tracer().Debugf("goto -> row %d", target)
			return target, lexState, lookaheadState, returnStack, true, nil
		}
		return parseState + 3, lexState, lookaheadState, returnStack, true, nil

	case qparser.ActionAccept:
		return parseState, lexState, lookaheadState, returnStack, true, nil
	}
	return 0, 0, 0, nil, false, &recognitionError{msg: fmt.Sprintf("unreachable action %v", action)}
}
