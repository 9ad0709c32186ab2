// Copyright 2026 The QParser Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package main

import (
	"fmt"

	"github.com/timtadh/lexmachine"
	"github.com/timtadh/lexmachine/machines"

	"github.com/rlindeque/qparser"
	"github.com/rlindeque/qparser/grammar"
)

// demoLexer wraps a compiled lexmachine.Lexer that recognizes the
// single-letter terminals of the demo grammar, whitespace-separated.
// It is the only piece of this module that performs lexical analysis;
// QParser itself never does (see qparser.LexStream's doc comment).
type demoLexer struct {
	lexer *lexmachine.Lexer
}

func newDemoLexer(g *grammar.Grammar) (*demoLexer, error) {
	lx := lexmachine.NewLexer()
	for _, name := range []string{"x", "y", "z", "w"} {
		tok := g.Registry.Get(name)
		if tok == qparser.NoToken {
			continue
		}
		lx.Add([]byte(name), makeTokenAction(tok))
	}
	lx.Add([]byte(`( |\t|\n|\r)+`), skipAction)
	if err := lx.Compile(); err != nil {
		return nil, fmt.Errorf("qparserdemo: compiling lexer: %w", err)
	}
	return &demoLexer{lexer: lx}, nil
}

func makeTokenAction(tok qparser.ParseToken) lexmachine.Action {
	return func(s *lexmachine.Scanner, m *machines.Match) (interface{}, error) {
		return s.Token(int(tok), string(m.Bytes), m), nil
	}
}

func skipAction(*lexmachine.Scanner, *machines.Match) (interface{}, error) {
	return nil, nil
}

// Tokenize runs the lexer over input and returns the resulting
// LexStream, substituting nothing for end of stream: the recognizer
// synthesizes SPECIAL_EOF itself once lex_state runs past the end.
func (l *demoLexer) Tokenize(input string) (qparser.LexStream, error) {
	scanner, err := l.lexer.Scanner([]byte(input))
	if err != nil {
		return nil, fmt.Errorf("qparserdemo: starting scan: %w", err)
	}
	var stream qparser.LexStream
	for {
		tok, err, eof := scanner.Next()
		if eof {
			break
		}
		if err != nil {
			if ui, ok := err.(*machines.UnconsumedInput); ok {
				return nil, fmt.Errorf("qparserdemo: unrecognized input at byte %d", ui.FailTC)
			}
			return nil, fmt.Errorf("qparserdemo: scan error: %w", err)
		}
		lmTok := tok.(*lexmachine.Token)
		stream = append(stream, qparser.ParseMatch{
			Token:  qparser.ParseToken(lmTok.Type),
			Offset: uint32(lmTok.StartColumn),
			Length: uint32(lmTok.EndColumn - lmTok.StartColumn),
		})
	}
	return stream, nil
}
