// Copyright 2026 The QParser Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

/*
Command qparserdemo is a small, self-contained driver for the QParser
packages: it builds the flagship left-recursive grammar
(grammar.Grammar), compiles it to an action table (ld.Constructor),
lexes input with timtadh/lexmachine, and feeds the resulting
qparser.LexStream to the recognizer (recognize.Recognizer), printing
the resolved rule-id sequence with pterm.

Usage:

	qparserdemo "x y x y x y z"   // parse one line given on the command line
	qparserdemo -i                // interactive mode, one line per prompt
*/
package main

import (
	"flag"
	"fmt"
	"os"
	"strings"

	"github.com/chzyer/readline"
	"github.com/pterm/pterm"

	"github.com/npillmayer/schuko/gtrace"
	"github.com/npillmayer/schuko/tracing"
	"github.com/npillmayer/schuko/tracing/gologadapter"

	"github.com/rlindeque/qparser/ld"
	"github.com/rlindeque/qparser/recognize"
)

func tracer() tracing.Trace {
	return tracing.Select("qparser.demo")
}

func main() {
	interactive := flag.Bool("i", false, "interactive mode")
	traceLevel := flag.String("trace", "Info", "trace level [Debug|Info|Error]")
	flag.Parse()

	gtrace.SyntaxTracer = gologadapter.New()
	tracer().SetTraceLevel(tracing.TraceLevelFromString(*traceLevel))

	g := buildDemoGrammar()
	table, err := ld.New(g).Build()
	if err != nil {
		pterm.Error.Println("building action table:", err)
		os.Exit(1)
	}
	lexer, err := newDemoLexer(g)
	if err != nil {
		pterm.Error.Println(err)
		os.Exit(1)
	}
	recognizer := recognize.New(table)

	if *interactive {
		runInteractive(lexer, recognizer)
		return
	}

	line := strings.Join(flag.Args(), " ")
	if line == "" {
		pterm.Info.Println("no input given; pass a line of space-separated tokens or -i for interactive mode")
		os.Exit(2)
	}
	runOne(lexer, recognizer, line)
}

func runOne(lexer *demoLexer, recognizer *recognize.Recognizer, line string) {
	stream, err := lexer.Tokenize(line)
	if err != nil {
		pterm.Error.Println(err)
		os.Exit(1)
	}
	result, err := recognizer.Run(stream)
	if err != nil {
		pterm.Error.Println(err)
		os.Exit(1)
	}
	pterm.Success.Printfln("rules: %v", result.Rules)
}

func runInteractive(lexer *demoLexer, recognizer *recognize.Recognizer) {
	repl, err := readline.New("qparser> ")
	if err != nil {
		pterm.Error.Println(err)
		os.Exit(1)
	}
	defer repl.Close()

	pterm.Info.Println("enter space-separated tokens from {x, y, z, w}; Ctrl-D to quit")
	for {
		line, err := repl.Readline()
		if err != nil {
			break
		}
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		stream, err := lexer.Tokenize(line)
		if err != nil {
			pterm.Error.Println(err)
			continue
		}
		result, err := recognizer.Run(stream)
		if err != nil {
			pterm.Error.Println(err)
			continue
		}
		pterm.Success.Println(fmt.Sprintf("rules: %v", result.Rules))
	}
}
