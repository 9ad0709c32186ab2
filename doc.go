// Copyright 2026 The QParser Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package qparser implements the LD (Left-recursive, Delayed-reduction)
// parser generator and runtime: a grammar model and token registry
// (package grammar), a parse-table constructor for left-recursive
// grammars with unbounded lookahead (package ld), and a table-driven
// recognizer (package recognize).
//
// This package holds the types shared across all three stages: the
// tagged ParseToken word, the lexical stream the recognizer consumes,
// and the reduction-sequence boundary the recognizer hands to an
// external AST builder.
package qparser
