// Copyright 2024 The go-solana Authors
// This file is part of the go-solana library.

// Package format renders instructions, programs, and accounts as colorized
// human-readable trace lines, the same shape the engine writes into
// ExecutionContext.Logs before a richer telemetry sink is wired in.
package format

import (
	"strings"

	"github.com/davecgh/go-spew/spew"

	"github.com/slonana-labs/slonana-go/common"
	"github.com/slonana-labs/slonana-go/pkg/encodtext"
)

// Program renders a program invocation header: name and program ID.
func Program(name string, programID common.PublicKey) string {
	return encodtext.IndigoBG("Program") + ": " + encodtext.Bold(name) + " " + encodtext.ColorizeBG(programID.String())
}

// Instruction renders an instruction name header.
func Instruction(name string) string {
	return encodtext.Purple(encodtext.Bold("Instruction")) + ": " + encodtext.Bold(name)
}

// Param renders a labeled parameter, dumping value with spew (plain scalars
// included, so they render with their type, e.g. "(uint64) 5").
func Param(name string, value interface{}) string {
	return encodtext.Sf(
		encodtext.Shakespeare(name)+": %s",
		strings.TrimSpace(
			prefixEachLineExceptFirst(
				strings.Repeat(" ", len(name)+2),
				strings.TrimSpace(spew.Sdump(value)),
			),
		),
	)
}

// Account renders a labeled account key.
func Account(name string, pubKey common.PublicKey) string {
	return encodtext.Shakespeare(name) + ": " + encodtext.ColorizeBG(pubKey.String())
}

// AccountFlags is format's own view of an account parameter: a key plus the
// writable/signer flags a caller wants rendered. It exists so this package
// doesn't need to import svm (which itself imports format for logging)
// just to describe what Meta prints.
type AccountFlags struct {
	PublicKey  common.PublicKey
	IsWritable bool
	IsSigner   bool
}

// MetaIfSetByIndex renders the AccountFlags at index in metas, or a <nil>
// placeholder if metas is too short.
func MetaIfSetByIndex(name string, metas []*AccountFlags, index int) string {
	if index < 0 || index >= len(metas) {
		return Meta(name, nil)
	}
	return Meta(name, metas[index])
}

// Meta renders an AccountFlags' key and writable/signer flags.
func Meta(name string, meta *AccountFlags) string {
	if meta == nil {
		return encodtext.Shakespeare(name) + ": " + "<nil>"
	}
	out := encodtext.Shakespeare(name) + ": " + encodtext.ColorizeBG(meta.PublicKey.String())
	out += " ["
	if meta.IsWritable {
		out += "WRITE"
	}
	if meta.IsSigner {
		if meta.IsWritable {
			out += ", "
		}
		out += "SIGN"
	}
	out += "] "
	return out
}

func prefixEachLineExceptFirst(prefix string, s string) string {
	return foreachLine(s,
		func(i int, line string) string {
			if i == 0 {
				return encodtext.Lime(line) + "\n"
			}
			return prefix + encodtext.Lime(line) + "\n"
		})
}

type lineTransform func(int, string) string

func foreachLine(str string, transform lineTransform) (out string) {
	for idx, line := range strings.Split(str, "\n") {
		out += transform(idx, line)
	}
	return
}
