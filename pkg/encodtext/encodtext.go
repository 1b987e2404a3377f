// Copyright 2024 The go-solana Authors
// This file is part of the go-solana library.

// Package encodtext provides the terminal color helpers used to render
// transaction and instruction traces for humans: program names, account
// metas, and dumped parameter values.
package encodtext

import "github.com/fatih/color"

// Sf is a thin fmt.Sprintf alias kept at package scope so callers read like
// prose: Sf("%s: %s", label, value).
func Sf(format string, args ...interface{}) string {
	return color.New().SprintfFunc()(format, args...)
}

var (
	boldColor       = color.New(color.Bold)
	purpleColor     = color.New(color.FgMagenta)
	limeColor       = color.New(color.FgGreen)
	indigoBGColor   = color.New(color.BgHiBlue, color.FgWhite)
	colorizeBGColor = color.New(color.BgHiBlack, color.FgHiWhite)
	shakespeareColor = color.New(color.FgCyan)
)

// Bold renders s in bold.
func Bold(s string) string { return boldColor.Sprint(s) }

// Purple renders s in magenta, matching the reference trace's instruction
// name color.
func Purple(s string) string { return purpleColor.Sprint(s) }

// Lime renders s in green, used for dumped parameter bodies.
func Lime(s string) string { return limeColor.Sprint(s) }

// IndigoBG renders s with a blue background, used for the "Program" tag.
func IndigoBG(s string) string { return indigoBGColor.Sprint(s) }

// ColorizeBG renders s (typically a base58 public key) with a dark
// background so it stands out against surrounding plain text.
func ColorizeBG(s string) string { return colorizeBGColor.Sprint(s) }

// Shakespeare renders a field label in cyan.
func Shakespeare(s string) string { return shakespeareColor.Sprint(s) }
