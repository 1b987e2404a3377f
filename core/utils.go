// Copyright 2024 The go-solana Authors
// This file is part of the go-solana library.

package core

// Has0xPrefix reports whether input has a 0x/0X prefix.
func Has0xPrefix(input string) bool {
	return len(input) >= 2 && input[0] == '0' && (input[1] == 'x' || input[1] == 'X')
}
