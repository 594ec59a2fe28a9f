// Copyright 2014-2018 Brett Vickers. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package asm

import (
	"errors"
	"strconv"
)

var hex = "0123456789ABCDEF"

// Convert the leading decimal digits of s to an integer, ignoring anything
// that follows them.
func atoi(s string) int {
	n := 0
	for i := 0; i < len(s) && decimal(s[i]); i++ {
		n = n*10 + int(s[i]-'0')
	}
	return n
}

func errorIsRange(err error) bool {
	return errors.Is(err, strconv.ErrRange)
}

// Return a hexadecimal string representation of a byte slice.
func byteString(b []byte) string {
	if len(b) < 1 {
		return ""
	}

	s := make([]byte, len(b)*3-1)
	i, j := 0, 0
	for n := len(b) - 1; i < n; i, j = i+1, j+3 {
		s[j+0] = hex[(b[i] >> 4)]
		s[j+1] = hex[(b[i] & 0x0f)]
		s[j+2] = ' '
	}
	s[j+0] = hex[(b[i] >> 4)]
	s[j+1] = hex[(b[i] & 0x0f)]
	return string(s)
}
