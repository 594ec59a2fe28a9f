// Copyright 2014-2018 Brett Vickers. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package asm

import "strings"

// An fstring is a string that keeps track of its position within the
// source line from which it was read.
type fstring struct {
	row    int    // 1-based line number of substring
	column int    // 0-based column of start of substring
	str    string // the actual substring of interest
	full   string // the full line as originally read from the source
}

func newFstring(row int, str string) fstring {
	return fstring{row, 0, str, str}
}

func (l fstring) String() string {
	return l.str
}

func (l *fstring) advanceColumn(n int) int {
	c := l.column
	for i := 0; i < n; i++ {
		if l.str[i] == '\t' {
			c += 8 - (c % 8)
		} else {
			c++
		}
	}
	return c
}

func (l fstring) consume(n int) fstring {
	col := l.advanceColumn(n)
	return fstring{l.row, col, l.str[n:], l.full}
}

func (l fstring) trunc(n int) fstring {
	return fstring{l.row, l.column, l.str[:n], l.full}
}

func (l *fstring) isEmpty() bool {
	return len(l.str) == 0
}

func (l *fstring) startsWith(fn func(c byte) bool) bool {
	return len(l.str) > 0 && fn(l.str[0])
}

func (l *fstring) startsWithChar(c byte) bool {
	return len(l.str) > 0 && l.str[0] == c
}

// Report whether the string begins with the word w, ignoring case. The word
// must be followed by whitespace or the end of the string.
func (l *fstring) startsWithWord(w string) bool {
	if len(l.str) < len(w) || !strings.EqualFold(l.str[:len(w)], w) {
		return false
	}
	return len(l.str) == len(w) || whitespace(l.str[len(w)])
}

func (l fstring) consumeWhitespace() fstring {
	return l.consume(l.scanWhile(whitespace))
}

func (l fstring) trimRight() fstring {
	n := len(l.str)
	for n > 0 && whitespace(l.str[n-1]) {
		n--
	}
	return l.trunc(n)
}

func (l *fstring) scanWhile(fn func(c byte) bool) int {
	i := 0
	for ; i < len(l.str) && fn(l.str[i]); i++ {
	}
	return i
}

func (l *fstring) consumeWhile(fn func(c byte) bool) (consumed, remain fstring) {
	i := l.scanWhile(fn)
	consumed, remain = l.trunc(i), l.consume(i)
	return
}

func (l *fstring) consumeUntilUnquotedChar(c byte) (consumed, remain fstring) {
	var quote byte
	i := 0
	for ; i < len(l.str); i++ {
		if quote == 0 {
			if l.str[i] == c {
				break
			}
			if stringQuote(l.str[i]) {
				quote = l.str[i]
			}
		} else if l.str[i] == quote {
			quote = 0
		}
	}
	consumed, remain = l.trunc(i), l.consume(i)
	return
}

func (l fstring) stripTrailingComment() fstring {
	lastNonWS := 0
	for i := 0; i < len(l.str); i++ {
		if comment(l.str[i]) {
			break
		}
		if stringQuote(l.str[i]) {
			q := l.str[i]
			i++
			for ; i < len(l.str) && l.str[i] != q; i++ {
			}
			lastNonWS = i
			if i == len(l.str) {
				break
			}
		}
		if !whitespace(l.str[i]) {
			lastNonWS = i + 1
		}
	}
	return l.trunc(lastNonWS)
}

// Split the string into operand tokens separated by whitespace and commas.
func (l fstring) fields() []fstring {
	var tokens []fstring
	for {
		l = l.consume(l.scanWhile(separator))
		if l.isEmpty() {
			return tokens
		}
		var tok fstring
		tok, l = l.consumeWhile(operandChar)
		tokens = append(tokens, tok)
	}
}

//
// character helper functions
//

func whitespace(c byte) bool {
	return c == ' ' || c == '\t' || c == '\r'
}

func separator(c byte) bool {
	return whitespace(c) || c == ','
}

func operandChar(c byte) bool {
	return !separator(c)
}

func punctuation(c byte) bool {
	return separator(c) || c == ';'
}

func alpha(c byte) bool {
	return (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z')
}

func decimal(c byte) bool {
	return c >= '0' && c <= '9'
}

func comment(c byte) bool {
	return c == ';'
}

func labelStartChar(c byte) bool {
	return alpha(c) || c == '_' || c == '.'
}

func labelChar(c byte) bool {
	return alpha(c) || decimal(c) || c == '_' || c == '.'
}

func stringQuote(c byte) bool {
	return c == '"' || c == '\''
}
