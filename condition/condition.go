// Package condition recognizes mtDNA branch condition tokens — the mutation
// notations that label edges of the haplogroup classification tree.
//
// The grammar has three layers:
//
//   - a regular form: ancestral base, position, descendant base, optional
//     reversion marks, optionally parenthesized when the site is unstable
//     (e.g. A123G, T16189C!, (C182T))
//   - an irregular form for deletions, insertions and ranges
//     (e.g. C459d, 960.XC, 59-60d, reserved)
//   - a fixed allowlist of historically published notations that escape
//     both forms
//
// All predicates are pure and match the whole input, anchored at both ends.
package condition

import (
	"regexp"
	"strings"
)

const (
	base     = `[atgcATGC]`
	position = `\d+`
	// regular: (?ancestral position descendant !*)?
	regular = `\(?` + base + position + base + `!*\)?`
	// irregular: deletion | insertion | range deletion | reserved
	irregular = `\A\(?(?:` +
		base + `?` + position + `d` + // C459d
		`|` + position + `\.[\dX]?` + base + `+d?` + // 960.XC
		`|` + position + `-` + position + `d` + // 59-60d
		`|reserved` +
		`)!*\)?\z`
)

var (
	regularToken   = regexp.MustCompile(`\A` + regular + `\z`)
	irregularToken = regexp.MustCompile(irregular)
	tableTitle     = regexp.MustCompile(`mt-MRCA`)
)

// exceptionTokens lists the published notations that do not fit the regular
// grammar. Membership is exact, including parentheses and reversion marks.
var exceptionTokens = strings.Fields(`
	T65d G71d A249d C299d C309d A337d
	T455d C456d C459d C498d C960d
	A1409d A1656d A2074d A2395d A4317d
	A5752d A5894d C5899d C7471d T15944d
	A16166d C16187d C16193d C16257d T16325d

	59-60d 105-110d 106-111d 290-291d 291-294d 8281-8289d

	573.XC 960.XC 965.XC 5899.XC 8278.XC 5899.XCd!

	44.1C 55.1T 60.1T 65.1T 93.1T 42.1G
	191.1A 291.1A 310.1T 356.1C 374.1A
	455.1T 456.1T 459.1C 498.1C 595.1C
	597.1T 745.1T 960.1C 1719.1G 2156.1A
	2232.1A 2405.1C 2484.1C 3158.1T 3172.1C
	3229.1A 3307.1A 5740.1A 5752.1A 5899.1C
	8276.1C 8279.1T 12310.1A 15944.1T
	16169.1C 16259.1A
	C5899.1d! 459.1Cd!
	60.1TT 292.1AT 368.1AGAA
	8289.1CCCCCTCTA 8289.1CCCCCTCTACCCCCTCTA

	455.2T 2232.2A

	(573.XC) (745.1T) (960.1C)
	(C965d) (C16193d)
	reserved`)

var exceptions = func() map[string]struct{} {
	m := make(map[string]struct{}, len(exceptionTokens))
	for _, tok := range exceptionTokens {
		m[tok] = struct{}{}
	}
	return m
}()

// IsBranchCondition reports whether a single token is a valid branch
// condition: either the regular mutation form or an allowlisted exception.
func IsBranchCondition(token string) bool {
	if regularToken.MatchString(token) {
		return true
	}
	_, ok := exceptions[token]
	return ok
}

// IsBranchConditions reports whether text is one or more branch condition
// tokens separated by single spaces, covering the text exactly. An empty
// string, a leading/trailing space, or a double separator all reject.
func IsBranchConditions(text string) bool {
	if text == "" {
		return false
	}
	for _, tok := range strings.Split(text, " ") {
		if !IsBranchCondition(tok) {
			return false
		}
	}
	return true
}

// IsIrregular reports whether a single token matches the irregular
// sub-grammar (deletion, insertion, range deletion or reserved), anchored
// to consume the whole token.
func IsIrregular(token string) bool {
	return irregularToken.MatchString(token)
}

// IsTableTitle reports whether text contains the classification table's
// title marker.
func IsTableTitle(text string) bool {
	return tableTitle.MatchString(text)
}
