package phylo

import (
	"fmt"
	"strings"
	"unicode"

	"github.com/hazyhaar/phylotree/condition"
)

// BlankBranchName is the sentinel haplogroup name used when a row defines
// branch conditions but carries no explicit name cell. It is distinct from
// every real haplogroup name in the source table.
const BlankBranchName = "__BRANCH__"

// AmbiguousRowError reports a row whose layout could not be interpreted:
// after discarding condition cells and example accessions, more than one
// haplogroup name candidate remained. Guessing between them would corrupt
// the tree, so the whole parse aborts.
type AmbiguousRowError struct {
	Candidates []string
}

func (e *AmbiguousRowError) Error() string {
	return fmt.Sprintf("ambiguous row: %d haplogroup candidates: %s",
		len(e.Candidates), strings.Join(e.Candidates, ", "))
}

// interpretedRow is one classification row reduced to its structured fields.
type interpretedRow struct {
	haplogroup string
	depth      int
	conditions []string
	accessions []string
}

// interpretRow separates one row's cells into branch conditions, example
// accessions and the haplogroup name. Cells must already be
// whitespace-normalized. Returns (nil, nil) for rows without any condition
// cell: headers, separators and legend rows are expected and skipped.
func interpretRow(cells []string) (*interpretedRow, error) {
	var conditions []string
	var candidates []string
	depth := 0

	for i, text := range cells {
		if text == "" {
			continue
		}
		if condition.IsBranchConditions(text) {
			conditions = strings.Split(text, " ")
			depth = i - 1
			continue
		}
		candidates = append(candidates, text)
	}

	if len(conditions) == 0 {
		return nil, nil
	}
	if depth < 0 {
		depth = 0
	}

	accessions := extractAccessions(cells)
	haplogroup, err := detectHaplogroup(candidates, accessions)
	if err != nil {
		return nil, err
	}

	return &interpretedRow{
		haplogroup: haplogroup,
		depth:      depth,
		conditions: conditions,
		accessions: accessions,
	}, nil
}

// extractAccessions returns the non-empty values of the row's last two
// columns, in original order. The source layout reserves the two trailing
// columns for example accession identifiers.
func extractAccessions(cells []string) []string {
	start := len(cells) - 2
	if start < 0 {
		start = 0
	}
	var out []string
	for _, c := range cells[start:] {
		if c != "" {
			out = append(out, c)
		}
	}
	return out
}

// detectHaplogroup resolves the row's haplogroup name. Candidates that equal
// an extracted accession are evidence, not names, and are discarded. Exactly
// zero or one candidate may survive; zero maps to BlankBranchName.
func detectHaplogroup(candidates, accessions []string) (string, error) {
	isAccession := func(s string) bool {
		for _, a := range accessions {
			if s == a {
				return true
			}
		}
		return false
	}

	haplogroup := ""
	for _, c := range candidates {
		if isAccession(c) {
			continue
		}
		if haplogroup != "" {
			return "", &AmbiguousRowError{Candidates: []string{haplogroup, c}}
		}
		haplogroup = c
	}
	if haplogroup == "" {
		haplogroup = BlankBranchName
	}
	return haplogroup, nil
}

// normalizeWhitespace trims text and collapses every interior whitespace run
// to a single space.
func normalizeWhitespace(text string) string {
	var sb strings.Builder
	prevSpace := false
	for _, r := range text {
		if unicode.IsSpace(r) {
			if !prevSpace && sb.Len() > 0 {
				sb.WriteByte(' ')
				prevSpace = true
			}
		} else {
			sb.WriteRune(r)
			prevSpace = false
		}
	}
	return strings.TrimSpace(sb.String())
}
