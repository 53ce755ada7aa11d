package phylo

import (
	"errors"
	"testing"
)

func TestInterpretRow(t *testing.T) {
	// Shaped like the real table: depth columns, then the condition cell,
	// the name somewhere among the leading columns, two trailing example
	// accession columns.
	cells := []string{"", "", "A123G", "H1", "AB123456", ""}

	ir, err := interpretRow(cells)
	if err != nil {
		t.Fatal(err)
	}
	if ir == nil {
		t.Fatal("expected an interpreted row")
	}
	if ir.depth != 1 {
		t.Errorf("depth = %d, want 1", ir.depth)
	}
	if ir.haplogroup != "H1" {
		t.Errorf("haplogroup = %q, want H1", ir.haplogroup)
	}
	if len(ir.conditions) != 1 || ir.conditions[0] != "A123G" {
		t.Errorf("conditions = %v, want [A123G]", ir.conditions)
	}
	if len(ir.accessions) != 1 || ir.accessions[0] != "AB123456" {
		t.Errorf("accessions = %v, want [AB123456]", ir.accessions)
	}
}

func TestInterpretRowMultipleConditions(t *testing.T) {
	cells := []string{"", "", "", "A123G T456C! C459d", "H1a", "AB123456", "AY195749"}

	ir, err := interpretRow(cells)
	if err != nil {
		t.Fatal(err)
	}
	if ir.depth != 2 {
		t.Errorf("depth = %d, want 2", ir.depth)
	}
	want := []string{"A123G", "T456C!", "C459d"}
	if len(ir.conditions) != len(want) {
		t.Fatalf("conditions = %v, want %v", ir.conditions, want)
	}
	for i, c := range ir.conditions {
		if c != want[i] {
			t.Errorf("conditions[%d] = %q, want %q", i, c, want[i])
		}
	}
	if len(ir.accessions) != 2 {
		t.Errorf("accessions = %v, want two entries", ir.accessions)
	}
}

func TestInterpretRowNoConditionCell(t *testing.T) {
	for _, cells := range [][]string{
		{},
		{"", "", ""},
		{"Haplogroup", "Defining mutations", "Examples"},
		{"legend text spanning the row"},
	} {
		ir, err := interpretRow(cells)
		if err != nil {
			t.Fatalf("interpretRow(%v): %v", cells, err)
		}
		if ir != nil {
			t.Errorf("interpretRow(%v) = %+v, want nil", cells, ir)
		}
	}
}

func TestInterpretRowBlankBranch(t *testing.T) {
	cells := []string{"", "", "A123G", "", "AB123456", ""}

	ir, err := interpretRow(cells)
	if err != nil {
		t.Fatal(err)
	}
	if ir.haplogroup != BlankBranchName {
		t.Errorf("haplogroup = %q, want %q", ir.haplogroup, BlankBranchName)
	}
}

func TestInterpretRowAmbiguous(t *testing.T) {
	// Two surviving name candidates: H1 and H1a, neither an accession.
	cells := []string{"", "", "A123G", "H1", "H1a", "AB123456", ""}

	_, err := interpretRow(cells)
	if err == nil {
		t.Fatal("expected AmbiguousRowError")
	}
	var ambiguous *AmbiguousRowError
	if !errors.As(err, &ambiguous) {
		t.Fatalf("expected AmbiguousRowError, got %T: %v", err, err)
	}
	if len(ambiguous.Candidates) != 2 {
		t.Errorf("candidates = %v, want two entries", ambiguous.Candidates)
	}
}

func TestInterpretRowAccessionNotAName(t *testing.T) {
	// A candidate equal to an extracted accession is evidence, not a name,
	// and must not trigger the duplicate check.
	cells := []string{"", "A123G", "H1", "AB123456", "AY195749"}

	ir, err := interpretRow(cells)
	if err != nil {
		t.Fatal(err)
	}
	if ir.haplogroup != "H1" {
		t.Errorf("haplogroup = %q, want H1", ir.haplogroup)
	}
	if len(ir.accessions) != 2 {
		t.Errorf("accessions = %v, want two entries", ir.accessions)
	}
}

func TestNormalizeWhitespace(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"", ""},
		{"   ", ""},
		{"A123G", "A123G"},
		{"  A123G  T456C \n", "A123G T456C"},
		{"H1 a", "H1 a"}, // non-breaking space from the HTML export
		{"\t one \t two ", "one two"},
	}
	for _, tt := range tests {
		if got := normalizeWhitespace(tt.in); got != tt.want {
			t.Errorf("normalizeWhitespace(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}
