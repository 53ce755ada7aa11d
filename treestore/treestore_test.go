package treestore

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/hazyhaar/phylotree/phylo"
)

func testTree() *phylo.Node {
	return &phylo.Node{
		Descendants: map[string]*phylo.Node{
			"L0": {
				Conditions:        []string{"A123G"},
				ExampleAccessions: []string{"AB123456"},
				Descendants: map[string]*phylo.Node{
					"L0a": {
						Conditions:        []string{"C782T"},
						ExampleAccessions: []string{"AY195749"},
					},
				},
			},
			"L1": {
				Conditions: []string{"G999A"},
			},
		},
	}
}

func TestStore(t *testing.T) {
	db := OpenMemory(t)

	n, err := Store(context.Background(), db, testTree())
	if err != nil {
		t.Fatal(err)
	}
	if n != 3 {
		t.Fatalf("stored %d branches, want 3", n)
	}

	var haplogroup, parent, conditions, accessions string
	var depth int
	err = db.QueryRow(`
		SELECT haplogroup, parent, depth, conditions, accessions
		FROM branches WHERE path = ?`, "L0/L0a").
		Scan(&haplogroup, &parent, &depth, &conditions, &accessions)
	if err != nil {
		t.Fatal(err)
	}
	if haplogroup != "L0a" || parent != "L0" || depth != 1 {
		t.Errorf("got %s under %s at depth %d, want L0a under L0 at depth 1",
			haplogroup, parent, depth)
	}

	var conds []string
	if err := json.Unmarshal([]byte(conditions), &conds); err != nil {
		t.Fatal(err)
	}
	if len(conds) != 1 || conds[0] != "C782T" {
		t.Errorf("conditions = %v, want [C782T]", conds)
	}

	var accs []string
	if err := json.Unmarshal([]byte(accessions), &accs); err != nil {
		t.Fatal(err)
	}
	if len(accs) != 1 || accs[0] != "AY195749" {
		t.Errorf("accessions = %v, want [AY195749]", accs)
	}
}

func TestStoreReplacesExistingPath(t *testing.T) {
	db := OpenMemory(t)
	ctx := context.Background()

	if _, err := Store(ctx, db, testTree()); err != nil {
		t.Fatal(err)
	}
	if _, err := Store(ctx, db, testTree()); err != nil {
		t.Fatal(err)
	}

	var count int
	if err := db.QueryRow(`SELECT COUNT(*) FROM branches`).Scan(&count); err != nil {
		t.Fatal(err)
	}
	if count != 3 {
		t.Errorf("count = %d, want 3 after re-store", count)
	}
}

func TestStoreEmptyTree(t *testing.T) {
	db := OpenMemory(t)

	n, err := Store(context.Background(), db, &phylo.Node{})
	if err != nil {
		t.Fatal(err)
	}
	if n != 0 {
		t.Errorf("stored %d branches, want 0", n)
	}
}

func TestQueryByParent(t *testing.T) {
	db := OpenMemory(t)

	if _, err := Store(context.Background(), db, testTree()); err != nil {
		t.Fatal(err)
	}

	rows, err := db.Query(`SELECT haplogroup FROM branches WHERE parent = '' ORDER BY haplogroup`)
	if err != nil {
		t.Fatal(err)
	}
	defer rows.Close()

	var roots []string
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			t.Fatal(err)
		}
		roots = append(roots, name)
	}
	if len(roots) != 2 || roots[0] != "L0" || roots[1] != "L1" {
		t.Errorf("root branches = %v, want [L0 L1]", roots)
	}
}
