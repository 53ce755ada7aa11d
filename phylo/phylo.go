// Package phylo reconstructs the mtDNA haplogroup classification tree from
// the flat table rows of the published tree export.
//
// Each classification row names a haplogroup, the branch conditions
// (mutations) defining it, and up to two example accessions. The column at
// which the conditions appear encodes the row's depth in the tree; the
// parser keeps a most-recently-seen name per depth and reattaches every row
// under the ancestor chain that is active when the row arrives, so the flat
// row stream rebuilds the nested tree without explicit parent pointers.
//
// Usage:
//
//	parser := phylo.NewParser(phylo.Config{})
//	tree, err := parser.Parse(doc)
//	pretty := tree.Prettify()
package phylo

import (
	"fmt"
	"log/slog"
	"strings"

	"github.com/hazyhaar/phylotree/tabledoc"
)

// Config configures the parser.
type Config struct {
	// TitleMarker identifies the title row of the classification table.
	// Rows before it are preamble and ignored (default: "mt-MRCA").
	TitleMarker string `json:"title_marker" yaml:"title_marker"`

	// Logger for debug messages.
	Logger *slog.Logger `json:"-" yaml:"-"`
}

func (c *Config) defaults() {
	if c.TitleMarker == "" {
		c.TitleMarker = "mt-MRCA"
	}
	if c.Logger == nil {
		c.Logger = slog.Default()
	}
}

// Parser parses a loaded document into a classification tree.
type Parser struct {
	cfg    Config
	logger *slog.Logger
}

// NewParser creates a Parser with the given configuration.
func NewParser(cfg Config) *Parser {
	cfg.defaults()
	return &Parser{
		cfg:    cfg,
		logger: cfg.Logger,
	}
}

// rangeState gates the row stream on the table title. The transition is
// one-way: once the title row is seen, every later row of the document is
// processed, including rows of subsequent tables.
type rangeState int

const (
	beforeTitle rangeState = iota
	afterTitle
)

// Parse scans the document's tables in order and accumulates the
// classification tree. The queue and raw tree live for this one invocation;
// a Parser may be reused for further documents.
//
// A row whose layout cannot be disambiguated aborts the parse with an
// AmbiguousRowError (unwrappable via errors.As).
func (p *Parser) Parse(doc *tabledoc.Document) (*Tree, error) {
	tree := newTree()
	queue := make(map[int]string)
	state := beforeTitle
	rows := 0

	for ti, table := range doc.Tables {
		for ri, row := range table.Rows {
			cells := make([]string, len(row.Cells))
			for i, c := range row.Cells {
				cells[i] = normalizeWhitespace(c)
			}

			if state == beforeTitle {
				// The title row marks the start; it is not itself processed.
				if strings.Contains(strings.Join(cells, " "), p.cfg.TitleMarker) {
					state = afterTitle
				}
				continue
			}

			ir, err := interpretRow(cells)
			if err != nil {
				return nil, fmt.Errorf("table %d row %d: %w", ti, ri, err)
			}
			if ir == nil {
				continue
			}
			tree.grow(queue, ir)
			rows++
		}
	}

	p.logger.Debug("parsed document", "path", doc.Path, "rows", rows, "nodes", len(tree.nodes)-1)
	return tree, nil
}
