// Package tabledoc loads a semi-structured HTML document and exposes it as
// ordered tables of rows of raw cell text. It is the input boundary for the
// phylotree pipeline: markup parsing stops here, interpretation of the cell
// contents belongs to the phylo package.
//
// Usage:
//
//	pipe := tabledoc.New(tabledoc.Config{})
//	doc, err := pipe.Load(ctx, "mtDNA_tree.htm")
//	fmt.Println(len(doc.Tables), "tables")
package tabledoc

import (
	"bytes"
	"context"
	"fmt"
	"log/slog"
	"os"
	"strings"

	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
	"golang.org/x/text/encoding/charmap"
)

// Row is an ordered sequence of raw cell texts.
type Row struct {
	Cells []string `json:"cells"`
}

// Table is an ordered sequence of rows.
type Table struct {
	Rows []Row `json:"rows"`
}

// Document is the result of loading a source file.
type Document struct {
	Path   string  `json:"path"`
	Tables []Table `json:"tables"`
}

// Config configures the document loader.
type Config struct {
	// MaxFileSize is the maximum file size to process (default: 100 MB).
	MaxFileSize int64 `json:"max_file_size" yaml:"max_file_size"`

	// Encoding is the source text encoding: "windows-1252" (default, the
	// encoding of the published tree export) or "utf-8".
	Encoding string `json:"encoding" yaml:"encoding"`

	// Logger for debug messages.
	Logger *slog.Logger `json:"-" yaml:"-"`
}

func (c *Config) defaults() {
	if c.MaxFileSize <= 0 {
		c.MaxFileSize = 100 * 1024 * 1024
	}
	if c.Encoding == "" {
		c.Encoding = "windows-1252"
	}
	if c.Logger == nil {
		c.Logger = slog.Default()
	}
}

// Pipeline is the document loading engine.
type Pipeline struct {
	cfg    Config
	logger *slog.Logger
}

// New creates a Pipeline with the given configuration.
func New(cfg Config) *Pipeline {
	cfg.defaults()
	return &Pipeline{
		cfg:    cfg,
		logger: cfg.Logger,
	}
}

// Load reads and parses a source file into tables of raw cell text.
func (p *Pipeline) Load(_ context.Context, path string) (*Document, error) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, fmt.Errorf("stat %s: %w", path, err)
	}
	if info.Size() > p.cfg.MaxFileSize {
		return nil, fmt.Errorf("file too large: %d bytes (max %d)", info.Size(), p.cfg.MaxFileSize)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}

	data, err = decode(data, p.cfg.Encoding)
	if err != nil {
		return nil, fmt.Errorf("decode %s: %w", path, err)
	}

	p.logger.Debug("loading document", "path", path, "encoding", p.cfg.Encoding, "bytes", len(data))

	doc, err := html.Parse(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}

	var tables []Table
	collectTables(doc, &tables)

	return &Document{Path: path, Tables: tables}, nil
}

// Parse parses already-loaded markup. Used by tests and callers that do not
// read from the filesystem.
func (p *Pipeline) Parse(data []byte) (*Document, error) {
	doc, err := html.Parse(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("parse markup: %w", err)
	}
	var tables []Table
	collectTables(doc, &tables)
	return &Document{Tables: tables}, nil
}

func decode(data []byte, encoding string) ([]byte, error) {
	switch strings.ToLower(encoding) {
	case "utf-8", "utf8":
		return data, nil
	case "windows-1252", "cp1252":
		return charmap.Windows1252.NewDecoder().Bytes(data)
	default:
		return nil, fmt.Errorf("unsupported encoding: %q", encoding)
	}
}

// collectTables walks the DOM tree and gathers tables in document order.
// Nested tables are collected as their own entries and not re-walked as
// part of the enclosing table.
func collectTables(n *html.Node, tables *[]Table) {
	if n.Type == html.ElementNode && n.DataAtom == atom.Table {
		*tables = append(*tables, Table{Rows: collectRows(n)})
		return
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		collectTables(c, tables)
	}
}

func collectRows(table *html.Node) []Row {
	var rows []Row
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.ElementNode && n.DataAtom == atom.Tr {
			rows = append(rows, Row{Cells: collectCells(n)})
			return
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	for c := table.FirstChild; c != nil; c = c.NextSibling {
		walk(c)
	}
	return rows
}

func collectCells(tr *html.Node) []string {
	var cells []string
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.ElementNode && (n.DataAtom == atom.Td || n.DataAtom == atom.Th) {
			cells = append(cells, collectText(n))
			return
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	for c := tr.FirstChild; c != nil; c = c.NextSibling {
		walk(c)
	}
	return cells
}

// collectText extracts all text from a node subtree, joining fragments with
// a space. Script and style content is skipped.
func collectText(n *html.Node) string {
	var sb strings.Builder
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.TextNode {
			text := strings.TrimSpace(n.Data)
			if text != "" {
				if sb.Len() > 0 {
					sb.WriteByte(' ')
				}
				sb.WriteString(text)
			}
		}
		if n.Type == html.ElementNode {
			switch n.DataAtom {
			case atom.Script, atom.Style, atom.Noscript:
				return
			}
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(n)
	return sb.String()
}
