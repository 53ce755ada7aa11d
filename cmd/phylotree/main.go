// Command phylotree rebuilds the nested haplogroup classification tree from
// the published mtDNA tree table export and prints it as JSON.
package main

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/hazyhaar/phylotree/phylo"
	"github.com/hazyhaar/phylotree/tabledoc"
	"github.com/hazyhaar/phylotree/treestore"
)

const version = "1.0.0"

func main() {
	setupLogging()

	args := os.Args[1:]
	if len(args) > 0 && args[0] == "mcp" {
		cmdMCP(args[1:])
		return
	}
	cmdParse(args)
}

func printUsage() {
	fmt.Fprintf(os.Stderr, `phylotree — rebuild the haplogroup classification tree from a table export

usage:
  phylotree [-flat] [-db path] [-config file] <input>
  phylotree mcp [-config file]

<input>   Path to the tree export (HTML, windows-1252 by default).
-flat     Print the flattened root-to-haplogroup path list instead of
          the nested tree.
-db       Also persist the branches into this SQLite database.
-config   YAML config file (title_marker, encoding, max_file_mb, db_path).
mcp       Serve the parser as MCP tools over stdio.
`)
}

func setupLogging() {
	var lvl slog.Level
	switch os.Getenv("LOG_LEVEL") {
	case "debug":
		lvl = slog.LevelDebug
	case "warn":
		lvl = slog.LevelWarn
	case "error":
		lvl = slog.LevelError
	default:
		lvl = slog.LevelInfo
	}
	// Logs go to stderr: stdout carries the tree itself.
	logger := slog.New(slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{Level: lvl}))
	slog.SetDefault(logger)
}

func loadConfig(path string) *Config {
	if path == "" {
		return DefaultConfig()
	}
	cfg, err := LoadConfig(path)
	if err != nil {
		fmt.Fprintf(os.Stderr, "config: %v\n", err)
		os.Exit(1)
	}
	return cfg
}

func buildPipeline(cfg *Config) (*tabledoc.Pipeline, *phylo.Parser) {
	pipe := tabledoc.New(tabledoc.Config{
		MaxFileSize: int64(cfg.MaxFileMB) * 1024 * 1024,
		Encoding:    cfg.Encoding,
	})
	parser := phylo.NewParser(phylo.Config{TitleMarker: cfg.TitleMarker})
	return pipe, parser
}

func cmdParse(args []string) {
	fs := flag.NewFlagSet("phylotree", flag.ExitOnError)
	flat := fs.Bool("flat", false, "print the flattened path list")
	dbPath := fs.String("db", "", "persist branches into this SQLite database")
	cfgPath := fs.String("config", "", "YAML config file")
	fs.Usage = printUsage
	fs.Parse(args)

	if fs.NArg() != 1 {
		printUsage()
		os.Exit(1)
	}
	input := fs.Arg(0)

	cfg := loadConfig(*cfgPath)
	if *dbPath != "" {
		cfg.DBPath = *dbPath
	}

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	pipe, parser := buildPipeline(cfg)

	doc, err := pipe.Load(ctx, input)
	if err != nil {
		fmt.Fprintf(os.Stderr, "load failed: %v\n", err)
		os.Exit(1)
	}

	tree, err := parser.Parse(doc)
	if err != nil {
		var ambiguous *phylo.AmbiguousRowError
		if errors.As(err, &ambiguous) {
			fmt.Fprintf(os.Stderr, "parse failed (ambiguous row): %v\n", err)
		} else {
			fmt.Fprintf(os.Stderr, "parse failed: %v\n", err)
		}
		os.Exit(1)
	}

	pretty := tree.Prettify()

	if cfg.DBPath != "" {
		db, err := treestore.Open(cfg.DBPath, treestore.WithMkdirAll())
		if err != nil {
			fmt.Fprintf(os.Stderr, "open db: %v\n", err)
			os.Exit(1)
		}
		defer db.Close()
		n, err := treestore.Store(ctx, db, pretty)
		if err != nil {
			fmt.Fprintf(os.Stderr, "store: %v\n", err)
			os.Exit(1)
		}
		slog.Info("branches stored", "db", cfg.DBPath, "count", n)
	}

	var out any = pretty
	if *flat {
		out = phylo.Flatten(pretty)
	}

	data, err := json.MarshalIndent(out, "", "    ")
	if err != nil {
		fmt.Fprintf(os.Stderr, "encode: %v\n", err)
		os.Exit(1)
	}
	fmt.Println(string(data))
}

func cmdMCP(args []string) {
	fs := flag.NewFlagSet("phylotree mcp", flag.ExitOnError)
	cfgPath := fs.String("config", "", "YAML config file")
	fs.Usage = printUsage
	fs.Parse(args)

	cfg := loadConfig(*cfgPath)
	pipe, parser := buildPipeline(cfg)

	srv := mcp.NewServer(&mcp.Implementation{
		Name:    "phylotree",
		Version: version,
	}, nil)
	parser.RegisterMCP(srv, pipe)

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	slog.Info("MCP server starting", "transport", "stdio")
	if err := srv.Run(ctx, &mcp.StdioTransport{}); err != nil && ctx.Err() == nil {
		fmt.Fprintf(os.Stderr, "mcp: %v\n", err)
		os.Exit(1)
	}
}
