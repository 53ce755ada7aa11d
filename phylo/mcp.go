package phylo

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/hazyhaar/phylotree/tabledoc"
)

// RegisterMCP registers phylotree tools on an MCP server. Loading uses the
// given tabledoc pipeline so the server shares the CLI's encoding and size
// configuration.
func (p *Parser) RegisterMCP(srv *mcp.Server, pipe *tabledoc.Pipeline) {
	p.registerParseTool(srv, pipe)
	p.registerFlattenTool(srv, pipe)
}

func inputSchema(properties map[string]any, required []string) map[string]any {
	s := map[string]any{
		"type":       "object",
		"properties": properties,
	}
	if len(required) > 0 {
		s["required"] = required
	}
	return s
}

// registerTool wires a typed endpoint as an MCP tool: decode arguments,
// run, marshal the response as JSON text content. Endpoint errors become
// tool errors, not protocol errors.
func registerTool[Req any](srv *mcp.Server, tool *mcp.Tool, endpoint func(context.Context, *Req) (any, error)) {
	srv.AddTool(tool, func(ctx context.Context, req *mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		var r Req
		if err := json.Unmarshal(req.Params.Arguments, &r); err != nil {
			var res mcp.CallToolResult
			res.SetError(fmt.Errorf("invalid arguments: %w", err))
			return &res, nil
		}

		resp, err := endpoint(ctx, &r)
		if err != nil {
			var res mcp.CallToolResult
			res.SetError(errors.New(err.Error()))
			return &res, nil
		}

		data, err := json.Marshal(resp)
		if err != nil {
			var res mcp.CallToolResult
			res.SetError(fmt.Errorf("marshal: %w", err))
			return &res, nil
		}
		return &mcp.CallToolResult{
			Content: []mcp.Content{&mcp.TextContent{Text: string(data)}},
		}, nil
	})
}

// --- parse ---

type parseReq struct {
	Path string `json:"path"`
}

func (p *Parser) registerParseTool(srv *mcp.Server, pipe *tabledoc.Pipeline) {
	tool := &mcp.Tool{
		Name:        "phylotree_parse",
		Description: "Parse a haplogroup classification table export into a nested tree.",
		InputSchema: inputSchema(map[string]any{
			"path": map[string]any{"type": "string", "description": "File path of the tree export"},
		}, []string{"path"}),
	}

	registerTool(srv, tool, func(ctx context.Context, r *parseReq) (any, error) {
		doc, err := pipe.Load(ctx, r.Path)
		if err != nil {
			return nil, err
		}
		tree, err := p.Parse(doc)
		if err != nil {
			return nil, err
		}
		return tree.Prettify(), nil
	})
}

// --- flatten ---

type flattenReq struct {
	Path string `json:"path"`
}

func (p *Parser) registerFlattenTool(srv *mcp.Server, pipe *tabledoc.Pipeline) {
	tool := &mcp.Tool{
		Name:        "phylotree_flatten",
		Description: "Parse a haplogroup classification table export and list every root-to-haplogroup path.",
		InputSchema: inputSchema(map[string]any{
			"path": map[string]any{"type": "string", "description": "File path of the tree export"},
		}, []string{"path"}),
	}

	registerTool(srv, tool, func(ctx context.Context, r *flattenReq) (any, error) {
		doc, err := pipe.Load(ctx, r.Path)
		if err != nil {
			return nil, err
		}
		tree, err := p.Parse(doc)
		if err != nil {
			return nil, err
		}
		return map[string]any{"paths": Flatten(tree.Prettify())}, nil
	})
}
