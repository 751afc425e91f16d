package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"log"
	"os"
	"os/exec"
	"strings"
	"time"

	sdkmcp "github.com/modelcontextprotocol/go-sdk/mcp"
)

// mcpcall is a one-shot MCP client: it spawns the server over stdio, invokes a
// single tool, and prints the result.

type toolSession interface {
	CallTool(ctx context.Context, params *sdkmcp.CallToolParams) (*sdkmcp.CallToolResult, error)
	Close() error
}

var connectFunc = func(ctx context.Context, command string) (toolSession, error) {
	parts := strings.Fields(command)
	if len(parts) == 0 {
		return nil, fmt.Errorf("server command is required")
	}
	cmd := exec.Command(parts[0], parts[1:]...)
	cmd.Stderr = os.Stderr

	client := sdkmcp.NewClient(&sdkmcp.Implementation{
		Name:    "market-mcp-call",
		Version: "1.0.0",
	}, nil)
	return client.Connect(ctx, &sdkmcp.CommandTransport{Command: cmd}, nil)
}

func main() {
	server := flag.String("server", "market-mcp", "server command to spawn over stdio")
	tool := flag.String("tool", "market_summary", "tool name to invoke")
	args := flag.String("args", `{"symbols":["EBAY"]}`, "tool arguments as JSON")
	timeout := flag.Duration("timeout", 30*time.Second, "overall call timeout")
	flag.Parse()

	ctx, cancel := context.WithTimeout(context.Background(), *timeout)
	defer cancel()

	if err := run(ctx, *server, *tool, *args, os.Stdout); err != nil {
		log.Fatalf("mcpcall: %v", err)
	}
}

func run(ctx context.Context, server, tool, rawArgs string, out io.Writer) error {
	var arguments map[string]any
	if err := json.Unmarshal([]byte(rawArgs), &arguments); err != nil {
		return fmt.Errorf("parse tool arguments: %w", err)
	}

	session, err := connectFunc(ctx, server)
	if err != nil {
		return fmt.Errorf("connect to server: %w", err)
	}
	defer session.Close()

	result, err := session.CallTool(ctx, &sdkmcp.CallToolParams{Name: tool, Arguments: arguments})
	if err != nil {
		return fmt.Errorf("call %s: %w", tool, err)
	}
	if result.IsError {
		return fmt.Errorf("tool %s failed: %s", tool, contentText(result))
	}

	if result.StructuredContent != nil {
		body, err := json.MarshalIndent(result.StructuredContent, "", "  ")
		if err != nil {
			return fmt.Errorf("encode result: %w", err)
		}
		fmt.Fprintln(out, string(body))
		return nil
	}
	fmt.Fprintln(out, contentText(result))
	return nil
}

func contentText(result *sdkmcp.CallToolResult) string {
	var b strings.Builder
	for _, content := range result.Content {
		if tc, ok := content.(*sdkmcp.TextContent); ok {
			b.WriteString(tc.Text)
		}
	}
	return b.String()
}
