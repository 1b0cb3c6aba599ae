// kiosk-mcp exposes one kiosk session as an MCP stdio server, so an agent can
// play or test scenarios turn by turn.
//
// Environment variables:
//
//	KIOSK_CONFIG        world tuning JSON (default: configs/world.json)
//	KIOSK_CONTENT_DIR   optional directory of scenario files
//	KIOSK_DB_PATH       optional SQLite scenario database
//
// Every tool returns the messages the session produced plus a fresh view.
package main

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"os"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"ProjectKiosk/internal/kiosk"
	"ProjectKiosk/internal/server"
)

func main() {
	cfg := server.DefaultAppConfig()
	if path := os.Getenv("KIOSK_CONFIG"); path != "" {
		cfg.WorldConfigPath = path
	}
	cfg.ContentDir = os.Getenv("KIOSK_CONTENT_DIR")
	cfg.ContentDB = os.Getenv("KIOSK_DB_PATH")

	settings := server.ResolveSessionConfig(cfg)
	// No typewriter on a text channel.
	settings.RevealCharsPerSecond = 0

	store, closeStore, err := server.OpenStore(cfg)
	if err != nil {
		log.Fatalf("kiosk-mcp: %v", err)
	}
	defer closeStore()

	session := kiosk.NewSession(settings, store)

	srv := mcp.NewServer(&mcp.Implementation{
		Name:    "kiosk-mcp",
		Version: "1.0.0",
	}, nil)

	mcp.AddTool(srv, &mcp.Tool{
		Name:        "start",
		Description: "Begin the game with the first customer. Does nothing if the game is already running.",
	}, action(session, func(ctx context.Context, s *kiosk.Session, _ emptyInput) error { return s.Begin(ctx) }))

	mcp.AddTool(srv, &mcp.Tool{
		Name:        "state",
		Description: "Show the current customer, line, choices, access panel, score and counter without changing anything.",
	}, action(session, func(ctx context.Context, s *kiosk.Session, _ emptyInput) error { return nil }))

	mcp.AddTool(srv, &mcp.Tool{
		Name:        "continue",
		Description: "Press Continue to advance to the next line.",
	}, action(session, func(ctx context.Context, s *kiosk.Session, _ emptyInput) error { return s.Continue() }))

	mcp.AddTool(srv, &mcp.Tool{
		Name:        "choose",
		Description: "Pick a response on the current line by its index from the choices list.",
	}, action(session, func(ctx context.Context, s *kiosk.Session, in chooseInput) error { return s.Choose(in.Index) }))

	mcp.AddTool(srv, &mcp.Tool{
		Name:        "go_back",
		Description: "Press the Go Back button on the current line.",
	}, action(session, func(ctx context.Context, s *kiosk.Session, _ emptyInput) error { return s.GoBack() }))

	mcp.AddTool(srv, &mcp.Tool{
		Name:        "scan_id",
		Description: "Scan the ID card the customer handed over. Authorization cards take a few seconds to verify; poll with state.",
	}, action(session, func(ctx context.Context, s *kiosk.Session, _ emptyInput) error { return s.ScanID() }))

	mcp.AddTool(srv, &mcp.Tool{
		Name:        "dismiss_card",
		Description: "Put away a business card the customer is showing.",
	}, action(session, func(ctx context.Context, s *kiosk.Session, _ emptyInput) error { return s.DismissCard() }))

	mcp.AddTool(srv, &mcp.Tool{
		Name:        "checkout_add",
		Description: "Put one item on the counter, e.g. SodaCan, BeerBottle, ChipsBag.",
	}, action(session, func(ctx context.Context, s *kiosk.Session, in itemInput) error { return s.AddToCheckout(in.Item) }))

	mcp.AddTool(srv, &mcp.Tool{
		Name:        "checkout_remove",
		Description: "Take one item off the counter.",
	}, action(session, func(ctx context.Context, s *kiosk.Session, in itemInput) error { return s.RemoveFromCheckout(in.Item) }))

	mcp.AddTool(srv, &mcp.Tool{
		Name:        "open_inbox",
		Description: "Open the inbox and mark every message read.",
	}, action(session, func(ctx context.Context, s *kiosk.Session, _ emptyInput) error { s.OpenInbox(); return nil }))

	mcp.AddTool(srv, &mcp.Tool{
		Name:        "next_customer",
		Description: "Leave the score screen and call the next customer.",
	}, action(session, func(ctx context.Context, s *kiosk.Session, _ emptyInput) error { return s.NextCustomer(ctx) }))

	mcp.AddTool(srv, &mcp.Tool{
		Name:        "new_game",
		Description: "Discard all progress and start over.",
	}, action(session, func(ctx context.Context, s *kiosk.Session, _ emptyInput) error { return s.NewGame(ctx) }))

	if err := srv.Run(context.Background(), &mcp.StdioTransport{}); err != nil {
		log.Fatalf("kiosk-mcp: %v", err)
	}
}

// --- Input types ---

type emptyInput struct{}

type chooseInput struct {
	Index int `json:"index" jsonschema:"Response index as listed in choices"`
}

type itemInput struct {
	Item string `json:"item" jsonschema:"Item category name, e.g. SodaCan"`
}

// --- Handlers ---

// action runs fn against the session and reports what it produced. Rule
// violations are part of the result, not tool failures.
func action[In any](s *kiosk.Session, fn func(context.Context, *kiosk.Session, In) error) func(context.Context, *mcp.CallToolRequest, In) (*mcp.CallToolResult, any, error) {
	return func(ctx context.Context, req *mcp.CallToolRequest, input In) (*mcp.CallToolResult, any, error) {
		out := map[string]any{}
		if err := fn(ctx, s, input); err != nil {
			out["error"] = err.Error()
		}
		out["messages"] = s.Drain()
		out["view"] = s.View()
		return textResult(jsonString(out)), nil, nil
	}
}

func textResult(text string) *mcp.CallToolResult {
	return &mcp.CallToolResult{
		Content: []mcp.Content{
			&mcp.TextContent{Text: text},
		},
	}
}

func jsonString(v any) string {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Sprintf(`{"error": "marshal: %v"}`, err)
	}
	return string(data)
}
