// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at https://mozilla.org/MPL/2.0/.

package tools

import (
	"context"
	"errors"
	"fmt"

	"github.com/b3computer/zettel-mcp/internal/store"
	"github.com/b3computer/zettel-mcp/internal/zettel"
	"github.com/mark3labs/mcp-go/mcp"
)

// NewReadTool creates the zettel_read tool definition
func NewReadTool() mcp.Tool {
	return mcp.NewTool("zettel_read",
		mcp.WithDescription("Read a card from the zettelkasten by its ID. Returns the full card: title, analysis summary, commentary and cross-references."),
		mcp.WithString("id",
			mcp.Required(),
			mcp.Description("Card ID, e.g. 'self_improvementa'"),
		),
	)
}

// ReadHandler handles the zettel_read tool
func ReadHandler(ctx *ToolContext) func(context.Context, mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	return func(c context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		id, err := request.RequireString("id")
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}

		note, err := ctx.Store.Read(id)
		if err != nil {
			var notFound *store.NotFoundError
			if errors.As(err, &notFound) {
				return mcp.NewToolResultError(fmt.Sprintf("card not found: %s", id)), nil
			}
			var parseErr *zettel.ParseError
			if errors.As(err, &parseErr) {
				return mcp.NewToolResultError(fmt.Sprintf("card '%s' is malformed (%s section): %v", id, parseErr.Section, parseErr.Err)), nil
			}
			return mcp.NewToolResultError(fmt.Sprintf("failed to read card: %v", err)), nil
		}

		rendered, err := zettel.RenderCard(note)
		if err != nil {
			return mcp.NewToolResultError(fmt.Sprintf("failed to render card: %v", err)), nil
		}

		return mcp.NewToolResultText(rendered), nil
	}
}
