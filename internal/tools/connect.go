// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at https://mozilla.org/MPL/2.0/.

package tools

import (
	"context"
	"errors"
	"fmt"

	"github.com/b3computer/zettel-mcp/internal/database"
	"github.com/b3computer/zettel-mcp/internal/git"
	"github.com/b3computer/zettel-mcp/internal/store"
	"github.com/mark3labs/mcp-go/mcp"
)

// NewConnectTool creates the zettel_connect tool definition
func NewConnectTool() mcp.Tool {
	return mcp.NewTool("zettel_connect",
		mcp.WithDescription("Record a cross-reference between two cards. Cards themselves are append-only; the connection is stored in the cross-reference metadata and the search index, in both directions."),
		mcp.WithString("from",
			mcp.Required(),
			mcp.Description("Source card ID"),
		),
		mcp.WithString("to",
			mcp.Required(),
			mcp.Description("Target card ID"),
		),
		mcp.WithString("label",
			mcp.Description("Optional context for the connection"),
		),
	)
}

// ConnectHandler handles the zettel_connect tool
func ConnectHandler(ctx *ToolContext) func(context.Context, mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	return func(c context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		fromID, err := request.RequireString("from")
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}

		toID, err := request.RequireString("to")
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}

		label := request.GetString("label", "")

		if fromID == toID {
			return mcp.NewToolResultError("cannot connect a card to itself"), nil
		}

		if err := ctx.Store.Connect(fromID, toID); err != nil {
			var notFound *store.NotFoundError
			if errors.As(err, &notFound) {
				return mcp.NewToolResultError(fmt.Sprintf("card not found: %s", notFound.ID)), nil
			}
			return mcp.NewToolResultError(fmt.Sprintf("failed to connect cards: %v", err)), nil
		}

		if err := database.IndexLink(ctx.DB, fromID, toID, label); err != nil {
			return mcp.NewToolResultError(fmt.Sprintf("connected but indexing failed: %v", err)), nil
		}

		// Commit the updated cross-reference metadata
		if repo, repoErr := ctx.GetRepository(); repoErr == nil {
			msgFormat := git.CommitMessageFormats{}
			_ = repo.CommitAll(msgFormat.ConnectCards(fromID, toID))
		}

		return mcp.NewToolResultText(fmt.Sprintf("Connected: '%s' <-> '%s'", fromID, toID)), nil
	}
}
