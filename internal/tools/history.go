// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at https://mozilla.org/MPL/2.0/.

package tools

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/b3computer/zettel-mcp/internal/store"
	"github.com/mark3labs/mcp-go/mcp"
)

// NewHistoryTool creates the zettel_history tool definition
func NewHistoryTool() mcp.Tool {
	return mcp.NewTool("zettel_history",
		mcp.WithDescription("Show the git history of a card: when it was filed and every commit that touched it since."),
		mcp.WithString("id",
			mcp.Required(),
			mcp.Description("Card ID, e.g. 'self_improvementa'"),
		),
		mcp.WithNumber("limit",
			mcp.Description("Maximum number of commits. Default: 10"),
		),
	)
}

// HistoryHandler handles the zettel_history tool
func HistoryHandler(ctx *ToolContext) func(context.Context, mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	return func(c context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		id, err := request.RequireString("id")
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}

		limit := int(request.GetFloat("limit", 10))

		// Resolve the card to its file path first
		if _, err := ctx.Store.Read(id); err != nil {
			var notFound *store.NotFoundError
			if errors.As(err, &notFound) {
				return mcp.NewToolResultError(fmt.Sprintf("card not found: %s", id)), nil
			}
			return mcp.NewToolResultError(fmt.Sprintf("failed to read card: %v", err)), nil
		}

		cardPath, ok := ctx.Store.CardPath(id)
		if !ok {
			return mcp.NewToolResultError(fmt.Sprintf("card not found: %s", id)), nil
		}

		repo, err := ctx.GetRepository()
		if err != nil {
			return mcp.NewToolResultError(fmt.Sprintf("failed to open git repository: %v", err)), nil
		}

		commits, err := repo.GetFileHistory(cardPath, limit)
		if err != nil {
			return mcp.NewToolResultError(fmt.Sprintf("failed to get history: %v", err)), nil
		}

		if len(commits) == 0 {
			return mcp.NewToolResultText(fmt.Sprintf("No history for '%s'", id)), nil
		}

		var sb strings.Builder
		sb.WriteString(fmt.Sprintf("History of '%s' (%d commit(s)):\n", id, len(commits)))
		for _, commit := range commits {
			hash := commit.Hash
			if len(hash) > 8 {
				hash = hash[:8]
			}
			message := strings.TrimSpace(commit.Message)
			sb.WriteString(fmt.Sprintf("- %s %s (%s, %s)\n",
				hash, message, commit.Author, commit.Date.Format("2006-01-02 15:04")))
		}

		return mcp.NewToolResultText(sb.String()), nil
	}
}
