// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at https://mozilla.org/MPL/2.0/.

package tools

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/b3computer/zettel-mcp/internal/database"
	"github.com/b3computer/zettel-mcp/internal/graph"
	"github.com/b3computer/zettel-mcp/internal/store"
	"github.com/mark3labs/mcp-go/mcp"
)

// NewLinksTool creates the zettel_links tool definition
func NewLinksTool() mcp.Tool {
	return mcp.NewTool("zettel_links",
		mcp.WithDescription("List the cross-references of a card in the order they appear on the card. Optionally include backlinks from cards that reference it."),
		mcp.WithString("id",
			mcp.Required(),
			mcp.Description("Card ID, e.g. 'self_improvementh'"),
		),
		mcp.WithBoolean("backlinks",
			mcp.Description("Also list cards that link back to this one"),
		),
		mcp.WithNumber("depth",
			mcp.Description("Follow cross-references transitively up to this many hops (max 5). Default: 1"),
		),
	)
}

// LinksHandler handles the zettel_links tool
func LinksHandler(ctx *ToolContext) func(context.Context, mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	return func(c context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		id, err := request.RequireString("id")
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}

		includeBacklinks := request.GetBool("backlinks", false)
		depth := int(request.GetFloat("depth", 1))

		targets, err := ctx.Store.ListLinks(id)
		if err != nil {
			var notFound *store.NotFoundError
			if errors.As(err, &notFound) {
				return mcp.NewToolResultError(fmt.Sprintf("card not found: %s", id)), nil
			}
			return mcp.NewToolResultError(fmt.Sprintf("failed to list links: %v", err)), nil
		}

		var sb strings.Builder
		if len(targets) == 0 {
			sb.WriteString(fmt.Sprintf("'%s' has no cross-references", id))
		} else {
			sb.WriteString(fmt.Sprintf("Cross-references of '%s':\n", id))
			for _, target := range targets {
				sb.WriteString(fmt.Sprintf("- %s\n", target))
			}
		}

		if includeBacklinks {
			back, err := database.BacklinksFor(ctx.DB, id)
			if err != nil {
				return mcp.NewToolResultError(fmt.Sprintf("failed to list backlinks: %v", err)), nil
			}
			sb.WriteString("\n")
			if len(back) == 0 {
				sb.WriteString(fmt.Sprintf("No cards link back to '%s'", id))
			} else {
				sb.WriteString(fmt.Sprintf("Cards linking to '%s':\n", id))
				for _, link := range back {
					sb.WriteString(fmt.Sprintf("- %s\n", link.SourceID))
				}
			}
		}

		if depth > 1 {
			neighborhood, err := graph.Neighborhood(ctx.DB, id, depth)
			if err != nil {
				return mcp.NewToolResultError(fmt.Sprintf("failed to traverse link graph: %v", err)), nil
			}
			sb.WriteString(fmt.Sprintf("\nNeighborhood within %d hops (%d cards):\n", depth, len(neighborhood.Nodes)))
			for _, node := range neighborhood.Nodes {
				if node.ZettelID == id {
					continue
				}
				if node.Title != "" {
					sb.WriteString(fmt.Sprintf("- %s: %s (depth %d)\n", node.ZettelID, node.Title, node.Depth))
				} else {
					sb.WriteString(fmt.Sprintf("- %s (depth %d)\n", node.ZettelID, node.Depth))
				}
			}
		}

		return mcp.NewToolResultText(sb.String()), nil
	}
}
