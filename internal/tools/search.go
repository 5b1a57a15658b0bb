// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at https://mozilla.org/MPL/2.0/.

package tools

import (
	"context"
	"fmt"
	"strings"

	"github.com/b3computer/zettel-mcp/internal/database"
	"github.com/mark3labs/mcp-go/mcp"
)

// NewSearchTool creates the zettel_search tool definition
func NewSearchTool() mcp.Tool {
	return mcp.NewTool("zettel_search",
		mcp.WithDescription("Search the card index by title, category or hashtag. Returns matching card IDs with titles; use zettel_read to fetch a full card."),
		mcp.WithString("query",
			mcp.Required(),
			mcp.Description("Search term, matched against titles, categories and tags"),
		),
		mcp.WithNumber("limit",
			mcp.Description("Maximum number of results. Default: 20"),
		),
	)
}

// SearchHandler handles the zettel_search tool
func SearchHandler(ctx *ToolContext) func(context.Context, mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	return func(c context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		query, err := request.RequireString("query")
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}

		limit := int(request.GetFloat("limit", 20))

		records, err := database.SearchRecords(ctx.DB, query, limit)
		if err != nil {
			return mcp.NewToolResultError(fmt.Sprintf("search failed: %v", err)), nil
		}

		if len(records) == 0 {
			return mcp.NewToolResultText(fmt.Sprintf("No cards match '%s'", query)), nil
		}

		var sb strings.Builder
		sb.WriteString(fmt.Sprintf("Found %d card(s) matching '%s':\n", len(records), query))
		for _, record := range records {
			sb.WriteString(fmt.Sprintf("- %s: %s [%s]", record.ZettelID, record.Title, record.Category))
			if record.RiskLevel != "" {
				sb.WriteString(fmt.Sprintf(" risk=%s", record.RiskLevel))
			}
			if tags := record.DecodeTags(); len(tags) > 0 {
				sb.WriteString(fmt.Sprintf(" #%s", strings.Join(tags, " #")))
			}
			sb.WriteString("\n")
		}

		return mcp.NewToolResultText(sb.String()), nil
	}
}
