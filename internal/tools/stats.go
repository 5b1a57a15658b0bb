// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at https://mozilla.org/MPL/2.0/.

package tools

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/b3computer/zettel-mcp/internal/database"
	"github.com/mark3labs/mcp-go/mcp"
)

// NewStatsTool creates the zettel_stats tool definition
func NewStatsTool() mcp.Tool {
	return mcp.NewTool("zettel_stats",
		mcp.WithDescription("Report statistics about the zettelkasten: card counts per category, cross-reference count and index health."),
	)
}

// StatsHandler handles the zettel_stats tool
func StatsHandler(ctx *ToolContext) func(context.Context, mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	return func(c context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		stats, err := ctx.Store.Statistics()
		if err != nil {
			return mcp.NewToolResultError(fmt.Sprintf("failed to gather statistics: %v", err)), nil
		}

		var sb strings.Builder
		sb.WriteString("Zettelkasten statistics:\n")
		sb.WriteString(fmt.Sprintf("- Cards: %d\n", stats.TotalCards))
		sb.WriteString(fmt.Sprintf("- Cross-references: %d\n", stats.CrossReferences))
		sb.WriteString(fmt.Sprintf("- Directories: %d\n", len(stats.Directories)))

		if len(stats.Categories) > 0 {
			sb.WriteString("- Categories:\n")
			categories := make([]string, 0, len(stats.Categories))
			for category := range stats.Categories {
				categories = append(categories, category)
			}
			sort.Strings(categories)
			for _, category := range categories {
				sb.WriteString(fmt.Sprintf("  - %s: %d\n", category, stats.Categories[category]))
			}
		}

		records, links, err := database.Counts(ctx.DB)
		if err != nil {
			return mcp.NewToolResultError(fmt.Sprintf("failed to count index records: %v", err)), nil
		}
		sb.WriteString(fmt.Sprintf("- Indexed: %d cards, %d links", records, links))
		if int(records) != stats.TotalCards {
			sb.WriteString(" (index out of date, consider --rebuilddb)")
		}

		return mcp.NewToolResultText(sb.String()), nil
	}
}
