// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at https://mozilla.org/MPL/2.0/.

package tools

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/b3computer/zettel-mcp/internal/analysis"
	"github.com/b3computer/zettel-mcp/internal/database"
	"github.com/b3computer/zettel-mcp/internal/git"
	"github.com/b3computer/zettel-mcp/internal/store"
	"github.com/b3computer/zettel-mcp/internal/zettel"
	"github.com/mark3labs/mcp-go/mcp"
)

// NewCreateTool creates the zettel_create tool definition
func NewCreateTool() mcp.Tool {
	return mcp.NewTool("zettel_create",
		mcp.WithDescription("File a new analysis card in the zettelkasten. The card gets the next free number in its category, is written as a markdown file, committed to git and indexed for search."),
		mcp.WithString("title",
			mcp.Required(),
			mcp.Description("Card title, e.g. 'Analysis of ai_manager.py'"),
		),
		mcp.WithString("category",
			mcp.Required(),
			mcp.Description("Category the card belongs to, e.g. 'self_improvement'"),
		),
		mcp.WithString("summary",
			mcp.Required(),
			mcp.Description("Analysis summary as JSON: {\"issues\": [...], \"improvements\": [...], \"risk_level\": \"low|medium|high\", \"priority\": \"low|medium|high\", \"suggested_code\": \"...\", \"generated_at\": \"RFC3339\"}"),
		),
		mcp.WithString("id",
			mcp.Description("Explicit card ID. If omitted, the next free ID in the category is issued."),
		),
		mcp.WithArray("links",
			mcp.Description("Cross-references to existing cards. Array of objects: [{\"to\": \"self_improvementa\", \"label\": \"optional context\"}]"),
		),
		mcp.WithString("user_comment",
			mcp.Description("User commentary for the Further Thoughts section"),
		),
		mcp.WithArray("user_tags",
			mcp.Description("Hashtags attached to the user commentary"),
		),
		mcp.WithString("ai_comment",
			mcp.Description("AI commentary for the Further Thoughts section"),
		),
		mcp.WithArray("ai_tags",
			mcp.Description("Hashtags attached to the AI commentary"),
		),
	)
}

// CardLink represents a cross-reference passed to zettel_create
type CardLink struct {
	To    string `json:"to"`
	Label string `json:"label,omitempty"`
}

// CreateHandler handles the zettel_create tool
func CreateHandler(ctx *ToolContext) func(context.Context, mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	return func(c context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		title, err := request.RequireString("title")
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}

		category, err := request.RequireString("category")
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}

		summaryJSON, err := request.RequireString("summary")
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}

		id := request.GetString("id", "")
		userComment := request.GetString("user_comment", "")
		userTags := request.GetStringSlice("user_tags", []string{})
		aiComment := request.GetString("ai_comment", "")
		aiTags := request.GetStringSlice("ai_tags", []string{})
		links := parseLinks(request)

		title = zettel.SanitizeTitle(title)
		if title == "" {
			return mcp.NewToolResultError("title cannot be empty after sanitization"), nil
		}

		if err := zettel.ValidateCategory(category); err != nil {
			return mcp.NewToolResultError(fmt.Sprintf("invalid category: %v", err)), nil
		}

		summary, err := analysis.Parse([]byte(summaryJSON))
		if err != nil {
			return mcp.NewToolResultError(fmt.Sprintf("invalid summary JSON: %v", err)), nil
		}

		if id == "" {
			id, err = ctx.Store.NextID(category)
			if err != nil {
				return mcp.NewToolResultError(fmt.Sprintf("failed to issue card ID: %v", err)), nil
			}
		} else if err := zettel.ValidateID(id); err != nil {
			return mcp.NewToolResultError(fmt.Sprintf("invalid id: %v", err)), nil
		}

		now := time.Now()
		note := &zettel.Note{
			ID:       id,
			Category: category,
			Title:    title,
			Created:  now,
			Modified: now,
			Summary:  summary,
			Commentary: zettel.Commentary{
				User: zettel.Remark{Tags: userTags, Text: userComment},
				AI:   zettel.Remark{Tags: aiTags, Text: aiComment},
			},
		}
		for _, link := range links {
			note.AddLink(link.To, link.Label)
		}

		if err := ctx.Store.Write(note); err != nil {
			var dup *store.DuplicateIDError
			if errors.As(err, &dup) {
				return mcp.NewToolResultError(fmt.Sprintf("card '%s' already exists at %s. Cards are append-only; file a new card instead.", dup.ID, dup.Path)), nil
			}
			return mcp.NewToolResultError(fmt.Sprintf("failed to write card: %v", err)), nil
		}

		// Commit the card and the regenerated folder index
		if repo, repoErr := ctx.GetRepository(); repoErr == nil {
			msgFormat := git.CommitMessageFormats{}
			if cardPath, ok := ctx.Store.CardPath(id); ok {
				_ = repo.CommitFile(cardPath, msgFormat.CreateCard(id))
			}

			if _, err := ctx.Store.WriteMetaNote(category); err == nil {
				_ = repo.CommitAll(msgFormat.MetaNote(category))
			}
		}

		rendered, err := zettel.RenderCard(note)
		if err == nil {
			relPath := fmt.Sprintf("%s/%s.md", category, id)
			if err := database.IndexCard(ctx.DB, note, relPath, cardPreview(rendered)); err != nil {
				return mcp.NewToolResultText(fmt.Sprintf("Filed card '%s' (%s) but indexing failed: %v", id, title, err)), nil
			}
		}

		// Cards sharing title keywords become cross-references automatically,
		// so thematic neighbors surface without an explicit link
		related := ctx.Store.Related(id, title)
		for _, other := range related {
			_ = ctx.Store.Connect(id, other)
		}

		result := fmt.Sprintf("Filed card '%s': %s", id, title)
		if len(note.Links) > 0 {
			result += fmt.Sprintf("\nCross-references: %d", len(note.Links))
		}
		if len(related) > 0 {
			result += fmt.Sprintf("\nRelated cards: %s", strings.Join(related, ", "))
		}
		return mcp.NewToolResultText(result), nil
	}
}

// parseLinks extracts the links array from tool arguments
func parseLinks(request mcp.CallToolRequest) []CardLink {
	var links []CardLink

	if args, ok := request.Params.Arguments.(map[string]interface{}); ok {
		if linkArray, ok := args["links"].([]interface{}); ok {
			for _, item := range linkArray {
				if linkMap, ok := item.(map[string]interface{}); ok {
					var link CardLink
					if to, ok := linkMap["to"].(string); ok {
						link.To = to
					}
					if label, ok := linkMap["label"].(string); ok {
						link.Label = label
					}
					if link.To != "" {
						links = append(links, link)
					}
				}
			}
		}
	}

	return links
}

const previewLimit = 500

// cardPreview truncates rendered card content for the search index
func cardPreview(content string) string {
	if len(content) <= previewLimit {
		return content
	}
	return content[:previewLimit]
}
