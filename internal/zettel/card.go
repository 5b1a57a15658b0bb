// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at https://mozilla.org/MPL/2.0/.

package zettel

import (
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/b3computer/zettel-mcp/internal/analysis"
)

var connectionRegex = regexp.MustCompile(`^- \*\*#([^*]+)\*\*(?::\s*(.*))?$`)

// noConnections is the placeholder rendered when a card records no links.
const noConnections = "- (none found)"

// RenderCard serializes a note into its fixed section layout: title line,
// metadata block, summary JSON, commentary, connections.
func RenderCard(n *Note) (string, error) {
	var b strings.Builder

	fmt.Fprintf(&b, "# %s: %s\n\n", n.Category, n.Title)
	fmt.Fprintf(&b, "**Zettel Number:** %s\n", n.ID)
	fmt.Fprintf(&b, "**Category:** %s\n", n.Category)
	fmt.Fprintf(&b, "**Created:** %s\n", n.Created.Format(time.RFC3339Nano))
	fmt.Fprintf(&b, "**Modified:** %s\n", n.Modified.Format(time.RFC3339Nano))
	b.WriteString("\n---\n\n")

	b.WriteString("## Summary\n\n")
	summary := n.Summary
	if summary == nil {
		summary = &analysis.Summary{Issues: []string{}, Improvements: []string{}}
	}
	data, err := summary.Marshal()
	if err != nil {
		return "", fmt.Errorf("failed to render summary for '%s': %w", n.ID, err)
	}
	b.Write(data)
	b.WriteString("\n\n---\n\n")

	b.WriteString("## Further Thoughts\n\n")
	b.WriteString("### User\n")
	writeRemark(&b, n.Commentary.User)
	b.WriteString("\n### AI\n")
	writeRemark(&b, n.Commentary.AI)
	b.WriteString("\n---\n\n")

	b.WriteString("## Connections\n\n")
	if len(n.Links) == 0 {
		b.WriteString(noConnections + "\n")
	} else {
		for _, l := range n.Links {
			if l.Label != "" {
				fmt.Fprintf(&b, "- **#%s**: %s\n", l.Target, l.Label)
			} else {
				fmt.Fprintf(&b, "- **#%s**\n", l.Target)
			}
		}
	}
	b.WriteString("\n---\n")

	return b.String(), nil
}

// writeRemark renders one commentary section: a hashtag bullet followed by
// one bullet per text line.
func writeRemark(b *strings.Builder, r Remark) {
	if len(r.Tags) > 0 {
		b.WriteString("- ")
		for i, t := range r.Tags {
			if i > 0 {
				b.WriteString(" ")
			}
			b.WriteString("#" + t)
		}
		b.WriteString("\n")
	}
	if r.Text != "" {
		for _, line := range strings.Split(r.Text, "\n") {
			b.WriteString("- " + line + "\n")
		}
	}
}

// card sections, in document order
type cardSection int

const (
	sectionHeader cardSection = iota
	sectionSummary
	sectionUser
	sectionAI
	sectionConnections
)

// ParseCard deserializes a card from its textual form. A malformed summary
// blob yields a *ParseError; the caller decides whether to skip or abort.
func ParseCard(content string) (*Note, error) {
	n := &Note{Links: []Link{}}

	section := sectionHeader
	var summaryLines []string
	var userBullets, aiBullets []string

	for _, raw := range strings.Split(content, "\n") {
		line := strings.TrimRight(raw, " \t")
		trimmed := strings.TrimSpace(line)

		switch {
		case strings.HasPrefix(trimmed, "## Summary"):
			section = sectionSummary
			continue
		case strings.HasPrefix(trimmed, "## Further Thoughts"):
			section = sectionUser
			continue
		case strings.HasPrefix(trimmed, "### User"):
			section = sectionUser
			continue
		case strings.HasPrefix(trimmed, "### AI"):
			section = sectionAI
			continue
		case strings.HasPrefix(trimmed, "## Connections"):
			section = sectionConnections
			continue
		}

		switch section {
		case sectionHeader:
			if err := parseHeaderLine(n, trimmed); err != nil {
				return nil, &ParseError{ID: n.ID, Section: "header", Err: err}
			}
		case sectionSummary:
			if trimmed == "---" {
				continue
			}
			summaryLines = append(summaryLines, line)
		case sectionUser:
			if strings.HasPrefix(trimmed, "- ") || trimmed == "-" {
				userBullets = append(userBullets, strings.TrimPrefix(strings.TrimPrefix(trimmed, "-"), " "))
			}
		case sectionAI:
			if strings.HasPrefix(trimmed, "- ") || trimmed == "-" {
				aiBullets = append(aiBullets, strings.TrimPrefix(strings.TrimPrefix(trimmed, "-"), " "))
			}
		case sectionConnections:
			if err := parseConnectionLine(n, trimmed); err != nil {
				return nil, &ParseError{ID: n.ID, Section: "connections", Err: err}
			}
		}
	}

	if n.ID == "" {
		return nil, &ParseError{Section: "header", Err: fmt.Errorf("missing Zettel Number")}
	}

	summaryText := strings.TrimSpace(strings.Join(summaryLines, "\n"))
	if summaryText != "" {
		s, err := analysis.Parse([]byte(summaryText))
		if err != nil {
			return nil, &ParseError{ID: n.ID, Section: "summary", Err: err}
		}
		n.Summary = s
	}

	n.Commentary.User = parseRemark(userBullets)
	n.Commentary.AI = parseRemark(aiBullets)

	return n, nil
}

// parseHeaderLine consumes a line from the title/metadata block.
func parseHeaderLine(n *Note, line string) error {
	switch {
	case strings.HasPrefix(line, "# "):
		heading := strings.TrimPrefix(line, "# ")
		if category, title, found := strings.Cut(heading, ": "); found {
			n.Category = category
			n.Title = title
		} else {
			n.Title = heading
		}
	case strings.HasPrefix(line, "**Zettel Number:**"):
		n.ID = strings.TrimSpace(strings.TrimPrefix(line, "**Zettel Number:**"))
	case strings.HasPrefix(line, "**Category:**"):
		n.Category = strings.TrimSpace(strings.TrimPrefix(line, "**Category:**"))
	case strings.HasPrefix(line, "**Created:**"):
		t, err := parseTimestamp(strings.TrimSpace(strings.TrimPrefix(line, "**Created:**")))
		if err != nil {
			return fmt.Errorf("invalid created timestamp: %w", err)
		}
		n.Created = t
	case strings.HasPrefix(line, "**Modified:**"):
		t, err := parseTimestamp(strings.TrimSpace(strings.TrimPrefix(line, "**Modified:**")))
		if err != nil {
			return fmt.Errorf("invalid modified timestamp: %w", err)
		}
		n.Modified = t
	}
	return nil
}

// parseConnectionLine consumes a bullet from the connections section.
func parseConnectionLine(n *Note, line string) error {
	if line == "" || line == "---" || line == noConnections {
		return nil
	}
	if !strings.HasPrefix(line, "- ") {
		return nil
	}
	m := connectionRegex.FindStringSubmatch(line)
	if m == nil {
		return fmt.Errorf("malformed connection line: %s", line)
	}
	n.Links = append(n.Links, Link{Target: m[1], Label: m[2]})
	return nil
}

// parseRemark rebuilds a commentary section from its bullets. Only the
// first bullet can be the label bullet, matching the render order; an
// all-hashtag bullet later in the section is text. A section without
// labels whose first text line consists solely of hashtags reads back as
// labels, since the rendered forms are identical.
func parseRemark(bullets []string) Remark {
	var r Remark
	var textLines []string
	for i, b := range bullets {
		if i == 0 {
			if tags, ok := hashtagBullet(b); ok {
				r.Tags = tags
				continue
			}
		}
		textLines = append(textLines, b)
	}
	r.Text = strings.Join(textLines, "\n")
	return r
}

// hashtagBullet parses a bullet consisting solely of #labels.
func hashtagBullet(s string) ([]string, bool) {
	fields := strings.Fields(s)
	if len(fields) == 0 {
		return nil, false
	}
	tags := make([]string, 0, len(fields))
	for _, f := range fields {
		if !strings.HasPrefix(f, "#") || len(f) < 2 {
			return nil, false
		}
		tags = append(tags, strings.TrimPrefix(f, "#"))
	}
	return tags, true
}

// parseTimestamp accepts RFC 3339 with or without fractional seconds.
func parseTimestamp(s string) (time.Time, error) {
	return time.Parse(time.RFC3339, s)
}
