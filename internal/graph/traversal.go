// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at https://mozilla.org/MPL/2.0/.

package graph

import (
	"errors"
	"fmt"

	"github.com/b3computer/zettel-mcp/internal/database"
	"gorm.io/gorm"
)

// Node represents a card in the link graph
type Node struct {
	ZettelID string
	Title    string
	Depth    int
}

// Edge represents a cross-reference between two cards
type Edge struct {
	SourceID string
	TargetID string
	Label    string
}

// Graph is the neighborhood of a card in the cross-reference graph
type Graph struct {
	Nodes []Node
	Edges []Edge
}

// maxHopLimit caps traversal depth; cross-reference chains longer than
// this are not useful for finding related cards
const maxHopLimit = 5

// Neighborhood performs a breadth-first traversal of the link graph from
// a starting card, following links in both directions up to maxHops.
func Neighborhood(db *gorm.DB, startID string, maxHops int) (*Graph, error) {
	if maxHops > maxHopLimit {
		maxHops = maxHopLimit
	}

	graph := &Graph{
		Nodes: []Node{},
		Edges: []Edge{},
	}

	visited := make(map[string]bool)
	visited[startID] = true
	if err := addNode(db, startID, 0, graph); err != nil {
		return nil, err
	}

	type queueItem struct {
		id    string
		depth int
	}
	queue := []queueItem{{startID, 0}}

	seenEdges := make(map[string]bool)

	for len(queue) > 0 {
		current := queue[0]
		queue = queue[1:]

		if current.depth >= maxHops {
			continue
		}

		links, err := neighborLinks(db, current.id)
		if err != nil {
			continue
		}

		for _, link := range links {
			edgeKey := link.SourceID + "\x00" + link.TargetID
			if !seenEdges[edgeKey] {
				seenEdges[edgeKey] = true
				graph.Edges = append(graph.Edges, Edge{
					SourceID: link.SourceID,
					TargetID: link.TargetID,
					Label:    link.Label,
				})
			}

			neighborID := link.TargetID
			if neighborID == current.id {
				neighborID = link.SourceID
			}

			if !visited[neighborID] {
				visited[neighborID] = true
				if err := addNode(db, neighborID, current.depth+1, graph); err != nil {
					return nil, err
				}
				queue = append(queue, queueItem{neighborID, current.depth + 1})
			}
		}
	}

	return graph, nil
}

// neighborLinks returns links touching a card in either direction
func neighborLinks(db *gorm.DB, id string) ([]database.ZettelLink, error) {
	var links []database.ZettelLink
	err := db.Where("source_id = ? OR target_id = ?", id, id).
		Order("position").
		Find(&links).Error
	if err != nil {
		return nil, fmt.Errorf("failed to query links: %w", err)
	}
	return links, nil
}

// addNode adds a card node to the graph. Cards referenced but not indexed
// still get a node so dangling links stay visible; any other lookup
// failure aborts the traversal.
func addNode(db *gorm.DB, id string, depth int, graph *Graph) error {
	node := Node{ZettelID: id, Depth: depth}

	record, err := database.FindRecord(db, id)
	switch {
	case err == nil:
		node.Title = record.Title
	case !errors.Is(err, gorm.ErrRecordNotFound):
		return fmt.Errorf("failed to look up card '%s': %w", id, err)
	}

	graph.Nodes = append(graph.Nodes, node)
	return nil
}
