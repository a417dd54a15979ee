package remix

import (
	"context"
	"fmt"
	"strings"

	"github.com/atelier-labs/atelier-go/internal/domain"
)

// ChainStats is a roll-up over one chain. EstimatedArc is a rough credit
// estimate: each node's arc split is summed per creator, with the root
// creator collecting every original cut and "platform" the fees.
type ChainStats struct {
	ChainID           string
	TotalRemixes      int
	MaxGeneration     int
	UniqueCreators    int
	DeepestCreationID string
	EstimatedArc      map[string]int
}

func (s *System) ChainStats(ctx context.Context, chainID string) (ChainStats, error) {
	chain, err := s.chains.Get(ctx, chainID)
	if err != nil {
		return ChainStats{}, err
	}

	stats := ChainStats{
		ChainID:      chain.ID,
		TotalRemixes: len(chain.NodeOrder),
		EstimatedArc: make(map[string]int),
	}

	creators := map[string]struct{}{chain.RootCreatorID: {}}
	for _, creationID := range chain.NodeOrder {
		node := chain.Nodes[creationID]
		creators[node.CreatorID] = struct{}{}
		if node.Generation > stats.MaxGeneration {
			stats.MaxGeneration = node.Generation
			stats.DeepestCreationID = node.CreationID
		}

		stats.EstimatedArc[node.CreatorID] += node.Arc.Creator
		stats.EstimatedArc[chain.RootCreatorID] += node.Arc.Original
		stats.EstimatedArc["platform"] += node.Arc.Platform
		if node.Arc.Parent > 0 {
			if parent, ok := chain.Node(node.ParentID); ok {
				stats.EstimatedArc[parent.CreatorID] += node.Arc.Parent
			}
		}
	}
	stats.UniqueCreators = len(creators)
	return stats, nil
}

// VisualizeChain renders the chain as an indented tree for inspection.
func (s *System) VisualizeChain(ctx context.Context, chainID string) (string, error) {
	chain, err := s.chains.Get(ctx, chainID)
	if err != nil {
		return "", err
	}

	var b strings.Builder
	fmt.Fprintf(&b, "%s (original by %s)\n", chain.RootCreationID, chain.RootCreatorID)
	for _, childID := range chain.RootChildIDs {
		writeBranch(&b, chain, childID, 1)
	}
	return b.String(), nil
}

func writeBranch(b *strings.Builder, chain domain.RemixChain, creationID string, depth int) {
	node, ok := chain.Node(creationID)
	if !ok {
		return
	}
	name := node.CreatorName
	if name == "" {
		name = node.CreatorID
	}
	fmt.Fprintf(b, "%s[%s] %s by %s (gen %d)\n",
		strings.Repeat("  ", depth), node.Type, node.CreationID, name, node.Generation)
	for _, childID := range node.ChildIDs {
		writeBranch(b, chain, childID, depth+1)
	}
}
