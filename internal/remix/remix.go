// Package remix tracks derivative-creation lineage as chains of remix
// nodes and derives attribution and revenue-credit splits from them.
package remix

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/atelier-labs/atelier-go/internal/domain"
	"github.com/atelier-labs/atelier-go/internal/repo"
)

const defaultLicense = "remix-commons-1.0"

// System manages remix chains over a ChainRepository. Chain mutations go
// through Mutate so concurrent additions cannot lose updates.
type System struct {
	chains repo.ChainRepository
	logger *slog.Logger
	now    func() time.Time
	newID  func() string
}

func New(chains repo.ChainRepository, logger *slog.Logger) *System {
	if logger == nil {
		logger = slog.Default()
	}
	return &System{
		chains: chains,
		logger: logger,
		now:    time.Now,
		newID:  uuid.NewString,
	}
}

// CreateOriginalChain roots a new chain at an original creation, with no
// remixes and a generation counter of zero.
func (s *System) CreateOriginalChain(ctx context.Context, creationID, creatorID string) (domain.RemixChain, error) {
	chain := domain.RemixChain{
		ID:             s.newID(),
		RootCreationID: strings.TrimSpace(creationID),
		RootCreatorID:  strings.TrimSpace(creatorID),
		Nodes:          make(map[string]domain.RemixNode),
		CreatedAt:      s.now().UTC(),
	}
	if err := chain.Validate(); err != nil {
		return domain.RemixChain{}, err
	}
	if err := s.chains.Create(ctx, chain); err != nil {
		return domain.RemixChain{}, err
	}
	s.logger.Info("remix chain created", "chain_id", chain.ID, "root_creation_id", chain.RootCreationID)
	return chain, nil
}

// RemixInput describes one derivative creation. An empty ParentID means the
// remix derives directly from the chain root.
type RemixInput struct {
	CreationID  string
	CreatorID   string
	CreatorName string
	ParentID    string
	Type        domain.RemixType
	Changes     []string
}

// AddRemix appends a node to a chain: links it under its parent, stamps the
// node-local arc split for its remix type, and bumps the chain's generation
// counter and last-remixed time.
func (s *System) AddRemix(ctx context.Context, chainID string, in RemixInput) (domain.RemixNode, error) {
	creationID := strings.TrimSpace(in.CreationID)
	creatorID := strings.TrimSpace(in.CreatorID)
	if creationID == "" {
		return domain.RemixNode{}, fmt.Errorf("remix creation id is required")
	}
	if creatorID == "" {
		return domain.RemixNode{}, fmt.Errorf("remix creator id is required")
	}
	if !in.Type.Valid() {
		return domain.RemixNode{}, fmt.Errorf("remix type %q is not recognized", in.Type)
	}

	now := s.now().UTC()
	var node domain.RemixNode
	_, err := s.chains.Mutate(ctx, chainID, func(c *domain.RemixChain) error {
		if creationID == c.RootCreationID {
			return fmt.Errorf("creation %q is the chain root", creationID)
		}
		if _, exists := c.Nodes[creationID]; exists {
			return fmt.Errorf("creation %q is already in the chain", creationID)
		}

		parentID := strings.TrimSpace(in.ParentID)
		if parentID == "" {
			parentID = c.RootCreationID
		}
		parentIsRoot := parentID == c.RootCreationID
		generation := 1
		if !parentIsRoot {
			parent, ok := c.Nodes[parentID]
			if !ok {
				return fmt.Errorf("parent creation %q: %w", parentID, repo.ErrNotFound)
			}
			generation = parent.Generation + 1
			parent.ChildIDs = append(parent.ChildIDs, creationID)
			c.Nodes[parentID] = parent
		} else {
			c.RootChildIDs = append(c.RootChildIDs, creationID)
		}

		node = domain.RemixNode{
			ID:          s.newID(),
			CreationID:  creationID,
			CreatorID:   creatorID,
			CreatorName: strings.TrimSpace(in.CreatorName),
			ParentID:    parentID,
			Type:        in.Type,
			Changes:     append([]string(nil), in.Changes...),
			Arc:         domain.ArcShareForType(in.Type, parentIsRoot),
			Generation:  generation,
			CreatedAt:   now,
		}
		c.Nodes[creationID] = node
		c.NodeOrder = append(c.NodeOrder, creationID)
		c.Generation++
		c.LastRemixedAt = now
		return nil
	})
	if err != nil {
		return domain.RemixNode{}, err
	}

	s.logger.Info("remix added",
		"chain_id", chainID,
		"creation_id", node.CreationID,
		"remix_type", string(node.Type),
		"generation", node.Generation)
	return node, nil
}

// GetChain looks a chain up by id. An absent id is not an error.
func (s *System) GetChain(ctx context.Context, chainID string) (domain.RemixChain, bool, error) {
	chain, err := s.chains.Get(ctx, chainID)
	if err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return domain.RemixChain{}, false, nil
		}
		return domain.RemixChain{}, false, err
	}
	return chain, true, nil
}

// ListChains returns every chain in creation order.
func (s *System) ListChains(ctx context.Context) ([]domain.RemixChain, error) {
	return s.chains.List(ctx)
}

// GenerateAttribution derives the royalty view for one creation in a chain.
// The root creation attributes 100% to the original creator; every other
// node walks its parent links to the root and applies the generation-
// diminishing share rules.
func (s *System) GenerateAttribution(ctx context.Context, chainID, creationID, originalCreatorName string) (domain.Attribution, error) {
	chain, err := s.chains.Get(ctx, chainID)
	if err != nil {
		return domain.Attribution{}, err
	}

	original := domain.Contributor{
		CreatorID:   chain.RootCreatorID,
		CreatorName: strings.TrimSpace(originalCreatorName),
		CreationID:  chain.RootCreationID,
		Role:        domain.RoleOriginal,
		Generation:  0,
	}

	creationID = strings.TrimSpace(creationID)
	if creationID == chain.RootCreationID {
		return domain.Attribution{
			CreationID:      creationID,
			OriginalCreator: original,
			Contributors:    []domain.Contributor{original},
			License:         defaultLicense,
			Shares: []domain.ShareRule{
				{CreatorID: chain.RootCreatorID, Percent: 100, Kind: domain.ShareKindFixed},
			},
		}, nil
	}

	node, ok := chain.Node(creationID)
	if !ok {
		return domain.Attribution{}, fmt.Errorf("creation %q: %w", creationID, repo.ErrNotFound)
	}

	contributors := make([]domain.Contributor, 0, node.Generation+1)
	for cur, walking := node, true; walking; {
		contributors = append(contributors, domain.Contributor{
			CreatorID:   cur.CreatorID,
			CreatorName: cur.CreatorName,
			CreationID:  cur.CreationID,
			Role:        inferRole(cur),
			Generation:  cur.Generation,
		})
		if cur.ParentID == chain.RootCreationID {
			walking = false
			continue
		}
		parent, ok := chain.Node(cur.ParentID)
		if !ok {
			return domain.Attribution{}, fmt.Errorf("parent creation %q: %w", cur.ParentID, repo.ErrNotFound)
		}
		cur = parent
	}
	contributors = append(contributors, original)

	return domain.Attribution{
		CreationID:      creationID,
		OriginalCreator: original,
		Contributors:    contributors,
		License:         defaultLicense,
		Shares:          diminishingShares(chain, node),
	}, nil
}

// diminishingShares allocates percentages for a non-root node: the original
// creator's cut shrinks with depth but never below 5, the direct parent gets
// a fixed cut when it is not the root, the platform takes a flat fee, and
// the remixing creator keeps the remainder.
func diminishingShares(chain domain.RemixChain, node domain.RemixNode) []domain.ShareRule {
	const platformFee = 5

	originalShare := 30 - 2*node.Generation
	if originalShare < 5 {
		originalShare = 5
	}

	parentShare := 0
	if node.ParentID != chain.RootCreationID {
		parentShare = 15
		if node.Type == domain.RemixTypeCollaboration {
			parentShare = 25
		}
	}

	shares := []domain.ShareRule{
		{CreatorID: node.CreatorID, Percent: 100 - originalShare - parentShare - platformFee, Kind: domain.ShareKindFixed},
		{CreatorID: chain.RootCreatorID, Percent: originalShare, Kind: domain.ShareKindDiminishing},
	}
	if parentShare > 0 {
		parent, _ := chain.Node(node.ParentID)
		shares = append(shares, domain.ShareRule{CreatorID: parent.CreatorID, Percent: parentShare, Kind: domain.ShareKindFixed})
	}
	shares = append(shares, domain.ShareRule{CreatorID: "platform", Percent: platformFee, Kind: domain.ShareKindFixed})
	return shares
}

// inferRole maps a node's remix type and change count to a contributor role.
func inferRole(node domain.RemixNode) domain.ContributorRole {
	switch node.Type {
	case domain.RemixTypeCollaboration:
		return domain.RoleCollaborator
	case domain.RemixTypeTransformation:
		return domain.RoleRemixer
	case domain.RemixTypeExtension:
		return domain.RoleCoCreator
	default:
		if len(node.Changes) >= 3 {
			return domain.RoleRemixer
		}
		return domain.RoleInspiration
	}
}
