package domain

import (
	"errors"
	"strings"
	"time"
)

// RemixType classifies how a derivative creation relates to its parent.
type RemixType string

const (
	RemixTypeVariation      RemixType = "variation"
	RemixTypeExtension      RemixType = "extension"
	RemixTypeTransformation RemixType = "transformation"
	RemixTypeCollaboration  RemixType = "collaboration"
)

func (t RemixType) Valid() bool {
	switch t {
	case RemixTypeVariation, RemixTypeExtension, RemixTypeTransformation, RemixTypeCollaboration:
		return true
	}
	return false
}

// ContributorRole is the inferred role of a contributor in a remix lineage.
type ContributorRole string

const (
	RoleOriginal     ContributorRole = "original"
	RoleCoCreator    ContributorRole = "co-creator"
	RoleRemixer      ContributorRole = "remixer"
	RoleInspiration  ContributorRole = "inspiration"
	RoleCollaborator ContributorRole = "collaborator"
)

// ArcDistribution is the node-local revenue-credit split stamped at remix
// time, in whole percentage points summing to 100. Parent is zero when the
// direct parent is the chain root (its cut folds into Creator).
type ArcDistribution struct {
	Original int
	Parent   int
	Creator  int
	Platform int
}

// ArcShareForType returns the canonical per-remix-type split. parentIsRoot
// folds the parent share into the creator share.
func ArcShareForType(t RemixType, parentIsRoot bool) ArcDistribution {
	var dist ArcDistribution
	switch t {
	case RemixTypeVariation:
		dist = ArcDistribution{Original: 30, Parent: 10, Creator: 55, Platform: 5}
	case RemixTypeExtension:
		dist = ArcDistribution{Original: 20, Parent: 20, Creator: 55, Platform: 5}
	case RemixTypeTransformation:
		dist = ArcDistribution{Original: 15, Parent: 10, Creator: 70, Platform: 5}
	case RemixTypeCollaboration:
		dist = ArcDistribution{Original: 25, Parent: 25, Creator: 45, Platform: 5}
	default:
		return ArcDistribution{}
	}
	if parentIsRoot {
		dist.Creator += dist.Parent
		dist.Parent = 0
	}
	return dist
}

// RemixNode is one derivative creation in a chain. Created once, never
// mutated afterwards except that ChildIDs grows as descendants are added.
type RemixNode struct {
	ID          string
	CreationID  string
	CreatorID   string
	CreatorName string
	ParentID    string
	ChildIDs    []string
	Type        RemixType
	Changes     []string
	Arc         ArcDistribution
	Generation  int
	CreatedAt   time.Time
}

func (n RemixNode) Clone() RemixNode {
	out := n
	if n.ChildIDs != nil {
		out.ChildIDs = append([]string(nil), n.ChildIDs...)
	}
	if n.Changes != nil {
		out.Changes = append([]string(nil), n.Changes...)
	}
	return out
}

// RemixChain is the lineage DAG rooted at one original creation. Nodes are
// held in an arena keyed by creation id with explicit child id lists, so the
// structure stays acyclic by construction.
type RemixChain struct {
	ID             string
	RootCreationID string
	RootCreatorID  string
	RootChildIDs   []string
	NodeOrder      []string
	Nodes          map[string]RemixNode
	Generation     int64
	CreatedAt      time.Time
	LastRemixedAt  time.Time
}

func (c RemixChain) Validate() error {
	if strings.TrimSpace(c.ID) == "" {
		return errors.New("chain id is required")
	}
	if strings.TrimSpace(c.RootCreationID) == "" {
		return errors.New("root creation id is required")
	}
	if strings.TrimSpace(c.RootCreatorID) == "" {
		return errors.New("root creator id is required")
	}
	return nil
}

func (c RemixChain) Clone() RemixChain {
	out := c
	if c.RootChildIDs != nil {
		out.RootChildIDs = append([]string(nil), c.RootChildIDs...)
	}
	if c.NodeOrder != nil {
		out.NodeOrder = append([]string(nil), c.NodeOrder...)
	}
	out.Nodes = make(map[string]RemixNode, len(c.Nodes))
	for id, node := range c.Nodes {
		out.Nodes[id] = node.Clone()
	}
	return out
}

// Node returns the node for a creation id.
func (c RemixChain) Node(creationID string) (RemixNode, bool) {
	node, ok := c.Nodes[creationID]
	return node, ok
}

// ShareKind distinguishes fixed from generation-diminishing allocations.
type ShareKind string

const (
	ShareKindFixed       ShareKind = "fixed"
	ShareKindDiminishing ShareKind = "diminishing"
)

// ShareRule allocates a percentage of revenue credit to one creator.
type ShareRule struct {
	CreatorID string
	Percent   int
	Kind      ShareKind
}

// Contributor is one entry in an attribution walk, ordered from the remix
// itself up to the root.
type Contributor struct {
	CreatorID   string
	CreatorName string
	CreationID  string
	Role        ContributorRole
	Generation  int
}

// Attribution is the derived, read-only royalty view for one creation.
type Attribution struct {
	CreationID      string
	OriginalCreator Contributor
	Contributors    []Contributor
	License         string
	Shares          []ShareRule
}
