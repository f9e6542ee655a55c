package graph

import "unicode"

// =============================================================================
// Constants - Single Source of Truth
// =============================================================================

// Node size categories.
const (
	SizeLarge  = "large"  // focal node
	SizeMedium = "medium" // everything else
)

// Relationship strengths.
const (
	StrengthStrong = "strong"
	StrengthMedium = "medium"
	StrengthWeak   = "weak"
)

// Relationship directions.
const (
	DirectionBidirectional = "bidirectional"
	DirectionOneWay        = "one-way"
)

// Link styles.
const (
	StyleSolid  = "solid"
	StyleDashed = "dashed"
)

// StatusConfirmed is the relationship status counted by Stats.ConfirmedLinks.
const StatusConfirmed = "confirmed"

// HighConfidenceThreshold separates solid from dashed links and defines the
// high-confidence link count. The comparison is strict.
const HighConfidenceThreshold = 0.7

// DefaultConfidence replaces missing or unparseable confidence scores.
const DefaultConfidence = 0.5

// =============================================================================
// Node
// =============================================================================

// Node is one profile in a built graph.
//
// X and Y are canvas-space coordinates and are meaningful only when Placed is
// true. The layout package produces placed copies; the builder never does.
type Node struct {
	ID      string   `json:"id" bson:"id"`
	Name    string   `json:"name" bson:"name"`
	Company string   `json:"company,omitempty" bson:"company,omitempty"`
	Tags    []string `json:"tags,omitempty" bson:"tags,omitempty"`
	Level   int      `json:"level" bson:"level"`
	Size    string   `json:"size" bson:"size"`
	Color   string   `json:"color" bson:"color"`

	X      float64 `json:"x,omitempty" bson:"x,omitempty"`
	Y      float64 `json:"y,omitempty" bson:"y,omitempty"`
	Placed bool    `json:"placed,omitempty" bson:"placed,omitempty"`

	RelationshipCount       int `json:"relationship_count" bson:"relationship_count"`
	StrongRelationshipCount int `json:"strong_relationship_count" bson:"strong_relationship_count"`
}

// IsFocal reports whether the node is the center of the graph.
func (n Node) IsFocal() bool { return n.Size == SizeLarge }

// Initial returns the first letter of the node's name, upper-cased, or "?"
// for an empty name.
func (n Node) Initial() string {
	for _, r := range n.Name {
		return string(unicode.ToUpper(r))
	}
	return "?"
}

// DisplayName returns the name, or the ID when the profile has no name.
func (n Node) DisplayName() string {
	if n.Name != "" {
		return n.Name
	}
	return n.ID
}

// =============================================================================
// Link
// =============================================================================

// Link is one relationship between two nodes of a built graph.
type Link struct {
	ID         string  `json:"id" bson:"id"`
	Source     string  `json:"source" bson:"source"`
	Target     string  `json:"target" bson:"target"`
	Type       string  `json:"type" bson:"type"`
	Confidence float64 `json:"confidence" bson:"confidence"`
	Strength   string  `json:"strength" bson:"strength"`
	Direction  string  `json:"direction" bson:"direction"`
	Style      string  `json:"style" bson:"style"`
	Status     string  `json:"status,omitempty" bson:"status,omitempty"`
	Evidence   string  `json:"evidence,omitempty" bson:"evidence,omitempty"`
}

// LinkID returns the deterministic link key for an ordered pair.
func LinkID(source, target string) string {
	return source + "-" + target
}

// IsBidirectional reports whether the link is drawn without an arrowhead.
func (l Link) IsBidirectional() bool { return l.Direction == DirectionBidirectional }

// Connects reports whether id is one of the link's endpoints.
func (l Link) Connects(id string) bool { return l.Source == id || l.Target == id }

// =============================================================================
// Stats and Result
// =============================================================================

// TypeCount is one bucket of the link type histogram.
type TypeCount struct {
	Type  string `json:"type" bson:"type"`
	Count int    `json:"count" bson:"count"`
}

// Stats summarizes a built graph.
type Stats struct {
	NodeCount           int         `json:"node_count" bson:"node_count"`
	LinkCount           int         `json:"link_count" bson:"link_count"`
	ConfirmedLinks      int         `json:"confirmed_links" bson:"confirmed_links"`
	HighConfidenceLinks int         `json:"high_confidence_links" bson:"high_confidence_links"`
	LinkTypes           []TypeCount `json:"link_types" bson:"link_types"`
}

// Result is the output of Build and the unit of serialization.
type Result struct {
	CenterNodeID string `json:"center_node_id,omitempty" bson:"center_node_id,omitempty"`
	Nodes        []Node `json:"nodes" bson:"nodes"`
	Links        []Link `json:"links" bson:"links"`
	Stats        Stats  `json:"stats" bson:"stats"`
}

// Node returns the node with the given id.
func (r *Result) Node(id string) (Node, bool) {
	for _, n := range r.Nodes {
		if n.ID == id {
			return n, true
		}
	}
	return Node{}, false
}

// Link returns the link with the given id.
func (r *Result) Link(id string) (Link, bool) {
	for _, l := range r.Links {
		if l.ID == id {
			return l, true
		}
	}
	return Link{}, false
}

// NodeIndex maps node ids to their position in nodes.
func NodeIndex(nodes []Node) map[string]int {
	idx := make(map[string]int, len(nodes))
	for i, n := range nodes {
		idx[n.ID] = i
	}
	return idx
}

// Bounds returns the bounding box of all placed nodes. ok is false when no
// node is placed.
func Bounds(nodes []Node) (minX, minY, maxX, maxY float64, ok bool) {
	for _, n := range nodes {
		if !n.Placed {
			continue
		}
		if !ok {
			minX, maxX, minY, maxY = n.X, n.X, n.Y, n.Y
			ok = true
			continue
		}
		minX = min(minX, n.X)
		maxX = max(maxX, n.X)
		minY = min(minY, n.Y)
		maxY = max(maxY, n.Y)
	}
	return minX, minY, maxX, maxY, ok
}
