package graph

import (
	"cmp"
	"io"
	"slices"
	"strings"

	"github.com/charmbracelet/log"
	gonum "gonum.org/v1/gonum/graph"
	"gonum.org/v1/gonum/graph/simple"
	"gonum.org/v1/gonum/graph/traverse"

	"github.com/matzehuels/relgraph/pkg/records"
)

// Options configures Build.
type Options struct {
	// CenterNodeID is the focal profile. When empty, or when it names a
	// profile that does not exist, leveling is skipped and every node passes
	// through at level 0.
	CenterNodeID string

	// MaxDepth is the maximum hop distance from the focal node. Nodes further
	// away, or not reachable at all, are excluded. A negative value means no
	// limit.
	MaxDepth int

	// MinConfidence drops relationships whose normalized confidence is below
	// it before the graph is constructed.
	MinConfidence float64

	// Logger receives warnings about dropped or defaulted records.
	// Defaults to a discarding logger.
	Logger *log.Logger
}

// Build converts relational records into a filtered, leveled graph.
//
// Build never fails: records that cannot be used (a relationship pointing at
// a missing profile, a profile without an id) are dropped with a logged
// warning, and unusable confidence scores fall back to DefaultConfidence.
//
// Every call produces fresh Node and Link values; nothing is shared with a
// previous Result.
func Build(relationships []records.Relation, profiles []records.Profile, opts Options) *Result {
	logger := opts.Logger
	if logger == nil {
		logger = log.NewWithOptions(io.Discard, log.Options{})
	}

	nodes, order := collectNodes(profiles, logger)
	links, linkOrder := collectLinks(relationships, nodes, opts.MinConfidence, logger)

	res := &Result{}
	levels, focal := assignLevels(nodes, links, linkOrder, opts, logger)
	if focal {
		res.CenterNodeID = opts.CenterNodeID
	}

	for _, id := range order {
		level, ok := levels[id]
		if !ok {
			continue
		}
		n := nodes[id]
		n.Level = level
		if focal && id == opts.CenterNodeID {
			n.Size = SizeLarge
		}
		res.Nodes = append(res.Nodes, n)
	}

	kept := NodeIndex(res.Nodes)
	for _, id := range linkOrder {
		l := links[id]
		_, okS := kept[l.Source]
		_, okT := kept[l.Target]
		if okS && okT {
			res.Links = append(res.Links, l)
		}
	}

	countRelationships(res.Nodes, res.Links, kept)
	slices.SortFunc(res.Nodes, func(a, b Node) int {
		if c := cmp.Compare(a.Level, b.Level); c != 0 {
			return c
		}
		if c := cmp.Compare(b.StrongRelationshipCount, a.StrongRelationshipCount); c != 0 {
			return c
		}
		return cmp.Compare(a.ID, b.ID)
	})
	res.Stats = computeStats(res.Nodes, res.Links)

	logger.Debug("graph built",
		"nodes", res.Stats.NodeCount,
		"links", res.Stats.LinkCount,
		"center", res.CenterNodeID)
	return res
}

// =============================================================================
// Internal Implementation
// =============================================================================

func collectNodes(profiles []records.Profile, logger *log.Logger) (map[string]Node, []string) {
	nodes := make(map[string]Node, len(profiles))
	order := make([]string, 0, len(profiles))
	for _, p := range profiles {
		if p.ID == "" {
			logger.Warn("skipping profile without id", "name", p.Name)
			continue
		}
		if _, dup := nodes[p.ID]; dup {
			logger.Warn("skipping duplicate profile", "id", p.ID)
			continue
		}
		nodes[p.ID] = Node{
			ID:      p.ID,
			Name:    p.Name,
			Company: p.Company,
			Tags:    slices.Clone(p.Tags),
			Size:    SizeMedium,
			Color:   CompanyColor(p.Company),
		}
		order = append(order, p.ID)
	}
	return nodes, order
}

func collectLinks(rels []records.Relation, nodes map[string]Node, minConfidence float64, logger *log.Logger) (map[string]Link, []string) {
	links := make(map[string]Link, len(rels))
	var order []string
	for _, r := range rels {
		if _, ok := nodes[r.SourceProfileID]; !ok {
			logger.Warn("dropping relationship with unknown source profile",
				"source", r.SourceProfileID, "target", r.TargetProfileID)
			continue
		}
		if _, ok := nodes[r.TargetProfileID]; !ok {
			logger.Warn("dropping relationship with unknown target profile",
				"source", r.SourceProfileID, "target", r.TargetProfileID)
			continue
		}

		conf := NormalizeConfidence(r.ConfidenceScore)
		if conf < minConfidence {
			logger.Debug("dropping low-confidence relationship",
				"source", r.SourceProfileID, "target", r.TargetProfileID, "confidence", conf)
			continue
		}

		id := LinkID(r.SourceProfileID, r.TargetProfileID)
		if _, dup := links[id]; dup {
			logger.Debug("duplicate relationship replaces earlier record", "link", id)
		} else {
			order = append(order, id)
		}
		links[id] = Link{
			ID:         id,
			Source:     r.SourceProfileID,
			Target:     r.TargetProfileID,
			Type:       r.RelationshipType,
			Confidence: conf,
			Strength:   NormalizeStrength(r.RelationshipStrength),
			Direction:  NormalizeDirection(r.RelationshipDirection),
			Style:      LinkStyle(conf),
			Status:     r.Status,
			Evidence:   r.Evidence,
		}
	}
	return links, order
}

// assignLevels returns the level of every node that survives leveling and
// whether a focal node was used.
func assignLevels(nodes map[string]Node, links map[string]Link, linkOrder []string, opts Options, logger *log.Logger) (map[string]int, bool) {
	levels := make(map[string]int, len(nodes))
	center := opts.CenterNodeID
	if center == "" {
		for id := range nodes {
			levels[id] = 0
		}
		return levels, false
	}
	if _, ok := nodes[center]; !ok {
		logger.Warn("center profile not found, showing full graph", "center", center)
		for id := range nodes {
			levels[id] = 0
		}
		return levels, false
	}

	g, toGonum, fromGonum := adjacency(nodes, links, linkOrder)
	bfs := traverse.BreadthFirst{}
	bfs.Walk(g, g.Node(toGonum[center]), func(n gonum.Node, depth int) bool {
		if opts.MaxDepth >= 0 && depth > opts.MaxDepth {
			return true
		}
		levels[fromGonum[n.ID()]] = depth
		return false
	})
	return levels, true
}

// adjacency builds the undirected view of the surviving links.
func adjacency(nodes map[string]Node, links map[string]Link, linkOrder []string) (*simple.UndirectedGraph, map[string]int64, map[int64]string) {
	ids := make([]string, 0, len(nodes))
	for id := range nodes {
		ids = append(ids, id)
	}
	slices.Sort(ids)

	g := simple.NewUndirectedGraph()
	toGonum := make(map[string]int64, len(ids))
	fromGonum := make(map[int64]string, len(ids))
	for i, id := range ids {
		g.AddNode(simple.Node(int64(i)))
		toGonum[id] = int64(i)
		fromGonum[int64(i)] = id
	}
	for _, lid := range linkOrder {
		l := links[lid]
		if l.Source == l.Target {
			continue
		}
		g.SetEdge(g.NewEdge(g.Node(toGonum[l.Source]), g.Node(toGonum[l.Target])))
	}
	return g, toGonum, fromGonum
}

func countRelationships(nodes []Node, links []Link, idx map[string]int) {
	for _, l := range links {
		ends := []string{l.Source}
		if l.Target != l.Source {
			ends = append(ends, l.Target)
		}
		for _, id := range ends {
			n := &nodes[idx[id]]
			n.RelationshipCount++
			if l.Strength == StrengthStrong {
				n.StrongRelationshipCount++
			}
		}
	}
}

func computeStats(nodes []Node, links []Link) Stats {
	s := Stats{NodeCount: len(nodes), LinkCount: len(links)}
	hist := make(map[string]int)
	for _, l := range links {
		if strings.EqualFold(l.Status, StatusConfirmed) {
			s.ConfirmedLinks++
		}
		if l.Confidence > HighConfidenceThreshold {
			s.HighConfidenceLinks++
		}
		hist[l.Type]++
	}
	s.LinkTypes = make([]TypeCount, 0, len(hist))
	for t, c := range hist {
		s.LinkTypes = append(s.LinkTypes, TypeCount{Type: t, Count: c})
	}
	slices.SortFunc(s.LinkTypes, func(a, b TypeCount) int {
		if c := cmp.Compare(b.Count, a.Count); c != 0 {
			return c
		}
		return cmp.Compare(a.Type, b.Type)
	})
	return s
}
