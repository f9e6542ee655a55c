package graph

import (
	"fmt"
	"slices"
	"testing"

	"pgregory.net/rapid"

	"github.com/matzehuels/relgraph/pkg/records"
)

func profiles(ids ...string) []records.Profile {
	out := make([]records.Profile, len(ids))
	for i, id := range ids {
		out[i] = records.Profile{ID: id, Name: "P" + id}
	}
	return out
}

func rel(src, dst string, conf any) records.Relation {
	return records.Relation{
		SourceProfileID:  src,
		TargetProfileID:  dst,
		RelationshipType: "colleague",
		ConfidenceScore:  conf,
	}
}

func nodeIDs(nodes []Node) []string {
	ids := make([]string, len(nodes))
	for i, n := range nodes {
		ids[i] = n.ID
	}
	return ids
}

func TestBuild_ConfidenceFiltering(t *testing.T) {
	profs := []records.Profile{{ID: "1", Name: "A"}, {ID: "2", Name: "B"}, {ID: "3", Name: "C"}}
	rels := []records.Relation{rel("1", "2", 0.9), rel("2", "3", 0.2)}

	res := Build(rels, profs, Options{CenterNodeID: "1", MaxDepth: 2, MinConfidence: 0.3})

	if got := nodeIDs(res.Nodes); !slices.Equal(got, []string{"1", "2"}) {
		t.Errorf("nodes = %v, want [1 2]", got)
	}
	if len(res.Links) != 1 || res.Links[0].ID != "1-2" {
		t.Errorf("links = %+v, want [1-2]", res.Links)
	}
	if res.Stats.NodeCount != 2 || res.Stats.LinkCount != 1 {
		t.Errorf("stats = %+v", res.Stats)
	}
}

func TestBuild_Levels(t *testing.T) {
	// 1 - 2 - 3 - 4, plus 1 - 5 and an isolated 6
	rels := []records.Relation{rel("1", "2", 0.9), rel("3", "2", 0.9), rel("3", "4", 0.9), rel("1", "5", 0.9)}
	profs := profiles("1", "2", "3", "4", "5", "6")

	tests := []struct {
		name     string
		maxDepth int
		want     map[string]int
	}{
		{"depth 0", 0, map[string]int{"1": 0}},
		{"depth 1", 1, map[string]int{"1": 0, "2": 1, "5": 1}},
		{"depth 2", 2, map[string]int{"1": 0, "2": 1, "5": 1, "3": 2}},
		{"unlimited", -1, map[string]int{"1": 0, "2": 1, "5": 1, "3": 2, "4": 3}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res := Build(rels, profs, Options{CenterNodeID: "1", MaxDepth: tt.maxDepth})
			got := make(map[string]int)
			for _, n := range res.Nodes {
				got[n.ID] = n.Level
			}
			if len(got) != len(tt.want) {
				t.Fatalf("levels = %v, want %v", got, tt.want)
			}
			for id, lvl := range tt.want {
				if got[id] != lvl {
					t.Errorf("level[%s] = %d, want %d", id, got[id], lvl)
				}
			}
		})
	}
}

func TestBuild_NoCenter(t *testing.T) {
	rels := []records.Relation{rel("1", "2", 0.9)}
	res := Build(rels, profiles("1", "2", "3"), Options{MaxDepth: 1})

	if len(res.Nodes) != 3 {
		t.Fatalf("nodes = %v, want all three", nodeIDs(res.Nodes))
	}
	for _, n := range res.Nodes {
		if n.Level != 0 || n.Size != SizeMedium {
			t.Errorf("node %s level=%d size=%s, want 0/medium", n.ID, n.Level, n.Size)
		}
	}
	if res.CenterNodeID != "" {
		t.Errorf("CenterNodeID = %q, want empty", res.CenterNodeID)
	}
}

func TestBuild_DepthZeroKeepsFocalOnly(t *testing.T) {
	rels := []records.Relation{rel("1", "2", 0.9), rel("2", "3", 0.9)}
	res := Build(rels, profiles("1", "2", "3"), Options{CenterNodeID: "2", MaxDepth: 0})
	if got := nodeIDs(res.Nodes); !slices.Equal(got, []string{"2"}) {
		t.Fatalf("nodes = %v, want [2]", got)
	}
	if !res.Nodes[0].IsFocal() || res.CenterNodeID != "2" {
		t.Errorf("node = %+v center = %q, want focal 2", res.Nodes[0], res.CenterNodeID)
	}
	if len(res.Links) != 0 || res.Stats.LinkCount != 0 {
		t.Errorf("links = %d, want none", len(res.Links))
	}
}

func TestBuild_SortTiesByID(t *testing.T) {
	res := Build(nil, profiles("z", "y", "x"), Options{MaxDepth: 1})
	if got := nodeIDs(res.Nodes); !slices.Equal(got, []string{"x", "y", "z"}) {
		t.Errorf("nodes = %v, want [x y z]", got)
	}
}

func TestBuild_UnknownCenter(t *testing.T) {
	res := Build([]records.Relation{rel("1", "2", 0.9)}, profiles("1", "2"), Options{CenterNodeID: "nope", MaxDepth: 0})
	if len(res.Nodes) != 2 {
		t.Errorf("nodes = %v, want both", nodeIDs(res.Nodes))
	}
	if res.CenterNodeID != "" {
		t.Errorf("CenterNodeID = %q, want empty", res.CenterNodeID)
	}
}

func TestBuild_FocalNode(t *testing.T) {
	res := Build([]records.Relation{rel("1", "2", 0.9)}, profiles("1", "2"), Options{CenterNodeID: "2", MaxDepth: 2})
	if res.Nodes[0].ID != "2" || !res.Nodes[0].IsFocal() || res.Nodes[0].Level != 0 {
		t.Errorf("first node = %+v, want focal 2", res.Nodes[0])
	}
	if res.Nodes[1].IsFocal() {
		t.Errorf("node %s should not be focal", res.Nodes[1].ID)
	}
}

func TestBuild_MissingProfile(t *testing.T) {
	rels := []records.Relation{rel("1", "2", 0.9), rel("1", "ghost", 0.9), rel("ghost", "2", 0.9)}
	res := Build(rels, profiles("1", "2"), Options{})
	if len(res.Links) != 1 {
		t.Errorf("links = %+v, want only 1-2", res.Links)
	}
}

func TestBuild_DuplicateLastWriteWins(t *testing.T) {
	first := rel("1", "2", 0.9)
	first.RelationshipType = "friend"
	second := rel("1", "2", 0.8)
	second.RelationshipType = "mentor"
	reverse := rel("2", "1", 0.8)

	res := Build([]records.Relation{first, second, reverse}, profiles("1", "2"), Options{})
	if len(res.Links) != 2 {
		t.Fatalf("links = %+v, want 1-2 and 2-1", res.Links)
	}
	l, ok := res.Link("1-2")
	if !ok || l.Type != "mentor" || l.Confidence != 0.8 {
		t.Errorf("1-2 = %+v, want mentor/0.8", l)
	}
}

func TestBuild_CountersAndSort(t *testing.T) {
	strong := func(a, b string) records.Relation {
		r := rel(a, b, 0.9)
		r.RelationshipStrength = "strong"
		return r
	}
	rels := []records.Relation{
		rel("c", "a", 0.9),
		strong("c", "b"),
		strong("b", "d"),
		strong("b", "e"),
	}
	res := Build(rels, profiles("a", "b", "c", "d", "e"), Options{CenterNodeID: "c", MaxDepth: 2})

	if got := nodeIDs(res.Nodes); !slices.Equal(got, []string{"c", "b", "a", "d", "e"}) {
		t.Errorf("order = %v, want [c b a d e]", got)
	}
	b, _ := res.Node("b")
	if b.RelationshipCount != 3 || b.StrongRelationshipCount != 3 {
		t.Errorf("b counters = %d/%d, want 3/3", b.RelationshipCount, b.StrongRelationshipCount)
	}
	a, _ := res.Node("a")
	if a.RelationshipCount != 1 || a.StrongRelationshipCount != 0 {
		t.Errorf("a counters = %d/%d, want 1/0", a.RelationshipCount, a.StrongRelationshipCount)
	}
}

func TestBuild_Stats(t *testing.T) {
	mk := func(a, b, typ, status string, conf float64) records.Relation {
		r := rel(a, b, conf)
		r.RelationshipType = typ
		r.Status = status
		return r
	}
	rels := []records.Relation{
		mk("1", "2", "friend", "confirmed", 0.9),
		mk("1", "3", "colleague", "pending", 0.7),
		mk("2", "3", "friend", "Confirmed", 0.75),
		mk("3", "4", "colleague", "", 0.5),
		mk("1", "4", "mentor", "", 0.95),
	}
	res := Build(rels, profiles("1", "2", "3", "4"), Options{})

	s := res.Stats
	if s.ConfirmedLinks != 2 {
		t.Errorf("ConfirmedLinks = %d, want 2", s.ConfirmedLinks)
	}
	if s.HighConfidenceLinks != 3 {
		t.Errorf("HighConfidenceLinks = %d, want 3", s.HighConfidenceLinks)
	}
	want := []TypeCount{{"colleague", 2}, {"friend", 2}, {"mentor", 1}}
	if !slices.Equal(s.LinkTypes, want) {
		t.Errorf("LinkTypes = %v, want %v", s.LinkTypes, want)
	}
}

func TestBuild_LinkDerivedFields(t *testing.T) {
	r := rel("1", "2", 71)
	r.RelationshipDirection = "one-way"
	res := Build([]records.Relation{r, rel("2", "3", nil)}, profiles("1", "2", "3"), Options{})

	l, _ := res.Link("1-2")
	if l.Style != StyleSolid || l.Direction != DirectionOneWay || l.Strength != StrengthMedium {
		t.Errorf("1-2 = %+v", l)
	}
	l, _ = res.Link("2-3")
	if l.Confidence != DefaultConfidence || l.Style != StyleDashed || !l.IsBidirectional() {
		t.Errorf("2-3 = %+v", l)
	}
}

func TestBuild_SelfLink(t *testing.T) {
	res := Build([]records.Relation{rel("1", "1", 0.9), rel("1", "2", 0.9)}, profiles("1", "2"), Options{CenterNodeID: "1", MaxDepth: 1})
	n, _ := res.Node("1")
	if n.RelationshipCount != 2 {
		t.Errorf("RelationshipCount = %d, want 2", n.RelationshipCount)
	}
}

// genDataset draws a random dataset over n profiles. Some relationships point
// at profiles that do not exist.
func genDataset(t *rapid.T) ([]records.Profile, []records.Relation) {
	n := rapid.IntRange(1, 12).Draw(t, "profiles")
	ids := make([]string, n)
	for i := range ids {
		ids[i] = fmt.Sprint(i)
	}
	idGen := rapid.SampledFrom(append(slices.Clone(ids), "missing"))
	m := rapid.IntRange(0, 30).Draw(t, "relationships")
	rels := make([]records.Relation, m)
	for i := range rels {
		rels[i] = rel(idGen.Draw(t, "src"), idGen.Draw(t, "dst"), rapid.Float64Range(0, 1).Draw(t, "conf"))
	}
	return profiles(ids...), rels
}

func TestBuild_ReferentialIntegrityProperty(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		profs, rels := genDataset(t)
		opts := Options{
			CenterNodeID:  rapid.SampledFrom([]string{"", "0", "1", "missing"}).Draw(t, "center"),
			MaxDepth:      rapid.IntRange(-1, 4).Draw(t, "depth"),
			MinConfidence: rapid.Float64Range(0, 1).Draw(t, "min"),
		}
		res := Build(rels, profs, opts)

		idx := NodeIndex(res.Nodes)
		if len(idx) != len(res.Nodes) {
			t.Fatalf("duplicate node ids: %v", nodeIDs(res.Nodes))
		}
		for _, l := range res.Links {
			if _, ok := idx[l.Source]; !ok {
				t.Fatalf("link %s has dangling source", l.ID)
			}
			if _, ok := idx[l.Target]; !ok {
				t.Fatalf("link %s has dangling target", l.ID)
			}
			if l.Confidence < opts.MinConfidence || l.Confidence < 0 || l.Confidence > 1 {
				t.Fatalf("link %s confidence %v out of range", l.ID, l.Confidence)
			}
		}
	})
}

func TestBuild_BFSProperty(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		profs, rels := genDataset(t)
		maxDepth := rapid.IntRange(0, 4).Draw(t, "depth")
		minConf := rapid.Float64Range(0, 1).Draw(t, "min")
		res := Build(rels, profs, Options{CenterNodeID: "0", MaxDepth: maxDepth, MinConfidence: minConf})

		// Reference distances over the filtered, undirected graph.
		adj := make(map[string][]string)
		for _, r := range rels {
			if r.SourceProfileID == "missing" || r.TargetProfileID == "missing" {
				continue
			}
			if NormalizeConfidence(r.ConfidenceScore) < minConf {
				continue
			}
			adj[r.SourceProfileID] = append(adj[r.SourceProfileID], r.TargetProfileID)
			adj[r.TargetProfileID] = append(adj[r.TargetProfileID], r.SourceProfileID)
		}
		dist := map[string]int{"0": 0}
		queue := []string{"0"}
		for len(queue) > 0 {
			cur := queue[0]
			queue = queue[1:]
			for _, next := range adj[cur] {
				if _, seen := dist[next]; !seen {
					dist[next] = dist[cur] + 1
					queue = append(queue, next)
				}
			}
		}

		got := make(map[string]int)
		for _, n := range res.Nodes {
			got[n.ID] = n.Level
		}
		for id, d := range dist {
			lvl, ok := got[id]
			if d > maxDepth {
				if ok {
					t.Fatalf("node %s at distance %d present with maxDepth %d", id, d, maxDepth)
				}
				continue
			}
			if !ok || lvl != d {
				t.Fatalf("node %s level = %d (present %v), want %d", id, lvl, ok, d)
			}
		}
		if len(got) > len(dist) {
			t.Fatalf("unreachable nodes in output: %v", nodeIDs(res.Nodes))
		}
		if got["0"] != 0 {
			t.Fatalf("focal level = %d", got["0"])
		}
	})
}
