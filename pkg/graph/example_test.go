package graph_test

import (
	"fmt"

	"github.com/matzehuels/relgraph/pkg/graph"
	"github.com/matzehuels/relgraph/pkg/records"
)

func ExampleBuild() {
	profiles := []records.Profile{
		{ID: "1", Name: "Ada", Company: "Analytical"},
		{ID: "2", Name: "Charles", Company: "Analytical"},
		{ID: "3", Name: "Grace"},
	}
	relationships := []records.Relation{
		{SourceProfileID: "1", TargetProfileID: "2", RelationshipType: "colleague", ConfidenceScore: 0.9, Status: "confirmed"},
		{SourceProfileID: "2", TargetProfileID: "3", RelationshipType: "friend", ConfidenceScore: 0.2},
	}

	res := graph.Build(relationships, profiles, graph.Options{
		CenterNodeID:  "1",
		MaxDepth:      2,
		MinConfidence: 0.3,
	})

	for _, n := range res.Nodes {
		fmt.Printf("%s level=%d size=%s\n", n.Name, n.Level, n.Size)
	}
	for _, l := range res.Links {
		fmt.Printf("%s %s %s\n", l.ID, l.Type, l.Style)
	}
	fmt.Println("confirmed:", res.Stats.ConfirmedLinks)
	// Output:
	// Ada level=0 size=large
	// Charles level=1 size=medium
	// 1-2 colleague solid
	// confirmed: 1
}

func ExampleNormalizeConfidence() {
	fmt.Println(graph.NormalizeConfidence(85))
	fmt.Println(graph.NormalizeConfidence("0.4"))
	fmt.Println(graph.NormalizeConfidence(nil))
	// Output:
	// 0.85
	// 0.4
	// 0.5
}

func ExampleTypeInfo() {
	fmt.Println(graph.TypeInfo("mentor").Label)
	fmt.Println(graph.TypeInfo("rival").Label)
	// Output:
	// Mentor
	// Connection
}
