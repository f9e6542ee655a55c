// Package graph builds the relationship graph shown by relgraph.
//
// [Build] turns flat [records.Profile] and [records.Relation] lists into a
// filtered node/link graph leveled around an optional focal profile:
//
//	res := graph.Build(ds.Relationships, ds.Profiles, graph.Options{
//	    CenterNodeID:  "42",
//	    MaxDepth:      2,
//	    MinConfidence: 0.3,
//	})
//
// # Filtering
//
// Relationships are dropped when they reference a missing profile (logged as
// a warning) or when their normalized confidence is below MinConfidence.
// Levels are breadth-first hop distances from the focal node over the
// surviving links, treated as undirected. Nodes further than MaxDepth hops, or
// unreachable, are excluded from the result, never merely hidden.
//
// # Confidence
//
// Scores are normalized by [NormalizeConfidence]: missing or garbage values
// become 0.5, percentages above 1 are divided by 100, and everything is
// clamped into [0, 1]. Links above [HighConfidenceThreshold] are drawn solid,
// the rest dashed.
//
// # Lookup Tables
//
// [TypeInfo] maps a relationship type to its color, label and icon, with
// [DefaultTypeStyle] for unknown types. [CompanyColor] gives every company a
// stable node color.
//
// # Serialization
//
// A [Result] round-trips through JSON with [WriteResult]/[ReadResult] and
// exports to Graphviz with [ToDOT].
package graph
