// Package records defines the relational input of the graph engine and the
// sources it can be loaded from.
//
// A [Dataset] is a flat list of [Profile] records (one per person) and
// [Relation] records (one per scored relationship between two profiles).
// Relations arrive pre-scored from an external collaborator: relgraph never
// discovers or scores relationships, it only visualizes them.
//
// # Sources
//
// A [Source] yields a Dataset:
//
//   - [FileSource] reads a JSON (.json) or YAML (.yaml, .yml) document
//   - [MongoSource] reads the "profiles" and "relationships" collections of a
//     MongoDB database
//
// Records are passed through as-is. In particular [Relation.ConfidenceScore]
// keeps whatever the source produced (number, numeric string, percentage,
// missing) and is normalized later by the graph builder.
package records
