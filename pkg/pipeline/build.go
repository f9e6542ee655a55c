package pipeline

import (
	"context"
	"time"

	"github.com/goccy/go-json"

	"github.com/matzehuels/relgraph/pkg/cache"
	"github.com/matzehuels/relgraph/pkg/graph"
	"github.com/matzehuels/relgraph/pkg/observability"
	"github.com/matzehuels/relgraph/pkg/records"
)

// BuildGraph turns a dataset into a filtered, leveled graph.
//
// Building never fails on bad records; they are dropped with a warning on
// opts.Logger. The only error is invalid options.
func BuildGraph(ctx context.Context, ds records.Dataset, opts Options) (*graph.Result, error) {
	if err := opts.ValidateAndSetDefaults(); err != nil {
		return nil, err
	}

	hooks := observability.Pipeline()
	hooks.OnBuildStart(ctx, opts.CenterNodeID, len(ds.Relationships))
	start := time.Now()

	g := graph.Build(ds.Relationships, ds.Profiles, opts.GraphOptions())

	hooks.OnBuildComplete(ctx, len(g.Nodes), len(g.Links), time.Since(start), nil)
	return g, nil
}

// DatasetHash returns the content hash of a dataset.
func DatasetHash(ds records.Dataset) string {
	data, err := json.Marshal(ds)
	if err != nil {
		return ""
	}
	return cache.Hash(data)
}
