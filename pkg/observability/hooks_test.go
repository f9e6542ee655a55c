package observability

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/charmbracelet/log"
)

func TestNoopHooks(t *testing.T) {
	ctx := context.Background()

	var p PipelineHooks = NoopPipelineHooks{}
	p.OnBuildStart(ctx, "1", 10)
	p.OnBuildComplete(ctx, 5, 4, time.Second, nil)
	p.OnLayoutStart(ctx, "force", 5)
	p.OnLayoutComplete(ctx, "graphviz", "circle", true, time.Second, errors.New("no neato"))
	p.OnRenderStart(ctx, []string{"svg", "png"})
	p.OnRenderComplete(ctx, []string{"svg", "png"}, 1, time.Second, nil)

	var c CacheHooks = NoopCacheHooks{}
	c.OnCacheHit(ctx, "graph")
	c.OnCacheMiss(ctx, "layout")
	c.OnCacheSet(ctx, "artifact", 2048)

	var h HTTPHooks = NoopHTTPHooks{}
	h.OnRequest(ctx, "POST", "/api/v1/render")
	h.OnResponse(ctx, "POST", "/api/v1/render", 200, time.Millisecond)
}

func TestRegistry(t *testing.T) {
	t.Cleanup(Reset)

	pipeline := &recordingPipeline{}
	cache := &recordingCache{}
	http := &recordingHTTP{}

	tests := []struct {
		name    string
		set     func()
		current func() any
		want    any
	}{
		{"pipeline", func() { SetPipelineHooks(pipeline) }, func() any { return Pipeline() }, pipeline},
		{"cache", func() { SetCacheHooks(cache) }, func() any { return Cache() }, cache},
		{"http", func() { SetHTTPHooks(http) }, func() any { return HTTP() }, http},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			Reset()
			tt.set()
			if tt.current() != tt.want {
				t.Errorf("registered hooks not returned")
			}
			Reset()
			if tt.current() == tt.want {
				t.Errorf("Reset kept the registered hooks")
			}
		})
	}
}

func TestSetNilKeepsCurrent(t *testing.T) {
	t.Cleanup(Reset)
	Reset()

	p := &recordingPipeline{}
	SetPipelineHooks(p)
	SetPipelineHooks(nil)
	if Pipeline() != p {
		t.Error("SetPipelineHooks(nil) replaced the registered hooks")
	}

	SetCacheHooks(nil)
	if _, ok := Cache().(NoopCacheHooks); !ok {
		t.Error("SetCacheHooks(nil) should leave the no-op default")
	}
}

func TestLogHooks(t *testing.T) {
	var buf bytes.Buffer
	logger := log.NewWithOptions(&buf, log.Options{Level: log.DebugLevel})
	h := NewLogHooks(logger)
	ctx := context.Background()

	h.OnLayoutComplete(ctx, "graphviz", "circle", true, time.Millisecond, errors.New("neato missing"))
	h.OnCacheHit(ctx, "layout")

	out := buf.String()
	for _, want := range []string{"WARN", "layout fell back", "neato missing", "cache hit"} {
		if !strings.Contains(out, want) {
			t.Errorf("log output missing %q:\n%s", want, out)
		}
	}
}

type recordingPipeline struct{ NoopPipelineHooks }
type recordingCache struct{ NoopCacheHooks }
type recordingHTTP struct{ NoopHTTPHooks }
