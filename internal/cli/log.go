package cli

import (
	"fmt"
	"io"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/log"

	"github.com/matzehuels/relgraph/pkg/records"
)

// newLogger returns the CLI logger. Timestamps read "15:04:05.00"; the keys
// the pipeline reports on (cache hits, fallbacks, errors) share the palette
// of the status lines in ui.go.
func newLogger(w io.Writer, level log.Level) *log.Logger {
	l := log.NewWithOptions(w, log.Options{
		ReportTimestamp: true,
		TimeFormat:      "15:04:05.00",
		Level:           level,
	})
	styles := log.DefaultStyles()
	styles.Keys["error"] = lipgloss.NewStyle().Foreground(colorFail)
	styles.Values["error"] = lipgloss.NewStyle().Bold(true)
	styles.Keys["fallback"] = lipgloss.NewStyle().Foreground(colorWarn)
	styles.Keys["hit"] = lipgloss.NewStyle().Foreground(colorOK)
	l.SetStyles(styles)
	return l
}

// progress times one CLI stage.
type progress struct {
	logger *log.Logger
	start  time.Time
}

func newProgress(l *log.Logger) *progress {
	return &progress{logger: l, start: time.Now()}
}

// loaded reports a loaded dataset:
//
//	Loaded 42 profiles and 61 relationships source=crm.json took=12ms
//
// A dataset without profiles or relationships gets a warning, since every
// later stage would produce an empty graph.
func (p *progress) loaded(source string, ds records.Dataset) {
	took := time.Since(p.start).Round(time.Millisecond)
	msg := fmt.Sprintf("Loaded %d profiles and %d relationships", len(ds.Profiles), len(ds.Relationships))
	p.logger.Info(msg, "source", source, "took", took)
	switch {
	case len(ds.Profiles) == 0:
		p.logger.Warn("dataset has no profiles", "source", source)
	case len(ds.Relationships) == 0:
		p.logger.Warn("dataset has no relationships, profiles will be drawn unlinked", "source", source)
	}
}
