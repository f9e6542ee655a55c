package cli

import (
	"context"
	"fmt"
	"io"
	"math"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"github.com/matzehuels/relgraph/pkg/errors"
	"github.com/matzehuels/relgraph/pkg/graph"
	"github.com/matzehuels/relgraph/pkg/layout"
	"github.com/matzehuels/relgraph/pkg/pipeline"
	"github.com/matzehuels/relgraph/pkg/render"
	"github.com/matzehuels/relgraph/pkg/render/sink"
	"github.com/matzehuels/relgraph/pkg/viewport"
)

const (
	// statusRows is the number of terminal rows below the graph.
	statusRows = 2

	zoomStep       = 1.25
	wheelZoomStep  = 1.1
	confidenceStep = 0.1
)

// exploreCommand creates the interactive explorer.
func (c *CLI) exploreCommand() *cobra.Command {
	var (
		snapshot bool
		cols     int
		rows     int
	)
	opts := pipeline.Options{}

	cmd := &cobra.Command{
		Use:   "explore [data.json|data.yaml|mongodb://...]",
		Short: "Explore a relationship graph interactively in the terminal",
		Long: `Explore a relationship graph interactively in the terminal.

Mouse:
  drag          pan
  wheel         zoom at the pointer
  click         select a person or relationship

Keys:
  arrows, hjkl  pan
  + / -         zoom
  c             center the graph on the selected person
  /             find a person by name and center on them
  t             cycle layout (force, circle, graphviz)
  [ / ]         lower / raise the confidence threshold
  r             reset the view
  f             toggle fullscreen
  q             quit

With --snapshot a single frame is printed without color and the command
exits, which is handy for scripts and terminals without mouse support.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			resolved, err := c.options(opts)
			if err != nil {
				return err
			}
			ds, err := c.loadDataset(ctx, firstArg(args))
			if err != nil {
				return err
			}
			cfg, err := c.loadConfig()
			if err != nil {
				return err
			}
			engine, err := pipeline.NewEngine(resolved, cfg.Viewport)
			if err != nil {
				return err
			}
			if err := engine.SetData(ctx, ds); err != nil {
				return err
			}
			if snapshot {
				return printSnapshot(ctx, cmd.OutOrStdout(), engine, cols, rows)
			}
			return runExplorer(ctx, engine)
		},
	}

	cmd.Flags().BoolVar(&snapshot, "snapshot", false, "print one frame and exit")
	cmd.Flags().IntVar(&cols, "cols", 100, "snapshot width in characters")
	cmd.Flags().IntVar(&rows, "rows", 30, "snapshot height in characters")
	addGraphFlags(cmd, &opts)
	cmd.Flags().StringVarP(&opts.LayoutType, "type", "t", "", "layout type: force (default), circle, graphviz")

	return cmd
}

// cellsProvider hands out a character grid once the terminal size is known.
func cellsProvider(cols, rows int) render.Provider {
	return render.ProviderFunc(func(context.Context) (render.Surface, error) {
		if cols <= 0 || rows <= 0 {
			return nil, errors.New(errors.ErrCodeSurfaceUnavailable, "terminal has no size yet (%dx%d)", cols, rows)
		}
		return sink.NewCells(cols, rows), nil
	})
}

// printSnapshot attaches a cols x rows grid and writes its plain text.
func printSnapshot(ctx context.Context, w io.Writer, e *pipeline.Engine, cols, rows int) error {
	if err := e.Attach(ctx, cellsProvider(cols, rows), render.RetryPolicy{Attempts: 1}); err != nil {
		return err
	}
	cells := e.Surface().(*sink.Cells)
	_, err := fmt.Fprintln(w, cells.Plain())
	return err
}

// runExplorer runs the bubbletea program until the user quits.
func runExplorer(ctx context.Context, e *pipeline.Engine) error {
	m := newExploreModel(ctx, e)
	defer m.unsubscribe()
	p := tea.NewProgram(m, tea.WithContext(ctx), tea.WithAltScreen(), tea.WithMouseCellMotion())
	if _, err := p.Run(); err != nil {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		return err
	}
	return nil
}

// =============================================================================
// exploreModel - Interactive graph view
// =============================================================================

// exploreModel is the bubbletea model of the explorer. It holds a pointer
// to the engine, so it is used by pointer.
type exploreModel struct {
	ctx    context.Context
	engine *pipeline.Engine

	width, height int
	fullscreen    bool
	dragging      bool

	selectedNode *graph.Node
	selectedLink *graph.Link
	status       string
	err          error

	search    textinput.Model
	searching bool

	unsubscribe func()
}

func newExploreModel(ctx context.Context, e *pipeline.Engine) *exploreModel {
	ti := textinput.New()
	ti.Prompt = "/ "
	ti.Placeholder = "name..."
	ti.CharLimit = 50
	ti.Width = 30

	m := &exploreModel{ctx: ctx, engine: e, search: ti}
	m.unsubscribe = e.Subscribe(m.onEvent)
	return m
}

// onEvent mirrors engine events into the status line. Fullscreen requests
// are answered here, the same way a windowing host would.
func (m *exploreModel) onEvent(ev pipeline.Event) {
	switch ev.Type {
	case pipeline.EventNodeTapped:
		m.selectedNode, m.selectedLink = ev.Node, nil
		m.status = ""
	case pipeline.EventLinkTapped:
		m.selectedNode, m.selectedLink = nil, ev.Link
		m.status = ""
	case pipeline.EventViewResetRequested:
		m.status = "view reset"
	case pipeline.EventSettingsChanged:
		m.status = fmt.Sprintf("layout %s · confidence ≥ %.1f · depth %d",
			ev.Settings.LayoutType, ev.Settings.MinConfidence, ev.Settings.MaxDepth)
	case pipeline.EventCenterNodeChanged:
		m.status = "centered on " + ev.CenterNodeID
	case pipeline.EventFullscreenRequested:
		m.fullscreen = !m.fullscreen
		m.err = m.attach()
	}
}

func (m *exploreModel) Init() tea.Cmd {
	return nil
}

func (m *exploreModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width, m.height = msg.Width, msg.Height
		m.err = m.attach()
	case tea.KeyMsg:
		return m, m.handleKey(msg)
	case tea.MouseMsg:
		m.handleMouse(msg)
	}
	return m, nil
}

func (m *exploreModel) handleKey(msg tea.KeyMsg) tea.Cmd {
	if m.searching {
		return m.updateSearch(msg)
	}

	e := m.engine
	m.err = nil
	switch msg.String() {
	case "q", "ctrl+c", "esc":
		return tea.Quit
	case "/":
		m.searching = true
		m.search.SetValue("")
		return m.search.Focus()
	case "left", "h":
		e.Pan(sink.CellWidth*4, 0)
	case "right", "l":
		e.Pan(-sink.CellWidth*4, 0)
	case "up", "k":
		e.Pan(0, sink.CellHeight*2)
	case "down", "j":
		e.Pan(0, -sink.CellHeight*2)
	case "+", "=":
		e.Zoom(zoomStep, m.center())
	case "-", "_":
		e.Zoom(1/zoomStep, m.center())
	case "r":
		e.ResetView()
	case "f":
		e.RequestFullscreen()
	case "c":
		if m.selectedNode == nil {
			m.status = "select a person first"
			return nil
		}
		m.err = e.SetCenterNode(m.ctx, m.selectedNode.ID)
	case "t":
		s := e.Settings()
		s.LayoutType = layout.NextType(s.LayoutType)
		m.err = e.UpdateSettings(m.ctx, s)
	case "[", "]":
		s := e.Settings()
		step := confidenceStep
		if msg.String() == "[" {
			step = -step
		}
		// Round to one decimal so repeated presses land on 0 and 1 exactly.
		s.MinConfidence = min(max(math.Round((s.MinConfidence+step)*10)/10, 0), 1)
		m.err = e.UpdateSettings(m.ctx, s)
	}
	return nil
}

// updateSearch handles keys while the find prompt is open.
func (m *exploreModel) updateSearch(msg tea.KeyMsg) tea.Cmd {
	switch msg.String() {
	case "ctrl+c":
		return tea.Quit
	case "esc":
		m.searching = false
		m.search.Blur()
		return nil
	case "enter":
		m.searching = false
		m.search.Blur()
		query := m.search.Value()
		n, ok := findNode(m.engine.Graph(), query)
		if !ok {
			m.status = fmt.Sprintf("no one matches %q", query)
			return nil
		}
		m.selectedNode, m.selectedLink = &n, nil
		m.err = m.engine.SetCenterNode(m.ctx, n.ID)
		return nil
	}
	var cmd tea.Cmd
	m.search, cmd = m.search.Update(msg)
	return cmd
}

// findNode returns the first node whose name contains query, ignoring case.
// An exact id match wins.
func findNode(g *graph.Result, query string) (graph.Node, bool) {
	query = strings.TrimSpace(query)
	if query == "" {
		return graph.Node{}, false
	}
	if n, ok := g.Node(query); ok {
		return n, true
	}
	lower := strings.ToLower(query)
	for _, n := range g.Nodes {
		if strings.Contains(strings.ToLower(n.Name), lower) {
			return n, true
		}
	}
	return graph.Node{}, false
}

func (m *exploreModel) handleMouse(msg tea.MouseMsg) {
	if msg.Y >= m.graphRows() {
		return
	}
	p := sink.CellCenter(msg.X, msg.Y)
	at := time.Now()

	switch {
	case msg.Button == tea.MouseButtonWheelUp:
		m.engine.Zoom(wheelZoomStep, p)
	case msg.Button == tea.MouseButtonWheelDown:
		m.engine.Zoom(1/wheelZoomStep, p)
	case msg.Action == tea.MouseActionPress && msg.Button == tea.MouseButtonLeft:
		m.dragging = true
		m.engine.HandleTouch(pipeline.TouchEvent{Kind: pipeline.TouchStart, Points: []viewport.Point{p}, At: at})
	case msg.Action == tea.MouseActionMotion && m.dragging:
		m.engine.HandleTouch(pipeline.TouchEvent{Kind: pipeline.TouchMove, Points: []viewport.Point{p}, At: at})
	case msg.Action == tea.MouseActionRelease && m.dragging:
		m.dragging = false
		moved := m.engine.Gesture().Moved
		hit := m.engine.HandleTouch(pipeline.TouchEvent{Kind: pipeline.TouchEnd, At: at})
		if hit.Kind == render.HitNone && !moved {
			// A tap on empty canvas clears the selection.
			m.selectedNode, m.selectedLink = nil, nil
		}
	}
}

// attach acquires a grid matching the terminal and re-centers the graph.
func (m *exploreModel) attach() error {
	return m.engine.Attach(m.ctx, cellsProvider(m.width, m.graphRows()), render.DefaultRetryPolicy())
}

func (m *exploreModel) graphRows() int {
	if m.fullscreen {
		return m.height
	}
	return max(m.height-statusRows, 0)
}

func (m *exploreModel) center() viewport.Point {
	return sink.CellCenter(m.width/2, m.graphRows()/2)
}

func (m *exploreModel) View() string {
	var b strings.Builder
	if cells, ok := m.engine.Surface().(*sink.Cells); ok {
		b.WriteString(cells.String())
	}
	if m.fullscreen {
		return b.String()
	}
	b.WriteString("\n")
	if m.searching {
		b.WriteString(m.search.View())
	} else {
		b.WriteString(m.statusLine())
	}
	b.WriteString("\n")
	b.WriteString(styleFaint.Render("drag pan · wheel/+/- zoom · click select · c center · / find · t layout · [/] confidence · r reset · f full · q quit"))
	return b.String()
}

func (m *exploreModel) statusLine() string {
	if m.err != nil {
		return styleFail.Render(errors.UserMessage(m.err))
	}

	var parts []string
	switch {
	case m.selectedNode != nil:
		n := m.selectedNode
		parts = append(parts, styleName.Render(n.DisplayName()))
		if n.Company != "" {
			parts = append(parts, n.Company)
		}
		parts = append(parts, fmt.Sprintf("level %d", n.Level))
	case m.selectedLink != nil:
		l := m.selectedLink
		parts = append(parts, styleName.Render(linkLabel(m.engine.Graph(), *l)))
		parts = append(parts, fmt.Sprintf("%s · %s · %.0f%%", l.Type, l.Strength, l.Confidence*100))
	}

	lr := m.engine.LayoutResult()
	info := fmt.Sprintf("%d people · %s · %.0f%%", len(m.engine.Nodes()), lr.Used, m.engine.Transform().Scale*100)
	if lr.Fallback {
		info += " (fallback)"
	}
	parts = append(parts, info)
	if m.status != "" {
		parts = append(parts, m.status)
	}
	return styleMuted.Render(strings.Join(parts, "  ·  "))
}

// linkLabel names both ends of a link.
func linkLabel(g *graph.Result, l graph.Link) string {
	name := func(id string) string {
		if n, ok := g.Node(id); ok {
			return n.DisplayName()
		}
		return id
	}
	arrow := "→"
	if l.IsBidirectional() {
		arrow = "↔"
	}
	return name(l.Source) + " " + arrow + " " + name(l.Target)
}
