package render

import (
	"image/color"

	"github.com/matzehuels/relgraph/pkg/graph"
)

// Style holds the visual constants of a frame. Radii and font sizes are in
// canvas units and scale with the view.
type Style struct {
	Background color.NRGBA
	Label      color.NRGBA
	Initial    color.NRGBA
	Border     color.NRGBA

	FocalInner color.NRGBA
	FocalOuter color.NRGBA
	FocalRing  color.NRGBA

	LargeRadius  float64
	MediumRadius float64
	BorderWidth  float64
	FontSize     float64
	ArrowSize    float64
	Dash         []float64

	// LabelScale is the zoom from which every node shows its name.
	LabelScale float64
	// MinLinkWidth keeps links visible when zoomed far out.
	MinLinkWidth float64
}

// DefaultStyle returns the dark theme used by all built-in surfaces.
func DefaultStyle() Style {
	return Style{
		Background:   MustHex("#0f172a"),
		Label:        MustHex("#e2e8f0"),
		Initial:      MustHex("#ffffff"),
		Border:       MustHex("#f8fafc"),
		FocalInner:   MustHex("#fde68a"),
		FocalOuter:   MustHex("#f59e0b"),
		FocalRing:    MustHex("#fbbf24"),
		LargeRadius:  30,
		MediumRadius: 20,
		BorderWidth:  2,
		FontSize:     12,
		ArrowSize:    9,
		Dash:         []float64{6, 4},
		LabelScale:   1.5,
		MinLinkWidth: 0.5,
	}
}

// NodeRadius returns the canvas-space radius of a node.
func (s Style) NodeRadius(n graph.Node) float64 {
	if n.Size == graph.SizeLarge {
		return s.LargeRadius
	}
	return s.MediumRadius
}

// LinkHitThreshold returns the canvas-space distance within which a point
// hits a link.
func (s Style) LinkHitThreshold(l graph.Link) float64 {
	w := float64(graph.StrengthWidth(l.Strength))
	return max(10, w*2+5)
}
