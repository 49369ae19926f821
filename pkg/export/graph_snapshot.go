package export

import (
	"fmt"
	"image/color"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/flowlane/sff/pkg/model"

	"git.sr.ht/~sbinet/gg"
	svg "github.com/ajstarks/svgo"
	"golang.org/x/image/font/basicfont"
)

// SnapshotOptions controls raster/vector snapshot export of an already
// laid-out flow.
type SnapshotOptions struct {
	Path   string // output path; format inferred from extension when Format is empty
	Format string // "svg" or "png" (case-insensitive)
	Title  string
}

// SaveSnapshot renders a static snapshot (SVG or PNG) of a geometric
// layout, with node boxes colored by kind and edges drawn as orthogonal
// polylines exactly as routed by the layout engine.
func SaveSnapshot(cr *model.CompileResult, layout *model.GeometricLayout, opts SnapshotOptions) error {
	if layout == nil {
		return fmt.Errorf("export: nil geometric layout")
	}

	format := strings.ToLower(strings.TrimPrefix(opts.Format, "."))
	if format == "" {
		switch strings.ToLower(filepath.Ext(opts.Path)) {
		case ".png":
			format = "png"
		default:
			format = "svg"
			if opts.Path != "" && filepath.Ext(opts.Path) == "" {
				opts.Path += ".svg"
			}
		}
	}
	if format != "svg" && format != "png" {
		return fmt.Errorf("unsupported format %q (want svg or png)", format)
	}
	if opts.Path == "" {
		return fmt.Errorf("output path is required")
	}
	if err := os.MkdirAll(filepath.Dir(opts.Path), 0o755); err != nil {
		return fmt.Errorf("create parent dir: %w", err)
	}

	canvas := buildCanvas(cr, layout, opts)

	switch format {
	case "svg":
		return renderSVG(opts.Path, canvas)
	default:
		return renderPNG(opts.Path, canvas)
	}
}

// --- canvas model ------------------------------------------------------

type canvasNode struct {
	ID     string
	Label  string
	Kind   model.NodeKind
	X, Y   float64
	W, H   float64
}

type canvasEdge struct {
	Kind   model.EdgeKind
	Points []model.Point
}

type canvasModel struct {
	Title    string
	Width    int
	Height   int
	Margin   float64
	Header   float64
	Nodes    []canvasNode
	Edges    []canvasEdge
	NodeCnt  int
	EdgeCnt  int
}

const snapshotMargin = 60.0
const snapshotHeader = 40.0

func buildCanvas(cr *model.CompileResult, layout *model.GeometricLayout, opts SnapshotOptions) canvasModel {
	labelByID := map[string]string{}
	kindByID := map[string]model.NodeKind{}
	if cr != nil {
		for _, n := range cr.Nodes {
			labelByID[n.ID] = n.Label
			kindByID[n.ID] = n.Kind
		}
	}
	edgeKindByID := map[string]model.EdgeKind{}
	if cr != nil {
		for _, e := range cr.Edges {
			edgeKindByID[e.ID] = e.Classification.Kind
		}
	}

	var minX, minY, maxX, maxY float64
	first := true
	for _, n := range layout.Nodes {
		l, t, r, b := n.X-n.Width/2, n.Y-n.Height/2, n.X+n.Width/2, n.Y+n.Height/2
		if first {
			minX, minY, maxX, maxY = l, t, r, b
			first = false
			continue
		}
		if l < minX {
			minX = l
		}
		if t < minY {
			minY = t
		}
		if r > maxX {
			maxX = r
		}
		if b > maxY {
			maxY = b
		}
	}
	for _, e := range layout.Edges {
		for _, p := range e.Points {
			if p.X < minX {
				minX = p.X
			}
			if p.Y < minY {
				minY = p.Y
			}
			if p.X > maxX {
				maxX = p.X
			}
			if p.Y > maxY {
				maxY = p.Y
			}
		}
	}

	ox, oy := snapshotMargin-minX, snapshotHeader+snapshotMargin-minY

	nodes := make([]canvasNode, 0, len(layout.Nodes))
	for _, n := range layout.Nodes {
		nodes = append(nodes, canvasNode{
			ID: n.ID, Label: labelByID[n.ID], Kind: kindByID[n.ID],
			X: n.X + ox, Y: n.Y + oy, W: n.Width, H: n.Height,
		})
	}

	edges := make([]canvasEdge, 0, len(layout.Edges))
	for _, e := range layout.Edges {
		pts := make([]model.Point, len(e.Points))
		for i, p := range e.Points {
			pts[i] = model.Point{X: p.X + ox, Y: p.Y + oy}
		}
		edges = append(edges, canvasEdge{Kind: edgeKindByID[e.ID], Points: pts})
	}

	title := opts.Title
	if title == "" {
		title = "Flow Snapshot"
	}

	return canvasModel{
		Title:   title,
		Width:   int(maxX-minX) + 2*int(snapshotMargin),
		Height:  int(maxY-minY) + 2*int(snapshotMargin) + int(snapshotHeader),
		Margin:  snapshotMargin,
		Header:  snapshotHeader,
		Nodes:   nodes,
		Edges:   edges,
		NodeCnt: len(nodes),
		EdgeCnt: len(edges),
	}
}

var (
	colorStart    = color.RGBA{0x50, 0xfa, 0x7b, 0xff}
	colorEnd      = color.RGBA{0x62, 0x72, 0xa4, 0xff}
	colorProcess  = color.RGBA{0xc8, 0xe6, 0xc9, 0xff}
	colorDecision = color.RGBA{0x8b, 0xe9, 0xfd, 0xff}
	colorDelay    = color.RGBA{0xf1, 0xfa, 0x8c, 0xff}
	colorStroke   = color.RGBA{0x22, 0x22, 0x22, 0xff}
	colorText     = color.RGBA{0x11, 0x11, 0x11, 0xff}
	colorEdge     = color.RGBA{0x6b, 0x80, 0xbf, 0xff}
	colorReturn   = color.RGBA{0xfb, 0x8c, 0x00, 0xff}
	colorBackdrop = color.RGBA{0xf9, 0xfa, 0xfb, 0xff}
)

func kindColor(k model.NodeKind) color.RGBA {
	switch k {
	case model.NodeStart:
		return colorStart
	case model.NodeEnd:
		return colorEnd
	case model.NodeDecision:
		return colorDecision
	case model.NodeDelay:
		return colorDelay
	default:
		return colorProcess
	}
}

func edgeColor(k model.EdgeKind) color.RGBA {
	if k == model.EdgeReturn {
		return colorReturn
	}
	return colorEdge
}

func css(c color.RGBA) string {
	return fmt.Sprintf("#%02x%02x%02x", c.R, c.G, c.B)
}

// --- PNG via gg ----------------------------------------------------------

func renderPNG(path string, m canvasModel) error {
	dc := gg.NewContext(m.Width, m.Height)
	dc.SetColor(colorBackdrop)
	dc.Clear()
	dc.SetFontFace(basicfont.Face7x13)

	dc.SetColor(colorText)
	dc.DrawStringAnchored(fmt.Sprintf("%s  (%d nodes, %d edges)", m.Title, m.NodeCnt, m.EdgeCnt), m.Margin, m.Header/2, 0, 0.5)

	dc.SetLineWidth(2)
	for _, e := range m.Edges {
		dc.SetColor(edgeColor(e.Kind))
		for i := 1; i < len(e.Points); i++ {
			dc.DrawLine(e.Points[i-1].X, e.Points[i-1].Y, e.Points[i].X, e.Points[i].Y)
			dc.Stroke()
		}
	}

	for _, n := range m.Nodes {
		dc.SetColor(kindColor(n.Kind))
		dc.DrawRoundedRectangle(n.X-n.W/2, n.Y-n.H/2, n.W, n.H, 6)
		dc.Fill()
		dc.SetColor(colorStroke)
		dc.SetLineWidth(1.2)
		dc.DrawRoundedRectangle(n.X-n.W/2, n.Y-n.H/2, n.W, n.H, 6)
		dc.Stroke()
		dc.SetColor(colorText)
		label := n.Label
		if label == "" {
			label = n.ID
		}
		dc.DrawStringAnchored(label, n.X, n.Y, 0.5, 0.5)
	}

	return dc.SavePNG(path)
}

// --- SVG via svgo ----------------------------------------------------------

func renderSVG(path string, m canvasModel) error {
	file, err := os.Create(path)
	if err != nil {
		return err
	}
	defer file.Close()
	return renderSVGToWriter(file, m)
}

func renderSVGToWriter(w io.Writer, m canvasModel) error {
	canvas := svg.New(w)
	canvas.Start(m.Width, m.Height)
	canvas.Rect(0, 0, m.Width, m.Height, fmt.Sprintf("fill:%s", css(colorBackdrop)))
	canvas.Text(int(m.Margin), int(m.Header/2), fmt.Sprintf("%s (%d nodes, %d edges)", m.Title, m.NodeCnt, m.EdgeCnt),
		fmt.Sprintf("fill:%s;font-size:14px;font-family:monospace;font-weight:bold", css(colorText)))

	for _, e := range m.Edges {
		style := fmt.Sprintf("stroke:%s;stroke-width:2", css(edgeColor(e.Kind)))
		for i := 1; i < len(e.Points); i++ {
			canvas.Line(int(e.Points[i-1].X), int(e.Points[i-1].Y), int(e.Points[i].X), int(e.Points[i].Y), style)
		}
	}

	for _, n := range m.Nodes {
		x, y := int(n.X-n.W/2), int(n.Y-n.H/2)
		canvas.Roundrect(x, y, int(n.W), int(n.H), 6, 6,
			fmt.Sprintf("fill:%s;stroke:%s;stroke-width:1.2", css(kindColor(n.Kind)), css(colorStroke)))
		label := n.Label
		if label == "" {
			label = n.ID
		}
		canvas.Text(int(n.X), int(n.Y), label, fmt.Sprintf("fill:%s;font-size:12px;font-family:monospace;text-anchor:middle", css(colorText)))
	}

	canvas.End()
	return nil
}
