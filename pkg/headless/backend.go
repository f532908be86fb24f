package headless

import (
	"fmt"
	"log/slog"
	"strings"

	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/font/gofont/goregular"
	"golang.org/x/image/font/opentype"
	"golang.org/x/image/math/fixed"

	"github.com/go-drift/renderkit/pkg/core"
	"github.com/go-drift/renderkit/pkg/errors"
)

// Tags understood by the backend.
const (
	TagContainer core.Tag = "container"
	TagSprite    core.Tag = "sprite"
	TagText      core.Tag = "text"
	TagGraphics  core.Tag = "graphics"
	TagRect      core.Tag = "rect"
)

var knownTags = map[core.Tag]bool{
	TagContainer: true,
	TagSprite:    true,
	TagText:      true,
	TagGraphics:  true,
	TagRect:      true,
}

// Stats counts host operations.
type Stats struct {
	Creates int
	Updates int
	Removes int
}

// Option configures a Backend.
type Option func(*Backend)

// WithFace measures text with face instead of the fixed 7x13 bitmap font.
func WithFace(face font.Face) Option {
	return func(b *Backend) { b.face = face }
}

// WithLogger sets the backend logger.
func WithLogger(logger *slog.Logger) Option {
	return func(b *Backend) { b.logger = logger }
}

// WithResources lets sprites take their size from loaded images.
func WithResources(lookup func(url string) (any, bool)) Option {
	return func(b *Backend) { b.resources = lookup }
}

// Backend implements core.DrawableFactory, core.Mutator,
// core.EventManager and layout.Positioner over Nodes.
type Backend struct {
	face      font.Face
	logger    *slog.Logger
	resources func(url string) (any, bool)
	focused   core.Component
	stats     Stats
}

// New creates a backend.
func New(opts ...Option) *Backend {
	b := &Backend{face: basicfont.Face7x13}
	for _, opt := range opts {
		opt(b)
	}
	if b.logger == nil {
		b.logger = errors.Logger()
	}
	return b
}

// GoRegular returns a Go Regular face at size points, 72 DPI.
func GoRegular(size float64) (font.Face, error) {
	f, err := opentype.Parse(goregular.TTF)
	if err != nil {
		return nil, fmt.Errorf("headless: parse font: %w", err)
	}
	return opentype.NewFace(f, &opentype.FaceOptions{
		Size:    size,
		DPI:     72,
		Hinting: font.HintingFull,
	})
}

// NewStage returns a root container for Render.
func (b *Backend) NewStage() *Node {
	return NewNode("stage")
}

// Stats returns operation counters.
func (b *Backend) Stats() Stats { return b.stats }

// Focused returns the component last given focus.
func (b *Backend) Focused() core.Component { return b.focused }

// SetResources sets the sprite size lookup after construction.
func (b *Backend) SetResources(lookup func(url string) (any, bool)) {
	b.resources = lookup
}

func (b *Backend) CreateDrawable(tag core.Tag, props core.Props) (core.Drawable, error) {
	if !knownTags[tag] {
		return nil, fmt.Errorf("%w: headless tag %q", errors.ErrNoResolver, tag)
	}
	b.stats.Creates++
	return NewNode(tag), nil
}

func (b *Backend) UpdateComponent(p *core.Primitive) {
	n, ok := p.Drawable().(*Node)
	if !ok {
		return
	}
	b.stats.Updates++
	props := p.Props()
	n.Props = props
	n.Updates++
	n.Position = core.Point{X: props.Float("x"), Y: props.Float("y")}
	n.Size = core.Size{Width: props.Float("width"), Height: props.Float("height")}
	n.Text = props.String("text")
	n.Src = props.String("src")
	n.Alpha = core.PropOr(props, "alpha", 1.0)
	n.Visible = core.PropOr(props, "visible", true)
}

func (b *Backend) RemoveComponent(p *core.Primitive) {
	b.stats.Removes++
	if n, ok := p.Drawable().(*Node); ok {
		n.component = nil
	}
}

// Size measures c. Explicit width/height props win; text is measured with
// the backend face, sprites use their image size, and containers and custom
// components enclose their children.
func (b *Backend) Size(c core.Component) core.Size {
	switch c := c.(type) {
	case *core.Primitive:
		n, ok := c.Drawable().(*Node)
		if !ok {
			return core.Size{}
		}
		return b.nodeSize(n)
	case *core.Custom:
		var size core.Size
		for _, child := range c.Children() {
			d, ok := core.FirstDrawable(child).(*Node)
			if !ok {
				continue
			}
			s := b.Size(child)
			size.Width = max(size.Width, d.Position.X+s.Width)
			size.Height = max(size.Height, d.Position.Y+s.Height)
		}
		return size
	}
	return core.Size{}
}

func (b *Backend) nodeSize(n *Node) core.Size {
	size := n.Size
	if size.Width > 0 && size.Height > 0 {
		return size
	}
	var measured core.Size
	switch n.Tag {
	case TagText:
		measured = b.measureText(n.Text)
	case TagSprite:
		if b.resources != nil && n.Src != "" {
			if r, ok := b.resources(n.Src); ok {
				if img, ok := r.(Image); ok {
					measured = core.Size{Width: float64(img.Width), Height: float64(img.Height)}
				}
			}
		}
	default:
		for _, child := range n.children {
			s := b.nodeSize(child)
			measured.Width = max(measured.Width, child.Position.X+s.Width)
			measured.Height = max(measured.Height, child.Position.Y+s.Height)
		}
	}
	if size.Width == 0 {
		size.Width = measured.Width
	}
	if size.Height == 0 {
		size.Height = measured.Height
	}
	return size
}

func (b *Backend) measureText(text string) core.Size {
	if text == "" {
		return core.Size{}
	}
	lines := strings.Split(text, "\n")
	var width fixed.Int26_6
	for _, line := range lines {
		width = max(width, font.MeasureString(b.face, line))
	}
	lineHeight := b.face.Metrics().Height
	return core.Size{
		Width:  float64(width.Ceil()),
		Height: float64(lineHeight.Ceil() * len(lines)),
	}
}

// SetPosition moves the first drawable of c.
func (b *Backend) SetPosition(c core.Component, p core.Point) {
	if n, ok := core.FirstDrawable(c).(*Node); ok {
		n.Position = p
	}
}

func (b *Backend) AssignEvents(p *core.Primitive) {
	if n, ok := p.Drawable().(*Node); ok {
		n.component = p
	}
}

func (b *Backend) RemoveListeners(p *core.Primitive) {
	if n, ok := p.Drawable().(*Node); ok && n.component == p {
		n.component = nil
	}
}

func (b *Backend) FocusComponent(c core.Component) {
	prev := b.focused
	b.focused = c
	if prev != nil && prev != c && prev.Status() == core.StatusMounted {
		if err := core.Emit(prev, "blur", nil); err != nil {
			b.logger.Warn("blur handler failed", slog.String("error", err.Error()))
		}
	}
	if c != nil {
		if err := core.Emit(c, "focus", nil); err != nil {
			b.logger.Warn("focus handler failed", slog.String("error", err.Error()))
		}
	}
}

// Emit delivers an input event at n: the nearest node with a mounted
// component becomes the target, its handler runs, and the event bubbles.
func (b *Backend) Emit(n *Node, eventType string, payload any) error {
	for current := n; current != nil; current = current.parent {
		if current.component != nil {
			return core.Emit(current.component, eventType, payload)
		}
	}
	return nil
}
