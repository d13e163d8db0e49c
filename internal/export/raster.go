package export

import (
	"bytes"
	"encoding/base64"
	"errors"
	"fmt"
	"image"
	"image/color"
	"image/jpeg"
	"image/png"
	"math"

	"github.com/srwiley/rasterx"
	"golang.org/x/image/draw"
	"golang.org/x/image/math/fixed"

	"github.com/quotebuilder/sketchpad/backend-go/internal/document"
)

const (
	FormatPNG  = "png"
	FormatJPEG = "jpeg"
)

var ErrEmptyViewport = errors.New("export viewport has zero size")

// Options control the flattened output.
type Options struct {
	// Scale is the pixel-density multiplier over the logical viewport.
	Scale float64
	// Quality in (0, 1]. PNG output is lossless and maps it to nothing.
	Quality float64
	Format  string
}

// DefaultOptions returns 2x PNG at quality 0.8.
func DefaultOptions() Options {
	return Options{Scale: 2, Quality: 0.8, Format: FormatPNG}
}

// Exporter flattens committed drawing objects into a raster image.
type Exporter struct {
	opts Options
}

// New creates an exporter, filling unset options with defaults.
func New(opts Options) *Exporter {
	def := DefaultOptions()
	if opts.Scale <= 0 {
		opts.Scale = def.Scale
	}
	if opts.Quality <= 0 || opts.Quality > 1 {
		opts.Quality = def.Quality
	}
	if opts.Format == "" {
		opts.Format = def.Format
	}
	return &Exporter{opts: opts}
}

func (e *Exporter) Options() Options { return e.opts }

// ContentType is the MIME type of Encode's output.
func (e *Exporter) ContentType() string {
	if e.opts.Format == FormatJPEG {
		return "image/jpeg"
	}
	return "image/png"
}

// Rasterize paints the snapshot's background and objects, in paint order,
// onto a width*Scale by height*Scale image.
func (e *Exporter) Rasterize(snap *document.Snapshot, width, height int) (*image.NRGBA, error) {
	if width <= 0 || height <= 0 {
		return nil, fmt.Errorf("%w: %dx%d", ErrEmptyViewport, width, height)
	}
	s := e.opts.Scale
	w := int(math.Round(float64(width) * s))
	h := int(math.Round(float64(height) * s))
	img := image.NewNRGBA(image.Rect(0, 0, w, h))

	bg, err := document.ParseColor(snap.Background)
	if err != nil {
		return nil, fmt.Errorf("background: %w", err)
	}
	draw.Draw(img, img.Bounds(), image.NewUniform(bg), image.Point{}, draw.Src)

	scanner := rasterx.NewScannerGV(w, h, img, img.Bounds())
	dasher := rasterx.NewDasher(w, h, scanner)
	for i := range snap.Objects {
		o := &snap.Objects[i]
		if err := strokeObject(dasher, o, s); err != nil {
			return nil, fmt.Errorf("object %s: %w", o.ID, err)
		}
	}
	return img, nil
}

func strokeObject(d *rasterx.Dasher, o *document.Object, s float64) error {
	c, err := document.ParseColor(o.Style.StrokeColor)
	if err != nil {
		return err
	}
	if c.A == 0 {
		return nil
	}

	var dashes []float64
	for _, v := range o.Style.DashPattern {
		dashes = append(dashes, v*s)
	}
	d.Clear()
	d.SetColor(c)
	d.SetStroke(toFixed(o.Style.StrokeWidth*s), toFixed(4*s), rasterx.RoundCap, rasterx.RoundCap,
		rasterx.RoundGap, rasterx.Round, dashes, 0)

	switch o.Kind {
	case document.KindRect:
		if o.Width == 0 && o.Height == 0 {
			return nil
		}
		addPolyline(d, rectCorners(o), s, true)
	case document.KindCircle:
		if o.Radius == 0 {
			return nil
		}
		rasterx.AddCircle(o.Center.X*s, o.Center.Y*s, o.Radius*s, d)
	case document.KindLine:
		addPolyline(d, []document.Point{o.From, o.To}, s, false)
	case document.KindPolygon:
		addPolyline(d, o.Points, s, true)
	default:
		addPolyline(d, o.Points, s, false)
	}
	d.Draw()
	return nil
}

func addPolyline(a rasterx.Adder, pts []document.Point, s float64, closed bool) {
	if len(pts) == 0 {
		return
	}
	start := rasterx.ToFixedP(pts[0].X*s, pts[0].Y*s)
	a.Start(start)
	for _, p := range pts[1:] {
		a.Line(rasterx.ToFixedP(p.X*s, p.Y*s))
	}
	if len(pts) == 1 {
		// A single tap still leaves a round dot.
		a.Line(fixed.Point26_6{X: start.X + 1, Y: start.Y})
	}
	a.Stop(closed)
}

// rectCorners applies the rectangle's Angle around its centre.
func rectCorners(o *document.Object) []document.Point {
	cx, cy := o.Origin.X+o.Width/2, o.Origin.Y+o.Height/2
	sin, cos := math.Sincos(o.Angle * math.Pi / 180)
	local := [4][2]float64{
		{-o.Width / 2, -o.Height / 2},
		{o.Width / 2, -o.Height / 2},
		{o.Width / 2, o.Height / 2},
		{-o.Width / 2, o.Height / 2},
	}
	pts := make([]document.Point, 4)
	for i, l := range local {
		pts[i] = document.Pt(cx+l[0]*cos-l[1]*sin, cy+l[0]*sin+l[1]*cos)
	}
	return pts
}

func toFixed(v float64) fixed.Int26_6 {
	return fixed.Int26_6(math.Round(v * 64))
}

// Encode compresses img in the configured format.
func (e *Exporter) Encode(img image.Image) ([]byte, error) {
	var buf bytes.Buffer
	switch e.opts.Format {
	case FormatJPEG:
		opaque := image.NewRGBA(img.Bounds())
		draw.Draw(opaque, opaque.Bounds(), image.NewUniform(color.White), image.Point{}, draw.Src)
		draw.Draw(opaque, opaque.Bounds(), img, img.Bounds().Min, draw.Over)
		q := int(math.Round(e.opts.Quality * 100))
		if err := jpeg.Encode(&buf, opaque, &jpeg.Options{Quality: q}); err != nil {
			return nil, fmt.Errorf("encode jpeg: %w", err)
		}
	default:
		enc := png.Encoder{CompressionLevel: png.DefaultCompression}
		if err := enc.Encode(&buf, img); err != nil {
			return nil, fmt.Errorf("encode png: %w", err)
		}
	}
	return buf.Bytes(), nil
}

// Render rasterizes and encodes in one step.
func (e *Exporter) Render(snap *document.Snapshot, width, height int) ([]byte, error) {
	img, err := e.Rasterize(snap, width, height)
	if err != nil {
		return nil, err
	}
	return e.Encode(img)
}

// DataURL returns the encoded image base64-embedded in a data URL.
func (e *Exporter) DataURL(snap *document.Snapshot, width, height int) (string, error) {
	data, err := e.Render(snap, width, height)
	if err != nil {
		return "", err
	}
	return "data:" + e.ContentType() + ";base64," + base64.StdEncoding.EncodeToString(data), nil
}

// DecodeDataURL extracts the image bytes and content type from a data URL.
func DecodeDataURL(s string) ([]byte, string, error) {
	const prefix = "data:"
	rest, ok := bytes.CutPrefix([]byte(s), []byte(prefix))
	if !ok {
		return nil, "", errors.New("not a data url")
	}
	meta, payload, ok := bytes.Cut(rest, []byte(","))
	if !ok {
		return nil, "", errors.New("data url has no payload")
	}
	contentType, isBase64 := bytes.CutSuffix(meta, []byte(";base64"))
	if !isBase64 {
		return nil, "", errors.New("data url is not base64")
	}
	data, err := base64.StdEncoding.DecodeString(string(payload))
	if err != nil {
		return nil, "", fmt.Errorf("decode data url: %w", err)
	}
	return data, string(contentType), nil
}
