package render

import (
	"bytes"
	"image"
	"image/color"
	"image/draw"
	"image/png"
	"os"
	"path/filepath"

	"scratch_lottery/internal/domain"
	"scratch_lottery/internal/logger"

	xdraw "golang.org/x/image/draw"
	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/font/gofont/goregular"
	"golang.org/x/image/font/opentype"
	"golang.org/x/image/math/fixed"
)

const (
	// CardSize is the rendered image side in pixels.
	CardSize = 600
	// CellSize is one cell's side: a card is a 3x3 grid.
	CellSize = CardSize / 3

	fontAsset    = "card_font.ttf"
	overlayAsset = "scratch_overlay.png"

	captionWord = "монет"
)

var (
	colorCell    = color.RGBA{255, 255, 255, 255}
	colorEmpty   = color.RGBA{100, 100, 100, 255}
	colorGold    = color.RGBA{255, 215, 0, 255}
	colorCaption = color.RGBA{200, 200, 200, 255}
	colorCover   = color.RGBA{180, 180, 180, 200}
)

// Renderer draws scratch cards as PNG images. Rendering is pure:
// identical (prizes, revealed) input produces byte-identical output,
// so a card can be re-rendered after every reveal.
type Renderer struct {
	face      font.Face
	smallFace font.Face
	overlay   image.Image
}

// New builds a renderer, loading the overlay texture and preferred font
// from assetsDir. Both degrade gracefully: a missing texture becomes a
// flat translucent cover, a missing font falls back to the embedded Go
// Regular face.
func New(assetsDir string) *Renderer {
	return &Renderer{
		face:      loadFace(assetsDir, 50),
		smallFace: loadFace(assetsDir, 30),
		overlay:   loadOverlay(assetsDir),
	}
}

// Render produces the card image for the given reveal state.
func (r *Renderer) Render(prizes [domain.CardCells]domain.Prize, revealed [domain.CardCells]bool) ([]byte, error) {
	img := image.NewRGBA(image.Rect(0, 0, CardSize, CardSize))

	for i := 0; i < domain.CardCells; i++ {
		x := (i % 3) * CellSize
		y := (i / 3) * CellSize
		cell := image.Rect(x, y, x+CellSize, y+CellSize)

		draw.Draw(img, cell, image.NewUniform(colorCell), image.Point{}, draw.Src)

		if prizes[i].IsEmpty() {
			r.drawCentered(img, cell, domain.EmptyLabel, r.face, colorEmpty, 15)
		} else {
			r.drawCentered(img, cell, prizes[i].Label(), r.face, colorGold, -15)
			r.drawCentered(img, cell, captionWord, r.smallFace, colorCaption, 45)
		}

		if !revealed[i] {
			draw.Draw(img, cell, r.overlay, image.Point{}, draw.Over)
		}
	}

	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// drawCentered draws text horizontally centered in the cell, with the
// baseline offset dy pixels from the cell's vertical middle.
func (r *Renderer) drawCentered(img draw.Image, cell image.Rectangle, text string, face font.Face, col color.Color, dy int) {
	d := &font.Drawer{
		Dst:  img,
		Src:  image.NewUniform(col),
		Face: face,
	}
	width := d.MeasureString(text)
	cx := fixed.I(cell.Min.X + CellSize/2)
	d.Dot = fixed.Point26_6{
		X: cx - width/2,
		Y: fixed.I(cell.Min.Y + CellSize/2 + dy),
	}
	d.DrawString(text)
}

func loadFace(assetsDir string, size float64) font.Face {
	if b, err := os.ReadFile(filepath.Join(assetsDir, fontAsset)); err == nil {
		if face, err := makeFace(b, size); err == nil {
			return face
		}
		logger.Warn("failed to parse card font, using builtin", "asset", fontAsset)
	}

	face, err := makeFace(goregular.TTF, size)
	if err != nil {
		// last resort, still deterministic
		return basicfont.Face7x13
	}
	return face
}

func makeFace(ttf []byte, size float64) (font.Face, error) {
	ft, err := opentype.Parse(ttf)
	if err != nil {
		return nil, err
	}
	return opentype.NewFace(ft, &opentype.FaceOptions{
		Size:    size,
		DPI:     72,
		Hinting: font.HintingFull,
	})
}

func loadOverlay(assetsDir string) image.Image {
	f, err := os.Open(filepath.Join(assetsDir, overlayAsset))
	if err != nil {
		return image.NewUniform(colorCover)
	}
	defer f.Close()

	src, _, err := image.Decode(f)
	if err != nil {
		logger.Warn("failed to decode overlay texture, using flat cover", "asset", overlayAsset)
		return image.NewUniform(colorCover)
	}

	// scale the texture to cell size once at startup
	dst := image.NewRGBA(image.Rect(0, 0, CellSize, CellSize))
	xdraw.ApproxBiLinear.Scale(dst, dst.Bounds(), src, src.Bounds(), xdraw.Src, nil)
	return dst
}
