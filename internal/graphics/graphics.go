// Package graphics implements vm.GraphicsHost over a software RGBA
// framebuffer, optionally mirrored to a live window via go-sdl2
// (grounded on the go-sdl2 usage in the retrieved CHIP-8/chopper
// emulator examples: sdl.Init, CreateWindow, CreateRenderer,
// CreateTexture, UpdateTexture, Present). PNG persistence uses the
// standard library's image/png, since no example repo carries an
// image-codec dependency worth grounding that concern on instead.
package graphics

import (
	"image"
	"image/color"
	"image/png"
	"math"
	"os"
	"time"

	"github.com/pkg/errors"
	"github.com/veandco/go-sdl2/sdl"
)

// Host is a software-rendered GraphicsHost. Window/renderer/texture
// are created lazily by EnsureScreen and are nil (display disabled)
// until then, so headless use (tests, batch runs) never touches SDL.
type Host struct {
	img *image.RGBA

	curColor color.RGBA
	penX, penY int

	win *sdl.Window
	ren *sdl.Renderer
	tex *sdl.Texture

	// Interactive selects whether EnsureScreen opens a live SDL
	// window; false keeps everything purely in-memory (used by the
	// -image/batch CLI mode and by tests).
	Interactive bool
}

// New returns a Host with no screen yet allocated.
func New(interactive bool) *Host {
	return &Host{Interactive: interactive, curColor: color.RGBA{A: 0xff}}
}

func (h *Host) EnsureScreen(w, h2 int) {
	if h.img != nil {
		return
	}
	h.img = image.NewRGBA(image.Rect(0, 0, w, h2))
	if !h.Interactive {
		return
	}
	if err := sdl.Init(sdl.INIT_VIDEO); err != nil {
		return
	}
	win, err := sdl.CreateWindow("rbasic", sdl.WINDOWPOS_UNDEFINED, sdl.WINDOWPOS_UNDEFINED,
		int32(w), int32(h2), sdl.WINDOW_SHOWN)
	if err != nil {
		return
	}
	ren, err := sdl.CreateRenderer(win, -1, sdl.RENDERER_ACCELERATED)
	if err != nil {
		win.Destroy()
		return
	}
	tex, err := ren.CreateTexture(sdl.PIXELFORMAT_ABGR8888, sdl.TEXTUREACCESS_STREAMING, int32(w), int32(h2))
	if err != nil {
		ren.Destroy()
		win.Destroy()
		return
	}
	h.win, h.ren, h.tex = win, ren, tex
}

func (h *Host) Cls() {
	if h.img == nil {
		return
	}
	bg := image.NewUniform(color.RGBA{A: 0xff})
	for y := 0; y < h.img.Bounds().Dy(); y++ {
		for x := 0; x < h.img.Bounds().Dx(); x++ {
			h.img.Set(x, y, bg.At(x, y))
		}
	}
}

// Flush pushes the in-memory framebuffer to the live window, if one
// is open; it is the only point at which drawing becomes visible
// (spec.md §5 "Ordering guarantees").
func (h *Host) Flush() {
	if h.tex == nil || h.img == nil {
		return
	}
	h.tex.Update(nil, h.img.Pix, h.img.Stride)
	h.ren.Clear()
	h.ren.Copy(h.tex, nil, nil)
	h.ren.Present()
}

func (h *Host) Save(path string) error {
	if h.img == nil {
		return errors.New("no screen to save")
	}
	f, err := os.Create(path)
	if err != nil {
		return errors.Wrap(err, "create image file")
	}
	defer f.Close()
	return errors.Wrap(png.Encode(f, h.img), "encode png")
}

func (h *Host) ColorRGB(r, g, b int) {
	h.curColor = color.RGBA{R: clampByte(r), G: clampByte(g), B: clampByte(b), A: 0xff}
}

func (h *Host) ColorPalette(p int) {
	rgb := palette[clampIdx(p)]
	h.curColor = color.RGBA{R: uint8(rgb[0]), G: uint8(rgb[1]), B: uint8(rgb[2]), A: 0xff}
}

func (h *Host) ColorHSV(hue, s, v float64) {
	r, g, b := hsvToRGB(hue, s, v)
	h.curColor = color.RGBA{R: r, G: g, B: b, A: 0xff}
}

func (h *Host) PSet(x, y int) {
	h.plot(x, y)
	h.penX, h.penY = x, y
}

func (h *Host) Line(x1, y1, x2, y2 int) {
	h.bresenham(x1, y1, x2, y2)
	h.penX, h.penY = x2, y2
}

func (h *Host) LineTo(x2, y2 int) {
	h.bresenham(h.penX, h.penY, x2, y2)
	h.penX, h.penY = x2, y2
}

func (h *Host) Circle(cx, cy, r int) {
	// Midpoint circle algorithm.
	x, y, d := r, 0, 1-r
	for x >= y {
		h.plot(cx+x, cy+y)
		h.plot(cx+y, cy+x)
		h.plot(cx-y, cy+x)
		h.plot(cx-x, cy+y)
		h.plot(cx-x, cy-y)
		h.plot(cx-y, cy-x)
		h.plot(cx+y, cy-x)
		h.plot(cx+x, cy-y)
		y++
		if d <= 0 {
			d += 2*y + 1
		} else {
			x--
			d += 2*(y-x) + 1
		}
	}
}

func (h *Host) Box(x1, y1, x2, y2 int, fill bool) {
	if x1 > x2 {
		x1, x2 = x2, x1
	}
	if y1 > y2 {
		y1, y2 = y2, y1
	}
	if !fill {
		h.bresenham(x1, y1, x2, y1)
		h.bresenham(x2, y1, x2, y2)
		h.bresenham(x2, y2, x1, y2)
		h.bresenham(x1, y2, x1, y1)
		return
	}
	for y := y1; y <= y2; y++ {
		for x := x1; x <= x2; x++ {
			h.plot(x, y)
		}
	}
}

// Paint performs a 4-connected flood fill from (x,y), bounded by the
// image's own extent (no explicit boundary color is specified by the
// spec, so any pixel matching the seed's color is filled).
func (h *Host) Paint(x, y int) {
	if h.img == nil {
		return
	}
	bounds := h.img.Bounds()
	if !image.Pt(x, y).In(bounds) {
		return
	}
	target := h.img.RGBAAt(x, y)
	if target == h.curColor {
		return
	}
	stack := [][2]int{{x, y}}
	for len(stack) > 0 {
		p := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		px, py := p[0], p[1]
		if px < bounds.Min.X || px >= bounds.Max.X || py < bounds.Min.Y || py >= bounds.Max.Y {
			continue
		}
		if h.img.RGBAAt(px, py) != target {
			continue
		}
		h.img.SetRGBA(px, py, h.curColor)
		stack = append(stack, [2]int{px + 1, py}, [2]int{px - 1, py}, [2]int{px, py + 1}, [2]int{px, py - 1})
	}
}

func (h *Host) PenPosition() (int, int) { return h.penX, h.penY }
func (h *Host) SetPen(x, y int)         { h.penX, h.penY = x, y }

// PointNonBlack reports whether the pixel at (x,y) has any non-black
// channel (spec.md §9: antialiased-edge behavior is
// implementation-defined; this implementation treats any nonzero
// channel as non-black).
func (h *Host) PointNonBlack(x, y int) bool {
	if h.img == nil {
		return false
	}
	if !image.Pt(x, y).In(h.img.Bounds()) {
		return false
	}
	c := h.img.RGBAAt(x, y)
	return c.R != 0 || c.G != 0 || c.B != 0
}

func (h *Host) TextLocate(x, y int) { h.penX, h.penY = x, y }
func (h *Host) TextPrint(s string)  {} // a bitmap font is out of scope; nothing is drawn

func (h *Host) SleepMS(n int) {
	if n > 0 {
		time.Sleep(time.Duration(n) * time.Millisecond)
	}
}

func (h *Host) plot(x, y int) {
	if h.img == nil {
		return
	}
	if !image.Pt(x, y).In(h.img.Bounds()) {
		return
	}
	h.img.SetRGBA(x, y, h.curColor)
}

// bresenham draws a line using integer Bresenham stepping.
func (h *Host) bresenham(x1, y1, x2, y2 int) {
	dx := abs(x2 - x1)
	dy := -abs(y2 - y1)
	sx, sy := sign(x2-x1), sign(y2-y1)
	err := dx + dy
	x, y := x1, y1
	for {
		h.plot(x, y)
		if x == x2 && y == y2 {
			break
		}
		e2 := 2 * err
		if e2 >= dy {
			err += dy
			x += sx
		}
		if e2 <= dx {
			err += dx
			y += sy
		}
	}
}

func abs(n int) int {
	if n < 0 {
		return -n
	}
	return n
}

func sign(n int) int {
	switch {
	case n > 0:
		return 1
	case n < 0:
		return -1
	}
	return 0
}

func clampByte(n int) uint8 {
	if n < 0 {
		return 0
	}
	if n > 255 {
		return 255
	}
	return uint8(n)
}

func clampIdx(p int) int {
	if p < 0 {
		return 0
	}
	if p > 15 {
		return 15
	}
	return p
}

// palette mirrors vm.Palette; kept independent so this package does
// not need to import vm for a 16-entry constant table.
var palette = [16][3]int{
	{0, 0, 0}, {0, 0, 170}, {0, 170, 0}, {0, 170, 170},
	{170, 0, 0}, {170, 0, 170}, {170, 85, 0}, {170, 170, 170},
	{85, 85, 85}, {85, 85, 255}, {85, 255, 85}, {85, 255, 255},
	{255, 85, 85}, {255, 85, 255}, {255, 255, 85}, {255, 255, 255},
}

func hsvToRGB(h, s, v float64) (r, g, b uint8) {
	i := math.Floor(h * 6)
	f := h*6 - i
	p := v * (1 - s)
	q := v * (1 - f*s)
	t := v * (1 - (1-f)*s)
	var rf, gf, bf float64
	switch int(i) % 6 {
	case 0:
		rf, gf, bf = v, t, p
	case 1:
		rf, gf, bf = q, v, p
	case 2:
		rf, gf, bf = p, v, t
	case 3:
		rf, gf, bf = p, q, v
	case 4:
		rf, gf, bf = t, p, v
	case 5:
		rf, gf, bf = v, p, q
	}
	return uint8(rf * 255), uint8(gf * 255), uint8(bf * 255)
}
