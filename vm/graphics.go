package vm

// GraphicsHost is the black-box side-effecting service graphics
// opcodes call through (spec.md §1, §6). The VM never touches pixels
// directly; it only validates argument counts/types and forwards to
// the host in opcode order.
type GraphicsHost interface {
	EnsureScreen(w, h int)
	Cls()
	Flush()
	Save(path string) error

	ColorRGB(r, g, b int)
	ColorPalette(p int)
	ColorHSV(h, s, v float64)

	PSet(x, y int)
	Line(x1, y1, x2, y2 int)
	LineTo(x2, y2 int)
	Circle(cx, cy, r int)
	Box(x1, y1, x2, y2 int, fill bool)
	Paint(x, y int)

	PenPosition() (x, y int)
	SetPen(x, y int)
	PointNonBlack(x, y int) bool

	TextLocate(x, y int)
	TextPrint(s string)

	SleepMS(n int)
}

// NullGraphics is a no-op GraphicsHost, used as the default so that a
// VM instance can run programs that never touch graphics opcodes
// without requiring a real display.
type NullGraphics struct{}

func (NullGraphics) EnsureScreen(w, h int)          {}
func (NullGraphics) Cls()                           {}
func (NullGraphics) Flush()                         {}
func (NullGraphics) Save(path string) error          { return nil }
func (NullGraphics) ColorRGB(r, g, b int)            {}
func (NullGraphics) ColorPalette(p int)              {}
func (NullGraphics) ColorHSV(h, s, v float64)        {}
func (NullGraphics) PSet(x, y int)                   {}
func (NullGraphics) Line(x1, y1, x2, y2 int)         {}
func (NullGraphics) LineTo(x2, y2 int)               {}
func (NullGraphics) Circle(cx, cy, r int)            {}
func (NullGraphics) Box(x1, y1, x2, y2 int, f bool)  {}
func (NullGraphics) Paint(x, y int)                  {}
func (NullGraphics) PenPosition() (int, int)         { return 0, 0 }
func (NullGraphics) SetPen(x, y int)                 {}
func (NullGraphics) PointNonBlack(x, y int) bool     { return false }
func (NullGraphics) TextLocate(x, y int)             {}
func (NullGraphics) TextPrint(s string)              {}
func (NullGraphics) SleepMS(n int)                   {}

// Palette is the fixed 16-entry DOS-style RGB table used for
// integer-color graphics arguments (spec.md §4.4). Indices outside
// [0,15] are clamped by ColorPalette implementations.
var Palette = [16][3]int{
	{0, 0, 0}, {0, 0, 170}, {0, 170, 0}, {0, 170, 170},
	{170, 0, 0}, {170, 0, 170}, {170, 85, 0}, {170, 170, 170},
	{85, 85, 85}, {85, 85, 255}, {85, 255, 85}, {85, 255, 255},
	{255, 85, 85}, {255, 85, 255}, {255, 255, 85}, {255, 255, 255},
}

// ClampPaletteIndex clamps p to a valid Palette index.
func ClampPaletteIndex(p int) int {
	if p < 0 {
		return 0
	}
	if p > 15 {
		return 15
	}
	return p
}
