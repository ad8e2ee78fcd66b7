package universe

import (
	"fmt"
	"slices"
	"strings"
)

//Cell is the state of one position of the universe
type Cell bool

const (
	Dead  Cell = false
	Alive Cell = true
)

func (c Cell) String() string {
	if c == Alive {
		return "Alive"
	}
	return "Dead"
}

//default dimension of a universe created by NewDefault
const (
	DefWidth            = 64
	DefHeight           = 64
	DefAliveProbability = 0.5
)

//glyphs used by String
const (
	DeadGlyph  = '◻'
	AliveGlyph = '◼'
)

//Diagnostics is the optional sink the universe reports internal events to
//*slog.Logger satisfies it
type Diagnostics interface {
	Debug(msg string, args ...any)
}

//Universe is a finite toroidal Game of Life field
//cells are stored row-major, the index of (x, y) is y*width + x
//Universe is not safe for concurrent use, callers must serialize access
type Universe struct {
	width     int
	height    int
	cells     []Cell
	stable    bool
	source    Source
	templates map[string]Template
	diag      Diagnostics
}

//New creates the universe with the given dimensions populated by gen
func New(width int, height int, gen Generator) (*Universe, error) {
	if err := checkDimensions(width, height); err != nil {
		return nil, err
	}
	u := &Universe{
		width:     width,
		height:    height,
		source:    CryptoSource,
		templates: map[string]Template{},
	}
	for _, t := range builtinTemplates {
		u.templates[t.Name] = t
	}
	cells, err := u.generate(gen, width, height)
	if err != nil {
		return nil, err
	}
	u.cells = cells
	return u, nil
}

//NewDefault creates the 64x64 universe where every cell is alive with probability 0.5
func NewDefault() (*Universe, error) {
	return New(DefWidth, DefHeight, Random(DefAliveProbability))
}

//Clone returns an independent copy of the universe
func (u *Universe) Clone() *Universe {
	c := *u
	c.cells = slices.Clone(u.cells)
	c.templates = make(map[string]Template, len(u.templates))
	for k, v := range u.templates {
		c.templates[k] = v
	}
	return &c
}

//SetSource replaces the entropy source used by the Random generator and SetRandom
func (u *Universe) SetSource(s Source) {
	if s == nil {
		s = CryptoSource
	}
	u.source = s
}

//SetDiagnostics registers the diagnostic sink, nil disables diagnostics
func (u *Universe) SetDiagnostics(d Diagnostics) {
	u.diag = d
}

func (u *Universe) Width() int {
	return u.width
}

func (u *Universe) Height() int {
	return u.height
}

//Cells returns the row-major cell buffer for rendering
//the buffer belongs to the universe and must not be modified
func (u *Universe) Cells() []Cell {
	return u.cells
}

//Stable reports whether the last Tick produced no change
func (u *Universe) Stable() bool {
	return u.stable
}

//Cell returns the state at x, y
func (u *Universe) Cell(x int, y int) (Cell, error) {
	if !u.inside(x, y) {
		return Dead, u.outOfRange(x, y)
	}
	return u.cells[u.index(x, y)], nil
}

//LiveCells calculates the count of live cells
func (u *Universe) LiveCells() int {
	n := 0
	for _, c := range u.cells {
		if c == Alive {
			n++
		}
	}
	return n
}

//Tick advances the universe by one generation
//a stable universe is left untouched
func (u *Universe) Tick() {
	if u.stable {
		u.debug("stable update")
		return
	}
	next := make([]Cell, len(u.cells))
	for y := 0; y < u.height; y++ {
		for x := 0; x < u.width; x++ {
			i := u.index(x, y)
			next[i] = nextState(u.cells[i], u.neighborCount(x, y))
		}
	}
	u.stable = slices.Equal(next, u.cells)
	u.cells = next
}

//Render returns the text representation of the universe, see String
func (u *Universe) Render() string {
	return u.String()
}

//String renders height lines of width glyphs joined by a line feed
func (u *Universe) String() string {
	var b strings.Builder
	b.Grow(len(u.cells)*3 + u.height)
	for y := 0; y < u.height; y++ {
		if y != 0 {
			b.WriteByte('\n')
		}
		for _, c := range u.cells[y*u.width : (y+1)*u.width] {
			if c == Alive {
				b.WriteRune(AliveGlyph)
			} else {
				b.WriteRune(DeadGlyph)
			}
		}
	}
	return b.String()
}

//nextState applies the B3/S23 rule
func nextState(c Cell, n int) Cell {
	switch {
	case c == Alive && n < 2:
		return Dead
	case c == Alive && (n == 2 || n == 3):
		return Alive
	case c == Alive && n > 3:
		return Dead
	case c == Dead && n == 3:
		return Alive
	}
	return c
}

//neighborCount counts live cells of the Moore neighbourhood with wrapping
//the offsets width-1 and height-1 stand for -1, on very small fields
//several offsets may point to the same cell and are all counted
func (u *Universe) neighborCount(x int, y int) int {
	dys := [3]int{u.height - 1, 0, 1}
	dxs := [3]int{u.width - 1, 0, 1}
	n := 0
	for i, dy := range dys {
		for j, dx := range dxs {
			//skip my position
			if i == 1 && j == 1 {
				continue
			}
			if u.cells[u.indexWrapped(x+dx, y+dy)] == Alive {
				n++
			}
		}
	}
	return n
}

//index expects 0 <= x < width and 0 <= y < height
func (u *Universe) index(x int, y int) int {
	return y*u.width + x
}

//indexWrapped accepts any coordinates and wraps them onto the torus
func (u *Universe) indexWrapped(x int, y int) int {
	return u.index(wrap(x, u.width), wrap(y, u.height))
}

func (u *Universe) inside(x int, y int) bool {
	return x >= 0 && y >= 0 && x < u.width && y < u.height
}

func (u *Universe) outOfRange(x int, y int) error {
	return fmt.Errorf("%w: (%v, %v) outside %vx%v", ErrOutOfRange, x, y, u.width, u.height)
}

func (u *Universe) debug(msg string, args ...any) {
	if u.diag != nil {
		u.diag.Debug(msg, args...)
	}
}

func wrap(v int, n int) int {
	v %= n
	if v < 0 {
		v += n
	}
	return v
}

func checkDimensions(width int, height int) error {
	if width < 1 || height < 1 {
		return fmt.Errorf("%w: %vx%v", ErrInvalidDimensions, width, height)
	}
	return nil
}
