package universe

import (
	"fmt"
	"sort"
)

//ToggleCell inverses the cell state at point x, y
func (u *Universe) ToggleCell(x int, y int) error {
	if !u.inside(x, y) {
		return u.outOfRange(x, y)
	}
	i := u.index(x, y)
	u.cells[i] = !u.cells[i]
	u.stable = false
	return nil
}

//SetWidth resizes the universe, the content is reset to dead cells
func (u *Universe) SetWidth(width int) error {
	return u.Resize(width, u.height)
}

//SetHeight resizes the universe, the content is reset to dead cells
func (u *Universe) SetHeight(height int) error {
	return u.Resize(u.width, height)
}

//Resize replaces the universe with an empty one of the new dimensions
func (u *Universe) Resize(width int, height int) error {
	if err := checkDimensions(width, height); err != nil {
		return err
	}
	u.width = width
	u.height = height
	u.cells = make([]Cell, width*height)
	u.stable = false
	u.debug("universe resized", "width", width, "height", height)
	return nil
}

//Reseed clears the universe and populates it by gen
//on failure the universe is left as it was
func (u *Universe) Reseed(gen Generator) error {
	cells, err := u.generate(gen, u.width, u.height)
	if err != nil {
		return err
	}
	u.cells = cells
	u.stable = false
	u.debug("universe reseeded", "live_cells", u.LiveCells())
	return nil
}

func (u *Universe) SetEmpty() error {
	return u.Reseed(Empty)
}

func (u *Universe) SetDeterministic() error {
	return u.Reseed(Deterministic)
}

//SetRandom reseeds every cell as alive with probability p
func (u *Universe) SetRandom(p float64) error {
	return u.Reseed(Random(p))
}

//Stamp writes the pattern into the universe wrapping at the edges
//(x, y) is the top-left corner of the pattern, or its centre when centered is set
func (u *Universe) Stamp(p Pattern, x int, y int, centered bool) {
	if centered {
		x -= (p.Width() + 1) / 2
		y -= (p.Height() + 1) / 2
	}
	for r, row := range p {
		for c, cell := range row {
			u.cells[u.indexWrapped(x+c, y+r)] = cell
		}
	}
	u.stable = false
}

//StampTemplate stamps the named template, see Stamp
func (u *Universe) StampTemplate(name string, x int, y int, centered bool) error {
	t, ok := u.templates[name]
	if !ok {
		return fmt.Errorf("%w: %q", ErrUnknownTemplate, name)
	}
	u.Stamp(t.Pattern, x, y, centered)
	return nil
}

//SetTemplate clears the universe and stamps the named template centred on the field
func (u *Universe) SetTemplate(name string) error {
	t, ok := u.templates[name]
	if !ok {
		return fmt.Errorf("%w: %q", ErrUnknownTemplate, name)
	}
	if err := u.SetEmpty(); err != nil {
		return err
	}
	u.Stamp(t.Pattern, u.width/2, u.height/2, true)
	return nil
}

//AddTemplate adds the template to the universe's storage, replacing one of the same name
func (u *Universe) AddTemplate(t Template) error {
	if t.Name == "" {
		return fmt.Errorf("%w: empty name", ErrUnknownTemplate)
	}
	if !t.Pattern.Rectangular() {
		return fmt.Errorf("template %q: %w", t.Name, ErrRaggedPattern)
	}
	u.templates[t.Name] = t
	return nil
}

//Template returns the template registered under name
func (u *Universe) Template(name string) (Template, bool) {
	t, ok := u.templates[name]
	return t, ok
}

//Templates returns the sorted names of the registered templates
func (u *Universe) Templates() []string {
	names := make([]string, 0, len(u.templates))
	for k := range u.templates {
		names = append(names, k)
	}
	sort.Strings(names)
	return names
}
