package universe

import (
	"fmt"
	"strings"
)

//Pattern is a decoded stamp, one slice of cells per row
type Pattern [][]Cell

//Width returns the length of the longest row
func (p Pattern) Width() int {
	w := 0
	for _, r := range p {
		if len(r) > w {
			w = len(r)
		}
	}
	return w
}

func (p Pattern) Height() int {
	return len(p)
}

//Rectangular reports whether all rows have equal length
func (p Pattern) Rectangular() bool {
	for _, r := range p {
		if len(r) != len(p[0]) {
			return false
		}
	}
	return true
}

//DecodePattern parses the plaintext notation: '.' is a dead cell, 'O' is an alive one
//every line is trimmed and blank lines are skipped
//rows are not required to be of equal length
func DecodePattern(text string) (Pattern, error) {
	var p Pattern
	for n, line := range strings.Split(text, "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		row := make([]Cell, 0, len(line))
		for col, ch := range line {
			switch ch {
			case '.':
				row = append(row, Dead)
			case 'O':
				row = append(row, Alive)
			default:
				return nil, fmt.Errorf("%w: line %v, column %v: unexpected %q", ErrMalformedPattern, n+1, col+1, ch)
			}
		}
		p = append(p, row)
	}
	return p, nil
}

//Template is the named stamp which can be used to settle the universe with predefined data
type Template struct {
	Name    string //template name
	Descr   string //template descr
	Pattern Pattern
}

//NewTemplate decodes the text and checks that the rows are rectangular
func NewTemplate(name string, descr string, text string) (Template, error) {
	p, err := DecodePattern(text)
	if err != nil {
		return Template{}, fmt.Errorf("template %q: %w", name, err)
	}
	if !p.Rectangular() {
		return Template{}, fmt.Errorf("template %q: %w", name, ErrRaggedPattern)
	}
	return Template{Name: name, Descr: descr, Pattern: p}, nil
}

//mustTemplate is used for the built-in templates only
func mustTemplate(name string, descr string, text string) Template {
	t, err := NewTemplate(name, descr, text)
	if err != nil {
		panic(err)
	}
	return t
}

//built-in template names
const (
	TemplateLoafer = "loafer"
	TemplateGlider = "glider"
	TemplatePulsar = "pulsar"
	TemplateStable = "stable"
)

var builtinTemplates = []Template{
	mustTemplate(TemplateLoafer, "c/7 orthogonal spaceship", `
		.OO..O.OO
		O..O..OO.
		.O.O.....
		..O......
		........O
		......OOO
		.....O...
		......O..
		.......OO
	`),
	mustTemplate(TemplateGlider, "c/4 diagonal spaceship", `
		.O.
		..O
		OOO
	`),
	mustTemplate(TemplatePulsar, "period 3 oscillator", `
		..OOO...OOO..
		.............
		O....O.O....O
		O....O.O....O
		O....O.O....O
		..OOO...OOO..
		.............
		..OOO...OOO..
		O....O.O....O
		O....O.O....O
		O....O.O....O
		.............
		..OOO...OOO..
	`),
	mustTemplate(TemplateStable, "3 cell bar, still on a field 3 cells wide", `
		OOO
	`),
}

//BuiltinTemplates returns the names of the templates every universe knows
func BuiltinTemplates() []string {
	names := make([]string, 0, len(builtinTemplates))
	for _, t := range builtinTemplates {
		names = append(names, t.Name)
	}
	return names
}
