package universe

import (
	"fmt"
	"math"
)

//Generator produces the initial content of a width x height universe
type Generator func(width int, height int, src Source) ([]Cell, error)

//Empty fills the universe with dead cells
func Empty(width int, height int, _ Source) ([]Cell, error) {
	return make([]Cell, width*height), nil
}

//Deterministic makes the cell with linear index i alive when i is divisible by 2 or by 7
func Deterministic(width int, height int, _ Source) ([]Cell, error) {
	cells := make([]Cell, width*height)
	for i := range cells {
		if i%2 == 0 || i%7 == 0 {
			cells[i] = Alive
		}
	}
	return cells, nil
}

//Random returns the generator making every cell alive with probability p independently
//the draw of the source is compared with floor(p * MaxUint64)
func Random(p float64) Generator {
	return func(width int, height int, src Source) ([]Cell, error) {
		if math.IsNaN(p) || p < 0 || p > 1 {
			return nil, fmt.Errorf("%w: %v", ErrInvalidProbability, p)
		}
		threshold := aliveThreshold(p)
		cells := make([]Cell, width*height)
		for i := range cells {
			v, err := src.Uint64()
			if err != nil {
				return nil, fmt.Errorf("%w: cell %v: %v", ErrEntropy, i, err)
			}
			if p == 1 || v < threshold {
				cells[i] = Alive
			}
		}
		return cells, nil
	}
}

//aliveThreshold avoids converting an out of range float for p close to 1
func aliveThreshold(p float64) uint64 {
	t := p * math.MaxUint64
	if t >= math.MaxUint64 {
		return math.MaxUint64
	}
	return uint64(t)
}

//generate runs gen and checks the result fits the dimensions
func (u *Universe) generate(gen Generator, width int, height int) ([]Cell, error) {
	if gen == nil {
		gen = Empty
	}
	cells, err := gen(width, height, u.source)
	if err != nil {
		return nil, err
	}
	if len(cells) != width*height {
		return nil, fmt.Errorf("%w: generator produced %v cells for %vx%v", ErrInvalidDimensions, len(cells), width, height)
	}
	return cells, nil
}
