package config

import (
	"errors"
	"fmt"
	"time"

	"toruslife/src/logging"
	"toruslife/src/simulation"
	"toruslife/src/universe"
)

//Seeding strategies
const (
	StrategyRandom        = "random"
	StrategyDeterministic = "deterministic"
	StrategyEmpty         = "empty"
	StrategyTemplate      = "template"
)

//Log formats
const (
	LogFormatText = logging.FormatText
	LogFormatJSON = logging.FormatJSON
)

//ErrInvalid is wrapped by every validation failure
var ErrInvalid = errors.New("invalid configuration")

//Seed describes how the universe is populated before the first step
type Seed struct {
	Strategy    string
	Probability float64
	//RandomSeed selects a reproducible source when non-zero, the OS entropy otherwise
	RandomSeed int64
	Template   string
	//X and Y anchor the template; when nil the template is centred on the field
	X        *int
	Y        *int
	Centered bool
}

//TemplateDef is a named stamp declared in the configuration file
type TemplateDef struct {
	Name        string
	Description string
	Rows        string
}

//Config holds everything the binary needs to run a simulation
type Config struct {
	Width       int
	Height      int
	Interval    time.Duration
	MaxSteps    int
	Interactive bool
	Seed        Seed
	Templates   []TemplateDef
	LogLevel    string
	LogFormat   string
}

//Default returns the configuration used when nothing else is given
func Default() *Config {
	return &Config{
		Width:    universe.DefWidth,
		Height:   universe.DefHeight,
		Interval: simulation.DefSimulationInterval,
		MaxSteps: simulation.DefMaxSteps,
		Seed: Seed{
			Strategy:    StrategyRandom,
			Probability: universe.DefAliveProbability,
		},
		LogLevel:  "info",
		LogFormat: LogFormatText,
	}
}

//Validate checks the configuration for values the simulation cannot use
func (c *Config) Validate() error {
	if c.Width < 1 || c.Height < 1 {
		return fmt.Errorf("%w: dimension %vx%v, both must be at least 1", ErrInvalid, c.Width, c.Height)
	}
	if c.Interval < 0 {
		return fmt.Errorf("%w: negative interval %v", ErrInvalid, c.Interval)
	}
	if c.MaxSteps < 0 {
		return fmt.Errorf("%w: negative max steps %v", ErrInvalid, c.MaxSteps)
	}
	switch c.Seed.Strategy {
	case StrategyRandom:
		if !(c.Seed.Probability >= 0 && c.Seed.Probability <= 1) {
			return fmt.Errorf("%w: probability %v outside [0, 1]", ErrInvalid, c.Seed.Probability)
		}
	case StrategyTemplate:
		if c.Seed.Template == "" {
			return fmt.Errorf("%w: template strategy requires a template name", ErrInvalid)
		}
	case StrategyDeterministic, StrategyEmpty:
	default:
		return fmt.Errorf("%w: unknown seed strategy %q", ErrInvalid, c.Seed.Strategy)
	}
	if _, err := logging.ParseLevel(c.LogLevel); err != nil {
		return fmt.Errorf("%w: unknown log level %q", ErrInvalid, c.LogLevel)
	}
	if c.LogFormat != LogFormatText && c.LogFormat != LogFormatJSON {
		return fmt.Errorf("%w: unknown log format %q", ErrInvalid, c.LogFormat)
	}
	seen := map[string]bool{}
	for _, t := range c.Templates {
		if seen[t.Name] {
			return fmt.Errorf("%w: template %q declared twice", ErrInvalid, t.Name)
		}
		seen[t.Name] = true
	}
	return nil
}

//SimulationOptions returns the runner options of the configuration
func (c *Config) SimulationOptions() *simulation.Options {
	return &simulation.Options{
		Width:    c.Width,
		Height:   c.Height,
		Interval: c.Interval,
		MaxSteps: c.MaxSteps,
	}
}

//NewUniverse builds the universe described by the configuration: it registers
//the declared templates and applies the seeding strategy
func (c *Config) NewUniverse(diag universe.Diagnostics) (*universe.Universe, error) {
	u, err := universe.New(c.Width, c.Height, universe.Empty)
	if err != nil {
		return nil, err
	}
	u.SetDiagnostics(diag)
	if c.Seed.RandomSeed != 0 {
		u.SetSource(universe.NewSeededSource(c.Seed.RandomSeed))
	}
	for _, def := range c.Templates {
		t, err := universe.NewTemplate(def.Name, def.Description, def.Rows)
		if err != nil {
			return nil, err
		}
		if err := u.AddTemplate(t); err != nil {
			return nil, err
		}
	}

	switch c.Seed.Strategy {
	case StrategyRandom:
		err = u.SetRandom(c.Seed.Probability)
	case StrategyDeterministic:
		err = u.SetDeterministic()
	case StrategyEmpty:
		err = u.SetEmpty()
	case StrategyTemplate:
		if c.Seed.X == nil && c.Seed.Y == nil {
			err = u.SetTemplate(c.Seed.Template)
			break
		}
		x, y := c.Width/2, c.Height/2
		if c.Seed.X != nil {
			x = *c.Seed.X
		}
		if c.Seed.Y != nil {
			y = *c.Seed.Y
		}
		err = u.StampTemplate(c.Seed.Template, x, y, c.Seed.Centered)
	default:
		err = fmt.Errorf("%w: unknown seed strategy %q", ErrInvalid, c.Seed.Strategy)
	}
	if err != nil {
		return nil, fmt.Errorf("seeding the universe: %w", err)
	}
	return u, nil
}
