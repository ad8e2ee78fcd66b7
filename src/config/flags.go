package config

import (
	"math"
	"strings"
	"time"

	"github.com/integrii/flaggy"
)

//unset marks an integer flag that was not given on the command line
//the duration and probability flags use unsetInterval and NaN, any given value reaches Validate
const (
	unset         = math.MinInt32
	unsetInterval = time.Duration(math.MinInt64)
)

//Flags holds the command line values; only the flags actually given
//override the file and the defaults
type Flags struct {
	ConfigPath  string
	Width       int
	Height      int
	Interval    time.Duration
	MaxSteps    int
	Interactive bool
	Strategy    string
	Probability float64
	RandomSeed  int64
	Template    string
	X           int
	Y           int
	Centered    bool
	LogLevel    string
	LogFormat   string
}

//NewFlags returns Flags with every value marked as not given
func NewFlags() *Flags {
	return &Flags{
		Width:       unset,
		Height:      unset,
		Interval:    unsetInterval,
		MaxSteps:    unset,
		Probability: math.NaN(),
		X:           unset,
		Y:           unset,
	}
}

//Bind registers the flags on the parser
func (f *Flags) Bind(p *flaggy.Parser, templates []string) {
	p.ShowHelpOnUnexpected = true
	p.String(&f.ConfigPath, "c", "config", "Path to an HCL configuration file")
	p.Int(&f.Width, "x", "width", "Width of a simulation field")
	p.Int(&f.Height, "y", "height", "Height of a simulation field")
	p.Duration(&f.Interval, "i", "interval", "Simulation speed (interval between the steps) in format the number with 'ms' suffix, for example 150ms")
	p.Int(&f.MaxSteps, "s", "maxSteps", "Limit the simulation to maxSteps, 0 means no limit")
	p.Bool(&f.Interactive, "n", "interactive", "Start interactive mode")
	p.String(&f.Strategy, "e", "seed", "Seeding strategy [random|deterministic|empty|template]")
	p.Float64(&f.Probability, "p", "probability", "Probability of a cell to be alive for the random seeding")
	p.Int64(&f.RandomSeed, "r", "randomSeed", "Seed of the reproducible random source, 0 uses the OS entropy")
	p.String(&f.Template, "t", "template", "Template to seed with ["+strings.Join(templates, "|")+"]")
	p.Int(&f.X, "", "anchorX", "X coordinate of the template anchor")
	p.Int(&f.Y, "", "anchorY", "Y coordinate of the template anchor")
	p.Bool(&f.Centered, "", "centered", "Center the template on the anchor")
	p.String(&f.LogLevel, "l", "logLevel", "Log level [debug|info|warn|error]")
	p.String(&f.LogFormat, "", "logFormat", "Log format [text|json]")
}

//Apply overrides the configuration with the flags that were given
func (f *Flags) Apply(c *Config) {
	if f.Width != unset {
		c.Width = f.Width
	}
	if f.Height != unset {
		c.Height = f.Height
	}
	if f.Interval != unsetInterval {
		c.Interval = f.Interval
	}
	if f.MaxSteps != unset {
		c.MaxSteps = f.MaxSteps
	}
	if f.Interactive {
		c.Interactive = true
	}
	if f.Template != "" {
		c.Seed.Template = f.Template
		c.Seed.Strategy = StrategyTemplate
	}
	if f.Strategy != "" {
		c.Seed.Strategy = f.Strategy
	}
	if !math.IsNaN(f.Probability) {
		c.Seed.Probability = f.Probability
	}
	if f.RandomSeed != 0 {
		c.Seed.RandomSeed = f.RandomSeed
	}
	if f.X != unset {
		x := f.X
		c.Seed.X = &x
	}
	if f.Y != unset {
		y := f.Y
		c.Seed.Y = &y
	}
	if f.Centered {
		c.Seed.Centered = true
	}
	if f.LogLevel != "" {
		c.LogLevel = f.LogLevel
	}
	if f.LogFormat != "" {
		c.LogFormat = f.LogFormat
	}
}

//Load parses the command line arguments, reads the configuration file when
//one is given and applies the flags over it
func Load(p *flaggy.Parser, args []string, templates []string) (*Config, error) {
	f := NewFlags()
	f.Bind(p, templates)
	if err := p.ParseArgs(args); err != nil {
		return nil, err
	}

	c := Default()
	if f.ConfigPath != "" {
		var err error
		if c, err = LoadFile(f.ConfigPath); err != nil {
			return nil, err
		}
	}
	f.Apply(c)
	if err := c.Validate(); err != nil {
		return nil, err
	}
	return c, nil
}
