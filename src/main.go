package main

import (
	"fmt"
	"os"
	"time"

	"github.com/integrii/flaggy"

	"toruslife/src/config"
	"toruslife/src/logging"
	"toruslife/src/simulation"
	"toruslife/src/universe"
	"toruslife/src/view"
)

func main() {
	p := flaggy.NewParser("toruslife")
	p.Description = "\"The Life\" game on a toroidal field"
	cfg, err := config.Load(p, os.Args[1:], universe.BuiltinTemplates())
	if err != nil {
		p.ShowHelpAndExit(err.Error())
	}

	//the terminal UI owns the screen, the logs would break it
	logger := logging.Discard()
	if !cfg.Interactive {
		logger = logging.New(cfg.LogLevel, cfg.LogFormat, os.Stderr)
	}

	u, err := cfg.NewUniverse(logger)
	if err != nil {
		logger.Error("failed to create the universe", "error", err)
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	logger.Debug("universe created", "width", u.Width(), "height", u.Height(), "seed", cfg.Seed.Strategy, "live_cells", u.LiveCells())

	if cfg.Interactive {
		r := simulation.NewRunner(u, cfg.SimulationOptions(), nil, logger)
		v, err := view.NewViewTerminal(cfg.Seed.Probability, logger)
		if err != nil {
			fmt.Fprintln(os.Stderr, err)
			os.Exit(1)
		}
		r.RegisterViewer(v)
		v.Start()
		r.Close()
		return
	}

	//the buffered channel to getting the simulation status
	stateCh := make(chan simulation.Status, 10)
	r := simulation.NewRunner(u, cfg.SimulationOptions(), stateCh, logger)
	out := view.NewConsoleOut(os.Stdout, true, true)
	r.RegisterViewer(out)
	out.Start()

	startTime := time.Now()
	if err := r.Run(); err != nil {
		logger.Error("failed to start the simulation", "error", err)
		os.Exit(1)
	}
	for st := range stateCh {
		if st.RunningMode == simulation.RunningStateFinished {
			out.Finish(st)
			logger.Debug("run completed", "iterations", st.IterationNum, "elapsed", time.Since(startTime).Round(time.Millisecond))
			break
		}
	}
	r.Close()
}
