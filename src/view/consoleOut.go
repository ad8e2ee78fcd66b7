package view

import (
	"fmt"
	"io"
	"sync"
	"time"

	"github.com/cheggaaa/pb/v3"
	"github.com/logrusorgru/aurora"

	"toruslife/src/simulation"
)

//ConsoleOut is the batch mode viewer
//it prints the configuration, the progress of the run and the final universe
type ConsoleOut struct {
	mu        sync.Mutex
	r         *simulation.Runner
	w         io.Writer
	au        aurora.Aurora
	progress  bool
	bar       *pb.ProgressBar
	startTime time.Time
	lastIter  int
}

//NewConsoleOut creates the viewer writing to w
//colors enables ANSI colors, progress shows a progress bar when the run is limited by MaxSteps
func NewConsoleOut(w io.Writer, colors bool, progress bool) *ConsoleOut {
	return &ConsoleOut{w: w, au: aurora.NewAurora(colors), progress: progress}
}

func (c *ConsoleOut) Register(r *simulation.Runner) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.r = r
	o := r.Options()
	fmt.Fprintln(c.w, c.au.Bold("Running configuration:"))
	c.printProp("Dimension", "%v x %v", o.Width, o.Height)
	c.printProp("Interval", "%v", o.Interval)
	if o.MaxSteps > 0 {
		c.printProp("Max iterations", "%v steps", o.MaxSteps)
	} else {
		c.printProp("Max iterations", "unlimited")
	}
	c.printProp("Live cells", "%v", r.Status().LiveCells)
}

func (c *ConsoleOut) Start() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.startTime = time.Now()
	fmt.Fprintln(c.w, "\nSimulation started...")
	if limit := c.r.Options().MaxSteps; c.progress && limit > 0 {
		c.bar = pb.New(limit).SetWriter(c.w).Start()
	}
}

//Refresh reports the progress of the running simulation
func (c *ConsoleOut) Refresh() {
	c.mu.Lock()
	defer c.mu.Unlock()
	st := c.r.Status()
	if st.RunningMode != simulation.RunningStateRun || st.IterationNum == c.lastIter {
		return
	}
	c.lastIter = st.IterationNum
	if c.bar != nil {
		c.bar.SetCurrent(int64(st.IterationNum))
		return
	}
	if st.IterationNum%10 == 0 {
		fmt.Fprintf(c.w, "  Iterations done: %v\n", st.IterationNum)
	}
}

//Finish prints the summary and the final state of the universe
func (c *ConsoleOut) Finish(st simulation.Status) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.bar != nil {
		c.bar.SetCurrent(int64(st.IterationNum))
		c.bar.Finish()
		c.bar = nil
	}
	totalTime := time.Since(c.startTime).Round(time.Millisecond)
	fmt.Fprintln(c.w, c.au.Bold("\nFinished:"))
	c.printProp("Last iteration", "%v", st.IterationNum)
	c.printProp("Live cells", "%v", st.LiveCells)
	c.printProp("Stable", "%v", st.Stable)
	c.printProp("Total time", "%v", totalTime)
	fmt.Fprintln(c.w)
	fmt.Fprintln(c.w, c.r.Render())
}

func (c *ConsoleOut) printProp(name string, valueformat string, values ...interface{}) {
	fmt.Fprintf(c.w, "  %s: %s\n", c.au.Green(name), fmt.Sprintf(valueformat, values...))
}
