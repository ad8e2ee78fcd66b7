package simulation

import (
	"errors"
	"log/slog"
	"sync"
	"time"

	"toruslife/src/logging"
	"toruslife/src/universe"
)

//Options represents the Runner's configurable options
type Options struct {
	Width    int
	Height   int
	Interval time.Duration
	MaxSteps int
}

//Status represents the status of the simulation at concrete moment
type Status struct {
	IterationNum  int
	RunningMode   RunningState
	LiveCells     int
	Stable        bool
	IterationTime time.Duration
}

//Snapshot is a copy of the universe content taken between two commands
type Snapshot struct {
	Width  int
	Height int
	Cells  []universe.Cell
}

//At returns the cell at x, y of the snapshot
func (s Snapshot) At(x int, y int) universe.Cell {
	return s.Cells[y*s.Width+x]
}

//Viewer is the interface to any Viewer - the object who can display simulation data or control the engine
type Viewer interface {
	Refresh()
	Register(r *Runner)
	Start()
}

//The simulation running status at the concrete moment
type RunningState int

//default options
const (
	DefSimulationInterval = time.Millisecond * 100
	DefMaxSteps           = 1000
)

const (
	RunningStateManual   RunningState = 0x0
	RunningStateStep     RunningState = 0x1
	RunningStateRun      RunningState = 0x2
	RunningStateFinished RunningState = 0x3
)

func (s RunningState) String() string {
	switch s {
	case RunningStateManual:
		return "manual"
	case RunningStateStep:
		return "step"
	case RunningStateRun:
		return "run"
	case RunningStateFinished:
		return "finished"
	}
	return "unknown"
}

var DefaultOptions = Options{
	Width:    universe.DefWidth,
	Height:   universe.DefHeight,
	Interval: DefSimulationInterval,
	MaxSteps: DefMaxSteps,
}

//ErrClosed is returned by the commands issued after Close
var ErrClosed = errors.New("simulation: runner is closed")

//Runner owns a universe and serializes every operation on it
//all commands are executed one by one by the main loop goroutine
type Runner struct {
	options Options
	u       *universe.Universe
	state   struct {
		Status
		sync.Mutex
	}
	//guards u for the readers outside the main loop
	mu        sync.Mutex
	stateCh   chan Status
	views     []Viewer
	controlCh chan func()
	//closed when the current run ends, owned by the main loop
	runCh     chan struct{}
	closeCh   chan struct{}
	closeOnce sync.Once
	logger    *slog.Logger
}

//NewRunner creates the Runner over the universe and starts its main loop
//the universe must not be used directly after that
//stateCh receives status updates, it can be nil
func NewRunner(u *universe.Universe, o *Options, stateCh chan Status, logger *slog.Logger) *Runner {
	if o == nil {
		d := DefaultOptions
		o = &d
	}
	if logger == nil {
		logger = logging.Discard()
	}
	r := &Runner{
		options:   *o,
		u:         u,
		stateCh:   stateCh,
		controlCh: make(chan func()),
		closeCh:   make(chan struct{}),
		logger:    logger,
	}
	r.options.Width = u.Width()
	r.options.Height = u.Height()
	r.state.LiveCells = u.LiveCells()
	go r.mainLoop()
	return r
}

//Status returns current simulation status represented by Status struct
func (r *Runner) Status() Status {
	r.state.Lock()
	defer r.state.Unlock()
	return r.state.Status
}

//Options returns current configuration represented by Options struct
func (r *Runner) Options() Options {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.options
}

//Snapshot returns a copy of the current universe content
func (r *Runner) Snapshot() Snapshot {
	r.mu.Lock()
	defer r.mu.Unlock()
	cells := make([]universe.Cell, len(r.u.Cells()))
	copy(cells, r.u.Cells())
	return Snapshot{Width: r.u.Width(), Height: r.u.Height(), Cells: cells}
}

//Render returns the text representation of the universe
func (r *Runner) Render() string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.u.Render()
}

//Templates returns the names of the templates known by the universe
func (r *Runner) Templates() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.u.Templates()
}

//StateCh returns the channel with the status updates
func (r *Runner) StateCh() chan Status {
	return r.stateCh
}

//RegisterViewer registers the viewer - the runner will call the viewer when the state is changed
func (r *Runner) RegisterViewer(v Viewer) {
	r.views = append(r.views, v)
	v.Register(r)
}

//AddTemplate registers the seeding template in the universe
func (r *Runner) AddTemplate(t universe.Template) error {
	return r.exec(func() error {
		return r.u.AddTemplate(t)
	})
}

//SettleTemplate clears the universe and places the named template in the centre
func (r *Runner) SettleTemplate(name string) error {
	return r.restart(func() error {
		return r.u.SetTemplate(name)
	})
}

//StampTemplate places the named template at x, y without clearing the universe
func (r *Runner) StampTemplate(name string, x int, y int, centered bool) error {
	return r.edit(func() error {
		return r.u.StampTemplate(name, x, y, centered)
	})
}

//SettleWithRandomData populates the universe with random data
func (r *Runner) SettleWithRandomData(p float64) error {
	return r.restart(func() error {
		return r.u.SetRandom(p)
	})
}

//SettleDeterministic populates the universe with the reproducible every 2nd/7th pattern
func (r *Runner) SettleDeterministic() error {
	return r.restart(func() error {
		return r.u.SetDeterministic()
	})
}

//InverseCell inverses the cell state at point x, y
func (r *Runner) InverseCell(x int, y int) error {
	return r.edit(func() error {
		return r.u.ToggleCell(x, y)
	})
}

//Resize resizes the universe, all cells become dead
func (r *Runner) Resize(width int, height int) error {
	return r.restart(func() error {
		if err := r.u.Resize(width, height); err != nil {
			return err
		}
		r.options.Width = width
		r.options.Height = height
		return nil
	})
}

//Clear kills all cells and resets all counters
func (r *Runner) Clear() error {
	return r.restart(func() error {
		if err := r.u.SetEmpty(); err != nil {
			return err
		}
		r.endRun()
		r.state.Lock()
		r.state.RunningMode = RunningStateManual
		r.state.Unlock()
		return nil
	})
}

//Run starts the simulation, returns immediately
//the simulation stops on Stop, when the universe is stable or when MaxSteps is reached
func (r *Runner) Run() error {
	return r.exec(r.run)
}

//Stop stops the simulation, returns immediately
func (r *Runner) Stop() error {
	return r.exec(r.stop)
}

//Step does one simulation step and waits for its completion
//the Status struct will be written to the stateCh on start and on finish
func (r *Runner) Step() error {
	err := r.exec(func() error {
		r.step(r.Status().RunningMode)
		return nil
	})
	if err != nil {
		return err
	}
	r.refresh()
	return nil
}

//Close stops the main loop, commands issued after Close fail with ErrClosed
func (r *Runner) Close() {
	r.closeOnce.Do(func() {
		close(r.closeCh)
		r.state.Lock()
		if r.state.RunningMode == RunningStateRun {
			r.state.RunningMode = RunningStateManual
		}
		r.state.Unlock()
	})
}

//exec sends the command to the main loop and waits for the result
func (r *Runner) exec(cmd func() error) error {
	select {
	case <-r.closeCh:
		return ErrClosed
	default:
	}
	done := make(chan error, 1)
	select {
	case r.controlCh <- func() { done <- cmd() }:
	case <-r.closeCh:
		return ErrClosed
	}
	return <-done
}

//edit runs the mutating command, refreshes the counters and the views
func (r *Runner) edit(cmd func() error) error {
	err := r.exec(func() error {
		r.mu.Lock()
		defer r.mu.Unlock()
		return cmd()
	})
	if err != nil {
		r.logger.Warn("edit failed", "error", err)
		return err
	}
	r.updateCounters()
	r.refresh()
	return nil
}

//restart runs the edit replacing the whole content of the universe
//the iteration counter starts from zero again
func (r *Runner) restart(cmd func() error) error {
	return r.edit(func() error {
		if err := cmd(); err != nil {
			return err
		}
		r.state.Lock()
		r.state.IterationNum = 0
		r.state.IterationTime = 0
		r.state.Unlock()
		return nil
	})
}

//mainLoop - the main cycle, should start as a goroutine
//waits for command and executes
func (r *Runner) mainLoop() {
	for {
		select {
		case cmd := <-r.controlCh:
			cmd()
		case <-r.closeCh:
			return
		}
	}
}

//switchRunningState switch the state of the simulation to RunningState
//also writes the new state to the stateCh to signal upper control software
func (r *Runner) switchRunningState(to RunningState) {
	r.state.Lock()
	r.state.RunningMode = to
	st := r.state.Status
	r.state.Unlock()
	if r.stateCh != nil {
		select {
		case r.stateCh <- st:
		case <-r.closeCh:
		}
	}
}

//run starts the ticking goroutine
func (r *Runner) run() error {
	mode := r.Status().RunningMode
	if mode == RunningStateRun {
		return nil
	}
	r.switchRunningState(RunningStateRun)
	r.logger.Info("simulation started", "width", r.options.Width, "height", r.options.Height, "interval", r.options.Interval)
	r.runCh = make(chan struct{})
	go r.tick(r.runCh, r.options.Interval)
	return nil
}

//tick steps the universe every interval until runCh is closed
//every run has its own runCh, a stopped run never wakes up again
func (r *Runner) tick(runCh chan struct{}, interval time.Duration) {
	for {
		stepped := false
		err := r.exec(func() error {
			//Stop may come between two ticks
			select {
			case <-runCh:
				return nil
			default:
			}
			r.step(RunningStateRun)
			stepped = true
			return nil
		})
		if err != nil || !stepped {
			return
		}
		r.refresh()
		select {
		case <-time.After(interval):
		case <-runCh:
			return
		case <-r.closeCh:
			return
		}
	}
}

//endRun releases the ticking goroutine of the current run
func (r *Runner) endRun() {
	if r.runCh != nil {
		close(r.runCh)
		r.runCh = nil
	}
}

//stop stops the running cycle
func (r *Runner) stop() error {
	r.endRun()
	if r.Status().RunningMode == RunningStateRun {
		r.switchRunningState(RunningStateManual)
	}
	return nil
}

//step does the new one state calculation for entire universe
//rm is the mode to return to when the simulation is not finished
func (r *Runner) step(rm RunningState) {
	maxIter := r.options.MaxSteps
	if maxIter != 0 && r.Status().IterationNum >= maxIter {
		r.finish("step limit reached")
		return
	}
	r.switchRunningState(RunningStateStep)

	start := time.Now()
	r.mu.Lock()
	r.u.Tick()
	stable := r.u.Stable()
	live := r.u.LiveCells()
	r.mu.Unlock()

	r.state.Lock()
	r.state.IterationNum++
	r.state.IterationTime = time.Since(start)
	r.state.LiveCells = live
	r.state.Stable = stable
	r.state.Unlock()

	if stable {
		r.finish("universe is stable")
		return
	}
	if maxIter != 0 && r.Status().IterationNum >= maxIter {
		r.finish("step limit reached")
		return
	}
	r.switchRunningState(rm)
}

func (r *Runner) finish(reason string) {
	st := r.Status()
	r.logger.Info("simulation finished", "reason", reason, "iteration", st.IterationNum, "live_cells", st.LiveCells)
	r.endRun()
	r.switchRunningState(RunningStateFinished)
}

//updateCounters reads the universe after an edit
//an edited universe is never stable, a finished simulation can be resumed
func (r *Runner) updateCounters() {
	r.mu.Lock()
	live := r.u.LiveCells()
	stable := r.u.Stable()
	r.mu.Unlock()
	r.state.Lock()
	r.state.LiveCells = live
	r.state.Stable = stable
	if r.state.RunningMode == RunningStateFinished {
		r.state.RunningMode = RunningStateManual
	}
	r.state.Unlock()
}

//refresh calls Refresh event for all registered views
func (r *Runner) refresh() {
	for _, v := range r.views {
		v.Refresh()
	}
}
