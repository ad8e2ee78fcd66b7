package view

import (
	"bytes"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/jroimartin/gocui"
	"github.com/logrusorgru/aurora"

	"toruslife/src/simulation"
	"toruslife/src/universe"
)

type keyBindings struct {
	key      interface{}
	name     string
	descr    string
	handler  func(v *gocui.View) error
	viewName string
}

//ConsoleUI is the interactive terminal viewer
type ConsoleUI struct {
	r          *simulation.Runner
	g          *gocui.Gui
	k          []keyBindings
	logger     *slog.Logger
	liveFiller string
	deadFiller string
	//probability used by the random seeding key
	probability float64
	//last command error shown in the status view
	mu      sync.Mutex
	lastErr error
}

//resizeStep is the number of cells added or removed by the resize keys
const resizeStep = 8

var (
	runningStateDescr = map[simulation.RunningState]string{
		simulation.RunningStateManual:   aurora.Colorize("waiting", aurora.BlueFg).String(),
		simulation.RunningStateStep:     "do the step",
		simulation.RunningStateRun:      aurora.Colorize("running", aurora.CyanFg).String(),
		simulation.RunningStateFinished: aurora.Colorize("finished", aurora.RedFg).String(),
	}
)

//NewViewTerminal creates the terminal UI, probability is used by the random seeding key
func NewViewTerminal(probability float64, logger *slog.Logger) (*ConsoleUI, error) {
	t := ConsoleUI{
		liveFiller:  aurora.Green("█").BgBrightGreen().String(),
		deadFiller:  "░",
		probability: probability,
		logger:      logger,
	}

	g, err := gocui.NewGui(gocui.OutputNormal)
	if err != nil {
		return nil, fmt.Errorf("terminal UI: %w", err)
	}
	t.g = g
	t.g.Mouse = true
	t.k = []keyBindings{
		{gocui.KeyCtrlC, "^C", "Exit", t.cmdQuit, ""},
		{'n', "N", "Next step", t.cmdNextRound, ""},
		{'r', "R", "Run", t.cmdRun, ""},
		{'s', "S", "Stop", t.cmdStop, ""},
		{'c', "C", "Clear", t.cmdClear, ""},
		{'w', "W", "Random", t.cmdSettleWithRandom, ""},
		{'d', "D", "Deterministic", t.cmdSettleDeterministic, ""},
		{'g', "G", "Glider", t.cmdTemplate(universe.TemplateGlider), ""},
		{'l', "L", "Loafer", t.cmdTemplate(universe.TemplateLoafer), ""},
		{'p', "P", "Pulsar", t.cmdTemplate(universe.TemplatePulsar), ""},
		{'b', "B", "Bar", t.cmdTemplate(universe.TemplateStable), ""},
		{'+', "+", "Grow", t.cmdResize(resizeStep), ""},
		{'-', "-", "Shrink", t.cmdResize(-resizeStep), ""},
		{gocui.MouseLeft, "MOUSE", "Toggle the cell", t.cmdMouseClick, "battlefield"},
	}
	t.g.SetManagerFunc(t.layout)

	if err := t.initKeyBindings(t.k); err != nil {
		t.g.Close()
		return nil, err
	}
	return &t, nil
}

func (t *ConsoleUI) initKeyBindings(k []keyBindings) error {
	for _, kb := range k {
		h := kb.handler
		if err := t.g.SetKeybinding(kb.viewName, kb.key, gocui.ModNone, func(gui *gocui.Gui, view *gocui.View) error { return h(view) }); err != nil {
			return fmt.Errorf("key binding %s: %w", kb.name, err)
		}
	}
	return nil
}

func (t *ConsoleUI) Register(r *simulation.Runner) {
	t.r = r
}

//Start runs the terminal main loop until the user quits
func (t *ConsoleUI) Start() {
	if err := t.g.MainLoop(); err != nil && err != gocui.ErrQuit {
		t.logger.Error("terminal UI failed", "error", err)
	}
	t.g.Close()
}

func (t *ConsoleUI) Refresh() {
	t.renderField(t.r.Snapshot())
	t.renderConfiguration()
	t.renderStatus()
}

func (t *ConsoleUI) renderField(s simulation.Snapshot) {
	t.g.Update(func(g *gocui.Gui) error {
		v, e := g.View("battlefield")
		if e != nil {
			return e
		}
		//the entire field is redrawing at once
		v.Clear()
		_, _ = fmt.Fprint(v, t.fieldText(s, v))
		return nil
	})
}

func (t *ConsoleUI) fieldText(s simulation.Snapshot, v *gocui.View) string {
	maxW, maxH := v.Size()
	crop := s.Width > maxW || s.Height > maxH

	var b bytes.Buffer
	for y := 0; y < s.Height; y++ {
		//discard the data outside the view area
		if y >= maxH {
			break
		}
		if y != 0 {
			b.WriteByte('\n')
		}
		if crop && y == (maxH-1) {
			b.WriteString(aurora.Red("The field size is larger than the viewing area").BgBlack().String())
			break
		}
		for x := 0; x < s.Width && x < maxW; x++ {
			if s.At(x, y) == universe.Alive {
				b.WriteString(t.liveFiller)
			} else {
				b.WriteString(t.deadFiller)
			}
		}
	}
	return b.String()
}

func (t *ConsoleUI) renderStatus() {
	s := t.r.Status()
	t.mu.Lock()
	lastErr := t.lastErr
	t.mu.Unlock()
	t.g.Update(func(g *gocui.Gui) error {
		if v, e := g.View("status"); e == nil {
			v.Clear()
			_, _ = fmt.Fprintln(v, t.renderProp("Step", "%v", s.IterationNum))
			_, _ = fmt.Fprintln(v, t.renderProp("Live Cells", "%v", s.LiveCells))
			_, _ = fmt.Fprintln(v, t.renderProp("Stable", "%v", s.Stable))
			_, _ = fmt.Fprintln(v, t.renderProp("Evaluation time", "%v", s.IterationTime.Round(time.Microsecond)))
			_, _ = fmt.Fprintln(v, t.renderProp("Mode", "%v", runningStateDescr[s.RunningMode]))
			if lastErr != nil {
				_, _ = fmt.Fprintln(v, " "+aurora.Red(lastErr.Error()).String())
			}
		}
		return nil
	})
}

func (t *ConsoleUI) renderConfiguration() {
	//it needs to call Update when calls from goroutine
	c := t.r.Options()
	t.g.Update(func(g *gocui.Gui) error {
		if v, e := g.View("configuration"); e == nil {
			v.Clear()
			_, _ = fmt.Fprintln(v, t.renderProp("Dimension", "%v x %v", c.Width, c.Height))
			_, _ = fmt.Fprintln(v, t.renderProp("Interval", "%v", c.Interval))
			_, _ = fmt.Fprintln(v, t.renderProp("Iterations", "%v steps", c.MaxSteps))
			_, _ = fmt.Fprintln(v, t.renderProp("Random", "%v", t.probability))
		}
		return nil
	})
}

func (t *ConsoleUI) renderProp(name string, valueformat string, values ...interface{}) string {
	return fmt.Sprintf(" "+aurora.Colorize(name, aurora.GreenFg).String()+": "+valueformat, values...)
}

func (t *ConsoleUI) layout(g *gocui.Gui) error {
	maxX, maxY := g.Size()
	leftColumnWidth := 28
	minWindowHeight := 20

	if maxY < minWindowHeight {
		if _, err := t.headerLayout(g, maxY, "Terminal height too small"); err != nil {
			if err != gocui.ErrUnknownView {
				return err
			}
		}
		_ = g.DeleteView("configuration")
		_ = g.DeleteView("status")
		_ = g.DeleteView("battlefield")
		return nil
	}
	if _, err := t.headerLayout(g, 3, "This is \"The Life\" game on a torus"); err != nil {
		if err != gocui.ErrUnknownView {
			return err
		}
	}

	if v, err := g.SetView("configuration", 0, 3, leftColumnWidth, 3+(maxY-5-3)/2); err != nil {
		if err != gocui.ErrUnknownView || v == nil {
			return err
		}
		v.Title = "Configuration"
		v.Frame = true
		t.renderConfiguration()
	}

	if v, err := g.SetView("status", 0, 3+(maxY-5-3)/2+1, leftColumnWidth, maxY-5); err != nil {
		if err != gocui.ErrUnknownView || v == nil {
			return err
		}
		v.Title = "Status"
		v.Frame = true
		t.renderStatus()
	}

	if v, err := g.SetView("battlefield", leftColumnWidth+1, 3, maxX-1, maxY-5); err != nil {
		if err != gocui.ErrUnknownView || v == nil {
			return err
		}
		v.Title = "Battle Field"
		v.Frame = true
	}
	t.renderField(t.r.Snapshot())

	if v, err := g.SetView("help", -1, maxY-5, maxX, maxY-3); err != nil {
		if err != gocui.ErrUnknownView || v == nil {
			return err
		}
		v.Frame = false
		v.Wrap = true
		b := bytes.Buffer{}
		b.WriteString("KEYBINDINGS: ")
		for i, k := range t.k {
			if i != 0 {
				b.WriteString(", ")
			}
			b.WriteString(aurora.Green(k.name).String())
			b.WriteString(": ")
			b.WriteString(k.descr)
		}
		_, _ = fmt.Fprintln(v, b.String())
	}

	return nil
}

func (t *ConsoleUI) headerLayout(g *gocui.Gui, height int, text string) (v *gocui.View, err error) {
	maxX, _ := g.Size()
	if v, err = g.SetView("header", -1, -1, maxX+1, height); err != nil {
		if err == gocui.ErrUnknownView && v != nil {
			v.Frame = false
			v.BgColor = gocui.ColorCyan
			v.FgColor = gocui.ColorBlack
		}
	}
	if v != nil {
		v.Clear()
		pad := 0
		if maxX > len(text) {
			pad = (maxX - len(text)) / 2
		}
		_, _ = fmt.Fprintln(v, strings.Repeat("\n", height/2+1)+strings.Repeat(" ", pad)+text)
	}
	return
}

//report keeps the command error for the status view, the UI keeps running
func (t *ConsoleUI) report(err error) error {
	t.mu.Lock()
	t.lastErr = err
	t.mu.Unlock()
	if err != nil {
		t.logger.Warn("command failed", "error", err)
	}
	t.renderStatus()
	return nil
}

func (t *ConsoleUI) cmdQuit(_ *gocui.View) error {
	return gocui.ErrQuit
}

func (t *ConsoleUI) cmdNextRound(_ *gocui.View) error {
	return t.report(t.r.Step())
}

func (t *ConsoleUI) cmdRun(_ *gocui.View) error {
	return t.report(t.r.Run())
}

func (t *ConsoleUI) cmdStop(_ *gocui.View) error {
	return t.report(t.r.Stop())
}

func (t *ConsoleUI) cmdClear(_ *gocui.View) error {
	return t.report(t.r.Clear())
}

func (t *ConsoleUI) cmdSettleWithRandom(_ *gocui.View) error {
	return t.report(t.r.SettleWithRandomData(t.probability))
}

func (t *ConsoleUI) cmdSettleDeterministic(_ *gocui.View) error {
	return t.report(t.r.SettleDeterministic())
}

func (t *ConsoleUI) cmdTemplate(name string) func(v *gocui.View) error {
	return func(_ *gocui.View) error {
		return t.report(t.r.SettleTemplate(name))
	}
}

func (t *ConsoleUI) cmdResize(delta int) func(v *gocui.View) error {
	return func(_ *gocui.View) error {
		o := t.r.Options()
		return t.report(t.r.Resize(o.Width+delta, o.Height+delta/2))
	}
}

func (t *ConsoleUI) cmdMouseClick(v *gocui.View) error {
	cx, cy := v.Cursor()
	return t.report(t.r.InverseCell(cx, cy))
}
