package simulation

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"toruslife/src/universe"
)

func newTestRunner(t *testing.T, w, h int, gen universe.Generator, stateCh chan Status) *Runner {
	t.Helper()
	u, err := universe.New(w, h, gen)
	require.NoError(t, err)
	o := DefaultOptions
	o.Interval = 0
	r := NewRunner(u, &o, stateCh, nil)
	t.Cleanup(r.Close)
	return r
}

//waitFinished drains the state channel until the simulation reports finished
func waitFinished(t *testing.T, stateCh chan Status) Status {
	t.Helper()
	timeout := time.After(5 * time.Second)
	for {
		select {
		case st := <-stateCh:
			if st.RunningMode == RunningStateFinished {
				return st
			}
		case <-timeout:
			t.Fatal("simulation did not finish")
		}
	}
}

type countingViewer struct {
	mu        sync.Mutex
	refreshes int
	r         *Runner
}

func (v *countingViewer) Refresh() {
	v.mu.Lock()
	v.refreshes++
	v.mu.Unlock()
}

func (v *countingViewer) Register(r *Runner) { v.r = r }

func (v *countingViewer) Start() {}

func (v *countingViewer) count() int {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.refreshes
}

func TestRunner_Step(t *testing.T) {
	r := newTestRunner(t, 6, 6, universe.Empty, nil)
	require.NoError(t, r.SettleTemplate(universe.TemplateGlider))
	assert.Equal(t, 5, r.Status().LiveCells)

	require.NoError(t, r.Step())
	st := r.Status()
	assert.Equal(t, 1, st.IterationNum)
	assert.Equal(t, RunningStateManual, st.RunningMode)
	assert.Equal(t, 5, st.LiveCells)
	assert.False(t, st.Stable)
}

func TestRunner_RunFinishesWhenStable(t *testing.T) {
	stateCh := make(chan Status, 10)
	r := newTestRunner(t, 8, 8, universe.Empty, stateCh)
	require.NoError(t, r.InverseCell(2, 2))
	require.NoError(t, r.InverseCell(3, 2))
	require.NoError(t, r.InverseCell(2, 3))

	require.NoError(t, r.Run())
	st := waitFinished(t, stateCh)

	//the L tromino becomes a block and the block is still
	assert.True(t, st.Stable)
	assert.Equal(t, 2, st.IterationNum)
	assert.Equal(t, 4, st.LiveCells)
}

func TestRunner_RunStopsAtMaxSteps(t *testing.T) {
	stateCh := make(chan Status, 10)
	u, err := universe.New(8, 8, universe.Empty)
	require.NoError(t, err)
	o := Options{MaxSteps: 5}
	r := NewRunner(u, &o, stateCh, nil)
	defer r.Close()
	require.NoError(t, r.SettleTemplate(universe.TemplateGlider))

	require.NoError(t, r.Run())
	st := waitFinished(t, stateCh)
	assert.Equal(t, 5, st.IterationNum)
	assert.False(t, st.Stable)

	//further steps do not advance past the limit
	require.NoError(t, r.Step())
	assert.Equal(t, 5, r.Status().IterationNum)
}

func TestRunner_EditsResumeFinished(t *testing.T) {
	stateCh := make(chan Status, 10)
	r := newTestRunner(t, 4, 4, universe.Empty, stateCh)
	require.NoError(t, r.Run())
	st := waitFinished(t, stateCh)
	require.True(t, st.Stable)

	require.NoError(t, r.InverseCell(1, 1))
	st = r.Status()
	assert.False(t, st.Stable)
	assert.Equal(t, RunningStateManual, st.RunningMode)
	assert.Equal(t, 1, st.LiveCells)
}

func TestRunner_ReseedRestartsFinishedAtMaxSteps(t *testing.T) {
	u, err := universe.New(8, 8, universe.Empty)
	require.NoError(t, err)
	u.SetSource(universe.NewSeededSource(5))
	o := Options{MaxSteps: 3}
	r := NewRunner(u, &o, nil, nil)
	defer r.Close()
	require.NoError(t, r.SettleTemplate(universe.TemplateGlider))

	for i := 0; i < 3; i++ {
		require.NoError(t, r.Step())
	}
	require.Equal(t, RunningStateFinished, r.Status().RunningMode)
	require.Equal(t, 3, r.Status().IterationNum)

	require.NoError(t, r.SettleWithRandomData(0.5))
	st := r.Status()
	assert.Equal(t, RunningStateManual, st.RunningMode)
	assert.Zero(t, st.IterationNum)
	assert.Zero(t, st.IterationTime)

	require.NoError(t, r.Step())
	assert.Equal(t, 1, r.Status().IterationNum)

	for _, reseed := range []func() error{
		r.SettleDeterministic,
		func() error { return r.SettleTemplate(universe.TemplatePulsar) },
		func() error { return r.Resize(10, 10) },
	} {
		require.NoError(t, r.Step())
		require.NoError(t, reseed())
		assert.Zero(t, r.Status().IterationNum)
	}
}

func TestRunner_Clear(t *testing.T) {
	r := newTestRunner(t, 5, 5, universe.Deterministic, nil)
	require.NoError(t, r.Step())
	require.NoError(t, r.Clear())

	st := r.Status()
	assert.Zero(t, st.IterationNum)
	assert.Zero(t, st.LiveCells)
	assert.NotContains(t, r.Snapshot().Cells, universe.Alive)
}

func TestRunner_Resize(t *testing.T) {
	r := newTestRunner(t, 5, 5, universe.Deterministic, nil)
	require.NoError(t, r.Resize(9, 4))
	o := r.Options()
	assert.Equal(t, 9, o.Width)
	assert.Equal(t, 4, o.Height)
	s := r.Snapshot()
	assert.Equal(t, 9, s.Width)
	assert.Len(t, s.Cells, 36)

	err := r.Resize(0, 4)
	assert.ErrorIs(t, err, universe.ErrInvalidDimensions)
	assert.Equal(t, 9, r.Options().Width)
}

func TestRunner_InverseCellOutOfRange(t *testing.T) {
	r := newTestRunner(t, 5, 5, universe.Empty, nil)
	err := r.InverseCell(5, 0)
	assert.ErrorIs(t, err, universe.ErrOutOfRange)
}

func TestRunner_StampAndSnapshot(t *testing.T) {
	r := newTestRunner(t, 5, 5, universe.Empty, nil)
	require.NoError(t, r.StampTemplate(universe.TemplateStable, 1, 2, false))
	s := r.Snapshot()
	assert.Equal(t, universe.Alive, s.At(1, 2))
	assert.Equal(t, universe.Alive, s.At(3, 2))
	assert.Equal(t, universe.Dead, s.At(4, 2))
	assert.Equal(t, 3, r.Status().LiveCells)

	err := r.StampTemplate("missing", 0, 0, false)
	assert.ErrorIs(t, err, universe.ErrUnknownTemplate)
}

func TestRunner_AddTemplate(t *testing.T) {
	r := newTestRunner(t, 6, 6, universe.Empty, nil)
	block, err := universe.NewTemplate("block", "", "OO\nOO")
	require.NoError(t, err)
	require.NoError(t, r.AddTemplate(block))
	assert.Contains(t, r.Templates(), "block")
	require.NoError(t, r.SettleTemplate("block"))
	assert.Equal(t, 4, r.Status().LiveCells)
}

func TestRunner_SettleSeeds(t *testing.T) {
	u, err := universe.New(10, 10, universe.Empty)
	require.NoError(t, err)
	u.SetSource(universe.NewSeededSource(11))
	r := NewRunner(u, nil, nil, nil)
	defer r.Close()

	require.NoError(t, r.SettleDeterministic())
	assert.Equal(t, universe.Alive, r.Snapshot().At(0, 0))
	assert.Equal(t, universe.Dead, r.Snapshot().At(1, 0))

	require.NoError(t, r.SettleWithRandomData(1))
	assert.Equal(t, 100, r.Status().LiveCells)

	err = r.SettleWithRandomData(2)
	assert.ErrorIs(t, err, universe.ErrInvalidProbability)
	assert.Equal(t, 100, r.Status().LiveCells)
}

func TestRunner_StopHaltsRun(t *testing.T) {
	u, err := universe.New(20, 20, universe.Empty)
	require.NoError(t, err)
	o := Options{Interval: time.Millisecond}
	r := NewRunner(u, &o, nil, nil)
	defer r.Close()
	require.NoError(t, r.SettleTemplate(universe.TemplatePulsar))

	require.NoError(t, r.Run())
	time.Sleep(20 * time.Millisecond)
	require.NoError(t, r.Stop())
	st := r.Status()
	assert.Equal(t, RunningStateManual, st.RunningMode)

	time.Sleep(20 * time.Millisecond)
	assert.Equal(t, st.IterationNum, r.Status().IterationNum)
}

func TestRunner_StopThenRunKeepsOneTicker(t *testing.T) {
	u, err := universe.New(20, 20, universe.Empty)
	require.NoError(t, err)
	o := Options{Interval: 40 * time.Millisecond}
	r := NewRunner(u, &o, nil, nil)
	defer r.Close()
	require.NoError(t, r.SettleTemplate(universe.TemplatePulsar))

	//restart the run while the first ticker is waiting for its interval
	require.NoError(t, r.Run())
	time.Sleep(5 * time.Millisecond)
	require.NoError(t, r.Stop())
	require.NoError(t, r.Run())
	start := r.Status().IterationNum

	time.Sleep(400 * time.Millisecond)
	require.NoError(t, r.Stop())
	done := r.Status().IterationNum - start

	//a single ticker makes about 10 steps, two of them about 20
	assert.Greater(t, done, 3)
	assert.LessOrEqual(t, done, 14)
}

func TestRunner_ViewersAreRefreshed(t *testing.T) {
	r := newTestRunner(t, 5, 5, universe.Empty, nil)
	v := &countingViewer{}
	r.RegisterViewer(v)
	assert.Same(t, r, v.r)

	require.NoError(t, r.InverseCell(0, 0))
	require.NoError(t, r.Step())
	assert.Equal(t, 2, v.count())
}

func TestRunner_Closed(t *testing.T) {
	u, err := universe.New(3, 3, universe.Empty)
	require.NoError(t, err)
	r := NewRunner(u, nil, nil, nil)
	r.Close()
	r.Close()
	assert.ErrorIs(t, r.Step(), ErrClosed)
	assert.ErrorIs(t, r.InverseCell(0, 0), ErrClosed)
	assert.ErrorIs(t, r.Run(), ErrClosed)
}

func TestRunner_Render(t *testing.T) {
	r := newTestRunner(t, 2, 1, universe.Empty, nil)
	require.NoError(t, r.InverseCell(1, 0))
	assert.Equal(t, "◻◼", r.Render())
}

func BenchmarkRunner_Run(b *testing.B) {
	for i := 0; i < b.N; i++ {
		b.StopTimer()
		u, _ := universe.New(200, 200, universe.Deterministic)
		stateCh := make(chan Status, 10)
		o := Options{MaxSteps: 50}
		r := NewRunner(u, &o, stateCh, nil)
		b.StartTimer()
		_ = r.Run()
		for st := range stateCh {
			if st.RunningMode == RunningStateFinished {
				break
			}
		}
		r.Close()
	}
}
