package cinescroll

import (
	"fmt"
	"slices"
	"sort"
	"time"
)

// Profiler keeps the CPU time of named scopes for the most recent frame, plus
// free-form counters. Scopes keep their first-seen order for display.
type Profiler struct {
	scopes map[string]time.Duration
	starts map[string]time.Time
	counts map[string]int
	order  []string
	now    func() time.Time
}

func NewProfiler() *Profiler {
	return &Profiler{
		scopes: make(map[string]time.Duration),
		starts: make(map[string]time.Time),
		counts: make(map[string]int),
		now:    time.Now,
	}
}

func (p *Profiler) BeginScope(name string) {
	p.starts[name] = p.now()
	if !slices.Contains(p.order, name) {
		p.order = append(p.order, name)
	}
}

func (p *Profiler) EndScope(name string) {
	if start, ok := p.starts[name]; ok {
		p.scopes[name] = p.now().Sub(start)
		delete(p.starts, name)
	}
}

func (p *Profiler) Scope(name string) time.Duration { return p.scopes[name] }

func (p *Profiler) SetCount(name string, count int) {
	p.counts[name] = count
}

func (p *Profiler) Count(name string) int { return p.counts[name] }

// Reset zeroes the timings but keeps the scope order.
func (p *Profiler) Reset() {
	for k := range p.scopes {
		p.scopes[k] = 0
	}
}

// Lines formats timings in scope order followed by counters sorted by name.
func (p *Profiler) Lines() []string {
	lines := make([]string, 0, len(p.order)+len(p.counts))
	for _, name := range p.order {
		ms := float64(p.scopes[name].Microseconds()) / 1000.0
		lines = append(lines, fmt.Sprintf("%-10s %.2fms", name, ms))
	}

	keys := make([]string, 0, len(p.counts))
	for k := range p.counts {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		lines = append(lines, fmt.Sprintf("%-10s %d", k, p.counts[k]))
	}
	return lines
}

type ProfilerModule struct{}

func (ProfilerModule) Install(app *App, cmd *Commands) {
	ensureResource(app, NewProfiler)
	cmd.UseSystem(System(profilerResetSystem).InStage(Prelude))
}

func profilerResetSystem(p *Profiler) {
	p.Reset()
}
