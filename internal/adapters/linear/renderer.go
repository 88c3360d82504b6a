// Package linear renders task progress as one line per event.
package linear

import (
	"fmt"
	"io"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/muesli/termenv"
	"go.trai.ch/hxt/internal/core/ports"
	"go.trai.ch/hxt/internal/ui/output"
	"go.trai.ch/hxt/internal/ui/style"
)

var _ ports.Renderer = (*Renderer)(nil)

// Renderer implements ports.Renderer for terminals and CI logs alike.
type Renderer struct {
	w   io.Writer
	out *termenv.Output

	mu    sync.Mutex
	tasks map[string]*taskState
}

type taskState struct {
	name      string
	startTime time.Time
	skipped   bool
}

// NewRenderer creates a Renderer writing to w, defaulting to stderr.
func NewRenderer(w io.Writer) *Renderer {
	if w == nil {
		w = os.Stderr
	}
	return &Renderer{
		w:     w,
		out:   output.New(w),
		tasks: make(map[string]*taskState),
	}
}

// OnPlanEmit prints the planned tasks.
func (r *Renderer) OnPlanEmit(tasks []string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	_, _ = fmt.Fprintf(r.w, "Planning %d task(s): %s\n", len(tasks), strings.Join(tasks, ", "))
}

// OnTaskStart prints a start line, or an up-to-date line for skipped tasks.
func (r *Renderer) OnTaskStart(spanID, name string, startTime time.Time, skipped bool) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.tasks[spanID] = &taskState{name: name, startTime: startTime, skipped: skipped}
	prefix := r.out.String("[" + name + "]").Foreground(r.out.Color(string(style.Iris))).String()
	if skipped {
		symbol := r.out.String(style.Skip).Foreground(r.out.Color(string(style.Slate))).String()
		_, _ = fmt.Fprintf(r.w, "%s %s Up to date\n", prefix, symbol)
		return
	}
	_, _ = fmt.Fprintf(r.w, "%s Starting...\n", prefix)
}

// OnTaskComplete prints the outcome and duration of a task.
func (r *Renderer) OnTaskComplete(spanID string, endTime time.Time, err error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	task, ok := r.tasks[spanID]
	if !ok {
		return
	}
	delete(r.tasks, spanID)
	if task.skipped && err == nil {
		return
	}

	prefix := r.out.String("[" + task.name + "]").Foreground(r.out.Color(string(style.Iris))).String()
	duration := endTime.Sub(task.startTime).Round(time.Millisecond)
	if err != nil {
		symbol := r.out.String(style.Cross).Foreground(r.out.Color(string(style.Red))).String()
		_, _ = fmt.Fprintf(r.w, "%s %s Failed after %v: %v\n", prefix, symbol, duration, err)
		return
	}
	symbol := r.out.String(style.Check).Foreground(r.out.Color(string(style.Green))).String()
	_, _ = fmt.Fprintf(r.w, "%s %s Completed in %v\n", prefix, symbol, duration)
}
