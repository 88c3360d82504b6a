package app

import (
	"context"
	"fmt"

	"go.trai.ch/hxt/internal/core/domain"
	"go.trai.ch/hxt/internal/ui/output"
)

// List prints every task by group with its description.
func (a *App) List(_ context.Context) error {
	s, err := a.load()
	if err != nil {
		return err
	}

	width := 0
	for task := range s.build.Graph.Walk() {
		width = max(width, len(task.Name.String()))
	}

	out := output.New(a.stdout)
	first := true
	for _, group := range s.build.Groups {
		if group.Len() == 0 {
			continue
		}
		if !first {
			_, _ = fmt.Fprintln(out)
		}
		first = false
		_, _ = fmt.Fprintln(out, out.String(group.Name()).Bold())
		for _, task := range group.Tasks() {
			desc := task.Description
			if task.Policy == domain.PolicyAlwaysRun {
				desc += " " + out.String("(always runs)").Faint().String()
			}
			_, _ = fmt.Fprintf(out, "  %-*s  %s\n", width, task.Name, desc)
		}
	}
	return nil
}
