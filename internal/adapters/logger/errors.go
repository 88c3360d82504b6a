package logger

import (
	"errors"
	"fmt"
	"maps"
	"slices"
	"strings"

	"go.trai.ch/hxt/internal/ui/style"
)

// messager is an error that can report its own message without the chain,
// as zerr.Error does.
type messager interface {
	Message() string
}

type metadataer interface {
	Metadata() map[string]any
}

type errorEntry struct {
	message  string
	metadata map[string]any
}

// collectErrorEntries flattens the cause chain. Links without a message only
// carry metadata; it is attached to the next link that has one.
func collectErrorEntries(err error) []errorEntry {
	var (
		entries []errorEntry
		pending map[string]any
	)
	for current := err; current != nil; {
		m, ok := current.(messager)
		if !ok {
			entries = append(entries, errorEntry{message: current.Error(), metadata: pending})
			break
		}

		var meta map[string]any
		if md, ok := current.(metadataer); ok {
			meta = md.Metadata()
		}
		if m.Message() == "" {
			if len(meta) > 0 {
				if pending == nil {
					pending = make(map[string]any, len(meta))
				}
				maps.Copy(pending, meta)
			}
			current = errors.Unwrap(current)
			continue
		}

		if pending != nil {
			merged := maps.Clone(pending)
			maps.Copy(merged, meta)
			meta = merged
			pending = nil
		}
		entries = append(entries, errorEntry{message: m.Message(), metadata: meta})
		current = errors.Unwrap(current)
	}
	return entries
}

// formatErrorEntries renders the chain as a headline followed by its causes.
func formatErrorEntries(entries []errorEntry) string {
	var lines []string
	for i, e := range entries {
		msgLines := strings.Split(e.message, "\n")
		indent := "      "
		if i == 0 {
			lines = append(lines, "Error: "+msgLines[0])
			indent = "       "
		} else {
			if i == 1 {
				lines = append(lines, "", "  Caused by:")
			}
			lines = append(lines, "    "+style.Arrow+" "+msgLines[0])
		}
		for _, line := range msgLines[1:] {
			lines = append(lines, indent+line)
		}
		if len(e.metadata) > 0 {
			pairs := make([]string, 0, len(e.metadata))
			for _, k := range sortedKeys(e.metadata) {
				pairs = append(pairs, fmt.Sprintf("%s=%v", k, e.metadata[k]))
			}
			lines = append(lines, indent+strings.Join(pairs, " "))
		}
	}
	return strings.Join(lines, "\n")
}

func sortedKeys(m map[string]any) []string {
	return slices.Sorted(maps.Keys(m))
}
