package domain

import "time"

// Stamp is the recorded state of one tracked file after a successful run.
type Stamp struct {
	ModTime int64  `json:"mtime,omitzero"`
	Hash    string `json:"hash,omitzero"`
}

// BuildInfo is what the store remembers about a task's last successful execution.
// It lets tasks without targets decide staleness from their file dependencies.
type BuildInfo struct {
	TaskName  string           `json:"task_name,omitzero"`
	Stamps    map[string]Stamp `json:"stamps,omitzero"`
	Timestamp time.Time        `json:"timestamp,omitzero"`
}
