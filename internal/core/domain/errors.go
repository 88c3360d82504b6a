package domain

import "go.trai.ch/zerr"

var (
	// ErrConfiguration is returned when required configuration or task arguments are absent or invalid.
	ErrConfiguration = zerr.New("configuration error")

	// ErrMissingDependency is returned when a task references a file or task that does not exist
	// and that no registered task produces.
	ErrMissingDependency = zerr.New("missing dependency")

	// ErrDuplicateTaskName is returned when two tasks in a group or registry share a name.
	ErrDuplicateTaskName = zerr.New("duplicate task name")

	// ErrDuplicateTarget is returned when two tasks declare the same target file.
	ErrDuplicateTarget = zerr.New("target produced by more than one task")

	// ErrInvalidTaskName is returned when a task name does not match the name grammar.
	ErrInvalidTaskName = zerr.New("invalid task name")

	// ErrCycleDetected is returned when a cycle is detected in the task dependency graph.
	ErrCycleDetected = zerr.New("cycle detected")

	// ErrTaskNotFound is returned when a requested task is not found in the graph.
	ErrTaskNotFound = zerr.New("task not found")

	// ErrNoTargetsSpecified is returned when no tasks are requested.
	ErrNoTargetsSpecified = zerr.New("no targets specified")

	// ErrExternalToolFailure is returned when an external command exits with a non-zero status.
	ErrExternalToolFailure = zerr.New("external tool failed")

	// ErrTaskExecutionFailed is returned when a task's action fails.
	ErrTaskExecutionFailed = zerr.New("task execution failed")

	// ErrPlanMissing is returned when apply is requested without a plan artifact.
	ErrPlanMissing = zerr.New("no plan file found - run 'plan' first")

	// ErrPlanExpired is returned when the plan artifact is older than the validity window.
	ErrPlanExpired = zerr.New("plan file has expired - run 'plan' again")

	// ErrUserAborted is returned when the operator declines a confirmation prompt.
	ErrUserAborted = zerr.New("aborted by user")

	// ErrUnknownAction is returned when the executor receives an action it cannot interpret.
	ErrUnknownAction = zerr.New("unknown action")
)

var (
	// ErrStoreReadFailed is returned when reading a build info file fails.
	ErrStoreReadFailed = zerr.New("failed to read build info")

	// ErrStoreWriteFailed is returned when writing a build info file fails.
	ErrStoreWriteFailed = zerr.New("failed to write build info")

	// ErrStoreUnmarshalFailed is returned when a build info file is corrupt.
	ErrStoreUnmarshalFailed = zerr.New("failed to unmarshal build info")

	// ErrStoreMarshalFailed is returned when build info cannot be encoded.
	ErrStoreMarshalFailed = zerr.New("failed to marshal build info")

	// ErrStoreCreateFailed is returned when the store directory cannot be created.
	ErrStoreCreateFailed = zerr.New("failed to create store directory")

	// ErrConfigReadFailed is returned when the configuration file cannot be read.
	ErrConfigReadFailed = zerr.New("failed to read config file")

	// ErrConfigParseFailed is returned when the configuration file is not valid YAML.
	ErrConfigParseFailed = zerr.New("failed to parse config file")

	// ErrArchiveFailed is returned when creating or extracting a zip archive fails.
	ErrArchiveFailed = zerr.New("archive operation failed")

	// ErrDownloadFailed is returned when fetching a remote artifact fails.
	ErrDownloadFailed = zerr.New("download failed")

	// ErrManifestInvalid is returned when a generated manifest is not a JSON array of entries.
	ErrManifestInvalid = zerr.New("invalid manifest")

	// ErrHCLInvalid is returned when terraform sources fail to parse.
	ErrHCLInvalid = zerr.New("invalid terraform configuration")
)

// TaskError reports the task whose action failed. It matches ErrTaskExecutionFailed
// and unwraps to the cause.
type TaskError struct {
	Task string
	Err  error
}

func (e *TaskError) Error() string { return e.Message() + ": " + e.Err.Error() }

// Message returns the headline without the cause.
func (e *TaskError) Message() string { return "task " + e.Task + " failed" }

// Metadata names the failed task.
func (e *TaskError) Metadata() map[string]any { return map[string]any{"task": e.Task} }

func (e *TaskError) Unwrap() error { return e.Err }

// Is reports whether target is ErrTaskExecutionFailed.
func (e *TaskError) Is(target error) bool { return target == ErrTaskExecutionFailed }
