package logger

// White-box access to the error formatting.
var (
	CollectErrorEntries = collectErrorEntries
	FormatErrorEntries  = formatErrorEntries
)

// Entry exposes an errorEntry's fields.
func Entry(e errorEntry) (string, map[string]any) {
	return e.message, e.metadata
}
