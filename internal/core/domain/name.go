package domain

import (
	"regexp"
	"strings"
	"unicode"

	"go.trai.ch/zerr"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

var taskNamePattern = regexp.MustCompile(`^[a-zA-Z][a-zA-Z0-9_-]*$`)

// ValidateTaskName checks name against the task name grammar.
func ValidateTaskName(name string) error {
	if !taskNamePattern.MatchString(name) {
		return zerr.With(zerr.Wrap(ErrInvalidTaskName, "task name rejected"), "task_name", name)
	}
	return nil
}

// TaskName builds a camel-cased task name from parts and validates it.
// Every part is split on characters that are not letters or digits, so
// TaskName("zipLambda", "post_cron-webhook") is "zipLambdaPostCronWebhook".
// It is the only place derived task names are produced.
func TaskName(parts ...string) (string, error) {
	title := cases.Title(language.Und, cases.NoLower)
	var b strings.Builder
	for _, part := range parts {
		words := strings.FieldsFunc(part, func(r rune) bool {
			return !unicode.IsLetter(r) && !unicode.IsDigit(r)
		})
		for _, w := range words {
			if b.Len() == 0 {
				b.WriteString(lowerFirst(w))
				continue
			}
			b.WriteString(title.String(w))
		}
	}
	name := b.String()
	if err := ValidateTaskName(name); err != nil {
		return "", zerr.With(err, "parts", strings.Join(parts, ","))
	}
	return name, nil
}

func lowerFirst(s string) string {
	for i, r := range s {
		return string(unicode.ToLower(r)) + s[i+len(string(r)):]
	}
	return s
}
