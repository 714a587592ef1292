package logging

import (
	"strings"

	"github.com/goliatone/go-markdown/pkg/interfaces"
)

// WithFields attaches the non-blank fields to logger if it implements
// interfaces.FieldsLogger. Nil values and whitespace-only strings are skipped,
// and the logger is returned as-is when nothing remains.
func WithFields(logger interfaces.Logger, fields map[string]any) interfaces.Logger {
	if logger == nil {
		return logger
	}
	fieldsLogger, ok := logger.(interfaces.FieldsLogger)
	if !ok {
		return logger
	}

	kept := make(map[string]any, len(fields))
	for key, value := range fields {
		switch v := value.(type) {
		case nil:
			continue
		case string:
			if v = strings.TrimSpace(v); v == "" {
				continue
			}
			value = v
		}
		kept[key] = value
	}
	if len(kept) == 0 {
		return logger
	}
	return fieldsLogger.WithFields(kept)
}
