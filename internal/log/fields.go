package log

import (
	"sort"

	"budgetbook/internal/core"
)

// Standard field names
const (
	FieldComponent = "component"
	FieldOperation = "operation"
	FieldError     = "error"
	FieldUser      = "user"
	FieldMonth     = "month"
	FieldVersion   = "version"
	FieldContainer = "container"
	FieldBackend   = "backend"
	FieldDuration  = "duration_ms"
)

// Components
const (
	ComponentApp      = "app"
	ComponentLedger   = "ledger"
	ComponentAutosave = "autosave"
	ComponentStorage  = "storage"
	ComponentAMQP     = "amqp"
	ComponentWorker   = "worker"
	ComponentExport   = "export"
	ComponentCache    = "cache"
	ComponentBackend  = "backend"
)

// Operations
const (
	OpLoad     = "load"
	OpSave     = "save"
	OpExport   = "export"
	OpPublish  = "publish"
	OpConsume  = "consume"
	OpStartup  = "startup"
	OpShutdown = "shutdown"
)

// Fields is a builder for structured log attributes.
type Fields map[string]any

func NewFields() Fields {
	return make(Fields)
}

func (f Fields) WithOperation(op string) Fields {
	f[FieldOperation] = op
	return f
}

func (f Fields) WithError(err error) Fields {
	if err != nil {
		f[FieldError] = err.Error()
	}
	return f
}

// WithMonth adds the (user, month) document key.
func (f Fields) WithMonth(user string, month core.MonthKey) Fields {
	f[FieldUser] = user
	f[FieldMonth] = month.String()
	return f
}

func (f Fields) WithVersion(v int64) Fields {
	f[FieldVersion] = v
	return f
}

func (f Fields) WithBackend(name string) Fields {
	f[FieldBackend] = name
	return f
}

// ToSlice flattens the fields into sorted key/value pairs for slog.
func (f Fields) ToSlice() []any {
	keys := make([]string, 0, len(f))
	for k := range f {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	out := make([]any, 0, len(f)*2)
	for _, k := range keys {
		out = append(out, k, f[k])
	}
	return out
}
