package log

import (
	"context"
	"errors"
	"net/http"

	"moneytracker/internal/core"
)

// Field names shared by every log record.
const (
	FieldComponent     = "component"
	FieldRequestID     = "request_id"
	FieldClientIP      = "client_ip"
	FieldMethod        = "method"
	FieldPath          = "path"
	FieldRoute         = "route"
	FieldQuery         = "query"
	FieldStatusCode    = "status_code"
	FieldDuration      = "duration_ms"
	FieldUserAgent     = "user_agent"
	FieldSuccess       = "success"
	FieldError         = "error"
	FieldErrorType     = "error_type"
	FieldOperation     = "operation"
	FieldUserID        = "user_id"
	FieldTransactionID = "transaction_id"
	FieldKind          = "kind"
	FieldAmountCents   = "amount_cents"
	FieldCategoryID    = "category_id"
	FieldEvent         = "event"
)

const (
	ComponentApp         = "app"
	ComponentHTTP        = "http"
	ComponentTransaction = "transaction"
	ComponentCategory    = "category"
	ComponentReport      = "report"
	ComponentAuth        = "auth"
	ComponentStorage     = "storage"
	ComponentAMQP        = "amqp"
	ComponentWorker      = "worker"
	ComponentSheets      = "sheets"
	ComponentImport      = "import"
	ComponentSecurity    = "security"
	ComponentRateLimit   = "rate_limit"
	ComponentTemplate    = "template"
)

const (
	OpCreate   = "create"
	OpRead     = "read"
	OpUpdate   = "update"
	OpDelete   = "delete"
	OpList     = "list"
	OpExport   = "export"
	OpImport   = "import"
	OpLogin    = "login"
	OpRegister = "register"
	OpSeed     = "seed"
	OpRender   = "render"
	OpToggle   = "toggle"
	OpShutdown = "shutdown"
	OpStartup  = "startup"
)

// Values of FieldErrorType.
const (
	ErrorTypeValidation = "validation_error"
	ErrorTypeNotFound   = "not_found_error"
	ErrorTypeConflict   = "conflict_error"
	ErrorTypeTimeout    = "timeout_error"
	ErrorTypeInternal   = "internal_error"
)

// ErrorTypeOf buckets err so dashboards can tell user mistakes from faults.
func ErrorTypeOf(err error) string {
	var inUse *core.CategoryInUseError
	switch {
	case errors.Is(err, context.DeadlineExceeded), errors.Is(err, context.Canceled):
		return ErrorTypeTimeout
	case errors.Is(err, core.ErrNotFound):
		return ErrorTypeNotFound
	case errors.As(err, &inUse), errors.Is(err, core.ErrDuplicateCategory), errors.Is(err, core.ErrUsernameTaken):
		return ErrorTypeConflict
	}
	if _, ok := core.AsValidation(err); ok {
		return ErrorTypeValidation
	}
	return ErrorTypeInternal
}

// LogFields provides a builder pattern for structured log fields
type LogFields map[string]any

func NewFields() LogFields {
	return make(LogFields)
}

func (f LogFields) WithComponent(component string) LogFields {
	f[FieldComponent] = component
	return f
}

func (f LogFields) WithClientIP(ip string) LogFields {
	if ip != "" {
		f[FieldClientIP] = ip
	}
	return f
}

// WithError adds the error and its type; nil errors are skipped
func (f LogFields) WithError(err error) LogFields {
	if err != nil {
		f[FieldError] = err.Error()
		f[FieldErrorType] = ErrorTypeOf(err)
	}
	return f
}

func (f LogFields) WithOperation(op string) LogFields {
	f[FieldOperation] = op
	return f
}

func (f LogFields) WithUser(userID string) LogFields {
	f[FieldUserID] = userID
	return f
}

func (f LogFields) WithTransaction(id int64, kind string, amountCents int64) LogFields {
	f[FieldTransactionID] = id
	f[FieldKind] = kind
	f[FieldAmountCents] = amountCents
	return f
}

// WithHTTPRequest records the request line. The matched mux pattern is
// logged as route so records group per endpoint rather than per id.
func (f LogFields) WithHTTPRequest(r *http.Request) LogFields {
	f[FieldMethod] = r.Method
	f[FieldPath] = r.URL.Path
	if r.Pattern != "" {
		f[FieldRoute] = r.Pattern
	}
	if r.URL.RawQuery != "" {
		f[FieldQuery] = r.URL.RawQuery
	}
	f[FieldUserAgent] = r.UserAgent()
	return f
}

func (f LogFields) WithHTTPResponse(statusCode int, durationMs int64) LogFields {
	f[FieldStatusCode] = statusCode
	f[FieldDuration] = durationMs
	f[FieldSuccess] = statusCode < 400
	return f
}

// ToSlice converts LogFields to a slice for slog
func (f LogFields) ToSlice() []any {
	slice := make([]any, 0, len(f)*2)
	for k, v := range f {
		slice = append(slice, k, v)
	}
	return slice
}
