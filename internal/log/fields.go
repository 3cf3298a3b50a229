package log

// Common field names for structured logging
const (
	FieldComponent     = "component"
	FieldRequestID     = "request_id"
	FieldClientIP      = "client_ip"
	FieldMethod        = "method"
	FieldPath          = "path"
	FieldQuery         = "query"
	FieldStatusCode    = "status_code"
	FieldDuration      = "duration_ms"
	FieldUserAgent     = "user_agent"
	FieldSuccess       = "success"
	FieldError         = "error"
	FieldOperation     = "operation"
	FieldCollection    = "collection"
	FieldTransactionID = "transaction_id"
	FieldTxType        = "tx_type"
	FieldAccountID     = "account_id"
	FieldServiceID     = "service_id"
	FieldBudgetID      = "budget_id"
	FieldAmount        = "amount"
	FieldCurrency      = "currency"
	FieldUnit          = "unit"
	FieldCategory      = "category"
	FieldConcept       = "concept"
	FieldStatus        = "status"
	FieldEventType     = "event_type"
)

// Components defines standard component names
const (
	ComponentApp       = "app"
	ComponentHTTP      = "http"
	ComponentLedger    = "ledger"
	ComponentAccounts  = "accounts"
	ComponentRegistry  = "registry"
	ComponentBudgets   = "budgets"
	ComponentLive      = "live"
	ComponentStorage   = "storage"
	ComponentAMQP      = "amqp"
	ComponentWorker    = "worker"
	ComponentSheets    = "sheets"
	ComponentSecurity  = "security"
	ComponentRateLimit = "rate_limit"
	ComponentBackend   = "backend"
)

// Operations defines standard operation names
const (
	OpCreate     = "create"
	OpUpdate     = "update"
	OpDelete     = "delete"
	OpPost       = "post"
	OpAdvance    = "advance"
	OpDeactivate = "deactivate"
	OpExport     = "export"
	OpPublish    = "publish"
	OpSubscribe  = "subscribe"
	OpShutdown   = "shutdown"
	OpStartup    = "startup"
)

// LogFields provides a builder pattern for structured log fields
type LogFields map[string]any

// NewFields creates a new LogFields instance
func NewFields() LogFields {
	return make(LogFields)
}

func (f LogFields) WithRequestID(requestID string) LogFields {
	f[FieldRequestID] = requestID
	return f
}

func (f LogFields) WithClientIP(ip string) LogFields {
	f[FieldClientIP] = ip
	return f
}

// WithError adds error field
func (f LogFields) WithError(err error) LogFields {
	if err != nil {
		f[FieldError] = err.Error()
	}
	return f
}

func (f LogFields) WithOperation(op string) LogFields {
	f[FieldOperation] = op
	return f
}

// WithTransaction adds the fields identifying a ledger movement. Amount is
// logged in major units as a string to keep cents exact.
func (f LogFields) WithTransaction(id, txType, account, amount, currency string) LogFields {
	f[FieldTransactionID] = id
	f[FieldTxType] = txType
	f[FieldAccountID] = account
	f[FieldAmount] = amount
	f[FieldCurrency] = currency
	return f
}

// WithClassification adds the unit/category/concept path.
func (f LogFields) WithClassification(unit, category, concept string) LogFields {
	f[FieldUnit] = unit
	f[FieldCategory] = category
	f[FieldConcept] = concept
	return f
}

func (f LogFields) WithHTTPRequest(method, path, query, userAgent string) LogFields {
	f[FieldMethod] = method
	f[FieldPath] = path
	f[FieldQuery] = query
	if userAgent != "" {
		f[FieldUserAgent] = userAgent
	}
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
