package errs

import "net/http"

// Severity ranks how urgently an error needs operator attention.
type Severity string

const (
	SeverityLow      Severity = "low"
	SeverityMedium   Severity = "medium"
	SeverityHigh     Severity = "high"
	SeverityCritical Severity = "critical"
)

// ProviderCategory classifies errors coming back from the messaging provider.
type ProviderCategory string

const (
	ProviderTemporary  ProviderCategory = "temporary"
	ProviderPermanent  ProviderCategory = "permanent"
	ProviderThrottling ProviderCategory = "throttling"
)

// ProviderExt carries provider-specific classification. Only kinds raised by
// the external messaging provider have one.
type ProviderExt struct {
	Category ProviderCategory
}

// Kind is an immutable catalog entry. The catalog is defined at process start
// and never mutated.
type Kind struct {
	Code      string
	Message   string
	Status    int
	Severity  Severity
	Retryable bool
	Provider  *ProviderExt
}

// Error codes, grouped by prefix.
const (
	// Authentication
	CodeAuthInvalidCredentials = "AUTH_INVALID_CREDENTIALS"
	CodeAuthSessionExpired     = "AUTH_SESSION_EXPIRED"
	CodeAuthUnauthorized       = "AUTH_UNAUTHORIZED"

	// Permission
	CodePermForbidden = "PERM_FORBIDDEN"
	CodePermPlanLimit = "PERM_PLAN_LIMIT"

	// Validation
	CodeValInvalidInput = "VAL_INVALID_INPUT"
	CodeValMissingField = "VAL_MISSING_FIELD"
	CodeValDuplicate    = "VAL_DUPLICATE"

	// Billing
	CodeBillPaymentFailed       = "BILL_PAYMENT_FAILED"
	CodeBillSubscriptionExpired = "BILL_SUBSCRIPTION_EXPIRED"
	CodeBillQuotaExceeded       = "BILL_QUOTA_EXCEEDED"

	// Rate limiting
	CodeRateLimitExceeded = "RATE_LIMIT_EXCEEDED"

	// Database
	CodeDBConnectionFailed   = "DB_CONNECTION_FAILED"
	CodeDBQueryFailed        = "DB_QUERY_FAILED"
	CodeDBConstraintViolated = "DB_CONSTRAINT_VIOLATED"
	CodeDBNotFound           = "DB_NOT_FOUND"

	// AI service
	CodeAIServiceUnavailable = "AI_SERVICE_UNAVAILABLE"
	CodeAITimeout            = "AI_TIMEOUT"
	CodeAIQuotaExceeded      = "AI_QUOTA_EXCEEDED"

	// Message queue
	CodeQueuePublishFailed = "QUEUE_PUBLISH_FAILED"
	CodeQueueConsumeFailed = "QUEUE_CONSUME_FAILED"

	// External messaging provider (WhatsApp)
	CodeWspConnectionFailed    = "WSP_CONNECTION_FAILED"
	CodeWspSessionDisconnected = "WSP_SESSION_DISCONNECTED"
	CodeWspSendTimeout         = "WSP_SEND_TIMEOUT"
	CodeWspMediaUploadFailed   = "WSP_MEDIA_UPLOAD_FAILED"
	CodeWspRateLimited         = "WSP_RATE_LIMITED"
	CodeWspInvalidNumber       = "WSP_INVALID_NUMBER"
	CodeWspNotOnWhatsApp       = "WSP_NOT_ON_WHATSAPP"
	CodeWspAccountBanned       = "WSP_ACCOUNT_BANNED"
	CodeWspProviderError       = "WSP_PROVIDER_ERROR"

	// Webhook
	CodeWebhookDeliveryFailed   = "WEBHOOK_DELIVERY_FAILED"
	CodeWebhookInvalidSignature = "WEBHOOK_INVALID_SIGNATURE"

	// System
	CodeSysInternal      = "SYS_INTERNAL"
	CodeSysConfigInvalid = "SYS_CONFIG_INVALID"
	CodeSysTimeout       = "SYS_TIMEOUT"
	CodeSysCircuitOpen   = "SYS_CIRCUIT_OPEN"

	// Fallback for anything not in the catalog
	CodeUnknown = "UNKNOWN_ERROR"
)

func provider(c ProviderCategory) *ProviderExt {
	return &ProviderExt{Category: c}
}

// catalog is the canonical error taxonomy. Every user-facing failure resolves
// to one of these entries; Message is the only text shown to end users.
var catalog = map[string]Kind{
	CodeAuthInvalidCredentials: {CodeAuthInvalidCredentials, "Invalid email or password", http.StatusUnauthorized, SeverityMedium, false, nil},
	CodeAuthSessionExpired:     {CodeAuthSessionExpired, "Your session has expired, please sign in again", http.StatusUnauthorized, SeverityLow, false, nil},
	CodeAuthUnauthorized:       {CodeAuthUnauthorized, "Authentication required", http.StatusUnauthorized, SeverityMedium, false, nil},

	CodePermForbidden: {CodePermForbidden, "You do not have permission to perform this action", http.StatusForbidden, SeverityHigh, false, nil},
	CodePermPlanLimit: {CodePermPlanLimit, "This feature is not available on your current plan", http.StatusForbidden, SeverityLow, false, nil},

	CodeValInvalidInput: {CodeValInvalidInput, "The submitted data is invalid", http.StatusBadRequest, SeverityLow, false, nil},
	CodeValMissingField: {CodeValMissingField, "A required field is missing", http.StatusBadRequest, SeverityLow, false, nil},
	CodeValDuplicate:    {CodeValDuplicate, "A record with these details already exists", http.StatusConflict, SeverityLow, false, nil},

	CodeBillPaymentFailed:       {CodeBillPaymentFailed, "Payment could not be processed", http.StatusPaymentRequired, SeverityHigh, true, nil},
	CodeBillSubscriptionExpired: {CodeBillSubscriptionExpired, "Your subscription has expired", http.StatusPaymentRequired, SeverityMedium, false, nil},
	CodeBillQuotaExceeded:       {CodeBillQuotaExceeded, "Monthly usage quota exceeded", http.StatusPaymentRequired, SeverityMedium, false, nil},

	CodeRateLimitExceeded: {CodeRateLimitExceeded, "Too many requests, please slow down", http.StatusTooManyRequests, SeverityMedium, true, nil},

	CodeDBConnectionFailed:   {CodeDBConnectionFailed, "Service temporarily unavailable", http.StatusServiceUnavailable, SeverityCritical, true, nil},
	CodeDBQueryFailed:        {CodeDBQueryFailed, "An internal data error occurred", http.StatusInternalServerError, SeverityHigh, true, nil},
	CodeDBConstraintViolated: {CodeDBConstraintViolated, "The operation conflicts with existing data", http.StatusConflict, SeverityMedium, false, nil},
	CodeDBNotFound:           {CodeDBNotFound, "The requested record was not found", http.StatusNotFound, SeverityLow, false, nil},

	CodeAIServiceUnavailable: {CodeAIServiceUnavailable, "AI assistant is temporarily unavailable", http.StatusServiceUnavailable, SeverityMedium, true, nil},
	CodeAITimeout:            {CodeAITimeout, "AI assistant took too long to respond", http.StatusGatewayTimeout, SeverityMedium, true, nil},
	CodeAIQuotaExceeded:      {CodeAIQuotaExceeded, "AI usage quota exceeded", http.StatusTooManyRequests, SeverityMedium, false, nil},

	CodeQueuePublishFailed: {CodeQueuePublishFailed, "Message could not be queued", http.StatusInternalServerError, SeverityHigh, true, nil},
	CodeQueueConsumeFailed: {CodeQueueConsumeFailed, "Message processing failed", http.StatusInternalServerError, SeverityHigh, true, nil},

	CodeWspConnectionFailed:    {CodeWspConnectionFailed, "Could not reach the messaging service", http.StatusBadGateway, SeverityHigh, true, provider(ProviderTemporary)},
	CodeWspSessionDisconnected: {CodeWspSessionDisconnected, "WhatsApp session disconnected", http.StatusBadGateway, SeverityHigh, true, provider(ProviderTemporary)},
	CodeWspSendTimeout:         {CodeWspSendTimeout, "Message delivery timed out", http.StatusGatewayTimeout, SeverityMedium, true, provider(ProviderTemporary)},
	CodeWspMediaUploadFailed:   {CodeWspMediaUploadFailed, "Media upload failed", http.StatusBadGateway, SeverityMedium, true, provider(ProviderTemporary)},
	CodeWspRateLimited:         {CodeWspRateLimited, "Messaging rate limit reached", http.StatusTooManyRequests, SeverityMedium, true, provider(ProviderThrottling)},
	CodeWspInvalidNumber:       {CodeWspInvalidNumber, "The phone number is invalid", http.StatusBadRequest, SeverityLow, false, provider(ProviderPermanent)},
	CodeWspNotOnWhatsApp:       {CodeWspNotOnWhatsApp, "This number is not registered on WhatsApp", http.StatusNotFound, SeverityLow, false, provider(ProviderPermanent)},
	CodeWspAccountBanned:       {CodeWspAccountBanned, "The messaging account has been restricted", http.StatusForbidden, SeverityCritical, false, provider(ProviderPermanent)},
	CodeWspProviderError:       {CodeWspProviderError, "The messaging service reported an error", http.StatusBadGateway, SeverityMedium, true, provider(ProviderTemporary)},

	CodeWebhookDeliveryFailed:   {CodeWebhookDeliveryFailed, "Webhook delivery failed", http.StatusBadGateway, SeverityMedium, true, nil},
	CodeWebhookInvalidSignature: {CodeWebhookInvalidSignature, "Webhook signature verification failed", http.StatusUnauthorized, SeverityHigh, false, nil},

	CodeSysInternal:      {CodeSysInternal, "An unexpected internal error occurred", http.StatusInternalServerError, SeverityCritical, false, nil},
	CodeSysConfigInvalid: {CodeSysConfigInvalid, "Service configuration is invalid", http.StatusInternalServerError, SeverityCritical, false, nil},
	CodeSysTimeout:       {CodeSysTimeout, "The operation timed out", http.StatusGatewayTimeout, SeverityMedium, true, nil},
	CodeSysCircuitOpen:   {CodeSysCircuitOpen, "Service is temporarily suspended due to repeated failures", http.StatusServiceUnavailable, SeverityHigh, false, nil},

	CodeUnknown: {CodeUnknown, "An unexpected error occurred", http.StatusInternalServerError, SeverityHigh, false, nil},
}

// unknownKind is returned by Lookup for codes outside the catalog so that
// classification itself can never fail.
var unknownKind = Kind{
	Code:     CodeUnknown,
	Message:  "An unexpected error occurred",
	Status:   http.StatusInternalServerError,
	Severity: SeverityHigh,
}

// Lookup resolves a code to its catalog entry. Unknown codes resolve to the
// generic unknown kind, never an error.
func Lookup(code string) Kind {
	if k, ok := catalog[code]; ok {
		return k
	}
	return unknownKind
}

// Known reports whether a code exists in the catalog.
func Known(code string) bool {
	_, ok := catalog[code]
	return ok
}

// Codes returns all catalog codes. Used by tests and the ops surface.
func Codes() []string {
	out := make([]string, 0, len(catalog))
	for code := range catalog {
		out = append(out, code)
	}
	return out
}

// IsRetryable reports whether the kind behind a code may be retried.
func IsRetryable(code string) bool {
	return Lookup(code).Retryable
}

// SeverityOf returns the catalog severity for a code.
func SeverityOf(code string) Severity {
	return Lookup(code).Severity
}

// providerCodeMap maps WhatsApp Cloud API error numbers to taxonomy codes.
// Numbers outside the table fall back to the generic provider kind.
var providerCodeMap = map[int]string{
	0:      CodeWspConnectionFailed,    // connectivity lost
	1:      CodeWspProviderError,       // unknown API error
	4:      CodeWspRateLimited,         // API too many calls
	80007:  CodeWspRateLimited,         // rate limit issues
	130429: CodeWspRateLimited,         // cloud API throughput reached
	131000: CodeWspProviderError,       // something went wrong
	131008: CodeWspInvalidNumber,       // required parameter missing
	131009: CodeWspInvalidNumber,       // parameter value not valid
	131016: CodeWspConnectionFailed,    // service unavailable
	131026: CodeWspNotOnWhatsApp,       // message undeliverable
	131047: CodeWspSessionDisconnected, // re-engagement window expired
	131048: CodeWspRateLimited,         // spam rate limit hit
	131053: CodeWspMediaUploadFailed,   // media upload error
	131056: CodeWspRateLimited,         // pair rate limit hit
	133010: CodeWspAccountBanned,       // account not registered
	368:    CodeWspAccountBanned,       // temporarily blocked for policy violations
	408:    CodeWspSendTimeout,         // message expired
}

// MapProviderCode translates a provider error number to a taxonomy code.
// Total: unmapped numbers resolve to the generic provider error kind.
func MapProviderCode(code int) string {
	if mapped, ok := providerCodeMap[code]; ok {
		return mapped
	}
	return CodeWspProviderError
}
