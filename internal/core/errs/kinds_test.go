package errs

import "testing"

func TestCatalogWellFormed(t *testing.T) {
	for _, code := range Codes() {
		k := Lookup(code)
		if k.Message == "" {
			t.Errorf("kind %s has empty message", code)
		}
		if k.Status < 100 || k.Status > 599 {
			t.Errorf("kind %s has invalid status %d", code, k.Status)
		}
		if k.Code != code {
			t.Errorf("kind %s carries mismatched code %s", code, k.Code)
		}
		switch k.Severity {
		case SeverityLow, SeverityMedium, SeverityHigh, SeverityCritical:
		default:
			t.Errorf("kind %s has invalid severity %q", code, k.Severity)
		}
	}
}

func TestLookupUnknownCode(t *testing.T) {
	k := Lookup("NO_SUCH_KIND")
	if k.Code != CodeUnknown {
		t.Errorf("Lookup(unknown) = %s, want %s", k.Code, CodeUnknown)
	}
	if k.Message == "" {
		t.Error("unknown kind has empty message")
	}
}

func TestProviderKindsHaveCategory(t *testing.T) {
	tests := []struct {
		code   string
		expect ProviderCategory
	}{
		{CodeWspConnectionFailed, ProviderTemporary},
		{CodeWspSessionDisconnected, ProviderTemporary},
		{CodeWspSendTimeout, ProviderTemporary},
		{CodeWspRateLimited, ProviderThrottling},
		{CodeWspInvalidNumber, ProviderPermanent},
		{CodeWspNotOnWhatsApp, ProviderPermanent},
		{CodeWspAccountBanned, ProviderPermanent},
	}

	for _, tt := range tests {
		k := Lookup(tt.code)
		if k.Provider == nil {
			t.Errorf("kind %s has no provider extension", tt.code)
			continue
		}
		if k.Provider.Category != tt.expect {
			t.Errorf("kind %s category = %s, want %s", tt.code, k.Provider.Category, tt.expect)
		}
	}
}

func TestNonProviderKindsHaveNoCategory(t *testing.T) {
	for _, code := range []string{CodeAuthUnauthorized, CodeDBQueryFailed, CodeSysInternal} {
		if Lookup(code).Provider != nil {
			t.Errorf("kind %s unexpectedly has a provider extension", code)
		}
	}
}

func TestIsRetryable(t *testing.T) {
	tests := []struct {
		code   string
		expect bool
	}{
		{CodeDBConnectionFailed, true},
		{CodeWspRateLimited, true},
		{CodeWspInvalidNumber, false},
		{CodeValInvalidInput, false},
		{"NO_SUCH_KIND", false},
	}

	for _, tt := range tests {
		if got := IsRetryable(tt.code); got != tt.expect {
			t.Errorf("IsRetryable(%s) = %v, want %v", tt.code, got, tt.expect)
		}
	}
}

func TestSeverityOf(t *testing.T) {
	if got := SeverityOf(CodeDBConnectionFailed); got != SeverityCritical {
		t.Errorf("SeverityOf(%s) = %s, want %s", CodeDBConnectionFailed, got, SeverityCritical)
	}
	if got := SeverityOf("NO_SUCH_KIND"); got != SeverityHigh {
		t.Errorf("SeverityOf(unknown) = %s, want %s", got, SeverityHigh)
	}
}

func TestMapProviderCode(t *testing.T) {
	tests := []struct {
		code   int
		expect string
	}{
		{130429, CodeWspRateLimited},
		{131026, CodeWspNotOnWhatsApp},
		{131047, CodeWspSessionDisconnected},
		{408, CodeWspSendTimeout},
		{368, CodeWspAccountBanned},
		{-1, CodeWspProviderError},      // unmapped negative
		{999999, CodeWspProviderError},  // unmapped positive
	}

	for _, tt := range tests {
		if got := MapProviderCode(tt.code); got != tt.expect {
			t.Errorf("MapProviderCode(%d) = %s, want %s", tt.code, got, tt.expect)
		}
	}
}
