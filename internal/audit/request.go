package audit

import (
	"net/http"
	"strings"
)

const unknownClient = "unknown"

// RequestContext carries the caller/network context attached to audit events.
type RequestContext struct {
	IPAddress string
	UserAgent string
}

// nil-safe accessors so helpers accept an optional context.

func (rc *RequestContext) ip() string {
	if rc == nil || rc.IPAddress == "" {
		return unknownClient
	}
	return rc.IPAddress
}

func (rc *RequestContext) userAgent() string {
	if rc == nil || rc.UserAgent == "" {
		return unknownClient
	}
	return rc.UserAgent
}

// ExtractRequestContext resolves client IP and user agent from a request.
// The IP fallback order is X-Forwarded-For (first comma segment), X-Real-IP,
// then CF-Connecting-IP. Downstream abuse heuristics depend on this exact
// order, so keep it stable.
func ExtractRequestContext(r *http.Request) *RequestContext {
	rc := &RequestContext{IPAddress: unknownClient, UserAgent: unknownClient}
	if r == nil {
		return rc
	}

	if fwd := r.Header.Get("X-Forwarded-For"); fwd != "" {
		first, _, _ := strings.Cut(fwd, ",")
		if first = strings.TrimSpace(first); first != "" {
			rc.IPAddress = first
		}
	} else if real := r.Header.Get("X-Real-IP"); real != "" {
		rc.IPAddress = real
	} else if cf := r.Header.Get("CF-Connecting-IP"); cf != "" {
		rc.IPAddress = cf
	}

	if ua := r.Header.Get("User-Agent"); ua != "" {
		rc.UserAgent = ua
	}
	return rc
}
