package fetch

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"syscall"

	"github.com/vietddude/trendlake/internal/infra/youtube"
)

// Class is the failure classification that drives the retry state machine.
type Class int

const (
	ClassTransientNetwork Class = iota
	ClassServiceOverload
	ClassQuotaExceeded
	ClassNotFound
	ClassUnknownTransient
	ClassFatal
)

func (c Class) String() string {
	switch c {
	case ClassTransientNetwork:
		return "transient_network"
	case ClassServiceOverload:
		return "service_overload"
	case ClassQuotaExceeded:
		return "quota_exceeded"
	case ClassNotFound:
		return "not_found"
	case ClassUnknownTransient:
		return "unknown_transient"
	default:
		return "fatal"
	}
}

// Classify determines the class of a failed call.
func Classify(err error) Class {
	if err == nil {
		return ClassUnknownTransient // Should not happen
	}

	if errors.Is(err, context.Canceled) {
		return ClassFatal
	}

	var apiErr *youtube.APIError
	if errors.As(err, &apiErr) {
		switch {
		case apiErr.StatusCode == http.StatusServiceUnavailable ||
			apiErr.StatusCode == http.StatusTooManyRequests:
			return ClassServiceOverload
		case apiErr.StatusCode == http.StatusForbidden:
			return ClassQuotaExceeded
		case apiErr.IsNotFound():
			return ClassNotFound
		default:
			return ClassUnknownTransient
		}
	}

	if errors.Is(err, syscall.ECONNRESET) ||
		strings.Contains(strings.ToLower(err.Error()), "connection reset by peer") {
		return ClassTransientNetwork
	}

	return ClassUnknownTransient
}
