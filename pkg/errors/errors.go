// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Duet Contributors

// Package errors wraps samber/oops with duet's error codes. Codes are
// dotted paths whose last segment is the machine-readable reason; the
// reason decides the HTTP status a handler should answer with.
package errors

import (
	"fmt"
	"net/http"
	"strings"

	"github.com/samber/oops"
)

// Code is the machine-readable identifier for an error.
type Code string

const (
	CodeStoreSessionNotFound Code = "store.session.get.not_found"
	CodeStorePersistFailure  Code = "store.persist.save.failure"
	CodeStoreSnapshotInvalid Code = "store.snapshot.parse.invalid_format"
	CodeStoreBackendInvalid  Code = "store.backend.invalid_value"

	CodeProviderRequestInvalid Code = "provider.request.invalid_input"
	// An empty or malformed provider reply is an upstream fault, not caller
	// input; its reason must not map to a 400-class status.
	CodeProviderResponseInvalid Code = "provider.response.invalid_reply"
	CodeProviderUpstreamFailure Code = "provider.upstream.failure"

	CodeServerRequestInvalid  Code = "server.request.invalid_input"
	CodeServerCooldownActive  Code = "server.ratelimit.cooldown_active"
	CodeServerConfigInvalid   Code = "server.config.invalid_value"
	CodeServerInternalFailure Code = "server.internal.failure"

	CodeConfigLoadReadFailure      Code = "config.load.read.failure"
	CodeConfigValidateInvalidValue Code = "config.validate.invalid_value"

	CodeSecretInvalidInput   Code = "secret.uri.invalid_input"
	CodeSecretNotFound       Code = "secret.get.not_found"
	CodeSecretResolveFailure Code = "secret.resolve.failure"

	CodeCLIServerNotRunning Code = "cli.server.not_running"
	CodeCLIRequestFailure   Code = "cli.request.failure"
	CodeCLIResponseInvalid  Code = "cli.response.invalid"
)

// Attr is a structured key/value pair attached to an error.
type Attr struct {
	Key   string
	Value any
}

// Field creates a structured error field.
func Field(key string, value any) Attr {
	return Attr{Key: key, Value: value}
}

func FieldProvider(value string) Attr { return Field("provider", value) }
func FieldSession(value string) Attr  { return Field("session_id", value) }

func New(code Code, msg string, fields ...Attr) error {
	return oops.Code(code).With(flatten(fields)...).New(msg)
}

func Errorf(code Code, format string, args ...any) error {
	return oops.Code(code).Errorf(format, args...)
}

func Wrap(err error, code Code, msg string, fields ...Attr) error {
	if err == nil {
		return nil
	}
	return oops.Code(code).With(flatten(fields)...).Wrapf(err, "%s", msg)
}

func Wrapf(err error, code Code, format string, args ...any) error {
	if err == nil {
		return nil
	}
	return oops.Code(code).Wrapf(err, format, args...)
}

// CodeOf extracts the Code from an error chain, or "" if none is attached.
func CodeOf(err error) Code {
	if err == nil {
		return ""
	}

	oopsErr, ok := oops.AsOops(err)
	if !ok {
		return ""
	}

	if code, ok := oopsErr.Code().(Code); ok {
		return code
	}
	if code, ok := oopsErr.Code().(string); ok {
		return Code(code)
	}
	return Code(fmt.Sprintf("%v", oopsErr.Code()))
}

func HasCode(err error, code Code) bool {
	if err == nil {
		return false
	}
	return CodeOf(err) == code
}

func IsNotFound(err error) bool {
	return reason(CodeOf(err)) == "not_found"
}

func IsInvalidInput(err error) bool {
	r := reason(CodeOf(err))
	return r == "invalid" || r == "invalid_input" || r == "invalid_value" || r == "invalid_format"
}

// IsRateLimited reports whether the error is a cooldown rejection.
func IsRateLimited(err error) bool {
	return reason(CodeOf(err)) == "cooldown_active"
}

func IsUpstreamFailure(err error) bool {
	code := CodeOf(err)
	return strings.Contains(string(code), "upstream") && reason(code) == "failure"
}

// HTTPStatus maps an error's reason to the HTTP status a handler should
// respond with. Unknown reasons map to 500.
func HTTPStatus(err error) int {
	switch {
	case IsNotFound(err):
		return http.StatusNotFound
	case IsInvalidInput(err):
		return http.StatusBadRequest
	case IsRateLimited(err):
		return http.StatusTooManyRequests
	default:
		return http.StatusInternalServerError
	}
}

func flatten(fields []Attr) []any {
	pairs := make([]any, 0, len(fields)*2)
	for _, field := range fields {
		if field.Key == "" {
			continue
		}
		pairs = append(pairs, field.Key, field.Value)
	}
	return pairs
}

func reason(code Code) string {
	if code == "" {
		return ""
	}

	raw := string(code)
	idx := strings.LastIndex(raw, ".")
	if idx == -1 || idx == len(raw)-1 {
		return raw
	}
	return raw[idx+1:]
}
