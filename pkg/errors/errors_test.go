// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Duet Contributors

package errors_test

import (
	stderrors "errors"
	"net/http"
	"testing"

	duerr "github.com/duet-chat/duet/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewIncludesCode(t *testing.T) {
	err := duerr.New(
		duerr.CodeProviderUpstreamFailure,
		"gemini call failed",
		duerr.FieldProvider("gemini"),
	)

	require.Error(t, err)
	assert.Equal(t, duerr.CodeProviderUpstreamFailure, duerr.CodeOf(err))
	assert.True(t, duerr.HasCode(err, duerr.CodeProviderUpstreamFailure))
	assert.Contains(t, err.Error(), "gemini call failed")
}

func TestErrorfWrapsInnerError(t *testing.T) {
	inner := stderrors.New("connection reset")
	err := duerr.Errorf(duerr.CodeProviderUpstreamFailure, "groq call failed: %w", inner)

	require.Error(t, err)
	assert.ErrorIs(t, err, inner)
	assert.Equal(t, duerr.CodeProviderUpstreamFailure, duerr.CodeOf(err))
}

func TestWrapPreservesWrappedError(t *testing.T) {
	root := stderrors.New("slot missing")
	err := duerr.Wrap(root, duerr.CodeStoreSessionNotFound, "loading session", duerr.FieldSession("sess-42"))

	require.Error(t, err)
	assert.ErrorIs(t, err, root)
	assert.Equal(t, duerr.CodeStoreSessionNotFound, duerr.CodeOf(err))
}

func TestWrapNilReturnsNil(t *testing.T) {
	assert.NoError(t, duerr.Wrap(nil, duerr.CodeStorePersistFailure, "saving"))
	assert.NoError(t, duerr.Wrapf(nil, duerr.CodeStorePersistFailure, "saving"))
}

func TestCodeOfPlainError(t *testing.T) {
	assert.Equal(t, duerr.Code(""), duerr.CodeOf(stderrors.New("plain")))
	assert.Equal(t, duerr.Code(""), duerr.CodeOf(nil))
}

func TestReasonClassifiers(t *testing.T) {
	assert.True(t, duerr.IsNotFound(duerr.New(duerr.CodeStoreSessionNotFound, "no session")))
	assert.True(t, duerr.IsInvalidInput(duerr.New(duerr.CodeServerRequestInvalid, "bad body")))
	assert.True(t, duerr.IsInvalidInput(duerr.New(duerr.CodeConfigValidateInvalidValue, "bad value")))
	assert.True(t, duerr.IsRateLimited(duerr.New(duerr.CodeServerCooldownActive, "wait")))
	assert.True(t, duerr.IsUpstreamFailure(duerr.New(duerr.CodeProviderUpstreamFailure, "boom")))

	assert.False(t, duerr.IsRateLimited(duerr.New(duerr.CodeServerRequestInvalid, "bad body")))
	assert.False(t, duerr.IsNotFound(nil))
}

func TestHTTPStatusMapping(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want int
	}{
		{"not found", duerr.New(duerr.CodeStoreSessionNotFound, "x"), http.StatusNotFound},
		{"invalid input", duerr.New(duerr.CodeServerRequestInvalid, "x"), http.StatusBadRequest},
		{"cooldown", duerr.New(duerr.CodeServerCooldownActive, "x"), http.StatusTooManyRequests},
		{"upstream", duerr.New(duerr.CodeProviderUpstreamFailure, "x"), http.StatusInternalServerError},
		{"bad provider reply", duerr.New(duerr.CodeProviderResponseInvalid, "x"), http.StatusInternalServerError},
		{"plain", stderrors.New("plain"), http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, duerr.HTTPStatus(tt.err))
		})
	}
}
