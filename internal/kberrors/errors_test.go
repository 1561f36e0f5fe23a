package kberrors

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestError_Unwrap_PreservesOriginalError(t *testing.T) {
	originalErr := errors.New("original error")

	wrapped := New(ErrCodeStorageFailure, "write failed", originalErr)

	require.NotNil(t, wrapped)
	assert.Equal(t, originalErr, errors.Unwrap(wrapped))
	assert.True(t, errors.Is(wrapped, originalErr))
}

func TestError_Error_ReturnsFormattedMessage(t *testing.T) {
	tests := []struct {
		name     string
		code     string
		message  string
		expected string
	}{
		{
			name:     "store error",
			code:     ErrCodeItemNotFound,
			message:  "item not found",
			expected: "[ERR_101_ITEM_NOT_FOUND] item not found",
		},
		{
			name:     "index error",
			code:     ErrCodeIndexUnavailable,
			message:  "chunk index unavailable",
			expected: "[ERR_301_INDEX_UNAVAILABLE] chunk index unavailable",
		},
		{
			name:     "search error",
			code:     ErrCodeInvalidArgument,
			message:  "limit must be >= 0",
			expected: "[ERR_402_INVALID_ARGUMENT] limit must be >= 0",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := New(tt.code, tt.message, nil)
			assert.Equal(t, tt.expected, err.Error())
		})
	}
}

func TestError_Is_MatchesByCode(t *testing.T) {
	a := New(ErrCodeChunkNotFound, "chunk missing", nil)
	b := New(ErrCodeChunkNotFound, "different message, same code", nil)
	c := New(ErrCodeItemNotFound, "item missing", nil)

	assert.True(t, errors.Is(a, b))
	assert.False(t, errors.Is(a, c))
}

func TestCategoryFromCode(t *testing.T) {
	tests := []struct {
		code string
		want Category
	}{
		{ErrCodeItemNotFound, CategoryStore},
		{ErrCodeChunkingFailed, CategoryChunk},
		{ErrCodeIndexUnavailable, CategoryIndex},
		{ErrCodeSearchFailed, CategorySearch},
		{ErrCodeConfigInvalid, CategoryConfig},
		{ErrCodeInternal, CategoryInternal},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, GetCategory(New(tt.code, "x", nil)), tt.code)
	}
}

func TestIsRetryable(t *testing.T) {
	assert.True(t, IsRetryable(StorageFailure("disk write failed", nil)))
	assert.False(t, IsRetryable(InvalidArgument("bad limit")))
	assert.False(t, IsRetryable(nil))
	assert.False(t, IsRetryable(errors.New("plain error")))
}

func TestIsFatal(t *testing.T) {
	fatal := New(ErrCodeStoreCorrupt, "db corrupt", nil)
	assert.True(t, IsFatal(fatal))
	assert.False(t, IsFatal(New(ErrCodeItemNotFound, "x", nil)))
}

func TestWithDetailAndSuggestion(t *testing.T) {
	err := New(ErrCodeChunkNotFound, "chunk missing", nil).
		WithDetail("chunk_id", "abc123").
		WithSuggestion("run rebuild-index")

	assert.Equal(t, "abc123", err.Details["chunk_id"])
	assert.Equal(t, "run rebuild-index", err.Suggestion)
}

func TestWrap_NilError(t *testing.T) {
	assert.Nil(t, Wrap(ErrCodeInternal, nil))
}

func TestFormatForUser(t *testing.T) {
	err := New(ErrCodeItemNotFound, "item missing", nil).WithSuggestion("check the id")
	msg := FormatForUser(err, false)
	assert.Contains(t, msg, "item missing")
	assert.Contains(t, msg, "check the id")
	assert.NotContains(t, msg, "ERR_101")

	debugMsg := FormatForUser(err, true)
	assert.Contains(t, debugMsg, "ERR_101")
}
