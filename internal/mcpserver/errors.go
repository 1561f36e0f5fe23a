package mcpserver

import (
	"errors"
	"fmt"

	"github.com/Aman-CERP/kbmcp/internal/kberrors"
)

// JSON-RPC and kbmcp-specific MCP error codes.
const (
	ErrCodeItemNotFound  = -32001
	ErrCodeIndexFailed   = -32002
	ErrCodeTimeout       = -32003
	ErrCodeInvalidParams = -32602
	ErrCodeInternalError = -32603
)

// MCPError is an MCP protocol error with a JSON-RPC-style code.
type MCPError struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}

func (e *MCPError) Error() string {
	return fmt.Sprintf("MCP error %d: %s", e.Code, e.Message)
}

// MapError converts a kberrors.Error (or any error) into an MCPError. The
// category carried on a structured error picks the JSON-RPC code; anything
// unrecognized collapses to an internal error.
func MapError(err error) *MCPError {
	if err == nil {
		return nil
	}

	var kerr *kberrors.Error
	if errors.As(err, &kerr) {
		switch kerr.Category {
		case kberrors.CategoryStore:
			if kerr.Code == kberrors.ErrCodeItemNotFound || kerr.Code == kberrors.ErrCodeChunkNotFound {
				return &MCPError{Code: ErrCodeItemNotFound, Message: kerr.Message}
			}
			return &MCPError{Code: ErrCodeInternalError, Message: kerr.Message}
		case kberrors.CategoryIndex:
			return &MCPError{Code: ErrCodeIndexFailed, Message: kerr.Message}
		case kberrors.CategoryValidation, kberrors.CategorySearch:
			if kerr.Code == kberrors.ErrCodeInvalidArgument {
				return &MCPError{Code: ErrCodeInvalidParams, Message: kerr.Message}
			}
			return &MCPError{Code: ErrCodeInternalError, Message: kerr.Message}
		default:
			return &MCPError{Code: ErrCodeInternalError, Message: kerr.Message}
		}
	}

	return &MCPError{Code: ErrCodeInternalError, Message: "internal server error"}
}

// NewInvalidParamsError builds an invalid-params MCPError with a custom message.
func NewInvalidParamsError(msg string) *MCPError {
	return &MCPError{Code: ErrCodeInvalidParams, Message: msg}
}
