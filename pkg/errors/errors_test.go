package errors

import (
	"fmt"
	"net/http"
	"strings"
	"testing"
)

func TestInvalidTransition(t *testing.T) {
	err := InvalidTransition("pending", "completed")

	if err.Code != CodeInvalidTransition {
		t.Errorf("Code = %s", err.Code)
	}
	if err.HTTPStatus != http.StatusConflict {
		t.Errorf("HTTPStatus = %d", err.HTTPStatus)
	}
	if !strings.Contains(err.Message, "pending → completed") {
		t.Errorf("Message = %s", err.Message)
	}
	if err.Fields["from"] != "pending" || err.Fields["to"] != "completed" {
		t.Errorf("Fields = %v", err.Fields)
	}
}

func TestIsAndGetCode(t *testing.T) {
	base := MoveRejected("ng_staff", "NG")
	wrapped := fmt.Errorf("move: %w", base)

	if !Is(wrapped, CodeMoveRejected) {
		t.Error("Is 应穿透包装")
	}
	if GetCode(wrapped) != CodeMoveRejected {
		t.Errorf("GetCode = %s", GetCode(wrapped))
	}
	if GetHTTPStatus(wrapped) != http.StatusUnprocessableEntity {
		t.Errorf("GetHTTPStatus = %d", GetHTTPStatus(wrapped))
	}
	if GetCode(fmt.Errorf("plain")) != CodeUnknown {
		t.Error("普通错误应返回 UNKNOWN")
	}
}

func TestOptimizerUnavailable(t *testing.T) {
	cause := fmt.Errorf("connection refused")
	err := OptimizerUnavailable("timeout", cause)

	if err.HTTPStatus != http.StatusBadGateway {
		t.Errorf("HTTPStatus = %d", err.HTTPStatus)
	}
	if err.Unwrap() != cause {
		t.Error("Unwrap 应返回原因")
	}
	if !strings.Contains(err.Error(), "connection refused") {
		t.Errorf("Error() = %s", err.Error())
	}
}

func TestCacheError(t *testing.T) {
	cause := fmt.Errorf("redis: connection pool timeout")
	err := CacheError("invalidate", cause)

	if !Is(err, CodeCacheError) {
		t.Errorf("Code = %s", err.Code)
	}
	if err.HTTPStatus != http.StatusInternalServerError {
		t.Errorf("HTTPStatus = %d", err.HTTPStatus)
	}
	if err.Fields["op"] != "invalidate" || err.Unwrap() != cause {
		t.Errorf("unexpected: %+v", err)
	}
}

func TestValidationErrors(t *testing.T) {
	var ve ValidationErrors
	if ve.HasErrors() {
		t.Error("初始不应有错误")
	}
	ve.Add("start_time", "格式无效")
	appErr := ve.ToAppError()
	if appErr.Code != CodeValidationFail || appErr.Fields["start_time"] != "格式无效" {
		t.Errorf("unexpected: %+v", appErr)
	}
}
