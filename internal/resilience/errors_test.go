package resilience

import (
	"context"
	"fmt"
	"net"
	"strings"
	"syscall"
	"testing"
)

type timeoutErr struct{}

func (timeoutErr) Error() string   { return "i/o timeout" }
func (timeoutErr) Timeout() bool   { return true }
func (timeoutErr) Temporary() bool { return true }

var _ net.Error = timeoutErr{}

func TestStatusError_HidesBody(t *testing.T) {
	err := &StatusError{Service: "sankhya", StatusCode: 500, Body: "secret token"}
	if strings.Contains(err.Error(), "secret") {
		t.Fatalf("body leaked into error message: %q", err.Error())
	}
	if err.Error() != "sankhya: unexpected status 500" {
		t.Fatalf("unexpected message: %q", err.Error())
	}
}

func TestIsTransient(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want bool
	}{
		{"nil", nil, false},
		{"canceled", context.Canceled, false},
		{"wrapped canceled", fmt.Errorf("x: %w", context.Canceled), false},
		{"503", &StatusError{Service: "s", StatusCode: 503}, true},
		{"429", &StatusError{Service: "s", StatusCode: 429}, true},
		{"400", &StatusError{Service: "s", StatusCode: 400}, false},
		{"401", &StatusError{Service: "s", StatusCode: 401}, false},
		{"wrapped 502", fmt.Errorf("call: %w", &StatusError{Service: "s", StatusCode: 502}), true},
		{"timeout", timeoutErr{}, true},
		{"conn reset", fmt.Errorf("read: %w", syscall.ECONNRESET), true},
		{"conn refused", syscall.ECONNREFUSED, true},
		{"plain", fmt.Errorf("boom"), false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := IsTransient(tt.err); got != tt.want {
				t.Fatalf("IsTransient(%v) = %v, want %v", tt.err, got, tt.want)
			}
		})
	}
}
