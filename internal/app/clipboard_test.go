package app

import (
	"errors"
	"strings"
	"testing"
)

func stubClipboard(t *testing.T, system, osc error) *[]clipboardMethod {
	t.Helper()
	origWriteAll := clipboardWriteAll
	origWriteOSC52 := clipboardWriteOSC52
	t.Cleanup(func() {
		clipboardWriteAll = origWriteAll
		clipboardWriteOSC52 = origWriteOSC52
	})

	calls := &[]clipboardMethod{}
	clipboardWriteAll = func(string) error {
		*calls = append(*calls, clipboardMethodSystem)
		return system
	}
	clipboardWriteOSC52 = func(string) error {
		*calls = append(*calls, clipboardMethodOSC52)
		return osc
	}
	return calls
}

func TestCopyTextToClipboardUsesSystemBackend(t *testing.T) {
	calls := stubClipboard(t, nil, nil)

	method, err := copyTextToClipboard("hello")
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if method != clipboardMethodSystem {
		t.Fatalf("expected system method, got %v", method)
	}
	if len(*calls) != 1 {
		t.Fatalf("expected no OSC52 fallback call, got %v", *calls)
	}
}

func TestCopyTextToClipboardFallsBackToOSC52(t *testing.T) {
	calls := stubClipboard(t, errors.New("exit status 1"), nil)

	method, err := copyTextToClipboard("hello")
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if method != clipboardMethodOSC52 {
		t.Fatalf("expected OSC52 method, got %v", method)
	}
	if len(*calls) != 2 {
		t.Fatalf("expected fallback call, got %v", *calls)
	}
}

func TestCopyTextToClipboardCombinesErrors(t *testing.T) {
	stubClipboard(t, errors.New("no helper"), errors.New("no tty"))

	_, err := copyTextToClipboard("hello")
	if err == nil {
		t.Fatal("expected combined error")
	}
	if !strings.Contains(err.Error(), "no helper") || !strings.Contains(err.Error(), "OSC52 fallback failed") {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestCopyTextToClipboardExplainsHeadlessFailure(t *testing.T) {
	t.Setenv("DISPLAY", "")
	t.Setenv("WAYLAND_DISPLAY", "")
	stubClipboard(t, errors.New("exit status 1"), errors.New("no tty"))

	_, err := copyTextToClipboard("hello")
	if err == nil {
		t.Fatal("expected combined error")
	}
	if !strings.Contains(err.Error(), "no GUI clipboard available") {
		t.Fatalf("unexpected error: %v", err)
	}
}
