package app

import (
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/atotto/clipboard"
	osc52 "github.com/aymanbagabas/go-osc52/v2"
)

type clipboardMethod uint8

const (
	clipboardMethodSystem clipboardMethod = iota
	clipboardMethodOSC52
)

// Swapped out in tests.
var (
	clipboardWriteAll   = clipboard.WriteAll
	clipboardWriteOSC52 = writeOSC52Clipboard
)

// copyTextToClipboard prefers the system clipboard and falls back to an
// OSC52 escape sequence, which still works over SSH and inside multiplexers
// where no clipboard helper is installed.
func copyTextToClipboard(text string) (clipboardMethod, error) {
	sysErr := clipboardWriteAll(text)
	if sysErr == nil {
		return clipboardMethodSystem, nil
	}
	oscErr := clipboardWriteOSC52(text)
	if oscErr == nil {
		return clipboardMethodOSC52, nil
	}
	return clipboardMethodSystem, fmt.Errorf("%s; OSC52 fallback failed: %s", describeSystemClipboardError(sysErr), strings.TrimSpace(oscErr.Error()))
}

func writeOSC52Clipboard(text string) error {
	if reason := osc52Blocked(); reason != "" {
		return errors.New(reason)
	}
	tty, err := os.OpenFile("/dev/tty", os.O_WRONLY, 0)
	if err != nil {
		return fmt.Errorf("open /dev/tty: %w", err)
	}
	defer tty.Close()
	return writeOSC52Sequence(tty, text)
}

// writeOSC52Sequence picks the escape wrapping the running multiplexer
// expects. Under tmux both the plain and the tmux-wrapped form go out,
// since configurations differ on whether passthrough is enabled.
func writeOSC52Sequence(w io.Writer, text string) error {
	switch {
	case os.Getenv("TMUX") != "":
		if _, err := osc52.New(text).WriteTo(w); err != nil {
			return err
		}
		_, err := osc52.New(text).Tmux().WriteTo(w)
		return err
	case strings.HasPrefix(strings.ToLower(os.Getenv("TERM")), "screen"):
		_, err := osc52.New(text).Screen().WriteTo(w)
		return err
	default:
		_, err := osc52.New(text).WriteTo(w)
		return err
	}
}

// osc52Blocked reports why OSC52 must not be attempted, or "" if it may.
func osc52Blocked() string {
	switch strings.ToLower(strings.TrimSpace(os.Getenv("COCKPIT_DISABLE_OSC52"))) {
	case "1", "true", "yes", "on":
		return "OSC52 disabled via COCKPIT_DISABLE_OSC52"
	}
	term := strings.TrimSpace(os.Getenv("TERM"))
	if term == "" || strings.EqualFold(term, "dumb") {
		return "terminal does not support OSC52"
	}
	return ""
}

// describeSystemClipboardError rewrites the opaque "exit status 1" the
// clipboard helper produces on headless hosts into something actionable.
func describeSystemClipboardError(err error) string {
	msg := strings.TrimSpace(err.Error())
	if msg != "exit status 1" {
		return "system clipboard failed: " + msg
	}
	if os.Getenv("DISPLAY") == "" && os.Getenv("WAYLAND_DISPLAY") == "" {
		return "no GUI clipboard available (DISPLAY/WAYLAND_DISPLAY unset)"
	}
	return "system clipboard helper exited with status 1"
}
