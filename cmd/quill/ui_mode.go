package main

import (
	"fmt"
	"os"
	"strings"
)

// uiMode controls whether checking runs behind the live progress view.
type uiMode string

const (
	uiModeAuto uiMode = "auto"
	uiModeOn   uiMode = "on"
	uiModeOff  uiMode = "off"
)

// readUIMode parses the --progress flag. The empty string counts as auto so
// scripts can leave the flag unset.
func readUIMode(raw string) (uiMode, error) {
	switch strings.TrimSpace(strings.ToLower(raw)) {
	case "", "auto":
		return uiModeAuto, nil
	case "on":
		return uiModeOn, nil
	case "off":
		return uiModeOff, nil
	}
	return "", fmt.Errorf("invalid --progress value %q (expected auto|on|off)", raw)
}

// shouldUseTUI resolves auto against whether stdout is a terminal.
func shouldUseTUI(mode uiMode) bool {
	switch mode {
	case uiModeOn:
		return true
	case uiModeOff:
		return false
	}
	return isTerminal(os.Stdout)
}
