package main

import (
	"fmt"
	"os"
	"strconv"
	"strings"
)

const (
	osc8Start = "\x1b]8;;"
	osc8Close = "\x1b\\"
	osc8End   = "\x1b]8;;\x1b\\"
)

// hyperlink wraps text in an OSC 8 link to target. Targets carrying escape
// or bell bytes are left unlinked.
func hyperlink(target, text string) string {
	if target == "" || strings.ContainsAny(target, "\x1b\a") {
		return text
	}
	return osc8Start + target + osc8Close + text + osc8End
}

// detectOSC8 reports whether the terminal likely renders OSC 8 hyperlinks.
func detectOSC8() bool {
	if os.Getenv("OSC8") == "0" {
		return false
	}
	if os.Getenv("DOMTERM") != "" || os.Getenv("WT_SESSION") != "" {
		return true
	}
	switch os.Getenv("TERM_PROGRAM") {
	case "iTerm.app", "WezTerm", "vscode", "ghostty":
		return true
	}
	if strings.Contains(strings.ToLower(os.Getenv("TERM")), "kitty") {
		return true
	}
	if vte := os.Getenv("VTE_VERSION"); vte != "" {
		if n, err := strconv.Atoi(vte); err == nil && n >= 5000 {
			return true
		}
	}
	return false
}

// resolveMode maps an auto|on|off flag value to a bool, calling detect for
// auto.
func resolveMode(mode string, detect func() bool) (bool, error) {
	switch strings.ToLower(strings.TrimSpace(mode)) {
	case "", "auto":
		return detect(), nil
	case "on", "true", "1", "yes":
		return true, nil
	case "off", "false", "0", "no":
		return false, nil
	default:
		return false, fmt.Errorf("expected auto|on|off")
	}
}
