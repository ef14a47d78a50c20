//go:build darwin

package main

import (
	"os/exec"
	"strings"
)

func sendOSNotification(title, body string) {
	// Double quotes would end the AppleScript string literals early.
	quote := strings.NewReplacer(`\`, `\\`, `"`, `\"`)
	script := `display notification "` + quote.Replace(body) +
		`" with title "` + quote.Replace(title) + `"`
	_ = exec.Command("osascript", "-e", script).Start()
}
