//go:build windows

package main

import (
	"os/exec"
	"strings"
)

// psQuote wraps s as a PowerShell single-quoted literal, where only the
// quote character itself needs doubling.
func psQuote(s string) string {
	return "'" + strings.ReplaceAll(s, "'", "''") + "'"
}

func sendOSNotification(title, body string) {
	// A Windows Forms tray balloon needs no WinRT toast APIs or extra
	// modules, so it behaves the same from Windows 7 through 11.
	script := strings.Join([]string{
		`Add-Type -AssemblyName System.Windows.Forms`,
		`$n = New-Object System.Windows.Forms.NotifyIcon`,
		`$n.Icon = [System.Drawing.SystemIcons]::Information`,
		`$n.BalloonTipTitle = ` + psQuote(title),
		`$n.BalloonTipText = ` + psQuote(body),
		`$n.Visible = $true`,
		`$n.ShowBalloonTip(5000)`,
		`Start-Sleep -Milliseconds 5100`,
		`$n.Dispose()`,
	}, ";")
	_ = exec.Command("powershell", "-NoProfile", "-NonInteractive", "-Command", script).Start()
}
