//go:build windows

package main

import (
	"log/slog"
	"os"

	"github.com/Alia5/padlink/internal/util"
)

// A double click from Explorer has no useful console, so open the status
// window instead.
func init() {
	if !util.IsRunFromGUI() {
		return
	}
	args := os.Args
	if len(args) < 2 || args[1] != "watch" {
		slog.Info("Detected GUI startup, opening the watcher window")
		newArgs := make([]string, 0, len(args)+2)
		newArgs = append(newArgs, args[0], "watch", "--backend=ebiten")
		newArgs = append(newArgs, args[1:]...)
		os.Args = newArgs
	}
	util.HideConsoleWindow()
}
