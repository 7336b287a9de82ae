package cmd

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
)

// ServiceCommand installs padlink as a background watcher.
type ServiceCommand struct {
	Install   ServiceInstall   `cmd:"" help:"Install and start the padlink watcher service"`
	Uninstall ServiceUninstall `cmd:"" help:"Stop and remove the padlink watcher service"`
}

type ServiceInstall struct {
	Backend string `help:"Controller backend the service watches with" enum:"auto,linuxjs,sdl" default:"auto"`
	FPS     int    `help:"Frames per second of the service polling loop" default:"60"`
}

type ServiceUninstall struct{}

func (s *ServiceInstall) Run(logger *slog.Logger) error {
	exe, err := currentExecutable()
	if err != nil {
		return err
	}
	return install(logger, unitContent(exe, s.watchArgs()))
}

func (s *ServiceUninstall) Run(logger *slog.Logger) error {
	return uninstall(logger)
}

func (s *ServiceInstall) watchArgs() []string {
	args := []string{"watch", "--no-status"}
	if s.Backend != "" && s.Backend != "auto" {
		args = append(args, "--backend="+s.Backend)
	}
	if s.FPS > 0 {
		args = append(args, fmt.Sprintf("--fps=%d", s.FPS))
	}
	return args
}

func unitContent(exePath string, args []string) string {
	return fmt.Sprintf(`[Unit]
Description=padlink gamepad watcher
After=systemd-udevd.service

[Service]
Type=simple
ExecStart=%q %s
WorkingDirectory=%s
Restart=on-failure

[Install]
WantedBy=multi-user.target
`, exePath, strings.Join(args, " "), filepath.Dir(exePath))
}

func currentExecutable() (string, error) {
	exe, err := os.Executable()
	if err != nil {
		return "", fmt.Errorf("failed to resolve executable: %w", err)
	}
	if resolved, err := filepath.EvalSymlinks(exe); err == nil {
		exe = resolved
	}
	return exe, nil
}
