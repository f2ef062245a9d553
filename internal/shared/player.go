package shared

import (
	"fmt"
	"os"
	"os/exec"
	"runtime"
)

var (
	getRuntime = func() string { return runtime.GOOS }
	startCmd   = func(cmd *exec.Cmd) error { return cmd.Start() }
)

// PlayerCommand builds the [exec.Cmd] that plays path.
//
// When command is empty the platform opener is used (open, xdg-open or start), which hands the file to the default video player.
func PlayerCommand(command string, args []string, path string) (*exec.Cmd, error) {
	if command != "" {
		argv := append(append([]string{}, args...), path)
		return exec.Command(command, argv...), nil
	}

	rt := getRuntime()
	switch rt {
	case "darwin":
		return exec.Command("open", path), nil
	case "linux", "freebsd", "openbsd", "netbsd":
		return exec.Command("xdg-open", path), nil
	case "windows":
		return exec.Command("cmd", "/c", "start", "", path), nil
	default:
		return nil, fmt.Errorf("%w: unsupported platform: %s", ErrPlayerUnavailable, rt)
	}
}

// OpenPlayer starts an external player for the video at path without waiting for it to exit.
func OpenPlayer(command string, args []string, path string) error {
	info, err := os.Stat(path)
	if err != nil {
		return fmt.Errorf("%w: %s", ErrVideoNotFound, path)
	}
	if info.IsDir() {
		return fmt.Errorf("%w: %s", ErrNotRegularFile, path)
	}

	cmd, err := PlayerCommand(command, args, path)
	if err != nil {
		return err
	}

	if err := startCmd(cmd); err != nil {
		return fmt.Errorf("%w: failed to start %s: %v", ErrPlayerUnavailable, cmd.Path, err)
	}

	// Reap the child so it doesn't linger as a zombie.
	go func() { _ = cmd.Wait() }()

	return nil
}
