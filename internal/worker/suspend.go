package worker

import (
	"context"
	"fmt"
	"os"
)

// SysfsSuspender issues the suspend request by writing "mem" to
// /sys/power/state, the same non-interactive mechanism systemd-logind's
// Suspend() D-Bus method ultimately triggers. A concrete D-Bus-backed
// Suspender is an external collaborator; this one lets the daemon run
// standalone on a Linux host without it.
type SysfsSuspender struct {
	// Path defaults to /sys/power/state.
	Path string
}

func (s SysfsSuspender) path() string {
	if s.Path != "" {
		return s.Path
	}
	return "/sys/power/state"
}

func (s SysfsSuspender) Suspend(ctx context.Context) error {
	f, err := os.OpenFile(s.path(), os.O_WRONLY, 0)
	if err != nil {
		return fmt.Errorf("worker: open %s: %w", s.path(), err)
	}
	defer f.Close()
	if _, err := f.WriteString("mem"); err != nil {
		return fmt.Errorf("worker: write %s: %w", s.path(), err)
	}
	return nil
}
