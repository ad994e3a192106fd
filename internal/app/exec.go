package app

import (
	"bytes"
	"context"
	"os/exec"
	"time"

	"go.uber.org/zap"

	"github.com/homedeck/homedeck/internal/logging"
)

// execTimeout bounds a button-triggered shell command.
const execTimeout = 30 * time.Second

// runCommand executes a configured shell command. It is fire-and-forget;
// output and failures only surface in the log.
func runCommand(command string) {
	ctx, cancel := context.WithTimeout(context.Background(), execTimeout)
	defer cancel()

	c := exec.CommandContext(ctx, "sh", "-c", command)
	var outBuf, errBuf bytes.Buffer
	c.Stdout = &outBuf
	c.Stderr = &errBuf

	err := c.Run()
	if err != nil {
		logging.Warn("command failed",
			zap.String("command", command),
			zap.String("stderr", errBuf.String()),
			zap.Error(err),
		)
		return
	}
	logging.Debug("command finished",
		zap.String("command", command),
		zap.String("stdout", outBuf.String()),
	)
}
