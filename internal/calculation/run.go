package calculation

import (
	"bytes"
	"context"
	"os"
	"os/exec"
	"strings"

	"github.com/pkg/errors"

	"github.com/armadaproject/abilaunch/internal/common/util"
)

// Run executes the calculation in its working directory and waits for it to finish.
// The files file is fed on standard input; standard output goes to the log file and standard error
// to the stderr file, both truncated first.
func (c *Calculation) Run(ctx context.Context) error {
	if c.job.Executable == "" {
		return errors.New("no executable set")
	}
	stdin, err := os.Open(c.FilesPath())
	if err != nil {
		return errors.Wrap(err, "calculation has not been made")
	}
	defer util.CloseResource(c.FilesPath(), stdin)
	stdout, err := os.Create(c.job.Log)
	if err != nil {
		return errors.WithStack(err)
	}
	defer util.CloseResource(c.job.Log, stdout)
	stderr, err := os.Create(c.job.Stderr)
	if err != nil {
		return errors.WithStack(err)
	}
	defer util.CloseResource(c.job.Stderr, stderr)

	args := c.job.CommandLine()
	cmd := exec.CommandContext(ctx, args[0], args[1:]...)
	cmd.Dir = c.workDir
	cmd.Stdin = stdin
	cmd.Stdout = stdout
	cmd.Stderr = stderr
	c.logger.Infof("running %s", strings.Join(args, " "))
	if err := cmd.Run(); err != nil {
		return errors.Wrapf(err, "%s failed, see %s", args[0], c.job.Stderr)
	}
	return nil
}

// Submit hands the job file to the queue.
func (c *Calculation) Submit(ctx context.Context) error {
	if _, err := os.Stat(c.JobFilePath()); err != nil {
		return errors.Wrap(err, "calculation has not been made")
	}
	var output bytes.Buffer
	cmd := exec.CommandContext(ctx, c.submitCommand, c.JobFilePath())
	cmd.Dir = c.workDir
	cmd.Stdout = &output
	cmd.Stderr = &output
	if err := cmd.Run(); err != nil {
		return errors.Wrapf(err, "%s %s failed: %s", c.submitCommand, c.JobFilePath(), strings.TrimSpace(output.String()))
	}
	c.logger.Infof("submitted %s: %s", c.JobFilePath(), strings.TrimSpace(output.String()))
	return nil
}
