package quiz2pdf

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"os/exec"

	"github.com/alnah/go-quiz2pdf/internal/fileutil"
)

// latexDocument wraps a rubric section in a minimal article-class document
// so Pandoc accepts it standalone.
const latexDocument = `\documentclass{article}
\usepackage{amsmath}
\usepackage{amsfonts}
\usepackage{amsthm}
\usepackage{graphicx}
\begin{document}
%s
\end{document}
`

// latexConverter abstracts LaTeX to HTML conversion to allow different backends.
type latexConverter interface {
	ToHTML(ctx context.Context, latex string) (string, error)
}

// CommandRunner abstracts command execution to enable testing without real
// subprocesses.
type CommandRunner interface {
	Run(ctx context.Context, name string, args ...string) (stdout string, stderr string, err error)
}

// ExecRunner implements CommandRunner using os/exec.
type ExecRunner struct{}

// Run executes the command, capturing stdout and stderr separately.
func (r *ExecRunner) Run(ctx context.Context, name string, args ...string) (string, string, error) {
	cmd := exec.CommandContext(ctx, name, args...)

	var stdout bytes.Buffer
	cmd.Stdout = &stdout

	stderrPipe, err := cmd.StderrPipe()
	if err != nil {
		return "", "", fmt.Errorf("creating stderr pipe: %w", err)
	}

	if err := cmd.Start(); err != nil {
		return "", "", fmt.Errorf("starting command: %w", err)
	}

	stderrContent, err := io.ReadAll(stderrPipe)
	if err != nil {
		return "", "", fmt.Errorf("reading stderr: %w", err)
	}

	err = cmd.Wait()
	return stdout.String(), string(stderrContent), err
}

// PandocConverter converts LaTeX to HTML by invoking the Pandoc CLI.
type PandocConverter struct {
	Runner CommandRunner
}

// NewPandocConverter creates a PandocConverter with a real command runner.
func NewPandocConverter() *PandocConverter {
	return &PandocConverter{Runner: &ExecRunner{}}
}

// ToHTML converts normalized rubric LaTeX to a standalone HTML5 document.
// The --mathjax flag makes Pandoc emit math as \(...\) spans the browser-side
// math renderer picks up instead of attempting its own layout.
func (c *PandocConverter) ToHTML(ctx context.Context, latex string) (string, error) {
	if latex == "" {
		return "", ErrEmptyLatex
	}

	tmpPath, cleanup, err := fileutil.WriteTempFile(fmt.Sprintf(latexDocument, latex), "tex")
	if err != nil {
		return "", err
	}
	defer cleanup()

	stdout, stderr, err := c.Runner.Run(ctx, "pandoc", tmpPath,
		"--from=latex", "--to=html5", "--standalone", "--mathjax")
	if err != nil {
		return "", fmt.Errorf("%w: %s: %v", ErrPandocConversion, stderr, err)
	}

	return stdout, nil
}
