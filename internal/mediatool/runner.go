package mediatool

import (
	"context"
	"fmt"
	"os/exec"
	"strings"
)

// Runner abstracts subprocess invocation so tests can stub the external tool.
type Runner interface {
	Run(ctx context.Context, name string, args ...string) ([]byte, error)
}

// ExecRunner invokes binaries via os/exec, returning combined output.
type ExecRunner struct{}

func (ExecRunner) Run(ctx context.Context, name string, args ...string) ([]byte, error) {
	cmd := exec.CommandContext(ctx, name, args...)
	out, err := cmd.CombinedOutput()
	if err != nil {
		return out, fmt.Errorf("%s %s: %w\n%s", name, strings.Join(args, " "), err, trimOutput(out))
	}
	return out, nil
}

// trimOutput keeps error messages readable when ffmpeg dumps long banners.
func trimOutput(out []byte) string {
	const maxLen = 2048
	text := strings.TrimSpace(string(out))
	if len(text) <= maxLen {
		return text
	}
	return "…" + text[len(text)-maxLen:]
}
