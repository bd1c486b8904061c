package main

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"os/exec"
	"strings"
)

// renderer invokes the external Mermaid CLI. The diagram source is fed on
// stdin; flags are appended only when they resolved to a value.
type renderer struct {
	bin string
}

func (r *renderer) args(cfg *config, outPath string) []string {
	args := []string{"--input", "-", "--output", outPath}
	if cfg.Theme != "" {
		args = append(args, "--theme", cfg.Theme)
	}
	if cfg.Background != "" {
		args = append(args, "--backgroundColor", cfg.Background)
	}
	if cfg.Stylesheet != "" {
		args = append(args, "--cssFile", cfg.Stylesheet)
	}
	return args
}

// render runs the renderer once. Success requires both a zero exit status
// and the artifact existing at outPath afterwards.
func (r *renderer) render(ctx context.Context, cfg *config, outPath string) error {
	cmd := exec.CommandContext(ctx, r.bin, r.args(cfg, outPath)...)
	cmd.Stdin = strings.NewReader(cfg.Source)
	var output bytes.Buffer
	cmd.Stdout = &output
	cmd.Stderr = &output
	if err := cmd.Run(); err != nil {
		msg := strings.TrimSpace(output.String())
		if msg == "" {
			return fmt.Errorf("%w: %s: %v", ErrRenderFailed, r.bin, err)
		}
		return fmt.Errorf("%w: %s: %v: %s", ErrRenderFailed, r.bin, err, msg)
	}
	if _, err := os.Stat(outPath); err != nil {
		return fmt.Errorf("%w: %s exited 0 but %s does not exist", ErrOutputMissing, r.bin, outPath)
	}
	return nil
}
