package main

import (
	"context"
	"fmt"
	"io"

	"github.com/fatih/color"
	"github.com/joho/godotenv"
)

type cliApp struct {
	stdout io.Writer
	stderr io.Writer
	stdin  io.Reader
	opts   options
}

var (
	okColor   = color.New(color.FgGreen)
	warnColor = color.New(color.FgYellow)
	failColor = color.New(color.FgRed)
)

func (app *cliApp) warnf(format string, args ...any) {
	warnColor.Fprintf(app.stderr, "warning: "+format+"\n", args...)
}

func run(argv []string, stdout, stderr io.Writer) error {
	_ = godotenv.Load()
	cmd := newRootCmd(stdout, stderr)
	cmd.SetArgs(argv)
	return cmd.Execute()
}

// threadReference is appended to the caption of every destination upload
// once the thread-seed upload has produced a permalink.
func threadReference(permalink string) string {
	return fmt.Sprintf("\n\n<%s|Originally shared in this thread>\n_This diagram was rendered and posted automatically._", permalink)
}

func (app *cliApp) execute(ctx context.Context) error {
	cfg, err := app.buildConfig()
	if err != nil {
		return err
	}

	artifact := cfg.ArtifactPath()
	r := &renderer{bin: cfg.RendererBin}
	if err := r.render(ctx, cfg, artifact); err != nil {
		return err
	}
	fmt.Fprintf(app.stdout, "rendered %s diagram to %s\n", cfg.Format, artifact)

	client := newSlackClient(cfg.APIBaseURL, cfg.Token)

	caption := cfg.Comment
	if cfg.OriginChannel != "" && cfg.OriginThread != "" {
		seed := uploadRequest{
			Channel:  cfg.OriginChannel,
			ThreadTS: cfg.OriginThread,
			Comment:  caption,
			Path:     artifact,
		}
		res, err := client.upload(ctx, seed)
		switch {
		case err != nil:
			app.warnf("could not share into the originating thread: %v", err)
		case res.Permalink != "":
			caption += threadReference(res.Permalink)
			okColor.Fprintf(app.stdout, "shared into thread %s\n", cfg.OriginThread)
		}
	}

	outcomes := app.deliver(ctx, client, cfg.Destinations, caption, artifact)
	failed := 0
	for _, o := range outcomes {
		if o.err != nil {
			failed++
		}
	}
	if failed > 0 {
		app.warnf("%d of %d destination(s) failed", failed, len(outcomes))
	} else {
		fmt.Fprintf(app.stdout, "delivered to %d destination(s)\n", len(outcomes))
	}
	// Upload failures are reported above but never change the exit status;
	// only validation and rendering are load-bearing for it.
	return nil
}

type outcome struct {
	dest destination
	id   string
	err  error
}

// deliver resolves and uploads to each destination in order. A failure for
// one destination never prevents the rest from being attempted.
func (app *cliApp) deliver(ctx context.Context, client *slackClient, dests []destination, caption, artifact string) []outcome {
	outcomes := make([]outcome, 0, len(dests))
	for _, dest := range dests {
		id, err := resolveDestination(ctx, client, dest)
		if err != nil {
			failColor.Fprintf(app.stderr, "skipping %s: %v\n", dest.raw, err)
			outcomes = append(outcomes, outcome{dest: dest, err: err})
			continue
		}
		if _, err := client.upload(ctx, uploadRequest{Channel: id, Comment: caption, Path: artifact}); err != nil {
			failColor.Fprintf(app.stderr, "upload to %s failed: %v\n", dest.raw, err)
			outcomes = append(outcomes, outcome{dest: dest, id: id, err: err})
			continue
		}
		okColor.Fprintf(app.stdout, "uploaded to %s\n", dest.raw)
		outcomes = append(outcomes, outcome{dest: dest, id: id})
	}
	return outcomes
}

func resolveDestination(ctx context.Context, client *slackClient, dest destination) (string, error) {
	switch dest.kind {
	case destChannel:
		return client.lookupChannel(ctx, dest.name)
	case destUser:
		return client.lookupUser(ctx, dest.name)
	default:
		return dest.name, nil
	}
}
