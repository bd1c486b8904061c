package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"
	cobradoc "github.com/spf13/cobra/doc"
)

// Version is overridden at release time via -ldflags.
var Version = "0.1.0"

const rootLongDesc = `
go-mermaidcast renders a Mermaid diagram with the Mermaid CLI (mmdc) and
shares the resulting image to one or more Slack destinations.

Destinations are a comma-separated list: #name looks up a channel by name,
@name looks up a user by name, and anything else is treated as an
already-resolved Slack ID. A failed lookup or upload skips that destination
and the remaining ones are still attempted.

When SLACK_CHANNEL_ID and SLACK_THREAD_TS are present in the environment,
the diagram is first shared into that thread and the resulting permalink is
referenced in the caption of every other upload.

Every parameter can also come from the environment (diagram_content,
slack_destination, comment, output_format, theme, background_color,
custom_css); a .env file in the working directory is loaded on startup.
The SLACK_API_TOKEN environment variable must hold a bot token with
channels:read, users:read, and files:write scopes.
`

func newRootCmd(stdout, stderr io.Writer) *cobra.Command {
	app := &cliApp{stdout: stdout, stderr: stderr, stdin: os.Stdin}
	cmd := &cobra.Command{
		Use:           "go-mermaidcast [flags]",
		Short:         "Render a Mermaid diagram and share it on Slack",
		Long:          strings.TrimSpace(rootLongDesc),
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	cmd.DisableAutoGenTag = true
	cmd.Version = Version
	cmd.SetOut(stdout)
	cmd.SetErr(io.Discard)
	cmd.CompletionOptions.DisableDefaultCmd = true

	flags := cmd.Flags()
	flags.StringVarP(&app.opts.diagram, "diagram", "d", "", "Mermaid diagram source text")
	flags.StringVar(&app.opts.diagramFile, "diagram-file", "", "read diagram source from a file (- for stdin)")
	flags.StringVar(&app.opts.destinations, "to", "", "comma-separated destinations (#channel, @user, or raw ID)")
	flags.StringVarP(&app.opts.comment, "comment", "m", "", "caption posted with the diagram")
	flags.StringVar(&app.opts.format, "format", "", "output format: png, svg, or pdf (default png)")
	flags.StringVar(&app.opts.theme, "theme", "", "mermaid theme: default, dark, forest, or neutral")
	flags.StringVar(&app.opts.background, "background", "", "background color (#RGB/#RGBA/#RRGGBB/#RRGGBBAA or transparent)")
	flags.StringVar(&app.opts.css, "css", "", "custom stylesheet text (svg output only)")
	flags.StringVar(&app.opts.defaultCSS, "default-css", "default.css", "default stylesheet used when --css is not set")
	flags.StringVar(&app.opts.renderer, "renderer", "mmdc", "mermaid CLI executable")
	flags.StringVar(&app.opts.scratchDir, "scratch-dir", "", "directory for the render artifact (default: system temp dir)")
	flags.StringVar(&app.opts.apiURL, "api-url", defaultAPIBaseURL, "Slack API base URL")

	cmd.RunE = func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		if ctx == nil {
			ctx = context.Background()
		}
		return app.execute(ctx)
	}

	cmd.AddCommand(newCompletionCmd(cmd))
	cmd.AddCommand(newDocsCmd(cmd))
	return cmd
}

func newCompletionCmd(root *cobra.Command) *cobra.Command {
	const (
		longDesc = `Generate shell completion scripts for go-mermaidcast.

The output should be evaluated by your shell. For example:

  # bash
  go-mermaidcast completion bash > /usr/local/etc/bash_completion.d/go-mermaidcast

  # zsh
  go-mermaidcast completion zsh > "${fpath[1]}/_go-mermaidcast"

  # fish
  go-mermaidcast completion fish | source

  # PowerShell
  go-mermaidcast completion powershell | Out-String | Invoke-Expression
`
	)
	cmd := &cobra.Command{
		Use:                   "completion [bash|zsh|fish|powershell]",
		Short:                 "Generate shell completion scripts",
		Long:                  longDesc,
		Args:                  cobra.ExactValidArgs(1),
		ValidArgs:             []string{"bash", "zsh", "fish", "powershell"},
		SilenceUsage:          true,
		SilenceErrors:         true,
		DisableFlagsInUseLine: true,
	}
	cmd.RunE = func(cmd *cobra.Command, args []string) error {
		switch args[0] {
		case "bash":
			return root.GenBashCompletion(cmd.OutOrStdout())
		case "zsh":
			return root.GenZshCompletion(cmd.OutOrStdout())
		case "fish":
			return root.GenFishCompletion(cmd.OutOrStdout(), true)
		case "powershell":
			return root.GenPowerShellCompletion(cmd.OutOrStdout())
		default:
			return fmt.Errorf("unsupported shell %q", args[0])
		}
	}
	return cmd
}

func newDocsCmd(root *cobra.Command) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "gen-docs [directory]",
		Short: "Generate Markdown reference docs for the CLI",
		Long: strings.TrimSpace(`
Write a Markdown file per command (suitable for publishing CLI docs).

Example:

  go-mermaidcast gen-docs ./docs/cli
`),
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	cmd.RunE = func(cmd *cobra.Command, args []string) error {
		target := args[0]
		if target == "" {
			return fmt.Errorf("target directory is required")
		}
		if err := os.MkdirAll(target, 0o755); err != nil {
			return err
		}
		return cobradoc.GenMarkdownTree(root, target)
	}
	return cmd
}
