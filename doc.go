// # go-mermaidcast
//
// `go-mermaidcast` turns Mermaid diagram markup into an image via the
// Mermaid CLI (`mmdc`) and shares the result on Slack. It is deliberately
// thin glue: validate inputs, shell out to the renderer once, and walk a
// list of destinations issuing upload calls — rendering and messaging
// semantics are owned entirely by `mmdc` and the Slack Web API.
//
// Key behavior:
//
//   - output formats `png` (default), `svg`, and `pdf`; an unknown format
//     aborts the run before anything else happens.
//   - optional theme (`default`, `dark`, `forest`, `neutral`) and background
//     color (`#RGB`/`#RGBA`/`#RRGGBB`/`#RRGGBBAA` or `transparent`); invalid
//     values degrade to a warning and the corresponding renderer flag is
//     simply omitted.
//   - custom CSS applies to SVG output only; without it a pre-existing
//     default stylesheet is used when present.
//   - destinations are comma-separated: `#name` resolves a channel by name,
//     `@name` resolves a user by name, anything else is passed through as a
//     raw Slack ID. A destination that cannot be resolved or uploaded is
//     skipped, and the rest of the list is still processed.
//   - with `SLACK_CHANNEL_ID` and `SLACK_THREAD_TS` set, the diagram is
//     first shared into that thread and the permalink is referenced in every
//     subsequent caption.
//
// ## Usage
//
//	go-mermaidcast --diagram 'graph TD; A-->B' --to '#general,@alice' -m "Deploy flow"
//
// Every parameter can also come from the environment (`diagram_content`,
// `slack_destination`, `comment`, `output_format`, `theme`,
// `background_color`, `custom_css`), which makes the tool easy to drive
// from automation platforms that pass arguments as env vars. A `.env` file
// in the working directory is loaded on startup. The bot token is always
// read from `SLACK_API_TOKEN`.
//
// ## Exit status
//
// The exit code reflects validation and rendering only: missing inputs, an
// invalid output format, a renderer failure, or a missing artifact exit 1.
// Per-destination upload failures are logged (with a trailing summary) but
// leave the exit code at 0.
//
// ## Shell completion and CLI docs
//
// Autocompletion is provided via Cobra's generators:
//
//	go-mermaidcast completion bash        # bash
//	go-mermaidcast completion zsh         # zsh
//	go-mermaidcast completion fish | source
//	go-mermaidcast completion powershell | Out-String | Invoke-Expression
//
// and `go-mermaidcast gen-docs ./docs/cli` writes one Markdown reference
// file per command.
package main
