package main

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"regexp"
	"strings"
)

type options struct {
	diagram      string
	diagramFile  string
	destinations string
	comment      string
	format       string
	theme        string
	background   string
	css          string
	defaultCSS   string
	renderer     string
	scratchDir   string
	apiURL       string
}

// Format is the renderer output format. Unlike themes and background
// colors, an unknown format aborts the run.
type Format int

const (
	FormatPNG Format = iota
	FormatSVG
	FormatPDF
)

func (f Format) String() string {
	switch f {
	case FormatSVG:
		return "svg"
	case FormatPDF:
		return "pdf"
	default:
		return "png"
	}
}

// Ext returns the artifact file extension for the format.
func (f Format) Ext() string { return f.String() }

func parseFormat(s string) (Format, error) {
	switch s {
	case "", "png":
		return FormatPNG, nil
	case "svg":
		return FormatSVG, nil
	case "pdf":
		return FormatPDF, nil
	default:
		return FormatPNG, fmt.Errorf("%w: %q (expected png, svg, or pdf)", ErrInvalidFormat, s)
	}
}

var mermaidThemes = map[string]struct{}{
	"default": {},
	"dark":    {},
	"forest":  {},
	"neutral": {},
}

// backgroundPattern accepts #RGB, #RGBA, #RRGGBB, and #RRGGBBAA.
var backgroundPattern = regexp.MustCompile(`^#(?:[0-9a-fA-F]{3}|[0-9a-fA-F]{4}|[0-9a-fA-F]{6}|[0-9a-fA-F]{8})$`)

func validBackground(s string) bool {
	return s == "transparent" || backgroundPattern.MatchString(s)
}

type destKind int

const (
	destChannel destKind = iota
	destUser
	destRawID
)

// destination is one entry from the comma-separated destination list.
// Channel and user references still need a lookup call; raw IDs are used
// verbatim.
type destination struct {
	kind destKind
	name string
	raw  string
}

func parseDestinations(list string) []destination {
	var dests []destination
	for _, token := range strings.Split(list, ",") {
		token = strings.TrimSpace(token)
		if token == "" {
			continue
		}
		switch {
		case strings.HasPrefix(token, "#"):
			dests = append(dests, destination{kind: destChannel, name: token[1:], raw: token})
		case strings.HasPrefix(token, "@"):
			dests = append(dests, destination{kind: destUser, name: token[1:], raw: token})
		default:
			dests = append(dests, destination{kind: destRawID, name: token, raw: token})
		}
	}
	return dests
}

// config is the normalized, immutable parameter set the pipeline runs on.
type config struct {
	Source       string
	Destinations []destination
	Comment      string
	Format       Format
	Theme        string // empty means no theme flag
	Background   string // empty means no background flag
	Stylesheet   string // empty means no stylesheet flag

	Token         string
	OriginChannel string
	OriginThread  string

	RendererBin string
	ScratchDir  string
	APIBaseURL  string
}

// ArtifactPath is the fixed scratch location of the render artifact for
// this invocation. Overwritten on every run.
func (c *config) ArtifactPath() string {
	return filepath.Join(c.ScratchDir, "diagram."+c.Format.Ext())
}

func fallbackEnv(value, key string) string {
	if value != "" {
		return value
	}
	return os.Getenv(key)
}

// buildConfig validates flags and environment into a config, or returns a
// fatal error. Theme, background, and stylesheet problems degrade with a
// warning instead of failing; format problems do not.
func (app *cliApp) buildConfig() (*config, error) {
	opts := app.opts

	source := opts.diagram
	if source == "" && opts.diagramFile != "" {
		data, err := app.readDiagramFile(opts.diagramFile)
		if err != nil {
			return nil, err
		}
		source = string(data)
	}
	source = fallbackEnv(source, "diagram_content")
	if strings.TrimSpace(source) == "" {
		return nil, fmt.Errorf("%w: diagram content (set --diagram, --diagram-file, or diagram_content)", ErrMissingInput)
	}

	destList := fallbackEnv(opts.destinations, "slack_destination")
	dests := parseDestinations(destList)
	if len(dests) == 0 {
		return nil, fmt.Errorf("%w: destination list (set --to or slack_destination)", ErrMissingInput)
	}

	token := os.Getenv("SLACK_API_TOKEN")
	if token == "" {
		return nil, fmt.Errorf("%w: SLACK_API_TOKEN environment variable", ErrMissingInput)
	}

	format, err := parseFormat(fallbackEnv(opts.format, "output_format"))
	if err != nil {
		return nil, err
	}

	theme := fallbackEnv(opts.theme, "theme")
	if theme != "" {
		if _, ok := mermaidThemes[theme]; !ok {
			app.warnf("unknown theme %q, rendering without a theme (expected default, dark, forest, or neutral)", theme)
			theme = ""
		}
	}

	background := fallbackEnv(opts.background, "background_color")
	if background != "" && !validBackground(background) {
		app.warnf("invalid background color %q, rendering without a background (expected #RGB/#RGBA/#RRGGBB/#RRGGBBAA or transparent)", background)
		background = ""
	}

	cfg := &config{
		Source:        source,
		Destinations:  dests,
		Comment:       fallbackEnv(opts.comment, "comment"),
		Format:        format,
		Theme:         theme,
		Background:    background,
		Token:         token,
		OriginChannel: os.Getenv("SLACK_CHANNEL_ID"),
		OriginThread:  os.Getenv("SLACK_THREAD_TS"),
		RendererBin:   opts.renderer,
		ScratchDir:    opts.scratchDir,
		APIBaseURL:    opts.apiURL,
	}
	if cfg.ScratchDir == "" {
		cfg.ScratchDir = os.TempDir()
	}

	if err := app.resolveStylesheet(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (app *cliApp) readDiagramFile(path string) ([]byte, error) {
	if path == "-" {
		return io.ReadAll(app.stdin)
	}
	return os.ReadFile(path)
}

// resolveStylesheet fills cfg.Stylesheet. Custom CSS only applies to SVG
// output; png and pdf ignore stylesheet input entirely.
func (app *cliApp) resolveStylesheet(cfg *config) error {
	if cfg.Format != FormatSVG {
		return nil
	}
	css := fallbackEnv(app.opts.css, "custom_css")
	if css != "" {
		path := filepath.Join(cfg.ScratchDir, "mermaidcast.css")
		if err := os.WriteFile(path, []byte(css), 0o644); err != nil {
			return fmt.Errorf("write custom stylesheet: %w", err)
		}
		cfg.Stylesheet = path
		return nil
	}
	if app.opts.defaultCSS != "" {
		if _, err := os.Stat(app.opts.defaultCSS); err == nil {
			cfg.Stylesheet = app.opts.defaultCSS
			return nil
		}
	}
	app.warnf("no custom CSS provided and no default stylesheet found, rendering SVG without styling")
	return nil
}
