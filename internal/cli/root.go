package cli

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/goliatone/go-daas/internal/openapi"
	"github.com/goliatone/go-daas/pkg/config"
	"github.com/goliatone/go-daas/pkg/formdata"
	"github.com/goliatone/go-daas/pkg/prompt"
	"github.com/goliatone/go-daas/pkg/remote"
	"github.com/goliatone/go-daas/pkg/repeater"
	"github.com/goliatone/go-daas/pkg/schema"
)

// globals carries the persistent flags and what they resolve to.
type globals struct {
	configPath string
	verbose    bool
	endpoint   string
	token      string

	cfg    config.Config
	logger *slog.Logger

	// driver answers `daas fill` prompts; nil means the terminal.
	driver prompt.Driver
}

// RootCmd returns the `daas` command with every subcommand attached.
func RootCmd() *cobra.Command {
	return newRootCmd(&globals{})
}

func newRootCmd(g *globals) *cobra.Command {
	root := &cobra.Command{
		Use:   "daas",
		Short: "Author pages from placeholder templates",
		Long: "daas expands repeaters, composes final HTML from form data, extracts values " +
			"back out of composed pages, and publishes them to a document service.",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return g.resolve(cmd.ErrOrStderr())
		},
	}
	flags := root.PersistentFlags()
	flags.StringVar(&g.configPath, "config", config.FileName, "configuration file")
	flags.BoolVarP(&g.verbose, "verbose", "v", false, "log debug output")
	flags.StringVar(&g.endpoint, "endpoint", "", "document service URL (overrides config and "+config.EnvEndpoint+")")
	flags.StringVar(&g.token, "token", "", "document service token (overrides config and "+config.EnvToken+")")

	root.AddCommand(expandCmd(g))
	root.AddCommand(extractCmd(g))
	root.AddCommand(composeCmd(g))
	root.AddCommand(formCmd(g))
	root.AddCommand(lintCmd(g))
	root.AddCommand(fillCmd(g))
	root.AddCommand(publishCmd(g))
	return root
}

func (g *globals) resolve(stderr io.Writer) error {
	cfg, err := config.Load(g.configPath)
	if err != nil {
		return err
	}
	if g.endpoint != "" {
		cfg.Endpoint = g.endpoint
	}
	if g.token != "" {
		cfg.Token = g.token
	}
	if err := cfg.Validate(); err != nil {
		return err
	}
	g.cfg = cfg

	level := slog.LevelInfo
	if g.verbose {
		level = slog.LevelDebug
	}
	g.logger = slog.New(slog.NewTextHandler(stderr, &slog.HandlerOptions{Level: level}))
	return nil
}

// fetcher returns the configured source fetcher: the remote service when an
// endpoint is set, local files and URLs otherwise.
func (g *globals) fetcher() (remote.SourceFetcher, error) {
	if g.cfg.Endpoint != "" {
		return g.client()
	}
	return remote.NewFetcher(
		remote.WithFetchClient(httpClient()),
		remote.WithFetchTimeout(time.Duration(g.cfg.Timeout)),
	), nil
}

func (g *globals) client() (*remote.Client, error) {
	return remote.NewClient(g.cfg.Endpoint,
		remote.WithToken(g.cfg.Token),
		remote.WithTimeout(time.Duration(g.cfg.Timeout)),
		remote.WithClientLogger(g.logger),
	)
}

func (g *globals) readSource(ctx context.Context, location string) (string, error) {
	f, err := g.fetcher()
	if err != nil {
		return "", err
	}
	src, err := f.FetchSource(ctx, location)
	if err != nil {
		return "", fmt.Errorf("read template %s: %w", location, err)
	}
	return src, nil
}

// loadSchema reads an explicit schema file or falls back to the template's
// inline block. `api.yaml#Page` imports the Page component of an OpenAPI
// document.
func (g *globals) loadSchema(schemaPath, src string) (*schema.Schema, error) {
	if schemaPath == "" {
		return schema.FromTemplate(src, g.cfg.BlockClass)
	}
	file, component, isOpenAPI := strings.Cut(schemaPath, "#")
	data, err := os.ReadFile(file)
	if err != nil {
		return nil, fmt.Errorf("read schema: %w", err)
	}
	if isOpenAPI {
		fields, err := openapi.Fields(context.Background(), data, component, openapi.Options{})
		if err != nil {
			return nil, err
		}
		return schema.New(fields), nil
	}
	fields, err := schema.Parse(data, schemaPath)
	if err != nil {
		return nil, err
	}
	return schema.New(fields), nil
}

func readData(path string) (formdata.Data, error) {
	if path == "" {
		return formdata.Data{}, nil
	}
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read data: %w", err)
	}
	return formdata.Decode(raw)
}

// parseCounts reads `name=N` pairs.
func parseCounts(pairs []string) (repeater.Counts, error) {
	counts := repeater.Counts{}
	for _, pair := range pairs {
		name, raw, ok := strings.Cut(pair, "=")
		if !ok || strings.TrimSpace(name) == "" {
			return nil, fmt.Errorf("invalid count %q, want name=N", pair)
		}
		n, err := strconv.Atoi(strings.TrimSpace(raw))
		if err != nil {
			return nil, fmt.Errorf("invalid count %q: %w", pair, err)
		}
		counts.Set(strings.TrimSpace(name), n)
	}
	return counts, nil
}

// writeOutput writes to path, or to the command output when path is empty.
func writeOutput(cmd *cobra.Command, path, content string) error {
	if path == "" {
		_, err := fmt.Fprintln(cmd.OutOrStdout(), content)
		return err
	}
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}
	_, err := fmt.Fprintf(cmd.OutOrStdout(), "written to %s\n", path)
	return err
}
