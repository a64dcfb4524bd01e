package cli

import (
	"errors"
	"fmt"
	"net/http"
	"sort"
	"strings"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/goliatone/go-daas/pkg/compose"
	"github.com/goliatone/go-daas/pkg/extract"
	"github.com/goliatone/go-daas/pkg/form"
	"github.com/goliatone/go-daas/pkg/formdata"
	"github.com/goliatone/go-daas/pkg/repeater"
)

func httpClient() *http.Client {
	return &http.Client{}
}

func expandCmd(g *globals) *cobra.Command {
	var (
		counts []string
		output string
	)
	cmd := &cobra.Command{
		Use:   "expand <template>",
		Short: "Expand repeater regions to the requested item counts",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			src, err := g.readSource(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			c, err := parseCounts(counts)
			if err != nil {
				return err
			}
			out, err := repeater.New(repeater.WithLogger(g.logger)).Expand(src, c)
			if err != nil {
				return err
			}
			return writeOutput(cmd, output, out)
		},
	}
	cmd.Flags().StringArrayVarP(&counts, "count", "c", nil, "repeater count as name=N (repeatable)")
	cmd.Flags().StringVarP(&output, "output", "o", "", "output file (stdout if empty)")
	return cmd
}

// extraction is the YAML document printed by `daas extract`.
type extraction struct {
	Template string         `yaml:"template,omitempty"`
	Counts   map[string]int `yaml:"counts,omitempty"`
	Data     yaml.Node      `yaml:"data"`
}

func extractCmd(g *globals) *cobra.Command {
	var (
		schemaPath string
		output     string
	)
	cmd := &cobra.Command{
		Use:   "extract <composed.html>",
		Short: "Recover form data and repeater counts from composed HTML",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			src, err := g.readSource(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			opts := []extract.Option{extract.WithLogger(g.logger)}
			if schemaPath != "" {
				s, err := g.loadSchema(schemaPath, "")
				if err != nil {
					return err
				}
				opts = append(opts, extract.WithSchema(s))
			}
			res, err := extract.New(opts...).Extract(src)
			if err != nil {
				return err
			}
			encoded, err := formdata.Encode(res.Data)
			if err != nil {
				return err
			}
			doc := extraction{Template: res.TemplatePath, Counts: res.Counts}
			if err := yaml.Unmarshal(encoded, &doc.Data); err != nil {
				return fmt.Errorf("encode data: %w", err)
			}
			if len(doc.Data.Content) > 0 {
				doc.Data = *doc.Data.Content[0]
			}
			out, err := yaml.Marshal(doc)
			if err != nil {
				return fmt.Errorf("encode result: %w", err)
			}
			return writeOutput(cmd, output, strings.TrimRight(string(out), "\n"))
		},
	}
	cmd.Flags().StringVarP(&schemaPath, "schema", "s", "", "schema file (types come from the page metadata if empty)")
	cmd.Flags().StringVarP(&output, "output", "o", "", "output file (stdout if empty)")
	return cmd
}

func composeCmd(g *globals) *cobra.Command {
	var (
		schemaPath string
		dataPath   string
		counts     []string
		output     string
	)
	cmd := &cobra.Command{
		Use:   "compose <template>",
		Short: "Compose final HTML from a template and form data",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			fetcher, err := g.fetcher()
			if err != nil {
				return err
			}
			src, err := fetcher.FetchSource(cmd.Context(), args[0])
			if err != nil {
				return fmt.Errorf("read template %s: %w", args[0], err)
			}
			s, err := g.loadSchema(schemaPath, src)
			if err != nil {
				return err
			}
			data, err := readData(dataPath)
			if err != nil {
				return err
			}
			c, err := parseCounts(counts)
			if err != nil {
				return err
			}
			for name, n := range extract.CountsFrom(data) {
				c.Raise(name, n)
			}
			composer := compose.New(fetcher,
				compose.WithLogger(g.logger),
				compose.WithBlockClass(g.cfg.BlockClass))
			out, err := composer.ComposeSource(src, compose.Request{
				Path:   args[0],
				Schema: s,
				Data:   data,
				Counts: c,
			})
			if err != nil {
				return err
			}
			return writeOutput(cmd, output, out)
		},
	}
	cmd.Flags().StringVarP(&schemaPath, "schema", "s", "", "schema file (inline schema block if empty)")
	cmd.Flags().StringVarP(&dataPath, "data", "d", "", "form data file (JSON or YAML)")
	cmd.Flags().StringArrayVarP(&counts, "count", "c", nil, "repeater count as name=N (repeatable)")
	cmd.Flags().StringVarP(&output, "output", "o", "", "output file (stdout if empty)")
	return cmd
}

func formCmd(g *globals) *cobra.Command {
	var (
		schemaPath string
		dataPath   string
		counts     []string
		action     string
		output     string
	)
	cmd := &cobra.Command{
		Use:   "form <template>",
		Short: "Render the authoring form of a template",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			src, err := g.readSource(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			s, err := g.loadSchema(schemaPath, src)
			if err != nil {
				return err
			}
			data, err := readData(dataPath)
			if err != nil {
				return err
			}
			c, err := parseCounts(counts)
			if err != nil {
				return err
			}
			for name, n := range extract.CountsFrom(data) {
				c.Raise(name, n)
			}
			renderer, err := form.New(form.WithAction(action))
			if err != nil {
				return err
			}
			out, err := renderer.Render(s, c, data)
			if err != nil {
				return err
			}
			return writeOutput(cmd, output, out)
		},
	}
	cmd.Flags().StringVarP(&schemaPath, "schema", "s", "", "schema file (inline schema block if empty)")
	cmd.Flags().StringVarP(&dataPath, "data", "d", "", "form data file used as current values")
	cmd.Flags().StringArrayVarP(&counts, "count", "c", nil, "repeater count as name=N (repeatable)")
	cmd.Flags().StringVar(&action, "action", "", "form action URL")
	cmd.Flags().StringVarP(&output, "output", "o", "", "output file (stdout if empty)")
	return cmd
}

// errLintIssues makes `daas lint` exit non-zero when issues were printed.
var errLintIssues = errors.New("lint issues found")

func lintCmd(g *globals) *cobra.Command {
	var schemaPath string
	cmd := &cobra.Command{
		Use:   "lint <template>...",
		Short: "Report placeholder layouts that do not round-trip reliably",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			type finding struct {
				file  string
				issue compose.Issue
			}
			var findings []finding
			for _, path := range args {
				src, err := g.readSource(cmd.Context(), path)
				if err != nil {
					return err
				}
				s, err := g.loadSchema(schemaPath, src)
				if err != nil {
					return err
				}
				issues, err := compose.Lint(src, s)
				if err != nil {
					return fmt.Errorf("lint %s: %w", path, err)
				}
				for _, issue := range issues {
					findings = append(findings, finding{file: path, issue: issue})
				}
			}
			if len(findings) == 0 {
				_, err := fmt.Fprintln(cmd.OutOrStdout(), "no issues")
				return err
			}
			sort.SliceStable(findings, func(i, j int) bool { return findings[i].file < findings[j].file })
			for _, f := range findings {
				fmt.Fprintf(cmd.OutOrStdout(), "%s: [%s] %s\n", f.file, f.issue.Kind, f.issue)
			}
			return errLintIssues
		},
	}
	cmd.Flags().StringVarP(&schemaPath, "schema", "s", "", "schema file (inline schema block if empty)")
	return cmd
}
