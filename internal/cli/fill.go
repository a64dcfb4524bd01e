package cli

import (
	"fmt"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/goliatone/go-daas/pkg/extract"
	"github.com/goliatone/go-daas/pkg/form"
	"github.com/goliatone/go-daas/pkg/formdata"
	"github.com/goliatone/go-daas/pkg/prompt"
)

func fillCmd(g *globals) *cobra.Command {
	var (
		schemaPath string
		dataPath   string
		counts     []string
		output     string
	)
	cmd := &cobra.Command{
		Use:   "fill <template>",
		Short: "Answer the template's fields interactively and write the form data",
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

			registry := form.NewRegistry(s, c)
			registry.Fill(data)
			driver := g.driver
			if driver == nil {
				driver = prompt.NewSurveyDriver()
			}
			filled, err := prompt.Fill(cmd.Context(), driver, registry)
			if err != nil {
				return err
			}
			g.logger.Debug("fill finished", slog.String("template", args[0]), slog.Int("answered", filled))

			out, err := formdata.Encode(registry.Values())
			if err != nil {
				return err
			}
			if output == "" {
				_, err = fmt.Fprint(cmd.OutOrStdout(), string(out))
				return err
			}
			return writeOutput(cmd, output, string(out))
		},
	}
	cmd.Flags().StringVarP(&schemaPath, "schema", "s", "", "schema file (inline schema block if empty)")
	cmd.Flags().StringVarP(&dataPath, "data", "d", "", "existing form data used as defaults")
	cmd.Flags().StringArrayVarP(&counts, "count", "c", nil, "repeater count as name=N (repeatable)")
	cmd.Flags().StringVarP(&output, "output", "o", "", "output file (stdout if empty)")
	return cmd
}
