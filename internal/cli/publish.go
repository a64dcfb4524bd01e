package cli

import (
	"fmt"
	"os"
	"sort"
	"time"

	"github.com/spf13/cobra"

	"github.com/goliatone/go-daas/pkg/formdata"
	"github.com/goliatone/go-daas/pkg/remote"
	"github.com/goliatone/go-daas/pkg/schema"
	"github.com/goliatone/go-daas/pkg/session"
)

// publishTarget is what a publish writes to: the remote service or the local
// output directory.
type publishTarget interface {
	remote.AssetUploader
	remote.DocumentSaver
	remote.PreviewTrigger
}

func (g *globals) publishTarget() (publishTarget, string, error) {
	if g.cfg.Endpoint != "" {
		c, err := g.client()
		if err != nil {
			return nil, "", err
		}
		return c, g.cfg.Endpoint, nil
	}
	return remote.NewFileStore(g.cfg.OutputDir), g.cfg.OutputDir, nil
}

func publishCmd(g *globals) *cobra.Command {
	var (
		schemaPath   string
		dataPath     string
		existingPath string
		dest         string
		noPreview    bool
	)
	cmd := &cobra.Command{
		Use:   "publish <template>",
		Short: "Upload images, compose and save a page, then refresh its preview",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			if dest == "" {
				return fmt.Errorf("--dest is required")
			}
			fetcher, err := g.fetcher()
			if err != nil {
				return err
			}
			target, where, err := g.publishTarget()
			if err != nil {
				return err
			}

			opts := []session.Option{
				session.WithLogger(g.logger),
				session.WithSettleWindow(time.Duration(g.cfg.SettleWindow)),
				session.WithBlockClass(g.cfg.BlockClass),
				session.WithUploader(target),
				session.WithSaver(target),
			}
			if !noPreview {
				opts = append(opts, session.WithPreview(target))
			}
			if schemaPath != "" {
				s, err := g.loadSchema(schemaPath, "")
				if err != nil {
					return err
				}
				opts = append(opts, session.WithSchema(s))
			}
			sess := session.New(args[0], fetcher, opts...)

			var existing string
			if existingPath != "" {
				raw, err := os.ReadFile(existingPath)
				if err != nil {
					return fmt.Errorf("read existing page: %w", err)
				}
				existing = string(raw)
			}
			if err := sess.Load(ctx, existing); err != nil {
				return err
			}

			data, err := readData(dataPath)
			if err != nil {
				return err
			}
			if len(data) > 0 {
				merged := sess.Data()
				merged.Merge(data)
				if err := sess.Restore(merged); err != nil {
					return err
				}
			}
			reportUnknownKeys(cmd, sess.Schema(), data)

			result, err := sess.Publish(ctx, dest)
			if err != nil {
				if status := remote.StatusOf(err); status != 0 {
					return fmt.Errorf("publish %s: %s", dest, remote.Describe(err))
				}
				return err
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "saved %s to %s\n", result.Save.Path, where)
			keys := make([]string, 0, len(result.Uploaded))
			for key := range result.Uploaded {
				keys = append(keys, key)
			}
			sort.Strings(keys)
			for _, key := range keys {
				fmt.Fprintf(out, "uploaded %s -> %s\n", key, result.Uploaded[key])
			}
			for _, key := range result.FailedUploads {
				fmt.Fprintf(out, "upload failed for %s, left empty\n", key)
			}
			if result.Previewed {
				fmt.Fprintln(out, "preview refreshed")
			}
			return nil
		},
	}
	cmd.Flags().StringVarP(&schemaPath, "schema", "s", "", "schema file (inline schema block if empty)")
	cmd.Flags().StringVarP(&dataPath, "data", "d", "", "form data file (JSON or YAML)")
	cmd.Flags().StringVar(&existingPath, "existing", "", "previously composed page to edit")
	cmd.Flags().StringVar(&dest, "dest", "", "destination path of the page")
	cmd.Flags().BoolVar(&noPreview, "no-preview", false, "skip the preview refresh")
	return cmd
}

// reportUnknownKeys warns about data keys the schema does not declare; they
// are kept but nothing in the template will show them.
func reportUnknownKeys(cmd *cobra.Command, s *schema.Schema, data formdata.Data) {
	if s == nil || s.Len() == 0 {
		return
	}
	for _, key := range data.Keys() {
		if s.Has(key) {
			continue
		}
		msg := fmt.Sprintf("warning: %s is not declared by the template", key)
		if hints := s.Suggest(key, 1); len(hints) > 0 {
			msg += fmt.Sprintf(" (did you mean %s?)", hints[0])
		}
		fmt.Fprintln(cmd.ErrOrStderr(), msg)
	}
}
