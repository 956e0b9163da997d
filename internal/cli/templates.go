// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package cli

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/gabriel-vasile/mimetype"
	"github.com/spf13/cobra"

	"mailcraft/internal/collection"
	"mailcraft/internal/editor"
	"mailcraft/internal/models"
)

func (a *app) listCmd() *cobra.Command {
	var asJSON bool

	cmd := &cobra.Command{
		Use:     "list",
		Aliases: []string{"ls"},
		Short:   "List saved templates, newest first",
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := a.requireSession(cmd.Context()); err != nil {
				return err
			}
			docs, err := a.view.List(cmd.Context())
			if err != nil {
				return err
			}
			if asJSON {
				return writeJSON(cmd, docs)
			}
			return printTemplates(cmd, docs)
		},
	}

	cmd.Flags().BoolVar(&asJSON, "json", false, "output as JSON")
	return cmd
}

func (a *app) showCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "show <id>",
		Short: "Print a template as JSON",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := a.requireSession(cmd.Context()); err != nil {
				return err
			}
			doc, err := a.view.Get(cmd.Context(), args[0])
			if err != nil {
				return describeCollectionError(err)
			}
			return writeJSON(cmd, doc)
		},
	}
}

func (a *app) newCmd() *cobra.Command {
	var (
		sets     []string
		image    string
		maxImage int64
	)

	cmd := &cobra.Command{
		Use:   "new",
		Short: "Create a template from the defaults and field overrides",
		Long: `Create a template. Every field starts at its default; --set overrides one
field by path and may be repeated. Known paths:
  ` + strings.Join(editor.Fields, "\n  ") + `

Escape sequences \n in values become line breaks.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := a.requireSession(cmd.Context()); err != nil {
				return err
			}

			ed := editor.New(a.client, a.client, editor.WithMaxImageBytes(maxImage), editor.WithLogger(a.logger))
			defer ed.Abandon()

			for _, kv := range sets {
				path, value, ok := strings.Cut(kv, "=")
				if !ok {
					return fmt.Errorf("--set %q: want path=value", kv)
				}
				if _, err := ed.Update(strings.TrimSpace(path), strings.ReplaceAll(value, `\n`, "\n")); err != nil {
					return err
				}
			}

			if image != "" {
				data, err := os.ReadFile(image)
				if err != nil {
					return fmt.Errorf("reading image: %w", err)
				}
				mt := mimetype.Detect(data)
				if _, err := ed.AttachImage(cmd.Context(), filepath.Base(image), data, mt.String()); err != nil {
					return err
				}
			}

			doc, err := ed.Save(cmd.Context())
			if err != nil {
				var ve *editor.ValidationError
				if errors.As(err, &ve) {
					return fmt.Errorf("template is invalid:\n  %s", strings.Join(ve.Violations, "\n  "))
				}
				return err
			}

			fmt.Fprintf(cmd.OutOrStdout(), "Created %s (%s)\n", doc.ID, doc.Name)
			return nil
		},
	}

	cmd.Flags().StringArrayVar(&sets, "set", nil, "field override as path=value")
	cmd.Flags().StringVar(&image, "image", "", "header image file to upload")
	cmd.Flags().Int64Var(&maxImage, "max-image-bytes", editor.DefaultMaxImageBytes, "largest header image accepted")
	return cmd
}

func (a *app) deleteCmd() *cobra.Command {
	return &cobra.Command{
		Use:     "delete <id>",
		Aliases: []string{"rm"},
		Short:   "Delete a template",
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := a.requireSession(cmd.Context()); err != nil {
				return err
			}
			remaining, err := a.view.Remove(cmd.Context(), args[0])
			if errors.Is(err, collection.ErrRefresh) {
				a.logger.Warn("could not refresh listing", "error", err)
				fmt.Fprintf(cmd.OutOrStdout(), "Deleted %s\n", args[0])
				return nil
			}
			if err != nil {
				return describeCollectionError(err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Deleted %s, %d template(s) left\n", args[0], len(remaining))
			return nil
		},
	}
}

func (a *app) renderCmd() *cobra.Command {
	var urlOnly bool

	cmd := &cobra.Command{
		Use:   "render <id>",
		Short: "Print a template's rendered HTML",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if urlOnly {
				fmt.Fprintln(cmd.OutOrStdout(), a.view.RenderURL(args[0]))
				return nil
			}
			if err := a.requireSession(cmd.Context()); err != nil {
				return err
			}
			html, err := a.view.Render(cmd.Context(), args[0])
			if err != nil {
				return describeCollectionError(err)
			}
			_, err = cmd.OutOrStdout().Write(html)
			return err
		},
	}

	cmd.Flags().BoolVar(&urlOnly, "url", false, "print the render URL instead of fetching it")
	return cmd
}

func (a *app) downloadCmd() *cobra.Command {
	var dir string

	cmd := &cobra.Command{
		Use:   "download <id>",
		Short: "Save a template's rendered HTML under the server-suggested name",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := a.requireSession(cmd.Context()); err != nil {
				return err
			}
			html, name, err := a.view.Download(cmd.Context(), args[0])
			if err != nil {
				return describeCollectionError(err)
			}

			// The suggested name comes from the server; never let it pick the directory.
			path := filepath.Join(dir, filepath.Base(name))
			if err := os.WriteFile(path, html, 0o644); err != nil {
				return fmt.Errorf("writing %s: %w", path, err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Saved %s\n", path)
			return nil
		},
	}

	cmd.Flags().StringVarP(&dir, "output", "o", ".", "directory to write into")
	return cmd
}

func describeCollectionError(err error) error {
	if errors.Is(err, collection.ErrNotFound) {
		return errors.New("template not found")
	}
	return err
}

func printTemplates(cmd *cobra.Command, docs []models.TemplateDocument) error {
	out := cmd.OutOrStdout()
	if len(docs) == 0 {
		fmt.Fprintln(out, "No templates yet")
		return nil
	}

	rows := make([][]string, 0, len(docs))
	for _, d := range docs {
		created := ""
		if d.CreatedAt != nil {
			created = d.CreatedAt.Local().Format(time.DateTime)
		}
		rows = append(rows, []string{d.ID, d.Name, string(d.Layout), created})
	}

	table := newTable(out)
	table.Header([]string{"ID", "Name", "Layout", "Created"})
	if err := table.Bulk(rows); err != nil {
		return fmt.Errorf("rendering table: %w", err)
	}
	return table.Render()
}

func writeJSON(cmd *cobra.Command, v any) error {
	enc := json.NewEncoder(cmd.OutOrStdout())
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
