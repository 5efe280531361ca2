package main

import (
	"fmt"
	"mime"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
	"github.com/vedran77/huddle/internal/clientapp"
	"github.com/vedran77/huddle/internal/files"
)

func newFilesCmd(opts *rootOptions) *cobra.Command {
	var bucket string
	cmd := &cobra.Command{
		Use:   "files",
		Short: "Upload, link and delete files in public buckets",
	}
	cmd.PersistentFlags().StringVar(&bucket, "bucket", "", "Bucket (default from config)")
	cmd.AddCommand(
		newFilesUploadCmd(opts, &bucket),
		newFilesURLCmd(opts, &bucket),
		newFilesDeleteCmd(opts, &bucket),
	)
	return cmd
}

func newFilesUploadCmd(opts *rootOptions, bucket *string) *cobra.Command {
	return &cobra.Command{
		Use:   "upload <path> [name]",
		Short: "Upload a local file and print its public URL",
		Args:  cobra.RangeArgs(1, 2),
		RunE: opts.withApp(func(cmd *cobra.Command, args []string, app *clientapp.App) error {
			f, err := os.Open(args[0])
			if err != nil {
				return err
			}
			defer f.Close()

			info, err := f.Stat()
			if err != nil {
				return err
			}
			name := filepath.Base(args[0])
			if len(args) == 2 {
				name = args[1]
			}
			contentType := mime.TypeByExtension(filepath.Ext(name))

			if err := app.Files.Upload(cmd.Context(), name, f, info.Size(), contentType, files.WithBucket(*bucket)); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), app.Files.URL(name, files.WithBucket(*bucket)))
			return nil
		}),
	}
}

func newFilesURLCmd(opts *rootOptions, bucket *string) *cobra.Command {
	return &cobra.Command{
		Use:   "url <name>",
		Short: "Print the public URL of a stored file",
		Args:  cobra.ExactArgs(1),
		RunE: opts.withApp(func(cmd *cobra.Command, args []string, app *clientapp.App) error {
			fmt.Fprintln(cmd.OutOrStdout(), app.Files.URL(args[0], files.WithBucket(*bucket)))
			return nil
		}),
	}
}

func newFilesDeleteCmd(opts *rootOptions, bucket *string) *cobra.Command {
	return &cobra.Command{
		Use:   "delete <name>",
		Short: "Delete a stored file",
		Args:  cobra.ExactArgs(1),
		RunE: opts.withApp(func(cmd *cobra.Command, args []string, app *clientapp.App) error {
			if err := app.Files.Delete(cmd.Context(), args[0], files.WithBucket(*bucket)); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "deleted %s\n", args[0])
			return nil
		}),
	}
}
