package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/graphbench/graphbench/internal/config"
	"github.com/graphbench/graphbench/internal/dataset"
)

type storageFlags struct {
	kind   string
	path   string
	prefix string
	bucket string
}

func (f *storageFlags) register(cmd *cobra.Command) {
	fl := cmd.Flags()
	fl.StringVar(&f.kind, "storage", "", "storage type: local or s3 (default from config)")
	fl.StringVar(&f.path, "storage-path", "", "local storage directory")
	fl.StringVar(&f.prefix, "prefix", "", "object prefix the dataset is stored under")
	fl.StringVar(&f.bucket, "bucket", "", "S3 bucket")
}

func (f *storageFlags) apply(cfg *config.Config) error {
	if f.kind != "" {
		cfg.Storage.Type = f.kind
	}
	if f.path != "" {
		cfg.Storage.Path = f.path
	}
	if f.prefix != "" {
		cfg.Storage.Prefix = f.prefix
	}
	if f.bucket != "" {
		cfg.Storage.S3.Bucket = f.bucket
	}
	return nil
}

func newPublishCmd(opts *globalOptions) *cobra.Command {
	f := &storageFlags{}
	cmd := &cobra.Command{
		Use:   "publish",
		Short: "Upload the generated dataset to object storage",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := opts.open(f.apply)
			if err != nil {
				return err
			}
			defer a.Close(cmd.Context())

			pub, err := a.Publisher(cmd.Context())
			if err != nil {
				return err
			}
			m, err := pub.Publish(cmd.Context(), a.Layout())
			if err != nil {
				return err
			}
			_, err = fmt.Fprintf(cmd.OutOrStdout(), "Published dataset %s: %d files, %d bytes\n",
				m.DatasetID, len(m.Files), m.TotalSize())
			return err
		},
	}
	f.register(cmd)
	return cmd
}

func newFetchCmd(opts *globalOptions) *cobra.Command {
	f := &storageFlags{}
	var dest string
	cmd := &cobra.Command{
		Use:   "fetch",
		Short: "Download a published dataset and verify its digests",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := opts.open(f.apply)
			if err != nil {
				return err
			}
			defer a.Close(cmd.Context())

			layout := a.Layout()
			if dest != "" {
				layout = dataset.NewLayout(dest)
			}
			pub, err := a.Publisher(cmd.Context())
			if err != nil {
				return err
			}
			m, err := pub.Fetch(cmd.Context(), layout)
			if err != nil {
				return err
			}
			_, err = fmt.Fprintf(cmd.OutOrStdout(), "Fetched dataset %s into %s: %d files verified\n",
				m.DatasetID, layout.Root, len(m.Files))
			return err
		},
	}
	f.register(cmd)
	cmd.Flags().StringVar(&dest, "dest", "", "dataset directory to fetch into (default the output directory)")
	return cmd
}
