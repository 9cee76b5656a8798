package main

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/dustin/go-humanize"
	"github.com/olekukonko/tablewriter"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/logicossoftware/go-assetpack"
)

var buildCmd = &cobra.Command{
	Use:   "build [bundle...]",
	Short: "Process bundles and write them to the output directory",
	Long: `Read bundle declarations, resolve them against the site directory and write
every resulting file, with source maps, to the output directory.

With no arguments every declared bundle is built.

Examples:
  assetpack build -c assetpack.yaml
  assetpack build -c bundles.jsonc --site web --out dist --compress gzip,br app admin
  ASSETPACK_CACHE=.assetpack.cache assetpack build`,
	RunE: runBuild,
}

func init() {
	f := buildCmd.Flags()
	f.StringP("config", "c", "assetpack.yaml", "bundle declaration file (YAML or JSONC)")
	f.String("site", ".", "directory asset paths are relative to")
	f.StringP("out", "o", "public", "output directory")
	f.StringSlice("compress", nil, "precompressed variants to write: gzip, br, zstd")
	f.Int("min-compress-size", 256, "smallest file size to precompress")
	f.Bool("flatten", false, "drop column information from source maps")
	f.Bool("inline-maps", false, "embed source maps in the files they describe")
	f.Bool("no-minify", false, "disable minification for every bundle")
	f.String("cache", "", "snapshot file that keeps processed assets between runs")
	bindFlags(f)
}

func runBuild(cmd *cobra.Command, args []string) error {
	cfg, err := assetpack.LoadConfig(viper.GetString("config"))
	if err != nil {
		return err
	}
	reg := assetpack.NewRegistry()
	if err := cfg.Apply(reg); err != nil {
		return err
	}

	var comps []assetpack.Compression
	for _, s := range viper.GetStringSlice("compress") {
		c, err := assetpack.ParseCompression(s)
		if err != nil {
			return err
		}
		comps = append(comps, c)
	}

	store := assetpack.NewStore(os.DirFS(viper.GetString("site")))
	cachePath := viper.GetString("cache")
	if cachePath != "" {
		if err := loadCache(store, cachePath); err != nil {
			logger.Warn().Err(err).Str("cache", cachePath).Msg("Ignoring unreadable cache")
		}
	}

	opts := []assetpack.Option{
		assetpack.WithLogger(logger),
		assetpack.WithFlattenMaps(viper.GetBool("flatten")),
	}
	if viper.GetBool("no-minify") {
		opts = append(opts, assetpack.WithMinifiers())
	}
	res, err := assetpack.NewProcessor(store, opts...).Process(reg, args...)
	if err != nil {
		return err
	}

	files, err := assetpack.Emit(viper.GetString("out"), res,
		assetpack.WithCompression(comps...),
		assetpack.WithInlineMaps(viper.GetBool("inline-maps")),
		assetpack.WithMinCompressSize(viper.GetInt("min-compress-size")),
	)
	if err != nil {
		return err
	}

	if cachePath != "" {
		if err := saveCache(store, cachePath); err != nil {
			return fmt.Errorf("writing cache: %w", err)
		}
	}

	if !viper.GetBool("quiet") {
		printFiles(cmd.OutOrStdout(), files)
	}
	logger.Info().Int("bundles", len(res.Bundles)).Int("files", len(files)).Msg("Build finished")
	return nil
}

func loadCache(store *assetpack.Store, path string) error {
	f, err := os.Open(path)
	if errors.Is(err, os.ErrNotExist) {
		return nil
	}
	if err != nil {
		return err
	}
	defer f.Close()
	return store.ReadSnapshot(f)
}

// saveCache writes the snapshot next to path and renames it into place.
func saveCache(store *assetpack.Store, path string) error {
	tmp, err := os.CreateTemp(filepath.Dir(path), ".assetpack-*")
	if err != nil {
		return err
	}
	defer os.Remove(tmp.Name())
	if err := store.WriteSnapshot(tmp); err != nil {
		_ = tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return err
	}
	return os.Rename(tmp.Name(), path)
}

func printFiles(w io.Writer, files []assetpack.EmittedFile) {
	rows := make([][]string, 0, len(files))
	for _, f := range files {
		variant := "-"
		if f.Variant != 0 {
			variant = f.Variant.String()
		}
		rows = append(rows, []string{f.Bundle, f.URL, variant, humanize.Bytes(uint64(f.Size))})
	}

	table := tablewriter.NewWriter(w)
	table.SetHeader([]string{"Bundle", "URL", "Variant", "Size"})
	table.SetBorder(false)
	table.SetAutoWrapText(false)
	table.SetHeaderAlignment(tablewriter.ALIGN_LEFT)
	table.SetAlignment(tablewriter.ALIGN_LEFT)
	table.SetCenterSeparator("")
	table.SetColumnSeparator("")
	table.SetRowSeparator("")
	table.SetHeaderLine(false)
	table.SetTablePadding("\t")
	table.SetNoWhiteSpace(true)
	table.AppendBulk(rows)
	table.Render()
}
