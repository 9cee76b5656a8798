package main

import (
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/olekukonko/tablewriter"
	"github.com/spf13/cobra"

	"github.com/logicossoftware/go-assetpack/sourcemap"
)

var mapOutput string

var mapCmd = &cobra.Command{
	Use:   "map",
	Short: "Inspect and transform source map files",
	Long: `Read version 3 source maps and decode, query, flatten or compose them.

Positions are zero-based and written as LINE:COLUMN.`,
}

var mapDecodeCmd = &cobra.Command{
	Use:   "decode FILE",
	Short: "List every mapping of a source map",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		m, err := readMap(args[0])
		if err != nil {
			return err
		}
		rows := make([][]string, 0, len(m.Mappings))
		for _, e := range m.Mappings {
			row := []string{e.Generated.String(), "", "", ""}
			if e.HasOriginal {
				row[1], row[2], row[3] = e.Source, e.Original.String(), e.Name
			}
			rows = append(rows, row)
		}
		table := tablewriter.NewWriter(cmd.OutOrStdout())
		table.SetHeader([]string{"Generated", "Source", "Original", "Name"})
		table.SetBorder(false)
		table.SetAutoWrapText(false)
		table.SetAlignment(tablewriter.ALIGN_LEFT)
		table.AppendBulk(rows)
		table.Render()
		return nil
	},
}

var mapLookupCmd = &cobra.Command{
	Use:   "lookup FILE LINE:COLUMN",
	Short: "Find the original position of a generated position",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		m, err := readMap(args[0])
		if err != nil {
			return err
		}
		pos, err := parsePosition(args[1])
		if err != nil {
			return err
		}
		e, ok := m.Find(pos)
		if !ok {
			return fmt.Errorf("no mapping at %s", pos)
		}
		fmt.Fprintln(cmd.OutOrStdout(), e)
		return nil
	},
}

var mapFlattenCmd = &cobra.Command{
	Use:   "flatten FILE",
	Short: "Keep only the first mapping of every generated line",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		m, err := readMap(args[0])
		if err != nil {
			return err
		}
		return writeMap(cmd.OutOrStdout(), m.Flatten())
	},
}

var composeSource string

var mapComposeCmd = &cobra.Command{
	Use:   "compose OUTER INNER",
	Short: "Rewrite OUTER so it points through INNER to the original files",
	Long: `Compose two source maps. OUTER maps generated output to an intermediate file,
INNER maps that intermediate file to the originals. The intermediate file is
named with --source and defaults to INNER's "file" field.`,
	Args: cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		outer, err := readMap(args[0])
		if err != nil {
			return err
		}
		inner, err := readMap(args[1])
		if err != nil {
			return err
		}
		composed, err := composeMaps(outer, inner, composeSource)
		if err != nil {
			return fmt.Errorf("%s: %w", args[1], err)
		}
		return writeMap(cmd.OutOrStdout(), composed)
	},
}

// composeMaps rewrites outer through inner. An empty source falls back to
// inner's file field.
func composeMaps(outer, inner *sourcemap.SourceMap, source string) (*sourcemap.SourceMap, error) {
	if source == "" {
		source = inner.File
	}
	if source == "" {
		return nil, errors.New("no file field, pass --source")
	}
	return outer.ApplySourceMap(inner, source), nil
}

func init() {
	mapCmd.PersistentFlags().StringVarP(&mapOutput, "output", "o", "", "write the resulting map to a file instead of stdout")
	mapComposeCmd.Flags().StringVar(&composeSource, "source", "", "name of the intermediate file in OUTER")

	mapCmd.AddCommand(mapDecodeCmd)
	mapCmd.AddCommand(mapLookupCmd)
	mapCmd.AddCommand(mapFlattenCmd)
	mapCmd.AddCommand(mapComposeCmd)
}

func readMap(path string) (*sourcemap.SourceMap, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	m, err := sourcemap.Decode(f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return m, nil
}

func writeMap(stdout io.Writer, m *sourcemap.SourceMap) error {
	if mapOutput == "" {
		return sourcemap.Encode(stdout, m)
	}
	f, err := os.Create(mapOutput)
	if err != nil {
		return err
	}
	if err := sourcemap.Encode(f, m); err != nil {
		_ = f.Close()
		return err
	}
	return f.Close()
}

func parsePosition(s string) (sourcemap.Position, error) {
	line, col, ok := strings.Cut(s, ":")
	if !ok {
		return sourcemap.Position{}, fmt.Errorf("position %q: want LINE:COLUMN", s)
	}
	l, err := strconv.Atoi(line)
	if err != nil || l < 0 {
		return sourcemap.Position{}, fmt.Errorf("position %q: bad line", s)
	}
	c, err := strconv.Atoi(col)
	if err != nil || c < 0 {
		return sourcemap.Position{}, fmt.Errorf("position %q: bad column", s)
	}
	return sourcemap.Position{Line: l, Column: c}, nil
}
