package cmd

import (
	"bytes"
	"cmp"
	"encoding/json"
	"fmt"
	"slices"

	"github.com/javi11/pngstash/internal/png"
	concpool "github.com/sourcegraph/conc/pool"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"
)

func newDumpCmd() *cobra.Command {
	dumpCmd := &cobra.Command{
		Use:     "dump <file>...",
		Short:   "Dump the chunk directory of PNG files",
		Long:    `Dump the signature and every chunk (type, code, length, position, crc) of one or more PNG files. Payloads are not read.`,
		Example: "pngstash dump image.png\npngstash dump --format json a.png b.png",
		Args:    cobra.MinimumNArgs(1),
		RunE:    runDump,
	}

	dumpCmd.Flags().StringP("format", "f", "", "output format: text, json or yaml (default from config)")
	dumpCmd.Flags().Bool("collapse", false, "list consecutive chunks of the same type once")

	return dumpCmd
}

type dumpResult struct {
	index  int
	path   string
	report png.Report
	text   []byte
	err    error
}

func runDump(cmd *cobra.Command, args []string) error {
	rt, err := loadRuntime(cmd)
	if err != nil {
		return err
	}

	format := rt.cfg.GetDumpFormat()
	if cmd.Flags().Changed("format") {
		format, _ = cmd.Flags().GetString("format")
	}
	if !slices.Contains([]string{"text", "json", "yaml"}, format) {
		return fmt.Errorf("unknown format %q: must be one of text, json, yaml", format)
	}

	collapse, _ := cmd.Flags().GetBool("collapse")
	collapse = collapse || rt.cfg.Dump.Collapse

	// Each file gets its own handle; a png.File never crosses goroutines.
	pl := concpool.NewWithResults[dumpResult]().WithMaxGoroutines(rt.cfg.GetDumpWorkers())
	for i, path := range args {
		pl.Go(func() dumpResult {
			res := dumpResult{index: i, path: path}
			res.report, res.text, res.err = dumpFile(rt, path, collapse)
			return res
		})
	}

	results := pl.Wait()
	slices.SortFunc(results, func(a, b dumpResult) int {
		return cmp.Compare(a.index, b.index)
	})

	out := cmd.OutOrStdout()
	reports := make([]png.Report, 0, len(results))
	failed := 0

	for _, res := range results {
		if res.err != nil {
			failed++
			rt.logger.ErrorContext(rt.ctx, "Failed to dump PNG file", "path", res.path, "error", res.err)
			fmt.Fprintf(cmd.ErrOrStderr(), "Error loading png file %s: %v\n", res.path, res.err)
			continue
		}

		if format == "text" {
			if len(args) > 1 {
				fmt.Fprintf(out, "==> %s <==\n", res.path)
			}
			if _, err := out.Write(res.text); err != nil {
				return err
			}
			continue
		}

		reports = append(reports, res.report)
	}

	if format != "text" && len(reports) > 0 {
		if err := writeReports(cmd, format, reports, len(args) == 1); err != nil {
			return err
		}
	}

	if failed > 0 {
		return fmt.Errorf("%d of %d file(s) could not be dumped", failed, len(args))
	}

	return nil
}

func dumpFile(rt *runtime, path string, collapse bool) (png.Report, []byte, error) {
	f, err := rt.open(path)
	if err != nil {
		return png.Report{}, nil, err
	}
	defer f.Close()

	var buf bytes.Buffer
	if err := f.Dump(&buf, collapse); err != nil {
		return png.Report{}, nil, err
	}

	rt.logger.DebugContext(rt.ctx, "Dumped PNG file", "path", path, "chunks", len(f.Chunks()))

	return f.Report(), buf.Bytes(), nil
}

func writeReports(cmd *cobra.Command, format string, reports []png.Report, single bool) error {
	var v any = reports
	if single {
		v = reports[0]
	}

	out := cmd.OutOrStdout()

	switch format {
	case "json":
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		return enc.Encode(v)
	case "yaml":
		enc := yaml.NewEncoder(out)
		enc.SetIndent(2)
		if err := enc.Encode(v); err != nil {
			return err
		}
		return enc.Close()
	}

	return fmt.Errorf("unknown format %q", format)
}
