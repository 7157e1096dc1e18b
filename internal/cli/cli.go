// Package cli implements the command-line interface for snmtx.
package cli

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"sort"
	"strings"

	"github.com/eunmann/snmtx/internal/logctx"
	"github.com/eunmann/snmtx/pkg/fileutil"
	"github.com/eunmann/snmtx/pkg/humanfmt"
	"github.com/eunmann/snmtx/pkg/mtx"
	"github.com/eunmann/snmtx/pkg/remote"
	"github.com/eunmann/snmtx/pkg/sysmem"
)

const usage = "usage: snmtx <command> [options]\ncommands: totals, remap, merge, densify, export"

// Run executes the CLI with the given arguments.
func Run(args []string) error {
	if len(args) == 0 {
		return errors.New(usage)
	}

	switch args[0] {
	case "totals":
		return runTotals(args[1:])
	case "remap":
		return runRemap(args[1:])
	case "merge":
		return runMerge(args[1:])
	case "densify":
		return runDensify(args[1:])
	case "export":
		return runExport(args[1:])
	default:
		return fmt.Errorf("unknown command: %s\n%s", args[0], usage)
	}
}

// tripleFlags holds the three input paths shared by most commands.
type tripleFlags struct {
	matrix   *string
	features *string
	barcodes *string
	debug    *bool
	human    *bool
}

func addTripleFlags(fs *flag.FlagSet) *tripleFlags {
	return &tripleFlags{
		matrix:   fs.String("matrix", "", "matrix file (.mtx, optionally .gz or an s3:// URI)"),
		features: fs.String("features", "", "features file (one identifier per line)"),
		barcodes: fs.String("barcodes", "", "barcodes file (one identifier per line)"),
		debug:    fs.Bool("debug", false, "enable debug logging"),
		human:    fs.Bool("human", false, "human-friendly console log output"),
	}
}

// resolve checks the flags and fetches s3:// inputs to a temp
// directory, returning local paths for all three files.
func (t *tripleFlags) resolve(ctx context.Context) (string, string, string, error) {
	if *t.matrix == "" || *t.features == "" || *t.barcodes == "" {
		return "", "", "", errors.New("--matrix, --features and --barcodes are required")
	}

	if !remote.IsS3URI(*t.matrix) && !remote.IsS3URI(*t.features) && !remote.IsS3URI(*t.barcodes) {
		return *t.matrix, *t.features, *t.barcodes, nil
	}
	if !remote.IsS3URI(*t.matrix) || !remote.IsS3URI(*t.features) || !remote.IsS3URI(*t.barcodes) {
		return "", "", "", errors.New("either all three inputs or none must be s3:// URIs")
	}

	destDir, err := os.MkdirTemp("", "snmtx-fetch-*")
	if err != nil {
		return "", "", "", fmt.Errorf("create fetch dir: %w", err)
	}

	client, err := remote.NewClient(ctx)
	if err != nil {
		return "", "", "", err
	}
	return client.FetchTriple(ctx, *t.matrix, *t.features, *t.barcodes, destDir)
}

func (t *tripleFlags) context() context.Context {
	logger := logctx.NewConfiguredLogger(*t.debug, *t.human)
	return logctx.WithLogger(context.Background(), logger)
}

func runTotals(args []string) error {
	fs := flag.NewFlagSet("totals", flag.ContinueOnError)
	triple := addTripleFlags(fs)
	out := fs.String("out", "", "output prefix for feature_totals.tsv and barcode_totals.tsv (default: stdout)")
	if err := fs.Parse(args); err != nil {
		return err
	}

	ctx := triple.context()
	matrixPath, featuresPath, barcodesPath, err := triple.resolve(ctx)
	if err != nil {
		return err
	}

	log := logctx.FromContext(ctx)
	log.Info().Str("matrix", matrixPath).Msg("computing totals")

	totals, err := mtx.ComputeTotals(matrixPath, featuresPath, barcodesPath)
	if err != nil {
		return err
	}

	if *out == "" {
		writeTotals(os.Stdout, "feature", totals.Features)
		writeTotals(os.Stdout, "barcode", totals.Barcodes)
		return nil
	}

	if err := writeTotalsFile(*out+"feature_totals.tsv", "feature", totals.Features); err != nil {
		return err
	}
	return writeTotalsFile(*out+"barcode_totals.tsv", "barcode", totals.Barcodes)
}

func writeTotals(w *os.File, kind string, totals map[string]uint64) {
	ids := make([]string, 0, len(totals))
	for id := range totals {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	for _, id := range ids {
		fmt.Fprintf(w, "%s\t%s\t%d\n", kind, id, totals[id])
	}
}

func writeTotalsFile(path, kind string, totals map[string]uint64) error {
	return fileutil.WriteTmpThenMove(path, func(tmpPath string) error {
		f, err := os.Create(tmpPath)
		if err != nil {
			return err
		}
		defer f.Close()
		writeTotals(f, kind, totals)
		return f.Close()
	})
}

func runRemap(args []string) error {
	fs := flag.NewFlagSet("remap", flag.ContinueOnError)
	triple := addTripleFlags(fs)
	mappingPath := fs.String("mapping", "", "TSV of old-feature<TAB>new-feature covering every feature")
	out := fs.String("out", "", "output prefix for the remapped triple")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if *mappingPath == "" {
		return errors.New("--mapping is required")
	}
	if *out == "" {
		return errors.New("--out is required")
	}

	ctx := triple.context()
	matrixPath, featuresPath, barcodesPath, err := triple.resolve(ctx)
	if err != nil {
		return err
	}

	mapping, err := readMapping(*mappingPath)
	if err != nil {
		return err
	}

	m, err := mtx.Read(matrixPath, featuresPath, barcodesPath)
	if err != nil {
		return err
	}
	remapped, err := m.RemapFeatures(mapping)
	if err != nil {
		return err
	}

	paths, err := remapped.Write(*out)
	if err != nil {
		return err
	}
	log := logctx.FromContext(ctx)
	log.Info().
		Str("matrix", paths.Matrix).
		Int("features", len(remapped.Features)).
		Int("entries", len(remapped.Entries)).
		Msg("wrote remapped triple")
	return nil
}

// readMapping parses a two-column TSV into a feature remapping.
func readMapping(path string) (map[string]string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	mapping := make(map[string]string)
	for i, line := range strings.Split(string(data), "\n") {
		line = strings.TrimRight(line, "\r")
		if line == "" {
			continue
		}
		old, updated, found := strings.Cut(line, "\t")
		if !found {
			return nil, fmt.Errorf("%s line %d: expected old<TAB>new, got %q", path, i+1, line)
		}
		mapping[old] = updated
	}
	return mapping, nil
}

func runMerge(args []string) error {
	fs := flag.NewFlagSet("merge", flag.ContinueOnError)
	out := fs.String("out", "", "output prefix for the merged triple")
	debug := fs.Bool("debug", false, "enable debug logging")
	human := fs.Bool("human", false, "human-friendly console log output")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if *out == "" {
		return errors.New("--out is required")
	}
	prefixes := fs.Args()
	if len(prefixes) == 0 {
		return errors.New("at least one input triple prefix is required")
	}

	logger := logctx.NewConfiguredLogger(*debug, *human)
	ctx := logctx.WithLogger(context.Background(), logger)

	ms := make([]*mtx.Matrix, len(prefixes))
	for i, prefix := range prefixes {
		paths := mtx.Paths(prefix)
		m, err := mtx.Read(paths.Matrix, paths.Features, paths.Barcodes)
		if err != nil {
			return fmt.Errorf("read triple %q: %w", prefix, err)
		}
		ms[i] = m
	}

	merged, err := mtx.Merge(ms)
	if err != nil {
		return err
	}
	paths, err := merged.Write(*out)
	if err != nil {
		return err
	}
	log := logctx.FromContext(ctx)
	log.Info().
		Str("matrix", paths.Matrix).
		Int("inputs", len(ms)).
		Int("barcodes", len(merged.Barcodes)).
		Msg("wrote merged triple")
	return nil
}

func runDensify(args []string) error {
	fs := flag.NewFlagSet("densify", flag.ContinueOnError)
	triple := addTripleFlags(fs)
	out := fs.String("out", "", "output path for the wide TSV")
	keepFeatures := fs.String("keep-features", "", "comma-separated features to keep (default: all)")
	keepBarcodes := fs.String("keep-barcodes", "", "comma-separated barcodes to keep (default: all)")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if *out == "" {
		return errors.New("--out is required")
	}

	ctx := triple.context()
	matrixPath, featuresPath, barcodesPath, err := triple.resolve(ctx)
	if err != nil {
		return err
	}

	m, err := mtx.Read(matrixPath, featuresPath, barcodesPath)
	if err != nil {
		return err
	}

	var kf, kb []string
	if *keepFeatures != "" {
		kf = strings.Split(*keepFeatures, ",")
	}
	if *keepBarcodes != "" {
		kb = strings.Split(*keepBarcodes, ",")
	}

	log := logctx.FromContext(ctx)
	rows, cols := len(m.Barcodes), len(m.Features)
	if kb != nil {
		rows = len(kb)
	}
	if kf != nil {
		cols = len(kf)
	}
	if est, ram := mtx.EstimatedBytes(rows, cols), sysmem.Total(); est > ram.TotalBytes/2 {
		log.Warn().
			Str("estimated", humanfmt.Bytes(est)).
			Str("system_ram", humanfmt.Bytes(ram.TotalBytes)).
			Msg("dense matrix may not fit in memory")
	}

	dense, err := m.Densify(kf, kb)
	if err != nil {
		return err
	}

	return fileutil.WriteTmpThenMove(*out, func(tmpPath string) error {
		return writeDenseTSV(tmpPath, dense)
	})
}

// writeDenseTSV writes the wide form: a header row of feature names,
// then one row per barcode.
func writeDenseTSV(path string, d *mtx.Dense) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	fmt.Fprintf(f, "barcode\t%s\n", strings.Join(d.Features, "\t"))
	for i, b := range d.Barcodes {
		fmt.Fprint(f, b)
		for j := range d.Features {
			fmt.Fprintf(f, "\t%d", d.At(i, j))
		}
		fmt.Fprintln(f)
	}
	return f.Close()
}

func runExport(args []string) error {
	fs := flag.NewFlagSet("export", flag.ContinueOnError)
	triple := addTripleFlags(fs)
	out := fs.String("out", "", "output path for the Parquet coordinate table")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if *out == "" {
		return errors.New("--out is required")
	}

	ctx := triple.context()
	matrixPath, featuresPath, barcodesPath, err := triple.resolve(ctx)
	if err != nil {
		return err
	}

	m, err := mtx.Read(matrixPath, featuresPath, barcodesPath)
	if err != nil {
		return err
	}
	if err := m.WriteParquet(*out); err != nil {
		return err
	}
	log := logctx.FromContext(ctx)
	log.Info().
		Str("out", *out).
		Int("entries", len(m.Entries)).
		Msg("wrote parquet coordinate table")
	return nil
}
