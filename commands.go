package main

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"io"
	"strings"
	"text/tabwriter"
	"time"

	"examphoto/internal/application"
	"examphoto/internal/dimensions"
	"examphoto/internal/domain/conversion"
)

// errUsage means the flags were wrong; usage has already been printed.
var errUsage = errors.New("usage")

type command struct {
	name    string
	summary string
	run     func(ctx context.Context, app *application.App, args []string, stdout, stderr io.Writer) error
}

var commands []command

func init() {
	commands = []command{
		{name: "convert", summary: "resize and compress photos for an exam preset", run: runConvert},
		{name: "presets", summary: "list exam presets", run: runPresets},
		{name: "defaults", summary: "show or save the default dimensions", run: runDefaults},
		{name: "history", summary: "show recent conversions and totals", run: runHistory},
		{name: "inspect", summary: "show size, format and density of an image", run: runInspect},
		{name: "watch", summary: "convert images as they appear in a folder", run: runWatch},
	}
}

func lookupCommand(name string) (command, bool) {
	for _, c := range commands {
		if c.name == name {
			return c, true
		}
	}
	return command{}, false
}

func newFlagSet(name string, stderr io.Writer) *flag.FlagSet {
	fs := flag.NewFlagSet(name, flag.ContinueOnError)
	fs.SetOutput(stderr)
	return fs
}

// parse maps -h to a clean exit and any other parse failure to errUsage.
// Flags may appear before or after positional arguments.
func parse(fs *flag.FlagSet, args []string) (bool, error) {
	if err := fs.Parse(reorderArgs(fs, args)); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return false, nil
		}
		return false, errUsage
	}
	return true, nil
}

// reorderArgs moves flags ahead of positional arguments, which the flag
// package otherwise treats as the end of the flags. Everything after "--"
// stays positional.
func reorderArgs(fs *flag.FlagSet, args []string) []string {
	var flags, positional []string
	for i := 0; i < len(args); i++ {
		arg := args[i]
		if arg == "--" {
			positional = append(positional, args[i+1:]...)
			break
		}
		if len(arg) < 2 || arg[0] != '-' {
			positional = append(positional, arg)
			continue
		}

		flags = append(flags, arg)
		name := strings.TrimLeft(arg, "-")
		if strings.Contains(name, "=") {
			continue
		}
		f := fs.Lookup(name)
		if f == nil {
			continue
		}
		if b, ok := f.Value.(interface{ IsBoolFlag() bool }); ok && b.IsBoolFlag() {
			continue
		}
		if i+1 < len(args) {
			i++
			flags = append(flags, args[i])
		}
	}

	if len(positional) == 0 {
		return flags
	}
	return append(append(flags, "--"), positional...)
}

type presetFlags struct {
	category     string
	documentType string
}

func addPresetFlags(fs *flag.FlagSet) *presetFlags {
	p := &presetFlags{}
	fs.StringVar(&p.category, "exam", "", "exam category, e.g. \"TNPSC Group Exams\" (see 'presets')")
	fs.StringVar(&p.documentType, "type", "", "document type: Photo, Signature or \"Other Documents\"")
	return p
}

func addDimensionFlags(fs *flag.FlagSet) *dimensions.Input {
	in := &dimensions.Input{}
	fs.StringVar(&in.PixelWidth, "width-px", "", "output width in pixels")
	fs.StringVar(&in.PixelHeight, "height-px", "", "output height in pixels")
	fs.StringVar(&in.UnitWidth, "width-cm", "", "output width in centimetres")
	fs.StringVar(&in.UnitHeight, "height-cm", "", "output height in centimetres")
	return in
}

func printJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func runConvert(ctx context.Context, app *application.App, args []string, stdout, stderr io.Writer) error {
	fs := newFlagSet("convert", stderr)
	input := fs.String("in", "", "source image or folder")
	output := fs.String("out", "", "output file (single source only)")
	outputDir := fs.String("out-dir", "", "directory for outputs (default: next to each source)")
	sizeKB := fs.Float64("size-kb", 0, "target size in KB (default: preset maximum)")
	asJSON := fs.Bool("json", false, "print results as JSON")
	preset := addPresetFlags(fs)
	dims := addDimensionFlags(fs)
	if ok, err := parse(fs, args); !ok {
		return err
	}

	sources := fs.Args()
	if *input != "" {
		sources = append([]string{*input}, sources...)
	}
	if len(sources) == 0 || preset.category == "" || preset.documentType == "" {
		fmt.Fprintln(stderr, "convert needs -in, -exam and -type")
		fs.Usage()
		return errUsage
	}
	if *output != "" && len(sources) > 1 {
		fmt.Fprintln(stderr, "-out can only be used with a single source")
		return errUsage
	}

	if *output != "" {
		resp, err := app.Convert(ctx, conversion.Request{
			SourcePath:   sources[0],
			OutputPath:   *output,
			Category:     preset.category,
			DocumentType: preset.documentType,
			Dimensions:   *dims,
			TargetKB:     *sizeKB,
		})
		if err != nil {
			return err
		}
		if *asJSON {
			return printJSON(stdout, resp)
		}
		printResponse(stdout, resp)
		return nil
	}

	results, err := app.ConvertFiles(ctx, sources, application.ConvertOptions{
		Category:     preset.category,
		DocumentType: preset.documentType,
		Dimensions:   *dims,
		TargetKB:     *sizeKB,
		OutputDir:    *outputDir,
	})
	if err != nil {
		return err
	}
	if *asJSON {
		if err := printJSON(stdout, results); err != nil {
			return err
		}
	}

	failed := 0
	for _, r := range results {
		if r.Status != application.StatusCompleted {
			failed++
			if !*asJSON {
				fmt.Fprintf(stdout, "%s: %s\n", r.SourcePath, r.Error)
			}
			continue
		}
		if !*asJSON {
			printResponse(stdout, r.Response)
		}
	}
	if failed > 0 {
		return fmt.Errorf("%d of %d conversions failed", failed, len(results))
	}
	return nil
}

func printResponse(w io.Writer, resp *conversion.Response) {
	fmt.Fprintf(w, "%s -> %s\n", resp.SourcePath, resp.OutputPath)
	fmt.Fprintf(w, "  %dx%d px, %s (target %s), quality %d, %d attempts\n",
		resp.Width, resp.Height,
		application.FormatKB(int64(resp.SizeBytes)),
		application.FormatKB(int64(resp.TargetBytes)),
		resp.Quality, resp.Attempts)
	if resp.BelowMinimum {
		fmt.Fprintf(w, "  warning: below the %d KB minimum for %s %s\n",
			resp.Preset.MinKB, resp.Preset.Category, resp.Preset.DocumentType)
	}
}

func runPresets(_ context.Context, app *application.App, args []string, stdout, stderr io.Writer) error {
	fs := newFlagSet("presets", stderr)
	asJSON := fs.Bool("json", false, "print presets as JSON")
	if ok, err := parse(fs, args); !ok {
		return err
	}

	all := app.Presets()
	if *asJSON {
		return printJSON(stdout, all)
	}

	tw := tabwriter.NewWriter(stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "EXAM\tTYPE\tPIXELS\tSIZE\tDPI")
	for _, p := range all {
		fmt.Fprintf(tw, "%s\t%s\t%dx%d\t%d-%d KB\t%d\n", p.Category, p.DocumentType, p.Width, p.Height, p.MinKB, p.MaxKB, p.DPI)
	}
	return tw.Flush()
}

func runDefaults(_ context.Context, app *application.App, args []string, stdout, stderr io.Writer) error {
	fs := newFlagSet("defaults", stderr)
	preset := addPresetFlags(fs)
	dims := addDimensionFlags(fs)
	if ok, err := parse(fs, args); !ok {
		return err
	}

	if dims.IsEmpty() {
		current, err := app.GetDefaults()
		if err != nil {
			return err
		}
		fmt.Fprintf(stdout, "default dimensions: %s px\n", current)
		return nil
	}

	saved, err := app.SaveDefaults(*dims, preset.category, preset.documentType)
	if err != nil {
		return err
	}
	fmt.Fprintf(stdout, "saved default dimensions: %s px\n", saved)
	return nil
}

func runHistory(_ context.Context, app *application.App, args []string, stdout, stderr io.Writer) error {
	fs := newFlagSet("history", stderr)
	limit := fs.Int("n", application.DefaultHistoryLimit, "number of conversions to show")
	asJSON := fs.Bool("json", false, "print history as JSON")
	if ok, err := parse(fs, args); !ok {
		return err
	}

	report, err := app.History(*limit)
	if err != nil {
		return err
	}
	if *asJSON {
		return printJSON(stdout, report)
	}

	tw := tabwriter.NewWriter(stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "WHEN\tEXAM\tTYPE\tPIXELS\tSIZE\tQUALITY\tOUTPUT")
	for _, e := range report.Entries {
		size := application.FormatKB(int64(e.SizeBytes))
		if e.BelowMinimum {
			size += " (below min)"
		}
		fmt.Fprintf(tw, "%s\t%s\t%s\t%dx%d\t%s\t%d\t%s\n",
			e.CreatedAt.Local().Format(time.DateTime), e.Category, e.DocumentType,
			e.Width, e.Height, size, e.Quality, e.Output)
	}
	if err := tw.Flush(); err != nil {
		return err
	}

	s := report.Stats
	fmt.Fprintf(stdout, "\n%d conversions, %s written, average quality %.1f, %d below minimum\n",
		s.TotalConversions, application.FormatKB(s.TotalBytesWritten), s.AverageQuality, s.BelowMinimumCount)
	return nil
}

func runInspect(_ context.Context, app *application.App, args []string, stdout, stderr io.Writer) error {
	fs := newFlagSet("inspect", stderr)
	input := fs.String("in", "", "image to inspect")
	asJSON := fs.Bool("json", false, "print as JSON")
	if ok, err := parse(fs, args); !ok {
		return err
	}

	path := *input
	if path == "" && fs.NArg() > 0 {
		path = fs.Arg(0)
	}
	if path == "" {
		fmt.Fprintln(stderr, "inspect needs -in")
		return errUsage
	}

	info, err := app.Inspect(path)
	if err != nil {
		return err
	}
	if *asJSON {
		return printJSON(stdout, info)
	}

	dpi := "unknown"
	if info.DPI > 0 {
		dpi = fmt.Sprintf("%d", info.DPI)
	}
	fmt.Fprintf(stdout, "%s: %s, %dx%d px, %s, %s dpi\n",
		info.Path, info.Format, info.Width, info.Height, application.FormatKB(info.SizeBytes), dpi)
	return nil
}

func runWatch(ctx context.Context, app *application.App, args []string, stdout, stderr io.Writer) error {
	fs := newFlagSet("watch", stderr)
	input := fs.String("in", "", "folder to watch")
	output := fs.String("out", "", "folder for converted files")
	sizeKB := fs.Float64("size-kb", 0, "target size in KB (default: preset maximum)")
	preset := addPresetFlags(fs)
	dims := addDimensionFlags(fs)
	if ok, err := parse(fs, args); !ok {
		return err
	}

	if *input == "" || *output == "" {
		fmt.Fprintln(stderr, "watch needs -in and -out")
		fs.Usage()
		return errUsage
	}

	fmt.Fprintf(stdout, "watching %s, writing to %s (Ctrl+C to stop)\n", *input, *output)
	return app.Watch(ctx, *input, *output, application.ConvertOptions{
		Category:     preset.category,
		DocumentType: preset.documentType,
		Dimensions:   *dims,
		TargetKB:     *sizeKB,
	})
}
