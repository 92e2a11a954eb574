package main

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"extractd/internal/extract"
	"extractd/internal/report"
	"extractd/internal/service"
)

// maxLineBytes bounds one input line in stdin and batch mode.
const maxLineBytes = 1 << 20

func newExtractCmd(o *rootOptions) *cobra.Command {
	var pretty bool
	cmd := &cobra.Command{
		Use:   "extract [text]",
		Short: "Extract from the argument, or from each stdin line",
		Long: `Runs one extraction on the arguments joined with spaces. Without
arguments every non-blank stdin line is a separate input and one JSON result
is printed per line.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, log, err := o.load(cmd)
			if err != nil {
				return err
			}
			ctx := cmd.Context()
			svc, err := service.New(ctx, cfg, log)
			if err != nil {
				return err
			}
			defer svc.Close()

			enc := json.NewEncoder(cmd.OutOrStdout())
			enc.SetEscapeHTML(false)
			if pretty {
				enc.SetIndent("", "  ")
			}
			if len(args) > 0 {
				_, res := runOne(ctx, svc, log, strings.Join(args, " "))
				return enc.Encode(res)
			}
			return eachLine(cmd.InOrStdin(), func(text string) error {
				_, res := runOne(ctx, svc, log, text)
				return enc.Encode(res)
			})
		},
	}
	cmd.Flags().BoolVar(&pretty, "pretty", false, "indent JSON output")
	return cmd
}

func newBatchCmd(o *rootOptions) *cobra.Command {
	var in, out string
	cmd := &cobra.Command{
		Use:   "batch",
		Short: "Extract from every line of a file into a JSONL or XLSX report",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, log, err := o.load(cmd)
			if err != nil {
				return err
			}
			ctx := cmd.Context()

			var src io.Reader = cmd.InOrStdin()
			if in != "" && in != "-" {
				f, err := os.Open(in)
				if err != nil {
					return fmt.Errorf("open input: %w", err)
				}
				defer f.Close()
				src = f
			}

			svc, err := service.New(ctx, cfg, log)
			if err != nil {
				return err
			}
			defer svc.Close()

			var w report.Writer
			if out == "" || out == "-" {
				w = report.NewJSONL(nopWriteCloser{cmd.OutOrStdout()})
			} else if w, err = report.Create(out); err != nil {
				return err
			}

			counts := map[extract.Method]int{}
			total, degraded := 0, 0
			err = eachLine(src, func(text string) error {
				id, res := runOne(ctx, svc, log, text)
				total++
				counts[res.Method]++
				if res.Error != nil {
					degraded++
				}
				return w.Write(report.Row{ID: id, Text: text, Result: res})
			})
			if cerr := w.Close(); err == nil {
				err = cerr
			}
			if err != nil {
				return err
			}

			ev := log.Info().Int("lines", total).Int("degraded", degraded).Str("out", out)
			for m, n := range counts {
				ev = ev.Int(string(m), n)
			}
			ev.Msg("batch done")
			return nil
		},
	}
	cmd.Flags().StringVar(&in, "in", "-", "input file, one text per line (- for stdin)")
	cmd.Flags().StringVar(&out, "out", "-", "output file: .xlsx for a workbook, JSON lines otherwise (- for stdout)")
	return cmd
}

// runOne extracts text under a fresh extraction id carried by the context logger.
func runOne(ctx context.Context, svc *service.Service, log zerolog.Logger, text string) (string, extract.Result) {
	id := uuid.NewString()
	l := log.With().Str("extraction_id", id).Logger()
	res := svc.Extract(l.WithContext(ctx), text)
	ev := l.Debug()
	if res.Error != nil {
		ev = l.Warn().Str("error", res.ErrorValue())
	}
	ev.Str("method", string(res.Method)).
		Bool("tax_id", res.TaxID != nil).
		Bool("full_name", res.FullName != nil).
		Msg("extracted")
	return id, res
}

// eachLine calls fn for every non-blank line of r.
func eachLine(r io.Reader, fn func(string) error) error {
	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 0, 64*1024), maxLineBytes)
	for sc.Scan() {
		line := strings.TrimSpace(sc.Text())
		if line == "" {
			continue
		}
		if err := fn(line); err != nil {
			return err
		}
	}
	if err := sc.Err(); err != nil {
		return fmt.Errorf("read input: %w", err)
	}
	return nil
}

type nopWriteCloser struct{ io.Writer }

func (nopWriteCloser) Close() error { return nil }
