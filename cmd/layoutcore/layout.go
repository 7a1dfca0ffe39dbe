package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/npillmayer/layoutcore/dom"
	"github.com/npillmayer/layoutcore/dom/domdbg"
	"github.com/npillmayer/layoutcore/dom/style"
	"github.com/npillmayer/layoutcore/dom/style/cssom"
	"github.com/npillmayer/layoutcore/dom/style/cssom/douceuradapter"
	"github.com/npillmayer/layoutcore/engine"
	"github.com/npillmayer/layoutcore/frame/fragment"
	"github.com/npillmayer/layoutcore/internal/observability"
	"github.com/npillmayer/layoutcore/tree"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

type layoutFlags struct {
	width, height float64
	workers       int
	json          bool
	tree          bool
	dot           bool
	sheets        []string
}

// result is the outcome of laying out a single document.
type result struct {
	snap *fragment.Snapshot
	dot  string // GraphViz diagram of the styled document, if requested
}

func newLayoutCmd(a *app) *cobra.Command {
	f := &layoutFlags{}
	cmd := &cobra.Command{
		Use:   "layout [flags] FILE...",
		Short: "Lay out HTML documents and print their fragment trees",
		Long: `Lay out one or more HTML documents. Documents are processed concurrently,
one engine per document, sharing a single worker pool. Style elements of a
document are applied as author style sheets, in addition to sheets given
with --css.

Output is printed in the order of the arguments: a fragment tree per
document (the default), or the serialized snapshot with --json. With --dot,
a GraphViz diagram of the styled document is printed instead.`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.layout(cmd.Context(), cmd, f, args)
		},
	}
	fl := cmd.Flags()
	fl.Float64Var(&f.width, "width", 0, "viewport width in CSS pixels (overrides viewport.width)")
	fl.Float64Var(&f.height, "height", 0, "viewport height in CSS pixels (overrides viewport.height)")
	fl.IntVarP(&f.workers, "workers", "w", -1, "number of workers, 0 for one per CPU (overrides engine.workers)")
	fl.BoolVar(&f.json, "json", false, "print snapshots as JSON")
	fl.BoolVar(&f.tree, "tree", false, "print fragment trees, also if --json is set")
	fl.BoolVar(&f.dot, "dot", false, "print the styled documents in GraphViz format")
	fl.StringArrayVar(&f.sheets, "css", nil, "additional author style sheet (repeatable)")
	return cmd
}

func (a *app) layout(ctx context.Context, cmd *cobra.Command, f *layoutFlags, files []string) error {
	log := observability.GetLogger()
	cfg := *a.cfg
	if cmd.Flags().Changed("width") {
		cfg.Viewport.Width = f.width
	}
	if cmd.Flags().Changed("height") {
		cfg.Viewport.Height = f.height
	}
	if cmd.Flags().Changed("workers") {
		cfg.Engine.Workers = f.workers
	}
	if err := cfg.Validate(); err != nil {
		return err
	}
	sheets := make([]*douceuradapter.CSSStyles, 0, len(f.sheets))
	for _, name := range f.sheets {
		data, err := os.ReadFile(name)
		if err != nil {
			return err
		}
		sheet, err := douceuradapter.Parse(string(data))
		if err != nil {
			return fmt.Errorf("%s: %w", name, err)
		}
		sheets = append(sheets, sheet)
	}

	pool := tree.NewPool(cfg.Engine.Workers)
	defer pool.Close()
	opts := append(cfg.EngineOptions(), engine.WithPool(pool))

	results := make([]result, len(files))
	g, ctx := errgroup.WithContext(ctx)
	for i, file := range files {
		g.Go(func() error {
			start := time.Now()
			res, err := layoutFile(ctx, file, sheets, opts, f.dot)
			if err != nil {
				return fmt.Errorf("%s: %w", file, err)
			}
			log.Info("laid out document",
				zap.String("file", file),
				zap.Int("fragments", res.snap.Len()),
				zap.Duration("elapsed", time.Since(start)))
			results[i] = res
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return err
	}
	return printResults(cmd.OutOrStdout(), files, results, f)
}

// layoutFile runs a single pass over an HTML file.
func layoutFile(ctx context.Context, file string, sheets []*douceuradapter.CSSStyles,
	opts []engine.Option, dot bool) (result, error) {
	//
	r, err := os.Open(file)
	if err != nil {
		return result{}, err
	}
	defer r.Close()
	doc, err := dom.Parse(r)
	if err != nil {
		return result{}, err
	}
	store := cssom.NewStore(douceuradapter.UserAgentSheet())
	for _, sheet := range douceuradapter.ExtractStyleElements(doc.Node(doc.Root())) {
		store.Add(cssom.Author, sheet)
	}
	for _, sheet := range sheets {
		store.Add(cssom.Author, sheet)
	}
	eng, err := engine.New(doc, store, opts...)
	if err != nil {
		return result{}, err
	}
	defer eng.Close()
	snap, err := eng.Reflow(ctx)
	if err != nil {
		return result{}, err
	}
	res := result{snap: snap}
	if dot {
		var sb strings.Builder
		styleOf := func(id dom.NodeID) *style.ComputedStyle {
			cs, _ := eng.ComputedStyle(id)
			return cs
		}
		doc.RLock()
		err = domdbg.ToGraphViz(&sb, doc, styleOf, nil)
		doc.RUnlock()
		if err != nil {
			return result{}, err
		}
		res.dot = sb.String()
	}
	return res, nil
}

func printResults(w io.Writer, files []string, results []result, f *layoutFlags) error {
	for i, res := range results {
		snap := res.snap
		if f.dot {
			if _, err := io.WriteString(w, res.dot); err != nil {
				return err
			}
			continue
		}
		if f.json {
			if err := fragment.Emit(w, snap); err != nil {
				return err
			}
		}
		if f.tree || !f.json {
			if len(files) > 1 {
				fmt.Fprintf(w, "== %s\n", files[i])
			}
			if _, err := io.WriteString(w, snap.String()); err != nil {
				return err
			}
		}
	}
	return nil
}
