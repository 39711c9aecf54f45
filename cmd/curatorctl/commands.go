package main

import (
	"context"
	"errors"
	"fmt"
	"text/tabwriter"

	"photo-curator-service/internal/app/service"
	"photo-curator-service/internal/domain"
)

type StatsCmd struct{}

func (cmd *StatsCmd) Run(g *Globals) error {
	keys := g.Catalog.Keys()
	if len(keys) == 0 {
		fmt.Fprintln(g.Out, "Catalog is empty.")
		return nil
	}

	w := tabwriter.NewWriter(g.Out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "TERM\tACCEPTED\tDONE")
	for _, key := range keys {
		count := g.Catalog.CountFor(key)
		done := ""
		if count >= g.MinImages {
			done = "yes"
		}
		fmt.Fprintf(w, "%s\t%d\t%s\n", key, count, done)
	}
	if err := w.Flush(); err != nil {
		return err
	}

	fmt.Fprintf(g.Out, "\n%d photos across %d terms\n", g.Catalog.Total(), len(keys))
	return nil
}

type DownloadCmd struct {
	Provider string `short:"p" help:"Only download this provider's records"`
}

func (cmd *DownloadCmd) Run(g *Globals) error {
	ctx := context.Background()

	var results []service.DownloadResult
	if cmd.Provider == "" {
		results = g.Downloads.DownloadAll(ctx)
	} else {
		tag, err := domain.ParseProviderTag(cmd.Provider)
		if err != nil {
			return err
		}
		results = []service.DownloadResult{g.Downloads.DownloadCatalog(ctx, tag)}
	}

	w := tabwriter.NewWriter(g.Out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "PROVIDER\tSAVED\tEXISTING\tTOO LARGE\tFAILED")
	var errs []error
	for _, r := range results {
		fmt.Fprintf(w, "%s\t%d\t%d\t%d\t%d\n", r.Provider, r.Saved, r.Existing, r.TooLarge, r.Failed)
		if r.Error != nil {
			errs = append(errs, fmt.Errorf("%s: %w", r.Provider, r.Error))
		}
	}
	if err := w.Flush(); err != nil {
		return err
	}

	return errors.Join(errs...)
}

type TermsCmd struct {
	All bool `short:"a" help:"Include terms that already have enough photos"`
}

func (cmd *TermsCmd) Run(g *Globals) error {
	terms, err := g.Terms.Load()
	if err != nil {
		return err
	}

	if cmd.All {
		raw, err := g.Terms.Raw()
		if err != nil {
			return err
		}
		terms = domain.LoadTerms(domain.SplitLines(raw), nil)
	}

	if len(terms) == 0 {
		fmt.Fprintln(g.Out, "No terms to review.")
		return nil
	}

	for i, t := range terms {
		marker := " "
		if g.Terms.Satisfied(t.FolderKey()) {
			marker = "*"
		}
		fmt.Fprintf(g.Out, "%s %3d  %s\n", marker, i+1, t)
	}

	return nil
}
