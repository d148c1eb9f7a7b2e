package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/taaha-0548/Coders-Cup-Problems/internal/page"
)

func cmdProblems(ctx context.Context, a *app, args []string) error {
	if len(args) == 0 {
		return errors.New("usage: problems <list|show> ...")
	}
	switch args[0] {
	case "list":
		return listProblems(ctx, a)
	case "show":
		if len(args) != 2 {
			return errors.New("usage: problems show <id>")
		}
		return showProblem(ctx, a, args[1])
	default:
		return fmt.Errorf("unknown problems command %q", args[0])
	}
}

func listProblems(ctx context.Context, a *app) error {
	landing := page.NewLanding(a.problems, false)
	if err := landing.Refresh(ctx); err != nil {
		return err
	}
	if len(landing.Problems) == 0 {
		fmt.Println("no problems")
		return nil
	}
	tw := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tTITLE\tORIGIN\tTIME\tMEMORY")
	for _, s := range landing.Problems {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\n", s.ID, s.Title, s.Origin, s.TimeLimit, s.MemoryLimit)
	}
	return tw.Flush()
}

func showProblem(ctx context.Context, a *app, id string) error {
	view := page.NewProblemView(a.problems, false)
	if err := view.Load(ctx, id); err != nil {
		return err
	}
	p := view.Problem

	fmt.Printf("Problem %s: %s\n", p.ID, p.Title)
	if p.Origin != "" {
		fmt.Printf("Origin: %s\n", p.Origin)
	}
	if p.TimeLimit != "" || p.MemoryLimit != "" {
		fmt.Printf("Limits: %s / %s\n", p.TimeLimit, p.MemoryLimit)
	}
	fmt.Printf("\n%s\n", p.Statement)
	if p.Input != "" {
		fmt.Printf("\nInput\n%s\n", p.Input)
	}
	if p.Output != "" {
		fmt.Printf("\nOutput\n%s\n", p.Output)
	}
	if p.Constraints != "" {
		fmt.Printf("\nConstraints\n%s\n", p.Constraints)
	}
	for i, s := range p.Samples {
		fmt.Printf("\nSample %d\n  input:  %s\n  output: %s\n", i+1, s.Input, s.Output)
	}
	if p.Note != "" {
		fmt.Printf("\nNote\n%s\n", p.Note)
	}
	if view.SubmitEnabled() {
		fmt.Printf("\nSubmit: %s\n", p.VJLink)
	}
	return nil
}
