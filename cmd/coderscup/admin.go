package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"

	"github.com/taaha-0548/Coders-Cup-Problems/internal/contest"
	"github.com/taaha-0548/Coders-Cup-Problems/internal/page"
)

func cmdAdmin(ctx context.Context, a *app, args []string) error {
	fs := flag.NewFlagSet("admin", flag.ContinueOnError)
	password := fs.String("password", os.Getenv("CC_ADMIN_PASSWORD"), "admin password (defaults to CC_ADMIN_PASSWORD)")
	if err := fs.Parse(args); err != nil {
		return err
	}
	rest := fs.Args()
	if len(rest) == 0 {
		return errors.New("usage: admin [-password ...] <login|problem|contest> ...")
	}

	// Reading the contest state needs no credentials.
	if len(rest) >= 2 && rest[0] == "contest" && rest[1] == "status" {
		return printContestStatus(ctx, a)
	}

	if *password == "" {
		return errors.New("admin password required: -password flag or CC_ADMIN_PASSWORD")
	}
	panel := page.NewAdminPanel(a.controller(), a.problems)
	if !panel.Login(ctx, *password) {
		return panel.Err
	}

	switch rest[0] {
	case "login":
		fmt.Println(panel.Message)
		return nil
	case "problem":
		return adminProblem(ctx, panel, rest[1:])
	case "contest":
		return adminContest(ctx, panel, rest[1:])
	default:
		return fmt.Errorf("unknown admin command %q", rest[0])
	}
}

func adminProblem(ctx context.Context, panel *page.AdminPanel, args []string) error {
	if len(args) != 2 {
		return errors.New("usage: admin problem <add|update> <file.json> | delete <id>")
	}
	switch args[0] {
	case "add", "update":
		data, err := os.ReadFile(args[1])
		if err != nil {
			return fmt.Errorf("failed to read problem file: %w", err)
		}
		if !panel.UploadJSON(data) {
			return panel.Err
		}
		var ok bool
		if args[0] == "add" {
			ok = panel.SubmitNew(ctx)
		} else {
			ok = panel.SubmitEdit(ctx)
		}
		if !ok {
			return panel.Err
		}
	case "delete":
		if !panel.DeleteProblem(ctx, args[1]) {
			return panel.Err
		}
	default:
		return fmt.Errorf("unknown problem command %q", args[0])
	}
	fmt.Println(panel.Message)
	return nil
}

func adminContest(ctx context.Context, panel *page.AdminPanel, args []string) error {
	if len(args) == 0 {
		return errors.New("usage: admin contest <schedule|start|stop|reset|add-time|add-precountdown-time|visibility|status> [flags]")
	}
	action, rest := args[0], args[1:]

	fs := flag.NewFlagSet("admin contest "+action, flag.ContinueOnError)
	countdown := fs.Int("countdown", 10, "countdown minutes before the start")
	duration := fs.Int("duration", 120, "contest duration in minutes")
	minutes := fs.Int("minutes", 10, "minutes to add")
	visible := fs.Bool("visible", true, "show problems to contestants")
	if err := fs.Parse(rest); err != nil {
		return err
	}

	var ok bool
	switch action {
	case "schedule":
		ok = panel.Schedule(ctx, *countdown, *duration)
	case "start":
		ok = panel.Start(ctx, *duration)
	case "stop":
		ok = panel.Stop(ctx)
	case "reset":
		ok = panel.Reset(ctx)
	case "add-time":
		ok = panel.AddTime(ctx, *minutes)
	case "add-precountdown-time":
		ok = panel.AddPrecountdownTime(ctx, *minutes)
	case "visibility":
		ok = panel.SetVisibility(ctx, *visible)
	default:
		return fmt.Errorf("unknown contest action %q", action)
	}
	if !ok {
		return panel.Err
	}
	fmt.Println(panel.Message)
	return nil
}

func printContestStatus(ctx context.Context, a *app) error {
	if !a.cfg.HasContest() {
		return errors.New("contest status requires api mode")
	}
	st, err := a.client.ContestStatus(ctx)
	if err != nil {
		return err
	}
	if st.NoContest() {
		fmt.Println(st.Message)
		return nil
	}
	fmt.Printf("status:    %s\n", st.Status)
	fmt.Printf("remaining: %s\n", contest.FormatClock(st.Remaining()))
	fmt.Printf("visible:   %t\n", st.IsVisible)
	if st.TotalDurationMinutes > 0 {
		fmt.Printf("duration:  %d min\n", st.TotalDurationMinutes)
	}
	return nil
}
