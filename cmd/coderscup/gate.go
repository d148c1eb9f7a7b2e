package main

import (
	"context"
	"errors"
	"fmt"

	"github.com/taaha-0548/Coders-Cup-Problems/internal/page"
)

func cmdGate(ctx context.Context, a *app, args []string) error {
	if len(args) != 1 {
		return errors.New("usage: gate <password>")
	}
	gate := page.NewGate(a.checker, a.sessions)
	ok, err := gate.Unlock(ctx, args[0])
	if err != nil {
		return err
	}
	if !ok {
		return errors.New("invalid password")
	}
	fmt.Println("unlocked")
	return nil
}
