// Package cli provides the command-line interface for storelens.
package cli

import (
	"context"

	"github.com/spf13/cobra"

	"github.com/law-makers/storelens/internal/app"
)

type appKey struct{}

// setApp stores the Application in the command's context so RunE can reach it.
func setApp(cmd *cobra.Command, a *app.Application) {
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	cmd.SetContext(context.WithValue(ctx, appKey{}, a))
}

// appFrom returns the Application attached to cmd, or nil.
func appFrom(cmd *cobra.Command) *app.Application {
	if cmd == nil || cmd.Context() == nil {
		return nil
	}
	a, _ := cmd.Context().Value(appKey{}).(*app.Application)
	return a
}

// mustApp is appFrom for RunE bodies, where PersistentPreRunE has already run.
func mustApp(cmd *cobra.Command) *app.Application {
	a := appFrom(cmd)
	if a == nil {
		panic("cli: application not initialized")
	}
	return a
}
