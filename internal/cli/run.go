// Package cli runs one address-collection session end to end: a simulated
// native bridge, a local browser surface, and the session controller wired
// together from flags and environment.
package cli

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/okhi/okcollect/internal/auth"
	"github.com/okhi/okcollect/internal/config"
	"github.com/okhi/okcollect/internal/domain"
	ilog "github.com/okhi/okcollect/internal/log"
	"github.com/okhi/okcollect/internal/manager"
	"github.com/okhi/okcollect/internal/payload"
	"github.com/okhi/okcollect/internal/platform"
	"github.com/okhi/okcollect/internal/platform/android"
	"github.com/okhi/okcollect/internal/platform/ios"
	"github.com/okhi/okcollect/internal/platform/sim"
	"github.com/okhi/okcollect/internal/surface/wsbridge"
	"github.com/okhi/okcollect/internal/verification"
)

// Run executes the CLI and returns the process exit code.
func Run(args []string) int {
	cfg, err := config.ParseCLIFlags(args)
	if err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return 0
		}
		fmt.Fprintln(os.Stderr, "okcollect:", err)
		return 2
	}

	logger := ilog.New(cfg.LogLevel)

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()
	ctx, timeoutCancel := context.WithTimeout(ctx, cfg.Timeout)
	defer timeoutCancel()

	bridge, err := sim.Open(cfg.DBPath, sim.Options{
		Platform:         domain.Platform(cfg.Platform),
		LocationServices: true,
		GrantOnRequest:   true,
	})
	if err != nil {
		logger.Error("open simulated bridge", "err", err)
		return 1
	}
	defer func() { _ = bridge.Close() }()

	var adapter platform.Adapter
	switch domain.Platform(cfg.Platform) {
	case domain.PlatformIOS:
		adapter = ios.New(bridge, logger)
	default:
		adapter = android.New(bridge, logger)
	}

	surface := wsbridge.New(cfg.ListenAddr, logger)
	if err := surface.Start(); err != nil {
		logger.Error("start surface", "err", err)
		return 1
	}

	tokens := auth.NewProvider(cfg.App, logger)
	verifier := verification.NewClient(cfg.App, tokens, logger)

	results := make(chan manager.Result, 1)
	closes := make(chan struct{}, 1)
	errs := make(chan error, 1)
	mgr := manager.New(&cfg.App, adapter, tokens, surface, manager.Callbacks{
		OnSuccess:      func(r manager.Result) { results <- r },
		OnError:        func(err error) { errs <- err },
		OnCloseRequest: func() { closes <- struct{}{} },
	}, logger)
	mgr.SetVerificationStarter(verifier)
	defer func() { _ = mgr.Close() }()

	onboarding := cfg.PermissionsOnboarding
	mgr.Update(ctx, manager.Props{
		User: domain.User{
			Phone:     cfg.Phone,
			FirstName: cfg.FirstName,
			LastName:  cfg.LastName,
			Email:     cfg.Email,
		},
		Config: &payload.Config{PermissionsOnboarding: &onboarding},
	}, true)

	fmt.Fprintf(os.Stderr, "Open %s in a browser to pick an address.\n", surface.URL())

	select {
	case <-ctx.Done():
		logger.Warn("session ended without an address", "reason", ctx.Err())
		return 1
	case <-closes:
		logger.Info("session closed by the user")
		return 0
	case err := <-errs:
		logger.Error("session failed", "code", domain.ErrorCode(err), "err", err)
		return 1
	case res := <-results:
		return finish(ctx, logger, cfg, res)
	}
}

// finish prints the collected address to stdout and optionally starts
// verification.
func finish(ctx context.Context, logger *slog.Logger, cfg config.CLI, res manager.Result) int {
	out, err := json.MarshalIndent(res.Location, "", "  ")
	if err != nil {
		logger.Error("encode collected address", "err", err)
		return 1
	}
	fmt.Println(string(out))

	if cfg.Verify {
		if err := res.StartVerification(ctx); err != nil {
			logger.Error("start verification", "code", domain.ErrorCode(err), "err", err)
			return 1
		}
		logger.Info("verification started", "location_id", res.Location.ID)
	}
	return 0
}
