// @title         allocvault API
// @version       0.1.0
// @description   Encrypted resource requests, zone accumulators and oracle decryption
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization

//go:generate swag init --v3.1 -g main.go -d ./,../../internal/services -o ../../internal/services/api/docs --instanceName api --parseInternal

package main

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"sync"
	"syscall"

	"allocvault/internal/core/cipher/backend"
	"allocvault/internal/modkit"
	"allocvault/internal/modkit/repokit"
	"allocvault/internal/platform/config"
	"allocvault/internal/platform/logger"
	phttp "allocvault/internal/platform/net/http"
	"allocvault/internal/platform/store"
	"allocvault/internal/services/api"
)

func main() {
	root := config.New()
	apiCfg := root.Prefix("CORE_API_")
	l := logger.Get()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	sc := store.ConfigFrom(root, "api")
	st, err := store.Open(ctx, sc, store.WithLogger(*l))
	if err != nil {
		l.Panic().Err(err).Msg("store.Open failed")
	}
	defer func() {
		if err := st.Close(context.Background()); err != nil {
			l.Error().Err(err).Msg("failed to close store")
		}
	}()
	repokit.MustGuard(ctx, "allocvault-api", st)
	db := repokit.WithBeginHooks(st.PG, repokit.LockTimeout(sc.PG.LockTimeout))

	if apiCfg.MayBool("MIGRATE", false) {
		if err := st.Migrate(ctx); err != nil {
			l.Panic().Err(err).Msg("migrate failed")
		}
		l.Info().Msg("schema applied")
	}

	co := backend.FromConfig(root)
	alg, err := backend.Algebra(co)
	if err != nil {
		l.Panic().Err(err).Str("backend", co.Name).Msg("cipher backend unavailable")
	}
	if co.Name == backend.Mirror {
		l.Warn().Msg("CIPHER_BACKEND=mirror stores plaintext handles; never use it outside development")
	}

	deps := modkit.Deps{Log: l, Cfg: root, PG: db, CH: st.CH, Algebra: alg}

	srv := phttp.NewServer(apiCfg)
	mounted := api.Mount(srv.Router(), api.OptionsFrom(root, deps))

	loops := map[string]func(context.Context) error{
		"http":    srv.Run,
		"sweeper": mounted.Sweeper.Run,
	}
	if mounted.Relay != nil {
		loops["relay"] = mounted.Relay.Run
	}

	// the first loop to fail takes the others down with it
	runCtx, cancel := context.WithCancel(ctx)
	defer cancel()
	var (
		wg   sync.WaitGroup
		mu   sync.Mutex
		errs []error
	)
	for name, run := range loops {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if err := run(runCtx); err != nil && !errors.Is(err, context.Canceled) {
				l.Error().Err(err).Str("loop", name).Msg("loop failed")
				mu.Lock()
				errs = append(errs, err)
				mu.Unlock()
			}
			cancel()
		}()
	}
	wg.Wait()

	if err := errors.Join(errs...); err != nil {
		l.Panic().Err(err).Msg("api stopped")
	}
	l.Info().Msg("api stopped")
}
