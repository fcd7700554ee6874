// Command allocvault-migrate applies the embedded Postgres schema and exits
package main

import (
	"context"
	"flag"
	"fmt"

	"allocvault/internal/platform/config"
	"allocvault/internal/platform/logger"
	"allocvault/internal/platform/store"
	"allocvault/internal/platform/store/pg"
)

func main() {
	printOnly := flag.Bool("print", false, "print the schema instead of applying it")
	flag.Parse()

	if *printOnly {
		fmt.Print(pg.Schema())
		return
	}

	l := logger.Get()
	ctx := context.Background()

	st, err := store.Open(ctx, store.ConfigFrom(config.New(), "migrate"), store.WithLogger(*l))
	if err != nil {
		l.Panic().Err(err).Msg("store.Open failed")
	}
	defer func() {
		if err := st.Close(ctx); err != nil {
			l.Error().Err(err).Msg("failed to close store")
		}
	}()

	if err := st.Migrate(ctx); err != nil {
		l.Panic().Err(err).Msg("migrate failed")
	}
	l.Info().Msg("schema applied")
}
