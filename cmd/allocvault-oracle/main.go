// Command allocvault-oracle decrypts queued handles, signs the cleartext and calls the API back
//
//	allocvault-oracle            run the worker
//	allocvault-oracle keygen     write a BGV key pair and print a fresh signer key
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"allocvault/internal/core/attest"
	"allocvault/internal/core/cipher/backend"
	"allocvault/internal/core/cipher/bgv"
	"allocvault/internal/modkit"
	"allocvault/internal/modkit/repokit"
	"allocvault/internal/platform/config"
	"allocvault/internal/platform/logger"
	"allocvault/internal/platform/store"
	oraclemod "allocvault/internal/services/oracle/module"
)

func main() {
	if len(os.Args) > 1 && os.Args[1] == "keygen" {
		if err := keygen(os.Args[2:]); err != nil {
			fmt.Fprintln(os.Stderr, "keygen:", err)
			os.Exit(1)
		}
		return
	}

	root := config.New()
	l := logger.Get()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	sc := store.ConfigFrom(root, "oracle")
	st, err := store.Open(ctx, sc, store.WithLogger(*l))
	if err != nil {
		l.Panic().Err(err).Msg("store.Open failed")
	}
	defer func() {
		if err := st.Close(context.Background()); err != nil {
			l.Error().Err(err).Msg("failed to close store")
		}
	}()
	repokit.MustGuard(ctx, "allocvault-oracle", st)
	db := repokit.WithBeginHooks(st.PG, repokit.LockTimeout(sc.PG.LockTimeout))

	co := backend.FromConfig(root)
	dec, err := backend.Decrypter(co)
	if err != nil {
		l.Panic().Err(err).Str("backend", co.Name).Msg("cipher backend unavailable")
	}

	w, err := oraclemod.NewWorker(modkit.Deps{Log: l, Cfg: root, PG: db}, dec)
	if err != nil {
		l.Panic().Err(err).Msg("oracle worker")
	}
	if err := w.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
		l.Panic().Err(err).Msg("oracle worker stopped")
	}
	l.Info().Msg("oracle worker stopped")
}

func keygen(args []string) error {
	fs := flag.NewFlagSet("keygen", flag.ContinueOnError)
	dir := fs.String("dir", "keys", "directory for bgv.sk and bgv.pk")
	if err := fs.Parse(args); err != nil {
		return err
	}

	sk, pk, err := bgv.GenerateKeys()
	if err != nil {
		return err
	}
	if err := bgv.WriteKeys(*dir, sk, pk); err != nil {
		return err
	}
	s, err := attest.GenerateSigner()
	if err != nil {
		return err
	}

	fmt.Printf("wrote %s/%s and %s/%s\n", *dir, bgv.SecretKeyFile, *dir, bgv.PublicKeyFile)
	fmt.Printf("ORACLE_SIGNER_KEY=%s\n", s.KeyHex())
	fmt.Printf("DECRYPTION_ORACLE_ADDRESS=%s\n", s.Address().Hex())
	return nil
}
