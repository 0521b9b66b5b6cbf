package main

import (
	"context"
	"log/slog"
	"os"

	"github.com/alecthomas/kong"

	"github.com/evidenceledger/certissuer/cmd/certctl/internal/commands"
)

var (
	version = "dev"
	cli     struct {
		Keygen       commands.KeygenCmd       `cmd:"" help:"Generate the issuer RSA key pair"`
		Canonicalize commands.CanonicalizeCmd `cmd:"" help:"Print the canonical payload of certificate facts"`
		Sign         commands.SignCmd         `cmd:"" help:"Sign certificate facts with the issuer private key"`
		Verify       commands.VerifyCmd       `cmd:"" help:"Verify a certificate signature offline"`
		Debug        bool                     `help:"Enable debug mode."`
		Version      kong.VersionFlag
	}
)

func main() {
	ctx := context.Background()
	cmd := kong.Parse(&cli,
		kong.Vars{
			"version": version,
		},
		kong.BindTo(ctx, (*context.Context)(nil)))

	level := slog.LevelWarn
	if cli.Debug {
		level = slog.LevelDebug
	}
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level})))

	err := cmd.Run(&commands.Globals{Debug: cli.Debug, Version: version, Out: os.Stdout, In: os.Stdin})
	cmd.FatalIfErrorf(err)
}
