package commands

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/evidenceledger/certissuer/internal/keys"
	"github.com/evidenceledger/certissuer/internal/models"
	"github.com/evidenceledger/certissuer/internal/signing"
)

// ErrInvalidSignature makes the command exit with a non-zero status
var ErrInvalidSignature = errors.New("certificate signature is invalid")

type VerifyCmd struct {
	PublicKey string `help:"PEM file with the issuer public key" default:"keys/public_key.pem" env:"CERTISSUER_PUBLIC_KEY"`
	Facts     string `help:"JSON file with the certificate facts, - for stdin" required:""`
	Signature string `help:"Base64 signature of the certificate" required:""`
}

func (v *VerifyCmd) Run(ctx context.Context, globals *Globals) error {
	facts, err := readFacts(v.Facts, globals.In)
	if err != nil {
		return err
	}

	verifier := signing.NewVerifier(keys.NewFileProvider("", v.PublicKey))
	failure := verifier.Check(facts, v.Signature)
	if failure != signing.FailureNone {
		slog.Debug("Verification failed", "cause", string(failure))
		fmt.Fprintln(globals.Out, models.StatusInvalid)
		return ErrInvalidSignature
	}

	fmt.Fprintln(globals.Out, models.StatusValid)
	return nil
}
