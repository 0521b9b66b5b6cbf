package commands

import (
	"context"
	"fmt"

	"github.com/evidenceledger/certissuer/internal/keys"
	"github.com/evidenceledger/certissuer/internal/signing"
)

type SignCmd struct {
	PrivateKey string `help:"PEM file with the issuer private key" default:"keys/private_key.pem" env:"CERTISSUER_PRIVATE_KEY"`
	Facts      string `help:"JSON file with the certificate facts, - for stdin" required:""`
}

func (s *SignCmd) Run(ctx context.Context, globals *Globals) error {
	facts, err := readFacts(s.Facts, globals.In)
	if err != nil {
		return err
	}

	signer := signing.NewSigner(keys.NewFileProvider(s.PrivateKey, ""))
	signature, err := signer.Sign(facts)
	if err != nil {
		return err
	}

	fmt.Fprintln(globals.Out, signature)
	return nil
}
