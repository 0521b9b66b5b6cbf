package commands

import (
	"context"
	"fmt"

	"github.com/evidenceledger/certissuer/internal/canonical"
)

type CanonicalizeCmd struct {
	Facts string `help:"JSON file with the certificate facts, - for stdin" required:""`
}

func (c *CanonicalizeCmd) Run(ctx context.Context, globals *Globals) error {
	facts, err := readFacts(c.Facts, globals.In)
	if err != nil {
		return err
	}

	payload, err := canonical.Canonicalize(facts)
	if err != nil {
		return err
	}

	fmt.Fprintf(globals.Out, "%s\n", payload)
	return nil
}
