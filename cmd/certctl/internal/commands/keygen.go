package commands

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/evidenceledger/certissuer/internal/errl"
	"github.com/evidenceledger/certissuer/internal/keys"
)

type KeygenCmd struct {
	Out   string `help:"Directory for the key files" default:"keys" type:"path"`
	Bits  int    `help:"RSA modulus size" default:"2048"`
	Force bool   `help:"Overwrite existing keys"`
}

func (k *KeygenCmd) Run(ctx context.Context, globals *Globals) error {
	privatePath := filepath.Join(k.Out, keys.PrivateKeyFile)
	if _, err := os.Stat(privatePath); err == nil && !k.Force {
		return errl.Errorf("%s already exists, use --force to replace it", privatePath)
	}

	key, err := keys.GenerateRSAKey(k.Bits)
	if err != nil {
		return err
	}

	privatePath, publicPath, err := keys.WriteKeyPair(k.Out, key)
	if err != nil {
		return err
	}

	kid, err := keys.Fingerprint(&key.PublicKey)
	if err != nil {
		return err
	}

	fmt.Fprintf(globals.Out, "Private key: %s\n", privatePath)
	fmt.Fprintf(globals.Out, "Public key:  %s\n", publicPath)
	fmt.Fprintf(globals.Out, "Key ID:      %s\n", kid)
	return nil
}
