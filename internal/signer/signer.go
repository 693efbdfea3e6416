// Package signer provides the OpenPGP signing capability for the
// release manifest: a detached armored signature (Release.gpg) and a
// clear-signed copy (InRelease).
package signer

import (
	"bytes"
	"errors"
	"fmt"
	"os"

	"github.com/ProtonMail/go-crypto/openpgp"
	"github.com/ProtonMail/go-crypto/openpgp/clearsign"
)

// Signer produces the two signature artifacts for a manifest file.
// Both are required when signing is requested; failure of either is
// fatal for the assemble run.
type Signer interface {
	DetachSign(src, dst string) error
	ClearSign(src, dst string) error
}

// ErrNoKey reports that no signing key material was provided.
var ErrNoKey = errors.New("no signing key material (set DEBSTAGE_SIGNING_KEY or signing_key_file)")

// OpenPGP signs with a private key from an armored keyring.
type OpenPGP struct {
	entity *openpgp.Entity
}

// New reads an armored private keyring and selects the first entity
// with a usable (unlocked) private key.
func New(armoredKey []byte) (*OpenPGP, error) {
	if len(bytes.TrimSpace(armoredKey)) == 0 {
		return nil, ErrNoKey
	}
	ring, err := openpgp.ReadArmoredKeyRing(bytes.NewReader(armoredKey))
	if err != nil {
		return nil, fmt.Errorf("reading signing key: %w", err)
	}
	for _, entity := range ring {
		if entity.PrivateKey == nil {
			continue
		}
		if entity.PrivateKey.Encrypted {
			return nil, fmt.Errorf("signing key %s is passphrase-locked, export it decrypted", entity.PrivateKey.KeyIdString())
		}
		return &OpenPGP{entity: entity}, nil
	}
	return nil, fmt.Errorf("keyring contains no private key: %w", ErrNoKey)
}

// DetachSign writes an armored detached signature of src to dst.
func (s *OpenPGP) DetachSign(src, dst string) error {
	in, err := os.Open(src)
	if err != nil {
		return fmt.Errorf("signing %s: %w", src, err)
	}
	defer in.Close()

	out, err := os.Create(dst)
	if err != nil {
		return fmt.Errorf("signing %s: %w", src, err)
	}
	if err := openpgp.ArmoredDetachSign(out, s.entity, in, nil); err != nil {
		out.Close()
		return fmt.Errorf("signing %s: %w", src, err)
	}
	return out.Close()
}

// ClearSign writes a clear-signed copy of src (body plus inline
// signature) to dst.
func (s *OpenPGP) ClearSign(src, dst string) error {
	data, err := os.ReadFile(src)
	if err != nil {
		return fmt.Errorf("clearsigning %s: %w", src, err)
	}

	var buf bytes.Buffer
	plain, err := clearsign.Encode(&buf, s.entity.PrivateKey, nil)
	if err != nil {
		return fmt.Errorf("clearsigning %s: %w", src, err)
	}
	if _, err := plain.Write(data); err != nil {
		plain.Close()
		return fmt.Errorf("clearsigning %s: %w", src, err)
	}
	if err := plain.Close(); err != nil {
		return fmt.Errorf("clearsigning %s: %w", src, err)
	}
	return os.WriteFile(dst, buf.Bytes(), 0644)
}
