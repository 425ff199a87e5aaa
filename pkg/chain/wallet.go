package chain

import (
	"errors"
	"fmt"
	"strings"

	"github.com/stellar/go/keypair"
	"github.com/stellar/go/txnbuild"
)

// ErrMalformedSecret is returned when a secret key fails the basic shape
// check or cannot be decoded.
var ErrMalformedSecret = errors.New("malformed secret key")

const secretKeyLength = 56

// Wallet holds a decoded secret key for the duration of one payment attempt.
// It is never persisted and the seed is never included in any network
// payload; only the derived public address leaves the process.
type Wallet struct {
	kp         *keypair.Full
	passphrase string
}

// FromSecret decodes a secret key and binds it to a network passphrase for
// signing.
func FromSecret(secret, networkPassphrase string) (*Wallet, error) {
	secret = strings.TrimSpace(secret)
	if len(secret) != secretKeyLength || !strings.HasPrefix(secret, "S") {
		return nil, fmt.Errorf("%w: expected a 56-character key starting with S", ErrMalformedSecret)
	}

	kp, err := keypair.ParseFull(secret)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedSecret, err)
	}

	return &Wallet{kp: kp, passphrase: networkPassphrase}, nil
}

// Address returns the public identity derived from the secret key.
func (w *Wallet) Address() string {
	return w.kp.Address()
}

// Sign signs a base64 transaction envelope locally and returns the signed
// envelope, also base64 encoded.
func (w *Wallet) Sign(envelopeXDR string) (string, error) {
	generic, err := txnbuild.TransactionFromXDR(envelopeXDR)
	if err != nil {
		return "", fmt.Errorf("failed to parse transaction envelope: %w", err)
	}

	tx, ok := generic.Transaction()
	if !ok {
		return "", fmt.Errorf("unsupported transaction envelope type")
	}

	signed, err := tx.Sign(w.passphrase, w.kp)
	if err != nil {
		return "", fmt.Errorf("failed to sign transaction: %w", err)
	}

	return signed.Base64()
}
