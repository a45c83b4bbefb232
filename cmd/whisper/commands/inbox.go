package commands

import (
	"crypto/ed25519"
	"encoding/base64"
	"fmt"
	"net/url"
	"os"
	"strings"

	"github.com/mr-tron/base58"
	"github.com/spf13/cobra"

	"github.com/layer-3/whisperbox/sealbox"
)

func inboxCmd() *cobra.Command {
	var keyFile, walletFile string

	cmd := &cobra.Command{
		Use:   "inbox <handle>",
		Short: "Prove ownership of a handle, fetch its inbox and decrypt it",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			handle := args[0]

			kp, err := loadKeypair(keyFile)
			if err != nil {
				return err
			}
			signer, identity, err := loadWallet(walletFile)
			if err != nil {
				return err
			}

			var challenge struct {
				Nonce   string `json:"nonce"`
				Message string `json:"message"`
			}
			if err := apiGet("/challenge", url.Values{"handle": {handle}}, &challenge); err != nil {
				return err
			}

			signature := base58.Encode(ed25519.Sign(signer, []byte(challenge.Message)))

			var inbox struct {
				Messages []struct {
					ID         int64  `json:"id"`
					Ciphertext string `json:"ciphertext"`
					Nonce      string `json:"nonce"`
					Epk        string `json:"epk"`
					Nickname   string `json:"nickname"`
					CreatedAt  string `json:"created_at"`
				} `json:"messages"`
			}
			err = apiPost("/inbox", map[string]any{
				"handle":    handle,
				"identity":  identity,
				"signature": signature,
				"nonce":     challenge.Nonce,
			}, &inbox)
			if err != nil {
				return err
			}

			if len(inbox.Messages) == 0 {
				fmt.Println("inbox is empty")
				return nil
			}

			for _, msg := range inbox.Messages {
				from := msg.Nickname
				if from == "" {
					from = "anonymous"
				}
				fmt.Printf("#%d %s from %s: %s\n", msg.ID, msg.CreatedAt, from, openMessage(kp, msg.Ciphertext, msg.Nonce, msg.Epk))
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&keyFile, "key", "whisper.key", "file holding the mailbox secret key")
	cmd.Flags().StringVar(&walletFile, "wallet", "wallet.key", "file holding the base58 ed25519 wallet secret key")
	return cmd
}

// openMessage decrypts one record, degrading to a placeholder instead of
// failing the whole listing over one bad message.
func openMessage(kp *sealbox.Keypair, ciphertextB64, nonceB64, epkB64 string) string {
	ciphertext, err := base64.StdEncoding.DecodeString(ciphertextB64)
	if err != nil {
		return "(undecryptable)"
	}
	nonce, err := sealbox.DecodeNonce(nonceB64)
	if err != nil {
		return "(undecryptable)"
	}
	epk, err := sealbox.DecodeKey(epkB64)
	if err != nil {
		return "(undecryptable)"
	}
	plaintext, err := sealbox.Open(ciphertext, nonce, epk, kp.Secret)
	if err != nil {
		return "(undecryptable)"
	}
	return string(plaintext)
}

func loadKeypair(path string) (*sealbox.Keypair, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read secret key: %w", err)
	}
	return sealbox.FromSecretKey(strings.TrimSpace(string(raw)))
}

// loadWallet reads a base58 ed25519 secret key (seed or full 64-byte key)
// and returns the signer plus its base58 identity.
func loadWallet(path string) (ed25519.PrivateKey, string, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, "", fmt.Errorf("read wallet key: %w", err)
	}
	decoded, err := base58.Decode(strings.TrimSpace(string(raw)))
	if err != nil {
		return nil, "", fmt.Errorf("malformed wallet key: %w", err)
	}

	var priv ed25519.PrivateKey
	switch len(decoded) {
	case ed25519.SeedSize:
		priv = ed25519.NewKeyFromSeed(decoded)
	case ed25519.PrivateKeySize:
		priv = ed25519.PrivateKey(decoded)
	default:
		return nil, "", fmt.Errorf("wallet key must be %d or %d bytes", ed25519.SeedSize, ed25519.PrivateKeySize)
	}

	identity := base58.Encode(priv.Public().(ed25519.PublicKey))
	return priv, identity, nil
}
