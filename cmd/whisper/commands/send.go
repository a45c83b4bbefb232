package commands

import (
	"encoding/base64"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/layer-3/whisperbox/sealbox"
)

func sendCmd() *cobra.Command {
	var nickname string

	cmd := &cobra.Command{
		Use:   "send <handle> <message>",
		Short: "Encrypt a message to a handle's published key and post it",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			handle, plaintext := args[0], args[1]

			var profile profileOut
			if err := apiGet("/profile/"+handle, nil, &profile); err != nil {
				return err
			}

			recipientPub, err := sealbox.DecodeKey(profile.EncPk)
			if err != nil {
				return fmt.Errorf("profile has a malformed encryption key: %w", err)
			}

			sealed, err := sealbox.Seal([]byte(plaintext), recipientPub)
			if err != nil {
				return err
			}

			var resp struct {
				ID int64 `json:"id"`
			}
			err = apiPost("/message", map[string]any{
				"handle":     handle,
				"ciphertext": base64.StdEncoding.EncodeToString(sealed.Ciphertext),
				"nonce":      base64.StdEncoding.EncodeToString(sealed.Nonce[:]),
				"epk":        base64.StdEncoding.EncodeToString(sealed.EphemeralKey[:]),
				"nickname":   nickname,
			}, &resp)
			if err != nil {
				return err
			}

			fmt.Printf("sent to %s (message id %d)\n", handle, resp.ID)
			return nil
		},
	}

	cmd.Flags().StringVar(&nickname, "nickname", "", "optional sender label stored with the message")
	return cmd
}
