package commands

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/layer-3/whisperbox/sealbox"
)

func keygenCmd() *cobra.Command {
	var out string

	cmd := &cobra.Command{
		Use:   "keygen",
		Short: "Generate a mailbox keypair and store the secret key locally",
		RunE: func(cmd *cobra.Command, args []string) error {
			kp, err := sealbox.GenerateKeypair()
			if err != nil {
				return err
			}

			if err := os.WriteFile(out, []byte(kp.SecretBase64()+"\n"), 0o600); err != nil {
				return fmt.Errorf("write secret key: %w", err)
			}

			fmt.Println("public key:", kp.PublicBase64())
			fmt.Println("secret key written to", out)
			fmt.Println("register the public key as your handle's enc_pk; keep the secret key file safe")
			return nil
		},
	}

	cmd.Flags().StringVar(&out, "out", "whisper.key", "file to write the secret key to")
	return cmd
}
