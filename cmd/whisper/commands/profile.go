package commands

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"
)

type profileOut struct {
	Handle    string   `json:"handle"`
	Owner     string   `json:"owner"`
	EncPk     string   `json:"enc_pk"`
	Allowlist []string `json:"allowlist"`
}

func profileCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "profile <handle>",
		Short: "Show the public profile for a handle",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var profile profileOut
			if err := apiGet("/profile/"+args[0], nil, &profile); err != nil {
				return err
			}

			fmt.Println("handle:   ", profile.Handle)
			fmt.Println("owner:    ", profile.Owner)
			fmt.Println("enc_pk:   ", profile.EncPk)
			fmt.Println("allowlist:", strings.Join(profile.Allowlist, ", "))
			return nil
		},
	}
}
