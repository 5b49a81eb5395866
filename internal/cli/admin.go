package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"posdash/internal/services"
)

func newCreateAdminCmd() *cobra.Command {
	var in services.SignUpInput
	cmd := &cobra.Command{
		Use:   "create-admin",
		Short: "Register a dashboard account",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withEnvironment(cmd, func(env *environment) error {
				user, err := env.svc.Auth.SignUp(cmd.Context(), in)
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Created admin %s (%s)\n", user.Email, user.ID)
				if user.EmailConfirmedAt == nil {
					fmt.Fprintln(cmd.OutOrStdout(), "A confirmation link was sent to the address")
				}
				return nil
			})
		},
	}
	cmd.Flags().StringVar(&in.Email, "email", "", "account email")
	cmd.Flags().StringVar(&in.Password, "password", "", "account password")
	cmd.Flags().StringVar(&in.Username, "username", "", "display name")
	_ = cmd.MarkFlagRequired("email")
	_ = cmd.MarkFlagRequired("password")
	_ = cmd.MarkFlagRequired("username")
	return cmd
}
