package commands

import (
	"fmt"

	"github.com/spf13/cobra"
)

// NewPasswordCommand creates the password command group
func NewPasswordCommand(root *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "password",
		Short: "Check, change or reset the account password",
	}

	cmd.AddCommand(
		newPasswordStrengthCommand(root),
		newPasswordChangeCommand(root),
		newPasswordResetCommand(root),
	)

	return cmd
}

func newPasswordStrengthCommand(root *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "strength [password]",
		Short: "Ask the service how strong a password is",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var value string
			if len(args) == 1 {
				value = args[0]
			}
			pw, err := readSecret(cmd, value, "Password: ")
			if err != nil {
				return err
			}
			return root.run(cmd, func(s *Stack) error {
				res := s.Account.CheckPasswordStrength(cmd.Context(), pw)
				if !res.OK() {
					return failure(res.Failure)
				}
				fmt.Fprintf(cmd.OutOrStdout(), "%s (%d/5): %s\n", res.Data.Strength, res.Data.Score, res.Data.Message)
				return nil
			})
		},
	}
}

func newPasswordChangeCommand(root *RootOptions) *cobra.Command {
	var current, next string

	cmd := &cobra.Command{
		Use:   "change",
		Short: "Change the password of the logged-in user",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return root.run(cmd, func(s *Stack) error {
				res := s.Account.ChangePassword(cmd.Context(), current, next, next)
				if !res.OK() {
					return failure(res.Failure)
				}
				fmt.Fprintln(cmd.OutOrStdout(), res.Message)
				return nil
			})
		},
	}

	cmd.Flags().StringVar(&current, "current", "", "Current password")
	cmd.Flags().StringVar(&next, "new", "", "New password")
	_ = cmd.MarkFlagRequired("current")
	_ = cmd.MarkFlagRequired("new")

	return cmd
}

func newPasswordResetCommand(root *RootOptions) *cobra.Command {
	var email, token, next string

	cmd := &cobra.Command{
		Use:   "reset",
		Short: "Reset a forgotten password",
		Long: `Without --token a reset link is emailed. With --token alone the token is
checked; with --token and --new the password is replaced.`,
		Example: `  plantify password reset --email ada@example.com
  plantify password reset --token 3f2c... --new 'N3w!pass'`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return root.run(cmd, func(s *Stack) error {
				ctx := cmd.Context()
				var message string
				switch {
				case token == "":
					res := s.Account.RequestPasswordReset(ctx, email)
					if !res.OK() {
						return failure(res.Failure)
					}
					message = res.Message
				case next == "":
					res := s.Account.VerifyPasswordResetToken(ctx, token)
					if !res.OK() {
						return failure(res.Failure)
					}
					message = res.Message
				default:
					res := s.Account.ConfirmPasswordReset(ctx, token, next, next)
					if !res.OK() {
						return failure(res.Failure)
					}
					message = res.Message
				}
				fmt.Fprintln(cmd.OutOrStdout(), message)
				return nil
			})
		},
	}

	cmd.Flags().StringVarP(&email, "email", "e", "", "Account email")
	cmd.Flags().StringVar(&token, "token", "", "Reset token from the email")
	cmd.Flags().StringVar(&next, "new", "", "New password")

	return cmd
}
