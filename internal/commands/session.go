package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/plantify/plantify-go/account"
)

// NewLoginCommand creates the login command
func NewLoginCommand(root *RootOptions) *cobra.Command {
	var email, password string

	cmd := &cobra.Command{
		Use:   "login",
		Short: "Log in and store the session tokens",
		Example: `  # Prompt for the password
  plantify login --email ada@example.com`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			pw, err := readSecret(cmd, password, "Password: ")
			if err != nil {
				return err
			}
			return root.run(cmd, func(s *Stack) error {
				res := s.Account.Login(cmd.Context(), email, pw)
				if !res.OK() {
					if res.Failure.RequiresVerification {
						fmt.Fprintf(cmd.OutOrStdout(), "Verify your email first: plantify verify --email %s --code <code>\n", email)
					}
					return failure(res.Failure)
				}
				fmt.Fprintln(cmd.OutOrStdout(), res.Message)
				return nil
			})
		},
	}

	cmd.Flags().StringVarP(&email, "email", "e", "", "Account email")
	cmd.Flags().StringVarP(&password, "password", "p", "", "Account password (read from stdin when empty)")
	_ = cmd.MarkFlagRequired("email")

	return cmd
}

// NewVerifyCommand creates the verify command
func NewVerifyCommand(root *RootOptions) *cobra.Command {
	var email, code string
	var resend bool

	cmd := &cobra.Command{
		Use:   "verify",
		Short: "Verify the account email with the emailed code",
		Example: `  plantify verify --email ada@example.com --code 123456

  # Ask for a new code
  plantify verify --email ada@example.com --resend`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return root.run(cmd, func(s *Stack) error {
				if resend {
					res := s.Account.ResendOTP(cmd.Context(), email)
					if !res.OK() {
						return failure(res.Failure)
					}
					fmt.Fprintln(cmd.OutOrStdout(), res.Message)
					return nil
				}

				res := s.Account.VerifyOTP(cmd.Context(), email, code)
				if !res.OK() {
					return failure(res.Failure)
				}
				fmt.Fprintln(cmd.OutOrStdout(), res.Message)
				return nil
			})
		},
	}

	cmd.Flags().StringVarP(&email, "email", "e", "", "Account email")
	cmd.Flags().StringVar(&code, "code", "", "6-digit verification code")
	cmd.Flags().BoolVar(&resend, "resend", false, "Send a new code instead of verifying")
	_ = cmd.MarkFlagRequired("email")

	return cmd
}

// NewLogoutCommand creates the logout command
func NewLogoutCommand(root *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "logout",
		Short: "Forget the stored session tokens",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return root.run(cmd, func(s *Stack) error {
				fmt.Fprintln(cmd.OutOrStdout(), s.Account.Logout(cmd.Context()).Message)
				return nil
			})
		},
	}
}

// NewRegisterCommand creates the register command
func NewRegisterCommand(root *RootOptions) *cobra.Command {
	var reg account.Registration

	cmd := &cobra.Command{
		Use:     "register",
		Short:   "Create an account; a verification code is emailed",
		Example: `  plantify register --first-name Ada --last-name Lovelace --email ada@example.com`,
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			pw, err := readSecret(cmd, reg.Password, "Password: ")
			if err != nil {
				return err
			}
			reg.Password = pw
			if reg.ConfirmPassword == "" {
				reg.ConfirmPassword = pw
			}
			return root.run(cmd, func(s *Stack) error {
				res := s.Account.Register(cmd.Context(), reg)
				if !res.OK() {
					return failure(res.Failure)
				}
				fmt.Fprintln(cmd.OutOrStdout(), res.Message)
				return nil
			})
		},
	}

	cmd.Flags().StringVar(&reg.FirstName, "first-name", "", "First name")
	cmd.Flags().StringVar(&reg.LastName, "last-name", "", "Last name")
	cmd.Flags().StringVarP(&reg.Email, "email", "e", "", "Account email")
	cmd.Flags().StringVarP(&reg.Password, "password", "p", "", "Password (read from stdin when empty)")
	cmd.Flags().StringVar(&reg.ConfirmPassword, "confirm", "", "Password confirmation (defaults to the password)")
	_ = cmd.MarkFlagRequired("email")

	return cmd
}
