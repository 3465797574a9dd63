package commands

import (
	"bufio"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/plantify/plantify-go/apierror"
	"github.com/plantify/plantify-go/config"
)

// RootOptions holds the persistent flags shared by every command
type RootOptions struct {
	ConfigPath string
	LogLevel   string
	Telemetry  bool
}

// NewRootCommand creates the plantify command tree
func NewRootCommand(version string) *cobra.Command {
	opts := &RootOptions{}

	cmd := &cobra.Command{
		Use:   "plantify",
		Short: "Command-line client for the Plantify crop-disease service",
		Long: `Talks to the Plantify account and crop-disease services.

The account service base URL is discovered by probing the configured
candidates; the answer is cached in the local store.`,
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	cmd.PersistentFlags().StringVarP(&opts.ConfigPath, "config", "c", "", "Path to a YAML config file")
	cmd.PersistentFlags().StringVar(&opts.LogLevel, "log-level", "", "Override the configured log level")
	cmd.PersistentFlags().BoolVar(&opts.Telemetry, "telemetry", false, "Export traces and metrics to stderr")

	cmd.AddCommand(
		NewResolveCommand(opts),
		NewRegisterCommand(opts),
		NewLoginCommand(opts),
		NewVerifyCommand(opts),
		NewLogoutCommand(opts),
		NewProfileCommand(opts),
		NewPasswordCommand(opts),
		NewPredictCommand(opts),
		NewHistoryCommand(opts),
		NewVersionCommand(version),
	)

	return cmd
}

// open loads the configuration and builds the stack for one command run.
func (o *RootOptions) open(cmd *cobra.Command) (*Stack, error) {
	cfg, err := config.Load(o.ConfigPath)
	if err != nil {
		return nil, err
	}
	return NewStack(cfg, StackOptions{
		LogWriter: cmd.ErrOrStderr(),
		LogLevel:  o.LogLevel,
		Telemetry: o.Telemetry,
	})
}

// run opens the stack, runs fn and closes the stack.
func (o *RootOptions) run(cmd *cobra.Command, fn func(*Stack) error) (err error) {
	stack, err := o.open(cmd)
	if err != nil {
		return err
	}
	defer func() {
		if cerr := stack.Close(); cerr != nil && err == nil {
			err = cerr
		}
	}()
	return fn(stack)
}

// failure turns a failed operation into the command error.
func failure(info *apierror.Info) error {
	return fmt.Errorf("%s: %s", info.Template().Title, info.Message)
}

// readSecret reads one line from the command input when value is empty.
func readSecret(cmd *cobra.Command, value, prompt string) (string, error) {
	if value != "" {
		return value, nil
	}
	fmt.Fprint(cmd.ErrOrStderr(), prompt)
	line, err := bufio.NewReader(cmd.InOrStdin()).ReadString('\n')
	if err != nil && line == "" {
		return "", fmt.Errorf("failed to read input: %w", err)
	}
	return strings.TrimRight(line, "\r\n"), nil
}
