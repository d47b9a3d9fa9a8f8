// Package cmd holds the root cobra command for pipdeps
package cmd

import (
	"context"

	"github.com/pkg/errors"
	"github.com/spf13/cobra"

	"github.com/katsuya-horiuchi/pip-dependency-management/internal/check"
	"github.com/katsuya-horiuchi/pip-dependency-management/internal/cmdutil"
	"github.com/katsuya-horiuchi/pip-dependency-management/internal/configure"
	"github.com/katsuya-horiuchi/pip-dependency-management/internal/remove"
	"github.com/katsuya-horiuchi/pip-dependency-management/internal/signals"
)

func getCmd(helper *cmdutil.Helper) *cobra.Command {
	root := &cobra.Command{
		Use:           "pipdeps",
		Short:         "Track pip package dependencies and find what is safe to uninstall",
		Version:       helper.Version,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			// Bare invocations show help and report failure, so scripts
			// can't mistake them for a successful no-op.
			if err := cmd.Help(); err != nil {
				return err
			}
			return &cmdutil.Error{ExitCode: 1, Err: errors.New("no command specified")}
		},
	}
	root.SetVersionTemplate("{{.Version}}\n")
	helper.AddFlags(root.PersistentFlags())
	root.AddCommand(configure.GetCmd(helper))
	root.AddCommand(check.GetCmd(helper))
	root.AddCommand(remove.GetCmd(helper))
	return root
}

// RunWithArgs runs pipdeps with the specified arguments. The arguments should
// not include the binary being invoked (e.g. "pipdeps").
func RunWithArgs(args []string, version string) int {
	signalWatcher := signals.NewWatcher()
	ctx, cancel := context.WithCancel(context.Background())
	signalWatcher.AddOnClose(cancel)

	helper := cmdutil.NewHelper(version)
	root := getCmd(helper)
	root.SetArgs(args)

	doneCh := make(chan struct{})
	var execErr error
	go func() {
		execErr = root.ExecuteContext(ctx)
		close(doneCh)
	}()

	// Wait for either the command to finish, or for a signal, in which case
	// the watcher has already canceled the command's context.
	select {
	case <-doneCh:
		signalWatcher.Close()
		exitErr := &cmdutil.Error{}
		if errors.As(execErr, &exitErr) {
			return exitErr.ExitCode
		} else if execErr != nil {
			return 1
		}
		return 0
	case <-signalWatcher.Done():
		return 1
	}
}
