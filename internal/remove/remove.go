// Package remove implements `pipdeps delete`, which reports whether a
// package can be uninstalled and which other packages would become
// removable along with it.
package remove

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/pkg/errors"
	"github.com/spf13/cobra"

	"github.com/katsuya-horiuchi/pip-dependency-management/internal/closure"
	"github.com/katsuya-horiuchi/pip-dependency-management/internal/cmdutil"
	"github.com/katsuya-horiuchi/pip-dependency-management/internal/manifest"
	"github.com/katsuya-horiuchi/pip-dependency-management/internal/removal"
)

// GetCmd returns the delete subcommand for use on the root cobra command.
func GetCmd(helper *cmdutil.Helper) *cobra.Command {
	var outputJSON bool
	cmd := &cobra.Command{
		Use:           "delete <package>",
		Short:         "Check if a package can be uninstalled, and what it would orphan",
		SilenceUsage:  true,
		SilenceErrors: true,
		Args:          cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			base, err := helper.GetCmdBase(cmd.Flags())
			if err != nil {
				return err
			}
			r := &remove{base}
			if err := r.run(manifest.Canonical(args[0]), outputJSON); err != nil {
				exitErr := &cmdutil.Error{}
				if !errors.As(err, &exitErr) {
					base.LogError("%v", err)
				}
				return err
			}
			return nil
		},
	}
	cmd.Flags().BoolVar(&outputJSON, "json", false, "Render the removal analysis as JSON")
	return cmd
}

type remove struct {
	base *cmdutil.CmdBase
}

func (r *remove) run(target string, outputJSON bool) error {
	closurePath, err := r.base.ProjectConfig.ClosurePath()
	if err != nil {
		return err
	}
	table, err := closure.ReadTable(closurePath)
	if err != nil {
		return err
	}
	analysis, err := removal.Analyze(table, r.base.ProjectConfig.BasePackageSet(), target)
	if err != nil {
		if errors.Is(err, removal.ErrUnknownPackage) {
			// Printed bare, without the error prefix, so scripts keep
			// getting the message format the tool has always used.
			r.base.UI.Error(fmt.Sprintf("Package `%v` isn't in %v. Make sure the file is up to date.", target, closurePath.Base()))
			return &cmdutil.Error{ExitCode: 1, Err: err}
		}
		return err
	}

	if outputJSON {
		rendered, err := json.MarshalIndent(analysis, "", "  ")
		if err != nil {
			return err
		}
		r.base.UI.Output(string(rendered))
		return nil
	}

	if len(analysis.Dependencies) > 0 {
		r.base.UI.Output(fmt.Sprintf("Dependencies of `%v`: %v", target, strings.Join(analysis.Dependencies, ", ")))
	} else {
		r.base.UI.Output(fmt.Sprintf("Package `%v` doesn't have any dependency.", target))
	}
	if len(analysis.Parents) > 0 {
		r.base.UI.Output(fmt.Sprintf("Package `%v` is a dependency of these one(s): %v", target, strings.Join(analysis.Parents, ", ")))
	} else {
		r.base.UI.Output(fmt.Sprintf("No package has `%v` as dependency. You can delete it if you'd like.", target))
	}
	if len(analysis.Orphans) > 0 {
		r.base.UI.Output(fmt.Sprintf("Additionally, you can uninstall these packages: %v", strings.Join(analysis.Orphans, ", ")))
	}
	return nil
}
