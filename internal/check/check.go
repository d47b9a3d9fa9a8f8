// Package check implements `pipdeps check`, which lists the packages no
// other pinned package depends on. Those are the packages the user chose
// to install, as opposed to the ones that arrived as dependencies.
package check

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/katsuya-horiuchi/pip-dependency-management/internal/closure"
	"github.com/katsuya-horiuchi/pip-dependency-management/internal/cmdutil"
	"github.com/katsuya-horiuchi/pip-dependency-management/internal/removal"
)

// GetCmd returns the check subcommand for use on the root cobra command.
func GetCmd(helper *cmdutil.Helper) *cobra.Command {
	var outputJSON bool
	cmd := &cobra.Command{
		Use:           "check",
		Short:         "List the packages no other pinned package depends on",
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			base, err := helper.GetCmdBase(cmd.Flags())
			if err != nil {
				return err
			}
			c := &check{base}
			if err := c.run(outputJSON); err != nil {
				base.LogError("%v", err)
				return err
			}
			return nil
		},
	}
	cmd.Flags().BoolVar(&outputJSON, "json", false, "Render the unreferenced packages as JSON")
	return cmd
}

type check struct {
	base *cmdutil.CmdBase
}

func (c *check) run(outputJSON bool) error {
	closurePath, err := c.base.ProjectConfig.ClosurePath()
	if err != nil {
		return err
	}
	table, err := closure.ReadTable(closurePath)
	if err != nil {
		return err
	}
	unreferenced := removal.Unreferenced(table, c.base.ProjectConfig.BasePackageSet())
	if outputJSON {
		rendered, err := json.MarshalIndent(unreferenced, "", "  ")
		if err != nil {
			return err
		}
		c.base.UI.Output(string(rendered))
		return nil
	}
	c.base.UI.Output(fmt.Sprintf("Seems like you've installed these packages: %v", strings.Join(unreferenced, ", ")))
	return nil
}
