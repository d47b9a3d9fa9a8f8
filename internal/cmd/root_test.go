package cmd

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/katsuya-horiuchi/pip-dependency-management/internal/cmdutil"
)

func TestRunWithArgsExitCodes(t *testing.T) {
	testCases := []struct {
		name string
		args []string
		code int
	}{
		{
			name: "version",
			args: []string{"--version"},
			code: 0,
		},
		{
			name: "root help",
			args: []string{"--help"},
			code: 0,
		},
		{
			name: "empty args show help and fail",
			args: []string{},
			code: 1,
		},
		{
			name: "unknown command",
			args: []string{"frobnicate"},
			code: 1,
		},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.code, RunWithArgs(tc.args, "test-version"))
		})
	}
}

func TestGetCmdRegistersSubcommands(t *testing.T) {
	root := getCmd(cmdutil.NewHelper("test-version"))
	names := []string{}
	for _, sub := range root.Commands() {
		names = append(names, sub.Name())
	}
	assert.Contains(t, names, "configure")
	assert.Contains(t, names, "check")
	assert.Contains(t, names, "delete")
}
