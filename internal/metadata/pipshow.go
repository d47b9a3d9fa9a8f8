package metadata

import (
	"bufio"
	"context"
	"os/exec"
	"strings"
	"time"

	"github.com/hashicorp/go-hclog"
	"github.com/pkg/errors"
)

// pipSource shells out to `pip show <name>` and reads the Requires line.
// It works inside whatever environment pip itself resolves to, which makes
// it the default: run from a virtualenv, it sees that virtualenv.
type pipSource struct {
	command string
	timeout time.Duration
	logger  hclog.Logger
}

func newPipSource(opts Options) *pipSource {
	command := opts.PipCommand
	if command == "" {
		command = "pip"
	}
	return &pipSource{
		command: command,
		timeout: opts.QueryTimeout,
		logger:  opts.Logger,
	}
}

func (p *pipSource) Name() string { return SourcePip }

func (p *pipSource) DirectDependencies(ctx context.Context, name string) ([]string, error) {
	if p.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, p.timeout)
		defer cancel()
	}
	cmd := exec.CommandContext(ctx, p.command, "show", name)
	output, err := cmd.Output()
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return nil, errors.Wrapf(ctxErr, "`%v show %v`", p.command, name)
		}
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) {
			// pip exits non-zero when the package isn't installed.
			return nil, errors.Wrapf(ErrPackageUnknown, "`%v show %v` exited %v", p.command, name, exitErr.ExitCode())
		}
		return nil, errors.Wrapf(err, "running `%v show %v`", p.command, name)
	}
	deps, found := parseRequiresLine(string(output))
	if !found {
		return nil, errors.Wrapf(ErrPackageUnknown, "`%v show %v` printed no Requires line", p.command, name)
	}
	return deps, nil
}

// parseRequiresLine scans `pip show` output for the Requires line and
// splits its comma-separated names. An installed leaf package still prints
// the line, just with nothing after the colon, so "line present but empty"
// means no dependencies while "line absent" means pip never heard of the
// package.
func parseRequiresLine(output string) ([]string, bool) {
	scanner := bufio.NewScanner(strings.NewReader(output))
	for scanner.Scan() {
		line := scanner.Text()
		if !strings.HasPrefix(line, "Requires:") {
			continue
		}
		rest := strings.TrimPrefix(line, "Requires:")
		var names []string
		for _, field := range strings.Split(rest, ",") {
			if name := strings.TrimSpace(field); name != "" {
				names = append(names, name)
			}
		}
		return normalize(names), true
	}
	return nil, false
}
