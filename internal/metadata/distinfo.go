package metadata

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"strings"
	"sync"

	"github.com/hashicorp/go-hclog"
	"github.com/karrick/godirwalk"
	"github.com/pkg/errors"

	"github.com/katsuya-horiuchi/pip-dependency-management/internal/manifest"
	"github.com/katsuya-horiuchi/pip-dependency-management/internal/pippath"
	"github.com/katsuya-horiuchi/pip-dependency-management/internal/util"
)

// distInfoSource reads installed package metadata straight from a
// site-packages directory, no pip and no network. The directory is scanned
// once on first lookup; every *.dist-info/METADATA found contributes one
// index entry.
type distInfoSource struct {
	sitePackages pippath.AbsoluteSystemPath
	logger       hclog.Logger

	scanOnce sync.Once
	scanErr  error
	index    map[string][]string
}

func newDistInfoSource(opts Options) (*distInfoSource, error) {
	if opts.SitePackages == "" {
		return nil, errors.New("the dist-info source needs --site-packages (or the sitePackages config key)")
	}
	return &distInfoSource{
		sitePackages: opts.SitePackages,
		logger:       opts.Logger,
	}, nil
}

func (d *distInfoSource) Name() string { return SourceDistInfo }

func (d *distInfoSource) DirectDependencies(ctx context.Context, name string) ([]string, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	d.scanOnce.Do(d.scan)
	if d.scanErr != nil {
		return nil, d.scanErr
	}
	deps, ok := d.index[manifest.Canonical(name)]
	if !ok {
		return nil, errors.Wrapf(ErrPackageUnknown, "no dist-info under %v for %v", d.sitePackages, name)
	}
	return deps, nil
}

func (d *distInfoSource) scan() {
	index := make(map[string][]string)
	walkErr := godirwalk.Walk(d.sitePackages.ToString(), &godirwalk.Options{
		Callback: func(name string, info *godirwalk.Dirent) error {
			if !info.IsDir() || !strings.HasSuffix(info.Name(), ".dist-info") {
				return nil
			}
			metadataPath := pippath.AbsoluteSystemPathFromUpstream(name).UntypedJoin("METADATA")
			distName, deps, err := readCoreMetadata(metadataPath)
			if err != nil {
				d.logger.Warn(fmt.Sprintf("skipping %v: %v", name, err))
			} else if distName != "" {
				index[distName] = deps
			}
			// Nothing interesting lives below a dist-info directory.
			return godirwalk.SkipThis
		},
		ErrorCallback: func(pathname string, err error) godirwalk.ErrorAction {
			return godirwalk.SkipNode
		},
		Unsorted: true,
	})
	if walkErr != nil {
		d.scanErr = errors.Wrapf(walkErr, "scanning %v", d.sitePackages)
		return
	}
	d.logger.Debug(fmt.Sprintf("indexed %v dist-info entries under %v", len(index), d.sitePackages))
	d.index = index
}

func readCoreMetadata(path pippath.AbsoluteSystemPath) (string, []string, error) {
	file, err := path.Open()
	if err != nil {
		return "", nil, err
	}
	defer util.CloseAndIgnoreError(file)
	return parseCoreMetadata(file)
}

// parseCoreMetadata reads the RFC 822 style header block of a METADATA
// file. The headers end at the first blank line; whatever follows is the
// package's long description and may well contain text that looks like
// headers, so the scan stops there.
func parseCoreMetadata(reader io.Reader) (string, []string, error) {
	var name string
	var entries []string
	scanner := bufio.NewScanner(reader)
	for scanner.Scan() {
		line := scanner.Text()
		if strings.TrimSpace(line) == "" {
			break
		}
		if value, ok := headerValue(line, "Name:"); ok {
			name = manifest.Canonical(value)
		} else if value, ok := headerValue(line, "Requires-Dist:"); ok {
			entries = append(entries, value)
		}
	}
	if err := scanner.Err(); err != nil {
		return "", nil, err
	}
	return name, parseRequiresDist(entries), nil
}

func headerValue(line string, prefix string) (string, bool) {
	if !strings.HasPrefix(line, prefix) {
		return "", false
	}
	return strings.TrimSpace(strings.TrimPrefix(line, prefix)), true
}
