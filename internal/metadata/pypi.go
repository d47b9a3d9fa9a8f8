package metadata

import (
	"context"
	"encoding/json"
	"fmt"
	"io/ioutil"
	"net/http"
	"net/url"
	"runtime"
	"strings"
	"time"

	"github.com/hashicorp/go-retryablehttp"
	"github.com/pkg/errors"

	"github.com/katsuya-horiuchi/pip-dependency-management/internal/util"
)

// pypiSource queries a package registry's JSON API. It doesn't need pip or
// a local environment at all, which makes it useful for analyzing a
// requirements file on a machine where nothing is installed.
type pypiSource struct {
	registryURL string
	version     string
	// An http client
	HTTPClient *retryablehttp.Client
}

func newPyPISource(opts Options) (*pypiSource, error) {
	registryURL := strings.TrimSuffix(opts.RegistryURL, "/")
	if _, err := url.ParseRequestURI(registryURL); err != nil {
		return nil, errors.Wrapf(err, "invalid registry URL %q", opts.RegistryURL)
	}
	timeout := opts.QueryTimeout
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &pypiSource{
		registryURL: registryURL,
		version:     opts.Version,
		HTTPClient: &retryablehttp.Client{
			HTTPClient: &http.Client{
				Timeout: timeout,
			},
			RetryWaitMin: 2 * time.Second,
			RetryWaitMax: 10 * time.Second,
			RetryMax:     2,
			CheckRetry:   retryablehttp.DefaultRetryPolicy,
			Backoff:      retryablehttp.DefaultBackoff,
			Logger:       opts.Logger,
		},
	}, nil
}

func (p *pypiSource) Name() string { return SourcePyPI }

func (p *pypiSource) UserAgent() string {
	return fmt.Sprintf("pipdeps %v %v %v (%v)", p.version, runtime.Version(), runtime.GOOS, runtime.GOARCH)
}

// releaseInfo is the slice of the registry's JSON document we care about.
type releaseInfo struct {
	Info struct {
		RequiresDist []string `json:"requires_dist"`
	} `json:"info"`
}

func (p *pypiSource) DirectDependencies(ctx context.Context, name string) ([]string, error) {
	requestURL := fmt.Sprintf("%v/pypi/%v/json", p.registryURL, url.PathEscape(name))
	req, err := retryablehttp.NewRequest(http.MethodGet, requestURL, nil)
	if err != nil {
		return nil, errors.Wrapf(err, "invalid registry request for %v", name)
	}
	req = req.WithContext(ctx)
	req.Header.Set("User-Agent", p.UserAgent())
	req.Header.Set("Accept", "application/json")
	resp, err := p.HTTPClient.Do(req)
	if err != nil {
		return nil, errors.Wrapf(err, "querying %v", requestURL)
	}
	defer util.CloseAndIgnoreError(resp.Body)
	if resp.StatusCode == http.StatusNotFound {
		return nil, errors.Wrapf(ErrPackageUnknown, "registry has no release for %v", name)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, errors.Errorf("registry returned %v for %v", resp.Status, name)
	}
	body, err := ioutil.ReadAll(resp.Body)
	if err != nil {
		return nil, errors.Wrapf(err, "reading registry response for %v", name)
	}
	release := &releaseInfo{}
	if err := json.Unmarshal(body, release); err != nil {
		return nil, errors.Wrapf(err, "could not parse registry response for %v", name)
	}
	return parseRequiresDist(release.Info.RequiresDist), nil
}
