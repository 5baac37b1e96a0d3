package github

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"time"

	"github.com/google/go-github/v66/github"
	"go.uber.org/zap"
	"golang.org/x/oauth2"

	"github.com/shaun/repopush/internal/config"
)

// maxDiagnostic bounds the API message kept on a failed write.
const maxDiagnostic = 200

// RemoteFile is what a probe learned about a repository path.
type RemoteFile struct {
	Exists bool
	SHA    string
	// Status is the HTTP status of the probe, 0 if no response arrived.
	Status int
}

type UploadResult struct {
	Created   bool
	Unchanged bool
	Status    int
	CommitSHA string
}

// UploadError is a write the API did not answer with 200 or 201.
type UploadError struct {
	Status  int
	Message string
}

func (e *UploadError) Error() string {
	if e.Status == 0 {
		return e.Message
	}
	return fmt.Sprintf("%d %s", e.Status, e.Message)
}

type Option func(*Client)

// WithHTTPClient replaces the oauth2 client, e.g. in tests. The caller is
// then responsible for authentication.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.hc = hc }
}

func WithLogger(l *zap.Logger) Option {
	return func(c *Client) { c.log = l }
}

func WithTimeout(d time.Duration) Option {
	return func(c *Client) { c.timeout = d }
}

// WithSkipUnchanged makes Upload skip the write when the remote blob already
// has the local bytes.
func WithSkipUnchanged(skip bool) Option {
	return func(c *Client) { c.skipUnchanged = skip }
}

// Client probes and writes files on one branch of one repository.
type Client struct {
	gh            *github.Client
	sess          config.Session
	hc            *http.Client
	log           *zap.Logger
	timeout       time.Duration
	skipUnchanged bool
}

func NewClient(sess config.Session, opts ...Option) (*Client, error) {
	c := &Client{sess: sess, log: zap.NewNop()}
	for _, o := range opts {
		o(c)
	}
	base, err := sess.BaseURL()
	if err != nil {
		return nil, err
	}
	httpClient := c.hc
	if httpClient == nil {
		httpClient = &http.Client{
			Timeout: c.timeout,
			Transport: &oauth2.Transport{
				Source: oauth2.StaticTokenSource(&oauth2.Token{AccessToken: sess.Token}),
			},
		}
	}
	c.gh = github.NewClient(httpClient)
	c.gh.BaseURL = base
	return c, nil
}

// Probe looks up path on the configured branch. Any failure, not only 404,
// is reported as absent; non-404 failures are logged as warnings because
// they usually mean bad credentials or rate limiting.
func (c *Client) Probe(ctx context.Context, path string) RemoteFile {
	file, dir, resp, err := c.gh.Repositories.GetContents(ctx, c.sess.Owner, c.sess.Repo, path,
		&github.RepositoryContentGetOptions{Ref: c.sess.Branch})
	status := 0
	if resp != nil {
		status = resp.StatusCode
	}
	if err != nil {
		if status != http.StatusNotFound {
			c.log.Warn("probe failed, treating file as absent",
				zap.String("path", path), zap.Int("status", status), zap.Error(err))
		} else {
			c.log.Debug("remote file absent", zap.String("path", path))
		}
		return RemoteFile{Status: status}
	}
	if file == nil || dir != nil {
		c.log.Warn("remote path is not a file, treating as absent", zap.String("path", path))
		return RemoteFile{Status: status}
	}
	c.log.Debug("remote file found", zap.String("path", path), zap.String("sha", file.GetSHA()))
	return RemoteFile{Exists: true, SHA: file.GetSHA(), Status: status}
}

// Upload writes the bytes of localPath to path with the given commit
// message, creating the file or updating the version found by Probe.
func (c *Client) Upload(ctx context.Context, path, localPath, message string) (UploadResult, error) {
	content, err := os.ReadFile(localPath)
	if err != nil {
		return UploadResult{}, fmt.Errorf("read %s: %w", localPath, err)
	}

	remote := c.Probe(ctx, path)
	if c.skipUnchanged && remote.Exists && remote.SHA == BlobSHA(content) {
		return UploadResult{Unchanged: true, Status: remote.Status}, nil
	}

	branch := c.sess.Branch
	opts := &github.RepositoryContentFileOptions{
		Message: github.String(message),
		Content: content,
		Branch:  &branch,
	}
	write := c.gh.Repositories.CreateFile
	if remote.Exists {
		opts.SHA = github.String(remote.SHA)
		write = c.gh.Repositories.UpdateFile
	}

	res, resp, err := write(ctx, c.sess.Owner, c.sess.Repo, path, opts)
	status := 0
	if resp != nil {
		status = resp.StatusCode
	}
	if err != nil {
		return UploadResult{Status: status}, &UploadError{Status: status, Message: diagnostic(err)}
	}
	if status != http.StatusOK && status != http.StatusCreated {
		return UploadResult{Status: status}, &UploadError{Status: status, Message: "unexpected response status"}
	}

	out := UploadResult{Created: !remote.Exists, Status: status}
	if res != nil {
		out.CommitSHA = res.Commit.GetSHA()
	}
	c.log.Debug("file written", zap.String("path", path), zap.Int("status", status), zap.String("commit", out.CommitSHA))
	return out, nil
}

func diagnostic(err error) string {
	msg := err.Error()
	var ghErr *github.ErrorResponse
	if errors.As(err, &ghErr) && ghErr.Message != "" {
		msg = ghErr.Message
	}
	if r := []rune(msg); len(r) > maxDiagnostic {
		msg = string(r[:maxDiagnostic]) + "..."
	}
	return msg
}
