// Package batch pushes a manifest of files one at a time and reports the
// outcome of each.
package batch

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"

	"go.uber.org/zap"

	"github.com/shaun/repopush/internal/github"
	"github.com/shaun/repopush/internal/manifest"
)

// Uploader is implemented by *github.Client.
type Uploader interface {
	Probe(ctx context.Context, path string) github.RemoteFile
	Upload(ctx context.Context, path, localPath, message string) (github.UploadResult, error)
}

type Options struct {
	// Root is the directory task paths are resolved against.
	Root       string
	Out        io.Writer
	Logger     *zap.Logger
	DryRun     bool
	HistoryURL string
}

type Driver struct {
	up   Uploader
	opts Options
}

func NewDriver(up Uploader, opts Options) *Driver {
	if opts.Out == nil {
		opts.Out = io.Discard
	}
	if opts.Logger == nil {
		opts.Logger = zap.NewNop()
	}
	return &Driver{up: up, opts: opts}
}

// Run processes tasks in order. A failed or skipped task never stops the
// batch; a cancelled context does, leaving the remaining tasks unreported.
func (d *Driver) Run(ctx context.Context, tasks []manifest.Task) *Report {
	rep := newReport(len(tasks))
	log := d.opts.Logger
	for i, t := range tasks {
		if err := ctx.Err(); err != nil {
			log.Warn("batch interrupted", zap.Int("remaining", len(tasks)-i), zap.Error(err))
			break
		}
		res := d.runTask(ctx, t)
		rep.add(res)
		d.printResult(res)
	}
	rep.WriteSummary(d.opts.Out, d.opts.HistoryURL)
	log.Info("batch finished",
		zap.Int("total", rep.Total),
		zap.Int("succeeded", rep.Succeeded()),
		zap.Int("failed", rep.Failed()),
		zap.Int("skipped", rep.Skipped()))
	return rep
}

func (d *Driver) runTask(ctx context.Context, t manifest.Task) Result {
	local := filepath.Join(d.opts.Root, filepath.FromSlash(t.Path))
	if _, err := os.Stat(local); errors.Is(err, fs.ErrNotExist) {
		d.opts.Logger.Warn("local file missing, skipping", zap.String("path", local))
		return Result{Path: t.Path, Outcome: OutcomeSkipped, Err: err}
	}

	if d.opts.DryRun {
		remote := d.up.Probe(ctx, t.Path)
		return Result{Path: t.Path, Outcome: OutcomePlanned, Status: remote.Status, RemoteSHA: remote.SHA}
	}

	up, err := d.up.Upload(ctx, t.Path, local, t.Message)
	if err != nil {
		d.opts.Logger.Error("upload failed", zap.String("path", t.Path), zap.Int("status", up.Status), zap.Error(err))
		return Result{Path: t.Path, Outcome: OutcomeFailed, Status: up.Status, Err: err}
	}
	res := Result{Path: t.Path, Status: up.Status, Commit: up.CommitSHA}
	switch {
	case up.Unchanged:
		res.Outcome = OutcomeUnchanged
	case up.Created:
		res.Outcome = OutcomeCreated
	default:
		res.Outcome = OutcomeUpdated
	}
	return res
}

func (d *Driver) printResult(res Result) {
	w := d.opts.Out
	switch res.Outcome {
	case OutcomeCreated:
		fmt.Fprintf(w, "created   %s\n", res.Path)
	case OutcomeUpdated:
		fmt.Fprintf(w, "updated   %s\n", res.Path)
	case OutcomeUnchanged:
		fmt.Fprintf(w, "unchanged %s\n", res.Path)
	case OutcomeSkipped:
		fmt.Fprintf(w, "skipped   %s: local file not found\n", res.Path)
	case OutcomeFailed:
		fmt.Fprintf(w, "failed    %s: %v\n", res.Path, res.Err)
	case OutcomePlanned:
		if res.RemoteSHA != "" {
			fmt.Fprintf(w, "would update %s (%s)\n", res.Path, res.RemoteSHA)
		} else {
			fmt.Fprintf(w, "would create %s\n", res.Path)
		}
	}
}
