// Package git implements the CommitSource port by shelling out to the git CLI.
package git

import (
	"bytes"
	"context"
	"fmt"
	"os/exec"
	"strconv"
	"strings"

	"github.com/ericfisherdev/appregistry/internal/domain/model"
	"github.com/ericfisherdev/appregistry/internal/domain/port/driven"
)

// Compile-time interface satisfaction check.
var _ driven.CommitSource = (*Repo)(nil)

// Repo queries a single checkout.
type Repo struct {
	Path string
}

// New creates a Repo for the given path.
func New(path string) *Repo {
	return &Repo{Path: path}
}

// run executes git in r.Path. The process is killed when ctx ends.
func (r *Repo) run(ctx context.Context, args ...string) (string, error) {
	cmd := exec.CommandContext(ctx, "git", args...)
	cmd.Dir = r.Path
	var out, stderr bytes.Buffer
	cmd.Stdout = &out
	cmd.Stderr = &stderr
	if err := cmd.Run(); err != nil {
		return "", fmt.Errorf("git %s: %w: %s", strings.Join(args, " "), err, strings.TrimSpace(stderr.String()))
	}
	return strings.TrimSpace(out.String()), nil
}

// HeadCommit returns the hash and commit time of HEAD. The time is rendered
// in Unix milliseconds.
func (r *Repo) HeadCommit(ctx context.Context) (model.CommitInfo, error) {
	out, err := r.run(ctx, "log", "-1", "--format=%H %at")
	if err != nil {
		return model.CommitInfo{}, err
	}

	hash, seconds, ok := strings.Cut(out, " ")
	if !ok || hash == "" {
		return model.CommitInfo{}, fmt.Errorf("git log: unexpected output %q", out)
	}
	secs, err := strconv.ParseInt(seconds, 10, 64)
	if err != nil {
		return model.CommitInfo{}, fmt.Errorf("git log: parse commit time %q: %w", seconds, err)
	}

	return model.CommitInfo{
		Hash: hash,
		Date: strconv.FormatInt(secs*1000, 10),
	}, nil
}
