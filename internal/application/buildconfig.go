package application

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/ericfisherdev/appregistry/internal/domain/model"
	"github.com/ericfisherdev/appregistry/internal/domain/port/driven"
)

// Defaults applied by AssembleBuildConfig when an environment value is empty.
const (
	DefaultBuildMode     = "standalone"
	DefaultInputTemplate = "{{input}}"
	DefaultCommitTimeout = 3 * time.Second
)

// BuildEnv holds the environment-derived inputs of the build snapshot. Empty
// strings mean "not set".
type BuildEnv struct {
	Version   string
	BuildMode string
	IsApp     bool
	BasePath  string
	Template  string
}

// CommitResult is the outcome of one source-control query.
type CommitResult struct {
	Info model.CommitInfo
	Err  error
}

// AssembleBuildConfig merges apps, env and commit into a snapshot. It has no
// side effects: identical inputs produce identical snapshots. A failed or
// partial commit result yields model.UnknownCommitValue for hash and date.
func AssembleBuildConfig(apps []model.App, env BuildEnv, commit CommitResult) model.BuildConfig {
	hash, date := model.UnknownCommitValue, model.UnknownCommitValue
	if commit.Err == nil {
		if commit.Info.Hash != "" {
			hash = commit.Info.Hash
		}
		if commit.Info.Date != "" {
			date = commit.Info.Date
		}
	}

	return model.BuildConfig{
		Version:    formatVersion(env.Version),
		CommitHash: hash,
		CommitDate: date,
		BuildMode:  orDefault(env.BuildMode, DefaultBuildMode),
		IsApp:      env.IsApp,
		BasePath:   env.BasePath,
		Apps:       append([]model.App{}, apps...),
		Template:   orDefault(env.Template, DefaultInputTemplate),
	}
}

func formatVersion(v string) string {
	v = strings.TrimSpace(v)
	switch {
	case v == "":
		return model.UnknownCommitValue
	case strings.HasPrefix(v, "v"):
		return v
	default:
		return "v" + v
	}
}

// orDefault treats an empty value as unset, so BUILD_MODE="" still yields
// the default rather than an empty build mode.
func orDefault(v, def string) string {
	if v == "" {
		return def
	}
	return v
}

var errNoCommitSource = errors.New("no commit source configured")

// BuildConfigLoader gathers the inputs of AssembleBuildConfig once at
// startup.
type BuildConfigLoader struct {
	store   driven.AppStore
	commits driven.CommitSource
	env     BuildEnv
	timeout time.Duration
	logger  *slog.Logger
}

// NewBuildConfigLoader creates a loader. commits may be nil, in which case
// commit metadata is always reported as unknown. A non-positive timeout
// falls back to DefaultCommitTimeout.
func NewBuildConfigLoader(
	store driven.AppStore,
	commits driven.CommitSource,
	env BuildEnv,
	timeout time.Duration,
	logger *slog.Logger,
) *BuildConfigLoader {
	if timeout <= 0 {
		timeout = DefaultCommitTimeout
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &BuildConfigLoader{
		store:   store,
		commits: commits,
		env:     env,
		timeout: timeout,
		logger:  logger,
	}
}

// Load reads the stored apps and queries the commit source once. Only a
// store failure is returned; commit failures degrade to unknown values.
func (l *BuildConfigLoader) Load(ctx context.Context) (model.BuildConfig, error) {
	apps, err := l.store.List(ctx)
	if err != nil {
		return model.BuildConfig{}, fmt.Errorf("load apps for build config: %w", err)
	}

	return AssembleBuildConfig(apps, l.env, l.queryCommit(ctx)), nil
}

func (l *BuildConfigLoader) queryCommit(ctx context.Context) CommitResult {
	if l.commits == nil {
		return CommitResult{Err: errNoCommitSource}
	}

	ctx, cancel := context.WithTimeout(ctx, l.timeout)
	defer cancel()

	info, err := l.commits.HeadCommit(ctx)
	if err != nil {
		l.logger.Warn("commit info unavailable, using placeholders", "error", err)
	}
	return CommitResult{Info: info, Err: err}
}
