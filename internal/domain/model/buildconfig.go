package model

// UnknownCommitValue stands in for commit metadata that could not be read.
const UnknownCommitValue = "unknown"

// CommitInfo describes the HEAD commit of the checkout the binary runs from.
// Date is Unix milliseconds rendered as a decimal string.
type CommitInfo struct {
	Hash string
	Date string
}

// BuildConfig is the read-only snapshot assembled once at startup from the
// stored apps, the environment, and source-control metadata.
type BuildConfig struct {
	Version    string
	CommitHash string
	CommitDate string
	BuildMode  string
	IsApp      bool
	BasePath   string
	Apps       []App
	Template   string
}

// RedactedApps returns a copy of the snapshot's apps with every Key cleared.
func (c BuildConfig) RedactedApps() []App {
	out := make([]App, len(c.Apps))
	for i, a := range c.Apps {
		a.Key = ""
		out[i] = a
	}
	return out
}
