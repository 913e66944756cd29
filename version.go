package serdex

import "strings"

const Version = "0.4.0"

// Stamped at link time, for example:
//
//	go build -ldflags "-X github.com/hengadev/serdex.GitCommit=$(git rev-parse HEAD)"
var (
	GitCommit string
	BuildDate string
	BuildUser string
)

// VersionDetails describes the running build. Unstamped fields are left out
// when it is serialized.
type VersionDetails struct {
	Version   string `serde:"version"`
	GitCommit string `serde:"git_commit,omitempty"`
	BuildDate string `serde:"build_date,omitempty"`
	BuildUser string `serde:"build_user,omitempty"`
}

func FullVersionInfo() VersionDetails {
	return VersionDetails{Version: Version, GitCommit: GitCommit, BuildDate: BuildDate, BuildUser: BuildUser}
}

// VersionInfo renders the build as "serdex v0.4.0 (commit abc1234, built 2024-05-01)".
func VersionInfo() string {
	return "serdex " + FullVersionInfo().String()
}

// String shortens the commit to seven characters.
func (v VersionDetails) String() string {
	var extra []string
	if commit := v.GitCommit; commit != "" {
		if len(commit) > 7 {
			commit = commit[:7]
		}
		extra = append(extra, "commit "+commit)
	}
	if v.BuildDate != "" {
		extra = append(extra, "built "+v.BuildDate)
	}
	if len(extra) == 0 {
		return "v" + v.Version
	}
	return "v" + v.Version + " (" + strings.Join(extra, ", ") + ")"
}
