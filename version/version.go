// Package version reports which build of treequence is running.
package version

import "runtime/debug"

// Set at build time, e.g.
// go build -ldflags "-X github.com/robert-lieck/MusicTreequence/version.Version=$(git describe --dirty)"
var Version string

// Hash is the short vcs revision the binary was built from, with a -dirty
// suffix for modified trees. Empty when built outside a repository.
var Hash = func() string {
	info, ok := debug.ReadBuildInfo()
	if !ok {
		return ""
	}
	var revision string
	modified := false
	for _, setting := range info.Settings {
		switch setting.Key {
		case "vcs.revision":
			revision = setting.Value
		case "vcs.modified":
			modified = setting.Value == "true"
		}
	}
	if len(revision) > 7 {
		revision = revision[:7]
	}
	if revision != "" && modified {
		revision += "-dirty"
	}
	return revision
}()

var VersionOrHash = func() string {
	if Version != "" {
		return Version
	}
	if Hash != "" {
		return Hash
	}
	return "devel"
}()
