package common

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"runtime/debug"
	"strings"
	"sync"
)

// Set at build time:
//
//	-ldflags "-X github.com/bobmcallan/raymonds/internal/common.Version=v1.2.0"
var (
	Version   = "dev"
	Build     = "unknown"
	GitCommit = "unknown"
)

const (
	devVersion = "dev"
	unknown    = "unknown"
)

// BuildInfo identifies the running binary.
type BuildInfo struct {
	Version string `json:"version"`
	Build   string `json:"build"`
	Commit  string `json:"commit"`
}

func (b BuildInfo) String() string {
	return fmt.Sprintf("raymonds %s (build %s, commit %s)", b.Version, b.Build, b.Commit)
}

var (
	buildOnce sync.Once
	buildInfo BuildInfo
)

// CurrentBuild resolves the build identity once. Each field comes from
// ldflags, then a .version file next to the binary, then the Go toolchain's
// embedded VCS stamp.
func CurrentBuild() BuildInfo {
	buildOnce.Do(func() {
		info := BuildInfo{Version: Version, Build: Build, Commit: GitCommit}
		if exe, err := os.Executable(); err == nil {
			if f, err := os.Open(filepath.Join(filepath.Dir(exe), ".version")); err == nil {
				info = info.fill(parseVersionFile(f))
				f.Close()
			}
		}
		if bi, ok := debug.ReadBuildInfo(); ok {
			info = info.fill(fromVCS(bi))
		}
		buildInfo = info
	})
	return buildInfo
}

// fill copies fields from other wherever b still has a default.
func (b BuildInfo) fill(other BuildInfo) BuildInfo {
	if (b.Version == devVersion || b.Version == "") && other.Version != "" {
		b.Version = other.Version
	}
	if (b.Build == unknown || b.Build == "") && other.Build != "" {
		b.Build = other.Build
	}
	if (b.Commit == unknown || b.Commit == "") && other.Commit != "" {
		b.Commit = other.Commit
	}
	return b
}

// parseVersionFile reads "key: value" lines; blank lines and # comments are skipped.
func parseVersionFile(r io.Reader) BuildInfo {
	var info BuildInfo
	scanner := bufio.NewScanner(r)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		key, val, ok := strings.Cut(line, ":")
		if !ok {
			continue
		}
		val = strings.TrimSpace(val)
		switch strings.ToLower(strings.TrimSpace(key)) {
		case "version":
			info.Version = val
		case "build":
			info.Build = val
		case "commit":
			info.Commit = val
		}
	}
	return info
}

func fromVCS(bi *debug.BuildInfo) BuildInfo {
	var info BuildInfo
	if v := bi.Main.Version; v != "" && v != "(devel)" {
		info.Version = v
	}
	for _, s := range bi.Settings {
		switch s.Key {
		case "vcs.revision":
			info.Commit = s.Value
			if len(info.Commit) > 7 {
				info.Commit = info.Commit[:7]
			}
		case "vcs.time":
			info.Build = s.Value
		}
	}
	return info
}
