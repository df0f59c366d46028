package env

import (
	"runtime/debug"
)

type VersionInfo struct {
	BuildVersion string
	Commit       string
}

// Set at link time with -ldflags "-X gcpctl/internal/env.BuildVersion=..."
var BuildVersion string
var Commit string

func GetBuildVersion() (versionInfo VersionInfo) {
	versionInfo.BuildVersion = BuildVersion
	versionInfo.Commit = Commit
	if versionInfo.BuildVersion != "" {
		return
	}

	versionInfo.BuildVersion = "dev"
	info, ok := debug.ReadBuildInfo()
	if !ok {
		return
	}
	if info.Main.Version != "" && info.Main.Version != "(devel)" {
		versionInfo.BuildVersion = info.Main.Version
	}
	for _, setting := range info.Settings {
		if setting.Key == "vcs.revision" && versionInfo.Commit == "" {
			versionInfo.Commit = setting.Value
		}
	}
	return
}
