package version

import (
	"fmt"
	"runtime"
	"strings"
)

// Product is the name shown in the console header.
const Product = "Console Runner"

// Set through -ldflags "-X khetao.com/console/version.buildVersion=...".
var (
	buildVersion     = "unknown"
	buildGitRevision = "unknown"
	buildStatus      = "unknown"
	buildTag         = "unknown"
)

type BuildInfo struct {
	Version       string `json:"version"`
	GitRevision   string `json:"revision"`
	GolangVersion string `json:"golang_version"`
	BuildStatus   string `json:"status"`
	GitTag        string `json:"tag"`
}

// NewBuildInfoFromOldString parses the "Key: value" lines an engine reports as
// its version.
func NewBuildInfoFromOldString(oldOutput string) (BuildInfo, error) {
	res := BuildInfo{}

	for _, line := range strings.Split(oldOutput, "\n") {
		if strings.TrimSpace(line) == "" {
			continue
		}
		key, value, ok := strings.Cut(line, ":")
		if !ok {
			return BuildInfo{}, fmt.Errorf("invalid BuildInfo input, field '%s' is not valid", key)
		}
		value = strings.TrimSpace(value)
		switch key {
		case "Version":
			res.Version = value
		case "GitRevision":
			res.GitRevision = value
		case "GolangVersion":
			res.GolangVersion = value
		case "BuildStatus":
			res.BuildStatus = value
		case "GitTag":
			res.GitTag = value
		default:
			// engines may report more than we know about
			continue
		}
	}

	return res, nil
}

// Info exports the build version information.
var Info BuildInfo

func (b BuildInfo) String() string {
	return fmt.Sprintf("%v-%v-%v",
		b.Version,
		b.GitRevision,
		b.BuildStatus)
}

func (b BuildInfo) LongForm() string {
	return fmt.Sprintf("%#v", b)
}

// Header is the first line the console prints.
func Header() string {
	return fmt.Sprintf("%s %s (%s)", Product, Info.Version, Info.GolangVersion)
}

func init() {
	Info = BuildInfo{
		Version:       buildVersion,
		GitRevision:   buildGitRevision,
		GolangVersion: runtime.Version(),
		BuildStatus:   buildStatus,
		GitTag:        buildTag,
	}
}
