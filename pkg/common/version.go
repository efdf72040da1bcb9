package common

import "fmt"

// NOTE: these are set by the linker at build time
var (
	BRANCH  = "dev"
	SUMMARY = "0.0.0-dev"
	VERSION = "dev"
	COMMIT  = "dirty"
)

// AppVersion --
var AppVersion AppVersionInfo

// AppVersionInfo --
type AppVersionInfo struct {
	Name    string
	Version string
	Branch  string
	Summary string
	Commit  string
}

// UserAgent returns the value sent with every outbound HTTP request
func (v AppVersionInfo) UserAgent() string {
	return fmt.Sprintf("%s/%s", v.Name, v.Summary)
}

func init() {
	if VERSION == "" {
		VERSION = "dev"
	}

	AppVersion = AppVersionInfo{
		Name:    NAME,
		Version: VERSION,
		Branch:  BRANCH,
		Summary: SUMMARY,
		Commit:  COMMIT,
	}
}
