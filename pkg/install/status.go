package install

// Status is the lifecycle state of a game's install slot
type Status string

const (
	StatusIdle        Status = "idle"
	StatusDownloading Status = "downloading"
	StatusInstalling  Status = "installing"
	StatusInstalled   Status = "installed"
	StatusFailed      Status = "failed"
)

func (s Status) String() string {
	return string(s)
}

// IsActive reports whether a download is in flight
func (s Status) IsActive() bool {
	return s == StatusDownloading || s == StatusInstalling
}
