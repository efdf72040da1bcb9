package common

const (
	NAME   = "openlauncher"
	Latest = "latest"
)
