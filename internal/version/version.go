package version

const (
	AppName = "yomiage"
	Version = "0.2.0"
)
