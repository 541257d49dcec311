package version

import "fmt"

const (
	appMajor uint = 0
	appMinor uint = 1
	appPatch uint = 0
)

// String returns the application version as a properly formed string.
func String() string {
	return fmt.Sprintf("%d.%d.%d", appMajor, appMinor, appPatch)
}

// UserAgent returns the user agent reported to the transport daemon.
func UserAgent() string {
	return "/dashlink:" + String() + "/"
}
