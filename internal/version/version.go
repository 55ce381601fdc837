// ABOUTME: Version and product identification
// ABOUTME: Used for the User-Agent sent to the stream and metadata servers
package version

import "fmt"

// Version is overridden at build time with -ldflags "-X ...version.Version=..."
var Version = "0.3.0"

const (
	Product      = "Radio Hyrule Player"
	Manufacturer = "radiohyrule-go"
)

// UserAgent returns the agent string for outgoing requests
func UserAgent() string {
	return fmt.Sprintf("%s/%s", Manufacturer, Version)
}
