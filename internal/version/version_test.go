// ABOUTME: Tests for version constants
// ABOUTME: Ensures product identification is usable in request headers
package version

import (
	"strings"
	"testing"
)

func TestIdentificationDefined(t *testing.T) {
	for name, value := range map[string]string{
		"Version":      Version,
		"Product":      Product,
		"Manufacturer": Manufacturer,
	} {
		if value == "" {
			t.Errorf("%s should not be empty", name)
		}
		if len(value) > 100 {
			t.Errorf("%s is unreasonably long", name)
		}
	}
}

func TestUserAgent(t *testing.T) {
	ua := UserAgent()

	if ua != Manufacturer+"/"+Version {
		t.Errorf("unexpected user agent %q", ua)
	}

	// Header values must not contain line breaks or spaces in the token
	if strings.ContainsAny(ua, " \r\n") {
		t.Errorf("user agent contains invalid characters: %q", ua)
	}
}
