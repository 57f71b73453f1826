package utils

import (
	"fmt"

	"github.com/mssola/user_agent"
)

// DescribeClient turns a raw User-Agent header into a short human-readable
// summary for audit entries, e.g. "Chrome 120.0 on Linux x86_64 (browser)".
func DescribeClient(rawUserAgent string) string {
	if rawUserAgent == "" {
		return "unknown client"
	}

	ua := user_agent.New(rawUserAgent)
	name, version := ua.Browser()
	kind := "browser"
	if ua.Bot() {
		kind = "bot"
	} else if ua.Mobile() {
		kind = "mobile"
	}

	if name == "" {
		return fmt.Sprintf("unrecognized agent (%s)", kind)
	}
	return fmt.Sprintf("%s %s on %s (%s)", name, version, ua.OS(), kind)
}
