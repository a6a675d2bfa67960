package utils

import (
	"strings"

	"github.com/iliyamo/auth-account-service/internal/model"
)

// ParseUserAgent derives coarse device information from a raw user agent
// string. The classification only needs to be good enough for the audit
// trail and the security dashboard, not for content negotiation.
func ParseUserAgent(ua string) model.DeviceInfo {
	if ua == "" {
		return model.DeviceInfo{Browser: "unknown", OS: "unknown", Device: "unknown"}
	}
	l := strings.ToLower(ua)

	info := model.DeviceInfo{Browser: "unknown", OS: "unknown", Device: "desktop"}

	switch {
	// Order matters: Edge and Opera embed "chrome", Chrome embeds "safari".
	case strings.Contains(l, "edg/"), strings.Contains(l, "edge"):
		info.Browser = "Edge"
	case strings.Contains(l, "opr/"), strings.Contains(l, "opera"):
		info.Browser = "Opera"
	case strings.Contains(l, "chrome"):
		info.Browser = "Chrome"
	case strings.Contains(l, "firefox"):
		info.Browser = "Firefox"
	case strings.Contains(l, "safari"):
		info.Browser = "Safari"
	case strings.Contains(l, "curl"):
		info.Browser = "curl"
	}

	switch {
	case strings.Contains(l, "android"):
		info.OS = "Android"
	case strings.Contains(l, "iphone"), strings.Contains(l, "ipad"), strings.Contains(l, "ios"):
		info.OS = "iOS"
	case strings.Contains(l, "windows"):
		info.OS = "Windows"
	case strings.Contains(l, "mac os"), strings.Contains(l, "macintosh"):
		info.OS = "macOS"
	case strings.Contains(l, "linux"):
		info.OS = "Linux"
	}

	switch {
	case strings.Contains(l, "mobile"), strings.Contains(l, "iphone"), strings.Contains(l, "android"):
		info.Device = "mobile"
	case strings.Contains(l, "tablet"), strings.Contains(l, "ipad"):
		info.Device = "tablet"
	}
	return info
}
