package util

import "strings"

// UAInfo is the coarse client classification derived from a User-Agent
// string. Unrecognized fragments map to "unknown" so every click lands in a
// defined bucket.
type UAInfo struct {
	Device  string
	Browser string
	OS      string
}

// ClassifyUA performs best-effort device, browser, and OS classification
// based on UA fragments.
func ClassifyUA(ua string) UAInfo {
	lower := strings.ToLower(ua)
	return UAInfo{
		Device:  parseDevice(lower),
		Browser: parseBrowser(lower),
		OS:      parseOS(lower),
	}
}

func parseDevice(ua string) string {
	switch {
	case ua == "":
		return "unknown"
	case strings.Contains(ua, "tablet") || strings.Contains(ua, "ipad"):
		return "tablet"
	case strings.Contains(ua, "mobile"):
		return "mobile"
	default:
		return "desktop"
	}
}

func parseBrowser(ua string) string {
	switch {
	case strings.Contains(ua, "edg/") || strings.Contains(ua, "edge"):
		return "edge"
	case strings.Contains(ua, "opera") || strings.Contains(ua, "opr/"):
		return "opera"
	case strings.Contains(ua, "chrome"):
		return "chrome"
	case strings.Contains(ua, "firefox"):
		return "firefox"
	case strings.Contains(ua, "safari"):
		return "safari"
	default:
		return "unknown"
	}
}

func parseOS(ua string) string {
	switch {
	case strings.Contains(ua, "windows"):
		return "windows"
	case strings.Contains(ua, "iphone") || strings.Contains(ua, "ipad") || strings.Contains(ua, "ios"):
		return "ios"
	case strings.Contains(ua, "mac os") || strings.Contains(ua, "macos") || strings.Contains(ua, "darwin"):
		return "macos"
	case strings.Contains(ua, "android"):
		return "android"
	case strings.Contains(ua, "linux"):
		return "linux"
	default:
		return "unknown"
	}
}
