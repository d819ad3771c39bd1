package domain

import "strings"

// Platform is the closed set of supported source marketplaces. Each
// platform carries its own fetch strategy chain behind the Fetcher port.
type Platform string

const (
	PlatformAliExpress Platform = "aliexpress"
	PlatformAmazon     Platform = "amazon"
	PlatformEBay       Platform = "ebay"
	PlatformWalmart    Platform = "walmart"
)

// Platforms lists every supported platform in a stable order.
func Platforms() []Platform {
	return []Platform{PlatformAliExpress, PlatformAmazon, PlatformEBay, PlatformWalmart}
}

// ParsePlatform resolves a caller-supplied identifier to a Platform.
// The match is case-insensitive and accepts identifiers that merely
// contain the platform name (e.g. "www.aliexpress.com").
func ParsePlatform(s string) (Platform, error) {
	low := strings.ToLower(strings.TrimSpace(s))
	for _, p := range Platforms() {
		if strings.Contains(low, string(p)) {
			return p, nil
		}
	}
	return "", ErrUnsupportedPlatform
}
