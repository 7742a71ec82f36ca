package branding

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/poofware/intake-service/internal/utils"
)

// HexToRGB converts "#RGB", "#RRGGBB" (leading '#' optional) into the
// "r, g, b" triple used by CSS custom properties. The second return value
// is false when hex is not a color; the failure is logged, never raised.
func HexToRGB(hex string) (string, bool) {
	r, g, b, ok := parseHex(hex)
	if !ok {
		utils.Logger.Debugf("Invalid hex color: %q", hex)
		return "", false
	}
	return fmt.Sprintf("%d, %d, %d", r, g, b), true
}

// GenerateRGBVariables maps every key of colors whose value parses to
// "<key>-rgb". Keys that do not parse are left out.
func GenerateRGBVariables(colors map[string]string) map[string]string {
	out := make(map[string]string, len(colors))
	for key, hex := range colors {
		if rgb, ok := HexToRGB(hex); ok {
			out[key+"-rgb"] = rgb
		}
	}
	return out
}

// ShouldUseDarkText reports whether text drawn on background should be
// dark. Perceived brightness of exactly 128 still counts as bright.
func ShouldUseDarkText(background string) bool {
	r, g, b, ok := parseHex(background)
	if !ok {
		return false
	}
	brightness := float64(int(r)*299+int(g)*587+int(b)*114) / 1000
	return brightness >= 128
}

// CreateTransparentColor returns "rgba(r, g, b, opacity)", or hex itself
// when it does not parse.
func CreateTransparentColor(hex string, opacity float64) string {
	rgb, ok := HexToRGB(hex)
	if !ok {
		return hex
	}
	return "rgba(" + rgb + ", " + strconv.FormatFloat(opacity, 'f', -1, 64) + ")"
}

func parseHex(hex string) (r, g, b uint8, ok bool) {
	hex = strings.TrimPrefix(strings.TrimSpace(hex), "#")
	if len(hex) == 3 {
		hex = string([]byte{hex[0], hex[0], hex[1], hex[1], hex[2], hex[2]})
	}
	if len(hex) != 6 {
		return 0, 0, 0, false
	}
	v, err := strconv.ParseUint(hex, 16, 32)
	if err != nil {
		return 0, 0, 0, false
	}
	return uint8((v >> 16) & 0xFF), uint8((v >> 8) & 0xFF), uint8(v & 0xFF), true
}
