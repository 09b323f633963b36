// Package color derives display colors for user avatars.
package color

import (
	"fmt"
	"hash/fnv"
	"math"
)

// Saturation and lightness are fixed so every avatar sits in the same muted
// range and white initials stay readable; only the hue varies per user.
const (
	avatarSaturation = 0.45
	avatarLightness  = 0.60
)

// ForUser derives a stable avatar color from a user ID. The same ID always
// maps to the same color, so clients never store one.
func ForUser(userID string) string {
	h := fnv.New32a()
	h.Write([]byte(userID))
	hue := float64(h.Sum32() % 360)

	r, g, b := hslToRGB(hue, avatarSaturation, avatarLightness)
	return fmt.Sprintf("#%02X%02X%02X", r, g, b)
}

// hslToRGB converts an HSL triple (hue in degrees, saturation and lightness
// in [0,1]) to 8-bit RGB channels.
func hslToRGB(hue, saturation, lightness float64) (uint8, uint8, uint8) {
	chroma := (1 - math.Abs(2*lightness-1)) * saturation
	sector := hue / 60
	x := chroma * (1 - math.Abs(math.Mod(sector, 2)-1))

	var r, g, b float64
	switch {
	case sector < 1:
		r, g, b = chroma, x, 0
	case sector < 2:
		r, g, b = x, chroma, 0
	case sector < 3:
		r, g, b = 0, chroma, x
	case sector < 4:
		r, g, b = 0, x, chroma
	case sector < 5:
		r, g, b = x, 0, chroma
	default:
		r, g, b = chroma, 0, x
	}

	m := lightness - chroma/2
	return channel(r + m), channel(g + m), channel(b + m)
}

func channel(v float64) uint8 {
	return uint8(math.Round(v * 255))
}
