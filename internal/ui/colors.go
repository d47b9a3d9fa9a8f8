package ui

import (
	"os"

	"github.com/fatih/color"
)

// ColorMode is the tri-state resolution of whether to color output.
type ColorMode int

const (
	// ColorModeUndefined means no preference was expressed anywhere.
	ColorModeUndefined ColorMode = iota + 1
	// ColorModeSuppressed means color is off.
	ColorModeSuppressed
	// ColorModeForced means color is on even without a tty.
	ColorModeForced
)

// GetColorModeFromEnv reads the FORCE_COLOR convention: "0"/"false"
// disables color, "1", "2", "3", or "true" force-enables it. The support
// level is not used beyond on/off.
func GetColorModeFromEnv() ColorMode {
	switch forceColor := os.Getenv("FORCE_COLOR"); {
	case forceColor == "false" || forceColor == "0":
		return ColorModeSuppressed
	case forceColor == "true" || forceColor == "1" || forceColor == "2" || forceColor == "3":
		return ColorModeForced
	default:
		return ColorModeUndefined
	}
}

// ResolveColorMode folds explicit --color/--no-color choices over the
// environment default. Suppression wins when both are set.
func ResolveColorMode(forceColor bool, noColor bool) ColorMode {
	colorMode := GetColorModeFromEnv()
	if forceColor {
		colorMode = ColorModeForced
	}
	if noColor {
		colorMode = ColorModeSuppressed
	}
	return colorMode
}

func applyColorMode(colorMode ColorMode) ColorMode {
	switch colorMode {
	case ColorModeForced:
		color.NoColor = false
	case ColorModeSuppressed:
		color.NoColor = true
	case ColorModeUndefined:
	default:
		// color.NoColor already has its default from isatty and the
		// NO_COLOR env variable.
	}

	if color.NoColor {
		return ColorModeSuppressed
	}
	return ColorModeForced
}
