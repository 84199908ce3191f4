package config

import (
	"github.com/fatih/color"
)

var (
	Yellow = color.New(color.FgYellow).SprintFunc()
	Red    = color.New(color.FgRed).SprintFunc()
	Green  = color.New(color.FgGreen).SprintFunc()
	Pink   = color.New(color.FgMagenta).SprintFunc()

	// SeverityMap orders severities of the security API and of the
	// "severity" score dimension when reports are sorted.
	SeverityMap = map[string]int{
		"critical":  5,
		"important": 4,
		"high":      4,
		"moderate":  3,
		"medium":    3,
		"low":       2,
		"tips":      1,
		"c":         5,
		"h":         4,
		"m":         3,
		"l":         2,
	}
)
