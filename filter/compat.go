package filter

import (
	"fmt"
	"regexp"
	"strings"
)

// ConvertLegacyFilter converts old filter syntax to expr syntax
func ConvertLegacyFilter(oldFilter string) (string, error) {
	// Handle empty filter
	if strings.TrimSpace(oldFilter) == "" {
		return "", nil
	}

	// First, handle logical operators
	filter := strings.ReplaceAll(oldFilter, " AND ", " and ")
	filter = strings.ReplaceAll(filter, " OR ", " or ")
	filter = strings.ReplaceAll(filter, " NOT ", " not ")

	// Regular expressions for different filter patterns
	patterns := map[*regexp.Regexp]func([]string) string{
		// status:"name" or status!:"name"
		regexp.MustCompile(`status(!?):"([^"]+)"`): func(matches []string) string {
			if matches[1] == "!" {
				return fmt.Sprintf(`not hasStatus("%s")`, matches[2])
			}
			return fmt.Sprintf(`hasStatus("%s")`, matches[2])
		},

		// branch:"name" or branch!:"name"
		regexp.MustCompile(`branch(!?):"([^"]+)"`): func(matches []string) string {
			if matches[1] == "!" {
				return fmt.Sprintf(`not atBranch("%s")`, matches[2])
			}
			return fmt.Sprintf(`atBranch("%s")`, matches[2])
		},

		// patient:"name" or patient!:"name"
		regexp.MustCompile(`patient(!?):"([^"]+)"`): func(matches []string) string {
			if matches[1] == "!" {
				return fmt.Sprintf(`not forPatient("%s")`, matches[2])
			}
			return fmt.Sprintf(`forPatient("%s")`, matches[2])
		},

		// dentist:"name" or dentist!:"name"
		regexp.MustCompile(`dentist(!?):"([^"]+)"`): func(matches []string) string {
			if matches[1] == "!" {
				return fmt.Sprintf(`not treatedBy("%s")`, matches[2])
			}
			return fmt.Sprintf(`treatedBy("%s")`, matches[2])
		},

		// cancelled:true or cancelled:false
		regexp.MustCompile(`cancelled:(true|false)`): func(matches []string) string {
			return fmt.Sprintf(`Cancelled == %s`, matches[1])
		},

		// confirmed:true or confirmed:false
		regexp.MustCompile(`confirmed:(true|false)`): func(matches []string) string {
			return fmt.Sprintf(`Confirmed == %s`, matches[1])
		},

		// duration:>N, duration:<N, duration:>=N, etc.
		regexp.MustCompile(`duration:([><=]+)(\d+)`): func(matches []string) string {
			return fmt.Sprintf(`Duration %s %s`, matches[1], matches[2])
		},

		// before:"YYYY-MM-DD"
		regexp.MustCompile(`before:"([^"]+)"`): func(matches []string) string {
			return fmt.Sprintf(`Date < parseDate("%s")`, matches[1])
		},

		// after:"YYYY-MM-DD"
		regexp.MustCompile(`after:"([^"]+)"`): func(matches []string) string {
			return fmt.Sprintf(`Date > parseDate("%s")`, matches[1])
		},

		// date:"YYYY-MM-DD"
		regexp.MustCompile(`date:"([^"]+)"`): func(matches []string) string {
			return fmt.Sprintf(`onDate("%s")`, matches[1])
		},
	}

	// Apply each pattern
	for pattern, replacer := range patterns {
		filter = pattern.ReplaceAllStringFunc(filter, func(match string) string {
			matches := pattern.FindStringSubmatch(match)
			return replacer(matches)
		})
	}

	return filter, nil
}

// IsLegacyFilter detects whether an expression uses the old shorthand syntax
func IsLegacyFilter(filter string) bool {
	legacyPatterns := []string{
		`status!?:"`,
		`branch!?:"`,
		`patient!?:"`,
		`dentist!?:"`,
		`cancelled:(true|false)`,
		`confirmed:(true|false)`,
		`duration:[><=]`,
		`before:"`,
		`after:"`,
		`date:"`,
	}

	for _, pattern := range legacyPatterns {
		if matched, _ := regexp.MatchString(pattern, filter); matched {
			return true
		}
	}

	return false
}
