package verifier

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

var (
	monthYearPattern = regexp.MustCompile(`(\w+[-/]?\w*)\s*(\d{4})`)
	yearPattern      = regexp.MustCompile(`\d{4}`)
)

// Months falling in the second half of an academic year (June to May).
var firstHalfMonths = []string{"jan", "feb", "mar", "apr", "may"}

// AcademicYear derives the June-to-May academic year from a free-form event
// date. A certificate dated March 2024 belongs to 2023-2024, one dated July
// 2024 to 2024-2025. A bare year is treated as the start of an academic
// year. Unparseable input yields an empty string.
func AcademicYear(dateStr string) string {
	if strings.TrimSpace(dateStr) == "" {
		return ""
	}

	if m := monthYearPattern.FindStringSubmatch(dateStr); m != nil {
		year, err := strconv.Atoi(m[2])
		if err == nil {
			monthPart := strings.ToLower(m[1])
			for _, month := range firstHalfMonths {
				if strings.Contains(monthPart, month) {
					return fmt.Sprintf("%d-%d", year-1, year)
				}
			}
			return fmt.Sprintf("%d-%d", year, year+1)
		}
	}

	if m := yearPattern.FindString(dateStr); m != "" {
		year, err := strconv.Atoi(m)
		if err == nil {
			return fmt.Sprintf("%d-%d", year, year+1)
		}
	}
	return ""
}
