package atcf

import (
	"fmt"
	"log/slog"
	"math"
	"os"
	"strings"
	"time"

	"github.com/couchcryptid/storm-vortex-track/internal/domain"
)

// Background pressure emitted when the reported value does not exceed the
// central pressure of a storm below standard sea-level pressure.
const standardPressure = 1013

// Encode renders fixes as canonical ATCF lines joined by newlines, without a
// trailing newline. Forecast hours are measured from start.
func Encode(fixes domain.RecordTable, start time.Time) string {
	return strings.Join(Lines(fixes, start), "\n")
}

// Lines renders one ATCF line per fix, in table order.
func Lines(fixes domain.RecordTable, start time.Time) []string {
	numbers := RecordNumbers(fixes)
	lines := make([]string, len(fixes))

	var lastBackground *float64
	for i, f := range fixes {
		background := f.BackgroundPressure
		if background == nil {
			background = lastBackground
		} else {
			lastBackground = background
		}

		fields := []string{
			fmt.Sprintf("%-2s", f.Basin),
			fmt.Sprintf("%3d", f.StormNumber),
			fmt.Sprintf("%11s", f.Time.UTC().Format("2006010215")),
			"   ",
			fmt.Sprintf("%5s", f.RecordType),
			fmt.Sprintf("%4d", int(f.Time.Sub(start)/time.Hour)),
			formatLatitude(f.Latitude),
			formatLongitude(f.Longitude),
			fmt.Sprintf("%4d", roundInt(f.MaxSustainedWind)),
			formatPressure(f.CentralPressure, 5),
			fmt.Sprintf("%3s", f.DevelopmentLevel),
			fmt.Sprintf("%4d", f.Isotach),
			fmt.Sprintf("%4s", f.Quadrant),
			fmt.Sprintf("%5d", roundInt(f.RadiusNE)),
			fmt.Sprintf("%5d", roundInt(f.RadiusSE)),
			fmt.Sprintf("%5d", roundInt(f.RadiusSW)),
			fmt.Sprintf("%5d", roundInt(f.RadiusNW)),
			formatPressure(correctBackgroundPressure(f.CentralPressure, background), 5),
			fmt.Sprintf("%5d", roundInt(f.RadiusOfLastClosedIsobar)),
			fmt.Sprintf("%4d", roundInt(f.RadiusOfMaxWinds)),
			"     ", // gusts
			"    ",  // eye
			"    ",  // subregion
			"    ",  // maxseas
			"    ",  // initials
			fmt.Sprintf("%3d", roundInt(f.Direction)),
			fmt.Sprintf("%4d", roundInt(f.Speed)),
			center(f.Name, 12),
			fmt.Sprintf("%4d", numbers[i]),
		}
		lines[i] = strings.Join(fields, ",")
	}
	return lines
}

// RecordNumbers assigns each fix the 1-based rank of its timestamp among the
// distinct timestamps present. Fixes sharing a time share a number.
func RecordNumbers(fixes domain.RecordTable) []int {
	rank := make(map[time.Time]int)
	for i, t := range fixes.UniqueTimes() {
		rank[t] = i + 1
	}
	numbers := make([]int, len(fixes))
	for i, f := range fixes {
		numbers[i] = rank[f.Time]
	}
	return numbers
}

// correctBackgroundPressure keeps a reported background pressure above the
// central pressure. An unreported value on either side passes through.
func correctBackgroundPressure(central, background *float64) *float64 {
	if central == nil || background == nil {
		return background
	}
	c := math.RoundToEven(*central)
	if math.RoundToEven(*background) > c {
		return background
	}
	if c < standardPressure {
		return domain.Pressure(standardPressure)
	}
	return domain.Pressure(c + 1)
}

// WriteFile writes contents to path. An existing file is left untouched
// unless overwrite is set; parent directories are never created. It reports
// whether the file was written.
func WriteFile(path, contents string, overwrite bool, logger *slog.Logger) (bool, error) {
	if !overwrite {
		if _, err := os.Stat(path); err == nil {
			logger.Warn("skipping existing file", "path", path)
			return false, nil
		}
	}
	if err := os.WriteFile(path, []byte(contents), 0o644); err != nil {
		return false, fmt.Errorf("write %s: %w", path, err)
	}
	return true, nil
}

func formatLatitude(lat float64) string {
	tenths := toTenths(lat)
	if tenths >= 0 {
		return fmt.Sprintf("%4dN", tenths)
	}
	return fmt.Sprintf("%4dS", -tenths)
}

func formatLongitude(lon float64) string {
	tenths := toTenths(lon)
	if tenths >= 0 {
		return fmt.Sprintf("%5dE", tenths)
	}
	return fmt.Sprintf("%5dW", -tenths)
}

// toTenths converts degrees to integer tenths. The intermediate rounding to
// one decimal absorbs binary representation error (16.8/0.1 = 167.999...).
func toTenths(degrees float64) int {
	return int(math.Round(degrees/0.1*10) / 10)
}

func formatPressure(p *float64, width int) string {
	if p == nil {
		return strings.Repeat(" ", width)
	}
	return fmt.Sprintf("%*d", width, roundInt(*p))
}

// roundInt rounds half to even, matching the rounding of the reference output.
func roundInt(v float64) int {
	if math.IsNaN(v) {
		return 0
	}
	return int(math.RoundToEven(v))
}

// center pads s to width, putting any odd space on the right.
func center(s string, width int) string {
	pad := width - len(s)
	if pad <= 0 {
		return s
	}
	left := pad / 2
	return strings.Repeat(" ", left) + s + strings.Repeat(" ", pad-left)
}
