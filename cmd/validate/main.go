// Command validate checks fort.22 and ATCF files for integrity: that each
// decodes, survives an encode/decode round trip, numbers its records
// consecutively, and moves at a plausible forward speed.
//
// Usage:
//
//	go run ./cmd/validate -max-speed 60 testdata/*.fort.22
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"strings"

	"github.com/couchcryptid/storm-vortex-track/internal/track"
)

// phase tracks pass/fail for a validation phase.
type phase struct {
	name   string
	errors []string
}

func (p *phase) errorf(format string, args ...any) {
	p.errors = append(p.errors, fmt.Sprintf(format, args...))
}

func (p *phase) passed() bool { return len(p.errors) == 0 }

func main() {
	maxSpeed := flag.Float64("max-speed", 70, "largest plausible forward speed in knots")
	flag.Parse()

	if flag.NArg() == 0 {
		flag.Usage()
		os.Exit(1)
	}

	if code := run(flag.Args(), *maxSpeed); code != 0 {
		os.Exit(code)
	}
}

func run(paths []string, maxSpeed float64) int {
	fmt.Println("=== Track Integrity Validation ===")
	fmt.Println()

	ctx := context.Background()
	decode := &phase{name: "Decode"}
	tracks := make(map[string]*track.Track, len(paths))
	rows := 0
	for _, path := range paths {
		tr, err := track.FromFort22(ctx, path)
		if err != nil {
			decode.errorf("%s: %v", path, err)
			continue
		}
		tracks[path] = tr
		rows += tr.Len()
	}

	phases := []*phase{
		decode,
		validateRoundTrip(ctx, tracks),
		validateRecordNumbers(tracks),
		validateKinematics(tracks, maxSpeed),
	}

	fmt.Println()
	allPassed := true
	for _, p := range phases {
		status := "\033[32mPASS\033[0m"
		if !p.passed() {
			status = fmt.Sprintf("\033[31mFAIL (%d errors)\033[0m", len(p.errors))
			allPassed = false
		}
		fmt.Printf("  %-42s %s\n", p.name, status)
	}

	fmt.Println()
	fmt.Printf("Files: %d, decoded: %d, rows: %d\n", len(paths), len(tracks), rows)

	for _, p := range phases {
		if p.passed() {
			continue
		}
		fmt.Printf("\n--- %s ---\n", p.name)
		for i, e := range p.errors {
			fmt.Printf("  [%d] %s\n", i+1, e)
		}
	}

	if allPassed {
		fmt.Println("\nAll validations passed.")
		return 0
	}
	fmt.Println("\nValidation FAILED.")
	return 1
}

// validateRoundTrip re-decodes each track's own rendering and compares.
func validateRoundTrip(ctx context.Context, tracks map[string]*track.Track) *phase {
	p := &phase{name: "Encode/decode round trip"}
	for path, tr := range tracks {
		again, err := track.New(ctx, track.Stream(strings.NewReader(tr.String())))
		if err != nil {
			p.errorf("%s: re-decode: %v", path, err)
			continue
		}
		if again.Len() != tr.Len() {
			p.errorf("%s: %d rows after round trip, want %d", path, again.Len(), tr.Len())
			continue
		}
		want, got := tr.Lines(), again.Lines()
		for i := range want {
			if want[i] != got[i] {
				p.errorf("%s: row %d differs after round trip:\n    %s\n    %s", path, i+1, want[i], got[i])
				break
			}
		}
	}
	return p
}

// validateRecordNumbers checks the numbering starts at 1 and never skips.
func validateRecordNumbers(tracks map[string]*track.Track) *phase {
	p := &phase{name: "Record numbering"}
	for path, tr := range tracks {
		numbers := tr.RecordNumbers()
		if len(numbers) > 0 && numbers[0] != 1 {
			p.errorf("%s: first record number is %d", path, numbers[0])
		}
		for i := 1; i < len(numbers); i++ {
			if d := numbers[i] - numbers[i-1]; d < 0 || d > 1 {
				p.errorf("%s: record number jumps from %d to %d at row %d", path, numbers[i-1], numbers[i], i+1)
				break
			}
		}
	}
	return p
}

func validateKinematics(tracks map[string]*track.Track, maxSpeed float64) *phase {
	p := &phase{name: "Forward speed"}
	for path, tr := range tracks {
		for i, f := range tr.Data() {
			if f.Speed > maxSpeed {
				p.errorf("%s: row %d moves at %.1f kt (limit %.0f)", path, i+1, f.Speed, maxSpeed)
			}
			if f.Direction < 0 || f.Direction >= 360 {
				p.errorf("%s: row %d has direction %.1f outside [0, 360)", path, i+1, f.Direction)
			}
		}
	}
	return p
}
