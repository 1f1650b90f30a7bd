// Command validate checks that a weather file parses deterministically and
// survives a trip through the meteo cache unchanged. It parses the file twice
// without a cache, stores the result in a temporary cache, loads it back, and
// compares all three series. Gaps in the date range are reported.
//
// Usage:
//
//	go run ./cmd/validate -file data/mock/wageningen.csv [-et-model PM]
package main

import (
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"

	"github.com/couchcryptid/weather-ingest/internal/cache"
	"github.com/couchcryptid/weather-ingest/internal/domain"
	"github.com/couchcryptid/weather-ingest/internal/ingest"
	"github.com/couchcryptid/weather-ingest/internal/refet"
)

// phase tracks pass/fail for a validation phase.
type phase struct {
	name     string
	errors   []string
	warnings []string
}

func (p *phase) errorf(format string, args ...any) {
	p.errors = append(p.errors, fmt.Sprintf(format, args...))
}

func (p *phase) warnf(format string, args ...any) {
	p.warnings = append(p.warnings, fmt.Sprintf(format, args...))
}

func (p *phase) passed() bool { return len(p.errors) == 0 }

func main() {
	file := flag.String("file", "", "path to the IRS weather file")
	model := flag.String("et-model", string(refet.ModelPenmanMonteith), "ET0 model: PM or P")
	flag.Parse()

	if *file == "" {
		flag.Usage()
		os.Exit(1)
	}
	etModel, err := refet.ParseModel(*model)
	if err != nil {
		fmt.Fprintf(os.Stderr, "FATAL: %v\n", err)
		os.Exit(1)
	}

	if code := run(*file, etModel, os.Stdout); code != 0 {
		os.Exit(code)
	}
}

func run(file string, model refet.Model, out io.Writer) int {
	fmt.Fprintln(out, "=== Weather File Validation ===")
	fmt.Fprintln(out)

	first, err := ingest.NewProvider(file, ingest.Options{ETModel: model})
	if err != nil {
		fmt.Fprintf(out, "FATAL: parse %s: %v\n", file, err)
		return 1
	}
	second, err := ingest.NewProvider(file, ingest.Options{ETModel: model})
	if err != nil {
		fmt.Fprintf(out, "FATAL: second parse of %s: %v\n", file, err)
		return 1
	}

	cacheDir, err := os.MkdirTemp("", "validate-meteo-cache-*")
	if err != nil {
		fmt.Fprintf(out, "FATAL: create temp cache dir: %v\n", err)
		return 1
	}
	defer func() { _ = os.RemoveAll(cacheDir) }()

	phases := []*phase{
		validateDeterminism(first, second),
		validateCacheRoundTrip(first, model, cacheDir),
		validateCoverage(first.Series()),
	}

	fmt.Fprintln(out)
	allPassed := true
	for _, p := range phases {
		status := "\033[32mPASS\033[0m"
		if !p.passed() {
			status = fmt.Sprintf("\033[31mFAIL (%d errors)\033[0m", len(p.errors))
			allPassed = false
		}
		fmt.Fprintf(out, "  %-42s %s\n", p.name, status)
	}

	fmt.Fprintln(out)
	for _, line := range first.Meta().DescriptionLines() {
		fmt.Fprintf(out, "%s\n", line)
	}
	fmt.Fprintf(out, "Days: %d (%s to %s)\n", first.Series().Len(),
		first.Series().First().Format(time.DateOnly), first.Series().Last().Format(time.DateOnly))

	// Print details.
	for _, p := range phases {
		if len(p.errors) == 0 && len(p.warnings) == 0 {
			continue
		}
		fmt.Fprintf(out, "\n--- %s ---\n", p.name)
		for i, e := range p.errors {
			fmt.Fprintf(out, "  [%d] %s\n", i+1, e)
		}
		for _, w := range p.warnings {
			fmt.Fprintf(out, "  warning: %s\n", w)
		}
	}

	if allPassed {
		fmt.Fprintln(out, "\nAll validations passed.")
		return 0
	}
	fmt.Fprintln(out, "\nValidation FAILED.")
	return 1
}

func validateDeterminism(a, b *ingest.Provider) *phase {
	p := &phase{name: "Repeated parse yields identical series"}
	if diff := cmp.Diff(a.Meta(), b.Meta()); diff != "" {
		p.errorf("station metadata differs (-first +second):\n%s", diff)
	}
	if diff := cmp.Diff(a.Series().Records(), b.Series().Records()); diff != "" {
		p.errorf("records differ (-first +second):\n%s", diff)
	}
	return p
}

func validateCacheRoundTrip(parsed *ingest.Provider, model refet.Model, dir string) *phase {
	p := &phase{name: "Cache round trip preserves series"}
	m := cache.NewManager(dir, slog.New(slog.NewTextHandler(io.Discard, nil)), nil)

	// The cache is only served back when it is strictly newer than the source.
	info, err := os.Stat(parsed.Source())
	if err != nil {
		p.errorf("stat source: %v", err)
		return p
	}
	if time.Since(info.ModTime()) < time.Second {
		p.warnf("source modified within the last second; cache freshness depends on mtime resolution")
	}

	m.Store(ingest.ProviderType, parsed.Source(), cache.Entry{Meta: parsed.Meta(), Series: parsed.Series(), ETModel: model})
	entry, ok := m.TryLoad(ingest.ProviderType, parsed.Source(), model)
	if !ok {
		p.errorf("cache file %s was not served back", m.Path(ingest.ProviderType, parsed.Source()))
		return p
	}
	if diff := cmp.Diff(parsed.Meta(), entry.Meta); diff != "" {
		p.errorf("cached metadata differs (-parsed +cached):\n%s", diff)
	}
	opt := cmpopts.EquateApprox(0, 1e-12)
	if diff := cmp.Diff(parsed.Series().Records(), entry.Series.Records(), opt); diff != "" {
		p.errorf("cached records differ (-parsed +cached):\n%s", diff)
	}
	return p
}

func validateCoverage(series *domain.Series) *phase {
	p := &phase{name: "Date range coverage"}
	missing := series.MissingDays()
	for _, d := range missing {
		p.warnf("no record for %s", d.Format(time.DateOnly))
	}
	if series.Len() == 0 {
		p.errorf("series is empty")
	}
	return p
}
