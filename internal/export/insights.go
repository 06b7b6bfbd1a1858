package export

import (
	"bytes"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/rotisserie/eris"
	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"github.com/sells-group/affordability-cli/internal/model"
)

// Formatter renders money and percentages for a locale.
type Formatter struct {
	p *message.Printer
}

// NewFormatter returns a Formatter for a BCP 47 tag such as "en-US".
// An empty tag means en-US.
func NewFormatter(locale string) (*Formatter, error) {
	if locale == "" {
		locale = "en-US"
	}
	tag, err := language.Parse(locale)
	if err != nil {
		return nil, eris.Wrapf(err, "export: parse locale %q", locale)
	}
	return &Formatter{p: message.NewPrinter(tag)}, nil
}

// Money formats v as whole currency units with grouping, e.g. "$12,345".
func (f *Formatter) Money(v *float64) string {
	if v == nil {
		return "n/a"
	}
	return f.p.Sprintf("$%.0f", *v)
}

// Percent formats v with one decimal, e.g. "12.3%".
func (f *Formatter) Percent(v *float64) string {
	if v == nil {
		return "n/a"
	}
	return f.p.Sprintf("%.1f%%", *v)
}

// WriteInsights writes the plain-text findings for r to w.
func WriteInsights(w io.Writer, r *Report) error {
	f, err := NewFormatter(r.Options.Locale)
	if err != nil {
		return err
	}
	o := r.Options
	k := o.HighlightK

	var b strings.Builder
	line := func(format string, args ...any) {
		b.WriteString(fmt.Sprintf(format, args...))
		b.WriteByte('\n')
	}

	line("Healthcare Affordability: Key Findings")
	line("")

	if len(r.CostDesc) > 0 {
		line("* Highest cost per utilizer:")
		for _, c := range head(r.CostDesc, k) {
			line("    - %s: %s", c.RegionName, f.Money(&c.CostMetric))
		}
		line("* Lowest cost per utilizer:")
		for _, c := range head(r.CostAsc, k) {
			line("    - %s: %s", c.RegionName, f.Money(&c.CostMetric))
		}
		line("")
	}

	if len(r.Groups) > 0 {
		line("* %d affordability index (higher %% = more burden):", o.Year)
		for _, g := range r.Groups {
			if len(g.Top) == 0 || len(g.Bottom) == 0 {
				continue
			}
			line("   Group: %s", g.IncomeGroup)
			line("     Most burdensome (top %d):", min(k, len(g.Top)))
			for _, rf := range head(g.Top, k) {
				line("       * %s", rankedLine(f, rf))
			}
			line("     Least burdensome (bottom %d):", min(k, len(g.Bottom)))
			for _, rf := range head(g.Bottom, k) {
				line("       * %s", rankedLine(f, rf))
			}
		}
		line("")
	}

	defined := definedChanges(r.Changes)
	if len(defined) > 0 {
		line("* %s income change %d to %d:", o.ChangeGroup, o.ChangeFrom, o.ChangeTo)
		line("   Best improvements:")
		for i := len(defined) - 1; i >= 0 && i >= len(defined)-k; i-- {
			line("     - %s", changeLine(f, defined[i]))
		}
		line("   Weakest growth:")
		for _, c := range head(defined, k) {
			line("     - %s", changeLine(f, c))
		}
	}

	out := strings.TrimSpace(b.String()) + "\n"
	_, err = io.WriteString(w, out)
	return eris.Wrap(err, "export: write insights")
}

// WriteInsightsFile writes the findings for r to path.
func WriteInsightsFile(path string, r *Report) error {
	var buf bytes.Buffer
	if err := WriteInsights(&buf, r); err != nil {
		return err
	}
	return eris.Wrapf(os.WriteFile(path, buf.Bytes(), 0o644), "export: write %s", path)
}

func rankedLine(f *Formatter, rf model.RankedFact) string {
	return fmt.Sprintf("%s: %s (cost %s vs income %s)",
		rf.RegionName, f.Percent(rf.AffordabilityIndex), f.Money(rf.CostMetric), f.Money(rf.MedianIncome))
}

func changeLine(f *Formatter, c model.IncomeChange) string {
	return fmt.Sprintf("%s: %s (%d %s to %d %s; cost %s)",
		c.RegionName, f.Percent(c.PctChange),
		c.FromYear, f.Money(c.FromIncome), c.ToYear, f.Money(c.ToIncome), f.Money(c.CostMetric))
}

// definedChanges drops changes without a percentage. Input order is kept.
func definedChanges(changes []model.IncomeChange) []model.IncomeChange {
	var out []model.IncomeChange
	for _, c := range changes {
		if c.PctChange != nil {
			out = append(out, c)
		}
	}
	return out
}

func head[T any](s []T, k int) []T {
	if k < 0 {
		k = 0
	}
	return s[:min(k, len(s))]
}
