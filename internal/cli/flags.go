package cli

import (
	"errors"
	"flag"
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"github.com/smallbiznis/stockroom/internal/calendar"
)

var ErrInvalidFlag = errors.New("invalid_flag")

func (r *Runner) flags(name string) *flag.FlagSet {
	fs := flag.NewFlagSet("stockroom "+name, flag.ContinueOnError)
	fs.SetOutput(r.out)
	return fs
}

// parse rejects stray positional arguments so a mistyped flag is not ignored.
func parse(fs *flag.FlagSet, args []string) error {
	if err := fs.Parse(args); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return err
		}
		return fmt.Errorf("%w: %v", ErrUsage, err)
	}
	if fs.NArg() > 0 {
		return fmt.Errorf("%w: unexpected argument %q", ErrUsage, fs.Arg(0))
	}
	return nil
}

func requireID(name string, id int64) error {
	if id <= 0 {
		return fmt.Errorf("%w: -%s is required", ErrUsage, name)
	}
	return nil
}

// setFlags names the flags given on the command line.
func setFlags(fs *flag.FlagSet) map[string]bool {
	set := make(map[string]bool)
	fs.Visit(func(f *flag.Flag) { set[f.Name] = true })
	return set
}

// dateFlag accepts MM/DD/YYYY, or YYYY-MM-DD as found in older exports.
type dateFlag struct {
	date calendar.Date
}

func (d *dateFlag) String() string { return d.date.String() }

func (d *dateFlag) Set(value string) error {
	parsed, err := calendar.Normalize(value)
	if err != nil {
		return err
	}
	d.date = parsed
	return nil
}

// monthFlag accepts MM/YYYY.
type monthFlag struct {
	date calendar.Date
}

func (m *monthFlag) String() string {
	if m.date.IsZero() {
		return ""
	}
	return m.date.MonthKey()
}

func (m *monthFlag) Set(value string) error {
	t, err := time.Parse(calendar.LayoutMonth, strings.TrimSpace(value))
	if err != nil {
		return fmt.Errorf("%w: %q", calendar.ErrMalformedDate, value)
	}
	m.date = calendar.FromTime(t)
	return nil
}

type decimalFlag struct {
	value decimal.Decimal
}

func (d *decimalFlag) String() string { return d.value.String() }

func (d *decimalFlag) Set(value string) error {
	parsed, err := decimal.NewFromString(strings.TrimSpace(value))
	if err != nil {
		return fmt.Errorf("%w: %q is not a number", ErrInvalidFlag, value)
	}
	d.value = parsed
	return nil
}

// attrFlag collects repeated key=value pairs.
type attrFlag map[string]any

func (a attrFlag) String() string {
	parts := make([]string, 0, len(a))
	for k, v := range a {
		parts = append(parts, fmt.Sprintf("%s=%v", k, v))
	}
	return strings.Join(parts, ",")
}

func (a attrFlag) Set(value string) error {
	key, val, ok := strings.Cut(value, "=")
	key = strings.TrimSpace(key)
	if !ok || key == "" {
		return fmt.Errorf("%w: attribute %q must be key=value", ErrInvalidFlag, value)
	}
	a[key] = strings.TrimSpace(val)
	return nil
}
