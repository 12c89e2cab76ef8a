package eval

import (
	"time"

	"github.com/planforge/calcengine/internal/calcerr"
	"github.com/planforge/calcengine/internal/value"
)

// asDate coerces v (a Date value, Text holding an ISO-8601 date, or a
// Number holding a day-serial) into a time.Time at midnight UTC.
func asDate(v value.Value) (time.Time, error) {
	if v.Kind() == value.DateKind {
		return value.ParseDate(v.Str())
	}
	if v.Kind() == value.TextKind {
		if t, err := value.ParseDate(v.Str()); err == nil {
			return t, nil
		}
	}
	f, ok := v.AsNumber()
	if !ok {
		return time.Time{}, calcerr.Typef("cannot coerce %s to a date", v.TypeName())
	}
	return value.ParseDate(value.SerialToDate(int64(f)))
}

func dateValue(t time.Time) value.Value {
	return value.Date(t.Format(value.DateLayout))
}

func isWeekend(t time.Time) bool {
	wd := t.Weekday()
	return wd == time.Saturday || wd == time.Sunday
}

func init() {
	register("TODAY", func(_ *Context, a []value.Value) (value.Value, error) {
		return dateValue(time.Now().UTC().Truncate(24 * time.Hour)), nil
	})
	register("NOW", func(_ *Context, a []value.Value) (value.Value, error) {
		now := time.Now().UTC()
		midnight := now.Truncate(24 * time.Hour)
		serial := float64(value.DateToSerial(midnight))
		frac := now.Sub(midnight).Hours() / 24
		return value.Num(serial + frac), nil
	})
	register("DATE", func(_ *Context, a []value.Value) (value.Value, error) {
		y, err := num(a[0])
		if err != nil {
			return value.Nil, err
		}
		m, err := num(a[1])
		if err != nil {
			return value.Nil, err
		}
		d, err := num(a[2])
		if err != nil {
			return value.Nil, err
		}
		return dateValue(time.Date(int(y), time.Month(int(m)), int(d), 0, 0, 0, 0, time.UTC)), nil
	})
	register("YEAR", dateField(func(t time.Time) float64 { return float64(t.Year()) }))
	register("MONTH", dateField(func(t time.Time) float64 { return float64(t.Month()) }))
	register("DAY", dateField(func(t time.Time) float64 { return float64(t.Day()) }))
	register("WEEKDAY", func(_ *Context, a []value.Value) (value.Value, error) {
		t, err := asDate(a[0])
		if err != nil {
			return value.Nil, err
		}
		typ, err := optNum(a, 1, 1)
		if err != nil {
			return value.Nil, err
		}
		wd := int(t.Weekday()) // Sunday = 0
		switch int(typ) {
		case 2: // Monday = 1 ... Sunday = 7
			return value.Num(float64((wd+6)%7 + 1)), nil
		case 3: // Monday = 0 ... Sunday = 6
			return value.Num(float64((wd + 6) % 7)), nil
		default: // Sunday = 1 ... Saturday = 7
			return value.Num(float64(wd + 1)), nil
		}
	})
	register("HOUR", timeField(func(frac float64) float64 { return floorMod(frac*24, 24) }))
	register("MINUTE", timeField(func(frac float64) float64 { return floorMod(frac*1440, 60) }))
	register("SECOND", timeField(func(frac float64) float64 { return floorMod(frac*86400, 60) }))
	register("TIME", func(_ *Context, a []value.Value) (value.Value, error) {
		h, err := num(a[0])
		if err != nil {
			return value.Nil, err
		}
		m, err := num(a[1])
		if err != nil {
			return value.Nil, err
		}
		s, err := num(a[2])
		if err != nil {
			return value.Nil, err
		}
		return value.Num(h/24 + m/1440 + s/86400), nil
	})
	register("DAYS", func(_ *Context, a []value.Value) (value.Value, error) {
		end, err := asDate(a[0])
		if err != nil {
			return value.Nil, err
		}
		start, err := asDate(a[1])
		if err != nil {
			return value.Nil, err
		}
		return value.Num(float64(value.DateToSerial(end) - value.DateToSerial(start))), nil
	})
	register("EDATE", func(_ *Context, a []value.Value) (value.Value, error) {
		t, err := asDate(a[0])
		if err != nil {
			return value.Nil, err
		}
		months, err := num(a[1])
		if err != nil {
			return value.Nil, err
		}
		return dateValue(t.AddDate(0, int(months), 0)), nil
	})
	register("EOMONTH", func(_ *Context, a []value.Value) (value.Value, error) {
		t, err := asDate(a[0])
		if err != nil {
			return value.Nil, err
		}
		months, err := num(a[1])
		if err != nil {
			return value.Nil, err
		}
		firstOfNext := time.Date(t.Year(), t.Month()+time.Month(int(months))+1, 1, 0, 0, 0, 0, time.UTC)
		return dateValue(firstOfNext.AddDate(0, 0, -1)), nil
	})
	register("DATEDIF", func(_ *Context, a []value.Value) (value.Value, error) {
		start, err := asDate(a[0])
		if err != nil {
			return value.Nil, err
		}
		end, err := asDate(a[1])
		if err != nil {
			return value.Nil, err
		}
		unit := displayText(a[2])
		return datedif(start, end, unit)
	})
	register("YEARFRAC", func(_ *Context, a []value.Value) (value.Value, error) {
		start, err := asDate(a[0])
		if err != nil {
			return value.Nil, err
		}
		end, err := asDate(a[1])
		if err != nil {
			return value.Nil, err
		}
		basis, err := optNum(a, 2, 0)
		if err != nil {
			return value.Nil, err
		}
		days := float64(value.DateToSerial(end) - value.DateToSerial(start))
		denom := 365.0
		if int(basis) == 0 || int(basis) == 4 {
			denom = 360.0
		}
		return value.Num(days / denom), nil
	})
	register("WORKDAY", func(_ *Context, a []value.Value) (value.Value, error) {
		start, err := asDate(a[0])
		if err != nil {
			return value.Nil, err
		}
		days, err := num(a[1])
		if err != nil {
			return value.Nil, err
		}
		holidays := holidaySet(a, 2)
		return dateValue(addWorkdays(start, int(days), holidays)), nil
	})
	register("NETWORKDAYS", func(_ *Context, a []value.Value) (value.Value, error) {
		start, err := asDate(a[0])
		if err != nil {
			return value.Nil, err
		}
		end, err := asDate(a[1])
		if err != nil {
			return value.Nil, err
		}
		holidays := holidaySet(a, 2)
		return value.Num(float64(countNetworkDays(start, end, holidays))), nil
	})
}

func dateField(f func(time.Time) float64) builtin {
	return func(_ *Context, a []value.Value) (value.Value, error) {
		t, err := asDate(a[0])
		if err != nil {
			return value.Nil, err
		}
		return value.Num(f(t)), nil
	}
}

func timeField(f func(frac float64) float64) builtin {
	return func(_ *Context, a []value.Value) (value.Value, error) {
		n, err := num(a[0])
		if err != nil {
			return value.Nil, err
		}
		_, frac := splitSerial(n)
		return value.Num(f(frac)), nil
	}
}

func splitSerial(n float64) (whole int64, frac float64) {
	whole = int64(n)
	frac = n - float64(whole)
	if frac < 0 {
		frac += 1
	}
	return
}

func floorMod(v, m float64) float64 {
	r := v - m*float64(int64(v/m))
	if r < 0 {
		r += m
	}
	return float64(int64(r))
}

func datedif(start, end time.Time, unit string) (value.Value, error) {
	if end.Before(start) {
		return value.Nil, calcerr.Domainf("DATEDIF: end date before start date")
	}
	switch unit {
	case "D", "d":
		return value.Num(float64(value.DateToSerial(end) - value.DateToSerial(start))), nil
	case "M", "m":
		months := (end.Year()-start.Year())*12 + int(end.Month()) - int(start.Month())
		if end.Day() < start.Day() {
			months--
		}
		return value.Num(float64(months)), nil
	case "Y", "y":
		years := end.Year() - start.Year()
		if end.Month() < start.Month() || (end.Month() == start.Month() && end.Day() < start.Day()) {
			years--
		}
		return value.Num(float64(years)), nil
	default:
		return value.Nil, calcerr.Domainf("DATEDIF: unknown unit %q", unit)
	}
}

func holidaySet(args []value.Value, pos int) map[int64]bool {
	set := map[int64]bool{}
	if pos >= len(args) {
		return set
	}
	for _, v := range args[pos].Items() {
		if t, err := asDate(v); err == nil {
			set[value.DateToSerial(t)] = true
		}
	}
	return set
}

func addWorkdays(start time.Time, n int, holidays map[int64]bool) time.Time {
	step := 1
	if n < 0 {
		step = -1
		n = -n
	}
	t := start
	for n > 0 {
		t = t.AddDate(0, 0, step)
		if !isWeekend(t) && !holidays[value.DateToSerial(t)] {
			n--
		}
	}
	return t
}

func countNetworkDays(start, end time.Time, holidays map[int64]bool) int {
	step := 1
	if end.Before(start) {
		step = -1
	}
	count := 0
	t := start
	for {
		if !isWeekend(t) && !holidays[value.DateToSerial(t)] {
			count++
		}
		if t.Equal(end) {
			break
		}
		t = t.AddDate(0, 0, step)
	}
	if step < 0 {
		return -count
	}
	return count
}
