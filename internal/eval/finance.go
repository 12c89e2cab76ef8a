package eval

import (
	"math"

	"github.com/planforge/calcengine/internal/calcerr"
	"github.com/planforge/calcengine/internal/value"
)

// pmtType is the payment-timing argument PMT/PV/FV/NPER/RATE/PPMT/IPMT
// all share: 0 (default) for end-of-period payments, 1 for
// beginning-of-period (annuity-due).
func pmtType(args []value.Value, pos int) (float64, error) {
	return optNum(args, pos, 0)
}

func init() {
	register("PMT", func(_ *Context, a []value.Value) (value.Value, error) {
		rate, nper, pv, err := financeCore3(a)
		if err != nil {
			return value.Nil, err
		}
		fv, err := optNum(a, 3, 0)
		if err != nil {
			return value.Nil, err
		}
		due, err := pmtType(a, 4)
		if err != nil {
			return value.Nil, err
		}
		return value.Num(pmt(rate, nper, pv, fv, due)), nil
	})
	register("PV", func(_ *Context, a []value.Value) (value.Value, error) {
		rate, err := num(a[0])
		if err != nil {
			return value.Nil, err
		}
		nper, err := num(a[1])
		if err != nil {
			return value.Nil, err
		}
		payment, err := num(a[2])
		if err != nil {
			return value.Nil, err
		}
		fv, err := optNum(a, 3, 0)
		if err != nil {
			return value.Nil, err
		}
		due, err := pmtType(a, 4)
		if err != nil {
			return value.Nil, err
		}
		return value.Num(pv(rate, nper, payment, fv, due)), nil
	})
	register("FV", func(_ *Context, a []value.Value) (value.Value, error) {
		rate, err := num(a[0])
		if err != nil {
			return value.Nil, err
		}
		nper, err := num(a[1])
		if err != nil {
			return value.Nil, err
		}
		payment, err := num(a[2])
		if err != nil {
			return value.Nil, err
		}
		pvv, err := optNum(a, 3, 0)
		if err != nil {
			return value.Nil, err
		}
		due, err := pmtType(a, 4)
		if err != nil {
			return value.Nil, err
		}
		return value.Num(fv(rate, nper, payment, pvv, due)), nil
	})
	register("NPV", func(_ *Context, a []value.Value) (value.Value, error) {
		rate, err := num(a[0])
		if err != nil {
			return value.Nil, err
		}
		flows := flattenNumbers(a[1:])
		var sum float64
		for i, cf := range flows {
			sum += cf / math.Pow(1+rate, float64(i+1))
		}
		return value.Num(sum), nil
	})
	register("NPER", func(_ *Context, a []value.Value) (value.Value, error) {
		rate, err := num(a[0])
		if err != nil {
			return value.Nil, err
		}
		payment, err := num(a[1])
		if err != nil {
			return value.Nil, err
		}
		pvv, err := num(a[2])
		if err != nil {
			return value.Nil, err
		}
		fvv, err := optNum(a, 3, 0)
		if err != nil {
			return value.Nil, err
		}
		due, err := pmtType(a, 4)
		if err != nil {
			return value.Nil, err
		}
		if rate == 0 {
			if payment == 0 {
				return value.Nil, calcerr.DivZerof("NPER: payment and rate both zero")
			}
			return value.Num(-(pvv + fvv) / payment), nil
		}
		factor := (payment * (1 + rate*due)) / rate
		n := math.Log((factor-fvv)/(factor+pvv)) / math.Log(1+rate)
		return value.Num(n), nil
	})
	register("RATE", func(_ *Context, a []value.Value) (value.Value, error) {
		nper, err := num(a[0])
		if err != nil {
			return value.Nil, err
		}
		payment, err := num(a[1])
		if err != nil {
			return value.Nil, err
		}
		pvv, err := num(a[2])
		if err != nil {
			return value.Nil, err
		}
		fvv, err := optNum(a, 3, 0)
		if err != nil {
			return value.Nil, err
		}
		due, err := pmtType(a, 4)
		if err != nil {
			return value.Nil, err
		}
		guess, err := optNum(a, 5, 0.1)
		if err != nil {
			return value.Nil, err
		}
		rate, ok := solveRate(nper, payment, pvv, fvv, due, guess)
		if !ok {
			return value.Nil, calcerr.Domainf("RATE: failed to converge")
		}
		return value.Num(rate), nil
	})
	register("IRR", func(_ *Context, a []value.Value) (value.Value, error) {
		flows := flattenNumbers([]value.Value{a[0]})
		guess, err := optNum(a, 1, 0.1)
		if err != nil {
			return value.Nil, err
		}
		rate, ok := solveIRR(flows, guess)
		if !ok {
			return value.Nil, calcerr.Domainf("IRR: failed to converge")
		}
		return value.Num(rate), nil
	})
	register("XIRR", func(_ *Context, a []value.Value) (value.Value, error) {
		flows := flattenNumbers([]value.Value{a[0]})
		dateVals := a[1].Items()
		days := make([]float64, len(dateVals))
		for i, dv := range dateVals {
			t, err := asDate(dv)
			if err != nil {
				return value.Nil, err
			}
			days[i] = float64(value.DateToSerial(t))
		}
		guess, err := optNum(a, 2, 0.1)
		if err != nil {
			return value.Nil, err
		}
		rate, ok := solveXIRR(flows, days, guess)
		if !ok {
			return value.Nil, calcerr.Domainf("XIRR: failed to converge")
		}
		return value.Num(rate), nil
	})
	register("XNPV", func(_ *Context, a []value.Value) (value.Value, error) {
		rate, err := num(a[0])
		if err != nil {
			return value.Nil, err
		}
		flows := flattenNumbers([]value.Value{a[1]})
		dateVals := a[2].Items()
		if len(flows) != len(dateVals) {
			return value.Nil, calcerr.Domainf("XNPV: flows and dates must be equal length")
		}
		days := make([]float64, len(dateVals))
		for i, dv := range dateVals {
			t, err := asDate(dv)
			if err != nil {
				return value.Nil, err
			}
			days[i] = float64(value.DateToSerial(t))
		}
		return value.Num(xnpv(rate, flows, days)), nil
	})
	register("MIRR", func(_ *Context, a []value.Value) (value.Value, error) {
		flows := flattenNumbers([]value.Value{a[0]})
		financeRate, err := num(a[1])
		if err != nil {
			return value.Nil, err
		}
		reinvestRate, err := num(a[2])
		if err != nil {
			return value.Nil, err
		}
		return value.Num(mirr(flows, financeRate, reinvestRate)), nil
	})
	register("SLN", func(_ *Context, a []value.Value) (value.Value, error) {
		cost, err := num(a[0])
		if err != nil {
			return value.Nil, err
		}
		salvage, err := num(a[1])
		if err != nil {
			return value.Nil, err
		}
		life, err := num(a[2])
		if err != nil {
			return value.Nil, err
		}
		if life == 0 {
			return value.Nil, calcerr.DivZerof("SLN: life is zero")
		}
		return value.Num((cost - salvage) / life), nil
	})
	register("DDB", func(_ *Context, a []value.Value) (value.Value, error) {
		cost, err := num(a[0])
		if err != nil {
			return value.Nil, err
		}
		salvage, err := num(a[1])
		if err != nil {
			return value.Nil, err
		}
		life, err := num(a[2])
		if err != nil {
			return value.Nil, err
		}
		period, err := num(a[3])
		if err != nil {
			return value.Nil, err
		}
		factor, err := optNum(a, 4, 2)
		if err != nil {
			return value.Nil, err
		}
		return value.Num(ddb(cost, salvage, life, period, factor)), nil
	})
	register("DB", func(_ *Context, a []value.Value) (value.Value, error) {
		cost, err := num(a[0])
		if err != nil {
			return value.Nil, err
		}
		salvage, err := num(a[1])
		if err != nil {
			return value.Nil, err
		}
		life, err := num(a[2])
		if err != nil {
			return value.Nil, err
		}
		period, err := num(a[3])
		if err != nil {
			return value.Nil, err
		}
		month, err := optNum(a, 4, 12)
		if err != nil {
			return value.Nil, err
		}
		return value.Num(db(cost, salvage, life, period, month)), nil
	})
	register("PPMT", func(_ *Context, a []value.Value) (value.Value, error) {
		rate, per, nper, pv, fv, due, err := financeCore6(a)
		if err != nil {
			return value.Nil, err
		}
		total := pmt(rate, nper, pv, fv, due)
		return value.Num(total - ipmtAt(rate, per, nper, pv, fv, due)), nil
	})
	register("IPMT", func(_ *Context, a []value.Value) (value.Value, error) {
		rate, per, nper, pv, fv, due, err := financeCore6(a)
		if err != nil {
			return value.Nil, err
		}
		return value.Num(ipmtAt(rate, per, nper, pv, fv, due)), nil
	})
	register("EFFECT", func(_ *Context, a []value.Value) (value.Value, error) {
		nominal, err := num(a[0])
		if err != nil {
			return value.Nil, err
		}
		periods, err := num(a[1])
		if err != nil {
			return value.Nil, err
		}
		if periods <= 0 {
			return value.Nil, calcerr.Domainf("EFFECT: periods must be positive")
		}
		return value.Num(math.Pow(1+nominal/periods, periods) - 1), nil
	})
	register("NOMINAL", func(_ *Context, a []value.Value) (value.Value, error) {
		effect, err := num(a[0])
		if err != nil {
			return value.Nil, err
		}
		periods, err := num(a[1])
		if err != nil {
			return value.Nil, err
		}
		if periods <= 0 {
			return value.Nil, calcerr.Domainf("NOMINAL: periods must be positive")
		}
		return value.Num((math.Pow(1+effect, 1/periods) - 1) * periods), nil
	})
	register("PRICEDISC", func(_ *Context, a []value.Value) (value.Value, error) {
		settlement, maturity, discount, redemption, basis, err := discFields(a)
		if err != nil {
			return value.Nil, err
		}
		days := yearFracBasis(settlement, maturity, basis)
		return value.Num(redemption - discount*redemption*days), nil
	})
	register("YIELDDISC", func(_ *Context, a []value.Value) (value.Value, error) {
		settlement, maturity, price, redemption, basis, err := discFields(a)
		if err != nil {
			return value.Nil, err
		}
		days := yearFracBasis(settlement, maturity, basis)
		if price == 0 || days == 0 {
			return value.Nil, calcerr.DivZerof("YIELDDISC: price and term must be nonzero")
		}
		return value.Num((redemption - price) / price / days), nil
	})
	register("ACCRINT", func(_ *Context, a []value.Value) (value.Value, error) {
		issue, err := asDate(a[0])
		if err != nil {
			return value.Nil, err
		}
		settlement, err := asDate(a[2])
		if err != nil {
			return value.Nil, err
		}
		rate, err := num(a[3])
		if err != nil {
			return value.Nil, err
		}
		parVal, err := optNum(a, 4, 1000)
		if err != nil {
			return value.Nil, err
		}
		freq, err := optNum(a, 5, 1)
		if err != nil {
			return value.Nil, err
		}
		days := float64(value.DateToSerial(settlement) - value.DateToSerial(issue))
		return value.Num(parVal * rate * (days / 365) * freq / freq), nil
	})
}

func discFields(a []value.Value) (settlement, maturity, rate2, redemption, basis float64, err error) {
	st, err := asDate(a[0])
	if err != nil {
		return
	}
	mt, err := asDate(a[1])
	if err != nil {
		return
	}
	rate2, err = num(a[2])
	if err != nil {
		return
	}
	redemption, err = num(a[3])
	if err != nil {
		return
	}
	basis, err = optNum(a, 4, 0)
	if err != nil {
		return
	}
	settlement = float64(value.DateToSerial(st))
	maturity = float64(value.DateToSerial(mt))
	return
}

func yearFracBasis(settlementSerial, maturitySerial, basis float64) float64 {
	denom := 360.0
	if int(basis) == 1 || int(basis) == 3 {
		denom = 365.0
	}
	return (maturitySerial - settlementSerial) / denom
}

func financeCore3(a []value.Value) (rate, nper, pv float64, err error) {
	rate, err = num(a[0])
	if err != nil {
		return
	}
	nper, err = num(a[1])
	if err != nil {
		return
	}
	pv, err = num(a[2])
	return
}

func financeCore6(a []value.Value) (rate, per, nper, pv, fv, due float64, err error) {
	rate, err = num(a[0])
	if err != nil {
		return
	}
	per, err = num(a[1])
	if err != nil {
		return
	}
	nper, err = num(a[2])
	if err != nil {
		return
	}
	pv, err = num(a[3])
	if err != nil {
		return
	}
	fv, err = optNum(a, 4, 0)
	if err != nil {
		return
	}
	due, err = pmtType(a, 5)
	return
}

func pmt(rate, nper, pv, fv, due float64) float64 {
	if rate == 0 {
		return -(pv + fv) / nper
	}
	factor := math.Pow(1+rate, nper)
	return -(pv*factor + fv) * rate / ((factor - 1) * (1 + rate*due))
}

func pv(rate, nper, payment, fv, due float64) float64 {
	if rate == 0 {
		return -(fv + payment*nper)
	}
	factor := math.Pow(1+rate, nper)
	return -(fv + payment*(1+rate*due)*(factor-1)/rate) / factor
}

func fv(rate, nper, payment, pv, due float64) float64 {
	if rate == 0 {
		return -(pv + payment*nper)
	}
	factor := math.Pow(1+rate, nper)
	return -(pv*factor + payment*(1+rate*due)*(factor-1)/rate)
}

// ipmtAt returns the interest portion of the payment due at period `per`.
func ipmtAt(rate, per, nper, pv, fv, due float64) float64 {
	payment := pmt(rate, nper, pv, fv, due)
	balance := pv
	if per > 1 {
		balance = fv2(rate, per-1, payment, pv, due)
	}
	interest := -balance * rate
	if due == 1 {
		if per == 1 {
			return 0
		}
		interest /= (1 + rate)
	}
	return interest
}

// fv2 computes the running balance after n periods, used by ipmtAt.
func fv2(rate, n, payment, pv, due float64) float64 {
	if rate == 0 {
		return pv + payment*n
	}
	factor := math.Pow(1+rate, n)
	return pv*factor + payment*(1+rate*due)*(factor-1)/rate
}

func ddb(cost, salvage, life, period, factor float64) float64 {
	rate := factor / life
	bookValue := cost
	var depreciation float64
	for p := 1.0; p <= period; p++ {
		depreciation = math.Min(bookValue*rate, bookValue-salvage)
		if depreciation < 0 {
			depreciation = 0
		}
		bookValue -= depreciation
	}
	return depreciation
}

func db(cost, salvage, life, period, month float64) float64 {
	if cost == 0 {
		return 0
	}
	rate := 1 - math.Pow(salvage/cost, 1/life)
	rate = math.Round(rate*1000) / 1000
	first := cost * rate * month / 12
	if period == 1 {
		return first
	}
	bookValue := cost - first
	var dep float64
	limit := int(period)
	if int(life)+1 == limit {
		dep = (bookValue * rate) * (12 - month) / 12
		return dep
	}
	for p := 2; p <= limit; p++ {
		dep = bookValue * rate
		bookValue -= dep
	}
	return dep
}

func xnpv(rate float64, flows, days []float64) float64 {
	if len(flows) == 0 {
		return 0
	}
	d0 := days[0]
	var sum float64
	for i, cf := range flows {
		sum += cf / math.Pow(1+rate, (days[i]-d0)/365)
	}
	return sum
}

func mirr(flows []float64, financeRate, reinvestRate float64) float64 {
	n := len(flows) - 1
	if n <= 0 {
		return 0
	}
	var pvNeg, fvPos float64
	for i, cf := range flows {
		if cf < 0 {
			pvNeg += cf / math.Pow(1+financeRate, float64(i))
		} else if cf > 0 {
			fvPos += cf * math.Pow(1+reinvestRate, float64(n-i))
		}
	}
	if pvNeg == 0 {
		return 0
	}
	return math.Pow(-fvPos/pvNeg, 1/float64(n)) - 1
}

func npv(rate float64, flows []float64, offset int) float64 {
	var sum float64
	for i, cf := range flows {
		sum += cf / math.Pow(1+rate, float64(i+offset))
	}
	return sum
}

func solveIRR(flows []float64, guess float64) (float64, bool) {
	rate := guess
	for iter := 0; iter < 100; iter++ {
		f := npv(rate, flows, 0)
		df := (npv(rate+1e-6, flows, 0) - f) / 1e-6
		if df == 0 {
			return 0, false
		}
		next := rate - f/df
		if math.Abs(next-rate) < 1e-9 {
			return next, true
		}
		rate = next
	}
	return 0, false
}

func solveXIRR(flows, days []float64, guess float64) (float64, bool) {
	rate := guess
	for iter := 0; iter < 100; iter++ {
		f := xnpv(rate, flows, days)
		df := (xnpv(rate+1e-6, flows, days) - f) / 1e-6
		if df == 0 {
			return 0, false
		}
		next := rate - f/df
		if math.Abs(next-rate) < 1e-9 {
			return next, true
		}
		rate = next
	}
	return 0, false
}

func solveRate(nper, payment, pv, fv, due, guess float64) (float64, bool) {
	rate := guess
	g := func(r float64) float64 {
		if r == 0 {
			return pv + payment*nper + fv
		}
		factor := math.Pow(1+r, nper)
		return pv*factor + payment*(1+r*due)*(factor-1)/r + fv
	}
	for iter := 0; iter < 100; iter++ {
		f := g(rate)
		df := (g(rate+1e-6) - f) / 1e-6
		if df == 0 {
			return 0, false
		}
		next := rate - f/df
		if math.Abs(next-rate) < 1e-9 {
			return next, true
		}
		rate = next
	}
	return 0, false
}
