package optpricer

import (
	"fmt"
	"io"
	"math"

	"github.com/fatih/color"
	"github.com/gocarina/gocsv"
	"github.com/golang/glog"
)

// StrikeLadderRow is the theoretical call and put for one strike.
type StrikeLadderRow struct {
	Strike float64
	Call   OptionGreeks
	Put    OptionGreeks
}

// ParityGap is (C − P) − (S − K·e^(−rT)) for the row.
func (row *StrikeLadderRow) ParityGap(spot float64, deflater float64) float64 {
	return (row.Call.Price - row.Put.Price) - (spot - row.Strike*deflater)
}

func (row *StrikeLadderRow) String() string {
	return fmt.Sprintf("Strike: %.2f, Call: %.4f (Δ %.4f), Put: %.4f (Δ %.4f), "+
		"Gamma: %.6f, Vega: %.4f",
		row.Strike, row.Call.Price, row.Call.Delta, row.Put.Price, row.Put.Delta,
		row.Call.Gamma, row.Call.Vega)
}

// StrikeLadder prices a chain of strikes around the money for one
// underlying, expiry, rate and volatility.
type StrikeLadder struct {
	contract   OptionContract
	strikeStep float64
	atmStrike  float64
	rows       []*StrikeLadderRow
}

// NewStrikeLadder builds totalStrikes strikes centred on the at-the-money
// strike, the spot rounded to strikeStep. The contract's own strike is
// ignored. Strikes that would be non-positive are skipped.
func NewStrikeLadder(
	contract OptionContract,
	strikeStep float64,
	totalStrikes int) (*StrikeLadder, error) {

	if !isFinite(strikeStep) || strikeStep <= 0 {
		return nil, invalidParameter("strike step must be positive, got %v", strikeStep)
	}
	if totalStrikes <= 0 {
		return nil, invalidParameter("total strikes must be positive, got %d", totalStrikes)
	}

	ladder := &StrikeLadder{
		contract:   contract,
		strikeStep: strikeStep,
		atmStrike:  roundToStep(contract.spot, strikeStep),
	}
	for _, strike := range ladder.GetAtmStrikes(totalStrikes) {
		priced, err := contract.WithStrike(strike)
		if err != nil {
			return nil, err
		}
		bs, err := NewBlackScholes(priced)
		if err != nil {
			return nil, err
		}
		ladder.rows = append(ladder.rows, &StrikeLadderRow{
			Strike: strike,
			Call:   bs.Greeks(Call),
			Put:    bs.Greeks(Put),
		})
	}
	glog.V(1).Infof("Priced %d strikes around ATM %.2f (spot %.2f)",
		len(ladder.rows), ladder.atmStrike, contract.spot)
	return ladder, nil
}

func (l *StrikeLadder) AtmStrike() float64       { return l.atmStrike }
func (l *StrikeLadder) UnderlyingValue() float64 { return l.contract.spot }
func (l *StrikeLadder) StrikeStep() float64      { return l.strikeStep }
func (l *StrikeLadder) Rows() []*StrikeLadderRow { return l.rows }
func (l *StrikeLadder) Contract() OptionContract { return l.contract }

// GetAtmStrikes returns totalStrikes strikes, strikeStep apart, with the ATM
// strike in the middle.
func (l *StrikeLadder) GetAtmStrikes(totalStrikes int) []float64 {
	begin := l.atmStrike - float64(totalStrikes/2)*l.strikeStep
	strikes := make([]float64, 0, totalStrikes)
	for ii := 0; ii < totalStrikes; ii++ {
		strike := begin + float64(ii)*l.strikeStep
		if strike <= 0 {
			continue
		}
		strikes = append(strikes, strike)
	}
	return strikes
}

// RowForStrike returns the row for strike, or nil.
func (l *StrikeLadder) RowForStrike(strike float64) *StrikeLadderRow {
	for _, row := range l.rows {
		if math.Abs(row.Strike-strike) < 1e-9 {
			return row
		}
	}
	return nil
}

// MaxParityGap is the largest put-call parity violation on the ladder.
func (l *StrikeLadder) MaxParityGap() float64 {
	deflater := l.contract.Deflater()
	worst := 0.0
	for _, row := range l.rows {
		worst = MaxFloat(worst, math.Abs(row.ParityGap(l.contract.spot, deflater)))
	}
	return worst
}

// PrintTable writes the ladder with in-the-money sides highlighted and the
// ATM strike marked with '*'.
func (l *StrikeLadder) PrintTable(w io.Writer) {
	fmt.Fprintf(w, "%-10s %-8s %-10s %-10s %-10s %-10s %-10s %-8s %-10s %s %-10s %-10s\n",
		"CallTheta", "CallVega", "CallDelta", "CallPrice", "Strike", "PutPrice",
		"PutDelta", "PutVega", "PutTheta", "||", "Gamma", "ParityGap")

	itmColor := color.New(color.FgYellow).SprintFunc()
	otmColor := color.New(color.FgBlue).SprintFunc()
	atmColor := color.New(color.FgGreen).SprintFunc()

	deflater := l.contract.Deflater()
	for _, row := range l.rows {
		atmChar := ' '
		strikeColor := fmt.Sprint
		if math.Abs(row.Strike-l.atmStrike) < 1e-9 {
			atmChar = '*'
			strikeColor = atmColor
		}

		callColor := itmColor
		putColor := itmColor
		if row.Strike < l.contract.spot {
			putColor = otmColor
		} else {
			callColor = otmColor
		}

		fmt.Fprintf(w, "%s %c%s %s %s %-10.6f %-10.2e\n",
			callColor(fmt.Sprintf("%-10.4f %-8.4f %-10.4f %-10.4f",
				row.Call.Theta, row.Call.Vega, row.Call.Delta, row.Call.Price)),
			atmChar, strikeColor(fmt.Sprintf("%-9.2f", row.Strike)),
			putColor(fmt.Sprintf("%-10.4f %-10.4f %-8.4f %-10.4f",
				row.Put.Price, row.Put.Delta, row.Put.Vega, row.Put.Theta)),
			"||", row.Call.Gamma, row.ParityGap(l.contract.spot, deflater))
	}

	fmt.Fprintln(w, "\nParameters:")
	fmt.Fprintf(w, "Underlying:        %-10.2f\n", l.contract.spot)
	fmt.Fprintf(w, "ATM Strike:        %-10.2f\n", l.atmStrike)
	fmt.Fprintf(w, "Days to expiry:    %-10.1f\n", l.contract.expiry*kDaysInYear)
	fmt.Fprintf(w, "Rate:              %-10.4f\n", l.contract.rate)
	fmt.Fprintf(w, "Volatility:        %-10.4f\n", l.contract.volatility)
	fmt.Fprintln(w, "------------------------------")
	fmt.Fprintf(w, "Max parity gap:    %-10.2e\n", l.MaxParityGap())
}

// StrikeLadderCSVRow is the flat export form of one ladder row.
type StrikeLadderCSVRow struct {
	Strike    float64 `csv:"strike"`
	CallPrice float64 `csv:"call_price"`
	CallDelta float64 `csv:"call_delta"`
	CallVega  float64 `csv:"call_vega"`
	CallTheta float64 `csv:"call_theta"`
	PutPrice  float64 `csv:"put_price"`
	PutDelta  float64 `csv:"put_delta"`
	PutVega   float64 `csv:"put_vega"`
	PutTheta  float64 `csv:"put_theta"`
	Gamma     float64 `csv:"gamma"`
	ParityGap float64 `csv:"parity_gap"`
}

// CSVRows flattens the ladder for export.
func (l *StrikeLadder) CSVRows() []*StrikeLadderCSVRow {
	deflater := l.contract.Deflater()
	rows := make([]*StrikeLadderCSVRow, 0, len(l.rows))
	for _, row := range l.rows {
		rows = append(rows, &StrikeLadderCSVRow{
			Strike:    row.Strike,
			CallPrice: row.Call.Price,
			CallDelta: row.Call.Delta,
			CallVega:  row.Call.Vega,
			CallTheta: row.Call.Theta,
			PutPrice:  row.Put.Price,
			PutDelta:  row.Put.Delta,
			PutVega:   row.Put.Vega,
			PutTheta:  row.Put.Theta,
			Gamma:     row.Call.Gamma,
			ParityGap: row.ParityGap(l.contract.spot, deflater),
		})
	}
	return rows
}

// WriteCSV writes the ladder with a header row.
func (l *StrikeLadder) WriteCSV(w io.Writer) error {
	rows := l.CSVRows()
	if err := gocsv.Marshal(&rows, w); err != nil {
		msg := fmt.Sprintf("Failed to export strike ladder: %v", err)
		glog.Error(msg)
		return err
	}
	return nil
}
