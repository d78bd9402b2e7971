package indicator

// Default periods used by the dashboard overlays.
const (
	ShortSMAPeriod  = 20
	LongSMAPeriod   = 50
	FastEMAPeriod   = 12
	SlowEMAPeriod   = 26
	SignalPeriod    = 9
	BollingerPeriod = 20
	BollingerMult   = 2.0
	RSIPeriod       = 14
)

// Overlays is the full indicator set drawn over a chart.
type Overlays struct {
	SMA20     Series
	SMA50     Series
	EMA12     Series
	EMA26     Series
	Bollinger Bands
	RSI14     Series
	MACD      MACDResult
}

// Compute builds every overlay for prices using the default periods.
func Compute(prices []float64) Overlays {
	return Overlays{
		SMA20:     SMA(prices, ShortSMAPeriod),
		SMA50:     SMA(prices, LongSMAPeriod),
		EMA12:     EMA(prices, FastEMAPeriod),
		EMA26:     EMA(prices, SlowEMAPeriod),
		Bollinger: BollingerBands(prices, BollingerPeriod, BollingerMult),
		RSI14:     RSI(prices, RSIPeriod),
		MACD:      MACD(prices, FastEMAPeriod, SlowEMAPeriod, SignalPeriod),
	}
}
