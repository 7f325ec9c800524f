package model

// RSIStatus tags the outcome of an RSI computation for one symbol and period.
type RSIStatus int

const (
	RSIValue RSIStatus = iota
	RSIInsufficientData
	RSIFetchError
)

func (s RSIStatus) String() string {
	switch s {
	case RSIValue:
		return "value"
	case RSIInsufficientData:
		return "insufficient_data"
	case RSIFetchError:
		return "fetch_error"
	default:
		return "unknown"
	}
}

// RSIResult is Value(rsi, price) | InsufficientData | FetchError(detail).
// Value and Price are only meaningful when Status is RSIValue.
type RSIResult struct {
	Status RSIStatus
	Value  float64
	Price  float64
	Detail string
}

// NewRSIValue returns a Value result with its reference price.
func NewRSIValue(rsi, price float64) RSIResult {
	return RSIResult{Status: RSIValue, Value: rsi, Price: price}
}

// InsufficientData returns the status for a series shorter than period+1.
func InsufficientData() RSIResult {
	return RSIResult{Status: RSIInsufficientData}
}

// FetchError returns the status for a symbol whose series could not be obtained.
func FetchError(detail string) RSIResult {
	return RSIResult{Status: RSIFetchError, Detail: detail}
}

// SymbolRSI is the per-symbol input row of the extreme detector.
type SymbolRSI struct {
	Symbol      string
	Results     map[int]RSIResult // keyed by period
	FetchFailed bool
	Err         error
}

// Result returns the result for period, or InsufficientData when none was computed.
func (s SymbolRSI) Result(period int) RSIResult {
	if r, ok := s.Results[period]; ok {
		return r
	}
	return InsufficientData()
}
