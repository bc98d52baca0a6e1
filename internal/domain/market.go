package domain

import "time"

// Sentiment is the coarse three-way classification derived from the strength
// percentage via fixed thresholds.
type Sentiment string

const (
	SentimentBullish Sentiment = "Bullish"
	SentimentBearish Sentiment = "Bearish"
	SentimentNeutral Sentiment = "Neutral"
)

// DataSource tags a strength result with the provenance of the price and
// volume it was derived from. Synthetic means at least one of the two fell
// back to a generated value because the upstream was unavailable.
type DataSource string

const (
	DataSourceReal      DataSource = "real"
	DataSourceSynthetic DataSource = "synthetic"
)

// DepthOrder is a single outstanding order on one side of the book.
type DepthOrder struct {
	Quantity int64   `json:"quantity"`
	Price    float64 `json:"price"`
}

// DepthSnapshot is one moment's visible order book for one instrument,
// best-five convention. Either side may be empty; no ordering is imposed.
type DepthSnapshot struct {
	Buy          []DepthOrder `json:"buy"`
	Sell         []DepthOrder `json:"sell"`
	TradedVolume int64        `json:"tradedVolume"`
}

// StrengthResult is the output of one strength estimation. BuyVolume and
// SellVolume are synthesized order-book pressure estimates from the top
// orders, not executed trade volume; TradedVolume is carried through from the
// snapshot unchanged. Symbol, LTP, and Source are attached by the caller.
type StrengthResult struct {
	TotalVolume     int64      `json:"totalVolume"`
	BuyVolume       int64      `json:"buyVolume"`
	SellVolume      int64      `json:"sellVolume"`
	TradedVolume    int64      `json:"tradedVolume"`
	BuyPercent      float64    `json:"buyPercent"`
	SellPercent     float64    `json:"sellPercent"`
	StrengthPercent float64    `json:"strengthPercent"`
	Sentiment       Sentiment  `json:"sentiment"`
	Symbol          string     `json:"symbol,omitempty"`
	LTP             float64    `json:"ltp,omitempty"`
	Source          DataSource `json:"dataSource,omitempty"`
}

// WatchlistEntry is a (symbol, instrument token) pair the refresher tracks.
type WatchlistEntry struct {
	Symbol string `json:"symbol"`
	Token  string `json:"token"`
}

// Candle is one daily bar returned by the history endpoint.
type Candle struct {
	Date   string  `json:"date"`
	Open   float64 `json:"open"`
	High   float64 `json:"high"`
	Low    float64 `json:"low"`
	Close  float64 `json:"close"`
	Volume int64   `json:"volume"`
}

// Scrip is a single instrument returned by the symbol search.
type Scrip struct {
	Exchange string `json:"exchange"`
	Symbol   string `json:"tradingsymbol"`
	Token    string `json:"symboltoken"`
}

// StrengthCycle is one completed refresh of the whole watchlist. It is the
// unit pushed to streaming consumers and recorded in the history store.
type StrengthCycle struct {
	CycleID   string           `json:"cycleId"`
	Timestamp time.Time        `json:"timestamp"`
	Results   []StrengthResult `json:"results"`
}
