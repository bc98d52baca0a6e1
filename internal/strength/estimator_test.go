package strength

import (
	"math"
	"reflect"
	"testing"

	"marketpulse/internal/domain"
)

func orders(quantities ...int64) []domain.DepthOrder {
	out := make([]domain.DepthOrder, len(quantities))
	for i, q := range quantities {
		out[i] = domain.DepthOrder{Quantity: q, Price: 100}
	}
	return out
}

func TestEstimateBullish(t *testing.T) {
	got := Estimate(domain.DepthSnapshot{
		Buy:  orders(300),
		Sell: orders(100),
	})

	if got.TotalVolume != 400 {
		t.Errorf("TotalVolume = %d, want 400", got.TotalVolume)
	}
	if got.BuyPercent != 75.0 || got.SellPercent != 25.0 {
		t.Errorf("percents = %v/%v, want 75/25", got.BuyPercent, got.SellPercent)
	}
	if got.StrengthPercent != 50.0 {
		t.Errorf("StrengthPercent = %v, want 50", got.StrengthPercent)
	}
	if got.Sentiment != domain.SentimentBullish {
		t.Errorf("Sentiment = %q, want Bullish", got.Sentiment)
	}
}

func TestEstimateEmptyBook(t *testing.T) {
	got := Estimate(domain.DepthSnapshot{TradedVolume: 42})

	want := domain.StrengthResult{
		TradedVolume: 42,
		Sentiment:    domain.SentimentNeutral,
	}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("Estimate(empty) = %+v, want %+v", got, want)
	}
}

func TestEstimateInsideNeutralBand(t *testing.T) {
	got := Estimate(domain.DepthSnapshot{
		Buy:  orders(100),
		Sell: orders(105),
	})

	if math.Abs(got.StrengthPercent-(-2.44)) > 0.001 {
		t.Errorf("StrengthPercent = %v, want -2.44", got.StrengthPercent)
	}
	if got.Sentiment != domain.SentimentNeutral {
		t.Errorf("Sentiment = %q, want Neutral", got.Sentiment)
	}
}

func TestSentimentBoundaries(t *testing.T) {
	tests := []struct {
		name      string
		buy, sell int64
		want      domain.Sentiment
	}{
		// 105 vs 95 on 200 total is exactly +5.0.
		{"exactly +5 is neutral", 105, 95, domain.SentimentNeutral},
		{"exactly -5 is neutral", 95, 105, domain.SentimentNeutral},
		// 10501 vs 9499 on 20000 total is +5.01.
		{"+5.01 is bullish", 10501, 9499, domain.SentimentBullish},
		{"-5.01 is bearish", 9499, 10501, domain.SentimentBearish},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Estimate(domain.DepthSnapshot{
				Buy:  orders(tt.buy),
				Sell: orders(tt.sell),
			})
			if got.Sentiment != tt.want {
				t.Errorf("Sentiment = %q (strength %v), want %q",
					got.Sentiment, got.StrengthPercent, tt.want)
			}
		})
	}
}

func TestEstimatePercentsSumTo100(t *testing.T) {
	tests := []struct {
		buy, sell []int64
	}{
		{[]int64{10, 20, 30, 40, 50}, []int64{5, 15, 25}},
		{[]int64{1}, []int64{2}},
		{[]int64{333}, []int64{667}},
		{[]int64{1000000}, []int64{1}},
	}

	for _, tt := range tests {
		got := Estimate(domain.DepthSnapshot{
			Buy:  orders(tt.buy...),
			Sell: orders(tt.sell...),
		})
		if math.Abs(got.BuyPercent+got.SellPercent-100) > 0.011 {
			t.Errorf("buy%%+sell%% = %v, want ~100", got.BuyPercent+got.SellPercent)
		}
		if math.Abs(got.StrengthPercent-(got.BuyPercent-got.SellPercent)) > 0.011 {
			t.Errorf("strength%% = %v, want buy%%-sell%% = %v",
				got.StrengthPercent, got.BuyPercent-got.SellPercent)
		}
	}
}

func TestEstimateNegativeQuantityTreatedAsZero(t *testing.T) {
	got := Estimate(domain.DepthSnapshot{
		Buy:  orders(-50, 300),
		Sell: orders(100),
	})
	if got.BuyVolume != 300 {
		t.Errorf("BuyVolume = %d, want 300 (negative clamped)", got.BuyVolume)
	}
}

func TestEstimateIsDeterministic(t *testing.T) {
	snap := domain.DepthSnapshot{
		Buy:          orders(10, 20, 30),
		Sell:         orders(15, 25),
		TradedVolume: 12345,
	}
	first := Estimate(snap)
	second := Estimate(snap)
	if !reflect.DeepEqual(first, second) {
		t.Errorf("Estimate not deterministic: %+v vs %+v", first, second)
	}
}
