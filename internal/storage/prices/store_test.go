package prices

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
	"github.com/vadiminshakov/tobmaker/internal/domain"
)

func TestStore_UpdateReplaces(t *testing.T) {
	s := NewStore()
	symbol := domain.Symbol("BTC-USD")

	_, ok := s.Latest(symbol)
	require.False(t, ok)

	first := domain.PriceRecord{
		ObservedAt: time.UnixMilli(1588000000000),
		Open:       decimal.NewFromInt(100),
		High:       decimal.NewFromInt(110),
		Low:        decimal.NewFromInt(90),
		Close:      decimal.NewFromInt(105),
		Last:       decimal.NewFromInt(105),
	}
	s.Update(symbol, first)

	second := domain.PriceRecord{
		ObservedAt: time.UnixMilli(1588000060000),
		Close:      decimal.NewFromInt(106),
		Last:       decimal.NewFromInt(106),
	}
	s.Update(symbol, second)

	got, ok := s.Latest(symbol)
	require.True(t, ok)
	require.Equal(t, second, got)
	require.True(t, got.Open.IsZero(), "records are replaced, not merged")
}
