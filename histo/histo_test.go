package histo

import (
	"encoding/json"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var rawdata = []float64{1, 6, 3, 2, 4, 5, 7, 6, 3.5, 3, 5, 1, 1, 0, 0, 5, 8, 1, 2, 3, 44, 3, 7, 3, 1, 3, 5, 32, 1}

func TestHisto(Te *testing.T) {
	div := []float64{0, 1, 2, 3, 4, 8}
	raw := append([]float64(nil), rawdata...)
	D := NewData(div, raw, 3)
	assert.Equal(Te, rawdata, raw, "the raw data should not be modified")
	assert.Equal(Te, 3, D.ID())
	assert.Equal(Te, []float64{2, 6, 2, 7, 9}, D.View())
	//8, 44 and 32 are outside
	assert.Equal(Te, 26, D.Total())
	assert.Equal(Te, 3, D.Outside())

	E := NewData(div, nil)
	E.AddData(rawdata...)
	E.AddData(math.NaN())
	assert.Equal(Te, D.View(), E.View(), "adding points one by one should give the same histogram")
	assert.Equal(Te, 4, E.Outside())

	D.Normalize()
	assert.InDelta(Te, 1.0, D.Sum(), 1e-12)
	D.Normalize()
	assert.InDelta(Te, 1.0, D.Sum(), 1e-12, "normalizing twice does nothing")
	D.AddData(0.5)
	assert.True(Te, D.Normalized())
	assert.InDelta(Te, 3.0/27, D.View()[0], 1e-12)
	D.UnNormalize()
	assert.InDelta(Te, 3, D.View()[0], 1e-12)
}

func TestHistoJSON(Te *testing.T) {
	D := NewData(Dividers(0, 10, 5), rawdata)
	j, err := json.Marshal(D)
	require.NoError(Te, err)
	D2 := new(Data)
	require.NoError(Te, json.Unmarshal(j, D2))
	assert.Equal(Te, D.View(), D2.View())
	assert.Equal(Te, D.CopyDividers(), D2.CopyDividers())
	assert.Equal(Te, D.Outside(), D2.Outside())
	assert.Error(Te, json.Unmarshal([]byte(`{"dividers":[0,1],"histo":[1,2]}`), D2))
}

func TestDividers(Te *testing.T) {
	assert.Equal(Te, []float64{0, 2.5, 5, 7.5, 10}, Dividers(0, 10, 4))
	assert.Panics(Te, func() { Dividers(1, 1, 3) })
	assert.Panics(Te, func() { Dividers(0, 1, 0) })
	assert.Panics(Te, func() { NewData([]float64{1}, nil) })
}

func TestSummarize(Te *testing.T) {
	S := Summarize([]float64{4, 1, 3, 2})
	assert.Equal(Te, 4, S.N)
	assert.InDelta(Te, 2.5, S.Mean, 1e-12)
	assert.InDelta(Te, math.Sqrt(5.0/3), S.StdDev, 1e-12)
	assert.Equal(Te, 1.0, S.Min)
	assert.Equal(Te, 4.0, S.Max)
	assert.Equal(Te, 2.0, S.Median, "the empirical quantile takes the lower value")
	assert.Equal(Te, Summary{N: 1, Mean: 7, Min: 7, Median: 7, Max: 7}, Summarize([]float64{7}))
	assert.Equal(Te, Summary{}, Summarize(nil))
}
