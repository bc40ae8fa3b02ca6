package capability

import (
	"encoding/json"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLimitJSON(t *testing.T) {
	data, err := json.Marshal(Specification{LSL: Some(9.5), Unit: "mm"})
	require.NoError(t, err)
	assert.JSONEq(t, `{"LSL":9.5,"USL":null,"Target":null,"Unit":"mm"}`, string(data))

	var spec Specification
	require.NoError(t, json.Unmarshal(data, &spec))
	assert.Equal(t, 9.5, spec.LSL.Value())
	assert.False(t, spec.USL.IsSet())
	assert.True(t, spec.LowerOnly())
}

func TestProcessStatisticsJSONWithoutWithinSigma(t *testing.T) {
	ps := ProcessStatistics{N: 3, Mean: 1, StdDevWithin: math.NaN()}
	data, err := json.Marshal(ps)
	require.NoError(t, err)

	var decoded map[string]interface{}
	require.NoError(t, json.Unmarshal(data, &decoded))
	assert.Nil(t, decoded["StdDevWithin"])
	assert.Equal(t, float64(3), decoded["N"])

	ps.StdDevWithin, ps.WithinAvailable = 0.5, true
	data, err = json.Marshal(ps)
	require.NoError(t, err)
	require.NoError(t, json.Unmarshal(data, &decoded))
	assert.Equal(t, 0.5, decoded["StdDevWithin"])
}
