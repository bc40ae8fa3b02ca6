package errors

import (
	stderrors "errors"
	"fmt"
	"testing"

	"procap/domain/core"

	"github.com/stretchr/testify/assert"
)

func TestWrapMapsDomainSentinels(t *testing.T) {
	err := Wrap(fmt.Errorf("estimator: %w", core.ErrEmptySample), "analyze")
	assert.Equal(t, CodeInvalidInput, GetCode(err))
	assert.True(t, stderrors.Is(err, core.ErrEmptySample))
	assert.Equal(t, "analyze: estimator: invalid input: empty sample", err.Error())

	assert.Equal(t, CodeNumericEdge, GetCode(Wrap(core.ErrZeroVariance, "indices")))
	assert.Equal(t, CodeInternalError, GetCode(Wrap(stderrors.New("boom"), "x")))
}

func TestWrapKeepsExistingCode(t *testing.T) {
	inner := ConfigInvalid("bad level")
	outer := Wrapf(fmt.Errorf("load: %w", inner), "config %s", "capability.yaml")
	assert.Equal(t, CodeConfigInvalid, GetCode(outer))
	assert.True(t, IsAppError(outer))
}

func TestNilPassThrough(t *testing.T) {
	assert.NoError(t, Wrap(nil, "x"))
	assert.NoError(t, Wrapf(nil, "x %d", 1))
	assert.NoError(t, WithCode(CodeInternalError, nil))
	assert.Equal(t, "UNKNOWN", GetCode(stderrors.New("plain")))
}

func TestWithCode(t *testing.T) {
	err := WithCode(CodeConfigInvalid, core.ErrInvalidSetting)
	assert.Equal(t, CodeConfigInvalid, GetCode(err))
	assert.ErrorIs(t, err, core.ErrInvalidSetting)
}

func TestClassify(t *testing.T) {
	tests := []struct {
		name string
		err  error
		code string
	}{
		{"input", fmt.Errorf("spec: %w", core.ErrInvalidSpecification), CodeInvalidInput},
		{"numeric edge", core.ErrZeroVariance, CodeNumericEdge},
		{"other", stderrors.New("entropy source unavailable"), CodeInternalError},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			appErr := Classify(tt.err, "indices")
			assert.Equal(t, tt.code, appErr.Code)
			assert.ErrorIs(t, appErr, tt.err)
			assert.Equal(t, "indices: "+tt.err.Error(), appErr.Error())
		})
	}
}
