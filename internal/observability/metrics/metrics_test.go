package metrics

import (
	"errors"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
)

func TestObserveHelpersCount(t *testing.T) {
	Init(nil, zerolog.Nop())

	before := testutil.ToFloat64(presetSaveTotal.WithLabelValues(SaveModeAuto, ResultError))
	ObservePresetSave(SaveModeAuto, ResultError, 10*time.Millisecond)
	assert.Equal(t, before+1, testutil.ToFloat64(presetSaveTotal.WithLabelValues(SaveModeAuto, ResultError)))

	before = testutil.ToFloat64(exportTotal.WithLabelValues("unknown", ResultSuccess))
	ObserveExport("", "", time.Millisecond)
	assert.Equal(t, before+1, testutil.ToFloat64(exportTotal.WithLabelValues("unknown", ResultSuccess)))
}

func TestResult(t *testing.T) {
	assert.Equal(t, ResultSuccess, Result(nil))
	assert.Equal(t, ResultError, Result(errors.New("boom")))
}
