package profile

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNew(t *testing.T) {
	p := New(WithMode("cpu"), WithPath("/tmp/prof"), WithQuiet(true))

	assert.Equal(t, Profiler{Mode: "cpu", Path: "/tmp/prof", Quiet: true}, p)
}

func TestStartWithoutMode(t *testing.T) {
	stop := New(WithPath(t.TempDir())).Start()

	assert.IsType(t, ignore{}, stop)
	assert.NotPanics(t, stop.Stop)
}

func TestStartUnknownMode(t *testing.T) {
	stop := New(WithMode("nope"), WithPath(t.TempDir())).Start()

	assert.IsType(t, ignore{}, stop)
}
