package aspect_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/zoobzio/aspect"
)

func TestDefaultAspects(t *testing.T) {
	chain := aspect.DefaultAspects()

	var names []string
	for _, a := range chain {
		names = append(names, a.(aspect.Named).Name())
	}
	assert.Equal(t, []string{"printer", "profiler", "stacktrace", "timer"}, names)

	again := aspect.DefaultAspects()
	assert.NotSame(t, chain[0], again[0], "each call returns fresh aspects")
}
