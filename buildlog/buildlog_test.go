package buildlog

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRecorderAccumulatesLines(t *testing.T) {
	r := &Recorder{}
	require.NoError(t, r.Log(Line{Stream: StreamEvaluation, Address: "proj/a", Text: "evaluated"}))
	require.NoError(t, r.Log(Line{Stream: StreamGraph, Address: "proj/a:a", Text: "materialized"}))

	lines := r.Lines()
	require.Len(t, lines, 2)
	assert.Equal(t, "evaluation", lines[0].Stream.String())
	assert.Equal(t, "proj/a:a", lines[1].Address)
}
