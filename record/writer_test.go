package record

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/tracewave/wfdecode/token"
)

func TestWriterLogicMonotonic(t *testing.T) {
	sig := &Signal{Name: "clk", DataType: DataLogic, Width: 1}
	w := NewWriter(WriterLogic, sig)

	require.NoError(t, w.WriteLogic(0, []token.State{token.State0}, 2, false))
	require.NoError(t, w.WriteLogic(10, []token.State{token.State1}, 2, false))
	require.Error(t, w.WriteLogic(5, []token.State{token.State0}, 2, false), "time must not go backwards")

	require.Len(t, w.Samples, 2)
	require.Equal(t, token.State1, w.Samples[1].Bits[0])
}

func TestWriterKindMismatch(t *testing.T) {
	sig := &Signal{Name: "v", DataType: DataReal}
	w := NewWriter(WriterFloat, sig)
	require.Error(t, w.WriteLogic(0, nil, 2, false))
	require.NoError(t, w.WriteFloat(0, 3.14))
}

func TestGroupedLogicWriter(t *testing.T) {
	sig := &Signal{Name: "data", DataType: DataLogic, Width: 4}
	w := NewGroupedLogicWriter(sig, []uint64{1, 2, 3, 4})

	idx, ok := w.BitIndexForHandle(3)
	require.True(t, ok)
	require.Equal(t, 2, idx)

	require.NoError(t, w.WriteLogicBit(0, 0, token.State1))
	require.NoError(t, w.WriteLogicBit(3, 5, token.State0))
	require.Len(t, w.Samples, 2)
	// second sample must reflect both the earlier bit 0 write and the new bit 3 write.
	require.Equal(t, token.State1, w.Samples[1].Bits[0])
	require.Equal(t, token.State0, w.Samples[1].Bits[3])

	require.Error(t, w.WriteLogic(10, []token.State{token.State0}, 2, false), "plain WriteLogic must reject a grouped writer")
}

func TestWriterTextAndEvent(t *testing.T) {
	sig := &Signal{Name: "msg", DataType: DataText}
	w := NewWriter(WriterText, sig)
	require.NoError(t, w.WriteText(0, "hello"))
	require.Error(t, w.WriteEvent(1))

	esig := &Signal{Name: "tick", DataType: DataEvent}
	ew := NewWriter(WriterEvent, esig)
	require.NoError(t, ew.WriteEvent(0))
	require.NoError(t, ew.WriteEvent(0), "events may repeat at the same instant")
	require.Error(t, ew.WriteEvent(-1))
}
