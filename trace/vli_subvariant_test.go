package trace

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/tracewave/wfdecode/record"
	"github.com/tracewave/wfdecode/token"
)

// TestDecodeBinaryTraceExtendedLogicState covers Case A's extended (16-state)
// nibble form, the vli&1==1 branch that consults extendedStates rather than
// the plain 0/1 bit.
func TestDecodeBinaryTraceExtendedLogicState(t *testing.T) {
	var f fixtureBuilder

	f.block(BlockHeader, headerPayload(0, 5, 1, 0, 1, -9, 0))
	f.block(BlockGeometry, geometryPayload([]uint64{1}))
	f.block(BlockHierarchyPlain, hierarchyPlainPayload(
		varEntry(tagVarLogic, 1, "sig"),
	))

	chunk := bytes.Join([][]byte{
		vliScalarExt(0, token.StateZ),
		vliScalarExt(1, token.StateH),
	}, nil)

	vcData := vcPlainFrame([][]byte{chunk})
	f.block(BlockVCPlain, vcBlockPayload(0, nil, 1, 'Z', vcData, nil, []int64{0, 5}))

	d, err := New(bytes.NewReader(f.bytes()), nil, nil)
	require.NoError(t, err)

	rec, err := d.Decode()
	require.NoError(t, err)
	require.NotNil(t, rec)

	w, ok := d.index.Get(1)
	require.True(t, ok)
	require.Len(t, w.Samples, 2)
	require.Equal(t, token.StateZ, w.Samples[0].Bits[0])
	require.Equal(t, token.StateH, w.Samples[1].Bits[0])
}

// TestDecodeBinaryTraceVectorPacked covers Case C's bit-packed payload form
// (tag bit clear), the counterpart to buildBasicFixture's char-per-bit form.
func TestDecodeBinaryTraceVectorPacked(t *testing.T) {
	var f fixtureBuilder

	f.block(BlockHeader, headerPayload(0, 0, 1, 0, 1, -9, 0))
	f.block(BlockGeometry, geometryPayload([]uint64{4}))
	f.block(BlockHierarchyPlain, hierarchyPlainPayload(
		varEntry(tagVarLogic, 1, "data"),
	))

	chunk := vliVectorPacked(0, []int{1, 0, 1, 0})
	vcData := vcPlainFrame([][]byte{chunk})
	f.block(BlockVCPlain, vcBlockPayload(0, nil, 1, 'Z', vcData, nil, []int64{0}))

	d, err := New(bytes.NewReader(f.bytes()), nil, nil)
	require.NoError(t, err)

	rec, err := d.Decode()
	require.NoError(t, err)
	require.NotNil(t, rec)

	w, ok := d.index.Get(1)
	require.True(t, ok)
	require.Len(t, w.Samples, 1)
	require.Len(t, w.Samples[0].Bits, 4)
	require.Equal(t, token.State1, w.Samples[0].Bits[0])
	require.Equal(t, token.State0, w.Samples[0].Bits[1])
	require.Equal(t, token.State1, w.Samples[0].Bits[2])
	require.Equal(t, token.State0, w.Samples[0].Bits[3])
}

// TestDecodeBinaryTraceRealFrameInitial covers a real-typed handle's frame
// section initial value (frameInitialReal), emitted before its first sample
// the same way TestDecodeBinaryTraceFrameInitialEmittedBeforeFirstSample
// covers the logic case.
func TestDecodeBinaryTraceRealFrameInitial(t *testing.T) {
	var f fixtureBuilder

	f.block(BlockHeader, headerPayload(0, 10, 1, 0, 1, -9, 0))
	f.block(BlockGeometry, geometryPayload([]uint64{geometryRealMarker}))
	f.block(BlockHierarchyPlain, hierarchyPlainPayload(
		varEntry(tagVarReal, 1, "volt"),
	))

	frame := frameInitialReal(1.5)
	chunk := vliReal(1, 2.5)
	vcData := vcPlainFrame([][]byte{chunk})

	f.block(BlockVCPlain, vcBlockPayload(1, frame, 1, 'Z', vcData, nil, []int64{0, 10}))

	d, err := New(bytes.NewReader(f.bytes()), nil, nil)
	require.NoError(t, err)

	rec, err := d.Decode()
	require.NoError(t, err)
	require.NotNil(t, rec)

	w, ok := d.index.Get(1)
	require.True(t, ok)
	require.Equal(t, record.WriterFloat, w.Kind)
	require.Len(t, w.Samples, 2)
	require.Equal(t, int64(0), w.Samples[0].Time)
	require.InDelta(t, 1.5, w.Samples[0].Float, 1e-12)
	require.Equal(t, int64(10), w.Samples[1].Time)
	require.InDelta(t, 2.5, w.Samples[1].Float, 1e-12)
}
