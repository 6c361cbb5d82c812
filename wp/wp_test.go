package wp

import (
	"math"
	"testing"

	"github.com/BurntSushi/wlb"
	"github.com/BurntSushi/wlb/internal/wlbtest"
	"github.com/BurntSushi/wlb/wl"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestViewport(t *testing.T) {
	c := wlbtest.NewClient()
	r, err := wl.GetRegistry(c)
	require.NoError(t, err)
	comp, err := wl.BindCompositor(r, 1, 1)
	require.NoError(t, err)
	vp, err := BindViewporter(r, 2, 1)
	require.NoError(t, err)
	surface, err := comp.CreateSurface()
	require.NoError(t, err)
	c.Reset()

	v, err := vp.GetViewport(surface)
	require.NoError(t, err)
	require.NoError(t, v.SetSource(0, 0, 1, 1))
	require.NoError(t, v.SetDestination(640, 640))

	assert.Equal(t, []wlbtest.Call{
		{Object: vp.Id, Opcode: viewporterGetViewport},
		{Object: v.Id, Opcode: viewportSetSource},
		{Object: v.Id, Opcode: viewportSetDestination},
	}, c.Calls())

	d := wlb.NewDecoder(c.Requests[1], nil)
	assert.Equal(t, []float64{0, 0, 1, 1}, []float64{d.Fixed(), d.Fixed(), d.Fixed(), d.Fixed()})
	assert.Equal(t, int32(256), int32(wlb.Get32(c.Requests[1].Data[8:])))

	d = wlb.NewDecoder(c.Requests[2], nil)
	assert.Equal(t, int32(640), d.Int32())
	assert.Equal(t, int32(640), d.Int32())
}

func TestCreateU32RGBABuffer(t *testing.T) {
	c := wlbtest.NewClient()
	r, err := wl.GetRegistry(c)
	require.NoError(t, err)
	m, err := BindSinglePixelBufferManager(r, 5, 1)
	require.NoError(t, err)

	bindReq := wlb.NewDecoder(c.Last(), nil)
	bindReq.Uint32()
	assert.Equal(t, SinglePixelBufferManagerInterface, bindReq.String())

	buf, err := m.CreateU32RGBABuffer(math.MaxUint32/2, 0, 0, math.MaxUint32/2)
	require.NoError(t, err)
	assert.Contains(t, c.Decoders, buf.Id)

	req := c.Last()
	assert.Equal(t, m.Id, req.Sender)
	assert.Equal(t, uint16(singlePixelCreateU32RGBABuffer), req.Opcode)
	d := wlb.NewDecoder(req, nil)
	assert.Equal(t, buf.Id, d.Object())
	assert.Equal(t, uint32(math.MaxUint32/2), d.Uint32())
	assert.Equal(t, uint32(0), d.Uint32())
	assert.Equal(t, uint32(0), d.Uint32())
	assert.Equal(t, uint32(math.MaxUint32/2), d.Uint32())
	assert.NoError(t, d.Err())
}
