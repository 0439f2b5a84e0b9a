package mathrender

import (
	"context"
	"image"
	"image/color"
	"sync"
	"testing"
	"time"

	"github.com/fortytw2/leaktest"
	"github.com/npillmayer/schuko/tracing/gotestingadapter"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func solid(s Size) *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, s.Width, s.Height))
	for i := range img.Pix {
		img.Pix[i] = 0xff
	}
	img.Set(0, 0, color.Black)
	return img
}

func TestPoolRejectsEmptySize(t *testing.T) {
	_, err := NewPool(0, DefaultEngineConfig(), 1)
	assert.Error(t, err)
}

func TestPoolRendersConcurrently(t *testing.T) {
	defer leaktest.CheckTimeout(t, 10*time.Second)()
	teardown := gotestingadapter.QuickConfig(t, "mathrender")
	defer teardown()
	//
	p, err := NewPool(2, DefaultEngineConfig(), 1, WithSettleDelay(time.Millisecond))
	require.NoError(t, err)
	defer p.Close()
	assert.Equal(t, 2, p.Size())

	exprs := []string{`\(a+b\)`, `\(\frac{1}{2}\)`, `\(\sqrt{x}\)`, `\(x_1^2\)`}
	sizes := make([]Size, len(exprs))
	var wg sync.WaitGroup
	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Second)
	defer cancel()
	for i, expr := range exprs {
		wg.Add(1)
		go func() {
			defer wg.Done()
			img, err := p.RenderLatex(ctx, expr, DefaultStyle())
			if assert.NoError(t, err, expr) {
				sizes[i] = img.Size()
				img.Release()
			}
		}()
	}
	wg.Wait()
	for i, s := range sizes {
		assert.Greater(t, s.Width, 1, exprs[i])
		assert.Greater(t, s.Height, 1, exprs[i])
	}
}

func TestPoolClosed(t *testing.T) {
	defer leaktest.Check(t)()
	teardown := gotestingadapter.QuickConfig(t, "mathrender")
	defer teardown()
	//
	p, err := NewPool(1, DefaultEngineConfig(), 1)
	require.NoError(t, err)
	require.NoError(t, p.Close())
	require.NoError(t, p.Close())
	_, err = p.Render(context.Background(), RenderRequest{Latex: "x"})
	assert.ErrorIs(t, err, ErrPoolClosed)
}

func TestPoolRenderCanceled(t *testing.T) {
	defer leaktest.CheckTimeout(t, 10*time.Second)()
	teardown := gotestingadapter.QuickConfig(t, "mathrender")
	defer teardown()
	//
	p, err := NewPool(1, DefaultEngineConfig(), 1, WithSettleDelay(time.Millisecond))
	require.NoError(t, err)
	defer p.Close()

	w, err := p.get(context.Background())
	require.NoError(t, err)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err = p.Render(ctx, RenderRequest{Latex: "x", Style: DefaultStyle()})
	assert.ErrorIs(t, err, context.Canceled)
	p.put(w)

	img, err := p.Render(context.Background(), RenderRequest{Latex: `\(y\)`, Style: DefaultStyle()})
	require.NoError(t, err)
	img.Release()
}
