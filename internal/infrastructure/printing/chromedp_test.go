package printing

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewChromedpRenderer_Defaults(t *testing.T) {
	r := NewChromedpRenderer(nil)
	t.Cleanup(func() { _ = r.Close() })

	assert.Equal(t, defaultChromeTimeout, r.config.DefaultTimeout)
	assert.Equal(t, defaultScale, r.config.Scale)
	assert.Equal(t, defaultMaxConcurrent, r.config.MaxConcurrent)
	assert.True(t, r.config.PrintBackground)
}

func TestPrintParams_A4(t *testing.T) {
	r := &ChromedpRenderer{config: ChromedpConfig{Scale: 1.0}}
	params := r.printParams(DefaultMargins())

	assert.InDelta(t, 8.27, params.PaperWidth, 0.01)
	assert.InDelta(t, 11.69, params.PaperHeight, 0.01)
	assert.InDelta(t, mmToInches(10), params.MarginTop, 0.0001)
	assert.Equal(t, 1.0, params.Scale)
}

func TestRender_RejectsEmptyHTML(t *testing.T) {
	r := NewChromedpRenderer(&ChromedpConfig{DefaultTimeout: time.Second})
	t.Cleanup(func() { _ = r.Close() })

	_, err := r.Render(context.Background(), &RenderRequest{HTML: "   "})
	var rerr *RenderError
	require.ErrorAs(t, err, &rerr)
	assert.Equal(t, ErrCodeInvalidHTML, rerr.Code)

	_, err = r.Render(context.Background(), nil)
	require.ErrorAs(t, err, &rerr)
}

func TestRender_WaitingForTabTimesOut(t *testing.T) {
	r := NewChromedpRenderer(&ChromedpConfig{MaxConcurrent: 1})
	t.Cleanup(func() { _ = r.Close() })
	require.True(t, r.tabs.TryAcquire(1))
	defer r.tabs.Release(1)

	_, err := r.Render(context.Background(), &RenderRequest{HTML: "<!DOCTYPE html><p>x</p>", Timeout: 20 * time.Millisecond})
	var rerr *RenderError
	require.ErrorAs(t, err, &rerr)
	assert.Equal(t, ErrCodeRenderTimeout, rerr.Code)
}

func TestEstimatePageCount(t *testing.T) {
	pdf := []byte("<< /Type /Pages /Kids [] >> << /Type /Page >> << /Type /Page >>")
	assert.Equal(t, 2, estimatePageCount(pdf))
	assert.Equal(t, 1, estimatePageCount([]byte("%PDF-1.4")))
}
