package printing

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewChromedpRenderer(t *testing.T) {
	_, err := NewChromedpRenderer(nil, nil)
	assert.Error(t, err)

	html, err := NewHTMLRenderer(nil)
	require.NoError(t, err)

	r, err := NewChromedpRenderer(nil, html)
	require.NoError(t, err)
	assert.Equal(t, defaultChromeTimeout, r.config.DefaultTimeout)
	assert.NoError(t, r.Close())

	r, err = NewChromedpRenderer(&ChromedpConfig{
		DefaultTimeout: 5 * time.Second,
		RemoteURL:      "ws://127.0.0.1:9222/devtools/browser/x",
	}, html)
	require.NoError(t, err)
	assert.Equal(t, 5*time.Second, r.config.DefaultTimeout)
	assert.NoError(t, r.Close())
}

func TestBuildPrintParams(t *testing.T) {
	params := buildPrintParams(&RenderRequest{Pages: samplePages()})
	assert.InDelta(t, 8.5, params.paperWidth, 1e-9)
	assert.InDelta(t, 11.0, params.paperHeight, 1e-9)
}

func TestChromedpRenderer_EmptyRequestFailsBeforeBrowser(t *testing.T) {
	html, err := NewHTMLRenderer(nil)
	require.NoError(t, err)
	r, err := NewChromedpRenderer(nil, html)
	require.NoError(t, err)
	defer r.Close()

	_, err = r.Render(context.Background(), &RenderRequest{})
	var renderErr *RenderError
	require.ErrorAs(t, err, &renderErr)
	assert.Equal(t, ErrCodeEmptyDocument, renderErr.Code)
}
