package app

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	mongodbopts "github.com/mrlynn/mongocheck/pkg/options/mongodb"
)

func TestResolveURI_FlagValueSkipsPrompt(t *testing.T) {
	opts := mongodbopts.NewOptions()
	opts.URI = "mongodb://flaghost:27017"

	var out bytes.Buffer
	err := resolveURI(opts, strings.NewReader("mongodb://typed:27017\n"), &out)
	require.NoError(t, err)

	assert.Equal(t, "mongodb://flaghost:27017", opts.URI)
	assert.Empty(t, out.String(), "no prompt expected when a URI is already set")
}

func TestResolveURI_PromptsWhenEmpty(t *testing.T) {
	opts := mongodbopts.NewOptions()

	var out bytes.Buffer
	err := resolveURI(opts, strings.NewReader("  mongodb://typed:27017  \n"), &out)
	require.NoError(t, err)

	assert.Equal(t, "mongodb://typed:27017", opts.URI)
	assert.Contains(t, out.String(), "Please provide your MongoDB Atlas URI:")
}

func TestResolveURI_EOFLeavesURIEmpty(t *testing.T) {
	opts := mongodbopts.NewOptions()

	var out bytes.Buffer
	err := resolveURI(opts, strings.NewReader(""), &out)
	require.NoError(t, err)

	// Connection falls back to mongodb.host/mongodb.port options.
	assert.Empty(t, opts.URI)
}
