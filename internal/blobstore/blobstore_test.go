package blobstore

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSplitPath(t *testing.T) {
	bucket, object, err := splitPath("documents/2024/report.pdf")
	require.NoError(t, err)
	assert.Equal(t, "documents", bucket)
	assert.Equal(t, "2024/report.pdf", object)
}

func TestSplitPathMalformed(t *testing.T) {
	for _, path := range []string{"", "nobucket", "/leading", "trailing/"} {
		_, _, err := splitPath(path)
		assert.Error(t, err, "path %q should be rejected", path)
	}
}
