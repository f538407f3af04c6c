package awsutil

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIsS3URI(t *testing.T) {
	assert.True(t, IsS3URI("s3://bucket/data/train.conll"))
	assert.False(t, IsS3URI("./data/train.conll"))
	assert.False(t, IsS3URI("https://example.com/train.conll"))
}

func TestValidateURI(t *testing.T) {
	u, err := ValidateURI("s3://bucket/data/train.conll")
	require.NoError(t, err)
	assert.Equal(t, "bucket", u.Host)
	assert.Equal(t, "/data/train.conll", u.Path)

	_, err = ValidateURI("https://bucket/data")
	assert.Error(t, err)

	_, err = ValidateURI("s3://bucket/")
	assert.Error(t, err)
}

func TestNewBufferedS3WriterRejectsBadURI(t *testing.T) {
	_, err := NewBufferedS3Writer("/tmp/not-s3")
	assert.Error(t, err)
}
