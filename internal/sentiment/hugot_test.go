package sentiment

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHugotEmptyBatchSkipsModelLoad(t *testing.T) {
	c := NewHugotClassifier()

	// an empty batch must return before the session is created
	results, err := c.ClassifyBatch(context.Background(), nil)
	require.NoError(t, err)
	assert.Nil(t, results)
	assert.Nil(t, c.session)

	assert.NoError(t, c.Close())
}

func TestHugotModelID(t *testing.T) {
	c := NewHugotClassifier()
	assert.Equal(t, "distilbert-base-uncased-finetuned-sst-2-english", c.ModelID())
}
