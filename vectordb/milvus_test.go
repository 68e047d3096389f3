package vectordb

import (
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/milvus-io/milvus-sdk-go/v2/entity"
	"github.com/stretchr/testify/assert"
)

func TestMeetsThresholdIP(t *testing.T) {
	p := &MilvusProvider{metric: entity.IP}
	assert.True(t, p.meetsThreshold(0.9, 0.7))
	assert.True(t, p.meetsThreshold(0.7, 0.7))
	assert.False(t, p.meetsThreshold(0.5, 0.7))
}

func TestMeetsThresholdL2(t *testing.T) {
	// L2 is a distance: the best matches have the smallest scores.
	p := &MilvusProvider{metric: entity.L2}
	assert.True(t, p.meetsThreshold(0.1, 0.5))
	assert.True(t, p.meetsThreshold(0.5, 0.5))
	assert.False(t, p.meetsThreshold(0.9, 0.5))
}

func TestTruncateKeepsRunesIntact(t *testing.T) {
	s := "pós-emergência"
	for max := 1; max <= len(s); max++ {
		got := truncate(s, max)
		assert.True(t, utf8.ValidString(got), "max=%d", max)
		assert.LessOrEqual(t, len(got), max)
		assert.True(t, strings.HasPrefix(s, got))
	}
	assert.Equal(t, s, truncate(s, len(s)))
	assert.Equal(t, "é", truncate("ééé", 3))
}
