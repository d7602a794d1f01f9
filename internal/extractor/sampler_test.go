package extractor

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSampleDocumentKeepsRelevantSentences(t *testing.T) {
	filler := strings.Repeat("z", 120)
	transcript := "My name is Alice Brown. " +
		strings.Repeat(filler+". ", 20) +
		"I graduated from a top university in 2019. " +
		strings.Repeat(filler+". ", 20) +
		"That is all I have to say"

	require.Greater(t, len(transcript), sampleThreshold, "测试前提：文本应超过采样阈值")

	sample := SampleDocument(transcript)
	assert.Contains(t, sample, "My name is Alice Brown", "含线索词的句子应被保留")
	assert.Contains(t, sample, "I graduated from a top university in 2019", "毕业句应被保留")
	assert.Less(t, len(sample), len(transcript), "采样结果应明显短于原文")
}

func TestSampleDocumentFallbackWithoutRelevantSentences(t *testing.T) {
	// 所有句子都超过100字符且不含任何线索词
	filler := strings.Repeat("z", 120)
	transcript := strings.Repeat(filler+". ", 30)
	require.Greater(t, len(transcript), sampleThreshold)

	sample := SampleDocument(transcript)
	assert.Equal(t, transcript[:sampleThreshold], sample, "无线索句时应退化为前2000字符")
}

func TestSampleDocumentShortText(t *testing.T) {
	// 短文本也能安全处理（调用方一般不会走到这里，但不应越界）
	sample := SampleDocument("My name is Bob")
	assert.Contains(t, sample, "My name is Bob")
}
