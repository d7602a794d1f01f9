package extractor

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"transcript-hr-go/internal/annotator"
)

// stubTagger 返回固定标注的测试替身
type stubTagger struct {
	ann *annotator.Annotation
	err error
}

func (s *stubTagger) Tag(ctx context.Context, text string) (*annotator.Annotation, error) {
	return s.ann, s.err
}

// panicTagger 模拟失控的标注器实现
type panicTagger struct{}

func (panicTagger) Tag(ctx context.Context, text string) (*annotator.Annotation, error) {
	panic("tagger exploded")
}

func TestEngineExtractShortTranscript(t *testing.T) {
	engine := NewEngine(nil)

	for _, transcript := range []string{"", "   ", "hi there"} {
		result := engine.Extract(context.Background(), transcript)
		require.NotNil(t, result, "过短输入也应返回完整形态的结果")
		assert.Equal(t, 0, result.FieldCount(), "过短输入不应抽取到任何字段")
		assert.Nil(t, result.Name)
		assert.Nil(t, result.Email)
	}
}

func TestEngineExtractRegexOnly(t *testing.T) {
	// nil tagger退化为Noop，全部走正则回退路径
	engine := NewEngine(nil)

	transcript := "My name is Rahul Verma. I am from Chennai. " +
		"My email is rahul.verma@example.com and my phone is 987-654-3210. " +
		"I have 5 years of experience in Python and Django frameworks. " +
		"I graduated from Anna University in 2019 with a bachelor degree in computer science engineering."

	result := engine.Extract(context.Background(), transcript)
	require.NotNil(t, result)

	require.NotNil(t, result.Name)
	assert.Equal(t, "Rahul Verma", *result.Name)
	require.NotNil(t, result.Email)
	assert.Equal(t, "rahul.verma@example.com", *result.Email)
	require.NotNil(t, result.Phone)
	assert.Equal(t, "987-654-3210", *result.Phone)
	require.NotNil(t, result.College)
	assert.Equal(t, "Anna University", *result.College)
	require.NotNil(t, result.Degree)
	assert.Equal(t, "Bachelor's in Computer Science Engineering", *result.Degree)
	require.NotNil(t, result.GraduationYear)
	assert.Equal(t, 2019, *result.GraduationYear)
	require.NotNil(t, result.Experience)
	assert.Equal(t, "5 years", *result.Experience)
	require.NotNil(t, result.Location)
	assert.Equal(t, "Chennai", *result.Location)
	require.NotNil(t, result.Skills)
	assert.Equal(t, "Django, Python", *result.Skills)

	assert.Equal(t, 9, result.FieldCount())
}

func TestEngineExtractWithAnnotation(t *testing.T) {
	ann := &annotator.Annotation{
		Entities: []annotator.EntitySpan{
			{Text: "Anita Desai", Label: annotator.LabelPerson},
			{Text: "Mysuru", Label: annotator.LabelGPE},
			{Text: "National Institute of Design", Label: annotator.LabelOrg},
		},
		Sentences: []string{"I graduated in 2018 after a long course of work there"},
	}
	engine := NewEngine(&stubTagger{ann: ann})

	result := engine.Extract(context.Background(), "I graduated in 2018 after a long course of work there")
	require.NotNil(t, result)

	require.NotNil(t, result.Name)
	assert.Equal(t, "Anita Desai", *result.Name)
	require.NotNil(t, result.Location)
	assert.Equal(t, "Mysuru", *result.Location)
	require.NotNil(t, result.College)
	assert.Equal(t, "National Institute of Design", *result.College)
	require.NotNil(t, result.GraduationYear)
	assert.Equal(t, 2018, *result.GraduationYear)
}

// 标注器返回错误时降级为纯正则抽取，Extract本身永不失败
func TestEngineExtractTaggerError(t *testing.T) {
	engine := NewEngine(&stubTagger{err: errors.New("model load failed")})

	result := engine.Extract(context.Background(), "My email is someone@example.com and that is all for today.")
	require.NotNil(t, result)
	require.NotNil(t, result.Email)
	assert.Equal(t, "someone@example.com", *result.Email)
}

// 标注器panic也不允许逃逸出抽取引擎
func TestEngineExtractTaggerPanic(t *testing.T) {
	engine := NewEngine(panicTagger{})

	var result *Result
	assert.NotPanics(t, func() {
		result = engine.Extract(context.Background(), "My email is someone@example.com and that is all for today.")
	})
	require.NotNil(t, result)
	require.NotNil(t, result.Email)
	assert.Equal(t, "someone@example.com", *result.Email)
}
