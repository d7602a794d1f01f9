package extractor

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"transcript-hr-go/internal/annotator"
)

// annotationOf 构造测试用标注
func annotationOf(entities []annotator.EntitySpan, sentences ...string) *annotator.Annotation {
	return &annotator.Annotation{Entities: entities, Sentences: sentences}
}

func TestExtractLocation(t *testing.T) {
	// 城市词表优先，标注缺席也能命中
	loc := ExtractLocation("I currently live in chennai with my family.", nil)
	require.NotNil(t, loc, "词表城市应被抽取")
	assert.Equal(t, "Chennai", *loc, "城市名应被title化")

	// 词表未命中时回退到GPE实体，取最长的一个
	ann := annotationOf([]annotator.EntitySpan{
		{Text: "Springfield", Label: annotator.LabelGPE},
		{Text: "New South Wales", Label: annotator.LabelGPE},
	})
	loc = ExtractLocation("I moved around a lot.", ann)
	require.NotNil(t, loc)
	assert.Equal(t, "New South Wales", *loc, "应选择更长的GPE片段")

	// 技术词黑名单与含数字片段应被过滤
	ann = annotationOf([]annotator.EntitySpan{
		{Text: "Python", Label: annotator.LabelGPE},
		{Text: "Area 51", Label: annotator.LabelGPE},
	})
	assert.Nil(t, ExtractLocation("I work remotely.", ann), "黑名单词和含数字片段不应作为地点")

	assert.Nil(t, ExtractLocation("I work remotely.", nil), "无任何信号时应返回nil")
}

func TestExtractGraduationYear(t *testing.T) {
	// 有标注：毕业语境句子里的年份
	ann := annotationOf(nil,
		"I was born in a small town",
		"I graduated in 2019 from a good college")
	year := ExtractGraduationYear("irrelevant", ann)
	require.NotNil(t, year, "毕业句中的年份应被抽取")
	assert.Equal(t, 2019, *year)

	// 无标注：回退到全文近年扫描，取最近一年
	year = ExtractGraduationYear("started in 2015 and finished studies around 2021", nil)
	require.NotNil(t, year)
	assert.Equal(t, 2021, *year, "回退路径应取最近的年份")

	// 超出合理区间的年份应被拒绝
	assert.Nil(t, ExtractGraduationYear("something about 1800 or so", nil), "区间外年份应返回nil")
	assert.Nil(t, ExtractGraduationYear("no years here", nil))
}

func TestExtractName(t *testing.T) {
	// 无标注：自我介绍句式回退
	name := ExtractName("Hello, my name is Rahul Verma. Calling about the role.", nil)
	require.NotNil(t, name, "自我介绍句式应能抽取姓名")
	assert.Equal(t, "Rahul Verma", *name)

	// 有标注：按文档顺序取第一个合法PERSON，裸代词被跳过
	ann := annotationOf([]annotator.EntitySpan{
		{Text: "She", Label: annotator.LabelPerson},
		{Text: "priya sharma", Label: annotator.LabelPerson},
	})
	name = ExtractName("some transcript", ann)
	require.NotNil(t, name)
	assert.Equal(t, "Priya Sharma", *name, "PERSON实体应被title化，代词应被跳过")

	// 纯数字实体应被拒绝
	ann = annotationOf([]annotator.EntitySpan{
		{Text: "12345", Label: annotator.LabelPerson},
	})
	assert.Nil(t, ExtractName("some transcript", ann), "纯数字不应作为姓名")

	assert.Nil(t, ExtractName("talking about the weather today", nil), "无姓名信号时应返回nil")
}

func TestExtractCollege(t *testing.T) {
	// 无标注：回退模式 + 引导套话剥除
	college := ExtractCollege("I graduated from Anna University two years ago.", nil)
	require.NotNil(t, college, "回退模式应能抽取院校")
	assert.Equal(t, "Anna University", *college, "引导套话应被剥除")

	// 有标注：ORG实体中含院校关键词的片段
	ann := annotationOf([]annotator.EntitySpan{
		{Text: "Acme Corp", Label: annotator.LabelOrg},
		{Text: "Indian Institute of Technology", Label: annotator.LabelOrg},
	})
	college = ExtractCollege("some transcript", ann)
	require.NotNil(t, college)
	assert.Equal(t, "Indian Institute of Technology", *college, "非院校ORG应被跳过")

	// 裸关键词不应作为院校名
	ann = annotationOf([]annotator.EntitySpan{
		{Text: "University", Label: annotator.LabelOrg},
	})
	assert.Nil(t, ExtractCollege("some transcript", ann), "裸关键词不应作为院校")

	assert.Nil(t, ExtractCollege("no school mentioned here", nil), "无院校信号时应返回nil")
}
