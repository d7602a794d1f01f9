package extractor

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExtractDegreeDegreeInFormat(t *testing.T) {
	// 学士指示词在前向语境中
	degree := ExtractDegree("I hold a bachelor degree in computer science engineering from a state college.", nil)
	require.NotNil(t, degree, "'degree in'句式应被抽取")
	assert.Equal(t, "Bachelor's in Computer Science Engineering", *degree)

	// 硕士指示词在前向语境中
	degree = ExtractDegree("I finished my masters and hold a degree in data science now.", nil)
	require.NotNil(t, degree)
	assert.Equal(t, "M.Tech in Data Science", *degree)

	// B.Tech细分优先于泛化的Bachelor's
	degree = ExtractDegree("I did my btech and got a degree in civil engineering after that.", nil)
	require.NotNil(t, degree)
	assert.Equal(t, "B.Tech in Civil Engineering", *degree)

	// 无层级指示词时只返回title化的专业
	degree = ExtractDegree("I took a degree in civil engineering at that school.", nil)
	require.NotNil(t, degree)
	assert.Equal(t, "Civil Engineering", *degree)
}

// 硕士与学士指示词到学位提及点等距时判为学士
func TestExtractDegreeEquidistantTieBreak(t *testing.T) {
	// 构造等距文本：bachelor在位置0，master在匹配点之后对称的位置
	before := "bachelor " + strings.Repeat("x", 20) + " "
	after := "degree in data science yyyyyyymaster zzz"
	transcript := before + after

	// 校验构造：两类指示词到"degree"起点的距离相等
	degreePos := strings.Index(transcript, "degree")
	require.Equal(t, degreePos, strings.Index(transcript, "master")-degreePos,
		"测试前提：两个指示词应与学位提及点等距")

	degree := ExtractDegree(transcript, nil)
	require.NotNil(t, degree)
	assert.Equal(t, "Bachelor's in Data Science", *degree, "等距时应判为学士")
}

func TestExtractDegreeFullName(t *testing.T) {
	degree := ExtractDegree("I earned a bachelor of technology in information technology back then.", nil)
	require.NotNil(t, degree, "完整学位名应被抽取")
	assert.Equal(t, "B.Tech in Information Technology", *degree)

	degree = ExtractDegree("She holds a master of science in mathematics.", nil)
	require.NotNil(t, degree)
	assert.Equal(t, "M.Sc in Mathematics", *degree)

	degree = ExtractDegree("He has a master of business administration in finance.", nil)
	require.NotNil(t, degree)
	assert.Equal(t, "MBA in Finance", *degree)
}

func TestExtractDegreeAbbrevWithSpecInSentence(t *testing.T) {
	ann := annotationOf(nil,
		"Let me tell you about my background.",
		"I completed my B.Tech in computer science a while back.")
	degree := ExtractDegree("I completed my B.Tech in computer science a while back.", ann)
	require.NotNil(t, degree, "同句缩写+专业应被抽取")
	assert.Equal(t, "B.Tech in Computer Science", *degree)
}

func TestExtractDegreeAbbrevWithNearbySpec(t *testing.T) {
	transcript := "I majored in civil engineering back in college. I completed my btech and moved to the city."
	ann := annotationOf(nil,
		"I majored in civil engineering back in college.",
		"I completed my btech and moved to the city.")
	degree := ExtractDegree(transcript, ann)
	require.NotNil(t, degree, "邻域专业应与缩写配对")
	assert.Equal(t, "B.Tech in Civil Engineering", *degree)
}

func TestExtractDegreeBareAbbrevFallback(t *testing.T) {
	transcript := "My education includes an MBA which I completed recently."
	ann := annotationOf(nil, transcript)
	degree := ExtractDegree(transcript, ann)
	require.NotNil(t, degree, "邻域无专业时应返回裸缩写")
	assert.Equal(t, "MBA", *degree)
}

func TestExtractDegreeSkillContextRejected(t *testing.T) {
	// 技能语境中的专业词不应与学位缩写配对
	transcript := "I am proficient in machine learning and I have used those skill sets in many projects over the years. My msc degree was hard work. Nothing more to add."
	ann := annotationOf(nil,
		"I am proficient in machine learning and I have used those skill sets in many projects over the years.",
		"My msc degree was hard work.",
		"Nothing more to add.")
	degree := ExtractDegree(transcript, ann)
	require.NotNil(t, degree)
	assert.Equal(t, "M.Sc", *degree, "技能语境中的专业不应被配对，应返回裸缩写")
}

func TestExtractDegreeNone(t *testing.T) {
	assert.Nil(t, ExtractDegree("We talked about the weather and the commute.", nil),
		"无学位信号时应返回nil")
}
