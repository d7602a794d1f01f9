package extractor

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExtractEmail(t *testing.T) {
	email := ExtractEmail("You can reach me at John.Doe@Example.COM anytime.")
	require.NotNil(t, email, "应该抽取到邮箱")
	assert.Equal(t, "john.doe@example.com", *email, "邮箱应被规范化为小写")

	assert.Nil(t, ExtractEmail("no contact info here"), "无邮箱时应返回nil")
	assert.Nil(t, ExtractEmail(""), "空文本应返回nil")
}

func TestExtractPhone(t *testing.T) {
	phone := ExtractPhone("My phone number is 987-654-3210, call me.")
	require.NotNil(t, phone, "应该抽取到电话号码")
	assert.Equal(t, "987-654-3210", *phone, "应保留原始书写形式")

	// 国际区号前缀
	phone = ExtractPhone("Contact: +91-9876543210")
	require.NotNil(t, phone, "带区号的号码也应被抽取")
	assert.Equal(t, "+91-9876543210", *phone)

	// 剥离分隔符后不足10位的匹配应被拒绝
	assert.Nil(t, ExtractPhone("the year 2019 and code 123 456"), "短数字串不应被当作电话")
	assert.Nil(t, ExtractPhone("hello world"), "无号码时应返回nil")
}

func TestExtractExperience(t *testing.T) {
	exp := ExtractExperience("I have 5 years of experience in backend development.")
	require.NotNil(t, exp, "应该抽取到工作年限")
	assert.Equal(t, "5 years", *exp, "年限应被规范化为'<N> years'")

	exp = ExtractExperience("experience of 12 yrs in testing")
	require.NotNil(t, exp)
	assert.Equal(t, "12 years", *exp)

	exp = ExtractExperience("I spent 3 years working on infrastructure.")
	require.NotNil(t, exp)
	assert.Equal(t, "3 years", *exp)

	// 同时出现多个年限时，高优先级句式先命中
	exp = ExtractExperience("I have 5 years of experience and mentioned 3 years in another context.")
	require.NotNil(t, exp)
	assert.Equal(t, "5 years", *exp, "高优先级句式的年限应胜出")

	// 超出[1,50]合理区间的年限应被拒绝
	assert.Nil(t, ExtractExperience("I have 99 years of experience"), "不合理的年限应返回nil")
	assert.Nil(t, ExtractExperience("I have 0 years of experience"), "零年限应返回nil")
	assert.Nil(t, ExtractExperience("no experience mentioned"), "无年限时应返回nil")
}

func TestExtractSkills(t *testing.T) {
	skills := ExtractSkills("I know Python and Java and also react frameworks.")
	require.NotNil(t, skills, "应该抽取到技能")
	assert.Equal(t, "Java, Python, React", *skills, "技能应去重、排序并title化")

	// 大小写混合提及也应被归一化
	skills = ExtractSkills("I know Python and have used AWS and Docker")
	require.NotNil(t, skills)
	assert.Equal(t, "Aws, Docker, Python", *skills)

	// 多词技能走子串匹配
	skills = ExtractSkills("I work on machine learning pipelines with pandas daily.")
	require.NotNil(t, skills)
	assert.Contains(t, *skills, "Machine Learning", "多词技能应被识别")
	assert.Contains(t, *skills, "Pandas")

	// 重复提及只出现一次
	skills = ExtractSkills("python python python")
	require.NotNil(t, skills)
	assert.Equal(t, "Python", *skills, "重复技能应去重")

	assert.Nil(t, ExtractSkills("I enjoy gardening and cooking"), "无已知技能时应返回nil")
}
