package models

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func strPtr(s string) *string { return &s }

func TestValidateEmail(t *testing.T) {
	assert.True(t, ValidateEmail("john.doe@example.com"))
	assert.False(t, ValidateEmail("not-an-email"))
	assert.False(t, ValidateEmail("missing@tld"))
	assert.False(t, ValidateEmail(""))
}

func TestValidatePhone(t *testing.T) {
	assert.True(t, ValidatePhone("987-654-3210"))
	assert.True(t, ValidatePhone("+91-9876543210"))
	assert.False(t, ValidatePhone("12345"), "过短号码应被拒绝")
	assert.False(t, ValidatePhone("1234567890123456789"), "过长号码应被拒绝")
}

func TestValidateYear(t *testing.T) {
	assert.True(t, ValidateYear(2019))
	assert.True(t, ValidateYear(1950))
	assert.True(t, ValidateYear(2030))
	assert.False(t, ValidateYear(1949))
	assert.False(t, ValidateYear(2031))
}

func TestValidateName(t *testing.T) {
	assert.True(t, ValidateName("Rahul Verma"))
	assert.True(t, ValidateName("Mary-Jane O'Brien"))
	assert.False(t, ValidateName("X"), "单字符姓名应被拒绝")
	assert.False(t, ValidateName("Name123"), "含数字的姓名应被拒绝")
	assert.False(t, ValidateName(strings.Repeat("a", 51)), "超长姓名应被拒绝")
}

func TestSanitizeString(t *testing.T) {
	assert.Equal(t, "hello world", *SanitizeString(strPtr("  hello   world  "), 100), "多余空白应被压缩")
	assert.Nil(t, SanitizeString(nil, 100), "nil输入应返回nil")
	assert.Nil(t, SanitizeString(strPtr(""), 100), "空串应返回nil")
	assert.Nil(t, SanitizeString(strPtr("   "), 100), "纯空白应返回nil")

	long := SanitizeString(strPtr(strings.Repeat("ab ", 100)), 10)
	assert.LessOrEqual(t, len(*long), 10, "超长值应被截断")
}

func TestSanitizeSkills(t *testing.T) {
	skills := SanitizeSkills(strPtr("Python, Java, Python,  , Java"))
	assert.Equal(t, "Java, Python", *skills, "技能应去重并排序")

	// 超过上限时截断到20个
	var many []string
	for r := 'a'; r < 'a'+25; r++ {
		many = append(many, strings.Repeat(string(r), 3))
	}
	capped := SanitizeSkills(strPtr(strings.Join(many, ", ")))
	assert.Len(t, strings.Split(*capped, ", "), MaxSkillCount, "技能数量应被限制在上限内")

	assert.Nil(t, SanitizeSkills(nil))
	assert.Nil(t, SanitizeSkills(strPtr(" , , ")))
}

func TestValidateCandidate(t *testing.T) {
	year := 2019
	valid := &Candidate{
		Name:           strPtr("Rahul Verma"),
		Email:          strPtr("rahul@example.com"),
		Phone:          strPtr("9876543210"),
		GraduationYear: &year,
	}
	assert.Empty(t, ValidateCandidate(valid), "合法记录应通过校验")

	// 缺失字段是合法状态
	assert.Empty(t, ValidateCandidate(&Candidate{}), "全空记录应通过校验")

	invalid := &Candidate{Email: strPtr("bad-email")}
	assert.NotEmpty(t, ValidateCandidate(invalid), "非法邮箱应被拒绝")
}

func TestSanitizeCandidate(t *testing.T) {
	c := &Candidate{
		Name:       strPtr("  Rahul   Verma "),
		Skills:     strPtr("Python, Python, Java"),
		Transcript: strings.Repeat("x", MaxTranscriptLength+100),
	}
	SanitizeCandidate(c)
	assert.Equal(t, "Rahul Verma", *c.Name)
	assert.Equal(t, "Java, Python", *c.Skills)
	assert.Len(t, c.Transcript, MaxTranscriptLength, "转写文本应被截断")
}
