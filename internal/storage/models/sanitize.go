package models

import (
	"regexp"
	"sort"
	"strings"
)

// 入库前的字段校验与清洗。校验只拒绝格式非法的值，
// 字段本身缺失（nil）是合法状态。

var (
	emailFormatPattern = regexp.MustCompile(`^[A-Za-z0-9._%+-]+@[A-Za-z0-9.-]+\.[A-Za-z]{2,}$`)
	nameFormatPattern  = regexp.MustCompile(`^[A-Za-z\s\-']{2,50}$`)
	nonDigitPattern    = regexp.MustCompile(`[^\d+]`)
)

// 各字段清洗后的最大长度
const (
	MaxNameLength       = 100
	MaxEmailLength      = 100
	MaxPhoneLength      = 20
	MaxCollegeLength    = 200
	MaxDegreeLength     = 100
	MaxExperienceLength = 50
	MaxLocationLength   = 100
	MaxTranscriptLength = 50000
	MaxSkillCount       = 20
)

// ValidateEmail 校验邮箱格式
func ValidateEmail(email string) bool {
	return emailFormatPattern.MatchString(email)
}

// ValidatePhone 剥离分隔符后位数应在[10,15]区间
func ValidatePhone(phone string) bool {
	digits := nonDigitPattern.ReplaceAllString(phone, "")
	return len(digits) >= 10 && len(digits) <= 15
}

// ValidateYear 毕业年份的合理区间
func ValidateYear(year int) bool {
	return year >= 1950 && year <= 2030
}

// ValidateName 姓名只允许字母、空格、连字符和撇号，长度2-50
func ValidateName(name string) bool {
	return nameFormatPattern.MatchString(name)
}

// SanitizeString 压缩多余空白并截断到最大长度；空值返回nil
func SanitizeString(value *string, maxLength int) *string {
	if value == nil || *value == "" {
		return nil
	}
	cleaned := strings.Join(strings.Fields(*value), " ")
	if len(cleaned) > maxLength {
		cleaned = strings.TrimSpace(cleaned[:maxLength])
	}
	if cleaned == "" {
		return nil
	}
	return &cleaned
}

// SanitizeSkills 技能串去重、排序并截断到上限
func SanitizeSkills(skills *string) *string {
	if skills == nil || *skills == "" {
		return nil
	}
	seen := make(map[string]bool)
	var unique []string
	for _, s := range strings.Split(*skills, ",") {
		s = strings.TrimSpace(s)
		if s == "" || seen[s] {
			continue
		}
		seen[s] = true
		unique = append(unique, s)
	}
	if len(unique) == 0 {
		return nil
	}
	sort.Strings(unique)
	if len(unique) > MaxSkillCount {
		unique = unique[:MaxSkillCount]
	}
	joined := strings.Join(unique, ", ")
	return &joined
}

// SanitizeCandidate 对候选人记录做完整的入库前清洗
func SanitizeCandidate(c *Candidate) {
	c.Name = SanitizeString(c.Name, MaxNameLength)
	c.Email = SanitizeString(c.Email, MaxEmailLength)
	c.Phone = SanitizeString(c.Phone, MaxPhoneLength)
	c.College = SanitizeString(c.College, MaxCollegeLength)
	c.Degree = SanitizeString(c.Degree, MaxDegreeLength)
	c.Experience = SanitizeString(c.Experience, MaxExperienceLength)
	c.Location = SanitizeString(c.Location, MaxLocationLength)
	c.Skills = SanitizeSkills(c.Skills)
	if len(c.Transcript) > MaxTranscriptLength {
		c.Transcript = c.Transcript[:MaxTranscriptLength]
	}
}

// ValidateCandidate 校验候选人记录，返回首个校验错误的描述；
// 全部通过时返回空串
func ValidateCandidate(c *Candidate) string {
	if c.Email != nil && !ValidateEmail(*c.Email) {
		return "邮箱格式非法"
	}
	if c.Phone != nil && !ValidatePhone(*c.Phone) {
		return "电话号码格式非法"
	}
	if c.GraduationYear != nil && !ValidateYear(*c.GraduationYear) {
		return "毕业年份超出合理区间"
	}
	if c.Name != nil && !ValidateName(*c.Name) {
		return "姓名格式非法"
	}
	return ""
}
