package extractor

import (
	"fmt"
	"sort"
	"strconv"
	"strings"
)

// 简单字段抽取器：只依赖转写文本本身的纯函数，从不咨询实体标注器。

// ExtractEmail 抽取并校验邮箱，返回小写去空白后的第一个合法匹配
func ExtractEmail(transcript string) *string {
	for _, candidate := range emailPattern.FindAllString(transcript, -1) {
		if emailPattern.MatchString(candidate) {
			email := strings.ToLower(strings.TrimSpace(candidate))
			return &email
		}
	}
	return nil
}

// ExtractPhone 抽取电话号码：剥离分隔符后位数在[10,15]内的第一个匹配
func ExtractPhone(transcript string) *string {
	for _, candidate := range phonePattern.FindAllString(transcript, -1) {
		phone := strings.TrimSpace(candidate)
		digits := nonDigitPattern.ReplaceAllString(phone, "")
		if len(digits) >= 10 && len(digits) <= 15 {
			return &phone
		}
	}
	return nil
}

// ExtractExperience 按固定优先级尝试三种年限表述，
// 第一个落在 0 < years <= 50 区间的匹配胜出
func ExtractExperience(transcript string) *string {
	for _, pattern := range experiencePatterns {
		m := pattern.FindStringSubmatch(transcript)
		if m == nil {
			continue
		}
		years, err := strconv.Atoi(m[1])
		if err != nil {
			continue
		}
		if years > 0 && years <= 50 {
			exp := fmt.Sprintf("%d years", years)
			return &exp
		}
	}
	return nil
}

// ExtractSkills 技能词抽取：单词技能走token集合交集，
// 多词技能走子串搜索；结果去重、排序、title化后用", "拼接
func ExtractSkills(transcript string) *string {
	transcriptLower := strings.ToLower(transcript)

	tokens := make(map[string]bool)
	for _, tok := range strings.Fields(transcriptLower) {
		tokens[tok] = true
	}

	found := make(map[string]bool)
	for skill := range skillsKeywords {
		if strings.Contains(skill, " ") {
			// 多词技能：子串匹配
			if strings.Contains(transcriptLower, skill) {
				found[titleCase(skill)] = true
			}
		} else if tokens[skill] {
			found[titleCase(skill)] = true
		}
	}

	if len(found) == 0 {
		return nil
	}

	unique := make([]string, 0, len(found))
	for skill := range found {
		unique = append(unique, skill)
	}
	sort.Strings(unique)
	skills := strings.Join(unique, ", ")
	return &skills
}
