package extractor

import (
	"strconv"
	"strings"
	"unicode"

	"transcript-hr-go/internal/annotator"
)

// 实体辅助抽取器：优先使用确定性的正则/词表信号，
// 标注可用时再消费实体标注；标注缺席时走显式的纯正则回退路径。

// ExtractLocation 抽取地点。
// 城市词表命中时直接采用（确定性优先于NLP信号）；
// 否则从GPE实体中过滤黑名单与含数字项后取最长的一个。
func ExtractLocation(transcript string, ann *annotator.Annotation) *string {
	if m := cityPattern.FindStringSubmatch(transcript); m != nil {
		city := titleCase(m[1])
		return &city
	}

	if ann == nil {
		return nil
	}

	var best string
	for _, loc := range ann.EntitiesByLabel(annotator.LabelGPE) {
		locLower := strings.ToLower(loc)
		if excludedLocationTerms[locLower] {
			continue
		}
		if len(loc) <= 2 || isAllDigits(loc) || hasDigit(loc) {
			continue
		}
		// 取更长的地名（更具体）；等长时保留先出现的
		if len(loc) > len(best) {
			best = loc
		}
	}
	if best == "" {
		return nil
	}
	return &best
}

// ExtractGraduationYear 抽取毕业年份。
// 有标注时在含毕业语境关键词的句子中找[1950,2030]区间内的年份；
// 否则在全文中扫描[2000,2039]模式并取最近的一年。
func ExtractGraduationYear(transcript string, ann *annotator.Annotation) *int {
	if ann != nil {
		for _, sentence := range ann.Sentences {
			if !containsAny(strings.ToLower(sentence), graduationKeywords) {
				continue
			}
			if m := yearPattern.FindStringSubmatch(sentence); m != nil {
				year, err := strconv.Atoi(m[1])
				if err == nil && validYear(year) {
					return &year
				}
			}
		}
	}

	// 回退：全文扫描近年年份，取最大值（最近）
	var best *int
	for _, m := range recentYearPattern.FindAllStringSubmatch(transcript, -1) {
		year, err := strconv.Atoi(m[1])
		if err != nil || !validYear(year) {
			continue
		}
		if best == nil || year > *best {
			y := year
			best = &y
		}
	}
	return best
}

// ExtractName 抽取候选人姓名。
// 有标注时按文档顺序扫描PERSON实体，取第一个长度合理、
// 非裸代词、非纯数字的片段；实体未命中时回退到自我介绍句式。
func ExtractName(transcript string, ann *annotator.Annotation) *string {
	for _, person := range ann.EntitiesByLabel(annotator.LabelPerson) {
		if len(person) < 2 || len(person) > 50 {
			continue
		}
		if pronouns[strings.ToLower(person)] || isAllDigits(person) {
			continue
		}
		titled := titleCase(person)
		return &titled
	}

	for _, pattern := range namePatterns {
		m := pattern.FindStringSubmatch(transcript)
		if m == nil {
			continue
		}
		name := strings.TrimSpace(m[1])
		if len(name) >= 2 && len(name) <= 50 {
			titled := titleCase(name)
			return &titled
		}
	}
	return nil
}

// ExtractCollege 抽取院校名称。
// 有标注时在ORG实体中找包含院校关键词且非裸关键词的片段；
// 实体未命中时用"大写短语+机构类型词收尾"的回退模式。
// 两条路径都会剥除"graduated from"之类的引导套话。
func ExtractCollege(transcript string, ann *annotator.Annotation) *string {
	for _, org := range ann.EntitiesByLabel(annotator.LabelOrg) {
		orgLower := strings.ToLower(org)
		if !containsAny(orgLower, collegeKeywords) {
			continue
		}
		// 过滤掉裸关键词与长度异常的片段
		if len(org) < 5 || len(org) > 100 {
			continue
		}
		if orgLower == "university" || orgLower == "college" || orgLower == "school" {
			continue
		}
		cleaned := stripCollegePrefixes(org)
		return &cleaned
	}

	m := collegeFallbackPattern.FindStringSubmatch(transcript)
	if m == nil {
		return nil
	}
	college := stripCollegePrefixes(strings.TrimSpace(m[1]))
	if len(college) >= 5 && len(college) <= 100 {
		return &college
	}
	return nil
}

// stripCollegePrefixes 剥除院校名前的引导性套话
func stripCollegePrefixes(college string) string {
	for _, prefix := range collegePrefixPatterns {
		college = strings.TrimSpace(prefix.ReplaceAllString(college, ""))
	}
	return college
}

// validYear 毕业年份的合理区间
func validYear(year int) bool {
	return year >= 1950 && year <= 2030
}

func isAllDigits(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		if !unicode.IsDigit(r) {
			return false
		}
	}
	return true
}

func hasDigit(s string) bool {
	for _, r := range s {
		if unicode.IsDigit(r) {
			return true
		}
	}
	return false
}
