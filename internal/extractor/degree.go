package extractor

import (
	"fmt"
	"strings"

	"transcript-hr-go/internal/annotator"
)

// 学位抽取的级联规则，按可信度从高到低依次尝试，首个命中者胜出：
//  1. "degree in <专业>" 句式 + 全文层级指示词判定
//  2. 完整学位名（bachelor/master of ...）+ 专业
//  3. 缩写+同句专业（需要句子切分，即需要标注）
//  4. 缩写+邻域专业（±400字符窗口与相邻句子）
//  5. 裸缩写兜底
// 规则3-5依赖句子切分，标注缺席时级联止步于规则2。
func ExtractDegree(transcript string, ann *annotator.Annotation) *string {
	transcriptLower := strings.ToLower(transcript)

	// 规则1："degree in <专业短语>"
	if loc := degreeInPattern.FindStringSubmatchIndex(transcript); loc != nil {
		specMentioned := strings.ToLower(strings.TrimSpace(transcript[loc[2]:loc[3]]))
		for _, spec := range specializationsByLength {
			if !strings.Contains(specMentioned, spec) && !strings.Contains(spec, specMentioned) {
				continue
			}
			result := resolveDegreeLevel(transcriptLower, loc[0], spec)
			return &result
		}
	}

	// 规则2：完整学位名+专业
	for _, p := range fullDegreePatterns {
		m := p.re.FindStringSubmatch(transcriptLower)
		if m == nil || len(m) < 3 || m[2] == "" {
			continue
		}
		spec := strings.TrimSpace(m[2])
		prefix := degreePrefixFor(m[1])
		result := fmt.Sprintf("%s in %s", prefix, titleCase(spec))
		return &result
	}

	if ann == nil {
		return nil
	}

	// 规则3：缩写与专业在同一个含学位关键词的句子里
	for _, sentence := range ann.Sentences {
		if !containsAny(strings.ToLower(sentence), degreeKeywords) {
			continue
		}
		for _, p := range abbrevWithSpecPatterns {
			m := p.re.FindStringSubmatch(sentence)
			if m == nil || len(m) < 3 || m[2] == "" {
				continue
			}
			result := fmt.Sprintf("%s in %s", p.abbrev, titleCase(strings.TrimSpace(m[2])))
			return &result
		}
	}

	// 规则4：先定位裸缩写，再去邻域找专业
	var (
		degreeFound    string
		matchedPattern *abbrevPattern
		sentenceIdx    = -1
	)
	for i, sentence := range ann.Sentences {
		if !containsAny(strings.ToLower(sentence), degreeKeywords) {
			continue
		}
		for j := range simpleAbbrevPatterns {
			if simpleAbbrevPatterns[j].re.MatchString(sentence) {
				degreeFound = simpleAbbrevPatterns[j].abbrev
				matchedPattern = &simpleAbbrevPatterns[j]
				sentenceIdx = i
				break
			}
		}
		if degreeFound != "" {
			break
		}
	}
	if degreeFound == "" {
		return nil
	}

	// 用实际命中的缩写模式在全文中定位字符偏移
	degreePos := -1
	sentence := ann.Sentences[sentenceIdx]
	if charStart := strings.Index(transcriptLower, strings.ToLower(sentence)); charStart >= 0 {
		if loc := matchedPattern.re.FindStringIndex(sentence); loc != nil {
			degreePos = charStart + loc[0]
		}
	}

	// 4a：±400字符窗口内找专业，并用±60字符片段做学位/技能语境甄别
	if degreePos >= 0 {
		winStart := max(0, degreePos-400)
		winEnd := min(len(transcript), degreePos+400)
		window := transcriptLower[winStart:winEnd]
		for _, spec := range specializationsByLength {
			specPos := strings.Index(window, spec)
			if specPos < 0 {
				continue
			}
			snippet := window[max(0, specPos-60):min(len(window), specPos+len(spec)+60)]
			if acceptSpecInContext(snippet, spec) {
				result := fmt.Sprintf("%s in %s", degreeFound, titleCase(spec))
				return &result
			}
		}
	}

	// 4b：相邻句子（前一句、当前句、后一句）里找专业
	searchIndices := []int{
		max(0, sentenceIdx-1),
		sentenceIdx,
		min(len(ann.Sentences)-1, sentenceIdx+1),
	}
	for _, idx := range searchIndices {
		sentLower := strings.ToLower(ann.Sentences[idx])
		for _, spec := range specializationsByLength {
			if !strings.Contains(sentLower, spec) {
				continue
			}
			if acceptSpecInContext(sentLower, spec) {
				result := fmt.Sprintf("%s in %s", degreeFound, titleCase(spec))
				return &result
			}
		}
	}

	// 规则5：邻域无专业，返回裸学位缩写
	return &degreeFound
}

// resolveDegreeLevel 规则1的层级判定：以全文作为前向语境、
// 匹配点后200字符作为后向语境，搜索硕士/学士指示词。
// 两类都出现时比较到匹配点的距离，等距时判为学士。
func resolveDegreeLevel(transcriptLower string, degreePos int, spec string) string {
	contextBefore := transcriptLower[:degreePos]
	contextAfter := transcriptLower[degreePos:min(degreePos+200, len(transcriptLower))]

	hasMaster := anyIndicatorIn(contextBefore, contextAfter, masterIndicators)
	hasBachelor := anyIndicatorIn(contextBefore, contextAfter, bachelorIndicators)

	switch {
	case hasMaster && !hasBachelor:
		return fmt.Sprintf("M.Tech in %s", titleCase(spec))
	case hasBachelor && !hasMaster:
		return refineBachelor(contextBefore, contextAfter, spec)
	case hasMaster && hasBachelor:
		closestMaster := closestIndicatorDistance(contextBefore, contextAfter, degreePos, masterIndicators)
		closestBachelor := closestIndicatorDistance(contextBefore, contextAfter, degreePos, bachelorIndicators)
		if closestMaster < 0 || closestBachelor < 0 {
			return titleCase(spec)
		}
		if closestMaster < closestBachelor {
			return fmt.Sprintf("M.Tech in %s", titleCase(spec))
		}
		// 等距或更近学士时判为学士
		return refineBachelor(contextBefore, contextAfter, spec)
	default:
		return titleCase(spec)
	}
}

// refineBachelor 学士层级的细分：B.E. > B.Tech > Bachelor's > 裸专业
func refineBachelor(contextBefore, contextAfter string, spec string) string {
	switch {
	case anyIndicatorIn(contextBefore, contextAfter, []string{"b.e", "b e", "b.e."}):
		return fmt.Sprintf("B.E. in %s", titleCase(spec))
	case anyIndicatorIn(contextBefore, contextAfter, []string{"b.tech", "btech", "b.tech."}):
		return fmt.Sprintf("B.Tech in %s", titleCase(spec))
	case anyIndicatorIn(contextBefore, contextAfter, []string{"bachelor", "bachelors"}):
		return fmt.Sprintf("Bachelor's in %s", titleCase(spec))
	default:
		return titleCase(spec)
	}
}

// degreePrefixFor 根据捕获到的完整学位名选择规范化前缀
func degreePrefixFor(capturedDegree string) string {
	isBachelor := strings.Contains(capturedDegree, "bachelor")
	switch {
	case strings.Contains(capturedDegree, "technology"):
		if isBachelor {
			return "B.Tech"
		}
		return "M.Tech"
	case strings.Contains(capturedDegree, "engineering"):
		if isBachelor {
			return "B.E."
		}
		return "M.E."
	case strings.Contains(capturedDegree, "science"):
		if isBachelor {
			return "B.Sc"
		}
		return "M.Sc"
	case strings.Contains(capturedDegree, "arts"):
		if isBachelor {
			return "B.A."
		}
		return "M.A."
	case strings.Contains(capturedDegree, "commerce"):
		if isBachelor {
			return "B.Com"
		}
		return "M.Com"
	case strings.Contains(capturedDegree, "business"):
		return "MBA"
	default:
		if isBachelor {
			return "Bachelor's"
		}
		return "Master's"
	}
}

// acceptSpecInContext 判定专业是否处于学位语境而非技能语境：
// 出现学位提示词即接受；否则要求无技能提示词且专业足够具体（长度>5）
func acceptSpecInContext(snippet, spec string) bool {
	hasDegreeContext := containsAny(snippet, degreeContextCues)
	hasSkillContext := containsAny(snippet, skillContextCues)
	return hasDegreeContext || (!hasSkillContext && len(spec) > 5)
}

// anyIndicatorIn 任一指示词出现在前向或后向语境中
func anyIndicatorIn(before, after string, indicators []string) bool {
	for _, ind := range indicators {
		if strings.Contains(before, ind) || strings.Contains(after, ind) {
			return true
		}
	}
	return false
}

// closestIndicatorDistance 指示词到学位提及点的最小字符距离；
// 前向语境取最后一次出现，后向语境取首次出现。未出现时返回-1。
func closestIndicatorDistance(before, after string, degreePos int, indicators []string) int {
	closest := -1
	consider := func(pos int) {
		if pos < 0 {
			return
		}
		dist := pos - degreePos
		if dist < 0 {
			dist = -dist
		}
		if closest < 0 || dist < closest {
			closest = dist
		}
	}
	for _, ind := range indicators {
		if idx := strings.LastIndex(before, ind); idx >= 0 {
			consider(idx)
		}
		if idx := strings.Index(after, ind); idx >= 0 {
			consider(degreePos + idx)
		}
	}
	return closest
}
