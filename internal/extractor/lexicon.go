package extractor

import (
	"regexp"
	"sort"
	"strings"
	"unicode"
)

// 预编译的正则与固定词表。全部在包初始化时构建一次，之后只读。
// 所有匹配均不区分大小写；Go的RE2引擎保证线性时间，
// 对抗性输入不会产生回溯爆炸。

var (
	emailPattern      = regexp.MustCompile(`(?i)\b[A-Za-z0-9._%+-]+@[A-Za-z0-9.-]+\.[A-Za-z]{2,}\b`)
	phonePattern      = regexp.MustCompile(`(\+?\d{1,3}[-.\s]?)?\(?\d{3}\)?[-.\s]?\d{3}[-.\s]?\d{4}`)
	yearPattern       = regexp.MustCompile(`\b(19\d{2}|20\d{2})\b`)
	recentYearPattern = regexp.MustCompile(`\b(20[0-3]\d)\b`)
	nonDigitPattern   = regexp.MustCompile(`[^\d+]`)
)

// experiencePatterns 三种工作年限表述，按固定优先级依次尝试
var experiencePatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?i)(\d+)\s*(?:years?|yrs?)\s*(?:of\s*)?experience`),
	regexp.MustCompile(`(?i)experience\s*(?:of\s*)?(\d+)\s*(?:years?|yrs?)`),
	regexp.MustCompile(`(?i)(\d+)\s*(?:years?|yrs?)\s*(?:in|working)`),
}

// cityPattern 常见印度城市地名表（合并为单个预编译模式以提升性能）
var cityPattern = regexp.MustCompile(
	`(?i)\b(chennai|mumbai|delhi|bangalore|hyderabad|pune|kolkata|ahmedabad|jaipur|surat|` +
		`lucknow|kanpur|nagpur|indore|thane|bhopal|visakhapatnam|patna|vadodara|ghaziabad|` +
		`ludhiana|agra|nashik|faridabad|meerut|rajkot|varanasi|srinagar|amritsar|jodhpur|` +
		`raipur|allahabad|coimbatore|jabalpur|gwalior|vijayawada|madurai|kota|guwahati|` +
		`chandigarh|solapur|hubli|bareilly|moradabad|gurgaon|aligarh|jalandhar|tiruchirappalli|` +
		`bhubaneswar|salem|warangal|thiruvananthapuram|bhiwandi|saharanpur|gorakhpur|guntur|` +
		`bikaner|amravati|noida|bhavnagar|dehradun|kolhapur|ajmer|gulbarga|jamnagar|udaipur|` +
		`maheshtala|tirunelveli|davanagere|kozhikode|akola|kurnool|rajahmundry|ballari|agartala|` +
		`bhagalpur|latur|dhule|korba|bhimavaram|panvel|bhatpara|machilipatnam|raichur|puducherry|` +
		`pali|tumkur|bharatpur|ichalkaranji|parbhani|hapur|sirsa|baripada|budaun|jagdalpur|` +
		`motihari|rourkela|baghpat|adoni|ujjain|sangli|lahar|ratlam|dharmavaram|kashipur|` +
		`sujangarh|masaurhi|wadi)\b`)

// excludedLocationTerms 技术词/国别词黑名单，这些词绝不作为地点处理
var excludedLocationTerms = map[string]bool{
	"python": true, "java": true, "javascript": true, "react": true, "angular": true,
	"vue": true, "node": true, "sql": true, "mongodb": true, "postgresql": true,
	"mysql": true, "aws": true, "azure": true, "docker": true, "kubernetes": true,
	"git": true, "linux": true, "html": true, "css": true, "typescript": true,
	"c++": true, "c#": true, ".net": true, "spring": true, "django": true,
	"flask": true, "fastapi": true, "tensorflow": true, "pytorch": true,
	"pandas": true, "numpy": true, "machine learning": true, "ai": true,
	"data science": true, "api": true, "rest": true, "graphql": true,
	"json": true, "xml": true, "http": true, "https": true,
	"india": true, "south india": true, "north india": true, "east india": true,
	"west india": true, "usa": true, "uk": true, "united states": true, "us": true,
	"programming": true, "code": true, "software": true, "developer": true,
}

// skillsKeywords 技能词表（集合结构用于O(1)查找）
var skillsKeywords = map[string]bool{
	"python": true, "java": true, "javascript": true, "react": true, "angular": true,
	"vue": true, "node": true, "sql": true, "mongodb": true, "postgresql": true,
	"mysql": true, "aws": true, "azure": true, "docker": true, "kubernetes": true,
	"git": true, "linux": true, "html": true, "css": true, "typescript": true,
	"c++": true, "c#": true, ".net": true, "spring": true, "django": true,
	"flask": true, "fastapi": true, "machine learning": true, "ai": true,
	"data science": true, "tensorflow": true, "pytorch": true, "pandas": true,
	"numpy": true, "redis": true, "elasticsearch": true, "kafka": true,
	"rabbitmq": true, "jenkins": true, "terraform": true, "ansible": true,
	"prometheus": true, "grafana": true, "splunk": true, "tableau": true,
	"powerbi": true,
}

// specializations 学位专业方向词表，按特异性排序声明
// （越长/越具体的条目越靠前，"it"这类泛称垫底）
var specializations = []string{
	"computer science engineering", "computer science and engineering", "cse",
	"computer science", "computer engineering",
	"information technology", "information technology engineering",
	"mechanical engineering", "civil engineering", "electrical engineering", "electronics engineering",
	"chemical engineering", "aerospace engineering", "biotechnology", "biomedical engineering",
	"data science", "artificial intelligence", "machine learning", "software engineering",
	"business administration", "management", "finance", "marketing", "accounting",
	"mathematics", "physics", "chemistry", "biology", "statistics", "economics",
	"it",
}

// specializationsByLength 预计算的按长度降序排列的专业方向，
// 保证"computer science engineering"先于"cse"先于"it"被尝试
var specializationsByLength []string

// graduationKeywords 毕业语境关键词
var graduationKeywords = []string{
	"graduate", "graduation", "completed", "finished", "degree",
	"graduated", "pass out", "passout", "studied",
}

// degreeKeywords 学位语境关键词
var degreeKeywords = []string{
	"degree", "graduated", "completed", "studied", "education",
	"qualification", "bachelor", "master",
}

// 学位层级指示词：硕士家族与学士家族
var (
	masterIndicators   = []string{"master", "m.tech", "mtech", "m.e", "m e", "m.e.", "postgraduate", "pg", "masters"}
	bachelorIndicators = []string{"bachelor", "b.tech", "btech", "b.e", "b e", "b.e.", "undergraduate", "ug", "bachelors"}
)

// degreeInPattern "degree in <专业短语>"：捕获到收尾名词为止
var degreeInPattern = regexp.MustCompile(`(?i)\bdegree\s+in\s+([a-z\s]+(?:engineering|science|technology|administration))`)

// fullDegreePatterns 完整学位名模式，索引与degreeLevel对应
type fullDegreePattern struct {
	re *regexp.Regexp
}

var fullDegreePatterns []fullDegreePattern

// 缩写+同句专业的模式及其规范化前缀
type abbrevPattern struct {
	re     *regexp.Regexp
	abbrev string
}

var (
	abbrevWithSpecPatterns []abbrevPattern
	simpleAbbrevPatterns   []abbrevPattern
)

// 学位vs技能语境提示词，用于四号规则的邻域判定
var (
	degreeContextCues = []string{"degree", "studied", "graduated", "specialization", "major", "field", "subject", "branch"}
	skillContextCues  = []string{"skill", "proficient", "expertise", "worked with", "good at"}
)

// collegeFallbackPattern 无标注时的院校回退模式：以机构类型词收尾的大写短语
var collegeFallbackPattern = regexp.MustCompile(`\b([A-Z][a-zA-Z\s]+(?:University|College|Institute|School|Academy))\b`)

// collegeKeywords 院校类型关键词
var collegeKeywords = []string{"university", "college", "institute", "school", "academy"}

// collegePrefixPatterns 需要从院校名上剥除的引导性套话
var collegePrefixPatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?i)\bI graduated from\s+`),
	regexp.MustCompile(`(?i)\bgraduated from\s+`),
	regexp.MustCompile(`(?i)\bI studied at\s+`),
	regexp.MustCompile(`(?i)\bstudied at\s+`),
	regexp.MustCompile(`(?i)\bI am from\s+`),
	regexp.MustCompile(`(?i)\bfrom\s+`),
	regexp.MustCompile(`(?i)\bat\s+`),
}

// namePatterns 自我介绍句式的姓名回退模式
var namePatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?im)(?:my name is|i am|i'm|this is)\s+([A-Z][a-z]+(?:\s+[A-Z][a-z]+)*)`),
	regexp.MustCompile(`(?im)^([A-Z][a-z]+(?:\s+[A-Z][a-z]+)*)(?:\s+here|\s+speaking)`),
}

// pronouns 不允许作为姓名的裸代词
var pronouns = map[string]bool{
	"i": true, "me": true, "my": true, "you": true,
	"he": true, "she": true, "we": true, "they": true,
}

// samplerKeywords 采样器保留句子的线索词
var samplerKeywords = []string{
	"name", "i am", "my name", "from", "location", "live", "college",
	"university", "degree", "graduated", "graduate", "studied",
}

func init() {
	// 按长度降序的专业方向副本（声明顺序作为稳定次序的tie-break）
	specializationsByLength = make([]string, len(specializations))
	copy(specializationsByLength, specializations)
	sort.SliceStable(specializationsByLength, func(i, j int) bool {
		return len(specializationsByLength[i]) > len(specializationsByLength[j])
	})

	// 构造专业方向的alternation片段
	quoted := make([]string, len(specializations))
	for i, spec := range specializations {
		quoted[i] = regexp.QuoteMeta(spec)
	}
	specAlt := strings.Join(quoted, "|")

	fullDegreePatterns = []fullDegreePattern{
		{re: regexp.MustCompile(`(?i)\b(bachelor\s+of\s+(?:technology|engineering|science|arts|commerce))\s+(?:in\s+)?(` + specAlt + `)`)},
		{re: regexp.MustCompile(`(?i)\b(master\s+of\s+(?:technology|engineering|science|arts|commerce|business\s+administration))\s+(?:in\s+)?(` + specAlt + `)`)},
		{re: regexp.MustCompile(`(?i)\b(bachelor\s+in\s+(` + specAlt + `))`)},
		{re: regexp.MustCompile(`(?i)\b(master\s+in\s+(` + specAlt + `))`)},
	}

	abbrevWithSpecPatterns = []abbrevPattern{
		{re: regexp.MustCompile(`(?i)\b(b\.?\s*tech\.?|btech)\s+(?:in\s+)?(` + specAlt + `)`), abbrev: "B.Tech"},
		{re: regexp.MustCompile(`(?i)\b(m\.?\s*tech\.?|mtech|m\.?\s*e\.?)\s+(?:in\s+)?(` + specAlt + `)`), abbrev: "M.Tech"},
		{re: regexp.MustCompile(`(?i)\b(b\.?\s*sc\.?|bsc)\s+(?:in\s+)?(` + specAlt + `)`), abbrev: "B.Sc"},
		{re: regexp.MustCompile(`(?i)\b(m\.?\s*sc\.?|msc)\s+(?:in\s+)?(` + specAlt + `)`), abbrev: "M.Sc"},
	}

	simpleAbbrevPatterns = []abbrevPattern{
		{re: regexp.MustCompile(`(?i)\b(b\.?\s*tech\.?|btech)\b`), abbrev: "B.Tech"},
		{re: regexp.MustCompile(`(?i)\b(m\.?\s*tech\.?|mtech|m\.?\s*e\.?)\b`), abbrev: "M.Tech"},
		{re: regexp.MustCompile(`(?i)\b(b\.?\s*sc\.?|bsc)\b`), abbrev: "B.Sc"},
		{re: regexp.MustCompile(`(?i)\b(m\.?\s*sc\.?|msc)\b`), abbrev: "M.Sc"},
		{re: regexp.MustCompile(`(?i)\b(m\.?\s*b\.?\s*a\.?|mba)\b`), abbrev: "MBA"},
	}
}

// titleCase 按单词首字母大写的方式规范化文本，
// 行为对齐通用的title-case语义（非字母后的首个字母大写，其余小写）
func titleCase(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	prevLetter := false
	for _, r := range s {
		if unicode.IsLetter(r) {
			if prevLetter {
				b.WriteRune(unicode.ToLower(r))
			} else {
				b.WriteRune(unicode.ToUpper(r))
			}
			prevLetter = true
		} else {
			b.WriteRune(r)
			prevLetter = false
		}
	}
	return b.String()
}

// containsAny 判断文本是否包含任一关键词（调用方负责统一小写）
func containsAny(text string, keywords []string) bool {
	for _, kw := range keywords {
		if strings.Contains(text, kw) {
			return true
		}
	}
	return false
}
