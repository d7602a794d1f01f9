package extractor

import (
	"strings"
)

// sampleThreshold 超过该长度的转写文本只对采样片段做实体标注，
// 控制长文本下的标注开销
const sampleThreshold = 2000

// sampleKeep 保留的线索句上限
const sampleKeep = 25

// SampleDocument 为长转写文本构造标注用的采样片段：
// 按句号切分后保留含线索词的句子和短句（可能是自我介绍），
// 截取前25条线索句，再补上开头3句和结尾3句保持文档边界信息。
// 没有任何线索句时退化为前2000个字符。
func SampleDocument(transcript string) string {
	raw := strings.Split(transcript, ".")
	sentences := make([]string, 0, len(raw))
	for _, s := range raw {
		if trimmed := strings.TrimSpace(s); trimmed != "" {
			sentences = append(sentences, trimmed)
		}
	}

	var relevant []string
	for _, sent := range sentences {
		if containsAny(strings.ToLower(sent), samplerKeywords) || len(sent) < 100 {
			relevant = append(relevant, sent)
		}
	}

	if len(relevant) == 0 {
		return transcript[:min(len(transcript), sampleThreshold)]
	}

	picked := relevant[:min(len(relevant), sampleKeep)]
	picked = append(picked, sentences[:min(len(sentences), 3)]...)
	if n := len(sentences); n > 3 {
		picked = append(picked, sentences[n-3:]...)
	}
	return strings.Join(picked, ". ")
}
