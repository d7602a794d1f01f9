package constants

// Redis Key 前缀和格式常量
// 统一命名规范: app:{module}:{entity}:{unique_id}
const (
	// AppPrefix 是所有Redis Key的统一应用前缀
	AppPrefix = "app"

	// AudioModulePrefix 音频模块
	AudioModulePrefix = "audio"
	// ExtractModulePrefix 信息抽取模块
	ExtractModulePrefix = "extract"

	// EntityDedupSet 去重集合实体
	EntityDedupSet = "dedup_set"
	// EntityMD5ToUUID MD5到UUID的映射实体
	EntityMD5ToUUID = "md5_to_uuid"
	// EntityResult 抽取结果实体
	EntityResult = "result"

	// KeyAudioMD5Set 音频文件MD5集合，用于快速去重 (SET)
	// 格式: app:audio:dedup_set
	KeyAudioMD5Set = AppPrefix + ":" + AudioModulePrefix + ":" + EntityDedupSet

	// KeyAudioMD5ToSubmissionUUID MD5到SubmissionUUID的映射 (STRING)
	// 格式: app:audio:md5_to_uuid:{md5}
	KeyAudioMD5ToSubmissionUUID = AppPrefix + ":" + AudioModulePrefix + ":" + EntityMD5ToUUID + ":%s"

	// KeyExtractionResult 按转写文本MD5缓存的抽取结果 (STRING, JSON)
	// 格式: app:extract:result:{md5}
	KeyExtractionResult = AppPrefix + ":" + ExtractModulePrefix + ":" + EntityResult + ":%s"
)
