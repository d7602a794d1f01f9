package handler

import (
	"context"
	"log"
	"os"
	"strconv"

	"transcript-hr-go/internal/config"
	"transcript-hr-go/internal/storage"
	"transcript-hr-go/internal/storage/models"

	"github.com/cloudwego/hertz/pkg/app"
	"github.com/cloudwego/hertz/pkg/common/utils"
	"github.com/cloudwego/hertz/pkg/protocol/consts"
)

// CandidateHandler 处理候选人查询接口
type CandidateHandler struct {
	cfg     *config.Config
	storage *storage.Storage
	logger  *log.Logger
}

// NewCandidateHandler 创建候选人查询处理器
func NewCandidateHandler(cfg *config.Config, storage *storage.Storage) *CandidateHandler {
	return &CandidateHandler{
		cfg:     cfg,
		storage: storage,
		logger:  log.New(os.Stdout, "[Candidate] ", log.LstdFlags),
	}
}

// CreateCandidateRequest 手工创建候选人的请求体，
// 字段与抽取结果对齐，用于补录或修正
type CreateCandidateRequest struct {
	Name           *string `json:"name"`
	Email          *string `json:"email"`
	Phone          *string `json:"phone"`
	College        *string `json:"college"`
	Degree         *string `json:"degree"`
	GraduationYear *int    `json:"graduation_year"`
	Experience     *string `json:"experience"`
	Location       *string `json:"location"`
	Skills         *string `json:"skills"`
	Transcript     string  `json:"transcript"`
}

// CandidateListResponse 候选人分页查询响应
type CandidateListResponse struct {
	Total      int64              `json:"total"`
	Page       int                `json:"page"`
	PageSize   int                `json:"page_size"`
	Candidates []models.Candidate `json:"candidates"`
}

// HandleCreateCandidate 手工创建或修正候选人记录。
// 与流水线入库不同，接口写入对非法字段直接拒绝而不是静默丢弃
func (h *CandidateHandler) HandleCreateCandidate(ctx context.Context, c *app.RequestContext) {
	var req CreateCandidateRequest
	if err := c.BindJSON(&req); err != nil {
		c.JSON(consts.StatusBadRequest, utils.H{"error": "请求体解析失败"})
		return
	}

	candidate := &models.Candidate{
		Name:           req.Name,
		Email:          req.Email,
		Phone:          req.Phone,
		College:        req.College,
		Degree:         req.Degree,
		GraduationYear: req.GraduationYear,
		Experience:     req.Experience,
		Location:       req.Location,
		Skills:         req.Skills,
		Transcript:     req.Transcript,
	}

	models.SanitizeCandidate(candidate)
	if msg := models.ValidateCandidate(candidate); msg != "" {
		c.JSON(consts.StatusBadRequest, utils.H{"error": msg})
		return
	}

	candidateID, err := h.storage.MySQL.UpsertCandidate(ctx, candidate)
	if err != nil {
		h.logger.Printf("创建候选人失败: %v", err)
		c.JSON(consts.StatusInternalServerError, utils.H{"error": "创建候选人失败"})
		return
	}

	h.logger.Printf("候选人 %s 已创建/更新", candidateID)
	c.JSON(consts.StatusOK, utils.H{"candidate_id": candidateID})
}

// HandleListCandidates 分页查询候选人列表
func (h *CandidateHandler) HandleListCandidates(ctx context.Context, c *app.RequestContext) {
	page := 1
	pageSize := 10

	if val, err := strconv.Atoi(c.Query("page")); err == nil && val > 0 {
		page = val
	}
	if val, err := strconv.Atoi(c.Query("page_size")); err == nil && val > 0 && val <= 100 {
		pageSize = val
	}

	offset := (page - 1) * pageSize
	candidates, total, err := h.storage.MySQL.ListCandidates(ctx, pageSize, offset)
	if err != nil {
		h.logger.Printf("查询候选人列表失败: %v", err)
		c.JSON(consts.StatusInternalServerError, utils.H{"error": "查询候选人列表失败"})
		return
	}

	if candidates == nil {
		candidates = []models.Candidate{}
	}
	c.JSON(consts.StatusOK, CandidateListResponse{
		Total:      total,
		Page:       page,
		PageSize:   pageSize,
		Candidates: candidates,
	})
}

// HandleGetCandidate 按ID查询单个候选人
func (h *CandidateHandler) HandleGetCandidate(ctx context.Context, c *app.RequestContext) {
	candidateID := c.Param("id")
	if candidateID == "" {
		c.JSON(consts.StatusBadRequest, utils.H{"error": "候选人ID不能为空"})
		return
	}

	candidate, err := h.storage.MySQL.GetCandidate(ctx, candidateID)
	if err != nil {
		h.logger.Printf("查询候选人 %s 失败: %v", candidateID, err)
		c.JSON(consts.StatusInternalServerError, utils.H{"error": "查询候选人失败"})
		return
	}
	if candidate == nil {
		c.JSON(consts.StatusNotFound, utils.H{"error": "候选人不存在"})
		return
	}

	c.JSON(consts.StatusOK, candidate)
}

// HandleDeleteCandidate 按ID删除候选人
func (h *CandidateHandler) HandleDeleteCandidate(ctx context.Context, c *app.RequestContext) {
	candidateID := c.Param("id")
	if candidateID == "" {
		c.JSON(consts.StatusBadRequest, utils.H{"error": "候选人ID不能为空"})
		return
	}

	deleted, err := h.storage.MySQL.DeleteCandidate(ctx, candidateID)
	if err != nil {
		h.logger.Printf("删除候选人 %s 失败: %v", candidateID, err)
		c.JSON(consts.StatusInternalServerError, utils.H{"error": "删除候选人失败"})
		return
	}
	if !deleted {
		c.JSON(consts.StatusNotFound, utils.H{"error": "候选人不存在"})
		return
	}

	h.logger.Printf("候选人 %s 已删除", candidateID)
	c.JSON(consts.StatusOK, utils.H{"deleted": true, "candidate_id": candidateID})
}

// HandleGetSubmission 按UUID查询音频提交的处理状态
func (h *CandidateHandler) HandleGetSubmission(ctx context.Context, c *app.RequestContext) {
	submissionUUID := c.Param("uuid")
	if submissionUUID == "" {
		c.JSON(consts.StatusBadRequest, utils.H{"error": "提交UUID不能为空"})
		return
	}

	submission, err := h.storage.MySQL.GetAudioSubmission(ctx, submissionUUID)
	if err != nil {
		h.logger.Printf("查询提交 %s 失败: %v", submissionUUID, err)
		c.JSON(consts.StatusInternalServerError, utils.H{"error": "查询提交记录失败"})
		return
	}
	if submission == nil {
		c.JSON(consts.StatusNotFound, utils.H{"error": "提交记录不存在"})
		return
	}

	c.JSON(consts.StatusOK, submission)
}
