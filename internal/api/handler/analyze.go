package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/pairreview/pairreview/internal/model"
	"github.com/pairreview/pairreview/internal/orchestrator"
	"github.com/pairreview/pairreview/internal/store"
	"github.com/pairreview/pairreview/pkg/errors"
)

// AnalyzeHandler triggers orchestrator runs for a local review session:
// a single-voice analyze, a council/advanced analyze, and cancellation of
// whichever run is currently in flight.
type AnalyzeHandler struct {
	store        store.Store
	orchestrator *orchestrator.Orchestrator
}

// NewAnalyzeHandler creates an AnalyzeHandler.
func NewAnalyzeHandler(s store.Store, o *orchestrator.Orchestrator) *AnalyzeHandler {
	return &AnalyzeHandler{store: s, orchestrator: o}
}

type analyzeRequest struct {
	Provider           string  `json:"provider" binding:"required"`
	Model              string  `json:"model" binding:"required"`
	Tier               string  `json:"tier"`
	CustomInstructions *string `json:"customInstructions"`
	EnabledLevels      []int   `json:"enabledLevels"`
	SkipLevel3         bool    `json:"skipLevel3"`
}

// Analyze handles POST /api/local/{reviewId}/analyze.
func (h *AnalyzeHandler) Analyze(c *gin.Context) {
	review, err := h.loadReview(c)
	if err != nil {
		respondError(c, err)
		return
	}

	var req analyzeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, errors.ErrInvalidInput("provider and model are required"))
		return
	}

	plan := singleVoicePlan(req)
	run, err := h.orchestrator.TriggerRun(c.Request.Context(), review, plan)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusAccepted, gin.H{"analysisId": run.ID})
}

// singleVoicePlan builds the one-level VoicePlan for a plain /analyze call.
// enabledLevels/skipLevel3 are accepted in the request body but not read
// here or anywhere else: a plain single-voice request always runs as one
// level.
func singleVoicePlan(req analyzeRequest) orchestrator.VoicePlan {
	return orchestrator.VoicePlan{
		Type: model.RunConfigTypeSingle,
		Levels: []orchestrator.Level{{
			Number: 1,
			Voices: []orchestrator.Voice{{
				Provider:           req.Provider,
				Model:              req.Model,
				Tier:               req.Tier,
				CustomInstructions: req.CustomInstructions,
			}},
		}},
	}
}

type councilAnalyzeRequest struct {
	CouncilID          *string       `json:"councilId"`
	CouncilConfig      model.JSONMap `json:"councilConfig"`
	ConfigType         string        `json:"configType" binding:"required"`
	CustomInstructions *string       `json:"customInstructions"`
}

// AnalyzeCouncil handles POST /api/local/{reviewId}/analyze/council.
func (h *AnalyzeHandler) AnalyzeCouncil(c *gin.Context) {
	review, err := h.loadReview(c)
	if err != nil {
		respondError(c, err)
		return
	}

	var req councilAnalyzeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, errors.ErrInvalidInput("configType is required"))
		return
	}

	config := req.CouncilConfig
	if req.CouncilID != nil {
		council, err := h.store.Council().GetByID(*req.CouncilID)
		if err != nil {
			respondError(c, err)
			return
		}
		config = council.Config
		_ = h.store.Council().TouchLastUsed(council.ID)
	}
	if config == nil {
		respondError(c, errors.ErrInvalidInput("councilId or councilConfig is required"))
		return
	}

	plan, err := councilPlanFromConfig(model.RunConfigType(req.ConfigType), config, req.CustomInstructions)
	if err != nil {
		respondError(c, err)
		return
	}

	run, err := h.orchestrator.TriggerRun(c.Request.Context(), review, plan)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusAccepted, gin.H{"analysisId": run.ID})
}

// councilPlanFromConfig parses the stored/submitted council config JSON,
// shaped as "levels": {"1": {"enabled": bool, "voices": [{provider,model,
// tier}]}, ...} plus an optional "orchestration" voice, into a VoicePlan.
func councilPlanFromConfig(configType model.RunConfigType, config model.JSONMap, customInstructions *string) (orchestrator.VoicePlan, error) {
	rawLevels, ok := config["levels"].(map[string]interface{})
	if !ok {
		return orchestrator.VoicePlan{}, errors.ErrInvalidInput("councilConfig.levels is required")
	}

	var levels []orchestrator.Level
	for key, raw := range rawLevels {
		levelMap, ok := raw.(map[string]interface{})
		if !ok {
			continue
		}
		if enabled, ok := levelMap["enabled"].(bool); ok && !enabled {
			continue
		}
		voicesRaw, _ := levelMap["voices"].([]interface{})
		if len(voicesRaw) == 0 {
			continue
		}
		number := levelNumber(key)
		var voices []orchestrator.Voice
		for i, vr := range voicesRaw {
			voices = append(voices, voiceFromMap(vr, i))
		}
		levels = append(levels, orchestrator.Level{Number: number, Voices: voices})
	}
	if len(levels) == 0 {
		return orchestrator.VoicePlan{}, errors.ErrInvalidInput("councilConfig has no enabled levels")
	}

	plan := orchestrator.VoicePlan{
		Type:                configType,
		Levels:              levels,
		RequestInstructions: customInstructions,
	}

	if orch, ok := config["orchestration"].(map[string]interface{}); ok {
		v := voiceFromMap(orch, 0)
		plan.Orchestration = &v
	} else if configType == model.RunConfigTypeCouncil {
		return orchestrator.VoicePlan{}, errors.ErrInvalidInput("council configs require an orchestration voice")
	}

	return plan, nil
}

func levelNumber(key string) int {
	switch key {
	case "1":
		return 1
	case "2":
		return 2
	case "3":
		return 3
	case "4":
		return 4
	default:
		return 0
	}
}

func voiceFromMap(raw interface{}, index int) orchestrator.Voice {
	m, _ := raw.(map[string]interface{})
	v := orchestrator.Voice{
		Provider: stringField(m, "provider"),
		Model:    stringField(m, "model"),
		Tier:     stringField(m, "tier"),
	}
	if id := stringField(m, "id"); id != "" {
		v.ID = id
	} else {
		v.ID = v.Provider
	}
	return v
}

func stringField(m map[string]interface{}, key string) string {
	if m == nil {
		return ""
	}
	s, _ := m[key].(string)
	return s
}

func (h *AnalyzeHandler) loadReview(c *gin.Context) (*model.Review, error) {
	id, err := parseReviewID(c)
	if err != nil {
		return nil, err
	}
	review, err := h.store.Review().GetByID(id)
	if err != nil {
		return nil, errors.ErrNotFound("review")
	}
	return review, nil
}
