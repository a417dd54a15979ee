package main

import (
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/atelier-labs/atelier-go/internal/curator"
	"github.com/atelier-labs/atelier-go/internal/domain"
	"github.com/atelier-labs/atelier-go/internal/guardians"
	"github.com/atelier-labs/atelier-go/internal/platform/objectstore"
	"github.com/atelier-labs/atelier-go/internal/promptengine"
	"github.com/atelier-labs/atelier-go/internal/remix"
	"github.com/atelier-labs/atelier-go/internal/repo"
	"github.com/atelier-labs/atelier-go/internal/session"
	"github.com/atelier-labs/atelier-go/internal/vault"
)

type studioAPI struct {
	logger   *slog.Logger
	engine   *promptengine.Engine
	vault    *vault.Vault
	curator  *curator.Curator
	sessions *session.Manager
	remixes  *remix.System
	roster   guardians.Roster

	// payloads is nil when no object store is configured.
	payloads *objectstore.PayloadStore
}

func newStudioAPI(
	logger *slog.Logger,
	engine *promptengine.Engine,
	v *vault.Vault,
	c *curator.Curator,
	sessions *session.Manager,
	remixes *remix.System,
	roster guardians.Roster,
	payloads *objectstore.PayloadStore,
) *studioAPI {
	return &studioAPI{
		logger:   logger,
		engine:   engine,
		vault:    v,
		curator:  c,
		sessions: sessions,
		remixes:  remixes,
		roster:   roster,
		payloads: payloads,
	}
}

func (api *studioAPI) register(mux *http.ServeMux) {
	mux.HandleFunc("POST /templates", api.handleRegisterTemplate)
	mux.HandleFunc("GET /templates/{id}", api.handleGetTemplate)
	mux.HandleFunc("GET /templates", api.handleListTemplates)
	mux.HandleFunc("POST /prompts/generate", api.handleGeneratePrompt)
	mux.HandleFunc("POST /prompts/generate-for-guardian", api.handleGenerateForGuardian)
	mux.HandleFunc("POST /prompts/compose", api.handleComposePrompt)
	mux.HandleFunc("GET /prompts/stats", api.handlePromptStats)

	mux.HandleFunc("GET /guardians", api.handleListGuardians)
	mux.HandleFunc("GET /guardians/{id}", api.handleGetGuardian)

	mux.HandleFunc("POST /assets", api.handleStoreAsset)
	mux.HandleFunc("GET /assets", api.handleQueryAssets)
	mux.HandleFunc("GET /assets/stats", api.handleAssetStats)
	mux.HandleFunc("GET /assets/{id}", api.handleGetAsset)
	mux.HandleFunc("PATCH /assets/{id}", api.handleUpdateAsset)
	mux.HandleFunc("DELETE /assets/{id}", api.handleDeleteAsset)
	mux.HandleFunc("POST /assets/{id}/variations", api.handleCreateVariation)
	mux.HandleFunc("GET /assets/{id}/variations", api.handleGetVariations)
	mux.HandleFunc("GET /assets/{id}/export", api.handleExportAsset)
	mux.HandleFunc("PUT /assets/{id}/payload", api.handlePutPayload)
	mux.HandleFunc("GET /assets/{id}/payload", api.handleGetPayload)
	mux.HandleFunc("DELETE /assets/{id}/payload", api.handleDeletePayload)

	mux.HandleFunc("POST /curation/evaluate", api.handleEvaluate)
	mux.HandleFunc("POST /curation/batch", api.handleBatchEvaluate)
	mux.HandleFunc("GET /curation/stats", api.handleCurationStats)

	mux.HandleFunc("POST /sessions", api.handleStartSession)
	mux.HandleFunc("GET /sessions", api.handleListSessions)
	mux.HandleFunc("GET /sessions/active", api.handleActiveSession)
	mux.HandleFunc("GET /sessions/stats", api.handleSessionStats)
	mux.HandleFunc("GET /sessions/{id}", api.handleGetSession)
	mux.HandleFunc("POST /sessions/{id}/assets", api.handleSessionAddAsset)
	mux.HandleFunc("POST /sessions/{id}/prompts", api.handleSessionAddPrompt)
	mux.HandleFunc("POST /sessions/{id}/pause", api.handlePauseSession)
	mux.HandleFunc("POST /sessions/{id}/resume", api.handleResumeSession)
	mux.HandleFunc("POST /sessions/{id}/complete", api.handleCompleteSession)

	mux.HandleFunc("POST /chains", api.handleCreateChain)
	mux.HandleFunc("GET /chains", api.handleListChains)
	mux.HandleFunc("GET /chains/{id}", api.handleGetChain)
	mux.HandleFunc("POST /chains/{id}/remixes", api.handleAddRemix)
	mux.HandleFunc("GET /chains/{id}/attribution/{creation_id}", api.handleAttribution)
	mux.HandleFunc("GET /chains/{id}/stats", api.handleChainStats)
	mux.HandleFunc("GET /chains/{id}/tree", api.handleVisualizeChain)

	mux.HandleFunc("POST /similarity", api.handleSimilarity)
}

type templateBody struct {
	ID         string   `json:"id"`
	Name       string   `json:"name"`
	Type       string   `json:"type"`
	Body       string   `json:"body"`
	Variables  []string `json:"variables,omitempty"`
	Tags       []string `json:"tags,omitempty"`
	GuardianID string   `json:"guardian_id,omitempty"`
	Negative   string   `json:"negative,omitempty"`
}

func (b templateBody) toDomain() domain.PromptTemplate {
	return domain.PromptTemplate{
		ID:         strings.TrimSpace(b.ID),
		Name:       strings.TrimSpace(b.Name),
		Type:       domain.ContentType(strings.TrimSpace(b.Type)),
		Body:       b.Body,
		Variables:  b.Variables,
		Tags:       b.Tags,
		GuardianID: strings.TrimSpace(b.GuardianID),
		Negative:   b.Negative,
	}
}

func templateFromDomain(t domain.PromptTemplate) templateBody {
	return templateBody{
		ID:         t.ID,
		Name:       t.Name,
		Type:       string(t.Type),
		Body:       t.Body,
		Variables:  t.Variables,
		Tags:       t.Tags,
		GuardianID: t.GuardianID,
		Negative:   t.Negative,
	}
}

func (api *studioAPI) handleRegisterTemplate(w http.ResponseWriter, r *http.Request) {
	var body templateBody
	if !api.decodeJSON(w, r, &body) {
		return
	}
	if err := api.engine.RegisterTemplate(r.Context(), body.toDomain()); err != nil {
		api.writeDomainError(w, r, err)
		return
	}
	api.writeJSON(w, http.StatusCreated, map[string]any{"template_id": strings.TrimSpace(body.ID)})
}

func (api *studioAPI) handleGetTemplate(w http.ResponseWriter, r *http.Request) {
	template, ok, err := api.engine.GetTemplate(r.Context(), r.PathValue("id"))
	if err != nil {
		api.writeDomainError(w, r, err)
		return
	}
	if !ok {
		api.writeError(w, r, http.StatusNotFound, "not_found")
		return
	}
	api.writeJSON(w, http.StatusOK, templateFromDomain(template))
}

func (api *studioAPI) handleListTemplates(w http.ResponseWriter, r *http.Request) {
	var (
		templates []domain.PromptTemplate
		err       error
	)
	if guardianID := strings.TrimSpace(r.URL.Query().Get("guardian_id")); guardianID != "" {
		templates, err = api.engine.TemplatesByGuardian(r.Context(), guardianID)
	} else {
		templates, err = api.engine.TemplatesByType(r.Context(), domain.ContentType(strings.TrimSpace(r.URL.Query().Get("type"))))
	}
	if err != nil {
		api.writeDomainError(w, r, err)
		return
	}
	out := make([]templateBody, 0, len(templates))
	for _, t := range templates {
		out = append(out, templateFromDomain(t))
	}
	api.writeJSON(w, http.StatusOK, map[string]any{"templates": out})
}

type promptResponse struct {
	TemplateID string            `json:"template_id"`
	Text       string            `json:"text"`
	Negative   string            `json:"negative,omitempty"`
	Variables  map[string]string `json:"variables,omitempty"`
	Context    map[string]string `json:"context,omitempty"`
	CreatedAt  time.Time         `json:"created_at"`
}

func promptFromDomain(p domain.GeneratedPrompt) promptResponse {
	return promptResponse{
		TemplateID: p.TemplateID,
		Text:       p.Text,
		Negative:   p.Negative,
		Variables:  p.Variables,
		Context:    p.Context,
		CreatedAt:  p.CreatedAt,
	}
}

func (api *studioAPI) handleGeneratePrompt(w http.ResponseWriter, r *http.Request) {
	var body struct {
		TemplateID string            `json:"template_id"`
		Variables  map[string]string `json:"variables"`
		Context    map[string]string `json:"context"`
	}
	if !api.decodeJSON(w, r, &body) {
		return
	}
	prompt, err := api.engine.Generate(r.Context(), body.TemplateID, body.Variables, body.Context)
	if err != nil {
		api.writeDomainError(w, r, err)
		return
	}
	api.writeJSON(w, http.StatusOK, promptFromDomain(prompt))
}

func (api *studioAPI) handleGenerateForGuardian(w http.ResponseWriter, r *http.Request) {
	var body struct {
		GuardianID string            `json:"guardian_id"`
		Type       string            `json:"type"`
		Context    map[string]string `json:"context"`
	}
	if !api.decodeJSON(w, r, &body) {
		return
	}
	prompt, err := api.engine.GenerateForGuardian(r.Context(), body.GuardianID, domain.ContentType(strings.TrimSpace(body.Type)), body.Context)
	if err != nil {
		api.writeDomainError(w, r, err)
		return
	}
	api.writeJSON(w, http.StatusOK, promptFromDomain(prompt))
}

func (api *studioAPI) handleComposePrompt(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Kind       string `json:"kind"`
		Subject    string `json:"subject"`
		Name       string `json:"name"`
		Location   string `json:"location"`
		Mood       string `json:"mood"`
		Element    string `json:"element"`
		GuardianID string `json:"guardian_id"`
	}
	if !api.decodeJSON(w, r, &body) {
		return
	}

	var text string
	switch strings.TrimSpace(body.Kind) {
	case "image":
		text = api.engine.BuildImagePrompt(body.Subject, domain.Element(strings.TrimSpace(body.Element)), body.GuardianID)
	case "character":
		text = api.engine.BuildCharacterPrompt(body.Name, body.GuardianID)
	case "scene":
		text = api.engine.BuildScenePrompt(body.Location, domain.Element(strings.TrimSpace(body.Element)), body.Mood)
	default:
		api.writeError(w, r, http.StatusBadRequest, "invalid_request")
		return
	}
	api.writeJSON(w, http.StatusOK, map[string]any{"text": text})
}

func (api *studioAPI) handlePromptStats(w http.ResponseWriter, r *http.Request) {
	stats := api.engine.Stats()
	byType := make(map[string]int64, len(stats.GeneratedByType))
	for t, n := range stats.GeneratedByType {
		byType[string(t)] = n
	}
	api.writeJSON(w, http.StatusOK, map[string]any{
		"total":   stats.Total,
		"by_type": byType,
	})
}

type guardianBody struct {
	ID       string   `json:"id"`
	Name     string   `json:"name"`
	Gate     string   `json:"gate"`
	Element  string   `json:"element"`
	Keywords []string `json:"keywords"`
}

func guardianFromDomain(g domain.Guardian) guardianBody {
	return guardianBody{
		ID:       g.ID,
		Name:     g.Name,
		Gate:     g.Gate,
		Element:  string(g.Element),
		Keywords: g.Keywords,
	}
}

func (api *studioAPI) handleListGuardians(w http.ResponseWriter, r *http.Request) {
	out := make([]guardianBody, 0, len(api.roster))
	for _, id := range api.roster.IDs() {
		out = append(out, guardianFromDomain(api.roster[id]))
	}
	api.writeJSON(w, http.StatusOK, map[string]any{"guardians": out})
}

func (api *studioAPI) handleGetGuardian(w http.ResponseWriter, r *http.Request) {
	g, ok := api.roster.Lookup(r.PathValue("id"))
	if !ok {
		api.writeError(w, r, http.StatusNotFound, "not_found")
		return
	}
	api.writeJSON(w, http.StatusOK, guardianFromDomain(g))
}

type provenanceBody struct {
	TemplateID string `json:"template_id,omitempty"`
	PromptText string `json:"prompt_text,omitempty"`
	Model      string `json:"model,omitempty"`
}

type assetBody struct {
	ID          string          `json:"id,omitempty"`
	Type        string          `json:"type"`
	Name        string          `json:"name"`
	Description string          `json:"description,omitempty"`
	Content     string          `json:"content,omitempty"`
	Tags        []string        `json:"tags,omitempty"`
	GuardianID  string          `json:"guardian_id,omitempty"`
	Gate        string          `json:"gate,omitempty"`
	Element     string          `json:"element,omitempty"`
	ParentID    string          `json:"parent_id,omitempty"`
	Metadata    domain.Metadata `json:"metadata,omitempty"`
	Provenance  *provenanceBody `json:"provenance,omitempty"`
	CreatedAt   time.Time       `json:"created_at,omitempty"`
	UpdatedAt   time.Time       `json:"updated_at,omitempty"`
}

func assetFromDomain(a domain.Asset) assetBody {
	body := assetBody{
		ID:          a.ID,
		Type:        string(a.Type),
		Name:        a.Name,
		Description: a.Description,
		Content:     a.Content,
		Tags:        a.Tags,
		GuardianID:  a.GuardianID,
		Gate:        a.Gate,
		Element:     string(a.Element),
		ParentID:    a.ParentID,
		Metadata:    a.Metadata,
		CreatedAt:   a.CreatedAt,
		UpdatedAt:   a.UpdatedAt,
	}
	if a.Provenance != nil {
		body.Provenance = &provenanceBody{
			TemplateID: a.Provenance.TemplateID,
			PromptText: a.Provenance.PromptText,
			Model:      a.Provenance.Model,
		}
	}
	return body
}

func (b assetBody) toDraft() domain.Asset {
	draft := domain.Asset{
		Type:        domain.ContentType(strings.TrimSpace(b.Type)),
		Name:        strings.TrimSpace(b.Name),
		Description: b.Description,
		Content:     b.Content,
		Tags:        b.Tags,
		GuardianID:  strings.TrimSpace(b.GuardianID),
		Gate:        strings.TrimSpace(b.Gate),
		Element:     domain.Element(strings.TrimSpace(b.Element)),
		ParentID:    strings.TrimSpace(b.ParentID),
		Metadata:    b.Metadata,
	}
	if b.Provenance != nil {
		draft.Provenance = &domain.Provenance{
			TemplateID: strings.TrimSpace(b.Provenance.TemplateID),
			PromptText: b.Provenance.PromptText,
			Model:      strings.TrimSpace(b.Provenance.Model),
		}
	}
	return draft
}

type assetPatchBody struct {
	Name        *string         `json:"name"`
	Description *string         `json:"description"`
	Content     *string         `json:"content"`
	Type        *string         `json:"type"`
	Tags        []string        `json:"tags"`
	GuardianID  *string         `json:"guardian_id"`
	Gate        *string         `json:"gate"`
	Element     *string         `json:"element"`
	Metadata    domain.Metadata `json:"metadata"`
	Provenance  *provenanceBody `json:"provenance"`
}

func (b assetPatchBody) toPatch() vault.AssetPatch {
	patch := vault.AssetPatch{
		Name:        b.Name,
		Description: b.Description,
		Content:     b.Content,
		Tags:        b.Tags,
		GuardianID:  b.GuardianID,
		Gate:        b.Gate,
		Metadata:    b.Metadata,
	}
	if b.Type != nil {
		t := domain.ContentType(strings.TrimSpace(*b.Type))
		patch.Type = &t
	}
	if b.Element != nil {
		e := domain.Element(strings.TrimSpace(*b.Element))
		patch.Element = &e
	}
	if b.Provenance != nil {
		patch.Provenance = &domain.Provenance{
			TemplateID: strings.TrimSpace(b.Provenance.TemplateID),
			PromptText: b.Provenance.PromptText,
			Model:      strings.TrimSpace(b.Provenance.Model),
		}
	}
	return patch
}

func (api *studioAPI) handleStoreAsset(w http.ResponseWriter, r *http.Request) {
	var body assetBody
	if !api.decodeJSON(w, r, &body) {
		return
	}
	asset, err := api.vault.Store(r.Context(), body.toDraft())
	if err != nil {
		api.writeDomainError(w, r, err)
		return
	}
	api.writeJSON(w, http.StatusCreated, assetFromDomain(asset))
}

func (api *studioAPI) handleGetAsset(w http.ResponseWriter, r *http.Request) {
	asset, ok, err := api.vault.Get(r.Context(), r.PathValue("id"))
	if err != nil {
		api.writeDomainError(w, r, err)
		return
	}
	if !ok {
		api.writeError(w, r, http.StatusNotFound, "not_found")
		return
	}
	api.writeJSON(w, http.StatusOK, assetFromDomain(asset))
}

func (api *studioAPI) handleUpdateAsset(w http.ResponseWriter, r *http.Request) {
	var body assetPatchBody
	if !api.decodeJSON(w, r, &body) {
		return
	}
	asset, err := api.vault.Update(r.Context(), r.PathValue("id"), body.toPatch())
	if err != nil {
		api.writeDomainError(w, r, err)
		return
	}
	api.writeJSON(w, http.StatusOK, assetFromDomain(asset))
}

func (api *studioAPI) handleDeleteAsset(w http.ResponseWriter, r *http.Request) {
	if err := api.vault.Delete(r.Context(), r.PathValue("id")); err != nil {
		api.writeDomainError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (api *studioAPI) handleQueryAssets(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	filter := repo.AssetFilter{
		Type:       domain.ContentType(strings.TrimSpace(q.Get("type"))),
		GuardianID: strings.TrimSpace(q.Get("guardian_id")),
		Element:    domain.Element(strings.TrimSpace(q.Get("element"))),
		Search:     strings.TrimSpace(q.Get("search")),
		OrderBy:    repo.OrderBy(strings.TrimSpace(q.Get("order_by"))),
		Offset:     parseIntQuery(r, "offset", 0),
		Limit:      parseIntQuery(r, "limit", 0),
	}
	if tags := strings.TrimSpace(q.Get("tags")); tags != "" {
		for _, tag := range strings.Split(tags, ",") {
			if tag = strings.TrimSpace(tag); tag != "" {
				filter.Tags = append(filter.Tags, tag)
			}
		}
	}

	assets, err := api.vault.Query(r.Context(), filter)
	if err != nil {
		api.writeDomainError(w, r, err)
		return
	}
	out := make([]assetBody, 0, len(assets))
	for _, a := range assets {
		out = append(out, assetFromDomain(a))
	}
	api.writeJSON(w, http.StatusOK, map[string]any{"assets": out})
}

func (api *studioAPI) handleCreateVariation(w http.ResponseWriter, r *http.Request) {
	var body assetPatchBody
	if !api.decodeJSON(w, r, &body) {
		return
	}
	child, err := api.vault.CreateVariation(r.Context(), r.PathValue("id"), body.toPatch())
	if err != nil {
		api.writeDomainError(w, r, err)
		return
	}
	api.writeJSON(w, http.StatusCreated, assetFromDomain(child))
}

func (api *studioAPI) handleGetVariations(w http.ResponseWriter, r *http.Request) {
	variations, err := api.vault.GetVariations(r.Context(), r.PathValue("id"))
	if err != nil {
		api.writeDomainError(w, r, err)
		return
	}
	out := make([]assetBody, 0, len(variations))
	for _, a := range variations {
		out = append(out, assetFromDomain(a))
	}
	api.writeJSON(w, http.StatusOK, map[string]any{"variations": out})
}

func (api *studioAPI) handleExportAsset(w http.ResponseWriter, r *http.Request) {
	bundle, err := api.vault.Export(r.Context(), r.PathValue("id"))
	if err != nil {
		api.writeDomainError(w, r, err)
		return
	}
	api.writeJSON(w, http.StatusOK, map[string]any{
		"asset":           assetFromDomain(bundle.Asset),
		"exported_at":     bundle.ExportedAt,
		"has_parent":      bundle.HasParent,
		"variation_count": bundle.VariationCount,
	})
}

func (api *studioAPI) handlePutPayload(w http.ResponseWriter, r *http.Request) {
	if api.payloads == nil {
		api.writeError(w, r, http.StatusServiceUnavailable, "object_store_disabled")
		return
	}
	id := r.PathValue("id")
	_, ok, err := api.vault.Get(r.Context(), id)
	if err != nil {
		api.writeDomainError(w, r, err)
		return
	}
	if !ok {
		api.writeError(w, r, http.StatusNotFound, "not_found")
		return
	}

	contentType := r.Header.Get("Content-Type")
	if contentType == "" {
		contentType = "application/octet-stream"
	}
	key := objectstore.PayloadKey(id)
	if err := api.payloads.Put(r.Context(), key, r.Body, r.ContentLength, contentType); err != nil {
		api.logger.Error("payload upload failed", "asset_id", id, "error", err)
		api.writeError(w, r, http.StatusBadGateway, "object_store_error")
		return
	}
	api.writeJSON(w, http.StatusCreated, map[string]any{"key": key})
}

func (api *studioAPI) handleGetPayload(w http.ResponseWriter, r *http.Request) {
	if api.payloads == nil {
		api.writeError(w, r, http.StatusServiceUnavailable, "object_store_disabled")
		return
	}
	id := r.PathValue("id")
	body, info, err := api.payloads.Open(r.Context(), objectstore.PayloadKey(id))
	if err != nil {
		api.writeError(w, r, http.StatusNotFound, "not_found")
		return
	}
	defer body.Close()

	if info.ContentType != "" {
		w.Header().Set("Content-Type", info.ContentType)
	}
	if info.Size > 0 {
		w.Header().Set("Content-Length", strconv.FormatInt(info.Size, 10))
	}
	w.WriteHeader(http.StatusOK)
	if _, err := io.Copy(w, body); err != nil {
		api.logger.Error("payload download interrupted", "asset_id", id, "error", err)
	}
}

func (api *studioAPI) handleDeletePayload(w http.ResponseWriter, r *http.Request) {
	if api.payloads == nil {
		api.writeError(w, r, http.StatusServiceUnavailable, "object_store_disabled")
		return
	}
	id := r.PathValue("id")
	if err := api.payloads.Delete(r.Context(), objectstore.PayloadKey(id)); err != nil {
		api.logger.Error("payload delete failed", "asset_id", id, "error", err)
		api.writeError(w, r, http.StatusBadGateway, "object_store_error")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (api *studioAPI) handleAssetStats(w http.ResponseWriter, r *http.Request) {
	stats, err := api.vault.Stats(r.Context())
	if err != nil {
		api.writeDomainError(w, r, err)
		return
	}
	byType := make(map[string]int, len(stats.ByType))
	for t, n := range stats.ByType {
		byType[string(t)] = n
	}
	byElement := make(map[string]int, len(stats.ByElement))
	for e, n := range stats.ByElement {
		byElement[string(e)] = n
	}
	api.writeJSON(w, http.StatusOK, map[string]any{
		"total":       stats.Total,
		"by_type":     byType,
		"by_guardian": stats.ByGuardian,
		"by_element":  byElement,
	})
}

type criteriaBody struct {
	MinQuality           int  `json:"min_quality"`
	MinAlignment         int  `json:"min_alignment"`
	AutoApproveThreshold int  `json:"auto_approve_threshold"`
	RequireGuardianFit   bool `json:"require_guardian_fit"`
}

func (b criteriaBody) toDomain() domain.CurationCriteria {
	return domain.CurationCriteria{
		MinQuality:           b.MinQuality,
		MinAlignment:         b.MinAlignment,
		AutoApproveThreshold: b.AutoApproveThreshold,
		RequireGuardianFit:   b.RequireGuardianFit,
	}
}

type curationResultBody struct {
	AssetID     string    `json:"asset_id"`
	Quality     int       `json:"quality"`
	Alignment   int       `json:"alignment"`
	Originality int       `json:"originality"`
	GuardianFit int       `json:"guardian_fit"`
	Overall     int       `json:"overall"`
	Feedback    []string  `json:"feedback,omitempty"`
	Approved    bool      `json:"approved"`
	CuratorID   string    `json:"curator_id"`
	EvaluatedAt time.Time `json:"evaluated_at"`
}

func curationFromDomain(r domain.CurationResult) curationResultBody {
	return curationResultBody{
		AssetID:     r.AssetID,
		Quality:     r.Quality,
		Alignment:   r.Alignment,
		Originality: r.Originality,
		GuardianFit: r.GuardianFit,
		Overall:     r.Overall,
		Feedback:    r.Feedback,
		Approved:    r.Approved,
		CuratorID:   r.CuratorID,
		EvaluatedAt: r.EvaluatedAt,
	}
}

func (api *studioAPI) handleEvaluate(w http.ResponseWriter, r *http.Request) {
	var body struct {
		AssetID  string        `json:"asset_id"`
		Criteria *criteriaBody `json:"criteria"`
	}
	if !api.decodeJSON(w, r, &body) {
		return
	}
	asset, ok, err := api.vault.Get(r.Context(), body.AssetID)
	if err != nil {
		api.writeDomainError(w, r, err)
		return
	}
	if !ok {
		api.writeError(w, r, http.StatusNotFound, "not_found")
		return
	}

	var criteria *domain.CurationCriteria
	if body.Criteria != nil {
		c := body.Criteria.toDomain()
		criteria = &c
	}
	api.writeJSON(w, http.StatusOK, curationFromDomain(api.curator.Evaluate(asset, criteria)))
}

func (api *studioAPI) handleBatchEvaluate(w http.ResponseWriter, r *http.Request) {
	var body struct {
		AssetIDs []string      `json:"asset_ids"`
		Criteria *criteriaBody `json:"criteria"`
	}
	if !api.decodeJSON(w, r, &body) {
		return
	}

	assets := make([]domain.Asset, 0, len(body.AssetIDs))
	for _, id := range body.AssetIDs {
		asset, ok, err := api.vault.Get(r.Context(), id)
		if err != nil {
			api.writeDomainError(w, r, err)
			return
		}
		if !ok {
			api.writeError(w, r, http.StatusNotFound, "not_found")
			return
		}
		assets = append(assets, asset)
	}

	var criteria *domain.CurationCriteria
	if body.Criteria != nil {
		c := body.Criteria.toDomain()
		criteria = &c
	}
	results := api.curator.BatchEvaluate(assets, criteria)
	out := make([]curationResultBody, 0, len(results))
	for _, res := range results {
		out = append(out, curationFromDomain(res))
	}
	approved := make([]string, 0, len(results))
	for _, res := range curator.Approved(results) {
		approved = append(approved, res.AssetID)
	}
	api.writeJSON(w, http.StatusOK, map[string]any{
		"results":  out,
		"approved": approved,
	})
}

func (api *studioAPI) handleCurationStats(w http.ResponseWriter, r *http.Request) {
	stats := api.curator.Stats()
	api.writeJSON(w, http.StatusOK, map[string]any{
		"evaluated":        stats.Evaluated,
		"approved":         stats.Approved,
		"rejected":         stats.Rejected,
		"avg_quality":      stats.AvgQuality,
		"avg_alignment":    stats.AvgAlignment,
		"avg_originality":  stats.AvgOriginality,
		"avg_guardian_fit": stats.AvgGuardianFit,
		"avg_overall":      stats.AvgOverall,
	})
}

type sessionBody struct {
	ID          string     `json:"id"`
	GuardianID  string     `json:"guardian_id,omitempty"`
	Gate        string     `json:"gate,omitempty"`
	Element     string     `json:"element,omitempty"`
	Status      string     `json:"status"`
	StartedAt   time.Time  `json:"started_at"`
	CompletedAt *time.Time `json:"completed_at,omitempty"`
	AssetIDs    []string   `json:"asset_ids,omitempty"`
	PromptIDs   []string   `json:"prompt_ids,omitempty"`
}

func sessionFromDomain(s domain.CreativeSession) sessionBody {
	return sessionBody{
		ID:          s.ID,
		GuardianID:  s.GuardianID,
		Gate:        s.Gate,
		Element:     string(s.Element),
		Status:      string(s.Status),
		StartedAt:   s.StartedAt,
		CompletedAt: s.CompletedAt,
		AssetIDs:    s.AssetIDs,
		PromptIDs:   s.PromptIDs,
	}
}

func (api *studioAPI) handleStartSession(w http.ResponseWriter, r *http.Request) {
	var body struct {
		GuardianID string `json:"guardian_id"`
		Gate       string `json:"gate"`
		Element    string `json:"element"`
	}
	if !api.decodeJSON(w, r, &body) {
		return
	}
	s, err := api.sessions.StartSession(r.Context(), session.StartOptions{
		GuardianID: body.GuardianID,
		Gate:       body.Gate,
		Element:    domain.Element(strings.TrimSpace(body.Element)),
	})
	if err != nil {
		api.writeDomainError(w, r, err)
		return
	}
	api.writeJSON(w, http.StatusCreated, sessionFromDomain(s))
}

func (api *studioAPI) handleListSessions(w http.ResponseWriter, r *http.Request) {
	filter := repo.SessionFilter{Status: domain.SessionStatus(strings.TrimSpace(r.URL.Query().Get("status")))}
	sessions, err := api.sessions.ListSessions(r.Context(), filter)
	if err != nil {
		api.writeDomainError(w, r, err)
		return
	}
	out := make([]sessionBody, 0, len(sessions))
	for _, s := range sessions {
		out = append(out, sessionFromDomain(s))
	}
	api.writeJSON(w, http.StatusOK, map[string]any{"sessions": out})
}

func (api *studioAPI) handleActiveSession(w http.ResponseWriter, r *http.Request) {
	s, ok, err := api.sessions.GetActiveSession(r.Context())
	if err != nil {
		api.writeDomainError(w, r, err)
		return
	}
	if !ok {
		api.writeError(w, r, http.StatusNotFound, "no_active_session")
		return
	}
	api.writeJSON(w, http.StatusOK, sessionFromDomain(s))
}

func (api *studioAPI) handleGetSession(w http.ResponseWriter, r *http.Request) {
	s, ok, err := api.sessions.GetSession(r.Context(), r.PathValue("id"))
	if err != nil {
		api.writeDomainError(w, r, err)
		return
	}
	if !ok {
		api.writeError(w, r, http.StatusNotFound, "not_found")
		return
	}
	api.writeJSON(w, http.StatusOK, sessionFromDomain(s))
}

func (api *studioAPI) handleSessionAddAsset(w http.ResponseWriter, r *http.Request) {
	var body struct {
		AssetID string `json:"asset_id"`
	}
	if !api.decodeJSON(w, r, &body) {
		return
	}
	s, err := api.sessions.AddAssetToSession(r.Context(), r.PathValue("id"), body.AssetID)
	if err != nil {
		api.writeDomainError(w, r, err)
		return
	}
	api.writeJSON(w, http.StatusOK, sessionFromDomain(s))
}

func (api *studioAPI) handleSessionAddPrompt(w http.ResponseWriter, r *http.Request) {
	var body struct {
		PromptID string `json:"prompt_id"`
	}
	if !api.decodeJSON(w, r, &body) {
		return
	}
	s, err := api.sessions.AddPromptToSession(r.Context(), r.PathValue("id"), body.PromptID)
	if err != nil {
		api.writeDomainError(w, r, err)
		return
	}
	api.writeJSON(w, http.StatusOK, sessionFromDomain(s))
}

func (api *studioAPI) handlePauseSession(w http.ResponseWriter, r *http.Request) {
	s, err := api.sessions.PauseSession(r.Context(), r.PathValue("id"))
	if err != nil {
		api.writeDomainError(w, r, err)
		return
	}
	api.writeJSON(w, http.StatusOK, sessionFromDomain(s))
}

func (api *studioAPI) handleResumeSession(w http.ResponseWriter, r *http.Request) {
	s, err := api.sessions.ResumeSession(r.Context(), r.PathValue("id"))
	if err != nil {
		api.writeDomainError(w, r, err)
		return
	}
	api.writeJSON(w, http.StatusOK, sessionFromDomain(s))
}

func (api *studioAPI) handleCompleteSession(w http.ResponseWriter, r *http.Request) {
	s, summary, err := api.sessions.CompleteSession(r.Context(), r.PathValue("id"))
	if err != nil {
		api.writeDomainError(w, r, err)
		return
	}
	api.writeJSON(w, http.StatusOK, map[string]any{
		"session": sessionFromDomain(s),
		"summary": map[string]any{
			"session_id":     summary.SessionID,
			"assets_created": summary.AssetsCreated,
			"prompts_used":   summary.PromptsUsed,
			"duration_ms":    summary.Duration.Milliseconds(),
			"duration":       summary.DurationHuman,
		},
	})
}

func (api *studioAPI) handleSessionStats(w http.ResponseWriter, r *http.Request) {
	stats, err := api.sessions.SessionStats(r.Context())
	if err != nil {
		api.writeDomainError(w, r, err)
		return
	}
	byStatus := make(map[string]int, len(stats.ByStatus))
	for status, n := range stats.ByStatus {
		byStatus[string(status)] = n
	}
	api.writeJSON(w, http.StatusOK, map[string]any{
		"total":          stats.Total,
		"by_status":      byStatus,
		"assets_touched": stats.AssetsTouched,
		"prompts_used":   stats.PromptsUsed,
	})
}

type remixNodeBody struct {
	ID          string    `json:"id"`
	CreationID  string    `json:"creation_id"`
	CreatorID   string    `json:"creator_id"`
	CreatorName string    `json:"creator_name,omitempty"`
	ParentID    string    `json:"parent_id"`
	ChildIDs    []string  `json:"child_ids,omitempty"`
	Type        string    `json:"type"`
	Changes     []string  `json:"changes,omitempty"`
	Generation  int       `json:"generation"`
	CreatedAt   time.Time `json:"created_at"`
	Arc         arcBody   `json:"arc"`
}

type arcBody struct {
	Original int `json:"original"`
	Parent   int `json:"parent"`
	Creator  int `json:"creator"`
	Platform int `json:"platform"`
}

func remixNodeFromDomain(n domain.RemixNode) remixNodeBody {
	return remixNodeBody{
		ID:          n.ID,
		CreationID:  n.CreationID,
		CreatorID:   n.CreatorID,
		CreatorName: n.CreatorName,
		ParentID:    n.ParentID,
		ChildIDs:    n.ChildIDs,
		Type:        string(n.Type),
		Changes:     n.Changes,
		Generation:  n.Generation,
		CreatedAt:   n.CreatedAt,
		Arc: arcBody{
			Original: n.Arc.Original,
			Parent:   n.Arc.Parent,
			Creator:  n.Arc.Creator,
			Platform: n.Arc.Platform,
		},
	}
}

type chainBody struct {
	ID             string          `json:"id"`
	RootCreationID string          `json:"root_creation_id"`
	RootCreatorID  string          `json:"root_creator_id"`
	Generation     int64           `json:"generation"`
	CreatedAt      time.Time       `json:"created_at"`
	LastRemixedAt  *time.Time      `json:"last_remixed_at,omitempty"`
	Nodes          []remixNodeBody `json:"nodes"`
}

func chainFromDomain(c domain.RemixChain) chainBody {
	body := chainBody{
		ID:             c.ID,
		RootCreationID: c.RootCreationID,
		RootCreatorID:  c.RootCreatorID,
		Generation:     c.Generation,
		CreatedAt:      c.CreatedAt,
		Nodes:          make([]remixNodeBody, 0, len(c.NodeOrder)),
	}
	if !c.LastRemixedAt.IsZero() {
		at := c.LastRemixedAt
		body.LastRemixedAt = &at
	}
	for _, creationID := range c.NodeOrder {
		body.Nodes = append(body.Nodes, remixNodeFromDomain(c.Nodes[creationID]))
	}
	return body
}

func (api *studioAPI) handleCreateChain(w http.ResponseWriter, r *http.Request) {
	var body struct {
		CreationID string `json:"creation_id"`
		CreatorID  string `json:"creator_id"`
	}
	if !api.decodeJSON(w, r, &body) {
		return
	}
	chain, err := api.remixes.CreateOriginalChain(r.Context(), body.CreationID, body.CreatorID)
	if err != nil {
		api.writeDomainError(w, r, err)
		return
	}
	api.writeJSON(w, http.StatusCreated, chainFromDomain(chain))
}

func (api *studioAPI) handleListChains(w http.ResponseWriter, r *http.Request) {
	chains, err := api.remixes.ListChains(r.Context())
	if err != nil {
		api.writeDomainError(w, r, err)
		return
	}
	out := make([]chainBody, 0, len(chains))
	for _, c := range chains {
		out = append(out, chainFromDomain(c))
	}
	api.writeJSON(w, http.StatusOK, map[string]any{"chains": out})
}

func (api *studioAPI) handleGetChain(w http.ResponseWriter, r *http.Request) {
	chain, ok, err := api.remixes.GetChain(r.Context(), r.PathValue("id"))
	if err != nil {
		api.writeDomainError(w, r, err)
		return
	}
	if !ok {
		api.writeError(w, r, http.StatusNotFound, "not_found")
		return
	}
	api.writeJSON(w, http.StatusOK, chainFromDomain(chain))
}

func (api *studioAPI) handleAddRemix(w http.ResponseWriter, r *http.Request) {
	var body struct {
		CreationID  string   `json:"creation_id"`
		CreatorID   string   `json:"creator_id"`
		CreatorName string   `json:"creator_name"`
		ParentID    string   `json:"parent_id"`
		Type        string   `json:"type"`
		Changes     []string `json:"changes"`
	}
	if !api.decodeJSON(w, r, &body) {
		return
	}
	node, err := api.remixes.AddRemix(r.Context(), r.PathValue("id"), remix.RemixInput{
		CreationID:  body.CreationID,
		CreatorID:   body.CreatorID,
		CreatorName: body.CreatorName,
		ParentID:    body.ParentID,
		Type:        domain.RemixType(strings.TrimSpace(body.Type)),
		Changes:     body.Changes,
	})
	if err != nil {
		api.writeDomainError(w, r, err)
		return
	}
	api.writeJSON(w, http.StatusCreated, remixNodeFromDomain(node))
}

type contributorBody struct {
	CreatorID   string `json:"creator_id"`
	CreatorName string `json:"creator_name,omitempty"`
	CreationID  string `json:"creation_id"`
	Role        string `json:"role"`
	Generation  int    `json:"generation"`
}

func contributorFromDomain(c domain.Contributor) contributorBody {
	return contributorBody{
		CreatorID:   c.CreatorID,
		CreatorName: c.CreatorName,
		CreationID:  c.CreationID,
		Role:        string(c.Role),
		Generation:  c.Generation,
	}
}

func (api *studioAPI) handleAttribution(w http.ResponseWriter, r *http.Request) {
	attribution, err := api.remixes.GenerateAttribution(
		r.Context(),
		r.PathValue("id"),
		r.PathValue("creation_id"),
		r.URL.Query().Get("original_creator_name"),
	)
	if err != nil {
		api.writeDomainError(w, r, err)
		return
	}

	contributors := make([]contributorBody, 0, len(attribution.Contributors))
	for _, c := range attribution.Contributors {
		contributors = append(contributors, contributorFromDomain(c))
	}
	shares := make([]map[string]any, 0, len(attribution.Shares))
	for _, rule := range attribution.Shares {
		shares = append(shares, map[string]any{
			"creator_id": rule.CreatorID,
			"percent":    rule.Percent,
			"kind":       string(rule.Kind),
		})
	}
	api.writeJSON(w, http.StatusOK, map[string]any{
		"creation_id":      attribution.CreationID,
		"original_creator": contributorFromDomain(attribution.OriginalCreator),
		"contributors":     contributors,
		"license":          attribution.License,
		"shares":           shares,
	})
}

func (api *studioAPI) handleChainStats(w http.ResponseWriter, r *http.Request) {
	stats, err := api.remixes.ChainStats(r.Context(), r.PathValue("id"))
	if err != nil {
		api.writeDomainError(w, r, err)
		return
	}
	api.writeJSON(w, http.StatusOK, map[string]any{
		"chain_id":            stats.ChainID,
		"total_remixes":       stats.TotalRemixes,
		"max_generation":      stats.MaxGeneration,
		"unique_creators":     stats.UniqueCreators,
		"deepest_creation_id": stats.DeepestCreationID,
		"estimated_arc":       stats.EstimatedArc,
	})
}

func (api *studioAPI) handleVisualizeChain(w http.ResponseWriter, r *http.Request) {
	tree, err := api.remixes.VisualizeChain(r.Context(), r.PathValue("id"))
	if err != nil {
		api.writeDomainError(w, r, err)
		return
	}
	api.writeJSON(w, http.StatusOK, map[string]any{"tree": tree})
}

func (api *studioAPI) handleSimilarity(w http.ResponseWriter, r *http.Request) {
	var body struct {
		AssetA string `json:"asset_a"`
		AssetB string `json:"asset_b"`
	}
	if !api.decodeJSON(w, r, &body) {
		return
	}

	a, ok, err := api.vault.Get(r.Context(), body.AssetA)
	if err != nil {
		api.writeDomainError(w, r, err)
		return
	}
	if !ok {
		api.writeError(w, r, http.StatusNotFound, "not_found")
		return
	}
	b, ok, err := api.vault.Get(r.Context(), body.AssetB)
	if err != nil {
		api.writeDomainError(w, r, err)
		return
	}
	if !ok {
		api.writeError(w, r, http.StatusNotFound, "not_found")
		return
	}

	result := remix.DetectSimilarity(a, b)
	api.writeJSON(w, http.StatusOK, map[string]any{
		"comparable":      result.Comparable,
		"score":           result.Score,
		"likely_remix":    result.LikelyRemix,
		"common_elements": result.CommonElements,
	})
}

func (api *studioAPI) decodeJSON(w http.ResponseWriter, r *http.Request, into any) bool {
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(into); err != nil {
		api.writeError(w, r, http.StatusBadRequest, "invalid_json")
		return false
	}
	return true
}

func (api *studioAPI) writeDomainError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, repo.ErrNotFound):
		api.writeError(w, r, http.StatusNotFound, "not_found")
	case errors.Is(err, repo.ErrActiveSessionExists):
		api.writeError(w, r, http.StatusConflict, "session_already_active")
	case errors.Is(err, domain.ErrInvalidTransition):
		api.writeError(w, r, http.StatusConflict, "invalid_transition")
	case errors.Is(err, promptengine.ErrNoTemplateFound):
		api.writeError(w, r, http.StatusNotFound, "no_template_found")
	default:
		api.writeError(w, r, http.StatusBadRequest, "invalid_request")
	}
}

func (api *studioAPI) writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	enc := json.NewEncoder(w)
	enc.SetEscapeHTML(true)
	_ = enc.Encode(body)
}

func (api *studioAPI) writeError(w http.ResponseWriter, r *http.Request, status int, code string) {
	api.writeJSON(w, status, map[string]any{
		"error":      code,
		"request_id": r.Header.Get("X-Request-Id"),
	})
}

func parseIntQuery(r *http.Request, key string, def int) int {
	v := strings.TrimSpace(r.URL.Query().Get(key))
	if v == "" {
		return def
	}
	parsed, err := strconv.Atoi(v)
	if err != nil {
		return def
	}
	return parsed
}
