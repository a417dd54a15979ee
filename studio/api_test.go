package main

import (
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/atelier-labs/atelier-go/internal/curator"
	"github.com/atelier-labs/atelier-go/internal/guardians"
	"github.com/atelier-labs/atelier-go/internal/platform/event"
	"github.com/atelier-labs/atelier-go/internal/promptengine"
	"github.com/atelier-labs/atelier-go/internal/remix"
	"github.com/atelier-labs/atelier-go/internal/repo/memory"
	"github.com/atelier-labs/atelier-go/internal/session"
	"github.com/atelier-labs/atelier-go/internal/vault"
)

func newTestMux(t *testing.T) *http.ServeMux {
	t.Helper()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	roster := guardians.Builtin()
	bus := event.NewBus()

	api := newStudioAPI(
		logger,
		promptengine.New(memory.NewTemplateRepository(), roster, logger),
		vault.New(memory.NewAssetRepository(), bus, logger),
		curator.New("curator-test", roster, logger),
		session.New(memory.NewSessionRepository(), bus, logger),
		remix.New(memory.NewChainRepository(), logger),
		roster,
		nil,
	)
	mux := http.NewServeMux()
	api.register(mux)
	return mux
}

func do(t *testing.T, mux *http.ServeMux, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	var rd io.Reader
	if body != "" {
		rd = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, "http://studio.test"+path, rd)
	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, req)
	return rec
}

func decode(t *testing.T, rec *httptest.ResponseRecorder, into any) {
	t.Helper()
	if err := json.Unmarshal(rec.Body.Bytes(), into); err != nil {
		t.Fatalf("decode response: %v (body %q)", err, rec.Body.String())
	}
}

func TestAssets_CreateGetUpdateDelete(t *testing.T) {
	mux := newTestMux(t)

	rec := do(t, mux, "POST", "/assets", `{"type":"image","name":"ember study","guardian_id":"kael","element":"fire","tags":["flame"]}`)
	if rec.Code != http.StatusCreated {
		t.Fatalf("create status=%d, body=%s", rec.Code, rec.Body.String())
	}
	var created assetBody
	decode(t, rec, &created)
	if created.ID == "" {
		t.Fatalf("created asset has no id")
	}

	rec = do(t, mux, "GET", "/assets/"+created.ID, "")
	if rec.Code != http.StatusOK {
		t.Fatalf("get status=%d", rec.Code)
	}
	var got assetBody
	decode(t, rec, &got)
	if got.Name != "ember study" || got.GuardianID != "kael" {
		t.Fatalf("got name=%q guardian=%q", got.Name, got.GuardianID)
	}

	rec = do(t, mux, "PATCH", "/assets/"+created.ID, `{"name":"ember study II"}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("patch status=%d, body=%s", rec.Code, rec.Body.String())
	}
	decode(t, rec, &got)
	if got.Name != "ember study II" {
		t.Fatalf("patched name=%q, want ember study II", got.Name)
	}

	rec = do(t, mux, "DELETE", "/assets/"+created.ID, "")
	if rec.Code != http.StatusNoContent {
		t.Fatalf("delete status=%d", rec.Code)
	}
	rec = do(t, mux, "GET", "/assets/"+created.ID, "")
	if rec.Code != http.StatusNotFound {
		t.Fatalf("get after delete status=%d, want 404", rec.Code)
	}
}

func TestAssets_UnknownIDIs404WithCode(t *testing.T) {
	mux := newTestMux(t)
	rec := do(t, mux, "GET", "/assets/ghost", "")
	if rec.Code != http.StatusNotFound {
		t.Fatalf("status=%d, want 404", rec.Code)
	}
	var body struct {
		Error string `json:"error"`
	}
	decode(t, rec, &body)
	if body.Error != "not_found" {
		t.Fatalf("error=%q, want not_found", body.Error)
	}
}

func TestAssets_InvalidJSONIs400(t *testing.T) {
	mux := newTestMux(t)
	rec := do(t, mux, "POST", "/assets", `{"type":"image",`)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status=%d, want 400", rec.Code)
	}
}

func TestAssets_VariationAndExport(t *testing.T) {
	mux := newTestMux(t)

	rec := do(t, mux, "POST", "/assets", `{"type":"image","name":"spark","description":"a single spark"}`)
	var parent assetBody
	decode(t, rec, &parent)

	rec = do(t, mux, "POST", "/assets/"+parent.ID+"/variations", `{"name":"spark at dusk"}`)
	if rec.Code != http.StatusCreated {
		t.Fatalf("variation status=%d, body=%s", rec.Code, rec.Body.String())
	}
	var child assetBody
	decode(t, rec, &child)
	if child.ParentID != parent.ID {
		t.Fatalf("child parent=%q, want %q", child.ParentID, parent.ID)
	}

	rec = do(t, mux, "GET", "/assets/"+parent.ID+"/variations", "")
	var listed struct {
		Variations []assetBody `json:"variations"`
	}
	decode(t, rec, &listed)
	if len(listed.Variations) != 1 {
		t.Fatalf("variations=%d, want 1", len(listed.Variations))
	}

	rec = do(t, mux, "GET", "/assets/"+parent.ID+"/export", "")
	var bundle struct {
		HasParent      bool `json:"has_parent"`
		VariationCount int  `json:"variation_count"`
	}
	decode(t, rec, &bundle)
	if bundle.HasParent || bundle.VariationCount != 1 {
		t.Fatalf("export has_parent=%v count=%d", bundle.HasParent, bundle.VariationCount)
	}
}

func TestAssets_QueryAndStats(t *testing.T) {
	mux := newTestMux(t)
	do(t, mux, "POST", "/assets", `{"type":"image","name":"a","guardian_id":"kael","element":"fire"}`)
	do(t, mux, "POST", "/assets", `{"type":"text","name":"b","guardian_id":"mira","element":"water"}`)

	rec := do(t, mux, "GET", "/assets?type=image", "")
	var listed struct {
		Assets []assetBody `json:"assets"`
	}
	decode(t, rec, &listed)
	if len(listed.Assets) != 1 || listed.Assets[0].Name != "a" {
		t.Fatalf("filtered assets=%+v", listed.Assets)
	}

	rec = do(t, mux, "GET", "/assets/stats", "")
	var stats struct {
		Total  int            `json:"total"`
		ByType map[string]int `json:"by_type"`
	}
	decode(t, rec, &stats)
	if stats.Total != 2 || stats.ByType["text"] != 1 {
		t.Fatalf("stats=%+v", stats)
	}
}

func TestAssets_PayloadUnavailableWithoutObjectStore(t *testing.T) {
	mux := newTestMux(t)
	rec := do(t, mux, "GET", "/assets/any/payload", "")
	if rec.Code != http.StatusServiceUnavailable {
		t.Fatalf("status=%d, want 503", rec.Code)
	}
	var body struct {
		Error string `json:"error"`
	}
	decode(t, rec, &body)
	if body.Error != "object_store_disabled" {
		t.Fatalf("error=%q, want object_store_disabled", body.Error)
	}
}

func TestTemplates_RegisterGenerate(t *testing.T) {
	mux := newTestMux(t)

	rec := do(t, mux, "POST", "/templates", `{"id":"tpl-1","name":"portrait","type":"image","body":"a portrait of {subject}","variables":["subject"]}`)
	if rec.Code != http.StatusCreated {
		t.Fatalf("register status=%d, body=%s", rec.Code, rec.Body.String())
	}

	rec = do(t, mux, "POST", "/prompts/generate", `{"template_id":"tpl-1","variables":{"subject":"a fox"}}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("generate status=%d, body=%s", rec.Code, rec.Body.String())
	}
	var prompt promptResponse
	decode(t, rec, &prompt)
	if !strings.Contains(prompt.Text, "a fox") {
		t.Fatalf("text=%q, want substitution of subject", prompt.Text)
	}

	rec = do(t, mux, "POST", "/prompts/generate", `{"template_id":"nope"}`)
	if rec.Code != http.StatusNotFound {
		t.Fatalf("missing template status=%d, want 404", rec.Code)
	}
}

func TestPrompts_Compose(t *testing.T) {
	mux := newTestMux(t)

	rec := do(t, mux, "POST", "/prompts/compose", `{"kind":"image","subject":"a lighthouse","element":"fire","guardian_id":"kael"}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("compose status=%d, body=%s", rec.Code, rec.Body.String())
	}
	var out struct {
		Text string `json:"text"`
	}
	decode(t, rec, &out)
	if !strings.Contains(out.Text, "a lighthouse") {
		t.Fatalf("text=%q, want subject included", out.Text)
	}

	rec = do(t, mux, "POST", "/prompts/compose", `{"kind":"sonnet"}`)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("unknown kind status=%d, want 400", rec.Code)
	}
}

func TestGuardians_ListAndGet(t *testing.T) {
	mux := newTestMux(t)

	rec := do(t, mux, "GET", "/guardians", "")
	var listed struct {
		Guardians []guardianBody `json:"guardians"`
	}
	decode(t, rec, &listed)
	if len(listed.Guardians) == 0 {
		t.Fatalf("no guardians in builtin roster")
	}

	rec = do(t, mux, "GET", "/guardians/kael", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("get kael status=%d", rec.Code)
	}
	rec = do(t, mux, "GET", "/guardians/nobody", "")
	if rec.Code != http.StatusNotFound {
		t.Fatalf("unknown guardian status=%d, want 404", rec.Code)
	}
}

func TestCuration_Evaluate(t *testing.T) {
	mux := newTestMux(t)

	rec := do(t, mux, "POST", "/assets", `{"type":"image","name":"ember","guardian_id":"kael","element":"fire","gate":"Forge"}`)
	var asset assetBody
	decode(t, rec, &asset)

	rec = do(t, mux, "POST", "/curation/evaluate", `{"asset_id":"`+asset.ID+`"}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("evaluate status=%d, body=%s", rec.Code, rec.Body.String())
	}
	var result curationResultBody
	decode(t, rec, &result)
	if result.AssetID != asset.ID || result.CuratorID != "curator-test" {
		t.Fatalf("result=%+v", result)
	}
	if result.Overall < 0 || result.Overall > 100 {
		t.Fatalf("overall=%d out of range", result.Overall)
	}

	rec = do(t, mux, "POST", "/curation/evaluate", `{"asset_id":"ghost"}`)
	if rec.Code != http.StatusNotFound {
		t.Fatalf("ghost asset status=%d, want 404", rec.Code)
	}
}

func TestSessions_LifecycleOverHTTP(t *testing.T) {
	mux := newTestMux(t)

	rec := do(t, mux, "POST", "/sessions", `{"guardian_id":"kael","element":"fire"}`)
	if rec.Code != http.StatusCreated {
		t.Fatalf("start status=%d, body=%s", rec.Code, rec.Body.String())
	}
	var s sessionBody
	decode(t, rec, &s)

	rec = do(t, mux, "POST", "/sessions", `{}`)
	if rec.Code != http.StatusConflict {
		t.Fatalf("second active status=%d, want 409", rec.Code)
	}
	var conflict struct {
		Error string `json:"error"`
	}
	decode(t, rec, &conflict)
	if conflict.Error != "session_already_active" {
		t.Fatalf("error=%q, want session_already_active", conflict.Error)
	}

	rec = do(t, mux, "POST", "/sessions/"+s.ID+"/assets", `{"asset_id":"asset-1"}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("add asset status=%d", rec.Code)
	}
	rec = do(t, mux, "POST", "/sessions/"+s.ID+"/complete", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("complete status=%d", rec.Code)
	}
	var completed struct {
		Summary struct {
			AssetsCreated int `json:"assets_created"`
		} `json:"summary"`
	}
	decode(t, rec, &completed)
	if completed.Summary.AssetsCreated != 1 {
		t.Fatalf("assets_created=%d, want 1", completed.Summary.AssetsCreated)
	}

	rec = do(t, mux, "POST", "/sessions/"+s.ID+"/resume", "")
	if rec.Code != http.StatusConflict {
		t.Fatalf("resume completed status=%d, want 409", rec.Code)
	}
	rec = do(t, mux, "GET", "/sessions/active", "")
	if rec.Code != http.StatusNotFound {
		t.Fatalf("active after complete status=%d, want 404", rec.Code)
	}
}

func TestChains_RemixAndAttribution(t *testing.T) {
	mux := newTestMux(t)

	rec := do(t, mux, "POST", "/chains", `{"creation_id":"c-root","creator_id":"alice"}`)
	if rec.Code != http.StatusCreated {
		t.Fatalf("create chain status=%d, body=%s", rec.Code, rec.Body.String())
	}
	var chain chainBody
	decode(t, rec, &chain)

	rec = do(t, mux, "POST", "/chains/"+chain.ID+"/remixes",
		`{"creation_id":"c-1","creator_id":"bob","creator_name":"Bob","parent_id":"c-root","type":"variation","changes":["palette"]}`)
	if rec.Code != http.StatusCreated {
		t.Fatalf("remix status=%d, body=%s", rec.Code, rec.Body.String())
	}
	var node remixNodeBody
	decode(t, rec, &node)
	if node.Generation != 1 || node.Arc.Creator != 65 {
		t.Fatalf("node generation=%d arc=%+v", node.Generation, node.Arc)
	}

	rec = do(t, mux, "POST", "/chains/"+chain.ID+"/remixes",
		`{"creation_id":"c-1","creator_id":"bob","parent_id":"c-root","type":"variation"}`)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("duplicate remix status=%d, want 400", rec.Code)
	}

	rec = do(t, mux, "GET", "/chains/"+chain.ID+"/attribution/c-1?original_creator_name=Alice", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("attribution status=%d, body=%s", rec.Code, rec.Body.String())
	}
	var attribution struct {
		License string `json:"license"`
		Shares  []struct {
			CreatorID string `json:"creator_id"`
			Percent   int    `json:"percent"`
		} `json:"shares"`
	}
	decode(t, rec, &attribution)
	if attribution.License == "" {
		t.Fatalf("attribution has no license")
	}
	total := 0
	for _, share := range attribution.Shares {
		total += share.Percent
	}
	if total != 100 {
		t.Fatalf("shares total=%d, want 100", total)
	}

	rec = do(t, mux, "GET", "/chains/"+chain.ID+"/stats", "")
	var stats struct {
		TotalRemixes int `json:"total_remixes"`
	}
	decode(t, rec, &stats)
	if stats.TotalRemixes != 1 {
		t.Fatalf("total_remixes=%d, want 1", stats.TotalRemixes)
	}

	rec = do(t, mux, "GET", "/chains/"+chain.ID+"/tree", "")
	var tree struct {
		Tree string `json:"tree"`
	}
	decode(t, rec, &tree)
	if !strings.Contains(tree.Tree, "c-root") || !strings.Contains(tree.Tree, "c-1") {
		t.Fatalf("tree=%q", tree.Tree)
	}
}

func TestSimilarity_OverHTTP(t *testing.T) {
	mux := newTestMux(t)

	rec := do(t, mux, "POST", "/assets", `{"type":"text","name":"a","content":"the ember glows in the dark"}`)
	var a assetBody
	decode(t, rec, &a)
	rec = do(t, mux, "POST", "/assets", `{"type":"text","name":"b","content":"the ember glows in the dark"}`)
	var b assetBody
	decode(t, rec, &b)

	rec = do(t, mux, "POST", "/similarity", `{"asset_a":"`+a.ID+`","asset_b":"`+b.ID+`"}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("similarity status=%d, body=%s", rec.Code, rec.Body.String())
	}
	var sim struct {
		Comparable  bool `json:"comparable"`
		Score       int  `json:"score"`
		LikelyRemix bool `json:"likely_remix"`
	}
	decode(t, rec, &sim)
	if !sim.Comparable || sim.Score != 100 || !sim.LikelyRemix {
		t.Fatalf("similarity=%+v, want identical match", sim)
	}
}
