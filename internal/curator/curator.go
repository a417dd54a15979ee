// Package curator scores assets against the canon and decides approval.
// Scoring is fixed arithmetic over observable asset fields, not a model.
package curator

import (
	"fmt"
	"log/slog"
	"math"
	"strings"
	"sync"
	"time"

	"github.com/atelier-labs/atelier-go/internal/domain"
	"github.com/atelier-labs/atelier-go/internal/guardians"
)

// guardianFitBar is the internal acceptability bar applied when criteria
// require guardian fit.
const guardianFitBar = 40

// Curator evaluates assets under a set of approval criteria. Safe for
// concurrent use.
type Curator struct {
	id     string
	roster guardians.Roster
	logger *slog.Logger
	now    func() time.Time

	mu       sync.Mutex
	defaults domain.CurationCriteria
	tally    tally
}

type tally struct {
	evaluated   int
	approved    int
	quality     int
	alignment   int
	originality int
	guardianFit int
	overall     int
}

// Stats reports evaluation counts and running sub-score averages.
type Stats struct {
	Evaluated      int
	Approved       int
	Rejected       int
	AvgQuality     float64
	AvgAlignment   float64
	AvgOriginality float64
	AvgGuardianFit float64
	AvgOverall     float64
}

func New(id string, roster guardians.Roster, logger *slog.Logger) *Curator {
	if logger == nil {
		logger = slog.Default()
	}
	return &Curator{
		id:       strings.TrimSpace(id),
		roster:   roster,
		logger:   logger,
		now:      time.Now,
		defaults: domain.DefaultCriteria(),
	}
}

// SetDefaultCriteria replaces the criteria used when Evaluate is called
// without an override.
func (c *Curator) SetDefaultCriteria(criteria domain.CurationCriteria) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.defaults = criteria
}

// DefaultCriteria returns the criteria currently applied by default.
func (c *Curator) DefaultCriteria() domain.CurationCriteria {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.defaults
}

// Evaluate scores one asset. A nil criteria argument applies the curator's
// default criteria.
func (c *Curator) Evaluate(asset domain.Asset, criteria *domain.CurationCriteria) domain.CurationResult {
	c.mu.Lock()
	crit := c.defaults
	c.mu.Unlock()
	if criteria != nil {
		crit = *criteria
	}

	vocab := c.roster.Vocabulary()
	quality := scoreQuality(asset)
	alignment := scoreAlignment(asset, vocab)
	originality := scoreOriginality(asset)
	guardianFit := scoreGuardianFit(asset, c.roster)
	overall := clampScore(int(math.Round(
		0.3*float64(quality) + 0.3*float64(alignment) + 0.2*float64(originality) + 0.2*float64(guardianFit))))

	approved := overall >= crit.AutoApproveThreshold &&
		quality >= crit.MinQuality &&
		alignment >= crit.MinAlignment &&
		(!crit.RequireGuardianFit || guardianFit >= guardianFitBar)

	result := domain.CurationResult{
		AssetID:     asset.ID,
		Quality:     quality,
		Alignment:   alignment,
		Originality: originality,
		GuardianFit: guardianFit,
		Overall:     overall,
		Feedback:    c.feedback(asset, crit, quality, alignment, originality, guardianFit, overall),
		Approved:    approved,
		CuratorID:   c.id,
		EvaluatedAt: c.now().UTC(),
	}

	c.mu.Lock()
	c.tally.evaluated++
	if approved {
		c.tally.approved++
	}
	c.tally.quality += quality
	c.tally.alignment += alignment
	c.tally.originality += originality
	c.tally.guardianFit += guardianFit
	c.tally.overall += overall
	c.mu.Unlock()

	c.logger.Debug("asset evaluated",
		"asset_id", asset.ID,
		"overall", overall,
		"approved", approved)

	return result
}

// BatchEvaluate scores every asset under the same criteria.
func (c *Curator) BatchEvaluate(assets []domain.Asset, criteria *domain.CurationCriteria) []domain.CurationResult {
	results := make([]domain.CurationResult, 0, len(assets))
	for _, asset := range assets {
		results = append(results, c.Evaluate(asset, criteria))
	}
	return results
}

// Approved filters a batch result down to the approved entries.
func Approved(results []domain.CurationResult) []domain.CurationResult {
	out := make([]domain.CurationResult, 0, len(results))
	for _, r := range results {
		if r.Approved {
			out = append(out, r)
		}
	}
	return out
}

// Rejected filters a batch result down to the rejected entries.
func Rejected(results []domain.CurationResult) []domain.CurationResult {
	out := make([]domain.CurationResult, 0, len(results))
	for _, r := range results {
		if !r.Approved {
			out = append(out, r)
		}
	}
	return out
}

func (c *Curator) Stats() Stats {
	c.mu.Lock()
	defer c.mu.Unlock()

	s := Stats{
		Evaluated: c.tally.evaluated,
		Approved:  c.tally.approved,
		Rejected:  c.tally.evaluated - c.tally.approved,
	}
	if c.tally.evaluated == 0 {
		return s
	}
	n := float64(c.tally.evaluated)
	s.AvgQuality = float64(c.tally.quality) / n
	s.AvgAlignment = float64(c.tally.alignment) / n
	s.AvgOriginality = float64(c.tally.originality) / n
	s.AvgGuardianFit = float64(c.tally.guardianFit) / n
	s.AvgOverall = float64(c.tally.overall) / n
	return s
}

// scoreQuality rewards substance: content length, description length, a
// non-empty metadata map and tag count, each capped.
func scoreQuality(a domain.Asset) int {
	score := 30
	score += min(20, len(a.Content)/25)
	score += min(15, len(strings.TrimSpace(a.Description))/10)
	if len(a.Metadata) > 0 {
		score += 10
	}
	score += min(25, 5*len(a.Tags))
	return clampScore(score)
}

// scoreAlignment rewards classification fields and canon-vocabulary tags.
func scoreAlignment(a domain.Asset, vocab map[string]struct{}) int {
	score := 20
	if strings.TrimSpace(a.GuardianID) != "" {
		score += 15
	}
	if a.Element.Valid() {
		score += 10
	}
	if strings.TrimSpace(a.Gate) != "" {
		score += 10
	}
	matches := 0
	for _, tag := range a.Tags {
		if _, ok := vocab[strings.ToLower(strings.TrimSpace(tag))]; ok {
			matches++
		}
	}
	score += min(45, 15*matches)
	return clampScore(score)
}

// scoreOriginality ties the base to description richness and penalizes
// derivative assets relative to roots with the same content.
func scoreOriginality(a domain.Asset) int {
	score := 30 + min(50, len(strings.TrimSpace(a.Description))/4)
	if strings.TrimSpace(a.ParentID) != "" {
		score -= 15
	}
	return clampScore(score)
}

// scoreGuardianFit is neutral without a guardian, low for an unknown one,
// and grows with keyword overlap against tags and description.
func scoreGuardianFit(a domain.Asset, roster guardians.Roster) int {
	id := strings.TrimSpace(a.GuardianID)
	if id == "" {
		return 50
	}
	g, ok := roster.Lookup(id)
	if !ok {
		return 25
	}

	desc := strings.ToLower(a.Description)
	matches := 0
	for _, kw := range g.Keywords {
		kw = strings.ToLower(strings.TrimSpace(kw))
		if kw == "" {
			continue
		}
		if strings.Contains(desc, kw) {
			matches++
			continue
		}
		for _, tag := range a.Tags {
			if strings.EqualFold(strings.TrimSpace(tag), kw) {
				matches++
				break
			}
		}
	}
	return clampScore(40 + min(60, 12*matches))
}

func (c *Curator) feedback(a domain.Asset, crit domain.CurationCriteria, quality, alignment, originality, guardianFit, overall int) []string {
	var out []string
	if quality < crit.MinQuality {
		out = append(out, "expand the content and description to give the piece more substance")
	}
	if len(a.Tags) == 0 {
		out = append(out, "add tags so the piece can be found and aligned")
	}
	if strings.TrimSpace(a.GuardianID) == "" {
		out = append(out, "assign a guardian to anchor the piece in the canon")
	} else if guardianFit < guardianFitBar {
		if g, ok := c.roster.Lookup(a.GuardianID); ok {
			out = append(out, fmt.Sprintf("lean into %s's domain, keywords such as %s", g.Name, strings.Join(g.Keywords[:min(3, len(g.Keywords))], ", ")))
		} else {
			out = append(out, fmt.Sprintf("guardian %q is not in the roster", strings.TrimSpace(a.GuardianID)))
		}
	}
	if alignment < crit.MinAlignment {
		out = append(out, "declare a gate and element and work canon vocabulary into the tags")
	}
	if originality < 40 && strings.TrimSpace(a.ParentID) != "" {
		out = append(out, "push the variation further from its parent")
	}
	if overall >= crit.AutoApproveThreshold {
		out = append(out, "strong work, cleared for the gallery")
	}
	return out
}

func clampScore(v int) int {
	if v < 0 {
		return 0
	}
	if v > 100 {
		return 100
	}
	return v
}
