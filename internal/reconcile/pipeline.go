package reconcile

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/kapu/hololive-member-sync/internal/domain"
	"github.com/kapu/hololive-member-sync/pkg/errors"
)

// AmbiguityPolicy decides what happens when a schedule name matches more
// than one member.
type AmbiguityPolicy string

const (
	// AmbiguitySkip reports the conflict and gives the alias to nobody.
	AmbiguitySkip AmbiguityPolicy = "skip"
	// AmbiguityFirst gives the alias to the first candidate in registry order.
	AmbiguityFirst AmbiguityPolicy = "first"
)

func ParseAmbiguityPolicy(value string) (AmbiguityPolicy, error) {
	switch AmbiguityPolicy(strings.ToLower(strings.TrimSpace(value))) {
	case "", AmbiguitySkip:
		return AmbiguitySkip, nil
	case AmbiguityFirst:
		return AmbiguityFirst, nil
	default:
		return "", errors.NewValidationError("unknown ambiguity policy", "ambiguity", value)
	}
}

var passOrder = []string{PassNativeNames, PassAliases, PassKoreanNames, PassProfiles}

var passShortNames = map[string]string{
	"a": PassNativeNames,
	"b": PassAliases,
	"c": PassKoreanNames,
	"p": PassProfiles,
}

// DefaultPasses are the member passes; the profile pass is opt-in.
var DefaultPasses = []string{PassNativeNames, PassAliases, PassKoreanNames}

// ParsePasses reads a comma-separated pass list. Both pass names and the
// short forms a, b, c, p are accepted. An empty value yields DefaultPasses.
func ParsePasses(csv string) ([]string, error) {
	if strings.TrimSpace(csv) == "" {
		return append([]string(nil), DefaultPasses...), nil
	}

	var passes []string
	for _, part := range strings.Split(csv, ",") {
		name := strings.ToLower(strings.TrimSpace(part))
		if name == "" {
			continue
		}
		if full, ok := passShortNames[name]; ok {
			name = full
		}
		if !isKnownPass(name) {
			return nil, errors.NewValidationError("unknown pass", "passes", part)
		}
		passes = append(passes, name)
	}
	return passes, nil
}

func isKnownPass(name string) bool {
	for _, known := range passOrder {
		if known == name {
			return true
		}
	}
	return false
}

// Sources carries the external inputs of a run.
type Sources struct {
	Talents       []*domain.OfficialTalent
	ScheduleNames []*domain.ScheduleName
	Profiles      []*domain.HashtagProfile
}

type PipelineConfig struct {
	Resolver         *KoreanNameResolver
	Labels           *LabelNormalizer
	EnglishFixups    map[string]string
	ScheduleDenylist []string
	Ambiguity        AmbiguityPolicy
}

// Pipeline runs the reconciliation passes against a registry. Every pass is
// idempotent: a second run over the same inputs changes nothing.
type Pipeline struct {
	registry  *Registry
	resolver  *KoreanNameResolver
	labels    *LabelNormalizer
	fixups    map[string]string
	denylist  map[string]struct{}
	ambiguity AmbiguityPolicy
	logger    *zap.Logger
}

// NewPipeline wires a pipeline. registry may be nil when only the profile
// pass is going to run.
func NewPipeline(registry *Registry, cfg PipelineConfig, logger *zap.Logger) *Pipeline {
	if logger == nil {
		logger = zap.NewNop()
	}
	if cfg.Ambiguity == "" {
		cfg.Ambiguity = AmbiguitySkip
	}

	denylist := make(map[string]struct{}, len(cfg.ScheduleDenylist))
	for _, token := range cfg.ScheduleDenylist {
		denylist[token] = struct{}{}
	}

	return &Pipeline{
		registry:  registry,
		resolver:  cfg.Resolver,
		labels:    cfg.Labels,
		fixups:    copyTable(cfg.EnglishFixups),
		denylist:  denylist,
		ambiguity: cfg.Ambiguity,
		logger:    logger,
	}
}

// NewPipelineFromTables builds a pipeline from the loaded lookup tables.
// With applyOverrides false the authoritative Korean name table is ignored.
func NewPipelineFromTables(registry *Registry, tables *domain.Tables, applyOverrides bool, ambiguity AmbiguityPolicy, logger *zap.Logger) *Pipeline {
	var overrides map[string]string
	if applyOverrides {
		overrides = tables.KoreanNames.Overrides
	}

	return NewPipeline(registry, PipelineConfig{
		Resolver:         NewKoreanNameResolver(overrides, tables.KoreanNames.Romanization),
		Labels:           NewLabelNormalizer(tables.Labels.Rules, tables.Labels.HashtagLabels),
		EnglishFixups:    tables.Roster.EnglishFixups,
		ScheduleDenylist: tables.Roster.ScheduleDenylist,
		Ambiguity:        ambiguity,
	}, logger)
}

// Run executes the requested passes in canonical order (native names,
// aliases, Korean names, profiles). Cancellation is honoured between passes
// only; each finished pass is complete and safe to persist.
func (p *Pipeline) Run(ctx context.Context, src Sources, passes ...string) (*Report, error) {
	if len(passes) == 0 {
		passes = DefaultPasses
	}
	requested := make(map[string]bool, len(passes))
	for _, name := range passes {
		if !isKnownPass(name) {
			return nil, errors.NewContractError("pipeline", fmt.Sprintf("unknown pass %q", name))
		}
		requested[name] = true
	}

	report := &Report{RunID: uuid.NewString()}
	if p.registry != nil {
		report.RegistryNotes = p.registry.Notes()
	}

	p.logger.Info("Reconciliation run started",
		zap.String("run_id", report.RunID),
		zap.Strings("passes", passes),
		zap.String("ambiguity", string(p.ambiguity)),
	)

	for _, name := range passOrder {
		if !requested[name] {
			continue
		}
		if err := ctx.Err(); err != nil {
			return report, err
		}

		var (
			pass *PassReport
			err  error
		)
		switch name {
		case PassNativeNames:
			pass, err = p.SyncNativeNames(src.Talents)
		case PassAliases:
			pass, err = p.DiscoverAliases(src.ScheduleNames)
		case PassKoreanNames:
			pass, err = p.ResolveKoreanNames()
		case PassProfiles:
			pass, err = p.NormalizeProfiles(src.Profiles)
		}
		if err != nil {
			return report, err
		}
		report.Passes = append(report.Passes, pass)
	}

	report.Log(p.logger)
	return report, nil
}

// SyncNativeNames copies the roster's Japanese name onto the member with the
// same canonical name. The roster is authoritative, so this is a plain
// overwrite rather than a merge.
func (p *Pipeline) SyncNativeNames(talents []*domain.OfficialTalent) (*PassReport, error) {
	if p.registry == nil {
		return nil, errors.NewContractError("pipeline", "native name sync needs a registry")
	}

	pass := &PassReport{Pass: PassNativeNames}
	seen := make(map[string]bool, len(talents))

	for idx, talent := range talents {
		if talent == nil || strings.TrimSpace(talent.English) == "" || strings.TrimSpace(talent.Japanese) == "" {
			pass.Skipped++
			pass.note(NoteMalformedRecord, indexSubject(idx), "roster entry without english or japanese name")
			p.logger.Warn("Skipping malformed roster entry", zap.Int("index", idx))
			continue
		}

		name := talent.English
		if fixed, ok := p.fixups[name]; ok {
			name = fixed
		}
		if seen[name] {
			pass.Skipped++
			pass.note(NoteMalformedRecord, name, "duplicate roster entry")
			p.logger.Warn("Skipping duplicate roster entry", zap.String("member", name))
			continue
		}
		seen[name] = true

		member := p.registry.FindByName(name)
		if member == nil {
			pass.Unmatched++
			p.logger.Debug("Roster entry has no member record", zap.String("member", name))
			continue
		}

		old := member.NameJa
		if !p.registry.SetNameJa(member, talent.Japanese) {
			pass.Unchanged++
			continue
		}
		pass.Updated++
		p.logger.Info("Updated nameJa",
			zap.String("member", member.Name),
			zap.String("old", old),
			zap.String("new", member.NameJa),
		)
	}

	return pass, nil
}

// DiscoverAliases adds schedule names to the Japanese alias list of the
// member they match. Each sweep matches every name against a copy of the
// members taken at the start of the sweep and merges into the live records;
// sweeps repeat until one adds nothing, so the pass leaves the registry in
// a state a second run cannot change. The counters other than Added describe
// the final sweep.
func (p *Pipeline) DiscoverAliases(names []*domain.ScheduleName) (*PassReport, error) {
	if p.registry == nil {
		return nil, errors.NewContractError("pipeline", "alias discovery needs a registry")
	}

	pass := &PassReport{Pass: PassAliases}

	seen := make(map[string]bool, len(names))
	var pending []string
	for idx, entry := range names {
		if entry == nil || strings.TrimSpace(entry.MemberName) == "" {
			pass.Skipped++
			pass.note(NoteMalformedRecord, indexSubject(idx), "schedule entry without member name")
			continue
		}

		name := entry.MemberName
		if _, denied := p.denylist[name]; denied {
			pass.Filtered++
			continue
		}
		if seen[name] {
			continue
		}
		seen[name] = true
		pending = append(pending, name)
	}

	added := make(map[string]bool)
	for sweep := 1; ; sweep++ {
		result := p.aliasSweep(pending, added)
		pass.Added += result.added
		if result.added > 0 {
			p.logger.Debug("Alias sweep added aliases",
				zap.Int("sweep", sweep),
				zap.Int("added", result.added),
			)
			continue
		}

		pass.Unchanged = result.unchanged
		pass.Unmatched = result.unmatched
		pass.Ambiguous = len(result.ambiguous)
		for _, amb := range result.ambiguous {
			pass.note(NoteAmbiguousMatch, amb.name, strings.Join(amb.candidates, ", "))
			p.logger.Warn("Ambiguous schedule name",
				zap.String("name", amb.name),
				zap.Strings("candidates", amb.candidates),
				zap.String("policy", string(p.ambiguity)),
			)
		}
		break
	}

	return pass, nil
}

type ambiguousName struct {
	name       string
	candidates []string
}

type sweepResult struct {
	added     int
	unchanged int
	unmatched int
	ambiguous []ambiguousName
}

// aliasSweep runs one matching round over names. Names already added during
// this pass are not counted as unchanged or unmatched again.
func (p *Pipeline) aliasSweep(names []string, added map[string]bool) sweepResult {
	var result sweepResult

	live := p.registry.Usable()
	snapshot := make([]*domain.Member, len(live))
	liveOf := make(map[*domain.Member]*domain.Member, len(live))
	for i, member := range live {
		snapshot[i] = member.Clone()
		liveOf[snapshot[i]] = member
	}

	for _, name := range names {
		candidates := Candidates(name, domain.LangJapanese, snapshot)
		var target *domain.Member
		switch len(candidates) {
		case 0:
			if !added[name] {
				result.unmatched++
			}
			continue
		case 1:
			target = liveOf[candidates[0]]
		default:
			matched := make([]string, len(candidates))
			for i, c := range candidates {
				matched[i] = c.Name
			}
			result.ambiguous = append(result.ambiguous, ambiguousName{name: name, candidates: matched})
			if p.ambiguity != AmbiguityFirst {
				continue
			}
			target = liveOf[candidates[0]]
		}

		if !p.registry.AddAlias(target, domain.LangJapanese, name) {
			if !added[name] {
				result.unchanged++
			}
			continue
		}
		added[name] = true
		result.added++
		p.logger.Info("Added Japanese alias",
			zap.String("member", target.Name),
			zap.String("alias", name),
		)
	}

	return result
}

// ResolveKoreanNames writes the resolved Korean name back to every member
// whose current value differs.
func (p *Pipeline) ResolveKoreanNames() (*PassReport, error) {
	if p.registry == nil {
		return nil, errors.NewContractError("pipeline", "korean name resolution needs a registry")
	}
	if p.resolver == nil {
		return nil, errors.NewContractError("pipeline", "korean name resolver is not configured")
	}

	pass := &PassReport{Pass: PassKoreanNames}

	for _, member := range p.registry.Usable() {
		nameKo, source := p.resolver.Resolve(member)
		if source == SourceCanonical {
			pass.MissingMapping++
			pass.note(NoteMissingMapping, member.Name, "no Korean spelling known; using canonical name")
		}

		old := member.NameKo
		if !p.registry.SetNameKo(member, nameKo) {
			pass.Unchanged++
			continue
		}
		pass.Updated++
		p.logger.Info("Updated nameKo",
			zap.String("member", member.Name),
			zap.String("old", old),
			zap.String("new", nameKo),
			zap.String("source", string(source)),
		)
	}

	return pass, nil
}

// NormalizeProfiles rewrites the hashtag values of each profile. Updated and
// Unchanged count profiles; Skipped counts unreadable profiles and entries.
func (p *Pipeline) NormalizeProfiles(profiles []*domain.HashtagProfile) (*PassReport, error) {
	if p.labels == nil {
		return nil, errors.NewContractError("pipeline", "label normalizer is not configured")
	}

	pass := &PassReport{Pass: PassProfiles}

	for idx, profile := range profiles {
		if profile == nil {
			pass.Skipped++
			pass.note(NoteMalformedRecord, indexSubject(idx), "unreadable profile")
			continue
		}

		changed, malformed := p.labels.NormalizeProfile(profile)
		if malformed > 0 {
			pass.Skipped += malformed
			pass.note(NoteMalformedRecord, profile.ID, fmt.Sprintf("%d profile entries without label/value", malformed))
			p.logger.Warn("Profile has malformed entries",
				zap.String("profile", profile.ID),
				zap.Int("entries", malformed),
			)
		}

		if changed == 0 {
			pass.Unchanged++
			continue
		}
		pass.Updated++
		p.logger.Info("Normalized hashtag labels",
			zap.String("profile", profile.ID),
			zap.Int("entries", changed),
		)
	}

	return pass, nil
}
