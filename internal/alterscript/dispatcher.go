// internal/alterscript/dispatcher.go
package alterscript

import (
	"go.uber.org/zap"

	"github.com/arwahdevops/oradelta/internal/ddl"
	"github.com/arwahdevops/oradelta/internal/delta"
)

type synthesizer struct {
	t        ddl.Target
	defs     *delta.Definitions
	synonyms []delta.Synonym
	log      *zap.Logger
}

// Synthesize turns the comparison model of the requested level into an
// ordered list of statement DTOs.
func Synthesize(p *delta.Payload, level delta.Level, t ddl.Target) ([]*AlterScriptDto, error) {
	return synthesize(p, level, t, zap.NewNop())
}

func synthesize(p *delta.Payload, level delta.Level, t ddl.Target, log *zap.Logger) ([]*AlterScriptDto, error) {
	raw, err := p.ComparisonModel(level)
	if err != nil {
		return nil, err
	}
	model, err := delta.Normalize(raw)
	if err != nil {
		return nil, err
	}
	defs, err := p.Definitions()
	if err != nil {
		return nil, err
	}
	s := &synthesizer{t: t, defs: defs, synonyms: p.Synonyms(), log: log}
	return s.run(model)
}

// run dispatches in fixed order: containers, container sequences, types,
// collections, views, relationships.
func (s *synthesizer) run(m *delta.Model) ([]*AlterScriptDto, error) {
	var out []*AlterScriptDto
	out = append(out, s.containerScripts(m.Containers)...)
	out = append(out, s.containerSequenceScripts(m.Containers)...)

	udts, err := s.udtScripts(m.Udts)
	if err != nil {
		return nil, err
	}
	out = append(out, udts...)

	collections, err := s.collectionScripts(m.Collections)
	if err != nil {
		return nil, err
	}
	out = append(out, collections...)

	views, err := s.viewScripts(m.Views)
	if err != nil {
		return nil, err
	}
	out = append(out, views...)
	out = append(out, s.relationshipScripts(m.Relationships)...)

	s.log.Debug("Delta model dispatched",
		zap.Int("containers", len(m.Containers)),
		zap.Int("collections", len(m.Collections)),
		zap.Int("types", len(m.Udts)),
		zap.Int("views", len(m.Views)),
		zap.Int("relationships", len(m.Relationships)),
		zap.Int("dtos", len(out)))

	// Prettify lagi: handler bisa menghasilkan fragmen kosong
	result := make([]*AlterScriptDto, 0, len(out))
	for _, dto := range out {
		if dto = Prettify(dto); dto != nil {
			result = append(result, dto)
		}
	}
	return result, nil
}

func (s *synthesizer) udtScripts(udts []delta.Udt) ([]*AlterScriptDto, error) {
	var drops, creates, adds, removes, modifies []*AlterScriptDto
	for i := range udts {
		u := &udts[i]
		created := u.CompMod != nil && u.CompMod.Created
		deleted := u.CompMod != nil && u.CompMod.Deleted

		switch u.Kind {
		case delta.Added:
			if created {
				dto, err := s.createUdt(u)
				if err != nil {
					return nil, err
				}
				creates = append(creates, dto)
			}
			if u.OwnCompMod == nil && isObjectUdt(u) {
				dtos, err := s.addAttributes(u)
				if err != nil {
					return nil, err
				}
				adds = append(adds, dtos...)
			}
		case delta.Deleted:
			if deleted {
				drops = append(drops, s.dropUdt(u))
			}
			if u.OwnCompMod == nil && isObjectUdt(u) {
				removes = append(removes, s.dropAttributes(u)...)
			}
		case delta.Modified:
			if u.OwnCompMod == nil && isObjectUdt(u) {
				dtos, err := s.modifyAttributes(u)
				if err != nil {
					return nil, err
				}
				modifies = append(modifies, dtos...)
			}
		}
	}
	return concat(drops, creates, adds, removes, modifies), nil
}

func (s *synthesizer) collectionScripts(collections []delta.Collection) ([]*AlterScriptDto, error) {
	var creates, drops, modifies, adds, removes, changes []*AlterScriptDto
	fresh := s.newColumnsByTable(collections)
	for i := range collections {
		c := &collections[i]
		switch c.Kind {
		case delta.Added:
			if c.IsCreated() {
				dto, err := s.createTable(c)
				if err != nil {
					return nil, err
				}
				creates = append(creates, dto)
			}
			if c.ColumnLevel() {
				dtos, err := s.addColumns(c)
				if err != nil {
					return nil, err
				}
				adds = append(adds, dtos...)
			}
		case delta.Deleted:
			if c.IsDeleted() {
				drops = append(drops, s.dropTable(c))
			}
			if c.ColumnLevel() {
				removes = append(removes, s.dropColumns(c)...)
			}
		case delta.Modified:
			modifies = append(modifies, s.modifyTable(c, fresh)...)
			if c.ColumnLevel() {
				dtos, err := s.modifyColumns(c)
				if err != nil {
					return nil, err
				}
				changes = append(changes, dtos...)
			}
		}
	}
	return concat(creates, drops, modifies, adds, removes, changes), nil
}

// viewScripts: deletes before creates.
func (s *synthesizer) viewScripts(views []delta.View) ([]*AlterScriptDto, error) {
	var drops, creates []*AlterScriptDto
	for i := range views {
		v := &views[i]
		switch {
		case v.Kind == delta.Deleted:
			drops = append(drops, s.dropView(v))
		case v.Kind == delta.Added && v.Schema.CompMod != nil && v.Schema.CompMod.Created:
			dto, err := s.createView(v)
			if err != nil {
				return nil, err
			}
			creates = append(creates, dto)
		}
	}
	return concat(drops, creates), nil
}

func concat(groups ...[]*AlterScriptDto) []*AlterScriptDto {
	var out []*AlterScriptDto
	for _, g := range groups {
		out = append(out, g...)
	}
	return compact(out)
}
