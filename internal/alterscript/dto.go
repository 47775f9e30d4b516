// internal/alterscript/dto.go
package alterscript

import "strings"

// ModificationScript is a single statement fragment of a DTO.
type ModificationScript struct {
	Script       string `json:"script" yaml:"script"`
	IsDropScript bool   `json:"isDropScript" yaml:"isDropScript"`
}

// AlterScriptDto groups the fragments produced for one change.
type AlterScriptDto struct {
	Scripts     []ModificationScript `json:"scripts" yaml:"scripts"`
	IsActivated bool                 `json:"isActivated" yaml:"isActivated"`
}

// NewAlterScriptDto builds a DTO whose fragments share the same drop flag.
// Returns nil when no non-blank script remains.
func NewAlterScriptDto(scripts []string, isActivated, isDrop bool) *AlterScriptDto {
	fragments := make([]ModificationScript, 0, len(scripts))
	for _, s := range scripts {
		fragments = append(fragments, ModificationScript{Script: s, IsDropScript: isDrop})
	}
	return NewAlterScriptDtoFromScripts(fragments, isActivated)
}

// NewAlterScriptDtoFromScripts builds a DTO from prepared fragments.
func NewAlterScriptDtoFromScripts(scripts []ModificationScript, isActivated bool) *AlterScriptDto {
	return Prettify(&AlterScriptDto{Scripts: scripts, IsActivated: isActivated})
}

// Prettify trims every fragment and drops the blank ones. A DTO left
// without fragments collapses to nil.
func Prettify(dto *AlterScriptDto) *AlterScriptDto {
	if dto == nil {
		return nil
	}
	out := make([]ModificationScript, 0, len(dto.Scripts))
	for _, s := range dto.Scripts {
		script := strings.TrimSpace(s.Script)
		if script == "" {
			continue
		}
		out = append(out, ModificationScript{Script: script, IsDropScript: s.IsDropScript})
	}
	if len(out) == 0 {
		return nil
	}
	return &AlterScriptDto{Scripts: out, IsActivated: dto.IsActivated}
}

// HasDropScript reports whether any fragment is a drop statement.
func (d *AlterScriptDto) HasDropScript() bool {
	if d == nil {
		return false
	}
	for _, s := range d.Scripts {
		if s.IsDropScript {
			return true
		}
	}
	return false
}

// compact removes nil DTOs.
func compact(dtos []*AlterScriptDto) []*AlterScriptDto {
	out := dtos[:0:0]
	for _, d := range dtos {
		if d != nil {
			out = append(out, d)
		}
	}
	return out
}
