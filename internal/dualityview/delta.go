// internal/dualityview/delta.go
package dualityview

import (
	"encoding/json"
	"fmt"

	"github.com/arwahdevops/oradelta/internal/delta"
)

type viewDocument struct {
	Properties      *delta.Properties `json:"properties"`
	TableTagsClause TagsClause        `json:"tableTagsClause"`
}

// FromDelta builds the duality tree of a changed view and the related
// schemas captured in its compMod.
func FromDelta(v *delta.View) (View, RelatedSchemas, error) {
	var doc viewDocument
	if len(v.Raw) > 0 {
		if err := json.Unmarshal(v.Raw, &doc); err != nil {
			return View{}, nil, fmt.Errorf("decode duality view %q: %w", v.Name, err)
		}
	}
	fields, err := ParseFields(doc.Properties)
	if err != nil {
		return View{}, nil, err
	}

	related := RelatedSchemas{}
	tableName := v.Schema.TableName
	if cm := v.Schema.CompMod; cm != nil && cm.CollectionData != nil {
		related, err = ParseRelatedSchemas(cm.CollectionData.RelatedSchemas)
		if err != nil {
			return View{}, nil, err
		}
		if tableName == "" && len(cm.CollectionData.EntityData) > 0 {
			tableName = cm.CollectionData.EntityData[0].EntityName()
		}
	}
	if tableName == "" {
		tableName = related[v.Schema.ViewOn].EntityName()
	}

	return View{
		Name:             v.Schema.ViewName(),
		SchemaName:       v.SchemaName(),
		TableName:        tableName,
		RootTableAlias:   v.Schema.RootTableAlias,
		OrReplace:        v.Schema.OrReplace,
		Force:            v.Schema.Force,
		Editionable:      v.Schema.Editionable,
		TableTags:        doc.TableTagsClause,
		Fields:           fields,
		RootCollectionID: v.Schema.ViewOn,
	}, related, nil
}
