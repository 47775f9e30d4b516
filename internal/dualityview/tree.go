// internal/dualityview/tree.go
package dualityview

import (
	"bytes"
	"encoding/json"
	"fmt"

	"github.com/arwahdevops/oradelta/internal/delta"
)

const (
	typeJoinSubquery  = "joinSubquery"
	typeFlexColumn    = "flexColumn"
	refTypeCollection = "collectionReference"
)

// TagsClause is the WITH (CHECK|ETAG|INSERT|UPDATE|DELETE) annotation of a
// table or column.
type TagsClause struct {
	Check  delta.Flag `json:"check"`
	Etag   delta.Flag `json:"etag"`
	Insert delta.Flag `json:"insert"`
	Update delta.Flag `json:"update"`
	Delete delta.Flag `json:"delete"`
}

// UnmarshalJSON accepts an object or a single element array.
func (c *TagsClause) UnmarshalJSON(data []byte) error {
	type plain TagsClause
	*c = TagsClause{}
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) == 0 {
		return nil
	}
	switch trimmed[0] {
	case '[':
		var list []plain
		if err := json.Unmarshal(trimmed, &list); err != nil {
			return err
		}
		if len(list) > 0 {
			*c = TagsClause(list[0])
		}
	case '{':
		var p plain
		if err := json.Unmarshal(trimmed, &p); err != nil {
			return err
		}
		*c = TagsClause(p)
	}
	return nil
}

// Node is one member of the duality view tree: *RegularField, *JoinSubquery
// or *FlexColumn.
type Node interface {
	node()
}

// Field is a named tree member in document order.
type Field struct {
	Name string
	Node Node
}

// RegularField projects one column of a related table.
type RegularField struct {
	Ref                  string
	RefID                string
	RefIDPath            []string
	RefType              string
	Code                 string
	ReferencedColumnName string
	ColumnTags           TagsClause
}

// JoinSubquery is a nested SELECT over a child table.
type JoinSubquery struct {
	Name                      string
	Subtype                   string
	SQLJSONFunction           string
	JoinedCollectionRefIDPath []string
	ChildTableAlias           string
	WhereClause               string
	UnnestSubquery            bool
	TableTags                 TagsClause
	Fields                    []Field
}

// FlexColumn is an untyped passthrough member.
type FlexColumn struct {
	Code string
}

func (*RegularField) node() {}
func (*JoinSubquery) node() {}
func (*FlexColumn) node()   {}

// rawNode covers every shape a tree member can take.
type rawNode struct {
	Type                      string            `json:"type"`
	FlexColumn                bool              `json:"flexColumn"`
	Ref                       string            `json:"ref"`
	RefID                     string            `json:"refId"`
	RefIDPath                 delta.StringList  `json:"refIdPath"`
	RefType                   string            `json:"refType"`
	Code                      string            `json:"code"`
	Name                      string            `json:"name"`
	ReferencedColumnName      string            `json:"referencedColumnName"`
	ColumnTagsClause          TagsClause        `json:"columnTagsClause"`
	Subtype                   string            `json:"subtype"`
	SQLJSONFunction           string            `json:"sqlJsonFunction"`
	JoinedCollectionRefIDPath delta.StringList  `json:"joinedCollectionRefIdPath"`
	ChildTableAlias           string            `json:"childTableAlias"`
	WhereClause               string            `json:"whereClause"`
	UnnestSubquery            bool              `json:"unnestSubquery"`
	TableTagsClause           TagsClause        `json:"tableTagsClause"`
	Properties                *delta.Properties `json:"properties"`
	Items                     json.RawMessage   `json:"items"`
}

type itemsNode struct {
	Properties *delta.Properties `json:"properties"`
}

// childProperties returns properties, falling back to items.properties
// (items may be one object or an array of them).
func (r rawNode) childProperties() (*delta.Properties, error) {
	if r.Properties.Len() > 0 {
		return r.Properties, nil
	}
	trimmed := bytes.TrimSpace(r.Items)
	if len(trimmed) == 0 {
		return nil, nil
	}
	switch trimmed[0] {
	case '{':
		var it itemsNode
		if err := json.Unmarshal(trimmed, &it); err != nil {
			return nil, err
		}
		return it.Properties, nil
	case '[':
		var list []itemsNode
		if err := json.Unmarshal(trimmed, &list); err != nil {
			return nil, err
		}
		if len(list) > 0 {
			return list[0].Properties, nil
		}
	}
	return nil, nil
}

func (r rawNode) isFlex() bool {
	return r.Type == typeFlexColumn || r.FlexColumn
}

func (r rawNode) isRegular() bool {
	rootOrObject := r.Ref != "" && len(r.RefIDPath) == 2 && r.RefType == refTypeCollection
	inArray := r.Ref != "" && r.RefID != ""
	return rootOrObject || inArray
}

// ParseFields decodes a properties map into tree members. Members that are
// neither a field, a subquery nor a flex column are skipped.
func ParseFields(props *delta.Properties) ([]Field, error) {
	var fields []Field
	for _, name := range props.Keys() {
		raw, _ := props.Raw(name)
		var r rawNode
		if err := json.Unmarshal(raw, &r); err != nil {
			return nil, fmt.Errorf("duality view member %q: %w", name, err)
		}

		switch {
		case r.isFlex():
			fields = append(fields, Field{Name: name, Node: &FlexColumn{Code: r.Code}})
		case r.isRegular():
			fields = append(fields, Field{Name: name, Node: &RegularField{
				Ref:                  r.Ref,
				RefID:                r.RefID,
				RefIDPath:            r.RefIDPath,
				RefType:              r.RefType,
				Code:                 r.Code,
				ReferencedColumnName: r.ReferencedColumnName,
				ColumnTags:           r.ColumnTagsClause,
			}})
		case r.Type == typeJoinSubquery:
			childProps, err := r.childProperties()
			if err != nil {
				return nil, fmt.Errorf("duality view member %q: %w", name, err)
			}
			children, err := ParseFields(childProps)
			if err != nil {
				return nil, err
			}
			fields = append(fields, Field{Name: name, Node: &JoinSubquery{
				Name:                      r.Name,
				Subtype:                   r.Subtype,
				SQLJSONFunction:           r.SQLJSONFunction,
				JoinedCollectionRefIDPath: r.JoinedCollectionRefIDPath,
				ChildTableAlias:           r.ChildTableAlias,
				WhereClause:               r.WhereClause,
				UnnestSubquery:            r.UnnestSubquery,
				TableTags:                 r.TableTagsClause,
				Fields:                    children,
			}})
		}
	}
	return fields, nil
}

// RelatedSchema is a table a duality view reads from.
type RelatedSchema struct {
	Properties     *delta.Properties `json:"properties"`
	BucketName     string            `json:"bucketName"`
	Code           string            `json:"code"`
	CollectionName string            `json:"collectionName"`
}

// EntityName is code, falling back to collectionName.
func (s RelatedSchema) EntityName() string {
	if s.Code != "" {
		return s.Code
	}
	return s.CollectionName
}

// ColumnByGUID finds the column name whose GUID matches.
func (s RelatedSchema) ColumnByGUID(guid string) (string, bool) {
	for _, name := range s.Properties.Keys() {
		raw, _ := s.Properties.Raw(name)
		var col struct {
			GUID string `json:"GUID"`
		}
		if err := json.Unmarshal(raw, &col); err != nil {
			continue
		}
		if col.GUID == guid {
			return name, true
		}
	}
	return "", false
}

// RelatedSchemas maps collection id to table.
type RelatedSchemas map[string]RelatedSchema

// ParseRelatedSchemas decodes the relatedSchemas side table; empty input
// yields an empty map.
func ParseRelatedSchemas(raw json.RawMessage) (RelatedSchemas, error) {
	out := RelatedSchemas{}
	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null")) {
		return out, nil
	}
	if err := json.Unmarshal(trimmed, &out); err != nil {
		return nil, fmt.Errorf("decode related schemas: %w", err)
	}
	return out, nil
}
