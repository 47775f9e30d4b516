package delta

import (
	"encoding/json"
	"fmt"
)

// Column is a named column node. Raw keeps the undecoded schema so $ref
// definitions can be laid under it.
type Column struct {
	Name   string
	Schema ColumnSchema
	Raw    json.RawMessage
}

// DecodeColumns decodes properties into columns in document order.
func DecodeColumns(p *Properties) ([]Column, error) {
	out := make([]Column, 0, p.Len())
	for _, name := range p.Keys() {
		raw, _ := p.Raw(name)
		var c Column
		c.Name, c.Raw = name, raw
		if isPresent(raw) {
			if err := json.Unmarshal(raw, &c.Schema); err != nil {
				return nil, fmt.Errorf("column %q: %w", name, err)
			}
		}
		out = append(out, c)
	}
	return out, nil
}

// ContainerCompMod lists the sequence changes of a schema.
type ContainerCompMod struct {
	Sequences *OldNew[[]Sequence] `json:"sequences"`
}

// ContainerRole is the schema (Oracle user) description.
type ContainerRole struct {
	Name       string            `json:"name"`
	Code       string            `json:"code"`
	IfNotExist bool              `json:"ifNotExist"`
	Sequences  []Sequence        `json:"sequences"`
	CompMod    *ContainerCompMod `json:"compMod"`
}

// Container is a changed schema.
type Container struct {
	Kind ChangeKind
	Name string
	Role ContainerRole
}

// SchemaName is role code, then role name, then the item key.
func (c *Container) SchemaName() string {
	switch {
	case c.Role.Code != "":
		return c.Role.Code
	case c.Role.Name != "":
		return c.Role.Name
	default:
		return c.Name
	}
}

// Collection is a changed table. CompMod is the item's own change record;
// Schema is the item with its role laid over it (role properties excluded).
type Collection struct {
	Kind    ChangeKind
	Name    string
	CompMod *EntityCompMod
	Schema  EntitySchema
	Role    EntitySchema
	Columns []Column
}

// IsCreated reports a newly created table.
func (c *Collection) IsCreated() bool { return c.CompMod != nil && c.CompMod.Created }

// IsDeleted reports a dropped table.
func (c *Collection) IsDeleted() bool { return c.CompMod != nil && c.CompMod.Deleted }

// ColumnLevel reports an item whose parent table is unchanged and whose
// children carry the changes.
func (c *Collection) ColumnLevel() bool { return c.CompMod == nil }

// SchemaName is the owning schema: the keyspace of the merged change record,
// then of the item's own record, then the bucket of either.
func (c *Collection) SchemaName() string {
	records := []*EntityCompMod{c.Schema.CompMod, c.CompMod, c.Role.CompMod}
	for _, cm := range records {
		if cm != nil && cm.KeyspaceName != "" {
			return cm.KeyspaceName
		}
	}
	for _, cm := range records {
		if cm != nil && cm.BucketProperties != nil && cm.BucketProperties.Name != "" {
			return cm.BucketProperties.Name
		}
	}
	return ""
}

// TableName is the entity name the change applies to: the new collection
// name of the change record when present.
func (c *Collection) TableName() string {
	if cm := c.Role.CompMod; cm != nil && cm.CollectionName != nil && cm.CollectionName.New != "" {
		return cm.CollectionName.New
	}
	return c.Schema.EntityName()
}

// AllColumns returns item columns followed by role-only columns.
func (c *Collection) AllColumns() ([]Column, error) {
	return DecodeColumns(c.Schema.Properties.Merge(c.Role.Properties))
}

// RoleIndexes returns the old/new index lists of the role change record.
func (c *Collection) RoleIndexes() (prev, next []Index) {
	if c.Role.CompMod == nil || c.Role.CompMod.Indxs == nil {
		return nil, nil
	}
	return c.Role.CompMod.Indxs.Old, c.Role.CompMod.Indxs.New
}

// ItemCompMod is the change record of UDT, view and relationship items.
type ItemCompMod struct {
	Created  bool `json:"created"`
	Deleted  bool `json:"deleted"`
	Modified bool `json:"modified"`
}

// Udt is a changed user-defined type (model definition).
type Udt struct {
	Kind ChangeKind
	Name string
	// OwnCompMod is the item's compMod before the role is merged.
	OwnCompMod *ItemCompMod
	CompMod    *ItemCompMod
	Schema     ColumnSchema
	Columns    []Column
}

// TypeName is code, then name, then the item key.
func (u *Udt) TypeName() string {
	switch {
	case u.Schema.Code != "":
		return u.Schema.Code
	case u.Schema.Name != "":
		return u.Schema.Name
	default:
		return u.Name
	}
}

// CollectionData is the snapshot of the collections a duality view covers.
type CollectionData struct {
	RelatedSchemas json.RawMessage `json:"relatedSchemas"`
	EntityData     []EntitySchema  `json:"entityData"`
}

// ViewCompMod is the change record of a view.
type ViewCompMod struct {
	ItemCompMod
	KeyspaceName     string          `json:"keyspaceName"`
	BucketProperties *BucketRef      `json:"bucketProperties"`
	CollectionData   *CollectionData `json:"collectionData"`
}

// UnmarshalJSON decodes the embedded flags alongside the other members.
func (v *ViewCompMod) UnmarshalJSON(data []byte) error {
	var flags ItemCompMod
	if err := json.Unmarshal(data, &flags); err != nil {
		return err
	}
	var rest struct {
		KeyspaceName     string          `json:"keyspaceName"`
		BucketProperties *BucketRef      `json:"bucketProperties"`
		CollectionData   *CollectionData `json:"collectionData"`
	}
	if err := json.Unmarshal(data, &rest); err != nil {
		return err
	}
	*v = ViewCompMod{ItemCompMod: flags, KeyspaceName: rest.KeyspaceName, BucketProperties: rest.BucketProperties, CollectionData: rest.CollectionData}
	return nil
}

// ViewSchema is a view with its role merged.
type ViewSchema struct {
	GUID            string          `json:"GUID"`
	Code            string          `json:"code"`
	Name            string          `json:"name"`
	IsActivated     *bool           `json:"isActivated"`
	Description     string          `json:"description"`
	SelectStatement string          `json:"selectStatement"`
	OrReplace       bool            `json:"or_replace"`
	Force           Flag            `json:"force"`
	Editionable     Flag            `json:"editionable"`
	Editioning      bool            `json:"editioning"`
	Materialized    bool            `json:"materialized"`
	IfNotExist      bool            `json:"ifNotExist"`
	Sharing         string          `json:"sharing"`
	ViewProperties  string          `json:"viewProperties"`
	MviewProperties string          `json:"mviewProperties"`
	Duality         bool            `json:"duality"`
	ViewOn          string          `json:"viewOn"`
	TableName       string          `json:"tableName"`
	SchemaName      string          `json:"schemaName"`
	RootTableAlias  string          `json:"rootTableAlias"`
	TableTagsClause json.RawMessage `json:"tableTagsClause"`
	CompMod         *ViewCompMod    `json:"compMod"`
}

// Activated defaults to true when the flag is absent.
func (v *ViewSchema) Activated() bool {
	return v.IsActivated == nil || *v.IsActivated
}

// ViewName is code, falling back to name.
func (v *ViewSchema) ViewName() string {
	if v.Code != "" {
		return v.Code
	}
	return v.Name
}

// IsDuality reports a JSON relational duality view.
func (v *ViewSchema) IsDuality() bool { return v.Duality && v.ViewOn != "" }

// View is a changed view. Raw is the merged document, which for duality
// views carries the field tree.
type View struct {
	Kind   ChangeKind
	Name   string
	Schema ViewSchema
	Raw    json.RawMessage
}

// SchemaName is the owning schema of the view.
func (v *View) SchemaName() string {
	if v.Schema.SchemaName != "" {
		return v.Schema.SchemaName
	}
	if cm := v.Schema.CompMod; cm != nil {
		if cm.KeyspaceName != "" {
			return cm.KeyspaceName
		}
		if cm.BucketProperties != nil {
			return cm.BucketProperties.Name
		}
	}
	return ""
}

// FkField is a column taking part in a foreign key.
type FkField struct {
	Name        string `json:"name"`
	IsActivated *bool  `json:"isActivated"`
}

// RelationshipEnd is one side of a foreign key.
type RelationshipEnd struct {
	Bucket struct {
		Name string `json:"name"`
		Code string `json:"code"`
	} `json:"bucket"`
	Collection struct {
		Name        string    `json:"name"`
		Code        string    `json:"code"`
		IsActivated *bool     `json:"isActivated"`
		FkFields    []FkField `json:"fkFields"`
	} `json:"collection"`
}

// SchemaName is the bucket code or name.
func (r RelationshipEnd) SchemaName() string {
	if r.Bucket.Code != "" {
		return r.Bucket.Code
	}
	return r.Bucket.Name
}

// TableName is the collection code or name.
func (r RelationshipEnd) TableName() string {
	if r.Collection.Code != "" {
		return r.Collection.Code
	}
	return r.Collection.Name
}

// RelationshipCustomProperties holds dialect specific FK options.
type RelationshipCustomProperties struct {
	RelationshipOnDelete string `json:"relationshipOnDelete"`
}

// RelationshipCompMod is the change record of a foreign key.
type RelationshipCompMod struct {
	Created          bool                                  `json:"created"`
	Deleted          bool                                  `json:"deleted"`
	Modified         bool                                  `json:"modified"`
	Name             *OldNew[string]                       `json:"name"`
	Code             *OldNew[string]                       `json:"code"`
	IsActivated      *OldNew[*bool]                        `json:"isActivated"`
	Child            *RelationshipEnd                      `json:"child"`
	Parent           *RelationshipEnd                      `json:"parent"`
	CustomProperties *OldNew[RelationshipCustomProperties] `json:"customProperties"`
}

// RelationshipSchema is a relationship with its role merged.
type RelationshipSchema struct {
	GUID        string               `json:"GUID"`
	Name        string               `json:"name"`
	Code        string               `json:"code"`
	IsActivated *bool                `json:"isActivated"`
	CompMod     *RelationshipCompMod `json:"compMod"`
}

// Relationship is a changed foreign key.
type Relationship struct {
	Kind   ChangeKind
	Name   string
	Schema RelationshipSchema
}

// Model is the normalized comparison model.
type Model struct {
	Containers    []Container
	Collections   []Collection
	Udts          []Udt
	Views         []View
	Relationships []Relationship
}

type comparisonModel struct {
	Properties struct {
		Containers       *changeSet `json:"containers"`
		Entities         *changeSet `json:"entities"`
		ModelDefinitions *changeSet `json:"modelDefinitions"`
		Views            *changeSet `json:"views"`
		Relationships    *changeSet `json:"relationships"`
	} `json:"properties"`
}

type roleHolder struct {
	Role json.RawMessage `json:"role"`
}

func roleOf(raw json.RawMessage) (json.RawMessage, error) {
	var h roleHolder
	if err := json.Unmarshal(raw, &h); err != nil {
		return nil, err
	}
	return h.Role, nil
}

// Normalize turns the raw comparison model into tagged variants. Missing
// buckets yield empty slices.
func Normalize(raw json.RawMessage) (*Model, error) {
	if !isPresent(raw) {
		return nil, ErrComparisonModelNotFound
	}
	var cm comparisonModel
	if err := json.Unmarshal(raw, &cm); err != nil {
		return nil, fmt.Errorf("parse comparison model: %w", err)
	}

	m := &Model{}
	for _, n := range cm.Properties.Containers.nodes() {
		c, err := normalizeContainer(n)
		if err != nil {
			return nil, fmt.Errorf("container %q: %w", n.name, err)
		}
		m.Containers = append(m.Containers, c)
	}
	for _, n := range cm.Properties.Entities.nodes() {
		c, err := normalizeCollection(n)
		if err != nil {
			return nil, fmt.Errorf("collection %q: %w", n.name, err)
		}
		m.Collections = append(m.Collections, c)
	}
	for _, n := range cm.Properties.ModelDefinitions.nodes() {
		u, err := normalizeUdt(n)
		if err != nil {
			return nil, fmt.Errorf("type %q: %w", n.name, err)
		}
		m.Udts = append(m.Udts, u)
	}
	for _, n := range cm.Properties.Views.nodes() {
		v, err := normalizeView(n)
		if err != nil {
			return nil, fmt.Errorf("view %q: %w", n.name, err)
		}
		m.Views = append(m.Views, v)
	}
	for _, n := range cm.Properties.Relationships.nodes() {
		r, err := normalizeRelationship(n)
		if err != nil {
			return nil, fmt.Errorf("relationship %q: %w", n.name, err)
		}
		m.Relationships = append(m.Relationships, r)
	}
	return m, nil
}

func normalizeContainer(n namedNode) (Container, error) {
	c := Container{Kind: n.kind, Name: n.name}
	role, err := roleOf(n.raw)
	if err != nil {
		return c, err
	}
	if isPresent(role) {
		if err := json.Unmarshal(role, &c.Role); err != nil {
			return c, err
		}
	}
	return c, nil
}

func normalizeCollection(n namedNode) (Collection, error) {
	c := Collection{Kind: n.kind, Name: n.name}
	var own struct {
		CompMod    *EntityCompMod `json:"compMod"`
		Properties *Properties    `json:"properties"`
	}
	if err := json.Unmarshal(n.raw, &own); err != nil {
		return c, err
	}
	c.CompMod = own.CompMod

	role, err := roleOf(n.raw)
	if err != nil {
		return c, err
	}
	if isPresent(role) {
		if err := json.Unmarshal(role, &c.Role); err != nil {
			return c, fmt.Errorf("role: %w", err)
		}
	}
	merged, err := mergeObjects(n.raw, role, "properties")
	if err != nil {
		return c, err
	}
	if err := json.Unmarshal(merged, &c.Schema); err != nil {
		return c, err
	}
	// properties come from the item even when the role has its own
	c.Schema.Properties = own.Properties
	if c.Columns, err = DecodeColumns(own.Properties); err != nil {
		return c, err
	}
	return c, nil
}

func normalizeUdt(n namedNode) (Udt, error) {
	u := Udt{Kind: n.kind, Name: n.name}
	var own struct {
		CompMod    *ItemCompMod `json:"compMod"`
		Properties *Properties  `json:"properties"`
	}
	if err := json.Unmarshal(n.raw, &own); err != nil {
		return u, err
	}
	u.OwnCompMod = own.CompMod

	role, err := roleOf(n.raw)
	if err != nil {
		return u, err
	}
	merged, err := mergeObjects(n.raw, role, "properties")
	if err != nil {
		return u, err
	}
	var flags struct {
		CompMod *ItemCompMod `json:"compMod"`
	}
	if err := json.Unmarshal(merged, &flags); err != nil {
		return u, err
	}
	u.CompMod = flags.CompMod

	if err := json.Unmarshal(merged, &u.Schema); err != nil {
		return u, err
	}
	// compMod of a type is a created/deleted record, not a field snapshot
	u.Schema.CompMod = nil
	u.Schema.Properties = own.Properties
	if u.Columns, err = DecodeColumns(own.Properties); err != nil {
		return u, err
	}
	return u, nil
}

func normalizeView(n namedNode) (View, error) {
	v := View{Kind: n.kind, Name: n.name}
	role, err := roleOf(n.raw)
	if err != nil {
		return v, err
	}
	merged, err := mergeObjects(n.raw, role)
	if err != nil {
		return v, err
	}
	v.Raw = merged
	if err := json.Unmarshal(merged, &v.Schema); err != nil {
		return v, err
	}
	return v, nil
}

func normalizeRelationship(n namedNode) (Relationship, error) {
	r := Relationship{Kind: n.kind, Name: n.name}
	role, err := roleOf(n.raw)
	if err != nil {
		return r, err
	}
	merged, err := mergeObjects(n.raw, role)
	if err != nil {
		return r, err
	}
	if err := json.Unmarshal(merged, &r.Schema); err != nil {
		return r, err
	}
	return r, nil
}
