package delta

import (
	"bytes"
	"encoding/json"
)

// ChangeKind tells which bucket of the comparison model an item came from.
type ChangeKind int

const (
	Added ChangeKind = iota
	Deleted
	Modified
)

func (k ChangeKind) String() string {
	switch k {
	case Added:
		return "added"
	case Deleted:
		return "deleted"
	case Modified:
		return "modified"
	default:
		return "unknown"
	}
}

// OldNew carries the before/after pair the comparison model records for a
// changed attribute.
type OldNew[T any] struct {
	Old T `json:"old"`
	New T `json:"new"`
}

// KeyOptions are constraint options attached to a primary or unique key.
// The modeler emits either an object or a one element array.
type KeyOptions struct {
	ConstraintName  string `json:"constraintName"`
	DeferClause     string `json:"deferClause"`
	Rely            string `json:"rely"`
	IndexClause     string `json:"indexClause"`
	Validate        string `json:"validate"`
	ExceptionClause string `json:"exceptionClause"`
}

// UnmarshalJSON accepts both object and array forms.
func (k *KeyOptions) UnmarshalJSON(data []byte) error {
	type plain KeyOptions
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) > 0 && trimmed[0] == '[' {
		var list []plain
		if err := json.Unmarshal(trimmed, &list); err != nil {
			return err
		}
		*k = KeyOptions{}
		if len(list) > 0 {
			*k = KeyOptions(list[0])
		}
		return nil
	}
	var p plain
	if err := json.Unmarshal(trimmed, &p); err != nil {
		return err
	}
	*k = KeyOptions(p)
	return nil
}

// Encryption is the TDE column encryption block.
type Encryption struct {
	ID                  string `json:"id"`
	EncryptionAlgorithm string `json:"ENCRYPTION_ALGORITHM"`
	IntegrityAlgorithm  string `json:"INTEGRITY_ALGORITHM"`
	NoSalt              bool   `json:"noSalt"`
}

// IsEmpty reports whether nothing besides the id is configured.
func (e *Encryption) IsEmpty() bool {
	return e == nil || (e.EncryptionAlgorithm == "" && e.IntegrityAlgorithm == "" && !e.NoSalt)
}

// UnmarshalJSON ignores non object payloads.
func (e *Encryption) UnmarshalJSON(data []byte) error {
	type plain Encryption
	*e = Encryption{}
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) == 0 || trimmed[0] != '{' {
		return nil
	}
	var p plain
	if err := json.Unmarshal(trimmed, &p); err != nil {
		return err
	}
	*e = Encryption(p)
	return nil
}

// Identity options of an identity column.
type Identity struct {
	IdentityStart     OptInt `json:"identityStart"`
	IdentityIncrement OptInt `json:"identityIncrement"`
	NumberToCache     OptInt `json:"numberToCache"`
	// legacy layout
	Generated       string `json:"generated"`
	GeneratedOnNull bool   `json:"generatedOnNull"`
}

// IsEmpty reports whether no identity option is present.
func (i *Identity) IsEmpty() bool {
	return i == nil || (!i.IdentityStart.Set && !i.IdentityIncrement.Set && !i.NumberToCache.Set && i.Generated == "")
}

// GeneratedDefault describes GENERATED ... AS IDENTITY / AS (expr) columns.
type GeneratedDefault struct {
	GeneratedType   string    `json:"generatedType"`
	GeneratedOnNull bool      `json:"generatedOnNull"`
	AsIdentity      bool      `json:"asIdentity"`
	Expression      string    `json:"expression"`
	Identity        *Identity `json:"identity"`
}

// ColumnSchema is a column (or UDT attribute) JSON schema node.
type ColumnSchema struct {
	GUID           string `json:"GUID"`
	Type           string `json:"type"`
	Mode           string `json:"mode"`
	ChildType      string `json:"childType"`
	Ref            string `json:"$ref"`
	Code           string `json:"code"`
	Name           string `json:"name"`
	IsActivated    *bool  `json:"isActivated"`
	Description    string `json:"description"`
	RefDescription string `json:"refDescription"`

	Default               Text              `json:"default"`
	DefaultOnNull         bool              `json:"defaultOnNull"`
	GeneratedDefaultValue *GeneratedDefault `json:"generatedDefaultValue"`
	Identity              *Identity         `json:"identity"`

	Length            OptInt `json:"length"`
	Precision         OptInt `json:"precision"`
	Scale             OptInt `json:"scale"`
	FractSecPrecision OptInt `json:"fractSecPrecision"`
	YearPrecision     OptInt `json:"yearPrecision"`
	DayPrecision      OptInt `json:"dayPrecision"`
	Dimension         OptInt `json:"dimension"`
	WithTimeZone      bool   `json:"withTimeZone"`
	LocalTimeZone     bool   `json:"localTimeZone"`
	LengthSemantics   string `json:"lengthSemantics"`
	Subtype           string `json:"subtype"`

	Encryption *Encryption `json:"encryption"`

	PrimaryKey          bool        `json:"primaryKey"`
	Unique              bool        `json:"unique"`
	CompositePrimaryKey bool        `json:"compositePrimaryKey"`
	CompositeUniqueKey  bool        `json:"compositeUniqueKey"`
	PrimaryKeyOptions   *KeyOptions `json:"primaryKeyOptions"`
	UniqueKeyOptions    *KeyOptions `json:"uniqueKeyOptions"`

	// collection UDT attributes
	OfType         string          `json:"ofType"`
	Size           OptInt          `json:"size"`
	NotPersistable bool            `json:"notPersistable"`
	Items          json.RawMessage `json:"items"`

	Required   StringList     `json:"required"`
	Properties *Properties    `json:"properties"`
	CompMod    *ColumnCompMod `json:"compMod"`
	Synonyms   []Synonym      `json:"synonyms"`
}

// Activated defaults to true when the flag is absent.
func (c *ColumnSchema) Activated() bool {
	return c.IsActivated == nil || *c.IsActivated
}

// FieldSnapshot is one side of a column compMod.
type FieldSnapshot struct {
	Name            string `json:"name"`
	Type            string `json:"type"`
	Mode            string `json:"mode"`
	Length          OptInt `json:"length"`
	Precision       OptInt `json:"precision"`
	Scale           OptInt `json:"scale"`
	LengthSemantics string `json:"lengthSemantics"`
}

// ColumnCompMod is the change record of a column.
type ColumnCompMod struct {
	OldField *FieldSnapshot `json:"oldField"`
	NewField *FieldSnapshot `json:"newField"`
}

// NameChanged reports whether the column was renamed.
func (c *ColumnCompMod) NameChanged() bool {
	return c != nil && c.OldField != nil && c.NewField != nil && c.OldField.Name != c.NewField.Name
}

// TypeChanged reports whether the column data type (type or mode) changed.
func (c *ColumnCompMod) TypeChanged() bool {
	return c != nil && c.OldField != nil && c.NewField != nil &&
		(c.OldField.Type != c.NewField.Type || c.OldField.Mode != c.NewField.Mode)
}

// SizeChanged reports a change of the type modifiers only.
func (c *ColumnCompMod) SizeChanged() bool {
	if c == nil || c.OldField == nil || c.NewField == nil {
		return false
	}
	o, n := c.OldField, c.NewField
	return o.Length != n.Length || o.Precision != n.Precision || o.Scale != n.Scale || o.LengthSemantics != n.LengthSemantics
}

// IndexKey is one key column of an index.
type IndexKey struct {
	KeyID       string `json:"keyId"`
	Name        string `json:"name"`
	Type        string `json:"type"`
	IsActivated *bool  `json:"isActivated"`
}

// Index is an index descriptor of a table.
type Index struct {
	ID               string     `json:"id"`
	IndxName         string     `json:"indxName"`
	IsActivated      *bool      `json:"isActivated"`
	IndxType         string     `json:"indxType"`
	IndxKey          []IndexKey `json:"indxKey"`
	ColumnExpression string     `json:"column_expression"`
	IndexProperties  string     `json:"index_properties"`
	IndexAttributes  string     `json:"index_attributes"`
	IndexCompression string     `json:"index_compression"`
	Tablespace       string     `json:"tablespace"`
	LoggingClause    string     `json:"logging_clause"`
	IfNotExist       bool       `json:"ifNotExist"`
	IndxDescription  string     `json:"indxDescription"`
}

// Activated defaults to true when the flag is absent.
func (i *Index) Activated() bool {
	return i.IsActivated == nil || *i.IsActivated
}

// Sequence is a schema sequence descriptor.
type Sequence struct {
	ID           string `json:"id,omitempty"`
	SequenceName string `json:"sequenceName"`
	IfNotExist   bool   `json:"ifNotExist,omitempty"`
	Sharing      string `json:"sharing,omitempty"`
	Increment    Number `json:"increment"`
	Start        Number `json:"start"`
	Restart      Number `json:"restart"`
	MinValue     Number `json:"minValue"`
	MaxValue     Number `json:"maxValue"`
	Cache        string `json:"cache,omitempty"`
	CacheValue   Number `json:"cacheValue"`
	Cycle        string `json:"cycle,omitempty"`
	Order        string `json:"order,omitempty"`
	Keep         string `json:"keep,omitempty"`
	Scale        string `json:"scale,omitempty"`
	ScaleExtend  string `json:"scaleExtend,omitempty"`
	Shard        string `json:"shard,omitempty"`
	ShardExtend  string `json:"shardExtend,omitempty"`
	Type         string `json:"type,omitempty"`
}

// CheckConstraint is a table level check constraint.
type CheckConstraint struct {
	ChkConstrName     string `json:"chkConstrName"`
	ConstrExpression  string `json:"constrExpression"`
	ConstrComments    string `json:"constrComments"`
	ConstrDescription string `json:"constrDescription"`
}

// KeyRef references a column by GUID inside a composite key.
type KeyRef struct {
	KeyID string `json:"keyId"`
}

// CompositeKey is a named multi-column primary or unique key.
type CompositeKey struct {
	KeyOptions
	CompositePrimaryKey []KeyRef `json:"compositePrimaryKey"`
	CompositeUniqueKey  []KeyRef `json:"compositeUniqueKey"`
}

// UnmarshalJSON decodes the embedded options and the key lists together.
func (c *CompositeKey) UnmarshalJSON(data []byte) error {
	var opts struct {
		ConstraintName  string `json:"constraintName"`
		DeferClause     string `json:"deferClause"`
		Rely            string `json:"rely"`
		IndexClause     string `json:"indexClause"`
		Validate        string `json:"validate"`
		ExceptionClause string `json:"exceptionClause"`
	}
	var keys struct {
		CompositePrimaryKey []KeyRef `json:"compositePrimaryKey"`
		CompositeUniqueKey  []KeyRef `json:"compositeUniqueKey"`
	}
	if err := json.Unmarshal(data, &opts); err != nil {
		return err
	}
	if err := json.Unmarshal(data, &keys); err != nil {
		return err
	}
	c.KeyOptions = KeyOptions(opts)
	c.CompositePrimaryKey = keys.CompositePrimaryKey
	c.CompositeUniqueKey = keys.CompositeUniqueKey
	return nil
}

// Synonym attached to a table, view or type.
type Synonym struct {
	SynonymName        string `json:"synonymName"`
	SynonymEntityID    string `json:"synonymEntityId"`
	SynonymOrReplace   bool   `json:"synonymOrReplace"`
	SynonymEditionable bool   `json:"synonymEditionable"`
	SynonymPublic      bool   `json:"synonymPublic"`
}

// BucketRef names the owning schema.
type BucketRef struct {
	Name string `json:"name"`
}

// EntityCompMod is the change record of a table.
type EntityCompMod struct {
	Created          bool                `json:"created"`
	Deleted          bool                `json:"deleted"`
	Modified         bool                `json:"modified"`
	KeyspaceName     string              `json:"keyspaceName"`
	CollectionName   *OldNew[string]     `json:"collectionName"`
	BucketProperties *BucketRef          `json:"bucketProperties"`
	Indxs            *OldNew[[]Index]    `json:"Indxs"`
	Sequences        *OldNew[[]Sequence] `json:"sequences"`
}

// EntitySchema is a table after the role has been merged over the item.
type EntitySchema struct {
	GUID           string `json:"GUID"`
	Code           string `json:"code"`
	CollectionName string `json:"collectionName"`
	Name           string `json:"name"`
	IsActivated    *bool  `json:"isActivated"`
	Description    string `json:"description"`
	IfNotExist     bool   `json:"ifNotExist"`

	Temporary              bool   `json:"temporary"`
	TemporaryType          string `json:"temporaryType"`
	Duplicated             bool   `json:"duplicated"`
	Sharded                bool   `json:"sharded"`
	Immutable              bool   `json:"immutable"`
	BlockchainTableClauses string `json:"blockchain_table_clauses"`
	TableProperties        string `json:"tableProperties"`
	SelectStatement        string `json:"selectStatement"`

	Required   StringList        `json:"required"`
	ChkConstr  []CheckConstraint `json:"chkConstr"`
	Indxs      []Index           `json:"Indxs"`
	PrimaryKey []CompositeKey    `json:"primaryKey"`
	UniqueKey  []CompositeKey    `json:"uniqueKey"`

	CompMod    *EntityCompMod `json:"compMod"`
	Properties *Properties    `json:"properties"`
}

// Activated defaults to true when the flag is absent.
func (e *EntitySchema) Activated() bool {
	return e.IsActivated == nil || *e.IsActivated
}

// EntityName is code, falling back to collectionName.
func (e *EntitySchema) EntityName() string {
	if e.Code != "" {
		return e.Code
	}
	if e.CollectionName != "" {
		return e.CollectionName
	}
	return e.Name
}

// IsRequired reports whether name is listed in required.
func (e *EntitySchema) IsRequired(name string) bool {
	for _, r := range e.Required {
		if r == name {
			return true
		}
	}
	return false
}
