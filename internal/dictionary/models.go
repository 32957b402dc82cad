package dictionary

// Value is one permitted code for a standard field, as maintained in the
// client's configuration database.
type Value struct {
	Code        string `json:"code" bson:"code"`
	Description string `json:"description,omitempty" bson:"description,omitempty"`
	Active      bool   `json:"active" bson:"active"`
}

// FieldValueSet is the full value dictionary for one standard field.
type FieldValueSet struct {
	Field  string  `json:"field" bson:"field"`
	Values []Value `json:"values" bson:"values"`
}

// CustomFieldTemplate describes a client-defined field that custom
// criteria can target.
type CustomFieldTemplate struct {
	TemplateID  string   `json:"templateId" bson:"template_id"`
	Association string   `json:"association" bson:"association"`
	Name        string   `json:"name" bson:"name"`
	DataType    string   `json:"dataType,omitempty" bson:"data_type,omitempty"`
	Values      []string `json:"values,omitempty" bson:"values,omitempty"`
}

// BulkFile is the on-disk snapshot used when neither redis nor the
// dictionary database can serve.
type BulkFile struct {
	Fields    []FieldValueSet       `json:"fields"`
	Templates []CustomFieldTemplate `json:"templates"`
}
