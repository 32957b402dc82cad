package models

import "time"

// RuleChangeEvent tells downstream rule engines that the rule set changed
// and which rule to re-pull. Batch imports carry no rule ID; consumers
// reload the whole set.
type RuleChangeEvent struct {
	EventType string                 `json:"event_type"` // "rule_changed", "rules_imported", "dictionary_reloaded"
	RuleType  string                 `json:"rule_type,omitempty"`
	RuleID    string                 `json:"rule_id,omitempty"`
	Action    string                 `json:"action"` // "create", "update", "delete", "import", "reload"
	Timestamp time.Time              `json:"timestamp"`
	ChangedBy string                 `json:"changed_by,omitempty"`
	Metadata  map[string]interface{} `json:"metadata,omitempty"`
}

const (
	EventTypeRuleChanged        = "rule_changed"
	EventTypeRulesImported      = "rules_imported"
	EventTypeDictionaryReloaded = "dictionary_reloaded"
)

const (
	ActionCreate = "create"
	ActionUpdate = "update"
	ActionDelete = "delete"
	ActionImport = "import"
	ActionReload = "reload"
)
