package constants

import "time"

const (
	KafkaBatchTimeout = 10 * time.Millisecond
	KafkaWriteTimeout = 10 * time.Second
)

const (
	CacheKeyPrefixDictionary = "dictionary:"
)

const (
	DefaultRuleEventsTopic = "rule_change_events"
)

const (
	DefaultMongoDBName = "authrules"
)

const (
	ShutdownTimeout = 5 * time.Second
)

const (
	DefaultLimit = 100
	MaxLimit     = 1000
)

const (
	DefaultDictionaryTTLSeconds = 3600
)
