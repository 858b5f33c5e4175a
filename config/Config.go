package config

type StorageType string

const STORAGE_TYPE_REDIS StorageType = "redis"
const STORAGE_TYPE_INMEM StorageType = "memory"

type Config struct {
	RedisConfig       RedisStorageConfig
	HttpPort          int
	StorageType       StorageType
	AdvanceStepBudget int
	RecoveryInterval  int
	RecoveryCapacity  int
	AuditLogFile      string
	SeedTenant        string
	DisableSeeding    bool
}

type RedisStorageConfig struct {
	Addrs     []string
	Namespace string
	PoolSize  int
	Password  string
}
