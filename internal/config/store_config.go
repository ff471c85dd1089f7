package config

type StoreType string

const (
	StoreMemory StoreType = "memory"
	StoreFile   StoreType = "file"
	StoreRedis  StoreType = "redis"
)

type StoreConfig interface {
	GetStoreType() StoreType
	GetSessionFile() string
	GetSessionPassphrase() string
	GetRedisAddr() string
	GetRedisPassword() string
	GetRedisDB() int
	GetRedisKey() string
}

type StoreVars struct {
	Type       string `yaml:"type" env:"SESSION_STORE" env-default:"file" env-description:"memory, file or redis"`
	File       string `yaml:"file" env:"SESSION_FILE" env-default:"./data/session.yaml"`
	Passphrase string `yaml:"passphrase" env:"SESSION_PASSPHRASE" env-description:"encrypts the session file when set"`

	RedisAddr     string `yaml:"redis_addr" env:"REDIS_ADDR" env-default:"localhost:6379"`
	RedisPassword string `yaml:"redis_password" env:"REDIS_PASSWORD"`
	RedisDB       int    `yaml:"redis_db" env:"REDIS_DB" env-default:"0"`
	RedisKey      string `yaml:"redis_key" env:"REDIS_KEY" env-default:"rental:session"`
}

var _ StoreConfig = StoreVars{}

func (s StoreVars) GetStoreType() StoreType {
	switch StoreType(s.Type) {
	case StoreMemory, StoreRedis:
		return StoreType(s.Type)
	default:
		return StoreFile
	}
}

func (s StoreVars) GetSessionFile() string {
	return valueOr(s.File, "./data/session.yaml")
}

func (s StoreVars) GetSessionPassphrase() string {
	return s.Passphrase
}

func (s StoreVars) GetRedisAddr() string {
	return valueOr(s.RedisAddr, "localhost:6379")
}

func (s StoreVars) GetRedisPassword() string {
	return s.RedisPassword
}

func (s StoreVars) GetRedisDB() int {
	return s.RedisDB
}

func (s StoreVars) GetRedisKey() string {
	return valueOr(s.RedisKey, "rental:session")
}
