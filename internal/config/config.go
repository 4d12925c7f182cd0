package config

import (
	"os"
	"strconv"
	"strings"
	"time"
)

// CassandraConfig holds Cassandra connection settings
type CassandraConfig struct {
	Hosts    []string
	Keyspace string
}

// RedisConfig holds Redis connection settings shared by all queues
type RedisConfig struct {
	Host     string
	Port     string
	Frontier string // frontier list key
	SeenSet  string // discovered-URL set key
	JobQueue string // QA job list key
}

// KafkaConfig holds the transcript-event topic settings
type KafkaConfig struct {
	BootstrapServers string
	Topic            string
	GroupID          string
}

// LLMConfig holds Ollama connection settings
type LLMConfig struct {
	Host  string
	Model string
}

// WatcherConfig holds settings for the discovery watch loop
type WatcherConfig struct {
	PollInterval time.Duration
	ParsersDir   string
}

// MonitorConfig holds settings for the Piazza poll loop
type MonitorConfig struct {
	PollInterval time.Duration
	MinCourseAge time.Duration // grace period before a new course is polled
	FeedLimit    int
}

// WorkerConfig holds settings for the QA worker loop
type WorkerConfig struct {
	PopTimeout     time.Duration
	RetrievalLimit int
}

// FetcherConfig holds settings for the transcript ingestor
type FetcherConfig struct {
	FetchCommand string
	DownloadDir  string
}

func LoadCassandraConfig() *CassandraConfig {
	hosts := os.Getenv("CASSANDRA_HOSTS")
	if hosts == "" {
		hosts = "cassandra-1"
	}

	keyspace := os.Getenv("CASSANDRA_KEYSPACE")
	if keyspace == "" {
		keyspace = "transcript_db"
	}

	return &CassandraConfig{
		Hosts:    strings.Split(hosts, ","),
		Keyspace: keyspace,
	}
}

func LoadRedisConfig() *RedisConfig {
	return &RedisConfig{
		Host:     envOr("REDIS_HOST", "redis"),
		Port:     envOr("REDIS_PORT", "6379"),
		Frontier: envOr("REDIS_QUEUE", "frontier"),
		SeenSet:  envOr("REDIS_SEEN_SET", "seen"),
		JobQueue: envOr("REDIS_JOB_QUEUE", "qa-jobs-normal"),
	}
}

func LoadKafkaConfig() *KafkaConfig {
	return &KafkaConfig{
		BootstrapServers: envOr("KAFKA_BOOTSTRAP_SERVERS", "kafka:9092"),
		Topic:            envOr("KAFKA_TOPIC", "transcript-events"),
		GroupID:          "processor-group",
	}
}

func LoadLLMConfig() *LLMConfig {
	return &LLMConfig{
		Host:  envOr("OLLAMA_HOST", "http://localhost:11434"),
		Model: envOr("LLM_MODEL", "qwen3:4b"),
	}
}

func LoadWatcherConfig() *WatcherConfig {
	return &WatcherConfig{
		PollInterval: envSecondsOr("WATCH_POLL_INTERVAL", 60*time.Second),
		ParsersDir:   envOr("PARSERS_DIR", "./parsers"),
	}
}

func LoadMonitorConfig() *MonitorConfig {
	return &MonitorConfig{
		PollInterval: envSecondsOr("POLL_INTERVAL", 600*time.Second),
		MinCourseAge: envSecondsOr("MIN_AGE_SECONDS", 600*time.Second),
		FeedLimit:    100,
	}
}

func LoadWorkerConfig() *WorkerConfig {
	return &WorkerConfig{
		PopTimeout:     envSecondsOr("POP_TIMEOUT", 60*time.Second),
		RetrievalLimit: 5,
	}
}

func LoadFetcherConfig() *FetcherConfig {
	return &FetcherConfig{
		FetchCommand: envOr("FETCH_COMMAND", "/usr/local/bin/fetch-transcript"),
		DownloadDir:  envOr("DOWNLOAD_DIR", "/volume"),
	}
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func envSecondsOr(key string, fallback time.Duration) time.Duration {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	secs, err := strconv.Atoi(v)
	if err != nil {
		return fallback
	}
	return time.Duration(secs) * time.Second
}
