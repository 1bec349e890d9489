package config

import (
	"strings"
	"time"

	"github.com/spf13/viper"
)

type Config struct {
	// Server
	ServerAddr      string
	TLSCertFile     string
	TLSKeyFile      string
	ShutdownTimeout time.Duration
	LogLevel        string

	// Scoring
	UserPositiveWords   []string
	GlobalPositiveWords []string

	// Kafka activity stream
	KafkaEnabled   bool
	KafkaBroker    string
	KafkaTopic     string
	KafkaPartition int
	KafkaWriteTO   time.Duration

	// Activity worker pool
	WorkerCount     int
	WorkerQueueSize int
}

// Init loads the config using Viper and returns it
func Init() *Config {
	viper.SetDefault("SERVER_ADDR", ":8080")
	viper.SetDefault("SHUTDOWN_TIMEOUT", "10s")
	viper.SetDefault("LOG_LEVEL", "info")
	// Optional: TLS_CERT_FILE/TLS_KEY_FILE enable HTTPS when both are set

	viper.SetDefault("USER_POSITIVE_WORDS", "good,great,excellent,incredible,cool")
	viper.SetDefault("GLOBAL_POSITIVE_WORDS", "good,great,excellent,perfect,awesome")

	viper.SetDefault("KAFKA_ENABLED", false)
	viper.SetDefault("KAFKA_BROKER", "localhost:29092")
	viper.SetDefault("KAFKA_TOPIC", "social-activity")
	viper.SetDefault("KAFKA_PARTITION", 0)
	viper.SetDefault("KAFKA_WRITE_TIMEOUT", "10s")

	viper.SetDefault("WORKER_COUNT", 0)
	viper.SetDefault("WORKER_QUEUE_SIZE", 0)

	// Load env variables
	viper.AutomaticEnv()

	// Optional config file support
	viper.SetConfigName("config")
	viper.SetConfigType("yaml")
	viper.AddConfigPath(".")
	viper.AddConfigPath("./config")
	_ = viper.ReadInConfig() // ignore error if no file

	cfg := &Config{
		ServerAddr:          viper.GetString("SERVER_ADDR"),
		TLSCertFile:         viper.GetString("TLS_CERT_FILE"),
		TLSKeyFile:          viper.GetString("TLS_KEY_FILE"),
		ShutdownTimeout:     parseDuration(viper.GetString("SHUTDOWN_TIMEOUT"), 10*time.Second),
		LogLevel:            viper.GetString("LOG_LEVEL"),
		UserPositiveWords:   wordList("USER_POSITIVE_WORDS"),
		GlobalPositiveWords: wordList("GLOBAL_POSITIVE_WORDS"),
		KafkaEnabled:        viper.GetBool("KAFKA_ENABLED"),
		KafkaBroker:         viper.GetString("KAFKA_BROKER"),
		KafkaTopic:          viper.GetString("KAFKA_TOPIC"),
		KafkaPartition:      viper.GetInt("KAFKA_PARTITION"),
		KafkaWriteTO:        parseDuration(viper.GetString("KAFKA_WRITE_TIMEOUT"), 10*time.Second),
		WorkerCount:         viper.GetInt("WORKER_COUNT"),
		WorkerQueueSize:     viper.GetInt("WORKER_QUEUE_SIZE"),
	}

	return cfg
}

func parseDuration(s string, def time.Duration) time.Duration {
	if d, err := time.ParseDuration(s); err == nil {
		return d
	}
	return def
}

// wordList reads key either as a YAML list or as a comma separated string.
func wordList(key string) []string {
	switch viper.Get(key).(type) {
	case []any, []string:
		return splitWords(strings.Join(viper.GetStringSlice(key), ","))
	}
	return splitWords(viper.GetString(key))
}

// splitWords parses a comma separated word list, dropping blanks.
func splitWords(s string) []string {
	var words []string
	for _, w := range strings.Split(s, ",") {
		if w = strings.TrimSpace(w); w != "" {
			words = append(words, w)
		}
	}
	return words
}
