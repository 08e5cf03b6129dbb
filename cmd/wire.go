package cmd

import (
	"fmt"
	"net/http"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/charmbracelet/log"
	"github.com/spf13/viper"

	postsrender "tweetsweep/internal/adapters/render/posts"
	tomlrepo "tweetsweep/internal/adapters/repo/toml"
	chainstore "tweetsweep/internal/adapters/secrets/chain"
	"tweetsweep/internal/application"
	"tweetsweep/internal/domain"
	"tweetsweep/internal/ports"
)

const minDeleteInterval = 100 * time.Millisecond

type app struct {
	profiles     ports.ProfileRepository
	secretStore  ports.SecretStore
	httpClient   *http.Client
	logger       *log.Logger
	clock        ports.Clock
	postRenderer func([]domain.Post, application.Counts, postsrender.RenderOptions) (string, error)

	baseURL        string
	deleteInterval time.Duration
	pageCount      int

	listOperation   string
	deleteOperation string
	requiredOps     []string

	features     string
	fieldToggles string

	captureListenAddr string
	captureTimeout    time.Duration
}

func wireApp() (*app, error) {
	profiles, err := tomlrepo.NewRepository(viper.New())
	if err != nil {
		return nil, fmt.Errorf("wire profile repository: %w", err)
	}

	homeDir, err := os.UserHomeDir()
	if err != nil {
		return nil, fmt.Errorf("resolve home directory: %w", err)
	}

	secretStore, err := chainstore.NewPassFirstWithFileFallback(filepath.Join(homeDir, ".tws", "secrets"))
	if err != nil {
		return nil, fmt.Errorf("wire secret store chain: %w", err)
	}

	logger := log.NewWithOptions(os.Stderr, log.Options{
		ReportTimestamp: false,
		Level:           logLevelFromEnv(),
	})

	listOperation := envOrDefault("TWS_LIST_OPERATION", "UserTweets")
	deleteOperation := envOrDefault("TWS_DELETE_OPERATION", "DeleteTweet")

	return &app{
		profiles:     profiles,
		secretStore:  secretStore,
		httpClient:   http.DefaultClient,
		logger:       logger,
		clock:        ports.SystemClock{},
		postRenderer: postsrender.Render,

		baseURL:        envOrDefault("TWS_BASE_URL", "https://x.com"),
		deleteInterval: envDurationMillis("TWS_DELETE_INTERVAL_MS", 600*time.Millisecond),
		pageCount:      envInt("TWS_PAGE_COUNT", 40),

		listOperation:   listOperation,
		deleteOperation: deleteOperation,
		requiredOps:     []string{listOperation, deleteOperation},

		// Empty means the gateway's built-in blobs; override when the
		// platform starts rejecting them.
		features:     os.Getenv("TWS_FEATURES"),
		fieldToggles: os.Getenv("TWS_FIELD_TOGGLES"),

		captureListenAddr: envOrDefault("TWS_CAPTURE_LISTEN", "127.0.0.1:0"),
		captureTimeout:    5 * time.Minute,
	}, nil
}

func envOrDefault(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}

func envInt(key string, fallback int) int {
	value := os.Getenv(key)
	if value == "" {
		return fallback
	}

	n, err := strconv.Atoi(value)
	if err != nil || n <= 0 {
		return fallback
	}
	return n
}

func envDurationMillis(key string, fallback time.Duration) time.Duration {
	value := os.Getenv(key)
	if value == "" {
		return fallback
	}

	n, err := strconv.Atoi(value)
	if err != nil {
		return fallback
	}

	d := time.Duration(n) * time.Millisecond
	if d < minDeleteInterval {
		return minDeleteInterval
	}
	return d
}

func logLevelFromEnv() log.Level {
	if os.Getenv("TWS_DEBUG") != "" {
		return log.DebugLevel
	}
	return log.WarnLevel
}
