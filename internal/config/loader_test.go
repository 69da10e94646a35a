package config_test

import (
	"context"
	"os"
	"testing"

	"github.com/smartystreets/goconvey/convey"

	"github.com/teaelo/teaelo/internal/config"
)

func TestConfigLoader(t *testing.T) {
	convey.Convey("Given a config loader", t, func() {
		ctx := context.Background()

		convey.Convey("When loading config with defaults only", func() {
			// Clear any existing environment variables
			clearConfigEnvVars()

			cfg, err := config.Load(ctx)

			convey.Convey("Then it should load successfully with defaults", func() {
				convey.So(err, convey.ShouldBeNil)
				convey.So(cfg, convey.ShouldNotBeNil)
				convey.So(cfg.Addr, convey.ShouldEqual, ":9080")
				convey.So(cfg.MaxLeaderboardLimit, convey.ShouldEqual, 100)
				convey.So(cfg.SightingCacheSize, convey.ShouldEqual, 100_000)
				convey.So(cfg.EnrichQueueSize, convey.ShouldEqual, 10_000)
				convey.So(cfg.EnrichWorkerCount, convey.ShouldEqual, 4)
			})
		})

		convey.Convey("When loading config with environment variables", func() {
			_ = os.Setenv("TEAELO_ADDR", ":8080")
			_ = os.Setenv("TEAELO_MAX_LEADERBOARD_LIMIT", "50")
			_ = os.Setenv("TEAELO_ENRICH_QUEUE_SIZE", "5000")
			_ = os.Setenv("TEAELO_ENRICH_WORKER_COUNT", "8")
			_ = os.Setenv("TEAELO_NER_ENABLED", "false")
			defer clearConfigEnvVars()

			cfg, err := config.Load(ctx)

			convey.Convey("Then it should override defaults with env vars", func() {
				convey.So(err, convey.ShouldBeNil)
				convey.So(cfg, convey.ShouldNotBeNil)
				convey.So(cfg.Addr, convey.ShouldEqual, ":8080")
				convey.So(cfg.MaxLeaderboardLimit, convey.ShouldEqual, 50)
				convey.So(cfg.EnrichQueueSize, convey.ShouldEqual, 5000)
				convey.So(cfg.EnrichWorkerCount, convey.ShouldEqual, 8)
				convey.So(cfg.NEREnabled, convey.ShouldBeFalse)
			})
		})

		convey.Convey("When loading config with YAML file", func() {
			yamlContent := `
addr: ":9090"
max_leaderboard_limit: 25
sighting_cache_size: 50000
enrich_queue_size: 2000
enrich_worker_count: 2
`
			tmpFile := createTempConfigFile(yamlContent)
			defer func() { _ = os.Remove(tmpFile) }()

			_ = os.Setenv("TEAELO_CONFIG", tmpFile)
			defer clearConfigEnvVars()

			cfg, err := config.Load(ctx)

			convey.Convey("Then it should load from YAML file", func() {
				convey.So(err, convey.ShouldBeNil)
				convey.So(cfg, convey.ShouldNotBeNil)
				convey.So(cfg.Addr, convey.ShouldEqual, ":9090")
				convey.So(cfg.MaxLeaderboardLimit, convey.ShouldEqual, 25)
				convey.So(cfg.SightingCacheSize, convey.ShouldEqual, 50000)
				convey.So(cfg.EnrichQueueSize, convey.ShouldEqual, 2000)
				convey.So(cfg.EnrichWorkerCount, convey.ShouldEqual, 2)
			})
		})

		convey.Convey("When loading config with both file and environment variables", func() {
			yamlContent := `
addr: ":9090"
max_leaderboard_limit: 25
enrich_worker_count: 2
`
			tmpFile := createTempConfigFile(yamlContent)
			defer func() { _ = os.Remove(tmpFile) }()

			_ = os.Setenv("TEAELO_CONFIG", tmpFile)
			_ = os.Setenv("TEAELO_ADDR", ":8080")             // This should override the file
			_ = os.Setenv("TEAELO_ENRICH_WORKER_COUNT", "16") // This should override the file
			defer clearConfigEnvVars()

			cfg, err := config.Load(ctx)

			convey.Convey("Then environment variables should override file values", func() {
				convey.So(err, convey.ShouldBeNil)
				convey.So(cfg, convey.ShouldNotBeNil)
				convey.So(cfg.Addr, convey.ShouldEqual, ":8080")             // Overridden by env
				convey.So(cfg.MaxLeaderboardLimit, convey.ShouldEqual, 25)   // From file
				convey.So(cfg.EnrichWorkerCount, convey.ShouldEqual, 16)     // Overridden by env
				convey.So(cfg.SightingCacheSize, convey.ShouldEqual, 100000) // From defaults
			})
		})

		convey.Convey("When loading config with invalid YAML file", func() {
			invalidYaml := `invalid: yaml: content: [`
			tmpFile := createTempConfigFile(invalidYaml)
			defer func() { _ = os.Remove(tmpFile) }()

			_ = os.Setenv("TEAELO_CONFIG", tmpFile)
			defer clearConfigEnvVars()

			cfg, err := config.Load(ctx)

			convey.Convey("Then it should return an error", func() {
				convey.So(err, convey.ShouldNotBeNil)
				convey.So(cfg, convey.ShouldBeNil)
			})
		})

		convey.Convey("When loading config with non-existent file", func() {
			_ = os.Setenv("TEAELO_CONFIG", "/non/existent/file.yaml")
			defer clearConfigEnvVars()

			cfg, err := config.Load(ctx)

			convey.Convey("Then it should return an error", func() {
				convey.So(err, convey.ShouldNotBeNil)
				convey.So(cfg, convey.ShouldBeNil)
			})
		})

		convey.Convey("When loading config with empty addr", func() {
			_ = os.Setenv("TEAELO_ADDR", "")
			defer clearConfigEnvVars()

			cfg, err := config.Load(ctx)

			convey.Convey("Then it should return a validation error", func() {
				convey.So(err, convey.ShouldNotBeNil)
				convey.So(err.Error(), convey.ShouldContainSubstring, "addr must not be empty")
				convey.So(cfg, convey.ShouldBeNil)
			})
		})

		convey.Convey("When loading config with partial YAML file", func() {
			yamlContent := `
addr: ":9090"
enrich_worker_count: 6
`
			tmpFile := createTempConfigFile(yamlContent)
			defer func() { _ = os.Remove(tmpFile) }()

			_ = os.Setenv("TEAELO_CONFIG", tmpFile)
			defer clearConfigEnvVars()

			cfg, err := config.Load(ctx)

			convey.Convey("Then it should merge with defaults for missing fields", func() {
				convey.So(err, convey.ShouldBeNil)
				convey.So(cfg, convey.ShouldNotBeNil)
				convey.So(cfg.Addr, convey.ShouldEqual, ":9090")              // From file
				convey.So(cfg.EnrichWorkerCount, convey.ShouldEqual, 6)       // From file
				convey.So(cfg.MaxLeaderboardLimit, convey.ShouldEqual, 100)   // From defaults
				convey.So(cfg.SightingCacheSize, convey.ShouldEqual, 100_000) // From defaults
				convey.So(cfg.EnrichQueueSize, convey.ShouldEqual, 10_000)    // From defaults
			})
		})

		convey.Convey("When loading config with invalid numeric environment variables", func() {
			_ = os.Setenv("TEAELO_ENRICH_QUEUE_SIZE", "invalid")
			_ = os.Setenv("TEAELO_ENRICH_WORKER_COUNT", "not_a_number")
			defer clearConfigEnvVars()

			cfg, err := config.Load(ctx)

			convey.Convey("Then it should return an error", func() {
				convey.So(err, convey.ShouldNotBeNil)
				convey.So(cfg, convey.ShouldBeNil)
			})
		})
	})
}

func TestConfigLoaderEdgeCases(t *testing.T) {
	convey.Convey("Given config loader edge cases", t, func() {
		ctx := context.Background()

		convey.Convey("When loading config with zero values", func() {
			_ = os.Setenv("TEAELO_ENRICH_QUEUE_SIZE", "0")
			_ = os.Setenv("TEAELO_ENRICH_WORKER_COUNT", "0")
			defer clearConfigEnvVars()

			cfg, err := config.Load(ctx)

			convey.Convey("Then it should handle zero values", func() {
				convey.So(err, convey.ShouldBeNil)
				convey.So(cfg, convey.ShouldNotBeNil)
				convey.So(cfg.EnrichQueueSize, convey.ShouldEqual, 0)
				convey.So(cfg.EnrichWorkerCount, convey.ShouldEqual, 0)
			})
		})

		convey.Convey("When loading config with various addr formats", func() {
			_ = os.Setenv("TEAELO_ADDR", "localhost:8080")
			_ = os.Setenv("TEAELO_ADDR", "0.0.0.0:9090")
			_ = os.Setenv("TEAELO_ADDR", "[::1]:8080")
			defer clearConfigEnvVars()

			cfg, err := config.Load(ctx)

			convey.Convey("Then it should handle various addr formats", func() {
				convey.So(err, convey.ShouldBeNil)
				convey.So(cfg, convey.ShouldNotBeNil)
				convey.So(cfg.Addr, convey.ShouldEqual, "[::1]:8080") // Last one wins
			})
		})

		convey.Convey("When loading config with YAML file containing comments", func() {
			yamlContent := `
# This is a comment
addr: ":9090"  # Inline comment
max_leaderboard_limit: 30
# Another comment
enrich_queue_size: 4000
`
			tmpFile := createTempConfigFile(yamlContent)
			defer func() { _ = os.Remove(tmpFile) }()

			_ = os.Setenv("TEAELO_CONFIG", tmpFile)
			defer clearConfigEnvVars()

			cfg, err := config.Load(ctx)

			convey.Convey("Then it should parse YAML with comments", func() {
				convey.So(err, convey.ShouldBeNil)
				convey.So(cfg, convey.ShouldNotBeNil)
				convey.So(cfg.Addr, convey.ShouldEqual, ":9090")
				convey.So(cfg.MaxLeaderboardLimit, convey.ShouldEqual, 30)
				convey.So(cfg.EnrichQueueSize, convey.ShouldEqual, 4000)
			})
		})

		convey.Convey("When loading config with YAML file containing empty addr", func() {
			yamlContent := `
addr: ""
enrich_worker_count: 6
`
			tmpFile := createTempConfigFile(yamlContent)
			defer func() { _ = os.Remove(tmpFile) }()

			_ = os.Setenv("TEAELO_CONFIG", tmpFile)
			defer clearConfigEnvVars()

			cfg, err := config.Load(ctx)

			convey.Convey("Then it should return validation error for empty addr", func() {
				convey.So(err, convey.ShouldNotBeNil)
				convey.So(err.Error(), convey.ShouldContainSubstring, "addr must not be empty")
				convey.So(cfg, convey.ShouldBeNil)
			})
		})
	})
}

// Helper functions.

func clearConfigEnvVars() {
	envVars := []string{
		"TEAELO_CONFIG",
		"TEAELO_ADDR",
		"TEAELO_LOG_LEVEL",
		"TEAELO_MAX_LEADERBOARD_LIMIT",
		"TEAELO_SIGHTING_CACHE_SIZE",
		"TEAELO_ENRICH_ENABLED",
		"TEAELO_ENRICH_QUEUE_SIZE",
		"TEAELO_ENRICH_WORKER_COUNT",
		"TEAELO_NER_ENABLED",
	}
	for _, envVar := range envVars {
		_ = os.Unsetenv(envVar)
	}
}

func createTempConfigFile(content string) string {
	tmpFile, err := os.CreateTemp("", "teaelo-config-*.yaml")
	if err != nil {
		panic(err)
	}

	if _, err := tmpFile.WriteString(content); err != nil {
		panic(err)
	}

	if err := tmpFile.Close(); err != nil {
		panic(err)
	}

	return tmpFile.Name()
}
