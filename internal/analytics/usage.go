// Package analytics reports anonymous command-usage events, adapted from
// the teacher's analytics/usage.go: same uuid/godotenv/posthog-go stack,
// same opt-out-by-flag model, with the persisted file moved to
// ~/.pathfinder/.env and the event set renamed to this checker's own
// commands.
package analytics

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/google/uuid"
	"github.com/joho/godotenv"
	"github.com/posthog/posthog-go"
)

// Event names reported for each CLI subcommand, per SPEC_FULL.md's
// ambient-stack telemetry note.
const (
	CheckCommand        = "executed_check_command"
	CheckCommandJSON     = "executed_check_command_json_mode"
	ErrorProcessingCheck = "error_processing_check"
	ImportSortCommand    = "executed_importsort_command"
	VerifyTypesCommand   = "executed_verifytypes_command"
	CreateStubCommand    = "executed_createstub_command"
	VersionCommand       = "executed_version_command"
)

var (
	// PublicKey is set at build time via -ldflags; a blank key disables
	// reporting even when metrics are enabled, matching the teacher.
	PublicKey     string
	enableMetrics bool
)

// Init records whether --disable-metrics was passed.
func Init(disableMetrics bool) {
	enableMetrics = !disableMetrics
}

func envFilePath() (string, error) {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(homeDir, ".pathfinder", ".env"), nil
}

func createEnvFile() {
	envFile, err := envFilePath()
	if err != nil {
		fmt.Println("Error getting user home directory:", err)
		return
	}
	if _, err := os.Stat(envFile); os.IsNotExist(err) {
		if err := os.MkdirAll(filepath.Dir(envFile), os.ModePerm); err != nil {
			fmt.Println("Error creating directory:", err)
			return
		}
		env := map[string]string{
			"uuid": uuid.New().String(),
		}
		if err := godotenv.Write(env, envFile); err != nil {
			fmt.Println("Error writing to .env file:", err)
		}
	}
}

// LoadEnvFile ensures the persisted anonymous id exists and loads it into
// the process environment, called once at CLI startup.
func LoadEnvFile() {
	createEnvFile()
	envFile, err := envFilePath()
	if err != nil {
		return
	}
	_ = godotenv.Load(envFile)
}

// ReportEvent sends a single named event, a no-op when metrics are
// disabled or no PublicKey was compiled in.
func ReportEvent(event string) {
	if !enableMetrics || PublicKey == "" {
		return
	}
	client, err := posthog.NewWithConfig(
		PublicKey,
		posthog.Config{
			Endpoint: "https://us.i.posthog.com",
		},
	)
	if err != nil {
		fmt.Println(err)
		return
	}
	defer client.Close()
	if err := client.Enqueue(posthog.Capture{
		DistinctId: os.Getenv("uuid"),
		Event:      event,
	}); err != nil {
		fmt.Println(err)
	}
}
