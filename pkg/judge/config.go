package judge

import (
	"fmt"
	"os"
)

// EnvConfig names the environment variables that hold the judge model's
// endpoint settings. Configurations reference keys rather than values so
// that credentials never appear in task files.
type EnvConfig struct {
	BaseUrlKey   string `json:"baseUrlKey"`
	ApiKeyKey    string `json:"apiKeyKey"`
	ModelNameKey string `json:"modelNameKey"`
}

// DefaultEnvConfig reads the conventional MCPEVAL_JUDGE_* variables.
func DefaultEnvConfig() *EnvConfig {
	return &EnvConfig{
		BaseUrlKey:   "MCPEVAL_JUDGE_BASE_URL",
		ApiKeyKey:    "MCPEVAL_JUDGE_API_KEY",
		ModelNameKey: "MCPEVAL_JUDGE_MODEL",
	}
}

func (cfg *EnvConfig) BaseUrl() string {
	return os.Getenv(cfg.BaseUrlKey)
}

func (cfg *EnvConfig) ApiKey() string {
	return os.Getenv(cfg.ApiKeyKey)
}

func (cfg *EnvConfig) ModelName() string {
	return os.Getenv(cfg.ModelNameKey)
}

func (cfg *EnvConfig) Validate() error {
	if cfg.BaseUrl() == "" {
		return fmt.Errorf("judge base url is not set (env key %q)", cfg.BaseUrlKey)
	}
	if cfg.ApiKey() == "" {
		return fmt.Errorf("judge api key is not set (env key %q)", cfg.ApiKeyKey)
	}
	return nil
}
