package config

import "github.com/urfave/cli/v3"

// Ollama holds local Ollama LLM configuration
type Ollama struct {
	BaseURL     string
	Model       string
	Temperature float64
}

// Flags returns CLI flags for Ollama configuration
func (c *Ollama) Flags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:        "ollama-base-url",
			Usage:       "Ollama server base URL",
			Value:       "http://localhost:11434",
			Destination: &c.BaseURL,
			Sources:     cli.EnvVars("ASSAYER_OLLAMA_BASE_URL"),
		},
		&cli.StringFlag{
			Name:        "ollama-model",
			Usage:       "Ollama model to use",
			Value:       "qwen2.5-coder:1.5b",
			Destination: &c.Model,
			Sources:     cli.EnvVars("ASSAYER_OLLAMA_MODEL"),
		},
		&cli.FloatFlag{
			Name:        "ollama-temperature",
			Usage:       "Sampling temperature for analysis",
			Value:       0.2,
			Destination: &c.Temperature,
			Sources:     cli.EnvVars("ASSAYER_OLLAMA_TEMPERATURE"),
		},
	}
}
