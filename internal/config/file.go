package config

import (
	"os"

	"gopkg.in/yaml.v3"
)

// LoadFile reads a YAML configuration file. Fields left out of the file stay
// at their zero value so Load can merge the result over the defaults.
//
//	http_timeout: 20s
//	max_retries: 2
//	proxies: ["http://proxy.internal:3128"]
//	database_path: /var/lib/storelens/storelens.db
func LoadFile(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}
