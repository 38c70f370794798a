package config

import "fmt"

// Validate checks that the configuration values are coherent.
func (c *Config) Validate() error {
	if c.Backup.Keep < 1 {
		return fmt.Errorf("backup.keep must be at least 1, got %d", c.Backup.Keep)
	}
	return nil
}
