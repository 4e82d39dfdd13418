// Package config holds the command-line options of hdpctl, their
// validation, the environment-driven timeouts, provider credentials and
// the process logger.
//
// [Options] is populated by the cobra commands through viper, so each
// option can also come from an HDPCTL_* environment variable or a YAML
// defaults file. [Options.Validate] runs before any provider call.
package config
