// Package output renders cluster information for the terminal: node
// inventories as tables or YAML, dashboard URLs, and confirmation prompts.
package output
