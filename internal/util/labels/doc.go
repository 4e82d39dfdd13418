// Package labels provides consistent labeling for provider resources.
//
// All labels use the hdpctl.io domain prefix and follow a builder pattern
// for constructing label sets with cluster name, role, reservation and
// manager identification. On EC2 the same keys are written as tags.
package labels
