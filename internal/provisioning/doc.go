// Package provisioning provides the step runner and structured observer
// shared by launch, configuration and teardown.
//
// A workflow is a linear list of [Phase] values executed by [RunPhases].
// Each phase reports through an [Observer], which emits typed events
// (phase.started, resource.created, ...) on a logr.Logger.
package provisioning
