// Package cloud defines the provider surface the orchestrator talks to.
//
// A [Provider] is composed of small interfaces: [GroupManager] for
// isolation groups and their ingress rules, [InstanceManager] for
// launching and controlling instances, and [Catalog] for image and zone
// lookups. Backends live under internal/platform; an in-memory
// implementation for tests lives in internal/cloud/fake.
package cloud
