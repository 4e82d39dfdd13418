// Package hcloud implements cloud.Provider on Hetzner Cloud.
//
// Hetzner has no security groups or reservations, so both are expressed
// with native resources:
//
//   - An isolation group is a firewall labeled as managed by hdpctl. A
//     rule whose source is another group cannot be expressed as a
//     firewall source; it becomes an allow-any rule from every address
//     whose description records the peer group ("peer:<id>"), and reads
//     back as the original group rule.
//   - A reservation is the set of servers carrying the same
//     hdpctl.io/reservation label, a UUID generated per launch request.
//     Group membership is recorded as hdpctl.io/group.<name> labels and
//     the firewalls are applied at server creation.
//
// Spot pricing and network volumes have no Hetzner counterpart and are
// rejected with an unsupported error.
package hcloud
