// Package ec2 implements cloud.Provider on Amazon EC2 with aws-sdk-go-v2.
//
// Isolation groups are VPC security groups of the default VPC, and
// reservations are EC2 reservations. SDK failures are classified into
// cloud error kinds from their smithy API error codes.
package ec2
