// Package keygen generates RSA key pairs for SSH authentication.
//
// Keys are produced in PEM format (private) and OpenSSH authorized_keys
// format (public). The pair can be written out as an identity file the
// same way a user-supplied -i key would be laid out on disk.
package keygen
