//go:build !linux

package cdrom

// Off linux there is no kernel driver to report errnos; only devices
// handed to NewDrive exist, and their failures surface as InternalError.
var policies = map[Operation]errnoPolicy{}
