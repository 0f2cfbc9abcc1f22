// Package cdrom owns the optical drive control contract.
//
// Ownership boundary:
// - operation registry and control code encoding
// - LBA/MSF address arithmetic
// - kernel wire structures (linux/cdrom.h layouts)
// - drive call surface and errno translation
//
// A Drive issues one control call at a time. Polling, retries and
// presentation belong to callers.
package cdrom
