// Package sysio wraps the platform system calls used to probe and enable
// cache-bypassing I/O on an open descriptor.
//
// Every function takes a raw descriptor and never closes it. Errors are
// returned unwrapped so callers can match errno values.
package sysio
