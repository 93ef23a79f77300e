// Package daemon ties the long-running services into a single lifecycle:
// the durable session store with its retention sweeper and the produced-media
// pruning loop, with flock-based locking to prevent multiple instances from
// sharing one data directory.
package daemon
