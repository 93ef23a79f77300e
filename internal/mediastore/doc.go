// Package mediastore retires produced media files (converted sources and
// extracted clips) so the output directories cannot grow without bound.
//
// Two pressures drive pruning: an age ceiling for individual files and a
// free-space floor for the filesystem holding them. When free space drops
// below the floor the oldest files go first, regardless of age.
package mediastore
