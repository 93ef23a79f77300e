// Package main hosts the Reelcut CLI entrypoint and command graph.
//
// The Cobra-based command tree surfaces the internal packages at the
// terminal: session inspection and sweeping, analysis cache maintenance,
// ad-hoc conversion and clip extraction, source probing, and configuration
// scaffolding. Configuration resolution and structured logging setup are
// centralized in the command context so subcommands can focus on user
// experience instead of wiring.
//
// Keep this package lean: add new functionality by extending the internal
// packages first, then surface it through dedicated commands or flags here.
package main
