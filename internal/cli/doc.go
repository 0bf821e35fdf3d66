// Package cli provides output utilities shared by the shipmate commands.
//
// It covers the four output formats (table, wide, json, yaml) with
// validation and rendering helpers, a go-pretty table builder with the
// house style, a progress spinner for long-running probes that stays
// silent in quiet mode, and the interactive confirmation prompt used
// before destructive operations such as image pushes.
//
// Commands keep their own flag handling; this package only turns data
// into terminal output so every command formats results the same way.
package cli
