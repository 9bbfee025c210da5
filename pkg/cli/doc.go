// Package cli implements the htmlgen command-line interface.
//
// Commands:
//
//	htmlgen expand [file]        expand one document (stdin when file is omitted or "-")
//	htmlgen batch <pattern>...   expand every file matching doublestar patterns into --out-dir
//	htmlgen config               show the resolved configuration and where each value came from
//	htmlgen version              show build information
//
// Settings are layered: flags > environment (HTMLGEN_*) > --config file >
// .htmlgenrc.yaml > ~/.config/htmlgen/config.yaml > defaults.
package cli
