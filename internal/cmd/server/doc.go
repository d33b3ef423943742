// Package serverrun hosts the server entrypoint shared by the CLI.
package serverrun
