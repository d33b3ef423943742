// Package drainerrun hosts the drainer entrypoint shared by the CLI.
package drainerrun
