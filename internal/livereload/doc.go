// Package livereload reloads open browser tabs when served files change.
//
// Watch follows a directory tree with fsnotify and calls back after a burst of
// changes settles. Hub is an http.Handler that upgrades browsers to a
// websocket and sends them ReloadMessage on Broadcast. ClientScript is the
// markup the server inserts into HTML pages so they connect to the Hub.
//
// The feature is off unless enabled with --live-reload or site.live_reload.
package livereload
