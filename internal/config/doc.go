// Package config loads the godotserve configuration.
//
// Configuration comes from three layers, later ones winning:
//
//  1. Built-in defaults (Default), which reproduce the fixed behaviour of the
//     server: port 8443 on all interfaces, cert.pem/key.pem in the working
//     directory, index.html for "/", audio script injection enabled.
//  2. An optional YAML file, godotserve.yaml in the working directory or the
//     path given with --config.
//  3. Command line flags, applied by cmd/godotserve.
//
// # File Format
//
//	version: 1
//	listen:
//	  host: ""
//	  port: 8443
//	tls:
//	  cert: cert.pem
//	  key: key.pem
//	site:
//	  root: .
//	  default_document: index.html
//	  inject_audio: true
//	  live_reload: false
//	logging:
//	  level: info
//	discovery:
//	  mdns: false
//	  instance_name: godotserve
package config
