// Package config loads specdocs configuration.
//
// Values come from several sources with the following precedence:
//  1. Command-line flags (highest priority, applied by the CLI)
//  2. Environment variables (SPECDOCS_*)
//  3. Config file (specdocs.yaml, or the file named by --config)
//  4. Default values (lowest priority)
//
// Example file:
//
//	openapi: ./openapi.yaml
//	route: /mcp
//	listen: 127.0.0.1:4300
//	auth:
//	  driver: token
//	  tokens:
//	    frontend-dev: s3cret
//	server:
//	  name: Bookshop Docs
//	rateLimit:
//	  maxAttempts: 60
//	  decayMinutes: 1
package config
