// Package middleware provides HTTP middleware for the slideshow status server.
//
// It includes:
//   - Request logging in W3C Extended Log Format through the logging package
//   - Prometheus request metrics labelled by mux route template
package middleware
