// Package httpapi exposes the authentication service over HTTP with Gin.
// Every response body is the uniform envelope; the status code mirrors
// the envelope's error status, or 200/201 on success.
package httpapi
