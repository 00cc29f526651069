// Package textutil provides text processing utilities for filename
// sanitization and display formatting.
package textutil
