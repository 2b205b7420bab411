// Package textutil sanitizes free-form media titles into tokens that
// are safe to embed in segment filenames.
package textutil
