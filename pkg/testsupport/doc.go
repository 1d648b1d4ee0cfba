// Package testsupport holds fixtures and an in-memory planning service
// shared by the package tests and the runnable examples.
package testsupport
