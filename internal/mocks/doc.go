// Package mocks holds test doubles shared across packages. The API
// handler tests and the auth middleware tests both need a controllable
// JWT service; keeping one implementation here avoids two drifting
// copies. Mocks only a single test package needs stay in that package.
package mocks
