package testutil

import "testing"

// Given runs fn as a subtest describing the starting state.
func Given(t *testing.T, state string, fn func(t *testing.T)) {
	t.Helper()
	t.Run("given "+state, fn)
}

// When runs fn as a subtest describing the action under test.
func When(t *testing.T, action string, fn func(t *testing.T)) {
	t.Helper()
	t.Run("when "+action, fn)
}

// Then runs fn as a subtest describing the expected outcome.
func Then(t *testing.T, outcome string, fn func(t *testing.T)) {
	t.Helper()
	t.Run("then "+outcome, fn)
}
