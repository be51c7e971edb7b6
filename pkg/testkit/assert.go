package testkit

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// AssertJSONEqual deep-compares two JSON documents after normalising both
// through unmarshal, so key order and whitespace never matter.
func AssertJSONEqual(t *testing.T, expected, actual []byte) {
	t.Helper()

	var expVal, actVal interface{}

	require.NoError(t, json.Unmarshal(expected, &expVal),
		"expected document is not valid JSON")
	require.NoError(t, json.Unmarshal(actual, &actVal),
		"actual document is not valid JSON\nbody: %s", string(actual))

	assert.Equal(t, expVal, actVal, "JSON body mismatch")
}

// AssertMocksAllCalled fails the test if any required mock step was never
// triggered.
func AssertMocksAllCalled(t *testing.T, mt *MockTransport) {
	t.Helper()

	for _, err := range mt.UncalledSteps() {
		assert.NoError(t, err)
	}
}
