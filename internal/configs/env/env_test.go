package env

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLookupEnvFloat(t *testing.T) {
	v, err := LookupEnvFloat("DUPLINK_TEST_FLOAT", 1.5)
	require.NoError(t, err)
	assert.Equal(t, 1.5, v)

	t.Setenv("DUPLINK_TEST_FLOAT", "-2.25")
	v, err = LookupEnvFloat("DUPLINK_TEST_FLOAT", 1.5)
	require.NoError(t, err)
	assert.Equal(t, -2.25, v)

	t.Setenv("DUPLINK_TEST_FLOAT", "abc")
	_, err = LookupEnvFloat("DUPLINK_TEST_FLOAT", 1.5)
	require.Error(t, err)
	assert.Contains(t, err.Error(), `DUPLINK_TEST_FLOAT="abc"`)
	assert.Equal(t, 1.5, GetEnvFloat("DUPLINK_TEST_FLOAT", 1.5))
}

func TestLookupEnvIntAndBool(t *testing.T) {
	t.Setenv("DUPLINK_TEST_INT", "7")
	t.Setenv("DUPLINK_TEST_BOOL", "true")
	i, err := LookupEnvInt("DUPLINK_TEST_INT", 0)
	require.NoError(t, err)
	assert.Equal(t, 7, i)
	b, err := LookupEnvBool("DUPLINK_TEST_BOOL", false)
	require.NoError(t, err)
	assert.True(t, b)

	t.Setenv("DUPLINK_TEST_INT", "seven")
	t.Setenv("DUPLINK_TEST_BOOL", "maybe")
	_, err = LookupEnvInt("DUPLINK_TEST_INT", 0)
	assert.Error(t, err)
	_, err = LookupEnvBool("DUPLINK_TEST_BOOL", false)
	assert.Error(t, err)
}
