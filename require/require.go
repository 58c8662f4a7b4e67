package require

import "github.com/kjk/catalog/assert"

// fatal versions of the assert package functions

// TestingT is an interface wrapper around *testing.T
type TestingT interface {
	Errorf(format string, args ...interface{})
	FailNow()
}

type tHelper interface {
	Helper()
}

func helper(t TestingT) {
	if h, ok := t.(tHelper); ok {
		h.Helper()
	}
}

// Len asserts that the specified object has specific length.
//
//	require.Len(t, books, 3)
func Len(t TestingT, object interface{}, length int, msgAndArgs ...interface{}) {
	helper(t)
	if !assert.Len(t, object, length, msgAndArgs...) {
		t.FailNow()
	}
}

// NoError asserts that a function returned no error (i.e. `nil`).
func NoError(t TestingT, err error, msgAndArgs ...interface{}) {
	helper(t)
	if !assert.NoError(t, err, msgAndArgs...) {
		t.FailNow()
	}
}

// Error asserts that a function returned an error.
func Error(t TestingT, err error, msgAndArgs ...interface{}) {
	helper(t)
	if !assert.Error(t, err, msgAndArgs...) {
		t.FailNow()
	}
}

func ErrorIs(t TestingT, err, target error, msgAndArgs ...interface{}) {
	helper(t)
	if !assert.ErrorIs(t, err, target, msgAndArgs...) {
		t.FailNow()
	}
}

// Equal asserts that two objects are equal.
func Equal(t TestingT, expected interface{}, actual interface{}, msgAndArgs ...interface{}) {
	helper(t)
	if !assert.Equal(t, expected, actual, msgAndArgs...) {
		t.FailNow()
	}
}

func NotNil(t TestingT, object interface{}, msgAndArgs ...interface{}) {
	helper(t)
	if !assert.NotNil(t, object, msgAndArgs...) {
		t.FailNow()
	}
}

func True(t TestingT, value bool, msgAndArgs ...interface{}) {
	helper(t)
	if !assert.True(t, value, msgAndArgs...) {
		t.FailNow()
	}
}

func False(t TestingT, value bool, msgAndArgs ...interface{}) {
	helper(t)
	if !assert.False(t, value, msgAndArgs...) {
		t.FailNow()
	}
}
