//go:build !momentumdebug

package momentum

func assertBounded(string, float64) {}
