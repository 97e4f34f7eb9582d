package scoring

import (
	"math"
	"strconv"
)

type OutputType string

const (
	OutputString  OutputType = "string"
	OutputInteger OutputType = "integer"
	OutputFloat   OutputType = "float"
	OutputArray   OutputType = "array"
)

// floatTolerance is the maximum absolute difference under which two float
// answers are still considered equal.
const floatTolerance = 1e-6

// ValidOutputType reports whether t is one of the four declared output types.
// Challenge creation rejects anything else; OutputsMatch still degrades to a
// string compare for unknown values rather than failing.
func ValidOutputType(t OutputType) bool {
	switch t {
	case OutputString, OutputInteger, OutputFloat, OutputArray:
		return true
	}
	return false
}

// OutputsMatch decides whether a user's answer matches the expected one under
// the challenge's declared output type. Malformed numeric input is never an
// error: it simply fails the comparison, even against equally malformed input
// on the other side.
func OutputsMatch(userOutput, expectedOutput string, outputType OutputType) bool {
	switch outputType {
	case OutputInteger:
		u, okU := parseLeadingInt(NormalizeScalar(userOutput))
		e, okE := parseLeadingInt(NormalizeScalar(expectedOutput))
		if !okU || !okE {
			return false
		}
		return u == e
	case OutputFloat:
		u, errU := strconv.ParseFloat(NormalizeScalar(userOutput), 64)
		e, errE := strconv.ParseFloat(NormalizeScalar(expectedOutput), 64)
		if errU != nil || errE != nil {
			return false
		}
		// NaN on either side fails here as well: |NaN-NaN| is NaN.
		return math.Abs(u-e) < floatTolerance
	case OutputArray:
		u := NormalizeArray(userOutput)
		e := NormalizeArray(expectedOutput)
		if len(u) != len(e) {
			return false
		}
		for i := range u {
			if u[i] != e[i] {
				return false
			}
		}
		return true
	default:
		return NormalizeScalar(userOutput) == NormalizeScalar(expectedOutput)
	}
}

// parseLeadingInt parses the longest base-10 integer prefix of s, so "42.0"
// yields 42 while "abc" yields no value at all.
func parseLeadingInt(s string) (int64, bool) {
	i := 0
	if i < len(s) && (s[i] == '+' || s[i] == '-') {
		i++
	}
	j := i
	for j < len(s) && s[j] >= '0' && s[j] <= '9' {
		j++
	}
	if j == i {
		return 0, false
	}
	n, err := strconv.ParseInt(s[:j], 10, 64)
	if err != nil {
		return 0, false
	}
	return n, true
}
