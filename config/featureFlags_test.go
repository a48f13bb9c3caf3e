package config

import "testing"

func TestEnvBoolDefault(t *testing.T) {
	cases := []struct {
		val      string
		def      bool
		expected bool
	}{
		{"", true, true},
		{"", false, false},
		{"TRUE", false, true},
		{" yes ", false, true},
		{"off", true, false},
		{"0", true, false},
		{"maybe", true, true},
	}
	for _, tc := range cases {
		t.Setenv("ROSTER_TEST_FLAG", tc.val)
		if got := EnvBoolDefault("ROSTER_TEST_FLAG", tc.def); got != tc.expected {
			t.Fatalf("EnvBoolDefault(%q, %v) expected %v, got %v", tc.val, tc.def, tc.expected, got)
		}
	}
}

func TestIntFromEnv(t *testing.T) {
	t.Setenv("ROSTER_TEST_INT", "42")
	if got := IntFromEnv("ROSTER_TEST_INT", 7); got != 42 {
		t.Fatalf("expected 42, got %d", got)
	}
	t.Setenv("ROSTER_TEST_INT", "forty-two")
	if got := IntFromEnv("ROSTER_TEST_INT", 7); got != 7 {
		t.Fatalf("expected default 7, got %d", got)
	}
}
