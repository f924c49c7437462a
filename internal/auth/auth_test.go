package auth

import "testing"

func TestValidate(t *testing.T) {
	g := NewGate([]string{"test_user", " resident_1 ", ""})

	cases := []struct {
		userID string
		want   bool
	}{
		{"test_user", true},
		{"  test_user  ", true},
		{"resident_1", true},
		{"stranger", false},
		{"", false},
		{"TEST_USER", false},
	}
	for _, c := range cases {
		if got := g.Validate(c.userID); got != c.want {
			t.Errorf("Validate(%q) = %v, want %v", c.userID, got, c.want)
		}
	}
}

func TestUserIDs(t *testing.T) {
	g := NewGate([]string{"a", "b"})
	if len(g.UserIDs()) != 2 {
		t.Errorf("Expected 2 roster entries, got %d", len(g.UserIDs()))
	}
}
