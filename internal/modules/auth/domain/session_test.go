package domain

import "testing"

func TestSessionComplete(t *testing.T) {
	t.Parallel()
	if (Session{AccessToken: "a"}).Complete() {
		t.Fatalf("access token alone is a partial session")
	}
	if (Session{RefreshToken: "r"}).Complete() {
		t.Fatalf("refresh token alone is a partial session")
	}
	if !(Session{AccessToken: "a", RefreshToken: "r"}).Complete() {
		t.Fatalf("both tokens make a complete session")
	}
}
