package auth

import "testing"

func TestHashAndCheckPassword(t *testing.T) {
	tests := []struct {
		name     string
		password string
		attempt  string
		want     bool
	}{
		{name: "correct password", password: "tr41ning-Pass1", attempt: "tr41ning-Pass1", want: true},
		{name: "wrong password", password: "tr41ning-Pass1", attempt: "tr41ning-Pass2", want: false},
		{name: "empty attempt", password: "tr41ning-Pass1", attempt: "", want: false},
		{name: "prefix only", password: "tr41ning-Pass1", attempt: "tr41ning", want: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			hash, err := HashPassword(tt.password)
			if err != nil {
				t.Fatalf("HashPassword: %v", err)
			}
			if hash == tt.password {
				t.Fatal("hash equals plaintext")
			}
			if got := CheckPassword(hash, tt.attempt); got != tt.want {
				t.Errorf("CheckPassword() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestCheckDummyPassword(t *testing.T) {
	if CheckDummyPassword("anything") {
		t.Error("CheckDummyPassword must always return false")
	}
}
