package util

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

func TestHashPassword(t *testing.T) {
	tests := []struct {
		name     string
		password string
	}{
		{name: "Valid password", password: "Abc12345!"},
		{name: "Empty password", password: ""},
		{name: "Special characters", password: "P@ss!#$%^&*word"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			hash, err := HashPassword(tt.password)

			require.NoError(t, err)
			assert.NotEmpty(t, hash)
			assert.NotEqual(t, tt.password, hash)
			assert.Contains(t, hash, "$2a$")

			cost, err := bcrypt.Cost([]byte(hash))
			require.NoError(t, err)
			assert.Equal(t, BcryptCost, cost)
		})
	}
}

func TestVerifyPassword(t *testing.T) {
	password := "Abc12345!"
	hash, err := HashPassword(password)
	require.NoError(t, err)

	tests := []struct {
		name           string
		hashedPassword string
		password       string
		want           bool
	}{
		{name: "Correct password", hashedPassword: hash, password: password, want: true},
		{name: "Incorrect password", hashedPassword: hash, password: "Abc12345?", want: false},
		{name: "Empty password", hashedPassword: hash, password: "", want: false},
		{name: "Invalid hash", hashedPassword: "invalid-hash", password: password, want: false},
		{name: "Empty hash", hashedPassword: "", password: password, want: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, VerifyPassword(tt.hashedPassword, tt.password))
		})
	}
}

func TestHashPasswordConsistency(t *testing.T) {
	password := "Abc12345!"

	hash1, err1 := HashPassword(password)
	hash2, err2 := HashPassword(password)
	require.NoError(t, err1)
	require.NoError(t, err2)

	// salted
	assert.NotEqual(t, hash1, hash2)
	assert.True(t, VerifyPassword(hash1, password))
	assert.True(t, VerifyPassword(hash2, password))
}

func TestHashPasswordConcurrent(t *testing.T) {
	var wg sync.WaitGroup
	hashes := make([]string, 4)
	for i := range hashes {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			h, err := HashPassword("Abc12345!")
			assert.NoError(t, err)
			hashes[i] = h
		}(i)
	}
	wg.Wait()

	for _, h := range hashes {
		assert.True(t, VerifyPassword(h, "Abc12345!"))
	}
}

func TestValidPassword(t *testing.T) {
	tests := []struct {
		password string
		want     bool
	}{
		{"Abc12345!", true},
		{"Secret1!", true},
		{"ABCDEFGHIJKLMNO&", true},
		{"Abc1234!", true},
		{"Abc123!", false},           // 7 chars
		{"Abcdefgh12345678!", false}, // 17 chars
		{"abc12345!", false},         // no uppercase
		{"Abc123456", false},         // no special
		{"Abc 12345!", false},        // space not allowed
		{"Abc12345?", false},         // ? is not an accepted special
		{"", false},
	}

	for _, tt := range tests {
		t.Run(tt.password, func(t *testing.T) {
			assert.Equal(t, tt.want, ValidPassword(tt.password))
		})
	}
}
