package main

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestPasswordStrongEnough(t *testing.T) {
	cases := []struct {
		password string
		ok       bool
	}{
		{"P4$sword", true},
		{"Str0ng!pass", true},
		{"Aa1!aaaa", true},
		{"", false},
		{"short1!", false},  // under 8 chars
		{"Àé1$àèù", false},  // 7 characters even though over 8 bytes
		{"Àé1$àèùî", true},  // 8 characters
		{"p4$sword", false}, // no uppercase
		{"P4$SWORD", false}, // no lowercase
		{"Pa$sword", false}, // no digit
		{"P4ssword", false}, // no special character
		{"12345678", false}, // digits only
		{"password", false}, // lowercase only
	}
	for _, tc := range cases {
		assert.Equal(t, tc.ok, passwordStrongEnough(tc.password), "password %q", tc.password)
	}
}

func TestEmailFormat(t *testing.T) {
	valid := []string{
		"alice@email.com",
		"bob.smith@example.co.uk",
		"caroline+tag@sub.domain.org",
	}
	for _, e := range valid {
		assert.True(t, emailRE.MatchString(e), "email %q", e)
	}

	invalid := []string{
		"",
		"plainaddress",
		"@no-local-part.com",
		"no-domain@",
		"spaces in@email.com",
		"trailing-dot@example.com.",
	}
	for _, e := range invalid {
		assert.False(t, emailRE.MatchString(e), "email %q", e)
	}
}
