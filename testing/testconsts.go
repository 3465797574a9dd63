package testing

import "time"

// Account fixtures shared by package tests.
const (
	TestEmail     = "ada@example.com"
	TestPassword  = "Secret1!x"
	TestFirstName = "Ada"
	TestLastName  = "Lovelace"
)

// TestImage is a tiny payload standing in for a leaf photo.
var TestImage = []byte{0xff, 0xd8, 0xff, 0xe0, 0x00, 0x10, 'J', 'F', 'I', 'F', 0x00, 0xff, 0xd9}

// Time Duration Constants
const (
	// TestShortDelay is a short delay used as a retry base in tests (10ms)
	TestShortDelay = 10 * time.Millisecond
	// TestEventuallyTimeout is the timeout for require.Eventually assertions (500ms)
	TestEventuallyTimeout = 500 * time.Millisecond
	// TestEventuallyTick is the polling interval for require.Eventually (10ms)
	TestEventuallyTick = 10 * time.Millisecond
)
